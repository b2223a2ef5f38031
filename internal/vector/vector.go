// Package vector provides elementwise and reduction operations over ordered
// sequences of fixed-point decimals.
package vector

import (
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/basket/internal/fpdecimal"
)

var ErrLengthMismatch = errors.New("vector length mismatch")

// Vector is a read-only ordered list of decimals. Operations never modify
// their inputs.
type Vector []fpdecimal.FPDecimal

// Zeros returns a vector of n zeros.
func Zeros(n int) Vector {
	return make(Vector, n)
}

// Parse reads every element with fpdecimal.Parse.
func Parse(values []string) (Vector, error) {
	out := make(Vector, len(values))
	for i, s := range values {
		d, err := fpdecimal.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = d
	}
	return out, nil
}

// FromInts converts whole-unit SDK integers.
func FromInts(values []sdkmath.Int) (Vector, error) {
	out := make(Vector, len(values))
	for i, v := range values {
		d, err := fpdecimal.NewFromInt(v)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = d
	}
	return out, nil
}

// Strings formats every element.
func (v Vector) Strings() []string {
	out := make([]string, len(v))
	for i, d := range v {
		out[i] = d.String()
	}
	return out
}

func checkLen(a, b Vector) error {
	if len(a) != len(b) {
		return fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(a), len(b))
	}
	return nil
}

type binaryOp func(x, y fpdecimal.FPDecimal) (fpdecimal.FPDecimal, error)

func zip(a, b Vector, op binaryOp) (Vector, error) {
	if err := checkLen(a, b); err != nil {
		return nil, err
	}
	out := make(Vector, len(a))
	for i := range a {
		r, err := op(a[i], b[i])
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = r
	}
	return out, nil
}

func each(v Vector, op func(x fpdecimal.FPDecimal) (fpdecimal.FPDecimal, error)) (Vector, error) {
	out := make(Vector, len(v))
	for i := range v {
		r, err := op(v[i])
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = r
	}
	return out, nil
}

// Sum folds v with addition, starting from zero.
func Sum(v Vector) (fpdecimal.FPDecimal, error) {
	acc := fpdecimal.Zero
	for i, d := range v {
		var err error
		if acc, err = acc.Add(d); err != nil {
			return fpdecimal.Zero, fmt.Errorf("sum at element %d: %w", i, err)
		}
	}
	return acc, nil
}

// Dot returns the sum of the elementwise products.
func Dot(a, b Vector) (fpdecimal.FPDecimal, error) {
	p, err := Mul(a, b)
	if err != nil {
		return fpdecimal.Zero, err
	}
	return Sum(p)
}

func Mul(a, b Vector) (Vector, error) { return zip(a, b, fpdecimal.FPDecimal.Mul) }
func Add(a, b Vector) (Vector, error) { return zip(a, b, fpdecimal.FPDecimal.Add) }
func Sub(a, b Vector) (Vector, error) { return zip(a, b, fpdecimal.FPDecimal.Sub) }

// MulConst scales every element by c.
func MulConst(v Vector, c fpdecimal.FPDecimal) (Vector, error) {
	return each(v, func(x fpdecimal.FPDecimal) (fpdecimal.FPDecimal, error) { return x.Mul(c) })
}

// DivConst divides every element by c.
func DivConst(v Vector, c fpdecimal.FPDecimal) (Vector, error) {
	if c.IsZero() {
		return nil, fmt.Errorf("div_const: %w", fpdecimal.ErrDivisionByZero)
	}
	return each(v, func(x fpdecimal.FPDecimal) (fpdecimal.FPDecimal, error) { return x.Quo(c) })
}

// Abs returns the elementwise absolute value.
func Abs(v Vector) Vector {
	out := make(Vector, len(v))
	for i, d := range v {
		out[i] = d.Abs()
	}
	return out
}

// Neg returns the elementwise negation.
func Neg(v Vector) Vector {
	out := make(Vector, len(v))
	for i, d := range v {
		out[i] = d.Neg()
	}
	return out
}
