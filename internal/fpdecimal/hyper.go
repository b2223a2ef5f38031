package fpdecimal

import (
	"fmt"
	"math/big"
)

// Beyond this |x| the gap 1 - |tanh x| is below the working precision.
var tanhSaturation = New(96)

// expPair returns e^x and e^-x at working precision.
func expPair(x FPDecimal) (pos, neg *big.Int, err error) {
	if x.Abs().GT(expMaxArg) {
		return nil, nil, ErrOverflow
	}
	w := x.work()
	return expWork(w), expWork(new(big.Int).Neg(w)), nil
}

// Sinh returns (e^x - e^-x) / 2.
func Sinh(x FPDecimal) (FPDecimal, error) {
	p, n, err := expPair(x)
	if err != nil {
		return Zero, fmt.Errorf("sinh(%v): %w", x, err)
	}
	r, err := fromWork(sinhWork(p, n))
	if err != nil {
		return Zero, fmt.Errorf("sinh(%v): %w", x, err)
	}
	return r, nil
}

// Cosh returns (e^x + e^-x) / 2.
func Cosh(x FPDecimal) (FPDecimal, error) {
	p, n, err := expPair(x)
	if err != nil {
		return Zero, fmt.Errorf("cosh(%v): %w", x, err)
	}
	r, err := fromWork(coshWork(p, n))
	if err != nil {
		return Zero, fmt.Errorf("cosh(%v): %w", x, err)
	}
	return r, nil
}

// Tanh returns sinh(x) / cosh(x), saturating to ±1 for large |x|.
func Tanh(x FPDecimal) (FPDecimal, error) {
	if x.Abs().GTE(tanhSaturation) {
		if x.IsNeg() {
			return One.Neg(), nil
		}
		return One, nil
	}
	p, n, err := expPair(x)
	if err != nil {
		return Zero, fmt.Errorf("tanh(%v): %w", x, err)
	}
	c := coshWork(p, n)
	if c18, _ := fromWork(c); c18.IsZero() {
		return Zero, fmt.Errorf("tanh(%v): %w", x, ErrDivisionByZero)
	}
	return fromWork(wdiv(sinhWork(p, n), c))
}

func sinhWork(p, n *big.Int) *big.Int {
	r := new(big.Int).Sub(p, n)
	return r.Quo(r, big.NewInt(2))
}

func coshWork(p, n *big.Int) *big.Int {
	r := new(big.Int).Add(p, n)
	return r.Quo(r, big.NewInt(2))
}
