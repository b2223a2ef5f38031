// Package fpdecimal implements a signed fixed-point decimal with exactly 18
// fractional digits. The magnitude is a 256-bit unsigned integer scaled by
// 10^18 and the sign is carried separately. Every operation is defined on
// integers only, so two evaluations of the same input always agree bit for bit.
package fpdecimal

import (
	"errors"
	"fmt"
	"math/big"

	sdkmath "cosmossdk.io/math"
)

// Precision is the number of fractional digits carried by every FPDecimal.
const Precision = 18

var (
	ErrMalformedInput   = errors.New("malformed decimal input")
	ErrOverflow         = errors.New("decimal overflow")
	ErrDivisionByZero   = errors.New("division by zero")
	ErrInvalidOperation = errors.New("invalid operation")
)

// FPDecimal is an immutable signed fixed-point number.
// The zero value represents 0. Zero is never negative.
type FPDecimal struct {
	num sdkmath.Uint // magnitude scaled by 10^18
	neg bool
}

var (
	scale = new(big.Int).Exp(big.NewInt(10), big.NewInt(Precision), nil)

	Zero = FPDecimal{}
	One  = New(1)
	Two  = New(2)
	Ten  = New(10)
)

// New returns the integer v as a decimal.
func New(v int64) FPDecimal {
	d, err := fromSigned(new(big.Int).Mul(big.NewInt(v), scale))
	if err != nil {
		// an int64 times 10^18 fits in 127 bits
		panic(fmt.Sprintf("New(%v) failed: %v", v, err))
	}
	return d
}

// NewFromInt converts an SDK integer. Fails with ErrOverflow when the scaled
// value does not fit the 256-bit magnitude.
func NewFromInt(v sdkmath.Int) (FPDecimal, error) {
	if v.IsNil() {
		return Zero, nil
	}
	return fromSigned(new(big.Int).Mul(v.BigInt(), scale))
}

// NewFromUint builds a decimal from a raw magnitude already scaled by 10^18.
func NewFromUint(num sdkmath.Uint, neg bool) FPDecimal {
	if num == (sdkmath.Uint{}) || num.IsZero() {
		return Zero
	}
	return FPDecimal{num: num, neg: neg}
}

// NewFromLegacyDec converts an SDK legacy decimal. Both carry 18 fractional
// digits so the conversion is exact.
func NewFromLegacyDec(v sdkmath.LegacyDec) (FPDecimal, error) {
	if v.IsNil() {
		return Zero, nil
	}
	return fromSigned(v.BigInt())
}

// fromWide narrows an unsigned big integer into the 256-bit magnitude.
func fromWide(mag *big.Int, neg bool) (FPDecimal, error) {
	if mag.BitLen() > sdkmath.MaxBitLen {
		return Zero, fmt.Errorf("%w: magnitude needs %d bits", ErrOverflow, mag.BitLen())
	}
	if mag.Sign() == 0 {
		return Zero, nil
	}
	return FPDecimal{num: sdkmath.NewUintFromBigInt(mag), neg: neg}, nil
}

func fromSigned(v *big.Int) (FPDecimal, error) {
	neg := v.Sign() < 0
	return fromWide(new(big.Int).Abs(v), neg)
}

// wide returns a fresh copy of the magnitude.
func (d FPDecimal) wide() *big.Int {
	if d.num == (sdkmath.Uint{}) {
		return new(big.Int)
	}
	return d.num.BigInt()
}

// signed returns the scaled value with its sign applied.
func (d FPDecimal) signed() *big.Int {
	v := d.wide()
	if d.neg {
		v.Neg(v)
	}
	return v
}

// Magnitude returns the raw magnitude scaled by 10^18.
func (d FPDecimal) Magnitude() sdkmath.Uint {
	if d.num == (sdkmath.Uint{}) {
		return sdkmath.ZeroUint()
	}
	return d.num
}

func (d FPDecimal) IsZero() bool { return d.wide().Sign() == 0 }
func (d FPDecimal) IsNeg() bool  { return d.neg && !d.IsZero() }
func (d FPDecimal) IsPos() bool  { return !d.neg && !d.IsZero() }

// Sign returns -1, 0 or 1.
func (d FPDecimal) Sign() int {
	switch {
	case d.IsZero():
		return 0
	case d.neg:
		return -1
	default:
		return 1
	}
}

// Cmp compares d and e and returns -1, 0 or 1.
func (d FPDecimal) Cmp(e FPDecimal) int {
	return d.signed().Cmp(e.signed())
}

// Equal reports whether d and e represent the same value.
func (d FPDecimal) Equal(e FPDecimal) bool { return d.Cmp(e) == 0 }

func (d FPDecimal) GT(e FPDecimal) bool  { return d.Cmp(e) > 0 }
func (d FPDecimal) GTE(e FPDecimal) bool { return d.Cmp(e) >= 0 }
func (d FPDecimal) LT(e FPDecimal) bool  { return d.Cmp(e) < 0 }
func (d FPDecimal) LTE(e FPDecimal) bool { return d.Cmp(e) <= 0 }

// Min returns the smaller of d and e.
func Min(d, e FPDecimal) FPDecimal {
	if d.Cmp(e) <= 0 {
		return d
	}
	return e
}

// Max returns the larger of d and e.
func Max(d, e FPDecimal) FPDecimal {
	if d.Cmp(e) >= 0 {
		return d
	}
	return e
}

// Abs returns |d|.
func (d FPDecimal) Abs() FPDecimal {
	return FPDecimal{num: d.num, neg: false}
}

// Neg returns -d.
func (d FPDecimal) Neg() FPDecimal {
	if d.IsZero() {
		return Zero
	}
	return FPDecimal{num: d.num, neg: !d.neg}
}

// IsInteger reports whether d has no fractional part.
func (d FPDecimal) IsInteger() bool {
	return new(big.Int).Rem(d.wide(), scale).Sign() == 0
}

// Trunc drops the fractional part, rounding toward zero.
func (d FPDecimal) Trunc() FPDecimal {
	q := new(big.Int).Quo(d.wide(), scale)
	r, _ := fromWide(q.Mul(q, scale), d.neg)
	return r
}

// Ceil rounds toward positive infinity.
func (d FPDecimal) Ceil() (FPDecimal, error) {
	t := d.Trunc()
	if d.IsNeg() || t.Equal(d) {
		return t, nil
	}
	return t.Add(One)
}

// Floor rounds toward negative infinity.
func (d FPDecimal) Floor() (FPDecimal, error) {
	t := d.Trunc()
	if !d.IsNeg() || t.Equal(d) {
		return t, nil
	}
	return t.Sub(One)
}

// SDKInt returns the integer part, truncated toward zero.
func (d FPDecimal) SDKInt() sdkmath.Int {
	return sdkmath.NewIntFromBigInt(new(big.Int).Quo(d.signed(), scale))
}

// LegacyDec converts to an SDK legacy decimal without loss.
func (d FPDecimal) LegacyDec() sdkmath.LegacyDec {
	return sdkmath.LegacyNewDecFromBigIntWithPrec(d.signed(), Precision)
}
