package fpdecimal

import (
	"fmt"
	"math/big"

	sdkmath "cosmossdk.io/math"
)

// powBitLimit caps intermediate growth in Pow; anything larger cannot narrow
// back into 256 bits once multiplied into the result.
var powBitLimit = sdkmath.MaxBitLen + workScale.BitLen() + 1

// Sqrt returns the square root of x, truncated to 18 digits.
func Sqrt(x FPDecimal) (FPDecimal, error) {
	if x.IsNeg() {
		return Zero, fmt.Errorf("sqrt(%v): %w: argument is negative", x, ErrInvalidOperation)
	}
	// sqrt(m / 10^18) * 10^18 = sqrt(m * 10^18)
	n := new(big.Int).Mul(x.wide(), scale)
	return fromWide(n.Sqrt(n), false)
}

// Pow returns a^b. Integer exponents use repeated squaring and accept negative
// bases; other exponents are evaluated as exp(b ln a) and need a > 0.
func Pow(a, b FPDecimal) (FPDecimal, error) {
	switch {
	case b.IsZero():
		return One, nil
	case a.IsZero():
		if b.IsNeg() {
			return Zero, fmt.Errorf("pow(0, %v): %w", b, ErrDivisionByZero)
		}
		return Zero, nil
	case b.IsInteger():
		return powInt(a, b)
	case a.IsNeg():
		return Zero, fmt.Errorf("pow(%v, %v): %w: negative base with fractional exponent", a, b, ErrInvalidOperation)
	}

	arg := wmul(lnWork(a.work()), b.work())
	switch {
	case arg.Cmp(expMaxArg.work()) > 0:
		return Zero, fmt.Errorf("pow(%v, %v): %w", a, b, ErrOverflow)
	case arg.Cmp(expMinArg.work()) < 0:
		return Zero, nil
	}
	r, err := fromWork(expWork(arg))
	if err != nil {
		return Zero, fmt.Errorf("pow(%v, %v): %w", a, b, err)
	}
	return r, nil
}

func powInt(a, b FPDecimal) (FPDecimal, error) {
	e := new(big.Int).Quo(b.wide(), scale)
	base := a.Abs().work()
	if b.IsNeg() {
		base = wdiv(workScale, base)
	}
	result := new(big.Int).Set(workScale)

	for i := 0; i < e.BitLen(); i++ {
		if e.Bit(i) == 1 {
			result = wmul(result, base)
			if result.BitLen() > powBitLimit {
				return Zero, fmt.Errorf("pow(%v, %v): %w", a, b, ErrOverflow)
			}
		}
		if i+1 < e.BitLen() {
			base = wmul(base, base)
			if base.BitLen() > powBitLimit {
				return Zero, fmt.Errorf("pow(%v, %v): %w", a, b, ErrOverflow)
			}
		}
	}

	if a.IsNeg() && e.Bit(0) == 1 {
		result.Neg(result)
	}
	r, err := fromWork(result)
	if err != nil {
		return Zero, fmt.Errorf("pow(%v, %v): %w", a, b, err)
	}
	return r, nil
}
