package fpdecimal

import (
	"fmt"
	"math/big"
)

const expTerms = 72

var (
	// e^137 exceeds the 256-bit range; e^-42 is below 10^-18
	expMaxArg = New(137)
	expMinArg = New(-42)

	E = Must(Exp(One))
)

// Exp returns e^x.
func Exp(x FPDecimal) (FPDecimal, error) {
	switch {
	case x.GT(expMaxArg):
		return Zero, fmt.Errorf("exp(%v): %w", x, ErrOverflow)
	case x.LT(expMinArg):
		return Zero, nil
	}
	r, err := fromWork(expWork(x.work()))
	if err != nil {
		return Zero, fmt.Errorf("exp(%v): %w", x, err)
	}
	return r, nil
}

// expWork evaluates e^x at working precision. The caller bounds |x|.
func expWork(x *big.Int) *big.Int {
	if x.Sign() < 0 {
		pos := expWork(new(big.Int).Neg(x))
		return wdiv(workScale, pos)
	}

	// halve into [0, 1), run the series, square back
	r := new(big.Int).Set(x)
	k := 0
	for r.Cmp(workScale) >= 0 {
		r.Rsh(r, 1)
		k++
	}

	sum := new(big.Int).Set(workScale)
	term := new(big.Int).Set(workScale)
	for n := int64(1); n <= expTerms; n++ {
		term = wmul(term, r)
		term.Quo(term, big.NewInt(n))
		sum.Add(sum, term)
	}

	for ; k > 0; k-- {
		sum = wmul(sum, sum)
	}
	return sum
}
