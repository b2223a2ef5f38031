package fpdecimal

import (
	"fmt"
	"math/big"
)

const lnTerms = 96

// ln 2 = 2 atanh(1/3)
var ln2Work = new(big.Int).Lsh(atanhWork(new(big.Int).Quo(workScale, big.NewInt(3))), 1)

// Ln returns the natural logarithm of x.
func Ln(x FPDecimal) (FPDecimal, error) {
	if !x.IsPos() {
		return Zero, fmt.Errorf("ln(%v): %w: argument must be positive", x, ErrInvalidOperation)
	}
	return fromWork(lnWork(x.work()))
}

// lnWork evaluates ln x for a positive working value.
func lnWork(x *big.Int) *big.Int {
	y := new(big.Int).Set(x)
	two := wInt(2)
	k := int64(0)
	for y.Cmp(two) >= 0 {
		y.Rsh(y, 1)
		k++
	}
	for y.Cmp(workScale) < 0 {
		y.Lsh(y, 1)
		k--
	}

	// y in [1, 2): ln y = 2 atanh((y-1)/(y+1))
	num := new(big.Int).Sub(y, workScale)
	den := new(big.Int).Add(y, workScale)
	res := atanhWork(wdiv(num, den))
	res.Lsh(res, 1)

	return res.Add(res, new(big.Int).Mul(ln2Work, big.NewInt(k)))
}

// atanhWork sums z^(2i+1)/(2i+1) for |z| <= 1/3.
func atanhWork(z *big.Int) *big.Int {
	z2 := wmul(z, z)
	pow := new(big.Int).Set(z)
	sum := new(big.Int)
	for i := int64(0); i < lnTerms; i++ {
		sum.Add(sum, new(big.Int).Quo(pow, big.NewInt(2*i+1)))
		pow = wmul(pow, z2)
	}
	return sum
}

// Log10 returns the base-10 logarithm of x.
func Log10(x FPDecimal) (FPDecimal, error) {
	if !x.IsPos() {
		return Zero, fmt.Errorf("log10(%v): %w: argument must be positive", x, ErrInvalidOperation)
	}
	return fromWork(wdiv(lnWork(x.work()), lnWork(wInt(10))))
}
