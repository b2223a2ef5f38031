package fpdecimal

import (
	"fmt"
	"math/big"
)

const (
	trigTerms   = 48
	machinTerms = 64
)

var (
	// Machin: pi = 16 atan(1/5) - 4 atan(1/239)
	piWork = new(big.Int).Sub(
		new(big.Int).Mul(atanInvWork(5), big.NewInt(16)),
		new(big.Int).Mul(atanInvWork(239), big.NewInt(4)),
	)
	twoPiWork = new(big.Int).Lsh(piWork, 1)

	Pi = Must(fromWork(piWork))
)

// atanInvWork returns atan(1/n) at working precision.
func atanInvWork(n int64) *big.Int {
	nn := big.NewInt(n * n)
	pow := new(big.Int).Quo(workScale, big.NewInt(n))
	sum := new(big.Int)
	for i := int64(0); i < machinTerms; i++ {
		t := new(big.Int).Quo(pow, big.NewInt(2*i+1))
		if i%2 == 0 {
			sum.Add(sum, t)
		} else {
			sum.Sub(sum, t)
		}
		pow.Quo(pow, nn)
	}
	return sum
}

// reduceAngle maps x into [-pi, pi).
func reduceAngle(x *big.Int) *big.Int {
	shifted := new(big.Int).Add(x, piWork)
	q := new(big.Int).Div(shifted, twoPiWork) // Euclidean, so floor for a positive divisor
	return shifted.Sub(x, q.Mul(q, twoPiWork))
}

func sinWork(r *big.Int) *big.Int {
	r2 := wmul(r, r)
	term := new(big.Int).Set(r)
	sum := new(big.Int)
	for i := int64(0); i < trigTerms; i++ {
		sum.Add(sum, term)
		term = wmul(term, r2)
		term.Quo(term, big.NewInt((2*i+2)*(2*i+3)))
		term.Neg(term)
	}
	return sum
}

func cosWork(r *big.Int) *big.Int {
	r2 := wmul(r, r)
	term := new(big.Int).Set(workScale)
	sum := new(big.Int)
	for i := int64(0); i < trigTerms; i++ {
		sum.Add(sum, term)
		term = wmul(term, r2)
		term.Quo(term, big.NewInt((2*i+1)*(2*i+2)))
		term.Neg(term)
	}
	return sum
}

// Sin returns the sine of x (radians).
func Sin(x FPDecimal) (FPDecimal, error) {
	return fromWork(sinWork(reduceAngle(x.work())))
}

// Cos returns the cosine of x (radians).
func Cos(x FPDecimal) (FPDecimal, error) {
	return fromWork(cosWork(reduceAngle(x.work())))
}

// Tan returns sin(x)/cos(x). Fails with ErrDivisionByZero when the cosine
// truncates to zero at 18 digits.
func Tan(x FPDecimal) (FPDecimal, error) {
	r := reduceAngle(x.work())
	c := cosWork(r)
	if c18, _ := fromWork(c); c18.IsZero() {
		return Zero, fmt.Errorf("tan(%v): %w", x, ErrDivisionByZero)
	}
	res, err := fromWork(wdiv(sinWork(r), c))
	if err != nil {
		return Zero, fmt.Errorf("tan(%v): %w", x, err)
	}
	return res, nil
}
