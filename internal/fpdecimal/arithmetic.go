package fpdecimal

import (
	"fmt"
	"math/big"
)

// Add returns d + e.
func (d FPDecimal) Add(e FPDecimal) (FPDecimal, error) {
	if d.neg == e.neg {
		return fromWide(new(big.Int).Add(d.wide(), e.wide()), d.neg)
	}
	// differing signs: the larger magnitude keeps its sign
	dm, em := d.wide(), e.wide()
	if dm.Cmp(em) >= 0 {
		return fromWide(dm.Sub(dm, em), d.neg)
	}
	return fromWide(em.Sub(em, dm), e.neg)
}

// Sub returns d - e.
func (d FPDecimal) Sub(e FPDecimal) (FPDecimal, error) {
	return d.Add(e.Neg())
}

// Mul returns d * e truncated toward zero at the 18th fractional digit.
func (d FPDecimal) Mul(e FPDecimal) (FPDecimal, error) {
	p := new(big.Int).Mul(d.wide(), e.wide())
	p.Quo(p, scale)
	r, err := fromWide(p, d.neg != e.neg)
	if err != nil {
		return Zero, fmt.Errorf("multiplying %v by %v: %w", d, e, err)
	}
	return r, nil
}

// Quo returns d / e truncated toward zero at the 18th fractional digit.
func (d FPDecimal) Quo(e FPDecimal) (FPDecimal, error) {
	den := e.wide()
	if den.Sign() == 0 {
		return Zero, fmt.Errorf("dividing %v: %w", d, ErrDivisionByZero)
	}
	n := new(big.Int).Mul(d.wide(), scale)
	n.Quo(n, den)
	r, err := fromWide(n, d.neg != e.neg)
	if err != nil {
		return Zero, fmt.Errorf("dividing %v by %v: %w", d, e, err)
	}
	return r, nil
}
