package fpdecimal

import "math/big"

// Transcendental functions run on signed big integers scaled by 10^workDigits
// and are truncated back to 18 digits once, at the end. All loops below have
// fixed trip counts or are bounded by the 256-bit input range.
const (
	guardDigits = 64
	workDigits  = Precision + guardDigits
)

var (
	workScale  = new(big.Int).Exp(big.NewInt(10), big.NewInt(workDigits), nil)
	guardScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(guardDigits), nil)
)

// work lifts d to working precision.
func (d FPDecimal) work() *big.Int {
	return new(big.Int).Mul(d.signed(), guardScale)
}

// fromWork truncates a working value toward zero and narrows it.
func fromWork(v *big.Int) (FPDecimal, error) {
	return fromSigned(new(big.Int).Quo(v, guardScale))
}

func wInt(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), workScale)
}

func wmul(a, b *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	return r.Quo(r, workScale)
}

func wdiv(a, b *big.Int) *big.Int {
	r := new(big.Int).Mul(a, workScale)
	return r.Quo(r, b)
}
