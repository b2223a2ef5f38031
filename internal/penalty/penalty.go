package penalty

import (
	"fmt"

	"github.com/elys-network/basket/internal/fpdecimal"
	"github.com/elys-network/basket/internal/imbalance"
	"github.com/elys-network/basket/internal/vector"
)

// Penalty returns the signed adjustment for moving imbalance from before to
// after:
//
//	Δ > 0:  alpha_plus  · tanh(Δ / sigma_plus)   (charge, >= 0)
//	Δ < 0:  alpha_minus · tanh(Δ / sigma_minus)  (rebate, <= 0)
//	Δ = 0:  0
//
// The curve is continuous at Δ = 0 and monotone in Δ.
func Penalty(before, after fpdecimal.FPDecimal, params Params) (fpdecimal.FPDecimal, error) {
	if err := params.Validate(); err != nil {
		return fpdecimal.Zero, err
	}
	delta, err := after.Sub(before)
	if err != nil {
		return fpdecimal.Zero, fmt.Errorf("imbalance change: %w", err)
	}

	alpha, sigma := params.AlphaPlus, params.SigmaPlus
	switch delta.Sign() {
	case 0:
		return fpdecimal.Zero, nil
	case -1:
		alpha, sigma = params.AlphaMinus, params.SigmaMinus
	}
	return curve(delta, alpha, sigma)
}

func curve(x, alpha, sigma fpdecimal.FPDecimal) (fpdecimal.FPDecimal, error) {
	arg, err := x.Quo(sigma)
	if err != nil {
		return fpdecimal.Zero, err
	}
	t, err := fpdecimal.Tanh(arg)
	if err != nil {
		return fpdecimal.Zero, err
	}
	return alpha.Mul(t)
}

// Score is the imbalance change caused by adding delta to the inventory, per
// unit of traded value:
//
//	(imbalance(i + Δ) − imbalance(i)) / dot(Δ, p)
//
// A positive score means the trade worsens the basket.
func Score(inventory, delta, price, weight vector.Vector) (fpdecimal.FPDecimal, error) {
	after, err := vector.Add(inventory, delta)
	if err != nil {
		return fpdecimal.Zero, err
	}
	imb0, err := imbalance.Imbalance(inventory, price, weight)
	if err != nil {
		return fpdecimal.Zero, err
	}
	imb1, err := imbalance.Imbalance(after, price, weight)
	if err != nil {
		return fpdecimal.Zero, err
	}
	value, err := vector.Dot(delta, price)
	if err != nil {
		return fpdecimal.Zero, err
	}
	if value.IsZero() {
		return fpdecimal.Zero, fmt.Errorf("trade has no value: %w", fpdecimal.ErrDivisionByZero)
	}
	diff, err := imb1.Sub(imb0)
	if err != nil {
		return fpdecimal.Zero, err
	}
	return diff.Quo(value)
}

// Multiplier turns a score into the factor applied to a trade's value,
// 1 − Penalty(0, score). Worsening trades get a factor below one.
func Multiplier(score fpdecimal.FPDecimal, params Params) (fpdecimal.FPDecimal, error) {
	adj, err := Penalty(fpdecimal.Zero, score, params)
	if err != nil {
		return fpdecimal.Zero, err
	}
	return fpdecimal.One.Sub(adj)
}
