package penalty

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/basket/internal/fpdecimal"
)

// DefaultTau is the EMA time constant in blocks, roughly one hour.
const DefaultTau uint64 = 600

// Smoothing is the exponential moving average of basket NAV. It is owned by
// the caller; the methods below return new values and never mutate.
type Smoothing struct {
	EMA       fpdecimal.FPDecimal `json:"ema"`
	LastBlock uint64              `json:"last_block"`
}

// At returns the EMA as it would read at height after observing nav:
//
//	factor = exp(-(height - last) / tau)
//	ema'   = factor·ema + (1 - factor)·nav
//
// The first observation (LastBlock == 0) reads as nav itself.
func (s Smoothing) At(height uint64, nav fpdecimal.FPDecimal, tau uint64) (fpdecimal.FPDecimal, error) {
	if tau == 0 {
		return fpdecimal.Zero, fmt.Errorf("%w: tau must be positive", ErrInvalidParams)
	}
	if s.LastBlock == 0 {
		return nav, nil
	}
	if height < s.LastBlock {
		return fpdecimal.Zero, fmt.Errorf("%w: height %d, last %d", ErrStaleBlock, height, s.LastBlock)
	}

	dt, err := fpdecimal.NewFromInt(sdkmath.NewIntFromUint64(height - s.LastBlock))
	if err != nil {
		return fpdecimal.Zero, err
	}
	window, err := fpdecimal.NewFromInt(sdkmath.NewIntFromUint64(tau))
	if err != nil {
		return fpdecimal.Zero, err
	}
	ratio, err := dt.Quo(window)
	if err != nil {
		return fpdecimal.Zero, err
	}
	factor, err := fpdecimal.Exp(ratio.Neg())
	if err != nil {
		return fpdecimal.Zero, err
	}
	kept, err := factor.Mul(s.EMA)
	if err != nil {
		return fpdecimal.Zero, err
	}
	rest, err := fpdecimal.One.Sub(factor)
	if err != nil {
		return fpdecimal.Zero, err
	}
	fresh, err := rest.Mul(nav)
	if err != nil {
		return fpdecimal.Zero, err
	}
	return kept.Add(fresh)
}

// Update returns the smoothing state after observing nav at height.
func (s Smoothing) Update(height uint64, nav fpdecimal.FPDecimal, tau uint64) (Smoothing, error) {
	ema, err := s.At(height, nav, tau)
	if err != nil {
		return s, err
	}
	return Smoothing{EMA: ema, LastBlock: height}, nil
}

// Scale returns min(EMA at height, nav), the value imbalance is measured
// against. It never exceeds the current NAV.
func (s Smoothing) Scale(height uint64, nav fpdecimal.FPDecimal, tau uint64) (fpdecimal.FPDecimal, error) {
	ema, err := s.At(height, nav, tau)
	if err != nil {
		return fpdecimal.Zero, err
	}
	return fpdecimal.Min(ema, nav), nil
}
