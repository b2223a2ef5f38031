package penalty

import (
	"errors"
	"fmt"

	"github.com/elys-network/basket/internal/fpdecimal"
)

var ErrCutoffExceeded = errors.New("imbalance above the high penalty cutoff")

// NotionalParams shapes the piecewise notional curve. Cutoffs are fractions of
// the scale passed to Notional (usually min(EMA, NAV)); amounts are charged
// per unit of imbalance.
type NotionalParams struct {
	PenaltyAmtLo    fpdecimal.FPDecimal `json:"penalty_amt_lo" yaml:"penalty_amt_lo"`
	PenaltyCutoffLo fpdecimal.FPDecimal `json:"penalty_cutoff_lo" yaml:"penalty_cutoff_lo"`
	PenaltyAmtHi    fpdecimal.FPDecimal `json:"penalty_amt_hi" yaml:"penalty_amt_hi"`
	PenaltyCutoffHi fpdecimal.FPDecimal `json:"penalty_cutoff_hi" yaml:"penalty_cutoff_hi"`
	RewardAmt       fpdecimal.FPDecimal `json:"reward_amt" yaml:"reward_amt"`
	RewardCutoff    fpdecimal.FPDecimal `json:"reward_cutoff" yaml:"reward_cutoff"`
}

func (p NotionalParams) Validate() error {
	for name, v := range map[string]fpdecimal.FPDecimal{
		"penalty_amt_lo": p.PenaltyAmtLo, "penalty_cutoff_lo": p.PenaltyCutoffLo,
		"penalty_amt_hi": p.PenaltyAmtHi, "reward_amt": p.RewardAmt, "reward_cutoff": p.RewardCutoff,
	} {
		if v.IsNeg() {
			return fmt.Errorf("%w: %s is negative (%v)", ErrInvalidParams, name, v)
		}
	}
	if !p.PenaltyCutoffHi.GT(p.PenaltyCutoffLo) {
		return fmt.Errorf("%w: penalty_cutoff_hi %v must exceed penalty_cutoff_lo %v",
			ErrInvalidParams, p.PenaltyCutoffHi, p.PenaltyCutoffLo)
	}
	return nil
}

// Notional returns the charge (positive) or reward (negative), in value units,
// for moving imbalance from before to after.
//
// A worsening move pays the area under a curve that is flat at PenaltyAmtLo up
// to the low cutoff, rises linearly to PenaltyAmtHi at the high cutoff, and is
// flat beyond it. Ending above the high cutoff is refused. An improving move
// earns RewardAmt per unit of imbalance removed above the reward cutoff.
func Notional(before, after, scale fpdecimal.FPDecimal, p NotionalParams) (fpdecimal.FPDecimal, error) {
	if err := p.Validate(); err != nil {
		return fpdecimal.Zero, err
	}
	if !before.LT(after) {
		cutoff, err := p.RewardCutoff.Mul(scale)
		if err != nil {
			return fpdecimal.Zero, err
		}
		gain, err := fpdecimal.Max(before, cutoff).Sub(fpdecimal.Max(after, cutoff))
		if err != nil {
			return fpdecimal.Zero, err
		}
		reward, err := gain.Mul(p.RewardAmt)
		if err != nil {
			return fpdecimal.Zero, err
		}
		return reward.Neg(), nil
	}

	lo, err := p.PenaltyCutoffLo.Mul(scale)
	if err != nil {
		return fpdecimal.Zero, err
	}
	hi, err := p.PenaltyCutoffHi.Mul(scale)
	if err != nil {
		return fpdecimal.Zero, err
	}
	if after.GT(hi) {
		return fpdecimal.Zero, fmt.Errorf("%w: %v over %v", ErrCutoffExceeded, after, hi)
	}
	if !hi.GT(lo) {
		return fpdecimal.Zero, fmt.Errorf("%w: scale %v collapses the cutoffs", ErrInvalidParams, scale)
	}

	flat, err := span(fpdecimal.Min(before, lo), fpdecimal.Min(after, lo), p.PenaltyAmtLo)
	if err != nil {
		return fpdecimal.Zero, err
	}

	// trapezoid over the clipped middle section
	mid0 := fpdecimal.Min(fpdecimal.Max(before, lo), hi)
	mid1 := fpdecimal.Min(fpdecimal.Max(after, lo), hi)
	y0, err := p.rampAt(mid0, lo, hi)
	if err != nil {
		return fpdecimal.Zero, err
	}
	y1, err := p.rampAt(mid1, lo, hi)
	if err != nil {
		return fpdecimal.Zero, err
	}
	heights, err := y0.Add(y1)
	if err != nil {
		return fpdecimal.Zero, err
	}
	width, err := mid1.Sub(mid0)
	if err != nil {
		return fpdecimal.Zero, err
	}
	half, err := width.Quo(fpdecimal.New(2))
	if err != nil {
		return fpdecimal.Zero, err
	}
	ramp, err := heights.Mul(half)
	if err != nil {
		return fpdecimal.Zero, err
	}

	top, err := span(fpdecimal.Max(before, hi), fpdecimal.Max(after, hi), p.PenaltyAmtHi)
	if err != nil {
		return fpdecimal.Zero, err
	}

	total, err := flat.Add(ramp)
	if err != nil {
		return fpdecimal.Zero, err
	}
	return total.Add(top)
}

// rampAt is the linear section's height at x, for lo <= x <= hi.
func (p NotionalParams) rampAt(x, lo, hi fpdecimal.FPDecimal) (fpdecimal.FPDecimal, error) {
	rise, err := p.PenaltyAmtHi.Sub(p.PenaltyAmtLo)
	if err != nil {
		return fpdecimal.Zero, err
	}
	run, err := hi.Sub(lo)
	if err != nil {
		return fpdecimal.Zero, err
	}
	off, err := x.Sub(lo)
	if err != nil {
		return fpdecimal.Zero, err
	}
	y, err := off.Mul(rise)
	if err != nil {
		return fpdecimal.Zero, err
	}
	if y, err = y.Quo(run); err != nil {
		return fpdecimal.Zero, err
	}
	return y.Add(p.PenaltyAmtLo)
}

func span(from, to, rate fpdecimal.FPDecimal) (fpdecimal.FPDecimal, error) {
	w, err := to.Sub(from)
	if err != nil {
		return fpdecimal.Zero, err
	}
	return w.Mul(rate)
}
