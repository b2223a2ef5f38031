// Package penalty prices the charge or rebate for a trade from the change in
// basket imbalance it causes.
package penalty

import (
	"errors"
	"fmt"

	"github.com/elys-network/basket/internal/fpdecimal"
)

var (
	ErrInvalidParams = errors.New("invalid penalty parameters")
	ErrStaleBlock    = errors.New("block height is behind the smoothing state")
)

// Params shapes the penalty curve.
//
// The plus pair applies when a trade worsens imbalance, the minus pair when it
// improves it. Alpha is the level the adjustment saturates at and sigma is the
// imbalance change at which tanh reaches ~0.76 of that level.
type Params struct {
	AlphaPlus  fpdecimal.FPDecimal `json:"alpha_plus" yaml:"alpha_plus"`
	SigmaPlus  fpdecimal.FPDecimal `json:"sigma_plus" yaml:"sigma_plus"`
	AlphaMinus fpdecimal.FPDecimal `json:"alpha_minus" yaml:"alpha_minus"`
	SigmaMinus fpdecimal.FPDecimal `json:"sigma_minus" yaml:"sigma_minus"`
}

// Validate requires non-negative alphas and strictly positive sigmas.
func (p Params) Validate() error {
	switch {
	case p.AlphaPlus.IsNeg():
		return fmt.Errorf("%w: alpha_plus is negative (%v)", ErrInvalidParams, p.AlphaPlus)
	case p.AlphaMinus.IsNeg():
		return fmt.Errorf("%w: alpha_minus is negative (%v)", ErrInvalidParams, p.AlphaMinus)
	case !p.SigmaPlus.IsPos():
		return fmt.Errorf("%w: sigma_plus must be positive (%v)", ErrInvalidParams, p.SigmaPlus)
	case !p.SigmaMinus.IsPos():
		return fmt.Errorf("%w: sigma_minus must be positive (%v)", ErrInvalidParams, p.SigmaMinus)
	}
	return nil
}

// Asymmetric reports whether worsening and improving trades are priced differently.
func (p Params) Asymmetric() bool {
	return !p.AlphaPlus.Equal(p.AlphaMinus) || !p.SigmaPlus.Equal(p.SigmaMinus)
}
