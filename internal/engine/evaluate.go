package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/elys-network/basket/internal/basket"
	"github.com/elys-network/basket/internal/fpdecimal"
	"github.com/elys-network/basket/internal/imbalance"
	"github.com/elys-network/basket/internal/penalty"
	"github.com/elys-network/basket/internal/state"
	"github.com/elys-network/basket/internal/types"
	"github.com/elys-network/basket/internal/vector"
)

var ErrNegativeInventory = errors.New("inventory after trade is negative")

// Analysis describes an inventory against its targets.
type Analysis struct {
	Imbalance       fpdecimal.FPDecimal `json:"imbalance"`
	Drift           fpdecimal.FPDecimal `json:"drift"`
	AllocationError vector.Vector       `json:"allocation_error"`
}

// Analyze computes imbalance, drift and the per-asset allocation error.
// Drift is zero for an inventory with no value.
func Analyze(inventory, prices, weights vector.Vector) (Analysis, error) {
	var (
		a   Analysis
		err error
	)
	if a.AllocationError, err = imbalance.AllocationError(inventory, prices, weights); err != nil {
		return Analysis{}, err
	}
	if a.Imbalance, err = imbalance.Imbalance(inventory, prices, weights); err != nil {
		return Analysis{}, err
	}
	a.Drift, err = imbalance.Drift(inventory, prices, weights)
	if errors.Is(err, fpdecimal.ErrDivisionByZero) && a.Imbalance.IsZero() {
		a.Drift, err = fpdecimal.Zero, nil
	}
	if err != nil {
		return Analysis{}, err
	}
	return a, nil
}

// Evaluation is the effect of a hypothetical trade.
type Evaluation struct {
	ImbalanceBefore fpdecimal.FPDecimal  `json:"imbalance_before"`
	ImbalanceAfter  fpdecimal.FPDecimal  `json:"imbalance_after"`
	DriftBefore     fpdecimal.FPDecimal  `json:"drift_before"`
	DriftAfter      fpdecimal.FPDecimal  `json:"drift_after"`
	Penalty         fpdecimal.FPDecimal  `json:"penalty"`
	Score           *fpdecimal.FPDecimal `json:"score,omitempty"` // absent for a trade with no value
}

// Evaluate prices adding delta to inventory. Drift on both sides is measured
// against the pre-trade value so the two are comparable.
func Evaluate(inventory, delta, prices, weights vector.Vector, params penalty.Params) (Evaluation, error) {
	after, err := vector.Add(inventory, delta)
	if err != nil {
		return Evaluation{}, err
	}
	for i, v := range after {
		if v.IsNeg() {
			return Evaluation{}, fmt.Errorf("%w: component %d is %s", ErrNegativeInventory, i, v)
		}
	}

	var ev Evaluation
	if ev.ImbalanceBefore, err = imbalance.Imbalance(inventory, prices, weights); err != nil {
		return Evaluation{}, err
	}
	if ev.ImbalanceAfter, err = imbalance.Imbalance(after, prices, weights); err != nil {
		return Evaluation{}, err
	}
	nav, err := vector.Dot(inventory, prices)
	if err != nil {
		return Evaluation{}, err
	}
	if nav.IsZero() {
		return Evaluation{}, fmt.Errorf("inventory has no value: %w", fpdecimal.ErrDivisionByZero)
	}
	if ev.DriftBefore, err = ev.ImbalanceBefore.Quo(nav); err != nil {
		return Evaluation{}, err
	}
	if ev.DriftAfter, err = ev.ImbalanceAfter.Quo(nav); err != nil {
		return Evaluation{}, err
	}
	if ev.Penalty, err = penalty.Penalty(ev.DriftBefore, ev.DriftAfter, params); err != nil {
		return Evaluation{}, err
	}

	score, err := penalty.Score(inventory, delta, prices, weights)
	switch {
	case err == nil:
		ev.Score = &score
	case !errors.Is(err, fpdecimal.ErrDivisionByZero):
		return Evaluation{}, err
	}
	return ev, nil
}

// ActiveParams returns the parameters quotes are currently priced with.
func (e *Engine) ActiveParams(ctx context.Context) (state.ParamsVersion, error) {
	return e.store.ActiveParams(ctx, e.configName)
}

// SetParams validates params and activates them as a new version.
func (e *Engine) SetParams(ctx context.Context, params penalty.Params) (state.ParamsVersion, error) {
	if err := params.Validate(); err != nil {
		return state.ParamsVersion{}, err
	}
	pv, err := e.store.SaveParams(ctx, e.configName, params)
	if err != nil {
		return state.ParamsVersion{}, err
	}
	e.logger.Info().
		Int("version", pv.Version).
		Str("alpha_plus", params.AlphaPlus.String()).
		Str("sigma_plus", params.SigmaPlus.String()).
		Str("alpha_minus", params.AlphaMinus.String()).
		Str("sigma_minus", params.SigmaMinus.String()).
		Msg("Activated penalty parameters")
	return pv, nil
}

// Seed stores defaults for whatever the store does not have yet: the
// penalty params and, when assets are given, an empty basket holding them.
// Existing state is left untouched.
func (e *Engine) Seed(ctx context.Context, params penalty.Params, def types.BasketState) error {
	if _, err := e.store.ActiveParams(ctx, e.configName); errors.Is(err, state.ErrNotFound) {
		if _, err := e.SetParams(ctx, params); err != nil {
			return fmt.Errorf("seeding params: %w", err)
		}
	} else if err != nil {
		return err
	}

	if len(def.Assets) == 0 {
		return nil
	}
	if err := basket.ValidateAssets(def.Assets); err != nil {
		return fmt.Errorf("basket definition: %w", err)
	}
	if _, err := e.store.BasketState(ctx); errors.Is(err, state.ErrNotFound) {
		if err := e.store.SaveBasketState(ctx, def); err != nil {
			return fmt.Errorf("seeding basket: %w", err)
		}
		e.logger.Info().Int("assets", len(def.Assets)).Msg("Seeded basket definition")
	} else if err != nil {
		return err
	}
	return nil
}
