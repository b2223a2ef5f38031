// Package basket quotes mints and redeems against a weighted multi-asset
// basket, charging or rebating each trade by how it moves the basket away
// from or toward its target weights.
package basket

import (
	"errors"
	"fmt"

	sdktypes "github.com/cosmos/cosmos-sdk/types"

	"github.com/elys-network/basket/internal/fpdecimal"
	"github.com/elys-network/basket/internal/imbalance"
	"github.com/elys-network/basket/internal/types"
	"github.com/elys-network/basket/internal/utils"
	"github.com/elys-network/basket/internal/vector"
)

var (
	ErrNoAssets              = errors.New("basket has no assets")
	ErrDuplicateAsset        = errors.New("asset listed twice")
	ErrEmptyTrade            = errors.New("trade has no value")
	ErrEmptyBasket           = errors.New("basket has no supply to redeem")
	ErrInsufficientTokens    = errors.New("not enough basket tokens")
	ErrInsufficientInventory = errors.New("not enough inventory")
	ErrImbalanceTooHigh      = errors.New("basket imbalance too high")
	ErrPenaltyExceedsValue   = errors.New("penalty consumes the whole trade value")
)

// Composition is a basket laid out as vectors in asset order, priced.
type Composition struct {
	Assets    []types.Asset
	Inventory vector.Vector // whole tokens
	Prices    vector.Vector // per whole token
	Weights   vector.Vector

	Holdings       sdktypes.Coins // Inventory in base units
	TokenPrecision int            // of the basket token
}

// NewComposition lays out state with the given per-denom prices.
func NewComposition(state types.BasketState, prices map[string]fpdecimal.FPDecimal) (Composition, error) {
	if err := ValidateAssets(state.Assets); err != nil {
		return Composition{}, err
	}
	if state.TokenPrecision < 0 || state.TokenPrecision > fpdecimal.Precision {
		return Composition{}, fmt.Errorf("basket token: %w", utils.ErrInvalidPrecision)
	}
	inv, err := utils.CoinsToVector(state.Inventory, state.Assets)
	if err != nil {
		return Composition{}, fmt.Errorf("inventory: %w", err)
	}
	p, err := utils.PricesToVector(prices, state.Assets)
	if err != nil {
		return Composition{}, err
	}
	return Composition{
		Assets:    state.Assets,
		Inventory: inv,
		Prices:    p,
		Weights:   utils.WeightsVector(state.Assets),

		Holdings:       state.Inventory,
		TokenPrecision: state.TokenPrecision,
	}, nil
}

// ValidateAssets checks denoms, precisions and weights of a basket definition.
func ValidateAssets(assets []types.Asset) error {
	if len(assets) == 0 {
		return ErrNoAssets
	}
	seen := make(map[string]struct{}, len(assets))
	for _, a := range assets {
		if err := sdktypes.ValidateDenom(a.Denom); err != nil {
			return err
		}
		if _, ok := seen[a.Denom]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateAsset, a.Denom)
		}
		seen[a.Denom] = struct{}{}
		if a.Precision < 0 || a.Precision > fpdecimal.Precision {
			return fmt.Errorf("%s: %w", a.Denom, utils.ErrInvalidPrecision)
		}
		if a.TargetWeight.IsNeg() {
			return fmt.Errorf("%s: %w", a.Denom, imbalance.ErrNegativeComponent)
		}
	}
	return nil
}

// NAV is the priced value of the inventory.
func (c Composition) NAV() (fpdecimal.FPDecimal, error) {
	return vector.Dot(c.Inventory, c.Prices)
}

// Imbalance of the current inventory.
func (c Composition) Imbalance() (fpdecimal.FPDecimal, error) {
	return imbalance.Imbalance(c.Inventory, c.Prices, c.Weights)
}

// AllocationError of the current inventory, one entry per asset.
func (c Composition) AllocationError() (vector.Vector, error) {
	return imbalance.AllocationError(c.Inventory, c.Prices, c.Weights)
}
