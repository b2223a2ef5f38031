package basket

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	sdktypes "github.com/cosmos/cosmos-sdk/types"

	"github.com/elys-network/basket/internal/fpdecimal"
	"github.com/elys-network/basket/internal/imbalance"
	"github.com/elys-network/basket/internal/penalty"
	"github.com/elys-network/basket/internal/types"
	"github.com/elys-network/basket/internal/utils"
	"github.com/elys-network/basket/internal/vector"
)

// Quoter prices trades against a Composition. It holds no state of its own;
// the smoothing state goes in with every quote and the updated one comes out.
type Quoter struct {
	Params penalty.Params
	Tau    uint64
	// MaxDrift rejects trades that leave drift above it and higher than they
	// found it. Zero disables the check.
	MaxDrift fpdecimal.FPDecimal
}

// QuoteMint prices depositing coins for newly minted basket tokens. The deposit
// value is adjusted by the penalty for the drift change it causes, and the
// holder receives supply·value/nav basket tokens, truncated. The first mint
// into an empty basket is valued 1:1 with no penalty.
func (q Quoter) QuoteMint(
	comp Composition,
	deposit sdktypes.Coins,
	supply sdkmath.Int,
	smoothing penalty.Smoothing,
	height uint64,
) (types.Quote, penalty.Smoothing, error) {
	if err := deposit.Validate(); err != nil {
		return types.Quote{}, smoothing, fmt.Errorf("deposit: %w", err)
	}
	c, err := utils.CoinsToVector(deposit, comp.Assets)
	if err != nil {
		return types.Quote{}, smoothing, fmt.Errorf("deposit: %w", err)
	}
	tradeValue, err := vector.Dot(c, comp.Prices)
	if err != nil {
		return types.Quote{}, smoothing, err
	}
	if !tradeValue.IsPos() {
		return types.Quote{}, smoothing, ErrEmptyTrade
	}

	nav0, err := comp.NAV()
	if err != nil {
		return types.Quote{}, smoothing, err
	}
	after, err := vector.Add(comp.Inventory, c)
	if err != nil {
		return types.Quote{}, smoothing, err
	}
	nav1, err := vector.Dot(after, comp.Prices)
	if err != nil {
		return types.Quote{}, smoothing, err
	}

	quote := types.Quote{
		Kind:           types.QuoteMint,
		Coins:          deposit,
		TradeValue:     tradeValue,
		Value:          tradeValue,
		Penalty:        fpdecimal.Zero,
		NAVBefore:      nav0,
		NAVAfter:       nav1,
		InventoryAfter: comp.Holdings.Add(deposit...),
	}

	var minted fpdecimal.FPDecimal
	if supply.IsNil() || supply.IsZero() {
		minted = tradeValue
		if quote.DriftAfter, err = imbalance.Drift(after, comp.Prices, comp.Weights); err != nil {
			return types.Quote{}, smoothing, err
		}
	} else {
		if nav0.IsZero() {
			return types.Quote{}, smoothing, fmt.Errorf("basket has supply but no value: %w", fpdecimal.ErrDivisionByZero)
		}
		if err := q.assess(&quote, comp, after, smoothing, height); err != nil {
			return types.Quote{}, smoothing, err
		}
		// value = tradeValue·(1 − pen)
		keep, err := fpdecimal.One.Sub(quote.Penalty)
		if err != nil {
			return types.Quote{}, smoothing, err
		}
		if quote.Value, err = tradeValue.Mul(keep); err != nil {
			return types.Quote{}, smoothing, err
		}
		if !quote.Value.IsPos() {
			return types.Quote{}, smoothing, ErrPenaltyExceedsValue
		}
		if minted, err = shareOf(supply, comp.TokenPrecision, quote.Value, nav0); err != nil {
			return types.Quote{}, smoothing, err
		}
	}

	quote.BasketTokens, err = utils.DecimalToAmount(minted, comp.TokenPrecision, false)
	if err != nil {
		return types.Quote{}, smoothing, err
	}
	if quote.BasketTokens.IsZero() {
		return types.Quote{}, smoothing, fmt.Errorf("%w: deposit mints less than one base unit", ErrEmptyTrade)
	}
	quote.SupplyAfter = orZero(supply).Add(quote.BasketTokens)

	next, err := smoothing.Update(height, nav1, q.Tau)
	if err != nil {
		return types.Quote{}, smoothing, err
	}
	return quote, next, nil
}

// QuoteRedeem prices burning basket tokens for inventory.
//
// With no requested coins the holder gets amount/supply of every holding,
// truncated, with no penalty. Otherwise the requested coins are paid out and
// the token cost is ceil(supply·value/nav) where value is their priced value
// adjusted by the penalty. The cost may not exceed amount.
func (q Quoter) QuoteRedeem(
	comp Composition,
	amount sdkmath.Int,
	requested sdktypes.Coins,
	supply sdkmath.Int,
	smoothing penalty.Smoothing,
	height uint64,
) (types.Quote, penalty.Smoothing, error) {
	if supply.IsNil() || !supply.IsPositive() {
		return types.Quote{}, smoothing, ErrEmptyBasket
	}
	if amount.IsNil() || !amount.IsPositive() {
		return types.Quote{}, smoothing, fmt.Errorf("%w: amount must be positive", ErrEmptyTrade)
	}
	if amount.GT(supply) {
		return types.Quote{}, smoothing, fmt.Errorf("%w: %s exceeds supply %s", ErrInsufficientTokens, amount, supply)
	}
	nav0, err := comp.NAV()
	if err != nil {
		return types.Quote{}, smoothing, err
	}

	quote := types.Quote{
		Kind:      types.QuoteRedeem,
		Penalty:   fpdecimal.Zero,
		NAVBefore: nav0,
	}

	var r vector.Vector
	if requested.Empty() {
		quote.ProRata = true
		if r, err = q.proRata(comp, amount, supply); err != nil {
			return types.Quote{}, smoothing, err
		}
		if quote.Coins, err = utils.VectorToCoins(r, comp.Assets, false); err != nil {
			return types.Quote{}, smoothing, err
		}
		// pay out what truncation leaves, not the exact share
		if r, err = utils.CoinsToVector(quote.Coins, comp.Assets); err != nil {
			return types.Quote{}, smoothing, err
		}
		quote.BasketTokens = amount
	} else {
		if err := requested.Validate(); err != nil {
			return types.Quote{}, smoothing, fmt.Errorf("requested: %w", err)
		}
		if r, err = utils.CoinsToVector(requested, comp.Assets); err != nil {
			return types.Quote{}, smoothing, fmt.Errorf("requested: %w", err)
		}
		if !comp.Holdings.IsAllGTE(requested) {
			return types.Quote{}, smoothing, fmt.Errorf("%w: holding %s, requested %s", ErrInsufficientInventory, comp.Holdings, requested)
		}
		quote.Coins = requested
	}

	if quote.TradeValue, err = vector.Dot(r, comp.Prices); err != nil {
		return types.Quote{}, smoothing, err
	}
	quote.Value = quote.TradeValue
	after, err := vector.Sub(comp.Inventory, r)
	if err != nil {
		return types.Quote{}, smoothing, err
	}
	if quote.NAVAfter, err = vector.Dot(after, comp.Prices); err != nil {
		return types.Quote{}, smoothing, err
	}

	if quote.ProRata {
		if err := q.measure(&quote, comp, after, smoothing, height); err != nil {
			return types.Quote{}, smoothing, err
		}
	} else {
		if !quote.TradeValue.IsPos() {
			return types.Quote{}, smoothing, ErrEmptyTrade
		}
		if err := q.assess(&quote, comp, after, smoothing, height); err != nil {
			return types.Quote{}, smoothing, err
		}
		// value = tradeValue·(1 + pen)
		pay, err := fpdecimal.One.Add(quote.Penalty)
		if err != nil {
			return types.Quote{}, smoothing, err
		}
		if quote.Value, err = quote.TradeValue.Mul(pay); err != nil {
			return types.Quote{}, smoothing, err
		}
		if !quote.Value.IsPos() {
			return types.Quote{}, smoothing, ErrPenaltyExceedsValue
		}
		cost, err := shareOf(supply, comp.TokenPrecision, quote.Value, nav0)
		if err != nil {
			return types.Quote{}, smoothing, err
		}
		if quote.BasketTokens, err = utils.DecimalToAmount(cost, comp.TokenPrecision, true); err != nil {
			return types.Quote{}, smoothing, err
		}
		if quote.BasketTokens.GT(amount) {
			return types.Quote{}, smoothing, fmt.Errorf("%w: costs %s, offered %s", ErrInsufficientTokens, quote.BasketTokens, amount)
		}
	}

	inv, neg := comp.Holdings.SafeSub(quote.Coins...)
	if neg {
		return types.Quote{}, smoothing, fmt.Errorf("%w: holding %s, paying %s", ErrInsufficientInventory, comp.Holdings, quote.Coins)
	}
	quote.InventoryAfter = inv
	quote.SupplyAfter = supply.Sub(quote.BasketTokens)

	next, err := smoothing.Update(height, quote.NAVAfter, q.Tau)
	if err != nil {
		return types.Quote{}, smoothing, err
	}
	return quote, next, nil
}

// proRata returns inventory·amount/supply in whole tokens.
func (q Quoter) proRata(comp Composition, amount, supply sdkmath.Int) (vector.Vector, error) {
	m, err := utils.AmountToDecimal(amount, comp.TokenPrecision)
	if err != nil {
		return nil, err
	}
	n, err := utils.AmountToDecimal(supply, comp.TokenPrecision)
	if err != nil {
		return nil, err
	}
	scaled, err := vector.MulConst(comp.Inventory, m)
	if err != nil {
		return nil, err
	}
	return vector.DivConst(scaled, n)
}

// measure fills the drift before and after a trade, both against the same
// smoothed scale.
func (q Quoter) measure(quote *types.Quote, comp Composition, after vector.Vector, smoothing penalty.Smoothing, height uint64) error {
	scale, err := smoothing.Scale(height, quote.NAVBefore, q.Tau)
	if err != nil {
		return err
	}
	if scale.IsZero() {
		scale = quote.NAVBefore
	}
	if scale.IsZero() {
		quote.DriftBefore, quote.DriftAfter = fpdecimal.Zero, fpdecimal.Zero
		return nil
	}

	imb0, err := comp.Imbalance()
	if err != nil {
		return err
	}
	imb1, err := imbalance.Imbalance(after, comp.Prices, comp.Weights)
	if err != nil {
		return err
	}
	if quote.DriftBefore, err = imb0.Quo(scale); err != nil {
		return err
	}
	quote.DriftAfter, err = imb1.Quo(scale)
	return err
}

// assess measures drift, enforces MaxDrift and prices the change.
func (q Quoter) assess(quote *types.Quote, comp Composition, after vector.Vector, smoothing penalty.Smoothing, height uint64) error {
	if err := q.measure(quote, comp, after, smoothing, height); err != nil {
		return err
	}
	if q.MaxDrift.IsPos() && quote.DriftAfter.GT(q.MaxDrift) && quote.DriftAfter.GT(quote.DriftBefore) {
		return fmt.Errorf("%w: drift %s over limit %s", ErrImbalanceTooHigh, quote.DriftAfter, q.MaxDrift)
	}
	pen, err := penalty.Penalty(quote.DriftBefore, quote.DriftAfter, q.Params)
	if err != nil {
		return err
	}
	quote.Penalty = pen
	return nil
}

// shareOf returns supply·value/nav in whole basket tokens.
func shareOf(supply sdkmath.Int, precision int, value, nav fpdecimal.FPDecimal) (fpdecimal.FPDecimal, error) {
	n, err := utils.AmountToDecimal(supply, precision)
	if err != nil {
		return fpdecimal.Zero, err
	}
	num, err := n.Mul(value)
	if err != nil {
		return fpdecimal.Zero, err
	}
	return num.Quo(nav)
}

func orZero(v sdkmath.Int) sdkmath.Int {
	if v.IsNil() {
		return sdkmath.ZeroInt()
	}
	return v
}
