package engine

import (
	"context"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	sdktypes "github.com/cosmos/cosmos-sdk/types"
	"github.com/google/uuid"

	"github.com/elys-network/basket/internal/basket"
	"github.com/elys-network/basket/internal/fpdecimal"
	"github.com/elys-network/basket/internal/metrics"
	"github.com/elys-network/basket/internal/penalty"
	"github.com/elys-network/basket/internal/state"
	"github.com/elys-network/basket/internal/types"
)

// MintRequest deposits coins for basket tokens.
type MintRequest struct {
	Deposit sdktypes.Coins                 `json:"deposit"`
	Prices  map[string]fpdecimal.FPDecimal `json:"prices"`
	Height  uint64                         `json:"height,omitempty"` // zero uses the engine's height source
}

// RedeemRequest burns up to Amount basket tokens. An empty Requested redeems
// pro rata.
type RedeemRequest struct {
	Amount    sdkmath.Int                    `json:"amount"`
	Requested sdktypes.Coins                 `json:"requested,omitempty"`
	Prices    map[string]fpdecimal.FPDecimal `json:"prices"`
	Height    uint64                         `json:"height,omitempty"`
}

// snapshot is everything a quote is priced from.
type snapshot struct {
	params    state.ParamsVersion
	basket    types.BasketState
	comp      basket.Composition
	smoothing penalty.Smoothing
	height    uint64
}

func (e *Engine) load(ctx context.Context, prices map[string]fpdecimal.FPDecimal, height uint64) (snapshot, error) {
	var (
		snap snapshot
		err  error
	)
	if snap.params, err = e.store.ActiveParams(ctx, e.configName); err != nil {
		return snapshot{}, err
	}
	if snap.basket, err = e.store.BasketState(ctx); err != nil {
		return snapshot{}, err
	}
	if snap.smoothing, err = e.store.Smoothing(ctx); err != nil {
		return snapshot{}, err
	}
	if snap.comp, err = basket.NewComposition(snap.basket, prices); err != nil {
		return snapshot{}, err
	}
	snap.height = height
	if snap.height == 0 {
		if snap.height, err = e.heights.Height(ctx); err != nil {
			return snapshot{}, fmt.Errorf("height: %w", err)
		}
		// An explicit height may have pushed the smoothing past the clock.
		if snap.height < snap.smoothing.LastBlock {
			snap.height = snap.smoothing.LastBlock
		}
	}
	return snap, nil
}

// PreviewMint prices a mint without changing any state.
func (e *Engine) PreviewMint(ctx context.Context, req MintRequest) (types.Quote, error) {
	quote, _, _, err := e.quoteMint(ctx, req)
	if err != nil {
		return types.Quote{}, err
	}
	metrics.ObserveQuote(string(types.QuoteMint), metrics.OutcomePreviewed, quote.Penalty)
	return quote, nil
}

// ExecuteMint prices a mint and commits it.
func (e *Engine) ExecuteMint(ctx context.Context, req MintRequest) (types.QuoteRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	quote, next, snap, err := e.quoteMint(ctx, req)
	if err != nil {
		return types.QuoteRecord{}, err
	}
	return e.commit(ctx, quote, next, snap)
}

func (e *Engine) quoteMint(ctx context.Context, req MintRequest) (types.Quote, penalty.Smoothing, snapshot, error) {
	snap, err := e.load(ctx, req.Prices, req.Height)
	if err != nil {
		metrics.RejectQuote(string(types.QuoteMint))
		return types.Quote{}, penalty.Smoothing{}, snapshot{}, err
	}
	quote, next, err := e.quoter(snap.params).QuoteMint(snap.comp, req.Deposit, snap.basket.SupplyOrZero(), snap.smoothing, snap.height)
	if err != nil {
		metrics.RejectQuote(string(types.QuoteMint))
		return types.Quote{}, penalty.Smoothing{}, snapshot{}, err
	}
	e.rememberPrices(req.Prices)
	return quote, next, snap, nil
}

// PreviewRedeem prices a redeem without changing any state.
func (e *Engine) PreviewRedeem(ctx context.Context, req RedeemRequest) (types.Quote, error) {
	quote, _, _, err := e.quoteRedeem(ctx, req)
	if err != nil {
		return types.Quote{}, err
	}
	metrics.ObserveQuote(string(types.QuoteRedeem), metrics.OutcomePreviewed, quote.Penalty)
	return quote, nil
}

// ExecuteRedeem prices a redeem and commits it.
func (e *Engine) ExecuteRedeem(ctx context.Context, req RedeemRequest) (types.QuoteRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	quote, next, snap, err := e.quoteRedeem(ctx, req)
	if err != nil {
		return types.QuoteRecord{}, err
	}
	return e.commit(ctx, quote, next, snap)
}

func (e *Engine) quoteRedeem(ctx context.Context, req RedeemRequest) (types.Quote, penalty.Smoothing, snapshot, error) {
	snap, err := e.load(ctx, req.Prices, req.Height)
	if err != nil {
		metrics.RejectQuote(string(types.QuoteRedeem))
		return types.Quote{}, penalty.Smoothing{}, snapshot{}, err
	}
	quote, next, err := e.quoter(snap.params).QuoteRedeem(snap.comp, req.Amount, req.Requested, snap.basket.SupplyOrZero(), snap.smoothing, snap.height)
	if err != nil {
		metrics.RejectQuote(string(types.QuoteRedeem))
		return types.Quote{}, penalty.Smoothing{}, snapshot{}, err
	}
	e.rememberPrices(req.Prices)
	return quote, next, snap, nil
}

func (e *Engine) commit(ctx context.Context, quote types.Quote, next penalty.Smoothing, snap snapshot) (types.QuoteRecord, error) {
	rec := types.QuoteRecord{
		QuoteID:     uuid.New().String(),
		BlockHeight: snap.height,
		ParamsID:    snap.params.ID,
		Timestamp:   time.Now().UTC(),
		Quote:       quote,
	}

	updated := snap.basket
	updated.Inventory = quote.InventoryAfter
	updated.Supply = quote.SupplyAfter

	if err := e.store.CommitQuote(ctx, rec, updated, next); err != nil {
		return types.QuoteRecord{}, fmt.Errorf("committing quote: %w", err)
	}

	metrics.ObserveQuote(string(quote.Kind), metrics.OutcomeExecuted, quote.Penalty)
	metrics.BasketNAV.Set(metrics.Float(quote.NAVAfter))
	metrics.BasketDrift.Set(metrics.Float(quote.DriftAfter))

	e.logger.Info().
		Str("quote_id", rec.QuoteID).
		Str("kind", string(quote.Kind)).
		Uint64("height", rec.BlockHeight).
		Str("coins", quote.Coins.String()).
		Str("basket_tokens", quote.BasketTokens.String()).
		Str("penalty", quote.Penalty.String()).
		Str("drift_after", quote.DriftAfter.String()).
		Msg("Quote executed")
	return rec, nil
}
