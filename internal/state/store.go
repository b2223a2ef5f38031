// Package state persists the basket: penalty parameter versions, the NAV
// smoothing state, the basket's holdings and the record of executed quotes.
// PostgreSQL is the source of truth, Redis an optional read-through cache and
// the in-memory store serves tests and local runs.
package state

import (
	"context"
	"errors"
	"time"

	"github.com/elys-network/basket/internal/penalty"
	"github.com/elys-network/basket/internal/types"
)

var ErrNotFound = errors.New("not found")

// ParamsVersion is one saved version of a named penalty parameter set.
type ParamsVersion struct {
	ID          int64          `json:"params_id"`
	ConfigName  string         `json:"config_name"`
	Version     int            `json:"version"`
	Params      penalty.Params `json:"params"`
	ActivatedAt time.Time      `json:"activated_at"`
}

// Store is the persistence interface.
type Store interface {
	// ActiveParams returns the active version of a parameter set, ErrNotFound if none.
	ActiveParams(ctx context.Context, configName string) (ParamsVersion, error)
	// SaveParams stores params as the next version of configName and activates it.
	SaveParams(ctx context.Context, configName string, params penalty.Params) (ParamsVersion, error)
	// ParamsHistory lists versions of configName, newest first.
	ParamsHistory(ctx context.Context, configName string, limit int) ([]ParamsVersion, error)

	// Smoothing returns the NAV smoothing state, the zero value before the first save.
	Smoothing(ctx context.Context) (penalty.Smoothing, error)
	SaveSmoothing(ctx context.Context, s penalty.Smoothing) error

	// BasketState returns the basket definition and holdings, ErrNotFound before seeding.
	BasketState(ctx context.Context) (types.BasketState, error)
	SaveBasketState(ctx context.Context, b types.BasketState) error

	// CommitQuote records an executed quote together with the basket and
	// smoothing state it produced, all or nothing.
	CommitQuote(ctx context.Context, rec types.QuoteRecord, basket types.BasketState, s penalty.Smoothing) error
	GetQuote(ctx context.Context, id string) (types.QuoteRecord, error)
	// RecentQuotes lists executed quotes, newest first.
	RecentQuotes(ctx context.Context, limit int) ([]types.QuoteRecord, error)
	QuoteStats(ctx context.Context) (types.QuoteStats, error)

	Ping(ctx context.Context) error
}
