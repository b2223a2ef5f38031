package state

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/elys-network/basket/internal/fpdecimal"
	"github.com/elys-network/basket/internal/penalty"
	"github.com/elys-network/basket/internal/types"
)

// MemoryStore implements Store with in-memory maps. Used for testing
// and local runs. Nothing survives a restart.
type MemoryStore struct {
	mu        sync.RWMutex
	params    map[string][]ParamsVersion // by config name, oldest first
	nextID    int64
	smoothing penalty.Smoothing
	basket    *types.BasketState
	quotes    []types.QuoteRecord
	byID      map[string]int
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		params: make(map[string][]ParamsVersion),
		byID:   make(map[string]int),
	}
}

func (s *MemoryStore) ActiveParams(_ context.Context, configName string) (ParamsVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions := s.params[configName]
	if len(versions) == 0 {
		return ParamsVersion{}, fmt.Errorf("no active penalty parameters for %s: %w", configName, ErrNotFound)
	}
	return versions[len(versions)-1], nil
}

func (s *MemoryStore) SaveParams(_ context.Context, configName string, params penalty.Params) (ParamsVersion, error) {
	if err := params.Validate(); err != nil {
		return ParamsVersion{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	pv := ParamsVersion{
		ID:          s.nextID,
		ConfigName:  configName,
		Version:     len(s.params[configName]) + 1,
		Params:      params,
		ActivatedAt: time.Now().UTC(),
	}
	s.params[configName] = append(s.params[configName], pv)
	return pv, nil
}

func (s *MemoryStore) ParamsHistory(_ context.Context, configName string, limit int) ([]ParamsVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions := s.params[configName]
	history := make([]ParamsVersion, 0, min(limit, len(versions)))
	for i := len(versions) - 1; i >= 0 && len(history) < limit; i-- {
		history = append(history, versions[i])
	}
	return history, nil
}

func (s *MemoryStore) Smoothing(_ context.Context) (penalty.Smoothing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.smoothing, nil
}

func (s *MemoryStore) SaveSmoothing(_ context.Context, sm penalty.Smoothing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.smoothing = sm
	return nil
}

func (s *MemoryStore) BasketState(_ context.Context) (types.BasketState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.basket == nil {
		return types.BasketState{}, fmt.Errorf("basket state: %w", ErrNotFound)
	}
	return copyBasket(*s.basket), nil
}

func (s *MemoryStore) SaveBasketState(_ context.Context, b types.BasketState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveBasketLocked(b)
	return nil
}

func (s *MemoryStore) saveBasketLocked(b types.BasketState) {
	c := copyBasket(b)
	c.Supply = b.SupplyOrZero()
	c.UpdatedAt = time.Now().UTC()
	s.basket = &c
}

func (s *MemoryStore) CommitQuote(_ context.Context, rec types.QuoteRecord, b types.BasketState, sm penalty.Smoothing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[rec.QuoteID]; ok {
		return fmt.Errorf("quote %s already recorded", rec.QuoteID)
	}
	s.byID[rec.QuoteID] = len(s.quotes)
	s.quotes = append(s.quotes, rec)
	s.saveBasketLocked(b)
	s.smoothing = sm
	return nil
}

func (s *MemoryStore) GetQuote(_ context.Context, id string) (types.QuoteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return types.QuoteRecord{}, fmt.Errorf("quote %s: %w", id, ErrNotFound)
	}
	return s.quotes[i], nil
}

func (s *MemoryStore) RecentQuotes(_ context.Context, limit int) ([]types.QuoteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quotes := make([]types.QuoteRecord, len(s.quotes))
	copy(quotes, s.quotes)
	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].Timestamp.After(quotes[j].Timestamp)
	})
	if len(quotes) > limit {
		quotes = quotes[:limit]
	}
	return quotes, nil
}

func (s *MemoryStore) QuoteStats(_ context.Context) (types.QuoteStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.QuoteStats{PenaltiesCharged: fpdecimal.Zero, RebatesPaid: fpdecimal.Zero}
	for _, q := range s.quotes {
		switch q.Kind {
		case types.QuoteMint:
			stats.Mints++
		case types.QuoteRedeem:
			stats.Redeems++
		}
		if q.ProRata {
			stats.ProRataRedeems++
		}

		gap, err := q.Value.Sub(q.TradeValue)
		if err != nil {
			return types.QuoteStats{}, err
		}
		switch q.Penalty.Sign() {
		case 1:
			stats.PenaltiesCharged, err = stats.PenaltiesCharged.Add(gap.Abs())
		case -1:
			stats.RebatesPaid, err = stats.RebatesPaid.Add(gap.Abs())
		}
		if err != nil {
			return types.QuoteStats{}, err
		}

		if stats.LastQuoteAt == nil || q.Timestamp.After(*stats.LastQuoteAt) {
			ts := q.Timestamp
			stats.LastQuoteAt = &ts
		}
	}
	return stats, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// copyBasket detaches the slices so callers cannot mutate stored state.
func copyBasket(b types.BasketState) types.BasketState {
	c := b
	c.Assets = append([]types.Asset(nil), b.Assets...)
	if b.Inventory != nil {
		c.Inventory = append(b.Inventory[:0:0], b.Inventory...)
	}
	return c
}
