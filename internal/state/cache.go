package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/elys-network/basket/internal/penalty"
	"github.com/elys-network/basket/internal/types"
)

// CachedStore wraps a primary Store with a Redis read-through cache for the
// reads every quote makes. Writes go to the primary store, bump a generation
// counter, then invalidate the cache. Reads check Redis first then fall back to
// the primary, and only fill the cache if no write landed in between.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

var errStaleFill = errors.New("cache generation moved")

// --- Write-through (write to primary, invalidate cache) ---

func (s *CachedStore) SaveParams(ctx context.Context, configName string, params penalty.Params) (ParamsVersion, error) {
	pv, err := s.primary.SaveParams(ctx, configName, params)
	if err != nil {
		return ParamsVersion{}, err
	}
	s.invalidate(ctx, paramsKey(configName))
	return pv, nil
}

func (s *CachedStore) SaveSmoothing(ctx context.Context, sm penalty.Smoothing) error {
	if err := s.primary.SaveSmoothing(ctx, sm); err != nil {
		return err
	}
	s.invalidate(ctx, smoothingKey)
	return nil
}

func (s *CachedStore) SaveBasketState(ctx context.Context, b types.BasketState) error {
	if err := s.primary.SaveBasketState(ctx, b); err != nil {
		return err
	}
	s.invalidate(ctx, basketKey)
	return nil
}

func (s *CachedStore) CommitQuote(ctx context.Context, rec types.QuoteRecord, b types.BasketState, sm penalty.Smoothing) error {
	if err := s.primary.CommitQuote(ctx, rec, b, sm); err != nil {
		return err
	}
	s.invalidate(ctx, basketKey, smoothingKey)
	return nil
}

// --- Read-through (check cache first) ---

func (s *CachedStore) ActiveParams(ctx context.Context, configName string) (ParamsVersion, error) {
	var pv ParamsVersion
	if s.lookup(ctx, paramsKey(configName), &pv) {
		return pv, nil
	}
	gen, genOK := s.generation(ctx)
	pv, err := s.primary.ActiveParams(ctx, configName)
	if err != nil {
		return ParamsVersion{}, err
	}
	if genOK {
		s.fill(ctx, gen, paramsKey(configName), pv)
	}
	return pv, nil
}

func (s *CachedStore) Smoothing(ctx context.Context) (penalty.Smoothing, error) {
	var sm penalty.Smoothing
	if s.lookup(ctx, smoothingKey, &sm) {
		return sm, nil
	}
	gen, genOK := s.generation(ctx)
	sm, err := s.primary.Smoothing(ctx)
	if err != nil {
		return penalty.Smoothing{}, err
	}
	if genOK {
		s.fill(ctx, gen, smoothingKey, sm)
	}
	return sm, nil
}

func (s *CachedStore) BasketState(ctx context.Context) (types.BasketState, error) {
	var b types.BasketState
	if s.lookup(ctx, basketKey, &b) {
		return b, nil
	}
	gen, genOK := s.generation(ctx)
	b, err := s.primary.BasketState(ctx)
	if err != nil {
		return types.BasketState{}, err
	}
	if genOK {
		s.fill(ctx, gen, basketKey, b)
	}
	return b, nil
}

// --- Passthrough (not cached) ---

func (s *CachedStore) ParamsHistory(ctx context.Context, configName string, limit int) ([]ParamsVersion, error) {
	return s.primary.ParamsHistory(ctx, configName, limit)
}

func (s *CachedStore) GetQuote(ctx context.Context, id string) (types.QuoteRecord, error) {
	return s.primary.GetQuote(ctx, id)
}

func (s *CachedStore) RecentQuotes(ctx context.Context, limit int) ([]types.QuoteRecord, error) {
	return s.primary.RecentQuotes(ctx, limit)
}

func (s *CachedStore) QuoteStats(ctx context.Context) (types.QuoteStats, error) {
	return s.primary.QuoteStats(ctx)
}

func (s *CachedStore) Ping(ctx context.Context) error {
	if err := s.primary.Ping(ctx); err != nil {
		return err
	}
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}

// --- Cache helpers ---

// lookup reports a hit only when the entry exists and decodes.
func (s *CachedStore) lookup(ctx context.Context, key string, dst any) bool {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("key", key).Msg("Cache read failed, falling back to primary store")
		}
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

// generation returns the write counter, zero before the first write. It fails
// only when Redis cannot be read, in which case nothing should be cached.
func (s *CachedStore) generation(ctx context.Context) (int64, bool) {
	gen, err := s.rdb.Get(ctx, generationKey).Int64()
	switch {
	case err == nil:
		return gen, true
	case errors.Is(err, redis.Nil):
		return 0, true
	default:
		log.Warn().Err(err).Msg("Cache generation read failed, skipping fill")
		return 0, false
	}
}

// fill caches v under key if the generation is still the one seen before v was
// read from the primary. A write committed in between makes v stale.
func (s *CachedStore) fill(ctx context.Context, gen int64, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, generationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		return err
	}, generationKey)
	switch {
	case err == nil, errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
	default:
		log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

// invalidate bumps the generation before dropping keys, so a read that
// started before the write cannot put its stale value back.
func (s *CachedStore) invalidate(ctx context.Context, keys ...string) {
	if err := s.rdb.Incr(ctx, generationKey).Err(); err != nil {
		log.Warn().Err(err).Msg("Cache generation bump failed")
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("Cache invalidation failed")
	}
}

const (
	smoothingKey  = "basket:smoothing"
	basketKey     = "basket:state"
	generationKey = "basket:generation"
)

func paramsKey(configName string) string { return fmt.Sprintf("basket:params:%s", configName) }
