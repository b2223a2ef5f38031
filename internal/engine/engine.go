package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/elys-network/basket/internal/basket"
	"github.com/elys-network/basket/internal/fpdecimal"
	"github.com/elys-network/basket/internal/logger"
	"github.com/elys-network/basket/internal/metrics"
	"github.com/elys-network/basket/internal/penalty"
	"github.com/elys-network/basket/internal/state"
)

// Engine prices and executes basket trades against the store.
type Engine struct {
	// Core dependencies
	logger  zerolog.Logger
	store   state.Store
	heights HeightSource

	// Configuration
	configName string
	tau        uint64
	maxDrift   fpdecimal.FPDecimal

	// Runtime state
	mu         sync.Mutex // serializes read-modify-write of basket and smoothing state
	pricesMu   sync.RWMutex
	lastPrices map[string]fpdecimal.FPDecimal
	cycleCount int
}

// Config holds the configuration for creating a new Engine instance
type Config struct {
	Store      state.Store
	Heights    HeightSource
	ConfigName string
	TauBlocks  uint64
	MaxDrift   fpdecimal.FPDecimal
}

// NewEngine creates a new Engine instance with dependency injection
func NewEngine(cfg Config) (*Engine, error) {
	if err := validateEngineConfig(cfg); err != nil {
		return nil, fmt.Errorf("engine configuration validation failed: %w", err)
	}

	e := &Engine{
		logger:     logger.GetForComponent("basket_engine"),
		store:      cfg.Store,
		heights:    cfg.Heights,
		configName: cfg.ConfigName,
		tau:        cfg.TauBlocks,
		maxDrift:   cfg.MaxDrift,
	}

	e.logger.Info().
		Str("configName", e.configName).
		Uint64("tauBlocks", e.tau).
		Str("maxDrift", e.maxDrift.String()).
		Msg("Engine instance created")

	return e, nil
}

// validateEngineConfig validates the engine configuration
func validateEngineConfig(cfg Config) error {
	if cfg.Store == nil {
		return fmt.Errorf("store cannot be nil")
	}
	if cfg.Heights == nil {
		return fmt.Errorf("height source cannot be nil")
	}
	if cfg.ConfigName == "" {
		return fmt.Errorf("config name cannot be empty")
	}
	if cfg.TauBlocks == 0 {
		return fmt.Errorf("tau must be positive")
	}
	if cfg.MaxDrift.IsNeg() {
		return fmt.Errorf("max drift cannot be negative")
	}
	return nil
}

// Store exposes the engine's store for read-only endpoints.
func (e *Engine) Store() state.Store { return e.store }

// ConfigName is the penalty parameter set the engine prices with.
func (e *Engine) ConfigName() string { return e.configName }

func (e *Engine) quoter(params state.ParamsVersion) basket.Quoter {
	return basket.Quoter{Params: params.Params, Tau: e.tau, MaxDrift: e.maxDrift}
}

func (e *Engine) rememberPrices(prices map[string]fpdecimal.FPDecimal) {
	cp := make(map[string]fpdecimal.FPDecimal, len(prices))
	for k, v := range prices {
		cp[k] = v
	}
	e.pricesMu.Lock()
	e.lastPrices = cp
	e.pricesMu.Unlock()
}

func (e *Engine) knownPrices() map[string]fpdecimal.FPDecimal {
	e.pricesMu.RLock()
	defer e.pricesMu.RUnlock()
	return e.lastPrices
}

// RunLoop runs a heartbeat cycle immediately and then on every tick until ctx is cancelled.
func (e *Engine) RunLoop(ctx context.Context, interval time.Duration) {
	e.logger.Info().
		Dur("interval", interval).
		Msg("Starting engine heartbeat loop")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run first cycle immediately
	e.cycleCount++
	e.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info().Msg("Engine loop stopped due to context cancellation")
			return
		case <-ticker.C:
			e.cycleCount++
			e.RunCycle(ctx)
		}
	}
}

// RunCycle observes the basket NAV at the current height with the last prices
// seen in a quote, advances the moving average and reports drift.
func (e *Engine) RunCycle(ctx context.Context) {
	cycleID := uuid.New().String()
	cycleLogger := e.logger.With().Str("cycle_id", cycleID).Int("cycle", e.cycleCount).Logger()

	prices := e.knownPrices()
	if prices == nil {
		cycleLogger.Debug().Msg("No prices observed yet, skipping heartbeat")
		metrics.LoopCyclesTotal.WithLabelValues("skipped").Inc()
		return
	}

	obs, err := e.observe(ctx, prices)
	if err != nil {
		cycleLogger.Error().Err(err).Msg("Heartbeat failed")
		metrics.LoopCyclesTotal.WithLabelValues("failed").Inc()
		return
	}

	metrics.LoopCyclesTotal.WithLabelValues("ok").Inc()
	cycleLogger.Info().
		Uint64("height", obs.Height).
		Str("nav", obs.NAV.String()).
		Str("ema", obs.Smoothing.EMA.String()).
		Str("drift", obs.Drift.String()).
		Msg("Heartbeat observed basket")
}

// Observation is one heartbeat reading.
type Observation struct {
	Height    uint64              `json:"height"`
	NAV       fpdecimal.FPDecimal `json:"nav"`
	Drift     fpdecimal.FPDecimal `json:"drift"`
	Smoothing penalty.Smoothing   `json:"smoothing"`
}

func (e *Engine) observe(ctx context.Context, prices map[string]fpdecimal.FPDecimal) (Observation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	height, err := e.heights.Height(ctx)
	if err != nil {
		return Observation{}, fmt.Errorf("height: %w", err)
	}
	st, err := e.store.BasketState(ctx)
	if err != nil {
		return Observation{}, err
	}
	comp, err := basket.NewComposition(st, prices)
	if err != nil {
		return Observation{}, err
	}
	nav, err := comp.NAV()
	if err != nil {
		return Observation{}, err
	}
	sm, err := e.store.Smoothing(ctx)
	if err != nil {
		return Observation{}, err
	}
	if height < sm.LastBlock {
		height = sm.LastBlock
	}
	next, err := sm.Update(height, nav, e.tau)
	if err != nil {
		return Observation{}, err
	}

	obs := Observation{Height: height, NAV: nav, Drift: fpdecimal.Zero, Smoothing: next}
	if scale := fpdecimal.Min(next.EMA, nav); scale.IsPos() {
		imb, err := comp.Imbalance()
		if err != nil {
			return Observation{}, err
		}
		if obs.Drift, err = imb.Quo(scale); err != nil {
			return Observation{}, err
		}
	}

	if err := e.store.SaveSmoothing(ctx, next); err != nil {
		return Observation{}, err
	}
	metrics.BasketNAV.Set(metrics.Float(nav))
	metrics.BasketDrift.Set(metrics.Float(obs.Drift))
	return obs, nil
}
