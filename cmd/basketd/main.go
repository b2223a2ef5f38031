package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/elys-network/basket/internal/config"
	"github.com/elys-network/basket/internal/engine"
	"github.com/elys-network/basket/internal/fpdecimal"
	"github.com/elys-network/basket/internal/logger"
	"github.com/elys-network/basket/internal/state"
	"github.com/elys-network/basket/internal/types"
	"github.com/elys-network/basket/internal/web"
)

const shutdownTimeout = 10 * time.Second

// main is the entry point for the basket pricing service.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(config.LogLevel, config.LogFormat)
	log.Info().Msg("Basket service starting...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- 2. Store ---
	store := openStore()
	defer state.CloseDB()

	// --- 3. Basket definition and penalty parameters ---
	params := config.DefaultPenaltyParams
	tau := config.EMATauBlocks
	maxDrift := config.MaxDrift
	def := types.BasketState{TokenPrecision: config.DefaultTokenPrecision}

	if config.PenaltyParamsFile != "" {
		file, err := config.LoadParamsFile(config.PenaltyParamsFile)
		if err != nil {
			log.Fatal().Err(err).Str("path", config.PenaltyParamsFile).Msg("Failed to load params file")
		}
		params = *file.Penalty
		tau = file.TauBlocks
		maxDrift = *file.MaxDrift
		def.TokenPrecision = *file.TokenPrecision
		def.Assets = file.BasketAssets()
		log.Info().
			Str("path", config.PenaltyParamsFile).
			Int("assets", len(def.Assets)).
			Msg("Loaded params file")
	}

	// Heartbeat heights continue from wherever the smoothing state left off.
	sm, err := store.Smoothing(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read smoothing state")
	}
	heights := engine.NewHeartbeat(sm.LastBlock, time.Duration(config.BlockTimeSeconds)*time.Second)

	// --- 4. Create Engine with Dependency Injection ---
	eng, err := engine.NewEngine(engine.Config{
		Store:      store,
		Heights:    heights,
		ConfigName: config.ParamsConfigName,
		TauBlocks:  tau,
		MaxDrift:   maxDrift,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create engine")
	}
	if err := eng.Seed(ctx, params, def); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed basket state")
	}
	logActiveParams(ctx, eng, tau, maxDrift)

	// --- 5. Start Web Server ---
	webServer := web.NewWebServer(config.WebPort, eng)
	go func() {
		log.Info().Str("port", config.WebPort).Str("url", "http://localhost:"+config.WebPort).Msg("Starting basket API")
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed")
			stop()
		}
	}()

	// --- 6. Run the heartbeat loop until signalled ---
	interval := time.Duration(config.LoopIntervalSeconds) * time.Second
	if interval > 0 {
		log.Info().Str("interval", interval.String()).Msg("Starting engine loop")
		go eng.RunLoop(ctx, interval)
	}

	<-ctx.Done()
	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := webServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Web server shutdown failed")
	}
	log.Info().Msg("Basket service stopped")
}

// openStore builds the configured store, wrapped in the Redis cache when REDIS_ADDR is set.
func openStore() state.Store {
	var store state.Store

	switch config.StoreMode {
	case config.StoreMemory:
		log.Warn().Msg("Using in-memory store. State is lost on restart.")
		store = state.NewMemoryStore()
	default:
		dbCfg := state.DBConfig{
			Host:     config.DBHost,
			Port:     int(config.DBPort),
			User:     config.DBUser,
			Password: config.DBPassword,
			DBName:   config.DBName,
			SSLMode:  config.DBSSLMode,
		}
		if err := state.InitDB(dbCfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		if err := state.EnsureSchema(); err != nil {
			log.Fatal().Err(err).Msg("Failed to ensure database schema")
		}
		store = state.NewPostgresStore(state.DB)
	}

	if config.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: config.RedisAddr})
		ttl := time.Duration(config.CacheTTLSeconds) * time.Second
		log.Info().Str("addr", config.RedisAddr).Str("ttl", ttl.String()).Msg("Caching store reads in Redis")
		store = state.NewCachedStore(store, rdb, ttl)
	}
	return store
}

func logActiveParams(ctx context.Context, eng *engine.Engine, tau uint64, maxDrift fpdecimal.FPDecimal) {
	pv, err := eng.ActiveParams(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("No active penalty parameters after seeding")
	}
	log.Info().
		Str("config_name", pv.ConfigName).
		Int("version", pv.Version).
		Bool("asymmetric", pv.Params.Asymmetric()).
		Uint64("tau_blocks", tau).
		Str("max_drift", maxDrift.String()).
		Msg("Penalty parameters loaded successfully.")
}
