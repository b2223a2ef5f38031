package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/elys-network/basket/internal/fpdecimal"
)

// Store modes accepted in STORE.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// WebPort is the port the HTTP API listens on.
	WebPort string

	// LogLevel is one of zerolog's level names, "info" when unset.
	LogLevel string
	// LogFormat is "console" or "json".
	LogFormat string

	// StoreMode selects the persistence backend, StorePostgres or StoreMemory.
	StoreMode string

	// DB connection settings, required when StoreMode is StorePostgres.
	DBHost     string
	DBPort     uint64
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// RedisAddr enables the read-through cache in front of the store when set.
	RedisAddr string
	// CacheTTLSeconds bounds how long cached params and smoothing state live.
	CacheTTLSeconds uint64

	// ParamsConfigName names the penalty parameter set this instance reads and writes.
	ParamsConfigName string
	// PenaltyParamsFile optionally points at a YAML file that seeds params and the basket definition.
	PenaltyParamsFile string

	// EMATauBlocks is the time constant of the NAV moving average.
	EMATauBlocks uint64
	// MaxDrift rejects trades that push drift above it. Zero disables the limit.
	MaxDrift fpdecimal.FPDecimal

	// LoopIntervalSeconds is the period of the engine's heartbeat loop.
	LoopIntervalSeconds uint64
	// BlockTimeSeconds is the assumed block time of the heartbeat height source.
	BlockTimeSeconds uint64
)

// LoadConfig loads configuration from environment variables and sets the global config vars.
// Database variables are required in postgres mode; everything else has a default.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	WebPort = getEnvOrDefault("WEB_PORT", "8080")
	LogLevel = getEnvOrDefault("LOG_LEVEL", "info")
	LogFormat = getEnvOrDefault("LOG_FORMAT", "console")
	ParamsConfigName = getEnvOrDefault("PARAMS_CONFIG_NAME", "default")
	PenaltyParamsFile = getEnvOrDefault("PENALTY_PARAMS_FILE", "")
	RedisAddr = getEnvOrDefault("REDIS_ADDR", "")

	StoreMode = getEnvOrDefault("STORE", StorePostgres)
	switch StoreMode {
	case StorePostgres:
		if err := loadDBConfig(); err != nil {
			return err
		}
	case StoreMemory:
	default:
		return errors.New("environment variable STORE must be " + StorePostgres + " or " + StoreMemory + ", got: " + StoreMode)
	}

	if EMATauBlocks, err = getEnvAsUint64OrDefault("EMA_TAU_BLOCKS", DefaultTauBlocks); err != nil {
		return err
	}
	if EMATauBlocks == 0 {
		return errors.New("environment variable EMA_TAU_BLOCKS must be positive")
	}
	if CacheTTLSeconds, err = getEnvAsUint64OrDefault("CACHE_TTL_SECONDS", DefaultCacheTTLSeconds); err != nil {
		return err
	}
	if LoopIntervalSeconds, err = getEnvAsUint64OrDefault("LOOP_INTERVAL_SECONDS", DefaultLoopIntervalSeconds); err != nil {
		return err
	}
	if BlockTimeSeconds, err = getEnvAsUint64OrDefault("BLOCK_TIME_SECONDS", DefaultBlockTimeSeconds); err != nil {
		return err
	}
	if BlockTimeSeconds == 0 {
		return errors.New("environment variable BLOCK_TIME_SECONDS must be positive")
	}
	if MaxDrift, err = getEnvAsDecimalOrDefault("MAX_DRIFT", DefaultMaxDrift); err != nil {
		return err
	}
	if MaxDrift.IsNeg() {
		return errors.New("environment variable MAX_DRIFT must not be negative")
	}

	log.Debug().
		Str("StoreMode", StoreMode).
		Str("ParamsConfigName", ParamsConfigName).
		Uint64("EMATauBlocks", EMATauBlocks).
		Str("MaxDrift", MaxDrift.String()).
		Bool("RedisCache", RedisAddr != "").
		Msg("Configuration loaded successfully.")

	return nil
}

func loadDBConfig() error {
	var err error

	if DBHost, err = getEnv("DB_HOST"); err != nil {
		return err
	}
	if DBPort, err = getEnvAsUint64OrDefault("DB_PORT", 5432); err != nil {
		return err
	}
	if DBUser, err = getEnv("DB_USER"); err != nil {
		return err
	}
	if DBPassword, err = getEnv("DB_PASSWORD"); err != nil {
		return err
	}
	if DBName, err = getEnv("DB_NAME"); err != nil {
		return err
	}
	DBSSLMode = getEnvOrDefault("DB_SSLMODE", "disable")
	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvOrDefault retrieves a string environment variable, falling back to def when unset or empty.
func getEnvOrDefault(key, def string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return def
}

// getEnvAsUint64 retrieves an environment variable as a uint64. Returns error if not set or invalid.
func getEnvAsUint64(key string) (uint64, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid uint64, got: " + valueStr)
	}
	return value, nil
}

func getEnvAsUint64OrDefault(key string, def uint64) (uint64, error) {
	if getEnvOrDefault(key, "") == "" {
		return def, nil
	}
	return getEnvAsUint64(key)
}

// getEnvAsDecimal retrieves an environment variable as a fixed-point decimal. Returns error if not set or invalid.
func getEnvAsDecimal(key string) (fpdecimal.FPDecimal, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return fpdecimal.Zero, err
	}
	value, err := fpdecimal.Parse(valueStr)
	if err != nil {
		return fpdecimal.Zero, errors.New("environment variable " + key + " must be a valid decimal, got: " + valueStr)
	}
	return value, nil
}

func getEnvAsDecimalOrDefault(key string, def fpdecimal.FPDecimal) (fpdecimal.FPDecimal, error) {
	if getEnvOrDefault(key, "") == "" {
		return def, nil
	}
	return getEnvAsDecimal(key)
}
