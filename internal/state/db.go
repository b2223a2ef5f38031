package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool.
var DB *sql.DB

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// DSN renders the config as a lib/pq connection string.
func (cfg DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	var err error
	DB, err = sql.Open("postgres", cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = DB.PingContext(ctx)
	if err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL database!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
	}
}

// Amounts are NUMERIC(78, 0) and decimals NUMERIC(78, 18): 78 digits covers a
// 256-bit magnitude.
const schemaSQL = `
	CREATE TABLE IF NOT EXISTS penalty_parameters (
		params_id SERIAL PRIMARY KEY,
		version INTEGER NOT NULL DEFAULT 1,
		config_name VARCHAR(255) NOT NULL DEFAULT 'default',
		is_active BOOLEAN NOT NULL DEFAULT FALSE,
		activated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		alpha_plus NUMERIC(78, 18) NOT NULL,
		sigma_plus NUMERIC(78, 18) NOT NULL,
		alpha_minus NUMERIC(78, 18) NOT NULL,
		sigma_minus NUMERIC(78, 18) NOT NULL,
		CONSTRAINT uq_penalty_parameters_config_version UNIQUE (config_name, version)
	);
	CREATE INDEX IF NOT EXISTS idx_penalty_parameters_config_active_timestamp ON penalty_parameters(config_name, is_active, activated_at DESC);

	-- Single row: the NAV moving average
	CREATE TABLE IF NOT EXISTS smoothing_state (
		id INTEGER PRIMARY KEY DEFAULT 1,
		ema NUMERIC(78, 18) NOT NULL DEFAULT 0,
		last_block BIGINT NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT single_row_check CHECK (id = 1)
	);
	INSERT INTO smoothing_state (id, ema, last_block) VALUES (1, 0, 0) ON CONFLICT (id) DO NOTHING;

	-- Single row: what the basket is made of and holds
	CREATE TABLE IF NOT EXISTS basket_state (
		id INTEGER PRIMARY KEY DEFAULT 1,
		assets JSONB NOT NULL,
		inventory_denoms TEXT[] NOT NULL,
		inventory_amounts NUMERIC(78, 0)[] NOT NULL,
		supply NUMERIC(78, 0) NOT NULL,
		token_precision INTEGER NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT single_row_check CHECK (id = 1)
	);

	CREATE TABLE IF NOT EXISTS quotes (
		quote_id UUID PRIMARY KEY,
		kind VARCHAR(16) NOT NULL,
		quote_timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		block_height BIGINT NOT NULL,
		params_id INTEGER REFERENCES penalty_parameters(params_id),
		coin_denoms TEXT[] NOT NULL,
		coin_amounts NUMERIC(78, 0)[] NOT NULL,
		basket_tokens NUMERIC(78, 0) NOT NULL,
		trade_value NUMERIC(78, 18) NOT NULL,
		value NUMERIC(78, 18) NOT NULL,
		penalty NUMERIC(78, 18) NOT NULL,
		nav_before NUMERIC(78, 18) NOT NULL,
		nav_after NUMERIC(78, 18) NOT NULL,
		drift_before NUMERIC(78, 18) NOT NULL,
		drift_after NUMERIC(78, 18) NOT NULL,
		pro_rata BOOLEAN NOT NULL DEFAULT FALSE,
		inventory_denoms TEXT[] NOT NULL,
		inventory_amounts NUMERIC(78, 0)[] NOT NULL,
		supply_after NUMERIC(78, 0) NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_quotes_timestamp ON quotes(quote_timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_quotes_kind ON quotes(kind);
`

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	if _, err := DB.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	log.Info().Msg("Database schema ensured.")
	return nil
}

// DropSchema removes every basket table. Used by the reset script.
func DropSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	dropSQL := `
		DROP TABLE IF EXISTS quotes CASCADE;
		DROP TABLE IF EXISTS basket_state CASCADE;
		DROP TABLE IF EXISTS smoothing_state CASCADE;
		DROP TABLE IF EXISTS penalty_parameters CASCADE;
	`
	if _, err := DB.Exec(dropSQL); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}
	log.Warn().Msg("All basket tables dropped.")
	return nil
}

// openDSN opens a pool on a raw connection string.
func openDSN(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
