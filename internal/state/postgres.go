package state

import (
	"context"
	"database/sql"
	"fmt"

	sdkmath "cosmossdk.io/math"
	sdktypes "github.com/cosmos/cosmos-sdk/types"
)

// PostgresStore implements Store on PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open pool, usually the global DB after InitDB.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}
	return s.db.PingContext(ctx)
}

// withTx runs fn in a transaction, rolling back on error or panic.
func (s *PostgresStore) withTx(ctx context.Context, fn func(*sql.Tx) error) (err error) {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // Re-panic after rollback
		} else if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// splitCoins flattens coins into parallel arrays for pq.Array.
func splitCoins(coins sdktypes.Coins) (denoms, amounts []string) {
	denoms = make([]string, len(coins))
	amounts = make([]string, len(coins))
	for i, c := range coins {
		denoms[i] = c.Denom
		amounts[i] = c.Amount.String()
	}
	return denoms, amounts
}

func joinCoins(denoms, amounts []string) (sdktypes.Coins, error) {
	if len(denoms) != len(amounts) {
		return nil, fmt.Errorf("coin arrays differ in length: %d denoms, %d amounts", len(denoms), len(amounts))
	}
	coins := make(sdktypes.Coins, 0, len(denoms))
	for i := range denoms {
		amt, err := parseInt(amounts[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", denoms[i], err)
		}
		coins = append(coins, sdktypes.NewCoin(denoms[i], amt))
	}
	return coins.Sort(), nil
}

func parseInt(s string) (sdkmath.Int, error) {
	v, ok := sdkmath.NewIntFromString(s)
	if !ok {
		return sdkmath.Int{}, fmt.Errorf("invalid integer %q", s)
	}
	return v, nil
}
