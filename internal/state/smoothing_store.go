/*

This file manages the NAV smoothing state, a single row that carries the
moving average across restarts.

*/

package state

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/elys-network/basket/internal/penalty"
)

// Smoothing retrieves the moving average state.
func (s *PostgresStore) Smoothing(ctx context.Context) (penalty.Smoothing, error) {
	var sm penalty.Smoothing
	err := s.db.QueryRowContext(ctx, `SELECT ema, last_block FROM smoothing_state WHERE id = 1;`).
		Scan(&sm.EMA, &sm.LastBlock)
	if err != nil {
		return penalty.Smoothing{}, fmt.Errorf("failed to get smoothing state: %w", err)
	}
	return sm, nil
}

// SaveSmoothing overwrites the moving average state.
func (s *PostgresStore) SaveSmoothing(ctx context.Context, sm penalty.Smoothing) error {
	if err := saveSmoothing(ctx, s.db, sm); err != nil {
		return err
	}
	log.Debug().Str("ema", sm.EMA.String()).Uint64("last_block", sm.LastBlock).Msg("Saved smoothing state")
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveSmoothing(ctx context.Context, db execer, sm penalty.Smoothing) error {
	stmt := `
		INSERT INTO smoothing_state (id, ema, last_block, updated_at)
		VALUES (1, $1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE
		SET ema = EXCLUDED.ema, last_block = EXCLUDED.last_block, updated_at = EXCLUDED.updated_at;`
	if _, err := db.ExecContext(ctx, stmt, sm.EMA, sm.LastBlock); err != nil {
		return fmt.Errorf("failed to save smoothing state: %w", err)
	}
	return nil
}
