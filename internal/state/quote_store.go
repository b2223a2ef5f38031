package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/elys-network/basket/internal/penalty"
	"github.com/elys-network/basket/internal/types"
)

// BasketState loads the basket definition and holdings.
func (s *PostgresStore) BasketState(ctx context.Context) (types.BasketState, error) {
	var (
		b          types.BasketState
		assetsJSON []byte
		denoms     []string
		amounts    []string
		supply     string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT assets, inventory_denoms, inventory_amounts, supply, token_precision, updated_at
		FROM basket_state WHERE id = 1;`,
	).Scan(&assetsJSON, pq.Array(&denoms), pq.Array(&amounts), &supply, &b.TokenPrecision, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return types.BasketState{}, fmt.Errorf("basket state: %w", ErrNotFound)
	}
	if err != nil {
		return types.BasketState{}, fmt.Errorf("failed to get basket state: %w", err)
	}

	if err := json.Unmarshal(assetsJSON, &b.Assets); err != nil {
		return types.BasketState{}, fmt.Errorf("failed to unmarshal assets: %w", err)
	}
	if b.Inventory, err = joinCoins(denoms, amounts); err != nil {
		return types.BasketState{}, fmt.Errorf("failed to decode inventory: %w", err)
	}
	if b.Supply, err = parseInt(supply); err != nil {
		return types.BasketState{}, fmt.Errorf("failed to decode supply: %w", err)
	}
	return b, nil
}

// SaveBasketState overwrites the basket definition and holdings.
func (s *PostgresStore) SaveBasketState(ctx context.Context, b types.BasketState) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}
	return saveBasket(ctx, s.db, b)
}

func saveBasket(ctx context.Context, db execer, b types.BasketState) error {
	assetsJSON, err := json.Marshal(b.Assets)
	if err != nil {
		return fmt.Errorf("failed to marshal assets: %w", err)
	}
	denoms, amounts := splitCoins(b.Inventory)
	stmt := `
		INSERT INTO basket_state (id, assets, inventory_denoms, inventory_amounts, supply, token_precision, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET assets = EXCLUDED.assets,
			inventory_denoms = EXCLUDED.inventory_denoms,
			inventory_amounts = EXCLUDED.inventory_amounts,
			supply = EXCLUDED.supply,
			token_precision = EXCLUDED.token_precision,
			updated_at = EXCLUDED.updated_at;`
	_, err = db.ExecContext(ctx, stmt,
		assetsJSON, pq.Array(denoms), pq.Array(amounts), b.SupplyOrZero().String(), b.TokenPrecision, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save basket state: %w", err)
	}
	return nil
}

// CommitQuote inserts the quote and overwrites basket and smoothing state in one transaction.
func (s *PostgresStore) CommitQuote(ctx context.Context, rec types.QuoteRecord, b types.BasketState, sm penalty.Smoothing) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		coinDenoms, coinAmounts := splitCoins(rec.Coins)
		invDenoms, invAmounts := splitCoins(rec.InventoryAfter)
		var paramsID sql.NullInt64
		if rec.ParamsID != 0 {
			paramsID = sql.NullInt64{Int64: rec.ParamsID, Valid: true}
		}

		stmt := `
			INSERT INTO quotes (
				quote_id, kind, quote_timestamp, block_height, params_id,
				coin_denoms, coin_amounts, basket_tokens,
				trade_value, value, penalty, nav_before, nav_after, drift_before, drift_after,
				pro_rata, inventory_denoms, inventory_amounts, supply_after
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);`
		_, err := tx.ExecContext(ctx, stmt,
			rec.QuoteID, string(rec.Kind), rec.Timestamp, rec.BlockHeight, paramsID,
			pq.Array(coinDenoms), pq.Array(coinAmounts), rec.BasketTokens.String(),
			rec.TradeValue, rec.Value, rec.Penalty, rec.NAVBefore, rec.NAVAfter, rec.DriftBefore, rec.DriftAfter,
			rec.ProRata, pq.Array(invDenoms), pq.Array(invAmounts), rec.SupplyAfter.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert quote: %w", err)
		}
		if err := saveBasket(ctx, tx, b); err != nil {
			return err
		}
		return saveSmoothing(ctx, tx, sm)
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("quote_id", rec.QuoteID).
		Str("kind", string(rec.Kind)).
		Str("basket_tokens", rec.BasketTokens.String()).
		Str("penalty", rec.Penalty.String()).
		Msg("Committed quote")
	return nil
}

const quoteColumns = `
	quote_id, kind, quote_timestamp, block_height, COALESCE(params_id, 0),
	coin_denoms, coin_amounts, basket_tokens,
	trade_value, value, penalty, nav_before, nav_after, drift_before, drift_after,
	pro_rata, inventory_denoms, inventory_amounts, supply_after`

// GetQuote retrieves an executed quote by its ID.
func (s *PostgresStore) GetQuote(ctx context.Context, id string) (types.QuoteRecord, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE quote_id = $1;`
	rec, err := scanQuote(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return types.QuoteRecord{}, fmt.Errorf("quote %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return types.QuoteRecord{}, fmt.Errorf("failed to get quote %s: %w", id, err)
	}
	return rec, nil
}

// RecentQuotes retrieves the most recent executed quotes.
func (s *PostgresStore) RecentQuotes(ctx context.Context, limit int) ([]types.QuoteRecord, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes ORDER BY quote_timestamp DESC LIMIT $1;`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotes: %w", err)
	}
	defer rows.Close()

	var quotes []types.QuoteRecord
	for rows.Next() {
		rec, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote row: %w", err)
		}
		quotes = append(quotes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quote rows: %w", err)
	}
	return quotes, nil
}

func scanQuote(row rowScanner) (types.QuoteRecord, error) {
	var (
		rec                    types.QuoteRecord
		kind                   string
		coinDenoms, coinAmts   []string
		invDenoms, invAmts     []string
		basketTokens, supplyAf string
	)
	err := row.Scan(
		&rec.QuoteID, &kind, &rec.Timestamp, &rec.BlockHeight, &rec.ParamsID,
		pq.Array(&coinDenoms), pq.Array(&coinAmts), &basketTokens,
		&rec.TradeValue, &rec.Value, &rec.Penalty, &rec.NAVBefore, &rec.NAVAfter, &rec.DriftBefore, &rec.DriftAfter,
		&rec.ProRata, pq.Array(&invDenoms), pq.Array(&invAmts), &supplyAf,
	)
	if err != nil {
		return types.QuoteRecord{}, err
	}

	rec.Kind = types.QuoteKind(kind)
	if rec.Coins, err = joinCoins(coinDenoms, coinAmts); err != nil {
		return types.QuoteRecord{}, err
	}
	if rec.InventoryAfter, err = joinCoins(invDenoms, invAmts); err != nil {
		return types.QuoteRecord{}, err
	}
	if rec.BasketTokens, err = parseInt(basketTokens); err != nil {
		return types.QuoteRecord{}, err
	}
	if rec.SupplyAfter, err = parseInt(supplyAf); err != nil {
		return types.QuoteRecord{}, err
	}
	return rec, nil
}
