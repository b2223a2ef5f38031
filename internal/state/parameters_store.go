package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/elys-network/basket/internal/penalty"
)

// SaveParams saves params as the next version of configName and makes it the active one.
func (s *PostgresStore) SaveParams(ctx context.Context, configName string, params penalty.Params) (ParamsVersion, error) {
	if err := params.Validate(); err != nil {
		return ParamsVersion{}, err
	}

	pv := ParamsVersion{ConfigName: configName, Params: params, ActivatedAt: time.Now().UTC()}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(version), 0) + 1 FROM penalty_parameters WHERE config_name = $1;`,
			configName,
		).Scan(&pv.Version); err != nil {
			return fmt.Errorf("failed to read latest version for %s: %w", configName, err)
		}

		stmtDeactivate := `UPDATE penalty_parameters SET is_active = FALSE WHERE config_name = $1 AND is_active = TRUE;`
		if _, err := tx.ExecContext(ctx, stmtDeactivate, configName); err != nil {
			return fmt.Errorf("failed to deactivate existing active parameters for %s: %w", configName, err)
		}

		stmt := `
			INSERT INTO penalty_parameters (
				version, config_name, is_active, activated_at, created_at,
				alpha_plus, sigma_plus, alpha_minus, sigma_minus
			) VALUES ($1, $2, TRUE, $3, $3, $4, $5, $6, $7)
			RETURNING params_id;`
		if err := tx.QueryRowContext(ctx, stmt,
			pv.Version, configName, pv.ActivatedAt,
			params.AlphaPlus, params.SigmaPlus, params.AlphaMinus, params.SigmaMinus,
		).Scan(&pv.ID); err != nil {
			return fmt.Errorf("failed to insert penalty parameters: %w", err)
		}
		return nil
	})
	if err != nil {
		return ParamsVersion{}, err
	}

	log.Info().
		Int("version", pv.Version).
		Str("config", configName).
		Int64("params_id", pv.ID).
		Msg("Saved penalty parameters")
	return pv, nil
}

// ActiveParams loads the currently active version of configName.
func (s *PostgresStore) ActiveParams(ctx context.Context, configName string) (ParamsVersion, error) {
	query := `
		SELECT params_id, config_name, version, activated_at,
			alpha_plus, sigma_plus, alpha_minus, sigma_minus
		FROM penalty_parameters
		WHERE config_name = $1 AND is_active = TRUE
		ORDER BY activated_at DESC
		LIMIT 1;`

	pv, err := scanParams(s.db.QueryRowContext(ctx, query, configName))
	if errors.Is(err, sql.ErrNoRows) {
		return ParamsVersion{}, fmt.Errorf("no active penalty parameters for %s: %w", configName, ErrNotFound)
	}
	if err != nil {
		return ParamsVersion{}, fmt.Errorf("failed to load active penalty parameters: %w", err)
	}
	return pv, nil
}

// ParamsHistory lists the saved versions of configName, newest first.
func (s *PostgresStore) ParamsHistory(ctx context.Context, configName string, limit int) ([]ParamsVersion, error) {
	query := `
		SELECT params_id, config_name, version, activated_at,
			alpha_plus, sigma_plus, alpha_minus, sigma_minus
		FROM penalty_parameters
		WHERE config_name = $1
		ORDER BY version DESC
		LIMIT $2;`

	rows, err := s.db.QueryContext(ctx, query, configName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query penalty parameters: %w", err)
	}
	defer rows.Close()

	var history []ParamsVersion
	for rows.Next() {
		pv, err := scanParams(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan penalty parameters: %w", err)
		}
		history = append(history, pv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating penalty parameters: %w", err)
	}
	return history, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParams(row rowScanner) (ParamsVersion, error) {
	var pv ParamsVersion
	err := row.Scan(
		&pv.ID, &pv.ConfigName, &pv.Version, &pv.ActivatedAt,
		&pv.Params.AlphaPlus, &pv.Params.SigmaPlus, &pv.Params.AlphaMinus, &pv.Params.SigmaMinus,
	)
	return pv, err
}
