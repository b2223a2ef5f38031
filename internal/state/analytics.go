package state

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/elys-network/basket/internal/types"
)

// QuoteStats aggregates executed quotes. Charged and rebated amounts are the
// gap between the unadjusted and adjusted trade value.
func (s *PostgresStore) QuoteStats(ctx context.Context) (types.QuoteStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE kind = 'MINT'),
			COUNT(*) FILTER (WHERE kind = 'REDEEM'),
			COUNT(*) FILTER (WHERE pro_rata),
			COALESCE(SUM(ABS(value - trade_value)) FILTER (WHERE penalty > 0), 0),
			COALESCE(SUM(ABS(value - trade_value)) FILTER (WHERE penalty < 0), 0),
			MAX(quote_timestamp)
		FROM quotes;`

	var (
		stats types.QuoteStats
		last  sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query).Scan(
		&stats.Mints, &stats.Redeems, &stats.ProRataRedeems,
		&stats.PenaltiesCharged, &stats.RebatesPaid, &last,
	)
	if err != nil {
		return types.QuoteStats{}, fmt.Errorf("failed to get quote stats: %w", err)
	}
	if last.Valid {
		stats.LastQuoteAt = &last.Time
	}
	return stats, nil
}
