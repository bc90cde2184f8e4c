package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/wagerpool/internal/domain"
)

// AggregateStore implements domain.AggregateStore using PostgreSQL.
type AggregateStore struct {
	pool *pgxpool.Pool
}

// NewAggregateStore creates a new AggregateStore backed by the given pool.
func NewAggregateStore(pool *pgxpool.Pool) *AggregateStore {
	return &AggregateStore{pool: pool}
}

// GetByMarket retrieves a market's shielded pool record.
func (s *AggregateStore) GetByMarket(ctx context.Context, marketID string) (domain.ShieldedPoolAggregate, error) {
	var agg domain.ShieldedPoolAggregate
	err := s.pool.QueryRow(ctx, `
		SELECT id, market_id, mxe_authority, encrypted_yes_total,
		       encrypted_no_total, total_shielded_bets, finalized, updated_at
		FROM shielded_pools WHERE market_id = $1`, marketID,
	).Scan(
		&agg.ID, &agg.Market, &agg.MXEAuthority, &agg.EncryptedYesTotal,
		&agg.EncryptedNoTotal, &agg.TotalShieldedBets, &agg.Finalized, &agg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ShieldedPoolAggregate{}, domain.ErrNotFound
		}
		return domain.ShieldedPoolAggregate{}, fmt.Errorf("postgres: get shielded pool for %s: %w", marketID, err)
	}
	return agg, nil
}
