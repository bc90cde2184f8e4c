package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/wagerpool/internal/domain"
)

// LedgerStore implements domain.LedgerStore using PostgreSQL. Balances only
// move between accounts inside settlement commands; Deposit is the on-ramp
// for external value.
type LedgerStore struct {
	pool *pgxpool.Pool
}

// NewLedgerStore creates a new LedgerStore backed by the given connection pool.
func NewLedgerStore(pool *pgxpool.Pool) *LedgerStore {
	return &LedgerStore{pool: pool}
}

// Balance returns the current balance of an account. Unknown addresses have
// a zero balance rather than an error, matching the upsert-on-credit model.
func (s *LedgerStore) Balance(ctx context.Context, address string) (uint64, error) {
	var balance int64
	err := s.pool.QueryRow(ctx,
		`SELECT balance FROM ledger_accounts WHERE address = $1`, address,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("postgres: balance of %s: %w", address, err)
	}
	return uint64(balance), nil
}

// Deposit credits an account, creating it if needed.
func (s *LedgerStore) Deposit(ctx context.Context, address string, amount uint64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO ledger_accounts (address, balance) VALUES ($1, $2)
		ON CONFLICT (address) DO UPDATE
		SET balance = ledger_accounts.balance + EXCLUDED.balance`,
		address, int64(amount),
	)
	if err != nil {
		return fmt.Errorf("postgres: deposit to %s: %w", address, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.LedgerStore = (*LedgerStore)(nil)
