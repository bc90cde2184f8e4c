package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/wagerpool/internal/domain"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = "23505"

// SettlementStore implements domain.SettlementStore. Every command runs as
// one transaction: the transfers, record mutations, and event append either
// all commit or all revert.
type SettlementStore struct {
	pool *pgxpool.Pool
}

// NewSettlementStore creates a new SettlementStore backed by the given pool.
func NewSettlementStore(pool *pgxpool.Pool) *SettlementStore {
	return &SettlementStore{pool: pool}
}

func (s *SettlementStore) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit tx: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// transfer moves value between two ledger accounts inside tx. The debit is
// conditional on sufficient balance: zero rows updated means the source
// cannot cover the amount. The credit upserts the destination account.
func transfer(ctx context.Context, tx pgx.Tx, t domain.Transfer) error {
	if t.Amount == 0 {
		return nil
	}

	tag, err := tx.Exec(ctx, `
		UPDATE ledger_accounts SET balance = balance - $2
		WHERE address = $1 AND balance >= $2`,
		t.From, int64(t.Amount),
	)
	if err != nil {
		return fmt.Errorf("postgres: debit %s: %w", t.From, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientFunds
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO ledger_accounts (address, balance) VALUES ($1, $2)
		ON CONFLICT (address) DO UPDATE
		SET balance = ledger_accounts.balance + EXCLUDED.balance`,
		t.To, int64(t.Amount),
	)
	if err != nil {
		return fmt.Errorf("postgres: credit %s: %w", t.To, err)
	}
	return nil
}

// appendEvent writes one event row inside tx.
func appendEvent(ctx context.Context, tx pgx.Tx, ev domain.Event) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO events (id, type, market_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		ev.ID, string(ev.Type), ev.Market, ev.Detail, ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: append event %s: %w", ev.Type, err)
	}
	return nil
}

// lockMarket takes a row lock on the market and returns its status. The lock
// serializes concurrent admissions and resolutions on the same market.
func lockMarket(ctx context.Context, tx pgx.Tx, id string) (domain.MarketStatus, error) {
	var status string
	err := tx.QueryRow(ctx,
		`SELECT status FROM markets WHERE id = $1 FOR UPDATE`, id,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("postgres: lock market %s: %w", id, err)
	}
	return domain.MarketStatus(status), nil
}

// CreateMarket inserts a new market record and its creation event. The
// derived address is the primary key, so re-creating a market is rejected
// with ErrAlreadyExists.
func (s *SettlementStore) CreateMarket(ctx context.Context, m domain.Market, ev domain.Event) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO markets (
				id, creator, question, category, region, is_private,
				status, yes_pool, no_pool, total_bets, shielded_bets,
				oracle_authority, oracle_threshold, oracle_above,
				created_at, expires_at
			) VALUES (
				$1, $2, $3, $4, $5, $6,
				$7, 0, 0, 0, 0,
				$8, $9, $10,
				$11, $12
			)`,
			m.ID, m.Creator, m.Question, m.Category, m.Region, m.IsPrivate,
			string(m.Status),
			m.Oracle.Authority, m.Oracle.Threshold, m.Oracle.Above,
			m.CreatedAt, m.ExpiresAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrAlreadyExists
			}
			return fmt.Errorf("postgres: insert market %s: %w", m.ID, err)
		}
		return appendEvent(ctx, tx, ev)
	})
}

// AdmitBet commits a plain wager: both transfers, the bet record, the pool
// increment, and the event. The market row lock revalidates the status so a
// concurrent resolution cannot race an admission.
func (s *SettlementStore) AdmitBet(ctx context.Context, adm domain.BetAdmission) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		status, err := lockMarket(ctx, tx, adm.Bet.Market)
		if err != nil {
			return err
		}
		if status != domain.MarketStatusActive {
			return domain.ErrMarketNotActive
		}

		if err := transfer(ctx, tx, adm.FeeTransfer); err != nil {
			return err
		}
		if err := transfer(ctx, tx, adm.StakeTransfer); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO bets (id, market_id, bettor, outcome, amount, shielded, placed_at)
			VALUES ($1, $2, $3, $4, $5, FALSE, $6)`,
			adm.Bet.ID, adm.Bet.Market, adm.Bet.Bettor, adm.Bet.Outcome,
			int64(adm.Bet.Amount), adm.Bet.PlacedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrAlreadyExists
			}
			return fmt.Errorf("postgres: insert bet %s: %w", adm.Bet.ID, err)
		}

		pool := "no_pool"
		if adm.Bet.Outcome {
			pool = "yes_pool"
		}
		_, err = tx.Exec(ctx, fmt.Sprintf(`
			UPDATE markets SET %s = %s + $2, total_bets = total_bets + 1
			WHERE id = $1`, pool, pool),
			adm.Bet.Market, int64(adm.Bet.Amount),
		)
		if err != nil {
			return fmt.Errorf("postgres: grow %s for %s: %w", pool, adm.Bet.Market, err)
		}

		return appendEvent(ctx, tx, adm.Event)
	})
}

// AdmitShieldedBet commits a shielded wager: the flat privacy fee, the bet
// record with its ciphertext and proof, the counter increments, and the
// event. Pools stay untouched.
func (s *SettlementStore) AdmitShieldedBet(ctx context.Context, adm domain.ShieldedAdmission) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		status, err := lockMarket(ctx, tx, adm.Bet.Market)
		if err != nil {
			return err
		}
		if status != domain.MarketStatusActive {
			return domain.ErrMarketNotActive
		}

		if err := transfer(ctx, tx, adm.FeeTransfer); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO bets (id, market_id, bettor, outcome, amount, shielded,
				encrypted_amount, proof, placed_at)
			VALUES ($1, $2, $3, $4, 0, TRUE, $5, $6, $7)`,
			adm.Bet.ID, adm.Bet.Market, adm.Bet.Bettor, adm.Bet.Outcome,
			adm.Bet.EncryptedAmount, adm.Bet.Proof, adm.Bet.PlacedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrAlreadyExists
			}
			return fmt.Errorf("postgres: insert shielded bet %s: %w", adm.Bet.ID, err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE markets SET total_bets = total_bets + 1,
				shielded_bets = shielded_bets + 1
			WHERE id = $1`, adm.Bet.Market,
		)
		if err != nil {
			return fmt.Errorf("postgres: grow counters for %s: %w", adm.Bet.Market, err)
		}

		return appendEvent(ctx, tx, adm.Event)
	})
}

// ResolveMarket flips a market to Resolved exactly once. The conditional
// update makes double resolution impossible even under concurrent callers.
func (s *SettlementStore) ResolveMarket(ctx context.Context, res domain.Resolution) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE markets SET status = 'resolved', outcome = $2, resolved_at = $3
			WHERE id = $1 AND status = 'active'`,
			res.Market, res.Outcome, res.ResolvedAt,
		)
		if err != nil {
			return fmt.Errorf("postgres: resolve market %s: %w", res.Market, err)
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx,
				`SELECT EXISTS(SELECT 1 FROM markets WHERE id = $1)`, res.Market,
			).Scan(&exists); err != nil {
				return fmt.Errorf("postgres: check market %s: %w", res.Market, err)
			}
			if !exists {
				return domain.ErrNotFound
			}
			return domain.ErrMarketAlreadyResolved
		}
		return appendEvent(ctx, tx, res.Event)
	})
}

// SettleClaim pays out a winning bet exactly once: the claimed latch and the
// vault debit commit together, so a concurrent duplicate claim loses the
// conditional update and the vault is never double-debited.
func (s *SettlementStore) SettleClaim(ctx context.Context, claim domain.ClaimSettlement) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE bets SET claimed = TRUE
			WHERE id = $1 AND claimed = FALSE`, claim.Bet,
		)
		if err != nil {
			return fmt.Errorf("postgres: latch claim for bet %s: %w", claim.Bet, err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrAlreadyClaimed
		}

		if err := transfer(ctx, tx, claim.PayoutTransfer); err != nil {
			return err
		}
		return appendEvent(ctx, tx, claim.Event)
	})
}

// InitAggregate creates the one shielded pool record for a market.
func (s *SettlementStore) InitAggregate(ctx context.Context, agg domain.ShieldedPoolAggregate, ev domain.Event) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO shielded_pools (
				id, market_id, mxe_authority, total_shielded_bets,
				finalized, updated_at
			) VALUES ($1, $2, $3, 0, FALSE, $4)`,
			agg.ID, agg.Market, agg.MXEAuthority, agg.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrAlreadyExists
			}
			return fmt.Errorf("postgres: insert shielded pool %s: %w", agg.ID, err)
		}
		return appendEvent(ctx, tx, ev)
	})
}

// SubmitAggregate overwrites the pool's encrypted totals. The finalized
// latch is one-way: once set, the conditional update matches no row.
func (s *SettlementStore) SubmitAggregate(ctx context.Context, sub domain.AggregateSubmission) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE shielded_pools SET
				encrypted_yes_total = $2,
				encrypted_no_total = $3,
				total_shielded_bets = $4,
				finalized = $5,
				updated_at = $6
			WHERE id = $1 AND finalized = FALSE`,
			sub.Pool, sub.EncryptedYesTotal, sub.EncryptedNoTotal,
			int32(sub.TotalShieldedBets), sub.Finalize, sub.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("postgres: submit aggregate %s: %w", sub.Pool, err)
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx,
				`SELECT EXISTS(SELECT 1 FROM shielded_pools WHERE id = $1)`, sub.Pool,
			).Scan(&exists); err != nil {
				return fmt.Errorf("postgres: check shielded pool %s: %w", sub.Pool, err)
			}
			if !exists {
				return domain.ErrNotFound
			}
			return domain.ErrShieldedPoolFinalized
		}
		return appendEvent(ctx, tx, sub.Event)
	})
}
