package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination and filtering for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}

// MarketStore reads market records.
type MarketStore interface {
	Get(ctx context.Context, id string) (Market, error)
	ListActive(ctx context.Context, opts ListOpts) ([]Market, error)
	Count(ctx context.Context) (int64, error)
}

// BetStore reads bet records.
type BetStore interface {
	Get(ctx context.Context, id string) (Bet, error)
	GetByBettor(ctx context.Context, marketID, bettor string) (Bet, error)
	ListByMarket(ctx context.Context, marketID string, opts ListOpts) ([]Bet, error)
}

// AggregateStore reads shielded pool aggregate records.
type AggregateStore interface {
	GetByMarket(ctx context.Context, marketID string) (ShieldedPoolAggregate, error)
}

// EventStore reads the append-only event log.
type EventStore interface {
	ListByMarket(ctx context.Context, marketID string, opts ListOpts) ([]Event, error)
	List(ctx context.Context, opts ListOpts) ([]Event, error)
}

// LedgerStore reads and funds ledger accounts. Transfers between accounts
// happen only inside the settlement commands below; Deposit exists for
// on-ramping external value onto the ledger.
type LedgerStore interface {
	Balance(ctx context.Context, address string) (uint64, error)
	Deposit(ctx context.Context, address string, amount uint64) error
}

// Transfer moves value between two ledger accounts. It fails with
// ErrInsufficientFunds when the source balance is too low.
type Transfer struct {
	From   string
	To     string
	Amount uint64
}

// BetAdmission is the atomic effect of admitting a plain wager: the fee and
// stake transfers, the pool increment, the bet record, and the event, all of
// which commit together or not at all. The store grows the chosen pool by
// Bet.Amount under the row lock, so concurrent admissions never lose an
// increment.
type BetAdmission struct {
	Bet           Bet
	FeeTransfer   Transfer // bettor -> treasury
	StakeTransfer Transfer // bettor -> market vault
	Event         Event
}

// ShieldedAdmission is the atomic effect of admitting a shielded wager.
// Pools are untouched because the amount is unknown in plaintext; only the
// bet counters grow.
type ShieldedAdmission struct {
	Bet         Bet
	FeeTransfer Transfer // bettor -> treasury, flat privacy fee
	Event       Event
}

// Resolution is the atomic effect of resolving a market.
type Resolution struct {
	Market     string
	Outcome    bool
	ResolvedAt time.Time
	Event      Event
}

// ClaimSettlement is the atomic effect of a winning claim: the vault debit,
// the claimed latch, and the event. Authorization carries the protocol vault
// authority's signature over the payout; the claimant never signs this debit.
type ClaimSettlement struct {
	Bet            string
	PayoutTransfer Transfer // market vault -> claimant
	Authorization  []byte
	Event          Event
}

// AggregateSubmission is the atomic effect of an aggregator write-back.
type AggregateSubmission struct {
	Pool              string
	EncryptedYesTotal []byte
	EncryptedNoTotal  []byte
	TotalShieldedBets uint32
	Finalize          bool
	UpdatedAt         time.Time
	Event             Event
}

// SettlementStore executes the engine's mutating commands. Each call is one
// atomic host transaction: every transfer, record mutation, and event append
// inside a command either fully commits or fully reverts. Record creation is
// exactly-once, keyed on the derived address (ErrAlreadyExists on conflict).
type SettlementStore interface {
	CreateMarket(ctx context.Context, m Market, ev Event) error
	AdmitBet(ctx context.Context, adm BetAdmission) error
	AdmitShieldedBet(ctx context.Context, adm ShieldedAdmission) error
	ResolveMarket(ctx context.Context, res Resolution) error
	SettleClaim(ctx context.Context, claim ClaimSettlement) error
	InitAggregate(ctx context.Context, agg ShieldedPoolAggregate, ev Event) error
	SubmitAggregate(ctx context.Context, sub AggregateSubmission) error
}
