// Package domain defines the core records and ports of the wager-pool
// settlement engine: markets, bets, shielded aggregates, the error taxonomy,
// and the store/ledger interfaces the services operate against.
package domain

import "time"

// MarketStatus represents the lifecycle state of a market.
//
// Only Active and Resolved are ever assigned by the engine; Expired and
// Disputed are reserved for the moderation flow and currently unreachable.
type MarketStatus string

const (
	MarketStatusActive   MarketStatus = "active"
	MarketStatusResolved MarketStatus = "resolved"
	MarketStatusExpired  MarketStatus = "expired"
	MarketStatusDisputed MarketStatus = "disputed"
)

const (
	// MaxQuestionLen caps the market question length.
	MaxQuestionLen = 280
	// MaxLabelLen caps the free-text category and region fields.
	MaxLabelLen = 32
	// MaxMarketLifetime caps how far in the future a market may resolve.
	MaxMarketLifetime = 365 * 24 * time.Hour
)

// OracleBinding configures automatic price-based resolution for a market.
// A zero Authority disables the oracle path entirely.
type OracleBinding struct {
	// Authority is the only identity allowed to resolve via the oracle path.
	Authority string
	// Threshold is the decision price at the feed's native scale
	// (i.e. humanPrice * 10^|exponent|).
	Threshold int64
	// Above selects the comparison direction: when true, YES wins if the
	// effective price is >= Threshold; when false, if it is <= Threshold.
	Above bool
}

// Enabled reports whether the market has an oracle resolver bound.
func (o OracleBinding) Enabled() bool { return o.Authority != "" }

// Market is a single binary proposition with two opposing stake pools.
//
// YesPool and NoPool only ever grow, until resolution. They are bookkeeping
// history, not a live balance: payouts drain the market vault, a separate
// ledger account, and never decrement the pool fields.
type Market struct {
	ID           string // derived address: market(creator, expiresAt)
	Creator      string
	Question     string
	Category     string
	Region       string
	IsPrivate    bool
	Status       MarketStatus
	Outcome      *bool // nil until resolved
	YesPool      uint64
	NoPool       uint64
	TotalBets    uint32
	ShieldedBets uint32
	Oracle       OracleBinding
	CreatedAt    time.Time
	ExpiresAt    time.Time
	ResolvedAt   *time.Time
}

// Resolved reports whether the market has a final outcome.
func (m *Market) Resolved() bool { return m.Status == MarketStatusResolved }

// Pools returns the winning and losing pool for the given outcome.
func (m *Market) Pools(outcome bool) (winning, losing uint64) {
	if outcome {
		return m.YesPool, m.NoPool
	}
	return m.NoPool, m.YesPool
}
