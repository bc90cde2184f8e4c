package domain

import (
	"context"
	"io"
	"time"
)

// AddressDeriver maps stable record fields to deterministic ledger
// addresses. The engine depends on it for uniqueness and lookup but never
// hard-codes the hashing, so stores stay portable across backends.
type AddressDeriver interface {
	MarketAddress(creator string, expiresAt time.Time) string
	BetAddress(market, bettor string) string
	ShieldedBetAddress(market, bettor string) string
	VaultAddress(market string) string
	AggregateAddress(market string) string
	TreasuryAddress() string
}

// VaultAuthority authorizes debits of market vaults. Payouts are signed by
// the protocol, not by the claimant.
type VaultAuthority interface {
	// AuthorizePayout signs the (market, claimant, amount) tuple and
	// returns the authorization blob recorded with the settlement.
	AuthorizePayout(market, claimant string, amount uint64) ([]byte, error)
	// Address returns the authority's public ledger identity.
	Address() string
}

// ProofVerifier validates the opaque artifacts attached to a shielded
// wager. Implementations range from structural length checks to a real
// range-proof verifier; the ledger logic is agnostic.
type ProofVerifier interface {
	VerifyEncryptedAmount(ciphertext []byte) error
	VerifyRangeProof(proof, ciphertext []byte) error
}

// FeedSnapshot is a raw price-feed record captured by a relayer, together
// with the host time-ordinal at capture. The engine parses the bytes itself
// and never trusts the caller's claims about their contents.
type FeedSnapshot struct {
	Data []byte
	Slot uint64
}

// FeedSource fetches the latest snapshot for a feed address.
type FeedSource interface {
	Snapshot(ctx context.Context, feedAddress string) (FeedSnapshot, error)
}

// MarketCache is a read-through cache for market records.
type MarketCache interface {
	Get(ctx context.Context, id string) (Market, error)
	Set(ctx context.Context, m Market) error
	Invalidate(ctx context.Context, id string) error
}

// RateLimiter applies sliding-window admission limits.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// LockManager provides coarse distributed locks.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// EventSink receives committed events for best-effort fan-out (websocket
// broadcast, notifications). Delivery failures never affect settlement.
type EventSink interface {
	Publish(ev Event)
}

// BlobWriter uploads objects to long-term storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// Archiver persists a settlement report for a resolved market to long-term
// storage. It returns the storage path of the written report.
type Archiver interface {
	ArchiveSettlement(ctx context.Context, m Market, events []Event) (string, error)
}
