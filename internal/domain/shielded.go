package domain

import "time"

// MaxAggregateCiphertextLen caps the encrypted running totals an aggregator
// may write back.
const MaxAggregateCiphertextLen = 80

// ShieldedPoolAggregate tracks an external aggregator's encrypted running
// totals for a market's shielded wagers. Exactly one identity, the bound
// MXE authority, may write; content is otherwise unrestricted until the
// one-way finalize latch is set.
type ShieldedPoolAggregate struct {
	ID                string // derived address: shielded_pool(market)
	Market            string
	MXEAuthority      string
	EncryptedYesTotal []byte
	EncryptedNoTotal  []byte
	TotalShieldedBets uint32
	Finalized         bool
	UpdatedAt         time.Time
}
