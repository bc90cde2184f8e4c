package domain

import "time"

const (
	// MinStake and MaxStake bound a plain wager, in minor currency units.
	MinStake uint64 = 10_000_000
	MaxStake uint64 = 100_000_000_000

	// FeeBps is the platform fee in basis points (0.5%).
	FeeBps uint64 = 50

	// PrivacyFee is the flat fee charged for a shielded wager, covering the
	// external secure-computation cost. No percentage fee applies because
	// the stake amount is never known in plaintext.
	PrivacyFee uint64 = 5_000_000

	// EncryptedAmountLen is the exact ciphertext length of a shielded
	// stake: ephemeral pubkey (32) + nonce (24) + sealed amount (24).
	EncryptedAmountLen = 80
	// RangeProofLen is the exact length of the opaque range proof:
	// salt (32) + commitment (32).
	RangeProofLen = 64
)

// Bet is a single wager on one side of a market. At most one Bet exists per
// (market, bettor) pair, enforced by the uniqueness of the derived address.
//
// For a shielded bet, Amount is zero and EncryptedAmount/Proof hold the
// ciphertext; no plaintext stake is ever recorded.
type Bet struct {
	ID              string // derived address: bet(market, bettor)
	Market          string
	Bettor          string
	Outcome         bool
	Amount          uint64 // net of fee; zero when shielded
	Shielded        bool
	EncryptedAmount []byte
	Proof           []byte
	PlacedAt        time.Time
	Claimed         bool
}
