// Package keys provides deterministic ledger addressing and the protocol
// vault authority used to authorize payout debits.
package keys

import (
	"encoding/binary"
	"encoding/hex"
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/alanyoungcy/wagerpool/internal/domain"
)

// Seed prefixes for each record class. Two records of different classes can
// never collide because the prefix is part of the hash preimage.
var (
	seedMarket      = []byte("market")
	seedBet         = []byte("bet")
	seedShieldedBet = []byte("shielded_bet")
	seedVault       = []byte("vault")
	seedPool        = []byte("shielded_pool")
	seedTreasury    = []byte("treasury")
)

// Deriver implements domain.AddressDeriver with keccak256 over a seed
// tuple. Addresses are hex-encoded 32-byte digests, stable across restarts
// and storage backends.
type Deriver struct{}

// NewDeriver returns the keccak-based address deriver.
func NewDeriver() *Deriver { return &Deriver{} }

func derive(seeds ...[]byte) string {
	return hex.EncodeToString(ethcrypto.Keccak256(seeds...))
}

// MarketAddress derives the market address from its creator and expiry.
// One market per (creator, expiry) pair.
func (d *Deriver) MarketAddress(creator string, expiresAt time.Time) string {
	var ts [8]byte
	binary.LittleEndian.PutUint64(ts[:], uint64(expiresAt.Unix()))
	return derive(seedMarket, []byte(creator), ts[:])
}

// BetAddress derives the bet address from its market and bettor. One bet
// per (market, bettor) pair; re-betting collides on this address.
func (d *Deriver) BetAddress(market, bettor string) string {
	return derive(seedBet, []byte(market), []byte(bettor))
}

// ShieldedBetAddress derives the shielded-bet address. The prefix keeps the
// derivation disjoint from BetAddress, but admission still allows only one
// bet per (market, bettor) regardless of kind.
func (d *Deriver) ShieldedBetAddress(market, bettor string) string {
	return derive(seedShieldedBet, []byte(market), []byte(bettor))
}

// VaultAddress derives the fund-holding vault account for a market.
func (d *Deriver) VaultAddress(market string) string {
	return derive(seedVault, []byte(market))
}

// AggregateAddress derives the shielded pool aggregate address for a market.
func (d *Deriver) AggregateAddress(market string) string {
	return derive(seedPool, []byte(market))
}

// TreasuryAddress derives the protocol-wide fee treasury account.
func (d *Deriver) TreasuryAddress() string {
	return derive(seedTreasury)
}

// Compile-time interface check.
var _ domain.AddressDeriver = (*Deriver)(nil)
