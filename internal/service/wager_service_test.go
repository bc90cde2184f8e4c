package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/wagerpool/internal/domain"
	"github.com/alanyoungcy/wagerpool/internal/zk"
)

func newWagerService(store *fakeStore, markets *fakeMarkets, sink domain.EventSink) *WagerService {
	return NewWagerService(store, markets, nil, testDeriver, zk.NewStructuralVerifier(), sink, testLogger())
}

func TestPlaceBet(t *testing.T) {
	now := time.Unix(1_900_000_000, 0)
	m := activeMarket(t, now)
	store := &fakeStore{}
	sink := &recordSink{}
	svc := newWagerService(store, &fakeMarkets{markets: map[string]domain.Market{m.ID: m}}, sink)
	svc.now = fixedClock(now)

	bet, err := svc.PlaceBet(context.Background(), PlaceBetParams{
		Market:  m.ID,
		Bettor:  "bob",
		Amount:  domain.MinStake, // 10_000_000 gross
		Outcome: true,
	})
	require.NoError(t, err)

	// 0.5% fee off the gross, net stake recorded on the bet.
	assert.Equal(t, uint64(9_950_000), bet.Amount)
	assert.True(t, bet.Outcome)
	assert.False(t, bet.Shielded)
	assert.Equal(t, testDeriver.BetAddress(m.ID, "bob"), bet.ID)

	require.Len(t, store.admissions, 1)
	adm := store.admissions[0]
	assert.Equal(t, uint64(50_000), adm.FeeTransfer.Amount)
	assert.Equal(t, testDeriver.TreasuryAddress(), adm.FeeTransfer.To)
	assert.Equal(t, uint64(9_950_000), adm.StakeTransfer.Amount)
	assert.Equal(t, testDeriver.VaultAddress(m.ID), adm.StakeTransfer.To)
	assert.Equal(t, "bob", adm.FeeTransfer.From)
	assert.Equal(t, "bob", adm.StakeTransfer.From)

	require.Len(t, sink.events, 1)
	assert.Equal(t, domain.EventBetPlaced, sink.events[0].Type)
}

func TestPlaceBet_StakeBounds(t *testing.T) {
	now := time.Unix(1_900_000_000, 0)
	m := activeMarket(t, now)
	svc := newWagerService(&fakeStore{}, &fakeMarkets{markets: map[string]domain.Market{m.ID: m}}, nil)
	svc.now = fixedClock(now)

	_, err := svc.PlaceBet(context.Background(), PlaceBetParams{Market: m.ID, Bettor: "bob", Amount: domain.MinStake - 1})
	assert.ErrorIs(t, err, domain.ErrBetTooSmall)

	_, err = svc.PlaceBet(context.Background(), PlaceBetParams{Market: m.ID, Bettor: "bob", Amount: domain.MaxStake + 1})
	assert.ErrorIs(t, err, domain.ErrBetTooLarge)

	// Both bounds are inclusive.
	_, err = svc.PlaceBet(context.Background(), PlaceBetParams{Market: m.ID, Bettor: "bob", Amount: domain.MaxStake})
	assert.NoError(t, err)
}

func TestPlaceBet_MarketStates(t *testing.T) {
	now := time.Unix(1_900_000_000, 0)

	resolved := activeMarket(t, now)
	resolved.Status = domain.MarketStatusResolved

	expired := activeMarket(t, now)
	expired.ExpiresAt = now // admission closes exactly at expiry

	markets := &fakeMarkets{markets: map[string]domain.Market{
		"resolved": resolved,
		"expired":  expired,
	}}
	svc := newWagerService(&fakeStore{}, markets, nil)
	svc.now = fixedClock(now)

	_, err := svc.PlaceBet(context.Background(), PlaceBetParams{Market: "resolved", Bettor: "bob", Amount: domain.MinStake})
	assert.ErrorIs(t, err, domain.ErrMarketNotActive)

	_, err = svc.PlaceBet(context.Background(), PlaceBetParams{Market: "expired", Bettor: "bob", Amount: domain.MinStake})
	assert.ErrorIs(t, err, domain.ErrMarketExpired)

	_, err = svc.PlaceBet(context.Background(), PlaceBetParams{Market: "missing", Bettor: "bob", Amount: domain.MinStake})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPlaceBet_PoolOverflowGuard(t *testing.T) {
	now := time.Unix(1_900_000_000, 0)
	m := activeMarket(t, now)
	m.YesPool = math.MaxUint64 - 1
	svc := newWagerService(&fakeStore{}, &fakeMarkets{markets: map[string]domain.Market{m.ID: m}}, nil)
	svc.now = fixedClock(now)

	_, err := svc.PlaceBet(context.Background(), PlaceBetParams{
		Market:  m.ID,
		Bettor:  "bob",
		Amount:  domain.MinStake,
		Outcome: true,
	})
	assert.ErrorIs(t, err, domain.ErrArithmeticOverflow)

	// The other pool is unaffected and still admits.
	_, err = svc.PlaceBet(context.Background(), PlaceBetParams{
		Market:  m.ID,
		Bettor:  "bob",
		Amount:  domain.MinStake,
		Outcome: false,
	})
	assert.NoError(t, err)
}

func TestPlaceShieldedBet(t *testing.T) {
	now := time.Unix(1_900_000_000, 0)
	m := activeMarket(t, now)
	store := &fakeStore{}
	sink := &recordSink{}
	svc := newWagerService(store, &fakeMarkets{markets: map[string]domain.Market{m.ID: m}}, sink)
	svc.now = fixedClock(now)

	bet, err := svc.PlaceShieldedBet(context.Background(), PlaceShieldedBetParams{
		Market:          m.ID,
		Bettor:          "bob",
		EncryptedAmount: make([]byte, domain.EncryptedAmountLen),
		Proof:           make([]byte, domain.RangeProofLen),
		Outcome:         false,
	})
	require.NoError(t, err)

	assert.True(t, bet.Shielded)
	assert.Zero(t, bet.Amount)
	assert.Equal(t, testDeriver.ShieldedBetAddress(m.ID, "bob"), bet.ID)

	require.Len(t, store.shielded, 1)
	adm := store.shielded[0]
	assert.Equal(t, domain.PrivacyFee, adm.FeeTransfer.Amount)
	assert.Equal(t, testDeriver.TreasuryAddress(), adm.FeeTransfer.To)

	// The event must not leak any amount.
	require.Len(t, sink.events, 1)
	assert.Equal(t, domain.EventShieldedBetPlaced, sink.events[0].Type)
	assert.NotContains(t, sink.events[0].Detail, "amount")
}

func TestPlaceShieldedBet_VerifierFirst(t *testing.T) {
	// Artifact validation happens before the market is even loaded, so a
	// malformed ciphertext on a missing market reports the format error.
	svc := newWagerService(&fakeStore{}, &fakeMarkets{}, nil)

	_, err := svc.PlaceShieldedBet(context.Background(), PlaceShieldedBetParams{
		Market:          "missing",
		Bettor:          "bob",
		EncryptedAmount: make([]byte, 10),
		Proof:           make([]byte, domain.RangeProofLen),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidEncryptedData)

	_, err = svc.PlaceShieldedBet(context.Background(), PlaceShieldedBetParams{
		Market:          "missing",
		Bettor:          "bob",
		EncryptedAmount: make([]byte, domain.EncryptedAmountLen),
		Proof:           make([]byte, 10),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidProof)
}

func TestPlaceShieldedBet_ExpiredMarket(t *testing.T) {
	now := time.Unix(1_900_000_000, 0)
	m := activeMarket(t, now)
	m.ExpiresAt = now.Add(-time.Minute)
	svc := newWagerService(&fakeStore{}, &fakeMarkets{markets: map[string]domain.Market{m.ID: m}}, nil)
	svc.now = fixedClock(now)

	_, err := svc.PlaceShieldedBet(context.Background(), PlaceShieldedBetParams{
		Market:          m.ID,
		Bettor:          "bob",
		EncryptedAmount: make([]byte, domain.EncryptedAmountLen),
		Proof:           make([]byte, domain.RangeProofLen),
	})
	assert.ErrorIs(t, err, domain.ErrMarketExpired)
}
