package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/wagerpool/internal/domain"
)

func newPayoutService(store *fakeStore, markets *fakeMarkets, bets *fakeBets, sink domain.EventSink) *PayoutService {
	return NewPayoutService(store, markets, bets, testDeriver, &staticAuthority{}, sink, testLogger())
}

// resolvedMarket builds a market resolved with the given outcome and pools.
func resolvedMarket(t *testing.T, outcome bool, yesPool, noPool uint64) domain.Market {
	t.Helper()
	now := time.Unix(1_900_000_000, 0)
	m := activeMarket(t, now)
	m.Status = domain.MarketStatusResolved
	m.Outcome = &outcome
	m.ResolvedAt = &now
	m.YesPool = yesPool
	m.NoPool = noPool
	return m
}

func winningBet(m domain.Market, bettor string, amount uint64, outcome bool) domain.Bet {
	return domain.Bet{
		ID:      testDeriver.BetAddress(m.ID, bettor),
		Market:  m.ID,
		Bettor:  bettor,
		Outcome: outcome,
		Amount:  amount,
	}
}

func TestClaim(t *testing.T) {
	m := resolvedMarket(t, true, 1000, 500)
	bet := winningBet(m, "bob", 100, true)
	store := &fakeStore{}
	sink := &recordSink{}
	svc := newPayoutService(store,
		&fakeMarkets{markets: map[string]domain.Market{m.ID: m}},
		&fakeBets{bets: map[string]domain.Bet{m.ID + "/bob": bet}},
		sink,
	)

	payout, err := svc.Claim(context.Background(), ClaimParams{Market: m.ID, Claimant: "bob"})
	require.NoError(t, err)

	// 100 * (1000+500) / 1000 = 150
	assert.Equal(t, uint64(150), payout)

	require.Len(t, store.claims, 1)
	claim := store.claims[0]
	assert.Equal(t, bet.ID, claim.Bet)
	assert.Equal(t, testDeriver.VaultAddress(m.ID), claim.PayoutTransfer.From)
	assert.Equal(t, "bob", claim.PayoutTransfer.To)
	assert.Equal(t, uint64(150), claim.PayoutTransfer.Amount)
	assert.Equal(t, []byte("authorized"), claim.Authorization)

	require.Len(t, sink.events, 1)
	assert.Equal(t, domain.EventWinningsClaimed, sink.events[0].Type)
}

func TestClaim_SoleWinnerSweepsBothPools(t *testing.T) {
	m := resolvedMarket(t, false, 9_000_000, 1_000_000)
	bet := winningBet(m, "bob", 1_000_000, false)
	store := &fakeStore{}
	svc := newPayoutService(store,
		&fakeMarkets{markets: map[string]domain.Market{m.ID: m}},
		&fakeBets{bets: map[string]domain.Bet{m.ID + "/bob": bet}},
		nil,
	)

	payout, err := svc.Claim(context.Background(), ClaimParams{Market: m.ID, Claimant: "bob"})
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000), payout)
}

func TestClaim_Rejections(t *testing.T) {
	active := resolvedMarket(t, true, 1000, 500)
	active.Status = domain.MarketStatusActive
	active.Outcome = nil

	m := resolvedMarket(t, true, 1000, 500)

	claimed := winningBet(m, "carol", 100, true)
	claimed.Claimed = true

	markets := &fakeMarkets{markets: map[string]domain.Market{
		m.ID:     m,
		"active": active,
	}}
	bets := &fakeBets{bets: map[string]domain.Bet{
		m.ID + "/bob":   winningBet(m, "bob", 100, false), // bet on the losing side
		m.ID + "/carol": claimed,
	}}
	svc := newPayoutService(&fakeStore{}, markets, bets, nil)

	_, err := svc.Claim(context.Background(), ClaimParams{Market: "active", Claimant: "bob"})
	assert.ErrorIs(t, err, domain.ErrMarketNotResolved)

	_, err = svc.Claim(context.Background(), ClaimParams{Market: m.ID, Claimant: "bob"})
	assert.ErrorIs(t, err, domain.ErrBetLost)

	_, err = svc.Claim(context.Background(), ClaimParams{Market: m.ID, Claimant: "carol"})
	assert.ErrorIs(t, err, domain.ErrAlreadyClaimed)

	_, err = svc.Claim(context.Background(), ClaimParams{Market: m.ID, Claimant: "nobody"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClaim_ShieldedBetNotClaimable(t *testing.T) {
	// A shielded bet has no plaintext stake; claiming it would settle a
	// zero payout and burn the one-shot claimed latch.
	m := resolvedMarket(t, true, 1000, 500)
	bet := winningBet(m, "bob", 0, true)
	bet.ID = testDeriver.ShieldedBetAddress(m.ID, "bob")
	bet.Shielded = true

	store := &fakeStore{}
	svc := newPayoutService(store,
		&fakeMarkets{markets: map[string]domain.Market{m.ID: m}},
		&fakeBets{bets: map[string]domain.Bet{m.ID + "/bob": bet}},
		nil,
	)

	_, err := svc.Claim(context.Background(), ClaimParams{Market: m.ID, Claimant: "bob"})
	assert.ErrorIs(t, err, domain.ErrShieldedBetNotClaimable)
	assert.Empty(t, store.claims, "shielded bet must not settle")

	_, err = svc.Preview(context.Background(), ClaimParams{Market: m.ID, Claimant: "bob"})
	assert.ErrorIs(t, err, domain.ErrShieldedBetNotClaimable)
}

func TestClaim_NoWinningBets(t *testing.T) {
	// Everyone bet NO, YES won: the winning pool is empty and nothing pays.
	m := resolvedMarket(t, true, 0, 500)
	bet := winningBet(m, "bob", 100, true) // shielded-only YES exposure edge
	svc := newPayoutService(&fakeStore{},
		&fakeMarkets{markets: map[string]domain.Market{m.ID: m}},
		&fakeBets{bets: map[string]domain.Bet{m.ID + "/bob": bet}},
		nil,
	)

	_, err := svc.Claim(context.Background(), ClaimParams{Market: m.ID, Claimant: "bob"})
	assert.ErrorIs(t, err, domain.ErrNoWinningBets)
}

func TestPreview_MatchesClaimWithoutSettling(t *testing.T) {
	m := resolvedMarket(t, true, 1000, 500)
	bet := winningBet(m, "bob", 100, true)
	store := &fakeStore{}
	svc := newPayoutService(store,
		&fakeMarkets{markets: map[string]domain.Market{m.ID: m}},
		&fakeBets{bets: map[string]domain.Bet{m.ID + "/bob": bet}},
		nil,
	)

	preview, err := svc.Preview(context.Background(), ClaimParams{Market: m.ID, Claimant: "bob"})
	require.NoError(t, err)
	assert.Equal(t, uint64(150), preview)
	assert.Empty(t, store.claims, "preview must not settle")

	payout, err := svc.Claim(context.Background(), ClaimParams{Market: m.ID, Claimant: "bob"})
	require.NoError(t, err)
	assert.Equal(t, preview, payout)
}

func TestClaim_AuthorityFailureBlocksSettlement(t *testing.T) {
	m := resolvedMarket(t, true, 1000, 500)
	bet := winningBet(m, "bob", 100, true)
	store := &fakeStore{}
	svc := NewPayoutService(store,
		&fakeMarkets{markets: map[string]domain.Market{m.ID: m}},
		&fakeBets{bets: map[string]domain.Bet{m.ID + "/bob": bet}},
		testDeriver,
		&staticAuthority{err: domain.ErrUnauthorized},
		nil,
		testLogger(),
	)

	_, err := svc.Claim(context.Background(), ClaimParams{Market: m.ID, Claimant: "bob"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Empty(t, store.claims)
}
