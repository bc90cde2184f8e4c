package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alanyoungcy/wagerpool/internal/domain"
	"github.com/alanyoungcy/wagerpool/internal/keys"
)

// testLogger discards log output.
func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fakeStore records every settlement command it receives. Setting err makes
// all commands fail with that error.
type fakeStore struct {
	err error

	createdMarkets []domain.Market
	admissions     []domain.BetAdmission
	shielded       []domain.ShieldedAdmission
	resolutions    []domain.Resolution
	claims         []domain.ClaimSettlement
	aggregates     []domain.ShieldedPoolAggregate
	submissions    []domain.AggregateSubmission
}

func (f *fakeStore) CreateMarket(_ context.Context, m domain.Market, _ domain.Event) error {
	if f.err != nil {
		return f.err
	}
	f.createdMarkets = append(f.createdMarkets, m)
	return nil
}

func (f *fakeStore) AdmitBet(_ context.Context, adm domain.BetAdmission) error {
	if f.err != nil {
		return f.err
	}
	f.admissions = append(f.admissions, adm)
	return nil
}

func (f *fakeStore) AdmitShieldedBet(_ context.Context, adm domain.ShieldedAdmission) error {
	if f.err != nil {
		return f.err
	}
	f.shielded = append(f.shielded, adm)
	return nil
}

func (f *fakeStore) ResolveMarket(_ context.Context, res domain.Resolution) error {
	if f.err != nil {
		return f.err
	}
	f.resolutions = append(f.resolutions, res)
	return nil
}

func (f *fakeStore) SettleClaim(_ context.Context, claim domain.ClaimSettlement) error {
	if f.err != nil {
		return f.err
	}
	f.claims = append(f.claims, claim)
	return nil
}

func (f *fakeStore) InitAggregate(_ context.Context, agg domain.ShieldedPoolAggregate, _ domain.Event) error {
	if f.err != nil {
		return f.err
	}
	f.aggregates = append(f.aggregates, agg)
	return nil
}

func (f *fakeStore) SubmitAggregate(_ context.Context, sub domain.AggregateSubmission) error {
	if f.err != nil {
		return f.err
	}
	f.submissions = append(f.submissions, sub)
	return nil
}

// fakeMarkets serves market reads from a map.
type fakeMarkets struct {
	markets map[string]domain.Market
}

func (f *fakeMarkets) Get(_ context.Context, id string) (domain.Market, error) {
	m, ok := f.markets[id]
	if !ok {
		return domain.Market{}, domain.ErrNotFound
	}
	return m, nil
}

func (f *fakeMarkets) ListActive(_ context.Context, _ domain.ListOpts) ([]domain.Market, error) {
	var out []domain.Market
	for _, m := range f.markets {
		if m.Status == domain.MarketStatusActive {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMarkets) Count(_ context.Context) (int64, error) {
	return int64(len(f.markets)), nil
}

// fakeBets serves bet reads keyed on (market, bettor).
type fakeBets struct {
	bets map[string]domain.Bet // key: market + "/" + bettor
}

func (f *fakeBets) Get(_ context.Context, id string) (domain.Bet, error) {
	for _, b := range f.bets {
		if b.ID == id {
			return b, nil
		}
	}
	return domain.Bet{}, domain.ErrNotFound
}

func (f *fakeBets) GetByBettor(_ context.Context, marketID, bettor string) (domain.Bet, error) {
	b, ok := f.bets[marketID+"/"+bettor]
	if !ok {
		return domain.Bet{}, domain.ErrNotFound
	}
	return b, nil
}

func (f *fakeBets) ListByMarket(_ context.Context, marketID string, _ domain.ListOpts) ([]domain.Bet, error) {
	var out []domain.Bet
	for _, b := range f.bets {
		if b.Market == marketID {
			out = append(out, b)
		}
	}
	return out, nil
}

// fakeAggregates serves aggregate reads from a map keyed on market.
type fakeAggregates struct {
	aggs map[string]domain.ShieldedPoolAggregate
}

func (f *fakeAggregates) GetByMarket(_ context.Context, marketID string) (domain.ShieldedPoolAggregate, error) {
	agg, ok := f.aggs[marketID]
	if !ok {
		return domain.ShieldedPoolAggregate{}, domain.ErrNotFound
	}
	return agg, nil
}

// recordSink collects published events.
type recordSink struct {
	events []domain.Event
}

func (r *recordSink) Publish(ev domain.Event) {
	r.events = append(r.events, ev)
}

// staticAuthority signs every payout with a fixed blob.
type staticAuthority struct {
	err error
}

func (a *staticAuthority) AuthorizePayout(_, _ string, _ uint64) ([]byte, error) {
	if a.err != nil {
		return nil, a.err
	}
	return []byte("authorized"), nil
}

func (a *staticAuthority) Address() string { return "0xauthority" }

// fakeFeeds serves snapshots from a map keyed on feed address.
type fakeFeeds struct {
	snaps map[string]domain.FeedSnapshot
}

func (f *fakeFeeds) Snapshot(_ context.Context, feedAddress string) (domain.FeedSnapshot, error) {
	snap, ok := f.snaps[feedAddress]
	if !ok {
		return domain.FeedSnapshot{}, domain.ErrNotFound
	}
	return snap, nil
}

// fixedClock pins a service's clock to a known instant.
func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

var testDeriver = keys.NewDeriver()

// activeMarket builds a market open for wagers at the given instant.
func activeMarket(t *testing.T, now time.Time) domain.Market {
	t.Helper()
	expiry := now.Add(24 * time.Hour)
	return domain.Market{
		ID:        testDeriver.MarketAddress("creator", expiry),
		Creator:   "creator",
		Question:  "Will it settle?",
		Status:    domain.MarketStatusActive,
		CreatedAt: now.Add(-time.Hour),
		ExpiresAt: expiry,
	}
}
