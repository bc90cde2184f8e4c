package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/wagerpool/internal/domain"
)

func newMarketService(store *fakeStore, markets *fakeMarkets, sink domain.EventSink) *MarketService {
	return NewMarketService(store, markets, nil, testDeriver, sink, testLogger())
}

func TestMarketCreate(t *testing.T) {
	now := time.Unix(1_900_000_000, 0)
	store := &fakeStore{}
	sink := &recordSink{}
	svc := newMarketService(store, &fakeMarkets{}, sink)
	svc.now = fixedClock(now)

	m, err := svc.Create(context.Background(), CreateMarketParams{
		Creator:   "alice",
		Question:  "Will BTC close above 100k?",
		Category:  "crypto",
		ExpiresAt: now.Add(48 * time.Hour),
		Oracle: domain.OracleBinding{
			Authority: "0xoracle",
			Threshold: 100_000_00000000,
			Above:     true,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, testDeriver.MarketAddress("alice", now.Add(48*time.Hour)), m.ID)
	assert.Equal(t, domain.MarketStatusActive, m.Status)
	assert.Nil(t, m.Outcome)
	assert.Zero(t, m.YesPool)
	assert.Zero(t, m.NoPool)
	assert.True(t, m.Oracle.Enabled())

	require.Len(t, store.createdMarkets, 1)
	require.Len(t, sink.events, 1)
	assert.Equal(t, domain.EventMarketCreated, sink.events[0].Type)
}

func TestMarketCreate_Validation(t *testing.T) {
	now := time.Unix(1_900_000_000, 0)
	svc := newMarketService(&fakeStore{}, &fakeMarkets{}, nil)
	svc.now = fixedClock(now)

	base := CreateMarketParams{
		Creator:   "alice",
		Question:  "Will it rain?",
		ExpiresAt: now.Add(time.Hour),
	}

	cases := []struct {
		name   string
		mutate func(*CreateMarketParams)
		want   error
	}{
		{"empty question", func(p *CreateMarketParams) { p.Question = "" }, domain.ErrQuestionEmpty},
		{"question too long", func(p *CreateMarketParams) { p.Question = strings.Repeat("q", domain.MaxQuestionLen+1) }, domain.ErrQuestionTooLong},
		{"category too long", func(p *CreateMarketParams) { p.Category = strings.Repeat("c", domain.MaxLabelLen+1) }, domain.ErrInvalidCategory},
		{"region too long", func(p *CreateMarketParams) { p.Region = strings.Repeat("r", domain.MaxLabelLen+1) }, domain.ErrInvalidRegion},
		{"expiry in the past", func(p *CreateMarketParams) { p.ExpiresAt = now.Add(-time.Second) }, domain.ErrInvalidExpiry},
		{"expiry at now", func(p *CreateMarketParams) { p.ExpiresAt = now }, domain.ErrInvalidExpiry},
		{"expiry too far", func(p *CreateMarketParams) { p.ExpiresAt = now.Add(domain.MaxMarketLifetime + time.Hour) }, domain.ErrExpiryTooFar},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := base
			tc.mutate(&p)
			_, err := svc.Create(context.Background(), p)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestMarketCreate_BoundaryLengthsAccepted(t *testing.T) {
	now := time.Unix(1_900_000_000, 0)
	svc := newMarketService(&fakeStore{}, &fakeMarkets{}, nil)
	svc.now = fixedClock(now)

	_, err := svc.Create(context.Background(), CreateMarketParams{
		Creator:   "alice",
		Question:  strings.Repeat("q", domain.MaxQuestionLen),
		Category:  strings.Repeat("c", domain.MaxLabelLen),
		Region:    strings.Repeat("r", domain.MaxLabelLen),
		ExpiresAt: now.Add(domain.MaxMarketLifetime),
	})
	assert.NoError(t, err)
}

func TestMarketCreate_StoreConflict(t *testing.T) {
	now := time.Unix(1_900_000_000, 0)
	store := &fakeStore{err: domain.ErrAlreadyExists}
	svc := newMarketService(store, &fakeMarkets{}, nil)
	svc.now = fixedClock(now)

	_, err := svc.Create(context.Background(), CreateMarketParams{
		Creator:   "alice",
		Question:  "Will it rain?",
		ExpiresAt: now.Add(time.Hour),
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestMarketGet_FallsBackToStore(t *testing.T) {
	now := time.Unix(1_900_000_000, 0)
	m := activeMarket(t, now)
	markets := &fakeMarkets{markets: map[string]domain.Market{m.ID: m}}
	svc := newMarketService(&fakeStore{}, markets, nil)

	got, err := svc.Get(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
