package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alanyoungcy/wagerpool/internal/domain"
)

// InitPoolParams are the inputs for initializing a market's shielded pool.
type InitPoolParams struct {
	Market       string
	Caller       string
	MXEAuthority string
}

// SubmitAggregateParams are the inputs of an aggregator write-back.
type SubmitAggregateParams struct {
	Market            string
	Caller            string
	EncryptedYesTotal []byte
	EncryptedNoTotal  []byte
	TotalShieldedBets uint32
	Finalize          bool
}

// ShieldedService coordinates the external aggregator: one shielded pool
// record per market, written back only by the bound MXE authority, with a
// one-way finalized latch.
type ShieldedService struct {
	store      domain.SettlementStore
	markets    domain.MarketStore
	aggregates domain.AggregateStore
	derive     domain.AddressDeriver
	sink       domain.EventSink
	logger     *slog.Logger
	now        func() time.Time
}

// NewShieldedService creates a ShieldedService. sink may be nil.
func NewShieldedService(
	store domain.SettlementStore,
	markets domain.MarketStore,
	aggregates domain.AggregateStore,
	derive domain.AddressDeriver,
	sink domain.EventSink,
	logger *slog.Logger,
) *ShieldedService {
	if sink == nil {
		sink = nopSink{}
	}
	return &ShieldedService{
		store:      store,
		markets:    markets,
		aggregates: aggregates,
		derive:     derive,
		sink:       sink,
		logger:     logger,
		now:        time.Now,
	}
}

// InitPool creates the market's shielded pool record, binding the MXE
// authority that may write aggregates back. Only the market creator may
// initialize, and the derived address makes the record unique per market.
func (s *ShieldedService) InitPool(ctx context.Context, p InitPoolParams) (domain.ShieldedPoolAggregate, error) {
	m, err := s.markets.Get(ctx, p.Market)
	if err != nil {
		return domain.ShieldedPoolAggregate{}, fmt.Errorf("shielded_service: get market %q: %w", p.Market, err)
	}
	if p.Caller != m.Creator {
		return domain.ShieldedPoolAggregate{}, domain.ErrUnauthorized
	}
	if m.Status != domain.MarketStatusActive {
		return domain.ShieldedPoolAggregate{}, domain.ErrMarketNotActive
	}
	if p.MXEAuthority == "" {
		return domain.ShieldedPoolAggregate{}, domain.ErrNotMXEAuthority
	}

	now := s.now()
	agg := domain.ShieldedPoolAggregate{
		ID:           s.derive.AggregateAddress(m.ID),
		Market:       m.ID,
		MXEAuthority: p.MXEAuthority,
		UpdatedAt:    now,
	}

	ev := newEvent(domain.EventShieldedPoolInit, m.ID, now, map[string]any{
		"mxe_authority": p.MXEAuthority,
	})

	if err := s.store.InitAggregate(ctx, agg, ev); err != nil {
		return domain.ShieldedPoolAggregate{}, fmt.Errorf("shielded_service: init aggregate: %w", err)
	}

	s.sink.Publish(ev)
	s.logger.InfoContext(ctx, "shielded_service: pool initialized",
		slog.String("market", m.ID),
		slog.String("mxe_authority", p.MXEAuthority),
	)
	return agg, nil
}

// SubmitAggregate overwrites the pool's encrypted totals with the
// aggregator's latest computation. Only the bound MXE authority may write,
// ciphertexts are capped, and a finalized pool rejects all further writes.
func (s *ShieldedService) SubmitAggregate(ctx context.Context, p SubmitAggregateParams) (domain.ShieldedPoolAggregate, error) {
	if len(p.EncryptedYesTotal) == 0 || len(p.EncryptedYesTotal) > domain.MaxAggregateCiphertextLen {
		return domain.ShieldedPoolAggregate{}, domain.ErrInvalidEncryptedData
	}
	if len(p.EncryptedNoTotal) == 0 || len(p.EncryptedNoTotal) > domain.MaxAggregateCiphertextLen {
		return domain.ShieldedPoolAggregate{}, domain.ErrInvalidEncryptedData
	}

	agg, err := s.aggregates.GetByMarket(ctx, p.Market)
	if err != nil {
		return domain.ShieldedPoolAggregate{}, fmt.Errorf("shielded_service: get aggregate for %q: %w", p.Market, err)
	}
	if p.Caller != agg.MXEAuthority {
		return domain.ShieldedPoolAggregate{}, domain.ErrNotMXEAuthority
	}
	if agg.Finalized {
		return domain.ShieldedPoolAggregate{}, domain.ErrShieldedPoolFinalized
	}

	now := s.now()
	sub := domain.AggregateSubmission{
		Pool:              agg.ID,
		EncryptedYesTotal: p.EncryptedYesTotal,
		EncryptedNoTotal:  p.EncryptedNoTotal,
		TotalShieldedBets: p.TotalShieldedBets,
		Finalize:          p.Finalize,
		UpdatedAt:         now,
		Event: newEvent(domain.EventAggregateSubmitted, p.Market, now, map[string]any{
			"total_shielded_bets": p.TotalShieldedBets,
			"finalized":           p.Finalize,
		}),
	}

	if err := s.store.SubmitAggregate(ctx, sub); err != nil {
		return domain.ShieldedPoolAggregate{}, fmt.Errorf("shielded_service: submit aggregate: %w", err)
	}

	agg.EncryptedYesTotal = p.EncryptedYesTotal
	agg.EncryptedNoTotal = p.EncryptedNoTotal
	agg.TotalShieldedBets = p.TotalShieldedBets
	agg.Finalized = p.Finalize
	agg.UpdatedAt = now

	s.sink.Publish(sub.Event)
	s.logger.InfoContext(ctx, "shielded_service: aggregate submitted",
		slog.String("market", p.Market),
		slog.Bool("finalized", p.Finalize),
	)
	return agg, nil
}

// Aggregate returns the market's shielded pool record.
func (s *ShieldedService) Aggregate(ctx context.Context, marketID string) (domain.ShieldedPoolAggregate, error) {
	agg, err := s.aggregates.GetByMarket(ctx, marketID)
	if err != nil {
		return domain.ShieldedPoolAggregate{}, fmt.Errorf("shielded_service: get aggregate for %q: %w", marketID, err)
	}
	return agg, nil
}
