package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alanyoungcy/wagerpool/internal/domain"
	"github.com/alanyoungcy/wagerpool/internal/oracle"
)

// ResolveParams are the inputs of a manual resolution.
type ResolveParams struct {
	Market   string
	Resolver string
	Outcome  bool
}

// ResolveOracleParams are the inputs of an oracle-verified resolution.
// FeedAddress selects the price source: a real feed address is fetched and
// parsed, while oracle.SentinelFeed (or empty) switches to the manually
// attested price for feeds without an on-ledger source yet.
type ResolveOracleParams struct {
	Market        string
	Caller        string
	FeedAddress   string
	AttestedPrice int64
	Outcome       bool
}

// ResolutionService transitions markets from Active to Resolved, either by
// the trusted creator or by the bound oracle authority against a verified
// price. Resolution is terminal: a resolved market can never be resolved
// again, only rejected.
type ResolutionService struct {
	store   domain.SettlementStore
	markets domain.MarketStore
	cache   domain.MarketCache
	feeds   domain.FeedSource
	sink    domain.EventSink
	logger  *slog.Logger
	now     func() time.Time
}

// NewResolutionService creates a ResolutionService. cache and sink may be
// nil; feeds may be nil when only manual-attestation oracle resolution is
// needed.
func NewResolutionService(
	store domain.SettlementStore,
	markets domain.MarketStore,
	cache domain.MarketCache,
	feeds domain.FeedSource,
	sink domain.EventSink,
	logger *slog.Logger,
) *ResolutionService {
	if sink == nil {
		sink = nopSink{}
	}
	return &ResolutionService{
		store:   store,
		markets: markets,
		cache:   cache,
		feeds:   feeds,
		sink:    sink,
		logger:  logger,
		now:     time.Now,
	}
}

// Resolve performs the manual resolution path: only the creator, only once
// the market has reached its expiry, only while still Active.
func (s *ResolutionService) Resolve(ctx context.Context, p ResolveParams) (domain.Market, error) {
	m, err := s.markets.Get(ctx, p.Market)
	if err != nil {
		return domain.Market{}, fmt.Errorf("resolution_service: get market %q: %w", p.Market, err)
	}

	if m.Resolved() {
		return domain.Market{}, domain.ErrMarketAlreadyResolved
	}
	if m.Status != domain.MarketStatusActive {
		return domain.Market{}, domain.ErrMarketNotActive
	}
	if p.Resolver != m.Creator {
		return domain.Market{}, domain.ErrUnauthorized
	}
	now := s.now()
	if now.Before(m.ExpiresAt) {
		return domain.Market{}, domain.ErrMarketNotExpired
	}

	return s.commit(ctx, m, p.Resolver, p.Outcome, now)
}

// ResolveOracle performs the oracle-verified path. The caller must be the
// bound oracle authority, but their signature alone is not enough: the
// claimed outcome must match the comparison of the effective price against
// the market's threshold, so an authorized-but-dishonest caller cannot
// resolve against the true price.
func (s *ResolutionService) ResolveOracle(ctx context.Context, p ResolveOracleParams) (domain.Market, error) {
	m, err := s.markets.Get(ctx, p.Market)
	if err != nil {
		return domain.Market{}, fmt.Errorf("resolution_service: get market %q: %w", p.Market, err)
	}

	if !m.Oracle.Enabled() {
		return domain.Market{}, domain.ErrOracleNotSet
	}
	if p.Caller != m.Oracle.Authority {
		return domain.Market{}, domain.ErrUnauthorized
	}
	if m.Resolved() {
		return domain.Market{}, domain.ErrMarketAlreadyResolved
	}
	if m.Status != domain.MarketStatusActive {
		return domain.Market{}, domain.ErrMarketNotActive
	}

	effectivePrice := p.AttestedPrice
	if p.FeedAddress != "" && p.FeedAddress != oracle.SentinelFeed {
		if s.feeds == nil {
			return domain.Market{}, domain.ErrInvalidOracleAccount
		}
		snap, err := s.feeds.Snapshot(ctx, p.FeedAddress)
		if err != nil {
			return domain.Market{}, fmt.Errorf("resolution_service: feed snapshot %q: %w", p.FeedAddress, err)
		}
		price, err := oracle.ReadPrice(snap.Data, snap.Slot)
		if err != nil {
			return domain.Market{}, err
		}
		effectivePrice = price.Value
	}

	expected := effectivePrice <= m.Oracle.Threshold
	if m.Oracle.Above {
		expected = effectivePrice >= m.Oracle.Threshold
	}
	if p.Outcome != expected {
		return domain.Market{}, domain.ErrOraclePriceMismatch
	}

	return s.commit(ctx, m, p.Caller, p.Outcome, s.now())
}

// commit writes the terminal state transition and fans out the event.
func (s *ResolutionService) commit(ctx context.Context, m domain.Market, resolver string, outcome bool, now time.Time) (domain.Market, error) {
	res := domain.Resolution{
		Market:     m.ID,
		Outcome:    outcome,
		ResolvedAt: now,
		Event: newEvent(domain.EventMarketResolved, m.ID, now, map[string]any{
			"resolver": resolver,
			"outcome":  outcome,
			"yes_pool": m.YesPool,
			"no_pool":  m.NoPool,
		}),
	}

	if err := s.store.ResolveMarket(ctx, res); err != nil {
		return domain.Market{}, fmt.Errorf("resolution_service: resolve market: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, m.ID); err != nil {
			s.logger.WarnContext(ctx, "resolution_service: cache invalidate failed",
				slog.String("market", m.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	m.Status = domain.MarketStatusResolved
	m.Outcome = &outcome
	m.ResolvedAt = &now

	s.sink.Publish(res.Event)
	s.logger.InfoContext(ctx, "resolution_service: market resolved",
		slog.String("market", m.ID),
		slog.String("resolver", resolver),
		slog.Bool("outcome", outcome),
		slog.Uint64("yes_pool", m.YesPool),
		slog.Uint64("no_pool", m.NoPool),
	)
	return m, nil
}
