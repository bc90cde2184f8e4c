package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alanyoungcy/wagerpool/internal/domain"
)

// CreateMarketParams are the caller-supplied fields of a new market.
type CreateMarketParams struct {
	Creator   string
	Question  string
	Category  string
	Region    string
	IsPrivate bool
	ExpiresAt time.Time
	Oracle    domain.OracleBinding
}

// MarketService handles market creation and reads.
type MarketService struct {
	store   domain.SettlementStore
	markets domain.MarketStore
	cache   domain.MarketCache
	derive  domain.AddressDeriver
	sink    domain.EventSink
	logger  *slog.Logger
	now     func() time.Time
}

// NewMarketService creates a MarketService with all required dependencies.
// sink may be nil.
func NewMarketService(
	store domain.SettlementStore,
	markets domain.MarketStore,
	cache domain.MarketCache,
	derive domain.AddressDeriver,
	sink domain.EventSink,
	logger *slog.Logger,
) *MarketService {
	if sink == nil {
		sink = nopSink{}
	}
	return &MarketService{
		store:   store,
		markets: markets,
		cache:   cache,
		derive:  derive,
		sink:    sink,
		logger:  logger,
		now:     time.Now,
	}
}

// Create validates and admits a new market. The market starts Active with
// zeroed pools and no outcome; its address is derived from (creator,
// expiry), so one creator gets at most one market per expiry.
func (s *MarketService) Create(ctx context.Context, p CreateMarketParams) (domain.Market, error) {
	if p.Question == "" {
		return domain.Market{}, domain.ErrQuestionEmpty
	}
	if len(p.Question) > domain.MaxQuestionLen {
		return domain.Market{}, domain.ErrQuestionTooLong
	}
	if len(p.Category) > domain.MaxLabelLen {
		return domain.Market{}, domain.ErrInvalidCategory
	}
	if len(p.Region) > domain.MaxLabelLen {
		return domain.Market{}, domain.ErrInvalidRegion
	}

	now := s.now()
	if !p.ExpiresAt.After(now) {
		return domain.Market{}, domain.ErrInvalidExpiry
	}
	if p.ExpiresAt.After(now.Add(domain.MaxMarketLifetime)) {
		return domain.Market{}, domain.ErrExpiryTooFar
	}

	m := domain.Market{
		ID:        s.derive.MarketAddress(p.Creator, p.ExpiresAt),
		Creator:   p.Creator,
		Question:  p.Question,
		Category:  p.Category,
		Region:    p.Region,
		IsPrivate: p.IsPrivate,
		Status:    domain.MarketStatusActive,
		Oracle:    p.Oracle,
		CreatedAt: now,
		ExpiresAt: p.ExpiresAt,
	}

	ev := newEvent(domain.EventMarketCreated, m.ID, now, map[string]any{
		"creator":    m.Creator,
		"question":   m.Question,
		"expires_at": m.ExpiresAt.Unix(),
		"has_oracle": m.Oracle.Enabled(),
	})

	if err := s.store.CreateMarket(ctx, m, ev); err != nil {
		return domain.Market{}, fmt.Errorf("market_service: create market: %w", err)
	}

	s.sink.Publish(ev)
	s.logger.InfoContext(ctx, "market_service: market created",
		slog.String("market", m.ID),
		slog.String("creator", m.Creator),
		slog.Bool("has_oracle", m.Oracle.Enabled()),
	)
	return m, nil
}

// Get retrieves a market by ID, checking the cache first and falling back
// to the persistent store on a miss.
func (s *MarketService) Get(ctx context.Context, id string) (domain.Market, error) {
	if s.cache != nil {
		if m, err := s.cache.Get(ctx, id); err == nil {
			return m, nil
		}
	}

	m, err := s.markets.Get(ctx, id)
	if err != nil {
		return domain.Market{}, fmt.Errorf("market_service: get %q: %w", id, err)
	}

	if s.cache != nil {
		if cacheErr := s.cache.Set(ctx, m); cacheErr != nil {
			s.logger.WarnContext(ctx, "market_service: cache set failed",
				slog.String("market", id),
				slog.String("error", cacheErr.Error()),
			)
		}
	}
	return m, nil
}

// ListActive returns active markets directly from the persistent store.
func (s *MarketService) ListActive(ctx context.Context, opts domain.ListOpts) ([]domain.Market, error) {
	markets, err := s.markets.ListActive(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("market_service: list active: %w", err)
	}
	return markets, nil
}

// Count returns the total number of markets.
func (s *MarketService) Count(ctx context.Context) (int64, error) {
	count, err := s.markets.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("market_service: count: %w", err)
	}
	return count, nil
}
