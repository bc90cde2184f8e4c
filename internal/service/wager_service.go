package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alanyoungcy/wagerpool/internal/domain"
)

// PlaceBetParams are the caller-supplied fields of a plain wager.
type PlaceBetParams struct {
	Market  string
	Bettor  string
	Amount  uint64 // gross stake, minor units
	Outcome bool
}

// PlaceShieldedBetParams are the caller-supplied fields of a shielded
// wager. The amount travels only as ciphertext.
type PlaceShieldedBetParams struct {
	Market          string
	Bettor          string
	EncryptedAmount []byte
	Proof           []byte
	Outcome         bool
}

// WagerService admits wagers: it splits the fee, moves value, grows the
// chosen pool, and records the bet — all as one atomic effect.
type WagerService struct {
	store    domain.SettlementStore
	markets  domain.MarketStore
	cache    domain.MarketCache
	derive   domain.AddressDeriver
	verifier domain.ProofVerifier
	sink     domain.EventSink
	logger   *slog.Logger
	now      func() time.Time
}

// NewWagerService creates a WagerService. cache and sink may be nil.
func NewWagerService(
	store domain.SettlementStore,
	markets domain.MarketStore,
	cache domain.MarketCache,
	derive domain.AddressDeriver,
	verifier domain.ProofVerifier,
	sink domain.EventSink,
	logger *slog.Logger,
) *WagerService {
	if sink == nil {
		sink = nopSink{}
	}
	return &WagerService{
		store:    store,
		markets:  markets,
		cache:    cache,
		derive:   derive,
		verifier: verifier,
		sink:     sink,
		logger:   logger,
		now:      time.Now,
	}
}

// PlaceBet admits a plain wager. The 0.5% platform fee goes to the
// treasury and the net stake to the market vault; the chosen pool grows by
// the net stake. Either both transfers and the record commit, or nothing
// does.
func (s *WagerService) PlaceBet(ctx context.Context, p PlaceBetParams) (domain.Bet, error) {
	m, err := s.markets.Get(ctx, p.Market)
	if err != nil {
		return domain.Bet{}, fmt.Errorf("wager_service: get market %q: %w", p.Market, err)
	}

	if m.Status != domain.MarketStatusActive {
		return domain.Bet{}, domain.ErrMarketNotActive
	}
	now := s.now()
	if !now.Before(m.ExpiresAt) {
		return domain.Bet{}, domain.ErrMarketExpired
	}
	if p.Amount < domain.MinStake {
		return domain.Bet{}, domain.ErrBetTooSmall
	}
	if p.Amount > domain.MaxStake {
		return domain.Bet{}, domain.ErrBetTooLarge
	}

	fee, net, err := domain.SplitFee(p.Amount, domain.FeeBps)
	if err != nil {
		return domain.Bet{}, err
	}

	// Overflow guard against the current snapshot; the store applies the
	// increment itself under the row lock.
	pool := m.NoPool
	if p.Outcome {
		pool = m.YesPool
	}
	if _, err := domain.CheckedAdd(pool, net); err != nil {
		return domain.Bet{}, err
	}
	if _, err := domain.CheckedAddU32(m.TotalBets, 1); err != nil {
		return domain.Bet{}, err
	}

	bet := domain.Bet{
		ID:       s.derive.BetAddress(m.ID, p.Bettor),
		Market:   m.ID,
		Bettor:   p.Bettor,
		Outcome:  p.Outcome,
		Amount:   net,
		PlacedAt: now,
	}

	adm := domain.BetAdmission{
		Bet: bet,
		FeeTransfer: domain.Transfer{
			From:   p.Bettor,
			To:     s.derive.TreasuryAddress(),
			Amount: fee,
		},
		StakeTransfer: domain.Transfer{
			From:   p.Bettor,
			To:     s.derive.VaultAddress(m.ID),
			Amount: net,
		},
		Event: newEvent(domain.EventBetPlaced, m.ID, now, map[string]any{
			"bettor":  p.Bettor,
			"outcome": p.Outcome,
			"amount":  net,
			"fee":     fee,
		}),
	}

	if err := s.store.AdmitBet(ctx, adm); err != nil {
		return domain.Bet{}, fmt.Errorf("wager_service: admit bet: %w", err)
	}

	s.invalidate(ctx, m.ID)
	s.sink.Publish(adm.Event)
	s.logger.InfoContext(ctx, "wager_service: bet placed",
		slog.String("market", m.ID),
		slog.String("bettor", p.Bettor),
		slog.Bool("outcome", p.Outcome),
		slog.Uint64("net", net),
		slog.Uint64("fee", fee),
	)
	return bet, nil
}

// PlaceShieldedBet admits a shielded wager: the ciphertext and proof are
// validated structurally, a flat privacy fee goes to the treasury, and only
// the bet counters grow — the pools stay untouched because the amount is
// unknown in plaintext. The emitted event carries no amount.
func (s *WagerService) PlaceShieldedBet(ctx context.Context, p PlaceShieldedBetParams) (domain.Bet, error) {
	if err := s.verifier.VerifyEncryptedAmount(p.EncryptedAmount); err != nil {
		return domain.Bet{}, err
	}
	if err := s.verifier.VerifyRangeProof(p.Proof, p.EncryptedAmount); err != nil {
		return domain.Bet{}, err
	}

	m, err := s.markets.Get(ctx, p.Market)
	if err != nil {
		return domain.Bet{}, fmt.Errorf("wager_service: get market %q: %w", p.Market, err)
	}
	if m.Status != domain.MarketStatusActive {
		return domain.Bet{}, domain.ErrMarketNotActive
	}
	now := s.now()
	if !now.Before(m.ExpiresAt) {
		return domain.Bet{}, domain.ErrMarketExpired
	}

	if _, err := domain.CheckedAddU32(m.TotalBets, 1); err != nil {
		return domain.Bet{}, err
	}
	if _, err := domain.CheckedAddU32(m.ShieldedBets, 1); err != nil {
		return domain.Bet{}, err
	}

	bet := domain.Bet{
		ID:              s.derive.ShieldedBetAddress(m.ID, p.Bettor),
		Market:          m.ID,
		Bettor:          p.Bettor,
		Outcome:         p.Outcome,
		Shielded:        true,
		EncryptedAmount: p.EncryptedAmount,
		Proof:           p.Proof,
		PlacedAt:        now,
	}

	adm := domain.ShieldedAdmission{
		Bet: bet,
		FeeTransfer: domain.Transfer{
			From:   p.Bettor,
			To:     s.derive.TreasuryAddress(),
			Amount: domain.PrivacyFee,
		},
		Event: newEvent(domain.EventShieldedBetPlaced, m.ID, now, map[string]any{
			"bettor":  p.Bettor,
			"outcome": p.Outcome,
		}),
	}

	if err := s.store.AdmitShieldedBet(ctx, adm); err != nil {
		return domain.Bet{}, fmt.Errorf("wager_service: admit shielded bet: %w", err)
	}

	s.invalidate(ctx, m.ID)
	s.sink.Publish(adm.Event)
	s.logger.InfoContext(ctx, "wager_service: shielded bet placed",
		slog.String("market", m.ID),
		slog.String("bettor", p.Bettor),
	)
	return bet, nil
}

func (s *WagerService) invalidate(ctx context.Context, marketID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, marketID); err != nil {
		s.logger.WarnContext(ctx, "wager_service: cache invalidate failed",
			slog.String("market", marketID),
			slog.String("error", err.Error()),
		)
	}
}
