package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alanyoungcy/wagerpool/internal/domain"
)

// ClaimParams are the inputs of a winnings claim.
type ClaimParams struct {
	Market   string
	Claimant string
}

// PayoutService settles winning claims against resolved markets. The payout
// is the claimant's proportional share of the combined pools, computed with
// 128-bit intermediates, and the vault debit is authorized by the protocol
// authority, never by the claimant.
type PayoutService struct {
	store     domain.SettlementStore
	markets   domain.MarketStore
	bets      domain.BetStore
	derive    domain.AddressDeriver
	authority domain.VaultAuthority
	sink      domain.EventSink
	logger    *slog.Logger
	now       func() time.Time
}

// NewPayoutService creates a PayoutService. sink may be nil.
func NewPayoutService(
	store domain.SettlementStore,
	markets domain.MarketStore,
	bets domain.BetStore,
	derive domain.AddressDeriver,
	authority domain.VaultAuthority,
	sink domain.EventSink,
	logger *slog.Logger,
) *PayoutService {
	if sink == nil {
		sink = nopSink{}
	}
	return &PayoutService{
		store:     store,
		markets:   markets,
		bets:      bets,
		derive:    derive,
		authority: authority,
		sink:      sink,
		logger:    logger,
		now:       time.Now,
	}
}

// Claim pays out the claimant's winning bet. Each bet pays at most once:
// the claimed latch commits atomically with the vault debit.
func (s *PayoutService) Claim(ctx context.Context, p ClaimParams) (uint64, error) {
	m, err := s.markets.Get(ctx, p.Market)
	if err != nil {
		return 0, fmt.Errorf("payout_service: get market %q: %w", p.Market, err)
	}
	if !m.Resolved() {
		return 0, domain.ErrMarketNotResolved
	}

	bet, err := s.bets.GetByBettor(ctx, m.ID, p.Claimant)
	if err != nil {
		return 0, fmt.Errorf("payout_service: get bet for %q: %w", p.Claimant, err)
	}
	// Shielded stakes carry no plaintext amount here; they settle through the
	// aggregate pool. Admitting them would latch claimed on a zero payout.
	if bet.Shielded {
		return 0, domain.ErrShieldedBetNotClaimable
	}
	if bet.Claimed {
		return 0, domain.ErrAlreadyClaimed
	}
	if bet.Outcome != *m.Outcome {
		return 0, domain.ErrBetLost
	}

	winning, losing := m.Pools(*m.Outcome)
	if winning == 0 {
		return 0, domain.ErrNoWinningBets
	}

	payout, err := domain.PayoutRatio(bet.Amount, winning, losing)
	if err != nil {
		return 0, err
	}

	auth, err := s.authority.AuthorizePayout(m.ID, p.Claimant, payout)
	if err != nil {
		return 0, fmt.Errorf("payout_service: authorize payout: %w", err)
	}

	now := s.now()
	claim := domain.ClaimSettlement{
		Bet: bet.ID,
		PayoutTransfer: domain.Transfer{
			From:   s.derive.VaultAddress(m.ID),
			To:     p.Claimant,
			Amount: payout,
		},
		Authorization: auth,
		Event: newEvent(domain.EventWinningsClaimed, m.ID, now, map[string]any{
			"claimant": p.Claimant,
			"payout":   payout,
			"stake":    bet.Amount,
		}),
	}

	if err := s.store.SettleClaim(ctx, claim); err != nil {
		return 0, fmt.Errorf("payout_service: settle claim: %w", err)
	}

	s.sink.Publish(claim.Event)
	s.logger.InfoContext(ctx, "payout_service: winnings claimed",
		slog.String("market", m.ID),
		slog.String("claimant", p.Claimant),
		slog.Uint64("stake", bet.Amount),
		slog.Uint64("payout", payout),
	)
	return payout, nil
}

// Preview computes the payout a claimant would receive without settling.
// It applies the same checks as Claim but mutates nothing.
func (s *PayoutService) Preview(ctx context.Context, p ClaimParams) (uint64, error) {
	m, err := s.markets.Get(ctx, p.Market)
	if err != nil {
		return 0, fmt.Errorf("payout_service: get market %q: %w", p.Market, err)
	}
	if !m.Resolved() {
		return 0, domain.ErrMarketNotResolved
	}

	bet, err := s.bets.GetByBettor(ctx, m.ID, p.Claimant)
	if err != nil {
		return 0, fmt.Errorf("payout_service: get bet for %q: %w", p.Claimant, err)
	}
	if bet.Shielded {
		return 0, domain.ErrShieldedBetNotClaimable
	}
	if bet.Claimed {
		return 0, domain.ErrAlreadyClaimed
	}
	if bet.Outcome != *m.Outcome {
		return 0, domain.ErrBetLost
	}

	winning, losing := m.Pools(*m.Outcome)
	if winning == 0 {
		return 0, domain.ErrNoWinningBets
	}
	return domain.PayoutRatio(bet.Amount, winning, losing)
}
