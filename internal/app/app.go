// Package app provides the top-level application lifecycle for the wager
// pool settlement engine. It wires together all dependencies (stores,
// caches, blob storage, crypto, services, and notifications), assembles the
// HTTP + WebSocket API, and runs everything until shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/wagerpool/internal/config"
	"github.com/alanyoungcy/wagerpool/internal/domain"
	"github.com/alanyoungcy/wagerpool/internal/notify"
	"github.com/alanyoungcy/wagerpool/internal/server"
	"github.com/alanyoungcy/wagerpool/internal/server/handler"
	"github.com/alanyoungcy/wagerpool/internal/server/ws"
	"github.com/alanyoungcy/wagerpool/internal/service"
)

// shutdownTimeout bounds how long in-flight requests may run after the
// process receives a termination signal.
const shutdownTimeout = 15 * time.Second

// App is the root application object. It owns the configuration, logger, and
// a list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run is the main entry point. It wires all dependencies, starts the event
// hub and HTTP server, and blocks until the context is cancelled. On return
// it runs all registered cleanup functions via Close.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.Int("port", a.cfg.Server.Port),
		slog.String("log_level", a.cfg.LogLevel),
	)

	deps, cleanup, err := Wire(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	// Event fan-out: every committed settlement event reaches the WebSocket
	// hub, the operator notifier, and (when S3 is enabled) the archiver.
	hub := ws.NewHub(a.logger)
	sinks := multiSink{hub, notify.NewSink(deps.Notifier)}
	if deps.Archiver != nil {
		sinks = append(sinks, newArchiveSink(deps.Markets, deps.Events, deps.Archiver, a.logger))
	}
	var sink domain.EventSink = sinks

	// Services.
	marketSvc := service.NewMarketService(deps.Settlement, deps.Markets, deps.MarketCache, deps.Deriver, sink, a.logger)
	wagerSvc := service.NewWagerService(deps.Settlement, deps.Markets, deps.MarketCache, deps.Deriver, deps.Verifier, sink, a.logger)
	resolutionSvc := service.NewResolutionService(deps.Settlement, deps.Markets, deps.MarketCache, deps.Feeds, sink, a.logger)
	payoutSvc := service.NewPayoutService(deps.Settlement, deps.Markets, deps.Bets, deps.Deriver, deps.Authority, sink, a.logger)
	shieldedSvc := service.NewShieldedService(deps.Settlement, deps.Markets, deps.Aggregates, deps.Deriver, sink, a.logger)

	// HTTP layer.
	handlers := server.Handlers{
		Health:      handler.NewHealthHandler(a.logger),
		Markets:     handler.NewMarketHandler(marketSvc, a.logger),
		Wagers:      handler.NewWagerHandler(wagerSvc, deps.Bets, a.logger),
		Resolutions: handler.NewResolutionHandler(resolutionSvc, a.logger),
		Claims:      handler.NewClaimHandler(payoutSvc, a.logger),
		Shielded:    handler.NewShieldedHandler(shieldedSvc, a.logger),
		Ledger:      handler.NewLedgerHandler(deps.Ledger, a.logger),
		Events:      handler.NewEventHandler(deps.Events, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:          a.cfg.Server.Port,
		CORSOrigins:   a.cfg.Server.CORSOrigins,
		APIKey:        a.cfg.Server.APIKey,
		BetRateLimit:  a.cfg.Server.BetRateLimit,
		BetRateWindow: a.cfg.Server.BetRateWindow.Duration,
	}, handlers, hub, deps.RateLimiter, a.logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hub.Run(gctx)
	})

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return fmt.Errorf("app: %w", err)
	}
	return ctx.Err()
}

// Close tears down all resources in reverse registration order. It is safe to
// call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
