// Package server assembles the HTTP + WebSocket API for the settlement
// engine: route registration, middleware chain, and lifecycle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alanyoungcy/wagerpool/internal/domain"
	"github.com/alanyoungcy/wagerpool/internal/server/handler"
	"github.com/alanyoungcy/wagerpool/internal/server/middleware"
	"github.com/alanyoungcy/wagerpool/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled

	// BetRateLimit caps wager admissions per bettor per BetRateWindow.
	// Zero disables the limiter.
	BetRateLimit  int
	BetRateWindow time.Duration
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health      *handler.HealthHandler
	Markets     *handler.MarketHandler
	Wagers      *handler.WagerHandler
	Resolutions *handler.ResolutionHandler
	Claims      *handler.ClaimHandler
	Shielded    *handler.ShieldedHandler
	Ledger      *handler.LedgerHandler
	Events      *handler.EventHandler
}

// Server is the headless HTTP + WebSocket API server for the wager pool.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
// It wires up middleware (logging, CORS, auth) and attaches the WebSocket
// hub. The rate limiter guards only the admission routes.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// metered wraps an admission handler with the bet rate limit.
	metered := func(h http.HandlerFunc) http.Handler {
		if limiter == nil || cfg.BetRateLimit <= 0 {
			return h
		}
		window := cfg.BetRateWindow
		if window <= 0 {
			window = time.Minute
		}
		return middleware.RateLimit(limiter, cfg.BetRateLimit, window)(h)
	}

	// Health check (no auth required).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Market lifecycle.
	mux.HandleFunc("GET /api/markets", handlers.Markets.ListMarkets)
	mux.HandleFunc("POST /api/markets", handlers.Markets.CreateMarket)
	mux.HandleFunc("GET /api/markets/{id}", handlers.Markets.GetMarket)
	mux.HandleFunc("POST /api/markets/{id}/resolve", handlers.Resolutions.Resolve)
	mux.HandleFunc("POST /api/markets/{id}/resolve-oracle", handlers.Resolutions.ResolveOracle)

	// Wager admission and reads.
	mux.Handle("POST /api/markets/{id}/bets", metered(handlers.Wagers.PlaceBet))
	mux.Handle("POST /api/markets/{id}/shielded-bets", metered(handlers.Wagers.PlaceShieldedBet))
	mux.HandleFunc("GET /api/markets/{id}/bets", handlers.Wagers.ListBets)
	mux.HandleFunc("GET /api/markets/{id}/bets/{bettor}", handlers.Wagers.GetBet)

	// Claims.
	mux.HandleFunc("POST /api/markets/{id}/claim", handlers.Claims.Claim)
	mux.HandleFunc("GET /api/markets/{id}/claim", handlers.Claims.PreviewClaim)

	// Shielded pool coordination.
	mux.HandleFunc("POST /api/markets/{id}/shielded-pool", handlers.Shielded.InitPool)
	mux.HandleFunc("PUT /api/markets/{id}/shielded-pool", handlers.Shielded.SubmitAggregate)
	mux.HandleFunc("GET /api/markets/{id}/shielded-pool", handlers.Shielded.GetAggregate)

	// Ledger accounts.
	mux.HandleFunc("GET /api/ledger/{address}", handlers.Ledger.GetBalance)
	mux.HandleFunc("POST /api/ledger/{address}/deposit", handlers.Ledger.Deposit)

	// Event log.
	mux.HandleFunc("GET /api/events", handlers.Events.ListEvents)
	mux.HandleFunc("GET /api/markets/{id}/events", handlers.Events.ListMarketEvents)

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain.
	var h http.Handler = mux

	// Apply auth middleware (skips if APIKey is empty).
	h = middleware.Auth(cfg.APIKey)(h)

	// Apply request logging middleware.
	h = middleware.Logging(logger)(h)

	// Apply CORS middleware.
	h = corsMiddleware(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// corsMiddleware returns middleware that sets CORS headers for the allowed
// origins. If no origins are specified, it defaults to allowing all origins.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if origin != "" {
				allowed := len(allowedOrigins) == 0 // allow all if none specified
				for _, o := range allowedOrigins {
					if strings.EqualFold(o, "*") || strings.EqualFold(o, origin) {
						allowed = true
						break
					}
				}

				if allowed {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")
					w.Header().Set("Access-Control-Max-Age", "86400")
				}
			}

			// Handle preflight requests.
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
