package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bomb-arena/internal/config"
)

// shutdownTimeout bounds graceful HTTP shutdown
const shutdownTimeout = 5 * time.Second

// ServerDeps are the collaborators of the HTTP server
type ServerDeps struct {
	Session SessionInterface
	Input   InputInterface
	Events  EventStatsSource
}

// Server is the HTTP API server with WebSocket support.
// It combines the HTTP router with WebSocket hub for real-time updates.
type Server struct {
	cfg         config.ServerConfig
	deps        ServerDeps
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
}

// NewServer creates the API server.
//
// IMPORTANT: Background workers do NOT start until Run() is called.
// For testing HTTP endpoints without WebSocket support, use NewRouter() directly.
func NewServer(cfg config.ServerConfig, limits config.ResourceLimits, deps ServerDeps) *Server {
	s := &Server{
		cfg:  cfg,
		deps: deps,
		wsHub: NewWebSocketHub(HubConfig{
			MaxConnections:      limits.MaxWSConnections,
			MaxConnectionsPerIP: limits.MaxWSConnectionsPerIP,
			Origins:             cfg.CORSOrigins,
		}, deps.Input),
		rateLimiter: NewIPRateLimiter(RateLimitConfig{
			RequestsPerSecond: limits.RequestsPerSecond,
			Burst:             limits.Burst,
		}),
	}

	s.router = NewRouter(RouterConfig{
		Session:     deps.Session,
		Input:       deps.Input,
		Events:      deps.Events,
		RateLimiter: s.rateLimiter,
		CORSOrigins: cfg.CORSOrigins,
		AdminToken:  cfg.AdminToken,
	})
	s.router.Get("/ws", s.wsHub.HandleWebSocket)

	return s
}

// Run starts the hub, the broadcast loop and the listener, and blocks until
// ctx is cancelled or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.wsHub.Run(ctx)
	s.wsHub.StartBroadcastLoop(ctx, s.deps.Session, s.cfg.BroadcastInterval)
	if s.deps.Events != nil {
		go s.pollEventLog(ctx)
	}

	addr := fmt.Sprintf(":%d", s.cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🌐 API server starting on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api shutdown: %w", err)
	}
	log.Println("🌐 API server stopped")
	return nil
}

// pollEventLog mirrors event log counters into Prometheus once per second
func (s *Server) pollEventLog(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			UpdateEventLogStats(s.deps.Events.GetStats())
		}
	}
}

// Router returns the HTTP handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Hub exposes the WebSocket hub
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

// Stop releases background workers not tied to Run's context
func (s *Server) Stop() {
	s.rateLimiter.Stop()
}
