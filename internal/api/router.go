package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"bomb-arena/internal/game"
	"bomb-arena/internal/input"
	"bomb-arena/internal/render"
)

// SessionInterface is the part of game.Session the API calls.
// Every method is safe from any goroutine.
type SessionInterface interface {
	// Snapshot returns the latest published state
	Snapshot() *game.GameSnapshot
	// Levels returns the level list
	Levels() []game.LevelData
	// Submit queues a control command for the next frame
	Submit(c game.Command) bool
}

// InputInterface is the remote side of input.State
type InputInterface interface {
	Apply(msg input.Message) error
	Pressed() []string
}

// EventStatsSource reports event log counters; *game.EventLog implements it
type EventStatsSource interface {
	GetStats() game.EventLogStats
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
//
// Example usage in tests:
//
//	router := api.NewRouter(api.RouterConfig{
//	    Session: session,
//	    Input:   input.NewState(0),
//	    RateLimitConfig: &api.RateLimitConfig{
//	        RequestsPerSecond: 1000, // High limit for tests
//	        Burst:             1000,
//	    },
//	})
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Session is the running game (required)
	Session SessionInterface

	// Input receives POST /api/input; nil disables remote control
	Input InputInterface

	// Events is optional and only feeds /api/stats
	Events EventStatsSource

	// Frames renders /api/frame.png; nil uses a 32px renderer
	Frames *render.Image

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is only used if RateLimiter is nil
	RateLimitConfig *RateLimitConfig

	// CORSOrigins defaults to DefaultOrigins
	CORSOrigins []string

	// AdminToken guards /api/session/*; empty leaves it open
	AdminToken string

	// DisableLogging disables the request logger middleware (useful for benchmarks).
	DisableLogging bool
}

// routerHandlers holds what the handler functions need
type routerHandlers struct {
	session SessionInterface
	input   InputInterface
	events  EventStatsSource
	frames  *render.Image
	limiter *IPRateLimiter
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// IMPORTANT: This function starts no goroutines other than the rate limiter
// cleanup and opens no listeners, so it is safe with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware - Order matters!
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	// Rate limiting (BEFORE CORS to reject early and save CPU)
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if len(corsOrigins) == 0 {
		corsOrigins = DefaultOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", AdminTokenHeader},
		AllowCredentials: true,
	}))

	frames := cfg.Frames
	if frames == nil {
		frames = render.NewImage(32)
	}
	h := &routerHandlers{
		session: cfg.Session,
		input:   cfg.Input,
		events:  cfg.Events,
		frames:  frames,
		limiter: rateLimiter,
	}

	r.Get("/health", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		// Game state
		r.Get("/state", h.handleGetState)
		r.Get("/stats", h.handleGetStats)
		r.Get("/levels", h.handleGetLevels)
		r.Get("/frame.png", h.handleGetFrame)

		// Player control
		r.Get("/input", h.handleGetInput)
		r.Post("/input", h.handlePostInput)

		// Session control
		r.With(RequireAdmin(cfg.AdminToken)).Post("/session/{command}", h.handleSessionCommand)
	})

	return r
}

// metricsMiddleware records latency per route pattern, never per raw URL
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				endpoint = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RecordRequest(r.Method, endpoint, status, time.Since(start))
	})
}
