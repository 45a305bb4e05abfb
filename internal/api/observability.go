package api

import (
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bomb-arena/internal/config"
	"bomb-arena/internal/game"
)

// Metrics with bounded cardinality
var (
	// Simulation metrics
	frameDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "game_frame_duration_seconds",
		Help:    "Time spent updating the world in one frame",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.016},
	})

	renderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "render_frame_duration_seconds",
		Help:    "Time spent rendering a PNG frame",
		Buckets: []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1},
	})

	entityCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_entity_count",
		Help: "Entities registered in the current world",
	})

	bombsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_bombs_active",
		Help: "Armed bombs in the current world",
	})

	gameLevel = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_level",
		Help: "Current level number",
	})

	explosionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_explosions_total",
		Help: "Bombs that exploded",
	})

	chainReactionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bomb_chain_reactions_total",
		Help: "Bombs detonated by another explosion",
	})

	entityFaultsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_entity_faults_total",
		Help: "Entity updates that panicked and were skipped",
	})

	levelsCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_levels_completed_total",
		Help: "Levels cleared",
	})

	gameOversTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_overs_total",
		Help: "Sessions that ran out of lives",
	})

	// Event log metrics
	eventLogTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "event_log_total",
		Help: "Total events logged",
	})

	eventLogDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "event_log_dropped_total",
		Help: "Events dropped due to rate limiting or buffer full",
	})

	// DoS detection metrics - use ONLY bounded label values
	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // Bounded: "rate_limit", "origin", "ws_total_limit", "ws_ip_limit", "auth"

	// HTTP metrics with bounded labels
	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"}) // endpoint is the route pattern, not the URL

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	// WebSocket metrics
	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "Total WebSocket messages sent",
	})
)

// StartDebugServer starts the internal observability server
// CRITICAL: This MUST bind to localhost only to prevent pprof-based DoS
func StartDebugServer(cfg config.ObservabilityConfig) error {
	if !cfg.Enabled {
		log.Println("📊 Debug server disabled")
		return nil
	}

	if !isLoopback(cfg.ListenAddr) && os.Getenv("ALLOW_DEBUG_EXTERNAL") != "true" {
		log.Println("⚠️ Debug server forced to localhost for security")
		cfg.ListenAddr = config.DefaultObservability().ListenAddr
	}

	handler := DebugHandler(cfg)

	go func() {
		log.Printf("📊 Debug server starting on %s", cfg.ListenAddr)
		log.Printf("   - pprof:   http://%s/debug/pprof/", cfg.ListenAddr)
		log.Printf("   - metrics: http://%s/metrics", cfg.ListenAddr)

		if err := http.ListenAndServe(cfg.ListenAddr, handler); err != nil {
			log.Printf("⚠️ Debug server error: %v", err)
		}
	}()

	return nil
}

// DebugHandler serves pprof, /metrics and /health, behind basic auth when configured
func DebugHandler(cfg config.ObservabilityConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if cfg.BasicAuthUser != "" {
		return basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass, mux)
	}
	return mux
}

func isLoopback(addr string) bool {
	for _, prefix := range []string{"127.0.0.1:", "localhost:", "[::1]:"} {
		if len(addr) > len(prefix) && addr[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

// basicAuthMiddleware adds basic authentication to the handler
func basicAuthMiddleware(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || !tokenEqual(u, user) || !tokenEqual(p, pass) {
			w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// FrameMetrics converts per-frame session output into Prometheus series.
// Session counters are cumulative, so only the growth since the previous
// frame is added. Observe runs on the frame goroutine.
type FrameMetrics struct {
	mu   sync.Mutex
	last game.SessionStats
}

// NewFrameMetrics creates an observer with zeroed baselines
func NewFrameMetrics() *FrameMetrics {
	return &FrameMetrics{}
}

// Observe is a game.SessionDeps.Observer
func (m *FrameMetrics) Observe(fs game.FrameStats, snap *game.GameSnapshot) {
	frameDuration.Observe(fs.Duration.Seconds())
	entityCount.Set(float64(len(snap.Entities)))
	gameLevel.Set(float64(snap.Level))

	bombs := 0
	for _, v := range snap.Entities {
		if v.Kind == game.KindBomb && v.State == "armed" {
			bombs++
		}
	}
	bombsActive.Set(float64(bombs))

	m.mu.Lock()
	defer m.mu.Unlock()

	cur := snap.Stats
	addDelta(explosionsTotal, cur.Explosions, m.last.Explosions)
	addDelta(chainReactionsTotal, cur.ChainReactions, m.last.ChainReactions)
	addDelta(entityFaultsTotal, cur.Faults, m.last.Faults)
	addDelta(levelsCompletedTotal, cur.LevelsCompleted, m.last.LevelsCompleted)
	addDelta(gameOversTotal, cur.GameOvers, m.last.GameOvers)
	m.last = cur
}

func addDelta(c prometheus.Counter, cur, last uint64) {
	if cur > last {
		c.Add(float64(cur - last))
	}
}

// eventLogBaseline tracks the last event log counters seen by UpdateEventLogStats
var eventLogBaseline struct {
	sync.Mutex
	total, dropped uint64
}

// UpdateEventLogStats adds event log growth to the counters. Call it periodically.
func UpdateEventLogStats(s game.EventLogStats) {
	eventLogBaseline.Lock()
	defer eventLogBaseline.Unlock()

	addDelta(eventLogTotal, s.Total, eventLogBaseline.total)
	addDelta(eventLogDropped, s.Dropped, eventLogBaseline.dropped)
	eventLogBaseline.total, eventLogBaseline.dropped = s.Total, s.Dropped
}

// RecordRender records render timing for metrics
func RecordRender(duration time.Duration) {
	renderDuration.Observe(duration.Seconds())
}

// RecordConnectionRejected increments the rejection counter
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordRequest records HTTP request metrics
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	requestLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	requestTotal.WithLabelValues(method, endpoint, http.StatusText(status)).Inc()
}

// UpdateWSConnections updates WebSocket connection count
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages increments WebSocket message counter
func IncrementWSMessages() {
	wsMessagesTotal.Inc()
}
