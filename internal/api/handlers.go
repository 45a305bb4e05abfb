package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bomb-arena/internal/game"
	"bomb-arena/internal/input"
)

// maxInputBody bounds POST /api/input
const maxInputBody = 1 << 10

func (h *routerHandlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := h.session.Snapshot()
	writeJSON(w, map[string]any{
		"status": "ok",
		"frame":  snap.Frame,
	})
}

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.session.Snapshot())
}

// statsResponse is the body of GET /api/stats
type statsResponse struct {
	Status       game.SessionStatus  `json:"status"`
	Level        int                 `json:"level"`
	LevelCount   int                 `json:"levelCount"`
	Player       game.PlayerStats    `json:"player"`
	EnemiesAlive int                 `json:"enemiesAlive"`
	Session      game.SessionStats   `json:"session"`
	EventLog     *game.EventLogStats `json:"eventLog,omitempty"`
	RateLimit    RateLimitStats      `json:"rateLimit"`
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	snap := h.session.Snapshot()
	resp := statsResponse{
		Status:       snap.Status,
		Level:        snap.Level,
		LevelCount:   snap.LevelCount,
		Player:       snap.Player,
		EnemiesAlive: snap.EnemiesAlive,
		Session:      snap.Stats,
		RateLimit:    h.limiter.GetStats(),
	}
	if h.events != nil {
		s := h.events.GetStats()
		resp.EventLog = &s
	}
	writeJSON(w, resp)
}

func (h *routerHandlers) handleGetLevels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.session.Levels())
}

func (h *routerHandlers) handleGetFrame(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var buf bytes.Buffer
	if err := h.frames.EncodePNG(&buf, h.session.Snapshot()); err != nil {
		log.Printf("❌ Frame render failed: %v", err)
		writeError(w, "render failed", http.StatusInternalServerError)
		return
	}
	RecordRender(time.Since(start))

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (h *routerHandlers) handleGetInput(w http.ResponseWriter, r *http.Request) {
	if h.input == nil {
		writeError(w, "remote input disabled", http.StatusNotFound)
		return
	}
	pressed := h.input.Pressed()
	if pressed == nil {
		pressed = []string{}
	}
	writeJSON(w, map[string][]string{"pressed": pressed})
}

func (h *routerHandlers) handlePostInput(w http.ResponseWriter, r *http.Request) {
	if h.input == nil {
		writeError(w, "remote input disabled", http.StatusNotFound)
		return
	}

	var msg input.Message
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxInputBody)).Decode(&msg); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := h.input.Apply(msg); err != nil {
		if errors.Is(err, input.ErrUnknownAction) {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleSessionCommand(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "command")
	cmd, ok := game.ParseCommand(name)
	if !ok {
		writeError(w, "unknown command: "+name, http.StatusNotFound)
		return
	}

	if !h.session.Submit(cmd) {
		w.Header().Set("Retry-After", "1")
		writeError(w, "command queue full", http.StatusServiceUnavailable)
		return
	}
	log.Printf("🎮 Session %s requested via API", cmd)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"queued": cmd.String()})
}

// Helper functions (package-level for reuse)

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("⚠️ Response encode failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
