// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for gameplay timings, rules and server settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// GAMEPLAY CONFIGURATION
// =============================================================================

// GameConfig holds gameplay rules and timings. All durations are milliseconds of
// simulated time; speeds are world units per millisecond.
type GameConfig struct {
	FPS                 int     // Frames per second driven by the simulation loop
	CellSize            float64 // World units per grid cell
	BombFuseMs          float64 // Time from placement to explosion
	ExplosionLifetimeMs float64 // How long explosion cells stay hot
	PowerUpChance       float64 // Probability a destroyed breakable drops a power-up
	StartLives          int
	StartBombs          int
	StartRange          int
	PlayerMoveSpeed     float64
	EnemyBaseSpeed      float64 // Enemy speed at level 0
	EnemySpeedPerLevel  float64 // Added per level number
	InvulnerabilityMs   float64 // Grace window after a non-fatal hit
	EnemyThinkMs        float64 // Pause on arrival before the next AI decision
	CollisionRadius     float64 // Player/enemy proximity hit radius (in cells)
	SpeedPowerUpFactor  float64
	LevelTransitionMs   float64 // Delay between level complete and the next level
	MaxFrameDeltaMs     float64 // Frames longer than this are clamped
	EffectLifetimeMs    float64 // Particle burst lifetime
	Seed                int64   // RNG seed, 0 = time based
	LevelsPath          string  // Optional JSON level pack
}

// DefaultGame returns the default gameplay configuration.
func DefaultGame() GameConfig {
	return GameConfig{
		FPS:                 60,
		CellSize:            1,
		BombFuseMs:          2000,
		ExplosionLifetimeMs: 1000,
		PowerUpChance:       0.3,
		StartLives:          3,
		StartBombs:          1,
		StartRange:          2,
		PlayerMoveSpeed:     0.008,
		EnemyBaseSpeed:      0.004,
		EnemySpeedPerLevel:  0.001,
		InvulnerabilityMs:   2000, // 20 blinks x 100ms
		EnemyThinkMs:        500,
		CollisionRadius:     0.5,
		SpeedPowerUpFactor:  1.2,
		LevelTransitionMs:   3000,
		MaxFrameDeltaMs:     250,
		EffectLifetimeMs:    1000,
	}
}

// GameFromEnv returns gameplay configuration with environment variable overrides.
func GameFromEnv() GameConfig {
	cfg := DefaultGame()

	if fps := getEnvInt("GAME_FPS", 0); fps > 0 {
		cfg.FPS = fps
	}
	if v := getEnvFloat("BOMB_FUSE_MS", 0); v > 0 {
		cfg.BombFuseMs = v
	}
	if v := getEnvFloat("EXPLOSION_LIFETIME_MS", 0); v > 0 {
		cfg.ExplosionLifetimeMs = v
	}
	if v := getEnvFloat("POWERUP_CHANCE", -1); v >= 0 && v <= 1 {
		cfg.PowerUpChance = v
	}
	if v := getEnvInt("START_LIVES", 0); v > 0 {
		cfg.StartLives = v
	}
	if v := getEnvInt("START_BOMBS", 0); v > 0 {
		cfg.StartBombs = v
	}
	if v := getEnvInt("START_RANGE", 0); v > 0 {
		cfg.StartRange = v
	}
	if v := getEnvFloat("LEVEL_TRANSITION_MS", -1); v >= 0 {
		cfg.LevelTransitionMs = v
	}
	if v := getEnvInt64("GAME_SEED", 0); v != 0 {
		cfg.Seed = v
	}
	cfg.LevelsPath = strings.TrimSpace(os.Getenv("LEVELS_PATH"))

	return cfg
}

// =============================================================================
// ENEMY AI CONFIGURATION
// =============================================================================

// AIConfig holds enemy decision policy parameters (Manhattan distances in cells).
type AIConfig struct {
	Tier2AggroRadius int
	Tier3AggroRadius int
	DangerRadius     int
	AlignBonus       float64 // Tier 3 tie-break for landing on the player's row/column
}

// DefaultAI returns the default AI configuration.
func DefaultAI() AIConfig {
	return AIConfig{
		Tier2AggroRadius: 6,
		Tier3AggroRadius: 10,
		DangerRadius:     3,
		AlignBonus:       0.5,
	}
}

// AIFromEnv returns AI configuration with environment variable overrides.
func AIFromEnv() AIConfig {
	cfg := DefaultAI()

	if v := getEnvInt("AI_TIER2_AGGRO", 0); v > 0 {
		cfg.Tier2AggroRadius = v
	}
	if v := getEnvInt("AI_TIER3_AGGRO", 0); v > 0 {
		cfg.Tier3AggroRadius = v
	}
	if v := getEnvInt("AI_DANGER_RADIUS", 0); v > 0 {
		cfg.DangerRadius = v
	}

	return cfg
}

// =============================================================================
// AUDIO CONFIGURATION
// =============================================================================

// AudioConfig holds audio mixer settings.
type AudioConfig struct {
	SampleRate int     // Audio sample rate in Hz
	Volume     float64 // Master volume (0.0 to 1.0)
	Enabled    bool    // Whether sound effects are played
	MusicPath  string  // Optional OGG Vorbis background loop
}

// DefaultAudio returns the default audio configuration.
func DefaultAudio() AudioConfig {
	return AudioConfig{
		SampleRate: 44100,
		Volume:     0.3,
		Enabled:    true,
	}
}

// AudioFromEnv returns audio configuration with environment variable overrides.
func AudioFromEnv() AudioConfig {
	cfg := DefaultAudio()

	if v := getEnvFloat("AUDIO_VOLUME", -1); v >= 0 {
		cfg.Volume = v
	}
	cfg.Enabled = getEnvBool("AUDIO_ENABLED", cfg.Enabled)
	cfg.MusicPath = strings.TrimSpace(os.Getenv("MUSIC_PATH"))

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port              int
	CORSOrigins       []string
	AdminToken        string        // Required for session control when set
	BroadcastInterval time.Duration // WebSocket state push cadence
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:              3000,
		BroadcastInterval: 100 * time.Millisecond, // 10 updates per second
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	cfg.CORSOrigins = parseList(os.Getenv("CORS_ORIGINS"))
	cfg.AdminToken = strings.TrimSpace(os.Getenv("ADMIN_TOKEN"))
	if d := getEnvDuration("BROADCAST_INTERVAL", 0); d > 0 {
		cfg.BroadcastInterval = d
	}

	return cfg
}

// =============================================================================
// EVENT LOG CONFIGURATION
// =============================================================================

// EventLogConfig controls the audit/replay event log.
type EventLogConfig struct {
	Path               string // .jsonl plain, .sz snappy, .zst zstd; empty disables
	MaxEventsPerSec    int    // Global rate limit
	MaxEventsPerSource int    // Per-source rate limit per second
}

// DefaultEventLog returns the default event log configuration.
func DefaultEventLog() EventLogConfig {
	return EventLogConfig{
		Path:               "events.jsonl.sz",
		MaxEventsPerSec:    10000,
		MaxEventsPerSource: 1000,
	}
}

// EventLogFromEnv returns event log configuration with environment variable overrides.
func EventLogFromEnv() EventLogConfig {
	cfg := DefaultEventLog()

	if v, ok := os.LookupEnv("EVENT_LOG_PATH"); ok {
		cfg.Path = strings.TrimSpace(v)
	}
	if v := getEnvInt("EVENT_LOG_RATE", 0); v > 0 {
		cfg.MaxEventsPerSec = v
	}

	return cfg
}

// =============================================================================
// OBSERVABILITY CONFIGURATION
// =============================================================================

// ObservabilityConfig configures the debug server
type ObservabilityConfig struct {
	Enabled       bool
	ListenAddr    string // MUST be "127.0.0.1:6060" in production
	BasicAuthUser string
	BasicAuthPass string
}

// DefaultObservability returns safe defaults
func DefaultObservability() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060", // Localhost only - NEVER expose externally
	}
}

// ObservabilityFromEnv returns debug server configuration with environment overrides.
func ObservabilityFromEnv() ObservabilityConfig {
	cfg := DefaultObservability()

	if getEnvBool("DISABLE_DEBUG_SERVER", false) {
		cfg.Enabled = false
	}
	if v := strings.TrimSpace(os.Getenv("DEBUG_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	cfg.BasicAuthUser = os.Getenv("DEBUG_USER")
	cfg.BasicAuthPass = os.Getenv("DEBUG_PASS")

	return cfg
}

// =============================================================================
// RESOURCE LIMITS
// =============================================================================

// ResourceLimits controls DoS protection and performance limits.
type ResourceLimits struct {
	MaxEffects            int // Live transient effects per world
	MaxWSConnections      int // Total WebSocket clients
	MaxWSConnectionsPerIP int
	RequestsPerSecond     float64 // HTTP rate limit per IP
	Burst                 int
}

// DefaultLimits returns the default resource limits.
func DefaultLimits() ResourceLimits {
	return ResourceLimits{
		MaxEffects:            32,
		MaxWSConnections:      500,
		MaxWSConnectionsPerIP: 10,
		RequestsPerSecond:     20,
		Burst:                 40,
	}
}

// LimitsFromEnv returns resource limits with environment variable overrides.
func LimitsFromEnv() ResourceLimits {
	cfg := DefaultLimits()

	if v := getEnvInt("MAX_EFFECTS", 0); v > 0 {
		cfg.MaxEffects = v
	}
	if v := getEnvInt("MAX_WS_CONNECTIONS", 0); v > 0 {
		cfg.MaxWSConnections = v
	}
	if v := getEnvFloat("RATE_LIMIT_RPS", 0); v > 0 {
		cfg.RequestsPerSecond = v
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Game          GameConfig
	AI            AIConfig
	Audio         AudioConfig
	Server        ServerConfig
	EventLog      EventLogConfig
	Observability ObservabilityConfig
	Limits        ResourceLimits
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Game:          GameFromEnv(),
		AI:            AIFromEnv(),
		Audio:         AudioFromEnv(),
		Server:        ServerFromEnv(),
		EventLog:      EventLogFromEnv(),
		Observability: ObservabilityFromEnv(),
		Limits:        LimitsFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return defaultVal
}

func parseList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
