package game

import (
	"sync/atomic"
	"time"
)

// SessionStatus is the coarse state of a play session
type SessionStatus string

const (
	StatusPlaying    SessionStatus = "playing"
	StatusTransition SessionStatus = "transition" // Level cleared, next level pending
	StatusPaused     SessionStatus = "paused"
	StatusGameOver   SessionStatus = "game_over"
	StatusVictory    SessionStatus = "victory"
	StatusError      SessionStatus = "error" // Level failed to build
)

// ExplosionSnapshot is an immutable copy of a burning explosion
type ExplosionSnapshot struct {
	ID        uint64          `json:"id"`
	Parts     []ExplosionPart `json:"parts"`
	Remaining float64         `json:"remaining"` // 0..1 of lifetime left
}

// EffectSnapshot is an immutable particle burst
type EffectSnapshot struct {
	Kind      string     `json:"kind"`
	X         float64    `json:"x"`
	Z         float64    `json:"z"`
	Alpha     float64    `json:"alpha"`
	Particles []Particle `json:"-"`
}

// SessionStats are cumulative counters for the whole session
type SessionStats struct {
	Frames          uint64 `json:"frames"`
	LevelsCompleted uint64 `json:"levelsCompleted"`
	GameOvers       uint64 `json:"gameOvers"`
	Explosions      uint64 `json:"explosions"`
	ChainReactions  uint64 `json:"chainReactions"`
	Faults          uint64 `json:"faults"`
}

// GameSnapshot is a complete immutable game state for rendering and the API.
// A published snapshot is never mutated again.
type GameSnapshot struct {
	Sequence  uint64    `json:"sequence"`  // Monotonic sequence for ordering
	Timestamp time.Time `json:"timestamp"` // When snapshot was created
	Frame     uint64    `json:"frame"`     // World frame this represents

	Status              SessionStatus `json:"status"`
	Level               int           `json:"level"`
	LevelName           string        `json:"levelName"`
	LevelCount          int           `json:"levelCount"`
	TransitionRemaining float64       `json:"transitionRemaining,omitempty"` // ms
	Error               string        `json:"error,omitempty"`

	Width    int        `json:"width"`
	Height   int        `json:"height"`
	CellSize float64    `json:"cellSize"`
	Cells    []CellType `json:"-"`    // row-major
	Rows     []string   `json:"rows"` // Cells rendered as layout markers

	Entities   []EntityView        `json:"entities"`
	Explosions []ExplosionSnapshot `json:"explosions"`
	Effects    []EffectSnapshot    `json:"effects"`

	Player         PlayerStats  `json:"player"`
	PlayerState    string       `json:"playerState"`
	EnemiesAlive   int          `json:"enemiesAlive"`
	BreakablesLeft int          `json:"breakablesLeft"`
	Stats          SessionStats `json:"stats"`
}

// Cell returns the snapshotted cell at (x, y); out of bounds reads as Wall
func (s *GameSnapshot) Cell(x, y int) CellType {
	if x < 0 || y < 0 || x >= s.Width || y >= s.Height {
		return CellWall
	}
	return s.Cells[y*s.Width+x]
}

// SnapshotPool hands the frame goroutine a fresh snapshot to fill and
// publishes it atomically. Capacities carry over from the previous frame so
// steady-state frames allocate once.
type SnapshotPool struct {
	current  atomic.Pointer[GameSnapshot]
	sequence uint64 // atomic - monotonic sequence
	pending  *GameSnapshot

	entityCap    int
	explosionCap int
}

// NewSnapshotPool creates a pool with an empty published snapshot
func NewSnapshotPool() *SnapshotPool {
	p := &SnapshotPool{entityCap: 64, explosionCap: 8}
	p.current.Store(&GameSnapshot{Status: StatusPlaying})
	return p
}

// AcquireWrite returns a blank snapshot to populate (producer only)
func (p *SnapshotPool) AcquireWrite() *GameSnapshot {
	p.pending = &GameSnapshot{
		Sequence:   atomic.AddUint64(&p.sequence, 1),
		Timestamp:  time.Now(),
		Entities:   make([]EntityView, 0, p.entityCap),
		Explosions: make([]ExplosionSnapshot, 0, p.explosionCap),
	}
	return p.pending
}

// PublishWrite makes the pending snapshot visible to readers
func (p *SnapshotPool) PublishWrite() {
	if p.pending == nil {
		return
	}
	p.entityCap = max(cap(p.pending.Entities), 64)
	p.explosionCap = max(cap(p.pending.Explosions), 8)
	p.current.Store(p.pending)
	p.pending = nil
}

// AcquireRead gets the latest complete snapshot (any goroutine). Never nil.
func (p *SnapshotPool) AcquireRead() *GameSnapshot {
	return p.current.Load()
}

// fillWorld copies the world's state into snap
func fillWorld(snap *GameSnapshot, w *World) {
	snap.Frame = w.frame
	snap.Width, snap.Height, snap.CellSize = w.Width, w.Height, w.CellSize
	snap.Cells = w.Cells()

	snap.Rows = make([]string, w.Height)
	row := make([]byte, w.Width)
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			row[x] = snap.Cells[y*w.Width+x].Marker()
		}
		snap.Rows[y] = string(row)
	}

	for _, e := range w.entities {
		snap.Entities = append(snap.Entities, e.View())
		switch e.Kind() {
		case KindExplosion:
			ex := e.(*Explosion)
			parts := make([]ExplosionPart, len(ex.Parts))
			copy(parts, ex.Parts)
			snap.Explosions = append(snap.Explosions, ExplosionSnapshot{
				ID:        ex.id,
				Parts:     parts,
				Remaining: clamp01(ex.LifetimeRemaining / w.rules.ExplosionLifetimeMs),
			})
		case KindTransientEffect:
			ef := e.(*Effect)
			particles := make([]Particle, len(ef.Particles))
			copy(particles, ef.Particles)
			snap.Effects = append(snap.Effects, EffectSnapshot{
				Kind:      ef.Type.String(),
				X:         ef.X,
				Z:         ef.Z,
				Alpha:     ef.Alpha(),
				Particles: particles,
			})
		}
	}

	snap.EnemiesAlive = w.liveEnemies
	snap.BreakablesLeft = len(w.breakables)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
