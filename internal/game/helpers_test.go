package game

import (
	"math/rand"
	"testing"

	"bomb-arena/internal/config"
)

// recorder implements every outbound collaborator and counts what it sees
type recorder struct {
	sounds    []Sound
	stats     []PlayerStats
	completes []int
	deaths    int
	created   int
	destroyed int
}

func (r *recorder) Play(s Sound)                 { r.sounds = append(r.sounds, s) }
func (r *recorder) StatsChanged(s PlayerStats)   { r.stats = append(r.stats, s) }
func (r *recorder) LevelComplete(level int)      { r.completes = append(r.completes, level) }
func (r *recorder) PlayerDied()                  { r.deaths++ }
func (r *recorder) EntityCreated(EntityView)     { r.created++ }
func (r *recorder) EntityUpdated(EntityView)     {}
func (r *recorder) EntityDestroyed(v EntityView) { r.destroyed++ }

func (r *recorder) count(s Sound) int {
	n := 0
	for _, got := range r.sounds {
		if got == s {
			n++
		}
	}
	return n
}

// keys is a scripted input source
type keys map[Action]bool

func (k keys) IsActionPressed(a Action) bool { return k[a] }

// newTestWorld builds an open world with a seeded RNG and a recorder wired
// into every collaborator
func newTestWorld(t *testing.T, width, height int) (*World, *recorder) {
	t.Helper()
	rec := &recorder{}
	w, err := NewWorld(WorldConfig{
		Width:     width,
		Height:    height,
		CellSize:  1,
		Level:     1,
		Rules:     config.DefaultGame(),
		AI:        config.DefaultAI(),
		Rand:      rand.New(rand.NewSource(7)),
		Audio:     rec,
		Presenter: rec,
		Stats:     rec,
		Signals:   rec,
	})
	if err != nil {
		t.Fatalf("NewWorld failed: %v", err)
	}
	return w, rec
}

// walledWorld surrounds an open world with a wall border
func walledWorld(t *testing.T, width, height int) (*World, *recorder) {
	t.Helper()
	w, rec := newTestWorld(t, width, height)
	for x := 0; x < width; x++ {
		w.SetCellType(x, 0, CellWall)
		w.SetCellType(x, height-1, CellWall)
	}
	for y := 0; y < height; y++ {
		w.SetCellType(0, y, CellWall)
		w.SetCellType(width-1, y, CellWall)
	}
	return w, rec
}

// spawnPlayer registers a default player at (x, y)
func spawnPlayer(w *World, x, y int) *Player {
	p := NewPlayer(config.DefaultGame())
	w.StartX, w.StartY = x, y
	p.Spawn(w)
	return p
}

// counter is a minimal entity that counts its updates
type counter struct {
	id      uint64
	updates int
	onTick  func(w *World)
}

func newCounter() *counter { return &counter{id: nextEntityID()} }

func (c *counter) ID() uint64       { return c.id }
func (c *counter) Kind() EntityKind { return KindTransientEffect }
func (c *counter) View() EntityView { return EntityView{ID: c.id, Kind: KindTransientEffect} }
func (c *counter) Update(w *World, _ float64) {
	c.updates++
	if c.onTick != nil {
		c.onTick(w)
	}
}

// faulty panics on every update
type faulty struct{ id uint64 }

func (f *faulty) ID() uint64                 { return f.id }
func (f *faulty) Kind() EntityKind           { return KindTransientEffect }
func (f *faulty) View() EntityView           { return EntityView{ID: f.id} }
func (f *faulty) Update(_ *World, _ float64) { panic("boom") }
