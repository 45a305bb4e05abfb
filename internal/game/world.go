package game

import (
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"bomb-arena/internal/config"
)

// ErrInvalidWorld is returned when a world cannot be constructed
var ErrInvalidWorld = errors.New("invalid world")

// entityIDs is shared by every world so a persistent player never collides with
// entities of a later level.
var entityIDs atomic.Uint64

func nextEntityID() uint64 {
	return entityIDs.Add(1)
}

type cellKey struct{ x, y int }

// WorldConfig contains everything needed to build a World
type WorldConfig struct {
	Width    int
	Height   int
	CellSize float64
	Level    int

	// MaxEffects caps live particle bursts; 0 uses the default
	MaxEffects int

	Rules config.GameConfig
	AI    config.AIConfig
	Rand  *rand.Rand

	Input     Input
	Audio     Audio
	Presenter Presenter
	Stats     StatsDisplay
	Signals   LevelSignals
	Events    EventSink
}

// World owns the cell matrix and the entity registry for one level.
// It is mutated only from the frame goroutine.
type World struct {
	Width    int
	Height   int
	CellSize float64
	Level    int

	// Player start cell
	StartX int
	StartY int

	cells      []CellType // row-major, Width*Height
	entities   []Entity   // insertion order
	registered map[uint64]struct{}
	breakables map[cellKey]struct{}

	liveEnemies       int
	levelCompleteSent bool
	stopRequested     bool

	liveEffects int
	maxEffects  int

	frame          uint64
	faults         uint64
	chainReactions uint64
	explosions     uint64

	rules config.GameConfig
	ai    config.AIConfig
	rng   *rand.Rand

	input     Input
	audio     Audio
	presenter Presenter
	stats     StatsDisplay
	signals   LevelSignals
	events    EventSink
}

// NewWorld builds an empty world. Every cell starts Empty.
func NewWorld(cfg WorldConfig) (*World, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidWorld, cfg.Width, cfg.Height)
	}
	if cfg.CellSize <= 0 || math.IsNaN(cfg.CellSize) || math.IsInf(cfg.CellSize, 0) {
		return nil, fmt.Errorf("%w: cell size %v", ErrInvalidWorld, cfg.CellSize)
	}

	rules := cfg.Rules
	if rules == (config.GameConfig{}) {
		rules = config.DefaultGame()
	}
	ai := cfg.AI
	if ai == (config.AIConfig{}) {
		ai = config.DefaultAI()
	}

	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	w := &World{
		Width:      cfg.Width,
		Height:     cfg.Height,
		CellSize:   cfg.CellSize,
		Level:      cfg.Level,
		StartX:     1,
		StartY:     1,
		cells:      make([]CellType, cfg.Width*cfg.Height),
		entities:   make([]Entity, 0, 64),
		registered: make(map[uint64]struct{}),
		breakables: make(map[cellKey]struct{}),
		rules:      rules,
		ai:         ai,
		rng:        rng,
		maxEffects: cfg.MaxEffects,
		input:      cfg.Input,
		audio:      cfg.Audio,
		presenter:  cfg.Presenter,
		stats:      cfg.Stats,
		signals:    cfg.Signals,
		events:     cfg.Events,
	}

	if w.maxEffects <= 0 {
		w.maxEffects = defaultMaxEffects
	}
	if w.input == nil {
		w.input = NopInput{}
	}
	if w.audio == nil {
		w.audio = NopAudio{}
	}
	if w.presenter == nil {
		w.presenter = NopPresenter{}
	}
	if w.stats == nil {
		w.stats = NopStats{}
	}
	if w.signals == nil {
		w.signals = NopSignals{}
	}
	if w.events == nil {
		w.events = nopSink{}
	}

	return w, nil
}

// InBounds reports whether (x, y) is a grid cell
func (w *World) InBounds(x, y int) bool {
	return x >= 0 && x < w.Width && y >= 0 && y < w.Height
}

// Cell returns the cell type and whether (x, y) is in bounds
func (w *World) Cell(x, y int) (CellType, bool) {
	if !w.InBounds(x, y) {
		return CellWall, false
	}
	return w.cells[y*w.Width+x], true
}

// CellType returns the cell type; out-of-bounds cells read as Wall (blocked)
func (w *World) CellType(x, y int) CellType {
	c, _ := w.Cell(x, y)
	return c
}

// SetCellType sets a cell. Out-of-bounds writes are ignored.
func (w *World) SetCellType(x, y int, t CellType) {
	if !w.InBounds(x, y) {
		return
	}
	w.cells[y*w.Width+x] = t
}

// IsWalkable reports whether an actor may occupy (x, y)
func (w *World) IsWalkable(x, y int) bool {
	c, ok := w.Cell(x, y)
	if !ok {
		return false
	}
	return c == CellEmpty || c == CellExplosion
}

// Cells returns a copy of the cell matrix (row-major)
func (w *World) Cells() []CellType {
	out := make([]CellType, len(w.cells))
	copy(out, w.cells)
	return out
}

// AddBreakable marks (x, y) as a breakable block
func (w *World) AddBreakable(x, y int) {
	if !w.InBounds(x, y) {
		return
	}
	w.breakables[cellKey{x, y}] = struct{}{}
	w.SetCellType(x, y, CellBreakable)
}

// HasBreakable reports whether a breakable block reference exists at (x, y)
func (w *World) HasBreakable(x, y int) bool {
	_, ok := w.breakables[cellKey{x, y}]
	return ok
}

// BreakableCount returns the number of blocks still standing
func (w *World) BreakableCount() int {
	return len(w.breakables)
}

// RemoveBreakable clears the block reference and resets the cell to Empty
func (w *World) RemoveBreakable(x, y int) {
	key := cellKey{x, y}
	if _, ok := w.breakables[key]; !ok {
		return
	}
	delete(w.breakables, key)
	w.SetCellType(x, y, CellEmpty)
}

// GridToWorld converts a cell to its world-space center on the x/z plane
func (w *World) GridToWorld(x, y int) (wx, wz float64) {
	wx = float64(x)*w.CellSize - float64(w.Width)*w.CellSize/2
	wz = float64(y)*w.CellSize - float64(w.Height)*w.CellSize/2
	return wx, wz
}

// WorldToGrid converts a world position to the nearest cell
func (w *World) WorldToGrid(wx, wz float64) (x, y int) {
	x = int(math.Round((wx + float64(w.Width)*w.CellSize/2) / w.CellSize))
	y = int(math.Round((wz + float64(w.Height)*w.CellSize/2) / w.CellSize))
	return x, y
}

// AddEntity registers an entity. Adding an already registered entity is a no-op.
func (w *World) AddEntity(e Entity) {
	if _, ok := w.registered[e.ID()]; ok {
		return
	}
	w.entities = append(w.entities, e)
	w.registered[e.ID()] = struct{}{}

	if e.Kind() == KindEnemy {
		if en := e.(*Enemy); en.Alive {
			w.liveEnemies++
		}
	}

	w.presenter.EntityCreated(e.View())
}

// RemoveEntity unregisters an entity by identity. Removing a bomb also vacates
// its cell if the cell still shows Bomb.
func (w *World) RemoveEntity(e Entity) {
	idx := -1
	for i, existing := range w.entities {
		if existing == e {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	w.entities = append(w.entities[:idx], w.entities[idx+1:]...)
	delete(w.registered, e.ID())

	if e.Kind() == KindBomb {
		b := e.(*Bomb)
		if w.CellType(b.GridX, b.GridY) == CellBomb {
			w.SetCellType(b.GridX, b.GridY, CellEmpty)
		}
	}

	w.presenter.EntityDestroyed(e.View())
}

// Contains reports whether e is currently registered
func (w *World) Contains(e Entity) bool {
	_, ok := w.registered[e.ID()]
	return ok
}

// Entities returns a copy of the registry in insertion order
func (w *World) Entities() []Entity {
	out := make([]Entity, len(w.entities))
	copy(out, w.entities)
	return out
}

// EntityCount returns the registry size
func (w *World) EntityCount() int {
	return len(w.entities)
}

// EntitiesAt returns registered entities whose logical cell is (x, y)
func (w *World) EntitiesAt(x, y int) []Entity {
	var out []Entity
	for _, e := range w.entities {
		if gx, gy, ok := gridPosition(e); ok && gx == x && gy == y {
			out = append(out, e)
		}
	}
	return out
}

// Player returns the registered player, or nil
func (w *World) Player() *Player {
	for _, e := range w.entities {
		if e.Kind() == KindPlayer {
			return e.(*Player)
		}
	}
	return nil
}

// LiveEnemies returns registered enemies that are still alive
func (w *World) LiveEnemies() []*Enemy {
	var out []*Enemy
	for _, e := range w.entities {
		if e.Kind() != KindEnemy {
			continue
		}
		if en := e.(*Enemy); en.Alive {
			out = append(out, en)
		}
	}
	return out
}

// LiveEnemyCount returns the level's live-enemy counter
func (w *World) LiveEnemyCount() int {
	return w.liveEnemies
}

// Bombs returns registered bombs that have not been removed
func (w *World) Bombs() []*Bomb {
	var out []*Bomb
	for _, e := range w.entities {
		if e.Kind() != KindBomb {
			continue
		}
		if b := e.(*Bomb); !b.Removed {
			out = append(out, b)
		}
	}
	return out
}

// BombAt returns the live bomb at (x, y), or nil
func (w *World) BombAt(x, y int) *Bomb {
	for _, b := range w.Bombs() {
		if b.GridX == x && b.GridY == y && !b.Exploded {
			return b
		}
	}
	return nil
}

// RequestStop asks the loop to halt after the current frame
func (w *World) RequestStop() {
	w.stopRequested = true
}

// StopRequested reports whether something in the world asked the loop to halt
func (w *World) StopRequested() bool {
	return w.stopRequested
}

// Frame returns the number of updates applied to this world
func (w *World) Frame() uint64 { return w.frame }

// Faults returns the number of contained per-entity update faults
func (w *World) Faults() uint64 { return w.faults }

// ChainReactions returns how many bombs were detonated by other explosions
func (w *World) ChainReactions() uint64 { return w.chainReactions }

// ExplosionCount returns how many explosions this world produced
func (w *World) ExplosionCount() uint64 { return w.explosions }

// Rules exposes the gameplay tunables
func (w *World) Rules() config.GameConfig { return w.rules }

// Input exposes the polled input source
func (w *World) Input() Input { return w.input }

// Update advances the world by deltaMs.
// (a) snapshot the registry, (b) update each entity of the snapshot in order,
// isolating panics per entity, (c) sweep the live registry for exploded bombs.
func (w *World) Update(deltaMs float64) {
	w.frame++

	snapshot := w.Entities()
	for _, e := range snapshot {
		if !w.shouldUpdate(e) {
			continue
		}
		w.updateEntity(e, deltaMs)
	}

	for i := len(w.entities) - 1; i >= 0; i-- {
		if i >= len(w.entities) {
			continue
		}
		e := w.entities[i]
		if e.Kind() != KindBomb {
			continue
		}
		if b := e.(*Bomb); b.Exploded && !b.Removed {
			b.ForceRemove(w)
		}
	}
}

// shouldUpdate skips entities removed earlier in the pass and inert actors
func (w *World) shouldUpdate(e Entity) bool {
	if e == nil || !w.Contains(e) {
		return false
	}
	switch e.Kind() {
	case KindEnemy:
		return e.(*Enemy).Alive
	case KindPlayer:
		return e.(*Player).Lives > 0 && !e.(*Player).Dead
	case KindBomb:
		return !e.(*Bomb).Removed
	}
	return true
}

// updateEntity runs one entity update behind a recover boundary
func (w *World) updateEntity(e Entity, deltaMs float64) {
	defer func() {
		if r := recover(); r != nil {
			w.faults++
			log.Printf("⚠️ %s #%d update fault: %v", e.Kind(), e.ID(), r)
			w.emit(EventTypeFrameFault, e.Kind().String(), FaultPayload{
				EntityID: e.ID(),
				Kind:     e.Kind().String(),
				Error:    fmt.Sprint(r),
			})
		}
	}()

	e.Update(w, deltaMs)

	if w.Contains(e) {
		w.presenter.EntityUpdated(e.View())
	}
}

// enemyDied decrements the live-enemy counter and raises level-complete once
func (w *World) enemyDied() {
	if w.liveEnemies > 0 {
		w.liveEnemies--
	}
	if w.liveEnemies == 0 && !w.levelCompleteSent {
		w.levelCompleteSent = true
		w.audio.Play(SoundLevelComplete)
		w.emit(EventTypeLevelComplete, KindEnemy.String(), LevelPayload{Width: w.Width, Height: w.Height})
		log.Printf("🏁 Level %d complete", w.Level)
		w.signals.LevelComplete(w.Level)
	}
}

// LevelCompleteSignaled reports whether this world already raised level-complete
func (w *World) LevelCompleteSignaled() bool {
	return w.levelCompleteSent
}

func (w *World) emit(t EventType, source string, payload interface{}) {
	w.events.Emit(NewEvent(t, w.frame, w.Level, source, payload))
}

// gridPosition extracts the logical cell of entities that occupy one
func gridPosition(e Entity) (int, int, bool) {
	switch e.Kind() {
	case KindPlayer:
		p := e.(*Player)
		return p.GridX, p.GridY, true
	case KindEnemy:
		en := e.(*Enemy)
		return en.GridX, en.GridY, true
	case KindBomb:
		b := e.(*Bomb)
		return b.GridX, b.GridY, true
	case KindPowerUp:
		pu := e.(*PowerUp)
		return pu.GridX, pu.GridY, true
	}
	return 0, 0, false
}
