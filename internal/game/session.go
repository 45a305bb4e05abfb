package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"bomb-arena/internal/config"
)

// ErrNoLevels is returned when a session is created without levels
var ErrNoLevels = errors.New("no levels")

// Command is a session control request from another goroutine
type Command uint8

const (
	CommandRestart Command = iota
	CommandPause
	CommandResume
)

// String returns the command name used by the API
func (c Command) String() string {
	switch c {
	case CommandRestart:
		return "restart"
	case CommandPause:
		return "pause"
	case CommandResume:
		return "resume"
	}
	return "unknown"
}

// ParseCommand maps an API name to a Command
func ParseCommand(s string) (Command, bool) {
	for _, c := range []Command{CommandRestart, CommandPause, CommandResume} {
		if c.String() == s {
			return c, true
		}
	}
	return 0, false
}

const commandQueueSize = 16

// SessionConfig configures a play session
type SessionConfig struct {
	Rules      config.GameConfig
	AI         config.AIConfig
	Levels     []LevelData // nil uses DefaultLevels
	MaxEffects int
}

// SessionDeps are the external collaborators shared by every level
type SessionDeps struct {
	Input     Input
	Audio     Audio
	Presenter Presenter
	Stats     StatsDisplay
	Events    EventSink
	// Observer is told about every frame after the snapshot is published
	Observer func(FrameStats, *GameSnapshot)
}

// Session is the level manager: it owns the persistent player, the current
// world and the loop, and implements LevelSignals for its worlds. All world
// mutation happens on the frame goroutine; other goroutines talk to it through
// the command queue and read published snapshots.
type Session struct {
	cfg  SessionConfig
	deps SessionDeps

	levels []LevelData
	index  int
	world  *World
	player *Player
	loop   *Loop
	rng    *rand.Rand

	status              SessionStatus
	pausedFrom          SessionStatus
	transitionRemaining float64
	lastErr             error
	stats               SessionStats

	commands  chan Command
	snapshots *SnapshotPool
}

// NewSession builds level 1. Construction errors are returned and no loop
// is ever started against a partial world.
func NewSession(cfg SessionConfig, deps SessionDeps) (*Session, error) {
	if cfg.Rules == (config.GameConfig{}) {
		cfg.Rules = config.DefaultGame()
	}
	if cfg.AI == (config.AIConfig{}) {
		cfg.AI = config.DefaultAI()
	}
	levels := cfg.Levels
	if levels == nil {
		levels = DefaultLevels()
	}
	if len(levels) == 0 {
		return nil, ErrNoLevels
	}

	seed := cfg.Rules.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Session{
		cfg:       cfg,
		deps:      deps,
		levels:    levels,
		player:    NewPlayer(cfg.Rules),
		rng:       rand.New(rand.NewSource(seed)),
		commands:  make(chan Command, commandQueueSize),
		snapshots: NewSnapshotPool(),
	}

	w, err := s.buildLevel(0)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	s.world = w
	s.status = StatusPlaying

	s.loop = NewLoop(s, cfg.Rules.FPS, cfg.Rules.MaxFrameDeltaMs, LoopHooks{
		BeforeFrame: s.drainCommands,
		AfterFrame:  s.afterFrame,
	})
	s.publish()

	log.Printf("🎮 Session ready: %d levels, seed %d", len(levels), seed)
	return s, nil
}

// buildLevel constructs the world for levels[index] with the persistent player
func (s *Session) buildLevel(index int) (*World, error) {
	return BuildWorld(s.levels[index], index+1, WorldConfig{
		CellSize:   s.cfg.Rules.CellSize,
		MaxEffects: s.cfg.MaxEffects,
		Rules:      s.cfg.Rules,
		AI:         s.cfg.AI,
		Rand:       rand.New(rand.NewSource(s.rng.Int63())),
		Input:      s.deps.Input,
		Audio:      s.deps.Audio,
		Presenter:  s.deps.Presenter,
		Stats:      s.deps.Stats,
		Signals:    s,
		Events:     s.deps.Events,
	}, s.player)
}

// Loop exposes the frame driver
func (s *Session) Loop() *Loop { return s.loop }

// Start arms the loop
func (s *Session) Start() { s.loop.Start() }

// Run starts the loop and drives frames until ctx is cancelled
func (s *Session) Run(ctx context.Context) error {
	s.loop.Start()
	return s.loop.Run(ctx)
}

// Snapshot returns the latest published state (any goroutine)
func (s *Session) Snapshot() *GameSnapshot {
	return s.snapshots.AcquireRead()
}

// Levels returns the level list
func (s *Session) Levels() []LevelData {
	out := make([]LevelData, len(s.levels))
	copy(out, s.levels)
	return out
}

// Submit queues a command for the next frame. Returns false when the queue is full.
func (s *Session) Submit(c Command) bool {
	select {
	case s.commands <- c:
		return true
	default:
		return false
	}
}

// Restart queues a full reset to level 1
func (s *Session) Restart() bool { return s.Submit(CommandRestart) }

// Pause queues a pause
func (s *Session) Pause() bool { return s.Submit(CommandPause) }

// Resume queues a resume
func (s *Session) Resume() bool { return s.Submit(CommandResume) }

// World returns the current world. Frame goroutine only.
func (s *Session) World() *World { return s.world }

// Player returns the persistent player. Frame goroutine only.
func (s *Session) Player() *Player { return s.player }

// Status returns the session status. Frame goroutine only; other goroutines
// read Snapshot().Status.
func (s *Session) Status() SessionStatus { return s.status }

// Err returns the last level construction error
func (s *Session) Err() error { return s.lastErr }

// Update advances the current world and any pending level transition
func (s *Session) Update(deltaMs float64) {
	if s.world == nil {
		return
	}

	before := s.counters()
	s.world.Update(deltaMs)
	s.accumulate(before)
	s.stats.Frames++

	s.world.emit(EventTypeFrame, "loop", FramePayload{DeltaMs: deltaMs, Entities: s.world.EntityCount()})

	if s.status == StatusTransition {
		s.transitionRemaining -= deltaMs
		if s.transitionRemaining <= 0 {
			s.advance()
		}
	}
}

// StopRequested halts the loop on game over, victory or a build failure
func (s *Session) StopRequested() bool {
	switch s.status {
	case StatusGameOver, StatusVictory, StatusError:
		return true
	}
	return s.world != nil && s.world.StopRequested()
}

// LevelComplete is raised by the world when its last enemy dies
func (s *Session) LevelComplete(level int) {
	if s.status != StatusPlaying {
		return
	}
	s.stats.LevelsCompleted++

	if s.index+1 >= len(s.levels) {
		s.status = StatusVictory
		log.Printf("🏆 All %d levels cleared", len(s.levels))
		return
	}
	s.status = StatusTransition
	s.transitionRemaining = s.cfg.Rules.LevelTransitionMs
	log.Printf("🏁 Level %d cleared, next level in %.0fms", level, s.transitionRemaining)
}

// PlayerDied is raised by the player once its lives are exhausted
func (s *Session) PlayerDied() {
	if s.status == StatusGameOver {
		return
	}
	s.status = StatusGameOver
	s.transitionRemaining = 0
	s.stats.GameOvers++
	log.Printf("💀 Game over on level %d", s.index+1)
}

// advance discards the current world and builds the next level
func (s *Session) advance() {
	next := s.index + 1
	w, err := s.buildLevel(next)
	if err != nil {
		s.fail(err)
		return
	}
	s.discardWorld()
	s.index = next
	s.world = w
	s.status = StatusPlaying
	s.transitionRemaining = 0
}

// restart resets the player and rebuilds level 1
func (s *Session) restart() {
	s.discardWorld()
	s.player.Reset()

	w, err := s.buildLevel(0)
	if err != nil {
		s.fail(err)
		return
	}
	s.index = 0
	s.world = w
	s.status = StatusPlaying
	s.transitionRemaining = 0
	s.lastErr = nil
	s.loop.Start()
	log.Println("🔄 Session restarted")
}

// discardWorld force-removes live bombs so no fuse outlives its world
func (s *Session) discardWorld() {
	if s.world == nil {
		return
	}
	for _, b := range s.world.Bombs() {
		b.ForceRemove(s.world)
	}
	s.world = nil
}

func (s *Session) fail(err error) {
	s.lastErr = err
	s.status = StatusError
	log.Printf("❌ Level build failed: %v", err)
}

// drainCommands applies queued commands at the top of a frame
func (s *Session) drainCommands() {
	applied := false
	for {
		select {
		case c := <-s.commands:
			s.apply(c)
			applied = true
		default:
			if applied {
				s.publish()
			}
			return
		}
	}
}

func (s *Session) apply(c Command) {
	switch c {
	case CommandRestart:
		s.restart()
	case CommandPause:
		if s.status == StatusPlaying || s.status == StatusTransition {
			s.pausedFrom = s.status
			s.status = StatusPaused
			s.loop.Stop()
		}
	case CommandResume:
		if s.status == StatusPaused {
			s.status = s.pausedFrom
			s.loop.Start()
		}
	}
}

// afterFrame publishes the snapshot and reports the frame
func (s *Session) afterFrame(fs FrameStats) {
	snap := s.publish()
	if s.deps.Observer != nil {
		s.deps.Observer(fs, snap)
	}
}

// publish fills and publishes a snapshot of the current state
func (s *Session) publish() *GameSnapshot {
	snap := s.snapshots.AcquireWrite()
	snap.Status = s.status
	snap.Level = s.index + 1
	snap.LevelName = s.levels[s.index].Name
	snap.LevelCount = len(s.levels)
	snap.TransitionRemaining = max(s.transitionRemaining, 0)
	if s.lastErr != nil {
		snap.Error = s.lastErr.Error()
	}
	if s.world != nil {
		fillWorld(snap, s.world)
	}
	snap.Player = s.player.Stats(s.index + 1)
	snap.PlayerState = s.player.State().String()
	snap.Stats = s.stats

	s.snapshots.PublishWrite()
	return snap
}

type worldCounters struct {
	explosions, chains, faults uint64
}

func (s *Session) counters() worldCounters {
	return worldCounters{s.world.explosions, s.world.chainReactions, s.world.faults}
}

// accumulate folds this frame's world counter growth into session totals
func (s *Session) accumulate(before worldCounters) {
	if s.world == nil {
		return
	}
	after := s.counters()
	s.stats.Explosions += after.explosions - before.explosions
	s.stats.ChainReactions += after.chains - before.chains
	s.stats.Faults += after.faults - before.faults
}
