package game

// Entity is anything registered in the world. Update advances time-based state by
// deltaMs milliseconds; it receives the world explicitly and must not retain it
// beyond the level.
type Entity interface {
	ID() uint64
	Kind() EntityKind
	Update(w *World, deltaMs float64)
	View() EntityView
}

// EntityView is the presentation-facing state of an entity
type EntityView struct {
	ID       uint64     `json:"id"`
	Kind     EntityKind `json:"kind"`
	GridX    int        `json:"gridX"`
	GridY    int        `json:"gridY"`
	X        float64    `json:"x"`
	Z        float64    `json:"z"`
	Rotation float64    `json:"rotation"`
	State    string     `json:"state"`
}

// Presenter receives entity lifecycle notifications. It owns all geometry.
type Presenter interface {
	EntityCreated(v EntityView)
	EntityUpdated(v EntityView)
	EntityDestroyed(v EntityView)
}

// Input is polled once per frame by the player
type Input interface {
	IsActionPressed(a Action) bool
}

// Audio plays fire-and-forget cues
type Audio interface {
	Play(s Sound)
}

// StatsDisplay is told about player stat changes
type StatsDisplay interface {
	StatsChanged(s PlayerStats)
}

// LevelSignals is the outbound channel to the level manager.
// Each signal is raised at most once per occurrence.
type LevelSignals interface {
	LevelComplete(level int)
	PlayerDied()
}

// PlayerStats is the UI-facing view of the player's persistent stats
type PlayerStats struct {
	Level           int     `json:"level"`
	Lives           int     `json:"lives"`
	BombCapacity    int     `json:"bombCapacity"`
	BombRange       int     `json:"bombRange"`
	SpeedMultiplier float64 `json:"speedMultiplier"`
}

// NopPresenter discards notifications
type NopPresenter struct{}

func (NopPresenter) EntityCreated(EntityView)   {}
func (NopPresenter) EntityUpdated(EntityView)   {}
func (NopPresenter) EntityDestroyed(EntityView) {}

// NopInput never reports a pressed action
type NopInput struct{}

func (NopInput) IsActionPressed(Action) bool { return false }

// NopAudio is silent
type NopAudio struct{}

func (NopAudio) Play(Sound) {}

// NopStats discards stat updates
type NopStats struct{}

func (NopStats) StatsChanged(PlayerStats) {}

// NopSignals discards level signals
type NopSignals struct{}

func (NopSignals) LevelComplete(int) {}
func (NopSignals) PlayerDied()       {}
