package game

import (
	"encoding/json"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeFrame             // Frame summary
	EventTypeLevelStarted
	EventTypeBombPlaced
	EventTypeBombExploded
	EventTypeChainReaction
	EventTypeBlockDestroyed
	EventTypePowerUpSpawned
	EventTypePowerUpCollected
	EventTypePlayerHit
	EventTypePlayerDied
	EventTypeEnemyDied
	EventTypeLevelComplete
	EventTypeFrameFault
)

// EventVersion for backwards compatibility in replay tooling
const EventVersion uint8 = 1

// Event is the core event structure for the event log
type Event struct {
	Version   uint8           `json:"version"`   // Schema version
	Type      EventType       `json:"type"`      // Event type
	Timestamp int64           `json:"timestamp"` // Unix nano
	Sequence  uint64          `json:"sequence"`  // Monotonic sequence
	Frame     uint64          `json:"frame"`     // Simulation frame this occurred in
	Level     int             `json:"level"`     // Level number
	Source    string          `json:"source"`    // Emitting entity kind (for rate limiting)
	Payload   json.RawMessage `json:"payload"`   // JSON-encoded payload
}

// String returns human-readable event type
func (t EventType) String() string {
	switch t {
	case EventTypeFrame:
		return "frame"
	case EventTypeLevelStarted:
		return "level_started"
	case EventTypeBombPlaced:
		return "bomb_placed"
	case EventTypeBombExploded:
		return "bomb_exploded"
	case EventTypeChainReaction:
		return "chain_reaction"
	case EventTypeBlockDestroyed:
		return "block_destroyed"
	case EventTypePowerUpSpawned:
		return "powerup_spawned"
	case EventTypePowerUpCollected:
		return "powerup_collected"
	case EventTypePlayerHit:
		return "player_hit"
	case EventTypePlayerDied:
		return "player_died"
	case EventTypeEnemyDied:
		return "enemy_died"
	case EventTypeLevelComplete:
		return "level_complete"
	case EventTypeFrameFault:
		return "frame_fault"
	default:
		return "unknown"
	}
}

// MarshalText lets events carry readable type names in JSON logs
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText
func (t *EventType) UnmarshalText(text []byte) error {
	name := string(text)
	for c := EventTypeFrame; c <= EventTypeFrameFault; c++ {
		if c.String() == name {
			*t = c
			return nil
		}
	}
	*t = EventTypeUnknown
	return nil
}

// Typed payloads for different event types

// FramePayload summarizes a frame for replay tooling
type FramePayload struct {
	DeltaMs  float64 `json:"deltaMs"`
	Entities int     `json:"entities"`
}

// LevelPayload describes a level transition
type LevelPayload struct {
	Name    string `json:"name"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Enemies int    `json:"enemies"`
}

// CellPayload locates an event on the grid
type CellPayload struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// BombPayload describes a bomb lifecycle event
type BombPayload struct {
	BombID uint64 `json:"bombId"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Range  int    `json:"range"`
	Parts  int    `json:"parts,omitempty"`
}

// PowerUpPayload describes a power-up event
type PowerUpPayload struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Kind string `json:"kind"`
}

// PlayerPayload carries the player's lives after a hit or death
type PlayerPayload struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Lives int `json:"lives"`
}

// EnemyPayload describes an enemy death
type EnemyPayload struct {
	EnemyID   uint64 `json:"enemyId"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Remaining int    `json:"remaining"`
}

// FaultPayload records a contained per-entity panic
type FaultPayload struct {
	EntityID uint64 `json:"entityId"`
	Kind     string `json:"kind"`
	Error    string `json:"error"`
}

// EventSink accepts events emitted by the world
type EventSink interface {
	Emit(event Event) bool
}

type nopSink struct{}

func (nopSink) Emit(Event) bool { return false }

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, frame uint64, level int, source string, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		Frame:     frame,
		Level:     level,
		Source:    source,
		Payload:   EncodePayload(payload),
	}
}
