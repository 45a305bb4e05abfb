package game

import "math"

// CellType is the content of a single grid cell
type CellType uint8

const (
	CellEmpty CellType = iota
	CellWall
	CellBreakable
	CellBomb
	CellExplosion
)

// String returns the marker-style name of the cell type
func (c CellType) String() string {
	switch c {
	case CellEmpty:
		return "empty"
	case CellWall:
		return "wall"
	case CellBreakable:
		return "breakable"
	case CellBomb:
		return "bomb"
	case CellExplosion:
		return "explosion"
	default:
		return "unknown"
	}
}

// Marker returns the single-character layout marker for the cell type
func (c CellType) Marker() byte {
	switch c {
	case CellWall:
		return '#'
	case CellBreakable:
		return '*'
	case CellBomb:
		return 'B'
	case CellExplosion:
		return '~'
	}
	return '.'
}

// EntityKind is the closed set of entity types living in the registry.
// Dispatch switches on this tag, never on Go type names.
type EntityKind uint8

const (
	KindPlayer EntityKind = iota
	KindEnemy
	KindBomb
	KindExplosion
	KindPowerUp
	KindTransientEffect
)

// String returns human-readable entity kind
func (k EntityKind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindEnemy:
		return "enemy"
	case KindBomb:
		return "bomb"
	case KindExplosion:
		return "explosion"
	case KindPowerUp:
		return "powerup"
	case KindTransientEffect:
		return "effect"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name in snapshots
func (k EntityKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Direction is one of the four grid axes
type Direction uint8

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// AllDirections lists directions in input-priority order (up, down, left, right)
var AllDirections = [4]Direction{DirUp, DirDown, DirLeft, DirRight}

// Delta returns the grid step for the direction. Up is -y.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	}
	return 0, 0
}

// Rotation is the facing angle (radians around the vertical axis) for the direction
func (d Direction) Rotation() float64 {
	switch d {
	case DirUp:
		return math.Pi
	case DirLeft:
		return math.Pi / 2
	case DirRight:
		return -math.Pi / 2
	}
	return 0
}

// String returns the direction name
func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	}
	return "none"
}

func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Action is a polled input action
type Action uint8

const (
	ActionUp Action = iota
	ActionDown
	ActionLeft
	ActionRight
	ActionBomb
)

// AllActions lists every action
var AllActions = [5]Action{ActionUp, ActionDown, ActionLeft, ActionRight, ActionBomb}

// String returns the action name used on the wire
func (a Action) String() string {
	switch a {
	case ActionUp:
		return "up"
	case ActionDown:
		return "down"
	case ActionLeft:
		return "left"
	case ActionRight:
		return "right"
	case ActionBomb:
		return "bomb"
	}
	return "unknown"
}

// ParseAction maps a wire name to an Action
func ParseAction(s string) (Action, bool) {
	for _, a := range AllActions {
		if a.String() == s {
			return a, true
		}
	}
	return 0, false
}

// moveAction maps a direction to the input action that requests it
func moveAction(d Direction) Action {
	switch d {
	case DirUp:
		return ActionUp
	case DirDown:
		return ActionDown
	case DirLeft:
		return ActionLeft
	}
	return ActionRight
}

// PowerUpKind selects the stat a power-up improves
type PowerUpKind uint8

const (
	PowerUpBombCount PowerUpKind = iota
	PowerUpRange
	PowerUpSpeed
)

// powerUpKinds is the uniform spawn table
var powerUpKinds = [3]PowerUpKind{PowerUpBombCount, PowerUpRange, PowerUpSpeed}

// String returns the power-up name
func (k PowerUpKind) String() string {
	switch k {
	case PowerUpBombCount:
		return "bomb"
	case PowerUpRange:
		return "range"
	case PowerUpSpeed:
		return "speed"
	}
	return "unknown"
}

// Sound is an audio cue name
type Sound string

const (
	SoundBombPlace     Sound = "bombPlace"
	SoundBombExplode   Sound = "bombExplode"
	SoundPlayerHit     Sound = "playerHit"
	SoundPlayerDeath   Sound = "playerDeath"
	SoundEnemyDeath    Sound = "enemyDeath"
	SoundPowerUp       Sound = "powerUp"
	SoundLevelComplete Sound = "levelComplete"
)

// AllSounds lists every cue the core can emit
var AllSounds = []Sound{
	SoundBombPlace, SoundBombExplode, SoundPlayerHit, SoundPlayerDeath,
	SoundEnemyDeath, SoundPowerUp, SoundLevelComplete,
}

func manhattan(x1, y1, x2, y2 int) int {
	return abs(x1-x2) + abs(y1-y2)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
