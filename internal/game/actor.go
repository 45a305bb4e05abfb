package game

import "math"

// Actor is the movement state shared by the player and enemies.
// GridX/GridY is authoritative; X/Z trails it toward TargetX/TargetZ.
type Actor struct {
	id uint64

	GridX int
	GridY int

	X       float64
	Z       float64
	TargetX float64
	TargetZ float64

	MoveSpeed float64 // world units per ms
	IsMoving  bool
	Facing    float64 // radians
}

func newActor(speed float64) Actor {
	return Actor{id: nextEntityID(), MoveSpeed: speed}
}

// ID returns the registry identity
func (a *Actor) ID() uint64 { return a.id }

// PlaceAt snaps the actor to (x, y) and cancels any movement
func (a *Actor) PlaceAt(w *World, x, y int) {
	a.GridX, a.GridY = x, y
	a.X, a.Z = w.GridToWorld(x, y)
	a.TargetX, a.TargetZ = a.X, a.Z
	a.IsMoving = false
}

// TryMove starts a move one cell in dir. It is rejected with no side effects
// while already moving or when the destination is not walkable.
func (a *Actor) TryMove(w *World, dir Direction) bool {
	if a.IsMoving {
		return false
	}
	dx, dy := dir.Delta()
	nx, ny := a.GridX+dx, a.GridY+dy
	if !w.IsWalkable(nx, ny) {
		return false
	}

	a.GridX, a.GridY = nx, ny
	a.TargetX, a.TargetZ = w.GridToWorld(nx, ny)
	a.IsMoving = true
	a.Facing = dir.Rotation()
	return true
}

// advance interpolates toward the target. It reports whether the actor
// arrived during this step.
func (a *Actor) advance(deltaMs, multiplier float64) bool {
	if !a.IsMoving {
		return false
	}

	step := a.MoveSpeed * multiplier * deltaMs
	dx := a.TargetX - a.X
	dz := a.TargetZ - a.Z
	dist := math.Hypot(dx, dz)

	if dist < step || dist == 0 {
		a.X, a.Z = a.TargetX, a.TargetZ
		a.IsMoving = false
		return true
	}

	a.X += dx / dist * step
	a.Z += dz / dist * step
	return false
}

// distanceTo is the world-space distance between two actors
func (a *Actor) distanceTo(o *Actor) float64 {
	return math.Hypot(a.X-o.X, a.Z-o.Z)
}

func (a *Actor) view(kind EntityKind, state string) EntityView {
	return EntityView{
		ID:       a.id,
		Kind:     kind,
		GridX:    a.GridX,
		GridY:    a.GridY,
		X:        a.X,
		Z:        a.Z,
		Rotation: a.Facing,
		State:    state,
	}
}
