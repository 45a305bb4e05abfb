package game

import "math"

// PowerUp is a pickup left behind by a destroyed block
type PowerUp struct {
	id uint64

	GridX int
	GridY int
	Type  PowerUpKind

	x, z float64
	spin float64 // radians, cosmetic
}

// NewPowerUp registers a power-up at (x, y)
func NewPowerUp(w *World, x, y int, kind PowerUpKind) *PowerUp {
	pu := &PowerUp{
		id:    nextEntityID(),
		GridX: x,
		GridY: y,
		Type:  kind,
	}
	pu.x, pu.z = w.GridToWorld(x, y)

	w.AddEntity(pu)
	w.emit(EventTypePowerUpSpawned, KindPowerUp.String(), PowerUpPayload{X: x, Y: y, Kind: kind.String()})
	return pu
}

func (pu *PowerUp) ID() uint64       { return pu.id }
func (pu *PowerUp) Kind() EntityKind { return KindPowerUp }

// Update spins the pickup and applies it when the player stands on its cell
func (pu *PowerUp) Update(w *World, deltaMs float64) {
	pu.spin = math.Mod(pu.spin+0.0012*deltaMs, 2*math.Pi)

	p := w.Player()
	if p == nil || p.Dead || p.GridX != pu.GridX || p.GridY != pu.GridY {
		return
	}

	p.ApplyPowerUp(w, pu.Type)
	w.emit(EventTypePowerUpCollected, KindPowerUp.String(), PowerUpPayload{X: pu.GridX, Y: pu.GridY, Kind: pu.Type.String()})
	w.RemoveEntity(pu)
}

// View returns the presentation state
func (pu *PowerUp) View() EntityView {
	return EntityView{
		ID:       pu.id,
		Kind:     KindPowerUp,
		GridX:    pu.GridX,
		GridY:    pu.GridY,
		X:        pu.x,
		Z:        pu.z,
		Rotation: pu.spin,
		State:    pu.Type.String(),
	}
}
