package game

// BombState is the lifecycle stage of a bomb
type BombState uint8

const (
	BombArmed BombState = iota
	BombExploding
	BombRemoved
)

// String returns the state name
func (s BombState) String() string {
	switch s {
	case BombArmed:
		return "armed"
	case BombExploding:
		return "exploding"
	case BombRemoved:
		return "removed"
	}
	return "unknown"
}

// Bomb is a placed bomb counting down its fuse.
// Armed -> Exploding -> Removed, or Armed/Exploding -> Removed via ForceRemove.
type Bomb struct {
	id uint64

	GridX         int
	GridY         int
	Range         int
	FuseRemaining float64 // ms
	State         BombState
	Exploded      bool
	Removed       bool
	OwnerID       uint64

	x, z      float64
	onExplode func()
}

// NewBomb places an armed bomb at (x, y) and registers it with the world.
// onExplode may be nil.
func NewBomb(w *World, x, y, blastRange int, ownerID uint64, onExplode func()) *Bomb {
	b := &Bomb{
		id:            nextEntityID(),
		GridX:         x,
		GridY:         y,
		Range:         blastRange,
		FuseRemaining: w.rules.BombFuseMs,
		State:         BombArmed,
		OwnerID:       ownerID,
		onExplode:     onExplode,
	}
	b.x, b.z = w.GridToWorld(x, y)

	w.SetCellType(x, y, CellBomb)
	w.AddEntity(b)
	return b
}

func (b *Bomb) ID() uint64       { return b.id }
func (b *Bomb) Kind() EntityKind { return KindBomb }

// Update counts the fuse down and explodes once it reaches zero
func (b *Bomb) Update(w *World, deltaMs float64) {
	if b.State != BombArmed {
		return
	}
	b.FuseRemaining -= deltaMs
	if b.FuseRemaining <= 0 {
		b.explode(w)
	}
}

// Detonate zeroes the fuse so the bomb explodes on its own next update.
// It reports whether the bomb was still armed.
func (b *Bomb) Detonate() bool {
	if b.State != BombArmed {
		return false
	}
	b.FuseRemaining = 0
	return true
}

// explode runs exactly once. The registry entry is finalized by the world's sweep.
func (b *Bomb) explode(w *World) {
	if b.Exploded {
		return
	}
	b.State = BombExploding
	b.Exploded = true

	if w.CellType(b.GridX, b.GridY) == CellBomb {
		w.SetCellType(b.GridX, b.GridY, CellEmpty)
	}

	ex := NewExplosion(w, b.GridX, b.GridY, b.Range)
	w.audio.Play(SoundBombExplode)
	w.emit(EventTypeBombExploded, KindBomb.String(), BombPayload{
		BombID: b.id,
		X:      b.GridX,
		Y:      b.GridY,
		Range:  b.Range,
		Parts:  len(ex.Parts),
	})

	if b.onExplode != nil {
		b.onExplode()
	}
}

// ForceRemove unregisters the bomb from any non-removed state without
// producing an explosion.
func (b *Bomb) ForceRemove(w *World) {
	if b.Removed {
		return
	}
	b.Removed = true
	b.State = BombRemoved
	w.RemoveEntity(b)
}

// View returns the presentation state
func (b *Bomb) View() EntityView {
	return EntityView{
		ID:    b.id,
		Kind:  KindBomb,
		GridX: b.GridX,
		GridY: b.GridY,
		X:     b.x,
		Z:     b.z,
		State: b.State.String(),
	}
}
