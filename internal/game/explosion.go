package game

// Segment tags an explosion part for presentation
type Segment uint8

const (
	SegmentCenter Segment = iota
	SegmentMiddle
	SegmentEnd
)

// String returns the segment name
func (s Segment) String() string {
	switch s {
	case SegmentCenter:
		return "center"
	case SegmentMiddle:
		return "middle"
	case SegmentEnd:
		return "end"
	}
	return "unknown"
}

func (s Segment) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// propagationOrder is the fixed direction order explosions walk in
var propagationOrder = [4]Direction{DirRight, DirLeft, DirDown, DirUp}

// ExplosionPart is one burning cell
type ExplosionPart struct {
	X       int       `json:"x"`
	Y       int       `json:"y"`
	Segment Segment   `json:"segment"`
	Dir     Direction `json:"dir"`
}

// Explosion owns the cells it set on fire until its lifetime elapses
type Explosion struct {
	id uint64

	OriginX           int
	OriginY           int
	Range             int
	LifetimeRemaining float64 // ms
	Parts             []ExplosionPart

	x, z float64
}

// NewExplosion registers an explosion at (x, y) and resolves its propagation
// immediately. Bombs it reaches are detonated on their own next update.
func NewExplosion(w *World, x, y, blastRange int) *Explosion {
	e := &Explosion{
		id:                nextEntityID(),
		OriginX:           x,
		OriginY:           y,
		Range:             blastRange,
		LifetimeRemaining: w.rules.ExplosionLifetimeMs,
		Parts:             make([]ExplosionPart, 0, 1+4*max(blastRange, 0)),
	}
	e.x, e.z = w.GridToWorld(x, y)

	w.explosions++
	w.AddEntity(e)
	e.resolve(w)
	return e
}

func (e *Explosion) ID() uint64       { return e.id }
func (e *Explosion) Kind() EntityKind { return KindExplosion }

// resolve walks each direction with an explicit remaining-range counter.
// The center only marks its cell.
func (e *Explosion) resolve(w *World) {
	e.addPart(w, e.OriginX, e.OriginY, SegmentCenter, DirDown)

	for _, dir := range propagationOrder {
		dx, dy := dir.Delta()
		cx, cy := e.OriginX, e.OriginY

		for remaining := e.Range; remaining > 0; remaining-- {
			cx += dx
			cy += dy

			cell, ok := w.Cell(cx, cy)
			if !ok || cell == CellWall {
				break
			}

			seg := SegmentMiddle
			if remaining == 1 {
				seg = SegmentEnd
			}
			e.addPart(w, cx, cy, seg, dir)

			if cell == CellBreakable {
				e.destroyBlock(w, cx, cy)
				e.damage(w, cx, cy, false)
				e.maybeSpawnPowerUp(w, cx, cy)
				break
			}

			// An already burning cell lets the blast through, even when a
			// spent bomb still sits in the registry there.
			e.damage(w, cx, cy, cell == CellBomb)
			if cell == CellBomb {
				break
			}
		}
	}
}

// addPart records a part and marks the cell
func (e *Explosion) addPart(w *World, x, y int, seg Segment, dir Direction) {
	w.SetCellType(x, y, CellExplosion)
	e.Parts = append(e.Parts, ExplosionPart{X: x, Y: y, Segment: seg, Dir: dir})
}

// destroyBlock removes the breakable and keeps the cell burning
func (e *Explosion) destroyBlock(w *World, x, y int) {
	w.RemoveBreakable(x, y)
	w.SetCellType(x, y, CellExplosion)
	w.emit(EventTypeBlockDestroyed, KindExplosion.String(), CellPayload{X: x, Y: y})
}

// damage applies the explosion to every actor on (x, y). When chain is set,
// armed bombs on the cell get their fuse zeroed.
func (e *Explosion) damage(w *World, x, y int, chain bool) {
	for _, ent := range w.EntitiesAt(x, y) {
		switch ent.Kind() {
		case KindPlayer:
			ent.(*Player).TakeDamage(w)
		case KindEnemy:
			ent.(*Enemy).Die(w)
		case KindBomb:
			if !chain {
				continue
			}
			b := ent.(*Bomb)
			if b.Detonate() {
				w.chainReactions++
				w.emit(EventTypeChainReaction, KindBomb.String(), BombPayload{
					BombID: b.id,
					X:      b.GridX,
					Y:      b.GridY,
					Range:  b.Range,
				})
			}
		}
	}
}

func (e *Explosion) maybeSpawnPowerUp(w *World, x, y int) {
	if w.rng.Float64() >= w.rules.PowerUpChance {
		return
	}
	kind := powerUpKinds[w.rng.Intn(len(powerUpKinds))]
	NewPowerUp(w, x, y, kind)
}

// Update counts the lifetime down. On expiry, every part cell still burning
// is reset to Empty and the explosion removes itself.
func (e *Explosion) Update(w *World, deltaMs float64) {
	e.LifetimeRemaining -= deltaMs
	if e.LifetimeRemaining > 0 {
		return
	}
	for _, p := range e.Parts {
		if w.CellType(p.X, p.Y) == CellExplosion {
			w.SetCellType(p.X, p.Y, CellEmpty)
		}
	}
	w.RemoveEntity(e)
}

// Covers reports whether the explosion has a part on (x, y)
func (e *Explosion) Covers(x, y int) bool {
	for _, p := range e.Parts {
		if p.X == x && p.Y == y {
			return true
		}
	}
	return false
}

// View returns the presentation state
func (e *Explosion) View() EntityView {
	return EntityView{
		ID:    e.id,
		Kind:  KindExplosion,
		GridX: e.OriginX,
		GridY: e.OriginY,
		X:     e.x,
		Z:     e.z,
		State: "burning",
	}
}
