package game

// decide picks the next direction for an idle enemy according to its tier.
// ok is false when no walkable direction exists.
func (en *Enemy) decide(w *World) (Direction, bool) {
	switch en.Tier {
	case 1:
		return en.decideReactive(w)
	case 2:
		if dir, ok := en.pursue(w, w.ai.Tier2AggroRadius, 0); ok {
			return dir, true
		}
		return en.randomWalk(w)
	default:
		if dir, ok := en.evadeBombs(w); ok {
			return dir, true
		}
		if dir, ok := en.pursue(w, w.ai.Tier3AggroRadius, w.ai.AlignBonus); ok {
			return dir, true
		}
		return en.randomWalkAvoidingDeadEnds(w)
	}
}

// target returns the live player, or nil
func target(w *World) *Player {
	p := w.Player()
	if p == nil || p.Dead {
		return nil
	}
	return p
}

func (en *Enemy) walkable(w *World, dir Direction) bool {
	dx, dy := dir.Delta()
	return w.IsWalkable(en.GridX+dx, en.GridY+dy)
}

func (en *Enemy) walkableDirections(w *World) []Direction {
	out := make([]Direction, 0, len(AllDirections))
	for _, d := range AllDirections {
		if en.walkable(w, d) {
			out = append(out, d)
		}
	}
	return out
}

// decideReactive steps toward a player sharing the row or column,
// otherwise walks randomly.
func (en *Enemy) decideReactive(w *World) (Direction, bool) {
	if p := target(w); p != nil {
		if en.GridX == p.GridX {
			if en.GridY > p.GridY && en.walkable(w, DirUp) {
				return DirUp, true
			}
			if en.GridY < p.GridY && en.walkable(w, DirDown) {
				return DirDown, true
			}
		}
		if en.GridY == p.GridY {
			if en.GridX > p.GridX && en.walkable(w, DirLeft) {
				return DirLeft, true
			}
			if en.GridX < p.GridX && en.walkable(w, DirRight) {
				return DirRight, true
			}
		}
	}
	return en.randomWalk(w)
}

// randomWalk picks uniformly among walkable directions
func (en *Enemy) randomWalk(w *World) (Direction, bool) {
	dirs := en.walkableDirections(w)
	if len(dirs) == 0 {
		return 0, false
	}
	return dirs[w.rng.Intn(len(dirs))], true
}

// pursue scores walkable directions by how much they close the Manhattan
// distance to the player, plus alignBonus when the destination shares the
// player's row or column. Only improving moves qualify.
func (en *Enemy) pursue(w *World, radius int, alignBonus float64) (Direction, bool) {
	p := target(w)
	if p == nil {
		return 0, false
	}
	current := manhattan(en.GridX, en.GridY, p.GridX, p.GridY)
	if current >= radius {
		return 0, false
	}

	var (
		best      Direction
		bestScore float64
		found     bool
	)
	for _, d := range en.walkableDirections(w) {
		dx, dy := d.Delta()
		nx, ny := en.GridX+dx, en.GridY+dy
		gain := current - manhattan(nx, ny, p.GridX, p.GridY)
		if gain <= 0 {
			continue
		}
		score := float64(gain)
		if nx == p.GridX || ny == p.GridY {
			score += alignBonus
		}
		if !found || score > bestScore {
			best, bestScore, found = d, score, true
		}
	}
	return best, found
}

// evadeBombs moves away from the nearest bomb inside the danger radius
func (en *Enemy) evadeBombs(w *World) (Direction, bool) {
	var (
		nearest *Bomb
		nearD   int
	)
	for _, b := range w.Bombs() {
		d := manhattan(en.GridX, en.GridY, b.GridX, b.GridY)
		if d > w.ai.DangerRadius {
			continue
		}
		if nearest == nil || d < nearD {
			nearest, nearD = b, d
		}
	}
	if nearest == nil {
		return 0, false
	}

	var (
		best     Direction
		bestDist int
		found    bool
	)
	for _, d := range en.walkableDirections(w) {
		dx, dy := d.Delta()
		dist := manhattan(en.GridX+dx, en.GridY+dy, nearest.GridX, nearest.GridY)
		if !found || dist > bestDist {
			best, bestDist, found = d, dist, true
		}
	}
	return best, found
}

// randomWalkAvoidingDeadEnds prefers destinations with more than one exit
func (en *Enemy) randomWalkAvoidingDeadEnds(w *World) (Direction, bool) {
	dirs := en.walkableDirections(w)
	if len(dirs) == 0 {
		return 0, false
	}

	open := make([]Direction, 0, len(dirs))
	for _, d := range dirs {
		dx, dy := d.Delta()
		if exits(w, en.GridX+dx, en.GridY+dy) > 1 {
			open = append(open, d)
		}
	}
	if len(open) > 0 {
		return open[w.rng.Intn(len(open))], true
	}
	return dirs[w.rng.Intn(len(dirs))], true
}

// exits counts walkable neighbors of (x, y)
func exits(w *World, x, y int) int {
	n := 0
	for _, d := range AllDirections {
		dx, dy := d.Delta()
		if w.IsWalkable(x+dx, y+dy) {
			n++
		}
	}
	return n
}
