package game

import (
	"log"

	"bomb-arena/internal/config"
)

// PlayerState represents the player's lifecycle state
type PlayerState int

const (
	StateAlive        PlayerState = iota // Controllable, can be hit
	StateInvulnerable                    // Grace window after a hit
	StateDead                            // Lives exhausted, waits for a restart
)

// String returns the state name used in views
func (s PlayerState) String() string {
	switch s {
	case StateAlive:
		return "alive"
	case StateInvulnerable:
		return "invulnerable"
	case StateDead:
		return "dead"
	}
	return "unknown"
}

// Player is the single human-controlled actor. It outlives worlds: the
// session re-registers the same Player in every level.
type Player struct {
	Actor

	// Persistent stats
	Lives           int     `json:"lives"`
	BombCapacity    int     `json:"bombCapacity"`
	BombRange       int     `json:"bombRange"`
	SpeedMultiplier float64 `json:"speedMultiplier"`

	// Per-level state
	ActiveBombs int `json:"activeBombs"`

	// Protection
	Invulnerable          bool    `json:"invulnerable"`
	InvulnerableRemaining float64 `json:"-"` // ms

	Dead          bool `json:"dead"`
	deathSignaled bool

	rules config.GameConfig
}

// NewPlayer creates a player with starting stats from rules.
// A zero rules value uses the defaults.
func NewPlayer(rules config.GameConfig) *Player {
	if rules == (config.GameConfig{}) {
		rules = config.DefaultGame()
	}
	p := &Player{
		Actor: newActor(rules.PlayerMoveSpeed),
		rules: rules,
	}
	p.resetStats()
	return p
}

func (p *Player) Kind() EntityKind { return KindPlayer }

// State derives the lifecycle state
func (p *Player) State() PlayerState {
	switch {
	case p.Dead:
		return StateDead
	case p.Invulnerable:
		return StateInvulnerable
	}
	return StateAlive
}

// Spawn places the player on the world's start cell and registers it.
// Bombs from a previous world no longer count against capacity.
func (p *Player) Spawn(w *World) {
	p.PlaceAt(w, w.StartX, w.StartY)
	p.ActiveBombs = 0
	p.Invulnerable = false
	p.InvulnerableRemaining = 0
	w.AddEntity(p)
	p.reportStats(w)
}

// Reset restores starting stats and revives the player
func (p *Player) Reset() {
	p.resetStats()
	p.Dead = false
	p.deathSignaled = false
	p.Invulnerable = false
	p.InvulnerableRemaining = 0
	p.ActiveBombs = 0
	p.IsMoving = false
}

func (p *Player) resetStats() {
	p.Lives = p.rules.StartLives
	p.BombCapacity = p.rules.StartBombs
	p.BombRange = p.rules.StartRange
	p.SpeedMultiplier = 1
}

// Update polls input when idle, advances movement, counts down the
// invulnerability window and checks enemy contact.
func (p *Player) Update(w *World, deltaMs float64) {
	if p.Dead {
		return
	}

	if !p.IsMoving {
		in := w.Input()
		for _, dir := range AllDirections {
			if in.IsActionPressed(moveAction(dir)) {
				p.TryMove(w, dir)
				break
			}
		}
		if in.IsActionPressed(ActionBomb) {
			p.PlaceBomb(w)
		}
	}

	p.advance(deltaMs, p.SpeedMultiplier)

	if p.Invulnerable {
		p.InvulnerableRemaining -= deltaMs
		if p.InvulnerableRemaining <= 0 {
			p.Invulnerable = false
			p.InvulnerableRemaining = 0
		}
		return
	}

	p.checkEnemyContact(w)
}

// checkEnemyContact applies one hit for the first touching enemy
func (p *Player) checkEnemyContact(w *World) {
	radius := p.rules.CollisionRadius * w.CellSize
	for _, en := range w.LiveEnemies() {
		if en.GridX == p.GridX && en.GridY == p.GridY || p.distanceTo(&en.Actor) < radius {
			p.TakeDamage(w)
			return
		}
	}
}

// PlaceBomb drops a bomb on the player's cell. Rejected when at capacity or
// when the cell already holds a bomb.
func (p *Player) PlaceBomb(w *World) bool {
	if p.Dead || p.ActiveBombs >= p.BombCapacity {
		return false
	}
	// A struck bomb's cell reads Explosion until the bomb's own update
	if w.CellType(p.GridX, p.GridY) == CellBomb || w.BombAt(p.GridX, p.GridY) != nil {
		return false
	}

	b := NewBomb(w, p.GridX, p.GridY, p.BombRange, p.id, func() {
		if p.ActiveBombs > 0 {
			p.ActiveBombs--
		}
	})
	p.ActiveBombs++

	w.audio.Play(SoundBombPlace)
	w.emit(EventTypeBombPlaced, KindPlayer.String(), BombPayload{
		BombID: b.id,
		X:      b.GridX,
		Y:      b.GridY,
		Range:  b.Range,
	})
	return true
}

// TakeDamage removes one life. Ignored while invulnerable or dead.
func (p *Player) TakeDamage(w *World) {
	if p.Invulnerable || p.Dead {
		return
	}

	p.Lives--
	if p.Lives <= 0 {
		p.die(w)
		return
	}

	NewEffect(w, EffectHit, p.X, p.Z)
	p.PlaceAt(w, w.StartX, w.StartY)
	p.Invulnerable = true
	p.InvulnerableRemaining = p.rules.InvulnerabilityMs

	w.audio.Play(SoundPlayerHit)
	w.emit(EventTypePlayerHit, KindPlayer.String(), PlayerPayload{X: p.GridX, Y: p.GridY, Lives: p.Lives})
	p.reportStats(w)
}

// die halts the world and signals game over exactly once
func (p *Player) die(w *World) {
	p.Dead = true
	p.IsMoving = false

	NewEffect(w, EffectDeath, p.X, p.Z)
	w.audio.Play(SoundPlayerDeath)
	w.emit(EventTypePlayerDied, KindPlayer.String(), PlayerPayload{X: p.GridX, Y: p.GridY})
	log.Printf("💀 Player died on level %d", w.Level)

	w.RequestStop()
	if !p.deathSignaled {
		p.deathSignaled = true
		w.signals.PlayerDied()
	}

	p.resetStats()
	p.reportStats(w)
}

// ApplyPowerUp improves the stat selected by kind
func (p *Player) ApplyPowerUp(w *World, kind PowerUpKind) {
	switch kind {
	case PowerUpBombCount:
		p.BombCapacity++
	case PowerUpRange:
		p.BombRange++
	case PowerUpSpeed:
		p.SpeedMultiplier *= p.rules.SpeedPowerUpFactor
	}
	w.audio.Play(SoundPowerUp)
	p.reportStats(w)
}

// Stats returns the UI-facing stats
func (p *Player) Stats(level int) PlayerStats {
	return PlayerStats{
		Level:           level,
		Lives:           p.Lives,
		BombCapacity:    p.BombCapacity,
		BombRange:       p.BombRange,
		SpeedMultiplier: p.SpeedMultiplier,
	}
}

func (p *Player) reportStats(w *World) {
	w.stats.StatsChanged(p.Stats(w.Level))
}

// View returns the presentation state
func (p *Player) View() EntityView {
	return p.view(KindPlayer, p.State().String())
}
