package game

import "fmt"

// Enemy is an AI-driven actor. Touching the player costs the player a life;
// any explosion part except the center kills it.
type Enemy struct {
	Actor

	Tier          int
	Alive         bool
	ThinkCooldown float64 // ms until the next decision
}

// TierForLevel maps a level number to its default AI tier
func TierForLevel(level int) int {
	switch {
	case level <= 1:
		return 1
	case level >= 3:
		return 3
	}
	return level
}

// NewEnemy registers a live enemy at (x, y). Speed scales with the world's level.
func NewEnemy(w *World, x, y, tier int) *Enemy {
	if tier < 1 {
		tier = TierForLevel(w.Level)
	}
	en := &Enemy{
		Actor: newActor(w.rules.EnemyBaseSpeed + w.rules.EnemySpeedPerLevel*float64(w.Level)),
		Tier:  tier,
		Alive: true,
	}
	en.PlaceAt(w, x, y)
	w.AddEntity(en)
	return en
}

func (en *Enemy) Kind() EntityKind { return KindEnemy }

// Update moves toward the current target; once there it waits out the think
// cooldown and asks the AI for the next step.
func (en *Enemy) Update(w *World, deltaMs float64) {
	if !en.Alive {
		return
	}

	if en.IsMoving {
		if en.advance(deltaMs, 1) {
			en.ThinkCooldown = w.rules.EnemyThinkMs
		}
		return
	}

	en.ThinkCooldown -= deltaMs
	if en.ThinkCooldown > 0 {
		return
	}
	if dir, ok := en.decide(w); ok {
		en.TryMove(w, dir)
	}
}

// Die kills the enemy once and updates the level's live-enemy count
func (en *Enemy) Die(w *World) {
	if !en.Alive {
		return
	}
	en.Alive = false
	en.IsMoving = false

	NewEffect(w, EffectDeath, en.X, en.Z)
	w.audio.Play(SoundEnemyDeath)
	w.RemoveEntity(en)
	w.enemyDied()
	w.emit(EventTypeEnemyDied, KindEnemy.String(), EnemyPayload{
		EnemyID:   en.id,
		X:         en.GridX,
		Y:         en.GridY,
		Remaining: w.liveEnemies,
	})
}

// View returns the presentation state
func (en *Enemy) View() EntityView {
	state := "dead"
	if en.Alive {
		state = fmt.Sprintf("tier%d", en.Tier)
	}
	return en.view(KindEnemy, state)
}
