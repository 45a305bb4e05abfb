package game

import (
	"math"
	"testing"

	"bomb-arena/internal/config"
)

// TestNewPlayer tests player creation with defaults
func TestNewPlayer(t *testing.T) {
	player := NewPlayer(config.GameConfig{})

	if player == nil {
		t.Fatal("NewPlayer returned nil")
	}
	if player.Lives != 3 {
		t.Errorf("Expected lives 3, got %d", player.Lives)
	}
	if player.BombCapacity != 1 {
		t.Errorf("Expected bomb capacity 1, got %d", player.BombCapacity)
	}
	if player.BombRange != 2 {
		t.Errorf("Expected bomb range 2, got %d", player.BombRange)
	}
	if player.SpeedMultiplier != 1 {
		t.Errorf("Expected speed multiplier 1, got %v", player.SpeedMultiplier)
	}
	if player.State() != StateAlive {
		t.Errorf("Expected alive, got %v", player.State())
	}
}

// TestPlayerMovesFromInput tests input polling and interpolation
func TestPlayerMovesFromInput(t *testing.T) {
	w, _ := walledWorld(t, 7, 5)
	w.input = keys{ActionRight: true}
	p := spawnPlayer(w, 1, 1)

	w.Update(16)
	if p.GridX != 2 || p.GridY != 1 {
		t.Fatalf("Expected logical position (2,1), got (%d,%d)", p.GridX, p.GridY)
	}
	if !p.IsMoving {
		t.Fatal("Expected player to be moving")
	}

	w.input = NopInput{}
	for i := 0; i < 20 && p.IsMoving; i++ {
		w.Update(16)
	}
	tx, tz := w.GridToWorld(2, 1)
	if p.IsMoving || p.X != tx || p.Z != tz {
		t.Errorf("Expected arrival at (%v,%v), got (%v,%v) moving=%v", tx, tz, p.X, p.Z, p.IsMoving)
	}
	if math.Abs(p.Facing-DirRight.Rotation()) > 1e-9 {
		t.Errorf("Expected facing right, got %v", p.Facing)
	}
}

// TestInputPriority tests that up wins over the other directions
func TestInputPriority(t *testing.T) {
	w, _ := walledWorld(t, 5, 5)
	w.input = keys{ActionDown: true, ActionUp: true, ActionRight: true}
	p := spawnPlayer(w, 2, 2)

	w.Update(1)
	if p.GridX != 2 || p.GridY != 1 {
		t.Errorf("Expected up to win, got (%d,%d)", p.GridX, p.GridY)
	}
}

// TestTryMoveRejected tests rejected moves have no side effects
func TestTryMoveRejected(t *testing.T) {
	w, _ := walledWorld(t, 5, 5)
	w.AddBreakable(3, 2)
	p := spawnPlayer(w, 2, 2)

	tests := []struct {
		name string
		dir  Direction
	}{
		{"into breakable", DirRight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if p.TryMove(w, tt.dir) {
				t.Fatal("Move should be rejected")
			}
			if p.GridX != 2 || p.GridY != 2 || p.IsMoving {
				t.Errorf("Rejected move changed state: (%d,%d) moving=%v", p.GridX, p.GridY, p.IsMoving)
			}
		})
	}

	if !p.TryMove(w, DirUp) {
		t.Fatal("Expected move up")
	}
	if p.TryMove(w, DirDown) {
		t.Error("Move while moving should be rejected")
	}

	corner, _ := walledWorld(t, 3, 3)
	q := spawnPlayer(corner, 1, 1)
	for _, d := range AllDirections {
		if q.TryMove(corner, d) {
			t.Errorf("Move %v into wall accepted", d)
		}
	}
}

// TestPlaceBombRejections tests capacity and occupied-cell rejections
func TestPlaceBombRejections(t *testing.T) {
	w, rec := newTestWorld(t, 5, 5)
	p := spawnPlayer(w, 2, 2)

	if !p.PlaceBomb(w) {
		t.Fatal("First bomb should be accepted")
	}
	if p.PlaceBomb(w) {
		t.Error("Bomb over capacity should be rejected")
	}

	p.BombCapacity = 2
	if p.PlaceBomb(w) {
		t.Error("Bomb on an occupied cell should be rejected")
	}
	if p.ActiveBombs != 1 {
		t.Errorf("Expected 1 active bomb, got %d", p.ActiveBombs)
	}
	if rec.count(SoundBombPlace) != 1 {
		t.Errorf("Expected one place sound, got %d", rec.count(SoundBombPlace))
	}
}

// TestPlaceBombOnStruckBomb tests that a struck bomb still blocks its cell
// while its cell reads Explosion
func TestPlaceBombOnStruckBomb(t *testing.T) {
	w, _ := newTestWorld(t, 7, 3)
	p := spawnPlayer(w, 2, 1)
	p.BombCapacity = 2
	p.Invulnerable = true
	p.InvulnerableRemaining = 10000

	if !p.PlaceBomb(w) {
		t.Fatal("First bomb should be accepted")
	}
	own := w.BombAt(2, 1)
	striker := NewBomb(w, 3, 1, 1, 0, nil)
	striker.FuseRemaining = 10

	w.Update(10)
	if got := w.CellType(2, 1); got != CellExplosion {
		t.Fatalf("Expected struck cell to read explosion, got %v", got)
	}
	if own.State != BombArmed || own.FuseRemaining != 0 {
		t.Fatalf("Expected own bomb armed with zero fuse, got %v %.0f", own.State, own.FuseRemaining)
	}

	if p.PlaceBomb(w) {
		t.Error("Bomb on a struck bomb's cell should be rejected")
	}
	if p.ActiveBombs != 1 {
		t.Errorf("Expected 1 active bomb, got %d", p.ActiveBombs)
	}
}

// TestBombExplosionRestoresCapacity tests the owner callback
func TestBombExplosionRestoresCapacity(t *testing.T) {
	w, _ := walledWorld(t, 7, 7)
	p := spawnPlayer(w, 1, 1)
	p.PlaceBomb(w)

	p.TryMove(w, DirRight)
	w.Update(1000)
	w.Update(1000)

	if p.ActiveBombs != 0 {
		t.Errorf("Expected capacity restored, active = %d", p.ActiveBombs)
	}
}

// TestPlayerDeathSignalsOnce tests the lives=1 game over path
func TestPlayerDeathSignalsOnce(t *testing.T) {
	w, rec := newTestWorld(t, 5, 5)
	p := spawnPlayer(w, 2, 2)
	p.Lives = 1

	p.TakeDamage(w)
	if !p.Dead || p.State() != StateDead {
		t.Fatal("Expected player dead")
	}
	if !w.StopRequested() {
		t.Error("Death should request a loop stop")
	}

	p.TakeDamage(w)
	p.TakeDamage(w)

	if rec.deaths != 1 {
		t.Errorf("Expected game over signaled once, got %d", rec.deaths)
	}
	if rec.count(SoundPlayerDeath) != 1 {
		t.Errorf("Expected one death sound, got %d", rec.count(SoundPlayerDeath))
	}
	if p.BombCapacity != 1 || p.BombRange != 2 || p.SpeedMultiplier != 1 {
		t.Error("Death should reset stats")
	}
}

// TestInvulnerabilityWindow tests the post-hit grace period
func TestInvulnerabilityWindow(t *testing.T) {
	w, rec := newTestWorld(t, 7, 7)
	p := spawnPlayer(w, 1, 1)
	p.PlaceAt(w, 4, 4)

	p.TakeDamage(w)
	if p.Lives != 2 {
		t.Fatalf("Expected 2 lives, got %d", p.Lives)
	}
	if p.GridX != 1 || p.GridY != 1 {
		t.Errorf("Expected respawn at start, got (%d,%d)", p.GridX, p.GridY)
	}
	if !p.Invulnerable {
		t.Fatal("Expected invulnerability after a hit")
	}

	p.TakeDamage(w)
	if p.Lives != 2 {
		t.Errorf("Damage while invulnerable applied, lives = %d", p.Lives)
	}

	w.Update(1999)
	if !p.Invulnerable {
		t.Error("Invulnerability ended early")
	}
	w.Update(1)
	if p.Invulnerable {
		t.Error("Invulnerability should end after 2000ms")
	}
	if rec.count(SoundPlayerHit) != 1 {
		t.Errorf("Expected one hit sound, got %d", rec.count(SoundPlayerHit))
	}
}

// TestEnemyContactDamagesPlayer tests the per-frame collision scan
func TestEnemyContactDamagesPlayer(t *testing.T) {
	w, _ := newTestWorld(t, 9, 9)
	p := spawnPlayer(w, 1, 1)
	p.PlaceAt(w, 5, 5)
	en := NewEnemy(w, 5, 5, 1)
	en.ThinkCooldown = 10000

	w.Update(16)
	if p.Lives != 2 {
		t.Errorf("Expected contact damage, lives = %d", p.Lives)
	}
}

// TestPowerUpPickup tests each power-up kind
func TestPowerUpPickup(t *testing.T) {
	tests := []struct {
		kind  PowerUpKind
		check func(p *Player) bool
	}{
		{PowerUpBombCount, func(p *Player) bool { return p.BombCapacity == 2 }},
		{PowerUpRange, func(p *Player) bool { return p.BombRange == 3 }},
		{PowerUpSpeed, func(p *Player) bool { return math.Abs(p.SpeedMultiplier-1.2) < 1e-9 }},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			w, rec := newTestWorld(t, 5, 5)
			p := spawnPlayer(w, 2, 2)
			pu := NewPowerUp(w, 2, 2, tt.kind)
			reports := len(rec.stats)

			w.Update(16)

			if !tt.check(p) {
				t.Errorf("Power-up %v not applied: %+v", tt.kind, p.Stats(1))
			}
			if w.Contains(pu) {
				t.Error("Collected power-up should be removed")
			}
			if rec.count(SoundPowerUp) != 1 {
				t.Errorf("Expected one power-up sound, got %d", rec.count(SoundPowerUp))
			}
			if len(rec.stats) != reports+1 {
				t.Errorf("Expected a stats report, got %d new", len(rec.stats)-reports)
			}
		})
	}
}
