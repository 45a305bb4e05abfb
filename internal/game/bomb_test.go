package game

import "testing"

// TestBombCellLifecycle tests that the bomb cell only clears when the
// explosion part on it burns out
func TestBombCellLifecycle(t *testing.T) {
	w, rec := newTestWorld(t, 7, 7)
	b := NewBomb(w, 3, 3, 1, 0, nil)

	if got := w.CellType(3, 3); got != CellBomb {
		t.Fatalf("Expected bomb cell, got %v", got)
	}

	w.Update(1999)
	if b.Exploded || w.CellType(3, 3) != CellBomb {
		t.Fatalf("Bomb exploded early: exploded=%v cell=%v", b.Exploded, w.CellType(3, 3))
	}

	w.Update(1)
	if !b.Exploded {
		t.Fatal("Expected bomb to explode when the fuse reached zero")
	}
	if w.Contains(b) {
		t.Error("Exploded bomb should be swept from the registry")
	}
	if got := w.CellType(3, 3); got != CellExplosion {
		t.Errorf("Expected explosion on the bomb cell, got %v", got)
	}
	if rec.count(SoundBombExplode) != 1 {
		t.Errorf("Expected one explode sound, got %d", rec.count(SoundBombExplode))
	}

	w.Update(999)
	if got := w.CellType(3, 3); got != CellExplosion {
		t.Errorf("Cell cleared before the explosion lifetime elapsed: %v", got)
	}

	w.Update(1)
	if got := w.CellType(3, 3); got != CellEmpty {
		t.Errorf("Expected empty cell after the explosion, got %v", got)
	}
	if w.EntityCount() != 0 {
		t.Errorf("Expected empty registry, got %d entities", w.EntityCount())
	}
}

// TestBombForceRemove tests removal without explosion side effects
func TestBombForceRemove(t *testing.T) {
	w, _ := newTestWorld(t, 5, 5)
	called := false
	b := NewBomb(w, 2, 2, 2, 0, func() { called = true })

	b.ForceRemove(w)
	b.ForceRemove(w)

	if !b.Removed || b.State != BombRemoved {
		t.Errorf("Expected removed state, got %v", b.State)
	}
	if w.Contains(b) {
		t.Error("Bomb still registered")
	}
	if w.CellType(2, 2) != CellEmpty {
		t.Errorf("Expected vacated cell, got %v", w.CellType(2, 2))
	}
	if called || w.ExplosionCount() != 0 {
		t.Error("ForceRemove must not explode")
	}
}

// TestBombOwnerCallback tests the explode notification
func TestBombOwnerCallback(t *testing.T) {
	w, _ := newTestWorld(t, 5, 5)
	calls := 0
	NewBomb(w, 2, 2, 1, 0, func() { calls++ })

	for i := 0; i < 10; i++ {
		w.Update(500)
	}
	if calls != 1 {
		t.Errorf("Expected callback once, got %d", calls)
	}
}

// TestChainReactionIsDeferred tests that a struck bomb explodes on its own
// update rather than inside the triggering explosion
func TestChainReactionIsDeferred(t *testing.T) {
	w, _ := newTestWorld(t, 9, 3)

	// Registered first, so it has already been updated when it gets struck
	second := NewBomb(w, 4, 1, 2, 0, nil)
	first := NewBomb(w, 2, 1, 2, 0, nil)
	first.FuseRemaining = 10

	w.Update(10)
	if !first.Exploded {
		t.Fatal("Expected first bomb to explode")
	}
	if second.Exploded {
		t.Fatal("Struck bomb exploded inside the triggering explosion")
	}
	if second.FuseRemaining != 0 {
		t.Errorf("Expected struck bomb fuse forced to 0, got %v", second.FuseRemaining)
	}
	if w.ChainReactions() != 1 || w.ExplosionCount() != 1 {
		t.Errorf("Expected 1 chain and 1 explosion, got %d and %d", w.ChainReactions(), w.ExplosionCount())
	}

	w.Update(16)
	if !second.Exploded {
		t.Fatal("Expected struck bomb to explode on its next update")
	}
	if w.ExplosionCount() != 2 {
		t.Errorf("Expected 2 explosions, got %d", w.ExplosionCount())
	}

	var secondary *Explosion
	for _, e := range w.Entities() {
		if ex, ok := e.(*Explosion); ok && ex.OriginX == 4 {
			secondary = ex
		}
	}
	if secondary == nil {
		t.Fatal("Expected an explosion originating at the struck bomb")
	}
	if !secondary.Covers(6, 1) {
		t.Error("Secondary explosion should propagate from its own origin")
	}
}

// TestChainReactionSameFrame tests a struck bomb later in update order
func TestChainReactionSameFrame(t *testing.T) {
	w, _ := newTestWorld(t, 9, 3)

	first := NewBomb(w, 2, 1, 2, 0, nil)
	second := NewBomb(w, 4, 1, 2, 0, nil)
	first.FuseRemaining = 10

	w.Update(10)
	if !first.Exploded || !second.Exploded {
		t.Fatalf("Expected both bombs exploded, got %v and %v", first.Exploded, second.Exploded)
	}

	var primary *Explosion
	for _, e := range w.Entities() {
		if ex, ok := e.(*Explosion); ok && ex.OriginX == 2 {
			primary = ex
		}
	}
	if primary == nil {
		t.Fatal("Missing primary explosion")
	}
	if primary.Covers(5, 1) {
		t.Error("Primary explosion must stop at the struck bomb")
	}
}

// TestBlastPassesSpentBomb tests a later blast in the same frame crossing the
// cell of a bomb that already exploded
func TestBlastPassesSpentBomb(t *testing.T) {
	w, _ := newTestWorld(t, 11, 3)

	first := NewBomb(w, 4, 1, 2, 0, nil)
	second := NewBomb(w, 2, 1, 7, 0, nil)
	first.FuseRemaining = 10
	target := NewEnemy(w, 8, 1, 1)

	w.Update(10)
	if !first.Exploded || !second.Exploded {
		t.Fatalf("Expected both bombs exploded, got %v and %v", first.Exploded, second.Exploded)
	}

	var secondary *Explosion
	for _, e := range w.Entities() {
		if ex, ok := e.(*Explosion); ok && ex.OriginX == 2 {
			secondary = ex
		}
	}
	if secondary == nil {
		t.Fatal("Missing secondary explosion")
	}
	for x := 5; x <= 9; x++ {
		if !secondary.Covers(x, 1) {
			t.Errorf("Expected secondary blast to cover (%d,1)", x)
		}
		if got := w.CellType(x, 1); got != CellExplosion {
			t.Errorf("Expected explosion at (%d,1), got %v", x, got)
		}
	}
	if target.Alive {
		t.Error("Enemy past the spent bomb should die")
	}
	if w.ChainReactions() != 1 {
		t.Errorf("Expected 1 chain reaction, got %d", w.ChainReactions())
	}
}
