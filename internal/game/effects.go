package game

// EffectKind selects a particle burst style
type EffectKind uint8

const (
	EffectHit   EffectKind = iota // Player lost a life
	EffectDeath                   // Player or enemy died
)

// String returns the effect name
func (k EffectKind) String() string {
	if k == EffectHit {
		return "hit"
	}
	return "death"
}

// Particle is one point of a burst, in world units relative to the burst origin
type Particle struct {
	X, Y, Z    float64
	VX, VY, VZ float64 // units per ms
}

// Effect is a cosmetic particle burst. It counts its lifetime down by frame
// time and carries no gameplay.
type Effect struct {
	id uint64

	Type      EffectKind
	X, Z      float64
	Particles []Particle
	Remaining float64 // ms
	Lifetime  float64 // ms
}

const (
	effectGravity     = 0.00002 // units per ms^2
	hitParticles      = 15
	deathParticles    = 10
	defaultMaxEffects = 32
)

// NewEffect registers a burst at world position (x, z). Returns nil when the
// world already carries its limit of live effects.
func NewEffect(w *World, kind EffectKind, x, z float64) *Effect {
	if w.liveEffects >= w.maxEffects {
		return nil
	}

	n, spread, lift := hitParticles, 0.03, 0.01
	if kind == EffectDeath {
		n, spread, lift = deathParticles, 0.05, 0.05
	}

	e := &Effect{
		id:        nextEntityID(),
		Type:      kind,
		X:         x,
		Z:         z,
		Particles: make([]Particle, n),
		Remaining: w.rules.EffectLifetimeMs,
		Lifetime:  w.rules.EffectLifetimeMs,
	}
	// Burst velocities are tuned per 16ms frame
	const perMs = 1.0 / 16.0
	for i := range e.Particles {
		e.Particles[i] = Particle{
			X:  (w.rng.Float64() - 0.5) * 0.5,
			Y:  w.rng.Float64() * 0.7,
			Z:  (w.rng.Float64() - 0.5) * 0.5,
			VX: (w.rng.Float64() - 0.5) * spread * perMs,
			VY: (lift + w.rng.Float64()*lift) * perMs,
			VZ: (w.rng.Float64() - 0.5) * spread * perMs,
		}
	}

	w.liveEffects++
	w.AddEntity(e)
	return e
}

func (e *Effect) ID() uint64       { return e.id }
func (e *Effect) Kind() EntityKind { return KindTransientEffect }

// Update advances particles and removes the burst once its lifetime elapses
func (e *Effect) Update(w *World, deltaMs float64) {
	e.Remaining -= deltaMs
	if e.Remaining <= 0 {
		w.liveEffects--
		w.RemoveEntity(e)
		return
	}

	for i := range e.Particles {
		p := &e.Particles[i]
		p.X += p.VX * deltaMs
		p.Y += p.VY * deltaMs
		p.Z += p.VZ * deltaMs
		p.VY -= effectGravity * deltaMs
	}
}

// Alpha returns the current opacity
func (e *Effect) Alpha() float64 {
	if e.Lifetime <= 0 {
		return 0
	}
	return e.Remaining / e.Lifetime
}

// View returns the presentation state
func (e *Effect) View() EntityView {
	return EntityView{
		ID:    e.id,
		Kind:  KindTransientEffect,
		X:     e.X,
		Z:     e.Z,
		State: e.Type.String(),
	}
}
