package game

import (
	"context"
	"log"
	"runtime/debug"
	"sync"
	"time"
)

// Updater is advanced once per frame by the loop
type Updater interface {
	Update(deltaMs float64)
}

// Stopper is implemented by updaters that can ask the loop to halt
type Stopper interface {
	StopRequested() bool
}

// FrameStats describes one completed frame
type FrameStats struct {
	Frame    uint64
	DeltaMs  float64
	Duration time.Duration // wall time spent updating
}

// LoopHooks are optional callbacks around each frame
type LoopHooks struct {
	// BeforeFrame runs at the top of every frame, even while stopped
	BeforeFrame func()
	// AfterFrame runs after every frame that updated the world
	AfterFrame func(FrameStats)
}

// Loop drives an Updater from wall-clock time. Stopping is a flag checked at
// the top of each frame; a panic escaping the updater stops the loop.
type Loop struct {
	mu       sync.Mutex
	running  bool
	last     time.Time
	frame    uint64
	fps      int
	maxDelta float64 // ms

	target Updater
	hooks  LoopHooks
}

// NewLoop creates a stopped loop for target at fps frames per second
func NewLoop(target Updater, fps int, maxDeltaMs float64, hooks LoopHooks) *Loop {
	if fps <= 0 {
		fps = 60
	}
	if maxDeltaMs <= 0 {
		maxDeltaMs = 250
	}
	return &Loop{
		target:   target,
		fps:      fps,
		maxDelta: maxDeltaMs,
		hooks:    hooks,
	}
}

// Start arms the loop. The first frame after Start has zero delta.
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return
	}
	l.running = true
	l.last = time.Time{}
	log.Printf("🎮 Simulation loop started at %d FPS", l.fps)
}

// Stop disarms the loop; frames become no-ops until Start
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.running {
		return
	}
	l.running = false
	log.Println("🛑 Simulation loop stopped")
}

// IsRunning reports whether frames currently update the target
func (l *Loop) IsRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// SetTarget swaps the updater. Call from the frame goroutine only.
func (l *Loop) SetTarget(target Updater) {
	l.target = target
}

// Frame runs one frame at wall time now. It reports whether the target was
// updated. Only one goroutine may call Frame.
func (l *Loop) Frame(now time.Time) bool {
	if l.hooks.BeforeFrame != nil {
		l.hooks.BeforeFrame()
	}

	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return false
	}
	delta := 0.0
	if !l.last.IsZero() {
		delta = float64(now.Sub(l.last)) / float64(time.Millisecond)
	}
	l.last = now
	l.mu.Unlock()

	if delta < 0 {
		delta = 0
	}
	if delta > l.maxDelta {
		delta = l.maxDelta
	}

	start := time.Now()
	if !l.step(delta) {
		return false
	}
	l.frame++

	if l.hooks.AfterFrame != nil {
		l.hooks.AfterFrame(FrameStats{
			Frame:    l.frame,
			DeltaMs:  delta,
			Duration: time.Since(start),
		})
	}

	if s, ok := l.target.(Stopper); ok && s.StopRequested() {
		l.Stop()
	}
	return true
}

// step updates the target behind a recover boundary
func (l *Loop) step(deltaMs float64) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️ Frame panic, stopping loop: %v\n%s", r, debug.Stack())
			l.Stop()
			ok = false
		}
	}()

	l.target.Update(deltaMs)
	return true
}

// Run drives frames from a ticker until ctx is cancelled
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(l.fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case now := <-ticker.C:
			l.Frame(now)
		}
	}
}
