package game

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeUpdater struct {
	deltas []float64
	stop   bool
	panics bool
}

func (f *fakeUpdater) Update(deltaMs float64) {
	if f.panics {
		panic("frame fault")
	}
	f.deltas = append(f.deltas, deltaMs)
}

func (f *fakeUpdater) StopRequested() bool { return f.stop }

// TestLoopStoppedFrameIsNoop tests that frames before Start do nothing
func TestLoopStoppedFrameIsNoop(t *testing.T) {
	u := &fakeUpdater{}
	before := 0
	loop := NewLoop(u, 60, 250, LoopHooks{BeforeFrame: func() { before++ }})

	if loop.Frame(time.Now()) {
		t.Error("Stopped loop reported an update")
	}
	if len(u.deltas) != 0 {
		t.Errorf("Expected no updates, got %d", len(u.deltas))
	}
	if before != 1 {
		t.Errorf("BeforeFrame should run while stopped, ran %d times", before)
	}
}

// TestLoopDeltaClamp tests first-frame zero delta and the clamp
func TestLoopDeltaClamp(t *testing.T) {
	u := &fakeUpdater{}
	var stats []FrameStats
	loop := NewLoop(u, 60, 250, LoopHooks{AfterFrame: func(fs FrameStats) { stats = append(stats, fs) }})
	loop.Start()

	base := time.Now()
	loop.Frame(base)
	loop.Frame(base.Add(16 * time.Millisecond))
	loop.Frame(base.Add(5 * time.Second))

	want := []float64{0, 16, 250}
	if len(u.deltas) != len(want) {
		t.Fatalf("Expected %d updates, got %d", len(want), len(u.deltas))
	}
	for i := range want {
		if u.deltas[i] != want[i] {
			t.Errorf("Frame %d: expected delta %v, got %v", i, want[i], u.deltas[i])
		}
	}
	if len(stats) != 3 || stats[2].Frame != 3 || stats[2].DeltaMs != 250 {
		t.Errorf("Unexpected frame stats: %+v", stats)
	}
}

// TestLoopRestartResetsDelta tests that Start discards the idle gap
func TestLoopRestartResetsDelta(t *testing.T) {
	u := &fakeUpdater{}
	loop := NewLoop(u, 60, 250, LoopHooks{})
	loop.Start()

	base := time.Now()
	loop.Frame(base)
	loop.Stop()
	loop.Frame(base.Add(time.Second))
	loop.Start()
	loop.Frame(base.Add(2 * time.Second))

	if len(u.deltas) != 2 || u.deltas[1] != 0 {
		t.Errorf("Expected zero delta after restart, got %v", u.deltas)
	}
}

// TestLoopStopsOnPanic tests that an escaping panic halts the loop
func TestLoopStopsOnPanic(t *testing.T) {
	u := &fakeUpdater{panics: true}
	loop := NewLoop(u, 60, 250, LoopHooks{})
	loop.Start()

	if loop.Frame(time.Now()) {
		t.Error("Panicking frame reported success")
	}
	if loop.IsRunning() {
		t.Error("Loop should stop after a panic")
	}
}

// TestLoopHonorsStopper tests the updater stop request
func TestLoopHonorsStopper(t *testing.T) {
	u := &fakeUpdater{}
	loop := NewLoop(u, 60, 250, LoopHooks{})
	loop.Start()

	loop.Frame(time.Now())
	if !loop.IsRunning() {
		t.Fatal("Loop stopped without a request")
	}

	u.stop = true
	if !loop.Frame(time.Now()) {
		t.Error("The requesting frame should still update")
	}
	if loop.IsRunning() {
		t.Error("Loop should stop after a stop request")
	}
}

// TestLoopRunCancel tests ticker-driven frames and context cancellation
func TestLoopRunCancel(t *testing.T) {
	u := &fakeUpdater{}
	frames := make(chan struct{}, 100)
	loop := NewLoop(u, 200, 250, LoopHooks{AfterFrame: func(FrameStats) {
		select {
		case frames <- struct{}{}:
		default:
		}
	}})
	loop.Start()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	select {
	case <-frames:
	case <-time.After(2 * time.Second):
		t.Fatal("No frame within 2s")
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if loop.IsRunning() {
		t.Error("Loop should be stopped after Run returns")
	}
}
