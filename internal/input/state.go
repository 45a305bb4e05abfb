// Package input holds the thread-safe action state polled by the player each
// frame. Keyboard events and remote clients write to it from their own
// goroutines; the frame goroutine only reads.
package input

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"bomb-arena/internal/game"
)

// ErrUnknownAction is returned for remote messages naming no action
var ErrUnknownAction = errors.New("unknown action")

// DefaultHoldWindow keeps a tapped key pressed long enough to span several
// frames. Terminals report key repeats but never key-up.
const DefaultHoldWindow = 150 * time.Millisecond

// State implements game.Input
type State struct {
	mu      sync.Mutex
	pressed [len(game.AllActions)]bool      // explicit press/release
	until   [len(game.AllActions)]time.Time // tap expiry
	hold    time.Duration
	now     func() time.Time
}

// NewState creates an empty state. hold <= 0 uses DefaultHoldWindow.
func NewState(hold time.Duration) *State {
	if hold <= 0 {
		hold = DefaultHoldWindow
	}
	return &State{hold: hold, now: time.Now}
}

// IsActionPressed reports whether a is held or was tapped within the hold window
func (s *State) IsActionPressed(a game.Action) bool {
	if int(a) >= len(s.pressed) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pressed[a] || s.now().Before(s.until[a])
}

// Press holds a until Release
func (s *State) Press(a game.Action) {
	s.set(a, true)
}

// Release clears both the held flag and any pending tap
func (s *State) Release(a game.Action) {
	s.set(a, false)
}

func (s *State) set(a game.Action, down bool) {
	if int(a) >= len(s.pressed) {
		return
	}
	s.mu.Lock()
	s.pressed[a] = down
	if !down {
		s.until[a] = time.Time{}
	}
	s.mu.Unlock()
}

// Tap presses a for the hold window. A repeated tap extends the window.
func (s *State) Tap(a game.Action) {
	if int(a) >= len(s.until) {
		return
	}
	s.mu.Lock()
	s.until[a] = s.now().Add(s.hold)
	s.mu.Unlock()
}

// Reset releases everything
func (s *State) Reset() {
	s.mu.Lock()
	s.pressed = [len(game.AllActions)]bool{}
	s.until = [len(game.AllActions)]time.Time{}
	s.mu.Unlock()
}

// Message is a remote input update: {"action":"left","pressed":true}
type Message struct {
	Action  string `json:"action"`
	Pressed bool   `json:"pressed"`
}

// Apply presses or releases the action named by msg
func (s *State) Apply(msg Message) error {
	a, ok := game.ParseAction(msg.Action)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, msg.Action)
	}
	if msg.Pressed {
		s.Press(a)
	} else {
		s.Release(a)
	}
	return nil
}

// Pressed returns the names of every currently active action
func (s *State) Pressed() []string {
	var out []string
	for _, a := range game.AllActions {
		if s.IsActionPressed(a) {
			out = append(out, a.String())
		}
	}
	return out
}
