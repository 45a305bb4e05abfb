package input

import (
	"unicode"

	"github.com/gdamore/tcell/v2"

	"bomb-arena/internal/game"
)

// Intent is what a key means outside of gameplay actions
type Intent uint8

const (
	IntentNone Intent = iota
	IntentAction
	IntentQuit
	IntentPause
	IntentRestart
	IntentMute
)

// KeyMap binds terminal keys to actions: arrows and WASD move, space and B
// drop a bomb.
type KeyMap struct {
	Keys  map[tcell.Key]game.Action
	Runes map[rune]game.Action
}

// DefaultKeyMap returns the standard bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Keys: map[tcell.Key]game.Action{
			tcell.KeyUp:    game.ActionUp,
			tcell.KeyDown:  game.ActionDown,
			tcell.KeyLeft:  game.ActionLeft,
			tcell.KeyRight: game.ActionRight,
		},
		Runes: map[rune]game.Action{
			'w': game.ActionUp,
			's': game.ActionDown,
			'a': game.ActionLeft,
			'd': game.ActionRight,
			' ': game.ActionBomb,
			'b': game.ActionBomb,
		},
	}
}

// Resolve classifies a key event
func (m KeyMap) Resolve(ev *tcell.EventKey) (Intent, game.Action) {
	return m.resolve(ev.Key(), ev.Rune())
}

func (m KeyMap) resolve(key tcell.Key, ch rune) (Intent, game.Action) {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return IntentQuit, 0
	case tcell.KeyRune:
		r := unicode.ToLower(ch)
		if a, ok := m.Runes[r]; ok {
			return IntentAction, a
		}
		switch r {
		case 'q':
			return IntentQuit, 0
		case 'p':
			return IntentPause, 0
		case 'r':
			return IntentRestart, 0
		case 'm':
			return IntentMute, 0
		}
		return IntentNone, 0
	}
	if a, ok := m.Keys[key]; ok {
		return IntentAction, a
	}
	return IntentNone, 0
}

// HandleKey taps the bound action on s and returns the intent
func (m KeyMap) HandleKey(s *State, ev *tcell.EventKey) Intent {
	return m.handle(s, ev.Key(), ev.Rune())
}

func (m KeyMap) handle(s *State, key tcell.Key, ch rune) Intent {
	intent, a := m.resolve(key, ch)
	if intent == IntentAction {
		s.Tap(a)
	}
	return intent
}
