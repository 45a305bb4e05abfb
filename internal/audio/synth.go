// Package audio turns game sound cues into synthesized effects played through
// the system speaker.
package audio

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"bomb-arena/internal/config"
	"bomb-arena/internal/game"
)

// maxVoices bounds concurrently mixed cues; extra cues are dropped
const maxVoices = 16

// Synth implements game.Audio. Until Start succeeds every Play is silent, so
// a machine without an audio device still runs the game.
type Synth struct {
	mu      sync.Mutex
	mixer   *beep.Mixer
	rate    beep.SampleRate
	master  float64
	enabled bool
	started bool
	muted   atomic.Bool
	played  atomic.Int64
	music   *MusicPlayer
}

// NewSynth creates a stopped synth from cfg
func NewSynth(cfg config.AudioConfig) *Synth {
	s := &Synth{
		mixer:   &beep.Mixer{},
		rate:    beep.SampleRate(cfg.SampleRate),
		master:  cfg.Volume,
		enabled: cfg.Enabled,
	}
	if cfg.MusicPath != "" {
		s.music = NewMusicPlayer(cfg.MusicPath, musicVolume, s.rate)
	}
	return s
}

const musicVolume = 0.15

// Start opens the speaker and begins mixing
func (s *Synth) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || !s.enabled {
		return nil
	}
	if err := speaker.Init(s.rate, s.rate.N(100*time.Millisecond)); err != nil {
		return err
	}
	if s.music != nil && s.music.IsLoaded() {
		s.mixer.Add(s.music)
	}
	speaker.Play(s.mixer)
	s.started = true
	log.Printf("🔊 Audio started at %d Hz", s.rate)
	return nil
}

// Stop clears the mixer and releases the music stream
func (s *Synth) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		speaker.Lock()
		s.mixer.Clear()
		speaker.Unlock()
		speaker.Clear()
		s.started = false
	}
	if s.music != nil {
		if err := s.music.Close(); err != nil {
			log.Printf("⚠️ Music close failed: %v", err)
		}
	}
}

// Play queues the cue for s
func (s *Synth) Play(snd game.Sound) {
	if s.muted.Load() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	st := Cue(snd, s.master, s.rate)
	if st == nil {
		return
	}

	speaker.Lock()
	if s.mixer.Len() < maxVoices {
		s.mixer.Add(st)
		s.played.Add(1)
	}
	speaker.Unlock()
}

// ToggleMute flips mute for both cues and music and returns the new state
func (s *Synth) ToggleMute() bool {
	m := !s.muted.Load()
	s.muted.Store(m)
	if s.music != nil {
		s.music.SetEnabled(!m)
	}
	return m
}

// Muted reports the mute state
func (s *Synth) Muted() bool { return s.muted.Load() }

// Played returns the number of cues mixed so far
func (s *Synth) Played() int64 { return s.played.Load() }

var _ game.Audio = (*Synth)(nil)

// Nop is a silent game.Audio for headless sessions
type Nop struct{}

// Play does nothing
func (Nop) Play(game.Sound) {}
