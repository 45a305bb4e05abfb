package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"bomb-arena/internal/game"
)

// Wave is an oscillator shape
type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// tone is a fixed-length oscillator with an optional linear pitch sweep
type tone struct {
	from, to float64
	phase    float64
	length   int
	pos      int
	wave     Wave
	rate     beep.SampleRate
	rng      *rand.Rand
}

func newTone(from, to float64, d time.Duration, wave Wave, rate beep.SampleRate) *tone {
	return &tone{
		from:   from,
		to:     to,
		length: rate.N(d),
		wave:   wave,
		rate:   rate,
		rng:    rand.New(rand.NewSource(int64(from*1000 + to))),
	}
}

func (o *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.pos >= o.length {
			return i, i > 0
		}

		var v float64
		switch o.wave {
		case WaveSine:
			v = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			v = 1
			if o.phase >= 0.5 {
				v = -1
			}
		case WaveSaw:
			v = 2 * (o.phase - 0.5)
		case WaveNoise:
			v = o.rng.Float64()*2 - 1
		}
		samples[i][0] = v
		samples[i][1] = v

		freq := o.from + (o.to-o.from)*float64(o.pos)/float64(o.length)
		o.phase += freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.pos++
	}
	return len(samples), true
}

func (o *tone) Err() error { return nil }

// decay fades a streamer out linearly after a short attack
type decay struct {
	s      beep.Streamer
	pos    int
	attack int
	length int
}

func newDecay(s beep.Streamer, d, attack time.Duration, rate beep.SampleRate) *decay {
	return &decay{s: s, attack: rate.N(attack), length: rate.N(d)}
}

func (e *decay) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.s.Stream(samples)
	for i := 0; i < n; i++ {
		g := 0.0
		switch {
		case e.pos < e.attack:
			g = float64(e.pos) / float64(e.attack)
		case e.pos < e.length:
			g = float64(e.length-e.pos) / float64(e.length-e.attack)
		}
		samples[i][0] *= g
		samples[i][1] *= g
		e.pos++
	}
	return n, ok
}

func (e *decay) Err() error { return e.s.Err() }

// gain wraps s in a volume effect. Zero or negative volume is silent.
func gain(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// note is one segment of a cue
type note struct {
	from, to float64
	d        time.Duration
	wave     Wave
}

// cue describes how a sound is synthesized
type cue struct {
	volume float64
	notes  []note
}

// cues holds the per-sound volume and shape
var cues = map[game.Sound]cue{
	game.SoundPlayerHit: {0.3, []note{
		{220, 110, 120 * time.Millisecond, WaveSquare},
	}},
	game.SoundPlayerDeath: {0.7, []note{
		{440, 330, 150 * time.Millisecond, WaveSaw},
		{330, 220, 150 * time.Millisecond, WaveSaw},
		{220, 55, 400 * time.Millisecond, WaveSaw},
	}},
	game.SoundBombPlace: {0.4, []note{
		{180, 140, 60 * time.Millisecond, WaveSine},
	}},
	game.SoundBombExplode: {0.7, []note{
		{0, 0, 450 * time.Millisecond, WaveNoise},
	}},
	game.SoundPowerUp: {0.5, []note{
		{523.25, 523.25, 80 * time.Millisecond, WaveSquare},
		{659.25, 659.25, 80 * time.Millisecond, WaveSquare},
		{783.99, 783.99, 120 * time.Millisecond, WaveSquare},
	}},
	game.SoundEnemyDeath: {0.5, []note{
		{660, 165, 200 * time.Millisecond, WaveSaw},
	}},
	game.SoundLevelComplete: {0.7, []note{
		{523.25, 523.25, 120 * time.Millisecond, WaveSine},
		{659.25, 659.25, 120 * time.Millisecond, WaveSine},
		{783.99, 783.99, 120 * time.Millisecond, WaveSine},
		{1046.5, 1046.5, 300 * time.Millisecond, WaveSine},
	}},
}

// Cue builds a fresh streamer for s scaled by master, or nil for an unknown sound
func Cue(s game.Sound, master float64, rate beep.SampleRate) beep.Streamer {
	c, ok := cues[s]
	if !ok {
		return nil
	}
	parts := make([]beep.Streamer, 0, len(c.notes))
	for _, n := range c.notes {
		parts = append(parts, newDecay(newTone(n.from, n.to, n.d, n.wave, rate), n.d, 5*time.Millisecond, rate))
	}
	return gain(beep.Seq(parts...), c.volume*master)
}

// CueDuration returns the total length of s
func CueDuration(s game.Sound) time.Duration {
	var d time.Duration
	for _, n := range cues[s].notes {
		d += n.d
	}
	return d
}
