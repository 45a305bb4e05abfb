package audio

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/vorbis"
)

// MusicPlayer loops an OGG Vorbis track as an endless beep.Streamer. The file
// is decoded on demand. A track that fails to load plays silence.
type MusicPlayer struct {
	mu sync.Mutex

	source    beep.StreamSeekCloser
	resampled beep.Streamer

	path    string
	volume  float64
	enabled bool
	loaded  bool
	rate    beep.SampleRate
}

// NewMusicPlayer opens path for looping at rate
func NewMusicPlayer(path string, volume float64, rate beep.SampleRate) *MusicPlayer {
	mp := &MusicPlayer{
		path:    path,
		volume:  clampVolume(volume),
		enabled: true,
		rate:    rate,
	}
	if err := mp.load(); err != nil {
		log.Printf("⚠️ Background music disabled: %v", err)
	}
	return mp
}

func (mp *MusicPlayer) load() error {
	f, err := os.Open(mp.path)
	if err != nil {
		return fmt.Errorf("open music: %w", err)
	}

	src, format, err := vorbis.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("decode %s: %w", mp.path, err)
	}

	mp.source = src
	mp.loaded = true
	if format.SampleRate != mp.rate {
		log.Printf("   Resampling music from %d Hz to %d Hz", format.SampleRate, mp.rate)
		mp.resampled = beep.Resample(4, format.SampleRate, mp.rate, src)
	} else {
		mp.resampled = src
	}
	log.Printf("✅ Background music loaded: %s", mp.path)
	return nil
}

// Stream fills samples, rewinding at end of track. It never ends.
func (mp *MusicPlayer) Stream(samples [][2]float64) (int, bool) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if !mp.loaded || !mp.enabled {
		for i := range samples {
			samples[i] = [2]float64{}
		}
		return len(samples), true
	}

	filled := 0
	for rewinds := 0; filled < len(samples) && rewinds < 2; {
		n, ok := mp.resampled.Stream(samples[filled:])
		filled += n
		if !ok || n == 0 {
			if err := mp.source.Seek(0); err != nil {
				log.Printf("⚠️ Music loop seek failed: %v", err)
				break
			}
			rewinds++
		}
	}
	for i := filled; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}

	for i := range samples {
		samples[i][0] *= mp.volume
		samples[i][1] *= mp.volume
	}
	return len(samples), true
}

func (mp *MusicPlayer) Err() error { return nil }

// SetVolume sets the music level, clamped to [0, 1]
func (mp *MusicPlayer) SetVolume(v float64) {
	mp.mu.Lock()
	mp.volume = clampVolume(v)
	mp.mu.Unlock()
}

// SetEnabled switches between the track and silence without rewinding
func (mp *MusicPlayer) SetEnabled(e bool) {
	mp.mu.Lock()
	mp.enabled = e
	mp.mu.Unlock()
}

// IsLoaded reports whether the track decoded
func (mp *MusicPlayer) IsLoaded() bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.loaded
}

// Close releases the decoder
func (mp *MusicPlayer) Close() error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.loaded = false
	if mp.source == nil {
		return nil
	}
	err := mp.source.Close()
	mp.source = nil
	return err
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
