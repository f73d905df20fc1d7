// Package audio plays a short click when the pointer starts pushing a vertebra.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(44100)

	cueDuration = 90 * time.Millisecond
	lowPitch    = 220.0
	highPitch   = 880.0
)

// Cue owns the speaker. Every method is safe to call before Initialize or
// after it failed: the cue is then silent.
type Cue struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	initialized bool
}

func NewCue(volume float64) *Cue {
	return &Cue{
		mixer:  &beep.Mixer{},
		volume: volume,
	}
}

// Initialize opens the speaker
func (c *Cue) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
		return err
	}

	speaker.Play(c.mixer)
	c.initialized = true
	return nil
}

// Close silences every pending cue
func (c *Cue) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}

	speaker.Lock()
	c.mixer.Clear()
	speaker.Unlock()
	c.initialized = false
}

// Press plays a cue whose pitch drops from the top of the chain (index 0)
// to its tip (index count-1)
func (c *Cue) Press(index, count int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}

	streamer := &effects.Volume{
		Streamer: NewChirp(Pitch(index, count), cueDuration, sampleRate),
		Base:     2,
		Volume:   c.volume,
	}

	speaker.Lock()
	c.mixer.Add(streamer)
	speaker.Unlock()
}

// Pitch maps a segment index to a frequency between highPitch and lowPitch
func Pitch(index, count int) float64 {
	if count <= 1 {
		return highPitch
	}

	t := float64(max(0, min(index, count-1))) / float64(count-1)
	return highPitch + (lowPitch-highPitch)*t
}

// chirp is a sine tone with a linear fade out
type chirp struct {
	freq     float64
	phase    float64
	position int
	duration int
	rate     beep.SampleRate
}

func NewChirp(freq float64, duration time.Duration, rate beep.SampleRate) beep.Streamer {
	return &chirp{
		freq:     freq,
		duration: rate.N(duration),
		rate:     rate,
	}
}

func (c *chirp) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if c.position >= c.duration {
			return i, i > 0
		}

		envelope := 1 - float64(c.position)/float64(c.duration)
		val := math.Sin(2*math.Pi*c.phase) * envelope

		samples[i][0] = val
		samples[i][1] = val

		c.phase += c.freq / float64(c.rate)
		c.phase -= math.Floor(c.phase)
		c.position++
	}

	return len(samples), true
}

func (c *chirp) Err() error { return nil }
