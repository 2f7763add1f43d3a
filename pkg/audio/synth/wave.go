// ABOUTME: Oscillator waveform definitions
// ABOUTME: Square, sawtooth, sine, and noise generators over phase
package synth

import (
	"math"
	"math/rand"
)

// Wave selects the oscillator waveform
type Wave int

const (
	Square Wave = iota
	Sawtooth
	Sine
	Noise
)

func (w Wave) String() string {
	switch w {
	case Square:
		return "square"
	case Sawtooth:
		return "sawtooth"
	case Sine:
		return "sine"
	case Noise:
		return "noise"
	default:
		return "unknown"
	}
}

// oscillator produces one sample in [-1,1] for a phase in [0,1)
type oscillator struct {
	wave Wave
	rng  *rand.Rand

	// noise holds the current noise value, refreshed once per period
	noise     float64
	lastPhase float64
}

func newOscillator(wave Wave, seed int64) *oscillator {
	return &oscillator{
		wave: wave,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

func (o *oscillator) sample(phase float64) float64 {
	switch o.wave {
	case Square:
		if phase < 0.5 {
			return 1
		}
		return -1
	case Sawtooth:
		return 2*phase - 1
	case Sine:
		return math.Sin(2 * math.Pi * phase)
	case Noise:
		// New random value each wrap keeps the noise pitched
		if phase < o.lastPhase {
			o.noise = o.rng.Float64()*2 - 1
		}
		o.lastPhase = phase
		return o.noise
	default:
		return 0
	}
}
