// ABOUTME: Level meter analysis tap
// ABOUTME: Tracks per-channel peak and RMS over the mixed signal
package meter

import (
	"math"
	"sync"

	"github.com/Chime-Audio/chime-go/pkg/audio"
)

// Peak hold decays by this factor per processed chunk
const peakDecay = 0.92

// RMS smoothing weight for the incoming chunk
const rmsWeight = 0.4

// Levels is a point-in-time snapshot of the meter, one entry per
// channel, normalized to [0,1].
type Levels struct {
	Peak []float64 `json:"peak"`
	RMS  []float64 `json:"rms"`
}

// Meter observes the mixed signal before the master gain stage and
// keeps smoothed per-channel levels. It implements the output's
// analysis tap and is safe to read from any goroutine.
type Meter struct {
	mu   sync.Mutex
	peak []float64
	rms  []float64
}

// New creates an idle meter
func New() *Meter {
	return &Meter{}
}

// Process updates the levels from one chunk of interleaved samples.
// Called on the device pull path, so it stays allocation-free after
// the first chunk.
func (m *Meter) Process(samples []int16, format audio.Format) {
	channels := format.Channels
	if channels <= 0 {
		channels = 1
	}
	frames := len(samples) / channels
	if frames == 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.peak) != channels {
		m.peak = make([]float64, channels)
		m.rms = make([]float64, channels)
	}

	for ch := 0; ch < channels; ch++ {
		var peak float64
		var sumSquares float64
		for f := 0; f < frames; f++ {
			v := float64(samples[f*channels+ch]) / -float64(audio.MinSample)
			if a := math.Abs(v); a > peak {
				peak = a
			}
			sumSquares += v * v
		}
		rms := math.Sqrt(sumSquares / float64(frames))

		held := m.peak[ch] * peakDecay
		if peak > held {
			held = peak
		}
		m.peak[ch] = held
		m.rms[ch] = m.rms[ch]*(1-rmsWeight) + rms*rmsWeight
	}
}

// Levels returns a copy of the current levels. Before any audio has
// been processed both slices are empty.
func (m *Meter) Levels() Levels {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Levels{
		Peak: append([]float64(nil), m.peak...),
		RMS:  append([]float64(nil), m.rms...),
	}
}

// Reset clears the held levels
func (m *Meter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.peak {
		m.peak[i] = 0
		m.rms[i] = 0
	}
}
