// ABOUTME: Synthesized sound effect
// ABOUTME: Oscillator plus envelope implementing the Sound capability
package synth

import (
	"math"
	"sync"
	"time"

	"github.com/Chime-Audio/chime-go/pkg/audio"
	"github.com/Chime-Audio/chime-go/pkg/audio/mix"
)

// Effect is a synthesized sound: one oscillator shaped by an envelope.
// It implements the chime Sound capability; Play connects a fresh
// generator into the output's bus, Stop silences it. Both are
// idempotent.
type Effect struct {
	Wave      Wave
	Frequency float64 // Hz at the start of the effect
	Slide     float64 // Hz per second frequency drift
	Envelope  Envelope
	Gain      float64 // per-effect gain in [0,1]

	mu      sync.Mutex
	current *generator
}

// Play starts the effect against the output. Starting while already
// playing is a no-op.
//
// The bus connection happens after e.mu is released: the device pull
// holds the bus lock while a completing generator takes e.mu, so
// connecting under e.mu would invert that order.
func (e *Effect) Play(out *mix.Output) error {
	e.mu.Lock()
	if e.current != nil {
		e.mu.Unlock()
		return nil
	}

	gain := e.Gain
	if gain == 0 {
		gain = 1.0
	}
	g := &generator{
		effect: e,
		osc:    newOscillator(e.Wave, time.Now().UnixNano()),
		format: out.Context().Format(),
		freq:   e.Frequency,
		slide:  e.Slide,
		env:    e.Envelope,
		gain:   gain,
	}
	e.current = g
	e.mu.Unlock()

	// A Stop racing this connect has already halted g; the first pull
	// then drops it before it sounds.
	out.Input().AddSource(g)
	return nil
}

// Stop silences the effect synchronously; safe when idle
func (e *Effect) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current != nil {
		e.current.halt()
		e.current = nil
	}
}

// Playing reports whether the effect is currently sounding
func (e *Effect) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current != nil
}

// finished is called by the generator on natural completion
func (e *Effect) finished(g *generator) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == g {
		e.current = nil
	}
}

// generator renders the effect's samples on the device goroutine
type generator struct {
	effect *Effect
	osc    *oscillator
	format audio.Format
	freq   float64
	slide  float64
	env    Envelope
	gain   float64

	mu      sync.Mutex
	halted  bool
	pos     int // frames rendered so far
	phase   float64
	stopped bool
}

func (g *generator) halt() {
	g.mu.Lock()
	g.halted = true
	g.mu.Unlock()
}

func (g *generator) ReadSamples(dst []int16) (int, bool) {
	g.mu.Lock()

	if g.halted || g.stopped {
		g.mu.Unlock()
		return 0, false
	}

	rate := float64(g.format.SampleRate)
	channels := g.format.Channels
	frames := len(dst) / channels
	total := g.env.Duration()

	written := 0
	for f := 0; f < frames; f++ {
		t := float64(g.pos) / rate
		if t >= total {
			g.stopped = true
			break
		}

		amp := g.env.Amp(t)
		freq := g.freq + g.slide*t
		if freq < 20 {
			freq = 20
		}

		v := g.osc.sample(g.phase) * amp * g.gain
		s := audio.ClampSample(int32(v * float64(audio.MaxSample)))
		for ch := 0; ch < channels; ch++ {
			dst[written] = s
			written++
		}

		g.phase += freq / rate
		g.phase -= math.Floor(g.phase)
		g.pos++
	}

	done := g.stopped
	g.mu.Unlock()

	if done {
		// Natural completion: playing -> idle
		g.effect.finished(g)
		return written, false
	}
	return written, true
}
