// ABOUTME: Output with master gain stage and analysis tap
// ABOUTME: Feeds the device player from the mix bus
package mix

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"

	"github.com/Chime-Audio/chime-go/pkg/audio"
	"github.com/Chime-Audio/chime-go/pkg/audio/device"
)

// Output wraps a shared processing context with a master gain stage
// and an optional analysis tap. It owns one persistent device player
// that pulls mixed frames; sounds connect into Input() and play
// independently thereafter.
type Output struct {
	ctx    *device.Context
	bus    *Bus
	player device.Player

	gainBits atomic.Uint64 // float64 bits

	mu     sync.Mutex
	tap    Tap
	closed bool

	// readMu serializes pulls; the scratch buffers below belong to the
	// reader side only
	readMu  sync.Mutex
	acc     []int32
	samples []int16
}

// NewOutput constructs an Output over a ready processing context and
// starts its device player. All graph connections are made here,
// synchronously; there is no deferred construction.
func NewOutput(ctx *device.Context) (*Output, error) {
	o := &Output{
		ctx: ctx,
		bus: NewBus(),
	}
	o.gainBits.Store(math.Float64bits(1.0))

	player, err := ctx.NewPlayer(o)
	if err != nil {
		return nil, fmt.Errorf("failed to start output player: %w", err)
	}
	o.player = player
	player.Play()

	return o, nil
}

// Context returns the underlying processing context, read-only, for
// sound implementations that build against its format.
func (o *Output) Context() *device.Context {
	return o.ctx
}

// Input returns the bus all sounds must connect into
func (o *Output) Input() *Bus {
	return o.bus
}

// SetGain sets the master gain immediately, no ramping. The value is
// passed through unchanged; keeping it inside [0,1] is the caller's
// concern.
func (o *Output) SetGain(v float64) {
	o.gainBits.Store(math.Float64bits(v))
}

// Gain returns the current master gain
func (o *Output) Gain() float64 {
	return math.Float64frombits(o.gainBits.Load())
}

// AttachAnalysis connects an analysis tap in parallel with the gain
// path, replacing any prior attachment.
func (o *Output) AttachAnalysis(tap Tap) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tap = tap
}

// DetachAnalysis removes the tap; safe to call when none is attached
func (o *Output) DetachAnalysis() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tap = nil
}

// Read implements io.Reader for the device player: mixes the bus,
// feeds the tap, applies gain, and emits little-endian int16 bytes.
// With no sources connected it emits silence, keeping the player fed.
func (o *Output) Read(p []byte) (int, error) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return 0, io.EOF
	}
	tap := o.tap
	o.mu.Unlock()

	n := len(p) / 2
	if n == 0 {
		return 0, nil
	}

	o.readMu.Lock()
	defer o.readMu.Unlock()
	if len(o.acc) < n {
		o.acc = make([]int32, n)
		o.samples = make([]int16, n)
	}
	acc := o.acc[:n]
	samples := o.samples[:n]

	o.bus.Mix(acc)
	ClampInto(samples, acc)

	// Tap observes the post-mix, pre-gain signal
	if tap != nil {
		tap.Process(samples, o.ctx.Format())
	}

	gain := o.Gain()
	for i := range samples {
		samples[i] = audio.ClampSample(int32(float64(samples[i]) * gain))
	}

	for i, s := range samples {
		binary.LittleEndian.PutUint16(p[i*2:], uint16(s))
	}
	return n * 2, nil
}

// Close stops the device player and disconnects everything. The shared
// processing context stays open for other outputs on the same host.
func (o *Output) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	o.tap = nil
	o.mu.Unlock()

	return o.player.Close()
}
