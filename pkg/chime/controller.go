// ABOUTME: Controller orchestrating output acquisition and sound dispatch
// ABOUTME: Owns the named-sound registry, stored volume, and lifecycle callbacks
package chime

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/Chime-Audio/chime-go/pkg/audio/device"
	"github.com/Chime-Audio/chime-go/pkg/audio/mix"
	"github.com/google/uuid"
)

// Config holds controller configuration
type Config struct {
	// Provider hands out the shared processing context (required)
	Provider *device.Provider

	// Host scopes context sharing (default: device.DefaultHost)
	Host device.HostKey

	// Volume is the initial master volume in [0,1]. The zero value
	// means unset and defaults to 1.0; to construct a controller that
	// starts muted, pass a negative volume (PlaySound treats any
	// stored volume <= 0 as muted).
	Volume float64

	// OnOutputCreated is called exactly once per output creation
	OnOutputCreated func(*Controller, *mix.Output)

	// OnOutputDisposed is called exactly once per disposal that had a
	// live output
	OnOutputDisposed func(*Controller, *mix.Output)
}

// Controller routes named sounds through a lazily acquired Output.
// The Output (and the processing context behind it) is created on
// first need; volume and the analysis attachment persist on the
// controller independently of the Output's existence.
type Controller struct {
	id         string
	provider   *device.Provider
	host       device.HostKey
	onCreated  func(*Controller, *mix.Output)
	onDisposed func(*Controller, *mix.Output)

	mu       sync.Mutex
	volume   float64
	sounds   map[string]Sound
	analysis mix.Tap
	output   *mix.Output
	pending  *acquisition

	// pendingDisposed records a Dispose that arrived while an
	// acquisition was in flight; the acquisition's output is then
	// discarded instead of installed.
	pendingDisposed bool
}

// acquisition is an in-flight output creation. Interleaved callers
// wait on done and observe the same eventual output, which is what
// keeps output creation at-most-once under concurrency.
type acquisition struct {
	done chan struct{}
	out  *mix.Output
}

// NewController creates a controller. The output is not acquired yet;
// that happens on the first PlaySound, SetVolume, or AcquireOutput.
func NewController(config Config) (*Controller, error) {
	if config.Provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if config.Host == "" {
		config.Host = device.DefaultHost
	}
	if config.Volume == 0 {
		config.Volume = 1.0
	}

	return &Controller{
		id:         uuid.New().String(),
		provider:   config.Provider,
		host:       config.Host,
		onCreated:  config.OnOutputCreated,
		onDisposed: config.OnOutputDisposed,
		volume:     config.Volume,
		sounds:     make(map[string]Sound),
	}, nil
}

// ID returns the controller's unique identifier
func (c *Controller) ID() string {
	return c.id
}

// AcquireOutput returns the controller's Output, creating it on first
// call. Repeated calls return the identical Output. Callers arriving
// while creation is in flight block until it resolves and receive the
// same result rather than triggering a second creation.
//
// Failure is soft: when no processing context can be obtained the
// result is nil, no output exists, and a later call may succeed.
func (c *Controller) AcquireOutput() *mix.Output {
	c.mu.Lock()
	if c.output != nil {
		out := c.output
		c.mu.Unlock()
		return out
	}
	if c.pending != nil {
		p := c.pending
		c.mu.Unlock()
		<-p.done
		return p.out
	}
	p := &acquisition{done: make(chan struct{})}
	c.pending = p
	c.mu.Unlock()

	out := c.createOutput()

	c.mu.Lock()
	discarded := out != nil && c.pendingDisposed
	if out != nil && !discarded {
		out.SetGain(c.volume)
		if c.analysis != nil {
			out.AttachAnalysis(c.analysis)
		}
		c.output = out
	}
	c.pending = nil
	c.pendingDisposed = false
	c.mu.Unlock()

	if discarded {
		// A Dispose interleaved with this acquisition; the fresh
		// output was never live, so no callbacks fire for it.
		if err := out.Close(); err != nil {
			log.Printf("controller %s: discarded output close failed: %v", c.id, err)
		}
		out = nil
	}

	p.out = out
	close(p.done)

	if out != nil && c.onCreated != nil {
		c.onCreated(c, out)
	}
	return out
}

// createOutput performs the blocking context fetch and output build
func (c *Controller) createOutput() *mix.Output {
	ctx := c.provider.Acquire(c.host)
	if ctx == nil {
		return nil
	}
	out, err := mix.NewOutput(ctx)
	if err != nil {
		log.Printf("controller %s: output creation failed: %v", c.id, err)
		return nil
	}
	return out
}

// AddSound registers a sound under name, overwriting any previous
// entry, and returns the stored sound. Names are not validated.
func (c *Controller) AddSound(name string, sound Sound) Sound {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sounds[name] = sound
	return sound
}

// GetSound returns the registered sound and whether it exists
func (c *Controller) GetSound(name string) (Sound, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sound, ok := c.sounds[name]
	return sound, ok
}

// ListSounds returns the registered names, sorted
func (c *Controller) ListSounds() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.sounds))
	for name := range c.sounds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RemoveSound deletes the registry entry and reports whether one
// existed.
func (c *Controller) RemoveSound(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sounds[name]; !ok {
		return false
	}
	delete(c.sounds, name)
	return true
}

// PlaySound dispatches the named sound against the controller's
// Output, acquiring it first if needed. With stored volume at or below
// zero the call is a no-op before any lookup or acquisition happens.
// An unknown name is reported at warning level and ignored; an
// acquisition failure aborts silently.
func (c *Controller) PlaySound(name string) {
	c.mu.Lock()
	volume := c.volume
	sound, ok := c.sounds[name]
	c.mu.Unlock()

	if volume <= 0 {
		return
	}
	if !ok {
		log.Printf("controller %s: sound not found: %q", c.id, name)
		return
	}

	out := c.AcquireOutput()
	if out == nil {
		return
	}
	if err := sound.Play(out); err != nil {
		log.Printf("controller %s: play %q failed: %v", c.id, name, err)
	}
}

// StopSound stops the named sound synchronously. It never touches the
// Output; an unknown name is reported at warning level.
func (c *Controller) StopSound(name string) {
	c.mu.Lock()
	sound, ok := c.sounds[name]
	c.mu.Unlock()

	if !ok {
		log.Printf("controller %s: sound not found: %q", c.id, name)
		return
	}
	sound.Stop()
}

// StopAllSounds stops every registered sound regardless of state
func (c *Controller) StopAllSounds() {
	c.mu.Lock()
	sounds := make([]Sound, 0, len(c.sounds))
	for _, sound := range c.sounds {
		sounds = append(sounds, sound)
	}
	c.mu.Unlock()

	for _, sound := range sounds {
		sound.Stop()
	}
}

// SetAnalysis stores the analysis tap and, when an Output already
// exists, connects it immediately so the attachment stays in sync even
// when set after output creation. A nil tap detaches.
func (c *Controller) SetAnalysis(tap mix.Tap) {
	c.mu.Lock()
	c.analysis = tap
	out := c.output
	c.mu.Unlock()

	if out == nil {
		return
	}
	if tap == nil {
		out.DetachAnalysis()
		return
	}
	out.AttachAnalysis(tap)
}

// SetVolume stores v unconditionally, then acquires (or fetches) the
// Output and applies it. The stored volume persists even when no
// output can be created; acquisition is attempted even at volume 0.
func (c *Controller) SetVolume(v float64) {
	c.mu.Lock()
	c.volume = v
	c.mu.Unlock()

	if out := c.AcquireOutput(); out != nil {
		out.SetGain(v)
	}
}

// Volume returns the stored master volume
func (c *Controller) Volume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}

// Dispose releases the controller's Output, firing OnOutputDisposed
// when one was live. Disposing twice, or with no output, is a no-op.
// A Dispose that interleaves with an in-flight acquisition discards
// that acquisition's output; its waiters observe nil, as for any
// failed acquisition. The shared processing context is never closed
// here.
func (c *Controller) Dispose() {
	c.mu.Lock()
	out := c.output
	c.output = nil
	if c.pending != nil {
		c.pendingDisposed = true
	}
	c.mu.Unlock()

	if out == nil {
		return
	}
	if c.onDisposed != nil {
		c.onDisposed(c, out)
	}
	if err := out.Close(); err != nil {
		log.Printf("controller %s: output close failed: %v", c.id, err)
	}
}
