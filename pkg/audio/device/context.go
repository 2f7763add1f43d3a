// ABOUTME: Shared processing context over a host audio device
// ABOUTME: Tracks running/suspended/closed lifecycle state
package device

import (
	"fmt"
	"io"
	"sync"

	"github.com/Chime-Audio/chime-go/pkg/audio"
)

// State describes the lifecycle state of a Context
type State int

const (
	StateRunning State = iota
	StateSuspended
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Context is the shared audio-graph root: one host device plus its
// format, handed out by a Provider and shared by every controller
// keyed to the same host. Controllers never close it; closing is an
// explicit host-level operation after which the Provider creates a
// replacement on the next acquisition.
type Context struct {
	mu     sync.Mutex
	device Device
	format audio.Format
	state  State
}

func newContext(dev Device, format audio.Format) *Context {
	return &Context{
		device: dev,
		format: format,
		state:  StateRunning,
	}
}

// Format returns the context's PCM format
func (c *Context) Format() audio.Format {
	return c.format
}

// SampleRate returns the context sample rate
func (c *Context) SampleRate() int {
	return c.format.SampleRate
}

// Channels returns the context channel count
func (c *Context) Channels() int {
	return c.format.Channels
}

// State returns the current lifecycle state
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// NewPlayer creates a device player pulling PCM bytes from r
func (c *Context) NewPlayer(r io.Reader) (Player, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return nil, fmt.Errorf("context is closed")
	}
	return c.device.NewPlayer(r), nil
}

// Suspend pauses the underlying device
func (c *Context) Suspend() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRunning {
		return nil
	}
	if err := c.device.Suspend(); err != nil {
		return err
	}
	c.state = StateSuspended
	return nil
}

// Resume restarts a suspended device
func (c *Context) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return fmt.Errorf("context is closed")
	}
	if c.state == StateRunning {
		return nil
	}
	if err := c.device.Resume(); err != nil {
		return err
	}
	c.state = StateRunning
	return nil
}

// Close marks the context closed. The device itself is suspended, not
// torn down: backends like oto keep one device per process, and a
// later acquisition reuses it under a fresh Context.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return nil
	}
	c.state = StateClosed
	return c.device.Suspend()
}

// Err returns the device error state
func (c *Context) Err() error {
	return c.device.Err()
}
