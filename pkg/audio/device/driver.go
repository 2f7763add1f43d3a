// ABOUTME: Driver interface definition
// ABOUTME: Common interface for audio device backends
package device

import (
	"io"

	"github.com/Chime-Audio/chime-go/pkg/audio"
)

// Driver opens host audio devices
type Driver interface {
	// Open creates a device for the format, blocking until the device
	// is ready. The returned device may start suspended when the host
	// gates playback; callers resume it before use.
	Open(format audio.Format) (Device, error)
}

// Device represents an open host audio device
type Device interface {
	// NewPlayer creates a player that pulls PCM bytes from r
	NewPlayer(r io.Reader) Player

	// Suspend pauses the entire device
	Suspend() error

	// Resume restarts a suspended device
	Resume() error

	// Suspended reports whether the device is currently gated by the host
	Suspended() bool

	// Err returns the device error state
	Err() error
}

// Player plays one PCM byte stream on a device
type Player interface {
	Play()
	IsPlaying() bool
	Close() error
}
