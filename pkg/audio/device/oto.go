// ABOUTME: Oto-based device driver
// ABOUTME: Wraps the process-wide oto context behind the Driver interface
package device

import (
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/Chime-Audio/chime-go/pkg/audio"
	"github.com/ebitengine/oto/v3"
)

// DefaultBufferSize keeps the device buffer short for game-style
// effects; bigger buffers add audible trigger latency.
const DefaultBufferSize = 25 * time.Millisecond

// OtoDriver opens the host audio device through ebitengine/oto.
type OtoDriver struct {
	// BufferSize overrides the device buffer duration (0 = DefaultBufferSize)
	BufferSize time.Duration
}

// oto allows exactly one context per process, so the opened device is
// shared across all providers regardless of host key.
var (
	otoMu     sync.Mutex
	otoShared *otoDevice
	otoFormat audio.Format
)

// Open creates (or reuses) the process-wide oto device, blocking until
// the backend reports ready.
func (d *OtoDriver) Open(format audio.Format) (Device, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	if otoShared != nil {
		if otoFormat != format {
			log.Printf("oto device already open at %dHz/%dch, ignoring requested %dHz/%dch",
				otoFormat.SampleRate, otoFormat.Channels, format.SampleRate, format.Channels)
		}
		return otoShared, nil
	}

	bufferSize := d.BufferSize
	if bufferSize == 0 {
		bufferSize = DefaultBufferSize
	}

	op := &oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   bufferSize,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	otoShared = &otoDevice{ctx: ctx}
	otoFormat = format
	log.Printf("audio device opened: %dHz, %d channels", format.SampleRate, format.Channels)

	return otoShared, nil
}

type otoDevice struct {
	ctx *oto.Context
}

func (d *otoDevice) NewPlayer(r io.Reader) Player {
	return &otoPlayer{player: d.ctx.NewPlayer(r)}
}

func (d *otoDevice) Suspend() error {
	return d.ctx.Suspend()
}

func (d *otoDevice) Resume() error {
	return d.ctx.Resume()
}

// Suspended is always false: Open waits on the ready channel, and oto
// suspends only on explicit request.
func (d *otoDevice) Suspended() bool {
	return false
}

func (d *otoDevice) Err() error {
	return d.ctx.Err()
}

type otoPlayer struct {
	player *oto.Player
}

func (p *otoPlayer) Play() {
	p.player.Play()
}

func (p *otoPlayer) IsPlaying() bool {
	return p.player.IsPlaying()
}

func (p *otoPlayer) Close() error {
	return p.player.Close()
}
