// ABOUTME: Null device driver for headless operation
// ABOUTME: Drains player streams at wall-clock rate without host audio
package device

import (
	"io"
	"sync"
	"time"

	"github.com/Chime-Audio/chime-go/pkg/audio"
)

// NullDriver opens devices that discard their samples. It keeps the
// full engine running on machines without audio hardware (CI, headless
// metering servers); players consume their streams at wall-clock rate
// so sounds still progress and complete.
type NullDriver struct{}

func (d *NullDriver) Open(format audio.Format) (Device, error) {
	return &nullDevice{format: format}, nil
}

type nullDevice struct {
	format audio.Format

	mu        sync.Mutex
	suspended bool
}

func (d *nullDevice) NewPlayer(r io.Reader) Player {
	return &nullPlayer{device: d, reader: r}
}

func (d *nullDevice) Suspend() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.suspended = true
	return nil
}

func (d *nullDevice) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.suspended = false
	return nil
}

func (d *nullDevice) Suspended() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.suspended
}

func (d *nullDevice) Err() error {
	return nil
}

type nullPlayer struct {
	device *nullDevice
	reader io.Reader

	mu      sync.Mutex
	playing bool
	stop    chan struct{}
}

func (p *nullPlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		return
	}
	p.playing = true
	p.stop = make(chan struct{})
	go p.drain(p.stop)
}

// drain pulls 50ms chunks from the stream at real-time pace
func (p *nullPlayer) drain(stop chan struct{}) {
	const interval = 50 * time.Millisecond
	chunk := make([]byte, p.device.format.SampleRate*p.device.format.BytesPerFrame()/20)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if p.device.Suspended() {
				continue
			}
			if _, err := io.ReadFull(p.reader, chunk); err != nil {
				return
			}
		}
	}
}

func (p *nullPlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *nullPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		close(p.stop)
		p.playing = false
	}
	return nil
}
