// ABOUTME: Provider managing shared processing contexts per host key
// ABOUTME: Single-flight acquisition with soft failure on unavailable devices
package device

import (
	"log"
	"sync"

	"github.com/Chime-Audio/chime-go/pkg/audio"
	"golang.org/x/sync/singleflight"
)

// HostKey scopes context sharing. Controllers keyed to the same host
// observe the same Context.
type HostKey string

// DefaultHost is the ambient host used when no key is given
const DefaultHost HostKey = "default"

// Provider owns the registry of shared processing contexts. One
// Context exists per host key while it stays open; a closed Context is
// replaced on the next acquisition.
type Provider struct {
	driver Driver
	format audio.Format

	mu       sync.Mutex
	contexts map[HostKey]*Context
	group    singleflight.Group
}

// NewProvider creates a provider backed by the given driver. A zero
// format falls back to audio.DefaultFormat.
func NewProvider(driver Driver, format audio.Format) *Provider {
	if format == (audio.Format{}) {
		format = audio.DefaultFormat
	}
	return &Provider{
		driver:   driver,
		format:   format,
		contexts: make(map[HostKey]*Context),
	}
}

// Format returns the format contexts are opened with
func (p *Provider) Format() audio.Format {
	return p.format
}

// Acquire returns the open Context for the host key, creating one if
// none exists or the previous one was closed. A suspended device is
// resumed before the Context is returned. Failure is soft: the result
// is nil and the registry is left retryable.
//
// Concurrent calls for one host key perform exactly one device open.
func (p *Provider) Acquire(host HostKey) *Context {
	if host == "" {
		host = DefaultHost
	}

	if ctx := p.lookup(host); ctx != nil {
		return ctx
	}

	v, err, _ := p.group.Do(string(host), func() (interface{}, error) {
		// A caller that lost the race may arrive after the winner
		// already stored the context.
		if ctx := p.lookup(host); ctx != nil {
			return ctx, nil
		}

		dev, err := p.driver.Open(p.format)
		if err != nil {
			return nil, err
		}
		if dev.Suspended() {
			// Playback gated by the host; without a successful resume
			// the device is unusable.
			if err := dev.Resume(); err != nil {
				return nil, err
			}
		}

		ctx := newContext(dev, p.format)
		p.mu.Lock()
		p.contexts[host] = ctx
		p.mu.Unlock()
		return ctx, nil
	})
	if err != nil {
		log.Printf("audio device unavailable for host %q: %v", host, err)
		return nil
	}
	return v.(*Context)
}

// lookup returns the registered open context for host, or nil
func (p *Provider) lookup(host HostKey) *Context {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ctx, ok := p.contexts[host]; ok && ctx.State() != StateClosed {
		return ctx
	}
	return nil
}
