// ABOUTME: Mixing bus summing active sources
// ABOUTME: The stable input connection point exposed to sounds
package mix

import (
	"sync"

	"github.com/Chime-Audio/chime-go/pkg/audio"
)

// Bus is the connection point all sounds feed into. Sources are summed
// with int32 headroom and clamped; a source reporting exhaustion is
// dropped from the bus.
type Bus struct {
	mu      sync.Mutex
	sources []Source
	scratch []int16
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{}
}

// AddSource connects a source. Connecting is synchronous: the source
// is audible on the next device pull.
func (b *Bus) AddSource(s Source) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.sources {
		if existing == s {
			return
		}
	}
	b.sources = append(b.sources, s)
}

// RemoveSource disconnects a source; no-op when not connected
func (b *Bus) RemoveSource(s Source) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, existing := range b.sources {
		if existing == s {
			b.sources = append(b.sources[:i], b.sources[i+1:]...)
			return
		}
	}
}

// Len returns the number of connected sources
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sources)
}

// Mix sums all sources into acc. Finished sources are dropped.
func (b *Bus) Mix(acc []int32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range acc {
		acc[i] = 0
	}
	if len(b.scratch) < len(acc) {
		b.scratch = make([]int16, len(acc))
	}

	remaining := b.sources[:0]
	for _, src := range b.sources {
		n, more := src.ReadSamples(b.scratch[:len(acc)])
		for i := 0; i < n; i++ {
			acc[i] += int32(b.scratch[i])
		}
		if more {
			remaining = append(remaining, src)
		}
	}
	b.sources = remaining
}

// ClampInto clamps an int32 accumulator into int16 samples
func ClampInto(dst []int16, acc []int32) {
	for i, v := range acc {
		dst[i] = audio.ClampSample(v)
	}
}
