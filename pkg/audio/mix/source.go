// ABOUTME: Source and Tap interface definitions
// ABOUTME: Contracts between the mix bus and sound generators/analyzers
package mix

import "github.com/Chime-Audio/chime-go/pkg/audio"

// Source provides PCM frames to an Output bus. Sources are pulled on
// the device goroutine; implementations must be safe to read there
// while being started and stopped elsewhere.
type Source interface {
	// ReadSamples fills dst with interleaved int16 frames. It returns
	// the number of samples written and false once the source is
	// exhausted, after which the bus drops it.
	ReadSamples(dst []int16) (int, bool)
}

// Tap receives copies of the mixed signal for metering or
// visualization. It sits in parallel with the gain stage and never
// feeds back into the signal path.
type Tap interface {
	Process(samples []int16, format audio.Format)
}
