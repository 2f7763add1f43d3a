// ABOUTME: Sound capability interface
// ABOUTME: Contract between the controller and playable units
package chime

import "github.com/Chime-Audio/chime-go/pkg/audio/mix"

// Sound is a playable unit dispatched by name. Implementations build
// their signal graph against the Output they are handed on each Play;
// they never own the Output.
//
// Play must be an idempotent start and may block while the sound
// connects. Stop must be synchronous and idempotent, safe on a sound
// that is already idle or that finished on its own.
type Sound interface {
	Play(out *mix.Output) error
	Stop()
}
