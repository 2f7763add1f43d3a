// ABOUTME: Amplitude envelope helper
// ABOUTME: Attack/sustain/decay shaping shared by all synthesized sounds
package synth

// Envelope shapes a sound's amplitude over time. Punch boosts the
// start of the sustain phase above unity, fading back to 1.0, which
// gives short game effects their percussive edge.
type Envelope struct {
	Attack  float64 // seconds to reach full amplitude
	Sustain float64 // seconds at full amplitude
	Punch   float64 // extra amplitude at sustain start (0 = none)
	Decay   float64 // seconds to fade to silence
}

// Duration returns the total envelope length in seconds
func (e Envelope) Duration() float64 {
	return e.Attack + e.Sustain + e.Decay
}

// Amp returns the amplitude multiplier at t seconds from the start.
// Outside the envelope the result is 0.
func (e Envelope) Amp(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t < e.Attack {
		return t / e.Attack
	}
	t -= e.Attack
	if t < e.Sustain {
		return 1 + e.Punch*(1-t/e.Sustain)
	}
	t -= e.Sustain
	if t < e.Decay {
		return 1 - t/e.Decay
	}
	return 0
}
