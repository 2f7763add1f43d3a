// ABOUTME: Preset sound effect recipes
// ABOUTME: Fixed oscillator/envelope combinations for common game events
package synth

// Coin is a bright pickup blip
func Coin() *Effect {
	return &Effect{
		Wave:      Square,
		Frequency: 988,
		Slide:     600,
		Envelope:  Envelope{Attack: 0.005, Sustain: 0.06, Punch: 0.4, Decay: 0.25},
		Gain:      0.5,
	}
}

// Laser is a falling zap
func Laser() *Effect {
	return &Effect{
		Wave:      Sawtooth,
		Frequency: 1400,
		Slide:     -4200,
		Envelope:  Envelope{Attack: 0.002, Sustain: 0.05, Punch: 0.2, Decay: 0.15},
		Gain:      0.4,
	}
}

// Explosion is a low noise burst
func Explosion() *Effect {
	return &Effect{
		Wave:      Noise,
		Frequency: 110,
		Slide:     -60,
		Envelope:  Envelope{Attack: 0.01, Sustain: 0.12, Punch: 0.6, Decay: 0.6},
		Gain:      0.7,
	}
}

// Jump is a rising hop
func Jump() *Effect {
	return &Effect{
		Wave:      Square,
		Frequency: 330,
		Slide:     900,
		Envelope:  Envelope{Attack: 0.005, Sustain: 0.08, Decay: 0.2},
		Gain:      0.4,
	}
}

// Powerup is a long rising sweep
func Powerup() *Effect {
	return &Effect{
		Wave:      Sine,
		Frequency: 440,
		Slide:     1200,
		Envelope:  Envelope{Attack: 0.02, Sustain: 0.2, Punch: 0.3, Decay: 0.4},
		Gain:      0.5,
	}
}
