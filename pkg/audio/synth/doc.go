// ABOUTME: Synthesized sound effects package
// ABOUTME: Oscillator and envelope based game effects
// Package synth generates short game sound effects: one oscillator
// (square, sawtooth, sine, or noise) shaped by an attack/sustain/decay
// envelope with optional punch. Effects implement the chime Sound
// capability and connect into an output's bus on Play.
//
// Example:
//
//	coin := synth.Coin()
//	ctrl.AddSound("coin", coin)
//	ctrl.PlaySound("coin")
package synth
