// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format and sample conversion functions
// Package audio provides fundamental PCM types shared by the chime engine.
//
// This package defines the Format struct used to open processing
// contexts and the sample conversion helpers used by the mix bus and
// the file decoders.
//
// Example:
//
//	format := audio.DefaultFormat
//	bytes := audio.SamplesToBytes(samples)
package audio
