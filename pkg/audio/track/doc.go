// ABOUTME: Package documentation for track
// ABOUTME: File-backed music playback with decoding and looping

// Package track plays audio files as registered sounds.
//
// A Track streams a file from disk through its decoder on the device
// pull path, converting channel layout and sample rate to the output's
// format on the fly. MP3, FLAC, and 16/24-bit PCM WAV files are
// supported, sniffed by extension.
//
// Tracks are built for music beds: they can loop seamlessly and carry
// a per-track gain independent of the output's master volume.
package track
