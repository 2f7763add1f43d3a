// ABOUTME: Audio device package for shared processing contexts
// ABOUTME: Provides Driver backends and the per-host-key Provider
// Package device manages shared audio processing contexts.
//
// A Provider hands out one Context per host key, opening the device
// through a pluggable Driver (oto for real hardware, a null driver for
// headless use). Acquisition is soft-failing and race-free: concurrent
// callers for a key share a single device open.
//
// Example:
//
//	provider := device.NewProvider(&device.OtoDriver{}, audio.DefaultFormat)
//	ctx := provider.Acquire(device.DefaultHost)
//	if ctx == nil {
//	    // no audio on this host; degrade silently
//	}
package device
