// ABOUTME: High-level chime library API
// ABOUTME: Provides the Controller for named-sound playback
// Package chime provides the high-level sound controller.
//
// A Controller lazily acquires a shared audio output, keeps a registry
// of named sounds, and dispatches them through a master volume stage:
//
//	provider := device.NewProvider(&device.OtoDriver{}, audio.DefaultFormat)
//	ctrl, err := chime.NewController(chime.Config{
//	    Provider: provider,
//	    Volume:   0.8,
//	})
//	ctrl.AddSound("coin", synth.Coin())
//	ctrl.PlaySound("coin")
//	defer ctrl.Dispose()
//
// Volume persists on the controller whether or not an output exists,
// playback degrades to a no-op when the host has no usable audio
// device, and the processing context behind the output is shared by
// every controller keyed to the same host.
package chime
