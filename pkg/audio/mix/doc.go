// ABOUTME: Mix package providing the master output bus
// ABOUTME: Sums sources, applies master gain, exposes an analysis tap
// Package mix provides the per-controller Output: a mixing bus with a
// master gain stage and an optional analysis tap over one shared
// processing context.
//
// Example:
//
//	out, err := mix.NewOutput(ctx)
//	out.SetGain(0.8)
//	out.Input().AddSource(src)
package mix
