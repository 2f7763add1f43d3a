// ABOUTME: Simple linear resampler for converting audio sample rates
// ABOUTME: Used when a track's native rate differs from the context rate
package resample

// Resampler performs linear interpolation to convert between sample
// rates. State carries across chunks so streamed audio stays aligned.
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64
	position   float64
}

// New creates a resampler converting interleaved samples from
// inputRate to outputRate.
func New(inputRate, outputRate, channels int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
	}
}

// Passthrough reports whether no conversion is needed
func (r *Resampler) Passthrough() bool {
	return r.inputRate == r.outputRate
}

// Resample converts one chunk of interleaved input samples, returning
// the converted samples. Output length varies slightly per chunk as
// the fractional read position advances.
func (r *Resampler) Resample(input []int16) []int16 {
	if r.Passthrough() || len(input) == 0 {
		return input
	}

	inputFrames := len(input) / r.channels
	output := make([]int16, 0, r.OutputSamplesNeeded(len(input)))

	for {
		inputIdx := int(r.position)
		if inputIdx >= inputFrames-1 {
			break
		}
		frac := r.position - float64(inputIdx)

		for ch := 0; ch < r.channels; ch++ {
			s1 := float64(input[inputIdx*r.channels+ch])
			s2 := float64(input[(inputIdx+1)*r.channels+ch])
			output = append(output, int16(s1*(1.0-frac)+s2*frac))
		}
		r.position += r.ratio
	}

	// Keep the fractional remainder for the next chunk
	r.position -= float64(int(r.position))

	return output
}

// Reset clears the fractional read position
func (r *Resampler) Reset() {
	r.position = 0.0
}

// OutputSamplesNeeded estimates output size for an input chunk
func (r *Resampler) OutputSamplesNeeded(inputSamples int) int {
	inputFrames := inputSamples / r.channels
	outputFrames := int(float64(inputFrames)/r.ratio) + 1
	return outputFrames * r.channels
}
