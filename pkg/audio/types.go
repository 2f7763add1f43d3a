// ABOUTME: Audio type definitions
// ABOUTME: Defines PCM formats and sample conversion helpers
package audio

import "encoding/binary"

const (
	// int16 sample range, used when clamping mixed signals
	MaxSample = 32767
	MinSample = -32768
)

// Format describes a PCM stream format
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// DefaultFormat is the low-latency configuration used by the shared
// processing context: CD-rate stereo 16-bit.
var DefaultFormat = Format{
	SampleRate: 44100,
	Channels:   2,
	BitDepth:   16,
}

// BytesPerFrame returns the byte size of one frame (all channels)
func (f Format) BytesPerFrame() int {
	return f.Channels * f.BitDepth / 8
}

// ClampSample clamps an int32 accumulator value to the int16 range
func ClampSample(v int32) int16 {
	if v > MaxSample {
		return MaxSample
	}
	if v < MinSample {
		return MinSample
	}
	return int16(v)
}

// SamplesToBytes converts int16 samples to little-endian bytes
func SamplesToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// BytesToSamples converts little-endian bytes to int16 samples
func BytesToSamples(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples
}

// SampleFrom24Bit converts a 24-bit packed little-endian sample to int16
func SampleFrom24Bit(b [3]byte) int16 {
	val := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	// Sign extend from 24-bit to 32-bit
	if val&0x800000 != 0 {
		val |= ^0xFFFFFF
	}
	// Drop the low 8 bits to land in 16-bit range
	return int16(val >> 8)
}
