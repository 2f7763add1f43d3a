// ABOUTME: Tests for audio types
// ABOUTME: Tests sample conversion functions
package audio

import "testing"

func TestClampSample(t *testing.T) {
	tests := []struct {
		name     string
		input    int32
		expected int16
	}{
		{"zero", 0, 0},
		{"positive", 1000, 1000},
		{"negative", -1000, -1000},
		{"overflow", 40000, 32767},
		{"underflow", -40000, -32768},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClampSample(tt.input)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestSampleFrom24Bit(t *testing.T) {
	tests := []struct {
		name     string
		input    [3]byte
		expected int16
	}{
		{"zero", [3]byte{0, 0, 0}, 0},
		{"positive", [3]byte{0x56, 0x34, 0x12}, 0x1234},
		{"negative", [3]byte{0x00, 0x00, 0xFF}, -256},
		{"max positive", [3]byte{0xFF, 0xFF, 0x7F}, 32767},
		{"max negative", [3]byte{0x00, 0x00, 0x80}, -32768},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SampleFrom24Bit(tt.input)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestRoundTripBytes(t *testing.T) {
	// int16 samples survive byte round-trip conversion
	samples := []int16{0, 100, -100, 1000, -1000, 32767, -32768}

	result := BytesToSamples(SamplesToBytes(samples))
	if len(result) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(result))
	}
	for i, original := range samples {
		if result[i] != original {
			t.Errorf("round-trip failed at %d: %d -> %d", i, original, result[i])
		}
	}
}

func TestBytesPerFrame(t *testing.T) {
	if got := DefaultFormat.BytesPerFrame(); got != 4 {
		t.Errorf("expected 4 bytes per stereo 16-bit frame, got %d", got)
	}
	mono := Format{SampleRate: 22050, Channels: 1, BitDepth: 16}
	if got := mono.BytesPerFrame(); got != 2 {
		t.Errorf("expected 2 bytes per mono 16-bit frame, got %d", got)
	}
}
