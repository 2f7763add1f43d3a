// ABOUTME: Tests for the output bus
// ABOUTME: Covers mixing, clamping, gain, tap wiring, and close semantics
package mix

import (
	"io"
	"testing"

	"github.com/Chime-Audio/chime-go/pkg/audio"
	"github.com/Chime-Audio/chime-go/pkg/audio/device"
)

// sliceSource plays a fixed sample slice once
type sliceSource struct {
	samples []int16
	pos     int
}

func (s *sliceSource) ReadSamples(dst []int16) (int, bool) {
	n := copy(dst, s.samples[s.pos:])
	s.pos += n
	return n, s.pos < len(s.samples)
}

// captureTap records the samples it observes
type captureTap struct {
	samples []int16
}

func (t *captureTap) Process(samples []int16, format audio.Format) {
	t.samples = append(t.samples[:0], samples...)
}

// testContext returns a suspended null-device context so the output's
// own player never races the test's direct Read calls.
func testContext(t *testing.T) *device.Context {
	t.Helper()
	provider := device.NewProvider(&device.NullDriver{}, audio.Format{})
	ctx := provider.Acquire(device.DefaultHost)
	if ctx == nil {
		t.Fatal("null driver should always provide a context")
	}
	if err := ctx.Suspend(); err != nil {
		t.Fatalf("suspend failed: %v", err)
	}
	return ctx
}

func TestBusMixesSources(t *testing.T) {
	bus := NewBus()
	bus.AddSource(&sliceSource{samples: []int16{100, 200, 300, 400}})
	bus.AddSource(&sliceSource{samples: []int16{10, 20}})

	acc := make([]int32, 4)
	bus.Mix(acc)

	expected := []int32{110, 220, 300, 400}
	for i, want := range expected {
		if acc[i] != want {
			t.Errorf("sample %d: expected %d, got %d", i, want, acc[i])
		}
	}
}

func TestBusDropsFinishedSources(t *testing.T) {
	bus := NewBus()
	bus.AddSource(&sliceSource{samples: []int16{1, 2}})

	acc := make([]int32, 4)
	bus.Mix(acc)
	if bus.Len() != 0 {
		t.Errorf("exhausted source should be dropped, %d still connected", bus.Len())
	}

	// Next mix is silence
	bus.Mix(acc)
	for i, v := range acc {
		if v != 0 {
			t.Errorf("sample %d: expected silence, got %d", i, v)
		}
	}
}

func TestBusAddSourceIdempotent(t *testing.T) {
	bus := NewBus()
	src := &sliceSource{samples: []int16{5, 5, 5, 5}}
	bus.AddSource(src)
	bus.AddSource(src)

	if bus.Len() != 1 {
		t.Fatalf("expected 1 source, got %d", bus.Len())
	}

	acc := make([]int32, 2)
	bus.Mix(acc)
	if acc[0] != 5 {
		t.Errorf("double-added source was mixed twice: got %d", acc[0])
	}
}

func TestBusRemoveSource(t *testing.T) {
	bus := NewBus()
	src := &sliceSource{samples: []int16{1}}
	bus.AddSource(src)
	bus.RemoveSource(src)
	if bus.Len() != 0 {
		t.Error("source still connected after removal")
	}
	// Removing again is a no-op
	bus.RemoveSource(src)
}

func TestMixClampsOverflow(t *testing.T) {
	bus := NewBus()
	bus.AddSource(&sliceSource{samples: []int16{30000}})
	bus.AddSource(&sliceSource{samples: []int16{30000}})

	acc := make([]int32, 1)
	bus.Mix(acc)
	out := make([]int16, 1)
	ClampInto(out, acc)

	if out[0] != audio.MaxSample {
		t.Errorf("expected clamp to %d, got %d", audio.MaxSample, out[0])
	}
}

func TestOutputAppliesGain(t *testing.T) {
	out, err := NewOutput(testContext(t))
	if err != nil {
		t.Fatalf("NewOutput failed: %v", err)
	}
	defer out.Close()

	out.SetGain(0.5)
	if out.Gain() != 0.5 {
		t.Fatalf("expected gain 0.5, got %f", out.Gain())
	}

	out.Input().AddSource(&sliceSource{samples: []int16{1000, -1000}})

	buf := make([]byte, 4)
	n, err := out.Read(buf)
	if err != nil || n != 4 {
		t.Fatalf("read returned n=%d err=%v", n, err)
	}

	samples := audio.BytesToSamples(buf)
	if samples[0] != 500 || samples[1] != -500 {
		t.Errorf("expected gained samples [500 -500], got %v", samples)
	}
}

func TestOutputSilenceWithoutSources(t *testing.T) {
	out, err := NewOutput(testContext(t))
	if err != nil {
		t.Fatalf("NewOutput failed: %v", err)
	}
	defer out.Close()

	buf := make([]byte, 8)
	n, err := out.Read(buf)
	if err != nil || n != 8 {
		t.Fatalf("read returned n=%d err=%v", n, err)
	}
	for i, b := range buf {
		if b != 0 {
			t.Errorf("byte %d: expected silence, got %d", i, b)
		}
	}
}

func TestOutputTapSeesPreGainSignal(t *testing.T) {
	out, err := NewOutput(testContext(t))
	if err != nil {
		t.Fatalf("NewOutput failed: %v", err)
	}
	defer out.Close()

	tap := &captureTap{}
	out.AttachAnalysis(tap)
	out.SetGain(0) // gain must not affect the tap

	out.Input().AddSource(&sliceSource{samples: []int16{1234}})

	buf := make([]byte, 2)
	if _, err := out.Read(buf); err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if len(tap.samples) != 1 || tap.samples[0] != 1234 {
		t.Errorf("tap expected pre-gain [1234], got %v", tap.samples)
	}
	if got := audio.BytesToSamples(buf)[0]; got != 0 {
		t.Errorf("gain 0 should silence the output, got %d", got)
	}
}

func TestOutputDetachAnalysis(t *testing.T) {
	out, err := NewOutput(testContext(t))
	if err != nil {
		t.Fatalf("NewOutput failed: %v", err)
	}
	defer out.Close()

	tap := &captureTap{}
	out.AttachAnalysis(tap)
	out.DetachAnalysis()
	// Detaching with nothing attached is a no-op
	out.DetachAnalysis()

	out.Input().AddSource(&sliceSource{samples: []int16{42}})
	buf := make([]byte, 2)
	if _, err := out.Read(buf); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(tap.samples) != 0 {
		t.Error("detached tap still received samples")
	}
}

func TestOutputCloseIdempotent(t *testing.T) {
	out, err := NewOutput(testContext(t))
	if err != nil {
		t.Fatalf("NewOutput failed: %v", err)
	}

	if err := out.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}

	if _, err := out.Read(make([]byte, 2)); err != io.EOF {
		t.Errorf("expected EOF after close, got %v", err)
	}
}
