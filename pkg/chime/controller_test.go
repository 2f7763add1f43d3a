// ABOUTME: Tests for the controller lifecycle and dispatch
// ABOUTME: Covers acquisition identity, muted short-circuit, callbacks, and disposal
package chime

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Chime-Audio/chime-go/pkg/audio"
	"github.com/Chime-Audio/chime-go/pkg/audio/device"
	"github.com/Chime-Audio/chime-go/pkg/audio/mix"
)

// stubSound records play/stop transitions
type stubSound struct {
	mu      sync.Mutex
	playing bool
	plays   int
	stops   int
	lastOut *mix.Output
}

func (s *stubSound) Play(out *mix.Output) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = true
	s.plays++
	s.lastOut = out
	return nil
}

func (s *stubSound) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
	s.stops++
}

func (s *stubSound) snapshot() (bool, int, int, *mix.Output) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing, s.plays, s.stops, s.lastOut
}

// countingDriver wraps the null driver and counts opens; it can also
// fail or block.
type countingDriver struct {
	null    device.NullDriver
	opens   int32
	failing atomic.Bool
	block   chan struct{}
}

func (d *countingDriver) Open(format audio.Format) (device.Device, error) {
	atomic.AddInt32(&d.opens, 1)
	if d.block != nil {
		<-d.block
	}
	if d.failing.Load() {
		return nil, io.ErrClosedPipe
	}
	return d.null.Open(format)
}

func (d *countingDriver) openCount() int32 {
	return atomic.LoadInt32(&d.opens)
}

func newTestController(t *testing.T, config Config) (*Controller, *countingDriver) {
	t.Helper()
	driver := &countingDriver{}
	if config.Provider == nil {
		config.Provider = device.NewProvider(driver, audio.Format{})
	}
	ctrl, err := NewController(config)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	return ctrl, driver
}

func TestNewControllerRequiresProvider(t *testing.T) {
	if _, err := NewController(Config{}); err == nil {
		t.Error("expected error without provider")
	}
}

func TestAcquireOutputIdentity(t *testing.T) {
	ctrl, driver := newTestController(t, Config{})
	defer ctrl.Dispose()

	first := ctrl.AcquireOutput()
	if first == nil {
		t.Fatal("expected output, got nil")
	}
	for i := 0; i < 3; i++ {
		if ctrl.AcquireOutput() != first {
			t.Fatal("repeated acquisition returned a different output")
		}
	}
	if driver.openCount() != 1 {
		t.Errorf("expected 1 device open, got %d", driver.openCount())
	}
}

func TestControllersShareContextPerHost(t *testing.T) {
	driver := &countingDriver{}
	provider := device.NewProvider(driver, audio.Format{})

	a, _ := newTestController(t, Config{Provider: provider, Host: "game"})
	b, _ := newTestController(t, Config{Provider: provider, Host: "game"})
	defer a.Dispose()
	defer b.Dispose()

	outA := a.AcquireOutput()
	outB := b.AcquireOutput()
	if outA == nil || outB == nil {
		t.Fatal("expected outputs for both controllers")
	}
	if outA == outB {
		t.Error("controllers must own distinct outputs")
	}
	if outA.Context() != outB.Context() {
		t.Error("same host key should share the processing context")
	}
	if driver.openCount() != 1 {
		t.Errorf("expected 1 device open across controllers, got %d", driver.openCount())
	}
}

func TestVolumePersistsAcrossAcquisition(t *testing.T) {
	ctrl, _ := newTestController(t, Config{Volume: 0.35})
	defer ctrl.Dispose()

	if ctrl.Volume() != 0.35 {
		t.Fatalf("expected stored volume 0.35, got %f", ctrl.Volume())
	}

	out := ctrl.AcquireOutput()
	if out == nil {
		t.Fatal("expected output")
	}
	if out.Gain() != 0.35 {
		t.Errorf("expected output gain 0.35, got %f", out.Gain())
	}
}

func TestSetVolumeSurvivesFailedAcquisition(t *testing.T) {
	driver := &countingDriver{}
	driver.failing.Store(true)
	provider := device.NewProvider(driver, audio.Format{})
	ctrl, _ := newTestController(t, Config{Provider: provider})

	ctrl.SetVolume(0.42)
	if ctrl.Volume() != 0.42 {
		t.Fatalf("volume must persist with no output, got %f", ctrl.Volume())
	}

	// SetVolume attempted an acquisition even though it failed
	if driver.openCount() == 0 {
		t.Error("SetVolume should attempt acquisition")
	}

	// Controller stays retryable once the device recovers
	driver.failing.Store(false)
	out := ctrl.AcquireOutput()
	if out == nil {
		t.Fatal("expected output after device recovery")
	}
	if out.Gain() != 0.42 {
		t.Errorf("stored volume applied late: expected 0.42, got %f", out.Gain())
	}
	ctrl.Dispose()
}

func TestSetVolumeZeroStillAcquires(t *testing.T) {
	ctrl, driver := newTestController(t, Config{})
	defer ctrl.Dispose()

	ctrl.SetVolume(0)
	if driver.openCount() != 1 {
		t.Errorf("SetVolume(0) must still acquire, opens=%d", driver.openCount())
	}
	if out := ctrl.AcquireOutput(); out.Gain() != 0 {
		t.Errorf("expected gain 0, got %f", out.Gain())
	}
}

func TestPlaySoundDispatches(t *testing.T) {
	ctrl, _ := newTestController(t, Config{Volume: 0.8})
	defer ctrl.Dispose()

	coin := &stubSound{}
	ctrl.AddSound("coin", coin)
	ctrl.PlaySound("coin")

	playing, plays, _, out := coin.snapshot()
	if !playing || plays != 1 {
		t.Fatalf("expected one play transition, playing=%v plays=%d", playing, plays)
	}
	if out == nil || out.Gain() != 0.8 {
		t.Errorf("sound should receive the output at volume 0.8, got %+v", out)
	}
}

func TestPlaySoundMutedShortCircuit(t *testing.T) {
	ctrl, driver := newTestController(t, Config{})

	coin := &stubSound{}
	ctrl.AddSound("coin", coin)

	ctrl.SetVolume(0) // acquires once, by design
	opensAfterSetVolume := driver.openCount()

	ctrl.PlaySound("coin")
	if playing, plays, _, _ := coin.snapshot(); playing || plays != 0 {
		t.Errorf("muted controller must not play, playing=%v plays=%d", playing, plays)
	}
	if driver.openCount() != opensAfterSetVolume {
		t.Error("muted PlaySound must not attempt acquisition")
	}
	ctrl.Dispose()
}

func TestPlaySoundMutedSkipsUnknownNames(t *testing.T) {
	ctrl, _ := newTestController(t, Config{})
	defer ctrl.Dispose()

	ctrl.SetVolume(-1)
	// Muted short-circuit applies before the lookup
	ctrl.PlaySound("missing")
}

func TestPlaySoundUnknownName(t *testing.T) {
	ctrl, _ := newTestController(t, Config{})
	defer ctrl.Dispose()

	ctrl.AddSound("coin", &stubSound{})
	ctrl.PlaySound("missing")

	names := ctrl.ListSounds()
	if len(names) != 1 || names[0] != "coin" {
		t.Errorf("registry changed by unknown play: %v", names)
	}
}

func TestPlaySoundAcquisitionFailureIsSilent(t *testing.T) {
	driver := &countingDriver{}
	driver.failing.Store(true)
	provider := device.NewProvider(driver, audio.Format{})
	ctrl, _ := newTestController(t, Config{Provider: provider})

	coin := &stubSound{}
	ctrl.AddSound("coin", coin)
	ctrl.PlaySound("coin")

	if playing, plays, _, _ := coin.snapshot(); playing || plays != 0 {
		t.Error("sound must stay idle when acquisition fails")
	}
}

func TestStopSound(t *testing.T) {
	ctrl, _ := newTestController(t, Config{})
	defer ctrl.Dispose()

	coin := &stubSound{}
	ctrl.AddSound("coin", coin)
	ctrl.PlaySound("coin")
	ctrl.StopSound("coin")

	playing, _, stops, _ := coin.snapshot()
	if playing || stops != 1 {
		t.Errorf("expected stopped sound, playing=%v stops=%d", playing, stops)
	}

	// Unknown names warn, nothing more
	ctrl.StopSound("missing")
}

func TestStopAllSounds(t *testing.T) {
	ctrl, _ := newTestController(t, Config{})
	defer ctrl.Dispose()

	// Tolerates an empty registry
	ctrl.StopAllSounds()

	a, b := &stubSound{}, &stubSound{}
	ctrl.AddSound("a", a)
	ctrl.AddSound("b", b)
	ctrl.PlaySound("a")

	ctrl.StopAllSounds()

	if _, _, stops, _ := a.snapshot(); stops != 1 {
		t.Error("playing sound not stopped")
	}
	if _, _, stops, _ := b.snapshot(); stops != 1 {
		t.Error("idle sound should still receive Stop")
	}
}

func TestRegistryAccessors(t *testing.T) {
	ctrl, _ := newTestController(t, Config{})
	defer ctrl.Dispose()

	coin := &stubSound{}
	if got := ctrl.AddSound("coin", coin); got != Sound(coin) {
		t.Error("AddSound should return the stored sound")
	}

	// Overwrite keeps unique keys
	replacement := &stubSound{}
	ctrl.AddSound("coin", replacement)
	if got, ok := ctrl.GetSound("coin"); !ok || got != Sound(replacement) {
		t.Error("AddSound should overwrite existing entries")
	}

	if !ctrl.RemoveSound("coin") {
		t.Error("RemoveSound should report true for present names")
	}
	if ctrl.RemoveSound("coin") {
		t.Error("RemoveSound should report false after deletion")
	}
	if len(ctrl.ListSounds()) != 0 {
		t.Errorf("registry should be empty, got %v", ctrl.ListSounds())
	}
}

func TestLifecycleCallbacks(t *testing.T) {
	var created, disposed int32
	var createdOut *mix.Output

	ctrl, _ := newTestController(t, Config{
		OnOutputCreated: func(c *Controller, out *mix.Output) {
			atomic.AddInt32(&created, 1)
			createdOut = out
		},
		OnOutputDisposed: func(c *Controller, out *mix.Output) {
			atomic.AddInt32(&disposed, 1)
		},
	})

	out := ctrl.AcquireOutput()
	ctrl.AcquireOutput()
	if atomic.LoadInt32(&created) != 1 {
		t.Errorf("OnOutputCreated fired %d times, want 1", created)
	}
	if createdOut != out {
		t.Error("callback received a different output")
	}

	ctrl.Dispose()
	ctrl.Dispose()
	if atomic.LoadInt32(&disposed) != 1 {
		t.Errorf("OnOutputDisposed fired %d times, want 1", disposed)
	}
}

func TestDisposeWithoutOutput(t *testing.T) {
	fired := false
	ctrl, _ := newTestController(t, Config{
		OnOutputDisposed: func(*Controller, *mix.Output) { fired = true },
	})

	ctrl.Dispose()
	if fired {
		t.Error("OnOutputDisposed must not fire without a live output")
	}
}

func TestConfigNegativeVolumeStartsMuted(t *testing.T) {
	ctrl, driver := newTestController(t, Config{Volume: -1})
	defer ctrl.Dispose()

	if ctrl.Volume() != -1 {
		t.Errorf("expected stored volume -1, got %f", ctrl.Volume())
	}

	sound := &stubSound{}
	ctrl.AddSound("coin", sound)
	ctrl.PlaySound("coin")

	if driver.openCount() != 0 {
		t.Errorf("muted dispatch should not acquire a device, got %d opens", driver.openCount())
	}
	if _, plays, _, _ := sound.snapshot(); plays != 0 {
		t.Errorf("expected no plays while muted, got %d", plays)
	}

	// The zero value is unset, not muted
	defaulted, _ := newTestController(t, Config{})
	defer defaulted.Dispose()
	if defaulted.Volume() != 1.0 {
		t.Errorf("expected zero-value volume to default to 1.0, got %f", defaulted.Volume())
	}
}

func TestDisposeDuringAcquisitionDiscardsOutput(t *testing.T) {
	driver := &countingDriver{block: make(chan struct{})}
	provider := device.NewProvider(driver, audio.Format{})

	var created, disposed atomic.Int32
	ctrl, err := NewController(Config{
		Provider:         provider,
		OnOutputCreated:  func(*Controller, *mix.Output) { created.Add(1) },
		OnOutputDisposed: func(*Controller, *mix.Output) { disposed.Add(1) },
	})
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}

	results := make(chan *mix.Output, 1)
	go func() {
		results <- ctrl.AcquireOutput()
	}()

	// Wait for the acquisition to reach the blocked driver
	for driver.openCount() == 0 {
		time.Sleep(time.Millisecond)
	}

	ctrl.Dispose()
	close(driver.block)

	if out := <-results; out != nil {
		t.Fatal("acquisition overlapped by dispose should resolve to nil")
	}
	if created.Load() != 0 {
		t.Errorf("discarded output must not fire OnOutputCreated, got %d", created.Load())
	}
	if disposed.Load() != 0 {
		t.Errorf("never-live output must not fire OnOutputDisposed, got %d", disposed.Load())
	}

	// The controller remains usable afterwards
	fresh := ctrl.AcquireOutput()
	if fresh == nil {
		t.Fatal("expected a fresh output after dispose")
	}
	if created.Load() != 1 {
		t.Errorf("expected 1 creation callback for the fresh output, got %d", created.Load())
	}
	ctrl.Dispose()
}

func TestSetAnalysisBeforeAndAfterAcquisition(t *testing.T) {
	ctrl, _ := newTestController(t, Config{})
	defer ctrl.Dispose()

	early := &recordingTap{}
	ctrl.SetAnalysis(early)

	out := ctrl.AcquireOutput()
	if out == nil {
		t.Fatal("expected output")
	}
	// Park the device so its player cannot steal bus samples from the
	// direct reads below.
	if err := out.Context().Suspend(); err != nil {
		t.Fatalf("suspend failed: %v", err)
	}
	feedAndRead(t, out, []int16{100})
	if early.count() == 0 {
		t.Error("tap set before acquisition was not re-attached")
	}

	late := &recordingTap{}
	ctrl.SetAnalysis(late)
	feedAndRead(t, out, []int16{100})
	if late.count() == 0 {
		t.Error("tap set after acquisition was not connected immediately")
	}

	ctrl.SetAnalysis(nil)
	seen := late.count()
	feedAndRead(t, out, []int16{100})
	if late.count() != seen {
		t.Error("nil tap should detach analysis")
	}
}

func TestConcurrentAcquireSingleCreation(t *testing.T) {
	driver := &countingDriver{block: make(chan struct{})}
	provider := device.NewProvider(driver, audio.Format{})

	var created int32
	ctrl, _ := newTestController(t, Config{
		Provider: provider,
		OnOutputCreated: func(*Controller, *mix.Output) {
			atomic.AddInt32(&created, 1)
		},
	})
	defer ctrl.Dispose()

	const callers = 8
	results := make(chan *mix.Output, callers)
	for i := 0; i < callers; i++ {
		go func() {
			results <- ctrl.AcquireOutput()
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(driver.block)

	first := <-results
	if first == nil {
		t.Fatal("expected output, got nil")
	}
	for i := 1; i < callers; i++ {
		if got := <-results; got != first {
			t.Error("concurrent callers resolved to different outputs")
		}
	}
	if driver.openCount() != 1 {
		t.Errorf("expected 1 context fetch, got %d", driver.openCount())
	}
	if atomic.LoadInt32(&created) != 1 {
		t.Errorf("expected 1 output creation, got %d", created)
	}
}

// recordingTap counts tap invocations
type recordingTap struct {
	calls int32
}

func (r *recordingTap) Process(samples []int16, format audio.Format) {
	atomic.AddInt32(&r.calls, 1)
}

func (r *recordingTap) count() int32 {
	return atomic.LoadInt32(&r.calls)
}

// feedAndRead pushes samples through the output's read path once
func feedAndRead(t *testing.T, out *mix.Output, samples []int16) {
	t.Helper()
	out.Input().AddSource(&onceSource{samples: samples})
	buf := make([]byte, len(samples)*2)
	if _, err := out.Read(buf); err != nil {
		t.Fatalf("read failed: %v", err)
	}
}

type onceSource struct {
	samples []int16
	pos     int
}

func (s *onceSource) ReadSamples(dst []int16) (int, bool) {
	n := copy(dst, s.samples[s.pos:])
	s.pos += n
	return n, s.pos < len(s.samples)
}

func ExampleController() {
	provider := device.NewProvider(&device.NullDriver{}, audio.DefaultFormat)
	ctrl, err := NewController(Config{Provider: provider, Volume: 0.8})
	if err != nil {
		panic(err)
	}
	defer ctrl.Dispose()

	ctrl.AddSound("coin", &stubSound{})
	ctrl.PlaySound("coin")
	fmt.Println(ctrl.ListSounds())
	// Output: [coin]
}
