// ABOUTME: File-backed music Sound
// ABOUTME: Streams decoded audio into an output bus, with optional looping
package track

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/Chime-Audio/chime-go/pkg/audio"
	"github.com/Chime-Audio/chime-go/pkg/audio/mix"
	"github.com/Chime-Audio/chime-go/pkg/audio/resample"
)

// Config holds track configuration
type Config struct {
	// Path to the audio file (.mp3, .flac, or .wav) (required)
	Path string

	// Loop restarts the track when it ends
	Loop bool

	// Gain is the per-track gain in [0,1] (default: 1.0)
	Gain float64
}

// Track is a file-backed music Sound. Decoding is streamed on the
// device pull path; the file is opened per Play so a stopped track
// restarts from the beginning.
type Track struct {
	path string
	loop bool
	gain float64

	mu      sync.Mutex
	current *stream
}

// New creates a track. The file's format is validated by extension
// here; decode errors surface from Play.
func New(config Config) (*Track, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if !Supported(config.Path) {
		return nil, fmt.Errorf("unsupported audio file: %s", config.Path)
	}
	if config.Gain == 0 {
		config.Gain = 1.0
	}
	return &Track{
		path: config.Path,
		loop: config.Loop,
		gain: config.Gain,
	}, nil
}

// Play opens the file and connects its stream to the output. Starting
// while already playing is a no-op.
//
// The bus connection happens after t.mu is released: the device pull
// holds the bus lock while a finishing stream takes t.mu, so
// connecting under t.mu would invert that order.
func (t *Track) Play(out *mix.Output) error {
	t.mu.Lock()
	if t.current != nil {
		t.mu.Unlock()
		return nil
	}

	dec, err := openDecoder(t.path)
	if err != nil {
		t.mu.Unlock()
		return err
	}

	outFormat := out.Context().Format()
	s := &stream{
		track:     t,
		path:      t.path,
		dec:       dec,
		loop:      t.loop,
		gain:      t.gain,
		outFormat: outFormat,
		resampler: resample.New(dec.Format().SampleRate, outFormat.SampleRate, outFormat.Channels),
	}
	t.current = s
	t.mu.Unlock()

	// A Stop racing this connect has already halted s; the first pull
	// then drops it before it sounds.
	out.Input().AddSource(s)
	return nil
}

// Stop halts playback synchronously; safe when idle
func (t *Track) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current != nil {
		t.current.halt()
		t.current = nil
	}
}

// Playing reports whether the track is currently streaming
func (t *Track) Playing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current != nil
}

func (t *Track) finished(s *stream) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == s {
		t.current = nil
	}
}

// stream feeds decoded samples to the bus on the device goroutine
type stream struct {
	track     *Track
	path      string
	dec       decoder
	loop      bool
	gain      float64
	outFormat audio.Format
	resampler *resample.Resampler

	mu       sync.Mutex
	halted   bool
	done     bool
	buffered []int16
}

// halt stops the stream and closes its decoder immediately; waiting
// for the next bus pull would leak the file handle if the output is
// closed first.
func (s *stream) halt() {
	s.mu.Lock()
	s.halted = true
	s.release()
	s.mu.Unlock()
}

func (s *stream) ReadSamples(dst []int16) (int, bool) {
	s.mu.Lock()

	if s.halted || s.done {
		s.release()
		s.mu.Unlock()
		return 0, false
	}

	written := 0
	for written < len(dst) {
		if len(s.buffered) == 0 {
			if !s.refill() {
				break
			}
		}
		n := copy(dst[written:], s.buffered)
		s.buffered = s.buffered[n:]
		written += n
	}

	done := s.done
	if done {
		s.release()
	}
	s.mu.Unlock()

	if done {
		s.track.finished(s)
		return written, false
	}
	return written, true
}

// refill decodes the next chunk into the buffer; false means the
// stream ended (or failed) and no data was produced.
func (s *stream) refill() bool {
	for {
		chunk, err := s.dec.ReadSamples()
		if err == io.EOF {
			if !s.loop {
				s.done = true
				return false
			}
			if !s.reopen() {
				s.done = true
				return false
			}
			continue
		}
		if err != nil {
			log.Printf("track %s: decode failed: %v", s.path, err)
			s.done = true
			return false
		}
		if len(chunk) == 0 {
			continue
		}

		chunk = convertChannels(chunk, s.dec.Format().Channels, s.outFormat.Channels)
		chunk = s.resampler.Resample(chunk)
		if s.gain != 1.0 {
			for i, v := range chunk {
				chunk[i] = audio.ClampSample(int32(float64(v) * s.gain))
			}
		}
		if len(chunk) == 0 {
			continue
		}
		s.buffered = chunk
		return true
	}
}

// reopen restarts the file for looped playback
func (s *stream) reopen() bool {
	s.dec.Close()
	dec, err := openDecoder(s.path)
	if err != nil {
		log.Printf("track %s: loop reopen failed: %v", s.path, err)
		s.dec = nil
		return false
	}
	s.dec = dec
	s.resampler.Reset()
	return true
}

// release closes the decoder once the stream leaves the bus
func (s *stream) release() {
	if s.dec != nil {
		s.dec.Close()
		s.dec = nil
	}
}

// convertChannels adapts interleaved samples between channel layouts
func convertChannels(samples []int16, from, to int) []int16 {
	if from == to || from == 0 {
		return samples
	}

	frames := len(samples) / from
	out := make([]int16, frames*to)
	for f := 0; f < frames; f++ {
		frame := samples[f*from : (f+1)*from]
		if to == 1 {
			// Downmix to mono by averaging
			var sum int32
			for _, v := range frame {
				sum += int32(v)
			}
			out[f] = int16(sum / int32(from))
			continue
		}
		for ch := 0; ch < to; ch++ {
			out[f*to+ch] = frame[ch%from]
		}
	}
	return out
}
