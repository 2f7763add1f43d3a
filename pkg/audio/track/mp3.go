// ABOUTME: MP3 file decoder
// ABOUTME: Streams MP3 audio as int16 samples via go-mp3
package track

import (
	"fmt"
	"io"
	"os"

	"github.com/Chime-Audio/chime-go/pkg/audio"
	mp3 "github.com/hajimehoshi/go-mp3"
)

type mp3Decoder struct {
	file    *os.File
	decoder *mp3.Decoder
	buf     []byte
}

func openMP3(path string) (decoder, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mp3: %w", err)
	}
	dec, err := mp3.NewDecoder(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}
	return &mp3Decoder{
		file:    file,
		decoder: dec,
		buf:     make([]byte, 8192),
	}, nil
}

// Format returns the native format; go-mp3 always emits 16-bit stereo
func (d *mp3Decoder) Format() audio.Format {
	return audio.Format{
		SampleRate: d.decoder.SampleRate(),
		Channels:   2,
		BitDepth:   16,
	}
}

func (d *mp3Decoder) ReadSamples() ([]int16, error) {
	n, err := d.decoder.Read(d.buf)
	if n > 0 {
		return audio.BytesToSamples(d.buf[:n]), nil
	}
	if err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (d *mp3Decoder) Close() error {
	return d.file.Close()
}
