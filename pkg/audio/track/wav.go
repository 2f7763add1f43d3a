// ABOUTME: WAV file decoder
// ABOUTME: Streams RIFF PCM data as int16 samples
package track

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/Chime-Audio/chime-go/pkg/audio"
)

type wavDecoder struct {
	file      *os.File
	format    audio.Format
	remaining int64
	buf       []byte
}

func openWAV(path string) (decoder, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wav: %w", err)
	}

	d := &wavDecoder{file: file, buf: make([]byte, 8192)}
	if err := d.readHeader(); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to parse wav header: %w", err)
	}
	return d, nil
}

// readHeader walks the RIFF chunks until the data chunk
func (d *wavDecoder) readHeader() error {
	var riff [12]byte
	if _, err := io.ReadFull(d.file, riff[:]); err != nil {
		return err
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return fmt.Errorf("not a RIFF/WAVE file")
	}

	var haveFmt bool
	for {
		var header [8]byte
		if _, err := io.ReadFull(d.file, header[:]); err != nil {
			return err
		}
		id := string(header[0:4])
		size := int64(binary.LittleEndian.Uint32(header[4:8]))

		switch id {
		case "fmt ":
			var fmtChunk [16]byte
			if _, err := io.ReadFull(d.file, fmtChunk[:]); err != nil {
				return err
			}
			audioFormat := binary.LittleEndian.Uint16(fmtChunk[0:2])
			if audioFormat != 1 {
				return fmt.Errorf("unsupported wav encoding %d (PCM only)", audioFormat)
			}
			d.format = audio.Format{
				Channels:   int(binary.LittleEndian.Uint16(fmtChunk[2:4])),
				SampleRate: int(binary.LittleEndian.Uint32(fmtChunk[4:8])),
				BitDepth:   int(binary.LittleEndian.Uint16(fmtChunk[14:16])),
			}
			if d.format.BitDepth != 16 && d.format.BitDepth != 24 {
				return fmt.Errorf("unsupported wav bit depth %d", d.format.BitDepth)
			}
			// Skip any fmt extension bytes
			if size > 16 {
				if _, err := d.file.Seek(size-16, io.SeekCurrent); err != nil {
					return err
				}
			}
			haveFmt = true
		case "data":
			if !haveFmt {
				return fmt.Errorf("data chunk before fmt chunk")
			}
			d.remaining = size
			return nil
		default:
			if _, err := d.file.Seek(size, io.SeekCurrent); err != nil {
				return err
			}
		}
	}
}

func (d *wavDecoder) Format() audio.Format {
	return d.format
}

func (d *wavDecoder) ReadSamples() ([]int16, error) {
	if d.remaining <= 0 {
		return nil, io.EOF
	}

	want := int64(len(d.buf))
	if want > d.remaining {
		want = d.remaining
	}
	// Keep whole frames
	bytesPerSample := int64(d.format.BitDepth / 8)
	want -= want % (bytesPerSample * int64(d.format.Channels))
	if want == 0 {
		return nil, io.EOF
	}

	n, err := io.ReadFull(d.file, d.buf[:want])
	if err != nil {
		return nil, err
	}
	d.remaining -= int64(n)

	if d.format.BitDepth == 24 {
		samples := make([]int16, n/3)
		for i := range samples {
			samples[i] = audio.SampleFrom24Bit([3]byte{d.buf[i*3], d.buf[i*3+1], d.buf[i*3+2]})
		}
		return samples, nil
	}
	return audio.BytesToSamples(d.buf[:n]), nil
}

func (d *wavDecoder) Close() error {
	return d.file.Close()
}
