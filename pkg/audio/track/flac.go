// ABOUTME: FLAC file decoder
// ABOUTME: Streams FLAC frames as int16 samples via mewkiz/flac
package track

import (
	"fmt"

	"github.com/Chime-Audio/chime-go/pkg/audio"
	"github.com/mewkiz/flac"
)

type flacDecoder struct {
	stream *flac.Stream
	format audio.Format
}

func openFLAC(path string) (decoder, error) {
	stream, err := flac.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open flac: %w", err)
	}
	info := stream.Info
	return &flacDecoder{
		stream: stream,
		format: audio.Format{
			SampleRate: int(info.SampleRate),
			Channels:   int(info.NChannels),
			BitDepth:   int(info.BitsPerSample),
		},
	}, nil
}

func (d *flacDecoder) Format() audio.Format {
	return d.format
}

func (d *flacDecoder) ReadSamples() ([]int16, error) {
	frame, err := d.stream.ParseNext()
	if err != nil {
		return nil, err
	}

	channels := len(frame.Subframes)
	if channels == 0 {
		return nil, nil
	}
	frames := len(frame.Subframes[0].Samples)

	// Scale to 16-bit range: FLAC samples are right-justified at the
	// stream's bit depth.
	shift := uint(0)
	if d.format.BitDepth > 16 {
		shift = uint(d.format.BitDepth - 16)
	}
	boost := uint(0)
	if d.format.BitDepth < 16 {
		boost = uint(16 - d.format.BitDepth)
	}

	samples := make([]int16, 0, frames*channels)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			s := frame.Subframes[ch].Samples[i]
			if shift > 0 {
				s >>= shift
			} else if boost > 0 {
				s <<= boost
			}
			samples = append(samples, audio.ClampSample(s))
		}
	}
	return samples, nil
}

func (d *flacDecoder) Close() error {
	return d.stream.Close()
}
