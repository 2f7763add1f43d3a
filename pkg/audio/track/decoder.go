// ABOUTME: Decoder interface and format sniffing
// ABOUTME: Common contract for MP3, FLAC, and WAV file decoders
package track

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Chime-Audio/chime-go/pkg/audio"
)

// decoder streams a file's PCM content at its native format
type decoder interface {
	// Format returns the file's native PCM format
	Format() audio.Format

	// ReadSamples returns the next chunk of interleaved int16 samples,
	// io.EOF once the file is exhausted.
	ReadSamples() ([]int16, error)

	// Close releases the underlying file
	Close() error
}

// openDecoder sniffs the format by extension and opens the file
func openDecoder(path string) (decoder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return openMP3(path)
	case ".flac":
		return openFLAC(path)
	case ".wav":
		return openWAV(path)
	default:
		return nil, fmt.Errorf("unsupported audio file: %s", path)
	}
}

// Supported reports whether the path's extension names a decodable format
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".flac", ".wav":
		return true
	}
	return false
}
