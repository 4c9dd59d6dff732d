package decoders

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/drgolem/ashowinfo/pkg/decoders/flac"
	"github.com/drgolem/ashowinfo/pkg/decoders/mp3"
	"github.com/drgolem/ashowinfo/pkg/decoders/wav"
	"github.com/drgolem/ashowinfo/pkg/types"
)

// SupportedExtensions lists the file extensions NewDecoder accepts.
var SupportedExtensions = []string{".flac", ".fla", ".mp3", ".wav"}

// NewDecoder creates and opens the appropriate decoder based on file extension.
// Supports .flac, .fla, .mp3, and .wav formats.
// Returns an opened decoder ready for use, or an error if the format is unsupported
// or the file cannot be opened.
func NewDecoder(fileName string) (types.AudioDecoder, error) {
	ext := strings.ToLower(filepath.Ext(fileName))

	var decoder types.AudioDecoder

	switch ext {
	case ".flac", ".fla":
		decoder = flac.NewDecoder()
	case ".mp3":
		decoder = mp3.NewDecoder()
	case ".wav":
		decoder = wav.NewDecoder()
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: %s)", ext, strings.Join(SupportedExtensions, ", "))
	}

	if err := decoder.Open(fileName); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", fileName, err)
	}

	return decoder, nil
}
