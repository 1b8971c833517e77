// Package export names and writes downloadable artifacts.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Prefix starts every artifact name.
const Prefix = "nietzsche-gaia-ciencia"

// ErrEmpty is returned when there is nothing to write.
var ErrEmpty = errors.New("nothing to export")

// AudioName is the file name of a poem's audio summary.
func AudioName(poemID int) string {
	return fmt.Sprintf("%s-%d-audio-summary.wav", Prefix, poemID)
}

// ArtName is the file name of a poem's generated art in style.
func ArtName(poemID int, style, mime string) string {
	return fmt.Sprintf("%s-%d-art-%s%s", Prefix, poemID, style, Extension(mime))
}

// InfographicName is the file name of a poem's infographic.
func InfographicName(poemID int, mime string) string {
	return fmt.Sprintf("%s-%d-infographic%s", Prefix, poemID, Extension(mime))
}

// Extension returns the file extension for an image or audio MIME type.
// Unknown types are written as PNG, which is what the image models return.
func Extension(mime string) string {
	mime, _, _ = strings.Cut(mime, ";")
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	default:
		return ".png"
	}
}

// Write stores data as dir/name and returns the path written. The file is
// written to a temporary name first and renamed into place.
func Write(dir, name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("unable to create export directory: %w", err)
	}

	path := filepath.Join(dir, name)
	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("unable to create export file: %w", err)
	}

	_, err = tmp.Write(data)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmp.Name(), 0o644)
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("unable to write %s: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("unable to write %s: %w", name, err)
	}
	return path, nil
}
