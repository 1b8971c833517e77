//go:build !((linux && cgo) || windows || darwin)

package playback

import (
	"github.com/freespirits/gaia/internal/wav"
)

// NewBeep is unavailable without cgo on this platform.
func NewBeep(wav.Format) (Engine, error) {
	return nil, ErrNoDevice
}

// NewOto is unavailable without cgo on this platform.
func NewOto(wav.Format) (Engine, error) {
	return nil, ErrNoDevice
}
