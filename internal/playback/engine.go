// Package playback drives the audio device for a single playable container
// at a time and reports what the device is doing as events.
package playback

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/freespirits/gaia/internal/resource"
	"github.com/freespirits/gaia/internal/wav"
)

var (
	// ErrNoDevice is returned by device backends in builds without audio
	// output support.
	ErrNoDevice = errors.New("audio output not available in this build")

	// ErrNothingLoaded is returned by transport calls before Load.
	ErrNothingLoaded = errors.New("no audio loaded")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("playback engine closed")

	// ErrFormatMismatch is returned when a container does not match the
	// format the device was opened with.
	ErrFormatMismatch = errors.New("audio format does not match output device")
)

// Engine plays one loaded container at a time. Implementations report
// progress on the Events channel; all events carry the handle they refer to
// so that consumers can drop events about audio that was since replaced.
type Engine interface {
	// Load replaces the current audio. MetadataLoaded follows once the
	// duration is known. The engine starts paused at position zero.
	Load(h resource.Handle, container []byte) error
	Play() error
	Pause() error
	Seek(t time.Duration) error
	// Unload stops playback and forgets the current audio.
	Unload() error
	Events() <-chan Event
	Close() error
}

// Backend selects an Engine implementation.
type Backend string

const (
	BackendAuto   Backend = "auto"
	BackendBeep   Backend = "beep"
	BackendOto    Backend = "oto"
	BackendSilent Backend = "silent"
)

// ParseBackend validates a backend name.
func ParseBackend(s string) (Backend, error) {
	b := Backend(strings.ToLower(strings.TrimSpace(s)))
	switch b {
	case "":
		return BackendAuto, nil
	case BackendAuto, BackendBeep, BackendOto, BackendSilent:
		return b, nil
	}
	return "", fmt.Errorf("unknown audio backend %q: use auto, beep, oto or silent", s)
}

// New opens an engine for the backend. Auto prefers the beep speaker and
// falls back to the silent engine when no device is available.
func New(b Backend, f wav.Format) (Engine, error) {
	switch b {
	case BackendBeep:
		e, err := NewBeep(f)
		if err != nil {
			return nil, err
		}
		return e, nil
	case BackendOto:
		e, err := NewOto(f)
		if err != nil {
			return nil, err
		}
		return e, nil
	case BackendSilent:
		return NewSilent(f), nil
	case BackendAuto, "":
		e, err := NewBeep(f)
		if err == nil {
			return e, nil
		}
		log.Warn("Audio device unavailable, playback will be silent", "error", err)
		return NewSilent(f), nil
	}
	return nil, fmt.Errorf("unknown audio backend %q", b)
}

// WaitForEvent returns a command that delivers the engine's next event as a
// message. Re-issue it after every event to keep listening.
func WaitForEvent(e Engine) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-e.Events()
		if !ok {
			return nil
		}
		return ev
	}
}
