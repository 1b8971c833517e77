package session

import (
	"fmt"
	"time"

	"github.com/freespirits/gaia/internal/resource"
)

// Status is the lifecycle stage of a poem's audio summary.
type Status int

const (
	// StatusAbsent means no audio exists and none is being generated.
	StatusAbsent Status = iota
	// StatusGenerating means a generation request is outstanding.
	StatusGenerating
	// StatusReady means audio is loaded and the transport is usable.
	StatusReady
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusAbsent:
		return "absent"
	case StatusGenerating:
		return "generating"
	case StatusReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Transport is the play/pause sub-state of a ready session.
type Transport int

const (
	Paused Transport = iota
	Playing
)

// String returns the string representation of the transport.
func (t Transport) String() string {
	if t == Playing {
		return "playing"
	}
	return "paused"
}

// State is a snapshot of a session.
type State struct {
	PoemID      int
	Status      Status
	Transport   Transport     // Meaningful only when Ready
	CurrentTime time.Duration // Last reported or commanded position
	Duration    time.Duration // Zero until the engine reports it
	Resource    resource.Handle
}

// Ready reports whether audio is loaded.
func (s State) Ready() bool { return s.Status == StatusReady }

// Playing reports whether playback was commanded to run.
func (s State) Playing() bool {
	return s.Status == StatusReady && s.Transport == Playing
}

// Progress returns the position as a fraction of the duration.
func (s State) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return min(1, max(0, float64(s.CurrentTime)/float64(s.Duration)))
}

// Clamp limits t to the seekable range [0, Duration].
func (s State) Clamp(t time.Duration) time.Duration {
	return min(max(t, 0), s.Duration)
}

func (s State) String() string {
	if s.Status != StatusReady {
		return fmt.Sprintf("poem %d: %s", s.PoemID, s.Status)
	}
	return fmt.Sprintf("poem %d: %s %s %s/%s", s.PoemID, s.Status, s.Transport, s.CurrentTime, s.Duration)
}

// Clock formats d as m:ss, truncating to whole seconds.
func Clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}
