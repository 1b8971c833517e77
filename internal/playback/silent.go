package playback

import (
	"fmt"
	"sync"
	"time"

	"github.com/freespirits/gaia/internal/resource"
	"github.com/freespirits/gaia/internal/wav"
)

// DefaultTickInterval is how often engines report the playback position.
const DefaultTickInterval = 250 * time.Millisecond

// Silent is an Engine without an output device. It keeps time as if the
// audio were playing, which keeps the interface usable on machines without
// sound and makes the engine contract testable.
type Silent struct {
	emitter

	mu       sync.Mutex
	format   wav.Format
	interval time.Duration
	clock    clock
	handle   resource.Handle
	duration time.Duration
	playing  bool
	closed   bool
	done     chan struct{}
}

// NewSilent returns a silent engine.
func NewSilent(f wav.Format) *Silent {
	return &Silent{
		emitter:  newEmitter(),
		format:   f,
		interval: DefaultTickInterval,
		clock:    newClock(),
	}
}

// SetTickInterval changes how often TimeUpdate is emitted.
func (s *Silent) SetTickInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = d
}

// Load implements Engine.
func (s *Silent) Load(h resource.Handle, container []byte) error {
	f, pcm, err := wav.Parse(container)
	if err != nil {
		return fmt.Errorf("unable to load audio: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.unloadLocked()

	s.handle = h
	s.duration = f.Duration(len(pcm))
	s.clock = newClock()
	s.done = make(chan struct{})
	go s.run(h, s.done, s.interval)

	go s.emit(MetadataLoaded{Handle: h, Duration: s.duration})
	return nil
}

// Play implements Engine.
func (s *Silent) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLocked(); err != nil {
		return err
	}
	if s.clock.position() >= s.duration {
		s.clock.set(0)
	}
	s.clock.start()
	s.playing = true
	return nil
}

// Pause implements Engine.
func (s *Silent) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLocked(); err != nil {
		return err
	}
	s.clock.stop()
	s.playing = false
	return nil
}

// Seek implements Engine.
func (s *Silent) Seek(t time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLocked(); err != nil {
		return err
	}
	s.clock.set(t)
	return nil
}

// Position returns the current playback position.
func (s *Silent) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return min(s.clock.position(), s.duration)
}

// Unload implements Engine.
func (s *Silent) Unload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unloadLocked()
	return nil
}

// Close implements Engine.
func (s *Silent) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unloadLocked()
	s.closed = true
	return nil
}

func (s *Silent) checkLocked() error {
	if s.closed {
		return ErrClosed
	}
	if s.handle.IsZero() {
		return ErrNothingLoaded
	}
	return nil
}

func (s *Silent) unloadLocked() {
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
	s.handle = ""
	s.duration = 0
	s.playing = false
	s.clock = newClock()
}

func (s *Silent) run(h resource.Handle, done <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		if !s.playing {
			s.mu.Unlock()
			continue
		}
		pos := s.clock.position()
		ended := pos >= s.duration
		if ended {
			s.clock.stop()
			s.clock.set(0)
			s.playing = false
			pos = s.duration
		}
		s.mu.Unlock()

		s.emit(TimeUpdate{Handle: h, At: pos})
		if ended {
			s.emit(Ended{Handle: h})
		}
	}
}
