package playback

import (
	"errors"
	"testing"
	"time"

	"github.com/freespirits/gaia/internal/resource"
	"github.com/freespirits/gaia/internal/wav"
)

// container returns a WAV container holding d of silence.
func container(t *testing.T, f wav.Format, d time.Duration) []byte {
	t.Helper()
	n := int(f.Offset(d))
	return wav.Synthesize(make([]byte, n), f)
}

func nextEvent(t *testing.T, e Engine) Event {
	t.Helper()
	select {
	case ev := <-e.Events():
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for an event")
		return nil
	}
}

func TestSilentMetadataAndEnd(t *testing.T) {
	f := wav.DefaultFormat()
	s := NewSilent(f)
	s.SetTickInterval(5 * time.Millisecond)
	defer s.Close() //nolint:errcheck

	h := resource.Handle("gaia-blob:test")
	if err := s.Load(h, container(t, f, 60*time.Millisecond)); err != nil {
		t.Fatalf("Load: %v", err)
	}

	ev := nextEvent(t, s)
	meta, ok := ev.(MetadataLoaded)
	if !ok {
		t.Fatalf("first event = %T, want MetadataLoaded", ev)
	}
	if meta.Duration != 60*time.Millisecond || meta.Handle != h {
		t.Errorf("metadata = %+v", meta)
	}

	if err := s.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}

	var last time.Duration
	for {
		ev := nextEvent(t, s)
		if ev.Resource() != h {
			t.Fatalf("event for unexpected handle %q", ev.Resource())
		}
		if tu, ok := ev.(TimeUpdate); ok {
			if tu.At < last {
				t.Errorf("position went backwards: %v after %v", tu.At, last)
			}
			last = tu.At
			continue
		}
		if _, ok := ev.(Ended); ok {
			break
		}
	}

	if last != 60*time.Millisecond {
		t.Errorf("last position = %v, want the duration", last)
	}
	if pos := s.Position(); pos != 0 {
		t.Errorf("position after end = %v, want 0", pos)
	}
}

func TestSilentPauseAndSeek(t *testing.T) {
	f := wav.DefaultFormat()
	s := NewSilent(f)
	defer s.Close() //nolint:errcheck

	if err := s.Load("gaia-blob:a", container(t, f, time.Second)); err != nil {
		t.Fatal(err)
	}
	if err := s.Seek(400 * time.Millisecond); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if got := s.Position(); got != 400*time.Millisecond {
		t.Errorf("Position = %v, want 400ms", got)
	}

	_ = s.Play()
	time.Sleep(20 * time.Millisecond)
	_ = s.Pause()
	paused := s.Position()
	if paused <= 400*time.Millisecond {
		t.Errorf("position did not advance while playing: %v", paused)
	}
	time.Sleep(20 * time.Millisecond)
	if s.Position() != paused {
		t.Error("position advanced while paused")
	}
}

func TestSilentTransportWithoutAudio(t *testing.T) {
	s := NewSilent(wav.DefaultFormat())
	if err := s.Play(); !errors.Is(err, ErrNothingLoaded) {
		t.Errorf("Play: err = %v, want ErrNothingLoaded", err)
	}

	_ = s.Close()
	if err := s.Load("gaia-blob:x", wav.Synthesize(nil, wav.DefaultFormat())); !errors.Is(err, ErrClosed) {
		t.Errorf("Load after Close: err = %v, want ErrClosed", err)
	}
}

func TestSilentRejectsGarbage(t *testing.T) {
	s := NewSilent(wav.DefaultFormat())
	if err := s.Load("gaia-blob:x", []byte("nope")); err == nil {
		t.Error("expected an error")
	}
}

func TestParseBackend(t *testing.T) {
	for in, want := range map[string]Backend{
		"":       BackendAuto,
		"auto":   BackendAuto,
		" Beep ": BackendBeep,
		"oto":    BackendOto,
		"silent": BackendSilent,
	} {
		got, err := ParseBackend(in)
		if err != nil || got != want {
			t.Errorf("ParseBackend(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseBackend("alsa"); err == nil {
		t.Error("expected an error")
	}
}

func TestClock(t *testing.T) {
	now := time.Unix(0, 0)
	c := clock{now: func() time.Time { return now }}

	c.start()
	now = now.Add(time.Second)
	if c.position() != time.Second {
		t.Errorf("position = %v", c.position())
	}
	c.stop()
	now = now.Add(time.Second)
	if c.position() != time.Second {
		t.Errorf("position while stopped = %v", c.position())
	}
	c.set(5 * time.Second)
	c.start()
	now = now.Add(500 * time.Millisecond)
	if c.position() != 5500*time.Millisecond {
		t.Errorf("position after set = %v", c.position())
	}
}

func TestWaitForEvent(t *testing.T) {
	s := NewSilent(wav.DefaultFormat())
	defer s.Close() //nolint:errcheck
	if err := s.Load("gaia-blob:w", container(t, wav.DefaultFormat(), 10*time.Millisecond)); err != nil {
		t.Fatal(err)
	}
	msg := WaitForEvent(s)()
	if _, ok := msg.(MetadataLoaded); !ok {
		t.Errorf("msg = %T, want MetadataLoaded", msg)
	}
}
