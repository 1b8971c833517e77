package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/freespirits/gaia/internal/playback"
	"github.com/freespirits/gaia/internal/poems"
	"github.com/freespirits/gaia/internal/resource"
	"github.com/freespirits/gaia/internal/wav"
)

// fakeSource returns a fixed payload and counts calls.
type fakeSource struct {
	payload []byte
	ok      bool
	calls   int
}

func (s *fakeSource) RequestAudioSummary(_ context.Context, _ poems.Poem, _ poems.Language) ([]byte, bool) {
	s.calls++
	return s.payload, s.ok
}

// fakeEngine records transport commands.
type fakeEngine struct {
	loaded   resource.Handle
	data     []byte
	loadErr  error
	playing  bool
	position time.Duration
	unloads  int
	events   chan playback.Event
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{events: make(chan playback.Event, 8)}
}

func (e *fakeEngine) Load(h resource.Handle, container []byte) error {
	if e.loadErr != nil {
		return e.loadErr
	}
	e.loaded, e.data = h, container
	return nil
}

func (e *fakeEngine) Play() error {
	e.playing = true
	return nil
}

func (e *fakeEngine) Pause() error {
	e.playing = false
	return nil
}

func (e *fakeEngine) Seek(t time.Duration) error {
	e.position = t
	return nil
}

func (e *fakeEngine) Unload() error {
	e.loaded, e.data = "", nil
	e.unloads++
	return nil
}

func (e *fakeEngine) Events() <-chan playback.Event { return e.events }
func (e *fakeEngine) Close() error                  { return nil }

var (
	poemA = poems.Poem{ID: 1, Category: poems.Wisdom}
	poemB = poems.Poem{ID: 2, Category: poems.LifeFate}
)

func newTestController(src *fakeSource) (*Controller, *fakeEngine, *resource.Registry) {
	eng := newFakeEngine()
	reg := resource.NewRegistry()
	c := New(poemA, poems.English, src, eng, reg, WithTimeout(time.Second))
	return c, eng, reg
}

// run executes a command synchronously and feeds its message back.
func run(c *Controller, cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if next := c.Update(msg); next != nil {
		return next()
	}
	return msg
}

// ready drives c to Ready with a one second duration.
func ready(t *testing.T, c *Controller) {
	t.Helper()
	msg := run(c, c.Request())
	if _, ok := msg.(ReadyMsg); !ok {
		t.Fatalf("expected ReadyMsg, got %T", msg)
	}
	h := c.State().Resource
	c.Update(playback.MetadataLoaded{Handle: h, Duration: time.Second})
}

func TestRequestSuccess(t *testing.T) {
	src := &fakeSource{payload: []byte{1, 2, 3, 4, 5, 6, 7, 8}, ok: true}
	c, eng, reg := newTestController(src)

	cmd := c.Request()
	if c.State().Status != StatusGenerating {
		t.Fatalf("status = %s, want generating", c.State().Status)
	}

	msg := run(c, cmd)
	rm, ok := msg.(ReadyMsg)
	if !ok {
		t.Fatalf("msg = %T, want ReadyMsg", msg)
	}

	st := c.State()
	if st.Status != StatusReady || st.Transport != Paused || st.CurrentTime != 0 || st.Duration != 0 {
		t.Errorf("state = %s", st)
	}
	if rm.Handle != st.Resource || eng.loaded != st.Resource {
		t.Errorf("handle mismatch: msg %q state %q engine %q", rm.Handle, st.Resource, eng.loaded)
	}
	if len(eng.data) != wav.HeaderSize+8 {
		t.Errorf("engine got %d bytes, want %d", len(eng.data), wav.HeaderSize+8)
	}
	if reg.Len() != 1 {
		t.Errorf("registry holds %d handles, want 1", reg.Len())
	}
}

func TestRequestIsIdempotent(t *testing.T) {
	src := &fakeSource{payload: make([]byte, 4), ok: true}
	c, _, _ := newTestController(src)

	cmd := c.Request()
	if again := c.Request(); again != nil {
		t.Error("second request while generating returned a command")
	}
	run(c, cmd)

	if src.calls != 1 {
		t.Errorf("source called %d times, want 1", src.calls)
	}

	// Ready: reveal, no regeneration.
	msg := c.Request()()
	if rv, ok := msg.(RevealMsg); !ok || rv.PoemID != poemA.ID {
		t.Errorf("msg = %#v, want RevealMsg for poem %d", msg, poemA.ID)
	}
	if src.calls != 1 {
		t.Errorf("source called %d times after reveal, want 1", src.calls)
	}
}

func TestRequestFailure(t *testing.T) {
	src := &fakeSource{ok: false}
	c, eng, reg := newTestController(src)

	msg := run(c, c.Request())
	fm, ok := msg.(FailedMsg)
	if !ok {
		t.Fatalf("msg = %T, want FailedMsg", msg)
	}
	if !errors.Is(fm.Err, ErrGenerationFailed) {
		t.Errorf("err = %v", fm.Err)
	}
	if c.State().Status != StatusAbsent || !c.State().Resource.IsZero() {
		t.Errorf("state = %s", c.State())
	}
	if reg.Len() != 0 || !eng.loaded.IsZero() {
		t.Error("failed generation left a resource behind")
	}

	// Retry works.
	src.ok = true
	if _, ok := run(c, c.Request()).(ReadyMsg); !ok {
		t.Error("retry did not become ready")
	}
	if src.calls != 2 {
		t.Errorf("calls = %d, want 2", src.calls)
	}
}

func TestLoadFailure(t *testing.T) {
	src := &fakeSource{ok: true}
	c, eng, reg := newTestController(src)
	eng.loadErr = errors.New("decoder exploded")

	if _, ok := run(c, c.Request()).(FailedMsg); !ok {
		t.Fatal("expected FailedMsg")
	}
	if c.State().Status != StatusAbsent {
		t.Errorf("status = %s", c.State().Status)
	}
	if reg.Len() != 0 {
		t.Errorf("registry holds %d handles after load failure", reg.Len())
	}
}

func TestStaleResultIsDiscarded(t *testing.T) {
	src := &fakeSource{payload: make([]byte, 16), ok: true}
	c, eng, reg := newTestController(src)

	cmdA := c.Request()
	c.PoemChanged(poemB)

	// A's result arrives after the switch.
	if next := c.Update(cmdA()); next != nil {
		t.Errorf("stale result produced a command")
	}

	st := c.State()
	if st.PoemID != poemB.ID || st.Status != StatusAbsent {
		t.Errorf("state = %s, want poem 2 absent", st)
	}
	if reg.Len() != 0 || !eng.loaded.IsZero() {
		t.Error("stale result installed a resource")
	}

	// B generating, then a stale A result with B's token still loses.
	cmdB := c.Request()
	c.Update(GeneratedMsg{PoemID: poemA.ID, Token: c.token, Payload: []byte{1}, OK: true})
	if c.State().Status != StatusGenerating {
		t.Errorf("status = %s, want generating", c.State().Status)
	}
	if _, ok := run(c, cmdB).(ReadyMsg); !ok {
		t.Error("B's own result was not applied")
	}
}

func TestRequestAgainAfterSwitchIgnoresOldToken(t *testing.T) {
	src := &fakeSource{payload: make([]byte, 16), ok: true}
	c, _, _ := newTestController(src)

	old := c.Request()
	c.PoemChanged(poemA) // same poem, re-selected
	fresh := c.Request()

	c.Update(old())
	if c.State().Status != StatusGenerating {
		t.Errorf("old token applied: %s", c.State())
	}
	if _, ok := run(c, fresh).(ReadyMsg); !ok {
		t.Error("fresh request not applied")
	}
}

func TestResultFromClosedControllerIsDiscarded(t *testing.T) {
	src := &fakeSource{payload: make([]byte, 16), ok: true}
	closed, eng, reg := newTestController(src)

	stale := closed.Request()
	closed.Close()

	// The poem is reopened with a fresh controller on the same engine.
	c := New(poemA, poems.English, src, eng, reg, WithTimeout(time.Second))
	fresh := c.Request()

	if next := c.Update(stale()); next != nil {
		t.Error("result of the closed controller produced a command")
	}
	if st := c.State(); st.Status != StatusGenerating || reg.Len() != 0 {
		t.Errorf("state = %s with %d handles, want generating with none", st, reg.Len())
	}
	if _, ok := run(c, fresh).(ReadyMsg); !ok {
		t.Error("own result was not applied")
	}
}

func TestTransport(t *testing.T) {
	c, eng, _ := newTestController(&fakeSource{payload: make([]byte, 48000), ok: true})
	ready(t, c)

	if err := c.Play(); err != nil {
		t.Fatal(err)
	}
	if !c.State().Playing() || !eng.playing {
		t.Error("Play did not start playback")
	}

	if err := c.Toggle(); err != nil {
		t.Fatal(err)
	}
	if c.State().Playing() || eng.playing {
		t.Error("Toggle did not pause")
	}

	if err := c.Toggle(); err != nil {
		t.Fatal(err)
	}
	if !c.State().Playing() {
		t.Error("Toggle did not resume")
	}
}

func TestTransportBeforeReady(t *testing.T) {
	c, _, _ := newTestController(&fakeSource{ok: true})

	for name, fn := range map[string]func() error{
		"play":  c.Play,
		"pause": c.Pause,
		"seek":  func() error { return c.Seek(0) },
	} {
		if err := fn(); !errors.Is(err, ErrNotReady) {
			t.Errorf("%s: err = %v, want ErrNotReady", name, err)
		}
	}
	if _, err := c.Export(t.TempDir()); !errors.Is(err, ErrNotReady) {
		t.Errorf("export: err = %v, want ErrNotReady", err)
	}
}

func TestEngineEvents(t *testing.T) {
	c, _, _ := newTestController(&fakeSource{payload: make([]byte, 48000), ok: true})
	ready(t, c)
	h := c.State().Resource

	if c.State().Duration != time.Second {
		t.Errorf("duration = %s", c.State().Duration)
	}

	c.Update(playback.TimeUpdate{Handle: h, At: 300 * time.Millisecond})
	c.Update(playback.TimeUpdate{Handle: h, At: 300 * time.Millisecond})
	if got := c.State().CurrentTime; got != 300*time.Millisecond {
		t.Errorf("current time = %s", got)
	}

	// Events for other audio are ignored.
	c.Update(playback.TimeUpdate{Handle: "gaia-blob:other", At: 900 * time.Millisecond})
	c.Update(playback.MetadataLoaded{Handle: "gaia-blob:other", Duration: time.Hour})
	if st := c.State(); st.CurrentTime != 300*time.Millisecond || st.Duration != time.Second {
		t.Errorf("foreign events changed state: %s", st)
	}
}

func TestEndedResetsTransport(t *testing.T) {
	c, _, _ := newTestController(&fakeSource{payload: make([]byte, 48000), ok: true})
	ready(t, c)
	h := c.State().Resource

	_ = c.Play()
	c.Update(playback.TimeUpdate{Handle: h, At: time.Second})
	c.Update(playback.Ended{Handle: h})

	st := c.State()
	if st.Status != StatusReady || st.Transport != Paused || st.CurrentTime != 0 {
		t.Errorf("state after end = %s", st)
	}
}

func TestSeek(t *testing.T) {
	c, eng, _ := newTestController(&fakeSource{payload: make([]byte, 48000), ok: true})
	ready(t, c)

	for _, target := range []time.Duration{0, 250 * time.Millisecond, time.Second} {
		if err := c.Seek(target); err != nil {
			t.Fatalf("Seek(%s): %v", target, err)
		}
		if c.State().CurrentTime != target || eng.position != target {
			t.Errorf("Seek(%s): state %s engine %s", target, c.State().CurrentTime, eng.position)
		}
	}

	before := c.State()
	for _, target := range []time.Duration{-time.Millisecond, time.Second + time.Millisecond} {
		if err := c.Seek(target); !errors.Is(err, ErrSeekOutOfRange) {
			t.Errorf("Seek(%s): err = %v, want ErrSeekOutOfRange", target, err)
		}
		if c.State() != before {
			t.Errorf("out of range seek changed state: %s", c.State())
		}
	}

	if got := before.Clamp(5 * time.Second); got != time.Second {
		t.Errorf("Clamp = %s", got)
	}
	if got := before.Clamp(-time.Second); got != 0 {
		t.Errorf("Clamp = %s", got)
	}
}

func TestPoemChangedReleasesResource(t *testing.T) {
	c, eng, reg := newTestController(&fakeSource{payload: make([]byte, 48000), ok: true})
	ready(t, c)
	h := c.State().Resource

	c.PoemChanged(poemB)

	if reg.Len() != 0 {
		t.Errorf("registry holds %d handles", reg.Len())
	}
	if _, err := reg.Bytes(h); !errors.Is(err, resource.ErrRevoked) {
		t.Errorf("handle still valid: %v", err)
	}
	if eng.unloads != 1 {
		t.Errorf("engine unloaded %d times", eng.unloads)
	}
	if st := c.State(); st.PoemID != poemB.ID || st.Status != StatusAbsent {
		t.Errorf("state = %s", st)
	}

	// Late events for the released audio do nothing.
	c.Update(playback.TimeUpdate{Handle: h, At: time.Second})
	if c.State().CurrentTime != 0 {
		t.Error("event for released audio applied")
	}
}

func TestClose(t *testing.T) {
	c, _, reg := newTestController(&fakeSource{payload: make([]byte, 48000), ok: true})
	cmd := c.Request()
	msg := cmd()
	c.Close()
	c.Close()

	if next := c.Update(msg); next != nil {
		t.Error("result applied after close")
	}
	if reg.Len() != 0 {
		t.Errorf("registry holds %d handles", reg.Len())
	}
	if c.Request() != nil {
		t.Error("closed session accepted a request")
	}
	if err := c.Play(); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}

func TestExport(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	c, _, _ := newTestController(&fakeSource{payload: payload, ok: true})
	ready(t, c)

	dir := t.TempDir()
	path, err := c.Export(dir)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if want := filepath.Join(dir, "nietzsche-gaia-ciencia-1-audio-summary.wav"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	f, pcm, err := wav.Parse(data)
	if err != nil {
		t.Fatalf("exported file does not parse: %v", err)
	}
	if f != wav.DefaultFormat() || string(pcm) != string(payload) {
		t.Errorf("exported %s with %d bytes", f, len(pcm))
	}
}

func TestWithSilentEngine(t *testing.T) {
	f := wav.DefaultFormat()
	eng := playback.NewSilent(f)
	eng.SetTickInterval(5 * time.Millisecond)
	defer eng.Close() //nolint:errcheck

	reg := resource.NewRegistry()
	// 50ms of audio.
	src := &fakeSource{payload: make([]byte, f.Offset(50*time.Millisecond)), ok: true}
	c := New(poemA, poems.Portuguese, src, eng, reg)

	if _, ok := run(c, c.Request()).(ReadyMsg); !ok {
		t.Fatal("not ready")
	}

	wait := playback.WaitForEvent(eng)
	deadline := time.After(3 * time.Second)
	played := false
	for {
		var msg tea.Msg
		done := make(chan tea.Msg, 1)
		go func() { done <- wait() }()
		select {
		case msg = <-done:
		case <-deadline:
			t.Fatalf("timed out, state %s", c.State())
		}
		c.Update(msg)

		if _, ok := msg.(playback.MetadataLoaded); ok && !played {
			if err := c.Play(); err != nil {
				t.Fatal(err)
			}
			played = true
		}
		if _, ok := msg.(playback.Ended); ok {
			break
		}
	}

	st := c.State()
	if st.Duration != 50*time.Millisecond || st.Transport != Paused || st.CurrentTime != 0 {
		t.Errorf("state after playing through = %s", st)
	}
}

func TestOddPayloadWithSilentEngine(t *testing.T) {
	eng := playback.NewSilent(wav.DefaultFormat())
	defer eng.Close() //nolint:errcheck

	for _, n := range []int{1, 3, 4801} {
		src := &fakeSource{payload: make([]byte, n), ok: true}
		c := New(poemA, poems.English, src, eng, resource.NewRegistry())

		msg := run(c, c.Request())
		if _, ok := msg.(ReadyMsg); !ok {
			t.Errorf("%d bytes: msg = %#v, want ReadyMsg", n, msg)
		}
		if st := c.State(); st.Status != StatusReady {
			t.Errorf("%d bytes: state = %s, want ready", n, st)
		}
		c.Close()
	}
}
