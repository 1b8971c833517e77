// Package session implements the audio summary session of a poem view: it
// owns at most one generated audio resource, tracks whether one is being
// generated, and mirrors the playback transport reported by the engine.
package session

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/freespirits/gaia/internal/export"
	"github.com/freespirits/gaia/internal/playback"
	"github.com/freespirits/gaia/internal/poems"
	"github.com/freespirits/gaia/internal/resource"
	"github.com/freespirits/gaia/internal/wav"
)

// MIMEType is the type registered for audio summaries.
const MIMEType = "audio/wav"

// DefaultTimeout bounds a single generation request.
const DefaultTimeout = 2 * time.Minute

// tokens tags generation requests. It is shared by every controller so a
// result can only ever match the request that produced it.
var tokens atomic.Uint64

// AudioSource produces raw PCM narrations. A false result means the
// request failed; the source has already logged why.
type AudioSource interface {
	RequestAudioSummary(ctx context.Context, p poems.Poem, lang poems.Language) ([]byte, bool)
}

// Option configures a Controller.
type Option func(*Controller)

// WithFormat sets the PCM format the source produces.
func WithFormat(f wav.Format) Option {
	return func(c *Controller) { c.format = f }
}

// WithTimeout bounds each generation request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// Controller is the audio session for the poem currently on screen.
//
// A Controller is driven from the Bubble Tea event loop and is not safe for
// concurrent use. Work that blocks is returned as a tea.Cmd and its result
// comes back through Update.
type Controller struct {
	poem     poems.Poem
	lang     poems.Language
	source   AudioSource
	engine   playback.Engine
	registry *resource.Registry
	format   wav.Format
	timeout  time.Duration

	// token changes whenever outstanding results must be ignored.
	token  uint64
	state  State
	closed bool
}

// New returns an absent session for p. The engine is shared with other
// sessions; the controller only touches it while it owns loaded audio.
func New(p poems.Poem, lang poems.Language, source AudioSource, engine playback.Engine, registry *resource.Registry, opts ...Option) *Controller {
	c := &Controller{
		poem:     p,
		lang:     lang,
		source:   source,
		engine:   engine,
		registry: registry,
		format:   wav.DefaultFormat(),
		timeout:  DefaultTimeout,
		state:    State{PoemID: p.ID},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the session.
func (c *Controller) State() State { return c.state }

// Poem returns the poem the session belongs to.
func (c *Controller) Poem() poems.Poem { return c.poem }

// Request asks for the audio summary. While generating it does nothing.
// Once the audio is ready it returns a RevealMsg command instead of
// generating again.
func (c *Controller) Request() tea.Cmd {
	if c.closed {
		return nil
	}

	switch c.state.Status {
	case StatusGenerating:
		return nil
	case StatusReady:
		id := c.poem.ID
		return func() tea.Msg { return RevealMsg{PoemID: id} }
	}

	c.token = tokens.Add(1)
	c.state = State{PoemID: c.poem.ID, Status: StatusGenerating}
	log.Debug("Requesting audio summary", "poem", c.poem.ID, "lang", c.lang, "token", c.token)

	var (
		poem    = c.poem
		lang    = c.lang
		token   = c.token
		source  = c.source
		timeout = c.timeout
	)
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		payload, ok := source.RequestAudioSummary(ctx, poem, lang)
		return GeneratedMsg{PoemID: poem.ID, Token: token, Payload: payload, OK: ok}
	}
}

// Update applies generation results and playback events.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case GeneratedMsg:
		return c.generated(msg)
	case playback.Event:
		c.observe(msg)
	}
	return nil
}

func (c *Controller) generated(msg GeneratedMsg) tea.Cmd {
	if c.closed || msg.PoemID != c.poem.ID || msg.Token != c.token || c.state.Status != StatusGenerating {
		log.Debug("Discarding stale audio summary", "poem", msg.PoemID, "token", msg.Token)
		return nil
	}

	id := c.poem.ID
	if !msg.OK {
		c.state = State{PoemID: id}
		log.Warn("Audio summary generation failed", "poem", id)
		return failed(id, ErrGenerationFailed)
	}

	container := wav.Synthesize(msg.Payload, c.format)
	h := c.registry.Create(container, MIMEType)
	if err := c.engine.Load(h, container); err != nil {
		c.registry.Revoke(h)
		c.state = State{PoemID: id}
		log.Warn("Unable to load audio summary", "poem", id, "error", err)
		return failed(id, err)
	}

	c.state = State{PoemID: id, Status: StatusReady, Transport: Paused, Resource: h}
	log.Debug("Audio summary ready", "poem", id, "bytes", len(container), "handle", h)
	return func() tea.Msg { return ReadyMsg{PoemID: id, Handle: h} }
}

func failed(id int, err error) tea.Cmd {
	return func() tea.Msg { return FailedMsg{PoemID: id, Err: err} }
}

// observe applies an engine event. Events about any other resource are
// ignored, which covers audio that was released since they were emitted.
func (c *Controller) observe(ev playback.Event) {
	if c.closed || c.state.Status != StatusReady || ev.Resource() != c.state.Resource {
		return
	}

	switch ev := ev.(type) {
	case playback.TimeUpdate:
		c.state.CurrentTime = ev.At
	case playback.MetadataLoaded:
		c.state.Duration = ev.Duration
	case playback.Ended:
		c.state.Transport = Paused
		c.state.CurrentTime = 0
	}
}

func (c *Controller) readyErr() error {
	if c.closed {
		return ErrClosed
	}
	if c.state.Status != StatusReady {
		return ErrNotReady
	}
	return nil
}

// Play starts playback. The state reports playing as soon as the engine
// accepted the command.
func (c *Controller) Play() error {
	if err := c.readyErr(); err != nil {
		return err
	}
	prev := c.state.Transport
	c.state.Transport = Playing
	if err := c.engine.Play(); err != nil {
		c.state.Transport = prev
		return fmt.Errorf("unable to play audio summary: %w", err)
	}
	return nil
}

// Pause pauses playback.
func (c *Controller) Pause() error {
	if err := c.readyErr(); err != nil {
		return err
	}
	prev := c.state.Transport
	c.state.Transport = Paused
	if err := c.engine.Pause(); err != nil {
		c.state.Transport = prev
		return fmt.Errorf("unable to pause audio summary: %w", err)
	}
	return nil
}

// Toggle switches between playing and paused.
func (c *Controller) Toggle() error {
	if c.state.Playing() {
		return c.Pause()
	}
	return c.Play()
}

// Seek moves the playback cursor to t, which must lie within
// [0, Duration]. Out of range targets return ErrSeekOutOfRange and leave
// the session untouched; use State.Clamp first.
func (c *Controller) Seek(t time.Duration) error {
	if err := c.readyErr(); err != nil {
		return err
	}
	if t < 0 || t > c.state.Duration {
		return fmt.Errorf("%w: %s not in [0, %s]", ErrSeekOutOfRange, t, c.state.Duration)
	}
	if err := c.engine.Seek(t); err != nil {
		return fmt.Errorf("unable to seek audio summary: %w", err)
	}
	c.state.CurrentTime = t
	return nil
}

// PoemChanged releases the current audio and makes the session absent for
// next. Results of requests issued for the previous poem are dropped.
func (c *Controller) PoemChanged(next poems.Poem) {
	if c.closed {
		return
	}
	c.release()
	c.token = tokens.Add(1)
	c.poem = next
	c.state = State{PoemID: next.ID}
}

// Close ends the session and releases its audio. Further calls are no-ops
// or return ErrClosed.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.release()
	c.token = tokens.Add(1)
	c.closed = true
	c.state = State{PoemID: c.poem.ID}
}

func (c *Controller) release() {
	h := c.state.Resource
	if h.IsZero() {
		return
	}
	if err := c.engine.Unload(); err != nil {
		log.Debug("Unable to unload audio summary", "handle", h, "error", err)
	}
	c.registry.Revoke(h)
	c.state.Resource = ""
}

// Export writes the audio summary into dir and returns the file path.
func (c *Controller) Export(dir string) (string, error) {
	if err := c.readyErr(); err != nil {
		return "", err
	}
	data, err := c.registry.Bytes(c.state.Resource)
	if err != nil {
		return "", fmt.Errorf("unable to read audio summary: %w", err)
	}
	return export.Write(dir, export.AudioName(c.poem.ID), data)
}
