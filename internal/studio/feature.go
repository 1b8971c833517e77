// Package studio tracks the per-poem generated pictures and the analysis
// chat. Like the audio session, every tracker belongs to the poem on screen:
// results that arrive after the poem changed are dropped.
package studio

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/freespirits/gaia/internal/ai"
	"github.com/freespirits/gaia/internal/export"
	"github.com/freespirits/gaia/internal/poems"
	"github.com/freespirits/gaia/internal/resource"
)

// ErrNoImage is returned by Export before an image is ready.
var ErrNoImage = errors.New("no image generated")

// tokens tags image requests across every tracker.
var tokens atomic.Uint64

// Kind is the kind of picture a Feature produces.
type Kind int

const (
	Art Kind = iota
	Infographic
)

func (k Kind) String() string {
	if k == Infographic {
		return "infographic"
	}
	return "art"
}

// Status is the state of a Feature.
type Status int

const (
	Idle Status = iota
	Loading
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// ImageSource generates pictures. False means the request failed and was
// already logged.
type ImageSource interface {
	RequestArt(ctx context.Context, p poems.Poem, style ai.Style, lang poems.Language) (ai.Image, bool)
	RequestInfographic(ctx context.Context, p poems.Poem, lang poems.Language) (ai.Image, bool)
}

// ImageMsg carries a finished image request back to its Feature.
type ImageMsg struct {
	Kind   Kind
	PoemID int
	Token  uint64
	Style  ai.Style
	Image  ai.Image
	OK     bool
}

// ImageReadyMsg reports a new image for the poem.
type ImageReadyMsg struct {
	Kind   Kind
	PoemID int
	Handle resource.Handle
}

// ImageFailedMsg reports a failed image request.
type ImageFailedMsg struct {
	Kind   Kind
	PoemID int
}

// Feature is the tracker for one kind of picture of the current poem.
// Like the audio session it is driven from the event loop and is not safe
// for concurrent use.
type Feature struct {
	kind     Kind
	poem     poems.Poem
	lang     poems.Language
	style    ai.Style
	source   ImageSource
	registry *resource.Registry
	timeout  time.Duration

	token  uint64
	status Status
	handle resource.Handle
	mime   string
	made   ai.Style // Style of the current image
	closed bool
}

// NewFeature returns an idle tracker for p.
func NewFeature(kind Kind, p poems.Poem, lang poems.Language, source ImageSource, registry *resource.Registry) *Feature {
	return &Feature{
		kind:     kind,
		poem:     p,
		lang:     lang,
		style:    ai.DefaultStyle,
		source:   source,
		registry: registry,
		timeout:  2 * time.Minute,
	}
}

// Kind returns the kind of picture.
func (f *Feature) Kind() Kind { return f.kind }

// Status returns the tracker state.
func (f *Feature) Status() Status { return f.status }

// Handle returns the current image, if any.
func (f *Feature) Handle() resource.Handle { return f.handle }

// MIMEType returns the type of the current image.
func (f *Feature) MIMEType() string { return f.mime }

// Style returns the selected art style.
func (f *Feature) Style() ai.Style { return f.style }

// ImageStyle returns the style the current image was made in.
func (f *Feature) ImageStyle() ai.Style { return f.made }

// SetStyle selects the style for the next art request. It does not touch
// the current image.
func (f *Feature) SetStyle(s ai.Style) { f.style = s }

// SetTimeout bounds each request. Zero disables the bound.
func (f *Feature) SetTimeout(d time.Duration) { f.timeout = d }

// Request starts generating a picture. It does nothing while a request is
// outstanding. A ready image stays visible until its replacement arrives.
func (f *Feature) Request() tea.Cmd {
	if f.closed || f.status == Loading {
		return nil
	}

	f.token = tokens.Add(1)
	f.status = Loading
	log.Debug("Requesting image", "kind", f.kind, "poem", f.poem.ID, "style", f.style, "token", f.token)

	var (
		kind    = f.kind
		poem    = f.poem
		lang    = f.lang
		style   = f.style
		token   = f.token
		source  = f.source
		timeout = f.timeout
	)
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		var (
			img ai.Image
			ok  bool
		)
		if kind == Infographic {
			img, ok = source.RequestInfographic(ctx, poem, lang)
		} else {
			img, ok = source.RequestArt(ctx, poem, style, lang)
		}
		return ImageMsg{Kind: kind, PoemID: poem.ID, Token: token, Style: style, Image: img, OK: ok}
	}
}

// Update applies a finished request.
func (f *Feature) Update(msg tea.Msg) tea.Cmd {
	m, ok := msg.(ImageMsg)
	if !ok || m.Kind != f.kind {
		return nil
	}
	if f.closed || m.PoemID != f.poem.ID || m.Token != f.token || f.status != Loading {
		log.Debug("Discarding stale image", "kind", m.Kind, "poem", m.PoemID, "token", m.Token)
		return nil
	}

	id, kind := f.poem.ID, f.kind
	if !m.OK || m.Image.Empty() {
		f.status = Failed
		if !f.handle.IsZero() {
			f.status = Ready
		}
		return func() tea.Msg { return ImageFailedMsg{Kind: kind, PoemID: id} }
	}

	f.release()
	f.handle = f.registry.Create(m.Image.Data, m.Image.MIMEType)
	f.mime = m.Image.MIMEType
	f.made = m.Style
	f.status = Ready
	h := f.handle
	return func() tea.Msg { return ImageReadyMsg{Kind: kind, PoemID: id, Handle: h} }
}

// PoemChanged drops the current image and any outstanding request.
func (f *Feature) PoemChanged(next poems.Poem) {
	if f.closed {
		return
	}
	f.release()
	f.token = tokens.Add(1)
	f.poem = next
	f.status = Idle
}

// Close releases the image; the tracker becomes inert.
func (f *Feature) Close() {
	if f.closed {
		return
	}
	f.release()
	f.token = tokens.Add(1)
	f.status = Idle
	f.closed = true
}

func (f *Feature) release() {
	if !f.handle.IsZero() {
		f.registry.Revoke(f.handle)
	}
	f.handle = ""
	f.mime = ""
	f.made = ""
}

// FileName returns the export name of the current image.
func (f *Feature) FileName() string {
	if f.kind == Infographic {
		return export.InfographicName(f.poem.ID, f.mime)
	}
	return export.ArtName(f.poem.ID, string(f.made), f.mime)
}

// Export writes the current image into dir and returns the file path.
func (f *Feature) Export(dir string) (string, error) {
	if f.handle.IsZero() {
		return "", ErrNoImage
	}
	data, err := f.registry.Bytes(f.handle)
	if err != nil {
		return "", fmt.Errorf("unable to read %s: %w", f.kind, err)
	}
	return export.Write(dir, f.FileName(), data)
}
