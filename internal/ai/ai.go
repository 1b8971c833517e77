// Package ai is the boundary to the generative model: poem analysis, spoken
// audio summaries, art and infographics.
//
// Capability implementations return errors. Oracle wraps a Capability with
// the behaviour the interface expects from the remote service: failures are
// logged and turned into fallback text or absent results, never propagated.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/freespirits/gaia/internal/poems"
)

var (
	// ErrMissingAPIKey is returned when no credential is configured.
	ErrMissingAPIKey = errors.New("API key not configured")

	// ErrEmptyResponse is returned when the model answered without content.
	ErrEmptyResponse = errors.New("model returned no content")

	// ErrUnknownStyle is returned for art styles that do not exist.
	ErrUnknownStyle = errors.New("unknown art style")
)

// Op names a generation operation.
type Op string

const (
	OpAnalyze     Op = "analyze"
	OpAudio       Op = "audio"
	OpArt         Op = "art"
	OpInfographic Op = "infographic"
)

// GenerationError describes a failed call.
type GenerationError struct {
	Op     Op
	PoemID int
	Err    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s for poem %d: %v", e.Op, e.PoemID, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Image is a generated picture.
type Image struct {
	Data     []byte
	MIMEType string
}

// Empty reports whether the image holds no data.
func (i Image) Empty() bool { return len(i.Data) == 0 }

// Capability is the remote generation service.
type Capability interface {
	// Analyze answers a question about the poem in lang.
	Analyze(ctx context.Context, p poems.Poem, question string, lang poems.Language) (string, error)
	// AudioSummary narrates the poem's meaning and returns raw PCM in the
	// service's output format.
	AudioSummary(ctx context.Context, p poems.Poem, lang poems.Language) ([]byte, error)
	Art(ctx context.Context, p poems.Poem, style Style, lang poems.Language) (Image, error)
	Infographic(ctx context.Context, p poems.Poem, lang poems.Language) (Image, error)
}

// Style is an art style.
type Style string

const (
	Surrealism    Style = "surrealism"
	Expressionism Style = "expressionism"
	Oil           Style = "oil"
	OilExpressive Style = "oil_expressive"
	Sketch        Style = "sketch"
	Cyberpunk     Style = "cyberpunk"
)

// DefaultStyle is the style selected when none was chosen.
const DefaultStyle = Surrealism

// Styles lists the styles in the order they are offered.
var Styles = []Style{Surrealism, Expressionism, Oil, OilExpressive, Sketch, Cyberpunk}

var styleDescriptors = map[Style]string{
	Surrealism:    "Dreamlike Surrealism in the style of Dali",
	Expressionism: "German Expressionism",
	Oil:           "Classic Renaissance Oil Painting with heavy chiaroscuro",
	OilExpressive: "Expressive Oil Painting, thick impasto strokes, dramatic texture and lighting, emotional masterpiece",
	Sketch:        "Charcoal Sketch on old paper",
	Cyberpunk:     "Dystopian Futurism, gold and black palette",
}

// Descriptor returns the phrase the image model is given for s.
func (s Style) Descriptor() string { return styleDescriptors[s] }

// Valid reports whether s is a known style.
func (s Style) Valid() bool {
	_, ok := styleDescriptors[s]
	return ok
}

// Next returns the style after s, wrapping around.
func (s Style) Next() Style {
	for i, st := range Styles {
		if st == s {
			return Styles[(i+1)%len(Styles)]
		}
	}
	return DefaultStyle
}

// ParseStyle parses a style name; the empty string selects DefaultStyle.
func ParseStyle(name string) (Style, error) {
	if name == "" {
		return DefaultStyle, nil
	}
	s := Style(strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "-", "_")))
	if !s.Valid() {
		return "", fmt.Errorf("%w %q", ErrUnknownStyle, name)
	}
	return s, nil
}

// Provider selects the Capability implementation.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderMock   Provider = "mock"
)

// ParseProvider validates a provider name; the empty string selects Gemini.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return ProviderGemini, nil
	case ProviderGemini, ProviderMock:
		return p, nil
	}
	return "", fmt.Errorf("unknown AI provider %q: use gemini or mock", s)
}
