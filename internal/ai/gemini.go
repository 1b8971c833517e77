package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/freespirits/gaia/internal/poems"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// Models names the model used for each kind of output.
type Models struct {
	Text  string `yaml:"text"`
	Audio string `yaml:"audio"`
	Image string `yaml:"image"`
}

// DefaultModels returns the models the application was built against.
func DefaultModels() Models {
	return Models{
		Text:  "gemini-2.5-flash",
		Audio: "gemini-2.5-flash-native-audio-preview-09-2025",
		Image: "gemini-2.5-flash-image",
	}
}

// GeminiConfig configures the Gemini capability.
type GeminiConfig struct {
	APIKey      string
	Models      Models
	Voice       string
	Temperature float32
	// MinInterval spaces consecutive calls; zero disables pacing.
	MinInterval time.Duration
}

// DefaultGeminiConfig returns the default configuration without a key.
func DefaultGeminiConfig() GeminiConfig {
	return GeminiConfig{
		Models:      DefaultModels(),
		Voice:       "Puck",
		Temperature: 0.7,
		MinInterval: time.Second,
	}
}

// Gemini implements Capability with the Gemini API.
type Gemini struct {
	cfg     GeminiConfig
	limiter *rate.Limiter

	mu     sync.Mutex
	client *genai.Client
}

// NewGemini returns a Gemini capability. No connection is made until the
// first call, so a missing key only disables the features that need it.
func NewGemini(cfg GeminiConfig) *Gemini {
	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}
	return &Gemini{
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Models returns the configured models.
func (g *Gemini) Models() Models { return g.cfg.Models }

func (g *Gemini) connect(ctx context.Context) (*genai.Client, error) {
	if strings.TrimSpace(g.cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create Gemini client: %w", err)
	}
	g.client = client
	return client, nil
}

func (g *Gemini) generate(ctx context.Context, model, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	client, err := g.connect(ctx)
	if err != nil {
		return nil, err
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return nil, err
	}
	log.Debug("Gemini call finished", "model", model, "elapsed", time.Since(start))
	return resp, nil
}

// Analyze implements Capability.
func (g *Gemini) Analyze(ctx context.Context, p poems.Poem, question string, lang poems.Language) (string, error) {
	resp, err := g.generate(ctx, g.cfg.Models.Text, AnalysisPrompt(p, question, lang), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemInstruction(lang), genai.RoleUser),
		Temperature:       genai.Ptr(g.cfg.Temperature),
	})
	if err != nil {
		return "", &GenerationError{Op: OpAnalyze, PoemID: p.ID, Err: err}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &GenerationError{Op: OpAnalyze, PoemID: p.ID, Err: ErrEmptyResponse}
	}
	return text, nil
}

// AudioSummary implements Capability. The model answers with 24 kHz mono
// 16-bit PCM.
func (g *Gemini) AudioSummary(ctx context.Context, p poems.Poem, lang poems.Language) ([]byte, error) {
	resp, err := g.generate(ctx, g.cfg.Models.Audio, AudioPrompt(p, lang), &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: g.cfg.Voice},
			},
		},
	})
	if err != nil {
		return nil, &GenerationError{Op: OpAudio, PoemID: p.ID, Err: err}
	}

	blob := firstInline(resp, "audio/")
	if blob == nil || len(blob.Data) == 0 {
		return nil, &GenerationError{Op: OpAudio, PoemID: p.ID, Err: ErrEmptyResponse}
	}
	return blob.Data, nil
}

// Art implements Capability.
func (g *Gemini) Art(ctx context.Context, p poems.Poem, style Style, _ poems.Language) (Image, error) {
	if !style.Valid() {
		return Image{}, &GenerationError{Op: OpArt, PoemID: p.ID, Err: fmt.Errorf("%w %q", ErrUnknownStyle, style)}
	}
	img, err := g.image(ctx, ArtPrompt(p, style))
	if err != nil {
		return Image{}, &GenerationError{Op: OpArt, PoemID: p.ID, Err: err}
	}
	return img, nil
}

// Infographic implements Capability.
func (g *Gemini) Infographic(ctx context.Context, p poems.Poem, lang poems.Language) (Image, error) {
	img, err := g.image(ctx, InfographicPrompt(p, lang))
	if err != nil {
		return Image{}, &GenerationError{Op: OpInfographic, PoemID: p.ID, Err: err}
	}
	return img, nil
}

func (g *Gemini) image(ctx context.Context, prompt string) (Image, error) {
	resp, err := g.generate(ctx, g.cfg.Models.Image, prompt, nil)
	if err != nil {
		return Image{}, err
	}
	blob := firstInline(resp, "image/")
	if blob == nil || len(blob.Data) == 0 {
		return Image{}, ErrEmptyResponse
	}
	return Image{Data: blob.Data, MIMEType: blob.MIMEType}, nil
}

// firstInline returns the first inline payload of the first candidate whose
// MIME type starts with prefix. Parts without a MIME type are accepted.
func firstInline(resp *genai.GenerateContentResponse, prefix string) *genai.Blob {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.InlineData == nil {
			continue
		}
		if mt := part.InlineData.MIMEType; mt == "" || strings.HasPrefix(mt, prefix) {
			return part.InlineData
		}
	}
	return nil
}
