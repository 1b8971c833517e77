package ai

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/freespirits/gaia/internal/poems"
)

// MissingKeyAnswer is the analysis answer when no credential is configured.
const MissingKeyAnswer = "Error: API Key not configured."

var (
	silentAnswers = map[poems.Language]string{
		poems.Portuguese: "O abismo olhou de volta e não disse nada. (Erro ao gerar resposta)",
		poems.English:    "The abyss gazed back and said nothing. (Error generating response)",
		poems.Spanish:    "El abismo devolvió la mirada y no dijo nada. (Error al generar la respuesta)",
	}
	failedAnswers = map[poems.Language]string{
		poems.Portuguese: "Ocorreu um erro ao consultar os oráculos digitais.",
		poems.English:    "An error occurred while consulting the digital oracles.",
		poems.Spanish:    "Ocurrió un error al consultar los oráculos digitales.",
	}
)

func localized(m map[poems.Language]string, lang poems.Language) string {
	if s, ok := m[lang]; ok {
		return s
	}
	return m[poems.DefaultLanguage]
}

// Oracle absorbs Capability failures. Analysis always yields text to show;
// the other requests report failure as a false second result. Every failure
// is logged here, so callers only decide how to present it.
type Oracle struct {
	cap Capability
}

// NewOracle wraps c.
func NewOracle(c Capability) *Oracle {
	return &Oracle{cap: c}
}

// Capability returns the wrapped capability.
func (o *Oracle) Capability() Capability { return o.cap }

// RequestAnalysis answers question about p, or returns a fallback line.
func (o *Oracle) RequestAnalysis(ctx context.Context, p poems.Poem, question string, lang poems.Language) string {
	answer, err := o.cap.Analyze(ctx, p, question, lang)
	switch {
	case err == nil:
		return answer
	case errors.Is(err, ErrMissingAPIKey):
		log.Error("API key missing", "op", OpAnalyze)
		return MissingKeyAnswer
	case errors.Is(err, ErrEmptyResponse):
		log.Warn("Empty analysis", "poem", p.ID)
		return localized(silentAnswers, lang)
	default:
		report(OpAnalyze, p.ID, err)
		return localized(failedAnswers, lang)
	}
}

// RequestAudioSummary returns raw PCM for p's audio summary.
func (o *Oracle) RequestAudioSummary(ctx context.Context, p poems.Poem, lang poems.Language) ([]byte, bool) {
	pcm, err := o.cap.AudioSummary(ctx, p, lang)
	if err != nil {
		report(OpAudio, p.ID, err)
		return nil, false
	}
	return pcm, true
}

// RequestArt returns a picture of p in style.
func (o *Oracle) RequestArt(ctx context.Context, p poems.Poem, style Style, lang poems.Language) (Image, bool) {
	img, err := o.cap.Art(ctx, p, style, lang)
	if err != nil || img.Empty() {
		report(OpArt, p.ID, err)
		return Image{}, false
	}
	return img, true
}

// RequestInfographic returns a concept map of p.
func (o *Oracle) RequestInfographic(ctx context.Context, p poems.Poem, lang poems.Language) (Image, bool) {
	img, err := o.cap.Infographic(ctx, p, lang)
	if err != nil || img.Empty() {
		report(OpInfographic, p.ID, err)
		return Image{}, false
	}
	return img, true
}

func report(op Op, poemID int, err error) {
	switch {
	case err == nil:
		log.Warn("Generation returned nothing", "op", op, "poem", poemID)
	case errors.Is(err, ErrMissingAPIKey):
		log.Error("API key missing", "op", op)
	case errors.Is(err, context.Canceled):
		log.Debug("Generation canceled", "op", op, "poem", poemID)
	default:
		log.Warn("Generation failed", "op", op, "poem", poemID, "error", err)
	}
}
