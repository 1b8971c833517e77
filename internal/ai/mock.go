package ai

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"math"
	"time"

	"github.com/freespirits/gaia/internal/poems"
)

// Mock is an offline Capability with deterministic output: a sine tone for
// audio, a gradient for pictures and a canned answer for questions.
type Mock struct {
	// AudioLength is how long generated narrations last.
	AudioLength time.Duration
	// SampleRate of the generated PCM; mono 16-bit.
	SampleRate int
	// Latency delays every call, honouring cancellation.
	Latency time.Duration
	// Err, when set, is returned by every call.
	Err error
}

// NewMock returns a Mock producing three seconds of 24 kHz audio.
func NewMock() *Mock {
	return &Mock{AudioLength: 3 * time.Second, SampleRate: 24000}
}

func (m *Mock) wait(ctx context.Context) error {
	if m.Latency > 0 {
		t := time.NewTimer(m.Latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return m.Err
}

// Analyze implements Capability.
func (m *Mock) Analyze(ctx context.Context, p poems.Poem, question string, lang poems.Language) (string, error) {
	if err := m.wait(ctx); err != nil {
		return "", &GenerationError{Op: OpAnalyze, PoemID: p.ID, Err: err}
	}
	return fmt.Sprintf("**%s**\n\n> %s\n\n%s", p.Title.In(lang), p.FirstLine(lang), question), nil
}

// AudioSummary implements Capability.
func (m *Mock) AudioSummary(ctx context.Context, p poems.Poem, _ poems.Language) ([]byte, error) {
	if err := m.wait(ctx); err != nil {
		return nil, &GenerationError{Op: OpAudio, PoemID: p.ID, Err: err}
	}
	freq := 220 + 20*float64(p.ID%12)
	return Tone(m.SampleRate, m.AudioLength, freq), nil
}

// Art implements Capability.
func (m *Mock) Art(ctx context.Context, p poems.Poem, style Style, _ poems.Language) (Image, error) {
	if err := m.wait(ctx); err != nil {
		return Image{}, &GenerationError{Op: OpArt, PoemID: p.ID, Err: err}
	}
	if !style.Valid() {
		return Image{}, &GenerationError{Op: OpArt, PoemID: p.ID, Err: fmt.Errorf("%w %q", ErrUnknownStyle, style)}
	}
	return placeholder(fmt.Sprintf("art/%d/%s", p.ID, style))
}

// Infographic implements Capability.
func (m *Mock) Infographic(ctx context.Context, p poems.Poem, lang poems.Language) (Image, error) {
	if err := m.wait(ctx); err != nil {
		return Image{}, &GenerationError{Op: OpInfographic, PoemID: p.ID, Err: err}
	}
	return placeholder(fmt.Sprintf("infographic/%d/%s", p.ID, lang))
}

// Tone returns d of a mono 16-bit little endian sine wave at freq Hz.
func Tone(sampleRate int, d time.Duration, freq float64) []byte {
	n := int(int64(sampleRate) * int64(d) / int64(time.Second))
	out := make([]byte, 2*n)
	for i := 0; i < n; i++ {
		v := 0.3 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
		binary.LittleEndian.PutUint16(out[2*i:], uint16(int16(v*math.MaxInt16)))
	}
	return out
}

// placeholder draws a small obsidian-to-gold gradient seeded by name.
func placeholder(name string) (Image, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	seed := h.Sum32()

	const w, ht = 64, 96
	img := image.NewRGBA(image.Rect(0, 0, w, ht))
	for y := 0; y < ht; y++ {
		for x := 0; x < w; x++ {
			t := float64(y) / ht
			img.Set(x, y, color.RGBA{
				R: uint8(20 + t*190 + float64(seed&0x1f)),
				G: uint8(16 + t*150 + float64(seed>>5&0x1f)),
				B: uint8(24 + t*30 + float64(x)/2),
				A: 0xff,
			})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Image{}, err
	}
	return Image{Data: buf.Bytes(), MIMEType: "image/png"}, nil
}
