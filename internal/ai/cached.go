package ai

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/freespirits/gaia/internal/cache"
	"github.com/freespirits/gaia/internal/poems"
)

const pcmMIMEType = "audio/L16"

// Cached serves audio and pictures from an artifact cache, calling the
// wrapped capability on a miss. Analysis answers are never cached.
type Cached struct {
	next   Capability
	cache  *cache.Manager
	models Models
}

// NewCached wraps next. models is part of every key, so switching models
// does not serve stale artifacts.
func NewCached(next Capability, c *cache.Manager, models Models) *Cached {
	return &Cached{next: next, cache: c, models: models}
}

// Analyze implements Capability.
func (c *Cached) Analyze(ctx context.Context, p poems.Poem, question string, lang poems.Language) (string, error) {
	return c.next.Analyze(ctx, p, question, lang)
}

// AudioSummary implements Capability.
func (c *Cached) AudioSummary(ctx context.Context, p poems.Poem, lang poems.Language) ([]byte, error) {
	key := cache.Key{Kind: cache.KindAudio, PoemID: p.ID, Language: string(lang), Model: c.models.Audio}
	if item, ok := c.cache.Get(key); ok {
		log.Debug("Audio summary served from cache", "key", key)
		return item.Data, nil
	}

	pcm, err := c.next.AudioSummary(ctx, p, lang)
	if err != nil {
		return nil, err
	}
	c.store(key, cache.Item{Data: pcm, MIMEType: pcmMIMEType})
	return pcm, nil
}

// Art implements Capability. Art prompts do not depend on the language.
func (c *Cached) Art(ctx context.Context, p poems.Poem, style Style, lang poems.Language) (Image, error) {
	key := cache.Key{Kind: cache.KindArt, PoemID: p.ID, Model: c.models.Image, Variant: string(style)}
	return c.image(key, func() (Image, error) {
		return c.next.Art(ctx, p, style, lang)
	})
}

// Infographic implements Capability.
func (c *Cached) Infographic(ctx context.Context, p poems.Poem, lang poems.Language) (Image, error) {
	key := cache.Key{Kind: cache.KindInfographic, PoemID: p.ID, Language: string(lang), Model: c.models.Image}
	return c.image(key, func() (Image, error) {
		return c.next.Infographic(ctx, p, lang)
	})
}

func (c *Cached) image(key cache.Key, generate func() (Image, error)) (Image, error) {
	if item, ok := c.cache.Get(key); ok {
		log.Debug("Image served from cache", "key", key)
		return Image{Data: item.Data, MIMEType: item.MIMEType}, nil
	}

	img, err := generate()
	if err != nil {
		return Image{}, err
	}
	if !img.Empty() {
		c.store(key, cache.Item{Data: img.Data, MIMEType: img.MIMEType})
	}
	return img, nil
}

func (c *Cached) store(key cache.Key, item cache.Item) {
	if err := c.cache.Put(key, item); err != nil {
		log.Warn("Unable to cache artifact", "key", key, "error", err)
	}
}
