package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/freespirits/gaia/internal/ai"
	"github.com/freespirits/gaia/internal/cache"
	"github.com/freespirits/gaia/internal/config"
	"github.com/freespirits/gaia/internal/playback"
	"github.com/freespirits/gaia/internal/poems"
	"github.com/freespirits/gaia/internal/resource"
	"github.com/freespirits/gaia/internal/wav"
)

// app holds the long-lived collaborators shared by the TUI and the
// subcommands.
type app struct {
	cfg      config.Config
	catalog  *poems.Catalog
	cache    *cache.Manager // nil when disabled
	oracle   *ai.Oracle
	registry *resource.Registry
}

func newApp(cfg config.Config) (*app, error) {
	catalog := poems.Default()
	if cfg.Catalog != "" {
		c, err := poems.Load(cfg.Catalog)
		if err != nil {
			return nil, err
		}
		catalog = c
	}

	a := &app{
		cfg:      cfg,
		catalog:  catalog,
		registry: resource.NewRegistry(),
	}

	var capability ai.Capability
	switch cfg.Provider() {
	case ai.ProviderMock:
		m := ai.NewMock()
		m.SampleRate = cfg.Audio.SampleRate
		capability = m
	default:
		if !cfg.HasAPIKey() {
			log.Warn("No API key configured, AI features are disabled")
		}
		capability = ai.NewGemini(cfg.Gemini())
	}

	if cc, ok := cfg.CacheConfig(); ok {
		m, err := cache.NewManager(cc)
		if err != nil {
			log.Warn("Artifact cache unavailable", "dir", cc.Dir, "error", err)
		} else {
			a.cache = m
			capability = ai.NewCached(capability, m, cfg.Models())
		}
	}

	a.oracle = ai.NewOracle(capability)
	return a, nil
}

// format is the PCM layout of generated audio.
func (a *app) format() wav.Format {
	f := wav.DefaultFormat()
	f.SampleRate = a.cfg.Audio.SampleRate
	return f
}

// engine opens the configured playback engine.
func (a *app) engine(backend playback.Backend) (playback.Engine, error) {
	e, err := playback.New(backend, a.format())
	if err != nil {
		return nil, fmt.Errorf("unable to open audio output: %w", err)
	}
	return e, nil
}

func (a *app) poem(arg string) (poems.Poem, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(arg, "#"))
	if err != nil {
		return poems.Poem{}, fmt.Errorf("invalid poem id %q", arg)
	}
	return a.catalog.ByID(id)
}

func (a *app) Close() error {
	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if n := a.registry.Len(); n > 0 {
		log.Debug("Resources still registered at exit", "count", n)
	}
	return errors.Join(errs...)
}

// runSync runs a command and its follow-ups on the calling goroutine, the
// way the subcommands drive the trackers without a Bubble Tea program.
func runSync(cmd tea.Cmd, update func(tea.Msg) tea.Cmd) tea.Msg {
	var last tea.Msg
	for cmd != nil {
		last = cmd()
		if last == nil {
			return nil
		}
		cmd = update(last)
	}
	return last
}

// timeout is the bound for one generation request.
func (a *app) timeout() time.Duration { return a.cfg.AI.Timeout }
