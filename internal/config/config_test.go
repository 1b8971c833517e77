package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/freespirits/gaia/internal/ai"
	"github.com/freespirits/gaia/internal/playback"
	"github.com/freespirits/gaia/internal/poems"
	"github.com/spf13/viper"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "")

	v := viper.New()
	SetDefaults(v)
	v.Set("cache.dir", t.TempDir())
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Lang() != poems.DefaultLanguage {
		t.Errorf("expected default language, got %s", cfg.Lang())
	}
	if cfg.Provider() != ai.ProviderGemini {
		t.Errorf("expected gemini, got %s", cfg.Provider())
	}
	if cfg.Backend() != playback.BackendAuto {
		t.Errorf("expected auto backend, got %s", cfg.Backend())
	}
	if cfg.Models() != ai.DefaultModels() {
		t.Errorf("unexpected models %+v", cfg.Models())
	}
	if cfg.HasAPIKey() {
		t.Error("expected no API key")
	}

	g := cfg.Gemini()
	if g.Voice != "Puck" || g.Temperature != 0.7 || g.MinInterval != time.Second {
		t.Errorf("unexpected gemini settings %+v", g)
	}

	c, ok := cfg.CacheConfig()
	if !ok {
		t.Fatal("expected the cache to be enabled")
	}
	if c.MemoryCapacity != 64<<20 || c.DiskCapacity != 512<<20 || c.Dir == "" {
		t.Errorf("unexpected cache settings %+v", c)
	}
}

func TestLoadOverrides(t *testing.T) {
	v := newViper(t)
	v.Set("language", "es_AR.UTF-8")
	v.Set("ai.provider", "mock")
	v.Set("ai.min_interval", "250ms")
	v.Set("audio.backend", "silent")
	v.Set("audio.seek_step", "10s")
	v.Set("cache.disk_mb", 0)

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Lang() != poems.Spanish {
		t.Errorf("expected es, got %s", cfg.Lang())
	}
	if cfg.Provider() != ai.ProviderMock {
		t.Errorf("expected mock, got %s", cfg.Provider())
	}
	if cfg.AI.MinInterval != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %s", cfg.AI.MinInterval)
	}
	if cfg.Backend() != playback.BackendSilent || cfg.Audio.SeekStep != 10*time.Second {
		t.Errorf("unexpected audio settings %+v", cfg.Audio)
	}
	if c, _ := cfg.CacheConfig(); c.Dir != "" {
		t.Errorf("expected memory-only cache, got dir %q", c.Dir)
	}
}

func TestAPIKeyFallback(t *testing.T) {
	tests := []struct {
		name   string
		config string
		gemini string
		apiKey string
		want   string
	}{
		{name: "config wins", config: "cfg", gemini: "gem", apiKey: "api", want: "cfg"},
		{name: "gemini env", gemini: "gem", apiKey: "api", want: "gem"},
		{name: "generic env", apiKey: "api", want: "api"},
		{name: "none", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper(t)
			t.Setenv("GEMINI_API_KEY", tt.gemini)
			t.Setenv("API_KEY", tt.apiKey)
			v.Set("ai.api_key", tt.config)

			cfg, err := Load(v)
			if err != nil {
				t.Fatal(err)
			}
			if cfg.AI.APIKey != tt.want {
				t.Errorf("expected key %q, got %q", tt.want, cfg.AI.APIKey)
			}
		})
	}
}

func TestLanguageDetection(t *testing.T) {
	v := newViper(t)
	t.Setenv("LANG", "en_US.UTF-8")

	cfg, err := Load(v)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Lang() != poems.English {
		t.Errorf("expected en from $LANG, got %s", cfg.Lang())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
		want  string
	}{
		{"language", "language", "de", "unsupported language"},
		{"provider", "ai.provider", "openai", "unknown AI provider"},
		{"temperature", "ai.temperature", 3.5, "ai.temperature"},
		{"backend", "audio.backend", "alsa", "unknown audio backend"},
		{"seek step", "audio.seek_step", "0s", "audio.seek_step"},
		{"sample rate", "audio.sample_rate", 100, "audio.sample_rate"},
		{"memory", "cache.memory_mb", 0, "cache.memory_mb"},
		{"model", "ai.models.image", "", "ai.models"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper(t)
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("GAIA_TEST_DIR", "/srv/poems")

	tests := map[string]string{
		"":                      "",
		"~":                     home,
		"~/exports":             filepath.Join(home, "exports"),
		"$GAIA_TEST_DIR/a.yaml": "/srv/poems/a.yaml",
		"relative/dir":          "relative/dir",
	}
	for in, want := range tests {
		if got := expandPath(in); got != want {
			t.Errorf("expandPath(%q) = %q, want %q", in, got, want)
		}
	}
}
