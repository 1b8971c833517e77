// Package config holds the typed application configuration. Values come
// from viper, which merges the config file, GAIA_* environment variables and
// command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/freespirits/gaia/internal/ai"
	"github.com/freespirits/gaia/internal/cache"
	"github.com/freespirits/gaia/internal/playback"
	"github.com/freespirits/gaia/internal/poems"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"
)

// AppName names the config file, directories and environment prefix.
const AppName = "gaia"

// Config is the application configuration.
type Config struct {
	// Language of the poems and the AI output. Empty means detect from the
	// locale.
	Language string `mapstructure:"language"`
	// Catalog is an optional YAML file replacing the embedded poems.
	Catalog string       `mapstructure:"catalog"`
	AI      AIConfig     `mapstructure:"ai"`
	Audio   AudioConfig  `mapstructure:"audio"`
	Export  ExportConfig `mapstructure:"export"`
	Cache   CacheConfig  `mapstructure:"cache"`
}

// AIConfig configures the generation service.
type AIConfig struct {
	Provider    string        `mapstructure:"provider"`
	APIKey      string        `mapstructure:"api_key"`
	Voice       string        `mapstructure:"voice"`
	Temperature float64       `mapstructure:"temperature"`
	MinInterval time.Duration `mapstructure:"min_interval"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Models      ModelsConfig  `mapstructure:"models"`
}

// ModelsConfig names the model per output kind.
type ModelsConfig struct {
	Text  string `mapstructure:"text"`
	Audio string `mapstructure:"audio"`
	Image string `mapstructure:"image"`
}

// AudioConfig configures playback.
type AudioConfig struct {
	// Backend is auto, beep, oto or silent.
	Backend  string        `mapstructure:"backend"`
	SeekStep time.Duration `mapstructure:"seek_step"`
	// SampleRate of the PCM the audio model returns.
	SampleRate int `mapstructure:"sample_rate"`
}

// ExportConfig configures where downloads go.
type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

// CacheConfig configures the artifact cache.
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Dir      string        `mapstructure:"dir"`
	MemoryMB int           `mapstructure:"memory_mb"`
	DiskMB   int           `mapstructure:"disk_mb"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// SetDefaults registers the default values with v.
func SetDefaults(v *viper.Viper) {
	models := ai.DefaultModels()
	gemini := ai.DefaultGeminiConfig()

	v.SetDefault("language", "")
	v.SetDefault("catalog", "")

	v.SetDefault("ai.provider", string(ai.ProviderGemini))
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.voice", gemini.Voice)
	v.SetDefault("ai.temperature", float64(gemini.Temperature))
	v.SetDefault("ai.min_interval", gemini.MinInterval)
	v.SetDefault("ai.timeout", 2*time.Minute)
	v.SetDefault("ai.models.text", models.Text)
	v.SetDefault("ai.models.audio", models.Audio)
	v.SetDefault("ai.models.image", models.Image)

	v.SetDefault("audio.backend", string(playback.BackendAuto))
	v.SetDefault("audio.seek_step", 5*time.Second)
	v.SetDefault("audio.sample_rate", 24000)

	v.SetDefault("export.dir", ".")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.memory_mb", 64)
	v.SetDefault("cache.disk_mb", 512)
	v.SetDefault("cache.ttl", 30*24*time.Hour)
}

// Load decodes v into a Config, fills in derived values and validates it.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unable to decode configuration: %w", err)
	}

	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = firstEnv("GEMINI_API_KEY", "API_KEY")
	}
	if cfg.Language == "" {
		cfg.Language = string(poems.DetectLanguage(os.Getenv("LC_ALL"), os.Getenv("LC_MESSAGES"), os.Getenv("LANG")))
	}
	cfg.Catalog = expandPath(cfg.Catalog)
	cfg.Export.Dir = expandPath(cfg.Export.Dir)
	cfg.Cache.Dir = expandPath(cfg.Cache.Dir)
	if cfg.Cache.Enabled && cfg.Cache.Dir == "" {
		dir, err := gap.NewScope(gap.User, AppName).CacheDir()
		if err != nil {
			return cfg, fmt.Errorf("unable to find cache directory: %w", err)
		}
		cfg.Cache.Dir = filepath.Join(dir, "artifacts")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	var errs []error

	if _, err := poems.ParseLanguage(c.Language); err != nil {
		errs = append(errs, err)
	}
	if _, err := ai.ParseProvider(c.AI.Provider); err != nil {
		errs = append(errs, err)
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		errs = append(errs, fmt.Errorf("ai.temperature must be between 0 and 2, got %.2f", c.AI.Temperature))
	}
	if c.AI.MinInterval < 0 {
		errs = append(errs, fmt.Errorf("ai.min_interval must not be negative, got %s", c.AI.MinInterval))
	}
	if c.AI.Timeout < 0 {
		errs = append(errs, fmt.Errorf("ai.timeout must not be negative, got %s", c.AI.Timeout))
	}
	if c.AI.Models.Text == "" || c.AI.Models.Audio == "" || c.AI.Models.Image == "" {
		errs = append(errs, errors.New("ai.models must name a text, audio and image model"))
	}
	if _, err := playback.ParseBackend(c.Audio.Backend); err != nil {
		errs = append(errs, err)
	}
	if c.Audio.SeekStep <= 0 {
		errs = append(errs, fmt.Errorf("audio.seek_step must be positive, got %s", c.Audio.SeekStep))
	}
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		errs = append(errs, fmt.Errorf("audio.sample_rate must be between 8000 and 192000, got %d", c.Audio.SampleRate))
	}
	if c.Cache.Enabled {
		if c.Cache.MemoryMB < 1 || c.Cache.MemoryMB > 4096 {
			errs = append(errs, fmt.Errorf("cache.memory_mb must be between 1 and 4096, got %d", c.Cache.MemoryMB))
		}
		if c.Cache.DiskMB < 0 || c.Cache.DiskMB > 100000 {
			errs = append(errs, fmt.Errorf("cache.disk_mb must be between 0 and 100000, got %d", c.Cache.DiskMB))
		}
		if c.Cache.TTL < 0 {
			errs = append(errs, fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL))
		}
	}

	return errors.Join(errs...)
}

// Lang returns the configured language. Call after Validate.
func (c Config) Lang() poems.Language {
	l, err := poems.ParseLanguage(c.Language)
	if err != nil {
		return poems.DefaultLanguage
	}
	return l
}

// Provider returns the configured AI provider.
func (c Config) Provider() ai.Provider {
	p, err := ai.ParseProvider(c.AI.Provider)
	if err != nil {
		return ai.ProviderGemini
	}
	return p
}

// Backend returns the configured playback backend.
func (c Config) Backend() playback.Backend {
	b, err := playback.ParseBackend(c.Audio.Backend)
	if err != nil {
		return playback.BackendAuto
	}
	return b
}

// Models returns the configured models.
func (c Config) Models() ai.Models {
	return ai.Models{Text: c.AI.Models.Text, Audio: c.AI.Models.Audio, Image: c.AI.Models.Image}
}

// Gemini returns the Gemini capability settings.
func (c Config) Gemini() ai.GeminiConfig {
	return ai.GeminiConfig{
		APIKey:      c.AI.APIKey,
		Models:      c.Models(),
		Voice:       c.AI.Voice,
		Temperature: float32(c.AI.Temperature),
		MinInterval: c.AI.MinInterval,
	}
}

// CacheConfig returns the artifact cache settings. ok is false when the
// cache is disabled.
func (c Config) CacheConfig() (cfg cache.Config, ok bool) {
	if !c.Cache.Enabled {
		return cache.Config{}, false
	}
	cfg = cache.DefaultConfig(c.Cache.Dir)
	cfg.MemoryCapacity = int64(c.Cache.MemoryMB) << 20
	cfg.DiskCapacity = int64(c.Cache.DiskMB) << 20
	cfg.TTL = c.Cache.TTL
	if c.Cache.DiskMB == 0 {
		cfg.Dir = ""
	}
	return cfg, true
}

// HasAPIKey reports whether a credential is configured.
func (c Config) HasAPIKey() bool { return strings.TrimSpace(c.AI.APIKey) != "" }

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

// expandPath replaces a leading ~ with the home directory and expands
// environment variables.
func expandPath(path string) string {
	if path == "" {
		return ""
	}
	path = os.ExpandEnv(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return path
}
