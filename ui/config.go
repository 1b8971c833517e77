package ui

import (
	"time"

	"github.com/freespirits/gaia/internal/poems"
)

// Config contains TUI-specific configuration.
type Config struct {
	GlamourMaxWidth uint
	GlamourStyle    string `env:"GLAMOUR_STYLE"`
	EnableMouse     bool

	Language    poems.Language
	ExportDir   string
	SeekStep    time.Duration
	Timeout     time.Duration
	CatalogPath string // Watched for edits when set

	// For debugging the UI
	GlamourEnabled   bool `env:"GAIA_ENABLE_GLAMOUR"   envDefault:"true"`
	ClipboardEnabled bool `env:"GAIA_ENABLE_CLIPBOARD" envDefault:"true"`
}

func (c Config) seekStep() time.Duration {
	if c.SeekStep <= 0 {
		return 5 * time.Second
	}
	return c.SeekStep
}
