package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/editor"
	"github.com/freespirits/gaia/internal/config"
	"github.com/freespirits/gaia/internal/export"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# language of poems and AI answers: pt, en or es (empty: detect from locale)
language: ""
# optional YAML catalog replacing the built-in poems; reloaded when it changes
catalog: ""
# glamour style name or JSON path (default "auto")
style: "auto"
# word-wrap at width (0: detect)
width: 0
# mouse wheel support in the TUI
mouse: false

ai:
  # gemini or mock (offline, deterministic)
  provider: "gemini"
  # also read from GAIA_AI_API_KEY, GEMINI_API_KEY or API_KEY
  api_key: ""
  voice: "Puck"
  temperature: 0.7
  # minimum time between two calls to the service
  min_interval: "1s"
  timeout: "2m"
  models:
    text: "gemini-2.5-flash"
    audio: "gemini-2.5-flash-native-audio-preview-09-2025"
    image: "gemini-2.5-flash-image"

audio:
  # auto, beep, oto or silent
  backend: "auto"
  seek_step: "5s"
  # sample rate of the PCM returned by the audio model
  sample_rate: 24000

export:
  # where downloads are written
  dir: "."

cache:
  enabled: true
  # empty: the user cache directory
  dir: ""
  memory_mb: 64
  disk_mb: 512
  ttl: "720h"
`

var (
	printConfigPath bool

	configCmd = &cobra.Command{
		Use:     "config",
		Hidden:  false,
		Short:   "Edit the gaia config file",
		Long:    paragraph(fmt.Sprintf("\n%s the gaia config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
		Example: paragraph("gaia config\ngaia config --path\ngaia config --config path/to/gaia.yml"),
		Args:    cobra.NoArgs,
		// A broken config file must stay editable.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(*cobra.Command, []string) error {
			if err := ensureConfigFile(); err != nil {
				return err
			}
			if printConfigPath {
				fmt.Println(configFile)
				return nil
			}

			c, err := editor.Cmd("Gaia", configFile)
			if err != nil {
				return fmt.Errorf("unable to set config file: %w", err)
			}
			c.Stdin = os.Stdin
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			if err := c.Run(); err != nil {
				return fmt.Errorf("unable to run command: %w", err)
			}

			viper.SetConfigFile(configFile)
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("config file is not valid YAML: %w", err)
			}
			if _, err := config.Load(viper.GetViper()); err != nil {
				return err //nolint:wrapcheck
			}

			fmt.Println("Wrote config file to:", configFile)
			return nil
		},
	}
)

func init() {
	configCmd.Flags().BoolVar(&printConfigPath, "path", false, "print the config file path and exit")
}

// ensureConfigFile writes the default configuration to configFile unless a
// file is already there.
func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
	}
	if configFile == "" {
		return errors.New("no configuration file location")
	}

	if ext := filepath.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	switch _, err := os.Stat(configFile); {
	case errors.Is(err, fs.ErrNotExist):
		if _, err := export.Write(filepath.Dir(configFile), filepath.Base(configFile), []byte(defaultConfig)); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
		log.Info("Wrote default configuration", "path", configFile)
	case err != nil:
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
