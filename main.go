// Package main provides the entry point for the gaia CLI application.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	"github.com/freespirits/gaia/internal/config"
	"github.com/freespirits/gaia/ui"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	style      string
	width      uint
	mouse      bool
	debug      bool

	cfg config.Config

	rootCmd = &cobra.Command{
		Use:   "gaia",
		Short: "Read Nietzsche's Joke, Cunning and Revenge with an AI companion",
		Long: paragraph(
			fmt.Sprintf("\nRead the prelude of %s in Portuguese, English or Spanish, "+
				"and ask an AI about each poem: analysis, a spoken summary, art and an infographic.",
				keyword("The Gay Science")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: func(*cobra.Command, []string) error {
			return runTUI()
		},
	}
)

func validateOptions(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
	}

	width = viper.GetUint("width")
	mouse = viper.GetBool("mouse")
	debug = viper.GetBool("debug")
	style = viper.GetString("style")

	if debug {
		log.SetLevel(log.DebugLevel)
	}

	var err error
	if cfg, err = config.Load(viper.GetViper()); err != nil {
		return err
	}

	isTerminal := term.IsTerminal(int(os.Stdout.Fd()))
	if !isTerminal && !cmd.Flags().Changed("style") {
		style = styles.NoTTYStyle
	}

	// Detect terminal width
	if !cmd.Flags().Changed("width") { //nolint:nestif
		if isTerminal && width == 0 {
			w, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err == nil {
				width = uint(w) //nolint:gosec
			}

			if width > 100 {
				width = 100
			}
		}
		if width == 0 {
			width = 80
		}
	}
	return nil
}

func runTUI() error {
	// Read environment to get debugging stuff
	uiCfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	if uiCfg.GlamourStyle == "" {
		uiCfg.GlamourStyle = style
	}
	uiCfg.GlamourMaxWidth = width
	uiCfg.EnableMouse = mouse
	uiCfg.Language = cfg.Lang()
	uiCfg.ExportDir = cfg.Export.Dir
	uiCfg.SeekStep = cfg.Audio.SeekStep
	uiCfg.Timeout = cfg.AI.Timeout
	uiCfg.CatalogPath = cfg.Catalog

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	engine, err := a.engine(cfg.Backend())
	if err != nil {
		return err
	}
	defer engine.Close() //nolint:errcheck

	deps := ui.Deps{
		Catalog:  a.catalog,
		Oracle:   a.oracle,
		Engine:   engine,
		Registry: a.registry,
		Format:   a.format(),
	}

	// Run Bubble Tea program
	if _, err := ui.NewProgram(uiCfg, deps).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	flags.StringP("language", "l", "", "language of poems and answers: pt, en or es (default from locale)")
	flags.String("provider", "", "AI provider: gemini or mock")
	flags.String("audio", "", "audio backend: auto, beep, oto or silent")
	flags.StringVarP(&style, "style", "s", styles.AutoStyle, "glamour style name or JSON path")
	flags.UintVarP(&width, "width", "w", 0, "word-wrap at width (set to 0 to detect)")
	flags.BoolVar(&debug, "debug", false, "log debug messages")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse wheel")
	_ = rootCmd.Flags().MarkHidden("mouse")

	// Config bindings
	_ = viper.BindPFlag("language", flags.Lookup("language"))
	_ = viper.BindPFlag("ai.provider", flags.Lookup("provider"))
	_ = viper.BindPFlag("audio.backend", flags.Lookup("audio"))
	_ = viper.BindPFlag("style", flags.Lookup("style"))
	_ = viper.BindPFlag("width", flags.Lookup("width"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))

	viper.SetDefault("style", styles.AutoStyle)
	viper.SetDefault("width", 0)
	config.SetDefaults(viper.GetViper())

	rootCmd.AddCommand(
		configCmd, manCmd,
		listCmd, showCmd, findCmd, askCmd,
		listenCmd, artCmd, infographicCmd,
		wavCmd, cacheCmd,
	)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, config.AppName)
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, config.AppName)}, dirs...)
	}

	if c := os.Getenv("GAIA_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName(config.AppName)
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix(config.AppName)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], config.AppName+".yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
