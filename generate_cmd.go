package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/freespirits/gaia/internal/ai"
	"github.com/freespirits/gaia/internal/playback"
	"github.com/freespirits/gaia/internal/poems"
	"github.com/freespirits/gaia/internal/session"
	"github.com/freespirits/gaia/internal/studio"
	"github.com/spf13/cobra"
)

var (
	outDir     string
	listenPlay bool
	artStyle   string

	listenCmd = &cobra.Command{
		Use:     "listen ID",
		Short:   "Generate a spoken summary of a poem and save it as WAV",
		Example: paragraph("gaia listen 3\ngaia listen 3 --play --out ~/Music"),
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck

			p, err := a.poem(args[0])
			if err != nil {
				return err
			}

			backend := playback.BackendSilent
			if listenPlay {
				backend = cfg.Backend()
			}
			engine, err := a.engine(backend)
			if err != nil {
				return err
			}
			defer engine.Close() //nolint:errcheck

			lang := cfg.Lang()
			c := session.New(p, lang, a.oracle, engine, a.registry,
				session.WithFormat(a.format()),
				session.WithTimeout(a.timeout()),
			)
			defer c.Close()

			fmt.Fprintln(os.Stderr, faint(poems.LabelsFor(lang).Audio.Generating))
			if msg := runSync(c.Request(), c.Update); !isReady(msg) {
				return generationError(msg, "audio summary")
			}

			path, err := c.Export(exportDir())
			if err != nil {
				return err //nolint:wrapcheck
			}
			info, _ := a.registry.Info(c.State().Resource)
			fmt.Printf("%s %s (%s)\n", keyword("Wrote"), path, humanize.Bytes(uint64(info.Size))) //nolint:gosec

			if listenPlay {
				return play(c, engine)
			}
			return nil
		},
	}

	artCmd = &cobra.Command{
		Use:     "art ID",
		Short:   "Paint a poem in one of the art styles",
		Example: paragraph("gaia art 3\ngaia art 3 --art-style cyberpunk --out ~/Pictures"),
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			style, err := ai.ParseStyle(artStyle)
			if err != nil {
				return err //nolint:wrapcheck
			}
			return generateImage(args[0], studio.Art, style)
		},
	}

	infographicCmd = &cobra.Command{
		Use:     "infographic ID",
		Short:   "Draw a concept map of a poem",
		Example: paragraph("gaia infographic 3 -l pt"),
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return generateImage(args[0], studio.Infographic, "")
		},
	}
)

func generateImage(arg string, kind studio.Kind, style ai.Style) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	p, err := a.poem(arg)
	if err != nil {
		return err
	}

	lang := cfg.Lang()
	labels := poems.LabelsFor(lang)
	f := studio.NewFeature(kind, p, lang, a.oracle, a.registry)
	f.SetTimeout(a.timeout())
	defer f.Close()

	generating := labels.Infographic.Generating
	if kind == studio.Art {
		f.SetStyle(style)
		generating = labels.Art.Generating
	}
	fmt.Fprintln(os.Stderr, faint(generating))

	msg := runSync(f.Request(), f.Update)
	if _, ok := msg.(studio.ImageReadyMsg); !ok {
		return fmt.Errorf("%s generation failed for poem %d, see the log for details", kind, p.ID)
	}

	path, err := f.Export(exportDir())
	if err != nil {
		return err //nolint:wrapcheck
	}
	fmt.Printf("%s %s\n", keyword("Wrote"), path)
	return nil
}

func isReady(msg tea.Msg) bool {
	_, ok := msg.(session.ReadyMsg)
	return ok
}

func generationError(msg tea.Msg, what string) error {
	if m, ok := msg.(session.FailedMsg); ok {
		if errors.Is(m.Err, session.ErrGenerationFailed) {
			return fmt.Errorf("%s generation failed for poem %d, see the log for details", what, m.PoemID)
		}
		return fmt.Errorf("%s for poem %d: %w", what, m.PoemID, m.Err)
	}
	return fmt.Errorf("%s generation failed", what)
}

// play plays the loaded summary to the end, printing the clock.
func play(c *session.Controller, engine playback.Engine) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := c.Play(); err != nil {
		return err //nolint:wrapcheck
	}
	defer fmt.Println()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-engine.Events():
			if !ok {
				return nil
			}
			c.Update(ev)
			st := c.State()
			fmt.Printf("\r%s / %s", session.Clock(st.CurrentTime), session.Clock(st.Duration))
			if _, ended := ev.(playback.Ended); ended {
				log.Debug("Playback finished", "poem", st.PoemID)
				return nil
			}
		}
	}
}

func exportDir() string {
	if outDir != "" {
		return outDir
	}
	return cfg.Export.Dir
}

func init() {
	for _, c := range []*cobra.Command{listenCmd, artCmd, infographicCmd} {
		c.Flags().StringVarP(&outDir, "out", "o", "", "directory to write the file to (default export.dir)")
	}
	listenCmd.Flags().BoolVarP(&listenPlay, "play", "p", false, "play the summary after saving it")
	artCmd.Flags().StringVarP(&artStyle, "art-style", "a", string(ai.DefaultStyle), "art style: surrealism, expressionism, oil, oil_expressive, sketch, cyberpunk")
}
