package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/freespirits/gaia/internal/cache"
	"github.com/freespirits/gaia/internal/export"
	"github.com/freespirits/gaia/internal/wav"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	wavIn       string
	wavOut      string
	wavFormat   = wav.DefaultFormat()
	cacheDetail bool

	wavCmd = &cobra.Command{
		Use:   "wav",
		Short: "Wrap raw 16-bit PCM in a WAV container",
		Long: paragraph(fmt.Sprintf("\n%s raw little-endian PCM, as returned by the audio model, "+
			"with a 44-byte RIFF header so any player can open it.", keyword("Wrap"))),
		Example: paragraph("gaia wav --in summary.pcm --out summary.wav\ncat summary.pcm | gaia wav --rate 48000 > summary.wav"),
		Args:    cobra.NoArgs,
		// Pure conversion; configuration problems do not matter here.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(*cobra.Command, []string) error {
			var (
				payload []byte
				err     error
			)
			if wavIn == "" || wavIn == "-" {
				payload, err = io.ReadAll(os.Stdin)
			} else {
				payload, err = os.ReadFile(wavIn)
			}
			if err != nil {
				return fmt.Errorf("unable to read PCM: %w", err)
			}
			if wavFormat.SampleRate <= 0 || wavFormat.Channels <= 0 || wavFormat.BitsPerSample <= 0 || wavFormat.BitsPerSample%8 != 0 {
				return fmt.Errorf("invalid format %s", wavFormat)
			}

			container := wav.Synthesize(payload, wavFormat)
			if wavOut == "" || wavOut == "-" {
				_, err := os.Stdout.Write(container)
				return err //nolint:wrapcheck
			}
			path, err := export.Write(filepath.Dir(wavOut), filepath.Base(wavOut), container)
			if err != nil {
				return err //nolint:wrapcheck
			}
			fmt.Fprintf(os.Stderr, "%s %s (%s, %s)\n", keyword("Wrote"), path,
				humanize.Bytes(uint64(len(container))), wavFormat.Duration(len(payload)).Round(time.Millisecond))
			return nil
		},
	}

	cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the generated artifact cache",
		Args:  cobra.NoArgs,
	}

	cacheStatsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show cache usage",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			m, err := openCache()
			if err != nil {
				return err
			}
			defer m.Close() //nolint:errcheck

			st := m.Stats()
			fmt.Printf("%s %s\n", keyword("Directory"), m.Dir())
			fmt.Printf("%s %d items, %s of %s\n", keyword("Disk"),
				st.Disk.Items, humanize.Bytes(uint64(st.Disk.Size)), humanize.Bytes(uint64(st.Disk.Capacity))) //nolint:gosec
			if !cacheDetail {
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Key", "Type", "Size", "Stored", "Last used", "Hits"})
			for _, e := range m.Entries() {
				t.AppendRow(table.Row{
					e.Key, e.MIMEType,
					humanize.Bytes(uint64(e.Size)), //nolint:gosec
					humanize.Time(e.Created), humanize.Time(e.LastAccess), e.Hits,
				})
			}
			t.Render()
			return nil
		},
	}

	cacheClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached artifact",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			m, err := openCache()
			if err != nil {
				return err
			}
			defer m.Close() //nolint:errcheck

			n := len(m.Entries())
			if err := m.Clear(); err != nil {
				return err //nolint:wrapcheck
			}
			fmt.Printf("%s %d artifacts from %s\n", keyword("Removed"), n, m.Dir())
			return nil
		},
	}

	cachePruneCmd = &cobra.Command{
		Use:   "prune",
		Short: "Delete artifacts older than cache.ttl",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			m, err := openCache()
			if err != nil {
				return err
			}
			defer m.Close() //nolint:errcheck

			fmt.Printf("%s %d expired artifacts\n", keyword("Removed"), m.Prune())
			return nil
		},
	}
)

func openCache() (*cache.Manager, error) {
	cc, ok := cfg.CacheConfig()
	if !ok || cc.Dir == "" {
		return nil, errors.New("the disk cache is disabled: set cache.enabled and cache.disk_mb")
	}
	// One-shot commands do not need the background pruning.
	cc.CleanupInterval = 0
	m, err := cache.NewManager(cc)
	if err != nil {
		return nil, fmt.Errorf("unable to open cache: %w", err)
	}
	return m, nil
}

func init() {
	wavCmd.Flags().StringVarP(&wavIn, "in", "i", "", "raw PCM file (default stdin)")
	wavCmd.Flags().StringVarP(&wavOut, "out", "o", "", "WAV file to write (default stdout)")
	wavCmd.Flags().IntVar(&wavFormat.SampleRate, "rate", wavFormat.SampleRate, "sample rate in Hz")
	wavCmd.Flags().IntVar(&wavFormat.Channels, "channels", wavFormat.Channels, "number of interleaved channels")
	wavCmd.Flags().IntVar(&wavFormat.BitsPerSample, "bits", wavFormat.BitsPerSample, "bits per sample")

	cacheStatsCmd.Flags().BoolVar(&cacheDetail, "entries", false, "list every cached artifact")
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd, cachePruneCmd)
}
