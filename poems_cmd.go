package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/freespirits/gaia/internal/poems"
	"github.com/freespirits/gaia/internal/studio"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/reflow/truncate"
	"github.com/spf13/cobra"
)

var (
	listCategory string
	askPlain     bool

	listCmd = &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the poems",
		Example: paragraph("gaia list\ngaia list --category wisdom -l en"),
		Args:    cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			category, err := poems.ParseCategory(listCategory)
			if err != nil {
				return err //nolint:wrapcheck
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck

			renderPoemTable(a.catalog.Filter(category), cfg.Lang())
			return nil
		},
	}

	showCmd = &cobra.Command{
		Use:     "show ID",
		Short:   "Render a poem with its German original",
		Example: paragraph("gaia show 3\ngaia show 3 -l es"),
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
			lang := cfg.Lang()
			out, err := render(p.Markdown(lang, poems.LabelsFor(lang)))
			if err != nil {
				return fmt.Errorf("unable to render markdown: %w", err)
			}
			fmt.Print(out)
			return nil
		},
	}

	findCmd = &cobra.Command{
		Use:     "find QUERY",
		Short:   "Fuzzy-search poem titles and first lines",
		Example: paragraph("gaia find star\ngaia find 'sábio' -l pt"),
		Args:    cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck

			lang := cfg.Lang()
			matches := a.catalog.Search(strings.Join(args, " "), lang)
			if len(matches) == 0 {
				return fmt.Errorf("no poem matches %q", strings.Join(args, " "))
			}
			for _, m := range matches {
				fmt.Printf("%4d  %s\n", m.Poem.ID, highlight(poems.SearchTarget(m.Poem, lang), m.Matched))
			}
			return nil
		},
	}

	askCmd = &cobra.Command{
		Use:     "ask ID QUESTION",
		Short:   "Ask the AI about a poem",
		Example: paragraph("gaia ask 3 \"What is the star's morality?\""),
		Args:    cobra.MinimumNArgs(2),
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
			ctx, cancel := context.WithTimeout(context.Background(), a.timeout())
			defer cancel()

			answer := a.oracle.RequestAnalysis(ctx, p, strings.Join(args[1:], " "), cfg.Lang())
			if askPlain {
				fmt.Println(studio.PlainText(answer))
				return nil
			}
			out, err := render(answer)
			if err != nil {
				return fmt.Errorf("unable to render markdown: %w", err)
			}
			fmt.Print(out)
			return nil
		},
	}
)

func renderPoemTable(list []poems.Poem, lang poems.Language) {
	labels := poems.LabelsFor(lang)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.SetAllowedRowLength(int(width)) //nolint:gosec
	t.AppendHeader(table.Row{"#", "", labels.Poems, ""})

	for _, p := range list {
		first := truncate.StringWithTail(p.FirstLine(lang), 40, "…")
		t.AppendRow(table.Row{p.ID, labels.Category(p.Category), p.Title.In(lang), faint(first)})
	}
	t.Render()
}

// highlight renders the matched rune positions of s as keywords.
func highlight(s string, matched []int) string {
	if len(matched) == 0 {
		return s
	}
	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}

	var b strings.Builder
	for i, r := range s {
		if hit[i] {
			b.WriteString(keyword(string(r)))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func init() {
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "only poems in category: wisdom, life_fate, art_truth, morality_critique")
	askCmd.Flags().BoolVar(&askPlain, "plain", false, "print the answer without markdown formatting")
}
