package main

import (
	"fmt"

	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"
)

var manCmd = &cobra.Command{
	Use:                   "man",
	Short:                 "Generate man pages",
	Args:                  cobra.NoArgs,
	DisableFlagsInUseLine: true,
	Hidden:                true,
	PersistentPreRunE:     func(*cobra.Command, []string) error { return nil },
	RunE: func(*cobra.Command, []string) error {
		manPage, err := mcobra.NewManPage(1, rootCmd)
		if err != nil {
			return err //nolint:wrapcheck
		}

		manPage = manPage.WithSection("Copyright", "Poems: Friedrich Nietzsche, Die fröhliche Wissenschaft (1882), public domain.")
		fmt.Println(manPage.Build(roff.NewDocument()))
		return nil
	},
}
