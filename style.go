package main

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

var (
	keyword   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Render
	faint     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}).Render
	paragraph = lipgloss.NewStyle().Width(78).Padding(0, 0, 0, 2).Render
)

func glamourStyle(s string) glamour.TermRendererOption {
	if s == styles.AutoStyle {
		return glamour.WithAutoStyle()
	}
	return glamour.WithStylePath(s)
}

// render renders markdown for stdout at the detected width.
func render(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithColorProfile(lipgloss.ColorProfile()),
		glamourStyle(style),
		glamour.WithWordWrap(int(width)), //nolint:gosec
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return "", err //nolint:wrapcheck
	}
	return r.Render(md) //nolint:wrapcheck
}
