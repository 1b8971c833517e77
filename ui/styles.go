package ui

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const ellipsis = "…"

var (
	gold      = lipgloss.AdaptiveColor{Light: "#9A7B1C", Dark: "#D4AF37"}
	paleGold  = lipgloss.AdaptiveColor{Light: "#F5E9C4", Dark: "#F5E9C4"}
	darkGold  = lipgloss.AdaptiveColor{Light: "#6B5412", Dark: "#6B5412"}
	red       = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	gray      = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}
	midGray   = lipgloss.AdaptiveColor{Light: "#B2B2B2", Dark: "#4A4A4A"}
	stoneGray = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}

	statusBarNoteFg = stoneGray
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}

	logoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1B1B1B")).
			Background(gold).
			Bold(true).
			Render

	statusBarPosStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#949494", Dark: "#5A5A5A"}).
				Background(statusBarBg).
				Render

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(statusBarBg).
				Render

	statusBarHelpStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"}).
				Render

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(paleGold).
				Background(darkGold).
				Render

	statusBarMessageHelpStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("#1B1B1B")).
					Background(gold).
					Render

	statusBarErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFDF5")).
				Background(red).
				Render

	helpViewStyle = lipgloss.NewStyle().
			Foreground(statusBarNoteFg).
			Background(lipgloss.AdaptiveColor{Light: "#f2f2f2", Dark: "#1B1B1B"}).
			Render

	errorTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(red).
			Padding(0, 1)

	titleStyle    = lipgloss.NewStyle().Foreground(gold).Bold(true)
	subtleStyle   = lipgloss.NewStyle().Foreground(gray)
	dividerStyle  = lipgloss.NewStyle().Foreground(midGray)
	keyStyle      = lipgloss.NewStyle().Foreground(gold)
	questionStyle = lipgloss.NewStyle().Foreground(gold).Italic(true)
	failStyle     = lipgloss.NewStyle().Foreground(red)

	activeTabStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#1B1B1B")).Background(gold).Padding(0, 1)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(gray).Padding(0, 1)
)

func logoView() string {
	return logoStyle(" Γ ")
}

// glamourStyle resolves the configured style name. The auto style follows
// the terminal background.
func glamourStyle(name string) glamour.TermRendererOption {
	switch name {
	case "":
		return glamour.WithStandardStyle(styles.NoTTYStyle)
	case styles.AutoStyle:
	default:
		return glamour.WithStylePath(name)
	}
	if termenv.HasDarkBackground() {
		return glamour.WithStandardStyle(styles.DarkStyle)
	}
	return glamour.WithStandardStyle(styles.LightStyle)
}
