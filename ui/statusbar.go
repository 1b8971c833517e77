package ui

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
)

// statusBarView writes the logo, the note (or the current status message),
// a position indicator and the help hint.
func statusBarView(b *strings.Builder, common *commonModel, note, position string) {
	showStatusMessage := common.showingStatus()

	logo := logoView()

	position = " " + position + " "
	helpNote := " ? Help "
	if showStatusMessage {
		position = statusBarMessageStyle(position)
		helpNote = statusBarMessageHelpStyle(helpNote)
	} else {
		position = statusBarPosStyle(position)
		helpNote = statusBarHelpStyle(helpNote)
	}

	style := statusBarNoteStyle
	if showStatusMessage {
		note = common.status.text
		style = statusBarMessageStyle
		if common.status.err {
			style = statusBarErrorStyle
		}
	}
	note = truncate.StringWithTail(" "+note+" ", uint(max(0, //nolint:gosec
		common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(position)-
			ansi.PrintableRuneWidth(helpNote),
	)), ellipsis)
	note = style(note)

	// Empty space
	padding := max(0,
		common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(position)-
			ansi.PrintableRuneWidth(helpNote),
	)
	emptySpace := style(strings.Repeat(" ", padding))

	fmt.Fprintf(b, "%s%s%s%s%s",
		logo,
		note,
		emptySpace,
		position,
		helpNote,
	)
}
