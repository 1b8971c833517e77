package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	runewidth "github.com/mattn/go-runewidth"
)

type keyMap struct {
	Quit     key.Binding
	Help     key.Binding
	Back     key.Binding
	Open     key.Binding
	Category key.Binding

	Next    key.Binding
	Prev    key.Binding
	Chat    key.Binding
	Copy    key.Binding
	Export  key.Binding
	Listen  key.Binding
	Rewind  key.Binding
	Forward key.Binding
	Art     key.Binding
	Style   key.Binding
	Diagram key.Binding

	Send       key.Binding
	CopyAnswer key.Binding
}

var keys = keyMap{
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
	Back:     key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back to poems")),
	Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "read poem")),
	Category: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next category")),

	Next:    key.NewBinding(key.WithKeys("n", "l"), key.WithHelp("n", "next poem")),
	Prev:    key.NewBinding(key.WithKeys("p", "h"), key.WithHelp("p", "previous poem")),
	Chat:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "ask the AI")),
	Copy:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy poem")),
	Export:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "save generated files")),
	Listen:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "summary play/pause")),
	Rewind:  key.NewBinding(key.WithKeys("left", ","), key.WithHelp("←", "rewind")),
	Forward: key.NewBinding(key.WithKeys("right", "."), key.WithHelp("→", "forward")),
	Art:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "paint")),
	Style:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "next art style")),
	Diagram: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "infographic")),

	Send:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
	CopyAnswer: key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy answer")),
}

// helpColumns lays out bindings in two columns of "key  description".
func helpColumns(left, right []key.Binding) string {
	const keyWidth, colWidth = 8, 28

	cell := func(b key.Binding, w int) string {
		h := b.Help()
		k := h.Key + strings.Repeat(" ", max(1, keyWidth-runewidth.StringWidth(h.Key)))
		s := k + h.Desc
		return s + strings.Repeat(" ", max(0, w-runewidth.StringWidth(s)))
	}

	var b strings.Builder
	for i := 0; i < max(len(left), len(right)); i++ {
		b.WriteString("\n")
		if i < len(left) {
			b.WriteString(cell(left[i], colWidth))
		} else {
			b.WriteString(strings.Repeat(" ", colWidth))
		}
		if i < len(right) {
			b.WriteString(cell(right[i], 0))
		}
	}
	return b.String()
}

// padHelp fills every line to width so the background covers it.
func padHelp(s string, width int) string {
	s = indent(s, 2)
	if width <= 0 {
		return helpViewStyle(s)
	}
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] += strings.Repeat(" ", max(width-runewidth.StringWidth(lines[i]), 0))
	}
	return helpViewStyle(strings.Join(lines, "\n"))
}
