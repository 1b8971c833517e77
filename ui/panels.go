package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/log"
	"github.com/freespirits/gaia/internal/poems"
	"github.com/freespirits/gaia/internal/session"
	"github.com/freespirits/gaia/internal/studio"
	"github.com/muesli/reflow/truncate"
)

// COMMANDS

func (m *readerModel) renderPoem() tea.Cmd {
	md := m.poem.Markdown(m.common.cfg.Language, m.common.labels)
	return m.renderWithGlamour(viewPoem, md)
}

func (m *readerModel) renderChat() tea.Cmd {
	if !m.loaded {
		return nil
	}
	md := chatMarkdown(m.chat.Turns(), m.chat.Pending(), m.common.labels)
	return m.renderWithGlamour(viewChat, md)
}

func (m *readerModel) renderWithGlamour(view readerView, md string) tea.Cmd {
	var (
		id    = m.poem.ID
		cfg   = m.common.cfg
		width = max(0, min(int(cfg.GlamourMaxWidth), m.viewport.Width)) //nolint:gosec
	)
	return func() tea.Msg {
		s, err := glamourRender(cfg, width, md)
		if err != nil {
			log.Error("error rendering with Glamour", "error", err)
			return errMsg{err}
		}
		return contentRenderedMsg{poemID: id, view: view, content: s}
	}
}

func glamourRender(cfg Config, width int, markdown string) (string, error) {
	if !cfg.GlamourEnabled {
		return markdown, nil
	}

	r, err := glamour.NewTermRenderer(
		glamourStyle(cfg.GlamourStyle),
		glamour.WithWordWrap(width),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return "", fmt.Errorf("error creating glamour renderer: %w", err)
	}

	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("error rendering markdown: %w", err)
	}
	return strings.TrimRight(out, "\n"), nil
}

// chatMarkdown lays out the conversation: questions as quotes, answers
// under the oracle's name.
func chatMarkdown(turns []studio.Turn, pending bool, labels poems.Labels) string {
	var b strings.Builder
	for _, t := range turns {
		switch t.Role {
		case studio.User:
			for _, line := range strings.Split(t.Text, "\n") {
				fmt.Fprintf(&b, "> %s\n", line)
			}
			b.WriteString("\n")
		case studio.Oracle:
			fmt.Fprintf(&b, "**%s**\n\n%s\n\n", labels.ChatTitle, t.Text)
		}
	}
	if pending {
		fmt.Fprintf(&b, "_%s_\n", labels.Loading)
	}
	return b.String()
}

// VIEWS

func (m readerModel) poemPanelView() string {
	if !m.loaded {
		return strings.Repeat("\n", poemPanelHeight-1)
	}
	rows := []string{m.audioRow(), m.artRow(), m.infographicRow()}
	for i, r := range rows {
		rows[i] = truncate.StringWithTail(" "+r, uint(max(0, m.common.width)), ellipsis) //nolint:gosec
	}
	return strings.Join(rows, "\n") + "\n"
}

func (m readerModel) audioRow() string {
	labels := m.common.labels.Audio
	st := m.audio.State()

	title := titleStyle.Render("♪ " + labels.Title)
	switch st.Status {
	case session.StatusGenerating:
		return title + "  " + m.spinner.View() + " " + subtleStyle.Render(labels.Generating)
	case session.StatusReady:
		icon := "▶"
		if st.Playing() {
			icon = "❚❚"
		}
		clock := fmt.Sprintf("%s / %s", session.Clock(st.CurrentTime), session.Clock(st.Duration))
		return fmt.Sprintf("%s  %s %s %s", title, keyStyle.Render(icon), m.progress.ViewAs(st.Progress()), subtleStyle.Render(clock))
	default:
		return title + "  " + hint("space", labels.Button)
	}
}

func (m readerModel) artRow() string {
	labels := m.common.labels.Art
	title := titleStyle.Render("✦ " + labels.Title)
	style := subtleStyle.Render(labels.Styles[string(m.art.Style())]) + " " + keyStyle.Render("(s)")

	switch m.art.Status() {
	case studio.Loading:
		return title + "  " + m.spinner.View() + " " + subtleStyle.Render(labels.Generating)
	case studio.Ready:
		return title + "  " + readyView(m.art) + "  " + hint("a", labels.Generate) + " · " + style
	case studio.Failed:
		return title + "  " + failStyle.Render("✗") + " " + hint("a", labels.Generate) + " · " + style
	default:
		return title + "  " + hint("a", labels.Generate) + " · " + style
	}
}

func (m readerModel) infographicRow() string {
	labels := m.common.labels.Infographic
	if !m.infographicShown {
		return titleStyle.Render("◈ "+labels.Button) + "  " + hint("i", labels.Subtitle)
	}

	title := titleStyle.Render("◈ " + labels.Title)
	switch m.infographic.Status() {
	case studio.Loading:
		return title + "  " + m.spinner.View() + " " + subtleStyle.Render(labels.Generating)
	case studio.Ready:
		return title + "  " + readyView(m.infographic)
	case studio.Failed:
		return title + "  " + failStyle.Render("✗") + " " + hint("i", labels.Generate)
	default:
		return title + "  " + subtleStyle.Render(labels.Note) + " " + hint("i", labels.Generate)
	}
}

func (m readerModel) chatPanelView() string {
	var status string
	if m.loaded && m.chat.Pending() {
		status = " " + m.spinner.View() + " " + subtleStyle.Render(m.common.labels.Loading)
	} else {
		send := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", m.common.labels.AskAI))
		leave := key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", m.common.labels.Back))
		status = " " + m.help.ShortHelpView([]key.Binding{send, keys.CopyAnswer, leave})
	}
	return " " + m.input.View() + "\n" + status + "\n"
}

func readyView(f *studio.Feature) string {
	return keyStyle.Render("✓") + " " + f.FileName() + " " + hint("x", "")
}

func hint(k, desc string) string {
	s := keyStyle.Render(k)
	if desc != "" {
		s += " " + subtleStyle.Render(desc)
	}
	return s
}
