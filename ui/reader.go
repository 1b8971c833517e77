package ui

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/freespirits/gaia/internal/playback"
	"github.com/freespirits/gaia/internal/poems"
	"github.com/freespirits/gaia/internal/session"
	"github.com/freespirits/gaia/internal/studio"
	"github.com/muesli/termenv"
)

type readerView int

const (
	viewPoem readerView = iota
	viewChat
)

// Lines below the viewport: a divider plus the panel rows.
const (
	poemPanelHeight = 4
	chatPanelHeight = 3
)

type contentRenderedMsg struct {
	poemID  int
	view    readerView
	content string
}

// readerModel is the poem view. It owns the trackers of the poem on
// screen; they are created when a poem is opened and closed when the
// view is left.
type readerModel struct {
	common   *commonModel
	poem     poems.Poem
	loaded   bool
	view     readerView
	showHelp bool

	viewport    viewport.Model
	poemContent string
	chatContent string

	audio       *session.Controller
	art         *studio.Feature
	infographic *studio.Feature
	chat        *studio.Dialogue

	// The infographic panel is revealed before anything is generated.
	infographicShown bool

	input    textinput.Model
	spinner  spinner.Model
	spinning bool
	progress progress.Model
	help     help.Model
}

func newReaderModel(common *commonModel) readerModel {
	vp := viewport.New(0, 0)
	vp.YPosition = 0

	ti := textinput.New()
	ti.Placeholder = common.labels.AIPlaceholder
	ti.Prompt = "› "
	ti.PromptStyle = keyStyle
	ti.CharLimit = 500

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(keyStyle))

	pr := progress.New(progress.WithGradient("#6B5412", "#D4AF37"), progress.WithoutPercentage())

	return readerModel{
		common:   common,
		viewport: vp,
		input:    ti,
		spinner:  sp,
		progress: pr,
		help:     help.New(),
	}
}

// open shows p, creating the trackers on first use and moving them to p
// afterwards.
func (m *readerModel) open(p poems.Poem) tea.Cmd {
	deps, cfg := m.common.deps, m.common.cfg
	lang := cfg.Language

	if !m.loaded {
		m.audio = session.New(p, lang, deps.Oracle, deps.Engine, deps.Registry,
			session.WithFormat(deps.Format),
			session.WithTimeout(cfg.Timeout),
		)
		m.art = studio.NewFeature(studio.Art, p, lang, deps.Oracle, deps.Registry)
		m.art.SetTimeout(cfg.Timeout)
		m.infographic = studio.NewFeature(studio.Infographic, p, lang, deps.Oracle, deps.Registry)
		m.infographic.SetTimeout(cfg.Timeout)
		m.chat = studio.NewDialogue(p, lang, deps.Oracle)
		m.chat.SetTimeout(cfg.Timeout)
		m.loaded = true
	} else {
		m.audio.PoemChanged(p)
		m.art.PoemChanged(p)
		m.infographic.PoemChanged(p)
		m.chat.PoemChanged(p)
	}
	log.Debug("Opening poem", "poem", p.ID)

	m.poem = p
	m.infographicShown = false
	m.poemContent, m.chatContent = "", ""
	m.input.Reset()
	m.leaveChat()
	m.viewport.GotoTop()
	return tea.Batch(m.renderPoem(), m.renderChat())
}

// refresh re-renders p after a catalog reload without touching the
// trackers.
func (m *readerModel) refresh(p poems.Poem) tea.Cmd {
	m.poem = p
	return m.renderPoem()
}

// unload closes the trackers, releasing every generated resource.
func (m *readerModel) unload() {
	if !m.loaded {
		return
	}
	log.Debug("Closing poem", "poem", m.poem.ID)
	m.audio.Close()
	m.art.Close()
	m.infographic.Close()
	m.audio, m.art, m.infographic, m.chat = nil, nil, nil, nil
	m.loaded = false
	m.showHelp = false
	m.leaveChat()
}

func (m *readerModel) setSize(w, h int) tea.Cmd {
	panel := poemPanelHeight
	if m.view == viewChat {
		panel = chatPanelHeight
	}
	helpHeight := 0
	if m.showHelp {
		helpHeight = strings.Count(m.helpView(), "\n") + 1
	}

	resized := w != m.viewport.Width
	m.viewport.Width = w
	m.viewport.Height = max(0, h-statusBarHeight-panel-helpHeight)
	m.input.Width = max(0, w-4)
	m.progress.Width = max(10, min(40, w-30))
	m.help.Width = max(0, w-2)

	if !m.loaded || !resized {
		return nil
	}
	return tea.Batch(m.renderPoem(), m.renderChat())
}

func (m readerModel) typing() bool {
	return m.view == viewChat
}

func (m *readerModel) enterChat() {
	m.view = viewChat
	m.input.Focus()
	m.viewport.SetContent(m.chatContent)
	m.viewport.GotoBottom()
	m.setSize(m.common.width, m.common.height)
}

func (m *readerModel) leaveChat() {
	m.view = viewPoem
	m.input.Blur()
	m.viewport.SetContent(m.poemContent)
	m.setSize(m.common.width, m.common.height)
}

// loading reports whether any tracker waits for the AI.
func (m readerModel) loading() bool {
	if !m.loaded {
		return false
	}
	return m.audio.State().Status == session.StatusGenerating ||
		m.art.Status() == studio.Loading ||
		m.infographic.Status() == studio.Loading ||
		m.chat.Pending()
}

func (m *readerModel) spin(cmd tea.Cmd) tea.Cmd {
	if cmd == nil || m.spinning {
		return cmd
	}
	m.spinning = true
	return tea.Batch(cmd, m.spinner.Tick)
}

func (m *readerModel) update(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.loaded {
			return nil
		}
		if m.view == viewChat {
			return m.updateChat(msg)
		}
		if cmd, handled := m.handleKey(msg); handled {
			return cmd
		}

	case contentRenderedMsg:
		if !m.loaded || msg.poemID != m.poem.ID {
			return nil
		}
		if msg.view == viewChat {
			m.chatContent = msg.content
		} else {
			m.poemContent = msg.content
		}
		if msg.view == m.view {
			m.viewport.SetContent(msg.content)
			if m.view == viewChat {
				m.viewport.GotoBottom()
			}
		}
		return nil

	case spinner.TickMsg:
		if !m.loading() {
			m.spinning = false
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd

	case session.GeneratedMsg, playback.Event:
		if m.loaded {
			return m.audio.Update(msg)
		}
		return nil

	case session.ReadyMsg:
		if m.loaded && msg.PoemID == m.poem.ID {
			return m.common.showStatusMessage(statusMessage{text: m.common.labels.Audio.Listen + " (space)"})
		}
		return nil

	case session.RevealMsg:
		if m.loaded && msg.PoemID == m.poem.ID {
			m.leaveChat()
			return m.common.showStatusMessage(statusMessage{text: m.common.labels.Audio.Title})
		}
		return nil

	case session.FailedMsg:
		if m.loaded && msg.PoemID == m.poem.ID {
			return m.common.showError("%s: %v", m.common.labels.Audio.Button, msg.Err)
		}
		return nil

	case studio.ImageMsg:
		if m.loaded {
			return tea.Batch(m.art.Update(msg), m.infographic.Update(msg))
		}
		return nil

	case studio.ImageReadyMsg:
		if m.loaded && msg.PoemID == m.poem.ID {
			download := m.common.labels.Art.Download
			if msg.Kind == studio.Infographic {
				download = m.common.labels.Infographic.Download
			}
			return m.common.showStatusMessage(statusMessage{text: download + " (x)"})
		}
		return nil

	case studio.ImageFailedMsg:
		if m.loaded && msg.PoemID == m.poem.ID {
			return m.common.showError("Unable to generate the %s, try again", msg.Kind)
		}
		return nil

	case studio.AnswerMsg:
		if m.loaded {
			m.chat.Update(msg)
			return m.renderChat()
		}
		return nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	if m.view == viewChat {
		// Cursor blinks
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// handleKey runs poem view commands. Unhandled keys scroll the viewport.
func (m *readerModel) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	labels := m.common.labels

	switch {
	case key.Matches(msg, keys.Back):
		return func() tea.Msg { return backMsg{} }, true

	case key.Matches(msg, keys.Next), key.Matches(msg, keys.Prev):
		prev, next, err := m.common.catalog.Neighbours(m.poem.ID)
		if err != nil {
			return m.common.showError("%v", err), true
		}
		if key.Matches(msg, keys.Next) {
			return m.open(next), true
		}
		return m.open(prev), true

	case key.Matches(msg, keys.Chat):
		m.enterChat()
		return textinput.Blink, true

	case key.Matches(msg, keys.Copy):
		p, lang := m.poem, m.common.cfg.Language
		text := p.Title.In(lang) + "\n\n" + p.Content.In(lang) + "\n\n" + p.OriginalGerman
		return m.copy(text, labels.Copied), true

	case key.Matches(msg, keys.Listen):
		if !m.audio.State().Ready() {
			return m.spin(m.audio.Request()), true
		}
		if err := m.audio.Toggle(); err != nil {
			return m.common.showError("%v", err), true
		}
		return nil, true

	case key.Matches(msg, keys.Rewind), key.Matches(msg, keys.Forward):
		st := m.audio.State()
		if !st.Ready() {
			return nil, true
		}
		step := m.common.cfg.seekStep()
		if key.Matches(msg, keys.Rewind) {
			step = -step
		}
		if err := m.audio.Seek(st.Clamp(st.CurrentTime + step)); err != nil {
			return m.common.showError("%v", err), true
		}
		return nil, true

	case key.Matches(msg, keys.Art):
		return m.spin(m.art.Request()), true

	case key.Matches(msg, keys.Style):
		next := m.art.Style().Next()
		m.art.SetStyle(next)
		return m.common.showStatusMessage(statusMessage{
			text: labels.Art.SelectStyle + ": " + labels.Art.Styles[string(next)],
		}), true

	case key.Matches(msg, keys.Diagram):
		if !m.infographicShown {
			m.infographicShown = true
			return nil, true
		}
		return m.spin(m.infographic.Request()), true

	case key.Matches(msg, keys.Export):
		return m.export(), true

	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
		m.setSize(m.common.width, m.common.height)
		return nil, true
	}
	return nil, false
}

func (m *readerModel) updateChat(msg tea.KeyMsg) tea.Cmd {
	switch {
	case msg.String() == "esc":
		m.leaveChat()
		return nil

	case key.Matches(msg, keys.Send):
		cmd := m.chat.Ask(m.input.Value())
		if cmd == nil {
			return nil
		}
		m.input.Reset()
		return tea.Batch(m.spin(cmd), m.renderChat())

	case key.Matches(msg, keys.CopyAnswer):
		answer, ok := m.chat.LastAnswer()
		if !ok {
			return nil
		}
		return m.copy(studio.PlainText(answer), m.common.labels.ResponseCopied)

	case msg.Type == tea.KeyUp, msg.Type == tea.KeyDown, msg.Type == tea.KeyPgUp, msg.Type == tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// copy puts s on the clipboard through OSC 52 and the system clipboard.
func (m *readerModel) copy(s, done string) tea.Cmd {
	if m.common.cfg.ClipboardEnabled {
		termenv.Copy(s)
		if err := clipboard.WriteAll(s); err != nil {
			log.Debug("System clipboard unavailable", "error", err)
		}
	}
	return m.common.showStatusMessage(statusMessage{text: done})
}

// export writes every generated file of the poem into the export
// directory.
func (m *readerModel) export() tea.Cmd {
	dir := m.common.cfg.ExportDir
	var (
		saved []string
		errs  []error
	)
	keep := func(path string, err error) {
		if err != nil {
			errs = append(errs, err)
			return
		}
		saved = append(saved, filepath.Base(path))
	}

	if m.audio.State().Ready() {
		keep(m.audio.Export(dir))
	}
	for _, f := range []*studio.Feature{m.art, m.infographic} {
		if !f.Handle().IsZero() {
			keep(f.Export(dir))
		}
	}

	if err := errors.Join(errs...); err != nil {
		log.Error("Export failed", "dir", dir, "error", err)
		return m.common.showError("%v", err)
	}
	if len(saved) == 0 {
		return m.common.showError("Nothing generated yet")
	}
	log.Info("Exported", "dir", dir, "files", saved)
	return m.common.showStatusMessage(statusMessage{text: m.common.labels.Export + ": " + strings.Join(saved, ", ")})
}

func (m readerModel) View() string {
	var b strings.Builder
	fmt.Fprint(&b, m.viewport.View()+"\n")
	fmt.Fprint(&b, dividerStyle.Render(strings.Repeat("─", max(0, m.common.width)))+"\n")

	if m.view == viewChat {
		fmt.Fprint(&b, m.chatPanelView())
	} else {
		fmt.Fprint(&b, m.poemPanelView())
	}

	percent := math.Max(0, math.Min(1, m.viewport.ScrollPercent()))
	statusBarView(&b, m.common, m.note(), fmt.Sprintf("%3.f%%", percent*100))

	if m.showHelp {
		fmt.Fprint(&b, "\n"+m.helpView())
	}
	return b.String()
}

func (m readerModel) note() string {
	note := fmt.Sprintf("#%d %s", m.poem.ID, m.poem.Title.In(m.common.cfg.Language))
	if m.view == viewChat {
		note += " · " + m.common.labels.ChatTitle
	}
	return note
}

func (m readerModel) helpView() string {
	if m.view == viewChat {
		leave := key.NewBinding(key.WithHelp("esc", "back to poem"))
		scroll := key.NewBinding(key.WithHelp("↑/↓", "scroll"))
		return padHelp(helpColumns(
			[]key.Binding{keys.Send, keys.CopyAnswer},
			[]key.Binding{scroll, leave},
		), m.common.width)
	}
	return padHelp(helpColumns(
		[]key.Binding{keys.Listen, keys.Rewind, keys.Forward, keys.Art, keys.Style, keys.Diagram, keys.Export},
		[]key.Binding{keys.Next, keys.Prev, keys.Chat, keys.Copy, keys.Back, keys.Help, keys.Quit},
	), m.common.width)
}
