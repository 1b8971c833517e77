// Package ui is the terminal reader: a library of poems and a poem view
// with the audio summary, the generated pictures and the analysis chat.
package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/freespirits/gaia/internal/playback"
	"github.com/freespirits/gaia/internal/poems"
	"github.com/freespirits/gaia/internal/resource"
	"github.com/freespirits/gaia/internal/session"
	"github.com/freespirits/gaia/internal/studio"
	"github.com/freespirits/gaia/internal/wav"
)

const (
	statusBarHeight      = 1
	statusMessageTimeout = time.Second * 3 // how long to show status messages like "copied!"
)

// Oracle is everything the poem view asks the AI for.
type Oracle interface {
	session.AudioSource
	studio.ImageSource
	studio.Analyst
}

// Deps are the services the TUI drives. The caller owns them and closes
// them after the program exits.
type Deps struct {
	Catalog  *poems.Catalog
	Oracle   Oracle
	Engine   playback.Engine
	Registry *resource.Registry
	Format   wav.Format
}

// NewProgram returns a new Tea program.
func NewProgram(cfg Config, deps Deps) *tea.Program {
	log.Debug(
		"Starting gaia",
		"language", cfg.Language,
		"glamour", cfg.GlamourEnabled,
		"catalog", cfg.CatalogPath,
	)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	m := newModel(cfg, deps)
	return tea.NewProgram(m, opts...)
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

type (
	openPoemMsg struct{ poem poems.Poem }
	backMsg     struct{}

	catalogReloadedMsg struct {
		catalog *poems.Catalog
		err     error
	}

	statusMessageTimeoutMsg int
)

type state int

const (
	stateShowLibrary state = iota
	stateShowPoem
)

func (s state) String() string {
	return map[state]string{
		stateShowLibrary: "showing library",
		stateShowPoem:    "showing poem",
	}[s]
}

type statusMessage struct {
	text string
	err  bool
}

// Common stuff we'll need to access in all models.
type commonModel struct {
	cfg     Config
	deps    Deps
	catalog *poems.Catalog
	labels  poems.Labels
	width   int
	height  int

	status    statusMessage
	statusSeq int
}

func (c *commonModel) showingStatus() bool { return c.status.text != "" }

// showStatusMessage replaces the status bar note for a few seconds.
func (c *commonModel) showStatusMessage(msg statusMessage) tea.Cmd {
	c.status = msg
	c.statusSeq++
	seq := c.statusSeq
	return tea.Tick(statusMessageTimeout, func(time.Time) tea.Msg {
		return statusMessageTimeoutMsg(seq)
	})
}

func (c *commonModel) showError(format string, args ...any) tea.Cmd {
	return c.showStatusMessage(statusMessage{text: fmt.Sprintf(format, args...), err: true})
}

type model struct {
	common   *commonModel
	state    state
	fatalErr error

	library libraryModel
	reader  readerModel

	watcher *poems.Watcher
}

func newModel(cfg Config, deps Deps) tea.Model {
	if !cfg.Language.Valid() {
		cfg.Language = poems.DefaultLanguage
	}
	if deps.Catalog == nil {
		deps.Catalog = poems.Default()
	}
	if deps.Registry == nil {
		deps.Registry = resource.NewRegistry()
	}
	if deps.Format.SampleRate == 0 {
		deps.Format = wav.DefaultFormat()
	}
	if deps.Engine == nil {
		deps.Engine = playback.NewSilent(deps.Format)
	}

	common := &commonModel{
		cfg:     cfg,
		deps:    deps,
		catalog: deps.Catalog,
		labels:  poems.LabelsFor(cfg.Language),
	}

	m := model{
		common:  common,
		state:   stateShowLibrary,
		library: newLibraryModel(common),
		reader:  newReaderModel(common),
	}

	if cfg.CatalogPath != "" {
		w, err := poems.Watch(cfg.CatalogPath)
		if err != nil {
			log.Warn("Unable to watch catalog", "path", cfg.CatalogPath, "error", err)
		} else {
			m.watcher = w
		}
	}
	return m
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{playback.WaitForEvent(m.common.deps.Engine)}
	if m.watcher != nil {
		cmds = append(cmds, watchCatalog(m.watcher))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// If there's been an error, any key exits
	if m.fatalErr != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, m.quit()
		}
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		if msg.String() == "q" && !m.typing() {
			return m, m.quit()
		}

	case tea.WindowSizeMsg:
		m.common.width = msg.Width
		m.common.height = msg.Height
		m.library.setSize(msg.Width, msg.Height)
		cmds = append(cmds, m.reader.setSize(msg.Width, msg.Height))
		return m, tea.Batch(cmds...)

	case errMsg:
		m.fatalErr = msg
		return m, nil

	case statusMessageTimeoutMsg:
		if int(msg) == m.common.statusSeq {
			m.common.status = statusMessage{}
		}
		return m, nil

	case playback.Event:
		cmds = append(cmds, m.reader.update(msg), playback.WaitForEvent(m.common.deps.Engine))
		return m, tea.Batch(cmds...)

	case catalogReloadedMsg:
		cmds = append(cmds, m.catalogReloaded(msg), watchCatalog(m.watcher))
		return m, tea.Batch(cmds...)

	case openPoemMsg:
		m.state = stateShowPoem
		return m, m.reader.open(msg.poem)

	case backMsg:
		m.reader.unload()
		m.state = stateShowLibrary
		return m, nil
	}

	// Keys go to the visible view; everything else to both, since results
	// of background work arrive whatever is on screen.
	switch msg.(type) {
	case tea.KeyMsg, tea.MouseMsg:
		if m.state == stateShowPoem {
			cmds = append(cmds, m.reader.update(msg))
		} else {
			cmds = append(cmds, m.library.update(msg))
		}
	default:
		cmds = append(cmds, m.library.update(msg), m.reader.update(msg))
	}
	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	if m.fatalErr != nil {
		return errorView(m.fatalErr, true)
	}
	if m.state == stateShowPoem {
		return m.reader.View()
	}
	return m.library.View()
}

// typing reports whether keys are text input rather than commands.
func (m model) typing() bool {
	if m.state == stateShowPoem {
		return m.reader.typing()
	}
	return m.library.typing()
}

func (m *model) quit() tea.Cmd {
	m.reader.unload()
	if m.watcher != nil {
		if err := m.watcher.Close(); err != nil {
			log.Debug("Unable to close catalog watcher", "error", err)
		}
	}
	return tea.Quit
}

func (m *model) catalogReloaded(msg catalogReloadedMsg) tea.Cmd {
	if msg.err != nil {
		log.Warn("Ignoring invalid catalog", "path", m.common.cfg.CatalogPath, "error", msg.err)
		return m.common.showError("Catalog not reloaded: %v", msg.err)
	}

	log.Info("Catalog reloaded", "path", m.common.cfg.CatalogPath, "poems", msg.catalog.Len())
	m.common.catalog = msg.catalog
	cmds := []tea.Cmd{m.library.refresh()}

	if m.state == stateShowPoem {
		p, err := msg.catalog.ByID(m.reader.poem.ID)
		if err != nil {
			m.reader.unload()
			m.state = stateShowLibrary
			cmds = append(cmds, m.common.showError("Poem %d was removed from the catalog", m.reader.poem.ID))
			return tea.Batch(cmds...)
		}
		cmds = append(cmds, m.reader.refresh(p))
	}
	cmds = append(cmds, m.common.showStatusMessage(statusMessage{text: "Catalog reloaded"}))
	return tea.Batch(cmds...)
}

// COMMANDS

func watchCatalog(w *poems.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		c, err := w.Next()
		if errors.Is(err, poems.ErrWatcherClosed) {
			return nil
		}
		return catalogReloadedMsg{catalog: c, err: err}
	}
}

// ETC

func errorView(err error, fatal bool) string {
	exitMsg := "press any key to "
	if fatal {
		exitMsg += "exit"
	} else {
		exitMsg += "return"
	}
	s := fmt.Sprintf("%s\n\n%v\n\n%s",
		errorTitleStyle.Render("ERROR"),
		err,
		subtleStyle.Render(exitMsg),
	)
	return "\n" + indent(s, 3)
}

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for j, v := range l {
		b.WriteString(i + v)
		if j+1 < len(l) {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
