package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/freespirits/gaia/internal/ai"
	"github.com/freespirits/gaia/internal/playback"
	"github.com/freespirits/gaia/internal/poems"
	"github.com/freespirits/gaia/internal/resource"
	"github.com/freespirits/gaia/internal/session"
	"github.com/freespirits/gaia/internal/studio"
	"github.com/freespirits/gaia/internal/wav"
)

func newTestModel(t *testing.T) model {
	t.Helper()

	f := wav.DefaultFormat()
	engine := playback.NewSilent(f)
	t.Cleanup(func() { _ = engine.Close() })

	cfg := Config{
		Language:  poems.English,
		ExportDir: t.TempDir(),
		SeekStep:  time.Second,
		Timeout:   5 * time.Second,
	}
	deps := Deps{
		Catalog:  poems.Default(),
		Oracle:   ai.NewOracle(ai.NewMock()),
		Engine:   engine,
		Registry: resource.NewRegistry(),
		Format:   f,
	}

	m := newModel(cfg, deps).(model) //nolint:forcetypeassert
	return send(m, tea.WindowSizeMsg{Width: 100, Height: 40})
}

// send delivers msg and then runs the resulting commands the way the
// Bubble Tea runtime would. Commands that block (timers, engine
// listeners, cursor blinks) are abandoned.
func send(m model, msg tea.Msg) model {
	next, cmd := m.Update(msg)
	return run(next.(model), cmd) //nolint:forcetypeassert
}

func run(m model, cmd tea.Cmd) model {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg, ok := exec(c)
		if !ok {
			continue
		}
		switch msg := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case nil, spinner.TickMsg, statusMessageTimeoutMsg, tea.QuitMsg:
		default:
			next, c := m.Update(msg)
			m = next.(model) //nolint:forcetypeassert
			queue = append(queue, c)
		}
	}
	return m
}

func exec(c tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- c() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(200 * time.Millisecond):
		return nil, false
	}
}

func press(m model, keys ...string) model {
	for _, k := range keys {
		m = send(m, keyMsg(k))
	}
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func typeText(m model, s string) model {
	for _, r := range s {
		m = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestOpenAndLeavePoem(t *testing.T) {
	m := newTestModel(t)
	first := m.common.catalog.All()[0]

	m = press(m, "enter")
	if m.state != stateShowPoem {
		t.Fatalf("expected %s, got %s", stateShowPoem, m.state)
	}
	if !m.reader.loaded || m.reader.poem.ID != first.ID {
		t.Fatalf("expected poem %d to be open", first.ID)
	}
	if m.reader.poemContent == "" {
		t.Error("expected the poem to be rendered")
	}
	if !strings.Contains(m.View(), first.Title.In(poems.English)) {
		t.Error("expected the title in the view")
	}

	m = press(m, "esc")
	if m.state != stateShowLibrary {
		t.Fatalf("expected %s, got %s", stateShowLibrary, m.state)
	}
	if m.reader.loaded || m.reader.audio != nil {
		t.Error("expected the trackers to be closed")
	}
}

func TestCategoryCycle(t *testing.T) {
	m := newTestModel(t)

	m = press(m, "tab")
	if m.library.category != poems.Wisdom {
		t.Fatalf("expected %s, got %s", poems.Wisdom, m.library.category)
	}
	for _, item := range m.library.list.Items() {
		if c := item.(poemItem).poem.Category; c != poems.Wisdom { //nolint:forcetypeassert
			t.Errorf("unexpected %s poem in %s", c, poems.Wisdom)
		}
	}

	for range poems.Categories {
		m = press(m, "tab")
	}
	if m.library.category != poems.All {
		t.Errorf("expected to wrap around to %s, got %s", poems.All, m.library.category)
	}
	if got, want := len(m.library.list.Items()), m.common.catalog.Len(); got != want {
		t.Errorf("expected %d items, got %d", want, got)
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected q to quit from the library")
	}
}

func TestAudioSummary(t *testing.T) {
	m := press(newTestModel(t), "enter")

	// Seeking before anything is generated does nothing.
	m = press(m, "right")
	if m.reader.audio.State().Status != session.StatusAbsent {
		t.Fatalf("expected absent audio, got %s", m.reader.audio.State())
	}

	m = press(m, " ")
	st := m.reader.audio.State()
	if !st.Ready() {
		t.Fatalf("expected ready audio, got %s", st)
	}
	if st.Playing() {
		t.Error("new summaries start paused")
	}
	if m.common.status.text == "" {
		t.Error("expected a status message")
	}

	m = send(m, playback.MetadataLoaded{Handle: st.Resource, Duration: 3 * time.Second})
	m = press(m, " ")
	if !m.reader.audio.State().Playing() {
		t.Error("expected space to play")
	}
	m = press(m, " ")
	if m.reader.audio.State().Playing() {
		t.Error("expected space to pause")
	}

	m = press(m, "right", "right")
	if got := m.reader.audio.State().CurrentTime; got != 2*time.Second {
		t.Errorf("expected 2s, got %s", got)
	}
	m = press(m, "right", "right")
	if got := m.reader.audio.State().CurrentTime; got != 3*time.Second {
		t.Errorf("expected seeking to clamp at 3s, got %s", got)
	}
	m = press(m, "left", "left", "left", "left")
	if got := m.reader.audio.State().CurrentTime; got != 0 {
		t.Errorf("expected seeking to clamp at 0, got %s", got)
	}
	if m.common.status.err {
		t.Errorf("unexpected error %q", m.common.status.text)
	}
}

func TestNextPoemResetsTrackers(t *testing.T) {
	m := press(newTestModel(t), "enter")
	first := m.reader.poem

	m = press(m, " ", "a", "i", "i")
	if !m.reader.audio.State().Ready() || m.reader.art.Status() != studio.Ready || m.reader.infographic.Status() != studio.Ready {
		t.Fatal("expected every artifact to be ready")
	}
	if n := m.common.deps.Registry.Len(); n != 3 {
		t.Fatalf("expected 3 registered resources, got %d", n)
	}

	m = press(m, "n")
	_, next, _ := m.common.catalog.Neighbours(first.ID)
	if m.reader.poem.ID != next.ID {
		t.Fatalf("expected poem %d, got %d", next.ID, m.reader.poem.ID)
	}
	if m.reader.audio.State().Status != session.StatusAbsent {
		t.Error("expected the audio to be dropped")
	}
	if m.reader.art.Status() != studio.Idle || m.reader.infographic.Status() != studio.Idle {
		t.Error("expected the pictures to be dropped")
	}
	if m.reader.infographicShown {
		t.Error("expected the infographic panel to be hidden")
	}
	if n := m.common.deps.Registry.Len(); n != 0 {
		t.Errorf("expected every resource to be revoked, got %d", n)
	}

	m = press(m, "p")
	if m.reader.poem.ID != first.ID {
		t.Errorf("expected to be back at poem %d, got %d", first.ID, m.reader.poem.ID)
	}
}

func TestStaleArtIsDropped(t *testing.T) {
	m := press(newTestModel(t), "enter")

	next, pending := m.Update(keyMsg("a"))
	m = next.(model) //nolint:forcetypeassert
	if m.reader.art.Status() != studio.Loading {
		t.Fatalf("expected loading, got %s", m.reader.art.Status())
	}

	m = press(m, "n")
	m = run(m, pending)
	if m.reader.art.Status() != studio.Idle || !m.reader.art.Handle().IsZero() {
		t.Errorf("expected the old poem's art to be dropped, got %s", m.reader.art.Status())
	}
	if n := m.common.deps.Registry.Len(); n != 0 {
		t.Errorf("expected no resources, got %d", n)
	}
}

func TestInfographicReveal(t *testing.T) {
	m := press(newTestModel(t), "enter")

	m = press(m, "i")
	if !m.reader.infographicShown {
		t.Fatal("expected the panel to be revealed")
	}
	if m.reader.infographic.Status() != studio.Idle {
		t.Fatalf("revealing must not generate, got %s", m.reader.infographic.Status())
	}
	if !strings.Contains(m.View(), m.common.labels.Infographic.Note) {
		t.Error("expected the note in the view")
	}

	m = press(m, "i")
	if m.reader.infographic.Status() != studio.Ready {
		t.Errorf("expected ready, got %s", m.reader.infographic.Status())
	}
}

func TestArtStyle(t *testing.T) {
	m := press(newTestModel(t), "enter", "s")
	if got := m.reader.art.Style(); got != ai.Expressionism {
		t.Fatalf("expected %s, got %s", ai.Expressionism, got)
	}
	want := m.common.labels.Art.Styles[string(ai.Expressionism)]
	if !strings.Contains(m.common.status.text, want) {
		t.Errorf("expected %q in the status, got %q", want, m.common.status.text)
	}

	m = press(m, "a")
	if got := m.reader.art.ImageStyle(); got != ai.Expressionism {
		t.Errorf("expected the image in %s, got %s", ai.Expressionism, got)
	}
}

func TestChat(t *testing.T) {
	m := press(newTestModel(t), "enter", "tab")
	if !m.typing() {
		t.Fatal("expected the chat input to take keys")
	}

	// q is text here, not quit.
	m = typeText(m, "  quoi?  ")
	if m.state != stateShowPoem {
		t.Fatal("expected to stay on the poem")
	}

	m = press(m, "enter")
	turns := m.reader.chat.Turns()
	if len(turns) != 3 {
		t.Fatalf("expected greeting, question and answer, got %d turns", len(turns))
	}
	if turns[1].Role != studio.User || turns[1].Text != "quoi?" {
		t.Errorf("unexpected question %+v", turns[1])
	}
	if m.reader.chat.Pending() {
		t.Error("expected the answer to have arrived")
	}
	if m.reader.input.Value() != "" {
		t.Error("expected the input to be cleared")
	}
	if !strings.Contains(m.reader.chatContent, "quoi?") {
		t.Error("expected the question in the transcript")
	}

	// Blank questions are ignored.
	m = press(m, "enter")
	if n := len(m.reader.chat.Turns()); n != 3 {
		t.Errorf("expected 3 turns, got %d", n)
	}

	m = press(m, "esc")
	if m.typing() || m.reader.view != viewPoem {
		t.Error("expected esc to leave the chat")
	}
	if m.state != stateShowPoem {
		t.Error("expected esc to stay on the poem")
	}
}

func TestExport(t *testing.T) {
	m := press(newTestModel(t), "enter", "x")
	if !m.common.status.err {
		t.Fatalf("expected an error before anything is generated, got %q", m.common.status.text)
	}

	m = press(m, "a", " ", "x")
	if m.common.status.err {
		t.Fatalf("unexpected error %q", m.common.status.text)
	}

	entries, err := os.ReadDir(m.common.cfg.ExportDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 files, got %d", len(entries))
	}
	for _, e := range entries {
		if !strings.Contains(m.common.status.text, e.Name()) {
			t.Errorf("expected %s in %q", e.Name(), m.common.status.text)
		}
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("unexpected temporary file %s", e.Name())
		}
	}
}

func TestCatalogReload(t *testing.T) {
	m := press(newTestModel(t), "enter")
	open := m.reader.poem

	rest := m.common.catalog.All()[1:]
	c, err := poems.New(rest)
	if err != nil {
		t.Fatal(err)
	}

	m = send(m, catalogReloadedMsg{catalog: c})
	if m.state != stateShowLibrary {
		t.Fatalf("expected the removed poem %d to be closed", open.ID)
	}
	if got := len(m.library.list.Items()); got != len(rest) {
		t.Errorf("expected %d items, got %d", len(rest), got)
	}
	if !m.common.status.err {
		t.Error("expected an error status")
	}

	m = send(m, catalogReloadedMsg{err: os.ErrInvalid})
	if m.common.catalog != c {
		t.Error("an invalid catalog must not replace the current one")
	}
}

func TestStatusMessageTimeout(t *testing.T) {
	m := newTestModel(t)

	m.common.showStatusMessage(statusMessage{text: "first"})
	m.common.showStatusMessage(statusMessage{text: "second"})

	m = send(m, statusMessageTimeoutMsg(1))
	if m.common.status.text != "second" {
		t.Fatalf("an old timer cleared %q", m.common.status.text)
	}
	m = send(m, statusMessageTimeoutMsg(2))
	if m.common.showingStatus() {
		t.Errorf("expected the status to be cleared, got %q", m.common.status.text)
	}
}

func TestFatalError(t *testing.T) {
	m := send(newTestModel(t), errMsg{os.ErrPermission})
	if !strings.Contains(m.View(), "ERROR") {
		t.Error("expected the error view")
	}
	_, cmd := m.Update(keyMsg("x"))
	if cmd == nil {
		t.Fatal("expected any key to quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected a quit message")
	}
}

func TestChatMarkdown(t *testing.T) {
	labels := poems.LabelsFor(poems.English)
	turns := []studio.Turn{
		{Role: studio.Oracle, Text: "Hello."},
		{Role: studio.User, Text: "Why?"},
	}

	got := chatMarkdown(turns, true, labels)
	want := "**" + labels.ChatTitle + "**\n\nHello.\n\n> Why?\n\n_" + labels.Loading + "_\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestIndent(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"a\nb", 2, "  a\n  b"},
		{"a", 0, "a"},
		{"", 3, ""},
	}
	for _, tt := range tests {
		if got := indent(tt.in, tt.n); got != tt.want {
			t.Errorf("indent(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
