package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/freespirits/gaia/internal/poems"
	"github.com/muesli/reflow/truncate"
)

// poemItem is a poem as a list row.
type poemItem struct {
	poem   poems.Poem
	lang   poems.Language
	labels poems.Labels
}

func (i poemItem) Title() string {
	return fmt.Sprintf("%d. %s", i.poem.ID, i.poem.Title.In(i.lang))
}

func (i poemItem) Description() string {
	first := truncate.StringWithTail(i.poem.FirstLine(i.lang), 48, ellipsis)
	return i.labels.Category(i.poem.Category) + " · " + first
}

func (i poemItem) FilterValue() string { return poems.SearchTarget(i.poem, i.lang) }

// categoryCycle is the order the category filter steps through.
var categoryCycle = append([]poems.Category{poems.All}, poems.Categories...)

type libraryModel struct {
	common   *commonModel
	list     list.Model
	category poems.Category
	showHelp bool
}

func newLibraryModel(common *commonModel) libraryModel {
	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.Foreground(gold).BorderLeftForeground(gold)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.Foreground(darkGold).BorderLeftForeground(gold)

	l := list.New(nil, d, 0, 0)
	l.SetShowHelp(false)
	l.SetStatusBarItemName("poem", "poems")
	l.DisableQuitKeybindings()
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#1B1B1B")).
		Background(gold).
		Padding(0, 1)

	m := libraryModel{
		common:   common,
		list:     l,
		category: poems.All,
	}
	m.refresh()
	return m
}

// refresh reloads the rows from the catalog under the current filter.
func (m *libraryModel) refresh() tea.Cmd {
	lang, labels := m.common.cfg.Language, m.common.labels

	ps := m.common.catalog.Filter(m.category)
	items := make([]list.Item, len(ps))
	for i, p := range ps {
		items[i] = poemItem{poem: p, lang: lang, labels: labels}
	}
	m.list.Title = labels.Title + " · " + labels.Category(m.category)
	return m.list.SetItems(items)
}

func (m *libraryModel) nextCategory() tea.Cmd {
	for i, c := range categoryCycle {
		if c == m.category {
			m.category = categoryCycle[(i+1)%len(categoryCycle)]
			break
		}
	}
	m.list.ResetSelected()
	return m.refresh()
}

func (m *libraryModel) setSize(w, h int) {
	helpHeight := 0
	if m.showHelp {
		helpHeight = strings.Count(m.helpView(), "\n") + 1
	}
	m.list.SetSize(w, max(0, h-statusBarHeight-helpHeight))
}

func (m libraryModel) typing() bool {
	return m.list.FilterState() == list.Filtering
}

func (m *libraryModel) update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && !m.typing() {
		switch {
		case key.Matches(msg, keys.Open):
			if item, ok := m.list.SelectedItem().(poemItem); ok {
				p := item.poem
				return func() tea.Msg { return openPoemMsg{poem: p} }
			}
			return nil
		case key.Matches(msg, keys.Category):
			return m.nextCategory()
		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
			m.setSize(m.common.width, m.common.height)
			return nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return cmd
}

func (m libraryModel) View() string {
	var b strings.Builder
	fmt.Fprint(&b, m.list.View()+"\n")

	labels := m.common.labels
	statusBarView(&b, m.common, labels.Subtitle+" · "+labels.Prelude,
		fmt.Sprintf("%d %s", len(m.list.VisibleItems()), strings.ToLower(labels.Poems)))

	if m.showHelp {
		fmt.Fprint(&b, "\n"+m.helpView())
	}
	return b.String()
}

func (m libraryModel) helpView() string {
	filter := key.NewBinding(key.WithHelp("/", "find a poem"))
	move := key.NewBinding(key.WithHelp("↑/↓", "choose"))
	return padHelp(helpColumns(
		[]key.Binding{move, keys.Open, filter},
		[]key.Binding{keys.Category, keys.Help, keys.Quit},
	), m.common.width)
}
