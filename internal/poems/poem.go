package poems

import (
	"fmt"
	"strings"
)

// Category groups poems by theme.
type Category string

const (
	Wisdom           Category = "wisdom"
	LifeFate         Category = "life_fate"
	ArtTruth         Category = "art_truth"
	MoralityCritique Category = "morality_critique"

	// All is the pseudo category used by filters to match everything.
	All Category = "all"
)

// Categories lists the categories in the order the library shows them.
var Categories = []Category{Wisdom, LifeFate, MoralityCritique, ArtTruth}

// Valid reports whether c is a real category or All.
func (c Category) Valid() bool {
	switch c {
	case Wisdom, LifeFate, ArtTruth, MoralityCritique, All:
		return true
	}
	return false
}

// ParseCategory parses a category name; the empty string means All.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return All, nil
	}
	c := Category(strings.ToLower(strings.ReplaceAll(s, "-", "_")))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Text holds one string per language.
type Text map[Language]string

// In returns the text in l, falling back to the default language.
func (t Text) In(l Language) string {
	if s, ok := t[l]; ok && s != "" {
		return s
	}
	return t[DefaultLanguage]
}

// Poem is a catalog entry.
type Poem struct {
	ID             int      `yaml:"id"`
	Category       Category `yaml:"category"`
	Title          Text     `yaml:"title"`
	Content        Text     `yaml:"content"`
	OriginalGerman string   `yaml:"german"`
}

// FirstLine returns the first line of the translation in l.
func (p Poem) FirstLine(l Language) string {
	first, _, _ := strings.Cut(p.Content.In(l), "\n")
	return first
}

// Markdown renders the poem for glamour: title, translation and the German
// original as a quote.
func (p Poem) Markdown(l Language, labels Labels) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Title.In(l))
	fmt.Fprintf(&b, "_#%d · %s_\n\n", p.ID, labels.Category(p.Category))
	for _, line := range strings.Split(p.Content.In(l), "\n") {
		fmt.Fprintf(&b, "%s  \n", line)
	}
	b.WriteString("\n---\n\n")
	for _, line := range strings.Split(p.OriginalGerman, "\n") {
		fmt.Fprintf(&b, "> %s  \n", line)
	}
	return b.String()
}

func (p Poem) String() string {
	return fmt.Sprintf("#%d %s", p.ID, p.Title.In(English))
}
