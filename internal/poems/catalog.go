// Package poems holds the poem catalog, its languages and categories, and the
// localized interface labels.
package poems

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// ErrNotFound is returned when no poem has the requested id.
var ErrNotFound = errors.New("poem not found")

// Catalog is an immutable, id-ordered list of poems.
type Catalog struct {
	poems []Poem
	byID  map[int]int
}

type catalogFile struct {
	Poems []Poem `yaml:"poems"`
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(embeddedCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read catalog: %w", err)
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog.
func Parse(b []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("unable to parse catalog: %w", err)
	}
	return New(f.Poems)
}

// New builds a catalog from poems, validating ids, categories and texts.
func New(poems []Poem) (*Catalog, error) {
	if len(poems) == 0 {
		return nil, errors.New("catalog is empty")
	}

	c := &Catalog{
		poems: append([]Poem(nil), poems...),
		byID:  make(map[int]int, len(poems)),
	}
	sort.SliceStable(c.poems, func(i, j int) bool { return c.poems[i].ID < c.poems[j].ID })

	for i, p := range c.poems {
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate poem id %d", p.ID)
		}
		if p.Category == All || !p.Category.Valid() {
			return nil, fmt.Errorf("poem %d: invalid category %q", p.ID, p.Category)
		}
		for _, l := range Languages {
			if p.Title[l] == "" || p.Content[l] == "" {
				return nil, fmt.Errorf("poem %d: missing %s translation", p.ID, l)
			}
		}
		c.byID[p.ID] = i
	}
	return c, nil
}

// Len returns the number of poems.
func (c *Catalog) Len() int { return len(c.poems) }

// All returns every poem in id order.
func (c *Catalog) All() []Poem {
	return append([]Poem(nil), c.poems...)
}

// ByID returns the poem with the given id.
func (c *Catalog) ByID(id int) (Poem, error) {
	i, ok := c.byID[id]
	if !ok {
		return Poem{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return c.poems[i], nil
}

// Filter returns the poems in category; All returns everything.
func (c *Catalog) Filter(category Category) []Poem {
	if category == All || category == "" {
		return c.All()
	}
	return lo.Filter(c.poems, func(p Poem, _ int) bool {
		return p.Category == category
	})
}

// Counts returns the number of poems per category.
func (c *Catalog) Counts() map[Category]int {
	return lo.CountValuesBy(c.poems, func(p Poem) Category { return p.Category })
}

// Neighbours returns the poems before and after id in catalog order,
// wrapping around at both ends.
func (c *Catalog) Neighbours(id int) (prev, next Poem, err error) {
	i, ok := c.byID[id]
	if !ok {
		return Poem{}, Poem{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	n := len(c.poems)
	return c.poems[(i-1+n)%n], c.poems[(i+1)%n], nil
}

// Match is a search hit.
type Match struct {
	Poem    Poem
	Score   int
	Matched []int
}

// Search fuzzy-matches query against SearchTarget in lang, best
// matches first.
func (c *Catalog) Search(query string, lang Language) []Match {
	targets := lo.Map(c.poems, func(p Poem, _ int) string {
		return SearchTarget(p, lang)
	})
	results := fuzzy.Find(query, targets)
	return lo.Map(results, func(r fuzzy.Match, _ int) Match {
		return Match{Poem: c.poems[r.Index], Score: r.Score, Matched: r.MatchedIndexes}
	})
}

// SearchTarget is the string Search matches against.
func SearchTarget(p Poem, lang Language) string {
	return p.Title.In(lang) + " — " + p.FirstLine(lang)
}
