package studio

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/freespirits/gaia/internal/poems"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Role says who wrote a turn.
type Role int

const (
	User Role = iota
	Oracle
)

// Turn is one message of the chat.
type Turn struct {
	Role Role
	Text string // Markdown for oracle turns
}

// Analyst answers questions about a poem. It always returns text to show.
type Analyst interface {
	RequestAnalysis(ctx context.Context, p poems.Poem, question string, lang poems.Language) string
}

// AnswerMsg carries an answer back to its Dialogue.
type AnswerMsg struct {
	PoemID int
	Token  uint64
	Text   string
}

// Dialogue is the analysis chat about the current poem. It opens with the
// localized greeting and allows one outstanding question at a time.
type Dialogue struct {
	poem    poems.Poem
	lang    poems.Language
	analyst Analyst
	timeout time.Duration

	turns   []Turn
	pending bool
	token   uint64
}

// NewDialogue returns a chat about p.
func NewDialogue(p poems.Poem, lang poems.Language, analyst Analyst) *Dialogue {
	d := &Dialogue{poem: p, lang: lang, analyst: analyst, timeout: time.Minute}
	d.reset()
	return d
}

func (d *Dialogue) reset() {
	d.turns = []Turn{{Role: Oracle, Text: poems.LabelsFor(d.lang).ChatIntro}}
	d.pending = false
}

// Turns returns the conversation so far.
func (d *Dialogue) Turns() []Turn { return d.turns }

// SetTimeout bounds each question; non-positive values keep the default.
func (d *Dialogue) SetTimeout(t time.Duration) {
	if t > 0 {
		d.timeout = t
	}
}

// Pending reports whether an answer is awaited.
func (d *Dialogue) Pending() bool { return d.pending }

// Ask sends question. Blank questions and questions asked while waiting
// for an answer are ignored.
func (d *Dialogue) Ask(question string) tea.Cmd {
	question = strings.TrimSpace(question)
	if question == "" || d.pending {
		return nil
	}

	d.turns = append(d.turns, Turn{Role: User, Text: question})
	d.pending = true
	d.token++

	var (
		poem    = d.poem
		lang    = d.lang
		token   = d.token
		analyst = d.analyst
		timeout = d.timeout
	)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return AnswerMsg{PoemID: poem.ID, Token: token, Text: analyst.RequestAnalysis(ctx, poem, question, lang)}
	}
}

// Update applies an answer.
func (d *Dialogue) Update(msg tea.Msg) {
	m, ok := msg.(AnswerMsg)
	if !ok {
		return
	}
	if m.PoemID != d.poem.ID || m.Token != d.token || !d.pending {
		log.Debug("Discarding stale answer", "poem", m.PoemID, "token", m.Token)
		return
	}
	d.turns = append(d.turns, Turn{Role: Oracle, Text: m.Text})
	d.pending = false
}

// PoemChanged starts a new conversation about next.
func (d *Dialogue) PoemChanged(next poems.Poem) {
	d.poem = next
	d.token++
	d.reset()
}

// LastAnswer returns the most recent oracle turn that answers a question.
func (d *Dialogue) LastAnswer() (string, bool) {
	for i := len(d.turns) - 1; i > 0; i-- {
		if d.turns[i].Role == Oracle {
			return d.turns[i].Text, true
		}
	}
	return "", false
}

var blankLines = regexp.MustCompile(`\n{3,}`)

// PlainText strips Markdown syntax from md, keeping paragraphs apart.
func PlainText(md string) string {
	src := []byte(md)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var b bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch n := n.(type) {
		case *ast.Text:
			if entering {
				b.Write(n.Segment.Value(src))
				if n.SoftLineBreak() || n.HardLineBreak() {
					b.WriteByte('\n')
				}
			}
		case *ast.String:
			if entering {
				b.Write(n.Value)
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if entering {
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					b.Write(seg.Value(src))
				}
				b.WriteByte('\n')
			}
			return ast.WalkSkipChildren, nil
		case *ast.ListItem:
			if entering {
				b.WriteString("- ")
			}
		case *ast.TextBlock:
			if !entering {
				b.WriteByte('\n')
			}
		case *ast.Paragraph, *ast.Heading, *ast.ThematicBreak:
			if !entering {
				b.WriteString("\n\n")
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(blankLines.ReplaceAllString(b.String(), "\n\n"))
}
