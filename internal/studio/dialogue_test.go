package studio

import (
	"context"
	"testing"

	"github.com/freespirits/gaia/internal/poems"
)

type echoAnalyst struct {
	questions []string
}

func (a *echoAnalyst) RequestAnalysis(_ context.Context, p poems.Poem, question string, _ poems.Language) string {
	a.questions = append(a.questions, question)
	return "**Answer** to " + question
}

func TestDialogue(t *testing.T) {
	analyst := &echoAnalyst{}
	d := NewDialogue(poemA, poems.English, analyst)

	turns := d.Turns()
	if len(turns) != 1 || turns[0].Role != Oracle || turns[0].Text != poems.LabelsFor(poems.English).ChatIntro {
		t.Fatalf("expected the greeting, got %+v", turns)
	}
	if _, ok := d.LastAnswer(); ok {
		t.Error("the greeting is not an answer")
	}

	if d.Ask("   ") != nil {
		t.Error("expected blank question to be ignored")
	}

	cmd := d.Ask("  What is gay science? ")
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if !d.Pending() {
		t.Error("expected pending")
	}
	if d.Ask("another") != nil {
		t.Error("expected a second question to be ignored while pending")
	}

	d.Update(cmd())
	if d.Pending() {
		t.Error("expected answer to clear pending")
	}
	if len(analyst.questions) != 1 || analyst.questions[0] != "What is gay science?" {
		t.Errorf("unexpected questions %q", analyst.questions)
	}

	turns = d.Turns()
	if len(turns) != 3 || turns[1].Role != User || turns[2].Role != Oracle {
		t.Fatalf("unexpected turns %+v", turns)
	}
	answer, ok := d.LastAnswer()
	if !ok || answer != "**Answer** to What is gay science?" {
		t.Errorf("unexpected answer %q", answer)
	}
}

func TestDialogueStaleAnswer(t *testing.T) {
	d := NewDialogue(poemA, poems.Spanish, &echoAnalyst{})

	cmd := d.Ask("¿Por qué?")
	d.PoemChanged(poemB)
	d.Update(cmd())

	turns := d.Turns()
	if len(turns) != 1 {
		t.Errorf("expected a fresh conversation, got %+v", turns)
	}
	if d.Pending() {
		t.Error("expected nothing pending after the poem changed")
	}
	if d.Ask("¿Y ahora?") == nil {
		t.Error("expected questions to be accepted again")
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "emphasis",
			in:   "The **eternal** return is *heavy*.",
			want: "The eternal return is heavy.",
		},
		{
			name: "headings and paragraphs",
			in:   "# Title\n\nFirst paragraph.\n\n\n\nSecond.",
			want: "Title\n\nFirst paragraph.\n\nSecond.",
		},
		{
			name: "list",
			in:   "- one\n- two",
			want: "- one\n- two",
		},
		{
			name: "links keep their text",
			in:   "See [Zarathustra](https://example.com).",
			want: "See Zarathustra.",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.in); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
