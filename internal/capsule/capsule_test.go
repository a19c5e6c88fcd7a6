package capsule

import (
	"testing"
	"time"

	"github.com/hpungsan/pocket/internal/errors"
)

func validCapsule() *Capsule {
	return &Capsule{
		Meta:  Meta{Title: "HTML Basics", Subject: "Web", Level: LevelBeginner},
		Notes: []string{"Elements: <tag>content</tag>"},
		Flashcards: []Flashcard{
			{Front: "What does HTML stand for?", Back: "HyperText Markup Language"},
		},
		Quiz: []Question{
			{Q: "Largest heading?", Choices: [4]string{"<small>", "<h1>", "<div>", "<p>"}, Correct: 1},
		},
	}
}

func TestValidate_Valid(t *testing.T) {
	if err := Validate(validCapsule()); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidate_EmptyLevelAllowed(t *testing.T) {
	c := validCapsule()
	c.Meta.Level = ""
	if err := Validate(c); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidate_EmptyCapsule(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Capsule)
	}{
		{"blank title", func(c *Capsule) { c.Meta.Title = "   " }},
		{"no content", func(c *Capsule) {
			c.Notes = []string{}
			c.Flashcards = []Flashcard{}
			c.Quiz = []Question{}
		}},
		{"only blank content", func(c *Capsule) {
			c.Notes = []string{"  ", ""}
			c.Flashcards = []Flashcard{{Front: " ", Back: ""}}
			c.Quiz = []Question{{Q: "no choices"}, {Q: " ", Choices: [4]string{"a"}}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCapsule()
			tt.mutate(c)
			err := Validate(c)
			if !errors.Is(err, errors.ErrEmptyCapsule) {
				t.Errorf("Validate() = %v, want EMPTY_CAPSULE", err)
			}
		})
	}
}

func TestValidate_InvalidFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Capsule)
		message string
	}{
		{
			name:    "unknown level",
			mutate:  func(c *Capsule) { c.Meta.Level = "Expert" },
			message: "meta.level must be one of: Beginner, Intermediate, Advanced",
		},
		{
			name:    "correct too large",
			mutate:  func(c *Capsule) { c.Quiz[0].Correct = 4 },
			message: "quiz[0].correct must be between 0 and 3",
		},
		{
			name:    "correct negative",
			mutate:  func(c *Capsule) { c.Quiz[0].Correct = -1 },
			message: "quiz[0].correct must be between 0 and 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCapsule()
			tt.mutate(c)
			err := Validate(c)
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Fatalf("Validate() = %v, want INVALID_REQUEST", err)
			}
			if msg := err.(*errors.PocketError).Message; msg != tt.message {
				t.Errorf("Message = %q, want %q", msg, tt.message)
			}
		})
	}
}

func TestClean(t *testing.T) {
	in := &Capsule{
		Meta: Meta{Title: "  Go  ", Subject: " lang "},
		Notes: []string{" one ", "", "   ", "two"},
		Flashcards: []Flashcard{
			{Front: " f ", Back: ""},
			{Front: " ", Back: " "},
		},
		Quiz: []Question{
			{Q: " q1 ", Choices: [4]string{" a ", "b", "", ""}, Correct: 1, Explain: " because "},
			{Q: "", Choices: [4]string{"x"}},
			{Q: "q3"},
		},
	}

	out := Clean(in)

	if out.Meta.Title != "Go" || out.Meta.Subject != "lang" {
		t.Errorf("Meta = %+v, want trimmed", out.Meta)
	}
	if out.Meta.Level != LevelBeginner {
		t.Errorf("Level = %q, want %q", out.Meta.Level, LevelBeginner)
	}
	if len(out.Notes) != 2 || out.Notes[0] != "one" || out.Notes[1] != "two" {
		t.Errorf("Notes = %q, want [one two]", out.Notes)
	}
	if len(out.Flashcards) != 1 || out.Flashcards[0].Front != "f" {
		t.Errorf("Flashcards = %+v, want one trimmed card", out.Flashcards)
	}
	if len(out.Quiz) != 1 {
		t.Fatalf("Quiz length = %d, want 1", len(out.Quiz))
	}
	if out.Quiz[0].Q != "q1" || out.Quiz[0].Choices[0] != "a" || out.Quiz[0].Explain != "because" {
		t.Errorf("Quiz[0] = %+v, want trimmed", out.Quiz[0])
	}

	// Input untouched
	if in.Meta.Title != "  Go  " || len(in.Notes) != 4 {
		t.Error("Clean modified its input")
	}
}

func TestSplitNotes(t *testing.T) {
	got := SplitNotes("first\n\n  second  \n   \nthird")
	want := []string{"first", "second", "third"}
	if len(got) != len(want) {
		t.Fatalf("SplitNotes() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SplitNotes()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if empty := SplitNotes(""); len(empty) != 0 {
		t.Errorf("SplitNotes(\"\") = %q, want empty", empty)
	}
}

func TestFilterNotes(t *testing.T) {
	notes := []string{"Use semantic elements", "Elements: <tag>", "Attributes"}

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"ELEMENTS", 2},
		{"attr", 1},
		{"missing", 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := FilterNotes(notes, tt.query); len(got) != tt.want {
				t.Errorf("FilterNotes(%q) = %q, want %d notes", tt.query, got, tt.want)
			}
		})
	}
	if notes[0] != "Use semantic elements" || len(notes) != 3 {
		t.Error("FilterNotes modified its input")
	}
}

func TestClone(t *testing.T) {
	c := validCapsule()
	cp := c.Clone()
	cp.Notes[0] = "changed"
	cp.Quiz[0].Correct = 3

	if c.Notes[0] == "changed" || c.Quiz[0].Correct == 3 {
		t.Error("Clone shares slices with the original")
	}
}

func TestToIndexEntry(t *testing.T) {
	c := validCapsule()
	c.ID = "01ABC"
	c.UpdatedAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	e := c.ToIndexEntry()
	if e.ID != "01ABC" || e.Title != "HTML Basics" || e.Subject != "Web" || e.Level != LevelBeginner {
		t.Errorf("ToIndexEntry() = %+v", e)
	}
	if !e.UpdatedAt.Equal(c.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want %v", e.UpdatedAt, c.UpdatedAt)
	}
}

func TestEnsureSlices(t *testing.T) {
	c := &Capsule{}
	c.EnsureSlices()
	if c.Notes == nil || c.Flashcards == nil || c.Quiz == nil {
		t.Errorf("EnsureSlices left nil slices: %+v", c)
	}
}
