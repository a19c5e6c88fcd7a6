package capsule

import "strings"

// Clean returns a copy of c with every text field trimmed and blank
// notes, flashcards and questions dropped. An empty level defaults to
// Beginner. The input is not modified.
func Clean(c *Capsule) *Capsule {
	out := &Capsule{
		ID: strings.TrimSpace(c.ID),
		Meta: Meta{
			Title:       strings.TrimSpace(c.Meta.Title),
			Subject:     strings.TrimSpace(c.Meta.Subject),
			Level:       Level(strings.TrimSpace(string(c.Meta.Level))),
			Description: strings.TrimSpace(c.Meta.Description),
		},
		Notes:      []string{},
		Flashcards: []Flashcard{},
		Quiz:       []Question{},
		UpdatedAt:  c.UpdatedAt,
	}
	if out.Meta.Level == "" {
		out.Meta.Level = LevelBeginner
	}

	for _, n := range c.Notes {
		if !blankNote(n) {
			out.Notes = append(out.Notes, strings.TrimSpace(n))
		}
	}
	for _, f := range c.Flashcards {
		if blankFlashcard(f) {
			continue
		}
		out.Flashcards = append(out.Flashcards, Flashcard{
			Front: strings.TrimSpace(f.Front),
			Back:  strings.TrimSpace(f.Back),
		})
	}
	for _, q := range c.Quiz {
		if blankQuestion(q) {
			continue
		}
		cleaned := Question{
			Q:       strings.TrimSpace(q.Q),
			Correct: q.Correct,
			Explain: strings.TrimSpace(q.Explain),
		}
		for i, ch := range q.Choices {
			cleaned.Choices[i] = strings.TrimSpace(ch)
		}
		out.Quiz = append(out.Quiz, cleaned)
	}

	return out
}

// SplitNotes turns a block of text into one note per non-blank line.
func SplitNotes(text string) []string {
	notes := []string{}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			notes = append(notes, line)
		}
	}
	return notes
}

// FilterNotes returns the notes containing query, case-insensitively.
// An empty query returns every note. The input slice is not modified.
func FilterNotes(notes []string, query string) []string {
	q := strings.ToLower(query)
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		if strings.Contains(strings.ToLower(n), q) {
			out = append(out, n)
		}
	}
	return out
}
