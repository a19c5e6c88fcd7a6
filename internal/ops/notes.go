package ops

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/errors"
	"github.com/hpungsan/pocket/internal/library"
)

// Note render formats.
const (
	NotesFormatText     = "text"
	NotesFormatMarkdown = "markdown"
	NotesFormatHTML     = "html"
)

var markdown = goldmark.New()

// NotesInput contains parameters for the Notes operation.
type NotesInput struct {
	ID     string
	Filter string // case-insensitive substring
	Format string // text (default), markdown or html
}

// NotesOutput contains the result of the Notes operation.
type NotesOutput struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Notes    []string `json:"notes"`
	Total    int      `json:"total"`
	Rendered string   `json:"rendered"`
}

// Notes returns the notes of a capsule matching Filter, rendered in Format.
func Notes(repo *library.Repository, input NotesInput) (*NotesOutput, error) {
	id, err := requireID(input.ID)
	if err != nil {
		return nil, err
	}
	c, err := repo.Load(id)
	if err != nil {
		return nil, err
	}

	notes := capsule.FilterNotes(c.Notes, input.Filter)
	rendered, err := RenderNotes(notes, input.Format)
	if err != nil {
		return nil, err
	}

	return &NotesOutput{
		ID:       id,
		Title:    c.Meta.Title,
		Notes:    notes,
		Total:    len(c.Notes),
		Rendered: rendered,
	}, nil
}

// RenderNotes renders notes as a numbered list. Notes are plain text:
// HTML in a note is escaped, markdown emphasis and code spans are kept.
func RenderNotes(notes []string, format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", NotesFormatText:
		var b strings.Builder
		for i, n := range notes {
			fmt.Fprintf(&b, "%d. %s\n", i+1, n)
		}
		return b.String(), nil
	case NotesFormatMarkdown:
		return notesMarkdown(notes), nil
	case NotesFormatHTML:
		if len(notes) == 0 {
			return "", nil
		}
		var buf bytes.Buffer
		if err := markdown.Convert([]byte(notesMarkdown(notes)), &buf); err != nil {
			return "", errors.NewInternal(fmt.Errorf("failed to render notes: %w", err))
		}
		return buf.String(), nil
	default:
		return "", errors.NewInvalidRequest(fmt.Sprintf("unknown notes format %q (want text, markdown or html)", format))
	}
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func notesMarkdown(notes []string) string {
	var b strings.Builder
	for i, n := range notes {
		fmt.Fprintf(&b, "%d. %s\n", i+1, htmlEscaper.Replace(n))
	}
	return b.String()
}
