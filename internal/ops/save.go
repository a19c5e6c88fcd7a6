package ops

import (
	"strings"
	"time"

	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/errors"
	"github.com/hpungsan/pocket/internal/library"
)

// SaveInput is a capsule as submitted by an author. An empty ID creates a
// new capsule; a non-empty ID must name an existing one.
type SaveInput struct {
	Capsule capsule.Capsule

	// NotesText, when set, is split into one note per line and appended
	// to Capsule.Notes.
	NotesText string
}

// SaveOutput contains the result of the Save operation.
type SaveOutput struct {
	ID        string    `json:"id"`
	Created   bool      `json:"created"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Save cleans the submitted capsule (trimmed fields, blank items dropped,
// level defaulting to Beginner) and stores it.
func Save(repo *library.Repository, input SaveInput) (*SaveOutput, error) {
	c := input.Capsule.Clone()
	if strings.TrimSpace(input.NotesText) != "" {
		c.Notes = append(c.Notes, capsule.SplitNotes(input.NotesText)...)
	}
	c = capsule.Clean(c)

	created := c.ID == ""
	if !created {
		ok, err := repo.Exists(c.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.NewNotFound(c.ID)
		}
	}

	id, err := repo.Save(c)
	if err != nil {
		return nil, err
	}

	return &SaveOutput{
		ID:        id,
		Created:   created,
		Title:     c.Meta.Title,
		UpdatedAt: c.UpdatedAt,
	}, nil
}
