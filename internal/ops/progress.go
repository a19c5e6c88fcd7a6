package ops

import (
	"github.com/hpungsan/pocket/internal/library"
)

// ProgressInput contains parameters for the Progress operation.
type ProgressInput struct {
	ID string
}

// ProgressOutput is the learning progress of one capsule.
type ProgressOutput struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Flashcards      int    `json:"flashcards"`
	KnownFlashcards []int  `json:"known_flashcards"`
	KnownCount      int    `json:"known_count"`
	Questions       int    `json:"questions"`
	BestScore       int    `json:"best_score"`
}

// Progress returns the progress of an existing capsule.
func Progress(repo *library.Repository, input ProgressInput) (*ProgressOutput, error) {
	id, err := requireID(input.ID)
	if err != nil {
		return nil, err
	}

	c, err := repo.Load(id)
	if err != nil {
		return nil, err
	}
	rec, err := repo.Progress().Load(id)
	if err != nil {
		return nil, err
	}

	return &ProgressOutput{
		ID:              id,
		Title:           c.Meta.Title,
		Flashcards:      len(c.Flashcards),
		KnownFlashcards: rec.KnownFlashcards.Sorted(),
		KnownCount:      rec.KnownFlashcards.Len(),
		Questions:       len(c.Quiz),
		BestScore:       rec.BestScore,
	}, nil
}
