package ops

import (
	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/config"
	"github.com/hpungsan/pocket/internal/library"
)

// SeedOutput contains the result of the Seed operation.
type SeedOutput struct {
	Seeded bool   `json:"seeded"`
	ID     string `json:"id,omitempty"`
}

// SampleCapsule returns the capsule stored in a brand-new library.
func SampleCapsule() *capsule.Capsule {
	return &capsule.Capsule{
		Meta: capsule.Meta{
			Title:       "HTML Basics",
			Subject:     "Web",
			Level:       capsule.LevelBeginner,
			Description: "Quick notes on HTML elements",
		},
		Notes: []string{
			"Elements: <tag>content</tag>",
			"Use semantic elements: header, nav, main, footer",
		},
		Flashcards: []capsule.Flashcard{
			{Front: "What does HTML stand for?", Back: "HyperText Markup Language"},
			{Front: "Tag for paragraph?", Back: "<p>"},
		},
		Quiz: []capsule.Question{
			{
				Q:       "Which tag is used for largest heading?",
				Choices: [capsule.ChoiceCount]string{"<small>", "<h1>", "<div>", "<p>"},
				Correct: 1,
				Explain: "<h1> is largest semantic heading.",
			},
		},
	}
}

// Seed stores the sample capsule when no index has ever been written.
// A library emptied by deleting every capsule is not seeded again.
func Seed(repo *library.Repository, cfg *config.Config) (*SeedOutput, error) {
	if cfg != nil && !cfg.SeedSample {
		return &SeedOutput{}, nil
	}

	has, err := repo.HasIndex()
	if err != nil {
		return nil, err
	}
	if has {
		return &SeedOutput{}, nil
	}

	id, err := repo.Save(SampleCapsule())
	if err != nil {
		return nil, err
	}
	return &SeedOutput{Seeded: true, ID: id}, nil
}
