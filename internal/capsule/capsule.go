package capsule

import "time"

// Level is the difficulty label shown in the library.
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

// Levels lists the accepted levels in display order.
var Levels = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}

// ChoiceCount is the fixed number of choices per quiz question.
const ChoiceCount = 4

// Capsule is a self-contained learning unit: metadata plus notes,
// flashcards and a multiple-choice quiz.
type Capsule struct {
	// ID is an opaque identifier, generated on first save when empty
	ID string `json:"id"`

	Meta Meta `json:"meta"`

	// Notes are free-text lines, in authoring order
	Notes []string `json:"notes"`

	Flashcards []Flashcard `json:"flashcards"`

	Quiz []Question `json:"quiz" validate:"dive"`

	// UpdatedAt is stamped by every save (UTC, millisecond precision)
	UpdatedAt time.Time `json:"updatedAt"`
}

// Meta holds the descriptive fields of a capsule.
type Meta struct {
	Title       string `json:"title"`
	Subject     string `json:"subject"`
	Level       Level  `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Description string `json:"description"`
}

// Flashcard is a two-sided card.
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Question is a four-choice quiz question.
type Question struct {
	Q       string              `json:"q"`
	Choices [ChoiceCount]string `json:"choices"`

	// Correct is the index of the right choice, in [0, ChoiceCount)
	Correct int    `json:"correct" validate:"gte=0,lt=4"`
	Explain string `json:"explain"`
}

// Clone returns a deep copy of the capsule.
func (c *Capsule) Clone() *Capsule {
	out := *c
	out.Notes = append([]string(nil), c.Notes...)
	out.Flashcards = append([]Flashcard(nil), c.Flashcards...)
	out.Quiz = append([]Question(nil), c.Quiz...)
	return &out
}

// EnsureSlices replaces nil content slices with empty ones so the record
// always serializes notes/flashcards/quiz as JSON arrays.
func (c *Capsule) EnsureSlices() {
	if c.Notes == nil {
		c.Notes = []string{}
	}
	if c.Flashcards == nil {
		c.Flashcards = []Flashcard{}
	}
	if c.Quiz == nil {
		c.Quiz = []Question{}
	}
}
