package learn

import (
	"fmt"
	"strings"

	"github.com/hpungsan/pocket/internal/errors"
)

// Mode is the active view of an open capsule.
type Mode string

const (
	ModeNotes      Mode = "notes"
	ModeFlashcards Mode = "flashcards"
	ModeQuiz       Mode = "quiz"
)

// ParseMode accepts a mode name case-insensitively; "cards" and "flash"
// are aliases of flashcards.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "notes":
		return ModeNotes, nil
	case "flashcards", "cards", "flash":
		return ModeFlashcards, nil
	case "quiz":
		return ModeQuiz, nil
	default:
		return "", errors.NewInvalidRequest(fmt.Sprintf("unknown mode %q (want notes, flashcards or quiz)", s))
	}
}

// QuizState is the position of the quiz state machine.
type QuizState string

const (
	// QuizEmpty means the capsule has no questions; nothing can be answered.
	QuizEmpty    QuizState = "empty"
	QuizAsking   QuizState = "asking"
	QuizAnswered QuizState = "answered"
	QuizFinished QuizState = "finished"
)
