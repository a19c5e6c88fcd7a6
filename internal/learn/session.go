// Package learn runs a learning session over one capsule: reading notes,
// flipping flashcards and taking the quiz.
package learn

import (
	"log/slog"

	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/errors"
	"github.com/hpungsan/pocket/internal/logger"
	"github.com/hpungsan/pocket/internal/progress"
)

// Capsules loads capsules for a session.
type Capsules interface {
	Load(id string) (*capsule.Capsule, error)
	Exists(id string) (bool, error)
}

// Session holds the state of one learner studying one capsule at a time.
// It is not safe for concurrent use.
type Session struct {
	capsules Capsules
	progress *progress.Store
	logger   *slog.Logger

	capsule *capsule.Capsule
	mode    Mode

	cursor   int
	revealed bool
	known    progress.Set

	bestScore int

	quiz quizRun
}

type quizRun struct {
	state   QuizState
	pos     int
	correct int
	score   int
	newBest bool
}

// NewSession creates a session with no capsule open.
func NewSession(capsules Capsules, prog *progress.Store, l *slog.Logger) *Session {
	return &Session{
		capsules: capsules,
		progress: prog,
		logger:   logger.OrDefault(l).With("component", "learn"),
		known:    progress.NewSet(),
	}
}

// Open loads the capsule id and restores its progress. The flashcard cursor
// returns to the first card, unrevealed, and the mode to Notes. On error the
// previous state is kept.
func (s *Session) Open(id string) error {
	c, err := s.capsules.Load(id)
	if err != nil {
		return err
	}
	rec, err := s.progress.Load(c.ID)
	if err != nil {
		return err
	}

	s.capsule = c
	s.cursor = 0
	s.revealed = false
	s.known = rec.KnownFlashcards.Clone()
	s.bestScore = rec.BestScore
	s.mode = ModeNotes
	s.resetQuiz()

	s.logger.Debug("session opened", "capsule_id", c.ID, "known", s.known.Len(), "best_score", s.bestScore)
	return nil
}

// IsOpen reports whether a capsule is loaded.
func (s *Session) IsOpen() bool {
	return s.capsule != nil
}

// Capsule returns a copy of the open capsule, or nil.
func (s *Session) Capsule() *capsule.Capsule {
	if s.capsule == nil {
		return nil
	}
	return s.capsule.Clone()
}

// Mode returns the active mode.
func (s *Session) Mode() Mode {
	return s.mode
}

// SetMode switches modes. Entering Quiz always restarts it at the first
// question.
func (s *Session) SetMode(m Mode) error {
	if err := s.requireOpen(); err != nil {
		return err
	}
	switch m {
	case ModeNotes, ModeFlashcards:
	case ModeQuiz:
		s.resetQuiz()
	default:
		return errors.NewInvalidRequest("unknown mode " + string(m))
	}
	s.mode = m
	return nil
}

// BestScore returns the best quiz score of the open capsule.
func (s *Session) BestScore() int {
	return s.bestScore
}

// Known returns the indices of flashcards marked known, ascending.
func (s *Session) Known() []int {
	return s.known.Sorted()
}

// Notes returns the notes containing filter, case-insensitively.
func (s *Session) Notes(filter string) ([]string, error) {
	if err := s.requireOpen(); err != nil {
		return nil, err
	}
	return capsule.FilterNotes(s.capsule.Notes, filter), nil
}

func (s *Session) requireOpen() error {
	if s.capsule == nil {
		return errors.NewInvalidRequest("no capsule is open")
	}
	return nil
}

func (s *Session) requireMode(m Mode) error {
	if err := s.requireOpen(); err != nil {
		return err
	}
	if s.mode != m {
		return errors.NewInvalidRequest(string(m) + " mode is not active")
	}
	return nil
}

// saveProgress persists the known set and best score. The capsule may have
// been deleted since it was opened; progress is never written for a
// capsule that does not exist.
func (s *Session) saveProgress() error {
	ok, err := s.capsules.Exists(s.capsule.ID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.NewNotFound(s.capsule.ID)
	}
	return s.progress.Save(s.capsule.ID, progress.Record{
		BestScore:       s.bestScore,
		KnownFlashcards: s.known,
	})
}
