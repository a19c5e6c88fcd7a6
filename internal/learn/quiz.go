package learn

import (
	"fmt"

	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/errors"
)

// QuestionView is the quiz as the learner sees it.
type QuestionView struct {
	State QuizState `json:"state"`

	// Set while asking or answered.
	Number  int                         `json:"number,omitempty"` // 1-based
	Total   int                         `json:"total"`
	Q       string                      `json:"q,omitempty"`
	Choices [capsule.ChoiceCount]string `json:"choices"`

	CorrectCount int `json:"correct_count"`

	// Set when finished.
	Result *Result `json:"result,omitempty"`
}

// Feedback is returned for an answered question. The correct choice and
// explanation are revealed whether or not the answer was right.
type Feedback struct {
	Choice        int    `json:"choice"`
	Correct       bool   `json:"correct"`
	CorrectChoice int    `json:"correct_choice"`
	Explain       string `json:"explain"`
	Last          bool   `json:"last"`
}

// Result is the outcome of a finished quiz.
type Result struct {
	Score        int  `json:"score"`
	CorrectCount int  `json:"correct_count"`
	Total        int  `json:"total"`
	BestScore    int  `json:"best_score"`
	NewBest      bool `json:"new_best"`
}

// Score returns the percentage of correct answers, rounding halves up.
// It is 0 when total is 0.
func Score(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*correct + total) / (2 * total)
}

func (s *Session) resetQuiz() {
	s.quiz = quizRun{state: QuizAsking}
	if s.capsule == nil || len(s.capsule.Quiz) == 0 {
		s.quiz.state = QuizEmpty
	}
}

// Question returns the current state of the quiz.
func (s *Session) Question() (QuestionView, error) {
	if err := s.requireMode(ModeQuiz); err != nil {
		return QuestionView{}, err
	}

	qs := s.capsule.Quiz
	v := QuestionView{
		State:        s.quiz.state,
		Total:        len(qs),
		CorrectCount: s.quiz.correct,
	}
	switch s.quiz.state {
	case QuizAsking, QuizAnswered:
		q := qs[s.quiz.pos]
		v.Number = s.quiz.pos + 1
		v.Q = q.Q
		v.Choices = q.Choices
	case QuizFinished:
		v.Result = &Result{
			Score:        s.quiz.score,
			CorrectCount: s.quiz.correct,
			Total:        len(qs),
			BestScore:    s.bestScore,
			NewBest:      s.quiz.newBest,
		}
	}
	return v, nil
}

// Answer records choice for the current question. Each question can be
// answered once; call Advance to move on.
func (s *Session) Answer(choice int) (Feedback, error) {
	if err := s.requireMode(ModeQuiz); err != nil {
		return Feedback{}, err
	}
	switch s.quiz.state {
	case QuizEmpty:
		return Feedback{}, errors.NewInvalidRequest("this capsule has no quiz questions")
	case QuizAnswered:
		return Feedback{}, errors.NewInvalidRequest("question already answered; advance to continue")
	case QuizFinished:
		return Feedback{}, errors.NewInvalidRequest("quiz is finished; re-enter quiz mode to retake it")
	}
	if choice < 0 || choice >= capsule.ChoiceCount {
		return Feedback{}, errors.NewInvalidRequest(fmt.Sprintf("choice must be between 0 and %d", capsule.ChoiceCount-1))
	}

	q := s.capsule.Quiz[s.quiz.pos]
	fb := Feedback{
		Choice:        choice,
		Correct:       choice == q.Correct,
		CorrectChoice: q.Correct,
		Explain:       q.Explain,
		Last:          s.quiz.pos == len(s.capsule.Quiz)-1,
	}
	if fb.Correct {
		s.quiz.correct++
	}
	s.quiz.state = QuizAnswered
	return fb, nil
}

// Advance moves past an answered question. After the last question the
// quiz is scored, and a score above the best is saved to progress. If that
// save fails the last question stays answered and Advance can be retried.
func (s *Session) Advance() (QuestionView, error) {
	if err := s.requireMode(ModeQuiz); err != nil {
		return QuestionView{}, err
	}
	if s.quiz.state != QuizAnswered {
		return QuestionView{}, errors.NewInvalidRequest("answer the current question first")
	}

	if s.quiz.pos+1 < len(s.capsule.Quiz) {
		s.quiz.pos++
		s.quiz.state = QuizAsking
		return s.Question()
	}

	if err := s.finishQuiz(); err != nil {
		return QuestionView{}, err
	}
	return s.Question()
}

func (s *Session) finishQuiz() error {
	total := len(s.capsule.Quiz)
	score := Score(s.quiz.correct, total)

	s.logger.Debug("quiz finished",
		"capsule_id", s.capsule.ID,
		"correct", s.quiz.correct,
		"total", total,
		"score", score,
		"best_score", s.bestScore)

	newBest := score > s.bestScore
	if newBest {
		previous := s.bestScore
		s.bestScore = score
		if err := s.saveProgress(); err != nil {
			s.bestScore = previous
			return err
		}
	}

	s.quiz.score = score
	s.quiz.newBest = newBest
	s.quiz.state = QuizFinished
	return nil
}
