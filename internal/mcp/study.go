package mcp

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/pocket/internal/errors"
	"github.com/hpungsan/pocket/internal/learn"
	"github.com/hpungsan/pocket/internal/ops"
)

// StudyStatus describes the open capsule and the active mode.
type StudyStatus struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Mode       learn.Mode `json:"mode"`
	Notes      int        `json:"notes"`
	Flashcards int        `json:"flashcards"`
	Questions  int        `json:"questions"`
	KnownCount int        `json:"known_count"`
	BestScore  int        `json:"best_score"`
}

// StudyNotesOutput is the filtered notes of the open capsule.
type StudyNotesOutput struct {
	ID       string   `json:"id"`
	Notes    []string `json:"notes"`
	Total    int      `json:"total"`
	Rendered string   `json:"rendered"`
}

// StudyQuizOutput carries the quiz view and, after an answer, its feedback.
type StudyQuizOutput struct {
	Question learn.QuestionView `json:"question"`
	Feedback *learn.Feedback    `json:"feedback,omitempty"`
}

// HandleStudyOpen handles the study_open tool call. Without an id it opens
// the most recently created capsule.
func (h *Handlers) HandleStudyOpen(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StudyOpenRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	mode := learn.ModeNotes
	if input.Mode != "" {
		if mode, err = learn.ParseMode(input.Mode); err != nil {
			return errorResult(err), nil
		}
	}

	id := strings.TrimSpace(input.ID)
	if id == "" {
		if id, err = h.latestID(); err != nil {
			return errorResult(err), nil
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.session.Open(id); err != nil {
		return errorResult(err), nil
	}
	if err := h.session.SetMode(mode); err != nil {
		return errorResult(err), nil
	}
	h.logger.Debug("study session opened", "capsule_id", id, "mode", mode)

	return successResult(h.status())
}

// HandleStudyNotes handles the study_notes tool call.
func (h *Handlers) HandleStudyNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StudyNotesRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.ensureOpen(); err != nil {
		return errorResult(err), nil
	}
	if err := h.session.SetMode(learn.ModeNotes); err != nil {
		return errorResult(err), nil
	}
	notes, err := h.session.Notes(input.Filter)
	if err != nil {
		return errorResult(err), nil
	}
	rendered, err := ops.RenderNotes(notes, input.Format)
	if err != nil {
		return errorResult(err), nil
	}

	c := h.session.Capsule()
	return successResult(StudyNotesOutput{
		ID:       c.ID,
		Notes:    notes,
		Total:    len(c.Notes),
		Rendered: rendered,
	})
}

// HandleStudyCard handles the study_card tool call. Switching to flashcards
// keeps the cursor where it was.
func (h *Handlers) HandleStudyCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StudyCardRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.ensureOpen(); err != nil {
		return errorResult(err), nil
	}
	if h.session.Mode() != learn.ModeFlashcards {
		if err := h.session.SetMode(learn.ModeFlashcards); err != nil {
			return errorResult(err), nil
		}
	}

	var view learn.CardView
	switch strings.ToLower(strings.TrimSpace(input.Action)) {
	case "", "show":
		view, err = h.session.Card()
	case "next":
		view, err = h.session.Next()
	case "prev":
		view, err = h.session.Prev()
	case "flip":
		view, err = h.session.Flip()
	case "known":
		view, err = h.session.MarkKnown()
	case "unknown":
		view, err = h.session.MarkUnknown()
	default:
		return errorResult(errors.NewInvalidRequest("unknown card action: " + input.Action)), nil
	}
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(view)
}

// HandleStudyQuiz handles the study_quiz tool call. The first call after
// another mode, and every "start", begins the quiz at question one.
func (h *Handlers) HandleStudyQuiz(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StudyQuizRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	action := strings.ToLower(strings.TrimSpace(input.Action))

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.ensureOpen(); err != nil {
		return errorResult(err), nil
	}
	if action == "start" || h.session.Mode() != learn.ModeQuiz {
		if err := h.session.SetMode(learn.ModeQuiz); err != nil {
			return errorResult(err), nil
		}
	}

	var out StudyQuizOutput
	switch action {
	case "", "show", "start":
	case "answer":
		if input.Choice == nil {
			return errorResult(errors.NewInvalidRequest("choice is required")), nil
		}
		fb, err := h.session.Answer(*input.Choice)
		if err != nil {
			return errorResult(err), nil
		}
		out.Feedback = &fb
	case "next":
		if _, err := h.session.Advance(); err != nil {
			return errorResult(err), nil
		}
	default:
		return errorResult(errors.NewInvalidRequest("unknown quiz action: " + input.Action)), nil
	}

	if out.Question, err = h.session.Question(); err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// latestID returns the id of the most recently created capsule.
func (h *Handlers) latestID() (string, error) {
	latest, err := ops.Latest(h.repo)
	if err != nil {
		return "", err
	}
	if latest.Item == nil {
		return "", errors.NewInvalidRequest("library is empty")
	}
	return latest.Item.ID, nil
}

// ensureOpen opens the latest capsule when no study_open came first.
// Must be called with mu held.
func (h *Handlers) ensureOpen() error {
	if h.session.IsOpen() {
		return nil
	}
	id, err := h.latestID()
	if err != nil {
		return err
	}
	h.logger.Debug("opening latest capsule for study", "capsule_id", id)
	return h.session.Open(id)
}

// status must be called with mu held and a capsule open.
func (h *Handlers) status() StudyStatus {
	c := h.session.Capsule()
	return StudyStatus{
		ID:         c.ID,
		Title:      c.Meta.Title,
		Mode:       h.session.Mode(),
		Notes:      len(c.Notes),
		Flashcards: len(c.Flashcards),
		Questions:  len(c.Quiz),
		KnownCount: len(h.session.Known()),
		BestScore:  h.session.BestScore(),
	}
}
