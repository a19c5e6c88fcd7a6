package capsule

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hpungsan/pocket/internal/errors"
)

var validate = newValidator()

// newValidator builds a validator that reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks that a capsule may be persisted:
// a non-blank title, at least one non-blank note, flashcard or question,
// a known level and in-range correct indices.
func Validate(c *Capsule) error {
	if strings.TrimSpace(c.Meta.Title) == "" {
		return errors.NewEmptyCapsule("title is required")
	}
	if !HasContent(c) {
		return errors.NewEmptyCapsule("add at least one note, flashcard or quiz question")
	}

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) && len(verrs) > 0 {
			return errors.NewInvalidRequest(describe(verrs[0]))
		}
		return errors.NewInternal(err)
	}
	return nil
}

// describe renders a single validation failure as a user-facing message.
func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Capsule.")
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte", "lt":
		return fmt.Sprintf("%s must be between 0 and %d", field, ChoiceCount-1)
	default:
		return fmt.Sprintf("%s failed %q validation", field, fe.Tag())
	}
}

// HasContent reports whether any of notes, flashcards or quiz has a
// non-blank entry.
func HasContent(c *Capsule) bool {
	for _, n := range c.Notes {
		if !blankNote(n) {
			return true
		}
	}
	for _, f := range c.Flashcards {
		if !blankFlashcard(f) {
			return true
		}
	}
	for _, q := range c.Quiz {
		if !blankQuestion(q) {
			return true
		}
	}
	return false
}

func blankNote(n string) bool {
	return strings.TrimSpace(n) == ""
}

func blankFlashcard(f Flashcard) bool {
	return strings.TrimSpace(f.Front) == "" && strings.TrimSpace(f.Back) == ""
}

// blankQuestion is true when the question text is blank or every choice is.
func blankQuestion(q Question) bool {
	if strings.TrimSpace(q.Q) == "" {
		return true
	}
	for _, ch := range q.Choices {
		if strings.TrimSpace(ch) != "" {
			return false
		}
	}
	return true
}
