package ops

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/errors"
	"github.com/hpungsan/pocket/internal/library"
)

// Search limits
const (
	MaxQueryLength  = 200
	MaxSnippetChars = 160
)

// SearchInput contains parameters for the Search operation.
type SearchInput struct {
	Query  string // required
	Limit  int    // default: 20, max: 100
	Offset int    // default: 0
}

// SearchResultItem is a matching capsule with the text that matched.
type SearchResultItem struct {
	capsule.IndexEntry
	Field string `json:"field"` // title, subject, description, note, flashcard or quiz
	// Snippet is HTML-safe: capsule content is escaped and the match is
	// wrapped in <b>...</b>.
	Snippet string `json:"snippet"`
}

// SearchOutput contains the result of the Search operation.
type SearchOutput struct {
	Items      []SearchResultItem `json:"items"`
	Pagination Pagination         `json:"pagination"`
	Sort       string             `json:"sort"`
}

// Search finds capsules containing query, case-insensitively. Title and
// subject matches rank before matches in the body; ties keep index order.
func Search(repo *library.Repository, input SearchInput) (*SearchOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, errors.NewInvalidRequest("query is required")
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("query exceeds maximum length of %d characters", MaxQueryLength))
	}

	idx, err := repo.ListIndex()
	if err != nil {
		return nil, err
	}

	var heading, body []SearchResultItem
	for _, e := range idx {
		c, err := repo.Load(e.ID)
		if err != nil {
			// Index entries without a loadable record are skipped.
			continue
		}
		field, text, ok := findMatch(c, query)
		if !ok {
			continue
		}
		item := SearchResultItem{
			IndexEntry: e,
			Field:      field,
			Snippet:    highlight(text, query, MaxSnippetChars),
		}
		if field == "title" || field == "subject" {
			heading = append(heading, item)
		} else {
			body = append(body, item)
		}
	}
	matches := append(heading, body...)

	page, start, end := paginate(input.Limit, input.Offset, DefaultSearchLimit, MaxSearchLimit, len(matches))
	items := make([]SearchResultItem, 0, end-start)
	items = append(items, matches[start:end]...)

	return &SearchOutput{
		Items:      items,
		Pagination: page,
		Sort:       "relevance",
	}, nil
}

// findMatch returns the first field of c containing query.
func findMatch(c *capsule.Capsule, query string) (field, text string, ok bool) {
	q := strings.ToLower(query)
	has := func(s string) bool { return strings.Contains(strings.ToLower(s), q) }

	switch {
	case has(c.Meta.Title):
		return "title", c.Meta.Title, true
	case has(c.Meta.Subject):
		return "subject", c.Meta.Subject, true
	case has(c.Meta.Description):
		return "description", c.Meta.Description, true
	}
	for _, n := range c.Notes {
		if has(n) {
			return "note", n, true
		}
	}
	for _, f := range c.Flashcards {
		if has(f.Front) {
			return "flashcard", f.Front, true
		}
		if has(f.Back) {
			return "flashcard", f.Back, true
		}
	}
	for _, qu := range c.Quiz {
		if has(qu.Q) {
			return "quiz", qu.Q, true
		}
		for _, ch := range qu.Choices {
			if has(ch) {
				return "quiz", ch, true
			}
		}
	}
	return "", "", false
}

// highlight escapes text and wraps the first match of query in <b> tags,
// keeping about maxChars characters of context around it.
func highlight(text, query string, maxChars int) string {
	lower := strings.ToLower(text)
	at := strings.Index(lower, strings.ToLower(query))
	if at < 0 || len(lower) != len(text) {
		// Case folding changed byte offsets; fall back to the plain text.
		return html.EscapeString(truncateRunes(text, maxChars))
	}
	end := at + len(query)

	before, match, after := text[:at], text[at:end], text[end:]
	prefix := ""
	if budget := maxChars / 2; utf8.RuneCountInString(before) > budget {
		r := []rune(before)
		before = string(r[len(r)-budget:])
		prefix = "..."
	}
	suffix := ""
	if budget := maxChars / 2; utf8.RuneCountInString(after) > budget {
		after = string([]rune(after)[:budget])
		suffix = "..."
	}

	return prefix + html.EscapeString(before) +
		"<b>" + html.EscapeString(match) + "</b>" +
		html.EscapeString(after) + suffix
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
