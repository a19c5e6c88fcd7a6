package ops

import (
	"strings"
	"time"

	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/library"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Subject string // optional filter, case-insensitive
	Level   string // optional filter, case-insensitive
	Limit   int    // default: 20, max: 100
	Offset  int    // default: 0
}

// ListItem is an index entry joined with its progress.
type ListItem struct {
	capsule.IndexEntry
	UpdatedAgo string `json:"updated_ago"`
	KnownCount int    `json:"known_count"`
	BestScore  int    `json:"best_score"`
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []ListItem `json:"items"`
	Pagination Pagination `json:"pagination"`
	Sort       string     `json:"sort"`
}

// List returns the library in index order (most recently created first)
// with the known-card count and best quiz score of each capsule.
func List(repo *library.Repository, input ListInput) (*ListOutput, error) {
	idx, err := repo.ListIndex()
	if err != nil {
		return nil, err
	}

	subject := strings.TrimSpace(input.Subject)
	level := strings.TrimSpace(input.Level)
	filtered := make([]capsule.IndexEntry, 0, len(idx))
	for _, e := range idx {
		if subject != "" && !strings.EqualFold(e.Subject, subject) {
			continue
		}
		if level != "" && !strings.EqualFold(string(e.Level), level) {
			continue
		}
		filtered = append(filtered, e)
	}

	page, start, end := paginate(input.Limit, input.Offset, DefaultListLimit, MaxListLimit, len(filtered))

	now := time.Now()
	items := make([]ListItem, 0, end-start)
	for _, e := range filtered[start:end] {
		item, err := listItem(repo, e, now)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return &ListOutput{
		Items:      items,
		Pagination: page,
		Sort:       "created_desc",
	}, nil
}

func listItem(repo *library.Repository, e capsule.IndexEntry, now time.Time) (ListItem, error) {
	rec, err := repo.Progress().Load(e.ID)
	if err != nil {
		return ListItem{}, err
	}
	return ListItem{
		IndexEntry: e,
		UpdatedAgo: TimeAgo(e.UpdatedAt, now),
		KnownCount: rec.KnownFlashcards.Len(),
		BestScore:  rec.BestScore,
	}, nil
}
