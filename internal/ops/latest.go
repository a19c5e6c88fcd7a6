package ops

import (
	"time"

	"github.com/hpungsan/pocket/internal/library"
)

// LatestOutput contains the result of the Latest operation.
type LatestOutput struct {
	Item *ListItem `json:"item"` // nil if the library is empty
}

// Latest returns the first capsule of the index, the one a study session
// opens when no id is given.
func Latest(repo *library.Repository) (*LatestOutput, error) {
	idx, err := repo.ListIndex()
	if err != nil {
		return nil, err
	}
	if len(idx) == 0 {
		return &LatestOutput{}, nil
	}

	item, err := listItem(repo, idx[0], time.Now())
	if err != nil {
		return nil, err
	}
	return &LatestOutput{Item: &item}, nil
}
