package ops

import (
	"github.com/hpungsan/pocket/internal/library"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID string
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// Delete removes a capsule with its progress. Deleting an unknown id
// succeeds with Deleted=false.
func Delete(repo *library.Repository, input DeleteInput) (*DeleteOutput, error) {
	id, err := requireID(input.ID)
	if err != nil {
		return nil, err
	}

	existed, err := repo.Exists(id)
	if err != nil {
		return nil, err
	}
	if err := repo.Delete(id); err != nil {
		return nil, err
	}

	return &DeleteOutput{
		Deleted: existed,
		ID:      id,
	}, nil
}
