package ops

import (
	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/library"
	"github.com/hpungsan/pocket/internal/progress"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID string
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	capsule.Capsule                 // embedded (copy, not pointer)
	Progress        progress.Record `json:"progress"`
}

// Fetch returns a capsule and its progress.
func Fetch(repo *library.Repository, input FetchInput) (*FetchOutput, error) {
	id, err := requireID(input.ID)
	if err != nil {
		return nil, err
	}

	c, err := repo.Load(id)
	if err != nil {
		return nil, err
	}
	rec, err := repo.Progress().Load(id)
	if err != nil {
		return nil, err
	}

	return &FetchOutput{
		Capsule:  *c,
		Progress: rec,
	}, nil
}
