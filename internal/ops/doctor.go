package ops

import (
	"github.com/hpungsan/pocket/internal/library"
)

// DoctorInput contains parameters for the Doctor operation.
type DoctorInput struct {
	Repair bool
}

// DoctorOutput contains the result of the Doctor operation.
type DoctorOutput struct {
	Report     *library.CheckReport `json:"report"`
	Consistent bool                 `json:"consistent"`
	Repaired   bool                 `json:"repaired"`
}

// Doctor checks that the index matches the stored capsules and, when asked,
// repairs it. The report always describes the state before any repair.
func Doctor(repo *library.Repository, input DoctorInput) (*DoctorOutput, error) {
	var (
		report *library.CheckReport
		err    error
	)
	if input.Repair {
		report, err = repo.Repair()
	} else {
		report, err = repo.Check()
	}
	if err != nil {
		return nil, err
	}

	consistent := report.Consistent()
	return &DoctorOutput{
		Report:     report,
		Consistent: consistent,
		Repaired:   input.Repair && !consistent,
	}, nil
}
