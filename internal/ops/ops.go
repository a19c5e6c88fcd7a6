// Package ops implements the operations behind the CLI and MCP tools:
// browsing and editing the library, import/export and progress views.
package ops

import (
	"path/filepath"
	"strings"

	"github.com/hpungsan/pocket/internal/config"
	"github.com/hpungsan/pocket/internal/errors"
)

// Pagination limits
const (
	DefaultListLimit   = 20
	MaxListLimit       = 100
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

// ExportsDirName is the default import/export directory inside the base dir.
const ExportsDirName = "exports"

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// paginate clamps limit/offset and returns the page bounds over total items.
func paginate(limit, offset, def, maxLimit, total int) (Pagination, int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset = max(offset, 0)

	start := min(offset, total)
	end := min(start+limit, total)
	return Pagination{
		Limit:   limit,
		Offset:  offset,
		HasMore: end < total,
		Total:   total,
	}, start, end
}

// ExportsDir returns <base>/exports, using ~/.pocket when cfg has no base dir.
func ExportsDir(cfg *config.Config) (string, error) {
	base := ""
	if cfg != nil {
		base = cfg.BaseDir
	}
	if base == "" {
		var err error
		base, err = config.DefaultBaseDir()
		if err != nil {
			return "", errors.NewInternal(err)
		}
	}
	return filepath.Join(base, ExportsDirName), nil
}

// requireID trims id and rejects it when blank.
func requireID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.NewInvalidRequest("id is required")
	}
	return id, nil
}
