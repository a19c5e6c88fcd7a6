package ops

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/hpungsan/pocket/internal/config"
	"github.com/hpungsan/pocket/internal/errors"
	"github.com/hpungsan/pocket/internal/library"
	"github.com/hpungsan/pocket/internal/transfer"
)

// ImportInput contains parameters for the Import operation.
// Exactly one of Path and Text is required.
type ImportInput struct {
	Path string // portable document file
	Text string // portable document content
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Import saves a portable document as a new capsule. The document's own id
// is ignored.
func Import(repo *library.Repository, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	hasPath := strings.TrimSpace(input.Path) != ""
	hasText := input.Text != ""
	if hasPath == hasText {
		return nil, errors.NewInvalidRequest("specify exactly one of path or text")
	}

	maxBytes := config.DefaultConfig().MaxImportBytes
	if cfg != nil && cfg.MaxImportBytes > 0 {
		maxBytes = cfg.MaxImportBytes
	}

	raw := input.Text
	if hasPath {
		var err error
		raw, err = readDocument(strings.TrimSpace(input.Path), maxBytes, cfg)
		if err != nil {
			return nil, err
		}
	} else if int64(len(raw)) > maxBytes {
		return nil, errors.NewFileTooLarge(maxBytes, int64(len(raw)))
	}

	c, err := transfer.ImportDocument(repo, raw)
	if err != nil {
		return nil, err
	}

	return &ImportOutput{
		ID:    c.ID,
		Title: c.Meta.Title,
	}, nil
}

// readDocument reads an import file after path validation, refusing files
// larger than maxBytes.
func readDocument(path string, maxBytes int64, cfg *config.Config) (string, error) {
	if err := ValidatePath(path, PathCheckRead, cfg); err != nil {
		return "", err
	}

	file, err := openFileNoFollowRead(path)
	if err != nil {
		var pErr *errors.PocketError
		if stderrors.As(err, &pErr) {
			return "", err
		}
		return "", errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", errors.NewInternal(err)
	}
	if info.Size() > maxBytes {
		return "", errors.NewFileTooLarge(maxBytes, info.Size())
	}

	// The file may grow between Stat and Read.
	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to read import file: %w", err))
	}
	if int64(len(data)) > maxBytes {
		return "", errors.NewFileTooLarge(maxBytes, int64(len(data)))
	}
	return string(data), nil
}
