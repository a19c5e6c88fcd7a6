package ops

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/pocket/internal/errors"
	"github.com/hpungsan/pocket/internal/transfer"
)

func TestExport_DefaultPath(t *testing.T) {
	repo, cfg := newTestRepo(t)
	id := mustSave(t, repo, "HTML/CSS Basics")

	out, err := Export(repo, cfg, ExportInput{ID: id})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(cfg.BaseDir, ExportsDirName, "HTML-CSS Basics.json"), out.Path)

	data, err := os.ReadFile(out.Path)
	require.NoError(t, err)
	require.Equal(t, out.Bytes, len(data))
	require.Contains(t, string(data), `"schema": "pocket-classroom/v1"`)
	require.Contains(t, string(data), `"id": "`+id+`"`)

	info, err := os.Stat(out.Path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// No temp files left behind
	entries, err := os.ReadDir(filepath.Dir(out.Path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestExport_Overwrites(t *testing.T) {
	repo, cfg := newTestRepo(t)
	id := mustSave(t, repo, "HTML")

	path := filepath.Join(cfg.BaseDir, ExportsDirName, "mine.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0600))

	_, err := Export(repo, cfg, ExportInput{ID: id, Path: path})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "{"))
}

func TestExport_Errors(t *testing.T) {
	repo, cfg := newTestRepo(t)
	id := mustSave(t, repo, "HTML")

	_, err := Export(repo, cfg, ExportInput{ID: "missing"})
	require.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = Export(repo, cfg, ExportInput{ID: id, Path: filepath.Join(t.TempDir(), "out.json")})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = Export(repo, cfg, ExportInput{ID: id, Path: filepath.Join(cfg.BaseDir, ExportsDirName, "out.txt")})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestImport_FromExportedFile(t *testing.T) {
	repo, cfg := newTestRepo(t)
	id := mustSave(t, repo, "HTML")

	exp, err := Export(repo, cfg, ExportInput{ID: id})
	require.NoError(t, err)

	out, err := Import(repo, cfg, ImportInput{Path: exp.Path})
	require.NoError(t, err)
	require.NotEqual(t, id, out.ID)
	require.Equal(t, "HTML", out.Title)

	idx, err := repo.ListIndex()
	require.NoError(t, err)
	require.Len(t, idx, 2)
	require.Equal(t, out.ID, idx[0].ID)
}

func TestImport_FromText(t *testing.T) {
	repo, cfg := newTestRepo(t)

	c := testCapsule("Imported")
	c.ID = "foreign-id"
	data, err := transfer.Marshal(transfer.ExportDocument(&c))
	require.NoError(t, err)

	out, err := Import(repo, cfg, ImportInput{Text: string(data)})
	require.NoError(t, err)
	require.NotEqual(t, "foreign-id", out.ID)

	_, err = repo.Load("foreign-id")
	require.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestImport_Errors(t *testing.T) {
	repo, cfg := newTestRepo(t)
	exports := filepath.Join(cfg.BaseDir, ExportsDirName)

	_, err := Import(repo, cfg, ImportInput{})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = Import(repo, cfg, ImportInput{Path: "a.json", Text: "{}"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = Import(repo, cfg, ImportInput{Path: filepath.Join(exports, "missing.json")})
	require.True(t, errors.Is(err, errors.ErrFileNotFound))

	_, err = Import(repo, cfg, ImportInput{Text: "not json"})
	require.True(t, errors.Is(err, errors.ErrInvalidJSON))

	_, err = Import(repo, cfg, ImportInput{Text: `{"foo":1}`})
	require.True(t, errors.Is(err, errors.ErrSchemaMismatch))

	cfg.MaxImportBytes = 16
	big := filepath.Join(exports, "big.json")
	require.NoError(t, os.WriteFile(big, []byte(`{"schema":"pocket-classroom/v1","meta":{}}`), 0600))
	_, err = Import(repo, cfg, ImportInput{Path: big})
	require.True(t, errors.Is(err, errors.ErrFileTooLarge), "got %v", err)

	_, err = Import(repo, cfg, ImportInput{Text: strings.Repeat(" ", 17)})
	require.True(t, errors.Is(err, errors.ErrFileTooLarge), "got %v", err)
}
