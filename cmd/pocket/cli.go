package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/config"
	"github.com/hpungsan/pocket/internal/errors"
	"github.com/hpungsan/pocket/internal/library"
	"github.com/hpungsan/pocket/internal/ops"
)

// maxStdinBytes caps piped input when no config is loaded.
const maxStdinBytes = 5 * 1024 * 1024

// newCLIApp creates the CLI application with all commands.
func newCLIApp(repo *library.Repository, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "pocket",
		Usage:   "Author capsules of notes, flashcards and quizzes, then study them",
		Version: Version,
		Commands: []*cli.Command{
			listCmd(repo),
			showCmd(repo),
			saveCmd(repo, cfg),
			deleteCmd(repo),
			exportCmd(repo, cfg),
			importCmd(repo, cfg),
			progressCmd(repo),
			searchCmd(repo),
			doctorCmd(repo),
			studyCmd(repo),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// listCmd creates the list command.
func listCmd(repo *library.Repository) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List capsules, most recently created first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "subject", Aliases: []string{"s"}, Usage: "Filter by subject"},
			&cli.StringFlag{Name: "level", Usage: "Filter by level: " + levelUsage()},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(repo, ops.ListInput{
				Subject: c.String("subject"),
				Level:   c.String("level"),
				Limit:   c.Int("limit"),
				Offset:  c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// showCmd creates the show command.
func showCmd(repo *library.Repository) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a capsule with its progress",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Fetch(repo, ops.FetchInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// saveCmd creates the save command.
func saveCmd(repo *library.Repository, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "save",
		Usage: "Create or replace a capsule (reads capsule JSON from stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Usage: "Replace this capsule instead of the id in the JSON"},
			&cli.StringFlag{Name: "notes", Usage: "Extra notes, one per line, appended after the JSON notes"},
		},
		Action: func(c *cli.Context) error {
			// Require stdin input
			if !stdinHasData(c.App.Reader) {
				return outputError(errors.NewInvalidRequest("capsule JSON must be piped via stdin"))
			}

			text, err := readStdin(c.App.Reader, stdinLimit(cfg))
			if err != nil {
				return outputError(err)
			}
			if text == "" {
				return outputError(errors.NewInvalidRequest("capsule JSON is required"))
			}

			var in capsule.Capsule
			if err := json.Unmarshal([]byte(text), &in); err != nil {
				return outputError(errors.NewInvalidJSON(err))
			}
			if id := c.String("id"); id != "" {
				in.ID = id
			}

			output, err := ops.Save(repo, ops.SaveInput{Capsule: in, NotesText: c.String("notes")})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(repo *library.Repository) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a capsule and its progress",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(repo, ops.DeleteInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(repo *library.Repository, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export a capsule as a portable JSON document",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.pocket/exports/<title>.json)"},
			allowDirFlag,
		},
		Action: func(c *cli.Context) error {
			cfg, err := withAllowedDirs(c, cfg)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Export(repo, cfg, ops.ExportInput{
				ID:   c.Args().First(),
				Path: c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// importCmd creates the import command.
func importCmd(repo *library.Repository, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import a portable JSON document as a new capsule (from --path or stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Import file path"},
			allowDirFlag,
		},
		Action: func(c *cli.Context) error {
			cfg, err := withAllowedDirs(c, cfg)
			if err != nil {
				return outputError(err)
			}
			input := ops.ImportInput{Path: c.String("path")}

			if input.Path == "" {
				if !stdinHasData(c.App.Reader) {
					return outputError(errors.NewInvalidRequest("--path or a document on stdin is required"))
				}
				text, err := readStdin(c.App.Reader, stdinLimit(cfg))
				if err != nil {
					return outputError(err)
				}
				input.Text = text
			}

			output, err := ops.Import(repo, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// progressCmd creates the progress command.
func progressCmd(repo *library.Repository) *cli.Command {
	return &cli.Command{
		Name:      "progress",
		Usage:     "Show known flashcards and best quiz score",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Progress(repo, ops.ProgressInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// searchCmd creates the search command.
func searchCmd(repo *library.Repository) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search capsule titles, subjects, notes, flashcards and questions",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Search(repo, ops.SearchInput{
				Query:  strings.Join(c.Args().Slice(), " "),
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// doctorCmd creates the doctor command.
func doctorCmd(repo *library.Repository) *cli.Command {
	return &cli.Command{
		Name:  "doctor",
		Usage: "Check the capsule index against stored capsules",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "repair", Usage: "Rebuild the index and drop orphaned progress"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Doctor(repo, ops.DoctorInput{Repair: c.Bool("repair")})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// Helper functions

func levelUsage() string {
	names := make([]string, len(capsule.Levels))
	for i, l := range capsule.Levels {
		names[i] = string(l)
	}
	return strings.Join(names, "|")
}

var allowDirFlag = &cli.StringSliceFlag{
	Name:  "allow-dir",
	Usage: "Also allow files directly inside this directory (adds to allowed_paths)",
}

// withAllowedDirs overlays --allow-dir directories onto cfg for one command.
func withAllowedDirs(c *cli.Context, cfg *config.Config) (*config.Config, error) {
	dirs := c.StringSlice("allow-dir")
	if len(dirs) == 0 {
		return cfg, nil
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	overlay := &config.Config{}
	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid --allow-dir %q: %v", dir, err))
		}
		overlay.AllowedPaths = append(overlay.AllowedPaths, abs)
	}
	return config.Merge(cfg, overlay), nil
}

// outputJSON marshals result to w as JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var pErr *errors.PocketError
	if stderrors.As(err, &pErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", pErr.Code, pErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if r is piped data (not a terminal).
// Readers other than files always count as piped.
func stdinHasData(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return r != nil
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from r, up to maxBytes.
func readStdin(r io.Reader, maxBytes int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return "", errors.NewInternal(err)
	}
	if int64(len(data)) > maxBytes {
		return "", errors.NewFileTooLarge(maxBytes, int64(len(data)))
	}
	return strings.TrimSpace(string(data)), nil
}

// stdinLimit returns the configured import size limit.
func stdinLimit(cfg *config.Config) int64 {
	if cfg != nil && cfg.MaxImportBytes > 0 {
		return cfg.MaxImportBytes
	}
	return maxStdinBytes
}
