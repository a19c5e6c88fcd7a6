package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/hpungsan/pocket/internal/config"
	"github.com/hpungsan/pocket/internal/kv"
	"github.com/hpungsan/pocket/internal/library"
	"github.com/hpungsan/pocket/internal/logger"
	"github.com/hpungsan/pocket/internal/mcp"
	"github.com/hpungsan/pocket/internal/ops"
	"github.com/hpungsan/pocket/internal/progress"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// HomeEnv overrides the base directory (default ~/.pocket).
const HomeEnv = "POCKET_HOME"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"list": true, "show": true, "save": true, "delete": true,
	"export": true, "import": true, "progress": true,
	"search": true, "doctor": true, "study": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	// Known subcommand → CLI
	if cliCommands[arg] {
		return true
	}
	// --help or --version → CLI
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// resolveBaseDir returns $POCKET_HOME, or ~/.pocket when unset.
func resolveBaseDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(HomeEnv)); dir != "" {
		return dir, nil
	}
	return config.DefaultBaseDir()
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   ___  ___   ___ _  _____ _____
  | _ \/ _ \ / __| |/ / __|_   _|
  |  _/ (_) | (__| ' <| _|  | |
  |_|  \___/ \___|_|\_\___| |_|

  Pocket Classroom: study capsules on your machine

  Usage: pocket <command> [options]
         pocket --help

  MCP server mode requires piped input.`)
}

func main() {
	os.Exit(run())
}

// run executes one CLI command or serves MCP, returning the exit code.
// Deferred cleanup, including closing the store, runs before exit.
func run() int {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return 0
	}

	// Handle --help/--version before opening the store
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	baseDir, err := resolveBaseDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine base directory: %v\n", err)
		return 1
	}

	if err := config.LoadEnv(baseDir); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	cfg, err := config.Load(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		return 1
	}

	log := logger.Setup(cfg.LogLevel, os.Stderr)

	store, err := kv.Open(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize database: %v\n", err)
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("failed to close database", "error", err)
		}
	}()
	store.ConfigurePool(cfg)

	repo := library.New(store, progress.NewStore(store, log), log)

	if seed, err := ops.Seed(repo, cfg); err != nil {
		log.Warn("failed to seed sample capsule", "error", err)
	} else if seed.Seeded {
		log.Info("seeded sample capsule", "capsule_id", seed.ID)
	}

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(repo, cfg)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'pocket --help' for usage.\n")
		return 1
	}

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		log.Warn("ignoring unknown disabled_tools entries", "tools", unknown, "available", mcp.AllToolNames())
	}

	// MCP server mode (default)
	if err := mcp.Run(repo, cfg, log, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
