package mcp

import (
	"log/slog"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/pocket/internal/config"
	"github.com/hpungsan/pocket/internal/library"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"capsule_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"capsule_latest": {
		def:     latestToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLatest },
	},
	"capsule_fetch": {
		def:     fetchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFetch },
	},
	"capsule_save": {
		def:     saveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSave },
	},
	"capsule_delete": {
		def:     deleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
	"capsule_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"capsule_import": {
		def:     importToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport },
	},
	"capsule_search": {
		def:     searchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSearch },
	},
	"progress_get": {
		def:     progressToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProgress },
	},
	"library_doctor": {
		def:     doctorToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDoctor },
	},
	"study_open": {
		def:     studyOpenToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStudyOpen },
	},
	"study_notes": {
		def:     studyNotesToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStudyNotes },
	},
	"study_card": {
		def:     studyCardToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStudyCard },
	},
	"study_quiz": {
		def:     studyQuizToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStudyQuiz },
	},
}

// AllToolNames returns all valid tool names, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with Pocket tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
// Saved progress is pushed to clients as ProgressUpdatedMethod.
func NewServer(repo *library.Repository, cfg *config.Config, l *slog.Logger, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"pocket",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(repo, cfg, l)

	disabled := make(map[string]bool, len(cfg.DisabledTools))
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	// Register tools (skip disabled)
	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	repo.Progress().Subscribe(progressNotifier(s, h.logger))

	return s
}

// Run starts the MCP server using stdio transport.
func Run(repo *library.Repository, cfg *config.Config, l *slog.Logger, version string) error {
	s := NewServer(repo, cfg, l, version)
	return server.ServeStdio(s)
}
