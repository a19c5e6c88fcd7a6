package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/pocket/internal/capsule"
)

func levelNames() []string {
	names := make([]string, len(capsule.Levels))
	for i, l := range capsule.Levels {
		names[i] = string(l)
	}
	return names
}

// Tool definitions

var listToolDef = mcp.NewTool("capsule_list",
	mcp.WithDescription("List saved capsules, most recently created first, with flashcard and quiz progress."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("subject", mcp.Description("Only capsules with this subject (case-insensitive)")),
	mcp.WithString("level", mcp.Description("Only capsules with this level"), mcp.Enum(levelNames()...)),
	mcp.WithNumber("limit", mcp.Description("Max items to return (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip")),
)

var latestToolDef = mcp.NewTool("capsule_latest",
	mcp.WithDescription("Get the most recently created capsule, or null when the library is empty."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var fetchToolDef = mcp.NewTool("capsule_fetch",
	mcp.WithDescription("Fetch a capsule with all its notes, flashcards, quiz questions and progress."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("id", mcp.Required(), mcp.Description("Capsule id")),
)

var saveToolDef = mcp.NewTool("capsule_save",
	mcp.WithDescription("Create a capsule, or replace an existing one when capsule.id is set. "+
		"Fields are trimmed and blank notes, flashcards and questions are dropped. "+
		"A capsule needs a title and at least one note, flashcard or question."),
	mcp.WithObject("capsule", mcp.Required(),
		mcp.Description(`Capsule: {"id"?, "meta": {"title", "subject", "level", "description"}, `+
			`"notes": [string], "flashcards": [{"front", "back"}], `+
			`"quiz": [{"q", "choices": [4 strings], "correct": 0-3, "explain"}]}`)),
	mcp.WithString("notes_text", mcp.Description("Extra notes, one per line")),
)

var deleteToolDef = mcp.NewTool("capsule_delete",
	mcp.WithDescription("Delete a capsule and its progress."),
	mcp.WithDestructiveHintAnnotation(true),
	mcp.WithString("id", mcp.Required(), mcp.Description("Capsule id")),
)

var exportToolDef = mcp.NewTool("capsule_export",
	mcp.WithDescription("Write a capsule as a portable pocket-classroom/v1 JSON document."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Capsule id")),
	mcp.WithString("path", mcp.Description("Output .json file (default: exports dir, named after the title)")),
)

var importToolDef = mcp.NewTool("capsule_import",
	mcp.WithDescription("Import a pocket-classroom/v1 document as a new capsule. Provide path or text."),
	mcp.WithString("path", mcp.Description("Document .json file")),
	mcp.WithString("text", mcp.Description("Document content")),
)

var searchToolDef = mcp.NewTool("capsule_search",
	mcp.WithDescription("Search capsule titles, subjects, notes, flashcards and questions."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("query", mcp.Required(), mcp.Description("Text to look for (case-insensitive)")),
	mcp.WithNumber("limit", mcp.Description("Max items to return (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip")),
)

var progressToolDef = mcp.NewTool("progress_get",
	mcp.WithDescription("Get known flashcards and best quiz score for a capsule."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("id", mcp.Required(), mcp.Description("Capsule id")),
)

var doctorToolDef = mcp.NewTool("library_doctor",
	mcp.WithDescription("Check that the capsule index matches the stored capsules, optionally repairing it."),
	mcp.WithBoolean("repair", mcp.Description("Rebuild the index and drop orphaned progress")),
)

var studyOpenToolDef = mcp.NewTool("study_open",
	mcp.WithDescription("Open a capsule for study. Restores known flashcards and best score."),
	mcp.WithString("id", mcp.Description("Capsule id (default: most recently created)")),
	mcp.WithString("mode", mcp.Description("Starting mode (default notes)"), mcp.Enum("notes", "flashcards", "quiz")),
)

var studyNotesToolDef = mcp.NewTool("study_notes",
	mcp.WithDescription("Read the notes of the open capsule."),
	mcp.WithString("filter", mcp.Description("Only notes containing this text (case-insensitive)")),
	mcp.WithString("format", mcp.Description("Output format (default text)"), mcp.Enum("text", "markdown", "html")),
)

var studyCardToolDef = mcp.NewTool("study_card",
	mcp.WithDescription("Work through the flashcards of the open capsule. The back is shown once flipped."),
	mcp.WithString("action", mcp.Description("What to do (default show)"),
		mcp.Enum("show", "next", "prev", "flip", "known", "unknown")),
)

var studyQuizToolDef = mcp.NewTool("study_quiz",
	mcp.WithDescription("Take the quiz of the open capsule: answer a question, then next to continue. "+
		"The last next scores the quiz and saves a new best score."),
	mcp.WithString("action", mcp.Description("What to do (default show)"),
		mcp.Enum("show", "start", "answer", "next")),
	mcp.WithNumber("choice", mcp.Description("Answer index 0-3, for action answer")),
)
