package mcp

import "github.com/mark3labs/mcp-go/mcp"

var parseToolDef = mcp.NewTool("task_parse",
	mcp.WithDescription("Preview how free text would be parsed into a task (title, date, time, recurrence, priority, type, tags, contexts, energy, focus, duration, confidence). Nothing is stored. auto_apply is true when confidence meets auto_apply_confidence."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Free-text task, e.g. \"Meeting with John tomorrow at 3pm\"")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var addToolDef = mcp.NewTool("task_add",
	mcp.WithDescription("Parse free text and store it as a new task. Fails with LOW_CONFIDENCE when the parse is below min_confidence unless force is true."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Free-text task")),
	mcp.WithString("description", mcp.Description("Optional markdown notes")),
	mcp.WithBoolean("force", mcp.Description("Store even when confidence is below min_confidence")),
)

var fetchToolDef = mcp.NewTool("task_fetch",
	mcp.WithDescription("Fetch one task by ID."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Task ULID")),
	mcp.WithBoolean("include_deleted", mcp.Description("Also return soft-deleted tasks")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var listToolDef = mcp.NewTool("task_list",
	mcp.WithDescription("List task summaries, most recently updated first."),
	mcp.WithString("status", mcp.Description("open, done or all (default all)")),
	mcp.WithString("tag", mcp.Description("Only tasks with this tag")),
	mcp.WithString("context", mcp.Description("Only tasks with this @context")),
	mcp.WithString("date", mcp.Description("Only tasks scheduled on this YYYY-MM-DD date")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Page offset")),
	mcp.WithBoolean("include_deleted", mcp.Description("Include soft-deleted tasks")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var completeToolDef = mcp.NewTool("task_complete",
	mcp.WithDescription("Mark a task done. Recurring tasks get their next occurrence scheduled. Completing a done task is a no-op."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Task ULID")),
	mcp.WithIdempotentHintAnnotation(true),
)

var deleteToolDef = mcp.NewTool("task_delete",
	mcp.WithDescription("Soft-delete a task. It can still be fetched with include_deleted until purged."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Task ULID")),
	mcp.WithDestructiveHintAnnotation(true),
)

var purgeToolDef = mcp.NewTool("task_purge",
	mcp.WithDescription("Permanently remove soft-deleted tasks."),
	mcp.WithNumber("older_than_days", mcp.Description("Only purge tasks deleted more than N days ago")),
	mcp.WithDestructiveHintAnnotation(true),
)

var exportToolDef = mcp.NewTool("task_export",
	mcp.WithDescription("Export tasks to a JSONL or YAML file directly inside ~/.flow/exports or a configured allowed path."),
	mcp.WithString("path", mcp.Description("Destination file (.jsonl, .yaml or .yml); default ~/.flow/exports/tasks-<timestamp>.<format>")),
	mcp.WithString("format", mcp.Description("jsonl or yaml; inferred from path when omitted")),
	mcp.WithBoolean("include_deleted", mcp.Description("Include soft-deleted tasks")),
)

var importToolDef = mcp.NewTool("task_import",
	mcp.WithDescription("Import tasks from a JSONL or YAML export file."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Export file (.jsonl, .yaml or .yml)")),
	mcp.WithString("mode", mcp.Description("error (default, atomic), replace or rename")),
)
