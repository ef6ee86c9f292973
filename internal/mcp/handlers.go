package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/flow/internal/config"
	"github.com/hpungsan/flow/internal/errors"
	"github.com/hpungsan/flow/internal/logging"
	"github.com/hpungsan/flow/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db     *sql.DB
	cfg    *config.Config
	parser *ops.Parser
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, parser *ops.Parser) *Handlers {
	return &Handlers{db: db, cfg: cfg, parser: parser}
}

// Request types for each tool

// ParseRequest represents the arguments for task_parse.
type ParseRequest struct {
	Text string `json:"text"`
}

// AddRequest represents the arguments for task_add.
type AddRequest struct {
	Text        string  `json:"text"`
	Description *string `json:"description,omitempty"`
	Force       bool    `json:"force,omitempty"`
}

// FetchRequest represents the arguments for task_fetch.
type FetchRequest struct {
	ID             string `json:"id"`
	IncludeDeleted bool   `json:"include_deleted,omitempty"`
}

// ListRequest represents the arguments for task_list.
type ListRequest struct {
	Status         string `json:"status,omitempty"`
	Tag            string `json:"tag,omitempty"`
	Context        string `json:"context,omitempty"`
	Date           string `json:"date,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	Offset         int    `json:"offset,omitempty"`
	IncludeDeleted bool   `json:"include_deleted,omitempty"`
}

// IDRequest represents the arguments for task_complete and task_delete.
type IDRequest struct {
	ID string `json:"id"`
}

// PurgeRequest represents the arguments for task_purge.
type PurgeRequest struct {
	OlderThanDays *int `json:"older_than_days,omitempty"`
}

// ExportRequest represents the arguments for task_export.
type ExportRequest struct {
	Path           string `json:"path,omitempty"`
	Format         string `json:"format,omitempty"`
	IncludeDeleted bool   `json:"include_deleted,omitempty"`
}

// ImportRequest represents the arguments for task_import.
type ImportRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// Handler implementations

// HandleParse handles the task_parse tool call.
func (h *Handlers) HandleParse(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ParseRequest](req)
	if err != nil {
		return errorResult(ctx, errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Parse(ctx, h.parser, ops.ParseInput{Text: input.Text})
	if err != nil {
		return errorResult(ctx, err), nil
	}

	return successResult(result)
}

// HandleAdd handles the task_add tool call.
func (h *Handlers) HandleAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddRequest](req)
	if err != nil {
		return errorResult(ctx, errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Add(ctx, h.db, h.parser, ops.AddInput{
		Text:        input.Text,
		Description: input.Description,
		Force:       input.Force,
	})
	if err != nil {
		return errorResult(ctx, err), nil
	}

	return successResult(result)
}

// HandleFetch handles the task_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return errorResult(ctx, errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Fetch(ctx, h.db, ops.FetchInput{
		ID:             input.ID,
		IncludeDeleted: input.IncludeDeleted,
	})
	if err != nil {
		return errorResult(ctx, err), nil
	}

	return successResult(result)
}

// HandleList handles the task_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(ctx, errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.List(ctx, h.db, ops.ListInput{
		Status:         input.Status,
		Tag:            input.Tag,
		Context:        input.Context,
		Date:           input.Date,
		Limit:          input.Limit,
		Offset:         input.Offset,
		IncludeDeleted: input.IncludeDeleted,
	})
	if err != nil {
		return errorResult(ctx, err), nil
	}

	return successResult(result)
}

// HandleComplete handles the task_complete tool call.
func (h *Handlers) HandleComplete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(ctx, errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Complete(ctx, h.db, h.parser, ops.CompleteInput{ID: input.ID})
	if err != nil {
		return errorResult(ctx, err), nil
	}

	return successResult(result)
}

// HandleDelete handles the task_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(ctx, errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Delete(ctx, h.db, ops.DeleteInput{ID: input.ID})
	if err != nil {
		return errorResult(ctx, err), nil
	}

	return successResult(result)
}

// HandlePurge handles the task_purge tool call.
func (h *Handlers) HandlePurge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PurgeRequest](req)
	if err != nil {
		return errorResult(ctx, errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Purge(ctx, h.db, ops.PurgeInput{OlderThanDays: input.OlderThanDays})
	if err != nil {
		return errorResult(ctx, err), nil
	}

	return successResult(result)
}

// HandleExport handles the task_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(ctx, errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(ctx, h.db, h.cfg, ops.ExportInput{
		Path:           input.Path,
		Format:         input.Format,
		IncludeDeleted: input.IncludeDeleted,
	})
	if err != nil {
		return errorResult(ctx, err), nil
	}

	return successResult(result)
}

// HandleImport handles the task_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(ctx, errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Import(ctx, h.db, h.cfg, ops.ImportInput{
		Path: input.Path,
		Mode: ops.ImportMode(strings.ToLower(strings.TrimSpace(input.Mode))),
	})
	if err != nil {
		return errorResult(ctx, err), nil
	}

	return successResult(result)
}

// Helper functions

// errorResult creates an MCP error result from any error. A FlowError wrapped
// with extra context keeps its code and status; the wrapping prefix is
// prepended to the message. Internal causes are logged, never returned.
func errorResult(ctx context.Context, err error) *mcp.CallToolResult {
	var payload map[string]any

	var flowErr *errors.FlowError
	if stderrors.As(err, &flowErr) {
		message := flowErr.Message
		if flowErr.Code != errors.ErrInternal && err != error(flowErr) {
			if prefix := strings.TrimSuffix(err.Error(), flowErr.Error()); prefix != err.Error() {
				message = prefix + message
			}
		}
		errorObj := map[string]any{
			"code":    flowErr.Code,
			"message": message,
			"status":  flowErr.Status,
		}
		// Internal details stay server-side.
		if flowErr.Code != errors.ErrInternal && flowErr.Details != nil {
			errorObj["details"] = flowErr.Details
		}
		if flowErr.Code == errors.ErrInternal {
			logging.FromContext(ctx).Error("tool failed", "err", flowErr.Details["internal_error"])
		}
		payload = map[string]any{"error": errorObj}
	} else {
		logging.FromContext(ctx).Error("tool failed", "err", err)
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
