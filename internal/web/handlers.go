package web

import (
	"database/sql"
	"html/template"
	"net/http"
	"strconv"

	"github.com/hpungsan/flow/internal/config"
	"github.com/hpungsan/flow/internal/errors"
	"github.com/hpungsan/flow/internal/ops"
)

// Handlers contains HTTP route handlers for the task API.
type Handlers struct {
	db     *sql.DB
	cfg    *config.Config
	parser *ops.Parser
}

// textRequest is the body of POST /api/parse.
type textRequest struct {
	Text string `json:"text"`
}

// createRequest is the body of POST /api/tasks.
type createRequest struct {
	Text        string  `json:"text"`
	Description *string `json:"description,omitempty"`
	Force       bool    `json:"force,omitempty"`
}

// DetailResponse is a fetched task with its description rendered for display.
type DetailResponse struct {
	*ops.FetchOutput
	DescriptionHTML template.HTML `json:"description_html,omitempty"`
	CreatedLocal    string        `json:"created_local"`
	CompletedLocal  string        `json:"completed_local,omitempty"`
}

// HandleParse handles POST /api/parse: preview a parse without storing.
func (h *Handlers) HandleParse(w http.ResponseWriter, r *http.Request) {
	var body textRequest
	if err := decodeBody(w, r, &body); err != nil {
		renderError(w, r, err)
		return
	}

	result, err := ops.Parse(r.Context(), h.parser, ops.ParseInput{Text: body.Text})
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, result)
}

// HandleList handles GET /api/tasks: list task summaries.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := ops.ListInput{
		Status:         q.Get("status"),
		Tag:            q.Get("tag"),
		Context:        q.Get("context"),
		Date:           q.Get("date"),
		Limit:          parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset:         parseIntParam(r, "offset", 0),
		IncludeDeleted: parseBoolParam(r, "include_deleted"),
	}

	result, err := ops.List(r.Context(), h.db, input)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, result)
}

// HandleCreate handles POST /api/tasks: parse free text and store it.
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if err := decodeBody(w, r, &body); err != nil {
		renderError(w, r, err)
		return
	}

	result, err := ops.Add(r.Context(), h.db, h.parser, ops.AddInput{
		Text:        body.Text,
		Description: body.Description,
		Force:       body.Force,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/tasks/"+result.ID)
	renderJSON(w, http.StatusCreated, result)
}

// HandleDetail handles GET /api/tasks/{id}: fetch one task.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Fetch(r.Context(), h.db, ops.FetchInput{
		ID:             r.PathValue("id"),
		IncludeDeleted: parseBoolParam(r, "include_deleted"),
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	loc := h.parser.Location()
	resp := DetailResponse{
		FetchOutput:  result,
		CreatedLocal: formatTime(result.CreatedAt, loc),
	}
	if result.Description != nil && *result.Description != "" {
		resp.DescriptionHTML = renderMarkdown(*result.Description)
	}
	if result.CompletedAt != nil {
		resp.CompletedLocal = formatTime(*result.CompletedAt, loc)
	}

	renderJSON(w, http.StatusOK, resp)
}

// HandleComplete handles POST /api/tasks/{id}/complete.
func (h *Handlers) HandleComplete(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Complete(r.Context(), h.db, h.parser, ops.CompleteInput{ID: r.PathValue("id")})
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, result)
}

// HandleDelete handles DELETE /api/tasks/{id}: soft-delete a task.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Delete(r.Context(), h.db, ops.DeleteInput{ID: r.PathValue("id")})
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, result)
}

// HandlePurge handles POST /api/tasks/purge: permanently delete soft-deleted tasks.
func (h *Handlers) HandlePurge(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	if r.FormValue("confirm") != "true" {
		renderError(w, r, errors.NewInvalidRequest("confirm parameter must be \"true\""))
		return
	}

	var input ops.PurgeInput
	if days := r.FormValue("older_than_days"); days != "" {
		d, err := strconv.Atoi(days)
		if err != nil {
			renderError(w, r, errors.NewInvalidRequest("older_than_days must be an integer"))
			return
		}
		input.OlderThanDays = &d
	}

	result, err := ops.Purge(r.Context(), h.db, input)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, result)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1"
}
