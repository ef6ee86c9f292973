package web

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/yuin/goldmark"

	"github.com/hpungsan/flow/internal/errors"
	"github.com/hpungsan/flow/internal/logging"
)

// maxBodyBytes caps request bodies; task text is short.
const maxBodyBytes = 1 << 20

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderError writes the error envelope shared with the MCP tools.
// Internal causes are logged and never sent to the client.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	var fErr *errors.FlowError
	if !stderrors.As(err, &fErr) {
		fErr = errors.NewInternal(err)
	}

	errorObj := map[string]any{
		"code":    string(fErr.Code),
		"message": fErr.Message,
		"status":  fErr.Status,
	}
	if fErr.Code == errors.ErrInternal {
		logging.FromContext(r.Context()).Error("request failed",
			"method", r.Method, "path", r.URL.Path, "err", fErr.Details["internal_error"])
	} else if fErr.Details != nil {
		errorObj["details"] = fErr.Details
	}

	renderJSON(w, fErr.Status, map[string]any{"error": errorObj})
}

// decodeBody reads a JSON request body into v. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil
		}
		return errors.NewInvalidRequest("invalid JSON body: " + err.Error())
	}
	return nil
}

// renderMarkdown converts markdown text to HTML using goldmark.
// Raw HTML in the source is omitted.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// formatTime formats a Unix timestamp as "2006-01-02 15:04" in loc.
func formatTime(unix int64, loc *time.Location) string {
	return time.Unix(unix, 0).In(loc).Format("2006-01-02 15:04")
}
