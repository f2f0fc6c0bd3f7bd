package output

import (
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/abdul-hamid-achik/hitdesk/packages/collection"
	"github.com/abdul-hamid-achik/hitdesk/packages/core/env"
	"github.com/abdul-hamid-achik/hitdesk/packages/core/request"
	"github.com/abdul-hamid-achik/hitdesk/packages/core/validate"
	"github.com/abdul-hamid-achik/hitdesk/packages/db"
	"github.com/abdul-hamid-achik/hitdesk/packages/stats"
)

// JSONResponse is a sent request and its response
type JSONResponse struct {
	Request  *JSONRequest      `json:"request,omitempty"`
	Response *request.Response `json:"response"`
}

// JSONRequest represents request details
type JSONRequest struct {
	Method string `json:"method"`
	URL    string `json:"url"`
}

// JSONValidation represents a validation result
type JSONValidation struct {
	Valid    bool             `json:"valid"`
	Errors   []validate.Issue `json:"errors"`
	Warnings []validate.Issue `json:"warnings"`
}

// JSONMatch represents a collection search hit
type JSONMatch struct {
	Path    []string                `json:"path"`
	Request collection.SavedRequest `json:"request"`
}

// JSONError represents a failed command
type JSONError struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// JSONFormatter writes one JSON document per call
type JSONFormatter struct {
	writer io.Writer
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func (f *JSONFormatter) FormatResponse(req *request.Template, resp *request.Response) error {
	out := JSONResponse{Response: resp}
	if req != nil {
		out.Request = &JSONRequest{Method: req.NormalizedMethod(), URL: req.URL}
	}
	return f.encode(out)
}

func (f *JSONFormatter) FormatIssues(issues []validate.Issue) error {
	result := &validate.Result{Issues: issues}
	out := JSONValidation{
		Valid:    result.Valid(),
		Errors:   result.Errors(),
		Warnings: result.Warnings(),
	}
	if out.Errors == nil {
		out.Errors = []validate.Issue{}
	}
	if out.Warnings == nil {
		out.Warnings = []validate.Issue{}
	}
	return f.encode(out)
}

func (f *JSONFormatter) FormatTemplate(t *request.Template) error {
	return f.encode(t)
}

func (f *JSONFormatter) FormatEnv(vars []env.EnvVar) error {
	if vars == nil {
		vars = []env.EnvVar{}
	}
	return f.encode(vars)
}

func (f *JSONFormatter) FormatHistory(entries []db.HistoryEntry) error {
	if entries == nil {
		entries = []db.HistoryEntry{}
	}
	return f.encode(entries)
}

func (f *JSONFormatter) FormatStats(r *stats.Report) error {
	return f.encode(r)
}

func (f *JSONFormatter) FormatCollections(cols []collection.Collection) error {
	if cols == nil {
		cols = []collection.Collection{}
	}
	return f.encode(cols)
}

func (f *JSONFormatter) FormatMatches(matches []collection.Match) error {
	out := make([]JSONMatch, len(matches))
	for i, m := range matches {
		out[i] = JSONMatch{Path: m.Path, Request: m.Request}
	}
	return f.encode(out)
}

func (f *JSONFormatter) FormatError(err error) {
	out := JSONError{Error: err.Error()}
	var verr *validate.Error
	if errors.As(err, &verr) {
		out.Code = string(verr.First())
	}
	_ = f.encode(out)
}
