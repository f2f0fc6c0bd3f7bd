package output

import (
	"fmt"
	"io"

	"github.com/abdul-hamid-achik/hitdesk/packages/collection"
	"github.com/abdul-hamid-achik/hitdesk/packages/core/env"
	"github.com/abdul-hamid-achik/hitdesk/packages/core/request"
	"github.com/abdul-hamid-achik/hitdesk/packages/core/validate"
	"github.com/abdul-hamid-achik/hitdesk/packages/db"
	"github.com/abdul-hamid-achik/hitdesk/packages/stats"
)

// Formatter renders command results.
type Formatter interface {
	FormatResponse(req *request.Template, resp *request.Response) error
	FormatIssues(issues []validate.Issue) error
	FormatTemplate(t *request.Template) error
	FormatEnv(vars []env.EnvVar) error
	FormatHistory(entries []db.HistoryEntry) error
	FormatStats(r *stats.Report) error
	FormatCollections(cols []collection.Collection) error
	FormatMatches(matches []collection.Match) error
	FormatError(err error)
}

// Format names an output format.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// New returns the formatter for format writing to w.
func New(format string, w io.Writer, verbose, noColor bool) (Formatter, error) {
	switch Format(format) {
	case FormatConsole, "":
		return NewConsoleFormatter(WithWriter(w), WithVerbose(verbose), WithNoColor(noColor)), nil
	case FormatJSON:
		return NewJSONFormatter(JSONWithWriter(w)), nil
	default:
		return nil, fmt.Errorf("unknown output format: %s (use console or json)", format)
	}
}
