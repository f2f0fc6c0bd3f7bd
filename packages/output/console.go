package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitdesk/packages/collection"
	"github.com/abdul-hamid-achik/hitdesk/packages/core/env"
	"github.com/abdul-hamid-achik/hitdesk/packages/core/request"
	"github.com/abdul-hamid-achik/hitdesk/packages/core/validate"
	"github.com/abdul-hamid-achik/hitdesk/packages/db"
	"github.com/abdul-hamid-achik/hitdesk/packages/stats"
	"github.com/fatih/color"
)

// truncate shortens s to maxLen runes, marking the cut
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) > maxLen {
		return string(r[:maxLen]) + "..."
	}
	return s
}

// formatBody renders a decoded body, indenting JSON values
func formatBody(body any) string {
	switch val := body.(type) {
	case nil:
		return ""
	case string:
		return val
	}
	data, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", body)
	}
	return string(data)
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func statusColor(status int) *color.Color {
	switch {
	case status >= 200 && status < 300:
		return color.New(color.FgGreen)
	case status >= 300 && status < 400:
		return color.New(color.FgCyan)
	case status >= 400 && status < 500:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func (f *ConsoleFormatter) FormatResponse(req *request.Template, resp *request.Response) error {
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	if req != nil {
		fmt.Fprintf(f.writer, "%s %s\n", bold(req.NormalizedMethod()), req.URL)
	}

	status := statusColor(resp.Status).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n",
		status(fmt.Sprintf("%d %s", resp.Status, resp.StatusText)),
		cyan(fmt.Sprintf("(%dms, %s KB)", resp.Time, resp.Size)))

	if f.verbose && len(resp.Headers) > 0 {
		keys := make([]string, 0, len(resp.Headers))
		for k := range resp.Headers {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprintf(f.writer, "\n")
		for _, k := range keys {
			fmt.Fprintf(f.writer, "%s %s\n", dim(request.DisplayHeaderKey(k)+":"), resp.Headers[k])
		}
	}

	if body := formatBody(resp.Body); body != "" {
		fmt.Fprintf(f.writer, "\n%s\n", body)
	}
	return nil
}

func (f *ConsoleFormatter) FormatIssues(issues []validate.Issue) error {
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	if len(issues) == 0 {
		fmt.Fprintf(f.writer, "%s request is valid\n", green("✓"))
		return nil
	}

	for _, issue := range issues {
		symbol := red("✗")
		if issue.Severity == validate.SeverityWarning {
			symbol = yellow("!")
		}
		fmt.Fprintf(f.writer, "  %s %s\n", symbol, issue.String())
	}
	return nil
}

func (f *ConsoleFormatter) FormatTemplate(t *request.Template) error {
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(f.writer, "%s %s\n", bold(t.NormalizedMethod()), t.URL)
	for _, p := range t.EnabledParams() {
		fmt.Fprintf(f.writer, "  %s %s=%s\n", dim("?"), p.Key, p.Value)
	}
	for _, h := range t.EnabledHeaders() {
		fmt.Fprintf(f.writer, "  %s: %s\n", h.Key, h.Value)
	}
	for _, field := range t.Auth.Fields() {
		fmt.Fprintf(f.writer, "  %s %s = %s\n", dim("auth."+string(t.Auth.Kind())), field.Name, *field.Value)
	}
	if t.Body != "" {
		fmt.Fprintf(f.writer, "\n%s\n", t.Body)
	}
	return nil
}

func (f *ConsoleFormatter) FormatEnv(vars []env.EnvVar) error {
	dim := color.New(color.Faint).SprintFunc()

	if len(vars) == 0 {
		fmt.Fprintf(f.writer, "%s\n", dim("no variables"))
		return nil
	}
	for _, v := range vars {
		line := fmt.Sprintf("%s=%s", v.Key, v.Value)
		if !v.Enabled {
			line = dim(line + " (disabled)")
		}
		fmt.Fprintf(f.writer, "%s\n", line)
	}
	return nil
}

func (f *ConsoleFormatter) FormatHistory(entries []db.HistoryEntry) error {
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	if len(entries) == 0 {
		fmt.Fprintf(f.writer, "%s\n", dim("no history"))
		return nil
	}
	for _, e := range entries {
		status := statusColor(e.Status).SprintFunc()
		fmt.Fprintf(f.writer, "%s  %-7s %s %s %s\n",
			dim(e.Time().Format(time.DateTime)),
			bold(e.Method),
			status(fmt.Sprintf("%d", e.Status)),
			truncate(e.URL, 80),
			cyan(fmt.Sprintf("%dms", e.TimeMs)))
	}
	return nil
}

func (f *ConsoleFormatter) FormatStats(r *stats.Report) error {
	bold := color.New(color.Bold).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	if r.Count == 0 {
		fmt.Fprintf(f.writer, "no requests recorded\n")
		return nil
	}

	fmt.Fprintf(f.writer, "%s\n", bold("Latency (ms)"))
	f.writeSummaryRow("all", r.Summary)
	for _, m := range r.ByMethod {
		f.writeSummaryRow(m.Method, m.Summary)
	}

	failed := fmt.Sprintf("%d failed", r.Failed)
	if r.Failed > 0 {
		failed = red(failed)
	}
	fmt.Fprintf(f.writer, "\nRequests: %d total, %d ok, %s\n", r.Count, r.Success, failed)
	return nil
}

func (f *ConsoleFormatter) writeSummaryRow(label string, s stats.Summary) {
	fmt.Fprintf(f.writer, "  %-8s n=%-5d min=%-6d p50=%-6d p90=%-6d p95=%-6d p99=%-6d max=%-6d mean=%.1f\n",
		label, s.Count, s.Min, s.P50, s.P90, s.P95, s.P99, s.Max, s.Mean)
}

func (f *ConsoleFormatter) FormatCollections(cols []collection.Collection) error {
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	if len(cols) == 0 {
		fmt.Fprintf(f.writer, "%s\n", dim("no collections"))
		return nil
	}
	for i := range cols {
		c := &cols[i]
		fmt.Fprintf(f.writer, "%s %s\n", bold(c.Name), dim(fmt.Sprintf("(%d requests, %s)", c.Count(), c.ID)))
		if f.verbose {
			_ = c.Walk(func(path []string, r *collection.SavedRequest) error {
				indent := strings.Repeat("  ", len(path))
				fmt.Fprintf(f.writer, "%s%s %s %s\n", indent, r.Request.NormalizedMethod(), r.Name, dim(r.ID))
				return nil
			})
		}
	}
	return nil
}

func (f *ConsoleFormatter) FormatMatches(matches []collection.Match) error {
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	if len(matches) == 0 {
		fmt.Fprintf(f.writer, "%s\n", dim("no matches"))
		return nil
	}
	for _, m := range matches {
		fmt.Fprintf(f.writer, "%s %s %s\n", bold(m.Request.Request.NormalizedMethod()), m.Request.Name, dim(m.Location()))
		if f.verbose {
			fmt.Fprintf(f.writer, "    %s\n", m.Request.Request.URL)
		}
	}
	return nil
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("hitdesk"), version)
}
