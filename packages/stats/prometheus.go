package stats

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// WritePrometheus writes r in the Prometheus text exposition format.
func WritePrometheus(w io.Writer, r *Report) error {
	b := &strings.Builder{}

	fmt.Fprintf(b, "# HELP hitdesk_requests_total Requests recorded in history\n")
	fmt.Fprintf(b, "# TYPE hitdesk_requests_total counter\n")
	fmt.Fprintf(b, "hitdesk_requests_total %d\n", r.Count)
	for _, m := range r.ByMethod {
		fmt.Fprintf(b, "hitdesk_requests_total{method=\"%s\"} %d\n", sanitizeLabel(m.Method), m.Count)
	}
	fmt.Fprintln(b)

	fmt.Fprintf(b, "# HELP hitdesk_requests_failed_total Requests that ended outside 2xx and 3xx\n")
	fmt.Fprintf(b, "# TYPE hitdesk_requests_failed_total counter\n")
	fmt.Fprintf(b, "hitdesk_requests_failed_total %d\n", r.Failed)
	fmt.Fprintln(b)

	fmt.Fprintf(b, "# HELP hitdesk_request_duration_ms Request duration in milliseconds\n")
	fmt.Fprintf(b, "# TYPE hitdesk_request_duration_ms summary\n")
	writeQuantiles(b, "", r.Summary)
	for _, m := range r.ByMethod {
		writeQuantiles(b, fmt.Sprintf("method=\"%s\",", sanitizeLabel(m.Method)), m.Summary)
	}
	fmt.Fprintln(b)

	fmt.Fprintf(b, "# HELP hitdesk_requests_by_status_total Requests by HTTP status code\n")
	fmt.Fprintf(b, "# TYPE hitdesk_requests_by_status_total counter\n")

	codes := make([]int, 0, len(r.Status))
	for code := range r.Status {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	for _, code := range codes {
		fmt.Fprintf(b, "hitdesk_requests_by_status_total{status=\"%d\"} %d\n", code, r.Status[code])
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeQuantiles(b *strings.Builder, labels string, s Summary) {
	quantiles := []struct {
		q string
		v int64
	}{
		{"0.5", s.P50},
		{"0.9", s.P90},
		{"0.95", s.P95},
		{"0.99", s.P99},
	}
	for _, q := range quantiles {
		fmt.Fprintf(b, "hitdesk_request_duration_ms{%squantile=\"%s\"} %d\n", labels, q.q, q.v)
	}
	set := ""
	if labels != "" {
		set = "{" + strings.TrimSuffix(labels, ",") + "}"
	}
	fmt.Fprintf(b, "hitdesk_request_duration_ms_sum%s %.2f\n", set, s.Mean*float64(s.Count))
	fmt.Fprintf(b, "hitdesk_request_duration_ms_count%s %d\n", set, s.Count)
}

// sanitizeLabel makes a string safe for use as a Prometheus label value
func sanitizeLabel(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
