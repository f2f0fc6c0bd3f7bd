// Package stats summarizes request latency recorded in history.
package stats

import (
	"sort"
	"strings"
	"sync"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/abdul-hamid-achik/hitdesk/packages/db"
)

const (
	// MaxTrackableMs is the largest latency the histograms resolve. Longer
	// times are clamped to it.
	MaxTrackableMs = 3_600_000
	// SignificantFigures is the histogram precision.
	SignificantFigures = 3
)

// Summary holds latency figures in milliseconds for a set of requests.
type Summary struct {
	Count   int64         `json:"count"`
	Success int64         `json:"success"`
	Failed  int64         `json:"failed"`
	Min     int64         `json:"min"`
	Max     int64         `json:"max"`
	Mean    float64       `json:"mean"`
	P50     int64         `json:"p50"`
	P90     int64         `json:"p90"`
	P95     int64         `json:"p95"`
	P99     int64         `json:"p99"`
	Status  map[int]int64 `json:"status"`
}

// MethodSummary is the Summary for one HTTP method.
type MethodSummary struct {
	Method string `json:"method"`
	Summary
}

// Report is the overall summary plus a per-method breakdown sorted by method.
type Report struct {
	Summary
	ByMethod []MethodSummary `json:"byMethod"`
}

// series is one latency histogram with its counters.
type series struct {
	histogram *hdrhistogram.Histogram
	success   int64
	failed    int64
	status    map[int]int64
}

func newSeries() *series {
	return &series{
		histogram: hdrhistogram.New(1, MaxTrackableMs, SignificantFigures),
		status:    make(map[int]int64),
	}
}

func (s *series) record(timeMs int64, status int) {
	if timeMs < 0 {
		timeMs = 0
	}
	if timeMs > MaxTrackableMs {
		timeMs = MaxTrackableMs
	}
	_ = s.histogram.RecordValue(timeMs)

	if status >= 200 && status < 400 {
		s.success++
	} else {
		s.failed++
	}
	s.status[status]++
}

func (s *series) summary() Summary {
	sum := Summary{
		Count:   s.histogram.TotalCount(),
		Success: s.success,
		Failed:  s.failed,
		Status:  make(map[int]int64, len(s.status)),
	}
	for code, n := range s.status {
		sum.Status[code] = n
	}
	if sum.Count == 0 {
		return sum
	}

	sum.Min = s.histogram.Min()
	sum.Max = s.histogram.Max()
	sum.Mean = s.histogram.Mean()
	sum.P50 = s.histogram.ValueAtQuantile(50)
	sum.P90 = s.histogram.ValueAtQuantile(90)
	sum.P95 = s.histogram.ValueAtQuantile(95)
	sum.P99 = s.histogram.ValueAtQuantile(99)
	return sum
}

// Collector accumulates latencies. It is safe for concurrent use.
type Collector struct {
	mu       sync.Mutex
	all      *series
	byMethod map[string]*series
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{
		all:      newSeries(),
		byMethod: make(map[string]*series),
	}
}

// Record adds one request. Statuses outside 2xx and 3xx count as failed.
func (c *Collector) Record(method string, timeMs int64, status int) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = "GET"
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.all.record(timeMs, status)
	s, ok := c.byMethod[method]
	if !ok {
		s = newSeries()
		c.byMethod[method] = s
	}
	s.record(timeMs, status)
}

// RecordEntry adds a history entry.
func (c *Collector) RecordEntry(e db.HistoryEntry) {
	c.Record(e.Method, e.TimeMs, e.Status)
}

// Report returns the current summary.
func (c *Collector) Report() *Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := &Report{Summary: c.all.summary(), ByMethod: make([]MethodSummary, 0, len(c.byMethod))}

	methods := make([]string, 0, len(c.byMethod))
	for m := range c.byMethod {
		methods = append(methods, m)
	}
	sort.Strings(methods)

	for _, m := range methods {
		r.ByMethod = append(r.ByMethod, MethodSummary{Method: m, Summary: c.byMethod[m].summary()})
	}
	return r
}

// FromHistory summarizes a list of history entries.
func FromHistory(entries []db.HistoryEntry) *Report {
	c := NewCollector()
	for _, e := range entries {
		c.RecordEntry(e)
	}
	return c.Report()
}
