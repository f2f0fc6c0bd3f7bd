package stats

import (
	"bytes"
	"sync"
	"testing"

	"github.com/abdul-hamid-achik/hitdesk/packages/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorReport(t *testing.T) {
	c := NewCollector()
	for i := int64(1); i <= 100; i++ {
		c.Record("get", i, 200)
	}
	c.Record("POST", 500, 201)
	c.Record("POST", 700, 500)

	r := c.Report()
	assert.Equal(t, int64(102), r.Count)
	assert.Equal(t, int64(101), r.Success)
	assert.Equal(t, int64(1), r.Failed)
	assert.Equal(t, int64(1), r.Min)
	assert.Equal(t, int64(700), r.Max)
	assert.Equal(t, int64(51), r.P50)
	assert.Equal(t, int64(97), r.P95)
	assert.Equal(t, int64(500), r.P99)
	assert.Equal(t, map[int]int64{200: 100, 201: 1, 500: 1}, r.Status)

	require.Len(t, r.ByMethod, 2)
	assert.Equal(t, "GET", r.ByMethod[0].Method)
	assert.Equal(t, int64(100), r.ByMethod[0].Count)
	assert.InDelta(t, 50.5, r.ByMethod[0].Mean, 0.01)
	assert.Equal(t, int64(50), r.ByMethod[0].P50)
	assert.Equal(t, int64(90), r.ByMethod[0].P90)
	assert.Equal(t, "POST", r.ByMethod[1].Method)
	assert.Equal(t, int64(500), r.ByMethod[1].Min)
	assert.Equal(t, int64(700), r.ByMethod[1].Max)
}

func TestCollectorEmpty(t *testing.T) {
	r := NewCollector().Report()
	assert.Equal(t, int64(0), r.Count)
	assert.Zero(t, r.P99)
	assert.Empty(t, r.ByMethod)
}

func TestCollectorClamps(t *testing.T) {
	c := NewCollector()
	c.Record("", -5, 200)
	c.Record("GET", MaxTrackableMs*2, 200)

	r := c.Report()
	assert.Equal(t, int64(0), r.Min)
	assert.GreaterOrEqual(t, r.Max, int64(MaxTrackableMs))
	require.Len(t, r.ByMethod, 1)
	assert.Equal(t, "GET", r.ByMethod[0].Method)
}

func TestCollectorConcurrent(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Record("GET", 10, 200)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(800), c.Report().Count)
}

func TestFromHistory(t *testing.T) {
	entries := []db.HistoryEntry{
		{Method: "GET", Status: 200, TimeMs: 10},
		{Method: "GET", Status: 404, TimeMs: 30},
		{Method: "DELETE", Status: 204, TimeMs: 20},
	}

	r := FromHistory(entries)
	assert.Equal(t, int64(3), r.Count)
	assert.Equal(t, int64(1), r.Failed)
	assert.InDelta(t, 20.0, r.Mean, 0.01)
	require.Len(t, r.ByMethod, 2)
	assert.Equal(t, "DELETE", r.ByMethod[0].Method)
	assert.Equal(t, "GET", r.ByMethod[1].Method)
}

func TestWritePrometheus(t *testing.T) {
	r := FromHistory([]db.HistoryEntry{
		{Method: "GET", Status: 200, TimeMs: 10},
		{Method: "POST", Status: 500, TimeMs: 30},
	})

	var buf bytes.Buffer
	require.NoError(t, WritePrometheus(&buf, r))

	out := buf.String()
	assert.Contains(t, out, "# TYPE hitdesk_requests_total counter\n")
	assert.Contains(t, out, "hitdesk_requests_total 2\n")
	assert.Contains(t, out, "hitdesk_requests_total{method=\"POST\"} 1\n")
	assert.Contains(t, out, "hitdesk_requests_failed_total 1\n")
	assert.Contains(t, out, "hitdesk_request_duration_ms{quantile=\"0.99\"} 30\n")
	assert.Contains(t, out, "hitdesk_request_duration_ms{method=\"GET\",quantile=\"0.5\"} 10\n")
	assert.Contains(t, out, "hitdesk_request_duration_ms_sum 40.00\n")
	assert.Contains(t, out, "hitdesk_request_duration_ms_count{method=\"GET\"} 1\n")
	assert.Contains(t, out, "hitdesk_requests_by_status_total{status=\"500\"} 1\n")
}

func TestSanitizeLabel(t *testing.T) {
	assert.Equal(t, `a\"b\\c\n`, sanitizeLabel("a\"b\\c\n"))
}
