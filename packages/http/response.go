package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitdesk/packages/core/request"
	"github.com/tidwall/gjson"
)

// NewResponse converts a received response into the request.Response
// payload. The body is decoded as JSON when it parses and kept as text
// otherwise. Header names are lower-cased and repeated values joined.
func NewResponse(resp *http.Response, body []byte, elapsed time.Duration) *request.Response {
	statusText := http.StatusText(resp.StatusCode)
	if statusText == "" {
		statusText = "Unknown"
	}

	headers := make(map[string]string, len(resp.Header))
	for k, values := range resp.Header {
		headers[strings.ToLower(k)] = strings.Join(values, ", ")
	}

	return &request.Response{
		Status:     resp.StatusCode,
		StatusText: statusText,
		Body:       DecodeBody(body),
		Headers:    headers,
		Time:       elapsed.Milliseconds(),
		Size:       FormatSize(len(body)),
		Raw:        body,
	}
}

// DecodeBody returns the JSON value of body, or body as a string when it is
// not valid JSON.
func DecodeBody(body []byte) any {
	if gjson.ValidBytes(body) {
		return gjson.ParseBytes(body).Value()
	}
	return string(body)
}

// FormatSize renders a byte count as kilobytes with two decimals.
func FormatSize(n int) string {
	return fmt.Sprintf("%.2f", float64(n)/1024)
}
