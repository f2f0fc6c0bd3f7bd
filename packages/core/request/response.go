package request

import "strings"

// Response is the payload the transport hands back for a sent request.
type Response struct {
	Status     int               `json:"status"`
	StatusText string            `json:"statusText"`
	Body       any               `json:"body"`
	Headers    map[string]string `json:"headers"`
	Time       int64             `json:"time"` // milliseconds
	Size       string            `json:"size"` // KB, two decimals

	// Raw holds the body bytes as received.
	Raw []byte `json:"-"`
}

// StatusClass returns the status family as 2, 3, 4 or 5.
func (r *Response) StatusClass() int {
	return r.Status / 100
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.Status >= 200 && r.Status < 300
}

// Header returns a response header by case-insensitive name.
func (r *Response) Header(name string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// BodyString returns the raw body as text.
func (r *Response) BodyString() string {
	return string(r.Raw)
}
