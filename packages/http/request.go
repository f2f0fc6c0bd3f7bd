package http

import (
	"encoding/base64"
	"net/url"
	"strings"

	"github.com/abdul-hamid-achik/hitdesk/packages/core/request"
)

// BuildURL appends the enabled params of t to its URL, URL-encoded, using
// "?" or "&" depending on whether the URL already carries a query.
// Params with a blank key are skipped.
func BuildURL(t *request.Template) string {
	return appendQuery(t.URL, queryPairs(t))
}

func queryPairs(t *request.Template) []request.KeyValue {
	var pairs []request.KeyValue
	for _, p := range t.EnabledParams() {
		if strings.TrimSpace(p.Key) == "" {
			continue
		}
		pairs = append(pairs, p)
	}
	if t.Auth.Kind() == request.AuthAPIKey && t.Auth.Location() == request.LocationQuery && t.Auth.APIKey != "" {
		pairs = append(pairs, request.KeyValue{Key: t.Auth.APIKey, Value: t.Auth.APIValue, Enabled: true})
	}
	return pairs
}

func appendQuery(rawURL string, pairs []request.KeyValue) string {
	if len(pairs) == 0 {
		return rawURL
	}

	encoded := make([]string, 0, len(pairs))
	for _, p := range pairs {
		encoded = append(encoded, url.QueryEscape(p.Key)+"="+url.QueryEscape(p.Value))
	}

	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + strings.Join(encoded, "&")
}

// AuthHeaders returns the headers the auth variant of t contributes.
// API keys placed in the query are handled by BuildURL instead.
func AuthHeaders(t *request.Template) map[string]string {
	headers := make(map[string]string)
	auth := t.Auth

	switch auth.Kind() {
	case request.AuthBearer:
		headers["Authorization"] = "Bearer " + auth.Token
	case request.AuthBasic:
		creds := auth.Username + ":" + auth.Password
		headers["Authorization"] = "Basic " + base64.StdEncoding.EncodeToString([]byte(creds))
	case request.AuthAPIKey:
		if auth.Location() == request.LocationHeader && validHeaderName(auth.APIKey) {
			headers[auth.APIKey] = auth.APIValue
		}
	}
	return headers
}

// RequestBody returns the body to send, or "" when the method drops it or
// the body is blank.
func RequestBody(t *request.Template) string {
	if !request.MethodSendsBody(t.NormalizedMethod()) {
		return ""
	}
	if strings.TrimSpace(t.Body) == "" {
		return ""
	}
	return t.Body
}

// validHeaderName reports whether name is a non-empty RFC 7230 token.
func validHeaderName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case strings.IndexByte("!#$%&'*+-.^_`|~", c) >= 0:
		default:
			return false
		}
	}
	return true
}
