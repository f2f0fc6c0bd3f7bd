// Package curl renders request templates as shell-ready curl commands.
package curl

import (
	"net/url"
	"strings"

	"github.com/abdul-hamid-achik/hitdesk/packages/core/request"
)

// lineBreakThreshold is the part count above which each part gets its own line.
const lineBreakThreshold = 3

// ToCurl renders t as a curl command. Placeholders are emitted as they
// appear, so callers resolve t first.
func ToCurl(t *request.Template) string {
	parts := []string{"curl"}

	method := t.NormalizedMethod()
	if method != request.MethodGet {
		parts = append(parts, "-X "+method)
	}

	parts = append(parts, quote(buildURL(t)))

	for _, h := range t.EnabledHeaders() {
		parts = append(parts, "-H "+quote(h.Key+": "+h.Value))
	}

	parts = append(parts, authParts(t.Auth)...)

	if strings.TrimSpace(t.Body) != "" {
		if !hasContentType(t) && looksLikeJSON(t.Body) {
			parts = append(parts, "-H 'Content-Type: application/json'")
		}
		parts = append(parts, "-d "+quote(t.Body))
	}

	if len(parts) > lineBreakThreshold {
		return strings.Join(parts, " \\\n  ")
	}
	return strings.Join(parts, " ")
}

func buildURL(t *request.Template) string {
	var pairs []string
	for _, p := range t.EnabledParams() {
		pairs = append(pairs, encode(p.Key)+"="+encode(p.Value))
	}
	if t.Auth.Kind() == request.AuthAPIKey && t.Auth.Location() == request.LocationQuery &&
		t.Auth.APIKey != "" && t.Auth.APIValue != "" {
		pairs = append(pairs, encode(t.Auth.APIKey)+"="+encode(t.Auth.APIValue))
	}
	if len(pairs) == 0 {
		return t.URL
	}

	sep := "?"
	if strings.Contains(t.URL, "?") {
		sep = "&"
	}
	return t.URL + sep + strings.Join(pairs, "&")
}

func authParts(a request.Auth) []string {
	switch a.Kind() {
	case request.AuthBearer:
		if a.Token != "" {
			return []string{"-H " + quote("Authorization: Bearer "+a.Token)}
		}
	case request.AuthAPIKey:
		if a.Location() == request.LocationHeader && a.APIKey != "" && a.APIValue != "" {
			return []string{"-H " + quote(a.APIKey+": "+a.APIValue)}
		}
	case request.AuthBasic:
		if a.Username != "" {
			return []string{"-u " + quote(a.Username+":"+a.Password)}
		}
	}
	return nil
}

func hasContentType(t *request.Template) bool {
	_, ok := t.Header("Content-Type")
	return ok
}

func looksLikeJSON(body string) bool {
	trimmed := strings.TrimSpace(body)
	return (strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")) ||
		(strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"))
}

// encode percent-encodes everything outside the unreserved set, spaces included.
func encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// quote wraps s in single quotes for a POSIX shell.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
