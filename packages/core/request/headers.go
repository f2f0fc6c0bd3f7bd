package request

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DisplayHeaderKey formats a header key as Title-Case-With-Dashes for display,
// e.g. "content-type" becomes "Content-Type". The stored key is not changed.
func DisplayHeaderKey(key string) string {
	parts := strings.Split(key, "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(p)
		parts[i] = string(unicode.ToUpper(r)) + strings.ToLower(p[size:])
	}
	return strings.Join(parts, "-")
}
