// Package netutil collects small helpers used by the request pipeline
// that don't belong to any single component.
package netutil

import (
	"strings"
	"unicode"
)

const maxSanitizedLength = 100

// SanitizeForLog escapes control characters out of a client-controlled
// string (a request URI, a header line) so it can't forge extra log
// lines or terminal escape sequences when logged verbatim. This proxy
// logs client-supplied request URIs on its hit and error paths, and
// passes error causes through here before they reach an error page.
func SanitizeForLog(s string) string {
	if s == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(s))

	for _, r := range s {
		switch {
		case r == '\n':
			result.WriteString("\\n")
		case r == '\r':
			result.WriteString("\\r")
		case r == '\t':
			result.WriteString("\\t")
		case unicode.IsControl(r):
			result.WriteString("?")
		case r == '\\':
			result.WriteString("\\\\")
		case unicode.IsPrint(r):
			result.WriteRune(r)
		default:
			result.WriteString("?")
		}
	}

	if result.Len() > maxSanitizedLength {
		return result.String()[:maxSanitizedLength] + "...[truncated]"
	}
	return result.String()
}
