package parsers

import (
	"regexp"
	"strings"
)

// Sentinel replaces a delimiter that sits inside a quoted span while the line is split.
// It is built from NUL and Unicode non-characters, which never occur in ordinary text.
const Sentinel = "\x00\uFDD0delim\uFDD1\x00"

// quotedSpan matches a "..." or '...' span. The first closing quote of the same kind ends
// the span; the other quote kind inside it is plain text.
var quotedSpan = regexp.MustCompile(`"[^"]*"|'[^']*'`)

// MaskQuotedDelimiters replaces every delimiter inside a quoted span with Sentinel.
// Delimiters outside quoted spans are left untouched.
func MaskQuotedDelimiters(line string, delimiter byte) string {
	d := string([]byte{delimiter})
	if !strings.Contains(line, d) {
		return line
	}
	return quotedSpan.ReplaceAllStringFunc(line, func(span string) string {
		return strings.ReplaceAll(span, d, Sentinel)
	})
}

// RestoreDelimiters reverses MaskQuotedDelimiters.
func RestoreDelimiters(value string, delimiter byte) string {
	return strings.ReplaceAll(value, Sentinel, string([]byte{delimiter}))
}
