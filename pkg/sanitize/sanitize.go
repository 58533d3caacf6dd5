package sanitize

import (
	"html"
	"strings"
)

// Clean normalizes one raw form value so it can be embedded verbatim in
// generated HTML: trims surrounding whitespace, drops NUL bytes, removes
// escape backslashes and HTML-escapes the reserved characters (< > & " ').
// Interior newlines are preserved; the email templates turn them into <br>.
// Total function: input that cannot be made meaningful is still escaped and
// passed through, rejection is the validator's job.
func Clean(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "\x00", "")
	s = stripSlashes(s)
	return html.EscapeString(s)
}

// stripSlashes removes escape backslashes the way legacy form handlers do:
// \" becomes ", \\ becomes \, a lone trailing \ is dropped.
func stripSlashes(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			if i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// Digits strips everything but decimal digits. Used to build tel: and
// wa.me links from a formatted phone number.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
