package exposition

import (
	"strings"
	"unicode/utf8"
)

// EscapeHelp escapes a HELP comment body: backslash and line feed.
// Invalid UTF-8 is replaced with U+FFFD since the document is served as utf-8.
func EscapeHelp(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "\uFFFD")
	}
	if !strings.ContainsAny(s, "\\\n") {
		return s
	}
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// EscapeLabelValue escapes a label value: backslash, double quote and line feed.
func EscapeLabelValue(s string) string {
	if !strings.ContainsAny(s, "\\\"\n") {
		return s
	}
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

type stringWriter interface {
	WriteString(s string) (int, error)
	WriteByte(c byte) error
}

// writeLabels writes name="value" pairs separated by commas, without braces.
func writeLabels(w stringWriter, labels []Label) {
	for i, l := range labels {
		if i > 0 {
			_ = w.WriteByte(',')
		}
		_, _ = w.WriteString(l.Name)
		_, _ = w.WriteString(`="`)
		_, _ = w.WriteString(EscapeLabelValue(l.Value))
		_ = w.WriteByte('"')
	}
}
