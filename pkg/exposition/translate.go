package exposition

import (
	"strings"
)

// maxSegmentLen is the number of bytes kept from each dotted segment.
const maxSegmentLen = 255

// LabelNames are assigned, in order, to the numeric segments of a metric name.
// Numeric segments beyond the last label name are dropped.
var LabelNames = [...]string{"worker", "core", "thread", "id"}

// Label is a single name="value" pair.
type Label struct {
	Name  string
	Value string
}

// Name is a translated metric name with its labels.
type Name struct {
	Name   string
	Labels []Label
}

// IsEmpty reports whether translation produced no metric name.
func (n Name) IsEmpty() bool { return n.Name == "" }

// String renders the name in sample-line form, e.g. `a_b{worker="1"}`.
func (n Name) String() string {
	if len(n.Labels) == 0 {
		return n.Name
	}
	var b strings.Builder
	b.WriteString(n.Name)
	b.WriteByte('{')
	writeLabels(&b, n.Labels)
	b.WriteByte('}')
	return b.String()
}

// Translate converts a dotted host metric name into a Prometheus name and labels.
//
// Non-numeric segments are sanitized (every byte outside [A-Za-z0-9_]
// becomes '_') and appended to prefix, separated by a single '_' once
// something follows the prefix. Numeric segments become labels and add no
// characters, so "worker.3.requests" becomes "worker_requests" with
// worker="3" rather than "worker__requests".
//
// The returned Name is empty when the raw name contributes nothing beyond
// the prefix, e.g. for all-numeric names like "1.2.3".
func Translate(raw, prefix string) Name {
	var (
		name   = make([]byte, 0, len(prefix)+len(raw)+len("_total"))
		labels []Label
	)
	name = append(name, prefix...)

	for len(raw) > 0 {
		var seg string
		if i := strings.IndexByte(raw, '.'); i >= 0 {
			seg, raw = raw[:i], raw[i+1:]
		} else {
			seg, raw = raw, ""
		}
		if len(seg) > maxSegmentLen {
			seg = seg[:maxSegmentLen]
		}
		if seg == "" {
			continue
		}

		if isNumeric(seg) {
			if len(labels) < len(LabelNames) {
				labels = append(labels, Label{Name: LabelNames[len(labels)], Value: seg})
			}
			continue
		}

		if len(name) > len(prefix) {
			name = append(name, '_')
		}
		name = appendSanitized(name, seg)
	}

	if len(name) == len(prefix) {
		return Name{}
	}
	return Name{Name: string(name), Labels: labels}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func appendSanitized(dst []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isNameByte(c) {
			dst = append(dst, c)
		} else {
			dst = append(dst, '_')
		}
	}
	return dst
}

func isNameByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
}

// ValidPrefix reports whether prefix is a legal start of a Prometheus metric
// name ([A-Za-z_][A-Za-z0-9_]*). The empty prefix is not valid.
func ValidPrefix(prefix string) bool {
	if prefix == "" {
		return false
	}
	if c := prefix[0]; c >= '0' && c <= '9' {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		if !isNameByte(prefix[i]) {
			return false
		}
	}
	return true
}
