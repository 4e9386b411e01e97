package exposition

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeHelp(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{`back\slash`, `back\\slash`},
		{"new\nline", `new\nline`},
		{`keep "quotes"`, `keep "quotes"`},
		{"bad\xffutf8", "bad\uFFFDutf8"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeHelp(tt.in), "input %q", tt.in)
	}
}

func TestEscapeLabelValue(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"3", "3"},
		{`a"b`, `a\"b`},
		{`a\b`, `a\\b`},
		{"a\nb", `a\nb`},
		{`\"` + "\n", `\\\"\n`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeLabelValue(tt.in), "input %q", tt.in)
	}
}

func TestWriteLabelsEscapes(t *testing.T) {
	var b strings.Builder
	writeLabels(&b, []Label{{"worker", "1"}, {"id", `x"y`}})
	assert.Equal(t, `worker="1",id="x\"y"`, b.String())
}

func TestSeenNames(t *testing.T) {
	var s seenNames
	assert.False(t, s.contains("uwsgi_requests_total"))

	s.add("uwsgi_requests_total")
	assert.True(t, s.contains("uwsgi_requests_total"))
	assert.False(t, s.contains("uwsgi_requests"))
}
