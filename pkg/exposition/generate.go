package exposition

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/getmockd/promexport/pkg/registry"
)

// ContentType is the media type of a generated document.
const ContentType = "text/plain; version=0.0.4; charset=utf-8"

// DefaultPrefix is prepended to every metric name unless configured otherwise.
const DefaultPrefix = "uwsgi_"

// workerPrefix marks per-worker metrics skipped by Options.NoWorkers.
const workerPrefix = "worker."

// ErrDocumentTooLarge is returned when a document outgrows Options.MaxSize.
var ErrDocumentTooLarge = errors.New("metrics document exceeds size limit")

// Source is a metric registry the generator can read.
// *registry.Registry implements it.
type Source interface {
	// Walk visits metrics in host order until fn returns false.
	Walk(fn func(*registry.Metric) bool)
	// Load reads one metric value under the registry read lock.
	Load(m *registry.Metric) int64
}

// Options control document generation.
type Options struct {
	// Prefix is prepended to every metric name. It must itself be a valid
	// metric name start; see ValidPrefix.
	Prefix string

	// NoWorkers skips metrics whose name starts with "worker.".
	NoWorkers bool

	// IncludeHelp and IncludeType gate the HELP and TYPE comments.
	IncludeHelp bool
	IncludeType bool

	// MaxSize caps the document size in bytes. 0 means unlimited.
	MaxSize int
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Prefix:      DefaultPrefix,
		IncludeHelp: true,
		IncludeType: true,
	}
}

// Generator renders registry snapshots as exposition documents.
// A Generator is immutable and safe for concurrent use.
type Generator struct {
	opts Options
}

// NewGenerator creates a generator. An empty prefix falls back to DefaultPrefix.
func NewGenerator(opts Options) *Generator {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	return &Generator{opts: opts}
}

// Options returns the generator options.
func (g *Generator) Options() Options { return g.opts }

// TypeOf maps a registry kind to its exposition type name.
func TypeOf(kind registry.Kind) string {
	switch kind {
	case registry.Counter:
		return "counter"
	case registry.Gauge, registry.Absolute:
		return "gauge"
	default:
		return "untyped"
	}
}

// Generate renders the whole document for src.
// A nil or empty source yields an empty, non-nil document.
func (g *Generator) Generate(src Source) ([]byte, error) {
	if src == nil {
		return []byte{}, nil
	}

	var (
		buf  bytes.Buffer
		seen seenNames
		err  error
	)
	src.Walk(func(m *registry.Metric) bool {
		if m == nil || m.Name == "" || m.Value == nil {
			return true
		}
		if g.opts.NoWorkers && strings.HasPrefix(m.Name, workerPrefix) {
			return true
		}

		name := Translate(m.Name, g.opts.Prefix)
		if name.IsEmpty() {
			return true
		}
		if m.Kind == registry.Counter {
			name.Name += "_total"
		}

		if !seen.contains(name.Name) {
			g.writeComments(&buf, name.Name, m)
			seen.add(name.Name)
		}
		writeSample(&buf, name, src.Load(m))

		if g.opts.MaxSize > 0 && buf.Len() > g.opts.MaxSize {
			err = fmt.Errorf("%w: more than %d bytes", ErrDocumentTooLarge, g.opts.MaxSize)
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	if buf.Len() == 0 {
		return []byte{}, nil
	}
	return buf.Bytes(), nil
}

// WriteTo generates the document for src and writes it to w in one call.
// Nothing is written when generation fails.
func (g *Generator) WriteTo(w io.Writer, src Source) (int64, error) {
	doc, err := g.Generate(src)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(doc)
	return int64(n), err
}

func (g *Generator) writeComments(buf *bytes.Buffer, name string, m *registry.Metric) {
	if g.opts.IncludeHelp {
		buf.WriteString("# HELP ")
		buf.WriteString(name)
		buf.WriteByte(' ')
		buf.WriteString(EscapeHelp(m.Name))
		buf.WriteByte('\n')
	}
	if g.opts.IncludeType {
		buf.WriteString("# TYPE ")
		buf.WriteString(name)
		buf.WriteByte(' ')
		buf.WriteString(TypeOf(m.Kind))
		buf.WriteByte('\n')
	}
}

func writeSample(buf *bytes.Buffer, name Name, value int64) {
	buf.WriteString(name.Name)
	if len(name.Labels) > 0 {
		buf.WriteByte('{')
		writeLabels(buf, name.Labels)
		buf.WriteByte('}')
	}
	buf.WriteByte(' ')
	buf.Write(strconv.AppendInt(buf.AvailableBuffer(), value, 10))
	buf.WriteByte('\n')
}
