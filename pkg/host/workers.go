package host

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/getmockd/promexport/pkg/registry"
)

// RequestIDHeader carries the per-request identifier.
const RequestIDHeader = "X-Request-Id"

// metricRequests counts every request. Per-slot names use worker ids from 1
// and core ids from 0.
const metricRequests = "requests"

// slot is one (worker, core) execution slot.
type slot struct {
	worker, core int

	workerRequests string
	coreRequests   string
	coreBusy       string
}

// workerPool hands out execution slots to requests and accounts for them in
// the registry.
type workerPool struct {
	slots chan *slot
	size  int
	reg   *registry.Registry
	log   *slog.Logger
}

func newWorkerPool(workers, cores int, reg *registry.Registry, log *slog.Logger) (*workerPool, error) {
	p := &workerPool{
		slots: make(chan *slot, workers*cores),
		size:  workers * cores,
		reg:   reg,
		log:   log,
	}

	if reg != nil {
		if _, err := reg.Register(metricRequests, registry.Counter); err != nil {
			return nil, fmt.Errorf("register worker metrics: %w", err)
		}
		for class := 1; class <= 5; class++ {
			if _, err := reg.Register(statusMetric(class), registry.Counter); err != nil {
				return nil, fmt.Errorf("register worker metrics: %w", err)
			}
		}
	}

	for w := 1; w <= workers; w++ {
		workerRequests := "worker." + strconv.Itoa(w) + ".requests"
		if reg != nil {
			if _, err := reg.Register(workerRequests, registry.Counter); err != nil {
				return nil, fmt.Errorf("register worker metrics: %w", err)
			}
		}
		for c := 0; c < cores; c++ {
			s := &slot{
				worker:         w,
				core:           c,
				workerRequests: workerRequests,
				coreRequests:   fmt.Sprintf("worker.%d.core.%d.requests", w, c),
				coreBusy:       fmt.Sprintf("worker.%d.core.%d.busy", w, c),
			}
			if reg != nil {
				if _, err := reg.Register(s.coreRequests, registry.Counter); err != nil {
					return nil, fmt.Errorf("register worker metrics: %w", err)
				}
				if _, err := reg.Register(s.coreBusy, registry.Gauge); err != nil {
					return nil, fmt.Errorf("register worker metrics: %w", err)
				}
			}
			p.slots <- s
		}
	}
	return p, nil
}

func statusMetric(class int) string {
	return "http.status." + strconv.Itoa(class) + "xx"
}

// Size returns the number of concurrent requests the pool serves.
func (p *workerPool) Size() int { return p.size }

// wrap serves next on a pool slot. A request waits for a free slot and gives
// up when its context ends first.
func (p *workerPool) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var s *slot
		select {
		case s = <-p.slots:
		case <-r.Context().Done():
			return
		}
		defer func() { p.slots <- s }()

		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		p.begin(s)
		start := time.Now()
		sw := newStatusWriter(w)
		next.ServeHTTP(sw, r)
		p.end(s, sw.statusCode)

		p.log.Debug("request served",
			"request_id", id,
			"worker", s.worker,
			"core", s.core,
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.statusCode,
			"duration", time.Since(start),
		)
	})
}

func (p *workerPool) begin(s *slot) {
	if p.reg == nil {
		return
	}
	_ = p.reg.Set(s.coreBusy, 1)
}

func (p *workerPool) end(s *slot, status int) {
	if p.reg == nil {
		return
	}
	_ = p.reg.Set(s.coreBusy, 0)
	_ = p.reg.Inc(metricRequests)
	_ = p.reg.Inc(s.workerRequests)
	_ = p.reg.Inc(s.coreRequests)
	if class := status / 100; class >= 1 && class <= 5 {
		_ = p.reg.Inc(statusMetric(class))
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	return &statusWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.written {
		w.statusCode = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.written = true
	}
	return w.ResponseWriter.Write(b)
}

// Flush implements http.Flusher if the underlying ResponseWriter supports it.
func (w *statusWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
