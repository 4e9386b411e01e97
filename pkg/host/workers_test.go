package host

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/promexport/pkg/logging"
	"github.com/getmockd/promexport/pkg/registry"
)

func load(t *testing.T, r *registry.Registry, name string) int64 {
	t.Helper()
	m, ok := r.Lookup(name)
	require.True(t, ok, name)
	return r.Load(m)
}

func TestWorkerPoolRegistersMetrics(t *testing.T) {
	reg := registry.New()
	p, err := newWorkerPool(2, 2, reg, logging.Nop())
	require.NoError(t, err)
	assert.Equal(t, 4, p.Size())

	for _, name := range []string{
		"requests",
		"worker.1.requests", "worker.2.requests",
		"worker.1.core.0.requests", "worker.2.core.1.busy",
		"http.status.2xx", "http.status.5xx",
	} {
		_, ok := reg.Lookup(name)
		assert.True(t, ok, name)
	}
}

func TestWorkerPoolCountsRequests(t *testing.T) {
	reg := registry.New()
	p, err := newWorkerPool(1, 1, reg, logging.Nop())
	require.NoError(t, err)
	h := p.wrap(NewApp())

	for _, path := range []string{"/", "/", "/error", "/missing"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, int64(4), load(t, reg, "requests"))
	assert.Equal(t, int64(4), load(t, reg, "worker.1.requests"))
	assert.Equal(t, int64(4), load(t, reg, "worker.1.core.0.requests"))
	assert.Equal(t, int64(0), load(t, reg, "worker.1.core.0.busy"))
	assert.Equal(t, int64(2), load(t, reg, "http.status.2xx"))
	assert.Equal(t, int64(1), load(t, reg, "http.status.4xx"))
	assert.Equal(t, int64(1), load(t, reg, "http.status.5xx"))
}

func TestWorkerPoolWithoutRegistry(t *testing.T) {
	p, err := newWorkerPool(1, 2, nil, logging.Nop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	p.wrap(NewApp()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWorkerPoolRequestID(t *testing.T) {
	p, err := newWorkerPool(1, 1, nil, logging.Nop())
	require.NoError(t, err)
	h := p.wrap(NewApp())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err = uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestWorkerPoolBusyGauge(t *testing.T) {
	reg := registry.New()
	p, err := newWorkerPool(1, 1, reg, logging.Nop())
	require.NoError(t, err)

	release := make(chan struct{})
	entered := make(chan struct{})
	h := p.wrap(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		close(entered)
		<-release
	}))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}()

	<-entered
	assert.Equal(t, int64(1), load(t, reg, "worker.1.core.0.busy"))

	// the only slot is taken, so a second request waits and gives up with its context
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))
	assert.Empty(t, rec.Header().Get(RequestIDHeader))

	close(release)
	wg.Wait()
	assert.Equal(t, int64(0), load(t, reg, "worker.1.core.0.busy"))
	assert.Equal(t, int64(1), load(t, reg, "requests"))
}

func TestWorkerPoolDuplicateMetric(t *testing.T) {
	reg := registry.New()
	reg.MustRegister("worker.1.requests", registry.Gauge)

	_, err := newWorkerPool(1, 1, reg, logging.Nop())
	assert.ErrorIs(t, err, registry.ErrDuplicateMetric)
}

func TestStatusWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := newStatusWriter(rec)
	sw.WriteHeader(http.StatusTeapot)
	sw.WriteHeader(http.StatusOK)
	_, _ = sw.Write([]byte("x"))
	sw.Flush()

	assert.Equal(t, http.StatusTeapot, sw.statusCode)
	assert.True(t, rec.Flushed)
}
