package metrics

import (
	"context"
	"fmt"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/getmockd/promexport/pkg/registry"
)

// Registered metric names.
const (
	NameUptime       = "uptime-seconds"
	NameRSS          = "rss-bytes"
	NameGoroutines   = "go.goroutines"
	NameThreads      = "go.threads"
	NameHeapAlloc    = "memory.heap_alloc"
	NameHeapIdle     = "memory.heap_idle"
	NameHeapInuse    = "memory.heap_inuse"
	NameHeapObjects  = "memory.heap_objects"
	NameStackInuse   = "memory.stack_inuse"
	NameGCPauseTotal = "gc.pause_ns"
	NameGCLastPause  = "gc.last_pause_ns"
	NameGCCycles     = "gc.cycles"
)

var runtimeMetrics = []struct {
	name string
	kind registry.Kind
}{
	{NameUptime, registry.Gauge},
	{NameRSS, registry.Absolute},
	{NameGoroutines, registry.Gauge},
	{NameThreads, registry.Gauge},
	{NameHeapAlloc, registry.Gauge},
	{NameHeapIdle, registry.Gauge},
	{NameHeapInuse, registry.Gauge},
	{NameHeapObjects, registry.Gauge},
	{NameStackInuse, registry.Gauge},
	{NameGCPauseTotal, registry.Counter},
	{NameGCLastPause, registry.Gauge},
	{NameGCCycles, registry.Counter},
}

// RuntimeCollector collects Go runtime statistics into a registry.
type RuntimeCollector struct {
	reg       *registry.Registry
	startTime time.Time
}

// NewRuntimeCollector registers the runtime metrics in r.
func NewRuntimeCollector(r *registry.Registry) (*RuntimeCollector, error) {
	for _, m := range runtimeMetrics {
		if _, err := r.Register(m.name, m.kind); err != nil {
			return nil, fmt.Errorf("register runtime metrics: %w", err)
		}
	}
	return &RuntimeCollector{reg: r, startTime: time.Now()}, nil
}

// Collect updates all runtime metrics with current values.
func (rc *RuntimeCollector) Collect() {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	rc.set(NameUptime, int64(time.Since(rc.startTime).Seconds()))
	// Heap obtained from the OS stands in for resident set size.
	rc.set(NameRSS, int64(mem.Sys))
	rc.set(NameGoroutines, int64(runtime.NumGoroutine()))

	if numThreads, ok := getNumThreads(); ok {
		rc.set(NameThreads, int64(numThreads))
	}

	rc.set(NameHeapAlloc, int64(mem.HeapAlloc))
	rc.set(NameHeapIdle, int64(mem.HeapIdle))
	rc.set(NameHeapInuse, int64(mem.HeapInuse))
	rc.set(NameHeapObjects, int64(mem.HeapObjects))
	rc.set(NameStackInuse, int64(mem.StackInuse))

	// PauseTotalNs is cumulative; PauseNs is a 256-entry ring.
	rc.set(NameGCPauseTotal, int64(mem.PauseTotalNs))
	if mem.NumGC > 0 {
		rc.set(NameGCLastPause, int64(mem.PauseNs[(mem.NumGC-1)%256]))
	}
	rc.set(NameGCCycles, int64(mem.NumGC))
}

func (rc *RuntimeCollector) set(name string, v int64) {
	_ = rc.reg.Set(name, v)
}

// getNumThreads returns the number of OS threads via the pprof
// "threadcreate" profile, which tracks threads created by the runtime.
func getNumThreads() (int, bool) {
	p := pprof.Lookup("threadcreate")
	if p == nil {
		return 0, false
	}
	return p.Count(), true
}

// Run collects immediately and then every interval until ctx is done.
func (rc *RuntimeCollector) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	rc.Collect()

	for {
		select {
		case <-ticker.C:
			rc.Collect()
		case <-ctx.Done():
			return
		}
	}
}
