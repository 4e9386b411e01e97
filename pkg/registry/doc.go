// Package registry is the host application server's metric registry.
//
// Metrics are identified by dotted hierarchical names such as
// "worker.3.core.1.requests" and hold a single signed 64-bit value. The
// registry is append-only: metrics are registered while the host boots and
// are never removed.
//
// Reads and writes of metric values are serialized by a single
// reader/writer lock. Readers that only need one value should use Load,
// which holds the read lock across the load and nothing else.
//
// # Kinds
//
//   - Counter: monotonically increasing value (e.g. requests served)
//   - Gauge: value that can go up or down (e.g. busy cores)
//   - Absolute: value set from an external reading (e.g. rss size)
//
// # Usage
//
//	reg := registry.New()
//	reg.MustRegister("worker.1.requests", registry.Counter)
//	reg.Inc("worker.1.requests")
//
//	reg.Walk(func(m *registry.Metric) bool {
//	    fmt.Println(m.Name, reg.Load(m))
//	    return true
//	})
package registry
