// Package metrics publishes process statistics into the host registry.
//
// The RuntimeCollector registers a fixed set of gauges under dotted names
// ("go.goroutines", "memory.heap_alloc", "rss-bytes", ...) and refreshes them
// on an interval. Values are integers: byte counts, nanoseconds and plain
// counts, never floats.
package metrics
