// Package exposition renders a host metric registry in the Prometheus text
// exposition format (text/plain; version=0.0.4).
//
// Host metric names are dotted paths such as "worker.3.core.1.requests".
// Translate turns such a name into a Prometheus metric name plus labels:
// non-numeric segments are sanitized and joined with underscores behind a
// prefix, and purely numeric segments become the labels worker, core,
// thread and id, in that order.
//
//	worker.3.requests      -> uwsgi_worker_requests{worker="3"}
//	worker.1.core.0.busy   -> uwsgi_worker_core_busy{worker="1",core="0"}
//	rss-bytes              -> uwsgi_rss_bytes
//
// A Generator walks a Source and writes one sample line per metric. Counter
// metrics get a "_total" suffix. HELP and TYPE comments are written once per
// metric name, before its first sample, so metrics that differ only by
// labels share a single comment block.
//
// # Usage
//
//	gen := exposition.NewGenerator(exposition.DefaultOptions())
//	doc, err := gen.Generate(reg)
//	if err != nil {
//	    // only ErrDocumentTooLarge
//	}
package exposition
