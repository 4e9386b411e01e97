// Package server implements the dedicated metrics endpoint that runs inside
// the host's master loop.
//
// The endpoint is deliberately minimal: it speaks HTTP/1.0 only, ignores the
// request entirely (any method, any path) and closes the connection after
// every response. Prometheus scrapers need nothing more.
//
// A Listener is driven by the host rather than by its own goroutine. The host
// calls Poll once per master cycle; Poll checks the listening socket with a
// zero timeout and services at most one pending connection. While a scrape is
// being answered the master cycle is blocked, which is acceptable because
// rendering a registry takes well under a millisecond and scrapers poll every
// few seconds. Clients that arrive meanwhile wait for the next cycle.
//
// # Addresses
//
// An address containing a colon is a TCP endpoint ("[host]:port", e.g.
// ":9091" or "127.0.0.1:9091"). Anything else is a filesystem path for a Unix
// domain socket ("/run/app/metrics.sock"). No scheme prefix is accepted.
package server
