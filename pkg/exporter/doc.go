// Package exporter is the Prometheus metrics exporter plugin.
//
// The exporter publishes the host registry in two ways:
//
//   - as a router handler named "prometheus-metrics" that route rules can
//     bind to any path, served by the host's request workers;
//   - optionally, as a dedicated HTTP/1.0 endpoint (Config.ServerAddress)
//     polled from the host master loop, so scrapes keep working while every
//     worker is busy.
//
// Both paths render the same document with exposition.Generator.
package exporter
