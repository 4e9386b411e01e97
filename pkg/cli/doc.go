// Package cli provides the command-line interface for promexport.
//
// Commands:
//   - serve: run the host runtime with the Prometheus exporter plugin loaded
//   - render: print the exposition document for a YAML list of metrics
//   - version: show version information
//
// Options come from flags and from an optional YAML file (--config). A flag
// given on the command line always wins over the file.
package cli
