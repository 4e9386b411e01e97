// Package config loads YAML configuration files and collects validation
// problems.
//
// The package knows nothing about the shape of the document; callers pass the
// struct to decode into. Validation is done by the owners of each section
// (exporter.Config, host.Config), which report into a shared
// ValidationResult so that every problem is shown at once instead of the
// first one only.
package config
