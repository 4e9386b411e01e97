// Package logging provides structured logging configuration for promexport.
//
// This package wraps log/slog to provide consistent logging across all
// components. It supports configurable log levels and output formats.
//
// # Usage
//
// Create a logger with desired configuration:
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatAuto,
//	})
//
//	logger.Info("server started", "address", ":9091")
//
// # Output Formats
//
//   - Text: logfmt-style key=value lines
//   - JSON: Structured format for log aggregation systems
//   - Pretty: colourised, human-oriented output for terminals
//   - Auto: Pretty when the output is a terminal, Text otherwise
//
// # Prefixes
//
// Plugins running inside the host tag their messages with a fixed prefix so
// they can be told apart in a shared log stream:
//
//	log := logging.WithPrefix(hostLogger, "[prometheus]")
//	log.Error("accept failed", "error", err) // msg="[prometheus] accept failed"
//
// # Integration
//
// Components should accept a *slog.Logger in their constructor or via an
// option. If no logger is provided, use logging.Nop().
package logging
