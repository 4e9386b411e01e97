package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/getmockd/promexport/pkg/logging"
)

var (
	// Persistent flags available to all subcommands
	logLevel  string
	logFormat string

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "promexport",
	Short: "promexport serves application metrics in the Prometheus text format",
	Long: `promexport runs a small application server whose metric registry is
exported in the Prometheus text exposition format, either through a route
rule on the application socket or through a dedicated endpoint polled from
the master loop.`,
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Run()
}

// Run executes the root command and returns the process exit code.
func Run() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// Execute runs the CLI and exits the process on error.
// This is called by main.main().
func Execute() {
	if code := Run(); code != 0 {
		os.Exit(code)
	}
}

// newLogger builds the process logger from the persistent flags, falling
// back to the config file values when the flags were not given.
func newLogger(cmd *cobra.Command, fileLevel, fileFormat string) *slog.Logger {
	level, format := logLevel, logFormat
	if !cmd.Flags().Changed("log-level") && fileLevel != "" {
		level = fileLevel
	}
	if !cmd.Flags().Changed("log-format") && fileFormat != "" {
		format = fileFormat
	}
	return logging.New(logging.Config{
		Level:  logging.ParseLevel(level),
		Format: logging.ParseFormat(format),
		Output: cmd.ErrOrStderr(),
	})
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "auto", "Log format (text, json, pretty, auto)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newRenderCmd())
	rootCmd.AddCommand(versionCmd)
}
