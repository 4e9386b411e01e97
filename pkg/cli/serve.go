package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/getmockd/promexport/pkg/exporter"
	"github.com/getmockd/promexport/pkg/host"
	"github.com/getmockd/promexport/pkg/registry"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		pf         prometheusFlags
		hf         hostFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the application server with the Prometheus exporter",
		Long: `Run the application server with the Prometheus exporter plugin loaded.

Metrics are served through a route rule bound to the "prometheus-metrics"
handler, through a dedicated endpoint (--prometheus-server, requires
--master), or both.`,
		Example: `  # Route /metrics on the application socket
  promexport serve --http :8080 --enable-metrics --route '^/metrics$ prometheus-metrics:'

  # Dedicated endpoint polled from the master loop
  promexport serve --master --enable-metrics --http :8080 --prometheus-server 127.0.0.1:9091`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, configPath, &pf, &hf)
			if err != nil {
				return err
			}

			log := newLogger(cmd, cfg.Log.Level, cfg.Log.Format)

			reg := registry.New()
			if err := seed(reg, cfg.Metrics); err != nil {
				return err
			}

			rt := host.New(cfg.Host, host.WithLogger(log), host.WithRegistry(reg))
			if err := rt.Load(exporter.New(cfg.Prometheus)); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := rt.Run(ctx); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML configuration file")
	pf.register(cmd.Flags())
	hf.register(cmd.Flags())
	return cmd
}
