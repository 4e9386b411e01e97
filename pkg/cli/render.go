package cli

import (
	"github.com/spf13/cobra"

	"github.com/getmockd/promexport/pkg/exposition"
	"github.com/getmockd/promexport/pkg/registry"
)

func newRenderCmd() *cobra.Command {
	var pf prometheusFlags

	cmd := &cobra.Command{
		Use:   "render <config.yaml>",
		Short: "Print the exposition document for a metrics file",
		Long: `Print the Prometheus exposition document for the "metrics" list of a
YAML file, using its "prometheus" options and any flags given.`,
		Example: `  promexport render metrics.yaml
  promexport render metrics.yaml --prometheus-no-workers --prometheus-prefix app_`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, args[0], &pf, nil)
			if err != nil {
				return err
			}

			reg := registry.New()
			if err := seed(reg, cfg.Metrics); err != nil {
				return err
			}

			gen := exposition.NewGenerator(cfg.Prometheus.GeneratorOptions())
			_, err = gen.WriteTo(cmd.OutOrStdout(), reg)
			return err
		},
	}

	pf.register(cmd.Flags())
	return cmd
}
