package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/getmockd/promexport/pkg/config"
	"github.com/getmockd/promexport/pkg/exporter"
	"github.com/getmockd/promexport/pkg/host"
	"github.com/getmockd/promexport/pkg/registry"
)

var (
	// ErrInvalidConfig is returned when the merged configuration fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidMetric is returned for a malformed entry in the metrics list.
	ErrInvalidMetric = errors.New("invalid metric")
)

// fileConfig is the layout of the --config YAML file.
type fileConfig struct {
	Prometheus exporter.Config `yaml:"prometheus"`
	Host       host.Config     `yaml:"host"`
	Log        logConfig       `yaml:"log"`
	Metrics    []metricSeed    `yaml:"metrics"`
}

type logConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// metricSeed is a metric registered at startup with a fixed initial value.
type metricSeed struct {
	Name  string `yaml:"name"`
	Kind  string `yaml:"kind"`
	Value int64  `yaml:"value"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		Prometheus: exporter.DefaultConfig(),
		Host:       host.DefaultConfig(),
	}
}

// loadFileConfig returns the defaults overlaid with the file at path, if any.
func loadFileConfig(path string) (fileConfig, error) {
	cfg := defaultFileConfig()
	if path == "" {
		return cfg, nil
	}
	if err := config.LoadFile(path, &cfg); err != nil {
		return fileConfig{}, err
	}
	return cfg, nil
}

// validate checks every section and the metrics list.
func (c fileConfig) validate() error {
	result := &config.ValidationResult{}
	result.Merge(c.Prometheus.Validate("prometheus"))
	result.Merge(c.Host.Validate("host"))
	for i, m := range c.Metrics {
		path := fmt.Sprintf("metrics[%d]", i)
		if m.Name == "" {
			result.AddError(path+".name", "required")
		}
		if _, err := registry.ParseKind(m.Kind); err != nil {
			result.AddError(path+".kind", fmt.Sprintf("invalid kind %q, must be one of: counter, gauge, absolute", m.Kind))
		}
	}
	return result.Err(ErrInvalidConfig)
}

// seed registers the metrics list in reg.
func seed(reg *registry.Registry, seeds []metricSeed) error {
	for _, s := range seeds {
		kind, err := registry.ParseKind(s.Kind)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidMetric, s.Name, err)
		}
		if _, err := reg.Register(s.Name, kind); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidMetric, err)
		}
		if err := reg.Set(s.Name, s.Value); err != nil {
			return err
		}
	}
	return nil
}

// prometheusFlags holds the exporter flag values.
type prometheusFlags struct {
	prefix      string
	noWorkers   bool
	noHelp      bool
	noType      bool
	server      string
	maxSize     int
	readTimeout time.Duration
	socketMode  string
}

func (p *prometheusFlags) register(fs *pflag.FlagSet) {
	def := exporter.DefaultConfig()
	fs.StringVar(&p.prefix, "prometheus-prefix", def.Prefix, "Prefix prepended to every metric name")
	fs.BoolVar(&p.noWorkers, "prometheus-no-workers", false, "Skip per-worker metrics")
	fs.BoolVar(&p.noHelp, "prometheus-no-help", false, "Omit HELP comments")
	fs.BoolVar(&p.noType, "prometheus-no-type", false, "Omit TYPE comments")
	fs.StringVar(&p.server, "prometheus-server", "", "Dedicated metrics endpoint: [host]:port or a Unix socket path")
	fs.IntVar(&p.maxSize, "prometheus-max-size", 0, "Maximum document size in bytes (0 = unlimited)")
	fs.DurationVar(&p.readTimeout, "prometheus-read-timeout", 0, "Request read timeout on the dedicated endpoint (0 = none)")
	fs.StringVar(&p.socketMode, "prometheus-socket-mode", "", "Octal permissions of the dedicated Unix socket, e.g. 0660")
}

// apply copies the flags the user set onto cfg.
func (p *prometheusFlags) apply(fs *pflag.FlagSet, cfg *exporter.Config) {
	if fs.Changed("prometheus-prefix") {
		cfg.Prefix = p.prefix
	}
	if fs.Changed("prometheus-no-workers") {
		cfg.NoWorkers = p.noWorkers
	}
	if fs.Changed("prometheus-no-help") {
		cfg.IncludeHelp = !p.noHelp
	}
	if fs.Changed("prometheus-no-type") {
		cfg.IncludeType = !p.noType
	}
	if fs.Changed("prometheus-server") {
		cfg.ServerAddress = p.server
	}
	if fs.Changed("prometheus-max-size") {
		cfg.MaxDocumentSize = p.maxSize
	}
	if fs.Changed("prometheus-read-timeout") {
		cfg.ReadTimeout = p.readTimeout
	}
	if fs.Changed("prometheus-socket-mode") {
		cfg.SocketMode = p.socketMode
	}
}

// hostFlags holds the host runtime flag values.
type hostFlags struct {
	master        bool
	enableMetrics bool
	workers       int
	cores         int
	http          string
	routes        []string
	cycle         time.Duration
	statsInterval time.Duration
}

func (h *hostFlags) register(fs *pflag.FlagSet) {
	def := host.DefaultConfig()
	fs.BoolVar(&h.master, "master", false, "Enable the master loop")
	fs.BoolVar(&h.enableMetrics, "enable-metrics", false, "Enable the metrics subsystem")
	fs.IntVar(&h.workers, "workers", def.Workers, "Number of request workers")
	fs.IntVar(&h.cores, "cores", def.Cores, "Concurrent requests per worker")
	fs.StringVar(&h.http, "http", "", "Application listen address, e.g. :8080")
	fs.StringArrayVar(&h.routes, "route", nil, `Route rule "REGEX HANDLER:ARGS" (repeatable)`)
	fs.DurationVar(&h.cycle, "cycle", def.Cycle, "Master loop period")
	fs.DurationVar(&h.statsInterval, "stats-interval", def.StatsInterval, "Runtime statistics refresh interval (0 = off)")
}

func (h *hostFlags) apply(fs *pflag.FlagSet, cfg *host.Config) {
	if fs.Changed("master") {
		cfg.Master = h.master
	}
	if fs.Changed("enable-metrics") {
		cfg.EnableMetrics = h.enableMetrics
	}
	if fs.Changed("workers") {
		cfg.Workers = h.workers
	}
	if fs.Changed("cores") {
		cfg.Cores = h.cores
	}
	if fs.Changed("http") {
		cfg.HTTP = h.http
	}
	if fs.Changed("route") {
		cfg.Routes = h.routes
	}
	if fs.Changed("cycle") {
		cfg.Cycle = h.cycle
	}
	if fs.Changed("stats-interval") {
		cfg.StatsInterval = h.statsInterval
	}
}

// resolveConfig loads --config and applies the flags set on cmd.
func resolveConfig(cmd *cobra.Command, path string, pf *prometheusFlags, hf *hostFlags) (fileConfig, error) {
	cfg, err := loadFileConfig(path)
	if err != nil {
		return fileConfig{}, err
	}
	fs := cmd.Flags()
	if pf != nil {
		pf.apply(fs, &cfg.Prometheus)
	}
	if hf != nil {
		hf.apply(fs, &cfg.Host)
	}
	return cfg, cfg.validate()
}
