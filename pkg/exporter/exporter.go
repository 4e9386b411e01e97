package exporter

import (
	"log/slog"

	"github.com/getmockd/promexport/pkg/exposition"
	"github.com/getmockd/promexport/pkg/host"
	"github.com/getmockd/promexport/pkg/logging"
	"github.com/getmockd/promexport/pkg/server"
)

const (
	// PluginName is the name the exporter registers under.
	PluginName = "metrics_prometheus"

	// RouterName is the router handler route rules refer to.
	RouterName = "prometheus-metrics"

	// LogPrefix tags every exporter log message.
	LogPrefix = "[prometheus]"
)

// Exporter is the host plugin. Its hooks are called from the host's master
// goroutine; RouteHandler handlers run on request workers.
type Exporter struct {
	cfg Config
	gen *exposition.Generator
	log *slog.Logger

	// host is set by OnLoad, before any handler can run.
	host     host.Host
	listener *server.Listener
}

var _ host.Plugin = (*Exporter)(nil)

// New creates an exporter. The config is fixed from here on.
func New(cfg Config) *Exporter {
	if cfg.Prefix == "" {
		cfg.Prefix = exposition.DefaultPrefix
	}
	return &Exporter{
		cfg: cfg,
		gen: exposition.NewGenerator(cfg.GeneratorOptions()),
		log: logging.WithPrefix(nil, LogPrefix),
	}
}

// Name implements host.Plugin.
func (e *Exporter) Name() string { return PluginName }

// Config returns the exporter configuration.
func (e *Exporter) Config() Config { return e.cfg }

// OnLoad validates the configuration and registers the router handler.
func (e *Exporter) OnLoad(h host.Host) error {
	e.host = h
	e.log = logging.WithPrefix(h.Logger(), LogPrefix)

	if err := e.cfg.Validate("prometheus").Err(ErrInvalidConfig); err != nil {
		return err
	}
	if err := h.RegisterRouter(RouterName, e.RouteHandler); err != nil {
		return err
	}

	e.log.Info("Prometheus metrics exporter plugin loaded")
	return nil
}

// PostInit binds the dedicated endpoint when configured. Failures are logged
// and leave the host running without it.
func (e *Exporter) PostInit(h host.Host) {
	if e.cfg.ServerAddress == "" {
		return
	}
	if !h.IsMaster() {
		e.log.Error("dedicated server requires master mode", "address", e.cfg.ServerAddress)
		return
	}

	mode, _ := e.cfg.FileMode()
	var src exposition.Source
	if reg := h.Registry(); reg != nil {
		src = reg
	}
	l := server.New(e.gen, src,
		server.WithLogger(e.log),
		server.WithReadTimeout(e.cfg.ReadTimeout),
		server.WithSocketMode(mode),
	)
	if err := l.Bind(e.cfg.ServerAddress); err != nil {
		e.log.Error("failed to start dedicated server", "address", e.cfg.ServerAddress, "error", err)
		return
	}
	e.listener = l
	e.log.Info("dedicated server listening", "address", l.Addr().String(), "network", l.Network())
}

// MasterCycle serves at most one pending scrape on the dedicated endpoint.
func (e *Exporter) MasterCycle() {
	if e.listener != nil {
		e.listener.Poll()
	}
}

// Shutdown closes the dedicated endpoint.
func (e *Exporter) Shutdown() {
	if e.listener == nil {
		return
	}
	if err := e.listener.Close(); err != nil {
		e.log.Error("failed to close dedicated server", "error", err)
	}
}

// Listener returns the dedicated endpoint, or nil when it is not running.
func (e *Exporter) Listener() *server.Listener { return e.listener }
