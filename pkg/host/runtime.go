package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"golang.org/x/net/netutil"

	"github.com/getmockd/promexport/pkg/logging"
	"github.com/getmockd/promexport/pkg/metrics"
	"github.com/getmockd/promexport/pkg/registry"
)

// Runtime runs plugins, the request workers and the master loop.
type Runtime struct {
	cfg Config
	log *slog.Logger
	reg *registry.Registry
	app http.Handler

	mu      sync.Mutex
	plugins []Plugin
	routers map[string]RouterFunc
	started bool
	stopped bool

	router     *Router
	pool       *workerPool
	collector  *metrics.RuntimeCollector
	ln         net.Listener
	httpServer *http.Server
	cancel     context.CancelFunc
	wg         conc.WaitGroup
}

// Option is a functional option for configuring a Runtime.
type Option func(*Runtime)

// WithLogger sets the runtime logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Runtime) {
		if log != nil {
			r.log = log
		}
	}
}

// WithRegistry uses reg instead of a fresh registry.
func WithRegistry(reg *registry.Registry) Option {
	return func(r *Runtime) {
		r.reg = reg
	}
}

// WithApp sets the application handler for requests no route rule matches.
func WithApp(app http.Handler) Option {
	return func(r *Runtime) {
		r.app = app
	}
}

// New creates a runtime. Zero-valued config fields take their defaults.
func New(cfg Config, opts ...Option) *Runtime {
	def := DefaultConfig()
	if cfg.Workers == 0 {
		cfg.Workers = def.Workers
	}
	if cfg.Cores == 0 {
		cfg.Cores = def.Cores
	}
	if cfg.Cycle == 0 {
		cfg.Cycle = def.Cycle
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = def.ShutdownTimeout
	}

	r := &Runtime{
		cfg:     cfg,
		log:     logging.Nop(),
		app:     NewApp(),
		routers: make(map[string]RouterFunc),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.reg == nil {
		r.reg = registry.New()
	}
	r.reg.SetEnabled(cfg.EnableMetrics)
	return r
}

// IsMaster implements Host.
func (r *Runtime) IsMaster() bool { return r.cfg.Master }

// Registry implements Host. It returns nil when metrics are disabled.
func (r *Runtime) Registry() *registry.Registry {
	if !r.reg.Enabled() {
		return nil
	}
	return r.reg
}

// Logger implements Host.
func (r *Runtime) Logger() *slog.Logger { return r.log }

// Config returns the effective configuration.
func (r *Runtime) Config() Config { return r.cfg }

// RegisterRouter implements Host.
func (r *Runtime) RegisterRouter(name string, fn RouterFunc) error {
	if name == "" || fn == nil {
		return fmt.Errorf("%w: empty name or nil handler", ErrInvalidRoute)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.routers[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateRouter, name)
	}
	r.routers[name] = fn
	return nil
}

// Load runs OnLoad for each plugin in order and keeps the plugins that loaded.
func (r *Runtime) Load(plugins ...Plugin) error {
	r.mu.Lock()
	started := r.started
	r.mu.Unlock()
	if started {
		return ErrAlreadyStarted
	}

	for _, p := range plugins {
		if err := p.OnLoad(r); err != nil {
			return fmt.Errorf("load plugin %s: %w", p.Name(), err)
		}
		r.mu.Lock()
		r.plugins = append(r.plugins, p)
		r.mu.Unlock()
		r.log.Debug("plugin loaded", "plugin", p.Name())
	}
	return nil
}

// Handler returns the request handler: route rules, then the application,
// all served on worker slots. It is available after Start.
func (r *Runtime) Handler() http.Handler {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pool == nil {
		return nil
	}
	return r.pool.wrap(r.router)
}

// Addr returns the application listener address, or nil.
func (r *Runtime) Addr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ln == nil {
		return nil
	}
	return r.ln.Addr()
}

// Start resolves routes, binds the application socket, runs PostInit on all
// plugins and starts the background loops.
func (r *Runtime) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return ErrAlreadyStarted
	}
	err := r.prepare()
	plugins := append([]Plugin(nil), r.plugins...)
	r.mu.Unlock()
	if err != nil {
		return err
	}

	// Plugins may call back into the runtime, so no lock is held here.
	for _, p := range plugins {
		p.PostInit(r)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	loopCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	if r.ln != nil {
		ln := r.ln
		r.httpServer = &http.Server{
			Handler:           r.pool.wrap(r.router),
			ReadHeaderTimeout: 10 * time.Second,
			ErrorLog:          slog.NewLogLogger(r.log.Handler(), slog.LevelError),
		}
		// One request per connection, so idle clients never hold a worker slot.
		r.httpServer.SetKeepAlivesEnabled(false)

		srv := r.httpServer
		r.log.Info("application server listening", "address", ln.Addr().String(),
			"workers", r.cfg.Workers, "cores", r.cfg.Cores)
		r.wg.Go(func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				r.log.Error("application server error", "error", err)
			}
		})
	}

	if r.collector != nil {
		collector, interval := r.collector, r.cfg.StatsInterval
		r.wg.Go(func() { collector.Run(loopCtx, interval) })
	}

	if r.cfg.Master {
		r.wg.Go(func() { r.masterLoop(loopCtx, plugins) })
	}
	return nil
}

// prepare builds the router, worker pool and application listener.
// Called with r.mu held.
func (r *Runtime) prepare() error {
	if res := r.cfg.Validate("host"); !res.IsValid() {
		return res.Err(ErrInvalidConfig)
	}

	rules := make([]Rule, 0, len(r.cfg.Routes))
	for _, raw := range r.cfg.Routes {
		rule, err := ParseRule(raw)
		if err != nil {
			return err
		}
		rules = append(rules, rule)
	}
	router, err := NewRouter(rules, r.routers, r.app)
	if err != nil {
		return err
	}

	var reg *registry.Registry
	if r.reg.Enabled() {
		reg = r.reg
	}
	pool, err := newWorkerPool(r.cfg.Workers, r.cfg.Cores, reg, r.log)
	if err != nil {
		return err
	}

	var collector *metrics.RuntimeCollector
	if reg != nil && r.cfg.StatsInterval > 0 {
		collector, err = metrics.NewRuntimeCollector(reg)
		if err != nil {
			return err
		}
	}

	var ln net.Listener
	if r.cfg.HTTP != "" {
		ln, err = net.Listen("tcp", r.cfg.HTTP)
		if err != nil {
			return fmt.Errorf("bind application socket %s: %w", r.cfg.HTTP, err)
		}
		ln = netutil.LimitListener(ln, pool.Size())
	}

	r.router = router
	r.pool = pool
	r.collector = collector
	r.ln = ln
	r.started = true
	return nil
}

// masterLoop ticks every plugin once per cycle until ctx is done.
func (r *Runtime) masterLoop(ctx context.Context, plugins []Plugin) {
	ticker := time.NewTicker(r.cfg.Cycle)
	defer ticker.Stop()

	r.log.Debug("master loop started", "cycle", r.cfg.Cycle)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, p := range plugins {
				p.MasterCycle()
			}
		}
	}
}

// Run starts the runtime and blocks until ctx is done, then stops it.
func (r *Runtime) Run(ctx context.Context) error {
	if err := r.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return r.Stop()
}

// Stop shuts the application server down, waits for the background loops and
// runs Shutdown on every plugin in reverse load order. It is safe to call
// more than once.
func (r *Runtime) Stop() error {
	r.mu.Lock()
	if !r.started || r.stopped {
		r.mu.Unlock()
		return nil
	}
	r.stopped = true
	srv := r.httpServer
	ln := r.ln
	cancel := r.cancel
	plugins := append([]Plugin(nil), r.plugins...)
	r.mu.Unlock()

	var errs []error
	switch {
	case srv != nil:
		ctx, done := context.WithTimeout(context.Background(), r.cfg.ShutdownTimeout)
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown application server: %w", err))
		}
		done()
	case ln != nil:
		_ = ln.Close()
	}
	if cancel != nil {
		cancel()
	}
	r.wg.Wait()

	for i := len(plugins) - 1; i >= 0; i-- {
		plugins[i].Shutdown()
	}
	r.log.Info("runtime stopped")
	return errors.Join(errs...)
}
