package host

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/getmockd/promexport/pkg/config"
	"github.com/getmockd/promexport/pkg/registry"
)

var (
	// ErrUnknownRouter is returned when a route rule names a handler nobody registered.
	ErrUnknownRouter = errors.New("unknown router")

	// ErrDuplicateRouter is returned when two plugins register the same router name.
	ErrDuplicateRouter = errors.New("router already registered")

	// ErrInvalidRoute is returned for a malformed route rule.
	ErrInvalidRoute = errors.New("invalid route")

	// ErrInvalidConfig is returned when the host configuration fails validation.
	ErrInvalidConfig = errors.New("invalid host configuration")

	// ErrAlreadyStarted is returned when Start or Load is called on a running runtime.
	ErrAlreadyStarted = errors.New("runtime already started")
)

// RouterFunc builds the handler for a route rule. args is the text after the
// colon in the rule, possibly empty.
type RouterFunc func(args string) http.Handler

// Host is the view of the runtime given to plugins.
type Host interface {
	// IsMaster reports whether the runtime runs a master loop.
	IsMaster() bool
	// Registry returns the metric registry, or nil when metrics are disabled.
	Registry() *registry.Registry
	// RegisterRouter makes a named handler available to route rules.
	RegisterRouter(name string, fn RouterFunc) error
	// Logger returns the runtime logger.
	Logger() *slog.Logger
}

// Plugin is a unit of functionality attached to the runtime.
// All hooks are called from a single goroutine.
type Plugin interface {
	Name() string
	// OnLoad runs once before the runtime starts. An error aborts loading.
	OnLoad(h Host) error
	// PostInit runs once the runtime is initialized, before serving.
	PostInit(h Host)
	// MasterCycle runs once per master loop tick, only in master mode.
	MasterCycle()
	// Shutdown runs once when the runtime stops.
	Shutdown()
}

// Config holds the host runtime settings.
type Config struct {
	// Master enables the master loop.
	Master bool `yaml:"master"`

	// EnableMetrics switches the metrics subsystem on.
	EnableMetrics bool `yaml:"enable_metrics"`

	// Workers and Cores size the request worker pool: Workers*Cores requests
	// are served concurrently.
	Workers int `yaml:"workers"`
	Cores   int `yaml:"cores"`

	// HTTP is the application listen address. Empty disables the application socket.
	HTTP string `yaml:"http"`

	// Routes are rules in "REGEX HANDLER:ARGS" form.
	Routes []string `yaml:"routes"`

	// Cycle is the master loop period.
	Cycle time.Duration `yaml:"cycle"`

	// StatsInterval is how often runtime statistics are refreshed. Zero disables them.
	StatsInterval time.Duration `yaml:"stats_interval"`

	// ShutdownTimeout bounds the graceful stop of the application server.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DefaultConfig returns the host defaults.
func DefaultConfig() Config {
	return Config{
		Workers:         1,
		Cores:           1,
		Cycle:           time.Second,
		StatsInterval:   5 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Validate checks c and reports every problem under path.
func (c Config) Validate(path string) *config.ValidationResult {
	result := &config.ValidationResult{}

	if c.Workers < 1 {
		result.AddError(config.Join(path, "workers"), fmt.Sprintf("must be at least 1, got %d", c.Workers))
	}
	if c.Cores < 1 {
		result.AddError(config.Join(path, "cores"), fmt.Sprintf("must be at least 1, got %d", c.Cores))
	}
	if c.Cycle <= 0 {
		result.AddError(config.Join(path, "cycle"), "must be positive")
	}
	if c.StatsInterval < 0 {
		result.AddError(config.Join(path, "stats_interval"), "must not be negative")
	}
	if c.ShutdownTimeout < 0 {
		result.AddError(config.Join(path, "shutdown_timeout"), "must not be negative")
	}
	if strings.Contains(c.HTTP, "://") {
		result.AddError(config.Join(path, "http"), fmt.Sprintf("address %q must not carry a scheme", c.HTTP))
	}
	for i, r := range c.Routes {
		if _, err := ParseRule(r); err != nil {
			result.AddError(fmt.Sprintf("%s[%d]", config.Join(path, "routes"), i), err.Error())
		}
	}
	return result
}
