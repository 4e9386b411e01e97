package registry

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrDuplicateMetric is returned when registering a metric with a name that is already registered.
var ErrDuplicateMetric = errors.New("duplicate metric name")

// ErrEmptyName is returned when registering a metric without a name.
var ErrEmptyName = errors.New("metric name cannot be empty")

// ErrUnknownMetric is returned when updating a metric that was never registered.
var ErrUnknownMetric = errors.New("unknown metric")

// ErrUnknownKind is returned by ParseKind for unrecognized kind names.
var ErrUnknownKind = errors.New("unknown metric kind")

// Kind is the type of a registry metric.
type Kind int

const (
	Unknown Kind = iota
	Counter
	Gauge
	Absolute
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case Counter:
		return "counter"
	case Gauge:
		return "gauge"
	case Absolute:
		return "absolute"
	default:
		return "unknown"
	}
}

// ParseKind parses a kind name ("counter", "gauge", "absolute").
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "counter":
		return Counter, nil
	case "gauge":
		return Gauge, nil
	case "absolute":
		return Absolute, nil
	default:
		return Unknown, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Metric is a single registry entry.
// Value points at the metric storage and is only read or written under the
// registry lock. A nil Value marks an entry that has no storage attached.
type Metric struct {
	Name  string
	Kind  Kind
	Value *int64
}

// Registry holds all registered metrics in registration order.
type Registry struct {
	mu      sync.RWMutex
	metrics []*Metric
	names   map[string]*Metric // guards against duplicate registrations
	enabled bool
}

// New creates an empty, enabled registry.
func New() *Registry {
	return &Registry{
		metrics: make([]*Metric, 0),
		names:   make(map[string]*Metric),
		enabled: true,
	}
}

// Enabled reports whether the metrics subsystem is switched on.
// A nil registry is never enabled.
func (r *Registry) Enabled() bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled
}

// SetEnabled switches the metrics subsystem on or off. Values keep updating
// while disabled; only readers that check Enabled treat it as absent.
func (r *Registry) SetEnabled(on bool) {
	r.mu.Lock()
	r.enabled = on
	r.mu.Unlock()
}

// Register creates a metric with its own zeroed storage.
func (r *Registry) Register(name string, kind Kind) (*Metric, error) {
	return r.RegisterRef(name, kind, new(int64))
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, kind Kind) *Metric {
	m, err := r.Register(name, kind)
	if err != nil {
		panic(err)
	}
	return m
}

// RegisterRef registers a metric backed by caller-owned storage.
// The caller must only write through ref while holding the registry lock,
// which in practice means using Set/Add on the registry.
func (r *Registry) RegisterRef(name string, kind Kind, ref *int64) (*Metric, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.names[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateMetric, name)
	}
	m := &Metric{Name: name, Kind: kind, Value: ref}
	r.names[name] = m
	r.metrics = append(r.metrics, m)
	return m, nil
}

// Lookup returns the metric registered under name.
func (r *Registry) Lookup(name string) (*Metric, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.names[name]
	return m, ok
}

// Len returns the number of registered metrics.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.metrics)
}

// Inc increments the named metric by 1.
func (r *Registry) Inc(name string) error {
	return r.Add(name, 1)
}

// Add adds delta to the named metric.
func (r *Registry) Add(name string, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.names[name]
	if !ok || m.Value == nil {
		return fmt.Errorf("%w: %s", ErrUnknownMetric, name)
	}
	*m.Value += delta
	return nil
}

// Set stores value into the named metric.
func (r *Registry) Set(name string, value int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.names[name]
	if !ok || m.Value == nil {
		return fmt.Errorf("%w: %s", ErrUnknownMetric, name)
	}
	*m.Value = value
	return nil
}

// Walk calls fn for every metric in registration order until fn returns false.
// The lock is not held while fn runs; fn must read values through Load.
func (r *Registry) Walk(fn func(*Metric) bool) {
	if r == nil {
		return
	}
	r.mu.RLock()
	metrics := r.metrics[:len(r.metrics):len(r.metrics)]
	r.mu.RUnlock()

	for _, m := range metrics {
		if !fn(m) {
			return
		}
	}
}

// Load reads the current value of m under the read lock.
// A metric without storage reads as zero.
func (r *Registry) Load(m *Metric) int64 {
	if m == nil || m.Value == nil {
		return 0
	}
	r.mu.RLock()
	v := *m.Value
	r.mu.RUnlock()
	return v
}
