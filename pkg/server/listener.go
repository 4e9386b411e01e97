package server

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/getmockd/promexport/pkg/exposition"
	"github.com/getmockd/promexport/pkg/logging"
)

// requestBufferSize is the most request bytes read (and discarded) per connection.
const requestBufferSize = 4096

// acceptGrace bounds how long Accept may wait once the socket looked ready.
const acceptGrace = time.Millisecond

var (
	// ErrAlreadyBound is returned when Bind is called on a listener that is not Unbound.
	ErrAlreadyBound = errors.New("listener already bound")

	// ErrClosed is returned when binding a listener that was closed.
	ErrClosed = errors.New("listener closed")

	// ErrEmptyAddress is returned when binding to an empty address.
	ErrEmptyAddress = errors.New("empty listen address")
)

// State is the lifecycle state of a Listener.
type State int

const (
	Unbound State = iota
	Listening
	Closed
)

func (s State) String() string {
	switch s {
	case Unbound:
		return "unbound"
	case Listening:
		return "listening"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Generator renders a metrics document. *exposition.Generator implements it.
type Generator interface {
	Generate(src exposition.Source) ([]byte, error)
}

// Listener is the dedicated metrics endpoint. It is owned by the host master
// loop: Bind, Poll and Close are expected to be called from one goroutine,
// though Close may also be called concurrently during shutdown.
type Listener struct {
	gen         Generator
	src         exposition.Source
	log         *slog.Logger
	readTimeout time.Duration
	socketMode  fs.FileMode

	mu      sync.Mutex
	state   State
	ln      net.Listener
	network string
	address string
}

// Option is a functional option for configuring a Listener.
type Option func(*Listener)

// WithLogger sets the logger used for accept and write failures.
func WithLogger(log *slog.Logger) Option {
	return func(l *Listener) {
		if log != nil {
			l.log = log
		}
	}
}

// WithReadTimeout bounds the single request read per connection.
// Zero keeps the read fully blocking.
func WithReadTimeout(d time.Duration) Option {
	return func(l *Listener) {
		l.readTimeout = d
	}
}

// WithSocketMode sets the permissions of a Unix socket file after binding.
// Zero leaves the mode produced by the process umask.
func WithSocketMode(mode fs.FileMode) Option {
	return func(l *Listener) {
		l.socketMode = mode
	}
}

// New creates an unbound listener that serves documents rendered by gen from src.
func New(gen Generator, src exposition.Source, opts ...Option) *Listener {
	l := &Listener{
		gen: gen,
		src: src,
		log: logging.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SplitAddress returns the network ("tcp" or "unix") for address.
func SplitAddress(address string) (network, addr string) {
	if strings.Contains(address, ":") {
		return "tcp", address
	}
	return "unix", address
}

// Bind starts listening on address. On failure the listener stays Unbound.
func (l *Listener) Bind(address string) error {
	if address == "" {
		return ErrEmptyAddress
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case Listening:
		return fmt.Errorf("%w: %s", ErrAlreadyBound, l.address)
	case Closed:
		return ErrClosed
	}

	network, addr := SplitAddress(address)
	if network == "unix" {
		if err := removeStaleSocket(addr); err != nil {
			return fmt.Errorf("bind %s: %w", address, err)
		}
	}

	ln, err := net.Listen(network, addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", address, err)
	}

	if network == "unix" && l.socketMode != 0 {
		if err := os.Chmod(addr, l.socketMode); err != nil {
			_ = ln.Close()
			return fmt.Errorf("chmod %s: %w", addr, err)
		}
	}

	l.ln = ln
	l.network = network
	l.address = address
	l.state = Listening
	return nil
}

// removeStaleSocket deletes a leftover socket file at path. Anything that is
// not a socket is left alone so that net.Listen reports the conflict.
func removeStaleSocket(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.Mode()&fs.ModeSocket == 0 {
		return nil
	}
	return os.Remove(path)
}

// State returns the current lifecycle state.
func (l *Listener) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Addr returns the bound address, or nil when not listening.
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln == nil {
		return nil
	}
	return l.ln.Addr()
}

// Network returns "tcp" or "unix" once bound.
func (l *Listener) Network() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.network
}

// Poll services at most one pending connection without waiting for one.
// It reports whether a connection was accepted.
func (l *Listener) Poll() bool {
	l.mu.Lock()
	ln := l.ln
	listening := l.state == Listening
	l.mu.Unlock()
	if !listening || ln == nil {
		return false
	}

	ready, err := readable(ln)
	if err != nil {
		if !isTransient(err) {
			l.log.Error("poll failed", "error", err)
		}
		return false
	}
	if !ready {
		return false
	}

	conn, err := acceptNow(ln)
	if err != nil {
		if !isTransient(err) && !errors.Is(err, net.ErrClosed) {
			l.log.Error("accept failed", "error", err)
		}
		return false
	}

	l.serve(conn)
	return true
}

// acceptNow accepts one connection, giving up after acceptGrace.
func acceptNow(ln net.Listener) (net.Conn, error) {
	if d, ok := ln.(interface{ SetDeadline(time.Time) error }); ok {
		if err := d.SetDeadline(time.Now().Add(acceptGrace)); err != nil {
			return nil, err
		}
	}
	return ln.Accept()
}

// serve answers one scrape on conn and closes it.
func (l *Listener) serve(conn net.Conn) {
	defer func() { _ = conn.Close() }()

	// Accepted sockets go back to blocking mode, optionally bounded by the read timeout.
	var deadline time.Time
	if l.readTimeout > 0 {
		deadline = time.Now().Add(l.readTimeout)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		l.log.Error("set deadline failed", "error", err)
		return
	}

	buf := make([]byte, requestBufferSize)
	n, err := conn.Read(buf)
	if n <= 0 {
		if err != nil && !errors.Is(err, net.ErrClosed) {
			l.log.Debug("request read failed", "remote", remoteAddr(conn), "error", err)
		}
		return
	}

	start := time.Now()
	doc, err := l.gen.Generate(l.src)
	if err != nil {
		l.log.Error("failed to generate metrics", "error", err)
		if werr := WriteError(conn); werr != nil {
			l.log.Error("write failed", "error", werr)
		}
		return
	}

	if err := WriteMetrics(conn, doc); err != nil {
		l.log.Error("write failed", "error", err)
		return
	}
	l.log.Debug("scrape served",
		"remote", remoteAddr(conn),
		"bytes", len(doc),
		"duration", time.Since(start),
	)
}

func remoteAddr(conn net.Conn) string {
	if a := conn.RemoteAddr(); a != nil && a.String() != "" {
		return a.String()
	}
	return "local"
}

// Close stops listening. A Unix socket file is removed. Closing an Unbound
// listener only marks it Closed.
func (l *Listener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == Closed {
		return nil
	}
	l.state = Closed
	if l.ln == nil {
		return nil
	}
	err := l.ln.Close()
	l.ln = nil
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("close %s: %w", l.address, err)
	}
	return nil
}
