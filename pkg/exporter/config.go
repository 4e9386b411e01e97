package exporter

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/getmockd/promexport/pkg/config"
	"github.com/getmockd/promexport/pkg/exposition"
)

// ErrInvalidConfig is returned when the exporter configuration fails validation.
var ErrInvalidConfig = errors.New("invalid prometheus configuration")

// Config holds the exporter options.
type Config struct {
	// Prefix is prepended to every metric name.
	Prefix string `yaml:"prefix"`

	// NoWorkers drops per-worker metrics ("worker.*").
	NoWorkers bool `yaml:"no_workers"`

	// IncludeHelp and IncludeType emit the HELP and TYPE comments.
	IncludeHelp bool `yaml:"include_help"`
	IncludeType bool `yaml:"include_type"`

	// ServerAddress enables the dedicated endpoint: "[host]:port" or a Unix
	// socket path. Empty disables it.
	ServerAddress string `yaml:"server"`

	// MaxDocumentSize caps a rendered document in bytes. 0 means unlimited.
	MaxDocumentSize int `yaml:"max_document_size"`

	// ReadTimeout bounds the request read on the dedicated endpoint. 0 means none.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// SocketMode is the octal permission of a Unix socket, e.g. "0660".
	// Empty leaves the umask result.
	SocketMode string `yaml:"socket_mode"`
}

// DefaultConfig returns the exporter defaults.
func DefaultConfig() Config {
	return Config{
		Prefix:      exposition.DefaultPrefix,
		IncludeHelp: true,
		IncludeType: true,
	}
}

// GeneratorOptions maps the config onto generator options.
func (c Config) GeneratorOptions() exposition.Options {
	prefix := c.Prefix
	if prefix == "" {
		prefix = exposition.DefaultPrefix
	}
	return exposition.Options{
		Prefix:      prefix,
		NoWorkers:   c.NoWorkers,
		IncludeHelp: c.IncludeHelp,
		IncludeType: c.IncludeType,
		MaxSize:     c.MaxDocumentSize,
	}
}

// FileMode parses SocketMode. An empty value yields 0.
func (c Config) FileMode() (fs.FileMode, error) {
	if c.SocketMode == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(c.SocketMode, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("socket mode %q is not an octal number", c.SocketMode)
	}
	if v > 0o777 {
		return 0, fmt.Errorf("socket mode %q exceeds 0777", c.SocketMode)
	}
	return fs.FileMode(v), nil
}

// Validate checks c and reports every problem under path.
func (c Config) Validate(path string) *config.ValidationResult {
	result := &config.ValidationResult{}

	if c.Prefix != "" && !exposition.ValidPrefix(c.Prefix) {
		result.AddError(config.Join(path, "prefix"),
			fmt.Sprintf("%q must match [A-Za-z_][A-Za-z0-9_]*", c.Prefix))
	}
	if c.MaxDocumentSize < 0 {
		result.AddError(config.Join(path, "max_document_size"), "must not be negative")
	}
	if c.ReadTimeout < 0 {
		result.AddError(config.Join(path, "read_timeout"), "must not be negative")
	}
	if strings.Contains(c.ServerAddress, "://") {
		result.AddError(config.Join(path, "server"),
			fmt.Sprintf("address %q must be [host]:port or a socket path, without scheme", c.ServerAddress))
	}
	if _, err := c.FileMode(); err != nil {
		result.AddError(config.Join(path, "socket_mode"), err.Error())
	}
	return result
}
