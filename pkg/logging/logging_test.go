package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		// Lowercase
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},

		// Uppercase
		{"DEBUG", LevelDebug},
		{"INFO", LevelInfo},
		{"WARN", LevelWarn},
		{"WARNING", LevelWarn},
		{"ERROR", LevelError},

		// Mixed case (the fix: these should all work now)
		{"Debug", LevelDebug},
		{"Info", LevelInfo},
		{"Warn", LevelWarn},
		{"Warning", LevelWarn},
		{"Error", LevelError},
		{"dEbUg", LevelDebug},

		// Empty string defaults to Info
		{"", LevelInfo},

		// Unrecognized defaults to Info
		{"trace", LevelInfo},
		{"fatal", LevelInfo},
		{"unknown", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"Json", FormatJSON},
		{"text", FormatText},
		{"TEXT", FormatText},
		{"pretty", FormatPretty},
		{"auto", FormatAuto},
		{"", FormatAuto},
		{"yaml", FormatAuto}, // unrecognized defaults to auto
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseFormat(tt.input)
			if result != tt.expected {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(Config{Level: LevelInfo, Format: FormatJSON, Output: &buf})
		log.Debug("hidden")
		log.Info("bound", "address", ":9091")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "bound", entry["msg"])
		assert.Equal(t, ":9091", entry["address"])
	})

	t.Run("auto falls back to text for non-terminals", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(Config{Level: LevelInfo, Format: FormatAuto, Output: &buf})
		log.Info("loaded")
		assert.Contains(t, buf.String(), "msg=loaded")
	})

	t.Run("pretty", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(Config{Level: LevelInfo, Format: FormatPretty, Output: &buf})
		log.Info("loaded", "plugin", "metrics_prometheus")
		assert.Contains(t, buf.String(), "loaded")
		assert.Contains(t, buf.String(), "metrics_prometheus")
	})
}

func TestWithPrefix(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	log := WithPrefix(base, "[prometheus]").With("component", "listener")
	log.Warn("accept failed", "error", "boom")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "[prometheus] accept failed", entry["msg"])
	assert.Equal(t, "listener", entry["component"])
	assert.Equal(t, "boom", entry["error"])
}

func TestWithPrefixNested(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	log := WithPrefix(WithPrefix(base, "[host]"), "[prometheus]")
	log.Info("loaded")
	assert.True(t, strings.Contains(buf.String(), `msg="[host] [prometheus] loaded"`), buf.String())
}

func TestWithPrefixNilLogger(t *testing.T) {
	log := WithPrefix(nil, "[prometheus]")
	require.NotNil(t, log)
	log.Info("discarded")
}

func TestWithPrefixRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	log := WithPrefix(base, "[prometheus]")
	log.Info("quiet")
	assert.Empty(t, buf.String())
}
