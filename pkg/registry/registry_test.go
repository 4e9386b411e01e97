package registry

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	t.Run("zeroed storage", func(t *testing.T) {
		r := New()
		m, err := r.Register("worker.1.requests", Counter)
		require.NoError(t, err)
		require.NotNil(t, m.Value)
		assert.Equal(t, int64(0), r.Load(m))
		assert.Equal(t, Counter, m.Kind)
		assert.Equal(t, 1, r.Len())
	})

	t.Run("duplicate name", func(t *testing.T) {
		r := New()
		r.MustRegister("requests", Counter)
		_, err := r.Register("requests", Gauge)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDuplicateMetric))
	})

	t.Run("empty name", func(t *testing.T) {
		r := New()
		_, err := r.Register("", Gauge)
		assert.ErrorIs(t, err, ErrEmptyName)
	})

	t.Run("MustRegister panics on duplicate", func(t *testing.T) {
		r := New()
		r.MustRegister("a", Gauge)
		assert.Panics(t, func() { r.MustRegister("a", Gauge) })
	})

	t.Run("external storage", func(t *testing.T) {
		r := New()
		var v int64 = 7
		m, err := r.RegisterRef("rss-bytes", Absolute, &v)
		require.NoError(t, err)
		assert.Equal(t, int64(7), r.Load(m))

		require.NoError(t, r.Set("rss-bytes", 9))
		assert.Equal(t, int64(9), v)
	})

	t.Run("nil storage reads as zero", func(t *testing.T) {
		r := New()
		m, err := r.RegisterRef("broken", Gauge, nil)
		require.NoError(t, err)
		assert.Nil(t, m.Value)
		assert.Equal(t, int64(0), r.Load(m))
		assert.ErrorIs(t, r.Inc("broken"), ErrUnknownMetric)
	})
}

func TestUpdates(t *testing.T) {
	r := New()
	m := r.MustRegister("core.busy", Gauge)

	require.NoError(t, r.Inc("core.busy"))
	require.NoError(t, r.Add("core.busy", 4))
	assert.Equal(t, int64(5), r.Load(m))

	require.NoError(t, r.Add("core.busy", -6))
	assert.Equal(t, int64(-1), r.Load(m))

	require.NoError(t, r.Set("core.busy", 42))
	assert.Equal(t, int64(42), r.Load(m))

	err := r.Inc("missing")
	assert.ErrorIs(t, err, ErrUnknownMetric)
	assert.Contains(t, err.Error(), "missing")
}

func TestWalk(t *testing.T) {
	t.Run("registration order", func(t *testing.T) {
		r := New()
		names := []string{"requests", "worker.1.requests", "worker.2.requests", "rss-bytes"}
		for _, n := range names {
			r.MustRegister(n, Gauge)
		}

		var got []string
		r.Walk(func(m *Metric) bool {
			got = append(got, m.Name)
			return true
		})
		assert.Equal(t, names, got)
	})

	t.Run("stops early", func(t *testing.T) {
		r := New()
		r.MustRegister("a", Gauge)
		r.MustRegister("b", Gauge)

		count := 0
		r.Walk(func(*Metric) bool {
			count++
			return false
		})
		assert.Equal(t, 1, count)
	})

	t.Run("nil registry", func(t *testing.T) {
		var r *Registry
		called := false
		r.Walk(func(*Metric) bool {
			called = true
			return true
		})
		assert.False(t, called)
		assert.Equal(t, 0, r.Len())
	})

	t.Run("registering during walk is not observed", func(t *testing.T) {
		r := New()
		r.MustRegister("a", Gauge)

		var got []string
		r.Walk(func(m *Metric) bool {
			got = append(got, m.Name)
			if m.Name == "a" {
				r.MustRegister("b", Gauge)
			}
			return true
		})
		assert.Equal(t, []string{"a"}, got)
		assert.Equal(t, 2, r.Len())
	})
}

func TestConcurrentAccess(t *testing.T) {
	r := New()
	m := r.MustRegister("requests", Counter)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				_ = r.Inc("requests")
				_ = r.Load(m)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(8000), r.Load(m))
}

func TestKind(t *testing.T) {
	tests := []struct {
		input string
		want  Kind
	}{
		{"counter", Counter},
		{"COUNTER", Counter},
		{"gauge", Gauge},
		{" absolute ", Absolute},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseKind("histogram")
	assert.ErrorIs(t, err, ErrUnknownKind)

	assert.Equal(t, "counter", Counter.String())
	assert.Equal(t, "gauge", Gauge.String())
	assert.Equal(t, "absolute", Absolute.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestEnabled(t *testing.T) {
	var nilReg *Registry
	assert.False(t, nilReg.Enabled())

	r := New()
	assert.True(t, r.Enabled())

	r.SetEnabled(false)
	assert.False(t, r.Enabled())
	r.MustRegister("requests", Counter)
	require.NoError(t, r.Inc("requests"))
}
