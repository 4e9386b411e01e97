package host

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRule(t *testing.T) {
	tests := []struct {
		in      string
		pattern string
		handler string
		args    string
	}{
		{"^/metrics$ prometheus-metrics:", "^/metrics$", "prometheus-metrics", ""},
		{"^/metrics$ prometheus-metrics", "^/metrics$", "prometheus-metrics", ""},
		{"  ^/m   echo:a:b  ", "^/m", "echo", "a:b"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			rule, err := ParseRule(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.pattern, rule.Pattern.String())
			assert.Equal(t, tt.handler, rule.Handler)
			assert.Equal(t, tt.args, rule.Args)
		})
	}
}

func TestParseRuleErrors(t *testing.T) {
	for _, in := range []string{"", "^/metrics$", "^/metrics$ :args", "([ handler:"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseRule(in)
			assert.ErrorIs(t, err, ErrInvalidRoute)
		})
	}
}

func named(body string) RouterFunc {
	return func(args string) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body + ":" + args))
		})
	}
}

func TestRouter(t *testing.T) {
	rules := []Rule{}
	for _, s := range []string{"^/metrics$ first:x", "^/metrics second:", "^/api/ second:api"} {
		rule, err := ParseRule(s)
		require.NoError(t, err)
		rules = append(rules, rule)
	}

	routers := map[string]RouterFunc{"first": named("first"), "second": named("second")}
	rt, err := NewRouter(rules, routers, NewApp())
	require.NoError(t, err)

	tests := []struct {
		path string
		want string
	}{
		{"/metrics", "first:x"},
		{"/metricsz", "second:"},
		{"/api/v1", "second:api"},
		{"/", "Hello from test app\n"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}

	_, matched := rt.Match("/nothing")
	assert.False(t, matched)
}

func TestRouterUnknownHandler(t *testing.T) {
	rule, err := ParseRule("^/metrics$ prometheus-metrics:")
	require.NoError(t, err)

	_, err = NewRouter([]Rule{rule}, map[string]RouterFunc{}, nil)
	assert.ErrorIs(t, err, ErrUnknownRouter)
	assert.Contains(t, err.Error(), "prometheus-metrics")
}

func TestRouterDefaultFallback(t *testing.T) {
	rt, err := NewRouter(nil, nil, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
