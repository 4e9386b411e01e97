package exporter_test

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/common/expfmt"
	"github.com/prometheus/common/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/promexport/pkg/exporter"
	"github.com/getmockd/promexport/pkg/exposition"
	"github.com/getmockd/promexport/pkg/host"
)

func startRuntime(t *testing.T, hcfg host.Config, ecfg exporter.Config) (*host.Runtime, *exporter.Exporter) {
	t.Helper()
	rt := host.New(hcfg)
	e := exporter.New(ecfg)
	require.NoError(t, rt.Load(e))
	require.NoError(t, rt.Start(context.Background()))
	t.Cleanup(func() { _ = rt.Stop() })
	return rt, e
}

func hostConfig() host.Config {
	cfg := host.DefaultConfig()
	cfg.HTTP = "127.0.0.1:0"
	cfg.EnableMetrics = true
	cfg.Workers = 2
	cfg.Cycle = 5 * time.Millisecond
	cfg.StatsInterval = 0
	cfg.Routes = []string{"^/metrics$ prometheus-metrics:"}
	return cfg
}

func TestRouteThroughRuntime(t *testing.T) {
	rt, _ := startRuntime(t, hostConfig(), exporter.DefaultConfig())
	base := "http://" + rt.Addr().String()

	for _, path := range []string{"/", "/error", "/nope"} {
		resp, err := http.Get(base + path)
		require.NoError(t, err)
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	resp, err := http.Get(base + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, exposition.ContentType, resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get(host.RequestIDHeader))

	parser := expfmt.NewTextParser(model.UTF8Validation)
	families, err := parser.TextToMetricFamilies(resp.Body)
	require.NoError(t, err)

	total, ok := families["uwsgi_requests_total"]
	require.True(t, ok)
	assert.Equal(t, 3.0, total.GetMetric()[0].GetCounter().GetValue())

	perWorker, ok := families["uwsgi_worker_requests_total"]
	require.True(t, ok)
	assert.Len(t, perWorker.GetMetric(), 2)
	assert.Equal(t, "worker", perWorker.GetMetric()[0].GetLabel()[0].GetName())

	_, ok = families["uwsgi_http_status_5xx_total"]
	assert.True(t, ok)
}

func TestRouteMetricsDisabled(t *testing.T) {
	cfg := hostConfig()
	cfg.EnableMetrics = false
	rt, _ := startRuntime(t, cfg, exporter.DefaultConfig())

	resp, err := http.Get("http://" + rt.Addr().String() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "Metrics subsystem not initialized. Enable with --enable-metrics\n", string(body))
}

func TestDedicatedServerThroughMasterLoop(t *testing.T) {
	hcfg := hostConfig()
	hcfg.Master = true
	ecfg := exporter.DefaultConfig()
	ecfg.ServerAddress = "127.0.0.1:0"
	ecfg.NoWorkers = true

	_, e := startRuntime(t, hcfg, ecfg)
	require.NotNil(t, e.Listener())

	conn, err := net.Dial("tcp", e.Listener().Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))

	_, err = conn.Write([]byte("GET /metrics HTTP/1.0\r\n\r\n"))
	require.NoError(t, err)

	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, "HTTP/1.0", resp.Proto)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(len(body)), resp.ContentLength)
	assert.Contains(t, string(body), "# TYPE uwsgi_requests_total counter\n")
	assert.NotContains(t, string(body), "worker")
	assert.False(t, strings.Contains(string(body), "\r"))
}
