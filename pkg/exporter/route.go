package exporter

import (
	"net/http"

	"github.com/getmockd/promexport/pkg/exposition"
	"github.com/getmockd/promexport/pkg/httputil"
	"github.com/getmockd/promexport/pkg/registry"
)

const (
	notInitializedBody = "Metrics subsystem not initialized. Enable with --enable-metrics\n"
	generateFailedBody = "Failed to generate metrics\n"
)

// RouteHandler returns the handler bound by route rules. args is ignored.
func (e *Exporter) RouteHandler(_ string) http.Handler {
	return http.HandlerFunc(e.serveMetrics)
}

func (e *Exporter) serveMetrics(w http.ResponseWriter, _ *http.Request) {
	var reg *registry.Registry
	if e.host != nil {
		reg = e.host.Registry()
	}
	if !reg.Enabled() {
		_ = httputil.WriteText(w, http.StatusServiceUnavailable, notInitializedBody)
		return
	}

	doc, err := e.gen.Generate(reg)
	if err != nil {
		e.log.Error("failed to generate metrics", "error", err)
		_ = httputil.WriteText(w, http.StatusInternalServerError, generateFailedBody)
		return
	}

	if err := httputil.WriteBody(w, http.StatusOK, exposition.ContentType, doc); err != nil {
		e.log.Debug("metrics write failed", "error", err)
	}
}
