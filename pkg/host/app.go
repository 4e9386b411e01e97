package host

import (
	"net/http"
	"time"

	"github.com/getmockd/promexport/pkg/httputil"
)

// slowDelay is how long the demo application's /slow endpoint takes.
const slowDelay = 100 * time.Millisecond

// NewApp returns a small application used to generate traffic:
// "/" answers 200, "/slow" answers 200 after a delay, "/error" answers 500
// and everything else 404.
func NewApp() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			_ = httputil.WriteText(w, http.StatusOK, "Hello from test app\n")
		case "/slow":
			select {
			case <-time.After(slowDelay):
			case <-r.Context().Done():
				return
			}
			_ = httputil.WriteText(w, http.StatusOK, "Slow response\n")
		case "/error":
			_ = httputil.WriteText(w, http.StatusInternalServerError, "Error response\n")
		default:
			_ = httputil.WriteText(w, http.StatusNotFound, "Not found\n")
		}
	})
}
