// Package routing provides the HTTP mux used by the optional metrics
// listener. The forwarding proxy itself never uses net/http — its
// client- and origin-facing sockets are handled directly by the request
// pipeline — but the secondary observability surface ("/metrics") is a
// conventional net/http handler, so it gets a path-normalizing mux.
package routing

import (
	"net/http"
	"path"
	"strings"
)

// NormalizedServeMux is an http.ServeMux that collapses doubled slashes
// in the request path before routing, so "/metrics//" and "/metrics"
// resolve the same handler.
type NormalizedServeMux struct {
	*http.ServeMux
}

// NewNormalizedServeMux creates an empty mux.
func NewNormalizedServeMux() *NormalizedServeMux {
	return &NormalizedServeMux{http.NewServeMux()}
}

func (nm *NormalizedServeMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(r.URL.Path, "//") {
		r.URL.Path = path.Clean(r.URL.Path)
	}
	nm.ServeMux.ServeHTTP(w, r)
}
