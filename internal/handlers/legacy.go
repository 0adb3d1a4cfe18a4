package handlers

import (
	"net/http"
	"strings"
)

// LegacyRoute serves clients that address endpoints through a "route" query
// parameter (for example "/?route=/posts&page=2") by rewriting the request
// path before routing.
func LegacyRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := strings.TrimSpace(r.URL.Query().Get("route"))
		if route == "" {
			next.ServeHTTP(w, r)
			return
		}

		rewritten := r.Clone(r.Context())
		rewritten.URL.Path = "/" + strings.Trim(route, "/")
		rewritten.URL.RawPath = ""
		next.ServeHTTP(w, rewritten)
	})
}
