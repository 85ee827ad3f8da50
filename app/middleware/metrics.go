package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"fairway/app/metrics"
)

// Metrics records request counts and latency by route template
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.IncInFlight()
		defer metrics.DecInFlight()

		sw := wrap(w)
		next.ServeHTTP(sw, r)

		path := "unmatched"
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}
		metrics.ObserveHTTP(r.Method, path, sw.status, time.Since(start))
	})
}
