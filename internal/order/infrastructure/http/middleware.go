package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/storelab/checkout/pkg/metrics"
)

func LatencyMiddleware(mx *metrics.Checkout) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			mx.RequestLatencyMS.WithLabelValues(r.Method + " " + route).
				Observe(float64(time.Since(start).Milliseconds()))
		})
	}
}
