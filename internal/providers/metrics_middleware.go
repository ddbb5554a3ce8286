package providers

import (
	"net/http"
	"time"
)

// Requests for paths no route is registered for share this label; tracking links are
// scanned by mail security gateways with arbitrary paths.
const unmatchedEndpoint = "unmatched"

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// MetricsMiddleware serves the router's handler and records one request per call,
// labelled with the registered route path.
func MetricsMiddleware(metrics MetricsProviderInterface, router RouterProviderInterface) http.Handler {
	known := make(map[string]struct{})
	for _, route := range router.GetRoutes() {
		known[route.Url] = struct{}{}
	}
	next := router.Handler()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		endpoint := r.URL.Path
		if _, ok := known[endpoint]; !ok {
			endpoint = unmatchedEndpoint
		}
		metrics.IncRequestsTotal(endpoint, sw.status)
		metrics.ObserveRequestDuration(endpoint, time.Since(start))
	})
}
