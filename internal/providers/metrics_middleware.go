package providers

import (
	"net/http"
	"time"
)

// statusWriter captures the status code a handler writes so the
// middleware can label the request counter with it. Handlers that never
// call WriteHeader implicitly answer 200.
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

// MetricsMiddleware instruments the API surface. Frequency identifiers
// travel in query parameters, so r.URL.Path is already a bounded label
// set (one value per route) and safe to feed to prometheus directly.
func MetricsMiddleware(metrics MetricsProviderInterface, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		metrics.IncRequestsTotal(r.URL.Path, sw.status)
		metrics.ObserveRequestDuration(r.URL.Path, time.Since(start))
	})
}
