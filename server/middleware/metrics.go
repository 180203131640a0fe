package middleware

import (
	"context"
	"net/http"
	"time"
)

// RequestRecorder receives request metrics. observability.Metrics
// implements it.
type RequestRecorder interface {
	RecordRequestStart(ctx context.Context)
	RecordRequestEnd(ctx context.Context, method, route string, status int, duration time.Duration)
}

// Metrics returns middleware that records in-flight and completed requests.
// Paths answered with 404 are reported under a single route label.
func Metrics(rec RequestRecorder) Middleware {
	if rec == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec.RecordRequestStart(r.Context())
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			route := r.URL.Path
			if sw.status == http.StatusNotFound {
				route = "unmatched"
			}
			rec.RecordRequestEnd(r.Context(), r.Method, route, sw.status, time.Since(start))
		})
	}
}
