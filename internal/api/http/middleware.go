package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/okravets/linktally/pkg/metrics"
)

// collectMetrics tracks request counts and durations, labeled by method and
// response status.
func collectMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := strconv.Itoa(ww.Status())
		metrics.RequestDuration.WithLabelValues(r.Method, status).Observe(time.Since(start).Seconds())
		metrics.RequestsTotal.WithLabelValues(r.Method, status).Inc()
	})
}
