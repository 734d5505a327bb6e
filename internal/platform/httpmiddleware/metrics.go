package httpmiddleware

import (
	"strconv"
	"time"

	"base62num.local/gee"
	"base62num.local/internal/platform/metrics"
)

func Metrics() gee.HandlerFunc {
	return func(ctx *gee.Context) {
		start := time.Now()
		metrics.HTTPInflightRequests.Inc()
		defer metrics.HTTPInflightRequests.Dec()

		ctx.Next()

		route := ctx.RoutePattern
		if route == "" {
			route = "UNMATCHED"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(ctx.Method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
		metrics.HTTPRequestDurationSeconds.WithLabelValues(ctx.Method, route).Observe(time.Since(start).Seconds())
	}
}
