package httpmiddleware

import (
	"base62num.local/gee"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TraceName 把 otelhttp 建的 span 改名为 "METHOD /route/:pattern"。
func TraceName() gee.HandlerFunc {
	return func(ctx *gee.Context) {
		ctx.Next()
		if ctx.RoutePattern == "" {
			return
		}
		span := trace.SpanFromContext(ctx.Req.Context())
		span.SetName(ctx.Method + " " + ctx.RoutePattern)
		span.SetAttributes(attribute.String("http.route", ctx.RoutePattern))
	}
}
