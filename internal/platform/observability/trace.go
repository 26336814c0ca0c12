package observability

import (
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/ignitoosolutions/ignito1/internal/platform/requestctx"
)

var (
	tracer     = otel.Tracer("github.com/ignitoosolutions/ignito1/internal/platform/observability")
	propagator = propagation.TraceContext{}
)

// TraceMiddleware continues an incoming W3C trace (traceparent header) when present,
// starts a server span and records the trace identifiers on the request context.
func TraceMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			ctx, span := tracer.Start(ctx, spanName(r), trace.WithSpanKind(trace.SpanKindServer))
			defer span.End()
			span.SetAttributes(
				attribute.String("http.request.method", SanitizeMethod(r.Method)),
				attribute.String("url.path", SanitizeRoute(r.URL.Path)),
			)

			spanCtx := span.SpanContext()
			info := requestctx.TraceInfo{Sampled: spanCtx.IsSampled()}
			if spanCtx.HasTraceID() {
				info.TraceID = spanCtx.TraceID().String()
			}
			if spanCtx.HasSpanID() {
				info.SpanID = spanCtx.SpanID().String()
			}
			ctx = requestctx.WithTrace(ctx, info)

			propagator.Inject(ctx, propagation.HeaderCarrier(w.Header()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func spanName(r *http.Request) string {
	if r == nil || r.URL == nil {
		return "HTTP"
	}
	return SanitizeMethod(r.Method) + " " + SanitizeRoute(r.URL.Path)
}

// SanitizeMethod normalises an HTTP method for logs and span names.
func SanitizeMethod(method string) string {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		return "GET"
	}
	if len(method) > 16 {
		return method[:16]
	}
	return method
}

// SanitizeRoute trims a route for logging, dropping query strings and control characters.
func SanitizeRoute(route string) string {
	if idx := strings.IndexByte(route, '?'); idx >= 0 {
		route = route[:idx]
	}
	route = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, route)
	if route == "" {
		return "/"
	}
	if len(route) > 256 {
		return route[:256]
	}
	return route
}
