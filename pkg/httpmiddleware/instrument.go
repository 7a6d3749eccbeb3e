package httpmiddleware

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// RouteFinder returns the route pattern that serves the given method and URL.
type RouteFinder func(method string, u *url.URL) (string, bool)

// MakeRouteFinder creates a RouteFinder backed by a chi router.
func MakeRouteFinder(routes chi.Routes) RouteFinder {
	return func(method string, u *url.URL) (string, bool) {
		pattern := routes.Find(chi.NewRouteContext(), method, u.Path)
		return pattern, pattern != ""
	}
}

// TelemetryProvider provides the otel providers used for instrumentation.
type TelemetryProvider interface {
	TracerProvider() trace.TracerProvider
	MeterProvider() metric.MeterProvider
}

// Instrument wraps handlers with otelhttp. Spans are named after the matched
// route.
func Instrument(serviceName string, find RouteFinder, m TelemetryProvider) Middleware {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "",
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
			otelhttp.WithServerName(serviceName),
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				if route, ok := find(r.Method, r.URL); ok {
					return r.Method + " " + route
				}
				if operation == "" {
					return r.Method
				}
				return operation
			}),
		)
	}
}

// Labeler adds the matched route to the span and to the otelhttp metric
// labels.
func Labeler(find RouteFinder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, ok := find(r.Method, r.URL)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			attr := attribute.String("http.route", route)
			trace.SpanFromContext(r.Context()).SetAttributes(attr)
			if labeler, ok := otelhttp.LabelerFromContext(r.Context()); ok {
				labeler.Add(attr)
			}
			next.ServeHTTP(w, r)
		})
	}
}
