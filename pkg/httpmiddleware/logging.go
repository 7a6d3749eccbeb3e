package httpmiddleware

import (
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// InjectLogger stores lg as the base logger of every request context.
func InjectLogger(lg *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(zctx.Base(r.Context(), lg)))
		})
	}
}

// LogRequests enriches the context logger with request fields and logs
// every completed request with its status and duration.
func LogRequests(find RouteFinder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			fields := []zap.Field{
				zap.String("http.method", r.Method),
				zap.String("http.path", r.URL.Path),
			}
			if id := RequestIDFromContext(ctx); id != "" {
				fields = append(fields, zap.String("request_id", id))
			}
			if route, ok := find(r.Method, r.URL); ok {
				fields = append(fields, zap.String("http.route", route))
			}
			ctx = zctx.With(ctx, fields...)
			lg := zctx.From(ctx)

			m := httpsnoop.CaptureMetrics(next, w, r.WithContext(ctx))

			lg.Info("Request",
				zap.Int("http.status", m.Code),
				zap.Int64("http.written", m.Written),
				zap.Duration("took", m.Duration),
			)
		})
	}
}
