// Package httpmiddleware contains net/http middlewares shared by the
// deadgravel HTTP server.
package httpmiddleware

import "net/http"

// Middleware is a net/http middleware.
type Middleware = func(http.Handler) http.Handler

// Wrap wraps h with the given middlewares. The first middleware is the
// outermost one.
func Wrap(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
