// Package httpx carries the HTTP plumbing shared by handlers: middleware
// chaining, JSON responses, bearer authentication and rate limiting.
package httpx

import "net/http"

// Middleware wraps an http.Handler with extra behavior.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares to h so that the first middleware listed is the
// outermost one at request time.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
