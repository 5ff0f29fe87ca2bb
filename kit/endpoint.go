// Package kit holds the small transport-agnostic building blocks shared by
// cartwatch services: the Endpoint signature, middleware chaining, request
// context keys, and the MCP tool adapter.
package kit

import "context"

// Endpoint is a transport-agnostic operation: typed request in, typed
// response out. HTTP handlers and MCP tools both terminate in an Endpoint.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint with cross-cutting behaviour.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares left to right: the first middleware is the
// outermost wrapper.
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
