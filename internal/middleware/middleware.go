// Package middleware stores global and route-specific middleware.
//
// These intercept requests to handle cross-cutting concerns
// such as request logging, the fixed CORS headers of the call
// endpoint, Prometheus metrics, tracing, and panic recovery
package middleware
