// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the routes,
// mapping specific paths to their corresponding handlers
package router

import (
	"github.com/deppfellow/call-relay/internal/handler"
	"github.com/deppfellow/call-relay/internal/middleware"
	"github.com/deppfellow/call-relay/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the Echo instance serving the relay.
//
// Global middleware order matters:
//  1. RequestID so every later log line can be correlated
//  2. New Relic transaction, then the context logger that reads it
//  3. tracing attributes, request log, metrics
//  4. Recover last so a panic is still logged and counted as a 500
func NewRouter(s *server.Server, h *handler.Handlers, m *middleware.Middlewares) *echo.Echo {
	r := echo.New()
	r.HideBanner = true
	r.HidePort = true

	r.HTTPErrorHandler = m.Global.GlobalErrorHandler

	r.Pre(middleware.CallCORS(CallPath))

	r.Use(
		middleware.RequestID(),
		m.Tracing.NewRelicMiddleware(),
		m.ContextEnhancer.EnhanceContext(),
		m.Tracing.EnhanceTracing(),
		m.Global.RequestLogger(),
		middleware.Metrics(),
		m.Global.Secure(),
		m.Global.Recover(),
	)

	registerSystemRoutes(r, h)
	registerCallRoutes(r, h)

	s.Logger.Debug().
		Int("routes", len(r.Routes())).
		Msg("routes registered")

	return r
}

// CallPath is the call endpoint.
const CallPath = "/api/initiate-call"

// registerCallRoutes registers the call endpoint for every method Echo knows.
//
// Method dispatch lives in the handler. Methods outside Echo's list never
// reach it; the router answers those with the same 405 envelope and
// CallCORS has already set the headers.
func registerCallRoutes(r *echo.Echo, h *handler.Handlers) {
	r.Any(CallPath, h.Call.InitiateCall)
}
