package middleware

import (
	"github.com/deppfellow/call-relay/internal/logger"
	"github.com/deppfellow/call-relay/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// LoggerKey is the echo context key of the request-scoped logger.
const LoggerKey = "logger"

// ContextEnhancer attaches a request-scoped logger to every request.
type ContextEnhancer struct {
	server *server.Server
}

// NewContextEnhancer creates a new ContextEnhancer using the app Server container.
func NewContextEnhancer(s *server.Server) *ContextEnhancer {
	return &ContextEnhancer{server: s}
}

// EnhanceContext builds the request logger once and publishes it twice: in the
// echo context for handlers and middleware (GetLogger), and in the request's
// context.Context so the service layer and the Vapi client can log with
// zerolog.Ctx without knowing about echo.
//
// Must run after RequestID and the New Relic middleware, whose values it reads.
func (ce *ContextEnhancer) EnhanceContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqLogger := ce.requestLogger(c)
			c.Set(LoggerKey, &reqLogger)

			req := c.Request()
			c.SetRequest(req.WithContext(reqLogger.WithContext(req.Context())))

			return next(c)
		}
	}
}

// requestLogger derives the per-request logger from the server logger.
//
// c.Path() is the route template, so /api/initiate-call shows up under one
// path value whatever the query string.
func (ce *ContextEnhancer) requestLogger(c echo.Context) zerolog.Logger {
	l := ce.server.Logger.With().
		Str("request_id", GetRequestID(c)).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("ip", c.RealIP()).
		Logger()

	if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
		l = logger.WithTraceContext(l, txn)
	}

	return l
}

// GetLogger returns the logger set by EnhanceContext, or a no-op logger when
// the middleware did not run (unit tests calling handlers directly).
func GetLogger(c echo.Context) *zerolog.Logger {
	if l, ok := c.Get(LoggerKey).(*zerolog.Logger); ok {
		return l
	}

	nop := zerolog.Nop()
	return &nop
}
