package middleware

import (
	"net/http"

	"github.com/deppfellow/call-relay/internal/errs"
	"github.com/deppfellow/call-relay/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// GlobalMiddlewares groups “global” middleware and the global error handler.
//
// The struct gives every middleware access to shared app dependencies
// from *server.Server, especially config and logging.
type GlobalMiddlewares struct {
	server *server.Server
}

// NewGlobalMiddlewares constructs the middleware bundle.
func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

// RequestLogger returns Echo’s request logger middleware, but with a custom LogValuesFunc.
//
// It produces one “API” log line per request, with severity based on the
// final status code.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			// When a handler returns an error the response has not been written
			// yet, so v.Status still holds the default 200.
			// Reference: https://github.com/labstack/echo/issues/2310#issuecomment-1288196898
			statusCode := statusFromError(v.Error, v.Status)

			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case statusCode >= 500:
				e = logger.Error().Err(v.Error)
			case statusCode >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			if requestID := GetRequestID(c); requestID != "" {
				e = e.Str("request_id", requestID)
			}

			e.
				Dur("latency", v.Latency).
				Int("status", statusCode).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("ip", c.RealIP()).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

// Recover returns Echo’s panic recovery middleware.
//
// Panics become errors and reach GlobalErrorHandler as a generic 500.
func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.Recover()
}

// Secure returns Echo’s secure headers middleware.
func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

// GlobalErrorHandler is the final error funnel for the entire HTTP server.
//
// Every error ends up here and is written as the same envelope the
// call endpoint uses for success:
//
//	{ "success": false, "message": "..." }
//
// The original error (including any cause hidden from the client) is logged
// with the request-scoped logger.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	originalErr := err

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		httpErr = fromUnknownError(err)
	}

	logger := *GetLogger(c)

	event := logger.Error()
	if httpErr.Status < http.StatusInternalServerError {
		event = logger.Warn()
	}

	event.Stack().
		Err(originalErr).
		Int("status", httpErr.Status).
		Str("error_code", httpErr.Code).
		Msg(httpErr.Message)

	if !c.Response().Committed {
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(httpErr.Status)
			return
		}

		_ = c.JSON(httpErr.Status, errs.HTTPError{
			Success: false,
			Message: httpErr.Message,
		})
	}
}

// fromUnknownError maps errors that are not *errs.HTTPError onto one.
//
// Echo's own errors keep their status (route 404 and 405 get the fixed
// messages). Anything else is a generic 500 that reveals nothing internal.
func fromUnknownError(err error) *errs.HTTPError {
	var echoErr *echo.HTTPError
	if !errors.As(err, &echoErr) {
		return errs.NewInternalServerError().WithCause(err)
	}

	switch echoErr.Code {
	case http.StatusNotFound:
		return errs.NewNotFoundError("Route not found").WithCause(err)
	case http.StatusMethodNotAllowed:
		return errs.NewMethodNotAllowedError().WithCause(err)
	}

	if echoErr.Code >= http.StatusInternalServerError {
		return errs.NewInternalServerError().WithCause(err)
	}

	message := http.StatusText(echoErr.Code)
	if msg, ok := echoErr.Message.(string); ok && msg != "" {
		message = msg
	}

	return &errs.HTTPError{
		Code:    errs.MakeUpperCaseWithUnderscores(http.StatusText(echoErr.Code)),
		Message: message,
		Status:  echoErr.Code,
	}
}

// statusFromError derives the status a failed request will be answered with.
//
// Falls back to the recorded status when err is nil or carries no status.
func statusFromError(err error, fallback int) int {
	if err == nil {
		return fallback
	}

	var httpErr *errs.HTTPError
	var echoErr *echo.HTTPError

	switch {
	case errors.As(err, &httpErr):
		return httpErr.Status
	case errors.As(err, &echoErr):
		return echoErr.Code
	default:
		return http.StatusInternalServerError
	}
}
