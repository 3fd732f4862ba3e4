package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	// RequestIDHeader carries the correlation ID in and out of the relay.
	RequestIDHeader = echo.HeaderXRequestID

	// RequestIDKey is the echo context key GetRequestID reads.
	RequestIDKey = "request_id"
)

// RequestID wraps echo's RequestID middleware.
//
// An incoming X-Request-ID is reused, otherwise a UUID is generated. The ID is
// echoed in the response header and stored under RequestIDKey for the logger,
// the tracing attributes and the request log line.
func RequestID() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator:    uuid.NewString,
		TargetHeader: RequestIDHeader,
		RequestIDHandler: func(c echo.Context, id string) {
			c.Set(RequestIDKey, id)
		},
	})
}

// GetRequestID returns the ID stored by RequestID, or "" when it did not run.
func GetRequestID(c echo.Context) string {
	id, _ := c.Get(RequestIDKey).(string)
	return id
}
