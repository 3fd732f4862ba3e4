package middleware

import (
	"strconv"
	"time"

	"github.com/deppfellow/call-relay/internal/lib/metrics"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Metrics records request count, latency and in-flight requests.
//
// Requests that matched no route are labelled "unmatched" so scanners
// cannot blow up label cardinality.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			metrics.RequestStarted()
			defer metrics.RequestFinished()

			err := next(c)

			path := c.Path()
			if path == "" || errors.Is(err, echo.ErrNotFound) {
				path = "unmatched"
			}

			status := statusFromError(err, c.Response().Status)
			metrics.ObserveRequest(
				c.Request().Method,
				path,
				strconv.Itoa(status),
				time.Since(start).Seconds(),
			)

			return err
		}
	}
}
