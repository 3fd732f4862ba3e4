package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/deppfellow/call-relay/internal/server"
)

// TracingMiddleware installs New Relic on the router.
//
// With no license key nrApp is nil: NewRelicMiddleware passes requests through
// and EnhanceTracing finds no transaction, so both cost nothing.
type TracingMiddleware struct {
	server *server.Server
	nrApp  *newrelic.Application
}

// NewTracingMiddleware constructs TracingMiddleware.
func NewTracingMiddleware(s *server.Server, nrApp *newrelic.Application) *TracingMiddleware {
	return &TracingMiddleware{
		server: s,
		nrApp:  nrApp,
	}
}

// NewRelicMiddleware starts one transaction per request via nrecho.
//
// The transaction lands in the request context, where the context logger,
// EnhanceTracing and the outbound Vapi round tripper pick it up.
func (tm *TracingMiddleware) NewRelicMiddleware() echo.MiddlewareFunc {
	if tm.nrApp == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return nrecho.Middleware(tm.nrApp)
}

// EnhanceTracing tags the transaction with correlation attributes before the
// handler runs and with the final status afterwards. Returned errors are
// noticed through nrpkgerrors so pkg/errors stack traces reach APM.
func (tm *TracingMiddleware) EnhanceTracing() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			txn := newrelic.FromContext(c.Request().Context())
			if txn == nil {
				return next(c)
			}

			for key, value := range requestAttributes(c) {
				txn.AddAttribute(key, value)
			}

			err := next(c)
			if err != nil {
				txn.NoticeError(nrpkgerrors.Wrap(err))
			}

			// The global error handler writes the response after this returns,
			// so the status is taken from the error when there is one.
			txn.AddAttribute("http.status_code", statusFromError(err, c.Response().Status))

			return err
		}
	}
}

func requestAttributes(c echo.Context) map[string]string {
	attrs := map[string]string{
		"http.real_ip":    c.RealIP(),
		"http.user_agent": c.Request().UserAgent(),
	}

	if id := GetRequestID(c); id != "" {
		attrs["request.id"] = id
	}

	return attrs
}
