package middleware

import "github.com/labstack/echo/v4"

// Fixed CORS header values of the call endpoint.
const (
	CallAllowOrigin  = "*"
	CallAllowMethods = "POST, OPTIONS"
	CallAllowHeaders = "Content-Type"
)

// CallCORS sets the call endpoint's CORS headers on every response to path,
// including errors and the OPTIONS preflight.
//
// It is installed with Echo.Pre so it runs before routing: requests whose
// method the router rejects on its own still carry the headers. It never
// answers a preflight itself; the handler owns method dispatch.
func CallCORS(path string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().URL.Path == path {
				h := c.Response().Header()
				h.Set(echo.HeaderAccessControlAllowOrigin, CallAllowOrigin)
				h.Set(echo.HeaderAccessControlAllowMethods, CallAllowMethods)
				h.Set(echo.HeaderAccessControlAllowHeaders, CallAllowHeaders)
			}

			return next(c)
		}
	}
}
