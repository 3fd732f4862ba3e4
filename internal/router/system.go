package router

import (
	"github.com/deppfellow/call-relay/internal/handler"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerSystemRoutes registers endpoints that are not part of the call flow:
//  1. the static page with the call form
//  2. health status (used by monitors / load balancers)
//  3. Prometheus metrics
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/", h.Page.ServeIndex)

	r.GET("/status", h.Health.CheckHealth)

	r.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
