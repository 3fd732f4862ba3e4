package handler

import (
	"github.com/deppfellow/call-relay/internal/server"
	"github.com/labstack/echo/v4"
)

// PageHandler serves the static page with the call form.
type PageHandler struct {
	Handler
}

// NewPageHandler constructs a PageHandler with access to shared dependencies.
func NewPageHandler(s *server.Server) *PageHandler {
	return &PageHandler{
		Handler: NewHandler(s),
	}
}

// ServeIndex serves server.index_file.
//
// Cache-Control is set to "no-cache" so browsers pick up edits to the page
// immediately. A missing file becomes echo's 404.
func (h *PageHandler) ServeIndex(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-cache")

	return c.File(h.server.Config.Server.IndexFile)
}
