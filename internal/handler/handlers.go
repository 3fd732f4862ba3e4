package handler

import (
	"github.com/deppfellow/call-relay/internal/server"
	"github.com/deppfellow/call-relay/internal/service"
)

// Handlers is a container that groups all HTTP handlers.
//
// Similar to Middlewares and Services, router setup receives one object
// instead of many.
type Handlers struct {
	Call   *CallHandler   // Call relays /api/initiate-call to the call-placement API.
	Health *HealthHandler // Health serves the /status document.
	Page   *PageHandler   // Page serves the static form on /.
}

// NewHandlers constructs the handler container.
func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Call:   NewCallHandler(s, services),
		Health: NewHealthHandler(s, services),
		Page:   NewPageHandler(s),
	}
}
