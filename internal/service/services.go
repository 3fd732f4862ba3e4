package service

import (
	"github.com/deppfellow/call-relay/internal/server"
	"github.com/deppfellow/call-relay/internal/vapi"
)

type Services struct {
	Call *CallService
}

func NewServices(s *server.Server, placer vapi.CallPlacer) *Services {
	return &Services{
		Call: NewCallService(s, placer),
	}
}
