package handler

import (
	"net/http"

	"github.com/deppfellow/call-relay/internal/errs"
	"github.com/deppfellow/call-relay/internal/model"
	"github.com/deppfellow/call-relay/internal/server"
	"github.com/deppfellow/call-relay/internal/service"
	"github.com/labstack/echo/v4"
)

// CallHandler serves /api/initiate-call.
//
// The route is registered for every method; InitiateCall does the dispatch
// so that OPTIONS and GET answer without looking at configuration, and
// every other method except POST gets the same 405 envelope.
type CallHandler struct {
	Handler
	services *service.Services

	initiate echo.HandlerFunc
}

// NewCallHandler builds the POST pipeline once: configuration guard first,
// then body binding and phone validation, then the upstream call.
func NewCallHandler(s *server.Server, services *service.Services) *CallHandler {
	h := &CallHandler{
		Handler:  NewHandler(s),
		services: services,
	}

	h.initiate = Handle(
		h.Handler,
		h.initiateCall,
		http.StatusOK,
		func() *model.InitiateCallRequest { return &model.InitiateCallRequest{} },
		func(echo.Context) error { return services.Call.CheckConfiguration() },
	)

	return h
}

// InitiateCall dispatches on the request method.
func (h *CallHandler) InitiateCall(c echo.Context) error {
	switch c.Request().Method {
	case http.MethodOptions:
		return c.NoContent(http.StatusNoContent)
	case http.MethodGet:
		return c.JSON(http.StatusOK, model.NewReachable())
	case http.MethodPost:
		return h.initiate(c)
	default:
		return errs.NewMethodNotAllowedError()
	}
}

func (h *CallHandler) initiateCall(c echo.Context, req *model.InitiateCallRequest) (*model.CallResult, error) {
	return h.services.Call.InitiateCall(c.Request().Context(), req)
}
