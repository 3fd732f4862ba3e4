package handler

import (
	"net/http"
	"time"

	"github.com/deppfellow/call-relay/internal/middleware"
	"github.com/deppfellow/call-relay/internal/server"
	"github.com/deppfellow/call-relay/internal/service"
	"github.com/labstack/echo/v4"
)

// HealthHandler exposes a "system" endpoint that uptime monitors and load
// balancers use to verify the relay is alive and able to place calls.
type HealthHandler struct {
	Handler
	services *service.Services
}

// NewHealthHandler constructs a HealthHandler with access to shared app dependencies.
func NewHealthHandler(s *server.Server, services *service.Services) *HealthHandler {
	return &HealthHandler{
		Handler:  NewHandler(s),
		services: services,
	}
}

// CheckHealth returns system health status and dependency checks.
//
// Response includes:
// - overall status (healthy/unhealthy)
// - timestamp (UTC) and uptime
// - environment (from config)
// - checks map (vapi credentials)
//
// It returns:
// - 200 OK if all checks pass
// - 503 Service Unavailable if any check fails
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"uptime":      time.Since(h.server.StartedAt).Round(time.Second).String(),
		"checks":      make(map[string]interface{}),
	}

	checks := response["checks"].(map[string]interface{})
	isHealthy := true

	// ---------------- Vapi credentials check ---------------------------------
	// Configuration only: probing the upstream would cost an API call per check.
	vapiStatus := h.services.Call.ConfigurationStatus()
	checks["vapi"] = map[string]interface{}{
		"status": vapiStatus,
	}

	if vapiStatus != service.ConfigStatusConfigured {
		isHealthy = false

		logger.Error().
			Str("vapi_status", vapiStatus).
			Msg("vapi health check failed")

		if app := h.server.LoggerService.GetApplication(); app != nil {
			app.RecordCustomEvent(
				"HealthCheckError",
				map[string]interface{}{
					"check_type": "vapi",
					"operation":  "health_check",
					"error_type": vapiStatus,
				},
			)
		}
	}

	// ---------------- Overall status + response ------------------------------
	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	return c.JSON(http.StatusOK, response)
}
