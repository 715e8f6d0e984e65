// Package handler provides HTTP handlers for the RouteNest API.
package handler

import (
	"net/http"
	"time"

	"github.com/routenest/routenest/internal/api/models"
	"github.com/routenest/routenest/internal/api/response"
	"github.com/routenest/routenest/internal/provider/resilience"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, buildTime string, registry *resilience.Registry) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		registry:  registry,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. The
// service is degraded, not unready, when a provider circuit is open:
// searches still complete via fallbacks and cached data.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatusOK
	if h.registry != nil {
		for _, ph := range h.registry.GetAllHealth() {
			if ph.IsUnhealthy() || ph.IsDegraded() {
				status = models.HealthStatusDegraded
				break
			}
		}
	}
	health := models.Health{
		Status: status,
		Time:   models.Timestamp(time.Now()),
	}
	response.JSON(w, r, http.StatusOK, health)
}

// Providers handles GET /v1/ops/providers - external provider health.
func (h *OpsHandler) Providers(w http.ResponseWriter, r *http.Request) {
	resp := models.ProvidersResponse{
		Time:      models.Timestamp(time.Now()),
		Providers: []models.ProviderStatus{},
	}

	if h.registry != nil {
		for _, ph := range h.registry.GetAllHealth() {
			status := models.HealthStatusOK
			switch {
			case ph.IsUnhealthy():
				status = models.HealthStatusFail
			case ph.IsDegraded():
				status = models.HealthStatusDegraded
			}

			ps := models.ProviderStatus{
				Provider: ph.Name,
				Status:   status,
			}
			if ph.LastSuccessAt != nil {
				ts := models.Timestamp(*ph.LastSuccessAt)
				ps.LastSuccessAt = &ts
			}
			if ph.LastFailureAt != nil {
				ts := models.Timestamp(*ph.LastFailureAt)
				ps.LastFailureAt = &ts
			}
			if ph.LastError != "" {
				msg := ph.LastError
				ps.Message = &msg
			}
			resp.Providers = append(resp.Providers, ps)
		}
	}

	response.JSON(w, r, http.StatusOK, resp)
}
