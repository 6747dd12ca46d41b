package controllers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"passin/internal/domain"
)

type HealthController struct {
	Logger  *slog.Logger
	Service domain.HealthService
}

func NewHealthController(logger *slog.Logger, svc domain.HealthService) *HealthController {
	return &HealthController{
		Logger:  logger,
		Service: svc,
	}
}

// Check godoc
// @Summary Health check
// @Description Runs every indicator (self ping, database, disk, heap). Failures are forwarded to the log sink.
// @Tags health
// @Produce json
// @Success 200 {object} domain.HealthReport
// @Failure 503 {object} domain.HealthReport
// @Router /health [get]
func (c *HealthController) Check(w http.ResponseWriter, r *http.Request) {
	report := c.Service.Check(r.Context())
	status := http.StatusOK
	if !report.OK() {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(report); err != nil {
		c.Logger.ErrorContext(r.Context(), "encode health report", "err", err)
	}
}
