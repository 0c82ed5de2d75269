package controllers

import (
	"admission/internal/models"
	"admission/internal/providers"
	"admission/internal/services"
	"net/http"
)

type TelemetryController struct {
	logger    providers.Logger
	telemetry services.TelemetryServiceInterface
}

type telemetryRequest struct {
	Events []models.TelemetryEvent `json:"events"`
}

func NewTelemetryController(logger providers.Logger, telemetry services.TelemetryServiceInterface) *TelemetryController {
	return &TelemetryController{
		logger:    logger,
		telemetry: telemetry,
	}
}

// Receive buffers events as they are; unknown buttons are dropped at flush.
func (tc *TelemetryController) Receive(w http.ResponseWriter, r *http.Request) {
	var req telemetryRequest
	if err := decodeBody(w, r, &req); err != nil {
		tc.logger.Debugf(providers.TypePost, "Malformed telemetry payload: %s", err)
		writeError(w, http.StatusBadRequest, StatusFailed, err)
		return
	}
	tc.telemetry.AddEvents(req.Events)
	writeStatus(w, StatusOK)
}
