package controllers

import (
	"admission/internal/checks"
	"admission/internal/models"
	"admission/internal/providers"
	"admission/internal/services"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
)

// Enrollment statuses.
const (
	enrollOK       = 0
	enrollBadToken = 1
	enrollFailed   = 2
)

type AdminController struct {
	logger   providers.Logger
	registry services.RegistryServiceInterface
	checks   checks.ChecksInterface
}

type enrollRequest struct {
	Token    string          `json:"token"`
	UserID   json.RawMessage `json:"user_id"`
	Platform string          `json:"platform"`
}

func NewAdminController(logger providers.Logger, registry services.RegistryServiceInterface, checks checks.ChecksInterface) *AdminController {
	return &AdminController{
		logger:   logger,
		registry: registry,
		checks:   checks,
	}
}

func (ac *AdminController) Admins(w http.ResponseWriter, r *http.Request) {
	platform := models.Platform(chi.URLParam(r, "platform"))
	writeJSON(w, http.StatusOK, ac.registry.GetAdmins(platform))
}

func (ac *AdminController) Enroll(w http.ResponseWriter, r *http.Request) {
	var req enrollRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, enrollFailed, err)
		return
	}
	if !ac.checks.AdminToken(req.Token) {
		ac.logger.Warnf(providers.TypePost, "Admin enrollment with a bad token")
		writeStatus(w, enrollBadToken)
		return
	}

	var rawID any
	if err := json.Unmarshal(req.UserID, &rawID); err != nil {
		writeStatus(w, enrollFailed)
		return
	}
	id, err := models.ParseUserID(rawID)
	platform := models.Platform(req.Platform)
	if err != nil || id <= 0 || !platform.Valid() {
		writeStatus(w, enrollFailed)
		return
	}

	if err := ac.registry.AddAdmin(r.Context(), models.UserKey{Platform: platform, UserID: id}); err != nil {
		ac.logger.Warnf(providers.TypePost, "Admin enrollment failed: %s", err)
		writeStatus(w, enrollFailed)
		return
	}
	writeStatus(w, enrollOK)
}

func (ac *AdminController) Delete(w http.ResponseWriter, r *http.Request) {
	key, err := userKey(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, StatusValidation, err)
		return
	}
	if err := ac.registry.DeleteAdmin(r.Context(), key); err != nil {
		ac.logger.Warnf(providers.TypePost, "Admin delete failed: %s", err)
		writeStatus(w, StatusFailed)
		return
	}
	writeStatus(w, StatusOK)
}
