package controllers

import (
	"admission/internal/checks"
	"admission/internal/models"
	"admission/internal/providers"
	"admission/internal/services"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type UserController struct {
	logger   providers.Logger
	registry services.RegistryServiceInterface
	checks   checks.ChecksInterface
}

type existsResponse struct {
	Status int  `json:"status"`
	Exists bool `json:"exists"`
}

func NewUserController(logger providers.Logger, registry services.RegistryServiceInterface, checks checks.ChecksInterface) *UserController {
	return &UserController{
		logger:   logger,
		registry: registry,
		checks:   checks,
	}
}

func (uc *UserController) Users(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, uc.registry.GetUsers())
}

func (uc *UserController) UsersByPlatform(w http.ResponseWriter, r *http.Request) {
	platform := models.Platform(chi.URLParam(r, "platform"))
	writeJSON(w, http.StatusOK, uc.registry.GetUsersByPlatform(platform))
}

func (uc *UserController) UserIDsByPlatform(w http.ResponseWriter, r *http.Request) {
	platform := models.Platform(chi.URLParam(r, "platform"))
	writeJSON(w, http.StatusOK, uc.registry.GetUserIDsByPlatform(platform))
}

// patch decodes and validates a user payload. On failure the validation
// status is already written.
func (uc *UserController) patch(w http.ResponseWriter, r *http.Request) (models.UserPatch, bool) {
	var patch models.UserPatch
	if err := decodeBody(w, r, &patch); err != nil {
		uc.logger.Debugf(providers.TypePost, "Malformed user payload: %s", err)
		writeStatus(w, StatusValidation)
		return patch, false
	}
	if err := uc.checks.User(patch); err != nil {
		uc.logger.Debugf(providers.TypePost, "Invalid user payload: %s", err)
		writeStatus(w, StatusValidation)
		return patch, false
	}
	return patch, true
}

func (uc *UserController) mutationStatus(w http.ResponseWriter, op string, err error) {
	if err != nil {
		uc.logger.Warnf(providers.TypePost, "User %s failed: %s", op, err)
		writeStatus(w, StatusFailed)
		return
	}
	writeStatus(w, StatusOK)
}

func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	patch, ok := uc.patch(w, r)
	if !ok {
		return
	}
	uc.mutationStatus(w, "register", uc.registry.AddUser(r.Context(), patch.Record()))
}

func (uc *UserController) Update(w http.ResponseWriter, r *http.Request) {
	patch, ok := uc.patch(w, r)
	if !ok {
		return
	}
	uc.mutationStatus(w, "update", uc.registry.UpdateUser(r.Context(), patch.Record(), false))
}

func (uc *UserController) UpdatePartial(w http.ResponseWriter, r *http.Request) {
	patch, ok := uc.patch(w, r)
	if !ok {
		return
	}
	uc.mutationStatus(w, "partial update", uc.registry.UpdateUserPartial(r.Context(), patch))
}

func (uc *UserController) Exists(w http.ResponseWriter, r *http.Request) {
	key, err := userKey(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, StatusValidation, err)
		return
	}
	writeJSON(w, http.StatusOK, existsResponse{Status: StatusOK, Exists: uc.registry.IsUser(key)})
}

func (uc *UserController) Get(w http.ResponseWriter, r *http.Request) {
	key, err := userKey(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, StatusValidation, err)
		return
	}
	user, ok := uc.registry.GetUser(key)
	if !ok {
		writeStatus(w, StatusFailed)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (uc *UserController) Delete(w http.ResponseWriter, r *http.Request) {
	key, err := userKey(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, StatusValidation, err)
		return
	}
	uc.mutationStatus(w, "delete", uc.registry.DeleteUser(r.Context(), key))
}
