package controllers

import (
	"admission/internal/providers"
	"admission/internal/services"
	"net/http"
)

// SyncController refetches worksheets on demand.
type SyncController struct {
	logger   providers.Logger
	content  services.ContentServiceInterface
	registry services.RegistryServiceInterface
}

func NewSyncController(logger providers.Logger, content services.ContentServiceInterface, registry services.RegistryServiceInterface) *SyncController {
	return &SyncController{
		logger:   logger,
		content:  content,
		registry: registry,
	}
}

func (sc *SyncController) reloadContent(r *http.Request) statusResponse {
	if err := sc.content.Fetch(r.Context()); err != nil {
		sc.logger.Errorf(providers.TypeGet, "Content reload failed: %s", err)
		return statusResponse{Status: StatusFailed, Error: err.Error()}
	}
	return statusResponse{Status: StatusOK}
}

func (sc *SyncController) reloadUsers(r *http.Request) statusResponse {
	if err := sc.registry.FetchUsers(r.Context()); err != nil {
		sc.logger.Errorf(providers.TypeGet, "Users reload failed: %s", err)
		return statusResponse{Status: 1, Error: err.Error()}
	}
	if err := sc.registry.FetchAdmins(r.Context()); err != nil {
		sc.logger.Errorf(providers.TypeGet, "Admins reload failed: %s", err)
		return statusResponse{Status: 2, Error: err.Error()}
	}
	return statusResponse{Status: StatusOK}
}

func (sc *SyncController) Reload(w http.ResponseWriter, r *http.Request) {
	res := sc.reloadContent(r)
	if res.Status == StatusOK {
		res = sc.reloadUsers(r)
	}
	writeJSON(w, http.StatusOK, res)
}

func (sc *SyncController) ReloadReplies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sc.reloadContent(r))
}

func (sc *SyncController) ReloadUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sc.reloadUsers(r))
}
