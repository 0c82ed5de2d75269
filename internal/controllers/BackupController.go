package controllers

import (
	"admission/internal/checks"
	"admission/internal/providers"
	"admission/internal/services"
	"errors"
	"net/http"
)

var errBadToken = errors.New("bad admin token")

type BackupController struct {
	logger   providers.Logger
	registry services.RegistryServiceInterface
	checks   checks.ChecksInterface
}

type tokenRequest struct {
	Token string `json:"token"`
}

type backupResponse struct {
	Status int    `json:"status"`
	File   string `json:"file"`
	Error  string `json:"error,omitempty"`
}

func NewBackupController(logger providers.Logger, registry services.RegistryServiceInterface, checks checks.ChecksInterface) *BackupController {
	return &BackupController{
		logger:   logger,
		registry: registry,
		checks:   checks,
	}
}

func (bc *BackupController) authorize(w http.ResponseWriter, r *http.Request) bool {
	var req tokenRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, StatusFailed, err)
		return false
	}
	if !bc.checks.AdminToken(req.Token) {
		bc.logger.Warnf(providers.TypePost, "Backup request with a bad token from %s", r.RemoteAddr)
		writeError(w, http.StatusForbidden, StatusFailed, errBadToken)
		return false
	}
	return true
}

func (bc *BackupController) respond(w http.ResponseWriter, file string, err error) {
	if err != nil {
		writeJSON(w, http.StatusOK, backupResponse{Status: StatusFailed, File: file, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, backupResponse{Status: StatusOK, File: file})
}

func (bc *BackupController) Backup(w http.ResponseWriter, r *http.Request) {
	if !bc.authorize(w, r) {
		return
	}
	file, err := bc.registry.TriggerBackup(r.Context())
	bc.respond(w, file, err)
}

func (bc *BackupController) Restore(w http.ResponseWriter, r *http.Request) {
	if !bc.authorize(w, r) {
		return
	}
	file, err := bc.registry.RestoreBackup(r.Context())
	bc.respond(w, file, err)
}
