package controllers

import (
	"admission/internal/models"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// Status codes carried in response bodies.
const (
	StatusOK         = 0
	StatusFailed     = 1
	StatusValidation = 2
)

type statusResponse struct {
	Status int    `json:"status"`
	Error  string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(gson)
}

func writeStatus(w http.ResponseWriter, status int) {
	writeJSON(w, http.StatusOK, statusResponse{Status: status})
}

func writeError(w http.ResponseWriter, code int, status int, err error) {
	writeJSON(w, code, statusResponse{Status: status, Error: err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	return json.NewDecoder(r.Body).Decode(v)
}

var errBadUserID = errors.New("user id must be an integer")

// userKey reads the {platform}/{id} URL parameters.
func userKey(r *http.Request) (models.UserKey, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return models.UserKey{}, errBadUserID
	}
	return models.UserKey{Platform: models.Platform(chi.URLParam(r, "platform")), UserID: id}, nil
}
