package controllers

import (
	"admission/internal/checks"
	"net/http"
)

type CheckController struct{}

type checkResponse struct {
	Status  int  `json:"status"`
	IsValid bool `json:"is_valid"`
}

func NewCheckController() *CheckController {
	return &CheckController{}
}

func (cc *CheckController) respond(w http.ResponseWriter, valid bool) {
	writeJSON(w, http.StatusOK, checkResponse{Status: StatusOK, IsValid: valid})
}

func (cc *CheckController) Email(w http.ResponseWriter, r *http.Request) {
	cc.respond(w, checks.Email(r.URL.Query().Get("email")))
}

// PhoneNumber also accepts the legacy "phone" query parameter.
func (cc *CheckController) PhoneNumber(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	phone := q.Get("phone_number")
	if !q.Has("phone_number") {
		phone = q.Get("phone")
	}
	cc.respond(w, checks.PhoneNumber(phone))
}

func (cc *CheckController) City(w http.ResponseWriter, r *http.Request) {
	cc.respond(w, checks.City(r.URL.Query().Get("city")))
}
