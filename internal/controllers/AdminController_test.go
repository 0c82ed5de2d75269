package controllers

import (
	"admission/internal/models"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmin_Enroll(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(http.MethodPost, "/admin/enroll", `{"token":"s3cret","user_id":"100","platform":"tg"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":0}`, rr.Body.String())

	rr = e.do(http.MethodPost, "/admin/enroll", `{"token":"s3cret","user_id":5,"platform":"tg"}`)
	assert.JSONEq(t, `{"status":0}`, rr.Body.String())

	assert.JSONEq(t, `[5,100]`, e.do(http.MethodGet, "/admins/tg", "").Body.String())
	assert.JSONEq(t, `[]`, e.do(http.MethodGet, "/admins/vk", "").Body.String())
	assert.Len(t, e.book.Admins.Snapshot(), 3)
}

func TestAdmin_EnrollFailures(t *testing.T) {
	e := newTestEnv(t)
	require.NoError(t, e.registry.AddAdmin(context.Background(), models.UserKey{Platform: models.PlatformVK, UserID: 7}))

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"bad token", `{"token":"nope","user_id":1,"platform":"tg"}`, enrollBadToken},
		{"missing token", `{"user_id":1,"platform":"tg"}`, enrollBadToken},
		{"bad id", `{"token":"s3cret","user_id":"abc","platform":"tg"}`, enrollFailed},
		{"hex id", `{"token":"s3cret","user_id":"0x1F","platform":"tg"}`, enrollFailed},
		{"fractional id", `{"token":"s3cret","user_id":"5.0","platform":"tg"}`, enrollFailed},
		{"negative id", `{"token":"s3cret","user_id":-3,"platform":"tg"}`, enrollFailed},
		{"missing id", `{"token":"s3cret","platform":"tg"}`, enrollFailed},
		{"bad platform", `{"token":"s3cret","user_id":1,"platform":"ok"}`, enrollFailed},
		{"already admin", `{"token":"s3cret","user_id":7,"platform":"vk"}`, enrollFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := e.do(http.MethodPost, "/admin/enroll", tt.body)
			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tt.status, decode[statusResponse](t, rr).Status)
		})
	}
	assert.Equal(t, []int64{7}, e.registry.GetAdmins(models.PlatformVK))
	assert.Empty(t, e.registry.GetAdmins(models.PlatformTelegram))
}

func TestAdmin_EnrollMalformedBody(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(http.MethodPost, "/admin/enroll", `{"token":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, enrollFailed, decode[statusResponse](t, rr).Status)
}

func TestAdmin_Delete(t *testing.T) {
	e := newTestEnv(t)
	require.NoError(t, e.registry.AddAdmin(context.Background(), models.UserKey{Platform: models.PlatformTelegram, UserID: 100}))

	assert.JSONEq(t, `{"status":0}`, e.do(http.MethodDelete, "/admin/tg/100", "").Body.String())
	assert.Empty(t, e.registry.GetAdmins(models.PlatformTelegram))
	assert.Len(t, e.book.Admins.Snapshot(), 1)

	assert.JSONEq(t, `{"status":1}`, e.do(http.MethodDelete, "/admin/tg/100", "").Body.String())
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodDelete, "/admin/tg/x", "").Code)
}
