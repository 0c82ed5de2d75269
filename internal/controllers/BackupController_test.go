package controllers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBackup_Trigger(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(http.MethodPost, "/backup", `{"token":"s3cret"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":0,"file":"users_backup.csv"}`, rr.Body.String())
	assert.Equal(t, 1, e.backup.Count())
}

func TestBackup_Restore(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(http.MethodPost, "/backup/restore", `{"token":"s3cret"}`)
	assert.JSONEq(t, `{"status":0,"file":"users_backup.csv"}`, rr.Body.String())
	assert.Equal(t, 1, e.backup.Restores)
}

func TestBackup_Failure(t *testing.T) {
	e := newTestEnv(t)
	e.backup.RestoreErr = errors.New("2 of 3 rows failed")

	rr := e.do(http.MethodPost, "/backup/restore", `{"token":"s3cret"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	resp := decode[backupResponse](t, rr)
	assert.Equal(t, StatusFailed, resp.Status)
	assert.Equal(t, "2 of 3 rows failed", resp.Error)
}

func TestBackup_Unauthorized(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(http.MethodPost, "/backup", `{"token":"wrong"}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = e.do(http.MethodPost, "/backup/restore", `garbage`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	assert.Equal(t, 0, e.backup.Count())
	assert.Equal(t, 0, e.backup.Restores)
}
