package internal

import (
	"admission/internal/checks"
	"admission/internal/controllers"
	"admission/internal/providers"
	"admission/internal/services"
	"admission/internal/structures"
	"admission/internal/testutil"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routeFixture struct {
	conf    *structures.Config
	logger  *testutil.MockLogger
	metrics *testutil.MockMetrics
	router  providers.RouterProviderInterface
	health  *controllers.HealthController
}

func newRouteFixture(t *testing.T) *routeFixture {
	t.Helper()
	conf := &structures.Config{
		Spreadsheet: structures.SpreadsheetConfig{Cooldown: time.Millisecond, RequestTimeout: time.Second},
		Security:    structures.SecurityConfig{AdminToken: "token"},
		Telemetry:   structures.TelemetryConfig{Timezone: "UTC"},
	}
	book, mb := testutil.NewMockWorkbook()
	rows := [][]string{{"Path", "Text", "Reply"}}
	for i := 0; i < 20; i++ {
		rows = append(rows, []string{fmt.Sprint(i), fmt.Sprintf("Faculty of applied sciences, program %d", i), ""})
	}
	mb.Content.Rows = rows

	f := &routeFixture{conf: conf, logger: &testutil.MockLogger{}, metrics: &testutil.MockMetrics{}}
	content := services.NewContentService(conf, book, &testutil.MockSnapshot{}, f.logger, f.metrics)
	registry := services.NewRegistry(conf, book, &testutil.MockBackup{}, f.logger, f.metrics)
	telemetry := services.NewTelemetryService(conf, book, content, registry, f.logger, f.metrics)
	require.NoError(t, content.Fetch(context.Background()))

	chk := checks.NewChecks(conf)
	f.router = InitRoutes(
		controllers.NewContentController(f.logger, content, testutil.NewMockCache()),
		controllers.NewSyncController(f.logger, content, registry),
		controllers.NewCheckController(),
		controllers.NewUserController(f.logger, registry, chk),
		controllers.NewAdminController(f.logger, registry, chk),
		controllers.NewTelemetryController(f.logger, telemetry),
		controllers.NewBackupController(f.logger, registry, chk),
	)
	f.health = controllers.NewHealthController(content, registry, telemetry)
	return f
}

func (f *routeFixture) handler(t *testing.T) http.Handler {
	t.Helper()
	h, err := NewHandler(f.conf, f.logger, f.router, f.metrics, f.health)
	require.NoError(t, err)
	return h
}

func TestInitRoutes_RegistersApiSurface(t *testing.T) {
	f := newRouteFixture(t)
	routes := f.router.GetRoutes()

	require.Len(t, routes, 31)

	seen := make(map[string]bool, len(routes))
	for _, r := range routes {
		key := r.Method + " " + r.Url
		assert.False(t, seen[key], "duplicate route %s", key)
		seen[key] = true
	}

	for _, key := range []string{
		"GET /all",
		"GET /btns/{path}",
		"POST /telemetry",
		"POST /user/register",
		"PUT /user/update/partial",
		"DELETE /user/{platform}/{id}",
		"POST /admin/enroll",
		"POST /backup/restore",
	} {
		assert.True(t, seen[key], key)
	}
}

func TestNewHandler_ServesRoutes(t *testing.T) {
	f := newRouteFixture(t)
	h := f.handler(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"pong"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/btns/3", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, f.metrics.Requests["/btns/{path}"])
}

func TestNewHandler_MethodNotAllowed(t *testing.T) {
	h := newRouteFixture(t).handler(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/all", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/telemetry", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestNewHandler_Health(t *testing.T) {
	f := newRouteFixture(t)
	h := f.handler(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	// infrastructure endpoints bypass request metrics
	assert.Equal(t, 0, f.metrics.Requests["/health"])
}

func TestNewHandler_MetricsEndpoint(t *testing.T) {
	f := newRouteFixture(t)

	rr := httptest.NewRecorder()
	f.handler(t).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	f.conf.Metrics.Enabled = true
	rr = httptest.NewRecorder()
	f.handler(t).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestNewHandler_GzipLargeResponses(t *testing.T) {
	h := newRouteFixture(t).handler(t)

	req := httptest.NewRequest(http.MethodGet, "/all", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Content-Encoding"))
	assert.True(t, strings.Contains(rr.Body.String(), "pong"))
}
