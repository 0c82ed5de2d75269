package controllers

import (
	"admission/internal/checks"
	"admission/internal/models"
	"admission/internal/services"
	"admission/internal/structures"
	"admission/internal/testutil"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

const testAdminToken = "s3cret"

type testEnv struct {
	book      *testutil.MockWorkbook
	cache     *testutil.MockCache
	backup    *testutil.MockBackup
	logger    *testutil.MockLogger
	content   services.ContentServiceInterface
	registry  services.RegistryServiceInterface
	telemetry services.TelemetryServiceInterface
	router    chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conf := &structures.Config{
		Spreadsheet: structures.SpreadsheetConfig{Cooldown: time.Millisecond, RequestTimeout: time.Second},
		Security:    structures.SecurityConfig{AdminToken: testAdminToken},
		Telemetry:   structures.TelemetryConfig{Timezone: "UTC"},
	}
	book, mb := testutil.NewMockWorkbook()
	mb.Content.Rows = [][]string{
		{"Path", "Text", "Reply"},
		{"1", "Menu A", ""},
		{"1.0", "Option 1", ""},
		{"1.0.1", "Free text prompt", "y"},
		{"1.1", "Option 2", ""},
		{"2", "Menu B", ""},
	}

	e := &testEnv{
		book:   mb,
		cache:  testutil.NewMockCache(),
		backup: &testutil.MockBackup{},
		logger: &testutil.MockLogger{},
	}
	metrics := &testutil.MockMetrics{}
	e.content = services.NewContentService(conf, book, &testutil.MockSnapshot{}, e.logger, metrics)
	e.registry = services.NewRegistry(conf, book, e.backup, e.logger, metrics)
	e.telemetry = services.NewTelemetryService(conf, book, e.content, e.registry, e.logger, metrics)

	ctx := context.Background()
	require.NoError(t, e.content.Fetch(ctx))
	require.NoError(t, e.registry.FetchUsers(ctx))
	require.NoError(t, e.registry.FetchAdmins(ctx))

	chk := checks.NewChecks(conf)
	cc := NewContentController(e.logger, e.content, e.cache)
	sc := NewSyncController(e.logger, e.content, e.registry)
	ck := NewCheckController()
	uc := NewUserController(e.logger, e.registry, chk)
	ac := NewAdminController(e.logger, e.registry, chk)
	tc := NewTelemetryController(e.logger, e.telemetry)
	bc := NewBackupController(e.logger, e.registry, chk)
	hc := NewHealthController(e.content, e.registry, e.telemetry)

	r := chi.NewRouter()
	r.Get("/", cc.Index)
	r.Get("/ping", cc.Ping)
	r.Get("/health", hc.Health)
	r.Get("/reload", sc.Reload)
	r.Get("/reload/repls", sc.ReloadReplies)
	r.Get("/reload/users", sc.ReloadUsers)
	r.Get("/all", cc.All)
	r.Get("/all/btns", cc.AllButtons)
	r.Get("/all/repls", cc.AllReplies)
	r.Get("/btns/{path}", cc.Buttons)
	r.Get("/repls/{path}", cc.Replies)
	r.Get("/count/all/btns", cc.CountButtons)
	r.Get("/count/all/repls", cc.CountReplies)
	r.Get("/raw", cc.Raw)
	r.Post("/telemetry", tc.Receive)
	r.Get("/check/email", ck.Email)
	r.Get("/check/phone_number", ck.PhoneNumber)
	r.Get("/check/city", ck.City)
	r.Get("/users", uc.Users)
	r.Get("/users/all/{platform}", uc.UsersByPlatform)
	r.Get("/users/ids/{platform}", uc.UserIDsByPlatform)
	r.Post("/user/register", uc.Register)
	r.Put("/user/update", uc.Update)
	r.Put("/user/update/partial", uc.UpdatePartial)
	r.Get("/user/exists/{platform}/{id}", uc.Exists)
	r.Get("/user/{platform}/{id}", uc.Get)
	r.Delete("/user/{platform}/{id}", uc.Delete)
	r.Get("/admins/{platform}", ac.Admins)
	r.Post("/admin/enroll", ac.Enroll)
	r.Delete("/admin/{platform}/{id}", ac.Delete)
	r.Post("/backup", bc.Backup)
	r.Post("/backup/restore", bc.Restore)
	e.router = r
	return e
}

func (e *testEnv) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) addUser(t *testing.T, rec models.UserRecord) {
	t.Helper()
	require.NoError(t, e.registry.AddUser(context.Background(), rec))
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	return v
}
