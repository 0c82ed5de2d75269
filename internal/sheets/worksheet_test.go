package sheets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type memWorksheet struct {
	rows    [][]string
	getErr  error
	appends int
}

func (m *memWorksheet) Title() string { return "mem" }
func (m *memWorksheet) GetAllValues(_ context.Context) ([][]string, error) {
	return m.rows, m.getErr
}
func (m *memWorksheet) AppendRow(_ context.Context, row []string) error {
	m.appends++
	m.rows = append(m.rows, row)
	return nil
}
func (m *memWorksheet) UpdateRow(_ context.Context, _ int, _ string, _ []string) error { return nil }
func (m *memWorksheet) DeleteRow(_ context.Context, _ int) error                      { return nil }

func TestEnsureHeader_WritesHeaderOnEmptySheet(t *testing.T) {
	ws := &memWorksheet{}
	rows, err := EnsureHeader(context.Background(), ws, []string{"A", "B"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A", "B"}}, rows)
	assert.Equal(t, 1, ws.appends)
}

func TestEnsureHeader_KeepsExistingRows(t *testing.T) {
	ws := &memWorksheet{rows: [][]string{{"X"}, {"1"}}}
	rows, err := EnsureHeader(context.Background(), ws, []string{"A"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, 0, ws.appends)
}

func TestEnsureHeader_PropagatesError(t *testing.T) {
	ws := &memWorksheet{getErr: errors.New("boom")}
	_, err := EnsureHeader(context.Background(), ws, []string{"A"})
	assert.Error(t, err)
	assert.Equal(t, 0, ws.appends)
}

func TestRemoteAccessError_Transient(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"quota", &googleapi.Error{Code: http.StatusTooManyRequests}, true},
		{"server", &googleapi.Error{Code: http.StatusServiceUnavailable}, true},
		{"forbidden", &googleapi.Error{Code: http.StatusForbidden}, false},
		{"deadline", context.DeadlineExceeded, true},
		{"other", errors.New("bad range"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", &RemoteAccessError{Op: "get", Sheet: "Users", Err: tt.err})
			assert.True(t, IsRemoteAccess(err))
			assert.Equal(t, tt.transient, IsTransient(err))
		})
	}
	assert.False(t, IsRemoteAccess(errors.New("plain")))
}

func TestColumnName(t *testing.T) {
	assert.Equal(t, "A", ColumnName(1))
	assert.Equal(t, "I", ColumnName(9))
	assert.Equal(t, "Z", ColumnName(26))
	assert.Equal(t, "AA", ColumnName(27))
	assert.Equal(t, 27, columnNumber("AA"))
	assert.Equal(t, 2, columnNumber("b"))
}

func TestToStrings(t *testing.T) {
	rows := toStrings([][]interface{}{{"a", float64(5), true}, {}})
	assert.Equal(t, [][]string{{"a", "5", "true"}, {}}, rows)
}

func TestWorksheet_A1Quoting(t *testing.T) {
	w := &googleWorksheet{title: "Users' list"}
	assert.Equal(t, "'Users'' list'", w.a1(""))
	assert.Equal(t, "'Users'' list'!B3:I3", w.a1("B3:I3"))
}

func newTestWorksheet(t *testing.T, handler http.HandlerFunc) *googleWorksheet {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	srv, err := sheets.NewService(context.Background(),
		option.WithEndpoint(server.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)
	return &googleWorksheet{srv: srv, spreadsheetID: "sheet-1", sheetID: 7, title: "Content"}
}

func TestWorksheet_GetAllValues(t *testing.T) {
	ws := newTestWorksheet(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Contains(t, r.URL.Path, "/v4/spreadsheets/sheet-1/values/")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"range":"'Content'!A1:C3","values":[["path","text","reply"],["1","Menu"],["1.0","Option",""]]}`)
	})

	rows, err := ws.GetAllValues(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"path", "text", "reply"}, {"1", "Menu"}, {"1.0", "Option", ""}}, rows)
}

func TestWorksheet_AppendRow(t *testing.T) {
	var body struct {
		Values [][]string `json:"values"`
	}
	ws := newTestWorksheet(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, ":append"))
		assert.Equal(t, "RAW", r.URL.Query().Get("valueInputOption"))
		assert.Equal(t, "INSERT_ROWS", r.URL.Query().Get("insertDataOption"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{}`)
	})

	require.NoError(t, ws.AppendRow(context.Background(), []string{"a", "b"}))
	assert.Equal(t, [][]string{{"a", "b"}}, body.Values)
}

func TestWorksheet_DeleteRowSendsZeroBasedRange(t *testing.T) {
	var body struct {
		Requests []struct {
			DeleteDimension struct {
				Range struct {
					SheetID    int64  `json:"sheetId"`
					Dimension  string `json:"dimension"`
					StartIndex int64  `json:"startIndex"`
					EndIndex   int64  `json:"endIndex"`
				} `json:"range"`
			} `json:"deleteDimension"`
		} `json:"requests"`
	}
	ws := newTestWorksheet(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, ":batchUpdate"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{}`)
	})

	require.NoError(t, ws.DeleteRow(context.Background(), 3))
	require.Len(t, body.Requests, 1)
	rng := body.Requests[0].DeleteDimension.Range
	assert.Equal(t, int64(7), rng.SheetID)
	assert.Equal(t, "ROWS", rng.Dimension)
	assert.Equal(t, int64(2), rng.StartIndex)
	assert.Equal(t, int64(3), rng.EndIndex)
}

func TestWorksheet_ErrorsAreRemoteAccess(t *testing.T) {
	ws := newTestWorksheet(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":403,"message":"forbidden"}}`)
	})

	_, err := ws.GetAllValues(context.Background())
	require.Error(t, err)
	assert.True(t, IsRemoteAccess(err))
	assert.False(t, IsTransient(err))

	var gerr *googleapi.Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, http.StatusForbidden, gerr.Code)
}
