package testutil

import (
	"admission/internal/models"
	"admission/internal/persistence/interfaces"
	"admission/internal/providers"
	"admission/internal/sheets"
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"google.golang.org/api/googleapi"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level whose format contains substr.
func (m *MockLogger) Count(level, substr string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level && strings.Contains(e.Format, substr) {
			n++
		}
	}
	return n
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu           sync.Mutex
	Requests     map[string]int
	CacheHits    int
	CacheMisses  int
	SyncJobs     map[string]int
	RemoteErrors map[string]int
	Backups      int
	Flushed      int
	Dropped      int
	Buffered     int
	Records      map[string]int
}

func (m *MockMetrics) init() {
	if m.Requests == nil {
		m.Requests = make(map[string]int)
		m.SyncJobs = make(map[string]int)
		m.RemoteErrors = make(map[string]int)
		m.Records = make(map[string]int)
	}
}

func (m *MockMetrics) IncRequestsTotal(endpoint string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	m.Requests[endpoint]++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) ObserveSyncDuration(job string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	m.SyncJobs[job]++
}

func (m *MockMetrics) IncRemoteErrors(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	m.RemoteErrors[op]++
}

func (m *MockMetrics) IncBackups() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Backups++
}

func (m *MockMetrics) AddTelemetryFlushed(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Flushed += count
}

func (m *MockMetrics) AddTelemetryDropped(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Dropped += count
}

func (m *MockMetrics) SetTelemetryBuffered(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Buffered = count
}

func (m *MockMetrics) SetRecordsTotal(store string, platform string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	m.Records[store+":"+platform] = count
}

// Worksheet operation names accepted by MockWorksheet.Fail.
const (
	OpGet    = "get"
	OpAppend = "append"
	OpUpdate = "update"
	OpDelete = "delete"
)

type failure struct {
	after int
	times int
	err   error
}

// MockWorksheet is an in-memory sheets.Worksheet.
type MockWorksheet struct {
	mu       sync.Mutex
	Name     string
	Rows     [][]string
	Calls    map[string]int
	failures map[string]*failure
}

func NewMockWorksheet(name string, rows ...[]string) *MockWorksheet {
	return &MockWorksheet{Name: name, Rows: rows, Calls: make(map[string]int)}
}

// Fail makes op return err after it succeeded `after` more times.
func (m *MockWorksheet) Fail(op string, after int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures == nil {
		m.failures = make(map[string]*failure)
	}
	m.failures[op] = &failure{after: after, err: err}
}

// FailTimes makes the next n calls of op return err; later calls succeed.
func (m *MockWorksheet) FailTimes(op string, n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures == nil {
		m.failures = make(map[string]*failure)
	}
	m.failures[op] = &failure{times: n, err: err}
}

// Recover removes every injected failure.
func (m *MockWorksheet) Recover() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = nil
}

func (m *MockWorksheet) call(op string) error {
	if m.Calls == nil {
		m.Calls = make(map[string]int)
	}
	m.Calls[op]++
	f, ok := m.failures[op]
	if !ok {
		return nil
	}
	if f.after > 0 {
		f.after--
		return nil
	}
	if f.times > 0 {
		f.times--
		if f.times == 0 {
			delete(m.failures, op)
		}
	}
	return &sheets.RemoteAccessError{Op: op, Sheet: m.Name, Err: f.err}
}

func (m *MockWorksheet) Title() string {
	return m.Name
}

func (m *MockWorksheet) GetAllValues(_ context.Context) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call(OpGet); err != nil {
		return nil, err
	}
	out := make([][]string, len(m.Rows))
	for i, row := range m.Rows {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

func (m *MockWorksheet) AppendRow(_ context.Context, row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call(OpAppend); err != nil {
		return err
	}
	m.Rows = append(m.Rows, append([]string(nil), row...))
	return nil
}

func (m *MockWorksheet) UpdateRow(_ context.Context, rowIndex int, fromCol string, values []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call(OpUpdate); err != nil {
		return err
	}
	if rowIndex < 1 || rowIndex > len(m.Rows) {
		return errors.New("row index out of range")
	}
	row := m.Rows[rowIndex-1]
	start := int(fromCol[0] - 'A')
	for len(row) < start+len(values) {
		row = append(row, "")
	}
	copy(row[start:], values)
	m.Rows[rowIndex-1] = row
	return nil
}

func (m *MockWorksheet) DeleteRow(_ context.Context, rowIndex int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call(OpDelete); err != nil {
		return err
	}
	if rowIndex < 1 || rowIndex > len(m.Rows) {
		return errors.New("row index out of range")
	}
	m.Rows = append(m.Rows[:rowIndex-1], m.Rows[rowIndex:]...)
	return nil
}

// Snapshot returns a copy of the current rows.
func (m *MockWorksheet) Snapshot() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, len(m.Rows))
	for i, row := range m.Rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}

// NewMockWorkbook wires four empty in-memory worksheets.
func NewMockWorkbook() (*sheets.Workbook, *MockWorkbook) {
	mb := &MockWorkbook{
		Content:   NewMockWorksheet("Content"),
		Telemetry: NewMockWorksheet("Telemetry"),
		Users:     NewMockWorksheet("Users"),
		Admins:    NewMockWorksheet("Admins"),
	}
	return &sheets.Workbook{
		Content:   mb.Content,
		Telemetry: mb.Telemetry,
		Users:     mb.Users,
		Admins:    mb.Admins,
	}, mb
}

type MockWorkbook struct {
	Content   *MockWorksheet
	Telemetry *MockWorksheet
	Users     *MockWorksheet
	Admins    *MockWorksheet
}

// TransientError is what the Sheets API returns when the quota is exhausted.
func TransientError() error {
	return &googleapi.Error{Code: 429, Message: "Quota exceeded"}
}

// PermanentError is a non-retryable Sheets API error.
func PermanentError() error {
	return &googleapi.Error{Code: 403, Message: "The caller does not have permission"}
}

// MockBackup implements interfaces.BackupInterface.
type MockBackup struct {
	mu         sync.Mutex
	Backups    int
	Restores   int
	BackupErr  error
	RestoreErr error
	Last       []models.UserRecord
}

func (m *MockBackup) Backup(_ context.Context, src interfaces.UserSource) (string, error) {
	users := src.Users()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Backups++
	m.Last = users
	if m.BackupErr != nil {
		return "", m.BackupErr
	}
	return "users_backup.csv", nil
}

func (m *MockBackup) Restore(_ context.Context, _ interfaces.UserSink) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Restores++
	if m.RestoreErr != nil {
		return "", m.RestoreErr
	}
	return "users_backup.csv", nil
}

func (m *MockBackup) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Backups
}

// MockMirror implements interfaces.MirrorInterface.
type MockMirror struct {
	mu      sync.Mutex
	Uploads map[string][]byte
	Err     error
}

func (m *MockMirror) Upload(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.Uploads == nil {
		m.Uploads = make(map[string][]byte)
	}
	m.Uploads[name] = append([]byte(nil), data...)
	return nil
}

// MockSnapshot implements interfaces.SnapshotInterface in memory.
type MockSnapshot struct {
	mu      sync.Mutex
	Rows    [][]string
	SaveErr error
	LoadErr error
	Saves   int
}

func (m *MockSnapshot) Save(rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Saves++
	m.Rows = rows
	return nil
}

func (m *MockSnapshot) Load() ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Rows, m.LoadErr
}
