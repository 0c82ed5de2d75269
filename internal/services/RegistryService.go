package services

import (
	"admission/internal/models"
	"admission/internal/persistence/interfaces"
	"admission/internal/providers"
	"admission/internal/sheets"
	"admission/internal/structures"
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/atomic"
)

type RegistryServiceInterface interface {
	FetchUsers(ctx context.Context) error
	FetchAdmins(ctx context.Context) error

	AddUser(ctx context.Context, record models.UserRecord) error
	UpdateUser(ctx context.Context, record models.UserRecord, strict bool) error
	UpdateUserPartial(ctx context.Context, patch models.UserPatch) error
	DeleteUser(ctx context.Context, key models.UserKey) error
	GetUser(key models.UserKey) (models.UserRecord, bool)
	IsUser(key models.UserKey) bool
	GetUsers() map[string]models.UserRecord
	GetUsersByPlatform(platform models.Platform) map[int64]models.UserRecord
	GetUserIDsByPlatform(platform models.Platform) []int64
	Users() []models.UserRecord
	UserCount() int

	AddAdmin(ctx context.Context, key models.UserKey) error
	DeleteAdmin(ctx context.Context, key models.UserKey) error
	GetAdmins(platform models.Platform) []int64
	IsAdmin(key models.UserKey) bool

	RemoteUsersAbsent(ctx context.Context) ([]models.UserKey, error)
	TriggerBackup(ctx context.Context) (string, error)
	RestoreBackup(ctx context.Context) (string, error)
}

// Registry caches the users and admins worksheets. Every mutation writes the
// worksheet first and touches the cache only after the remote call succeeded.
type Registry struct {
	conf    *structures.Config
	book    *sheets.Workbook
	backup  interfaces.BackupInterface
	logger  providers.Logger
	metrics providers.MetricsProviderInterface

	// opMu serializes mutations across their remote calls; mu guards the maps.
	opMu   sync.Mutex
	mu     sync.RWMutex
	users  map[models.UserKey]models.UserRecord
	admins map[models.UserKey]models.AdminRecord
	now    func() time.Time

	// restoring is non-zero while a backup is replayed; failures then must not
	// write a fresh backup that would shadow the file being restored.
	restoring atomic.Int32
}

func NewRegistry(conf *structures.Config, book *sheets.Workbook, backup interfaces.BackupInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) RegistryServiceInterface {
	return &Registry{
		conf:    conf,
		book:    book,
		backup:  backup,
		logger:  logger,
		metrics: metrics,
		users:   make(map[models.UserKey]models.UserRecord),
		admins:  make(map[models.UserKey]models.AdminRecord),
		now:     time.Now,
	}
}

func (r *Registry) remote(ctx context.Context, call func(ctx context.Context) error) error {
	ctx, cancel := withTimeout(ctx, r.conf.Spreadsheet.RequestTimeout)
	defer cancel()
	return call(ctx)
}

func (r *Registry) readRows(ctx context.Context, ws sheets.Worksheet) ([][]string, error) {
	var rows [][]string
	err := r.remote(ctx, func(ctx context.Context) error {
		var err error
		rows, err = ws.GetAllValues(ctx)
		return err
	})
	return rows, err
}

func (r *Registry) remoteFailure(ctx context.Context, op string, err error) {
	r.logger.Errorf(providers.TypeSync, "Remote %s failed: %s", op, err)
	r.metrics.IncRemoteErrors(op)
	if r.restoring.Load() > 0 {
		r.logger.Warnf(providers.TypeSync, "Backup after failed %s skipped: restore in progress", op)
		return
	}
	if _, berr := r.TriggerBackup(ctx); berr != nil {
		r.logger.Errorf(providers.TypeSync, "Backup after failed %s: %s", op, berr)
	}
}

func (r *Registry) drift(ctx context.Context, what string, key models.UserKey) {
	r.logger.Warnf(providers.TypeSync, "Integrity drift: %s %s is cached but absent from the worksheet", what, key)
	if r.restoring.Load() > 0 {
		return
	}
	if _, err := r.TriggerBackup(ctx); err != nil {
		r.logger.Errorf(providers.TypeSync, "Backup after integrity drift: %s", err)
	}
}

// findRow returns the 0-based index of the first row matching idCol/platCol.
func findRow(rows [][]string, idCol, platCol int, key models.UserKey) int {
	id := strconv.FormatInt(key.UserID, 10)
	long := key.Platform.LongName()
	for i, row := range rows {
		if idCol < len(row) && platCol < len(row) && row[idCol] == id && row[platCol] == long {
			return i
		}
	}
	return -1
}

func (r *Registry) updateGauges() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := map[models.Platform]int{models.PlatformTelegram: 0, models.PlatformVK: 0}
	admins := map[models.Platform]int{models.PlatformTelegram: 0, models.PlatformVK: 0}
	for k := range r.users {
		users[k.Platform]++
	}
	for k := range r.admins {
		admins[k.Platform]++
	}
	for p, n := range users {
		r.metrics.SetRecordsTotal("users", string(p), n)
	}
	for p, n := range admins {
		r.metrics.SetRecordsTotal("admins", string(p), n)
	}
}

func (r *Registry) FetchUsers(ctx context.Context) error {
	var rows [][]string
	err := r.remote(ctx, func(ctx context.Context) error {
		var err error
		rows, err = sheets.EnsureHeader(ctx, r.book.Users, models.UsersHeader)
		return err
	})
	if err != nil {
		r.metrics.IncRemoteErrors("users_fetch")
		return fmt.Errorf("fetch users: %w", err)
	}

	users := r.parseUsers(rows)
	r.mu.Lock()
	r.users = users
	r.mu.Unlock()
	r.updateGauges()
	r.logger.Infof(providers.TypeSync, "Users fetched: %d", len(users))
	return nil
}

func (r *Registry) parseUsers(rows [][]string) map[models.UserKey]models.UserRecord {
	users := make(map[models.UserKey]models.UserRecord, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue
		}
		u, err := models.UserFromSheetRow(row)
		if err != nil {
			r.logger.Warnf(providers.TypeSync, "Skipping users row %d: %s", i+1, err)
			continue
		}
		users[u.Key()] = u
	}
	return users
}

func (r *Registry) FetchAdmins(ctx context.Context) error {
	var rows [][]string
	err := r.remote(ctx, func(ctx context.Context) error {
		var err error
		rows, err = sheets.EnsureHeader(ctx, r.book.Admins, models.AdminsHeader)
		return err
	})
	if err != nil {
		r.metrics.IncRemoteErrors("admins_fetch")
		return fmt.Errorf("fetch admins: %w", err)
	}

	admins := make(map[models.UserKey]models.AdminRecord, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue
		}
		a, err := models.AdminFromSheetRow(row)
		if err != nil {
			r.logger.Warnf(providers.TypeSync, "Skipping admins row %d: %s", i+1, err)
			continue
		}
		admins[a.Key()] = a
	}

	r.mu.Lock()
	r.admins = admins
	r.mu.Unlock()
	r.updateGauges()
	r.logger.Infof(providers.TypeSync, "Admins fetched: %d", len(admins))
	return nil
}

func (r *Registry) AddUser(ctx context.Context, record models.UserRecord) error {
	r.opMu.Lock()
	defer r.opMu.Unlock()
	return r.addUser(ctx, record)
}

func (r *Registry) addUser(ctx context.Context, record models.UserRecord) error {
	key := record.Key()
	if r.IsUser(key) {
		return fmt.Errorf("user %s: %w", key, models.ErrAlreadyExists)
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = r.now()
	}

	err := r.remote(ctx, func(ctx context.Context) error {
		return r.book.Users.AppendRow(ctx, record.SheetRow())
	})
	if err != nil {
		r.remoteFailure(ctx, "users_append", err)
		return err
	}

	r.mu.Lock()
	r.users[key] = record
	r.mu.Unlock()
	r.updateGauges()
	return nil
}

// UpdateUser rewrites the worksheet row of a cached user. An unknown user is
// added instead unless strict is set.
func (r *Registry) UpdateUser(ctx context.Context, record models.UserRecord, strict bool) error {
	r.opMu.Lock()
	defer r.opMu.Unlock()
	return r.updateUser(ctx, record, strict)
}

func (r *Registry) updateUser(ctx context.Context, record models.UserRecord, strict bool) error {
	key := record.Key()
	existing, cached := r.GetUser(key)
	if !cached {
		if strict {
			return fmt.Errorf("user %s: %w", key, models.ErrNotFound)
		}
		return r.addUser(ctx, record)
	}
	record.Timestamp = existing.Timestamp

	rows, err := r.readRows(ctx, r.book.Users)
	if err != nil {
		r.remoteFailure(ctx, "users_read", err)
		return err
	}

	idx := findRow(rows, 1, 2, key)
	if idx < 0 {
		r.drift(ctx, "user", key)
		if strict {
			return fmt.Errorf("user %s row: %w", key, models.ErrNotFound)
		}
		r.mu.Lock()
		r.users[key] = record
		r.mu.Unlock()
		return fmt.Errorf("user %s row missing: %w", key, models.ErrAlreadyExists)
	}

	err = r.remote(ctx, func(ctx context.Context) error {
		return r.book.Users.UpdateRow(ctx, idx+1, "B", record.SheetUpdate())
	})
	if err != nil {
		r.remoteFailure(ctx, "users_update", err)
		return err
	}

	r.mu.Lock()
	r.users[key] = record
	r.mu.Unlock()
	return nil
}

// UpdateUserPartial overlays the fields present in patch onto the cached record.
func (r *Registry) UpdateUserPartial(ctx context.Context, patch models.UserPatch) error {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	record := patch.Record()
	if existing, ok := r.GetUser(patch.Key()); ok {
		record = existing.Merge(patch)
	}
	return r.updateUser(ctx, record, false)
}

func (r *Registry) DeleteUser(ctx context.Context, key models.UserKey) error {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	if !r.IsUser(key) {
		return fmt.Errorf("user %s: %w", key, models.ErrNotFound)
	}

	rows, err := r.readRows(ctx, r.book.Users)
	if err != nil {
		r.remoteFailure(ctx, "users_read", err)
		return err
	}

	if idx := findRow(rows, 1, 2, key); idx < 0 {
		r.drift(ctx, "user", key)
	} else {
		err = r.remote(ctx, func(ctx context.Context) error {
			return r.book.Users.DeleteRow(ctx, idx+1)
		})
		if err != nil {
			r.remoteFailure(ctx, "users_delete", err)
			return err
		}
	}

	r.mu.Lock()
	delete(r.users, key)
	r.mu.Unlock()
	r.updateGauges()
	return nil
}

func (r *Registry) GetUser(key models.UserKey) (models.UserRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[key]
	return u, ok
}

func (r *Registry) IsUser(key models.UserKey) bool {
	_, ok := r.GetUser(key)
	return ok
}

func (r *Registry) GetUsers() map[string]models.UserRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]models.UserRecord, len(r.users))
	for k, u := range r.users {
		out[k.String()] = u
	}
	return out
}

func (r *Registry) GetUsersByPlatform(platform models.Platform) map[int64]models.UserRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[int64]models.UserRecord)
	for k, u := range r.users {
		if k.Platform == platform {
			out[k.UserID] = u
		}
	}
	return out
}

func (r *Registry) GetUserIDsByPlatform(platform models.Platform) []int64 {
	r.mu.RLock()
	ids := make([]int64, 0, len(r.users))
	for k := range r.users {
		if k.Platform == platform {
			ids = append(ids, k.UserID)
		}
	}
	r.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Users returns a copy of every cached user record.
func (r *Registry) Users() []models.UserRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.UserRecord, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out
}

func (r *Registry) UserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

func (r *Registry) AddAdmin(ctx context.Context, key models.UserKey) error {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	if r.IsAdmin(key) {
		return fmt.Errorf("admin %s: %w", key, models.ErrAlreadyExists)
	}
	admin := models.AdminRecord{Platform: key.Platform, UserID: key.UserID, Timestamp: r.now()}

	err := r.remote(ctx, func(ctx context.Context) error {
		return r.book.Admins.AppendRow(ctx, admin.SheetRow())
	})
	if err != nil {
		r.remoteFailure(ctx, "admins_append", err)
		return err
	}

	r.mu.Lock()
	r.admins[key] = admin
	r.mu.Unlock()
	r.updateGauges()
	return nil
}

func (r *Registry) DeleteAdmin(ctx context.Context, key models.UserKey) error {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	if !r.IsAdmin(key) {
		return fmt.Errorf("admin %s: %w", key, models.ErrNotFound)
	}

	rows, err := r.readRows(ctx, r.book.Admins)
	if err != nil {
		r.remoteFailure(ctx, "admins_read", err)
		return err
	}

	if idx := findRow(rows, 0, 1, key); idx < 0 {
		r.drift(ctx, "admin", key)
	} else {
		err = r.remote(ctx, func(ctx context.Context) error {
			return r.book.Admins.DeleteRow(ctx, idx+1)
		})
		if err != nil {
			r.remoteFailure(ctx, "admins_delete", err)
			return err
		}
	}

	r.mu.Lock()
	delete(r.admins, key)
	r.mu.Unlock()
	r.updateGauges()
	return nil
}

func (r *Registry) GetAdmins(platform models.Platform) []int64 {
	r.mu.RLock()
	ids := make([]int64, 0, len(r.admins))
	for k := range r.admins {
		if k.Platform == platform {
			ids = append(ids, k.UserID)
		}
	}
	r.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *Registry) IsAdmin(key models.UserKey) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.admins[key]
	return ok
}

// RemoteUsersAbsent compares the cache with a fresh read of the users
// worksheet and returns the cached keys the worksheet no longer has.
func (r *Registry) RemoteUsersAbsent(ctx context.Context) ([]models.UserKey, error) {
	rows, err := r.readRows(ctx, r.book.Users)
	if err != nil {
		r.metrics.IncRemoteErrors("users_read")
		return nil, fmt.Errorf("integrity check: %w", err)
	}
	remote := r.parseUsers(rows)

	r.mu.RLock()
	var absent []models.UserKey
	for k := range r.users {
		if _, ok := remote[k]; !ok {
			absent = append(absent, k)
		}
	}
	r.mu.RUnlock()

	if len(absent) == 0 {
		r.logger.Debugf(providers.TypeSync, "All users are present in the worksheet")
		return nil, nil
	}
	sort.Slice(absent, func(i, j int) bool { return absent[i].String() < absent[j].String() })
	r.logger.Warnf(providers.TypeSync, "%d users are not present in the worksheet", len(absent))
	if _, err := r.TriggerBackup(ctx); err != nil {
		r.logger.Errorf(providers.TypeSync, "Backup after integrity check: %s", err)
	}
	return absent, nil
}

func (r *Registry) TriggerBackup(ctx context.Context) (string, error) {
	return r.backup.Backup(ctx, r)
}

// RestoreBackup replays the latest backup file through UpdateUser.
// Failed rows do not trigger backups meanwhile, so the file stays the latest
// one and the restore can be repeated once the worksheet is reachable.
func (r *Registry) RestoreBackup(ctx context.Context) (string, error) {
	r.restoring.Inc()
	defer r.restoring.Dec()
	return r.backup.Restore(ctx, r)
}
