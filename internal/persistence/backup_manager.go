package persistence

import (
	"admission/internal/models"
	"admission/internal/persistence/interfaces"
	"admission/internal/providers"
	"admission/internal/structures"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	backupPrefix     = "users_"
	backupExt        = ".csv"
	backupNameLayout = "2006.01.02-15.04.05"
)

// legacy backups stored the timestamp column as a Python datetime string
var backupTimeLayouts = []string{models.SheetTimeLayout, "2006-01-02 15:04:05.999999", time.RFC3339}

var backupHeader = []string{"timestamp", "user_id", "platform", "username", "first_name", "last_name", "city", "phone_number", "email"}

type BackupManager struct {
	dir     string
	mirror  interfaces.MirrorInterface
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	now     func() time.Time
}

func NewBackupManager(conf *structures.Config, mirror interfaces.MirrorInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) interfaces.BackupInterface {
	return &BackupManager{
		dir:     conf.Backup.Dir,
		mirror:  mirror,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

func BackupFileName(ts time.Time) string {
	return backupPrefix + ts.Format(backupNameLayout) + backupExt
}

// parseBackupFileName extracts the embedded timestamp of users_<ts>.csv.
func parseBackupFileName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupExt) {
		return time.Time{}, false
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(name, backupPrefix), backupExt)
	ts, err := time.ParseInLocation(backupNameLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func encodeUsers(users []models.UserRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(backupHeader); err != nil {
		return nil, err
	}
	for _, u := range users {
		err := w.Write([]string{
			u.Timestamp.Format(models.SheetTimeLayout),
			strconv.FormatInt(u.UserID, 10),
			string(u.Platform),
			u.Username,
			u.FirstName,
			u.LastName,
			u.City,
			u.PhoneNumber,
			u.Email,
		})
		if err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// Backup writes every user record into a new timestamped CSV file and returns its path.
func (b *BackupManager) Backup(ctx context.Context, src interfaces.UserSource) (string, error) {
	if b.dir == "" {
		b.logger.Warnf(providers.TypeSync, "Backup event triggered, but backup dir is not set")
		return "", nil
	}
	b.logger.Infof(providers.TypeSync, "Backup event triggered; creating a backup CSV file")

	users := src.Users()
	sort.Slice(users, func(i, j int) bool {
		return users[i].Key().String() < users[j].Key().String()
	})

	data, err := encodeUsers(users)
	if err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}

	name := BackupFileName(b.now())
	path := filepath.Join(b.dir, name)
	if err := writeFileAtomic(path, data); err != nil {
		return "", fmt.Errorf("write backup %s: %w", path, err)
	}
	b.metrics.IncBackups()
	b.logger.Infof(providers.TypeSync, "Backup file created: %s (%d users)", path, len(users))

	if err := b.mirror.Upload(ctx, name, data); err != nil {
		b.logger.Errorf(providers.TypeSync, "Backup mirror upload of %s failed: %s", name, err)
	}
	return path, nil
}

func (b *BackupManager) latest() (string, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	var (
		latestName string
		latestTime time.Time
	)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ts, ok := parseBackupFileName(e.Name())
		if !ok {
			continue
		}
		if latestName == "" || ts.After(latestTime) {
			latestName, latestTime = e.Name(), ts
		}
	}
	return latestName, nil
}

func parseBackupRow(row []string) (models.UserRecord, error) {
	if len(row) < len(backupHeader) {
		return models.UserRecord{}, fmt.Errorf("short row with %d columns: %w", len(row), models.ErrValidation)
	}
	id, err := strconv.ParseInt(row[1], 10, 64)
	if err != nil {
		return models.UserRecord{}, fmt.Errorf("user id %q: %w", row[1], models.ErrValidation)
	}
	platform := models.Platform(row[2])
	if !platform.Valid() {
		return models.UserRecord{}, fmt.Errorf("platform %q: %w", row[2], models.ErrValidation)
	}

	var ts time.Time
	for _, layout := range backupTimeLayouts {
		if ts, err = time.ParseInLocation(layout, row[0], time.Local); err == nil {
			break
		}
	}

	return models.UserRecord{
		Timestamp:   ts,
		UserID:      id,
		Platform:    platform,
		Username:    row[3],
		FirstName:   row[4],
		LastName:    row[5],
		City:        row[6],
		PhoneNumber: row[7],
		Email:       row[8],
	}, nil
}

// Restore replays the latest backup file through sink with upsert semantics
// and returns the restored file path.
func (b *BackupManager) Restore(ctx context.Context, sink interfaces.UserSink) (string, error) {
	if b.dir == "" {
		b.logger.Warnf(providers.TypeSync, "Restore event triggered, but backup dir is not set")
		return "", nil
	}
	b.logger.Infof(providers.TypeSync, "Restore event triggered; restoring the latest backup file")

	name, err := b.latest()
	if err != nil {
		return "", fmt.Errorf("list backups: %w", err)
	}
	if name == "" {
		b.logger.Warnf(providers.TypeSync, "No backup files found in %s", b.dir)
		return "", nil
	}

	path := filepath.Join(b.dir, name)
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return path, nil
		}
		return "", fmt.Errorf("read backup header: %w", err)
	}

	var restored, failed int
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read backup %s: %w", path, err)
		}
		record, err := parseBackupRow(row)
		if err == nil {
			err = sink.UpdateUser(ctx, record, false)
		}
		if err != nil {
			failed++
			b.logger.Errorf(providers.TypeSync, "Restore of row %v failed: %s", row, err)
			continue
		}
		restored++
	}

	b.logger.Infof(providers.TypeSync, "Backup file restored: %s (%d users, %d failed)", path, restored, failed)
	if failed > 0 {
		return path, fmt.Errorf("restore %s: %d of %d rows failed", name, failed, restored+failed)
	}
	return path, nil
}
