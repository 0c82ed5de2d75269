package interfaces

import (
	"admission/internal/models"
	"context"
)

type CompressorInterface interface {
	Compress(val []byte) ([]byte, error)
	Decompress(val []byte) ([]byte, error)
	Close()
}

// SnapshotInterface keeps the last fetched content rows on disk.
type SnapshotInterface interface {
	Save(rows [][]string) error
	Load() ([][]string, error)
}

// UserSource is anything that can list the user records to back up.
type UserSource interface {
	Users() []models.UserRecord
}

// UserSink receives restored user records with upsert semantics.
type UserSink interface {
	UpdateUser(ctx context.Context, record models.UserRecord, strict bool) error
}

type BackupInterface interface {
	Backup(ctx context.Context, src UserSource) (string, error)
	Restore(ctx context.Context, sink UserSink) (string, error)
}

// MirrorInterface receives a copy of every written backup file.
type MirrorInterface interface {
	Upload(ctx context.Context, name string, data []byte) error
}
