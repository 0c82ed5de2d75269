package services

import (
	"admission/internal/models"
	"admission/internal/persistence/interfaces"
	"admission/internal/providers"
	"admission/internal/sheets"
	"admission/internal/structures"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/atomic"
)

var ErrNoSnapshot = errors.New("no content snapshot")

type ContentServiceInterface interface {
	Fetch(ctx context.Context) error
	Restore() error
	Persist() error
	Tree() *models.Tree
	RawRows() [][]string
	Generation() int64
	LastSync() time.Time
}

// ContentService owns the content tree. Readers always see a complete tree:
// every fetch builds a new one and swaps the pointer.
type ContentService struct {
	conf     *structures.Config
	sheet    sheets.Worksheet
	snapshot interfaces.SnapshotInterface
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface

	tree       atomic.Pointer[models.Tree]
	raw        atomic.Pointer[[][]string]
	generation atomic.Int64
	lastSync   atomic.Time
}

func NewContentService(conf *structures.Config, book *sheets.Workbook, snapshot interfaces.SnapshotInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) ContentServiceInterface {
	cs := &ContentService{
		conf:     conf,
		sheet:    book.Content,
		snapshot: snapshot,
		logger:   logger,
		metrics:  metrics,
	}
	empty := [][]string{}
	cs.tree.Store(models.BuildTree(nil))
	cs.raw.Store(&empty)
	return cs
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func (cs *ContentService) backoff() retry.Backoff {
	cooldown := cs.conf.Spreadsheet.Cooldown
	if cooldown <= 0 {
		cooldown = time.Second
	}
	return retry.WithMaxRetries(cs.conf.Spreadsheet.MaxRetries, retry.NewExponential(cooldown))
}

// Fetch reads the content worksheet and rebuilds the tree. Transient remote
// errors are retried with exponential backoff up to the configured limit.
func (cs *ContentService) Fetch(ctx context.Context) error {
	start := time.Now()
	defer func() {
		cs.metrics.ObserveSyncDuration("content", time.Since(start))
	}()

	var values [][]string
	err := retry.Do(ctx, cs.backoff(), func(ctx context.Context) error {
		reqCtx, cancel := withTimeout(ctx, cs.conf.Spreadsheet.RequestTimeout)
		defer cancel()

		rows, err := cs.sheet.GetAllValues(reqCtx)
		if err != nil {
			cs.metrics.IncRemoteErrors("content_fetch")
			if sheets.IsTransient(err) {
				cs.logger.Warnf(providers.TypeSync, "Fetching content failed, retrying: %s", err)
				return retry.RetryableError(err)
			}
			return err
		}
		values = rows
		return nil
	})
	if err != nil {
		return fmt.Errorf("fetch content: %w", err)
	}

	// first row is the header
	if len(values) > 0 {
		values = values[1:]
	}
	cs.apply(values)

	if err := cs.snapshot.Save(values); err != nil {
		cs.logger.Warnf(providers.TypeSync, "Saving content snapshot failed: %s", err)
	}
	return nil
}

func (cs *ContentService) apply(rows [][]string) {
	tree := models.BuildTree(models.ParseContentRows(rows))
	cs.raw.Store(&rows)
	cs.tree.Store(tree)
	gen := cs.generation.Inc()
	cs.lastSync.Store(time.Now())
	cs.logger.Infof(providers.TypeSync, "Content tree rebuilt: generation %d, %d rows", gen, len(rows))
}

// Restore loads the tree from the last saved snapshot.
func (cs *ContentService) Restore() error {
	rows, err := cs.snapshot.Load()
	if err != nil {
		return fmt.Errorf("load content snapshot: %w", err)
	}
	if rows == nil {
		return ErrNoSnapshot
	}
	cs.apply(rows)
	return nil
}

func (cs *ContentService) Persist() error {
	return cs.snapshot.Save(cs.RawRows())
}

func (cs *ContentService) Tree() *models.Tree {
	return cs.tree.Load()
}

func (cs *ContentService) RawRows() [][]string {
	return *cs.raw.Load()
}

func (cs *ContentService) Generation() int64 {
	return cs.generation.Load()
}

func (cs *ContentService) LastSync() time.Time {
	return cs.lastSync.Load()
}
