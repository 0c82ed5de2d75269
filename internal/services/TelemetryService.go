package services

import (
	"admission/internal/models"
	"admission/internal/providers"
	"admission/internal/sheets"
	"admission/internal/structures"
	"context"
	"fmt"
	"sync"
	"time"
)

type TelemetryServiceInterface interface {
	AddEvents(events []models.TelemetryEvent)
	Flush(ctx context.Context) error
	Buffered() int
}

// TelemetryService buffers click events until the next flush. Delivery is at
// most once: a failed flush discards what was taken from the buffer.
type TelemetryService struct {
	conf     *structures.Config
	sheet    sheets.Worksheet
	content  ContentServiceInterface
	registry RegistryServiceInterface
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
	loc      *time.Location

	mu     sync.Mutex
	events []models.TelemetryEvent
}

func NewTelemetryService(conf *structures.Config, book *sheets.Workbook, content ContentServiceInterface, registry RegistryServiceInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) TelemetryServiceInterface {
	loc, err := time.LoadLocation(conf.Telemetry.Timezone)
	if err != nil {
		logger.Warnf(providers.TypeApp, "Unknown telemetry timezone %q, using local time", conf.Telemetry.Timezone)
		loc = time.Local
	}
	return &TelemetryService{
		conf:     conf,
		sheet:    book.Telemetry,
		content:  content,
		registry: registry,
		logger:   logger,
		metrics:  metrics,
		loc:      loc,
	}
}

func (ts *TelemetryService) AddEvents(events []models.TelemetryEvent) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.events = append(ts.events, events...)
	ts.metrics.SetTelemetryBuffered(len(ts.events))
}

func (ts *TelemetryService) Buffered() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.events)
}

func (ts *TelemetryService) take() []models.TelemetryEvent {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	events := ts.events
	ts.events = nil
	ts.metrics.SetTelemetryBuffered(0)
	return events
}

func (ts *TelemetryService) fail(ctx context.Context, err error, lost int) error {
	ts.logger.Errorf(providers.TypeSync, "Telemetry upload failed, %d events discarded: %s", lost, err)
	ts.metrics.IncRemoteErrors("telemetry_append")
	ts.metrics.AddTelemetryDropped(lost)
	if _, berr := ts.registry.TriggerBackup(ctx); berr != nil {
		ts.logger.Errorf(providers.TypeSync, "Backup after failed telemetry upload: %s", berr)
	}
	return fmt.Errorf("flush telemetry: %w", err)
}

// Flush appends every buffered event whose button resolves in the current
// content tree to the telemetry worksheet.
func (ts *TelemetryService) Flush(ctx context.Context) error {
	events := ts.take()
	if len(events) == 0 {
		return nil
	}
	start := time.Now()
	defer func() {
		ts.metrics.ObserveSyncDuration("telemetry", time.Since(start))
	}()

	headerCtx, cancel := withTimeout(ctx, ts.conf.Spreadsheet.RequestTimeout)
	_, err := sheets.EnsureHeader(headerCtx, ts.sheet, models.TelemetryHeader)
	cancel()
	if err != nil {
		return ts.fail(ctx, err, len(events))
	}

	tree := ts.content.Tree()
	var flushed, skipped int
	for i, ev := range events {
		name, ok := tree.DisplayName(ev.ButtonID)
		if !ok {
			ts.logger.Debugf(providers.TypeSync, "Telemetry event for %q is not a button, skipping", ev.ButtonID)
			skipped++
			continue
		}

		reqCtx, cancel := withTimeout(ctx, ts.conf.Spreadsheet.RequestTimeout)
		err := ts.sheet.AppendRow(reqCtx, ev.SheetRow(ts.loc, name))
		cancel()
		if err != nil {
			ts.metrics.AddTelemetryFlushed(flushed)
			ts.metrics.AddTelemetryDropped(skipped)
			return ts.fail(ctx, err, len(events)-i)
		}
		flushed++
	}

	ts.metrics.AddTelemetryFlushed(flushed)
	ts.metrics.AddTelemetryDropped(skipped)
	ts.logger.Infof(providers.TypeSync, "Telemetry flushed: %d rows, %d skipped", flushed, skipped)
	return nil
}
