package synchronizer

import (
	"admission/internal/providers"
	"admission/internal/services"
	"admission/internal/structures"
	"admission/internal/synchronizer/interfaces"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/roylee0704/gron"
)

type Scheduler struct {
	config    *structures.Config
	logger    providers.Logger
	content   services.ContentServiceInterface
	registry  services.RegistryServiceInterface
	telemetry services.TelemetryServiceInterface
	cron      *gron.Cron
	opsMu     sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	s.cron.AddFunc(gron.Every(s.config.Sync.Interval), func() {
		s.Sync(context.Background())
	})

	if s.config.Sync.BackupInterval > 0 {
		s.cron.AddFunc(gron.Every(s.config.Sync.BackupInterval), func() {
			s.opsMu.Lock()
			defer s.opsMu.Unlock()

			if _, err := s.registry.TriggerBackup(context.Background()); err != nil {
				s.logger.Errorf(providers.TypeSync, "Scheduled backup failed: %s", err)
			}
		})
	}

	if s.config.Sync.IntegrityInterval > 0 {
		s.cron.AddFunc(gron.Every(s.config.Sync.IntegrityInterval), func() {
			s.opsMu.Lock()
			defer s.opsMu.Unlock()

			if _, err := s.registry.RemoteUsersAbsent(context.Background()); err != nil {
				s.logger.Errorf(providers.TypeSync, "Integrity check failed: %s", err)
			}
		})
	}

	s.cron.Start()
}

// Sync refetches the content tree, then flushes telemetry against it.
func (s *Scheduler) Sync(ctx context.Context) {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Debugf(providers.TypeSync, "Synchronizing with the spreadsheet...")
	if err := s.content.Fetch(ctx); err != nil {
		s.logger.Errorf(providers.TypeSync, "Content sync failed: %s", err)
	}
	if err := s.telemetry.Flush(ctx); err != nil {
		s.logger.Errorf(providers.TypeSync, "Telemetry sync failed: %s", err)
	}
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Restore fails only when the users worksheet is unreachable. Content falls
// back to the last snapshot.
func (s *Scheduler) Restore(ctx context.Context) error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	if err := s.registry.FetchUsers(ctx); err != nil {
		return err
	}
	if err := s.registry.FetchAdmins(ctx); err != nil {
		s.logger.Errorf(providers.TypeApp, "Admins not loaded: %s", err)
	}

	err := s.content.Fetch(ctx)
	if err == nil {
		return nil
	}
	s.logger.Errorf(providers.TypeApp, "Content not loaded, restoring snapshot: %s", err)
	if rerr := s.content.Restore(); rerr != nil {
		if errors.Is(rerr, services.ErrNoSnapshot) {
			s.logger.Warnf(providers.TypeApp, "No content snapshot, serving an empty tree until the next sync")
			return nil
		}
		return fmt.Errorf("restore content: %w", rerr)
	}
	return nil
}

func (s *Scheduler) Persist(ctx context.Context) error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeApp, "Persisting state before shutdown...")
	var errs []error
	if err := s.telemetry.Flush(ctx); err != nil {
		errs = append(errs, err)
	}
	if _, err := s.registry.TriggerBackup(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.content.Persist(); err != nil {
		errs = append(errs, fmt.Errorf("content snapshot: %w", err))
	}
	err := errors.Join(errs...)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting state: %s", err)
	}
	return err
}

func NewScheduler(config *structures.Config, logger providers.Logger, content services.ContentServiceInterface, registry services.RegistryServiceInterface, telemetry services.TelemetryServiceInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:    config,
		logger:    logger,
		content:   content,
		registry:  registry,
		telemetry: telemetry,
	}
}
