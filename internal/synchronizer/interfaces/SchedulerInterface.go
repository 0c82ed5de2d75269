package interfaces

import "context"

type SchedulerInterface interface {
	Init()
	Stop()
	// Restore loads the registry and the content tree before serving.
	Restore(ctx context.Context) error
	// Persist flushes what is still buffered at shutdown.
	Persist(ctx context.Context) error
	Sync(ctx context.Context)
}
