// Package usecase implements the sync worker lifecycle: enqueueing, running and recording
// supplier inventory synchronizations, plus the dispatcher and scheduler that trigger them.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	externalErrorDomain "github.com/allisson/concierge/internal/externalerror/domain"
	syncDomain "github.com/allisson/concierge/internal/sync/domain"
)

// WorkerRepository persists sync workers. Enqueue, Start and Release are conditional
// updates reporting whether the caller performed the transition.
type WorkerRepository interface {
	Create(ctx context.Context, worker *syncDomain.Worker) error
	Get(ctx context.Context, id uuid.UUID) (*syncDomain.Worker, error)
	GetByIdentity(
		ctx context.Context,
		supplier, hostID string,
		workerType syncDomain.WorkerType,
	) (*syncDomain.Worker, error)
	ListByHost(ctx context.Context, supplier, hostID string) ([]*syncDomain.Worker, error)
	List(ctx context.Context, offset, limit int) ([]*syncDomain.Worker, error)
	Enqueue(ctx context.Context, id uuid.UUID) (bool, error)
	Start(ctx context.Context, id uuid.UUID) (bool, error)
	Release(ctx context.Context, id uuid.UUID) (bool, error)
	Finish(ctx context.Context, id uuid.UUID, status syncDomain.WorkerStatus, nextRunAt time.Time) error
	ListDue(ctx context.Context, now time.Time, limit int) ([]*syncDomain.Worker, error)
}

// ProcessRepository persists sync processes.
type ProcessRepository interface {
	Create(ctx context.Context, process *syncDomain.Process) error
	Finish(ctx context.Context, process *syncDomain.Process) error
	List(ctx context.Context, filter syncDomain.ProcessFilter, offset, limit int) ([]*syncDomain.Process, error)
}

// ErrorRecorder persists failed sync runs.
type ErrorRecorder interface {
	Record(ctx context.Context, externalError *externalErrorDomain.ExternalError)
}

// Publisher publishes announcer events.
type Publisher interface {
	Publish(ctx context.Context, event string, payload any) error
}

// SyncUseCase manages sync workers and their runs.
type SyncUseCase interface {
	// CreateWorker returns the worker for (supplier, hostID, workerType), creating it when missing.
	// A zero interval uses the configured default.
	CreateWorker(
		ctx context.Context,
		supplier, hostID string,
		workerType syncDomain.WorkerType,
		interval time.Duration,
	) (*syncDomain.Worker, error)

	// EnsureWorkers returns one worker per type for (supplier, hostID), creating the missing ones.
	EnsureWorkers(ctx context.Context, supplier, hostID string) ([]*syncDomain.Worker, error)

	GetWorker(ctx context.Context, id uuid.UUID) (*syncDomain.Worker, error)
	ListWorkers(ctx context.Context, offset, limit int) ([]*syncDomain.Worker, error)

	// Enqueue atomically moves the worker to queued. A worker that is already queued or
	// running is not changed and the result carries the reason.
	Enqueue(ctx context.Context, id uuid.UUID) (syncDomain.EnqueueResult, error)

	// Run executes a queued worker and always leaves it in success or failed. The run is
	// detached from the caller's cancellation. The returned error is reserved for runs that
	// could not start; supplier failures are reported on the process.
	Run(ctx context.Context, id uuid.UUID) (*syncDomain.Process, error)

	ListProcesses(
		ctx context.Context,
		filter syncDomain.ProcessFilter,
		offset, limit int,
	) ([]*syncDomain.Process, error)
}
