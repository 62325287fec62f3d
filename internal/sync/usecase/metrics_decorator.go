package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/concierge/internal/metrics"
	syncDomain "github.com/allisson/concierge/internal/sync/domain"
)

// syncUseCaseWithMetrics decorates SyncUseCase with metrics instrumentation.
type syncUseCaseWithMetrics struct {
	next    SyncUseCase
	metrics metrics.BusinessMetrics
}

// NewSyncUseCaseWithMetrics wraps a SyncUseCase with metrics recording.
// A run that completes with a supplier failure is recorded with status "failed".
func NewSyncUseCaseWithMetrics(useCase SyncUseCase, m metrics.BusinessMetrics) SyncUseCase {
	return &syncUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (s *syncUseCaseWithMetrics) CreateWorker(
	ctx context.Context,
	supplier, hostID string,
	workerType syncDomain.WorkerType,
	interval time.Duration,
) (*syncDomain.Worker, error) {
	start := time.Now()
	worker, err := s.next.CreateWorker(ctx, supplier, hostID, workerType, interval)
	s.record(ctx, "worker_create", start, statusOf(err))
	return worker, err
}

func (s *syncUseCaseWithMetrics) EnsureWorkers(
	ctx context.Context,
	supplier, hostID string,
) ([]*syncDomain.Worker, error) {
	return s.next.EnsureWorkers(ctx, supplier, hostID)
}

func (s *syncUseCaseWithMetrics) GetWorker(ctx context.Context, id uuid.UUID) (*syncDomain.Worker, error) {
	start := time.Now()
	worker, err := s.next.GetWorker(ctx, id)
	s.record(ctx, "worker_get", start, statusOf(err))
	return worker, err
}

func (s *syncUseCaseWithMetrics) ListWorkers(ctx context.Context, offset, limit int) ([]*syncDomain.Worker, error) {
	start := time.Now()
	workers, err := s.next.ListWorkers(ctx, offset, limit)
	s.record(ctx, "worker_list", start, statusOf(err))
	return workers, err
}

func (s *syncUseCaseWithMetrics) Enqueue(ctx context.Context, id uuid.UUID) (syncDomain.EnqueueResult, error) {
	start := time.Now()
	result, err := s.next.Enqueue(ctx, id)
	status := statusOf(err)
	if err == nil && !result.Queued {
		status = "rejected"
	}
	s.record(ctx, "worker_enqueue", start, status)
	return result, err
}

func (s *syncUseCaseWithMetrics) Run(ctx context.Context, id uuid.UUID) (*syncDomain.Process, error) {
	start := time.Now()
	process, err := s.next.Run(ctx, id)
	status := statusOf(err)
	if err == nil && !process.Successful {
		status = "failed"
	}
	s.record(ctx, "worker_run", start, status)
	return process, err
}

func (s *syncUseCaseWithMetrics) ListProcesses(
	ctx context.Context,
	filter syncDomain.ProcessFilter,
	offset, limit int,
) ([]*syncDomain.Process, error) {
	start := time.Now()
	processes, err := s.next.ListProcesses(ctx, filter, offset, limit)
	s.record(ctx, "process_list", start, statusOf(err))
	return processes, err
}

func (s *syncUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, status string) {
	s.metrics.RecordOperation(ctx, "sync", operation, status)
	s.metrics.RecordDuration(ctx, "sync", operation, time.Since(start), status)
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
