package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/concierge/internal/errors"
	externalErrorDomain "github.com/allisson/concierge/internal/externalerror/domain"
	"github.com/allisson/concierge/internal/outcome"
	supplierDomain "github.com/allisson/concierge/internal/supplier/domain"
	supplierUseCase "github.com/allisson/concierge/internal/supplier/usecase"
	syncDomain "github.com/allisson/concierge/internal/sync/domain"
	"github.com/allisson/concierge/internal/txcontext"
)

type syncUseCase struct {
	workerRepo      WorkerRepository
	processRepo     ProcessRepository
	registry        *supplierUseCase.Registry
	recorder        ErrorRecorder
	defaultInterval time.Duration
	logger          *slog.Logger
	now             func() time.Time
}

func (s *syncUseCase) CreateWorker(
	ctx context.Context,
	supplier, hostID string,
	workerType syncDomain.WorkerType,
	interval time.Duration,
) (*syncDomain.Worker, error) {
	if _, ok := s.registry.Get(supplier); !ok {
		return nil, fmt.Errorf("%w: %q", supplierDomain.ErrUnknownSupplier, supplier)
	}
	if _, err := syncDomain.ParseWorkerType(string(workerType)); err != nil {
		return nil, err
	}
	if hostID == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "host id is required")
	}
	if interval <= 0 {
		interval = s.defaultInterval
	}

	now := s.now().UTC()
	worker := &syncDomain.Worker{
		ID:        uuid.Must(uuid.NewV7()),
		Supplier:  supplier,
		HostID:    hostID,
		Type:      workerType,
		Status:    syncDomain.WorkerStatusIdle,
		Interval:  interval,
		NextRunAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.workerRepo.Create(ctx, worker)
	if apperrors.Is(err, syncDomain.ErrWorkerAlreadyExists) {
		return s.workerRepo.GetByIdentity(ctx, supplier, hostID, workerType)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("sync worker created",
		slog.String("worker_id", worker.ID.String()),
		slog.String("supplier", supplier),
		slog.String("host_id", hostID),
		slog.String("type", string(workerType)),
	)
	return worker, nil
}

func (s *syncUseCase) EnsureWorkers(ctx context.Context, supplier, hostID string) ([]*syncDomain.Worker, error) {
	workers := make([]*syncDomain.Worker, 0, len(syncDomain.WorkerTypes))
	for _, workerType := range syncDomain.WorkerTypes {
		worker, err := s.CreateWorker(ctx, supplier, hostID, workerType, 0)
		if err != nil {
			return nil, err
		}
		workers = append(workers, worker)
	}
	return workers, nil
}

func (s *syncUseCase) GetWorker(ctx context.Context, id uuid.UUID) (*syncDomain.Worker, error) {
	return s.workerRepo.Get(ctx, id)
}

func (s *syncUseCase) ListWorkers(ctx context.Context, offset, limit int) ([]*syncDomain.Worker, error) {
	return s.workerRepo.List(ctx, offset, limit)
}

func (s *syncUseCase) Enqueue(ctx context.Context, id uuid.UUID) (syncDomain.EnqueueResult, error) {
	queued, err := s.workerRepo.Enqueue(ctx, id)
	if err != nil {
		return syncDomain.EnqueueResult{}, err
	}
	if queued {
		return syncDomain.EnqueueResult{Queued: true, Status: syncDomain.WorkerStatusQueued}, nil
	}

	// Nothing changed: either the worker is missing or its status blocked the update.
	worker, err := s.workerRepo.Get(ctx, id)
	if err != nil {
		return syncDomain.EnqueueResult{}, err
	}
	result := syncDomain.Rejected(worker.Status)
	s.logger.Info("sync worker not queued",
		slog.String("worker_id", id.String()),
		slog.String("reason", result.Reason),
	)
	return result, nil
}

func (s *syncUseCase) Run(ctx context.Context, id uuid.UUID) (*syncDomain.Process, error) {
	ctx = context.WithoutCancel(ctx)

	worker, err := s.workerRepo.Get(ctx, id)
	if err != nil {
		s.release(ctx, id, err)
		return nil, err
	}
	started, err := s.workerRepo.Start(ctx, id)
	if err != nil {
		s.release(ctx, id, err)
		return nil, err
	}
	if !started {
		status := worker.Status
		if current, err := s.workerRepo.Get(ctx, id); err == nil {
			status = current.Status
		}
		return nil, fmt.Errorf("%w: current status is %s", syncDomain.ErrWorkerNotQueued, status)
	}

	tc := txcontext.New("sync_" + string(worker.Type))
	ctx = txcontext.WithContext(ctx, tc)

	process := &syncDomain.Process{
		ID:        uuid.Must(uuid.NewV7()),
		WorkerID:  worker.ID,
		Supplier:  worker.Supplier,
		HostID:    worker.HostID,
		Type:      worker.Type,
		Status:    syncDomain.WorkerStatusRunning,
		StartedAt: s.now().UTC(),
	}
	tc.Add(txcontext.LabelSyncStarted, "sync started", map[string]any{
		"worker_id": worker.ID.String(),
		"supplier":  worker.Supplier,
		"host_id":   worker.HostID,
		"type":      string(worker.Type),
	})

	result := outcome.Fail[syncDomain.Stats](outcome.CodeUnexpectedError, "sync did not complete")
	defer func() {
		if r := recover(); r != nil {
			tc.AddWithBacktrace(txcontext.LabelFailure, fmt.Sprintf("sync panicked: %v", r), nil)
			result = outcome.Failf[syncDomain.Stats](outcome.CodeUnexpectedError, "sync panicked: %v", r)
		}
		s.finish(ctx, worker, process, result)
	}()

	if err := s.processRepo.Create(ctx, process); err != nil {
		result = outcome.Fail[syncDomain.Stats](outcome.CodeUnexpectedError, err.Error())
		return process, nil
	}

	result = outcome.Guard(func() outcome.Result[syncDomain.Stats] {
		return s.synchronize(ctx, worker)
	})
	return process, nil
}

// synchronize fetches the worker's inventory and counts what passed the supplier's validators.
func (s *syncUseCase) synchronize(ctx context.Context, worker *syncDomain.Worker) outcome.Result[syncDomain.Stats] {
	client, ok := s.registry.Get(worker.Supplier)
	if !ok {
		return outcome.Failf[syncDomain.Stats](outcome.CodeUnknownSupplier, "unknown supplier %q", worker.Supplier)
	}
	tc := txcontext.FromContext(ctx)

	switch worker.Type {
	case syncDomain.WorkerTypeMetadata:
		return outcome.Map(client.FetchProperties(ctx, worker.HostID),
			func(properties []supplierDomain.Property) syncDomain.Stats {
				var validators []supplierDomain.Validator[supplierDomain.Property]
				if screener, ok := client.(supplierDomain.PropertyScreener); ok {
					validators = screener.PropertyValidators()
				}
				accepted, skipped := supplierDomain.Filter(properties, validators...)
				tc.Message(fmt.Sprintf("fetched %d properties, %d skipped", len(properties), skipped))
				return syncDomain.Stats{Properties: len(accepted), Skipped: skipped}
			},
		)
	case syncDomain.WorkerTypeAvailabilities:
		return outcome.Map(client.FetchAvailabilities(ctx, worker.HostID),
			func(availabilities []supplierDomain.Availability) syncDomain.Stats {
				tc.Message(fmt.Sprintf("fetched %d availabilities", len(availabilities)))
				return syncDomain.Stats{Availabilities: len(availabilities)}
			},
		)
	}
	return outcome.Failf[syncDomain.Stats](outcome.CodeInvalidParameters, "unknown worker type %q", worker.Type)
}

// release fails a worker left queued by a run that could not start, making it due and
// enqueueable again.
func (s *syncUseCase) release(ctx context.Context, id uuid.UUID, cause error) {
	released, err := s.workerRepo.Release(ctx, id)
	if err != nil {
		s.logger.Error("failed to release sync worker",
			slog.String("worker_id", id.String()),
			slog.Any("cause", cause),
			slog.Any("error", err),
		)
		return
	}
	if released {
		s.logger.Warn("sync worker released after failed start",
			slog.String("worker_id", id.String()),
			slog.Any("error", cause),
		)
	}
}

// finish persists the terminal state of a run. Storage errors are logged; the worker
// must not be left running because of them.
func (s *syncUseCase) finish(
	ctx context.Context,
	worker *syncDomain.Worker,
	process *syncDomain.Process,
	result outcome.Result[syncDomain.Stats],
) {
	tc := txcontext.FromContext(ctx)
	finishedAt := s.now().UTC()
	process.FinishedAt = &finishedAt

	if result.Success() {
		process.Status = syncDomain.WorkerStatusSuccess
		process.Successful = true
		process.Stats = result.Value()
	} else {
		process.Status = syncDomain.WorkerStatusFailed
		process.Code = string(result.Code())
		process.Message = result.Message()
	}
	tc.Add(txcontext.LabelSyncFinished, "sync finished", map[string]any{
		"status":   string(process.Status),
		"duration": finishedAt.Sub(process.StartedAt).String(),
	})

	if err := s.processRepo.Finish(ctx, process); err != nil {
		s.logger.Error("failed to finish sync process",
			slog.String("process_id", process.ID.String()),
			slog.Any("error", err),
		)
	}

	interval := worker.Interval
	if interval <= 0 {
		interval = s.defaultInterval
	}
	if err := s.workerRepo.Finish(ctx, worker.ID, process.Status, finishedAt.Add(interval)); err != nil {
		s.logger.Error("failed to finish sync worker",
			slog.String("worker_id", worker.ID.String()),
			slog.Any("error", err),
		)
	}

	attrs := []any{
		slog.String("worker_id", worker.ID.String()),
		slog.String("process_id", process.ID.String()),
		slog.String("supplier", worker.Supplier),
		slog.String("host_id", worker.HostID),
		slog.String("type", string(worker.Type)),
		slog.String("status", string(process.Status)),
	}
	if result.Success() {
		s.logger.Info("sync finished", attrs...)
		return
	}

	s.logger.Warn("sync failed", append(attrs,
		slog.String("code", process.Code),
		slog.String("message", process.Message),
	)...)
	s.recorder.Record(ctx, &externalErrorDomain.ExternalError{
		Operation: operationFor(worker.Type),
		Supplier:  worker.Supplier,
		Code:      process.Code,
		Message:   process.Message,
	})
}

func operationFor(workerType syncDomain.WorkerType) string {
	if workerType == syncDomain.WorkerTypeAvailabilities {
		return externalErrorDomain.OperationSyncAvailabilities
	}
	return externalErrorDomain.OperationSyncMetadata
}

func (s *syncUseCase) ListProcesses(
	ctx context.Context,
	filter syncDomain.ProcessFilter,
	offset, limit int,
) ([]*syncDomain.Process, error) {
	return s.processRepo.List(ctx, filter, offset, limit)
}

// NewSyncUseCase creates a SyncUseCase.
func NewSyncUseCase(
	workerRepo WorkerRepository,
	processRepo ProcessRepository,
	registry *supplierUseCase.Registry,
	recorder ErrorRecorder,
	defaultInterval time.Duration,
	logger *slog.Logger,
) SyncUseCase {
	return &syncUseCase{
		workerRepo:      workerRepo,
		processRepo:     processRepo,
		registry:        registry,
		recorder:        recorder,
		defaultInterval: defaultInterval,
		logger:          logger,
		now:             time.Now,
	}
}
