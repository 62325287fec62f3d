package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/allisson/concierge/internal/database"
	syncDomain "github.com/allisson/concierge/internal/sync/domain"
)

// SchedulerConfig holds scheduler configuration.
type SchedulerConfig struct {
	Interval  time.Duration
	BatchSize int
}

// Scheduler periodically publishes sync events for workers whose next run is due.
type Scheduler struct {
	config     SchedulerConfig
	txManager  database.TxManager
	workerRepo WorkerRepository
	publisher  Publisher
	logger     *slog.Logger
	now        func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(
	config SchedulerConfig,
	txManager database.TxManager,
	workerRepo WorkerRepository,
	publisher Publisher,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		config:     config,
		txManager:  txManager,
		workerRepo: workerRepo,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

// Start runs the scheduling loop until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("starting sync scheduler",
		slog.Duration("interval", s.config.Interval),
		slog.Int("batch_size", s.config.BatchSize),
	)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping sync scheduler")
			return ctx.Err()
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil {
				s.logger.Error("failed to schedule sync workers", slog.Any("error", err))
			}
		}
	}
}

// Tick publishes one event per due worker.
//
// Due workers are selected inside a transaction with skipped locks so concurrent schedulers
// split the batch. Events are published after the commit; the conditional enqueue in the
// handler discards any worker another scheduler already queued.
func (s *Scheduler) Tick(ctx context.Context) error {
	var due []*syncDomain.Worker
	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		workers, err := s.workerRepo.ListDue(ctx, s.now().UTC(), s.config.BatchSize)
		if err != nil {
			return err
		}
		due = workers
		return nil
	})
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}

	s.logger.Info("scheduling sync workers", slog.Int("count", len(due)))
	for _, worker := range due {
		request := syncDomain.SyncRequest{HostID: worker.HostID, Type: worker.Type}
		if err := s.publisher.Publish(ctx, worker.EventName(), request); err != nil {
			s.logger.Error("failed to publish sync event",
				slog.String("worker_id", worker.ID.String()),
				slog.String("event", worker.EventName()),
				slog.Any("error", err),
			)
		}
	}
	return nil
}
