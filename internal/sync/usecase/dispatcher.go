package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/allisson/concierge/internal/announcer"
	syncDomain "github.com/allisson/concierge/internal/sync/domain"
)

// Dispatcher turns "sync.<supplier>" events into worker runs.
//
// The handler resolves and enqueues the workers synchronously, then runs each queued
// worker on its own goroutine. The number of concurrent runs is bounded.
type Dispatcher struct {
	syncUseCase SyncUseCase
	sem         *semaphore.Weighted
	wg          sync.WaitGroup
	logger      *slog.Logger
}

// NewDispatcher creates a Dispatcher running at most maxConcurrency workers at once.
func NewDispatcher(syncUseCase SyncUseCase, maxConcurrency int64, logger *slog.Logger) *Dispatcher {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Dispatcher{
		syncUseCase: syncUseCase,
		sem:         semaphore.NewWeighted(maxConcurrency),
		logger:      logger,
	}
}

// Register subscribes one handler per supplier.
func (d *Dispatcher) Register(a *announcer.Announcer, suppliers []string) {
	for _, supplier := range suppliers {
		a.On(syncDomain.EventName(supplier), d.Handler(supplier))
	}
}

// Handler returns the announcer handler for supplier. It accepts the host identifier as a
// string, which syncs every worker type of the host, or a SyncRequest for a single type.
func (d *Dispatcher) Handler(supplier string) announcer.Handler {
	return func(ctx context.Context, event string, payload any) error {
		workers, err := d.resolve(ctx, supplier, payload)
		if err != nil {
			return fmt.Errorf("failed to resolve sync workers for %s: %w", event, err)
		}

		for _, worker := range workers {
			result, err := d.syncUseCase.Enqueue(ctx, worker.ID)
			if err != nil {
				return fmt.Errorf("failed to enqueue sync worker %s: %w", worker.ID, err)
			}
			if !result.Queued {
				d.logger.Info("sync skipped",
					slog.String("event", event),
					slog.String("worker_id", worker.ID.String()),
					slog.String("reason", result.Reason),
				)
				continue
			}
			d.Dispatch(ctx, worker.ID)
		}
		return nil
	}
}

func (d *Dispatcher) resolve(ctx context.Context, supplier string, payload any) ([]*syncDomain.Worker, error) {
	switch p := payload.(type) {
	case string:
		return d.syncUseCase.EnsureWorkers(ctx, supplier, p)
	case syncDomain.SyncRequest:
		return d.single(ctx, supplier, p)
	case *syncDomain.SyncRequest:
		if p == nil {
			return nil, fmt.Errorf("nil sync request")
		}
		return d.single(ctx, supplier, *p)
	}
	return nil, fmt.Errorf("unsupported sync payload %T", payload)
}

func (d *Dispatcher) single(
	ctx context.Context,
	supplier string,
	request syncDomain.SyncRequest,
) ([]*syncDomain.Worker, error) {
	worker, err := d.syncUseCase.CreateWorker(ctx, supplier, request.HostID, request.Type, 0)
	if err != nil {
		return nil, err
	}
	return []*syncDomain.Worker{worker}, nil
}

// Dispatch runs a queued worker on its own goroutine once a concurrency slot is free.
func (d *Dispatcher) Dispatch(ctx context.Context, id uuid.UUID) {
	ctx = context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		// A detached context cannot be cancelled, so Acquire only returns once a slot frees up.
		if err := d.sem.Acquire(ctx, 1); err != nil {
			d.logger.Error("failed to acquire sync slot", slog.Any("error", err))
			return
		}
		defer d.sem.Release(1)

		process, err := d.syncUseCase.Run(ctx, id)
		if err != nil {
			d.logger.Error("sync run could not start",
				slog.String("worker_id", id.String()),
				slog.Any("error", err),
			)
			return
		}
		d.logger.Debug("sync run completed",
			slog.String("worker_id", id.String()),
			slog.String("process_id", process.ID.String()),
			slog.Bool("successful", process.Successful),
		)
	}()
}

// Wait blocks until every spawned run has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
