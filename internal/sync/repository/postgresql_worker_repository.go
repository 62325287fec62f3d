// Package repository implements sync worker and sync process persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/allisson/concierge/internal/database"
	apperrors "github.com/allisson/concierge/internal/errors"
	syncDomain "github.com/allisson/concierge/internal/sync/domain"
)

const workerColumns = `id, supplier, host_id, type, status, interval_seconds, next_run_at, created_at, updated_at`

// PostgreSQLWorkerRepository stores sync workers in the sync_workers table.
// Status changes are conditional updates, so concurrent callers never both win a transition.
type PostgreSQLWorkerRepository struct {
	db *sql.DB
}

// Create inserts a worker. A duplicate (supplier, host_id, type) returns ErrWorkerAlreadyExists.
func (p *PostgreSQLWorkerRepository) Create(ctx context.Context, worker *syncDomain.Worker) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO sync_workers (` + workerColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := querier.ExecContext(
		ctx,
		query,
		worker.ID,
		worker.Supplier,
		worker.HostID,
		worker.Type,
		worker.Status,
		int64(worker.Interval/time.Second),
		worker.NextRunAt,
		worker.CreatedAt,
		worker.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return syncDomain.ErrWorkerAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create sync worker")
	}
	return nil
}

// Get returns a worker by ID.
func (p *PostgreSQLWorkerRepository) Get(ctx context.Context, id uuid.UUID) (*syncDomain.Worker, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + workerColumns + ` FROM sync_workers WHERE id = $1`

	worker, err := scanWorker(querier.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, syncDomain.ErrWorkerNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get sync worker")
	}
	return worker, nil
}

// GetByIdentity returns the worker for (supplier, hostID, workerType).
func (p *PostgreSQLWorkerRepository) GetByIdentity(
	ctx context.Context,
	supplier, hostID string,
	workerType syncDomain.WorkerType,
) (*syncDomain.Worker, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + workerColumns + ` FROM sync_workers WHERE supplier = $1 AND host_id = $2 AND type = $3`

	worker, err := scanWorker(querier.QueryRowContext(ctx, query, supplier, hostID, workerType).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, syncDomain.ErrWorkerNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get sync worker")
	}
	return worker, nil
}

// ListByHost returns every worker of a (supplier, host) pair, metadata first.
func (p *PostgreSQLWorkerRepository) ListByHost(
	ctx context.Context,
	supplier, hostID string,
) ([]*syncDomain.Worker, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + workerColumns + ` FROM sync_workers
			  WHERE supplier = $1 AND host_id = $2
			  ORDER BY CASE type WHEN 'metadata' THEN 0 ELSE 1 END`

	rows, err := querier.QueryContext(ctx, query, supplier, hostID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list sync workers")
	}
	return collectWorkers(rows, scanWorker)
}

// List returns workers ordered by supplier and host.
func (p *PostgreSQLWorkerRepository) List(ctx context.Context, offset, limit int) ([]*syncDomain.Worker, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + workerColumns + ` FROM sync_workers
			  ORDER BY supplier, host_id, type LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list sync workers")
	}
	return collectWorkers(rows, scanWorker)
}

// Enqueue moves the worker to queued unless it is already queued or running.
// It reports whether this call performed the transition.
func (p *PostgreSQLWorkerRepository) Enqueue(ctx context.Context, id uuid.UUID) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE sync_workers SET status = $1, updated_at = NOW()
			  WHERE id = $2 AND status NOT IN ($3, $4)`

	result, err := querier.ExecContext(
		ctx,
		query,
		syncDomain.WorkerStatusQueued,
		id,
		syncDomain.WorkerStatusQueued,
		syncDomain.WorkerStatusRunning,
	)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to enqueue sync worker")
	}
	return affected(result)
}

// Start moves a queued worker to running and reports whether this call performed the transition.
func (p *PostgreSQLWorkerRepository) Start(ctx context.Context, id uuid.UUID) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE sync_workers SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`

	result, err := querier.ExecContext(
		ctx,
		query,
		syncDomain.WorkerStatusRunning,
		id,
		syncDomain.WorkerStatusQueued,
	)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to start sync worker")
	}
	return affected(result)
}

// Release marks a queued worker that never started as failed, so it can be queued again.
func (p *PostgreSQLWorkerRepository) Release(ctx context.Context, id uuid.UUID) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE sync_workers SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`

	result, err := querier.ExecContext(
		ctx,
		query,
		syncDomain.WorkerStatusFailed,
		id,
		syncDomain.WorkerStatusQueued,
	)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to release sync worker")
	}
	return affected(result)
}

// Finish stores the terminal status of a run and schedules the next one.
func (p *PostgreSQLWorkerRepository) Finish(
	ctx context.Context,
	id uuid.UUID,
	status syncDomain.WorkerStatus,
	nextRunAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE sync_workers SET status = $1, next_run_at = $2, updated_at = NOW() WHERE id = $3`

	if _, err := querier.ExecContext(ctx, query, status, nextRunAt, id); err != nil {
		return apperrors.Wrap(err, "failed to finish sync worker")
	}
	return nil
}

// ListDue locks and returns up to limit workers whose next run is due and which are not active.
// It must run inside a transaction for the row locks to hold.
func (p *PostgreSQLWorkerRepository) ListDue(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*syncDomain.Worker, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + workerColumns + ` FROM sync_workers
			  WHERE next_run_at <= $1 AND status NOT IN ($2, $3)
			  ORDER BY next_run_at ASC
			  LIMIT $4
			  FOR UPDATE SKIP LOCKED`

	rows, err := querier.QueryContext(
		ctx,
		query,
		now,
		syncDomain.WorkerStatusQueued,
		syncDomain.WorkerStatusRunning,
		limit,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list due sync workers")
	}
	return collectWorkers(rows, scanWorker)
}

// NewPostgreSQLWorkerRepository creates a new PostgreSQL sync worker repository.
func NewPostgreSQLWorkerRepository(db *sql.DB) *PostgreSQLWorkerRepository {
	return &PostgreSQLWorkerRepository{db: db}
}
