package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/allisson/concierge/internal/database"
	apperrors "github.com/allisson/concierge/internal/errors"
	syncDomain "github.com/allisson/concierge/internal/sync/domain"
)

// MySQLWorkerRepository stores sync workers in the sync_workers table with BINARY(16) ids.
type MySQLWorkerRepository struct {
	db *sql.DB
}

// Create inserts a worker. A duplicate (supplier, host_id, type) returns ErrWorkerAlreadyExists.
func (m *MySQLWorkerRepository) Create(ctx context.Context, worker *syncDomain.Worker) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO sync_workers (` + workerColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := worker.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal sync worker id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return syncDomain.ErrWorkerAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create sync worker")
	}
	return nil
}

// Get returns a worker by ID.
func (m *MySQLWorkerRepository) Get(ctx context.Context, id uuid.UUID) (*syncDomain.Worker, error) {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal sync worker id")
	}

	query := `SELECT ` + workerColumns + ` FROM sync_workers WHERE id = ?`

	worker, err := scanMySQLWorker(querier.QueryRowContext(ctx, query, idBytes).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, syncDomain.ErrWorkerNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get sync worker")
	}
	return worker, nil
}

// GetByIdentity returns the worker for (supplier, hostID, workerType).
func (m *MySQLWorkerRepository) GetByIdentity(
	ctx context.Context,
	supplier, hostID string,
	workerType syncDomain.WorkerType,
) (*syncDomain.Worker, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + workerColumns + ` FROM sync_workers WHERE supplier = ? AND host_id = ? AND type = ?`

	worker, err := scanMySQLWorker(querier.QueryRowContext(ctx, query, supplier, hostID, workerType).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, syncDomain.ErrWorkerNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get sync worker")
	}
	return worker, nil
}

// ListByHost returns every worker of a (supplier, host) pair, metadata first.
func (m *MySQLWorkerRepository) ListByHost(
	ctx context.Context,
	supplier, hostID string,
) ([]*syncDomain.Worker, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + workerColumns + ` FROM sync_workers
			  WHERE supplier = ? AND host_id = ?
			  ORDER BY CASE type WHEN 'metadata' THEN 0 ELSE 1 END`

	rows, err := querier.QueryContext(ctx, query, supplier, hostID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list sync workers")
	}
	return collectWorkers(rows, scanMySQLWorker)
}

// List returns workers ordered by supplier and host.
func (m *MySQLWorkerRepository) List(ctx context.Context, offset, limit int) ([]*syncDomain.Worker, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + workerColumns + ` FROM sync_workers
			  ORDER BY supplier, host_id, type LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list sync workers")
	}
	return collectWorkers(rows, scanMySQLWorker)
}

// Enqueue moves the worker to queued unless it is already queued or running.
// It reports whether this call performed the transition.
func (m *MySQLWorkerRepository) Enqueue(ctx context.Context, id uuid.UUID) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to marshal sync worker id")
	}

	query := `UPDATE sync_workers SET status = ?, updated_at = NOW()
			  WHERE id = ? AND status NOT IN (?, ?)`

	result, err := querier.ExecContext(
		ctx,
		query,
		syncDomain.WorkerStatusQueued,
		idBytes,
		syncDomain.WorkerStatusQueued,
		syncDomain.WorkerStatusRunning,
	)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to enqueue sync worker")
	}
	return affected(result)
}

// Start moves a queued worker to running and reports whether this call performed the transition.
func (m *MySQLWorkerRepository) Start(ctx context.Context, id uuid.UUID) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to marshal sync worker id")
	}

	query := `UPDATE sync_workers SET status = ?, updated_at = NOW() WHERE id = ? AND status = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		syncDomain.WorkerStatusRunning,
		idBytes,
		syncDomain.WorkerStatusQueued,
	)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to start sync worker")
	}
	return affected(result)
}

// Release marks a queued worker that never started as failed, so it can be queued again.
func (m *MySQLWorkerRepository) Release(ctx context.Context, id uuid.UUID) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to marshal sync worker id")
	}

	query := `UPDATE sync_workers SET status = ?, updated_at = NOW() WHERE id = ? AND status = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		syncDomain.WorkerStatusFailed,
		idBytes,
		syncDomain.WorkerStatusQueued,
	)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to release sync worker")
	}
	return affected(result)
}

// Finish stores the terminal status of a run and schedules the next one.
func (m *MySQLWorkerRepository) Finish(
	ctx context.Context,
	id uuid.UUID,
	status syncDomain.WorkerStatus,
	nextRunAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal sync worker id")
	}

	query := `UPDATE sync_workers SET status = ?, next_run_at = ?, updated_at = NOW() WHERE id = ?`

	if _, err := querier.ExecContext(ctx, query, status, nextRunAt, idBytes); err != nil {
		return apperrors.Wrap(err, "failed to finish sync worker")
	}
	return nil
}

// ListDue locks and returns up to limit workers whose next run is due and which are not active.
// It must run inside a transaction for the row locks to hold.
func (m *MySQLWorkerRepository) ListDue(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*syncDomain.Worker, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + workerColumns + ` FROM sync_workers
			  WHERE next_run_at <= ? AND status NOT IN (?, ?)
			  ORDER BY next_run_at ASC
			  LIMIT ?
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
	return collectWorkers(rows, scanMySQLWorker)
}

// NewMySQLWorkerRepository creates a new MySQL sync worker repository.
func NewMySQLWorkerRepository(db *sql.DB) *MySQLWorkerRepository {
	return &MySQLWorkerRepository{db: db}
}
