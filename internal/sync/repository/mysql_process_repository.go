package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/allisson/concierge/internal/database"
	apperrors "github.com/allisson/concierge/internal/errors"
	syncDomain "github.com/allisson/concierge/internal/sync/domain"
)

// MySQLProcessRepository stores sync processes in the sync_processes table with BINARY(16) ids.
type MySQLProcessRepository struct {
	db *sql.DB
}

// Create inserts a process when its run starts.
func (m *MySQLProcessRepository) Create(ctx context.Context, process *syncDomain.Process) error {
	querier := database.GetTx(ctx, m.db)

	id, workerID, err := marshalProcessIDs(process)
	if err != nil {
		return err
	}
	stats, err := marshalStats(process.Stats)
	if err != nil {
		return err
	}

	query := `INSERT INTO sync_processes (` + processColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		workerID,
		process.Supplier,
		process.HostID,
		process.Type,
		process.Status,
		process.Successful,
		process.Code,
		process.Message,
		stats,
		process.StartedAt,
		process.FinishedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create sync process")
	}
	return nil
}

// Finish stores the result of the run.
func (m *MySQLProcessRepository) Finish(ctx context.Context, process *syncDomain.Process) error {
	querier := database.GetTx(ctx, m.db)

	id, err := process.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal sync process id")
	}
	stats, err := marshalStats(process.Stats)
	if err != nil {
		return err
	}

	query := `UPDATE sync_processes
			  SET status = ?, successful = ?, code = ?, message = ?, stats = ?, finished_at = ?
			  WHERE id = ?`

	_, err = querier.ExecContext(
		ctx,
		query,
		process.Status,
		process.Successful,
		process.Code,
		process.Message,
		stats,
		process.FinishedAt,
		id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to finish sync process")
	}
	return nil
}

// List returns processes newest first.
func (m *MySQLProcessRepository) List(
	ctx context.Context,
	filter syncDomain.ProcessFilter,
	offset, limit int,
) ([]*syncDomain.Process, error) {
	querier := database.GetTx(ctx, m.db)

	var conditions []string
	var args []any

	if filter.Supplier != "" {
		conditions = append(conditions, "supplier = ?")
		args = append(args, filter.Supplier)
	}
	if filter.WorkerID != uuid.Nil {
		workerID, err := filter.WorkerID.MarshalBinary()
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to marshal sync worker id")
		}
		conditions = append(conditions, "worker_id = ?")
		args = append(args, workerID)
	}

	query := `SELECT ` + processColumns + ` FROM sync_processes`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY started_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list sync processes")
	}
	defer func() {
		_ = rows.Close()
	}()

	processes := make([]*syncDomain.Process, 0)
	for rows.Next() {
		var process syncDomain.Process
		var idBytes, workerIDBytes []byte
		if err := scanProcessInto(rows.Scan, &idBytes, &workerIDBytes, &process); err != nil {
			return nil, err
		}
		if err := process.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal sync process id")
		}
		if err := process.WorkerID.UnmarshalBinary(workerIDBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal sync worker id")
		}
		processes = append(processes, &process)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate sync processes")
	}
	return processes, nil
}

func marshalProcessIDs(process *syncDomain.Process) ([]byte, []byte, error) {
	id, err := process.ID.MarshalBinary()
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to marshal sync process id")
	}
	workerID, err := process.WorkerID.MarshalBinary()
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to marshal sync worker id")
	}
	return id, workerID, nil
}

// NewMySQLProcessRepository creates a new MySQL sync process repository.
func NewMySQLProcessRepository(db *sql.DB) *MySQLProcessRepository {
	return &MySQLProcessRepository{db: db}
}
