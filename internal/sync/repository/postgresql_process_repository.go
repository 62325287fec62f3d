package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/allisson/concierge/internal/database"
	apperrors "github.com/allisson/concierge/internal/errors"
	syncDomain "github.com/allisson/concierge/internal/sync/domain"
)

const processColumns = `id, worker_id, supplier, host_id, type, status, successful, code, message, stats, started_at, finished_at`

// PostgreSQLProcessRepository stores sync processes in the sync_processes table.
type PostgreSQLProcessRepository struct {
	db *sql.DB
}

// Create inserts a process when its run starts.
func (p *PostgreSQLProcessRepository) Create(ctx context.Context, process *syncDomain.Process) error {
	querier := database.GetTx(ctx, p.db)

	stats, err := marshalStats(process.Stats)
	if err != nil {
		return err
	}

	query := `INSERT INTO sync_processes (` + processColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = querier.ExecContext(
		ctx,
		query,
		process.ID,
		process.WorkerID,
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
func (p *PostgreSQLProcessRepository) Finish(ctx context.Context, process *syncDomain.Process) error {
	querier := database.GetTx(ctx, p.db)

	stats, err := marshalStats(process.Stats)
	if err != nil {
		return err
	}

	query := `UPDATE sync_processes
			  SET status = $1, successful = $2, code = $3, message = $4, stats = $5, finished_at = $6
			  WHERE id = $7`

	_, err = querier.ExecContext(
		ctx,
		query,
		process.Status,
		process.Successful,
		process.Code,
		process.Message,
		stats,
		process.FinishedAt,
		process.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to finish sync process")
	}
	return nil
}

// List returns processes newest first.
func (p *PostgreSQLProcessRepository) List(
	ctx context.Context,
	filter syncDomain.ProcessFilter,
	offset, limit int,
) ([]*syncDomain.Process, error) {
	querier := database.GetTx(ctx, p.db)

	var conditions []string
	var args []any

	if filter.Supplier != "" {
		args = append(args, filter.Supplier)
		conditions = append(conditions, fmt.Sprintf("supplier = $%d", len(args)))
	}
	if filter.WorkerID != uuid.Nil {
		args = append(args, filter.WorkerID)
		conditions = append(conditions, fmt.Sprintf("worker_id = $%d", len(args)))
	}

	query := `SELECT ` + processColumns + ` FROM sync_processes`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY started_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
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
		if err := scanProcessInto(rows.Scan, &process.ID, &process.WorkerID, &process); err != nil {
			return nil, err
		}
		processes = append(processes, &process)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate sync processes")
	}
	return processes, nil
}

// NewPostgreSQLProcessRepository creates a new PostgreSQL sync process repository.
func NewPostgreSQLProcessRepository(db *sql.DB) *PostgreSQLProcessRepository {
	return &PostgreSQLProcessRepository{db: db}
}
