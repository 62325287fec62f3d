package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	apperrors "github.com/allisson/concierge/internal/errors"
	syncDomain "github.com/allisson/concierge/internal/sync/domain"
)

// scanFunc is the Scan method of *sql.Row or *sql.Rows.
type scanFunc func(dest ...any) error

func scanWorkerInto(scan scanFunc, id any, worker *syncDomain.Worker) error {
	var intervalSeconds int64
	if err := scan(
		id,
		&worker.Supplier,
		&worker.HostID,
		&worker.Type,
		&worker.Status,
		&intervalSeconds,
		&worker.NextRunAt,
		&worker.CreatedAt,
		&worker.UpdatedAt,
	); err != nil {
		return err
	}
	worker.Interval = time.Duration(intervalSeconds) * time.Second
	return nil
}

func scanWorker(scan scanFunc) (*syncDomain.Worker, error) {
	var worker syncDomain.Worker
	if err := scanWorkerInto(scan, &worker.ID, &worker); err != nil {
		return nil, err
	}
	return &worker, nil
}

// scanMySQLWorker reads a worker whose id is stored as BINARY(16).
func scanMySQLWorker(scan scanFunc) (*syncDomain.Worker, error) {
	var worker syncDomain.Worker
	var idBytes []byte
	if err := scanWorkerInto(scan, &idBytes, &worker); err != nil {
		return nil, err
	}
	if err := worker.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, err
	}
	return &worker, nil
}

func collectWorkers(
	rows *sql.Rows,
	scanRow func(scan scanFunc) (*syncDomain.Worker, error),
) ([]*syncDomain.Worker, error) {
	defer func() {
		_ = rows.Close()
	}()

	workers := make([]*syncDomain.Worker, 0)
	for rows.Next() {
		worker, err := scanRow(rows.Scan)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan sync worker")
		}
		workers = append(workers, worker)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate sync workers")
	}
	return workers, nil
}

func affected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to read affected rows")
	}
	return n == 1, nil
}

func marshalStats(stats syncDomain.Stats) (string, error) {
	data, err := json.Marshal(stats)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to marshal sync stats")
	}
	return string(data), nil
}

func unmarshalStats(data []byte, stats *syncDomain.Stats) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, stats); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal sync stats")
	}
	return nil
}

func scanProcessInto(scan scanFunc, id, workerID any, process *syncDomain.Process) error {
	var stats []byte
	if err := scan(
		id,
		workerID,
		&process.Supplier,
		&process.HostID,
		&process.Type,
		&process.Status,
		&process.Successful,
		&process.Code,
		&process.Message,
		&stats,
		&process.StartedAt,
		&process.FinishedAt,
	); err != nil {
		return apperrors.Wrap(err, "failed to scan sync process")
	}
	return unmarshalStats(stats, &process.Stats)
}
