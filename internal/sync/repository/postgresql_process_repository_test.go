package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syncDomain "github.com/allisson/concierge/internal/sync/domain"
)

var processColumnNames = []string{
	"id", "worker_id", "supplier", "host_id", "type", "status", "successful", "code", "message", "stats",
	"started_at", "finished_at",
}

func TestPostgreSQLProcessRepository_CreateAndFinish(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLProcessRepository(db)
	startedAt := time.Now().UTC()
	process := &syncDomain.Process{
		ID:        uuid.Must(uuid.NewV7()),
		WorkerID:  uuid.Must(uuid.NewV7()),
		Supplier:  "kigo",
		HostID:    "host-1",
		Type:      syncDomain.WorkerTypeMetadata,
		Status:    syncDomain.WorkerStatusRunning,
		StartedAt: startedAt,
	}

	mock.ExpectExec(`INSERT INTO sync_processes`).
		WithArgs(process.ID, process.WorkerID, "kigo", "host-1", process.Type, process.Status, false, "", "",
			`{"properties":0,"availabilities":0,"skipped":0}`, startedAt, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(context.Background(), process))

	finishedAt := startedAt.Add(time.Minute)
	process.Status = syncDomain.WorkerStatusSuccess
	process.Successful = true
	process.Stats = syncDomain.Stats{Properties: 12, Skipped: 2}
	process.FinishedAt = &finishedAt

	mock.ExpectExec(`UPDATE sync_processes`).
		WithArgs(process.Status, true, "", "", `{"properties":12,"availabilities":0,"skipped":2}`,
			&finishedAt, process.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Finish(context.Background(), process))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLProcessRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLProcessRepository(db)
	id := uuid.Must(uuid.NewV7())
	workerID := uuid.Must(uuid.NewV7())
	now := time.Now().UTC()

	t.Run("Success_WithFilters", func(t *testing.T) {
		rows := sqlmock.NewRows(processColumnNames).AddRow(
			id.String(), workerID.String(), "saw", "host-9", "availabilities", "failed", false,
			"connection_timeout", "timed out", `{"properties":0,"availabilities":0,"skipped":0}`, now, now,
		)
		mock.ExpectQuery(`FROM sync_processes WHERE supplier = \$1 AND worker_id = \$2 ORDER BY started_at DESC LIMIT \$3 OFFSET \$4`).
			WithArgs("saw", workerID, 20, 40).
			WillReturnRows(rows)

		processes, err := repo.List(
			context.Background(),
			syncDomain.ProcessFilter{Supplier: "saw", WorkerID: workerID},
			40, 20,
		)
		require.NoError(t, err)
		require.Len(t, processes, 1)
		assert.Equal(t, id, processes[0].ID)
		assert.Equal(t, workerID, processes[0].WorkerID)
		assert.Equal(t, "connection_timeout", processes[0].Code)
		require.NotNil(t, processes[0].FinishedAt)
	})

	t.Run("Success_Unfinished", func(t *testing.T) {
		rows := sqlmock.NewRows(processColumnNames).AddRow(
			id.String(), workerID.String(), "kigo", "host-1", "metadata", "running", false,
			"", "", `{"properties":3,"availabilities":0,"skipped":1}`, now, nil,
		)
		mock.ExpectQuery(`FROM sync_processes ORDER BY started_at DESC LIMIT \$1 OFFSET \$2`).
			WithArgs(50, 0).
			WillReturnRows(rows)

		processes, err := repo.List(context.Background(), syncDomain.ProcessFilter{}, 0, 50)
		require.NoError(t, err)
		require.Len(t, processes, 1)
		assert.Nil(t, processes[0].FinishedAt)
		assert.Equal(t, 3, processes[0].Stats.Properties)
		assert.Equal(t, 1, processes[0].Stats.Skipped)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
