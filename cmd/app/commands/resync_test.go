package commands

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	syncDomain "github.com/allisson/concierge/internal/sync/domain"
	syncMocks "github.com/allisson/concierge/internal/sync/usecase/mocks"
)

func TestRunResync(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	workerID := uuid.Must(uuid.NewV7())

	t.Run("text-output", func(t *testing.T) {
		mockUseCase := &syncMocks.MockSyncUseCase{}
		mockUseCase.On("Enqueue", ctx, workerID).
			Return(syncDomain.EnqueueResult{Queued: true, Status: syncDomain.WorkerStatusQueued}, nil)
		mockUseCase.On("Run", ctx, workerID).Return(&syncDomain.Process{
			WorkerID:   workerID,
			Supplier:   "kigo",
			HostID:     "42",
			Type:       syncDomain.WorkerTypeMetadata,
			Status:     syncDomain.WorkerStatusSuccess,
			Successful: true,
			Stats:      syncDomain.Stats{Properties: 3, Skipped: 1},
		}, nil)

		var out bytes.Buffer
		err := RunResync(ctx, mockUseCase, logger, &out, workerID.String(), "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "finished with status success")
		require.Contains(t, out.String(), "Properties: 3, availabilities: 0, skipped: 1")
		require.NotContains(t, out.String(), "Error:")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("json-output-failed-run", func(t *testing.T) {
		mockUseCase := &syncMocks.MockSyncUseCase{}
		mockUseCase.On("Enqueue", ctx, workerID).
			Return(syncDomain.EnqueueResult{Queued: true, Status: syncDomain.WorkerStatusQueued}, nil)
		mockUseCase.On("Run", ctx, workerID).Return(&syncDomain.Process{
			WorkerID: workerID,
			Supplier: "saw",
			Type:     syncDomain.WorkerTypeAvailabilities,
			Status:   syncDomain.WorkerStatusFailed,
			Code:     "connection_timeout",
			Message:  "timed out",
		}, nil)

		var out bytes.Buffer
		err := RunResync(ctx, mockUseCase, logger, &out, workerID.String(), "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"status": "failed"`)
		require.Contains(t, out.String(), `"code": "connection_timeout"`)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("already-running", func(t *testing.T) {
		mockUseCase := &syncMocks.MockSyncUseCase{}
		mockUseCase.On("Enqueue", ctx, workerID).
			Return(syncDomain.Rejected(syncDomain.WorkerStatusRunning), nil)

		err := RunResync(ctx, mockUseCase, logger, &bytes.Buffer{}, workerID.String(), "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "cannot be queued, current status is running")
		mockUseCase.AssertNotCalled(t, "Run", ctx, workerID)
	})

	t.Run("enqueue-error", func(t *testing.T) {
		mockUseCase := &syncMocks.MockSyncUseCase{}
		mockUseCase.On("Enqueue", ctx, workerID).
			Return(syncDomain.EnqueueResult{}, errors.New("database down"))

		err := RunResync(ctx, mockUseCase, logger, &bytes.Buffer{}, workerID.String(), "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to enqueue sync worker")
	})

	t.Run("invalid-id", func(t *testing.T) {
		mockUseCase := &syncMocks.MockSyncUseCase{}
		err := RunResync(ctx, mockUseCase, logger, &bytes.Buffer{}, "not-a-uuid", "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid worker id")
	})

	t.Run("invalid-format", func(t *testing.T) {
		mockUseCase := &syncMocks.MockSyncUseCase{}
		err := RunResync(ctx, mockUseCase, logger, &bytes.Buffer{}, workerID.String(), "yaml")

		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid format")
	})
}
