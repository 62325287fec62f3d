package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	externalErrorDomain "github.com/allisson/concierge/internal/externalerror/domain"
	"github.com/allisson/concierge/internal/outcome"
	supplierDomain "github.com/allisson/concierge/internal/supplier/domain"
	supplierUseCase "github.com/allisson/concierge/internal/supplier/usecase"
	supplierMocks "github.com/allisson/concierge/internal/supplier/usecase/mocks"
	syncDomain "github.com/allisson/concierge/internal/sync/domain"
	"github.com/allisson/concierge/internal/txcontext"
)

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

type syncFixture struct {
	uc        *syncUseCase
	workers   *memoryWorkers
	processes *memoryProcesses
	recorder  *recordingRecorder
	client    *supplierMocks.MockClient
}

func setupSyncUseCase(t *testing.T) *syncFixture {
	t.Helper()
	client := supplierMocks.NewMockClient("kigo")
	t.Cleanup(func() { client.AssertExpectations(t) })

	f := &syncFixture{
		workers:   newMemoryWorkers(),
		processes: newMemoryProcesses(),
		recorder:  &recordingRecorder{},
		client:    client,
	}
	f.uc = NewSyncUseCase(
		f.workers,
		f.processes,
		supplierUseCase.NewRegistry(client),
		f.recorder,
		time.Hour,
		discardLogger(),
	).(*syncUseCase)
	f.uc.now = func() time.Time { return fixedNow }
	return f
}

func (f *syncFixture) queuedWorker(t *testing.T, workerType syncDomain.WorkerType) *syncDomain.Worker {
	t.Helper()
	worker, err := f.uc.CreateWorker(context.Background(), "kigo", "host-1", workerType, 30*time.Minute)
	require.NoError(t, err)
	result, err := f.uc.Enqueue(context.Background(), worker.ID)
	require.NoError(t, err)
	require.True(t, result.Queued)
	return worker
}

func TestSyncUseCase_CreateWorker(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an idle worker with the default interval", func(t *testing.T) {
		f := setupSyncUseCase(t)

		worker, err := f.uc.CreateWorker(ctx, "kigo", "host-1", syncDomain.WorkerTypeMetadata, 0)

		require.NoError(t, err)
		assert.Equal(t, syncDomain.WorkerStatusIdle, worker.Status)
		assert.Equal(t, time.Hour, worker.Interval)
		assert.Equal(t, fixedNow, worker.NextRunAt)
	})

	t.Run("is idempotent per identity", func(t *testing.T) {
		f := setupSyncUseCase(t)

		first, err := f.uc.CreateWorker(ctx, "kigo", "host-1", syncDomain.WorkerTypeMetadata, 0)
		require.NoError(t, err)
		second, err := f.uc.CreateWorker(ctx, "kigo", "host-1", syncDomain.WorkerTypeMetadata, time.Minute)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("rejects unknown suppliers and types", func(t *testing.T) {
		f := setupSyncUseCase(t)

		_, err := f.uc.CreateWorker(ctx, "nope", "host-1", syncDomain.WorkerTypeMetadata, 0)
		assert.ErrorIs(t, err, supplierDomain.ErrUnknownSupplier)

		_, err = f.uc.CreateWorker(ctx, "kigo", "host-1", "photos", 0)
		assert.ErrorIs(t, err, syncDomain.ErrInvalidWorkerType)

		_, err = f.uc.CreateWorker(ctx, "kigo", "", syncDomain.WorkerTypeMetadata, 0)
		assert.Error(t, err)
	})

	t.Run("EnsureWorkers creates one worker per type", func(t *testing.T) {
		f := setupSyncUseCase(t)

		workers, err := f.uc.EnsureWorkers(ctx, "kigo", "host-7")
		require.NoError(t, err)
		require.Len(t, workers, 2)
		assert.Equal(t, syncDomain.WorkerTypeMetadata, workers[0].Type)
		assert.Equal(t, syncDomain.WorkerTypeAvailabilities, workers[1].Type)

		again, err := f.uc.EnsureWorkers(ctx, "kigo", "host-7")
		require.NoError(t, err)
		assert.Equal(t, workers[0].ID, again[0].ID)
	})
}

func TestSyncUseCase_Enqueue(t *testing.T) {
	ctx := context.Background()

	t.Run("idle worker is queued", func(t *testing.T) {
		f := setupSyncUseCase(t)
		worker, err := f.uc.CreateWorker(ctx, "kigo", "host-1", syncDomain.WorkerTypeMetadata, 0)
		require.NoError(t, err)

		result, err := f.uc.Enqueue(ctx, worker.ID)

		require.NoError(t, err)
		assert.Equal(t, syncDomain.EnqueueResult{Queued: true, Status: syncDomain.WorkerStatusQueued}, result)
		assert.Equal(t, syncDomain.WorkerStatusQueued, f.workers.status(worker.ID))
	})

	t.Run("active worker is rejected with its status", func(t *testing.T) {
		f := setupSyncUseCase(t)
		worker := f.queuedWorker(t, syncDomain.WorkerTypeMetadata)

		result, err := f.uc.Enqueue(ctx, worker.ID)

		require.NoError(t, err)
		assert.False(t, result.Queued)
		assert.Equal(t, syncDomain.WorkerStatusQueued, result.Status)
		assert.Equal(t, "cannot be queued, current status is queued", result.Reason)
	})

	t.Run("missing worker", func(t *testing.T) {
		f := setupSyncUseCase(t)

		_, err := f.uc.Enqueue(ctx, uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, syncDomain.ErrWorkerNotFound)
	})

	t.Run("concurrent attempts queue exactly once", func(t *testing.T) {
		f := setupSyncUseCase(t)
		worker, err := f.uc.CreateWorker(ctx, "kigo", "host-1", syncDomain.WorkerTypeMetadata, 0)
		require.NoError(t, err)

		var wg sync.WaitGroup
		var mu sync.Mutex
		queued := 0
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				result, err := f.uc.Enqueue(ctx, worker.ID)
				if err == nil && result.Queued {
					mu.Lock()
					queued++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, queued)
	})
}

func TestSyncUseCase_Run(t *testing.T) {
	t.Run("successful metadata sync counts skipped properties", func(t *testing.T) {
		f := setupSyncUseCase(t)
		f.client.Validators = []supplierDomain.Validator[supplierDomain.Property]{
			supplierDomain.ValidatorFunc[supplierDomain.Property](func(p supplierDomain.Property) bool { return p.Active }),
		}
		worker := f.queuedWorker(t, syncDomain.WorkerTypeMetadata)

		f.client.On("FetchProperties", mock.Anything, "host-1").
			Return(outcome.Ok([]supplierDomain.Property{
				{ID: "a", Active: true}, {ID: "b", Active: false}, {ID: "c", Active: true},
			})).
			Once()

		process, err := f.uc.Run(context.Background(), worker.ID)

		require.NoError(t, err)
		assert.True(t, process.Successful)
		assert.Equal(t, syncDomain.WorkerStatusSuccess, process.Status)
		assert.Equal(t, syncDomain.Stats{Properties: 2, Skipped: 1}, process.Stats)
		require.NotNil(t, process.FinishedAt)

		stored, ok := f.processes.get(process.ID)
		require.True(t, ok)
		assert.Equal(t, syncDomain.WorkerStatusSuccess, stored.Status)

		current, err := f.workers.Get(context.Background(), worker.ID)
		require.NoError(t, err)
		assert.Equal(t, syncDomain.WorkerStatusSuccess, current.Status)
		assert.Equal(t, fixedNow.Add(30*time.Minute), current.NextRunAt)
		assert.Zero(t, f.recorder.count())
	})

	t.Run("supplier failure ends failed and is recorded with the event log", func(t *testing.T) {
		f := setupSyncUseCase(t)
		worker := f.queuedWorker(t, syncDomain.WorkerTypeAvailabilities)

		f.client.On("FetchAvailabilities", mock.Anything, "host-1").
			Run(func(args mock.Arguments) {
				ctx := args.Get(0).(context.Context)
				txcontext.FromContext(ctx).NetworkFailure("dial tcp: i/o timeout")
			}).
			Return(outcome.Fail[[]supplierDomain.Availability](outcome.CodeConnectionTimeout, "timed out")).
			Once()

		process, err := f.uc.Run(context.Background(), worker.ID)

		require.NoError(t, err)
		assert.False(t, process.Successful)
		assert.Equal(t, syncDomain.WorkerStatusFailed, process.Status)
		assert.Equal(t, "connection_timeout", process.Code)
		assert.Equal(t, syncDomain.WorkerStatusFailed, f.workers.status(worker.ID))

		require.Equal(t, 1, f.recorder.count())
		record := f.recorder.records[0]
		assert.Equal(t, externalErrorDomain.OperationSyncAvailabilities, record.Operation)
		assert.Equal(t, "kigo", record.Supplier)
		assert.Equal(t, "connection_timeout", record.Code)

		labels := make([]string, 0)
		for _, e := range f.recorder.events[0] {
			labels = append(labels, e.Label)
		}
		assert.Equal(t, []string{
			txcontext.LabelSyncStarted,
			txcontext.LabelNetworkFailure,
			txcontext.LabelSyncFinished,
		}, labels)
	})

	t.Run("panic in the supplier client still finishes the worker", func(t *testing.T) {
		f := setupSyncUseCase(t)
		worker := f.queuedWorker(t, syncDomain.WorkerTypeMetadata)

		f.client.On("FetchProperties", mock.Anything, "host-1").
			Run(func(mock.Arguments) { panic("nil map") }).
			Once()

		process, err := f.uc.Run(context.Background(), worker.ID)

		require.NoError(t, err)
		assert.Equal(t, syncDomain.WorkerStatusFailed, process.Status)
		assert.Equal(t, string(outcome.CodeUnexpectedError), process.Code)
		assert.Equal(t, syncDomain.WorkerStatusFailed, f.workers.status(worker.ID))
		assert.Equal(t, 1, f.recorder.count())
	})

	t.Run("process storage failure still finishes the worker", func(t *testing.T) {
		f := setupSyncUseCase(t)
		f.processes.createErr = errors.New("database is down")
		worker := f.queuedWorker(t, syncDomain.WorkerTypeMetadata)

		process, err := f.uc.Run(context.Background(), worker.ID)

		require.NoError(t, err)
		assert.Equal(t, syncDomain.WorkerStatusFailed, process.Status)
		assert.Contains(t, process.Message, "database is down")
		assert.Equal(t, syncDomain.WorkerStatusFailed, f.workers.status(worker.ID))
	})

	t.Run("failed start releases the queued worker", func(t *testing.T) {
		f := setupSyncUseCase(t)
		worker := f.queuedWorker(t, syncDomain.WorkerTypeMetadata)
		f.workers.startErrs = []error{errors.New("connection reset")}

		_, err := f.uc.Run(context.Background(), worker.ID)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
		assert.Equal(t, syncDomain.WorkerStatusFailed, f.workers.status(worker.ID))

		result, err := f.uc.Enqueue(context.Background(), worker.ID)
		require.NoError(t, err)
		assert.True(t, result.Queued)

		f.client.On("FetchProperties", mock.Anything, "host-1").
			Return(outcome.Ok([]supplierDomain.Property{})).
			Once()

		process, err := f.uc.Run(context.Background(), worker.ID)
		require.NoError(t, err)
		assert.True(t, process.Successful)
		assert.Equal(t, syncDomain.WorkerStatusSuccess, f.workers.status(worker.ID))
	})

	t.Run("failed worker lookup releases the queued worker", func(t *testing.T) {
		f := setupSyncUseCase(t)
		worker := f.queuedWorker(t, syncDomain.WorkerTypeAvailabilities)
		f.workers.getErrs = []error{errors.New("connection reset")}

		_, err := f.uc.Run(context.Background(), worker.ID)

		require.Error(t, err)
		assert.Equal(t, syncDomain.WorkerStatusFailed, f.workers.status(worker.ID))
		assert.Zero(t, f.recorder.count())
	})

	t.Run("worker that is not queued does not run", func(t *testing.T) {
		f := setupSyncUseCase(t)
		worker, err := f.uc.CreateWorker(context.Background(), "kigo", "host-1", syncDomain.WorkerTypeMetadata, 0)
		require.NoError(t, err)

		_, err = f.uc.Run(context.Background(), worker.ID)

		assert.ErrorIs(t, err, syncDomain.ErrWorkerNotQueued)
		assert.Contains(t, err.Error(), "current status is idle")
		assert.Equal(t, syncDomain.WorkerStatusIdle, f.workers.status(worker.ID))
	})

	t.Run("run ignores the caller's cancellation", func(t *testing.T) {
		f := setupSyncUseCase(t)
		worker := f.queuedWorker(t, syncDomain.WorkerTypeAvailabilities)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		f.client.On("FetchAvailabilities", mock.MatchedBy(func(ctx context.Context) bool {
			return ctx.Err() == nil
		}), "host-1").
			Return(outcome.Ok([]supplierDomain.Availability{{PropertyID: "a"}})).
			Once()

		process, err := f.uc.Run(ctx, worker.ID)

		require.NoError(t, err)
		assert.True(t, process.Successful)
		assert.Equal(t, 1, process.Stats.Availabilities)
	})

	t.Run("worker can be queued again after finishing", func(t *testing.T) {
		f := setupSyncUseCase(t)
		worker := f.queuedWorker(t, syncDomain.WorkerTypeAvailabilities)
		f.client.On("FetchAvailabilities", mock.Anything, "host-1").
			Return(outcome.Ok([]supplierDomain.Availability{})).
			Once()

		_, err := f.uc.Run(context.Background(), worker.ID)
		require.NoError(t, err)

		result, err := f.uc.Enqueue(context.Background(), worker.ID)
		require.NoError(t, err)
		assert.True(t, result.Queued)
	})
}
