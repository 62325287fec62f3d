package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	syncDomain "github.com/allisson/concierge/internal/sync/domain"
)

// MockSyncUseCase is a mock implementation of SyncUseCase.
type MockSyncUseCase struct {
	mock.Mock
}

// CreateWorker mocks the CreateWorker method.
func (m *MockSyncUseCase) CreateWorker(
	ctx context.Context,
	supplier, hostID string,
	workerType syncDomain.WorkerType,
	interval time.Duration,
) (*syncDomain.Worker, error) {
	args := m.Called(ctx, supplier, hostID, workerType, interval)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*syncDomain.Worker), args.Error(1)
}

// EnsureWorkers mocks the EnsureWorkers method.
func (m *MockSyncUseCase) EnsureWorkers(ctx context.Context, supplier, hostID string) ([]*syncDomain.Worker, error) {
	args := m.Called(ctx, supplier, hostID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*syncDomain.Worker), args.Error(1)
}

// GetWorker mocks the GetWorker method.
func (m *MockSyncUseCase) GetWorker(ctx context.Context, id uuid.UUID) (*syncDomain.Worker, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*syncDomain.Worker), args.Error(1)
}

// ListWorkers mocks the ListWorkers method.
func (m *MockSyncUseCase) ListWorkers(ctx context.Context, offset, limit int) ([]*syncDomain.Worker, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*syncDomain.Worker), args.Error(1)
}

// Enqueue mocks the Enqueue method.
func (m *MockSyncUseCase) Enqueue(ctx context.Context, id uuid.UUID) (syncDomain.EnqueueResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(syncDomain.EnqueueResult), args.Error(1)
}

// Run mocks the Run method.
func (m *MockSyncUseCase) Run(ctx context.Context, id uuid.UUID) (*syncDomain.Process, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*syncDomain.Process), args.Error(1)
}

// ListProcesses mocks the ListProcesses method.
func (m *MockSyncUseCase) ListProcesses(
	ctx context.Context,
	filter syncDomain.ProcessFilter,
	offset, limit int,
) ([]*syncDomain.Process, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*syncDomain.Process), args.Error(1)
}
