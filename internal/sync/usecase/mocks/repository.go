// Package mocks provides mock implementations of the sync repositories and use case.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	syncDomain "github.com/allisson/concierge/internal/sync/domain"
)

// MockWorkerRepository is a mock implementation of WorkerRepository.
type MockWorkerRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockWorkerRepository) Create(ctx context.Context, worker *syncDomain.Worker) error {
	args := m.Called(ctx, worker)
	return args.Error(0)
}

// Get mocks the Get method.
func (m *MockWorkerRepository) Get(ctx context.Context, id uuid.UUID) (*syncDomain.Worker, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*syncDomain.Worker), args.Error(1)
}

// GetByIdentity mocks the GetByIdentity method.
func (m *MockWorkerRepository) GetByIdentity(
	ctx context.Context,
	supplier, hostID string,
	workerType syncDomain.WorkerType,
) (*syncDomain.Worker, error) {
	args := m.Called(ctx, supplier, hostID, workerType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*syncDomain.Worker), args.Error(1)
}

// ListByHost mocks the ListByHost method.
func (m *MockWorkerRepository) ListByHost(
	ctx context.Context,
	supplier, hostID string,
) ([]*syncDomain.Worker, error) {
	args := m.Called(ctx, supplier, hostID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*syncDomain.Worker), args.Error(1)
}

// List mocks the List method.
func (m *MockWorkerRepository) List(ctx context.Context, offset, limit int) ([]*syncDomain.Worker, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*syncDomain.Worker), args.Error(1)
}

// Enqueue mocks the Enqueue method.
func (m *MockWorkerRepository) Enqueue(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// Start mocks the Start method.
func (m *MockWorkerRepository) Start(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// Release mocks the Release method.
func (m *MockWorkerRepository) Release(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// Finish mocks the Finish method.
func (m *MockWorkerRepository) Finish(
	ctx context.Context,
	id uuid.UUID,
	status syncDomain.WorkerStatus,
	nextRunAt time.Time,
) error {
	args := m.Called(ctx, id, status, nextRunAt)
	return args.Error(0)
}

// ListDue mocks the ListDue method.
func (m *MockWorkerRepository) ListDue(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*syncDomain.Worker, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*syncDomain.Worker), args.Error(1)
}

// MockProcessRepository is a mock implementation of ProcessRepository.
type MockProcessRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockProcessRepository) Create(ctx context.Context, process *syncDomain.Process) error {
	args := m.Called(ctx, process)
	return args.Error(0)
}

// Finish mocks the Finish method.
func (m *MockProcessRepository) Finish(ctx context.Context, process *syncDomain.Process) error {
	args := m.Called(ctx, process)
	return args.Error(0)
}

// List mocks the List method.
func (m *MockProcessRepository) List(
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
