// Package mocks provides mock implementations of the external error use case.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	externalErrorDomain "github.com/allisson/concierge/internal/externalerror/domain"
)

// MockExternalErrorUseCase is a mock implementation of ExternalErrorUseCase.
type MockExternalErrorUseCase struct {
	mock.Mock
}

// Record mocks the Record method of ExternalErrorUseCase.
func (m *MockExternalErrorUseCase) Record(ctx context.Context, externalError *externalErrorDomain.ExternalError) {
	m.Called(ctx, externalError)
}

// List mocks the List method of ExternalErrorUseCase.
func (m *MockExternalErrorUseCase) List(
	ctx context.Context,
	filter externalErrorDomain.Filter,
	offset, limit int,
) ([]*externalErrorDomain.ExternalError, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*externalErrorDomain.ExternalError), args.Error(1)
}
