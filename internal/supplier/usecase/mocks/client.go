// Package mocks provides mock implementations of supplier clients and use cases.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/allisson/concierge/internal/outcome"
	supplierDomain "github.com/allisson/concierge/internal/supplier/domain"
)

// MockClient is a mock implementation of supplierDomain.Client.
type MockClient struct {
	mock.Mock
	SupplierName string
	Rules        supplierDomain.StayRules
	Validators   []supplierDomain.Validator[supplierDomain.Property]
}

// NewMockClient creates a MockClient answering to name.
func NewMockClient(name string) *MockClient {
	return &MockClient{SupplierName: name}
}

// Name returns the configured supplier name.
func (m *MockClient) Name() string {
	return m.SupplierName
}

// StayRules returns the configured rules.
func (m *MockClient) StayRules() supplierDomain.StayRules {
	return m.Rules
}

// PropertyValidators returns the configured validators.
func (m *MockClient) PropertyValidators() []supplierDomain.Validator[supplierDomain.Property] {
	return m.Validators
}

// Quote mocks the Quote method of Client.
func (m *MockClient) Quote(
	ctx context.Context,
	params supplierDomain.StayParams,
) outcome.Result[*supplierDomain.Quotation] {
	args := m.Called(ctx, params)
	return args.Get(0).(outcome.Result[*supplierDomain.Quotation])
}

// Book mocks the Book method of Client.
func (m *MockClient) Book(
	ctx context.Context,
	params supplierDomain.StayParams,
) outcome.Result[*supplierDomain.Reservation] {
	args := m.Called(ctx, params)
	return args.Get(0).(outcome.Result[*supplierDomain.Reservation])
}

// Cancel mocks the Cancel method of Client.
func (m *MockClient) Cancel(
	ctx context.Context,
	params supplierDomain.CancelParams,
) outcome.Result[*supplierDomain.Cancellation] {
	args := m.Called(ctx, params)
	return args.Get(0).(outcome.Result[*supplierDomain.Cancellation])
}

// FetchProperties mocks the FetchProperties method of Client.
func (m *MockClient) FetchProperties(ctx context.Context, hostID string) outcome.Result[[]supplierDomain.Property] {
	args := m.Called(ctx, hostID)
	return args.Get(0).(outcome.Result[[]supplierDomain.Property])
}

// FetchAvailabilities mocks the FetchAvailabilities method of Client.
func (m *MockClient) FetchAvailabilities(
	ctx context.Context,
	hostID string,
) outcome.Result[[]supplierDomain.Availability] {
	args := m.Called(ctx, hostID)
	return args.Get(0).(outcome.Result[[]supplierDomain.Availability])
}
