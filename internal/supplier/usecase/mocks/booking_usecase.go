package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/allisson/concierge/internal/outcome"
	supplierDomain "github.com/allisson/concierge/internal/supplier/domain"
)

// MockBookingUseCase is a mock implementation of BookingUseCase.
type MockBookingUseCase struct {
	mock.Mock
}

// Quote mocks the Quote method of BookingUseCase.
func (m *MockBookingUseCase) Quote(
	ctx context.Context,
	supplier string,
	params supplierDomain.StayParams,
) outcome.Result[*supplierDomain.Quotation] {
	args := m.Called(ctx, supplier, params)
	return args.Get(0).(outcome.Result[*supplierDomain.Quotation])
}

// Book mocks the Book method of BookingUseCase.
func (m *MockBookingUseCase) Book(
	ctx context.Context,
	supplier string,
	params supplierDomain.StayParams,
) outcome.Result[*supplierDomain.Reservation] {
	args := m.Called(ctx, supplier, params)
	return args.Get(0).(outcome.Result[*supplierDomain.Reservation])
}

// Cancel mocks the Cancel method of BookingUseCase.
func (m *MockBookingUseCase) Cancel(
	ctx context.Context,
	supplier string,
	params supplierDomain.CancelParams,
) outcome.Result[*supplierDomain.Cancellation] {
	args := m.Called(ctx, supplier, params)
	return args.Get(0).(outcome.Result[*supplierDomain.Cancellation])
}
