package usecase

import (
	"context"

	externalErrorDomain "github.com/allisson/concierge/internal/externalerror/domain"
	"github.com/allisson/concierge/internal/outcome"
	supplierDomain "github.com/allisson/concierge/internal/supplier/domain"
)

// ErrorRecorder persists failed supplier interactions.
type ErrorRecorder interface {
	Record(ctx context.Context, externalError *externalErrorDomain.ExternalError)
}

// BookingUseCase runs live supplier operations on behalf of API callers.
// Every method returns a terminal Result; failures are recorded before returning.
type BookingUseCase interface {
	Quote(ctx context.Context, supplier string, params supplierDomain.StayParams) outcome.Result[*supplierDomain.Quotation]
	Book(ctx context.Context, supplier string, params supplierDomain.StayParams) outcome.Result[*supplierDomain.Reservation]
	Cancel(
		ctx context.Context,
		supplier string,
		params supplierDomain.CancelParams,
	) outcome.Result[*supplierDomain.Cancellation]
}
