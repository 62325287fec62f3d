package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	externalErrorDomain "github.com/allisson/concierge/internal/externalerror/domain"
	"github.com/allisson/concierge/internal/outcome"
	supplierDomain "github.com/allisson/concierge/internal/supplier/domain"
	"github.com/allisson/concierge/internal/txcontext"
)

type bookingUseCase struct {
	registry *Registry
	recorder ErrorRecorder
	logger   *slog.Logger
	now      func() time.Time
}

// Quote validates the stay against the supplier's rules and asks the supplier for a price.
// Rule violations are answered without contacting the supplier.
func (b *bookingUseCase) Quote(
	ctx context.Context,
	supplier string,
	params supplierDomain.StayParams,
) outcome.Result[*supplierDomain.Quotation] {
	ctx = withTransactionContext(ctx, externalErrorDomain.OperationQuote)

	return run(ctx, b, externalErrorDomain.OperationQuote, supplier,
		func(client supplierDomain.Client) outcome.Result[*supplierDomain.Quotation] {
			if err := params.Validate(); err != nil {
				return outcome.Fail[*supplierDomain.Quotation](outcome.CodeInvalidParameters, err.Error())
			}
			if code, message := client.StayRules().Check(params, b.now()); code != "" {
				txcontext.FromContext(ctx).Message(message)
				return outcome.Ok(supplierDomain.NewQuotation(client.Name(), params).Reject(code, message))
			}
			return client.Quote(ctx, params)
		},
	)
}

// Book validates the stay and creates a reservation with the supplier.
func (b *bookingUseCase) Book(
	ctx context.Context,
	supplier string,
	params supplierDomain.StayParams,
) outcome.Result[*supplierDomain.Reservation] {
	ctx = withTransactionContext(ctx, externalErrorDomain.OperationBook)

	return run(ctx, b, externalErrorDomain.OperationBook, supplier,
		func(client supplierDomain.Client) outcome.Result[*supplierDomain.Reservation] {
			if err := params.Validate(); err != nil {
				return outcome.Fail[*supplierDomain.Reservation](outcome.CodeInvalidParameters, err.Error())
			}
			if code, message := client.StayRules().Check(params, b.now()); code != "" {
				return outcome.Fail[*supplierDomain.Reservation](code, message)
			}
			return client.Book(ctx, params)
		},
	)
}

// Cancel cancels a reservation with the supplier.
func (b *bookingUseCase) Cancel(
	ctx context.Context,
	supplier string,
	params supplierDomain.CancelParams,
) outcome.Result[*supplierDomain.Cancellation] {
	ctx = withTransactionContext(ctx, externalErrorDomain.OperationCancel)

	return run(ctx, b, externalErrorDomain.OperationCancel, supplier,
		func(client supplierDomain.Client) outcome.Result[*supplierDomain.Cancellation] {
			return client.Cancel(ctx, params)
		},
	)
}

// run resolves the supplier, executes op with panic protection and records any failure.
func run[T any](
	ctx context.Context,
	b *bookingUseCase,
	operation, supplier string,
	op func(client supplierDomain.Client) outcome.Result[T],
) outcome.Result[T] {
	client, ok := b.registry.Get(supplier)
	if !ok {
		return outcome.Fail[T](outcome.CodeUnknownSupplier, fmt.Sprintf("unknown supplier %q", supplier))
	}

	result := outcome.Guard(func() outcome.Result[T] {
		return op(client)
	})
	if result.Success() {
		return result
	}

	b.logger.Warn("supplier operation failed",
		slog.String("operation", operation),
		slog.String("supplier", supplier),
		slog.String("code", string(result.Code())),
		slog.String("message", result.Message()),
	)
	b.recorder.Record(ctx, &externalErrorDomain.ExternalError{
		Operation: operation,
		Supplier:  supplier,
		Code:      string(result.Code()),
		Message:   result.Message(),
	})
	return result
}

// withTransactionContext attaches a fresh transaction context unless the caller
// already carries one.
func withTransactionContext(ctx context.Context, kind string) context.Context {
	if txcontext.FromContext(ctx) != nil {
		return ctx
	}
	return txcontext.WithContext(ctx, txcontext.New(kind))
}

// NewBookingUseCase creates a BookingUseCase.
func NewBookingUseCase(registry *Registry, recorder ErrorRecorder, logger *slog.Logger) BookingUseCase {
	return &bookingUseCase{
		registry: registry,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}
