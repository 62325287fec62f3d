package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	externalErrorDomain "github.com/allisson/concierge/internal/externalerror/domain"
	"github.com/allisson/concierge/internal/txcontext"
)

type externalErrorUseCase struct {
	repo   ExternalErrorRepository
	logger *slog.Logger
	now    func() time.Time
}

// Record fills in the identifier, timestamp and the event log of the transaction
// context found in ctx before appending the record.
func (e *externalErrorUseCase) Record(ctx context.Context, externalError *externalErrorDomain.ExternalError) {
	if externalError.ID == uuid.Nil {
		externalError.ID = uuid.Must(uuid.NewV7())
	}
	if externalError.HappenedAt.IsZero() {
		externalError.HappenedAt = e.now().UTC()
	}
	if externalError.Context == "" {
		if tc := txcontext.FromContext(ctx); tc != nil {
			payload, err := tc.JSON()
			if err != nil {
				e.logger.Warn("failed to serialize transaction context", slog.Any("error", err))
			}
			externalError.Context = payload
		}
	}

	// The failed flow may have been cancelled; the record must still be written.
	if err := e.repo.Create(context.WithoutCancel(ctx), externalError); err != nil {
		e.logger.Error("failed to record external error",
			slog.String("operation", externalError.Operation),
			slog.String("supplier", externalError.Supplier),
			slog.String("code", externalError.Code),
			slog.String("message", externalError.Message),
			slog.Any("error", err),
		)
		return
	}

	e.logger.Info("external error recorded",
		slog.String("id", externalError.ID.String()),
		slog.String("operation", externalError.Operation),
		slog.String("supplier", externalError.Supplier),
		slog.String("code", externalError.Code),
	)
}

// List returns external errors newest first.
func (e *externalErrorUseCase) List(
	ctx context.Context,
	filter externalErrorDomain.Filter,
	offset, limit int,
) ([]*externalErrorDomain.ExternalError, error) {
	return e.repo.List(ctx, filter, offset, limit)
}

// NewExternalErrorUseCase creates an ExternalErrorUseCase.
func NewExternalErrorUseCase(repo ExternalErrorRepository, logger *slog.Logger) ExternalErrorUseCase {
	return &externalErrorUseCase{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}
