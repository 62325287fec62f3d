// Package usecase records and lists external errors.
package usecase

import (
	"context"

	externalErrorDomain "github.com/allisson/concierge/internal/externalerror/domain"
)

// ExternalErrorRepository persists external errors.
type ExternalErrorRepository interface {
	Create(ctx context.Context, externalError *externalErrorDomain.ExternalError) error
	List(
		ctx context.Context,
		filter externalErrorDomain.Filter,
		offset, limit int,
	) ([]*externalErrorDomain.ExternalError, error)
}

// ExternalErrorUseCase records supplier failures and exposes them for inspection.
type ExternalErrorUseCase interface {
	// Record appends a failure. It never returns an error: storage problems are
	// logged so that recording can never break the flow that failed.
	Record(ctx context.Context, externalError *externalErrorDomain.ExternalError)

	// List returns failures newest first.
	List(
		ctx context.Context,
		filter externalErrorDomain.Filter,
		offset, limit int,
	) ([]*externalErrorDomain.ExternalError, error)
}
