package domain

import (
	apperrors "github.com/allisson/concierge/internal/errors"
)

// Supplier-specific error definitions.
var (
	// ErrUnknownSupplier indicates the supplier name has no registered client.
	ErrUnknownSupplier = apperrors.Wrap(apperrors.ErrNotFound, "unknown supplier")

	// ErrInvalidStay indicates the stay parameters are structurally invalid.
	ErrInvalidStay = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid stay parameters")
)
