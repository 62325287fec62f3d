package domain

import (
	apperrors "github.com/allisson/concierge/internal/errors"
)

// Sync-specific error definitions.
var (
	// ErrWorkerNotFound indicates the worker does not exist.
	ErrWorkerNotFound = apperrors.Wrap(apperrors.ErrNotFound, "sync worker not found")

	// ErrWorkerAlreadyExists indicates a worker with the same identity exists.
	ErrWorkerAlreadyExists = apperrors.Wrap(apperrors.ErrConflict, "sync worker already exists")

	// ErrWorkerNotQueued indicates Run was called on a worker that is not queued.
	ErrWorkerNotQueued = apperrors.Wrap(apperrors.ErrConflict, "sync worker is not queued")

	// ErrInvalidWorkerType indicates an unknown worker type.
	ErrInvalidWorkerType = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid sync worker type")
)
