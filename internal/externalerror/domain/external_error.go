// Package domain defines the ExternalError record, the append-only log of failed
// supplier interactions.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Operation names recorded with an external error.
const (
	OperationQuote              = "quote"
	OperationBook               = "book"
	OperationCancel             = "cancel"
	OperationSyncMetadata       = "sync_metadata"
	OperationSyncAvailabilities = "sync_availabilities"
)

// ExternalError is a persisted failure of a supplier interaction together with the
// transaction context event log that led to it. Records are never updated.
type ExternalError struct {
	ID         uuid.UUID
	Operation  string
	Supplier   string
	Code       string
	Message    string
	Context    string
	HappenedAt time.Time
}

// Filter narrows List results. Empty fields match everything.
type Filter struct {
	Supplier string
	Code     string
}
