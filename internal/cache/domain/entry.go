// Package domain defines the cache entry persisted by the cache use case.
package domain

import (
	"time"

	apperrors "github.com/allisson/concierge/internal/errors"
)

// ErrEntryNotFound indicates no entry exists for a (namespace, key) pair.
var ErrEntryNotFound = apperrors.Wrap(apperrors.ErrNotFound, "cache entry not found")

// Entry is a serialized value stored under a (namespace, key) pair. Entries never
// expire on their own; callers that need freshness encode it in the value.
type Entry struct {
	Namespace string
	Key       string
	Value     string
	UpdatedAt time.Time
}
