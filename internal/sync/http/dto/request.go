// Package dto provides data transfer objects for sync worker HTTP requests and responses.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	syncDomain "github.com/allisson/concierge/internal/sync/domain"
	customValidation "github.com/allisson/concierge/internal/validation"
)

// CreateSyncWorkerRequest contains the parameters for registering a sync worker.
type CreateSyncWorkerRequest struct {
	Supplier        string `json:"supplier"`
	HostID          string `json:"host_id"`
	Type            string `json:"type"` // "metadata" or "availabilities"
	IntervalMinutes int    `json:"interval_minutes"`
}

// Validate checks if the create sync worker request is valid.
func (r *CreateSyncWorkerRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Supplier, validation.Required, customValidation.Slug, validation.Length(1, 64)),
		validation.Field(&r.HostID,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
			validation.Length(1, 255),
		),
		validation.Field(&r.Type,
			validation.Required,
			validation.In(string(syncDomain.WorkerTypeMetadata), string(syncDomain.WorkerTypeAvailabilities)),
		),
		validation.Field(&r.IntervalMinutes, validation.Min(0), validation.Max(7*24*60)),
	)
}

// Interval returns the requested interval. Zero selects the default.
func (r *CreateSyncWorkerRequest) Interval() time.Duration {
	return time.Duration(r.IntervalMinutes) * time.Minute
}

// WebhookRequest is the body a supplier posts to signal changed inventory.
type WebhookRequest struct {
	HostID string `json:"host_id"`
}

// Validate checks if the webhook request is valid.
func (r *WebhookRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.HostID,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
			validation.Length(1, 255),
		),
	)
}
