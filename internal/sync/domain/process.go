package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stats counts the records seen by a sync run.
type Stats struct {
	Properties     int `json:"properties"`
	Availabilities int `json:"availabilities"`
	Skipped        int `json:"skipped"`
}

// Process is the append-only record of one worker run.
// It references its worker by ID only.
type Process struct {
	ID         uuid.UUID
	WorkerID   uuid.UUID
	Supplier   string
	HostID     string
	Type       WorkerType
	Status     WorkerStatus
	Successful bool
	Code       string
	Message    string
	Stats      Stats
	StartedAt  time.Time
	FinishedAt *time.Time
}

// ProcessFilter narrows process listings.
type ProcessFilter struct {
	Supplier string
	WorkerID uuid.UUID
}
