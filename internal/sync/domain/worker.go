// Package domain defines the sync worker state machine and the processes it records.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WorkerType selects what a worker synchronizes.
type WorkerType string

const (
	WorkerTypeMetadata       WorkerType = "metadata"
	WorkerTypeAvailabilities WorkerType = "availabilities"
)

// WorkerTypes lists every worker type in sync order. Metadata runs before availabilities.
var WorkerTypes = []WorkerType{WorkerTypeMetadata, WorkerTypeAvailabilities}

// ParseWorkerType validates a worker type name.
func ParseWorkerType(value string) (WorkerType, error) {
	switch t := WorkerType(value); t {
	case WorkerTypeMetadata, WorkerTypeAvailabilities:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidWorkerType, value)
}

// WorkerStatus is a state of the worker lifecycle:
//
//	idle -> queued -> running -> success | failed
//	success | failed -> queued
type WorkerStatus string

const (
	WorkerStatusIdle    WorkerStatus = "idle"
	WorkerStatusQueued  WorkerStatus = "queued"
	WorkerStatusRunning WorkerStatus = "running"
	WorkerStatusSuccess WorkerStatus = "success"
	WorkerStatusFailed  WorkerStatus = "failed"
)

// Enqueueable reports whether a worker in this status may be queued.
func (s WorkerStatus) Enqueueable() bool {
	return s != WorkerStatusQueued && s != WorkerStatusRunning
}

// ActiveStatuses are the statuses that block a new enqueue.
var ActiveStatuses = []WorkerStatus{WorkerStatusQueued, WorkerStatusRunning}

// Worker is the persistent sync unit for one (supplier, host, type) identity.
type Worker struct {
	ID        uuid.UUID
	Supplier  string
	HostID    string
	Type      WorkerType
	Status    WorkerStatus
	Interval  time.Duration
	NextRunAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EventName returns the announcer event that triggers this worker.
func (w *Worker) EventName() string {
	return EventName(w.Supplier)
}

// EventName returns the announcer event for a supplier, e.g. "sync.kigo".
func EventName(supplier string) string {
	return "sync." + supplier
}

// EnqueueResult reports the outcome of an enqueue attempt.
type EnqueueResult struct {
	Queued bool
	Status WorkerStatus
	Reason string
}

// Rejected builds the result of an enqueue refused because of the current status.
func Rejected(status WorkerStatus) EnqueueResult {
	return EnqueueResult{
		Status: status,
		Reason: fmt.Sprintf("cannot be queued, current status is %s", status),
	}
}

// SyncRequest is the payload the scheduler publishes to run one worker type for a host.
// Webhooks publish the bare host identifier instead, which runs every type the host has.
type SyncRequest struct {
	HostID string
	Type   WorkerType
}
