package dto

import (
	"time"

	syncDomain "github.com/allisson/concierge/internal/sync/domain"
)

// SyncWorkerResponse represents a sync worker in API responses.
type SyncWorkerResponse struct {
	ID              string    `json:"id"`
	Supplier        string    `json:"supplier"`
	HostID          string    `json:"host_id"`
	Type            string    `json:"type"`
	Status          string    `json:"status"`
	IntervalMinutes int       `json:"interval_minutes"`
	NextRunAt       time.Time `json:"next_run_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ListSyncWorkersResponse represents a page of sync workers.
type ListSyncWorkersResponse struct {
	Data []SyncWorkerResponse `json:"data"`
}

// EnqueueResponse reports the outcome of a resync request.
type EnqueueResponse struct {
	Queued bool   `json:"queued"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// WebhookResponse acknowledges a webhook.
type WebhookResponse struct {
	Accepted bool   `json:"accepted"`
	Event    string `json:"event"`
}

// SyncProcessResponse represents a sync process in API responses.
type SyncProcessResponse struct {
	ID         string           `json:"id"`
	WorkerID   string           `json:"worker_id"`
	Supplier   string           `json:"supplier"`
	HostID     string           `json:"host_id"`
	Type       string           `json:"type"`
	Status     string           `json:"status"`
	Successful bool             `json:"successful"`
	Code       string           `json:"code,omitempty"`
	Message    string           `json:"message,omitempty"`
	Stats      syncDomain.Stats `json:"stats"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
}

// ListSyncProcessesResponse represents a page of sync processes.
type ListSyncProcessesResponse struct {
	Data []SyncProcessResponse `json:"data"`
}

// MapSyncWorkerToResponse converts a domain worker to an API response.
func MapSyncWorkerToResponse(w *syncDomain.Worker) SyncWorkerResponse {
	return SyncWorkerResponse{
		ID:              w.ID.String(),
		Supplier:        w.Supplier,
		HostID:          w.HostID,
		Type:            string(w.Type),
		Status:          string(w.Status),
		IntervalMinutes: int(w.Interval / time.Minute),
		NextRunAt:       w.NextRunAt,
		CreatedAt:       w.CreatedAt,
		UpdatedAt:       w.UpdatedAt,
	}
}

// MapSyncWorkersToListResponse converts domain workers to a list response.
func MapSyncWorkersToListResponse(workers []*syncDomain.Worker) ListSyncWorkersResponse {
	data := make([]SyncWorkerResponse, 0, len(workers))
	for _, w := range workers {
		data = append(data, MapSyncWorkerToResponse(w))
	}
	return ListSyncWorkersResponse{Data: data}
}

// MapEnqueueResultToResponse converts an enqueue result to an API response.
func MapEnqueueResultToResponse(result syncDomain.EnqueueResult) EnqueueResponse {
	return EnqueueResponse{
		Queued: result.Queued,
		Status: string(result.Status),
		Reason: result.Reason,
	}
}

// MapSyncProcessToResponse converts a domain process to an API response.
func MapSyncProcessToResponse(p *syncDomain.Process) SyncProcessResponse {
	return SyncProcessResponse{
		ID:         p.ID.String(),
		WorkerID:   p.WorkerID.String(),
		Supplier:   p.Supplier,
		HostID:     p.HostID,
		Type:       string(p.Type),
		Status:     string(p.Status),
		Successful: p.Successful,
		Code:       p.Code,
		Message:    p.Message,
		Stats:      p.Stats,
		StartedAt:  p.StartedAt,
		FinishedAt: p.FinishedAt,
	}
}

// MapSyncProcessesToListResponse converts domain processes to a list response.
func MapSyncProcessesToListResponse(processes []*syncDomain.Process) ListSyncProcessesResponse {
	data := make([]SyncProcessResponse, 0, len(processes))
	for _, p := range processes {
		data = append(data, MapSyncProcessToResponse(p))
	}
	return ListSyncProcessesResponse{Data: data}
}
