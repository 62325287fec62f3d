// Package http provides HTTP handlers for sync workers, supplier webhooks and sync processes.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/allisson/concierge/internal/errors"
	"github.com/allisson/concierge/internal/httputil"
	syncDomain "github.com/allisson/concierge/internal/sync/domain"
	"github.com/allisson/concierge/internal/sync/http/dto"
	syncUseCase "github.com/allisson/concierge/internal/sync/usecase"
	customValidation "github.com/allisson/concierge/internal/validation"
)

// Runner starts a queued worker in the background.
type Runner interface {
	Dispatch(ctx context.Context, id uuid.UUID)
}

// SyncWorkerHandler handles HTTP requests for sync workers.
type SyncWorkerHandler struct {
	syncUseCase syncUseCase.SyncUseCase
	runner      Runner
	logger      *slog.Logger
}

// NewSyncWorkerHandler creates a new sync worker handler.
func NewSyncWorkerHandler(
	syncUseCase syncUseCase.SyncUseCase,
	runner Runner,
	logger *slog.Logger,
) *SyncWorkerHandler {
	return &SyncWorkerHandler{
		syncUseCase: syncUseCase,
		runner:      runner,
		logger:      logger,
	}
}

// CreateHandler registers a sync worker, returning the existing one for a known identity.
// POST /v1/sync-workers
func (h *SyncWorkerHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateSyncWorkerRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	worker, err := h.syncUseCase.CreateWorker(
		c.Request.Context(),
		req.Supplier,
		req.HostID,
		syncDomain.WorkerType(req.Type),
		req.Interval(),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapSyncWorkerToResponse(worker))
}

// GetHandler returns a sync worker.
// GET /v1/sync-workers/:id
func (h *SyncWorkerHandler) GetHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	worker, err := h.syncUseCase.GetWorker(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSyncWorkerToResponse(worker))
}

// ListHandler returns sync workers.
// GET /v1/sync-workers?offset=0&limit=50
func (h *SyncWorkerHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	workers, err := h.syncUseCase.ListWorkers(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSyncWorkersToListResponse(workers))
}

// ResyncHandler queues a worker and starts its run.
// POST /v1/sync-workers/:id/resync
// Returns 202 Accepted when queued, 409 Conflict when the worker is already queued or running.
func (h *SyncWorkerHandler) ResyncHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	result, err := h.syncUseCase.Enqueue(ctx, id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	if !result.Queued {
		c.JSON(http.StatusConflict, dto.MapEnqueueResultToResponse(result))
		return
	}

	h.runner.Dispatch(ctx, id)

	c.JSON(http.StatusAccepted, dto.MapEnqueueResultToResponse(result))
}

func (h *SyncWorkerHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid sync worker ID format: must be a valid UUID"),
			h.logger)
		return uuid.Nil, false
	}
	return id, true
}

// EventBus publishes sync events and reports who listens to them.
type EventBus interface {
	Publish(ctx context.Context, event string, payload any) error
	Handlers(event string) int
}

// WebhookHandler turns supplier webhooks into sync events.
type WebhookHandler struct {
	bus    EventBus
	logger *slog.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(bus EventBus, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{bus: bus, logger: logger}
}

// ReceiveHandler publishes sync.<supplier> with the host identifier.
// POST /v1/webhooks/:supplier
func (h *WebhookHandler) ReceiveHandler(c *gin.Context) {
	var req dto.WebhookRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	event := syncDomain.EventName(c.Param("supplier"))
	if h.bus.Handlers(event) == 0 {
		httputil.HandleErrorGin(c,
			apperrors.Wrapf(apperrors.ErrNotFound, "no sync handler for supplier %q", c.Param("supplier")),
			h.logger)
		return
	}

	if err := h.bus.Publish(c.Request.Context(), event, req.HostID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusAccepted, dto.WebhookResponse{Accepted: true, Event: event})
}

// SyncProcessHandler handles HTTP requests for sync processes.
type SyncProcessHandler struct {
	syncUseCase syncUseCase.SyncUseCase
	logger      *slog.Logger
}

// NewSyncProcessHandler creates a new sync process handler.
func NewSyncProcessHandler(syncUseCase syncUseCase.SyncUseCase, logger *slog.Logger) *SyncProcessHandler {
	return &SyncProcessHandler{syncUseCase: syncUseCase, logger: logger}
}

// ListHandler returns sync processes newest first.
// GET /v1/sync-processes?supplier=kigo&worker_id=<uuid>&offset=0&limit=50
func (h *SyncProcessHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	filter := syncDomain.ProcessFilter{Supplier: c.Query("supplier")}
	if raw := c.Query("worker_id"); raw != "" {
		workerID, err := uuid.Parse(raw)
		if err != nil {
			httputil.HandleValidationErrorGin(c,
				fmt.Errorf("invalid worker_id format: must be a valid UUID"),
				h.logger)
			return
		}
		filter.WorkerID = workerID
	}

	processes, err := h.syncUseCase.ListProcesses(c.Request.Context(), filter, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSyncProcessesToListResponse(processes))
}
