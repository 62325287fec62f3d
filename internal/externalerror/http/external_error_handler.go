// Package http provides HTTP handlers for inspecting recorded external errors.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	externalErrorDomain "github.com/allisson/concierge/internal/externalerror/domain"
	"github.com/allisson/concierge/internal/externalerror/http/dto"
	externalErrorUseCase "github.com/allisson/concierge/internal/externalerror/usecase"
	"github.com/allisson/concierge/internal/httputil"
)

// ExternalErrorHandler handles HTTP requests for external errors.
type ExternalErrorHandler struct {
	externalErrorUseCase externalErrorUseCase.ExternalErrorUseCase
	logger               *slog.Logger
}

// NewExternalErrorHandler creates a new external error handler.
func NewExternalErrorHandler(
	externalErrorUseCase externalErrorUseCase.ExternalErrorUseCase,
	logger *slog.Logger,
) *ExternalErrorHandler {
	return &ExternalErrorHandler{
		externalErrorUseCase: externalErrorUseCase,
		logger:               logger,
	}
}

// ListHandler returns external errors newest first.
// GET /v1/external-errors?supplier=kigo&code=connection_timeout&offset=0&limit=50
func (h *ExternalErrorHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	filter := externalErrorDomain.Filter{
		Supplier: c.Query("supplier"),
		Code:     c.Query("code"),
	}

	externalErrors, err := h.externalErrorUseCase.List(c.Request.Context(), filter, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapExternalErrorsToListResponse(externalErrors))
}
