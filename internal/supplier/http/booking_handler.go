// Package http provides HTTP handlers for live supplier quotes, bookings and cancellations.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/concierge/internal/httputil"
	"github.com/allisson/concierge/internal/supplier/http/dto"
	supplierUseCase "github.com/allisson/concierge/internal/supplier/usecase"
	customValidation "github.com/allisson/concierge/internal/validation"
)

// BookingHandler handles HTTP requests for supplier operations.
// Supplier outcomes, including failures, are answered with 200 OK and rendered in the body.
type BookingHandler struct {
	bookingUseCase supplierUseCase.BookingUseCase
	logger         *slog.Logger
}

// NewBookingHandler creates a new booking handler.
func NewBookingHandler(bookingUseCase supplierUseCase.BookingUseCase, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{
		bookingUseCase: bookingUseCase,
		logger:         logger,
	}
}

// QuoteHandler asks a supplier to price a stay.
// POST /v1/suppliers/:supplier/quote
func (h *BookingHandler) QuoteHandler(c *gin.Context) {
	var req dto.StayRequest
	if !h.bind(c, &req) {
		return
	}

	result := h.bookingUseCase.Quote(c.Request.Context(), c.Param("supplier"), req.ToStayParams())
	c.JSON(http.StatusOK, dto.MapQuotationResult(result))
}

// BookHandler creates a reservation with a supplier.
// POST /v1/suppliers/:supplier/booking
func (h *BookingHandler) BookHandler(c *gin.Context) {
	var req dto.BookRequest
	if !h.bind(c, &req) {
		return
	}

	result := h.bookingUseCase.Book(c.Request.Context(), c.Param("supplier"), req.ToStayParams())
	c.JSON(http.StatusOK, dto.MapReservationResult(result))
}

// CancelHandler cancels a reservation with a supplier.
// POST /v1/suppliers/:supplier/cancel
func (h *BookingHandler) CancelHandler(c *gin.Context) {
	var req dto.CancelRequest
	if !h.bind(c, &req) {
		return
	}

	result := h.bookingUseCase.Cancel(c.Request.Context(), c.Param("supplier"), req.ToCancelParams())
	c.JSON(http.StatusOK, dto.MapCancellationResult(result))
}

type validatable interface {
	Validate() error
}

func (h *BookingHandler) bind(c *gin.Context, req validatable) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return false
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return false
	}
	return true
}
