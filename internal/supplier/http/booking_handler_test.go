package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/concierge/internal/outcome"
	supplierDomain "github.com/allisson/concierge/internal/supplier/domain"
	"github.com/allisson/concierge/internal/supplier/http/dto"
	"github.com/allisson/concierge/internal/supplier/usecase/mocks"
)

func setupTestHandler(t *testing.T) (*BookingHandler, *mocks.MockBookingUseCase) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	useCase := &mocks.MockBookingUseCase{}
	t.Cleanup(func() { useCase.AssertExpectations(t) })

	return NewBookingHandler(useCase, slog.New(slog.NewTextHandler(io.Discard, nil))), useCase
}

func createTestContext(supplier string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	var payload []byte
	switch b := body.(type) {
	case string:
		payload = []byte(b)
	default:
		payload, _ = json.Marshal(b)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/v1/suppliers/"+supplier+"/quote", bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "supplier", Value: supplier}}
	return c, w
}

func decodeOutcome(t *testing.T, w *httptest.ResponseRecorder) dto.OutcomeResponse {
	t.Helper()
	var response dto.OutcomeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

var (
	checkIn  = time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	checkOut = time.Date(2026, 12, 4, 0, 0, 0, 0, time.UTC)
)

func stayBody() map[string]any {
	return map[string]any{
		"property_id": "p-1",
		"check_in":    "2026-12-01",
		"check_out":   "2026-12-04",
		"guests":      2,
	}
}

func TestBookingHandler_QuoteHandler(t *testing.T) {
	params := supplierDomain.StayParams{PropertyID: "p-1", CheckIn: checkIn, CheckOut: checkOut, Guests: 2}

	t.Run("Success", func(t *testing.T) {
		handler, useCase := setupTestHandler(t)
		quotation := supplierDomain.NewQuotation("kigo", params)
		quotation.Available = true
		quotation.Currency = "EUR"
		quotation.Total = 300
		quotation.Fees = []supplierDomain.Fee{{Name: "cleaning", Amount: 40}}

		useCase.On("Quote", mock.Anything, "kigo", params).Return(outcome.Ok(quotation)).Once()

		c, w := createTestContext("kigo", stayBody())
		handler.QuoteHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		response := decodeOutcome(t, w)
		assert.Equal(t, dto.StatusOK, response.Status)
		require.NotNil(t, response.Quotation)
		assert.True(t, response.Quotation.Successful)
		assert.Equal(t, "2026-12-01", response.Quotation.CheckIn)
		assert.Equal(t, 300.0, response.Quotation.Total)
		assert.Len(t, response.Quotation.Fees, 1)
		assert.Nil(t, response.Errors)
	})

	t.Run("Success_UnsuccessfulQuotation", func(t *testing.T) {
		handler, useCase := setupTestHandler(t)
		quotation := supplierDomain.NewQuotation("kigo", params).
			Reject(outcome.CodeCheckInTooFar, "too far")

		useCase.On("Quote", mock.Anything, "kigo", params).Return(outcome.Ok(quotation)).Once()

		c, w := createTestContext("kigo", stayBody())
		handler.QuoteHandler(c)

		response := decodeOutcome(t, w)
		assert.Equal(t, dto.StatusOK, response.Status)
		assert.False(t, response.Quotation.Successful)
		assert.Equal(t, "check_in_too_far", response.Quotation.ErrorCode)
	})

	t.Run("Failure_RenderedWith200", func(t *testing.T) {
		handler, useCase := setupTestHandler(t)

		useCase.On("Quote", mock.Anything, "saw", params).
			Return(outcome.Fail[*supplierDomain.Quotation](outcome.CodeConnectionTimeout, "timed out")).
			Once()

		c, w := createTestContext("saw", stayBody())
		handler.QuoteHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		response := decodeOutcome(t, w)
		assert.Equal(t, dto.StatusError, response.Status)
		assert.Equal(t, map[string]string{"connection_timeout": "timed out"}, response.Errors)
		assert.Nil(t, response.Quotation)
	})

	t.Run("Error_MalformedJSON", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext("kigo", "{not json")
		handler.QuoteHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "bad_request")
	})

	t.Run("Error_InvalidDate", func(t *testing.T) {
		handler, _ := setupTestHandler(t)
		body := stayBody()
		body["check_in"] = "01/12/2026"

		c, w := createTestContext("kigo", body)
		handler.QuoteHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "validation_error")
	})

	t.Run("Error_MissingGuests", func(t *testing.T) {
		handler, _ := setupTestHandler(t)
		body := stayBody()
		delete(body, "guests")

		c, w := createTestContext("kigo", body)
		handler.QuoteHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestBookingHandler_BookHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, useCase := setupTestHandler(t)
		body := stayBody()
		body["customer"] = map[string]any{"first_name": "Ana", "last_name": "Lima", "email": "ana@example.com"}

		useCase.On("Book", mock.Anything, "waytostay", mock.MatchedBy(func(p supplierDomain.StayParams) bool {
			return p.Customer != nil && p.Customer.Email == "ana@example.com" && p.Nights() == 3
		})).Return(outcome.Ok(&supplierDomain.Reservation{
			Supplier:   "waytostay",
			Reference:  "R-1",
			PropertyID: "p-1",
			CheckIn:    checkIn,
			CheckOut:   checkOut,
			Guests:     2,
		})).Once()

		c, w := createTestContext("waytostay", body)
		handler.BookHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		response := decodeOutcome(t, w)
		require.NotNil(t, response.Reservation)
		assert.Equal(t, "R-1", response.Reservation.Reference)
	})

	t.Run("Error_MissingCustomer", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext("waytostay", stayBody())
		handler.BookHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "customer")
	})

	t.Run("Error_InvalidCustomerEmail", func(t *testing.T) {
		handler, _ := setupTestHandler(t)
		body := stayBody()
		body["customer"] = map[string]any{"first_name": "Ana", "last_name": "Lima", "email": "nope"}

		c, w := createTestContext("waytostay", body)
		handler.BookHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Failure", func(t *testing.T) {
		handler, useCase := setupTestHandler(t)
		body := stayBody()
		body["customer"] = map[string]any{"first_name": "Ana", "last_name": "Lima", "email": "ana@example.com"}

		useCase.On("Book", mock.Anything, "kigo", mock.Anything).
			Return(outcome.Fail[*supplierDomain.Reservation](outcome.CodeNotAvailable, "taken")).
			Once()

		c, w := createTestContext("kigo", body)
		handler.BookHandler(c)

		response := decodeOutcome(t, w)
		assert.Equal(t, dto.StatusError, response.Status)
		assert.Equal(t, "taken", response.Errors["not_available"])
	})
}

func TestBookingHandler_CancelHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, useCase := setupTestHandler(t)

		useCase.On("Cancel", mock.Anything, "saw", supplierDomain.CancelParams{Reference: "B-9"}).
			Return(outcome.Ok(&supplierDomain.Cancellation{Supplier: "saw", Reference: "B-9"})).
			Once()

		c, w := createTestContext("saw", map[string]any{"reference": "B-9"})
		handler.CancelHandler(c)

		response := decodeOutcome(t, w)
		assert.Equal(t, dto.StatusOK, response.Status)
		assert.Equal(t, "B-9", response.Cancellation.Reference)
	})

	t.Run("Error_MissingReference", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext("saw", map[string]any{})
		handler.CancelHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
