package dto

import (
	"github.com/allisson/concierge/internal/outcome"
	supplierDomain "github.com/allisson/concierge/internal/supplier/domain"
)

// Outcome statuses rendered in every response body.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// FeeResponse is a named charge in a quotation.
type FeeResponse struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// QuotationResponse represents a quotation in API responses.
type QuotationResponse struct {
	Supplier     string        `json:"supplier"`
	PropertyID   string        `json:"property_id"`
	UnitID       string        `json:"unit_id,omitempty"`
	CheckIn      string        `json:"check_in"`
	CheckOut     string        `json:"check_out"`
	Guests       int           `json:"guests"`
	Available    bool          `json:"available"`
	Successful   bool          `json:"successful"`
	Currency     string        `json:"currency,omitempty"`
	Total        float64       `json:"total"`
	Fees         []FeeResponse `json:"fees"`
	ErrorCode    string        `json:"error_code,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// ReservationResponse represents a confirmed reservation in API responses.
type ReservationResponse struct {
	Supplier   string  `json:"supplier"`
	Reference  string  `json:"reference"`
	PropertyID string  `json:"property_id"`
	UnitID     string  `json:"unit_id,omitempty"`
	CheckIn    string  `json:"check_in"`
	CheckOut   string  `json:"check_out"`
	Guests     int     `json:"guests"`
	Total      float64 `json:"total"`
	Currency   string  `json:"currency,omitempty"`
}

// CancellationResponse represents a cancellation in API responses.
type CancellationResponse struct {
	Supplier  string `json:"supplier"`
	Reference string `json:"reference"`
}

// OutcomeResponse renders a supplier Result. Exactly one payload field is set on success;
// Errors maps the failure code to its message otherwise.
type OutcomeResponse struct {
	Status       string                `json:"status"`
	Quotation    *QuotationResponse    `json:"quotation,omitempty"`
	Reservation  *ReservationResponse  `json:"reservation,omitempty"`
	Cancellation *CancellationResponse `json:"cancellation,omitempty"`
	Errors       map[string]string     `json:"errors,omitempty"`
}

func failure[T any](result outcome.Result[T]) OutcomeResponse {
	return OutcomeResponse{
		Status: StatusError,
		Errors: map[string]string{string(result.Code()): result.Message()},
	}
}

// MapQuotationResult converts a quote Result to an API response.
func MapQuotationResult(result outcome.Result[*supplierDomain.Quotation]) OutcomeResponse {
	if !result.Success() {
		return failure(result)
	}
	q := result.Value()
	fees := make([]FeeResponse, 0, len(q.Fees))
	for _, fee := range q.Fees {
		fees = append(fees, FeeResponse{Name: fee.Name, Amount: fee.Amount})
	}
	return OutcomeResponse{
		Status: StatusOK,
		Quotation: &QuotationResponse{
			Supplier:     q.Supplier,
			PropertyID:   q.PropertyID,
			UnitID:       q.UnitID,
			CheckIn:      q.CheckIn.Format(supplierDomain.DateLayout),
			CheckOut:     q.CheckOut.Format(supplierDomain.DateLayout),
			Guests:       q.Guests,
			Available:    q.Available,
			Successful:   q.Successful(),
			Currency:     q.Currency,
			Total:        q.Total,
			Fees:         fees,
			ErrorCode:    string(q.ErrorCode),
			ErrorMessage: q.ErrorMessage,
		},
	}
}

// MapReservationResult converts a booking Result to an API response.
func MapReservationResult(result outcome.Result[*supplierDomain.Reservation]) OutcomeResponse {
	if !result.Success() {
		return failure(result)
	}
	r := result.Value()
	return OutcomeResponse{
		Status: StatusOK,
		Reservation: &ReservationResponse{
			Supplier:   r.Supplier,
			Reference:  r.Reference,
			PropertyID: r.PropertyID,
			UnitID:     r.UnitID,
			CheckIn:    r.CheckIn.Format(supplierDomain.DateLayout),
			CheckOut:   r.CheckOut.Format(supplierDomain.DateLayout),
			Guests:     r.Guests,
			Total:      r.Total,
			Currency:   r.Currency,
		},
	}
}

// MapCancellationResult converts a cancellation Result to an API response.
func MapCancellationResult(result outcome.Result[*supplierDomain.Cancellation]) OutcomeResponse {
	if !result.Success() {
		return failure(result)
	}
	c := result.Value()
	return OutcomeResponse{
		Status:       StatusOK,
		Cancellation: &CancellationResponse{Supplier: c.Supplier, Reference: c.Reference},
	}
}
