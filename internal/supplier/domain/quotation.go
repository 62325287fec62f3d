package domain

import (
	"time"

	"github.com/allisson/concierge/internal/outcome"
)

// Fee is a named charge added on top of the base stay price.
type Fee struct {
	Name   string
	Amount float64
}

// Quotation is a supplier's answer to a price request.
//
// A quotation can be a successful supplier call that still carries a negative
// business answer, in which case ErrorCode is set and Successful reports false.
type Quotation struct {
	Supplier     string
	PropertyID   string
	UnitID       string
	CheckIn      time.Time
	CheckOut     time.Time
	Guests       int
	Available    bool
	Currency     string
	Total        float64
	Fees         []Fee
	ErrorCode    outcome.Code
	ErrorMessage string
}

// Successful reports whether the quotation carries a usable price.
func (q *Quotation) Successful() bool {
	return q.ErrorCode == ""
}

// Reject marks the quotation as unsuccessful.
func (q *Quotation) Reject(code outcome.Code, message string) *Quotation {
	q.Available = false
	q.ErrorCode = code
	q.ErrorMessage = message
	return q
}

// NewQuotation prefills a quotation with the requested stay.
func NewQuotation(supplier string, params StayParams) *Quotation {
	return &Quotation{
		Supplier:   supplier,
		PropertyID: params.PropertyID,
		UnitID:     params.UnitID,
		CheckIn:    params.CheckIn,
		CheckOut:   params.CheckOut,
		Guests:     params.Guests,
	}
}

// Reservation is a confirmed booking on the supplier side.
type Reservation struct {
	Supplier   string
	Reference  string
	PropertyID string
	UnitID     string
	CheckIn    time.Time
	CheckOut   time.Time
	Guests     int
	Total      float64
	Currency   string
}

// CancelParams identifies a reservation to cancel.
type CancelParams struct {
	Reference  string
	PropertyID string
}

// Cancellation is the supplier's confirmation of a cancelled reservation.
type Cancellation struct {
	Supplier  string
	Reference string
}
