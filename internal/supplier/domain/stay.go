// Package domain defines the supplier-facing data model: stay parameters, quotations,
// reservations, cancellations and the raw records fetched during synchronisation.
package domain

import (
	"fmt"
	"time"

	"github.com/allisson/concierge/internal/outcome"
)

// DateLayout is the calendar date format exchanged with every supplier.
const DateLayout = "2006-01-02"

// Customer identifies the guest a reservation is made for.
type Customer struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// StayParams describes a requested stay at a supplier property.
type StayParams struct {
	PropertyID string
	UnitID     string
	CheckIn    time.Time
	CheckOut   time.Time
	Guests     int
	Customer   *Customer
}

// Nights returns the number of nights between check-in and check-out.
func (p StayParams) Nights() int {
	return int(truncateDay(p.CheckOut).Sub(truncateDay(p.CheckIn)).Hours() / 24)
}

// Validate checks the structural consistency of the stay.
func (p StayParams) Validate() error {
	switch {
	case p.PropertyID == "":
		return fmt.Errorf("%w: property_id is required", ErrInvalidStay)
	case p.CheckIn.IsZero() || p.CheckOut.IsZero():
		return fmt.Errorf("%w: check_in and check_out are required", ErrInvalidStay)
	case !p.CheckOut.After(p.CheckIn):
		return fmt.Errorf("%w: check_out must be after check_in", ErrInvalidStay)
	case p.Guests < 1:
		return fmt.Errorf("%w: guests must be at least 1", ErrInvalidStay)
	}
	return nil
}

// StayRules bounds the stays a supplier accepts.
// A zero field disables the corresponding check.
type StayRules struct {
	MinAdvance time.Duration
	MaxAdvance time.Duration
	MinNights  int
}

// Check reports the first rule the stay violates relative to now.
// The returned code is empty when every rule holds.
func (r StayRules) Check(p StayParams, now time.Time) (outcome.Code, string) {
	today := truncateDay(now)
	checkIn := truncateDay(p.CheckIn)

	if r.MinAdvance > 0 && checkIn.Before(today.Add(r.MinAdvance)) {
		return outcome.CodeCheckInTooNear, fmt.Sprintf(
			"check-in date %s is too near, minimum advance is %s",
			p.CheckIn.Format(DateLayout), r.MinAdvance,
		)
	}
	if r.MaxAdvance > 0 && checkIn.After(today.Add(r.MaxAdvance)) {
		return outcome.CodeCheckInTooFar, fmt.Sprintf(
			"check-in date %s is too far in the future, maximum advance is %s",
			p.CheckIn.Format(DateLayout), r.MaxAdvance,
		)
	}
	if r.MinNights > 0 && p.Nights() < r.MinNights {
		return outcome.CodeStayTooShort, fmt.Sprintf(
			"stay of %d nights is shorter than the minimum of %d", p.Nights(), r.MinNights,
		)
	}
	return "", ""
}

// ParseDate parses a calendar date in DateLayout.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
