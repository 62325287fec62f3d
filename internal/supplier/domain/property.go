package domain

import "time"

// Property is a rental listing fetched from a supplier.
type Property struct {
	ID          string
	HostID      string
	Title       string
	Description string
	City        string
	Country     string
	Currency    string
	MaxGuests   int
	Bedrooms    int
	Active      bool
	Attributes  map[string]string
}

// Availability is the bookability of a property on one date.
type Availability struct {
	PropertyID  string
	Date        time.Time
	Available   bool
	NightlyRate float64
	MinStay     int
}

// Validator is a pure predicate over a parsed supplier record.
type Validator[T any] interface {
	Valid(record T) bool
}

// ValidatorFunc adapts an ordinary function to Validator.
type ValidatorFunc[T any] func(record T) bool

// Valid calls f(record).
func (f ValidatorFunc[T]) Valid(record T) bool {
	return f(record)
}

// Filter splits records into the ones accepted by every validator and the count of rejected ones.
func Filter[T any](records []T, validators ...Validator[T]) ([]T, int) {
	accepted := make([]T, 0, len(records))
	skipped := 0
	for _, record := range records {
		if allValid(record, validators) {
			accepted = append(accepted, record)
			continue
		}
		skipped++
	}
	return accepted, skipped
}

func allValid[T any](record T, validators []Validator[T]) bool {
	for _, v := range validators {
		if !v.Valid(record) {
			return false
		}
	}
	return true
}
