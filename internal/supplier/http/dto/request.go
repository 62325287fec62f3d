// Package dto provides data transfer objects for the quote, booking and cancellation API.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/concierge/internal/validation"
	supplierDomain "github.com/allisson/concierge/internal/supplier/domain"
)

// CustomerRequest identifies the guest of a booking.
type CustomerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Validate checks if the customer is valid.
func (r CustomerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&r.LastName, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&r.Email, validation.Required, customValidation.Email),
		validation.Field(&r.Phone, validation.Length(0, 64)),
	)
}

// StayRequest contains the stay to quote or book.
type StayRequest struct {
	PropertyID string           `json:"property_id"`
	UnitID     string           `json:"unit_id"`
	CheckIn    string           `json:"check_in"`  // YYYY-MM-DD
	CheckOut   string           `json:"check_out"` // YYYY-MM-DD
	Guests     int              `json:"guests"`
	Customer   *CustomerRequest `json:"customer,omitempty"`
}

// Validate checks the request shape. Date ordering is checked by the use case.
func (r *StayRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.PropertyID, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&r.UnitID, validation.Length(0, 255)),
		validation.Field(&r.CheckIn, validation.Required, validation.Date(supplierDomain.DateLayout)),
		validation.Field(&r.CheckOut, validation.Required, validation.Date(supplierDomain.DateLayout)),
		validation.Field(&r.Guests, validation.Required, validation.Min(1), validation.Max(50)),
		validation.Field(&r.Customer),
	)
}

// BookRequest requires a customer on top of the stay.
type BookRequest struct {
	StayRequest
}

// Validate checks if the booking request is valid.
func (r *BookRequest) Validate() error {
	if err := r.StayRequest.Validate(); err != nil {
		return err
	}
	if r.Customer == nil {
		return validation.Errors{"customer": validation.ErrRequired}
	}
	return nil
}

// ToStayParams converts a validated request to domain stay parameters.
func (r *StayRequest) ToStayParams() supplierDomain.StayParams {
	// Dates were validated against DateLayout.
	checkIn, _ := supplierDomain.ParseDate(r.CheckIn)
	checkOut, _ := supplierDomain.ParseDate(r.CheckOut)

	params := supplierDomain.StayParams{
		PropertyID: r.PropertyID,
		UnitID:     r.UnitID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     r.Guests,
	}
	if r.Customer != nil {
		params.Customer = &supplierDomain.Customer{
			FirstName: r.Customer.FirstName,
			LastName:  r.Customer.LastName,
			Email:     r.Customer.Email,
			Phone:     r.Customer.Phone,
		}
	}
	return params
}

// CancelRequest identifies the reservation to cancel.
type CancelRequest struct {
	Reference  string `json:"reference"`
	PropertyID string `json:"property_id"`
}

// Validate checks if the cancel request is valid.
func (r *CancelRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Reference, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&r.PropertyID, validation.Length(0, 255)),
	)
}

// ToCancelParams converts a validated request to domain cancel parameters.
func (r *CancelRequest) ToCancelParams() supplierDomain.CancelParams {
	return supplierDomain.CancelParams{Reference: r.Reference, PropertyID: r.PropertyID}
}
