package kigo

import (
	"github.com/allisson/concierge/internal/supplier/domain"
)

type guestPayload struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

type stayRequest struct {
	PropertyID string        `json:"property_id"`
	UnitID     string        `json:"unit_id,omitempty"`
	CheckIn    string        `json:"check_in"`
	CheckOut   string        `json:"check_out"`
	Guests     int           `json:"guests"`
	Guest      *guestPayload `json:"guest,omitempty"`
}

func newStayRequest(params domain.StayParams, customer *domain.Customer) stayRequest {
	req := stayRequest{
		PropertyID: params.PropertyID,
		UnitID:     params.UnitID,
		CheckIn:    params.CheckIn.Format(domain.DateLayout),
		CheckOut:   params.CheckOut.Format(domain.DateLayout),
		Guests:     params.Guests,
	}
	if customer != nil {
		req.Guest = &guestPayload{
			FirstName: customer.FirstName,
			LastName:  customer.LastName,
			Email:     customer.Email,
			Phone:     customer.Phone,
		}
	}
	return req
}

type feePayload struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type quoteResponse struct {
	Available bool         `json:"available"`
	Currency  string       `json:"currency"`
	Total     *float64     `json:"total"`
	Fees      []feePayload `json:"fees"`
}

type reservationResponse struct {
	ReservationID string  `json:"reservation_id"`
	Total         float64 `json:"total"`
	Currency      string  `json:"currency"`
}

type cancellationResponse struct {
	ReservationID string `json:"reservation_id"`
	Status        string `json:"status"`
}

type pageResponse[T any] struct {
	Data     []T  `json:"data"`
	NextPage *int `json:"next_page"`
}

type propertyRecord struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	City           string `json:"city"`
	Country        string `json:"country"`
	Currency       string `json:"currency"`
	MaxGuests      int    `json:"max_guests"`
	Bedrooms       int    `json:"bedrooms"`
	Active         bool   `json:"active"`
	InstantBooking bool   `json:"instant_booking"`
}

func (r propertyRecord) toDomain(hostID string) domain.Property {
	instant := "false"
	if r.InstantBooking {
		instant = "true"
	}
	return domain.Property{
		ID:          r.ID,
		HostID:      hostID,
		Title:       r.Title,
		Description: r.Description,
		City:        r.City,
		Country:     r.Country,
		Currency:    r.Currency,
		MaxGuests:   r.MaxGuests,
		Bedrooms:    r.Bedrooms,
		Active:      r.Active,
		Attributes:  map[string]string{"instant_booking": instant},
	}
}

type availabilityRecord struct {
	PropertyID  string  `json:"property_id"`
	Date        string  `json:"date"`
	Available   bool    `json:"available"`
	NightlyRate float64 `json:"nightly_rate"`
	MinStay     int     `json:"min_stay"`
}
