package waytostay

import (
	"strconv"

	"github.com/allisson/concierge/internal/supplier/domain"
)

type customerPayload struct {
	FirstName string `json:"first_name"`
	Surname   string `json:"surname"`
	Email     string `json:"email"`
	Telephone string `json:"telephone,omitempty"`
}

type stayRequest struct {
	PropertyReference string           `json:"property_reference"`
	ArrivalDate       string           `json:"arrival_date"`
	DepartureDate     string           `json:"departure_date"`
	NumberOfPeople    int              `json:"number_of_people"`
	Customer          *customerPayload `json:"customer,omitempty"`
}

func newStayRequest(params domain.StayParams, customer *domain.Customer) stayRequest {
	req := stayRequest{
		PropertyReference: params.PropertyID,
		ArrivalDate:       params.CheckIn.Format(domain.DateLayout),
		DepartureDate:     params.CheckOut.Format(domain.DateLayout),
		NumberOfPeople:    params.Guests,
	}
	if customer != nil {
		req.Customer = &customerPayload{
			FirstName: customer.FirstName,
			Surname:   customer.LastName,
			Email:     customer.Email,
			Telephone: customer.Phone,
		}
	}
	return req
}

type price struct {
	FinalPrice float64 `json:"final_price"`
	Currency   string  `json:"currency"`
}

type extra struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type quoteResponse struct {
	BookingPrice *price  `json:"booking_price"`
	Extras       []extra `json:"extras"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type bookingResponse struct {
	Reference    string `json:"booking_reference"`
	Status       string `json:"status"`
	BookingPrice *price `json:"booking_price"`
}

type link struct {
	Href string `json:"href"`
}

type page struct {
	Embedded struct {
		Properties     []propertyRecord     `json:"properties"`
		Availabilities []availabilityRecord `json:"availabilities"`
	} `json:"_embedded"`
	Links struct {
		Next *link `json:"next"`
	} `json:"_links"`
}

type location struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

type propertyRecord struct {
	Reference   string   `json:"reference"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Location    location `json:"location"`
	Currency    string   `json:"currency"`
	MaxPeople   int      `json:"max_people"`
	Bedrooms    int      `json:"bedrooms"`
	Status      string   `json:"status"`
	Instant     bool     `json:"instant_booking"`
}

func (r propertyRecord) toDomain(hostID string) domain.Property {
	return domain.Property{
		ID:          r.Reference,
		HostID:      hostID,
		Title:       r.Name,
		Description: r.Description,
		City:        r.Location.City,
		Country:     r.Location.Country,
		Currency:    r.Currency,
		MaxGuests:   r.MaxPeople,
		Bedrooms:    r.Bedrooms,
		Active:      r.Status == "active",
		Attributes: map[string]string{
			"status":          r.Status,
			"instant_booking": strconv.FormatBool(r.Instant),
		},
	}
}

type availabilityRecord struct {
	PropertyReference string  `json:"property_reference"`
	Date              string  `json:"date"`
	Available         bool    `json:"available"`
	Price             float64 `json:"price"`
	MinimumStay       int     `json:"minimum_stay"`
}
