package saw

import (
	"encoding/xml"

	"github.com/allisson/concierge/internal/supplier/domain"
)

type guestPayload struct {
	FirstName string `xml:"first_name"`
	LastName  string `xml:"last_name"`
	Email     string `xml:"email"`
	Phone     string `xml:"phone,omitempty"`
}

type stayRequest struct {
	XMLName    xml.Name      `xml:"request"`
	PropertyID string        `xml:"property_id"`
	UnitID     string        `xml:"unit_id,omitempty"`
	CheckIn    string        `xml:"check_in"`
	CheckOut   string        `xml:"check_out"`
	Guests     int           `xml:"guests"`
	Guest      *guestPayload `xml:"guest,omitempty"`
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

type cancelRequest struct {
	XMLName   xml.Name `xml:"request"`
	Reference string   `xml:"booking_reference"`
}

type errorPayload struct {
	Code    string `xml:"code,attr"`
	Message string `xml:",chardata"`
}

type errorList struct {
	Items []errorPayload `xml:"error"`
}

func (l errorList) first() (errorPayload, bool) {
	if len(l.Items) == 0 {
		return errorPayload{}, false
	}
	return l.Items[0], true
}

type feePayload struct {
	Name   string  `xml:"name,attr"`
	Amount float64 `xml:"amount,attr"`
}

type quotePayload struct {
	Currency string       `xml:"currency,attr"`
	RateType string       `xml:"rate_type"`
	Total    float64      `xml:"total"`
	Tax      float64      `xml:"tax"`
	Fees     []feePayload `xml:"fee"`
}

type quoteResponse struct {
	XMLName xml.Name      `xml:"response"`
	Errors  errorList     `xml:"errors"`
	Quote   *quotePayload `xml:"quote"`
}

type bookingPayload struct {
	Reference string  `xml:"reference,attr"`
	Status    string  `xml:"status,attr"`
	Total     float64 `xml:"total"`
	Currency  string  `xml:"currency"`
}

type bookingResponse struct {
	XMLName xml.Name        `xml:"response"`
	Errors  errorList       `xml:"errors"`
	Booking *bookingPayload `xml:"booking"`
}

type cancellationPayload struct {
	Reference string `xml:"reference,attr"`
	Status    string `xml:"status,attr"`
}

type cancellationResponse struct {
	XMLName      xml.Name             `xml:"response"`
	Errors       errorList            `xml:"errors"`
	Cancellation *cancellationPayload `xml:"cancellation"`
}

type pagination struct {
	Page  int `xml:"page,attr"`
	Pages int `xml:"pages,attr"`
}

func (p pagination) last(requested int) bool {
	return p.Pages == 0 || requested >= p.Pages
}

type propertyPayload struct {
	ID        string `xml:"id,attr"`
	Status    string `xml:"status,attr"`
	Name      string `xml:"name"`
	Summary   string `xml:"summary"`
	City      string `xml:"city"`
	Country   string `xml:"country"`
	Currency  string `xml:"currency"`
	MaxGuests int    `xml:"max_guests"`
	Bedrooms  int    `xml:"bedrooms"`
}

func (p propertyPayload) toDomain(hostID string) domain.Property {
	return domain.Property{
		ID:          p.ID,
		HostID:      hostID,
		Title:       p.Name,
		Description: p.Summary,
		City:        p.City,
		Country:     p.Country,
		Currency:    p.Currency,
		MaxGuests:   p.MaxGuests,
		Bedrooms:    p.Bedrooms,
		Active:      p.Status == "active",
		Attributes:  map[string]string{"status": p.Status},
	}
}

type propertiesResponse struct {
	XMLName    xml.Name          `xml:"response"`
	Properties []propertyPayload `xml:"properties>property"`
	Pagination pagination        `xml:"pagination"`
}

type availabilityPayload struct {
	PropertyID string  `xml:"property_id,attr"`
	Date       string  `xml:"date,attr"`
	Available  bool    `xml:"available,attr"`
	Rate       float64 `xml:"rate,attr"`
	MinStay    int     `xml:"min_stay,attr"`
}

type availabilitiesResponse struct {
	XMLName        xml.Name              `xml:"response"`
	Availabilities []availabilityPayload `xml:"availabilities>availability"`
	Pagination     pagination            `xml:"pagination"`
}
