// Package saw integrates the SAW XML API. Responses are ISO-8859-1 encoded.
package saw

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/allisson/concierge/internal/credentials"
	"github.com/allisson/concierge/internal/outcome"
	"github.com/allisson/concierge/internal/supplier/domain"
	"github.com/allisson/concierge/internal/supplier/service"
)

// Name is the supplier name used for credentials, events and error records.
const Name = "saw"

// Credential fields.
const (
	FieldAccessKeyID     = "access_key_id"
	FieldSecretAccessKey = "secret_access_key"
)

// RequiredFields are the credential fields needed in production.
var RequiredFields = []string{FieldAccessKeyID, FieldSecretAccessKey}

// Supplier error codes that mean the stay cannot be booked.
var unavailableCodes = map[string]bool{
	"1007": true,
	"1008": true,
}

const (
	contentTypeXML = "application/xml"
	maxPages       = 100
)

// Client talks to the SAW API.
type Client struct {
	http *service.HTTPClient
}

// New creates a SAW client authenticated with basic auth.
func New(baseURL string, creds credentials.Set, cfg service.HTTPConfig, logger *slog.Logger) *Client {
	keyID := creds.Get(FieldAccessKeyID)
	secret := creds.Get(FieldSecretAccessKey)
	auth := service.AuthenticatorFunc(func(ctx context.Context, req *http.Request) outcome.Result[*http.Request] {
		req.SetBasicAuth(keyID, secret)
		return outcome.Ok(req)
	})
	return &Client{http: service.NewHTTPClient(Name, baseURL, cfg, auth, logger)}
}

// Name returns "saw".
func (c *Client) Name() string {
	return Name
}

// StayRules returns SAW's booking window.
func (c *Client) StayRules() domain.StayRules {
	return domain.StayRules{
		MinAdvance: 24 * time.Hour,
		MaxAdvance: 2 * 365 * 24 * time.Hour,
		MinNights:  2,
	}
}

// PropertyValidators returns the predicates a property must satisfy to be synchronised.
func (c *Client) PropertyValidators() []domain.Validator[domain.Property] {
	return []domain.Validator[domain.Property]{OnlineProperty, NamedProperty}
}

// Quote asks SAW for the price of a stay.
func (c *Client) Quote(ctx context.Context, params domain.StayParams) outcome.Result[*domain.Quotation] {
	decoded := call[quoteResponse](ctx, c, "/xml/propertyrates", newStayRequest(params, nil))
	return outcome.Then(decoded, func(r quoteResponse) outcome.Result[*domain.Quotation] {
		quotation := domain.NewQuotation(Name, params)
		if code, ok := r.Errors.first(); ok {
			if unavailableCodes[code.Code] {
				return outcome.Ok(quotation.Reject(outcome.CodeNotAvailable, code.Message))
			}
			return supplierError[*domain.Quotation](ctx, code)
		}
		if r.Quote == nil || r.Quote.Currency == "" {
			return service.Unrecognised[*domain.Quotation](ctx, "rate response has no quote", nil)
		}

		quotation.Available = true
		quotation.Currency = r.Quote.Currency
		quotation.Total = r.Quote.Total
		for _, f := range r.Quote.Fees {
			quotation.Fees = append(quotation.Fees, domain.Fee{Name: f.Name, Amount: f.Amount})
		}
		if NetRate.Valid(*r.Quote) {
			quotation.Fees = append(quotation.Fees, domain.Fee{Name: "tax", Amount: r.Quote.Tax})
			quotation.Total += r.Quote.Tax
		}
		return outcome.Ok(quotation)
	})
}

// Book creates a reservation for the stay.
func (c *Client) Book(ctx context.Context, params domain.StayParams) outcome.Result[*domain.Reservation] {
	if params.Customer == nil {
		return outcome.Fail[*domain.Reservation](outcome.CodeInvalidParameters, "customer is required to book")
	}

	decoded := call[bookingResponse](ctx, c, "/xml/bookings", newStayRequest(params, params.Customer))
	return outcome.Then(decoded, func(r bookingResponse) outcome.Result[*domain.Reservation] {
		if code, ok := r.Errors.first(); ok {
			if unavailableCodes[code.Code] {
				return outcome.Fail[*domain.Reservation](outcome.CodeNotAvailable, code.Message)
			}
			return supplierError[*domain.Reservation](ctx, code)
		}
		if r.Booking == nil || r.Booking.Reference == "" {
			return service.Unrecognised[*domain.Reservation](ctx, "booking response has no reference", nil)
		}
		return outcome.Ok(&domain.Reservation{
			Supplier:   Name,
			Reference:  r.Booking.Reference,
			PropertyID: params.PropertyID,
			UnitID:     params.UnitID,
			CheckIn:    params.CheckIn,
			CheckOut:   params.CheckOut,
			Guests:     params.Guests,
			Total:      r.Booking.Total,
			Currency:   r.Booking.Currency,
		})
	})
}

// Cancel cancels an existing reservation.
func (c *Client) Cancel(ctx context.Context, params domain.CancelParams) outcome.Result[*domain.Cancellation] {
	if params.Reference == "" {
		return outcome.Fail[*domain.Cancellation](outcome.CodeInvalidParameters, "reference is required to cancel")
	}

	decoded := call[cancellationResponse](ctx, c, "/xml/bookings/cancel", cancelRequest{Reference: params.Reference})
	return outcome.Then(decoded, func(r cancellationResponse) outcome.Result[*domain.Cancellation] {
		if code, ok := r.Errors.first(); ok {
			return supplierError[*domain.Cancellation](ctx, code)
		}
		if r.Cancellation == nil || r.Cancellation.Status != "cancelled" {
			return service.Unrecognised[*domain.Cancellation](ctx, "cancellation was not confirmed", nil)
		}
		return outcome.Ok(&domain.Cancellation{Supplier: Name, Reference: params.Reference})
	})
}

// FetchProperties pages through every property of the host.
func (c *Client) FetchProperties(ctx context.Context, hostID string) outcome.Result[[]domain.Property] {
	var properties []domain.Property
	for page := 1; page <= maxPages; page++ {
		decoded := list[propertiesResponse](ctx, c, "/xml/properties", hostID, page)
		if !decoded.Success() {
			return outcome.Forward[[]domain.Property](decoded)
		}
		for _, p := range decoded.Value().Properties {
			properties = append(properties, p.toDomain(hostID))
		}
		if decoded.Value().Pagination.last(page) {
			return outcome.Ok(properties)
		}
	}
	return service.Unrecognised[[]domain.Property](ctx, fmt.Sprintf("pagination exceeded %d pages", maxPages), nil)
}

// FetchAvailabilities pages through the availability calendar of every host property.
func (c *Client) FetchAvailabilities(ctx context.Context, hostID string) outcome.Result[[]domain.Availability] {
	var availabilities []domain.Availability
	for page := 1; page <= maxPages; page++ {
		decoded := list[availabilitiesResponse](ctx, c, "/xml/availabilities", hostID, page)
		if !decoded.Success() {
			return outcome.Forward[[]domain.Availability](decoded)
		}
		for _, a := range decoded.Value().Availabilities {
			date, err := domain.ParseDate(a.Date)
			if err != nil {
				return service.Unrecognised[[]domain.Availability](ctx,
					"invalid availability date: "+err.Error(),
					map[string]any{"property_id": a.PropertyID, "date": a.Date},
				)
			}
			availabilities = append(availabilities, domain.Availability{
				PropertyID:  a.PropertyID,
				Date:        date,
				Available:   a.Available,
				NightlyRate: a.Rate,
				MinStay:     a.MinStay,
			})
		}
		if decoded.Value().Pagination.last(page) {
			return outcome.Ok(availabilities)
		}
	}
	return service.Unrecognised[[]domain.Availability](ctx, fmt.Sprintf("pagination exceeded %d pages", maxPages), nil)
}

func call[T any](ctx context.Context, c *Client, path string, body any) outcome.Result[T] {
	payload, err := xml.Marshal(body)
	if err != nil {
		return outcome.Fail[T](outcome.CodeInvalidParameters, err.Error())
	}
	res := c.http.Do(ctx, service.Request{
		Method:      http.MethodPost,
		Path:        path,
		Body:        append([]byte(xml.Header), payload...),
		ContentType: contentTypeXML,
	})
	checked := outcome.Then(res, service.RequireSuccess)
	return outcome.Then(checked, func(r *service.Response) outcome.Result[T] {
		return service.DecodeXML[T](ctx, r)
	})
}

func list[T any](ctx context.Context, c *Client, path, hostID string, page int) outcome.Result[T] {
	res := c.http.Do(ctx, service.Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  url.Values{"host_id": {hostID}, "page": {strconv.Itoa(page)}},
	})
	checked := outcome.Then(res, service.RequireSuccess)
	return outcome.Then(checked, func(r *service.Response) outcome.Result[T] {
		return service.DecodeXML[T](ctx, r)
	})
}

func supplierError[T any](ctx context.Context, e errorPayload) outcome.Result[T] {
	return service.Unrecognised[T](ctx,
		fmt.Sprintf("supplier error %s: %s", e.Code, e.Message),
		map[string]any{"supplier_code": e.Code},
	)
}
