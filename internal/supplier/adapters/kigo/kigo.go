// Package kigo integrates the Kigo JSON REST API.
package kigo

import (
	"context"
	"encoding/json"
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
const Name = "kigo"

// Credential fields.
const (
	FieldAPIKey = "api_key"
)

// RequiredFields are the credential fields needed in production.
var RequiredFields = []string{FieldAPIKey}

const maxPages = 100

// Client talks to the Kigo API.
type Client struct {
	http *service.HTTPClient
}

// New creates a Kigo client.
func New(baseURL string, creds credentials.Set, cfg service.HTTPConfig, logger *slog.Logger) *Client {
	return &Client{
		http: service.NewHTTPClient(Name, baseURL, cfg, service.HeaderAuth("X-Api-Key", creds.Get(FieldAPIKey)), logger),
	}
}

// Name returns "kigo".
func (c *Client) Name() string {
	return Name
}

// StayRules returns Kigo's booking window.
func (c *Client) StayRules() domain.StayRules {
	return domain.StayRules{
		MaxAdvance: 365 * 24 * time.Hour,
		MinNights:  1,
	}
}

// PropertyValidators returns the predicates a property must satisfy to be synchronised.
func (c *Client) PropertyValidators() []domain.Validator[domain.Property] {
	return []domain.Validator[domain.Property]{ActiveProperty, InstantBookable}
}

// Quote asks Kigo for the price of a stay.
func (c *Client) Quote(ctx context.Context, params domain.StayParams) outcome.Result[*domain.Quotation] {
	res := c.post(ctx, "/v1/quotes", newStayRequest(params, nil))
	return outcome.Then(res, func(r *service.Response) outcome.Result[*domain.Quotation] {
		payload := service.DecodeJSON[quoteResponse](ctx, r)
		return outcome.Then(payload, func(q quoteResponse) outcome.Result[*domain.Quotation] {
			return mapQuotation(ctx, params, q)
		})
	})
}

// Book creates a reservation for the stay.
func (c *Client) Book(ctx context.Context, params domain.StayParams) outcome.Result[*domain.Reservation] {
	if params.Customer == nil {
		return outcome.Fail[*domain.Reservation](outcome.CodeInvalidParameters, "customer is required to book")
	}

	res := c.send(ctx, http.MethodPost, "/v1/reservations", newStayRequest(params, params.Customer))
	if !res.Success() {
		return outcome.Forward[*domain.Reservation](res)
	}
	if res.Value().Status == http.StatusConflict {
		return outcome.Fail[*domain.Reservation](outcome.CodeNotAvailable, "property is no longer available")
	}

	checked := service.RequireSuccess(res.Value())
	payload := outcome.Then(checked, func(r *service.Response) outcome.Result[reservationResponse] {
		return service.DecodeJSON[reservationResponse](ctx, r)
	})
	return outcome.Then(payload, func(r reservationResponse) outcome.Result[*domain.Reservation] {
		if r.ReservationID == "" {
			return service.Unrecognised[*domain.Reservation](ctx, "reservation response has no reservation_id", nil)
		}
		return outcome.Ok(&domain.Reservation{
			Supplier:   Name,
			Reference:  r.ReservationID,
			PropertyID: params.PropertyID,
			UnitID:     params.UnitID,
			CheckIn:    params.CheckIn,
			CheckOut:   params.CheckOut,
			Guests:     params.Guests,
			Total:      r.Total,
			Currency:   r.Currency,
		})
	})
}

// Cancel cancels an existing reservation.
func (c *Client) Cancel(ctx context.Context, params domain.CancelParams) outcome.Result[*domain.Cancellation] {
	if params.Reference == "" {
		return outcome.Fail[*domain.Cancellation](outcome.CodeInvalidParameters, "reference is required to cancel")
	}

	res := c.http.Do(ctx, service.Request{
		Method: http.MethodDelete,
		Path:   "/v1/reservations/" + url.PathEscape(params.Reference),
	})
	checked := outcome.Then(res, service.RequireSuccess)
	payload := outcome.Then(checked, func(r *service.Response) outcome.Result[cancellationResponse] {
		return service.DecodeJSON[cancellationResponse](ctx, r)
	})
	return outcome.Then(payload, func(r cancellationResponse) outcome.Result[*domain.Cancellation] {
		if r.Status != "cancelled" {
			return service.Unrecognised[*domain.Cancellation](ctx,
				fmt.Sprintf("unexpected cancellation status %q", r.Status),
				map[string]any{"reservation_id": r.ReservationID},
			)
		}
		return outcome.Ok(&domain.Cancellation{Supplier: Name, Reference: params.Reference})
	})
}

// FetchProperties pages through every property of the host.
func (c *Client) FetchProperties(ctx context.Context, hostID string) outcome.Result[[]domain.Property] {
	records := fetchPages[propertyRecord](ctx, c, "/v1/hosts/"+url.PathEscape(hostID)+"/properties")
	return outcome.Map(records, func(rs []propertyRecord) []domain.Property {
		properties := make([]domain.Property, 0, len(rs))
		for _, r := range rs {
			properties = append(properties, r.toDomain(hostID))
		}
		return properties
	})
}

// FetchAvailabilities pages through the availability calendar of every host property.
func (c *Client) FetchAvailabilities(ctx context.Context, hostID string) outcome.Result[[]domain.Availability] {
	records := fetchPages[availabilityRecord](ctx, c, "/v1/hosts/"+url.PathEscape(hostID)+"/availabilities")
	return outcome.Then(records, func(rs []availabilityRecord) outcome.Result[[]domain.Availability] {
		availabilities := make([]domain.Availability, 0, len(rs))
		for _, r := range rs {
			date, err := domain.ParseDate(r.Date)
			if err != nil {
				return service.Unrecognised[[]domain.Availability](ctx,
					"invalid availability date: "+err.Error(),
					map[string]any{"property_id": r.PropertyID, "date": r.Date},
				)
			}
			availabilities = append(availabilities, domain.Availability{
				PropertyID:  r.PropertyID,
				Date:        date,
				Available:   r.Available,
				NightlyRate: r.NightlyRate,
				MinStay:     r.MinStay,
			})
		}
		return outcome.Ok(availabilities)
	})
}

func fetchPages[T any](ctx context.Context, c *Client, path string) outcome.Result[[]T] {
	var all []T
	page := 1
	for i := 0; i < maxPages; i++ {
		res := c.http.Do(ctx, service.Request{
			Method: http.MethodGet,
			Path:   path,
			Query:  url.Values{"page": {strconv.Itoa(page)}},
		})
		checked := outcome.Then(res, service.RequireSuccess)
		decoded := outcome.Then(checked, func(r *service.Response) outcome.Result[pageResponse[T]] {
			return service.DecodeJSON[pageResponse[T]](ctx, r)
		})
		if !decoded.Success() {
			return outcome.Forward[[]T](decoded)
		}

		all = append(all, decoded.Value().Data...)
		if decoded.Value().NextPage == nil {
			return outcome.Ok(all)
		}
		page = *decoded.Value().NextPage
	}
	return service.Unrecognised[[]T](ctx, fmt.Sprintf("pagination exceeded %d pages", maxPages), map[string]any{"path": path})
}

func (c *Client) post(ctx context.Context, path string, body any) outcome.Result[*service.Response] {
	return outcome.Then(c.send(ctx, http.MethodPost, path, body), service.RequireSuccess)
}

// send encodes body as JSON and returns the response for any HTTP status.
func (c *Client) send(ctx context.Context, method, path string, body any) outcome.Result[*service.Response] {
	payload, err := json.Marshal(body)
	if err != nil {
		return outcome.Failf[*service.Response](outcome.CodeInvalidParameters, "encoding request: %v", err)
	}
	return c.http.Do(ctx, service.Request{
		Method:      method,
		Path:        path,
		Body:        payload,
		ContentType: "application/json",
	})
}

func mapQuotation(ctx context.Context, params domain.StayParams, q quoteResponse) outcome.Result[*domain.Quotation] {
	quotation := domain.NewQuotation(Name, params)
	if !q.Available {
		return outcome.Ok(quotation.Reject(outcome.CodeNotAvailable, "property is not available for the requested stay"))
	}
	if q.Currency == "" || q.Total == nil {
		return service.Unrecognised[*domain.Quotation](ctx, "quote response is missing total or currency", nil)
	}

	quotation.Available = true
	quotation.Currency = q.Currency
	quotation.Total = *q.Total
	for _, f := range q.Fees {
		quotation.Fees = append(quotation.Fees, domain.Fee{Name: f.Name, Amount: f.Amount})
	}
	return outcome.Ok(quotation)
}
