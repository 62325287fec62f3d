// Package waytostay integrates the Waytostay REST API, authenticated with OAuth2
// client credentials. Access tokens are cached until shortly before they expire; a token
// the API rejects is exchanged again and the request is retried once.
package waytostay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	cacheUsecase "github.com/allisson/concierge/internal/cache/usecase"
	"github.com/allisson/concierge/internal/credentials"
	"github.com/allisson/concierge/internal/outcome"
	"github.com/allisson/concierge/internal/supplier/domain"
	"github.com/allisson/concierge/internal/supplier/service"
	"github.com/allisson/concierge/internal/txcontext"
)

// Name is the supplier name used for credentials, events and error records.
const Name = "waytostay"

// Credential fields.
const (
	FieldClientID     = "client_id"
	FieldClientSecret = "client_secret"
)

// RequiredFields are the credential fields needed in production.
var RequiredFields = []string{FieldClientID, FieldClientSecret}

const (
	tokenKey      = "access_token"
	tokenLeeway   = 30 * time.Second
	maxPages      = 100
	contentTypeJS = "application/json"
)

// Supplier error identifiers mapped onto domain codes.
var quoteErrors = map[string]outcome.Code{
	"availability_not_found":  outcome.CodeNotAvailable,
	"max_days_before_arrival": outcome.CodeCheckInTooFar,
	"min_days_before_arrival": outcome.CodeCheckInTooNear,
	"minimum_stay":            outcome.CodeStayTooShort,
}

// Client talks to the Waytostay API.
type Client struct {
	http   *service.HTTPClient
	oauth  clientcredentials.Config
	tokens *cacheUsecase.Cache
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Waytostay client. Tokens are memoized in tokens.
func New(
	baseURL string,
	creds credentials.Set,
	cfg service.HTTPConfig,
	tokens *cacheUsecase.Cache,
	logger *slog.Logger,
) *Client {
	c := &Client{
		oauth: clientcredentials.Config{
			ClientID:     creds.Get(FieldClientID),
			ClientSecret: creds.Get(FieldClientSecret),
			TokenURL:     strings.TrimRight(baseURL, "/") + "/oauth/token",
		},
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
	c.http = service.NewHTTPClient(Name, baseURL, cfg, service.AuthenticatorFunc(c.authenticate), logger)
	return c
}

// Name returns "waytostay".
func (c *Client) Name() string {
	return Name
}

// StayRules returns Waytostay's booking window.
func (c *Client) StayRules() domain.StayRules {
	return domain.StayRules{
		MinAdvance: 48 * time.Hour,
		MaxAdvance: 540 * 24 * time.Hour,
		MinNights:  1,
	}
}

// PropertyValidators returns the predicates a property must satisfy to be synchronised.
func (c *Client) PropertyValidators() []domain.Validator[domain.Property] {
	return []domain.Validator[domain.Property]{ActiveProperty, HasCapacity}
}

// Quote asks Waytostay for the price of a stay.
func (c *Client) Quote(ctx context.Context, params domain.StayParams) outcome.Result[*domain.Quotation] {
	res := c.send(ctx, http.MethodPost, "/bookings/quote", newStayRequest(params, nil))
	return outcome.Then(res, func(r *service.Response) outcome.Result[*domain.Quotation] {
		quotation := domain.NewQuotation(Name, params)
		if r.Status == http.StatusUnprocessableEntity {
			return rejectQuotation(ctx, quotation, r)
		}

		payload := outcome.Then(service.RequireSuccess(r), func(r *service.Response) outcome.Result[quoteResponse] {
			return service.DecodeJSON[quoteResponse](ctx, r)
		})
		return outcome.Then(payload, func(q quoteResponse) outcome.Result[*domain.Quotation] {
			if q.BookingPrice == nil || q.BookingPrice.Currency == "" {
				return service.Unrecognised[*domain.Quotation](ctx, "quote response has no booking_price", nil)
			}
			quotation.Available = true
			quotation.Currency = q.BookingPrice.Currency
			quotation.Total = q.BookingPrice.FinalPrice
			for _, e := range q.Extras {
				quotation.Fees = append(quotation.Fees, domain.Fee{Name: e.Name, Amount: e.Price})
			}
			return outcome.Ok(quotation)
		})
	})
}

func rejectQuotation(ctx context.Context, q *domain.Quotation, r *service.Response) outcome.Result[*domain.Quotation] {
	decoded := service.DecodeJSON[errorResponse](ctx, r)
	if !decoded.Success() {
		return outcome.Forward[*domain.Quotation](decoded)
	}
	code, known := quoteErrors[decoded.Value().Error]
	if !known {
		return service.Unrecognised[*domain.Quotation](ctx,
			fmt.Sprintf("unknown quote error %q", decoded.Value().Error),
			map[string]any{"status": r.Status},
		)
	}
	message := decoded.Value().Message
	if message == "" {
		message = decoded.Value().Error
	}
	return outcome.Ok(q.Reject(code, message))
}

// Book creates a reservation for the stay.
func (c *Client) Book(ctx context.Context, params domain.StayParams) outcome.Result[*domain.Reservation] {
	if params.Customer == nil {
		return outcome.Fail[*domain.Reservation](outcome.CodeInvalidParameters, "customer is required to book")
	}

	res := c.send(ctx, http.MethodPost, "/bookings", newStayRequest(params, params.Customer))
	checked := outcome.Then(res, func(r *service.Response) outcome.Result[*service.Response] {
		if r.Status == http.StatusUnprocessableEntity {
			return outcome.Fail[*service.Response](outcome.CodeNotAvailable, "stay can no longer be booked")
		}
		return service.RequireSuccess(r)
	})
	payload := outcome.Then(checked, func(r *service.Response) outcome.Result[bookingResponse] {
		return service.DecodeJSON[bookingResponse](ctx, r)
	})
	return outcome.Then(payload, func(b bookingResponse) outcome.Result[*domain.Reservation] {
		if b.Reference == "" {
			return service.Unrecognised[*domain.Reservation](ctx, "booking response has no booking_reference", nil)
		}
		reservation := &domain.Reservation{
			Supplier:   Name,
			Reference:  b.Reference,
			PropertyID: params.PropertyID,
			UnitID:     params.UnitID,
			CheckIn:    params.CheckIn,
			CheckOut:   params.CheckOut,
			Guests:     params.Guests,
		}
		if b.BookingPrice != nil {
			reservation.Total = b.BookingPrice.FinalPrice
			reservation.Currency = b.BookingPrice.Currency
		}
		return outcome.Ok(reservation)
	})
}

// Cancel cancels an existing reservation.
func (c *Client) Cancel(ctx context.Context, params domain.CancelParams) outcome.Result[*domain.Cancellation] {
	if params.Reference == "" {
		return outcome.Fail[*domain.Cancellation](outcome.CodeInvalidParameters, "reference is required to cancel")
	}

	res := c.send(ctx, http.MethodPost, "/bookings/"+url.PathEscape(params.Reference)+"/cancellation", struct{}{})
	checked := outcome.Then(res, service.RequireSuccess)
	payload := outcome.Then(checked, func(r *service.Response) outcome.Result[bookingResponse] {
		return service.DecodeJSON[bookingResponse](ctx, r)
	})
	return outcome.Then(payload, func(b bookingResponse) outcome.Result[*domain.Cancellation] {
		if !strings.HasPrefix(b.Status, "cancelled") {
			return service.Unrecognised[*domain.Cancellation](ctx,
				fmt.Sprintf("unexpected booking status %q after cancellation", b.Status), nil)
		}
		return outcome.Ok(&domain.Cancellation{Supplier: Name, Reference: params.Reference})
	})
}

// FetchProperties pages through every property of the host.
func (c *Client) FetchProperties(ctx context.Context, hostID string) outcome.Result[[]domain.Property] {
	records := fetchPages(ctx, c, "/properties", hostID, func(p page) []propertyRecord { return p.Embedded.Properties })
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
	records := fetchPages(ctx, c, "/availabilities", hostID, func(p page) []availabilityRecord { return p.Embedded.Availabilities })
	return outcome.Then(records, func(rs []availabilityRecord) outcome.Result[[]domain.Availability] {
		availabilities := make([]domain.Availability, 0, len(rs))
		for _, r := range rs {
			date, err := domain.ParseDate(r.Date)
			if err != nil {
				return service.Unrecognised[[]domain.Availability](ctx,
					"invalid availability date: "+err.Error(),
					map[string]any{"property_reference": r.PropertyReference, "date": r.Date},
				)
			}
			availabilities = append(availabilities, domain.Availability{
				PropertyID:  r.PropertyReference,
				Date:        date,
				Available:   r.Available,
				NightlyRate: r.Price,
				MinStay:     r.MinimumStay,
			})
		}
		return outcome.Ok(availabilities)
	})
}

func fetchPages[T any](
	ctx context.Context,
	c *Client,
	path, hostID string,
	items func(page) []T,
) outcome.Result[[]T] {
	var all []T
	for n := 1; n <= maxPages; n++ {
		res := c.do(ctx, service.Request{
			Method: http.MethodGet,
			Path:   path,
			Query:  url.Values{"host": {hostID}, "page": {strconv.Itoa(n)}},
		})
		checked := outcome.Then(res, service.RequireSuccess)
		decoded := outcome.Then(checked, func(r *service.Response) outcome.Result[page] {
			return service.DecodeJSON[page](ctx, r)
		})
		if !decoded.Success() {
			return outcome.Forward[[]T](decoded)
		}
		all = append(all, items(decoded.Value())...)
		if decoded.Value().Links.Next == nil {
			return outcome.Ok(all)
		}
	}
	return service.Unrecognised[[]T](ctx, fmt.Sprintf("pagination exceeded %d pages", maxPages), nil)
}

func (c *Client) send(ctx context.Context, method, path string, body any) outcome.Result[*service.Response] {
	payload, err := json.Marshal(body)
	if err != nil {
		return outcome.Fail[*service.Response](outcome.CodeInvalidParameters, err.Error())
	}
	return c.do(ctx, service.Request{
		Method:      method,
		Path:        path,
		Body:        payload,
		ContentType: contentTypeJS,
	})
}

// do sends req, renewing the access token and retrying once when the API answers 401.
func (c *Client) do(ctx context.Context, req service.Request) outcome.Result[*service.Response] {
	res := c.http.Do(ctx, req)
	if !res.Success() || res.Value().Status != http.StatusUnauthorized {
		return res
	}

	txcontext.FromContext(ctx).Message("access token rejected, exchanging a new one")
	renewed := c.renew(ctx)
	if !renewed.Success() {
		return outcome.Forward[*service.Response](renewed)
	}
	return c.http.Do(ctx, req)
}

func (c *Client) authenticate(ctx context.Context, req *http.Request) outcome.Result[*http.Request] {
	token := c.token(ctx)
	return outcome.Map(token, func(t *oauth2.Token) *http.Request {
		t.SetAuthHeader(req)
		return req
	})
}

// token returns a cached access token, exchanging a new one when the cached
// token is missing or about to expire.
func (c *Client) token(ctx context.Context) outcome.Result[*oauth2.Token] {
	codec := cacheUsecase.JSONCodec[*oauth2.Token]{}
	cached := cacheUsecase.Fetch(ctx, c.tokens, tokenKey, codec, c.exchange)
	if !cached.Success() || c.fresh(cached.Value()) {
		return cached
	}

	txcontext.FromContext(ctx).Message("cached access token expired, exchanging a new one")
	return c.renew(ctx)
}

// renew exchanges a new access token and overwrites the cached one.
func (c *Client) renew(ctx context.Context) outcome.Result[*oauth2.Token] {
	renewed := c.exchange(ctx)
	if !renewed.Success() {
		return renewed
	}
	codec := cacheUsecase.JSONCodec[*oauth2.Token]{}
	if err := cacheUsecase.Store(ctx, c.tokens, tokenKey, codec, renewed.Value()); err != nil && c.logger != nil {
		c.logger.Warn("failed to store access token",
			slog.String("supplier", Name),
			slog.String("namespace", c.tokens.Namespace()),
			slog.Any("error", err),
		)
	}
	return renewed
}

func (c *Client) fresh(t *oauth2.Token) bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	return t.Expiry.IsZero() || t.Expiry.After(c.now().Add(tokenLeeway))
}

func (c *Client) exchange(ctx context.Context) outcome.Result[*oauth2.Token] {
	tc := txcontext.FromContext(ctx)
	tc.NetworkRequest(http.MethodPost, c.oauth.TokenURL, "grant_type=client_credentials")

	token, err := c.oauth.Token(context.WithValue(ctx, oauth2.HTTPClient, c.http.Standard()))
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			tc.NetworkResponse(retrieveErr.Response.StatusCode, retrieveErr.Response.Header.Get("Content-Type"), string(retrieveErr.Body))
			return outcome.Fail[*oauth2.Token](outcome.HTTPStatus(retrieveErr.Response.StatusCode), "token exchange failed: "+retrieveErr.Error())
		}
		code, message := service.Classify(err)
		tc.NetworkFailure(message)
		return outcome.Fail[*oauth2.Token](code, message)
	}

	tc.Message("access token obtained")
	return outcome.Ok(token)
}
