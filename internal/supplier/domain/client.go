package domain

import (
	"context"

	"github.com/allisson/concierge/internal/outcome"
)

// Client is the uniform contract every supplier integration implements.
//
// Every operation returns a terminal Result. Network, protocol and domain
// failures are reported through the Result and never raised.
type Client interface {
	// Name is the supplier name used for credentials, events and error records.
	Name() string

	// StayRules are the booking window constraints enforced before quoting.
	StayRules() StayRules

	Quote(ctx context.Context, params StayParams) outcome.Result[*Quotation]
	Book(ctx context.Context, params StayParams) outcome.Result[*Reservation]
	Cancel(ctx context.Context, params CancelParams) outcome.Result[*Cancellation]

	FetchProperties(ctx context.Context, hostID string) outcome.Result[[]Property]
	FetchAvailabilities(ctx context.Context, hostID string) outcome.Result[[]Availability]
}

// PropertyScreener is implemented by clients that reject some fetched properties.
type PropertyScreener interface {
	PropertyValidators() []Validator[Property]
}
