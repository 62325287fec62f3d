package usecase

import (
	"context"
	"time"

	"github.com/allisson/concierge/internal/metrics"
	"github.com/allisson/concierge/internal/outcome"
	supplierDomain "github.com/allisson/concierge/internal/supplier/domain"
)

// clientWithMetrics decorates a supplier Client with metrics instrumentation.
type clientWithMetrics struct {
	next    supplierDomain.Client
	metrics metrics.BusinessMetrics
}

// NewClientWithMetrics wraps a supplier Client with metrics recording. Operation names
// are prefixed with the supplier name, e.g. "kigo_quote".
func NewClientWithMetrics(client supplierDomain.Client, m metrics.BusinessMetrics) supplierDomain.Client {
	return &clientWithMetrics{
		next:    client,
		metrics: m,
	}
}

func (c *clientWithMetrics) Name() string {
	return c.next.Name()
}

func (c *clientWithMetrics) StayRules() supplierDomain.StayRules {
	return c.next.StayRules()
}

// PropertyValidators forwards to the wrapped client when it screens properties.
func (c *clientWithMetrics) PropertyValidators() []supplierDomain.Validator[supplierDomain.Property] {
	if screener, ok := c.next.(supplierDomain.PropertyScreener); ok {
		return screener.PropertyValidators()
	}
	return nil
}

func (c *clientWithMetrics) Quote(
	ctx context.Context,
	params supplierDomain.StayParams,
) outcome.Result[*supplierDomain.Quotation] {
	start := time.Now()
	result := c.next.Quote(ctx, params)
	c.record(ctx, "quote", start, result.Success(), result.Code())
	return result
}

func (c *clientWithMetrics) Book(
	ctx context.Context,
	params supplierDomain.StayParams,
) outcome.Result[*supplierDomain.Reservation] {
	start := time.Now()
	result := c.next.Book(ctx, params)
	c.record(ctx, "book", start, result.Success(), result.Code())
	return result
}

func (c *clientWithMetrics) Cancel(
	ctx context.Context,
	params supplierDomain.CancelParams,
) outcome.Result[*supplierDomain.Cancellation] {
	start := time.Now()
	result := c.next.Cancel(ctx, params)
	c.record(ctx, "cancel", start, result.Success(), result.Code())
	return result
}

func (c *clientWithMetrics) FetchProperties(
	ctx context.Context,
	hostID string,
) outcome.Result[[]supplierDomain.Property] {
	start := time.Now()
	result := c.next.FetchProperties(ctx, hostID)
	c.record(ctx, "fetch_properties", start, result.Success(), result.Code())
	return result
}

func (c *clientWithMetrics) FetchAvailabilities(
	ctx context.Context,
	hostID string,
) outcome.Result[[]supplierDomain.Availability] {
	start := time.Now()
	result := c.next.FetchAvailabilities(ctx, hostID)
	c.record(ctx, "fetch_availabilities", start, result.Success(), result.Code())
	return result
}

func (c *clientWithMetrics) record(
	ctx context.Context,
	operation string,
	start time.Time,
	success bool,
	code outcome.Code,
) {
	status := "success"
	if !success {
		status = "error"
		c.metrics.RecordSupplierFailure(ctx, c.next.Name(), string(code))
	}

	name := c.next.Name() + "_" + operation
	c.metrics.RecordOperation(ctx, "supplier", name, status)
	c.metrics.RecordDuration(ctx, "supplier", name, time.Since(start), status)
}
