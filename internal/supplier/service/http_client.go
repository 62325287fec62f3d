// Package service provides the transport scaffolding shared by supplier adapters:
// a rate limited, circuit broken and traced HTTP client plus response decoders that
// classify every failure into the outcome taxonomy.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/allisson/concierge/internal/outcome"
	"github.com/allisson/concierge/internal/txcontext"
)

const tracerName = "github.com/allisson/concierge/internal/supplier"

var errServerStatus = errors.New("supplier server error")

// HTTPConfig tunes the transport used to reach a supplier.
type HTTPConfig struct {
	Timeout   time.Duration
	RateLimit float64
	RateBurst int

	BreakerEnabled          bool
	BreakerFailureThreshold uint32
	BreakerMinRequests      uint32
	BreakerRecoveryTime     time.Duration
	BreakerSamplingDuration time.Duration
	BreakerHalfOpenMax      uint32
}

// DefaultHTTPConfig returns conservative transport settings.
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout:                 10 * time.Second,
		RateLimit:               10,
		RateBurst:               20,
		BreakerEnabled:          true,
		BreakerFailureThreshold: 5,
		BreakerMinRequests:      10,
		BreakerRecoveryTime:     30 * time.Second,
		BreakerSamplingDuration: 60 * time.Second,
		BreakerHalfOpenMax:      1,
	}
}

// Request describes a call relative to the client's base URL.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Header      http.Header
	Body        []byte
	ContentType string
}

// Response is a fully read supplier reply.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// OK reports whether the status is in the 2xx range.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// ContentType returns the Content-Type header.
func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// Authenticator decorates outbound requests with supplier credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, req *http.Request) outcome.Result[*http.Request]
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, req *http.Request) outcome.Result[*http.Request]

// Authenticate calls f(ctx, req).
func (f AuthenticatorFunc) Authenticate(ctx context.Context, req *http.Request) outcome.Result[*http.Request] {
	return f(ctx, req)
}

// HeaderAuth sets a static header on every request.
func HeaderAuth(name, value string) Authenticator {
	return AuthenticatorFunc(func(ctx context.Context, req *http.Request) outcome.Result[*http.Request] {
		req.Header.Set(name, value)
		return outcome.Ok(req)
	})
}

// HTTPClient performs supplier calls and records them in the transaction context
// carried by the request context.
type HTTPClient struct {
	supplier string
	baseURL  string
	http     *http.Client
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
	tracer   trace.Tracer
	auth     Authenticator
	logger   *slog.Logger
}

// NewHTTPClient builds a client for supplier rooted at baseURL. A nil auth sends
// requests unauthenticated.
func NewHTTPClient(
	supplier, baseURL string,
	cfg HTTPConfig,
	auth Authenticator,
	logger *slog.Logger,
) *HTTPClient {
	c := &HTTPClient{
		supplier: supplier,
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: cfg.Timeout},
		tracer:   otel.Tracer(tracerName),
		auth:     auth,
		logger:   logger,
	}

	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	if cfg.BreakerEnabled {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        supplier,
			MaxRequests: cfg.BreakerHalfOpenMax,
			Interval:    cfg.BreakerSamplingDuration,
			Timeout:     cfg.BreakerRecoveryTime,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < cfg.BreakerMinRequests {
					return false
				}
				return counts.TotalFailures >= cfg.BreakerFailureThreshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				if logger != nil {
					logger.Warn("supplier circuit breaker state changed",
						slog.String("supplier", name),
						slog.String("from", from.String()),
						slog.String("to", to.String()),
					)
				}
			},
		})
	}

	return c
}

// Supplier returns the supplier name the client is bound to.
func (c *HTTPClient) Supplier() string {
	return c.supplier
}

// BaseURL returns the root every request path is resolved against.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Standard returns the underlying *http.Client for libraries that need one.
func (c *HTTPClient) Standard() *http.Client {
	return c.http
}

// Do sends req and returns the read response for any HTTP status. Only transport
// failures are reported as failed results; use RequireSuccess to reject non-2xx replies.
func (c *HTTPClient) Do(ctx context.Context, req Request) outcome.Result[*Response] {
	tc := txcontext.FromContext(ctx)
	target := c.resolve(req)

	ctx, span := c.tracer.Start(ctx, "supplier."+c.supplier+".request", trace.WithAttributes(
		attribute.String("supplier", c.supplier),
		attribute.String("http.method", req.Method),
		attribute.String("http.url", target),
	))
	defer span.End()

	tc.NetworkRequest(req.Method, target, string(req.Body))

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			tc.NetworkFailure("rate limiter: " + err.Error())
			span.SetStatus(otelcodes.Error, err.Error())
			return outcome.Fail[*Response](outcome.CodeRateLimited, err.Error())
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, bytes.NewReader(req.Body))
	if err != nil {
		return outcome.Fail[*Response](outcome.CodeInvalidParameters, err.Error())
	}
	for name, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}

	if c.auth != nil {
		authenticated := c.auth.Authenticate(ctx, httpReq)
		if !authenticated.Success() {
			span.SetStatus(otelcodes.Error, authenticated.Message())
			return outcome.Forward[*Response](authenticated)
		}
		httpReq = authenticated.Value()
	}

	res, err := c.execute(httpReq)
	if err != nil {
		code, message := Classify(err)
		tc.NetworkFailure(message)
		span.SetStatus(otelcodes.Error, message)
		c.logFailure(req, code, message)
		return outcome.Fail[*Response](code, message)
	}

	tc.NetworkResponse(res.Status, res.ContentType(), string(res.Body))
	span.SetAttributes(attribute.Int("http.status_code", res.Status))
	if !res.OK() {
		span.SetStatus(otelcodes.Error, http.StatusText(res.Status))
	}

	return outcome.Ok(res)
}

func (c *HTTPClient) execute(req *http.Request) (*Response, error) {
	call := func() (any, error) {
		httpRes, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = httpRes.Body.Close()
		}()

		body, err := io.ReadAll(httpRes.Body)
		if err != nil {
			return nil, err
		}

		res := &Response{Status: httpRes.StatusCode, Header: httpRes.Header, Body: body}
		if res.Status >= 500 {
			return res, errServerStatus
		}
		return res, nil
	}

	if c.breaker == nil {
		res, err := call()
		return unwrapResponse(res, err)
	}
	res, err := c.breaker.Execute(call)
	return unwrapResponse(res, err)
}

func unwrapResponse(res any, err error) (*Response, error) {
	if errors.Is(err, errServerStatus) {
		return res.(*Response), nil
	}
	if err != nil {
		return nil, err
	}
	return res.(*Response), nil
}

func (c *HTTPClient) resolve(req Request) string {
	target := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}
	return target
}

func (c *HTTPClient) logFailure(req Request, code outcome.Code, message string) {
	if c.logger == nil {
		return
	}
	c.logger.Warn("supplier request failed",
		slog.String("supplier", c.supplier),
		slog.String("method", req.Method),
		slog.String("path", req.Path),
		slog.String("code", string(code)),
		slog.String("error", message),
	)
}

// Classify maps a transport error to its outcome code.
func Classify(err error) (outcome.Code, string) {
	var netErr net.Error
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return outcome.CodeCircuitOpen, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return outcome.CodeConnectionTimeout, err.Error()
	case errors.As(err, &netErr) && netErr.Timeout():
		return outcome.CodeConnectionTimeout, err.Error()
	case errors.Is(err, syscall.ECONNREFUSED):
		return outcome.CodeConnectionRefused, err.Error()
	default:
		return outcome.CodeNetworkFailure, err.Error()
	}
}

// RequireSuccess rejects responses outside the 2xx range with an http_status_N failure.
func RequireSuccess(res *Response) outcome.Result[*Response] {
	if !res.OK() {
		return outcome.Fail[*Response](
			outcome.HTTPStatus(res.Status),
			fmt.Sprintf("unexpected status %d: %s", res.Status, truncate(string(res.Body), 256)),
		)
	}
	return outcome.Ok(res)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
