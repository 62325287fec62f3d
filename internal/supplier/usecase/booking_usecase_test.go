package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	externalErrorDomain "github.com/allisson/concierge/internal/externalerror/domain"
	"github.com/allisson/concierge/internal/outcome"
	supplierDomain "github.com/allisson/concierge/internal/supplier/domain"
	"github.com/allisson/concierge/internal/supplier/usecase/mocks"
	"github.com/allisson/concierge/internal/txcontext"
)

// recordingRecorder keeps recorded errors together with the context they were recorded in.
type recordingRecorder struct {
	records []*externalErrorDomain.ExternalError
	events  [][]txcontext.Event
}

func (r *recordingRecorder) Record(ctx context.Context, e *externalErrorDomain.ExternalError) {
	r.records = append(r.records, e)
	r.events = append(r.events, txcontext.FromContext(ctx).Events())
}

var now = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func setupBookingUseCase(t *testing.T, clients ...supplierDomain.Client) (*bookingUseCase, *recordingRecorder) {
	t.Helper()
	recorder := &recordingRecorder{}
	uc := NewBookingUseCase(
		NewRegistry(clients...),
		recorder,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	).(*bookingUseCase)
	uc.now = func() time.Time { return now }
	return uc, recorder
}

func stayIn(days, nights int) supplierDomain.StayParams {
	checkIn := now.AddDate(0, 0, days)
	return supplierDomain.StayParams{
		PropertyID: "p-1",
		CheckIn:    checkIn,
		CheckOut:   checkIn.AddDate(0, 0, nights),
		Guests:     2,
		Customer:   &supplierDomain.Customer{FirstName: "Ana", Email: "ana@example.com"},
	}
}

func TestBookingUseCase_Quote(t *testing.T) {
	t.Run("check-in beyond the booking window is a negative quotation", func(t *testing.T) {
		client := mocks.NewMockClient("kigo")
		client.Rules = supplierDomain.StayRules{MaxAdvance: 365 * 24 * time.Hour}
		uc, recorder := setupBookingUseCase(t, client)

		result := uc.Quote(context.Background(), "kigo", stayIn(400, 3))

		require.True(t, result.Success())
		assert.False(t, result.Value().Successful())
		assert.Equal(t, outcome.CodeCheckInTooFar, result.Value().ErrorCode)
		assert.Empty(t, recorder.records)
		client.AssertNotCalled(t, "Quote", mock.Anything, mock.Anything)
	})

	t.Run("check-in too near", func(t *testing.T) {
		client := mocks.NewMockClient("saw")
		client.Rules = supplierDomain.StayRules{MinAdvance: 48 * time.Hour}
		uc, _ := setupBookingUseCase(t, client)

		result := uc.Quote(context.Background(), "saw", stayIn(1, 3))

		require.True(t, result.Success())
		assert.Equal(t, outcome.CodeCheckInTooNear, result.Value().ErrorCode)
	})

	t.Run("stay too short", func(t *testing.T) {
		client := mocks.NewMockClient("saw")
		client.Rules = supplierDomain.StayRules{MinNights: 3}
		uc, _ := setupBookingUseCase(t, client)

		result := uc.Quote(context.Background(), "saw", stayIn(10, 2))

		require.True(t, result.Success())
		assert.Equal(t, outcome.CodeStayTooShort, result.Value().ErrorCode)
	})

	t.Run("successful quote is not recorded", func(t *testing.T) {
		client := mocks.NewMockClient("kigo")
		params := stayIn(10, 3)
		quotation := supplierDomain.NewQuotation("kigo", params)
		quotation.Available = true
		client.On("Quote", mock.Anything, params).Return(outcome.Ok(quotation)).Once()
		uc, recorder := setupBookingUseCase(t, client)

		result := uc.Quote(context.Background(), "kigo", params)

		require.True(t, result.Success())
		assert.Same(t, quotation, result.Value())
		assert.Empty(t, recorder.records)
		client.AssertExpectations(t)
	})

	t.Run("supplier failure is recorded with its event log", func(t *testing.T) {
		client := mocks.NewMockClient("kigo")
		params := stayIn(10, 3)
		client.On("Quote", mock.Anything, params).
			Run(func(args mock.Arguments) {
				ctx := args.Get(0).(context.Context)
				txcontext.FromContext(ctx).NetworkRequest("POST", "https://kigo.test/v1/quotes", "{}")
				txcontext.FromContext(ctx).NetworkFailure("timeout")
			}).
			Return(outcome.Fail[*supplierDomain.Quotation](outcome.CodeConnectionTimeout, "timeout")).
			Once()
		uc, recorder := setupBookingUseCase(t, client)

		result := uc.Quote(context.Background(), "kigo", params)

		assert.Equal(t, outcome.CodeConnectionTimeout, result.Code())
		require.Len(t, recorder.records, 1)
		assert.Equal(t, externalErrorDomain.OperationQuote, recorder.records[0].Operation)
		assert.Equal(t, "kigo", recorder.records[0].Supplier)
		assert.Equal(t, "connection_timeout", recorder.records[0].Code)
		require.Len(t, recorder.events[0], 2)
		assert.Equal(t, txcontext.LabelNetworkFailure, recorder.events[0][1].Label)
	})

	t.Run("caller transaction context is reused", func(t *testing.T) {
		client := mocks.NewMockClient("kigo")
		params := stayIn(10, 3)
		tc := txcontext.New("api")
		client.On("Quote", mock.MatchedBy(func(ctx context.Context) bool {
			return txcontext.FromContext(ctx) == tc
		}), params).Return(outcome.Ok(supplierDomain.NewQuotation("kigo", params))).Once()
		uc, _ := setupBookingUseCase(t, client)

		uc.Quote(txcontext.WithContext(context.Background(), tc), "kigo", params)

		client.AssertExpectations(t)
	})

	t.Run("unknown supplier", func(t *testing.T) {
		uc, recorder := setupBookingUseCase(t)

		result := uc.Quote(context.Background(), "nope", stayIn(10, 3))

		assert.Equal(t, outcome.CodeUnknownSupplier, result.Code())
		assert.Empty(t, recorder.records)
	})

	t.Run("invalid parameters", func(t *testing.T) {
		client := mocks.NewMockClient("kigo")
		uc, _ := setupBookingUseCase(t, client)
		params := stayIn(10, 3)
		params.Guests = 0

		result := uc.Quote(context.Background(), "kigo", params)

		assert.Equal(t, outcome.CodeInvalidParameters, result.Code())
	})

	t.Run("panicking client becomes unexpected_error", func(t *testing.T) {
		client := mocks.NewMockClient("kigo")
		params := stayIn(10, 3)
		client.On("Quote", mock.Anything, params).Run(func(args mock.Arguments) {
			panic("nil map")
		}).Once()
		uc, recorder := setupBookingUseCase(t, client)

		result := uc.Quote(context.Background(), "kigo", params)

		assert.Equal(t, outcome.CodeUnexpectedError, result.Code())
		require.Len(t, recorder.records, 1)
		assert.Contains(t, recorder.records[0].Message, "nil map")
	})
}

func TestBookingUseCase_Book(t *testing.T) {
	t.Run("rule violation fails without calling the supplier", func(t *testing.T) {
		client := mocks.NewMockClient("kigo")
		client.Rules = supplierDomain.StayRules{MaxAdvance: 30 * 24 * time.Hour}
		uc, recorder := setupBookingUseCase(t, client)

		result := uc.Book(context.Background(), "kigo", stayIn(60, 3))

		assert.Equal(t, outcome.CodeCheckInTooFar, result.Code())
		require.Len(t, recorder.records, 1)
		assert.Equal(t, externalErrorDomain.OperationBook, recorder.records[0].Operation)
	})

	t.Run("success", func(t *testing.T) {
		client := mocks.NewMockClient("kigo")
		params := stayIn(10, 3)
		reservation := &supplierDomain.Reservation{Supplier: "kigo", Reference: "K-1"}
		client.On("Book", mock.Anything, params).Return(outcome.Ok(reservation)).Once()
		uc, _ := setupBookingUseCase(t, client)

		result := uc.Book(context.Background(), "kigo", params)

		require.True(t, result.Success())
		assert.Equal(t, "K-1", result.Value().Reference)
	})
}

func TestBookingUseCase_Cancel(t *testing.T) {
	client := mocks.NewMockClient("saw")
	params := supplierDomain.CancelParams{Reference: "B-1"}
	client.On("Cancel", mock.Anything, params).
		Return(outcome.Fail[*supplierDomain.Cancellation](outcome.HTTPStatus(503), "unavailable")).
		Once()
	uc, recorder := setupBookingUseCase(t, client)

	result := uc.Cancel(context.Background(), "saw", params)

	assert.Equal(t, outcome.Code("http_status_503"), result.Code())
	require.Len(t, recorder.records, 1)
	assert.Equal(t, externalErrorDomain.OperationCancel, recorder.records[0].Operation)
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry(mocks.NewMockClient("saw"), mocks.NewMockClient("kigo"))

	client, ok := registry.Get("kigo")
	require.True(t, ok)
	assert.Equal(t, "kigo", client.Name())

	_, ok = registry.Get("unknown")
	assert.False(t, ok)
	assert.Equal(t, []string{"kigo", "saw"}, registry.Names())
}
