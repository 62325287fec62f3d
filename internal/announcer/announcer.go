// Package announcer provides an in-process publish/subscribe bus.
//
// Handlers run synchronously on the publishing goroutine, in registration order. A handler that
// needs concurrency spawns its own goroutine. Nothing is persisted or retried.
package announcer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	apperrors "github.com/allisson/concierge/internal/errors"
)

// Handler reacts to a published event. The payload is delivered exactly as published.
type Handler func(ctx context.Context, event string, payload any) error

// Announcer dispatches events to the handlers registered for their exact name.
type Announcer struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *slog.Logger
}

// New creates an Announcer without handlers.
func New(logger *slog.Logger) *Announcer {
	return &Announcer{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// On registers handler for event.
func (a *Announcer) On(event string, handler Handler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handlers[event] = append(a.handlers[event], handler)
}

// Handlers returns the number of handlers registered for event.
func (a *Announcer) Handlers(event string) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.handlers[event])
}

// Publish invokes every handler registered for event. Publishing an event nobody listens to is a no-op.
//
// A failing or panicking handler does not stop the remaining ones. Every failure is logged and
// the joined failures are returned once all handlers ran.
func (a *Announcer) Publish(ctx context.Context, event string, payload any) error {
	a.mu.RLock()
	handlers := append([]Handler(nil), a.handlers[event]...)
	a.mu.RUnlock()

	if len(handlers) == 0 {
		a.logger.Debug("event published without handlers", slog.String("event", event))
		return nil
	}

	var errs []error
	for i, handler := range handlers {
		if err := invoke(ctx, handler, event, payload); err != nil {
			a.logger.Error("event handler failed",
				slog.String("event", event),
				slog.Int("handler", i),
				slog.Any("error", err),
			)
			errs = append(errs, err)
		}
	}
	return apperrors.Join(errs...)
}

func invoke(ctx context.Context, handler Handler, event string, payload any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler for %q panicked: %v", event, r)
		}
	}()
	return handler(ctx, event, payload)
}
