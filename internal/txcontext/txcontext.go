// Package txcontext provides the per-trigger structured event log used for diagnostics.
//
// A Context is created at the start of one external trigger (an API call or a sync
// run), travels with the request's context.Context, and is discarded at the end of
// the trigger. It is only persisted when a failure is recorded, where its events
// are flushed as JSON next to the external error.
package txcontext

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event labels appended by the engine.
const (
	LabelNetworkRequest   = "network_request"
	LabelNetworkResponse  = "network_response"
	LabelNetworkFailure   = "network_failure"
	LabelResponseMismatch = "response_mismatch"
	LabelMessage          = "generic_message"
	LabelCacheHit         = "cache_hit"
	LabelCacheMiss        = "cache_miss"
	LabelSyncStarted      = "sync_started"
	LabelSyncFinished     = "sync_finished"
	LabelFailure          = "failure"
)

// maxBodyLength bounds request/response bodies kept in events.
const maxBodyLength = 4096

type ctxKey struct{}

// Event is one entry of the log.
type Event struct {
	Label     string         `json:"label"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Backtrace []string       `json:"backtrace,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Context is the ordered event log of a single trigger. Methods on a nil *Context
// are no-ops so components can log unconditionally.
type Context struct {
	mu     sync.Mutex
	id     uuid.UUID
	kind   string
	events []Event
}

// New creates an empty Context for a trigger of the given kind ("api", "sync", ...).
func New(kind string) *Context {
	return &Context{
		id:   uuid.Must(uuid.NewV7()),
		kind: kind,
	}
}

// WithContext returns a copy of ctx carrying tc.
func WithContext(ctx context.Context, tc *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, tc)
}

// FromContext returns the Context carried by ctx, or nil.
func FromContext(ctx context.Context) *Context {
	tc, _ := ctx.Value(ctxKey{}).(*Context)
	return tc
}

// ID returns the identifier of the trigger.
func (c *Context) ID() uuid.UUID {
	if c == nil {
		return uuid.Nil
	}
	return c.id
}

// Kind returns the trigger kind.
func (c *Context) Kind() string {
	if c == nil {
		return ""
	}
	return c.kind
}

// Add appends an event.
func (c *Context) Add(label, message string, metadata map[string]any) {
	c.append(Event{Label: label, Message: message, Metadata: metadata})
}

// AddWithBacktrace appends an event carrying the caller's stack.
func (c *Context) AddWithBacktrace(label, message string, metadata map[string]any) {
	c.append(Event{Label: label, Message: message, Metadata: metadata, Backtrace: backtrace(3)})
}

// NetworkRequest records an outbound call.
func (c *Context) NetworkRequest(method, url, body string) {
	c.Add(LabelNetworkRequest, method+" "+url, map[string]any{
		"method": method,
		"url":    url,
		"body":   truncate(body),
	})
}

// NetworkResponse records the reply to an outbound call.
func (c *Context) NetworkResponse(status int, contentType, body string) {
	c.Add(LabelNetworkResponse, fmt.Sprintf("status %d", status), map[string]any{
		"status":       status,
		"content_type": contentType,
		"body":         truncate(body),
	})
}

// NetworkFailure records a transport failure.
func (c *Context) NetworkFailure(message string) {
	c.AddWithBacktrace(LabelNetworkFailure, message, nil)
}

// ResponseMismatch records a response that did not match the expected schema.
func (c *Context) ResponseMismatch(message string, metadata map[string]any) {
	c.AddWithBacktrace(LabelResponseMismatch, message, metadata)
}

// Message records a free-form diagnostic message.
func (c *Context) Message(message string) {
	c.Add(LabelMessage, message, nil)
}

// Events returns a copy of the log in insertion order.
func (c *Context) Events() []Event {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Len returns the number of events.
func (c *Context) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

// JSON serializes the log for persistence.
func (c *Context) JSON() (string, error) {
	payload := struct {
		ID     string  `json:"id"`
		Kind   string  `json:"kind"`
		Events []Event `json:"events"`
	}{
		ID:     c.ID().String(),
		Kind:   c.Kind(),
		Events: c.Events(),
	}
	if payload.Events == nil {
		payload.Events = []Event{}
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal transaction context: %w", err)
	}
	return string(b), nil
}

func (c *Context) append(e Event) {
	if c == nil {
		return
	}
	e.Timestamp = time.Now().UTC()
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
}

func truncate(s string) string {
	if len(s) <= maxBodyLength {
		return s
	}
	return s[:maxBodyLength] + "...(truncated)"
}

func backtrace(skip int) []string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var lines []string
	for {
		frame, more := frames.Next()
		lines = append(lines, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		if !more {
			break
		}
	}
	return lines
}
