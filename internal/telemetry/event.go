// Package telemetry carries per-request usage events to Kafka and OTel logs, and from Kafka to Loki.
package telemetry

import (
	"context"
	"time"

	"github.com/goccy/go-json"
)

// EventHTTPRequest is emitted once per API call.
const EventHTTPRequest = "http_request"

// Event is one telemetry record. It is serialized as JSON on the Kafka topic.
type Event struct {
	EventType string          `json:"event_type"`
	Source    string          `json:"source"`
	UserID    string          `json:"user_id,omitempty"`
	SessionID string          `json:"session_id,omitempty"`
	Role      string          `json:"role,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
	Method    string          `json:"method,omitempty"`
	Route     string          `json:"route,omitempty"`
	Status    int             `json:"status,omitempty"`
	LatencyMS int64           `json:"latency_ms"`
	ClientIP  string          `json:"client_ip,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// EventEmitter emits telemetry events. Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *Event) error
}

type fanout []EventEmitter

// Fanout returns an emitter that sends each event to every non-nil emitter and returns the first error.
func Fanout(emitters ...EventEmitter) EventEmitter {
	out := make(fanout, 0, len(emitters))
	for _, e := range emitters {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

func (f fanout) Emit(ctx context.Context, event *Event) error {
	var first error
	for _, e := range f {
		if err := e.Emit(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
