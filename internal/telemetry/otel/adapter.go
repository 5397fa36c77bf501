package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"gemini-observatory/backend/internal/progress"
	"gemini-observatory/backend/internal/telemetry"
)

const scopeName = "gemini.telemetry"

// recordEmitter is the subset of otellog.Logger used here.
type recordEmitter interface {
	Emit(ctx context.Context, rec otellog.Record)
}

// NewEventEmitter returns an EventEmitter that sends events as OTel log records via provider.
// A nil provider yields a no-op emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider) telemetry.EventEmitter {
	if provider == nil {
		return noopEmitter{}
	}
	return NewEventEmitterWithLogger(provider.Logger(scopeName))
}

// NewEventEmitterWithLogger wraps any record emitter, e.g. a test capture.
func NewEventEmitterWithLogger(logger recordEmitter) telemetry.EventEmitter {
	return &otelEmitter{logger: logger}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *telemetry.Event) error { return nil }

type otelEmitter struct {
	logger recordEmitter
}

func (e *otelEmitter) Emit(ctx context.Context, event *telemetry.Event) error {
	if event == nil {
		return nil
	}
	rec := otellog.Record{}
	rec.SetTimestamp(orNow(event.CreatedAt))
	rec.SetEventName(event.EventType)
	if len(event.Metadata) > 0 {
		rec.SetBody(otellog.BytesValue(event.Metadata))
	}
	addString(&rec, "user_id", event.UserID)
	addString(&rec, "session_id", event.SessionID)
	addString(&rec, "role", event.Role)
	addString(&rec, "request_id", event.RequestID)
	addString(&rec, "http.method", event.Method)
	addString(&rec, "http.route", event.Route)
	addString(&rec, "source", event.Source)
	if event.Status > 0 {
		rec.AddAttributes(otellog.Int("http.status_code", event.Status))
	}
	rec.AddAttributes(otellog.Int64("latency_ms", event.LatencyMS))
	e.logger.Emit(ctx, rec)
	return nil
}

// ProgressSink forwards observing program progress events as OTel log records.
type ProgressSink struct {
	logger recordEmitter
}

// NewProgressSink returns nil for a nil provider so callers can skip registering it.
func NewProgressSink(provider *sdklog.LoggerProvider) *ProgressSink {
	if provider == nil {
		return nil
	}
	return &ProgressSink{logger: provider.Logger("gemini.progress")}
}

func (s *ProgressSink) Send(ctx context.Context, e progress.Event) error {
	rec := otellog.Record{}
	rec.SetTimestamp(orNow(e.At))
	rec.SetEventName("program." + string(e.Type))
	rec.SetSeverity(otellog.SeverityInfo)
	if e.Type == progress.EventAborted {
		rec.SetSeverity(otellog.SeverityWarn)
	}
	if e.Message != "" {
		rec.SetBody(otellog.StringValue(e.Message))
	}
	rec.AddAttributes(
		otellog.String("program_id", e.ProgramID),
		otellog.String("plan_id", e.PlanID),
		otellog.String("status", e.Status),
		otellog.Int("frames_captured", e.FramesCaptured),
		otellog.Int("frames_planned", e.FramesPlanned),
	)
	s.logger.Emit(ctx, rec)
	return nil
}

func addString(rec *otellog.Record, key, value string) {
	if value != "" {
		rec.AddAttributes(otellog.String(key, value))
	}
}

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
