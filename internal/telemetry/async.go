package telemetry

import (
	"context"
	"time"

	"gemini-observatory/backend/internal/logging"
)

// emitTimeout is the max time allowed for a single async emit. Used by EmitAsync and by ShutdownDrainDuration.
const emitTimeout = 5 * time.Second

// ShutdownDrainDuration is how long to wait after the servers stop before shutting down OTel providers,
// so in-flight async emits have time to complete. Must be >= emitTimeout.
const ShutdownDrainDuration = emitTimeout

// EmitAsync runs Emit in a goroutine so the caller is not blocked. Failures are logged with the
// logger carried by ctx.
//
// emitter and event may be nil; EmitAsync then returns without starting a goroutine.
// The goroutine does not inherit ctx cancellation, so a finished request does not abort the emit.
func EmitAsync(ctx context.Context, emitter EventEmitter, event *Event) {
	if emitter == nil || event == nil {
		return
	}
	log := logging.FromContext(ctx)
	go func() {
		emitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), emitTimeout)
		defer cancel()
		if err := emitter.Emit(emitCtx, event); err != nil {
			log.WithError(err).WithField("event_type", event.EventType).Warn("telemetry: async emit failed")
		}
	}()
}
