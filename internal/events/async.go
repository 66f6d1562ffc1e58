package events

import (
	"context"
	"log"
	"time"
)

// emitTimeout is the max time allowed for a single async emit.
const emitTimeout = 5 * time.Second

// ShutdownDrainDuration is how long to wait after the HTTP server stops before
// closing the emitter, so in-flight async emits can finish. Must be >= emitTimeout.
const ShutdownDrainDuration = emitTimeout

// EmitAsync runs Emit in a goroutine so the request path is never blocked.
// emitter may be nil (stream disabled); EmitAsync then returns immediately.
// The goroutine uses context.Background() with emitTimeout so request
// cancellation does not abort an in-flight emit.
func EmitAsync(emitter Emitter, event *Event) {
	if emitter == nil || event == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		if err := emitter.Emit(ctx, event); err != nil {
			log.Printf("events: async emit failed: %v", err)
		}
	}()
}
