// Package signal provides the side channel by which application logic running
// inside an engine emits named business events onto a run's wire protocol.
// The driver installs an emitter into the run's context before invoking the
// engine; tool and agent code calls Emit with that context and takes no
// dependency on transport or translation details. Outside a run Emit is a
// silent no-op, so business logic never fails because observability is
// unavailable.
package signal

import (
	"context"

	"github.com/hupe1980/agentwire/core"
)

type emitterKey struct{}

// Emitter routes custom signals into one run's raw event stream. It is bound
// to the run's lifetime by the driver and must not outlive it.
type Emitter struct {
	ch   chan<- core.RawEvent
	done <-chan struct{}
}

// NewEmitter creates an emitter writing to the given raw event channel and
// stopping when done is closed.
func NewEmitter(ch chan<- core.RawEvent, done <-chan struct{}) *Emitter {
	return &Emitter{ch: ch, done: done}
}

// Emit wraps the signal under the reserved raw event kind and routes it into
// the run's stream. If the run has terminated, the buffer is full or the
// emitter is nil, the signal is dropped; Emit never blocks business logic and
// never returns an error.
func (e *Emitter) Emit(name string, payload any) {
	if e == nil || e.ch == nil {
		return
	}

	ev := core.NewCustomSignalEvent(name, payload)

	select {
	case <-e.done:
	case e.ch <- ev:
	default:
	}
}

// NewContext returns a context carrying the emitter for a run.
func NewContext(ctx context.Context, e *Emitter) context.Context {
	return context.WithValue(ctx, emitterKey{}, e)
}

// FromContext extracts the run's emitter, or nil when ctx carries none.
func FromContext(ctx context.Context) *Emitter {
	e, _ := ctx.Value(emitterKey{}).(*Emitter)
	return e
}

// Emit sends a named signal through the delivery context carried by ctx.
// Without a delivery context (e.g. called outside a run) it is a no-op.
func Emit(ctx context.Context, name string, payload any) {
	FromContext(ctx).Emit(name, payload)
}
