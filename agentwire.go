// Package agentwire provides a high-level façade over the run driver,
// translation pipeline and transport bindings, enabling rapid construction of
// streaming protocol adapters for agent engines. Most applications interact
// with this package by:
//  1. Creating an AgentWire via New() around any engine implementing at least
//     one of the core capability interfaces
//  2. Serving the HTTP surface (Handler/Router) or consuming runs directly
//     (Run, RunSync)
//
// The façade delegates orchestration to driver.Driver while keeping setup and
// usage ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a structured logger and a
// tuned translator composite.
package agentwire

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hupe1980/agentwire/core"
	"github.com/hupe1980/agentwire/driver"
	"github.com/hupe1980/agentwire/logging"
	"github.com/hupe1980/agentwire/translate"
	"github.com/hupe1980/agentwire/transport"
	"github.com/hupe1980/agentwire/wire"
)

// Options configures the AgentWire instance.
type Options struct {
	// Translator converts raw engine events to wire events. Defaults to the
	// built-in composite covering text, tool, step and custom signal events.
	Translator translate.Translator

	// EventBufferSize sets the channel buffer size for wire event delivery.
	// Larger buffers reduce blocking but increase memory usage.
	EventBufferSize int

	// SignalBufferSize sets the channel buffer size for the custom signal
	// side channel. Signals beyond the buffer are dropped rather than
	// blocking the emitting business logic.
	SignalBufferSize int

	// HeartbeatInterval sets the transport idle period between keepalive
	// frames.
	HeartbeatInterval time.Duration

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// AgentWire is the high-level façade aggregating the driver and transport.
type AgentWire struct {
	driver  *driver.Driver
	handler *transport.Handler
}

// New creates a new AgentWire instance around an engine with optional
// overrides. Any unset dependency falls back to a safe default.
func New(engine any, optFns ...func(o *Options)) *AgentWire {
	opts := Options{
		Translator:        translate.Default(),
		EventBufferSize:   100,
		SignalBufferSize:  16,
		HeartbeatInterval: 15 * time.Second,
		Logger:            logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	drv := driver.New(engine, func(o *driver.Options) {
		o.Translator = opts.Translator
		o.EventBufferSize = opts.EventBufferSize
		o.SignalBufferSize = opts.SignalBufferSize
		o.Logger = opts.Logger
	})

	streamer := transport.NewStreamer(func(o *transport.StreamerOptions) {
		o.HeartbeatInterval = opts.HeartbeatInterval
		o.Logger = opts.Logger
	})

	handler := transport.NewHandler(drv, func(o *transport.HandlerOptions) {
		o.Streamer = streamer
		o.Logger = opts.Logger
	})

	return &AgentWire{driver: drv, handler: handler}
}

// Driver returns the underlying run driver for direct consumption.
func (a *AgentWire) Driver() *driver.Driver { return a.driver }

// Handler returns the HTTP surface for mounting on an existing router.
func (a *AgentWire) Handler() *transport.Handler { return a.handler }

// Router builds a ready-to-serve gin engine with the run endpoints mounted.
func (a *AgentWire) Router() *gin.Engine {
	return transport.NewRouter(a.handler)
}

// Run starts an asynchronous run. See driver.Driver.Run for the stream
// contract.
func (a *AgentWire) Run(ctx context.Context, req core.Request) (string, <-chan wire.Event, error) {
	return a.driver.Run(ctx, req)
}

// RunSync executes a run to completion, collecting all emitted wire events
// into a slice. Convenience wrapper that drains Run.
func (a *AgentWire) RunSync(ctx context.Context, req core.Request) (string, []wire.Event, error) {
	runID, eventsCh, err := a.driver.Run(ctx, req)
	if err != nil {
		return "", nil, err
	}

	var events []wire.Event
	for ev := range eventsCh {
		events = append(events, ev)
	}

	return runID, events, nil
}

// Cancel requests cooperative termination of an in-flight run.
func (a *AgentWire) Cancel(runID string) error { return a.driver.Cancel(runID) }
