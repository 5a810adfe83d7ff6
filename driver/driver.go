package driver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/agentwire/core"
	"github.com/hupe1980/agentwire/logging"
	"github.com/hupe1980/agentwire/signal"
	"github.com/hupe1980/agentwire/translate"
	"github.com/hupe1980/agentwire/wire"
)

// ErrUnusableEngine is returned by Run when the engine supports none of the
// known invocation conventions.
var ErrUnusableEngine = errors.New("engine supports no known invocation convention")

// terminalHistorySize bounds how many retired runs keep a terminal status
// note after their handle leaves the live registry.
const terminalHistorySize = 1024

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// Translator converts raw events to wire events. Defaults to the
	// built-in composite (translate.Default).
	Translator translate.Translator
	// EventBufferSize sets channel buffering for emitted wire events.
	EventBufferSize int
	// SignalBufferSize sets channel buffering for the custom signal side
	// channel. Signals beyond the buffer are dropped, never blocking the
	// emitting business logic.
	SignalBufferSize int
	// Logger receives orchestration and diagnostic records.
	Logger logging.Logger
}

// Driver coordinates run execution: probes engine capabilities, starts runs
// with convention fallback, streams translated wire events, and tracks run
// state for cancellation. Public methods are safe for concurrent use; each
// run's pipeline runs in its own goroutine with no shared mutable state.
type Driver struct {
	engine any

	translator       translate.Translator
	eventBufferSize  int
	signalBufferSize int
	logger           logging.Logger

	runs map[string]*runHandle
	mu   sync.RWMutex

	// terminal keeps a bounded history of retired runs so Status and Cancel
	// stay answerable after the live handle is pruned.
	terminal      map[string]core.RunStatus
	terminalOrder []string
}

// runHandle pairs a run record with its cancellation hook. Status writes go
// through the driver mutex because Cancel and Status read concurrently.
type runHandle struct {
	run    *core.Run
	cancel context.CancelFunc
}

// New constructs a Driver for an engine with optional overrides.
func New(engine any, optFns ...func(o *Options)) *Driver {
	opts := Options{
		Translator:       translate.Default(),
		EventBufferSize:  100,
		SignalBufferSize: 16,
		Logger:           logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Driver{
		engine:           engine,
		translator:       opts.Translator,
		eventBufferSize:  opts.EventBufferSize,
		signalBufferSize: opts.SignalBufferSize,
		logger:           opts.Logger,
		runs:             make(map[string]*runHandle),
		terminal:         make(map[string]core.RunStatus),
	}
}

// Run starts an asynchronous run for the request. It returns the run id and
// an ordered stream of wire events that always opens with RUN_STARTED and
// ends with exactly one RUN_FINISHED or RUN_ERROR, after which the channel is
// closed. The immediate error return covers startup failures only: an
// unusable engine or rejection of every invocation convention. Once a
// convention begins streaming the Driver never retries another convention
// for the run; mid-stream failures terminate the run with RUN_ERROR.
func (d *Driver) Run(ctx context.Context, req core.Request) (string, <-chan wire.Event, error) {
	conventions := Probe(d.engine)
	if len(conventions) == 0 {
		return "", nil, ErrUnusableEngine
	}

	run := core.NewRun(req.ThreadID, req.RunID)
	req.ThreadID, req.RunID = run.ThreadID, run.ID

	runCtx, cancel := context.WithCancel(ctx)

	sigCh := make(chan core.RawEvent, d.signalBufferSize)
	engCtx := signal.NewContext(runCtx, signal.NewEmitter(sigCh, runCtx.Done()))

	rawCh, errCh, err := d.invoke(engCtx, conventions, req)
	if err != nil {
		cancel()
		return "", nil, err
	}

	d.mu.Lock()
	d.runs[run.ID] = &runHandle{run: run, cancel: cancel}
	d.mu.Unlock()

	eventsCh := make(chan wire.Event, d.eventBufferSize)

	go d.pump(runCtx, run, rawCh, errCh, sigCh, eventsCh)

	return run.ID, eventsCh, nil
}

// Cancel requests cooperative termination of an in-flight run. Cancelling a
// run that already reached a terminal state is a no-op; cancelling an unknown
// run returns an error describing the condition.
func (d *Driver) Cancel(runID string) error {
	d.mu.RLock()
	h, ok := d.runs[runID]
	_, retired := d.terminal[runID]
	d.mu.RUnlock()

	if !ok {
		if retired {
			return nil
		}

		return fmt.Errorf("run %s not found", runID)
	}

	if d.Status(runID).IsTerminal() {
		return nil
	}

	h.cancel()

	return nil
}

// Status returns the current lifecycle state of a run, or the empty status
// for unknown runs.
func (d *Driver) Status(runID string) core.RunStatus {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if h, ok := d.runs[runID]; ok {
		return h.run.Status
	}

	return d.terminal[runID]
}

// retire moves a run out of the live registry once its pipeline exits,
// recording the terminal status in the bounded history. Oldest entries are
// evicted first.
func (d *Driver) retire(runID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	h, ok := d.runs[runID]
	if !ok {
		return
	}

	delete(d.runs, runID)

	d.terminal[runID] = h.run.Status
	d.terminalOrder = append(d.terminalOrder, runID)

	if len(d.terminalOrder) > terminalHistorySize {
		delete(d.terminal, d.terminalOrder[0])
		d.terminalOrder = d.terminalOrder[1:]
	}
}

// invoke tries the probed conventions in priority order, each at most once.
// A synchronous rejection of the call shape triggers fallback; the first
// accepted convention wins.
func (d *Driver) invoke(
	ctx context.Context,
	conventions []core.Convention,
	req core.Request,
) (<-chan core.RawEvent, <-chan error, error) {
	var lastErr error

	for _, conv := range conventions {
		rawCh, errCh, err := d.invokeConvention(ctx, conv, req)
		if err == nil {
			d.logger.Debug("run invocation accepted run_id=%s convention=%s", req.RunID, conv)
			return rawCh, errCh, nil
		}

		lastErr = err

		d.logger.Warn("convention rejected run_id=%s convention=%s err=%v", req.RunID, conv, err)
	}

	return nil, nil, fmt.Errorf("all invocation conventions rejected: %w", lastErr)
}

func (d *Driver) invokeConvention(
	ctx context.Context,
	conv core.Convention,
	req core.Request,
) (<-chan core.RawEvent, <-chan error, error) {
	switch conv {
	case core.ConventionStructured:
		return d.engine.(core.StructuredEngine).RunStructured(ctx, req)
	case core.ConventionScalar:
		return d.engine.(core.ScalarEngine).RunScalar(ctx, req.Prompt())
	case core.ConventionToken:
		tokenCh, errCh, err := d.engine.(core.TokenEngine).StreamTokens(ctx, req.Prompt())
		if err != nil {
			return nil, nil, err
		}

		// Token-only degradation: synthesize a raw stream of text chunks.
		// Tool and step events cannot occur through this shape.
		rawCh := make(chan core.RawEvent, d.eventBufferSize)
		go func() {
			defer close(rawCh)
			for token := range tokenCh {
				select {
				case <-ctx.Done():
					return
				case rawCh <- core.NewTextChunkEvent(token):
				}
			}
		}()

		return rawCh, errCh, nil
	default:
		return nil, nil, fmt.Errorf("unsupported convention %s", conv)
	}
}

// runOutlet pairs a run's delivery channel with the count of events sent
// through it, feeding the run completion record.
type runOutlet struct {
	ch   chan<- wire.Event
	sent int
}

// pump is the per-run pipeline: it translates the raw stream into wire
// events, merges the custom signal channel, and terminates the sequence with
// exactly one terminal event.
func (d *Driver) pump(
	ctx context.Context,
	run *core.Run,
	rawCh <-chan core.RawEvent,
	errCh <-chan error,
	sigCh chan core.RawEvent,
	eventsCh chan<- wire.Event,
) {
	tc := translate.NewContext(run.ID, func(o *translate.ContextOptions) {
		o.Logger = d.logger
	})

	o := &runOutlet{ch: eventsCh}

	defer func() {
		if discarded := tc.DiscardOpen(); discarded > 0 {
			d.logger.Warn("run ended with open tool invocations run_id=%s discarded=%d", run.ID, discarded)
		}

		// A pipeline leaving without a terminal status was cancelled.
		if !d.Status(run.ID).IsTerminal() {
			d.setStatus(run.ID, core.RunStatusErrored)
		}

		d.retire(run.ID)

		close(eventsCh)
	}()

	if !d.send(ctx, o, wire.NewRunStarted(run.ThreadID, run.ID)) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return

		case err, ok := <-errCh:
			if !ok {
				// Engine closed its error channel without a terminal error;
				// stop selecting on it.
				errCh = nil
				continue
			}

			if err != nil {
				// Raw events produced before the failure still belong to
				// the run and precede the RUN_ERROR.
				if !d.drainRaw(ctx, run, rawCh, tc, o) {
					return
				}

				d.failRun(ctx, run, err, o)

				return
			}

		case sev := <-sigCh:
			d.markRunning(run)

			if !d.dispatch(ctx, tc, sev, o) {
				return
			}

		case rev, ok := <-rawCh:
			if !ok {
				d.finishRun(ctx, run, errCh, sigCh, tc, o)
				return
			}

			d.markRunning(run)

			if !d.dispatch(ctx, tc, rev, o) {
				return
			}
		}
	}
}

// drainRaw forwards raw events already buffered on the channel without
// blocking for new ones. Returns false when the consumer is gone.
func (d *Driver) drainRaw(
	ctx context.Context,
	run *core.Run,
	rawCh <-chan core.RawEvent,
	tc *translate.Context,
	o *runOutlet,
) bool {
	for {
		select {
		case rev, ok := <-rawCh:
			if !ok {
				return true
			}

			d.markRunning(run)

			if !d.dispatch(ctx, tc, rev, o) {
				return false
			}
		default:
			return true
		}
	}
}

// finishRun handles normal raw stream closure: it waits for the engine's
// terminal error verdict, drains buffered signals, and emits the terminal
// event.
func (d *Driver) finishRun(
	ctx context.Context,
	run *core.Run,
	errCh <-chan error,
	sigCh chan core.RawEvent,
	tc *translate.Context,
	o *runOutlet,
) {
	if errCh != nil {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if ok && err != nil {
				d.failRun(ctx, run, err, o)
				return
			}
		}
	}

	// Signals already buffered before the engine finished still belong to
	// the run and precede the terminal event.
	for {
		select {
		case sev := <-sigCh:
			if !d.dispatch(ctx, tc, sev, o) {
				return
			}
			continue
		default:
		}
		break
	}

	d.setStatus(run.ID, core.RunStatusFinished)
	d.send(ctx, o, wire.NewRunFinished(run.ThreadID, run.ID))
	d.logger.Info("run finished run_id=%s thread_id=%s", run.ID, run.ThreadID)
	d.logRunCompleted(run, o.sent, true, nil)
}

// failRun converts a mid-stream engine failure into exactly one RUN_ERROR.
func (d *Driver) failRun(ctx context.Context, run *core.Run, err error, o *runOutlet) {
	d.setStatus(run.ID, core.RunStatusErrored)
	d.send(ctx, o, wire.NewRunError(run.ID, err.Error()))
	d.logger.Error("run errored run_id=%s err=%v", run.ID, err)
	d.logRunCompleted(run, o.sent, false, err)
}

// logRunCompleted feeds the completion record to loggers that keep one.
func (d *Driver) logRunCompleted(run *core.Run, events int, success bool, err error) {
	if rl, ok := d.logger.(interface {
		LogRunCompleted(string, int, time.Duration, bool, error)
	}); ok {
		rl.LogRunCompleted(run.ID, events, time.Since(run.StartedAt), success, err)
	}
}

// dispatch translates one raw event and forwards its wire events in order.
// Unknown kinds are counted and dropped without aborting the run. Returns
// false when the consumer is gone.
func (d *Driver) dispatch(ctx context.Context, tc *translate.Context, ev core.RawEvent, o *runOutlet) bool {
	if !core.KnownKind(ev.Kind) {
		tc.NoteUnknownKind(ev.Kind)
		return true
	}

	for _, wev := range d.translator.Translate(ev, tc) {
		if !d.send(ctx, o, wev) {
			return false
		}
	}

	return true
}

func (d *Driver) send(ctx context.Context, o *runOutlet, ev wire.Event) bool {
	select {
	case <-ctx.Done():
		return false
	case o.ch <- ev:
		o.sent++
		return true
	}
}

func (d *Driver) markRunning(run *core.Run) {
	if d.Status(run.ID) == core.RunStatusPending {
		d.setStatus(run.ID, core.RunStatusRunning)
	}
}

func (d *Driver) setStatus(runID string, status core.RunStatus) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if h, ok := d.runs[runID]; ok {
		h.run.Status = status
	}
}
