package driver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentwire/core"
	"github.com/hupe1980/agentwire/logging"
	"github.com/hupe1980/agentwire/signal"
	"github.com/hupe1980/agentwire/wire"
)

// scriptedEngine replays a fixed raw event script through the structured
// convention, then terminates with the configured error (nil for success).
type scriptedEngine struct {
	script []core.RawEvent
	err    error
	// emit, when set, runs inside the engine with the run context so tests
	// can exercise the custom signal channel.
	emit func(ctx context.Context)
}

func (e *scriptedEngine) RunStructured(ctx context.Context, _ core.Request) (<-chan core.RawEvent, <-chan error, error) {
	rawCh := make(chan core.RawEvent)
	errCh := make(chan error, 1)

	go func() {
		defer close(rawCh)
		defer close(errCh)

		if e.emit != nil {
			e.emit(ctx)
		}

		for _, ev := range e.script {
			select {
			case <-ctx.Done():
				return
			case rawCh <- ev:
			}
		}

		if e.err != nil {
			errCh <- e.err
		}
	}()

	return rawCh, errCh, nil
}

func collect(t *testing.T, events <-chan wire.Event) []wire.Event {
	t.Helper()

	var out []wire.Event

	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatalf("event stream never closed; got %d events", len(out))
		}
	}
}

func eventTypes(events []wire.Event) []wire.EventType {
	types := make([]wire.EventType, 0, len(events))
	for _, ev := range events {
		types = append(types, ev.EventType())
	}

	return types
}

func TestDriver_Run_HappyPath(t *testing.T) {
	engine := &scriptedEngine{
		script: []core.RawEvent{
			core.NewToolStartEvent("get_weather", json.RawMessage(`{"city":"Paris"}`)),
			core.NewToolEndEvent("get_weather", "Sunny, 22C"),
			core.NewTextChunkEvent("It is sunny in Paris."),
		},
	}

	d := New(engine)

	runID, events, err := d.Run(context.Background(), core.Request{ThreadID: "thread-1"})
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	out := collect(t, events)

	assert.Equal(t, []wire.EventType{
		wire.EventRunStarted,
		wire.EventToolCallStart,
		wire.EventToolCallArgs,
		wire.EventToolCallEnd,
		wire.EventToolCallResult,
		wire.EventTextMessageChunk,
		wire.EventRunFinished,
	}, eventTypes(out))

	started := out[0].(wire.RunStarted)
	assert.Equal(t, runID, started.RunID)
	assert.Equal(t, "thread-1", started.ThreadID)

	// All four tool events carry the same synthesized id.
	id := out[1].(wire.ToolCallStart).ToolCallID
	assert.Equal(t, id, out[2].(wire.ToolCallArgs).ToolCallID)
	assert.Equal(t, id, out[3].(wire.ToolCallEnd).ToolCallID)
	assert.Equal(t, id, out[4].(wire.ToolCallResult).ToolCallID)

	assert.Equal(t, core.RunStatusFinished, d.Status(runID))
}

func TestDriver_Run_RespectsProvidedIDs(t *testing.T) {
	d := New(&scriptedEngine{})

	runID, events, err := d.Run(context.Background(), core.Request{ThreadID: "t-9", RunID: "r-9"})
	require.NoError(t, err)
	assert.Equal(t, "r-9", runID)

	out := collect(t, events)
	require.NotEmpty(t, out)
	assert.Equal(t, "r-9", out[0].(wire.RunStarted).RunID)
}

func TestDriver_Run_UnusableEngine(t *testing.T) {
	d := New(struct{}{})

	_, _, err := d.Run(context.Background(), core.Request{})
	assert.ErrorIs(t, err, ErrUnusableEngine)
}

func TestDriver_Run_MidStreamError(t *testing.T) {
	engine := &scriptedEngine{
		script: []core.RawEvent{
			core.NewTextChunkEvent("partial "),
			core.NewTextChunkEvent("answer"),
		},
		err: errors.New("model unavailable"),
	}

	d := New(engine)

	runID, events, err := d.Run(context.Background(), core.Request{})
	require.NoError(t, err)

	out := collect(t, events)

	// Chunks produced before the failure still precede the terminal event.
	require.Len(t, out, 4)
	assert.Equal(t, wire.EventRunStarted, out[0].EventType())
	assert.Equal(t, "partial ", out[1].(wire.TextMessageChunk).Delta)
	assert.Equal(t, "answer", out[2].(wire.TextMessageChunk).Delta)

	runErr, ok := out[3].(wire.RunError)
	require.True(t, ok)
	assert.Equal(t, "model unavailable", runErr.Message)
	assert.Equal(t, runID, runErr.RunID)

	assert.Equal(t, core.RunStatusErrored, d.Status(runID))
}

func TestDriver_Run_OrphanEndDoesNotAbort(t *testing.T) {
	engine := &scriptedEngine{
		script: []core.RawEvent{
			core.NewToolEndEvent("never_started", "x"),
			core.NewTextChunkEvent("hello"),
		},
	}

	d := New(engine)

	_, events, err := d.Run(context.Background(), core.Request{})
	require.NoError(t, err)

	out := collect(t, events)

	assert.Equal(t, []wire.EventType{
		wire.EventRunStarted,
		wire.EventTextMessageChunk,
		wire.EventRunFinished,
	}, eventTypes(out))
}

func TestDriver_Run_UnknownKindDropped(t *testing.T) {
	engine := &scriptedEngine{
		script: []core.RawEvent{
			{Kind: core.RawKind("v2.shiny_new_event")},
			core.NewTextChunkEvent("still streaming"),
		},
	}

	d := New(engine)

	_, events, err := d.Run(context.Background(), core.Request{})
	require.NoError(t, err)

	out := collect(t, events)

	assert.Equal(t, []wire.EventType{
		wire.EventRunStarted,
		wire.EventTextMessageChunk,
		wire.EventRunFinished,
	}, eventTypes(out))
}

func TestDriver_Run_CustomSignal(t *testing.T) {
	engine := &scriptedEngine{
		emit: func(ctx context.Context) {
			signal.Emit(ctx, "weather.lookup", map[string]string{"city": "Paris"})
		},
		script: []core.RawEvent{
			core.NewTextChunkEvent("done"),
		},
	}

	d := New(engine)

	_, events, err := d.Run(context.Background(), core.Request{})
	require.NoError(t, err)

	out := collect(t, events)

	var custom *wire.Custom
	for _, ev := range out {
		if c, ok := ev.(wire.Custom); ok {
			custom = &c
			break
		}
	}

	require.NotNil(t, custom, "custom signal never surfaced: %v", eventTypes(out))
	assert.Equal(t, "weather.lookup", custom.Name)

	// The signal precedes the terminal event.
	assert.Equal(t, wire.EventRunFinished, out[len(out)-1].EventType())
}

// fallbackEngine rejects the structured call shape and accepts scalar input,
// counting attempts per convention.
type fallbackEngine struct {
	structuredCalls int
	scalarCalls     int
}

func (e *fallbackEngine) RunStructured(context.Context, core.Request) (<-chan core.RawEvent, <-chan error, error) {
	e.structuredCalls++
	return nil, nil, errors.New("structured input not supported")
}

func (e *fallbackEngine) RunScalar(_ context.Context, input string) (<-chan core.RawEvent, <-chan error, error) {
	e.scalarCalls++

	rawCh := make(chan core.RawEvent, 1)
	errCh := make(chan error, 1)

	rawCh <- core.NewTextChunkEvent("echo: " + input)
	close(rawCh)
	close(errCh)

	return rawCh, errCh, nil
}

func TestDriver_Run_ConventionFallback(t *testing.T) {
	engine := &fallbackEngine{}
	d := New(engine)

	req := core.Request{
		Messages: []core.Message{{Role: "user", Content: "hi"}},
	}

	_, events, err := d.Run(context.Background(), req)
	require.NoError(t, err)

	out := collect(t, events)

	require.Len(t, out, 3)
	assert.Equal(t, "echo: hi", out[1].(wire.TextMessageChunk).Delta)
	assert.Equal(t, wire.EventRunFinished, out[2].EventType())

	assert.Equal(t, 1, engine.structuredCalls, "each convention is tried at most once")
	assert.Equal(t, 1, engine.scalarCalls)
}

// rejectAllEngine rejects every convention it advertises.
type rejectAllEngine struct{}

func (rejectAllEngine) RunStructured(context.Context, core.Request) (<-chan core.RawEvent, <-chan error, error) {
	return nil, nil, errors.New("no")
}

func (rejectAllEngine) RunScalar(context.Context, string) (<-chan core.RawEvent, <-chan error, error) {
	return nil, nil, errors.New("also no")
}

func TestDriver_Run_AllConventionsRejected(t *testing.T) {
	d := New(rejectAllEngine{})

	_, _, err := d.Run(context.Background(), core.Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all invocation conventions rejected")
}

// tokenEcho streams fixed tokens through the token-only convention.
type tokenEcho struct {
	tokens []string
}

func (e tokenEcho) StreamTokens(context.Context, string) (<-chan string, <-chan error, error) {
	tokenCh := make(chan string, len(e.tokens))
	errCh := make(chan error, 1)

	for _, tok := range e.tokens {
		tokenCh <- tok
	}
	close(tokenCh)
	close(errCh)

	return tokenCh, errCh, nil
}

func TestDriver_Run_TokenOnlyEngine(t *testing.T) {
	d := New(tokenEcho{tokens: []string{"It is ", "sunny."}})

	_, events, err := d.Run(context.Background(), core.Request{})
	require.NoError(t, err)

	out := collect(t, events)

	assert.Equal(t, []wire.EventType{
		wire.EventRunStarted,
		wire.EventTextMessageChunk,
		wire.EventTextMessageChunk,
		wire.EventRunFinished,
	}, eventTypes(out))

	assert.Equal(t, "It is ", out[1].(wire.TextMessageChunk).Delta)
	assert.Equal(t, "sunny.", out[2].(wire.TextMessageChunk).Delta)
}

// blockingEngine holds the raw stream open until the run context is
// cancelled.
type blockingEngine struct {
	started chan struct{}
}

func (e *blockingEngine) RunStructured(ctx context.Context, _ core.Request) (<-chan core.RawEvent, <-chan error, error) {
	rawCh := make(chan core.RawEvent)
	errCh := make(chan error, 1)

	go func() {
		defer close(rawCh)
		defer close(errCh)

		close(e.started)
		<-ctx.Done()
	}()

	return rawCh, errCh, nil
}

func TestDriver_Cancel(t *testing.T) {
	engine := &blockingEngine{started: make(chan struct{})}
	d := New(engine)

	runID, events, err := d.Run(context.Background(), core.Request{})
	require.NoError(t, err)

	select {
	case <-engine.started:
	case <-time.After(5 * time.Second):
		t.Fatal("engine never started")
	}

	require.NoError(t, d.Cancel(runID))

	// The stream closes without blocking forever; no terminal event is
	// delivered to a consumer that asked for cancellation.
	out := collect(t, events)
	for _, ev := range out {
		assert.False(t, ev.EventType().IsTerminal(), "unexpected terminal event after cancel: %s", ev.EventType())
	}

	assert.Eventually(t, func() bool {
		return d.Status(runID) == core.RunStatusErrored
	}, 5*time.Second, 10*time.Millisecond)

	// Cancelling a terminal run is a no-op.
	assert.NoError(t, d.Cancel(runID))
}

func TestDriver_CancelUnknownRun(t *testing.T) {
	d := New(&scriptedEngine{})

	err := d.Cancel("no-such-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestDriver_StatusUnknownRun(t *testing.T) {
	d := New(&scriptedEngine{})

	assert.Equal(t, core.RunStatus(""), d.Status("no-such-run"))
}

func TestDriver_RegistryPrunedAfterCompletion(t *testing.T) {
	engine := &scriptedEngine{
		script: []core.RawEvent{core.NewTextChunkEvent("ok")},
	}

	d := New(engine)

	var runIDs []string
	for i := 0; i < 10; i++ {
		runID, events, err := d.Run(context.Background(), core.Request{})
		require.NoError(t, err)

		collect(t, events)

		runIDs = append(runIDs, runID)
	}

	d.mu.RLock()
	live := len(d.runs)
	d.mu.RUnlock()

	assert.Zero(t, live, "completed runs must leave the live registry")

	// Retired runs still answer status and treat cancellation as a no-op.
	for _, runID := range runIDs {
		assert.Equal(t, core.RunStatusFinished, d.Status(runID))
		assert.NoError(t, d.Cancel(runID))
	}
}

func TestDriver_TerminalHistoryBounded(t *testing.T) {
	d := New(&scriptedEngine{})

	for i := 0; i < terminalHistorySize+25; i++ {
		runID := fmt.Sprintf("r-%d", i)

		d.mu.Lock()
		d.runs[runID] = &runHandle{
			run:    &core.Run{ID: runID, Status: core.RunStatusFinished},
			cancel: func() {},
		}
		d.mu.Unlock()

		d.retire(runID)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	assert.Len(t, d.terminal, terminalHistorySize)
	assert.Len(t, d.terminalOrder, terminalHistorySize)

	// The oldest entries were evicted, the newest retained.
	_, oldest := d.terminal["r-0"]
	assert.False(t, oldest)
	assert.Equal(t, core.RunStatusFinished, d.terminal[fmt.Sprintf("r-%d", terminalHistorySize+24)])
}

// completionRecorder captures the run completion record.
type completionRecorder struct {
	logging.NoOpLogger

	mu      sync.Mutex
	called  bool
	runID   string
	events  int
	success bool
	err     error
}

func (r *completionRecorder) LogRunCompleted(runID string, events int, _ time.Duration, success bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.called = true
	r.runID = runID
	r.events = events
	r.success = success
	r.err = err
}

func TestDriver_RunCompletionRecord(t *testing.T) {
	recorder := &completionRecorder{}

	engine := &scriptedEngine{
		script: []core.RawEvent{core.NewTextChunkEvent("hello")},
	}

	d := New(engine, func(o *Options) { o.Logger = recorder })

	runID, events, err := d.Run(context.Background(), core.Request{})
	require.NoError(t, err)

	collect(t, events)

	recorder.mu.Lock()
	defer recorder.mu.Unlock()

	require.True(t, recorder.called)
	assert.Equal(t, runID, recorder.runID)
	assert.Equal(t, 3, recorder.events) // RUN_STARTED, chunk, RUN_FINISHED
	assert.True(t, recorder.success)
	assert.NoError(t, recorder.err)
}

func TestDriver_RunCompletionRecordOnError(t *testing.T) {
	recorder := &completionRecorder{}

	engine := &scriptedEngine{err: errors.New("model unavailable")}

	d := New(engine, func(o *Options) { o.Logger = recorder })

	_, events, err := d.Run(context.Background(), core.Request{})
	require.NoError(t, err)

	collect(t, events)

	recorder.mu.Lock()
	defer recorder.mu.Unlock()

	require.True(t, recorder.called)
	assert.False(t, recorder.success)
	assert.EqualError(t, recorder.err, "model unavailable")
}
