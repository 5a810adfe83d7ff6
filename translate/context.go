package translate

import (
	"github.com/hupe1980/agentwire/core"
	"github.com/hupe1980/agentwire/logging"
)

// Diagnostics counts recoverable translation anomalies observed during one
// run. They never abort the run; drivers may log or expose them after the
// terminal event.
type Diagnostics struct {
	// DuplicateStarts counts tool start signals for a name that already had
	// an open invocation. The second start is dropped.
	DuplicateStarts int
	// OrphanEnds counts tool end signals with no matching open invocation.
	OrphanEnds int
	// UnknownKinds counts raw events whose kind is outside the known
	// enumeration.
	UnknownKinds int
}

// ContextOptions configures Context construction.
type ContextOptions struct {
	// Logger receives diagnostic records. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Context holds the mutable correlation state for exactly one run: a mapping
// from tool name to the currently open invocation. It is created at run start,
// discarded at run end, and never shared between runs, so it requires no
// locking.
type Context struct {
	RunID string

	inflight map[string]*core.ToolInvocation
	diag     Diagnostics
	logger   logging.Logger
}

// NewContext creates an empty correlation context for a run.
func NewContext(runID string, optFns ...func(o *ContextOptions)) *Context {
	opts := ContextOptions{Logger: logging.NoOpLogger{}}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Context{
		RunID:    runID,
		inflight: make(map[string]*core.ToolInvocation),
		logger:   opts.Logger,
	}
}

// Begin opens an invocation for a tool name, synthesizing a fresh correlation
// id. If an invocation for the name is already open this is a correlation
// violation: the new start is dropped, a diagnostic recorded, and ok is false.
func (c *Context) Begin(tool string) (*core.ToolInvocation, bool) {
	if _, open := c.inflight[tool]; open {
		c.diag.DuplicateStarts++
		c.logger.Warn("dropped duplicate tool start run_id=%s tool=%s", c.RunID, tool)
		c.logCorrelation(tool, "", false)

		return nil, false
	}

	inv := core.NewToolInvocation(tool)
	c.inflight[tool] = inv

	c.logCorrelation(tool, inv.ID, true)

	return inv, true
}

// Finish closes the open invocation for a tool name and removes it from the
// context. If no invocation is open the end signal is an orphan: it is
// dropped with a diagnostic and ok is false.
func (c *Context) Finish(tool string) (*core.ToolInvocation, bool) {
	inv, open := c.inflight[tool]
	if !open {
		c.diag.OrphanEnds++
		c.logger.Warn("dropped orphan tool end run_id=%s tool=%s", c.RunID, tool)
		c.logCorrelation(tool, "", false)

		return nil, false
	}

	inv.Status = core.InvocationEnded
	delete(c.inflight, tool)

	c.logCorrelation(tool, inv.ID, true)

	return inv, true
}

// logCorrelation feeds the correlation outcome to loggers that keep one.
func (c *Context) logCorrelation(tool, toolCallID string, matched bool) {
	if cl, ok := c.logger.(interface {
		LogToolCorrelation(string, string, bool)
	}); ok {
		cl.LogToolCorrelation(tool, toolCallID, matched)
	}
}

// Open reports whether an invocation is currently open for the tool name.
func (c *Context) Open(tool string) bool {
	_, open := c.inflight[tool]
	return open
}

// DiscardOpen drops all still-open invocations and returns how many were
// discarded. Called when the run reaches a terminal state: the terminal wire
// event is sufficient signal to the client that those calls will not complete.
func (c *Context) DiscardOpen() int {
	n := len(c.inflight)
	if n > 0 {
		for tool := range c.inflight {
			c.logger.Debug("discarding open tool invocation run_id=%s tool=%s", c.RunID, tool)
		}

		c.inflight = make(map[string]*core.ToolInvocation)
	}

	return n
}

// NoteUnknownKind records a raw event kind outside the known enumeration.
func (c *Context) NoteUnknownKind(kind core.RawKind) {
	c.diag.UnknownKinds++
	c.logger.Debug("ignoring unknown raw event kind run_id=%s kind=%s", c.RunID, kind)
}

// Diagnostics returns a snapshot of the anomaly counters.
func (c *Context) Diagnostics() Diagnostics { return c.diag }
