package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RunStatus describes the lifecycle state of a Run.
type RunStatus string

const (
	// RunStatusPending indicates the run has been accepted but no engine
	// event has been observed yet.
	RunStatusPending RunStatus = "pending"
	// RunStatusRunning indicates the first engine event has been observed.
	RunStatusRunning RunStatus = "running"
	// RunStatusFinished indicates the run completed normally.
	RunStatusFinished RunStatus = "finished"
	// RunStatusErrored indicates the run terminated with an error.
	RunStatusErrored RunStatus = "errored"
)

// IsTerminal reports whether the status is final. Terminal runs never emit
// further events and are no-op targets for cancellation.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusFinished || s == RunStatusErrored
}

// Run records one execution of an agent. A Run is owned exclusively by the
// driver that created it for its whole lifetime; it is never shared across
// runs. Status transitions: pending -> running -> finished|errored.
type Run struct {
	ID        string    `json:"run_id"`
	ThreadID  string    `json:"thread_id"`
	Status    RunStatus `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// NewRun creates a pending Run bound to a thread. Empty identifiers are
// generated so callers may supply either, both or neither.
func NewRun(threadID, runID string) *Run {
	if threadID == "" {
		threadID = NewID()
	}

	if runID == "" {
		runID = NewID()
	}

	return &Run{
		ID:        runID,
		ThreadID:  threadID,
		Status:    RunStatusPending,
		StartedAt: time.Now().UTC(),
	}
}

// Message is one turn of conversational input supplied with a Request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request carries everything needed to start a run. ThreadID groups runs into
// a conversation; RunID identifies this execution. Both are optional and
// generated when absent. Messages hold the structured multi-turn input;
// engines that only accept scalar or token input receive the flattened form
// via Prompt.
type Request struct {
	ThreadID       string         `json:"threadId,omitempty"`
	RunID          string         `json:"runId,omitempty"`
	Messages       []Message      `json:"messages"`
	State          map[string]any `json:"state,omitempty"`
	ForwardedProps map[string]any `json:"forwardedProps,omitempty"`
}

// Prompt flattens the request input into a single scalar string: the content
// of the last user message, or failing that the concatenated message contents.
// Used by the scalar and token-only invocation conventions.
func (r Request) Prompt() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == "user" {
			return r.Messages[i].Content
		}
	}

	parts := make([]string, 0, len(r.Messages))
	for _, m := range r.Messages {
		if m.Content != "" {
			parts = append(parts, m.Content)
		}
	}

	return strings.Join(parts, "\n")
}

// InvocationStatus describes the lifecycle of an in-flight tool invocation.
type InvocationStatus string

const (
	// InvocationStarted indicates the start signal has been observed.
	InvocationStarted InvocationStatus = "started"
	// InvocationEnded indicates the matching end signal has been observed.
	InvocationEnded InvocationStatus = "ended"
)

// ToolInvocation tracks one in-flight tool call within a run. The ID is
// synthesized by the adapter because the upstream engine emits start and end
// signals without a shared correlation identifier. At most one started
// invocation per tool name may be open at a time within a run.
type ToolInvocation struct {
	ID     string
	Name   string
	Status InvocationStatus
}

// NewToolInvocation creates a started invocation with a fresh correlation id.
func NewToolInvocation(name string) *ToolInvocation {
	return &ToolInvocation{ID: NewID(), Name: name, Status: InvocationStarted}
}

// NewID generates a new unique identifier for runs, threads and tool calls.
//
// Returns a string representation of a new UUID.
func NewID() string { return uuid.NewString() }
