package wire

import "encoding/json"

// EventType discriminates the wire event union. The values are part of the
// protocol contract with UI clients and never change meaning across versions.
type EventType string

const (
	// EventRunStarted opens every run's event sequence.
	EventRunStarted EventType = "RUN_STARTED"
	// EventRunFinished terminates a successful run. Nothing follows it.
	EventRunFinished EventType = "RUN_FINISHED"
	// EventRunError terminates a failed run. Nothing follows it.
	EventRunError EventType = "RUN_ERROR"

	// EventToolCallStart announces a tool invocation with its correlation id.
	EventToolCallStart EventType = "TOOL_CALL_START"
	// EventToolCallArgs carries the serialized tool arguments.
	EventToolCallArgs EventType = "TOOL_CALL_ARGS"
	// EventToolCallEnd closes the argument phase of a tool invocation.
	EventToolCallEnd EventType = "TOOL_CALL_END"
	// EventToolCallResult carries the tool outcome.
	EventToolCallResult EventType = "TOOL_CALL_RESULT"

	// EventTextMessageStart opens an assistant text message.
	EventTextMessageStart EventType = "TEXT_MESSAGE_START"
	// EventTextMessageChunk carries an incremental text delta.
	EventTextMessageChunk EventType = "TEXT_MESSAGE_CHUNK"
	// EventTextMessageEnd closes an assistant text message.
	EventTextMessageEnd EventType = "TEXT_MESSAGE_END"

	// EventStepStarted marks the beginning of a named execution step.
	EventStepStarted EventType = "STEP_STARTED"
	// EventStepFinished marks the end of a named execution step.
	EventStepFinished EventType = "STEP_FINISHED"
	// EventThinkingStart marks the beginning of a reasoning phase.
	EventThinkingStart EventType = "THINKING_START"
	// EventThinkingEnd marks the end of a reasoning phase.
	EventThinkingEnd EventType = "THINKING_END"

	// EventCustom carries an application-defined named value.
	EventCustom EventType = "CUSTOM"
)

// IsTerminal reports whether t ends the stream. The binding closes the
// connection immediately after a terminal event; clients may rely on no
// further frames being sent.
func (t EventType) IsTerminal() bool {
	return t == EventRunFinished || t == EventRunError
}

// Event is the interface implemented by all wire event variants. Concrete
// types carry a Type field so a single json.Marshal produces the framed form.
type Event interface {
	EventType() EventType
}

// Marshal serializes an event to its JSON wire form.
func Marshal(ev Event) ([]byte, error) { return json.Marshal(ev) }

// RunStarted opens a run's event sequence.
type RunStarted struct {
	Type     EventType `json:"type"`
	ThreadID string    `json:"threadId"`
	RunID    string    `json:"runId"`
}

// EventType implements Event.
func (e RunStarted) EventType() EventType { return e.Type }

// NewRunStarted creates a RUN_STARTED event.
func NewRunStarted(threadID, runID string) RunStarted {
	return RunStarted{Type: EventRunStarted, ThreadID: threadID, RunID: runID}
}

// RunFinished terminates a successful run.
type RunFinished struct {
	Type     EventType `json:"type"`
	ThreadID string    `json:"threadId"`
	RunID    string    `json:"runId"`
}

// EventType implements Event.
func (e RunFinished) EventType() EventType { return e.Type }

// NewRunFinished creates a RUN_FINISHED event.
func NewRunFinished(threadID, runID string) RunFinished {
	return RunFinished{Type: EventRunFinished, ThreadID: threadID, RunID: runID}
}

// RunError terminates a failed run with a message.
type RunError struct {
	Type    EventType `json:"type"`
	RunID   string    `json:"runId,omitempty"`
	Message string    `json:"message"`
	Code    string    `json:"code,omitempty"`
}

// EventType implements Event.
func (e RunError) EventType() EventType { return e.Type }

// NewRunError creates a RUN_ERROR event.
func NewRunError(runID, message string) RunError {
	return RunError{Type: EventRunError, RunID: runID, Message: message}
}

// ToolCallStart announces a tool invocation. The correlation id is
// synthesized by the adapter and shared by the ARGS, END and RESULT events of
// the same invocation.
type ToolCallStart struct {
	Type         EventType `json:"type"`
	ToolCallID   string    `json:"toolCallId"`
	ToolCallName string    `json:"toolCallName"`
}

// EventType implements Event.
func (e ToolCallStart) EventType() EventType { return e.Type }

// NewToolCallStart creates a TOOL_CALL_START event.
func NewToolCallStart(toolCallID, name string) ToolCallStart {
	return ToolCallStart{Type: EventToolCallStart, ToolCallID: toolCallID, ToolCallName: name}
}

// ToolCallArgs carries the serialized argument payload of a tool invocation.
type ToolCallArgs struct {
	Type       EventType       `json:"type"`
	ToolCallID string          `json:"toolCallId"`
	Delta      json.RawMessage `json:"delta,omitempty"`
}

// EventType implements Event.
func (e ToolCallArgs) EventType() EventType { return e.Type }

// NewToolCallArgs creates a TOOL_CALL_ARGS event.
func NewToolCallArgs(toolCallID string, delta json.RawMessage) ToolCallArgs {
	return ToolCallArgs{Type: EventToolCallArgs, ToolCallID: toolCallID, Delta: delta}
}

// ToolCallEnd closes the argument phase of a tool invocation.
type ToolCallEnd struct {
	Type       EventType `json:"type"`
	ToolCallID string    `json:"toolCallId"`
}

// EventType implements Event.
func (e ToolCallEnd) EventType() EventType { return e.Type }

// NewToolCallEnd creates a TOOL_CALL_END event.
func NewToolCallEnd(toolCallID string) ToolCallEnd {
	return ToolCallEnd{Type: EventToolCallEnd, ToolCallID: toolCallID}
}

// ToolCallResult carries the outcome of a tool invocation.
type ToolCallResult struct {
	Type       EventType `json:"type"`
	ToolCallID string    `json:"toolCallId"`
	Content    string    `json:"content"`
}

// EventType implements Event.
func (e ToolCallResult) EventType() EventType { return e.Type }

// NewToolCallResult creates a TOOL_CALL_RESULT event.
func NewToolCallResult(toolCallID, content string) ToolCallResult {
	return ToolCallResult{Type: EventToolCallResult, ToolCallID: toolCallID, Content: content}
}

// TextMessageStart opens an assistant text message.
type TextMessageStart struct {
	Type      EventType `json:"type"`
	MessageID string    `json:"messageId"`
	Role      string    `json:"role,omitempty"`
}

// EventType implements Event.
func (e TextMessageStart) EventType() EventType { return e.Type }

// NewTextMessageStart creates a TEXT_MESSAGE_START event.
func NewTextMessageStart(messageID string) TextMessageStart {
	return TextMessageStart{Type: EventTextMessageStart, MessageID: messageID, Role: "assistant"}
}

// TextMessageChunk carries an incremental text delta. MessageID is optional;
// chunks without one belong to the run's implicit assistant message.
type TextMessageChunk struct {
	Type      EventType `json:"type"`
	MessageID string    `json:"messageId,omitempty"`
	Delta     string    `json:"delta"`
}

// EventType implements Event.
func (e TextMessageChunk) EventType() EventType { return e.Type }

// NewTextMessageChunk creates a TEXT_MESSAGE_CHUNK event.
func NewTextMessageChunk(delta string) TextMessageChunk {
	return TextMessageChunk{Type: EventTextMessageChunk, Delta: delta}
}

// TextMessageEnd closes an assistant text message.
type TextMessageEnd struct {
	Type      EventType `json:"type"`
	MessageID string    `json:"messageId"`
}

// EventType implements Event.
func (e TextMessageEnd) EventType() EventType { return e.Type }

// NewTextMessageEnd creates a TEXT_MESSAGE_END event.
func NewTextMessageEnd(messageID string) TextMessageEnd {
	return TextMessageEnd{Type: EventTextMessageEnd, MessageID: messageID}
}

// StepStarted marks the beginning of a named execution step.
type StepStarted struct {
	Type     EventType `json:"type"`
	StepName string    `json:"stepName"`
}

// EventType implements Event.
func (e StepStarted) EventType() EventType { return e.Type }

// NewStepStarted creates a STEP_STARTED event.
func NewStepStarted(stepName string) StepStarted {
	return StepStarted{Type: EventStepStarted, StepName: stepName}
}

// StepFinished marks the end of a named execution step.
type StepFinished struct {
	Type     EventType `json:"type"`
	StepName string    `json:"stepName"`
}

// EventType implements Event.
func (e StepFinished) EventType() EventType { return e.Type }

// NewStepFinished creates a STEP_FINISHED event.
func NewStepFinished(stepName string) StepFinished {
	return StepFinished{Type: EventStepFinished, StepName: stepName}
}

// ThinkingStart marks the beginning of a reasoning phase.
type ThinkingStart struct {
	Type  EventType `json:"type"`
	Title string    `json:"title,omitempty"`
}

// EventType implements Event.
func (e ThinkingStart) EventType() EventType { return e.Type }

// NewThinkingStart creates a THINKING_START event.
func NewThinkingStart(title string) ThinkingStart {
	return ThinkingStart{Type: EventThinkingStart, Title: title}
}

// ThinkingEnd marks the end of a reasoning phase.
type ThinkingEnd struct {
	Type EventType `json:"type"`
}

// EventType implements Event.
func (e ThinkingEnd) EventType() EventType { return e.Type }

// NewThinkingEnd creates a THINKING_END event.
func NewThinkingEnd() ThinkingEnd {
	return ThinkingEnd{Type: EventThinkingEnd}
}

// Custom carries an application-defined named value emitted through the
// custom signal channel. Name and Value pass through translation untouched.
type Custom struct {
	Type  EventType `json:"type"`
	Name  string    `json:"name"`
	Value any       `json:"value,omitempty"`
}

// EventType implements Event.
func (e Custom) EventType() EventType { return e.Type }

// NewCustom creates a CUSTOM event.
func NewCustom(name string, value any) Custom {
	return Custom{Type: EventCustom, Name: name, Value: value}
}
