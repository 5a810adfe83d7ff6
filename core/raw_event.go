package core

import "encoding/json"

// RawKind discriminates engine-native event categories. The set of known
// kinds is closed and versioned here; engines may emit kinds outside this
// enumeration (forward-incompatible vocabularies) and translation treats them
// as unknown rather than failing.
type RawKind string

const (
	// KindTextChunk is an incremental fragment of model text output.
	KindTextChunk RawKind = "text_chunk"
	// KindToolStart signals that the engine began executing a named tool.
	// Start and end carry no shared identifier; correlation is synthesized
	// downstream.
	KindToolStart RawKind = "tool_start"
	// KindToolEnd signals that a named tool finished and carries its result.
	KindToolEnd RawKind = "tool_end"
	// KindStepStart marks the beginning of a fine-grained execution step.
	KindStepStart RawKind = "step_start"
	// KindStepEnd marks the end of a fine-grained execution step.
	KindStepEnd RawKind = "step_end"
	// KindThinkingStart marks the beginning of a coarse reasoning phase.
	KindThinkingStart RawKind = "thinking_start"
	// KindThinkingEnd marks the end of a coarse reasoning phase.
	KindThinkingEnd RawKind = "thinking_end"
	// KindCustomSignal is the reserved marker under which manually emitted
	// business signals travel through the raw stream. Translation recognizes
	// this kind specifically rather than guessing at event shape.
	KindCustomSignal RawKind = "awp.custom_signal"
)

// KnownKind reports whether k belongs to the closed enumeration above.
func KnownKind(k RawKind) bool {
	switch k {
	case KindTextChunk, KindToolStart, KindToolEnd,
		KindStepStart, KindStepEnd,
		KindThinkingStart, KindThinkingEnd,
		KindCustomSignal:
		return true
	default:
		return false
	}
}

// CustomSignal is an application-defined named event with arbitrary payload,
// emitted explicitly by logic running inside the engine. It is kept
// structurally separate from engine-internal events by the reserved kind.
type CustomSignal struct {
	Name    string `json:"name"`
	Payload any    `json:"payload,omitempty"`
}

// RawEvent is one engine-native signal produced while a run executes. It is
// immutable and transient: produced once by the engine, consumed once by
// translation. Only the fields relevant to the Kind are populated.
type RawEvent struct {
	Kind RawKind

	// Text is the delta for KindTextChunk.
	Text string
	// Tool is the tool name for KindToolStart / KindToolEnd.
	Tool string
	// Args is the serialized argument payload for KindToolStart.
	Args json.RawMessage
	// Result is the tool outcome for KindToolEnd.
	Result any
	// Step labels the step or phase for step and thinking boundary kinds.
	Step string
	// Signal carries the payload for KindCustomSignal.
	Signal *CustomSignal
}

// NewTextChunkEvent creates a text delta event.
func NewTextChunkEvent(text string) RawEvent {
	return RawEvent{Kind: KindTextChunk, Text: text}
}

// NewToolStartEvent creates a tool start event with serialized arguments.
func NewToolStartEvent(tool string, args json.RawMessage) RawEvent {
	return RawEvent{Kind: KindToolStart, Tool: tool, Args: args}
}

// NewToolEndEvent creates a tool end event carrying the result.
func NewToolEndEvent(tool string, result any) RawEvent {
	return RawEvent{Kind: KindToolEnd, Tool: tool, Result: result}
}

// NewStepStartEvent marks the beginning of a named execution step.
func NewStepStartEvent(step string) RawEvent {
	return RawEvent{Kind: KindStepStart, Step: step}
}

// NewStepEndEvent marks the end of a named execution step.
func NewStepEndEvent(step string) RawEvent {
	return RawEvent{Kind: KindStepEnd, Step: step}
}

// NewThinkingStartEvent marks the beginning of a reasoning phase.
func NewThinkingStartEvent(label string) RawEvent {
	return RawEvent{Kind: KindThinkingStart, Step: label}
}

// NewThinkingEndEvent marks the end of a reasoning phase.
func NewThinkingEndEvent(label string) RawEvent {
	return RawEvent{Kind: KindThinkingEnd, Step: label}
}

// NewCustomSignalEvent wraps a manually emitted signal under the reserved kind.
func NewCustomSignalEvent(name string, payload any) RawEvent {
	return RawEvent{Kind: KindCustomSignal, Signal: &CustomSignal{Name: name, Payload: payload}}
}
