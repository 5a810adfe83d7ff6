package translate

import (
	"encoding/json"
	"fmt"

	"github.com/hupe1980/agentwire/core"
	"github.com/hupe1980/agentwire/wire"
)

// TextTranslator maps model text output 1:1 to TEXT_MESSAGE_CHUNK events.
type TextTranslator struct{}

// Translate implements Translator.
func (TextTranslator) Translate(ev core.RawEvent, _ *Context) []wire.Event {
	if ev.Kind != core.KindTextChunk {
		return nil
	}

	return []wire.Event{wire.NewTextMessageChunk(ev.Text)}
}

// ToolTranslator maps tool boundary signals to the four-event tool call
// lifecycle, using the context to synthesize and share correlation ids
// between the otherwise unrelated start and end signals. Correlation
// violations (duplicate start, orphan end) yield no events; the context
// records the diagnostic.
type ToolTranslator struct{}

// Translate implements Translator.
func (ToolTranslator) Translate(ev core.RawEvent, tc *Context) []wire.Event {
	switch ev.Kind {
	case core.KindToolStart:
		inv, ok := tc.Begin(ev.Tool)
		if !ok {
			return nil
		}

		return []wire.Event{
			wire.NewToolCallStart(inv.ID, inv.Name),
			wire.NewToolCallArgs(inv.ID, ev.Args),
		}
	case core.KindToolEnd:
		inv, ok := tc.Finish(ev.Tool)
		if !ok {
			return nil
		}

		return []wire.Event{
			wire.NewToolCallEnd(inv.ID),
			wire.NewToolCallResult(inv.ID, renderResult(ev.Result)),
		}
	default:
		return nil
	}
}

// renderResult flattens a tool result into the wire content string. Strings
// pass through; everything else is JSON-encoded, falling back to fmt for
// unencodable values.
func renderResult(result any) string {
	switch v := result.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}

		return string(data)
	}
}

// StepTranslator maps execution boundary signals to structural markers:
// fine-grained steps become STEP_STARTED/STEP_FINISHED, coarse reasoning
// phases become THINKING_START/THINKING_END.
type StepTranslator struct{}

// Translate implements Translator.
func (StepTranslator) Translate(ev core.RawEvent, _ *Context) []wire.Event {
	switch ev.Kind {
	case core.KindStepStart:
		return []wire.Event{wire.NewStepStarted(ev.Step)}
	case core.KindStepEnd:
		return []wire.Event{wire.NewStepFinished(ev.Step)}
	case core.KindThinkingStart:
		return []wire.Event{wire.NewThinkingStart(ev.Step)}
	case core.KindThinkingEnd:
		return []wire.Event{wire.NewThinkingEnd()}
	default:
		return nil
	}
}

// SignalTranslator unwraps manually emitted business signals from the
// reserved marker kind into exactly one CUSTOM event. It matches on the
// reserved kind specifically, never on payload shape, so engine-internal
// events of similar shape cannot be mistaken for signals. Name and payload
// pass through untouched.
type SignalTranslator struct{}

// Translate implements Translator.
func (SignalTranslator) Translate(ev core.RawEvent, _ *Context) []wire.Event {
	if ev.Kind != core.KindCustomSignal || ev.Signal == nil {
		return nil
	}

	return []wire.Event{wire.NewCustom(ev.Signal.Name, ev.Signal.Payload)}
}
