package core

import (
	"encoding/json"
	"testing"
)

func TestKnownKind(t *testing.T) {
	known := []RawKind{
		KindTextChunk, KindToolStart, KindToolEnd,
		KindStepStart, KindStepEnd,
		KindThinkingStart, KindThinkingEnd,
		KindCustomSignal,
	}

	for _, k := range known {
		if !KnownKind(k) {
			t.Errorf("expected %s to be known", k)
		}
	}

	for _, k := range []RawKind{"", "on_retriever_start", "v2.shiny_new_event"} {
		if KnownKind(k) {
			t.Errorf("expected %q to be unknown", k)
		}
	}
}

func TestRawEvent_Constructors(t *testing.T) {
	text := NewTextChunkEvent("hello")
	if text.Kind != KindTextChunk || text.Text != "hello" {
		t.Fatalf("text event malformed: %+v", text)
	}

	start := NewToolStartEvent("get_weather", json.RawMessage(`{"city":"Paris"}`))
	if start.Kind != KindToolStart || start.Tool != "get_weather" || string(start.Args) != `{"city":"Paris"}` {
		t.Fatalf("tool start malformed: %+v", start)
	}

	end := NewToolEndEvent("get_weather", "Sunny, 22C")
	if end.Kind != KindToolEnd || end.Result.(string) != "Sunny, 22C" {
		t.Fatalf("tool end malformed: %+v", end)
	}

	sig := NewCustomSignalEvent("checkout.completed", map[string]any{"order": 7})
	if sig.Kind != KindCustomSignal || sig.Signal == nil || sig.Signal.Name != "checkout.completed" {
		t.Fatalf("custom signal malformed: %+v", sig)
	}

	if step := NewStepStartEvent("plan"); step.Step != "plan" || step.Kind != KindStepStart {
		t.Fatalf("step start malformed: %+v", step)
	}

	if th := NewThinkingStartEvent("reasoning"); th.Kind != KindThinkingStart || th.Step != "reasoning" {
		t.Fatalf("thinking start malformed: %+v", th)
	}
}
