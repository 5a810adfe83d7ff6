package wire

import (
	"encoding/json"
	"testing"
)

func TestConstructors_SetTypeDiscriminator(t *testing.T) {
	events := []Event{
		NewRunStarted("t1", "r1"),
		NewRunFinished("t1", "r1"),
		NewRunError("r1", "boom"),
		NewToolCallStart("tc1", "get_weather"),
		NewToolCallArgs("tc1", json.RawMessage(`{}`)),
		NewToolCallEnd("tc1"),
		NewToolCallResult("tc1", "ok"),
		NewTextMessageStart("m1"),
		NewTextMessageChunk("delta"),
		NewTextMessageEnd("m1"),
		NewStepStarted("plan"),
		NewStepFinished("plan"),
		NewThinkingStart("reasoning"),
		NewThinkingEnd(),
		NewCustom("signal", 42),
	}

	expected := []EventType{
		EventRunStarted, EventRunFinished, EventRunError,
		EventToolCallStart, EventToolCallArgs, EventToolCallEnd, EventToolCallResult,
		EventTextMessageStart, EventTextMessageChunk, EventTextMessageEnd,
		EventStepStarted, EventStepFinished,
		EventThinkingStart, EventThinkingEnd,
		EventCustom,
	}

	for i, ev := range events {
		if ev.EventType() != expected[i] {
			t.Errorf("event %d: expected type %s, got %s", i, expected[i], ev.EventType())
		}
	}
}

func TestEventType_IsTerminal(t *testing.T) {
	if !EventRunFinished.IsTerminal() || !EventRunError.IsTerminal() {
		t.Error("terminal types not recognized")
	}

	for _, et := range []EventType{EventRunStarted, EventToolCallStart, EventTextMessageChunk, EventCustom} {
		if et.IsTerminal() {
			t.Errorf("type %s incorrectly terminal", et)
		}
	}
}

func TestMarshal_WireForm(t *testing.T) {
	data, err := Marshal(NewToolCallArgs("tc1", json.RawMessage(`{"city":"Paris"}`)))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("wire form not valid JSON: %v", err)
	}

	if decoded["type"] != string(EventToolCallArgs) {
		t.Fatalf("missing type discriminator: %s", data)
	}

	delta, ok := decoded["delta"].(map[string]any)
	if !ok || delta["city"] != "Paris" {
		t.Fatalf("argument delta not embedded as raw JSON: %s", data)
	}
}

func TestMarshal_CustomValuePassthrough(t *testing.T) {
	data, err := Marshal(NewCustom("progress", map[string]any{"pct": 50}))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded struct {
		Type  EventType      `json:"type"`
		Name  string         `json:"name"`
		Value map[string]any `json:"value"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if decoded.Type != EventCustom || decoded.Name != "progress" || decoded.Value["pct"] != float64(50) {
		t.Fatalf("custom event altered on the wire: %+v", decoded)
	}
}
