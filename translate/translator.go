package translate

import (
	"github.com/hupe1980/agentwire/core"
	"github.com/hupe1980/agentwire/wire"
)

// Translator converts one raw event into zero or more wire events, reading
// and updating the per-run correlation context as needed. Implementations
// must be total over (kind, payload): a kind the rule does not handle yields
// nil, never a panic or error. Returned events are emitted in slice order.
type Translator interface {
	Translate(ev core.RawEvent, tc *Context) []wire.Event
}

// Func adapts a plain function to the Translator interface.
type Func func(ev core.RawEvent, tc *Context) []wire.Event

// Translate implements Translator.
func (f Func) Translate(ev core.RawEvent, tc *Context) []wire.Event { return f(ev, tc) }

// Composite runs an ordered list of translators against the same raw event
// and concatenates their outputs. New raw-event vocabularies are supported by
// appending a translator without touching existing rules.
type Composite struct {
	translators []Translator
}

// NewComposite creates a composite over the given translators.
func NewComposite(translators ...Translator) *Composite {
	return &Composite{translators: translators}
}

// Append adds translators to the end of the chain and returns the composite
// for chaining during construction. Not safe for concurrent use with
// Translate; compose before starting runs.
func (c *Composite) Append(translators ...Translator) *Composite {
	c.translators = append(c.translators, translators...)
	return c
}

// Translate implements Translator by concatenation in registration order.
func (c *Composite) Translate(ev core.RawEvent, tc *Context) []wire.Event {
	var out []wire.Event
	for _, t := range c.translators {
		out = append(out, t.Translate(ev, tc)...)
	}

	return out
}

// Default returns the composite of all built-in translation rules: text
// chunks, tool correlation, step/thinking boundaries and custom signals.
func Default() *Composite {
	return NewComposite(
		TextTranslator{},
		ToolTranslator{},
		StepTranslator{},
		SignalTranslator{},
	)
}
