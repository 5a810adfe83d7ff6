// Package translate converts engine-native raw events into wire protocol
// events. It provides:
//
//   - Context: per-run correlation state that matches disjoint tool start and
//     end signals and synthesizes shared tool call identifiers
//   - Translator: a pure translation rule over (raw event, context) producing
//     zero or more wire events, never an error
//   - Composite: an ordered list of translators whose outputs concatenate,
//     so new raw-event vocabularies are supported by adding a rule rather
//     than modifying existing ones
//   - The built-in rules for text, tool, step/thinking and custom signal
//     events, assembled by Default()
//
// Unrecognized raw event kinds translate to zero wire events with a recorded
// diagnostic; translation never aborts a run.
package translate
