// Package core provides the foundational domain types and interfaces used by
// AgentWire. It defines the core abstractions for:
//
//   - Runs (one execution of an agent in response to a request)
//   - Raw events (engine-native signals produced while a run executes)
//   - Tool invocations (start/end bounded calls with synthesized correlation ids)
//   - Engine capability interfaces (structured, scalar and token-only invocation)
//   - Custom signals (application-defined events routed through the raw stream)
//
// The package intentionally keeps implementation concerns (run orchestration,
// translation, transports, concrete engines) out of scope, exposing small
// types and interfaces so that custom engines and translators can be plugged
// in without depending on anything beyond this package.
package core
