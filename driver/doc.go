// Package driver implements the run orchestration layer for AgentWire.
//
// The Driver bridges an opaque agent engine and the wire protocol: it probes
// the engine's invocation capabilities, starts runs using the most capable
// convention the engine accepts (falling back in a fixed order on rejection),
// pipes the engine's raw event stream through translation, and guarantees the
// emitted wire sequence opens with RUN_STARTED and ends with exactly one
// terminal event.
//
// # Responsibilities (abridged)
//   - Capability probing and convention fallback (structured > scalar > token)
//   - Run lifecycle management (pending/running/finished/errored) & cancellation
//   - Merging the custom signal side channel into the raw event stream
//   - Converting mid-stream engine failures into a single RUN_ERROR event
//
// Each run executes as one sequential pipeline in its own goroutine with no
// state shared between runs. See driver.go for the operational details.
package driver
