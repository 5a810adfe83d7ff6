package core

import "context"

// Convention identifies one of the invocation call shapes an engine may
// support. Conventions are tried in priority order: structured multi-turn
// input first, then plain scalar input, then token-only generation.
type Convention int

const (
	// ConventionStructured is the multi-turn message invocation shape.
	ConventionStructured Convention = iota
	// ConventionScalar is the plain string invocation shape.
	ConventionScalar
	// ConventionToken is the token-only generation shape. It produces no
	// structured event stream; only text output is possible.
	ConventionToken
)

// String returns the convention name for logging.
func (c Convention) String() string {
	switch c {
	case ConventionStructured:
		return "structured"
	case ConventionScalar:
		return "scalar"
	case ConventionToken:
		return "token"
	default:
		return "unknown"
	}
}

// StructuredEngine is implemented by engines that accept structured
// multi-turn input and produce a raw event stream.
//
// Channel contract (shared by all capability interfaces):
//   - The events channel is closed when execution completes, fails or the
//     context is cancelled.
//   - The errors channel is buffered (size 1), carries at most one terminal
//     error and is closed after the events channel will produce no further
//     values. A mid-stream failure is delivered there, never by panic.
//   - The immediate error return covers rejection of the call shape itself;
//     callers treat it as "this convention is unavailable" and may fall back
//     to a lower-capability convention.
type StructuredEngine interface {
	RunStructured(ctx context.Context, req Request) (<-chan RawEvent, <-chan error, error)
}

// ScalarEngine is implemented by engines that accept a single input string
// and produce a raw event stream. Same channel contract as StructuredEngine.
type ScalarEngine interface {
	RunScalar(ctx context.Context, input string) (<-chan RawEvent, <-chan error, error)
}

// TokenEngine is implemented by engines that can only generate text tokens.
// No tool, step or thinking events are possible through this shape; it is the
// universal baseline every text-producing engine can offer. Same channel
// contract as StructuredEngine, with plain text fragments instead of events.
type TokenEngine interface {
	StreamTokens(ctx context.Context, input string) (<-chan string, <-chan error, error)
}
