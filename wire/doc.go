// Package wire defines the standardized, versioned event protocol delivered
// to UI clients. Events form a discriminated union over a string type field:
// run lifecycle, tool call lifecycle, text message lifecycle, structural step
// markers and a generic custom event for application-defined signals.
//
// Events are immutable once constructed. Ordering of emission is the only
// meaningful relationship between them; there is no persisted event store.
package wire
