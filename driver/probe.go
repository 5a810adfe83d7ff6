package driver

import "github.com/hupe1980/agentwire/core"

// Probe inspects an opaque engine handle and returns the invocation
// conventions it supports, most capable first. It never invokes the engine
// and has no failure mode: an engine supporting none of the capability
// interfaces simply yields an empty list, which the Driver reports as an
// unusable engine. Pure introspection, safe for concurrent use.
func Probe(engine any) []core.Convention {
	var conventions []core.Convention

	if _, ok := engine.(core.StructuredEngine); ok {
		conventions = append(conventions, core.ConventionStructured)
	}

	if _, ok := engine.(core.ScalarEngine); ok {
		conventions = append(conventions, core.ConventionScalar)
	}

	if _, ok := engine.(core.TokenEngine); ok {
		conventions = append(conventions, core.ConventionToken)
	}

	return conventions
}
