package geom

import (
	"errors"
	"fmt"
)

// Precondition violations. These are caller defects and are never retried.
var (
	// ErrSizeNotSet is returned by Init when the geometry size was never set
	// to a positive value.
	ErrSizeNotSet = errors.New("geometry size not set")

	// ErrNotValidated is returned by Init when CheckSettings has not completed
	// successfully since the last parameter change.
	ErrNotValidated = errors.New("geometry settings not validated")

	// ErrDirectedMutation is returned by the undirected rewiring helpers when
	// invoked on a directed geometry.
	ErrDirectedMutation = errors.New("rewiring requires an undirected geometry")
)

// StructuralError reports a request that no construction attempt can satisfy:
// an odd degree total, a degree entry out of range, a malformed composite
// spec. It is fatal for the configuration that produced it.
type StructuralError struct {
	Kind   Kind
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: unsatisfiable structure: %s", e.Kind, e.Reason)
}

// AttemptsExhaustedError reports that randomized construction failed every
// attempt within the fixed retry bound. The request may be satisfiable in
// principle; this run could not realize it.
type AttemptsExhaustedError struct {
	Kind     Kind
	Attempts int
}

func (e *AttemptsExhaustedError) Error() string {
	return fmt.Sprintf("%s: construction failed after %d attempts", e.Kind, e.Attempts)
}

// Internal phase failures of the degree-sequence constructor. They never
// escape initDegreeSequence; the outer retry loop converts persistent
// failure into an AttemptsExhaustedError.
var (
	errCoreDepleted   = errors.New("core construction ran out of active nodes")
	errPairingFailed  = errors.New("pairing failures exceeded bound")
	errLeftoverRepair = errors.New("single-leftover repair failed")
)
