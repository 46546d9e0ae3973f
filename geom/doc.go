// Package geom generates the population topology over which an agent-based
// evolutionary-dynamics simulation runs: a graph whose nodes are individuals
// and whose edges define who can interact with, observe, or replace whom.
//
// # Reading Guide
//
// Start with these three files to understand the construction engine:
//   - geometry.go: the Geometry record, adjacency storage and invariants
//   - kind.go: the closed Kind set, the Builder interface and spec parsing
//   - degseq.go: randomized degree-sequence realization with rewiring
//
// # Architecture
//
// Every geometry kind implements the small Builder capability interface
// {Parse, CheckSettings, Init}, dispatched exhaustively over the closed Kind
// set. CheckSettings coerces parameters to structurally valid values and may
// override the population size; every coercion is paired with a warning
// naming the original and corrected value, never silent. Init populates the
// adjacency exactly once, drawing all randomness from an explicitly passed
// source so that a fixed seed reproduces an identical graph bit-for-bit.
//
// The composers (hierarchy.go, metapop.go) nest or combine sub-geometries by
// offsetting their deme initializers into the global index space. Canonical
// and extremal graphs (canonical.go, extremal.go) are exact: closed-form
// index arithmetic or explicit edge lists, with required node counts
// enforced.
//
// Construction is single-threaded and synchronous. Once Init completes the
// Geometry is read-only for the simulation loop; dynamic geometries that
// rewire at runtime (rewire.go) require the caller to serialize mutation.
package geom
