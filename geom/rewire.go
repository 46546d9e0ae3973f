package geom

import (
	"fmt"
	"math/rand"
)

// Runtime mutation helpers for dynamic geometries. All of them require the
// caller to serialize access: no reads may run concurrently with a rewiring
// event, and no internal locking is provided.

// RewireUndirected performs degree-preserving double-edge swaps on frac of
// the graph's edges: two random edges (a,b) and (c,d) are replaced by (a,c)
// and (b,d) whenever the result stays simple. Every node keeps its exact
// degree. Statistics are recomputed and the geometry is flagged Rewired.
func (g *Geometry) RewireUndirected(frac float64, rng *rand.Rand) error {
	if g.Directed {
		return ErrDirectedMutation
	}
	if frac < 0 || frac > 1 {
		return fmt.Errorf("rewiring fraction %v outside [0,1]", frac)
	}
	edges := 0
	for n := 0; n < g.Size; n++ {
		edges += g.OutCount[n]
	}
	edges /= 2
	swaps := int(frac * float64(edges))
	for s := 0; s < swaps; s++ {
		if !g.swapOnce(rng) {
			// Dense or degenerate graphs may leave no clean swap; the
			// bounded attempts inside swapOnce already tried hard enough.
			break
		}
	}
	g.Rewired = true
	g.evaluate()
	return nil
}

// swapOnce attempts one double-edge swap, drawing fresh candidates up to the
// pairing-failure bound.
func (g *Geometry) swapOnce(rng *rand.Rand) bool {
	for attempt := 0; attempt <= maxPairingFailures; attempt++ {
		a := rng.Intn(g.Size)
		if g.OutCount[a] == 0 {
			continue
		}
		b := g.Out[a][rng.Intn(g.OutCount[a])]
		c := rng.Intn(g.Size)
		if g.OutCount[c] == 0 {
			continue
		}
		d := g.Out[c][rng.Intn(g.OutCount[c])]
		if a == c || a == d || b == c || b == d {
			continue
		}
		if g.linked(a, c) || g.linked(b, d) {
			continue
		}
		g.removeLinkAt(a, b)
		g.removeLinkAt(c, d)
		g.addLinkAt(a, c)
		g.addLinkAt(b, d)
		return true
	}
	return false
}

// AddUndirectedEdge inserts the edge a-b, rejecting anything that would
// break the simple-graph invariants.
func (g *Geometry) AddUndirectedEdge(a, b int) error {
	if g.Directed {
		return ErrDirectedMutation
	}
	if a < 0 || a >= g.Size || b < 0 || b >= g.Size {
		return fmt.Errorf("edge %d-%d outside population of size %d", a, b, g.Size)
	}
	if a == b && !g.Interspecies {
		return fmt.Errorf("self-loop %d-%d requires interspecies geometry", a, b)
	}
	if g.linked(a, b) {
		return fmt.Errorf("edge %d-%d already present", a, b)
	}
	g.addLinkAt(a, b)
	g.Rewired = true
	g.evaluate()
	return nil
}

// RemoveUndirectedEdge removes the edge a-b.
func (g *Geometry) RemoveUndirectedEdge(a, b int) error {
	if g.Directed {
		return ErrDirectedMutation
	}
	if !g.linked(a, b) {
		return fmt.Errorf("edge %d-%d not present", a, b)
	}
	g.removeLinkAt(a, b)
	g.Rewired = true
	g.evaluate()
	return nil
}
