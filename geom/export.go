package geom

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// GonumGraph exports the adjacency as a gonum graph for external analysis.
// Node IDs equal population indices. Self-loops are not representable in
// gonum's simple graphs and are skipped; they carry no structural
// information beyond the Interspecies flag anyway.
func (g *Geometry) GonumGraph() graph.Graph {
	if g.Directed {
		dst := simple.NewDirectedGraph()
		for n := 0; n < g.Size; n++ {
			dst.AddNode(simple.Node(n))
		}
		for n := 0; n < g.Size; n++ {
			for _, m := range g.Out[n] {
				if m == n {
					continue
				}
				dst.SetEdge(dst.NewEdge(simple.Node(n), simple.Node(m)))
			}
		}
		return dst
	}
	dst := simple.NewUndirectedGraph()
	for n := 0; n < g.Size; n++ {
		dst.AddNode(simple.Node(n))
	}
	for n := 0; n < g.Size; n++ {
		for _, m := range g.Out[n] {
			if m > n {
				dst.SetEdge(dst.NewEdge(simple.Node(n), simple.Node(m)))
			}
		}
	}
	return dst
}

// IsConnected reports whether the geometry forms a single (weakly) connected
// component. Analysis only: construction never checks connectivity, which is
// a side effect of core construction where it applies.
func (g *Geometry) IsConnected() bool {
	if g.Size == 0 {
		return false
	}
	shadow := simple.NewUndirectedGraph()
	for n := 0; n < g.Size; n++ {
		shadow.AddNode(simple.Node(n))
	}
	for n := 0; n < g.Size; n++ {
		for _, m := range g.Out[n] {
			if m != n && !shadow.HasEdgeBetween(int64(n), int64(m)) {
				shadow.SetEdge(shadow.NewEdge(simple.Node(n), simple.Node(m)))
			}
		}
	}
	return len(topo.ConnectedComponents(shadow)) == 1
}
