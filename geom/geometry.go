package geom

import (
	"fmt"
	"hash/fnv"

	"gonum.org/v1/gonum/stat"
)

// Boundary selects how lattice stencils behave at the edge of the grid.
type Boundary int

const (
	// BoundaryPeriodic wraps indices modulo the side length; lattices stay regular.
	BoundaryPeriodic Boundary = iota
	// BoundaryFixed clips the stencil at the grid edge; boundary nodes end up
	// with strictly fewer neighbors and the lattice becomes irregular.
	BoundaryFixed
)

func (b Boundary) String() string {
	switch b {
	case BoundaryPeriodic:
		return "periodic"
	case BoundaryFixed:
		return "fixed"
	}
	return fmt.Sprintf("Boundary(%d)", int(b))
}

// ParseBoundary converts a boundary name to a Boundary value.
// Valid names: "periodic", "fixed", or "" (defaults to periodic).
func ParseBoundary(s string) (Boundary, error) {
	switch s {
	case "", "periodic":
		return BoundaryPeriodic, nil
	case "fixed":
		return BoundaryFixed, nil
	}
	return BoundaryPeriodic, fmt.Errorf("unknown boundary %q; valid: periodic, fixed", s)
}

// Geometry is the population topology over which a simulation runs: one node
// per individual, edges defining who can interact with, observe, or replace
// whom. A Geometry is created empty, configured through a builder's
// CheckSettings pass (which may coerce parameters and override Size, always
// with a warning), populated exactly once by Init, then read-only for the
// simulation loop. Dynamic geometries may additionally be rewired at runtime;
// such mutation must be serialized by the caller.
//
// For undirected geometries In aliases Out (and InCount aliases OutCount), so
// both views always report identical neighbor sets.
type Geometry struct {
	Kind Kind
	Size int

	Directed     bool
	Regular      bool
	Rewired      bool
	Dynamic      bool
	Interspecies bool
	Boundary     Boundary

	// Adjacency. Out[n] lists the nodes n links to, In[n] the nodes linking
	// to n. Counts are maintained alongside the lists.
	Out      [][]int
	OutCount []int
	In       [][]int
	InCount  []int

	// Statistics, recomputed by evaluate after every mutation.
	Connectivity float64
	MinDegree    float64
	AvgDegree    float64
	MaxDegree    float64

	validated bool
}

// New returns an empty Geometry of the given kind. Size, Boundary and the
// structural flags must be set (normally by CheckSettings) before Init.
func New(kind Kind) *Geometry {
	return &Geometry{Kind: kind}
}

// allocUndirected allocates aliased adjacency storage with a uniform
// per-node capacity hint.
func (g *Geometry) allocUndirected(capHint int) {
	if capHint < 0 {
		capHint = 0
	}
	g.Directed = false
	g.Out = make([][]int, g.Size)
	g.OutCount = make([]int, g.Size)
	for i := range g.Out {
		g.Out[i] = make([]int, 0, capHint)
	}
	g.In = g.Out
	g.InCount = g.OutCount
}

// allocUndirectedDegrees allocates aliased adjacency storage with per-node
// capacity taken from the target degree sequence, so construction never
// reallocates neighbor lists.
func (g *Geometry) allocUndirectedDegrees(deg []int) {
	g.Directed = false
	g.Out = make([][]int, g.Size)
	g.OutCount = make([]int, g.Size)
	for i := range g.Out {
		g.Out[i] = make([]int, 0, deg[i])
	}
	g.In = g.Out
	g.InCount = g.OutCount
}

// allocDirected allocates separate out/in adjacency storage.
func (g *Geometry) allocDirected(capHint int) {
	if capHint < 0 {
		capHint = 0
	}
	g.Directed = true
	g.Out = make([][]int, g.Size)
	g.OutCount = make([]int, g.Size)
	g.In = make([][]int, g.Size)
	g.InCount = make([]int, g.Size)
	for i := range g.Out {
		g.Out[i] = make([]int, 0, capHint)
		g.In[i] = make([]int, 0, capHint)
	}
}

// addLinkAt records the edge from → to. With aliased (undirected) storage a
// single call produces a full undirected edge: to appears in Out[from] and
// from appears in Out[to]. Self-loops on undirected geometries are recorded
// once, not twice.
func (g *Geometry) addLinkAt(from, to int) {
	if from == to && !g.Directed {
		g.Out[from] = append(g.Out[from], from)
		g.OutCount[from]++
		return
	}
	g.Out[from] = append(g.Out[from], to)
	g.OutCount[from]++
	g.In[to] = append(g.In[to], from)
	g.InCount[to]++
}

// removeLinkAt removes the edge from → to, preserving neighbor order.
// Removing an absent edge is a no-op.
func (g *Geometry) removeLinkAt(from, to int) {
	if !removeFirst(&g.Out[from], to) {
		return
	}
	g.OutCount[from]--
	if from == to && !g.Directed {
		return
	}
	if removeFirst(&g.In[to], from) {
		g.InCount[to]--
	}
}

func removeFirst(list *[]int, v int) bool {
	s := *list
	for i, x := range s {
		if x == v {
			*list = append(s[:i], s[i+1:]...)
			return true
		}
	}
	return false
}

// linked reports whether to already appears among from's out-neighbors.
func (g *Geometry) linked(from, to int) bool {
	for _, n := range g.Out[from] {
		if n == to {
			return true
		}
	}
	return false
}

// totalDegree returns the degree used for statistics and the Regular flag:
// the plain neighbor count for undirected geometries, out+in for directed.
func (g *Geometry) totalDegree(n int) int {
	if g.Directed {
		return g.OutCount[n] + g.InCount[n]
	}
	return g.OutCount[n]
}

// evaluate recomputes Connectivity, the degree statistics and the Regular
// flag from the current adjacency. Builders call it at the end of Init;
// rewiring helpers call it after every mutation.
func (g *Geometry) evaluate() {
	if g.Size == 0 {
		g.Connectivity, g.MinDegree, g.AvgDegree, g.MaxDegree = 0, 0, 0, 0
		g.Regular = false
		return
	}
	degrees := make([]float64, g.Size)
	min, max := g.totalDegree(0), g.totalDegree(0)
	for n := 0; n < g.Size; n++ {
		d := g.totalDegree(n)
		degrees[n] = float64(d)
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	g.MinDegree = float64(min)
	g.MaxDegree = float64(max)
	g.AvgDegree = stat.Mean(degrees, nil)
	g.Connectivity = g.AvgDegree
	g.Regular = min == max
}

// DegreeVariance returns the variance of the realized degree distribution.
// Zero for regular graphs.
func (g *Geometry) DegreeVariance() float64 {
	if g.Size == 0 {
		return 0
	}
	degrees := make([]float64, g.Size)
	for n := 0; n < g.Size; n++ {
		degrees[n] = float64(g.totalDegree(n))
	}
	return stat.Variance(degrees, nil)
}

// CheckConsistency verifies the structural invariants of a fully constructed
// Geometry: counts match list lengths, no duplicate neighbors, self-loops
// only when Interspecies, balanced in/out totals, symmetric adjacency for
// undirected graphs, and a Regular flag that matches realized degrees.
func (g *Geometry) CheckConsistency() error {
	if g.Size <= 0 {
		return ErrSizeNotSet
	}
	if len(g.Out) != g.Size || len(g.In) != g.Size {
		return fmt.Errorf("adjacency storage sized %d/%d, want %d", len(g.Out), len(g.In), g.Size)
	}
	sumOut, sumIn := 0, 0
	for n := 0; n < g.Size; n++ {
		if g.OutCount[n] != len(g.Out[n]) {
			return fmt.Errorf("node %d: outCount %d != |out| %d", n, g.OutCount[n], len(g.Out[n]))
		}
		if g.InCount[n] != len(g.In[n]) {
			return fmt.Errorf("node %d: inCount %d != |in| %d", n, g.InCount[n], len(g.In[n]))
		}
		sumOut += g.OutCount[n]
		sumIn += g.InCount[n]
		seen := make(map[int]bool, len(g.Out[n]))
		for _, m := range g.Out[n] {
			if m < 0 || m >= g.Size {
				return fmt.Errorf("node %d: neighbor %d out of range", n, m)
			}
			if m == n && !g.Interspecies {
				return fmt.Errorf("node %d: self-loop without interspecies", n)
			}
			if seen[m] {
				return fmt.Errorf("node %d: duplicate neighbor %d", n, m)
			}
			seen[m] = true
			if !g.Directed && !g.linked(m, n) {
				return fmt.Errorf("undirected edge %d-%d not symmetric", n, m)
			}
		}
	}
	if sumOut != sumIn {
		return fmt.Errorf("out total %d != in total %d", sumOut, sumIn)
	}
	regular := true
	for n := 1; n < g.Size; n++ {
		if g.totalDegree(n) != g.totalDegree(0) {
			regular = false
			break
		}
	}
	if g.Regular != regular {
		return fmt.Errorf("regular flag %v, realized degrees say %v", g.Regular, regular)
	}
	return nil
}

// Clone returns a deep copy. The In/Out aliasing of undirected geometries is
// preserved in the copy.
func (g *Geometry) Clone() *Geometry {
	c := *g
	c.Out = make([][]int, len(g.Out))
	c.OutCount = append([]int(nil), g.OutCount...)
	for i := range g.Out {
		c.Out[i] = append([]int(nil), g.Out[i]...)
	}
	if g.Directed {
		c.In = make([][]int, len(g.In))
		c.InCount = append([]int(nil), g.InCount...)
		for i := range g.In {
			c.In[i] = append([]int(nil), g.In[i]...)
		}
	} else {
		c.In = c.Out
		c.InCount = c.OutCount
	}
	return &c
}

// Equal reports whether two geometries have identical parameters and
// identical adjacency, including neighbor order.
func (g *Geometry) Equal(o *Geometry) bool {
	if g == nil || o == nil {
		return g == o
	}
	if g.Kind != o.Kind || g.Size != o.Size ||
		g.Directed != o.Directed || g.Regular != o.Regular ||
		g.Rewired != o.Rewired || g.Dynamic != o.Dynamic ||
		g.Interspecies != o.Interspecies || g.Boundary != o.Boundary ||
		g.Connectivity != o.Connectivity {
		return false
	}
	if !adjacencyEqual(g.Out, o.Out) {
		return false
	}
	if g.Directed && !adjacencyEqual(g.In, o.In) {
		return false
	}
	return true
}

func adjacencyEqual(a, b [][]int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

// Fingerprint returns a 64-bit FNV-1a hash over the full parameter set and
// adjacency, suitable for external caching and snapshot comparison.
// Equal geometries always have equal fingerprints.
func (g *Geometry) Fingerprint() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	writeInt := func(v int64) {
		for i := 0; i < 8; i++ {
			buf[i] = byte(v >> (8 * i))
		}
		h.Write(buf[:])
	}
	writeBool := func(b bool) {
		if b {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	}
	writeInt(int64(g.Kind))
	writeInt(int64(g.Size))
	writeInt(int64(g.Boundary))
	writeBool(g.Directed)
	writeBool(g.Regular)
	writeBool(g.Rewired)
	writeBool(g.Dynamic)
	writeBool(g.Interspecies)
	for n := 0; n < g.Size; n++ {
		writeInt(int64(g.OutCount[n]))
		for _, m := range g.Out[n] {
			writeInt(int64(m))
		}
	}
	if g.Directed {
		for n := 0; n < g.Size; n++ {
			writeInt(int64(g.InCount[n]))
			for _, m := range g.In[n] {
				writeInt(int64(m))
			}
		}
	}
	return h.Sum64()
}

// addSelfLoops adds one self-loop per node in [offset, offset+n).
// Only meaningful when Interspecies is set; callers guard on the flag.
func (g *Geometry) addSelfLoops(offset, n int) {
	for i := offset; i < offset+n; i++ {
		g.addLinkAt(i, i)
	}
}
