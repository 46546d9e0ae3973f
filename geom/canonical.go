package geom

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// === complete / well-mixed ===

// fillCompleteBlock connects every pair in [offset, offset+n). Shared by the
// complete builder and the composers' well-mixed demes.
func fillCompleteBlock(g *Geometry, offset, n int) {
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			g.addLinkAt(offset+i, offset+j)
		}
	}
}

// completeBuilder connects every node to every other node. It serves both
// the complete and the well-mixed kinds: a well-mixed population is realized
// as explicit all-to-all adjacency so that models consume one uniform read
// contract.
type completeBuilder struct {
	baseBuilder
}

func (b *completeBuilder) Parse(params string) error {
	if params != "" {
		return fmt.Errorf("%s takes no parameters, got %q", b.kind, params)
	}
	return nil
}

func (b *completeBuilder) CheckSettings(g *Geometry) (bool, error) {
	b.prepare(g)
	changed := false
	if g.Size < 2 {
		logrus.Warnf("%s: size %d adjusted to 2", g.Kind, g.Size)
		g.Size = 2
		changed = true
	}
	g.Regular = true
	g.Connectivity = float64(g.Size - 1)
	g.validated = true
	return changed, nil
}

func (b *completeBuilder) Init(g *Geometry, rng *rand.Rand) error {
	if err := g.initPrecheck(); err != nil {
		return err
	}
	g.allocUndirected(g.Size)
	fillCompleteBlock(g, 0, g.Size)
	if g.Interspecies {
		g.addSelfLoops(0, g.Size)
	}
	g.evaluate()
	return nil
}

// === star ===

// starBuilder connects node 0 to every other node.
type starBuilder struct {
	baseBuilder
}

func (b *starBuilder) Parse(params string) error {
	if params != "" {
		return fmt.Errorf("star takes no parameters, got %q", params)
	}
	return nil
}

func (b *starBuilder) CheckSettings(g *Geometry) (bool, error) {
	b.prepare(g)
	changed := false
	if g.Size < 2 {
		logrus.Warnf("star: size %d adjusted to 2", g.Size)
		g.Size = 2
		changed = true
	}
	g.Regular = false
	g.Connectivity = 2 * float64(g.Size-1) / float64(g.Size)
	g.validated = true
	return changed, nil
}

func (b *starBuilder) Init(g *Geometry, rng *rand.Rand) error {
	if err := g.initPrecheck(); err != nil {
		return err
	}
	g.allocUndirected(2)
	for i := 1; i < g.Size; i++ {
		g.addLinkAt(0, i)
	}
	if g.Interspecies {
		g.addSelfLoops(0, g.Size)
	}
	g.evaluate()
	return nil
}

// === wheel ===

// wheelBuilder connects node 0 as the hub of a cycle over nodes 1..n-1.
type wheelBuilder struct {
	baseBuilder
}

func (b *wheelBuilder) Parse(params string) error {
	if params != "" {
		return fmt.Errorf("wheel takes no parameters, got %q", params)
	}
	return nil
}

func (b *wheelBuilder) CheckSettings(g *Geometry) (bool, error) {
	b.prepare(g)
	changed := false
	if g.Size < 4 {
		logrus.Warnf("wheel: size %d adjusted to 4 (hub plus a 3-cycle)", g.Size)
		g.Size = 4
		changed = true
	}
	g.Regular = false
	g.Connectivity = 4 * float64(g.Size-1) / float64(g.Size)
	g.validated = true
	return changed, nil
}

func (b *wheelBuilder) Init(g *Geometry, rng *rand.Rand) error {
	if err := g.initPrecheck(); err != nil {
		return err
	}
	n := g.Size
	g.allocUndirected(4)
	rim := n - 1
	for i := 1; i < n; i++ {
		g.addLinkAt(0, i)
		g.addLinkAt(i, i%rim+1)
	}
	if g.Interspecies {
		g.addSelfLoops(0, g.Size)
	}
	g.evaluate()
	return nil
}

// === literature-exact named graphs ===

// namedSizes gives the exact node count each named graph requires.
var namedSizes = map[Kind]int{
	Desargues:    20,
	Heawood:      14,
	Dodecahedron: 20,
	Franklin:     12,
	Tietze:       12,
	Icosahedron:  12,
}

// lcfNotations gives the LCF shift sequences of the Hamiltonian named cubic
// graphs: a Hamiltonian cycle over all nodes plus one chord per node.
var lcfNotations = map[Kind][]int{
	Desargues:    {5, -5, 9, -9, 5, -5, 9, -9, 5, -5, 9, -9, 5, -5, 9, -9, 5, -5, 9, -9},
	Heawood:      {5, -5, 5, -5, 5, -5, 5, -5, 5, -5, 5, -5, 5, -5},
	Dodecahedron: {10, 7, 4, -4, -7, 10, -4, 7, -7, 4, 10, 7, 4, -4, -7, 10, -4, 7, -7, 4},
	Franklin:     {5, -5, 5, -5, 5, -5, 5, -5, 5, -5, 5, -5},
}

// tietzeEdges is Tietze's graph: the Petersen graph with one vertex expanded
// into the triangle {0,10,11}. Not Hamiltonian, so no LCF form exists.
var tietzeEdges = [][2]int{
	{1, 2}, {2, 3}, {3, 4},
	{1, 6}, {2, 7}, {3, 8}, {4, 9},
	{5, 7}, {7, 9}, {9, 6}, {6, 8}, {8, 5},
	{0, 10}, {10, 11}, {11, 0},
	{0, 1}, {10, 4}, {11, 5},
}

// icosahedronEdges lists the icosahedral graph as an antiprism between two
// 5-rings capped by apex nodes 0 and 11.
var icosahedronEdges = [][2]int{
	{0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5},
	{1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 1},
	{6, 7}, {7, 8}, {8, 9}, {9, 10}, {10, 6},
	{1, 6}, {1, 7}, {2, 7}, {2, 8}, {3, 8},
	{3, 9}, {4, 9}, {4, 10}, {5, 10}, {5, 6},
	{11, 6}, {11, 7}, {11, 8}, {11, 9}, {11, 10},
}

// namedBuilder constructs the literature-exact fixed graphs. Each enforces
// its required node count, overriding any other requested size with a
// warning.
type namedBuilder struct {
	baseBuilder
}

func (b *namedBuilder) Parse(params string) error {
	if params != "" {
		return fmt.Errorf("%s takes no parameters, got %q", b.kind, params)
	}
	return nil
}

func (b *namedBuilder) CheckSettings(g *Geometry) (bool, error) {
	b.prepare(g)
	changed := false
	required := namedSizes[b.kind]
	if g.Size != required {
		logrus.Warnf("%s: requires exactly %d nodes, overriding requested size %d", g.Kind, required, g.Size)
		g.Size = required
		changed = true
	}
	g.Regular = true
	g.Connectivity = 3
	if b.kind == Icosahedron {
		g.Connectivity = 5
	}
	g.validated = true
	return changed, nil
}

func (b *namedBuilder) Init(g *Geometry, rng *rand.Rand) error {
	if err := g.initPrecheck(); err != nil {
		return err
	}
	switch b.kind {
	case Desargues, Heawood, Dodecahedron, Franklin:
		g.allocUndirected(4)
		initLCF(g, lcfNotations[b.kind])
	case Tietze:
		g.allocUndirected(4)
		for _, e := range tietzeEdges {
			g.addLinkAt(e[0], e[1])
		}
	case Icosahedron:
		g.allocUndirected(6)
		for _, e := range icosahedronEdges {
			g.addLinkAt(e[0], e[1])
		}
	default:
		panic(fmt.Sprintf("geom: %v is not a named graph", b.kind))
	}
	if g.Interspecies {
		g.addSelfLoops(0, g.Size)
	}
	g.evaluate()
	return nil
}

// initLCF realizes a cubic graph from its LCF notation: a Hamiltonian cycle
// over all nodes plus the chord i -> i+shifts[i]. Every chord is described
// twice (once per endpoint), so duplicates are skipped.
func initLCF(g *Geometry, shifts []int) {
	n := g.Size
	for i := 0; i < n; i++ {
		g.addLinkAt(i, (i+1)%n)
	}
	for i, s := range shifts {
		j := mod(i+s, n)
		if !g.linked(i, j) {
			g.addLinkAt(i, j)
		}
	}
}
