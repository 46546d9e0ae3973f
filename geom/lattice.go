package geom

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// mod wraps v into [0, m) for periodic boundaries.
func mod(v, m int) int {
	v %= m
	if v < 0 {
		v += m
	}
	return v
}

// nearestSquare coerces size to side*side with side at least minSide.
func nearestSquare(size, minSide int) (coerced, side int) {
	side = int(math.Round(math.Sqrt(float64(size))))
	if side < minSide {
		side = minSide
	}
	return side * side, side
}

// nearestCube coerces size to side^3 with side at least minSide.
func nearestCube(size, minSide int) (coerced, side int) {
	side = int(math.Round(math.Cbrt(float64(size))))
	if side < minSide {
		side = minSide
	}
	return side * side * side, side
}

// === 1D linear lattice ===

// linearBuilder fills a 1D chain with independently configurable left/right
// neighbor counts. Symmetric counts give an undirected line; asymmetric
// counts give the directed (asymmetric) linear chain.
type linearBuilder struct {
	baseBuilder
	left, right int
}

func (b *linearBuilder) Parse(params string) error {
	if params == "" {
		b.left, b.right = 1, 1
		return nil
	}
	counts, err := parseIntList(params, "linear neighbor count")
	if err != nil {
		return err
	}
	switch len(counts) {
	case 1:
		// A single value is the total connectivity; an odd total splits
		// asymmetrically, which makes the chain directed.
		b.left = counts[0] / 2
		b.right = counts[0] - b.left
	case 2:
		b.left, b.right = counts[0], counts[1]
	default:
		return fmt.Errorf("linear takes one or two neighbor counts, got %d", len(counts))
	}
	if b.left == 0 && b.right == 0 {
		return &StructuralError{Kind: b.kind, Reason: "linear chain with no neighbors"}
	}
	return nil
}

func (b *linearBuilder) CheckSettings(g *Geometry) (bool, error) {
	b.prepare(g)
	changed := false
	if g.Size < 2 {
		logrus.Warnf("linear: size %d adjusted to 2", g.Size)
		g.Size = 2
		changed = true
	}
	if g.Boundary == BoundaryPeriodic {
		// Wrap-around aliases the offsets +k and -k' onto the same neighbor
		// whenever k+k' equals the size, so the counts must total size-1 or
		// less.
		if b.left+b.right > g.Size-1 {
			oldL, oldR := b.left, b.right
			if b.left == b.right {
				b.left = (g.Size - 1) / 2
				b.right = b.left
			} else {
				for b.left+b.right > g.Size-1 {
					if b.right >= b.left {
						b.right--
					} else {
						b.left--
					}
				}
			}
			logrus.Warnf("linear: neighbor counts %d,%d exceed periodic size %d, adjusted to %d,%d",
				oldL, oldR, g.Size, b.left, b.right)
			changed = true
		}
	} else if b.left > g.Size-1 || b.right > g.Size-1 {
		oldL, oldR := b.left, b.right
		if b.left > g.Size-1 {
			b.left = g.Size - 1
		}
		if b.right > g.Size-1 {
			b.right = g.Size - 1
		}
		logrus.Warnf("linear: neighbor counts %d,%d exceed size %d, adjusted to %d,%d",
			oldL, oldR, g.Size, b.left, b.right)
		changed = true
	}
	g.Directed = b.left != b.right
	g.Regular = g.Boundary == BoundaryPeriodic
	g.Connectivity = float64(b.left + b.right)
	g.validated = true
	return changed, nil
}

func (b *linearBuilder) Init(g *Geometry, rng *rand.Rand) error {
	if err := g.initPrecheck(); err != nil {
		return err
	}
	n := g.Size
	if g.Directed {
		g.allocDirected(b.left + b.right + 1)
		for i := 0; i < n; i++ {
			for k := 1; k <= b.right; k++ {
				j := i + k
				if g.Boundary == BoundaryPeriodic {
					j = mod(j, n)
				} else if j >= n {
					continue
				}
				g.addLinkAt(i, j)
			}
			for k := 1; k <= b.left; k++ {
				j := i - k
				if g.Boundary == BoundaryPeriodic {
					j = mod(j, n)
				} else if j < 0 {
					continue
				}
				g.addLinkAt(i, j)
			}
		}
	} else {
		g.allocUndirected(b.left + b.right + 1)
		// Aliased storage: adding the right-hand links covers both directions.
		for i := 0; i < n; i++ {
			for k := 1; k <= b.right; k++ {
				j := i + k
				if g.Boundary == BoundaryPeriodic {
					j = mod(j, n)
				} else if j >= n {
					continue
				}
				g.addLinkAt(i, j)
			}
		}
	}
	if g.Interspecies {
		g.addSelfLoops(0, n)
	}
	g.evaluate()
	return nil
}

// === 2D square lattices ===

// squareHalfOffsets returns the positive half of the stencil for a square
// lattice kind. Each undirected edge is generated exactly once, from the
// endpoint that sees its partner through a positive offset.
func squareHalfOffsets(kind Kind) [][2]int {
	switch kind {
	case SquareVonNeumann:
		return [][2]int{{1, 0}, {0, 1}}
	case SquareMoore:
		return [][2]int{{1, 0}, {0, 1}, {1, 1}, {-1, 1}}
	case SquareDiagonal:
		return [][2]int{{1, 1}, {-1, 1}}
	}
	panic(fmt.Sprintf("geom: no square stencil for kind %v", kind))
}

// squareStencilSize returns the full stencil size (the periodic degree).
func squareStencilSize(kind Kind) int {
	return 2 * len(squareHalfOffsets(kind))
}

// fillSquareBlock fills adjacency for a side×side square block starting at
// offset, under the geometry's boundary mode. Shared by the square builders
// and the hierarchical composer's lattice demes.
func fillSquareBlock(g *Geometry, offset, side int, half [][2]int) {
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			i := offset + y*side + x
			for _, d := range half {
				nx, ny := x+d[0], y+d[1]
				if g.Boundary == BoundaryPeriodic {
					nx, ny = mod(nx, side), mod(ny, side)
				} else if nx < 0 || nx >= side || ny < 0 || ny >= side {
					continue
				}
				g.addLinkAt(i, offset+ny*side+nx)
			}
		}
	}
}

// squareBuilder fills a 2D square lattice under the von Neumann (4), Moore
// (8) or second-neighbor diagonal (4) stencil.
type squareBuilder struct {
	baseBuilder
	side int
}

func (b *squareBuilder) Parse(params string) error {
	if params != "" {
		return fmt.Errorf("square lattice takes no parameters, got %q", params)
	}
	return nil
}

func (b *squareBuilder) CheckSettings(g *Geometry) (bool, error) {
	b.prepare(g)
	changed := false
	coerced, side := nearestSquare(g.Size, 3)
	if coerced != g.Size {
		logrus.Warnf("%s: size %d is not a usable square, adjusted to %d (%dx%d)",
			g.Kind, g.Size, coerced, side, side)
		g.Size = coerced
		changed = true
	}
	b.side = side
	g.Regular = g.Boundary == BoundaryPeriodic
	g.Connectivity = float64(squareStencilSize(b.kind))
	g.validated = true
	return changed, nil
}

func (b *squareBuilder) Init(g *Geometry, rng *rand.Rand) error {
	if err := g.initPrecheck(); err != nil {
		return err
	}
	g.allocUndirected(squareStencilSize(b.kind) + 1)
	fillSquareBlock(g, 0, b.side, squareHalfOffsets(b.kind))
	if g.Interspecies {
		g.addSelfLoops(0, g.Size)
	}
	g.evaluate()
	return nil
}

// === 2D triangular lattice ===

// triangularBuilder fills the degree-3 triangular lattice, encoded on a
// square grid of even side: cells alternate between upward and downward
// triangles by index parity, so each node links left, right, and either up
// or down.
type triangularBuilder struct {
	baseBuilder
	side int
}

func (b *triangularBuilder) Parse(params string) error {
	if params != "" {
		return fmt.Errorf("triangular lattice takes no parameters, got %q", params)
	}
	return nil
}

func (b *triangularBuilder) CheckSettings(g *Geometry) (bool, error) {
	b.prepare(g)
	changed := false
	_, side := nearestSquare(g.Size, 4)
	if side%2 != 0 {
		side++
	}
	if side*side != g.Size {
		logrus.Warnf("triangular: size %d needs an even-sided square, adjusted to %d (%dx%d)",
			g.Size, side*side, side, side)
		g.Size = side * side
		changed = true
	}
	b.side = side
	g.Regular = g.Boundary == BoundaryPeriodic
	g.Connectivity = 3
	g.validated = true
	return changed, nil
}

func (b *triangularBuilder) Init(g *Geometry, rng *rand.Rand) error {
	if err := g.initPrecheck(); err != nil {
		return err
	}
	side := b.side
	g.allocUndirected(4)
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			i := y*side + x
			// Horizontal edge to the right neighbor.
			nx := x + 1
			if g.Boundary == BoundaryPeriodic {
				nx = mod(nx, side)
				g.addLinkAt(i, y*side+nx)
			} else if nx < side {
				g.addLinkAt(i, y*side+nx)
			}
			// Vertical edge, generated from the upward (even-parity) cell
			// only so each pair appears once. Even side keeps the parity
			// alternation consistent across the periodic seam.
			if (x+y)%2 == 0 {
				ny := y + 1
				if g.Boundary == BoundaryPeriodic {
					ny = mod(ny, side)
					g.addLinkAt(i, ny*side+x)
				} else if ny < side {
					g.addLinkAt(i, ny*side+x)
				}
			}
		}
	}
	if g.Interspecies {
		g.addSelfLoops(0, g.Size)
	}
	g.evaluate()
	return nil
}

// === 2D hexagonal lattice ===

// hexagonalBuilder fills the degree-6 hexagonal lattice, encoded on a square
// grid with axial offsets: right, down, and down-left.
type hexagonalBuilder struct {
	baseBuilder
	side int
}

func (b *hexagonalBuilder) Parse(params string) error {
	if params != "" {
		return fmt.Errorf("hexagonal lattice takes no parameters, got %q", params)
	}
	return nil
}

func (b *hexagonalBuilder) CheckSettings(g *Geometry) (bool, error) {
	b.prepare(g)
	changed := false
	coerced, side := nearestSquare(g.Size, 3)
	if coerced != g.Size {
		logrus.Warnf("hexagonal: size %d is not a usable square, adjusted to %d (%dx%d)",
			g.Size, coerced, side, side)
		g.Size = coerced
		changed = true
	}
	b.side = side
	g.Regular = g.Boundary == BoundaryPeriodic
	g.Connectivity = 6
	g.validated = true
	return changed, nil
}

func (b *hexagonalBuilder) Init(g *Geometry, rng *rand.Rand) error {
	if err := g.initPrecheck(); err != nil {
		return err
	}
	half := [][2]int{{1, 0}, {0, 1}, {-1, 1}}
	g.allocUndirected(7)
	fillSquareBlock(g, 0, b.side, half)
	if g.Interspecies {
		g.addSelfLoops(0, g.Size)
	}
	g.evaluate()
	return nil
}

// === 3D cubic lattice ===

// cubicBuilder fills a 3D cubic lattice. A requested connectivity of 6 uses
// the face stencil; any other request is translated to the interaction range
// r whose full cube stencil (2r+1)^3-1 comes closest, with the residual
// mismatch corrected and reported during settings validation.
type cubicBuilder struct {
	baseBuilder
	requested int
	rng3      int // interaction range; 0 selects the 6-neighbor face stencil
	side      int
}

func (b *cubicBuilder) Parse(params string) error {
	if params == "" {
		b.requested = 6
		return nil
	}
	k, err := parsePositiveInt(params, "cubic connectivity")
	if err != nil {
		return err
	}
	b.requested = k
	return nil
}

func (b *cubicBuilder) CheckSettings(g *Geometry) (bool, error) {
	b.prepare(g)
	changed := false
	realized := 6
	if b.requested <= (6+fullCubeStencil(1))/2 {
		// Anything up to the midpoint between the face stencil (6) and the
		// range-1 cube (26) fits the face stencil best.
		b.rng3 = 0
	} else {
		// Nearest-fit interaction range.
		r := 1
		for ; fullCubeStencil(r+1) <= b.requested; r++ {
		}
		if b.requested-fullCubeStencil(r) > fullCubeStencil(r+1)-b.requested {
			r++
		}
		b.rng3 = r
		realized = fullCubeStencil(r)
	}
	if realized != b.requested {
		logrus.Warnf("cubic: connectivity %d not achievable, adjusted to %d", b.requested, realized)
		b.requested = realized
		changed = true
	}
	minSide := 3
	if 2*b.rng3+1 > minSide {
		minSide = 2*b.rng3 + 1
	}
	coerced, side := nearestCube(g.Size, minSide)
	if coerced != g.Size {
		logrus.Warnf("cubic: size %d is not a usable cube, adjusted to %d (%d^3)", g.Size, coerced, side)
		g.Size = coerced
		changed = true
	}
	b.side = side
	g.Regular = g.Boundary == BoundaryPeriodic
	g.Connectivity = float64(realized)
	g.validated = true
	return changed, nil
}

func fullCubeStencil(r int) int {
	d := 2*r + 1
	return d*d*d - 1
}

func (b *cubicBuilder) Init(g *Geometry, rng *rand.Rand) error {
	if err := g.initPrecheck(); err != nil {
		return err
	}
	side := b.side
	var half [][3]int
	if b.rng3 == 0 {
		half = [][3]int{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	} else {
		r := b.rng3
		for dz := 0; dz <= r; dz++ {
			for dy := -r; dy <= r; dy++ {
				for dx := -r; dx <= r; dx++ {
					if dz > 0 || (dz == 0 && dy > 0) || (dz == 0 && dy == 0 && dx > 0) {
						half = append(half, [3]int{dx, dy, dz})
					}
				}
			}
		}
	}
	g.allocUndirected(2*len(half) + 1)
	for z := 0; z < side; z++ {
		for y := 0; y < side; y++ {
			for x := 0; x < side; x++ {
				i := (z*side+y)*side + x
				for _, d := range half {
					nx, ny, nz := x+d[0], y+d[1], z+d[2]
					if g.Boundary == BoundaryPeriodic {
						nx, ny, nz = mod(nx, side), mod(ny, side), mod(nz, side)
					} else if nx < 0 || nx >= side || ny < 0 || ny >= side || nz < 0 || nz >= side {
						continue
					}
					g.addLinkAt(i, (nz*side+ny)*side+nx)
				}
			}
		}
	}
	if g.Interspecies {
		g.addSelfLoops(0, g.Size)
	}
	g.evaluate()
	return nil
}
