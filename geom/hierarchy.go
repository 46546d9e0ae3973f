package geom

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// hierarchyBuilder builds recursively nested demes of one sub-geometry kind
// across configurable levels. Spec format: "H<sub>:<units,...>[;w<coupling>]"
// where <sub> is M (well-mixed), N (square von Neumann) or m (square Moore),
// and <units,...> are the per-level unit counts, outermost first. Individuals
// per leaf deme are derived from the requested population size and stabilized
// against the sub-geometry's structural constraints; the resulting total
// overrides the requested size with a warning.
//
// Adjacency lives only inside the leaf demes. How strongly the levels couple
// is a property of the interaction rules, not of the graph, so the coupling
// weight is parsed and retained for the model layer but never materializes
// as edges.
type hierarchyBuilder struct {
	baseBuilder
	sub      Kind
	levels   []int
	demeSize int
	coupling float64
}

func (b *hierarchyBuilder) Parse(params string) error {
	sub, rest, ok := strings.Cut(params, ":")
	if !ok {
		return fmt.Errorf("hierarchy spec needs '<sub>:<units,...>', got %q", params)
	}
	switch sub {
	case "M":
		b.sub = WellMixed
	case "N":
		b.sub = SquareVonNeumann
	case "m":
		b.sub = SquareMoore
	default:
		return fmt.Errorf("hierarchy sub-geometry %q not supported; valid: M, N, m", sub)
	}
	unitSpec, weightSpec, hasWeight := strings.Cut(rest, ";")
	levels, err := parseIntList(unitSpec, "hierarchy level")
	if err != nil {
		return err
	}
	if len(levels) == 0 {
		return &StructuralError{Kind: b.kind, Reason: "hierarchy needs at least one level"}
	}
	b.levels = levels
	if hasWeight {
		if !strings.HasPrefix(weightSpec, "w") {
			return fmt.Errorf("hierarchy coupling must look like 'w0.1', got %q", weightSpec)
		}
		w, err := strconv.ParseFloat(weightSpec[1:], 64)
		if err != nil || w < 0 || w > 1 {
			return fmt.Errorf("hierarchy coupling %q must be a weight in [0,1]", weightSpec)
		}
		b.coupling = w
	}
	return nil
}

// CouplingWeight reports the parsed inter-level weight for the model layer.
func (b *hierarchyBuilder) CouplingWeight() float64 { return b.coupling }

// stabilizeUnits coerces one level's unit count to the sub-geometry's
// structural constraints: well-mixed units need at least two members to
// nest, square sub-geometries arrange their units on a square of side >= 2.
func (b *hierarchyBuilder) stabilizeUnits(units int) int {
	switch b.sub {
	case WellMixed:
		if units < 2 {
			return 2
		}
		return units
	default:
		coerced, _ := nearestSquare(units, 2)
		return coerced
	}
}

func (b *hierarchyBuilder) CheckSettings(g *Geometry) (bool, error) {
	b.prepare(g)
	changed := false
	unitTotal := 1
	for i, units := range b.levels {
		stable := b.stabilizeUnits(units)
		if stable != units {
			logrus.Warnf("hierarchy: level %d unit count %d adjusted to %d for %s demes",
				i, units, stable, b.sub)
			b.levels[i] = stable
			changed = true
		}
		unitTotal *= b.levels[i]
	}
	// Individuals per leaf deme, derived from the requested size and then
	// stabilized against the sub-geometry.
	deme := int(math.Round(float64(g.Size) / float64(unitTotal)))
	switch b.sub {
	case WellMixed:
		if deme < 2 {
			deme = 2
		}
	default:
		deme, _ = nearestSquare(deme, 3)
	}
	b.demeSize = deme
	if total := unitTotal * deme; total != g.Size {
		logrus.Warnf("hierarchy: requested size %d adjusted to %d (%d units x %d individuals)",
			g.Size, total, unitTotal, deme)
		g.Size = total
		changed = true
	}
	g.Regular = b.sub == WellMixed || g.Boundary == BoundaryPeriodic
	g.Connectivity = b.leafConnectivity()
	g.validated = true
	return changed, nil
}

func (b *hierarchyBuilder) leafConnectivity() float64 {
	switch b.sub {
	case WellMixed:
		return float64(b.demeSize - 1)
	default:
		return float64(squareStencilSize(b.sub))
	}
}

func (b *hierarchyBuilder) Init(g *Geometry, rng *rand.Rand) error {
	if err := g.initPrecheck(); err != nil {
		return err
	}
	capHint := b.demeSize
	if b.sub != WellMixed {
		capHint = squareStencilSize(b.sub) + 1
	}
	g.allocUndirected(capHint)
	b.initLevel(g, 0, 0)
	if g.Interspecies {
		g.addSelfLoops(0, g.Size)
	}
	g.evaluate()
	return nil
}

// initLevel partitions the index range into per-unit blocks and recurses;
// at the leaf level it delegates to the sub-geometry's deme initializer,
// offset into the global index space.
func (b *hierarchyBuilder) initLevel(g *Geometry, level, offset int) {
	if level == len(b.levels) {
		b.initDeme(g, offset)
		return
	}
	unitSize := b.demeSize
	for _, units := range b.levels[level+1:] {
		unitSize *= units
	}
	for u := 0; u < b.levels[level]; u++ {
		b.initLevel(g, level+1, offset+u*unitSize)
	}
}

func (b *hierarchyBuilder) initDeme(g *Geometry, offset int) {
	switch b.sub {
	case WellMixed:
		fillCompleteBlock(g, offset, b.demeSize)
	default:
		side := int(math.Round(math.Sqrt(float64(b.demeSize))))
		fillSquareBlock(g, offset, side, squareHalfOffsets(b.sub))
	}
}
