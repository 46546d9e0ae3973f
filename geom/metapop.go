package geom

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/sirupsen/logrus"
)

// metapopBuilder composes exactly two independently configured geometries: an
// arrangement geometry connecting demes to each other and a within-deme
// geometry replicated inside every deme. Spec format:
// "P<within>;<arrangement>[;d<demes>,s<demeSize>]", e.g. "PM;c;d4,s5".
//
// Without explicit counts the target population is split as close to its
// square root as both sub-geometries' structural constraints allow. Every
// inter-deme edge of the arrangement becomes exactly one edge between two
// concrete members, chosen by a round-robin connector cursor per deme so
// that repeated inter-deme edges fan out across different members. The
// composite is undirected only if both components are; regularity is
// recomputed from realized degrees, never assumed.
type metapopBuilder struct {
	baseBuilder
	withinSpec  string
	arrangeSpec string
	within      Builder
	arrange     Builder
	demes       int // 0 = derive from size
	demeSize    int // 0 = derive from size
}

func (b *metapopBuilder) Parse(params string) error {
	parts := strings.Split(params, ";")
	if len(parts) < 2 || len(parts) > 3 {
		return fmt.Errorf("metapopulation spec needs '<within>;<arrangement>[;d<demes>,s<size>]', got %q", params)
	}
	b.withinSpec, b.arrangeSpec = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	var err error
	if b.within, err = ParseSpec(b.withinSpec); err != nil {
		return fmt.Errorf("within-deme geometry: %w", err)
	}
	if b.arrange, err = ParseSpec(b.arrangeSpec); err != nil {
		return fmt.Errorf("arrangement geometry: %w", err)
	}
	for _, sub := range []Builder{b.within, b.arrange} {
		if sub.Kind() == Metapopulation || sub.Kind() == Hierarchy {
			return &StructuralError{Kind: b.kind,
				Reason: fmt.Sprintf("cannot nest %s inside a metapopulation", sub.Kind())}
		}
	}
	if len(parts) == 3 {
		if err := b.parseCounts(parts[2]); err != nil {
			return err
		}
	}
	return nil
}

func (b *metapopBuilder) parseCounts(s string) error {
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		switch {
		case strings.HasPrefix(tok, "d"):
			d, err := parsePositiveInt(tok[1:], "deme count")
			if err != nil {
				return err
			}
			b.demes = d
		case strings.HasPrefix(tok, "s"):
			sz, err := parsePositiveInt(tok[1:], "deme size")
			if err != nil {
				return err
			}
			b.demeSize = sz
		default:
			return fmt.Errorf("metapopulation count %q must look like 'd4' or 's5'", tok)
		}
	}
	return nil
}

// subSettings drives a sub-builder's CheckSettings to a fixed point on a
// scratch geometry of the proposed size and returns the (possibly coerced)
// scratch.
func (b *metapopBuilder) subSettings(sub Builder, size int, parent *Geometry, interspecies bool) (*Geometry, error) {
	s := New(sub.Kind())
	s.Size = size
	s.Boundary = parent.Boundary
	s.Interspecies = interspecies
	for pass := 0; ; pass++ {
		changed, err := sub.CheckSettings(s)
		if err != nil {
			return nil, err
		}
		if !changed {
			return s, nil
		}
		if pass >= maxSettingsPasses {
			return nil, &StructuralError{Kind: b.kind,
				Reason: fmt.Sprintf("%s settings did not stabilize", sub.Kind())}
		}
	}
}

func (b *metapopBuilder) CheckSettings(g *Geometry) (bool, error) {
	b.prepare(g)
	changed := false
	demes, demeSize := b.demes, b.demeSize
	switch {
	case demes > 0 && demeSize > 0:
		// explicit split
	case demes > 0:
		demeSize = int(math.Round(float64(g.Size) / float64(demes)))
	case demeSize > 0:
		demes = int(math.Round(float64(g.Size) / float64(demeSize)))
	default:
		// Split the target as close to its square root as possible; the
		// sub-geometries' constraints adjust from there.
		demes = int(math.Round(math.Sqrt(float64(g.Size))))
		if demes < 2 {
			demes = 2
		}
		demeSize = int(math.Round(float64(g.Size) / float64(demes)))
	}
	if demeSize < 1 {
		demeSize = 1
	}

	aScratch, err := b.subSettings(b.arrange, demes, g, false)
	if err != nil {
		return false, err
	}
	wScratch, err := b.subSettings(b.within, demeSize, g, g.Interspecies)
	if err != nil {
		return false, err
	}
	if aScratch.Size != demes {
		logrus.Warnf("metapopulation: deme count %d adjusted to %d by %s arrangement",
			demes, aScratch.Size, b.arrange.Kind())
		changed = true
	}
	if wScratch.Size != demeSize {
		logrus.Warnf("metapopulation: deme size %d adjusted to %d by %s within-deme geometry",
			demeSize, wScratch.Size, b.within.Kind())
		changed = true
	}
	b.demes, b.demeSize = aScratch.Size, wScratch.Size

	if total := b.demes * b.demeSize; total != g.Size {
		logrus.Warnf("metapopulation: requested size %d adjusted to %d (%d demes x %d members)",
			g.Size, total, b.demes, b.demeSize)
		g.Size = total
		changed = true
	}
	g.Directed = aScratch.Directed || wScratch.Directed
	g.Connectivity = wScratch.Connectivity
	g.validated = true
	return changed, nil
}

func (b *metapopBuilder) Init(g *Geometry, rng *rand.Rand) error {
	if err := g.initPrecheck(); err != nil {
		return err
	}
	if b.demes <= 0 || b.demeSize <= 0 || b.demes*b.demeSize != g.Size {
		return &StructuralError{Kind: b.kind, Reason: "deme split inconsistent with size"}
	}

	arrangement, err := b.subSettings(b.arrange, b.demes, g, false)
	if err != nil {
		return err
	}
	if err := b.arrange.Init(arrangement, rng); err != nil {
		return fmt.Errorf("arrangement geometry: %w", err)
	}

	if g.Directed {
		g.allocDirected(int(g.Connectivity) + 2)
	} else {
		g.allocUndirected(int(g.Connectivity) + 2)
	}

	// Each deme gets its own freshly constructed within-deme instance,
	// translated into the global index space by the deme's offset.
	for d := 0; d < b.demes; d++ {
		deme, err := b.subSettings(b.within, b.demeSize, g, g.Interspecies)
		if err != nil {
			return err
		}
		if err := b.within.Init(deme, rng); err != nil {
			return fmt.Errorf("deme %d: %w", d, err)
		}
		translateBlock(g, deme, d*b.demeSize)
	}

	b.connectDemes(g, arrangement)
	g.evaluate()
	return nil
}

// translateBlock copies src's edges into g at the given node offset.
// Undirected sources list every edge from both endpoints, so copying into a
// directed composite yields the symmetric pair automatically.
func translateBlock(g *Geometry, src *Geometry, offset int) {
	if g.Directed {
		for i := 0; i < src.Size; i++ {
			for _, j := range src.Out[i] {
				g.addLinkAt(offset+i, offset+j)
			}
		}
		return
	}
	for i := 0; i < src.Size; i++ {
		for _, j := range src.Out[i] {
			if j >= i {
				g.addLinkAt(offset+i, offset+j)
			}
		}
	}
}

// connectDemes realizes every arrangement edge as exactly one edge between
// two concrete members. Each deme advances its own connector cursor, so a
// deme's inter-deme links fan out across its members round-robin instead of
// concentrating on one node.
func (b *metapopBuilder) connectDemes(g *Geometry, arrangement *Geometry) {
	cursors := make([]int, b.demes)
	next := func(d int) int {
		m := d*b.demeSize + cursors[d]%b.demeSize
		cursors[d]++
		return m
	}
	if arrangement.Directed {
		for d := 0; d < arrangement.Size; d++ {
			for _, e := range arrangement.Out[d] {
				g.addLinkAt(next(d), next(e))
			}
		}
		return
	}
	for d := 0; d < arrangement.Size; d++ {
		for _, e := range arrangement.Out[d] {
			if e <= d {
				continue
			}
			m1, m2 := next(d), next(e)
			g.addLinkAt(m1, m2)
			if g.Directed {
				g.addLinkAt(m2, m1)
			}
		}
	}
}
