package geom

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// extremalSize is the population size of both extremal families for unit u:
// u^3 mass nodes, u^2 relay nodes and u hub nodes.
func extremalSize(u int) int {
	return u*u*u + u*u + u
}

// extremalUnit derives the unit parameter whose tier sizes come closest to a
// requested population size.
func extremalUnit(size int) int {
	u := int(math.Round(math.Cbrt(float64(size))))
	if u < 2 {
		return 2
	}
	for extremalSize(u) > size && u > 2 {
		u--
	}
	if size-extremalSize(u) > extremalSize(u+1)-size {
		u++
	}
	return u
}

// extremalTiers returns the index ranges of the three tiers for unit u:
// hubs [0,u), relays [u,u+u^2), mass [u+u^2, N).
func extremalTiers(u int) (hubEnd, relayEnd, size int) {
	return u, u + u*u, extremalSize(u)
}

// === strong amplifier ===

// amplifierBuilder constructs the strong undirected amplifier of selection:
// a funnel of three tiers in one integer unit parameter u. Every relay is
// connected to every hub, and each of the u^3 mass nodes attaches to exactly
// one relay, assigned cyclically. Deterministic given u.
type amplifierBuilder struct {
	baseBuilder
	unit int // 0 until set by Parse or derived in CheckSettings
}

func (b *amplifierBuilder) Parse(params string) error {
	if params == "" {
		return nil
	}
	u, err := parsePositiveInt(params, "amplifier unit")
	if err != nil {
		return err
	}
	if u < 2 {
		return &StructuralError{Kind: b.kind, Reason: fmt.Sprintf("unit %d below minimum 2", u)}
	}
	b.unit = u
	return nil
}

func (b *amplifierBuilder) CheckSettings(g *Geometry) (bool, error) {
	b.prepare(g)
	changed := false
	u := b.unit
	if u == 0 {
		u = extremalUnit(g.Size)
		b.unit = u
	}
	if want := extremalSize(u); g.Size != want {
		logrus.Warnf("%s: unit %d requires exactly %d nodes, overriding requested size %d",
			g.Kind, u, want, g.Size)
		g.Size = want
		changed = true
	}
	g.Regular = false
	g.validated = true
	return changed, nil
}

func (b *amplifierBuilder) Init(g *Geometry, rng *rand.Rand) error {
	if err := g.initPrecheck(); err != nil {
		return err
	}
	u := b.unit
	hubEnd, relayEnd, _ := extremalTiers(u)
	g.allocUndirected(0)
	// Relay tier to hub tier, complete bipartite.
	for v := hubEnd; v < relayEnd; v++ {
		for h := 0; h < hubEnd; h++ {
			g.addLinkAt(v, h)
		}
	}
	// Mass tier fans into the relays, u leaves per relay.
	for w := relayEnd; w < g.Size; w++ {
		g.addLinkAt(w, hubEnd+(w-relayEnd)%(u*u))
	}
	if g.Interspecies {
		g.addSelfLoops(0, g.Size)
	}
	g.evaluate()
	return nil
}

// === strong suppressor ===

// suppressorBuilder constructs the strong undirected suppressor of selection:
// the same three tiers in unit u, wired as a dense bottleneck instead of a
// funnel. The mass tier is completely bipartite to the relays, the relays to
// the hubs, and the hubs form a clique. Deterministic given u.
type suppressorBuilder struct {
	baseBuilder
	unit int
}

func (b *suppressorBuilder) Parse(params string) error {
	if params == "" {
		return nil
	}
	u, err := parsePositiveInt(params, "suppressor unit")
	if err != nil {
		return err
	}
	if u < 2 {
		return &StructuralError{Kind: b.kind, Reason: fmt.Sprintf("unit %d below minimum 2", u)}
	}
	b.unit = u
	return nil
}

func (b *suppressorBuilder) CheckSettings(g *Geometry) (bool, error) {
	b.prepare(g)
	changed := false
	u := b.unit
	if u == 0 {
		u = extremalUnit(g.Size)
		b.unit = u
	}
	if want := extremalSize(u); g.Size != want {
		logrus.Warnf("%s: unit %d requires exactly %d nodes, overriding requested size %d",
			g.Kind, u, want, g.Size)
		g.Size = want
		changed = true
	}
	g.Regular = false
	g.validated = true
	return changed, nil
}

func (b *suppressorBuilder) Init(g *Geometry, rng *rand.Rand) error {
	if err := g.initPrecheck(); err != nil {
		return err
	}
	u := b.unit
	hubEnd, relayEnd, _ := extremalTiers(u)
	g.allocUndirected(0)
	// Hub clique.
	fillCompleteBlock(g, 0, hubEnd)
	// Relay tier to hub tier, complete bipartite.
	for v := hubEnd; v < relayEnd; v++ {
		for h := 0; h < hubEnd; h++ {
			g.addLinkAt(v, h)
		}
	}
	// Mass tier to relay tier, complete bipartite: the whole population
	// drains through the relays into the hub clique.
	for w := relayEnd; w < g.Size; w++ {
		for v := hubEnd; v < relayEnd; v++ {
			g.addLinkAt(w, v)
		}
	}
	if g.Interspecies {
		g.addSelfLoops(0, g.Size)
	}
	g.evaluate()
	return nil
}
