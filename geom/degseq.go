package geom

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"
)

const (
	// maxPairingFailures bounds consecutive failed pairing attempts in the
	// randomized-pairing phase before the whole attempt is abandoned.
	maxPairingFailures = 10
	// maxConstructionAttempts bounds full construction retries before the
	// degree sequence is reported as unrealizable for this run.
	maxConstructionAttempts = 10
)

// validateDegreeSequence checks the necessary conditions for a simple
// undirected graph on n nodes to realize deg: non-negative entries, every
// entry below n, and an even total.
func validateDegreeSequence(kind Kind, deg []int, n int) error {
	sum := 0
	for i, d := range deg {
		if d < 0 {
			return &StructuralError{Kind: kind, Reason: fmt.Sprintf("negative degree target for node %d", i)}
		}
		if d >= n {
			return &StructuralError{Kind: kind,
				Reason: fmt.Sprintf("degree target %d of node %d not below size %d", d, i, n)}
		}
		sum += d
	}
	if sum%2 != 0 {
		return &StructuralError{Kind: kind, Reason: fmt.Sprintf("odd degree total %d", sum)}
	}
	return nil
}

// initDegreeSequence realizes a simple undirected graph matching deg exactly,
// retrying the whole randomized construction up to maxConstructionAttempts
// times with fresh adjacency storage each attempt. On success the realized
// degree of every node equals its target; there is never a partially-correct
// result.
func initDegreeSequence(g *Geometry, deg []int, rng *rand.Rand) error {
	if err := validateDegreeSequence(g.Kind, deg, g.Size); err != nil {
		return err
	}
	for attempt := 1; attempt <= maxConstructionAttempts; attempt++ {
		g.allocUndirectedDegrees(deg)
		if err := realizeDegreeSequence(g, deg, rng); err == nil {
			g.evaluate()
			return nil
		}
	}
	g.allocUndirectedDegrees(deg) // leave no partial adjacency behind
	return &AttemptsExhaustedError{Kind: g.Kind, Attempts: maxConstructionAttempts}
}

// realizeDegreeSequence is a single construction attempt in three phases:
// core construction (skipped for dynamic geometries), randomized pairing with
// rewiring repair, and a one-shot single-leftover repair. Any phase failure
// aborts the attempt; the caller discards the adjacency and retries.
func realizeDegreeSequence(g *Geometry, deg []int, rng *rand.Rand) error {
	n := g.Size
	done := make([]int, 0, n)
	var pending []int

	if !g.Dynamic {
		// Phase 1: connect all non-leaf nodes into one component. Leaves
		// (target degree <= 1) are excluded so they cannot cap a branch
		// before the core is spanned.
		core := make([]int, 0, n)
		leaves := make([]int, 0, n)
		for i := 0; i < n; i++ {
			switch {
			case deg[i] == 0:
				done = append(done, i)
			case deg[i] == 1:
				leaves = append(leaves, i)
			default:
				core = append(core, i)
			}
		}
		active := make([]int, 0, len(core))
		if len(core) > 0 {
			i := rng.Intn(len(core))
			active = append(active, core[i])
			core[i] = core[len(core)-1]
			core = core[:len(core)-1]
		}
		for len(core) > 0 {
			if len(active) == 0 {
				return errCoreDepleted
			}
			ai := rng.Intn(len(active))
			ci := rng.Intn(len(core))
			a, c := active[ai], core[ci]
			g.addLinkAt(a, c)
			core[ci] = core[len(core)-1]
			core = core[:len(core)-1]
			active = append(active, c)
			if g.OutCount[a] == deg[a] {
				active = removeValue(active, a)
				done = append(done, a)
			}
			if g.OutCount[c] == deg[c] {
				active = removeValue(active, c)
				done = append(done, c)
			}
		}
		pending = append(active, leaves...)
	} else {
		// Dynamic geometries skip the core phase; rewiring will stir the
		// structure at runtime anyway.
		pending = make([]int, 0, n)
		for i := 0; i < n; i++ {
			if g.OutCount[i] < deg[i] {
				pending = append(pending, i)
			} else {
				done = append(done, i)
			}
		}
	}

	// Phase 2: randomized pairing with rewiring repair.
	failures := 0
	for len(pending) > 1 {
		i := rng.Intn(len(pending))
		j := rng.Intn(len(pending) - 1)
		if j >= i {
			j++
		}
		a, b := pending[i], pending[j]
		ok := false
		if !g.linked(a, b) {
			g.addLinkAt(a, b)
			ok = true
		} else {
			ok = rewirePair(g, a, b, done, rng)
		}
		if !ok {
			failures++
			if failures > maxPairingFailures {
				return errPairingFailed
			}
			continue
		}
		failures = 0
		if g.OutCount[a] == deg[a] {
			pending = removeValue(pending, a)
			done = append(done, a)
		}
		if g.OutCount[b] == deg[b] {
			pending = removeValue(pending, b)
			done = append(done, b)
		}
	}

	// Phase 3: single-leftover repair. Deliberately one random candidate per
	// round, failing back to the outer retry loop instead of searching the
	// satisfied pool exhaustively: an exhaustive search would change the
	// statistical ensemble produced under a fixed seed.
	if len(pending) == 1 {
		a := pending[0]
		for g.OutCount[a] < deg[a] {
			if !repairLeftover(g, a, done, rng) {
				return errLeftoverRepair
			}
		}
	}
	return nil
}

// rewirePair raises the degrees of the already-adjacent pending nodes a and b
// by one each without duplicating their edge: a random satisfied node c and
// one of its neighbors d donate their edge, replaced by (a,c)+(b,d) or, if
// that would duplicate an edge, by (a,d)+(b,c). Degrees of c and d are
// unchanged. Returns false when neither option is clean.
func rewirePair(g *Geometry, a, b int, done []int, rng *rand.Rand) bool {
	if len(done) == 0 {
		return false
	}
	c := done[rng.Intn(len(done))]
	if g.OutCount[c] == 0 {
		return false
	}
	d := g.Out[c][rng.Intn(g.OutCount[c])]
	if b != d && !g.linked(a, c) && !g.linked(b, d) {
		g.removeLinkAt(c, d)
		g.addLinkAt(a, c)
		g.addLinkAt(b, d)
		return true
	}
	if a != d && !g.linked(a, d) && !g.linked(b, c) {
		g.removeLinkAt(c, d)
		g.addLinkAt(a, d)
		g.addLinkAt(b, c)
		return true
	}
	return false
}

// repairLeftover raises the degree of the single remaining pending node a by
// two: a random satisfied node c donates a random edge (c,d), replaced by
// (a,c)+(a,d). One draw only; the caller escalates on failure.
func repairLeftover(g *Geometry, a int, done []int, rng *rand.Rand) bool {
	if len(done) == 0 {
		return false
	}
	c := done[rng.Intn(len(done))]
	if g.OutCount[c] == 0 {
		return false
	}
	d := g.Out[c][rng.Intn(g.OutCount[c])]
	if d == a || g.linked(a, c) || g.linked(a, d) {
		return false
	}
	g.removeLinkAt(c, d)
	g.addLinkAt(a, c)
	g.addLinkAt(a, d)
	return true
}

func removeValue(list []int, v int) []int {
	for i, x := range list {
		if x == v {
			list[i] = list[len(list)-1]
			return list[:len(list)-1]
		}
	}
	return list
}

// === random regular graphs ===

// randomRegularBuilder realizes a random k-regular simple graph through the
// degree-sequence constructor.
type randomRegularBuilder struct {
	baseBuilder
	degree int
}

func (b *randomRegularBuilder) Parse(params string) error {
	k, err := parsePositiveInt(params, "degree")
	if err != nil {
		return err
	}
	b.degree = k
	return nil
}

func (b *randomRegularBuilder) CheckSettings(g *Geometry) (bool, error) {
	b.prepare(g)
	changed := false
	if g.Size <= b.degree {
		old := g.Size
		g.Size = b.degree + 1
		logrus.Warnf("random-regular: size %d cannot host degree %d, adjusted to %d", old, b.degree, g.Size)
		changed = true
	}
	if g.Size*b.degree%2 != 0 {
		// An odd degree total is unrealizable; growing the population by one
		// restores parity without touching the requested degree.
		old := g.Size
		g.Size = old + 1
		logrus.Warnf("random-regular: size %d with degree %d has odd degree total, adjusted size to %d", old, b.degree, g.Size)
		changed = true
	}
	g.Connectivity = float64(b.degree)
	g.validated = true
	return changed, nil
}

func (b *randomRegularBuilder) Init(g *Geometry, rng *rand.Rand) error {
	if err := g.initPrecheck(); err != nil {
		return err
	}
	deg := make([]int, g.Size)
	for i := range deg {
		deg[i] = b.degree
	}
	return initDegreeSequence(g, deg, rng)
}

// === explicit degree sequences ===

// degreeSequenceBuilder realizes an arbitrary prescribed degree sequence.
// The sequence length dictates the population size.
type degreeSequenceBuilder struct {
	baseBuilder
	degrees []int
}

func (b *degreeSequenceBuilder) Parse(params string) error {
	deg, err := parseIntList(params, "degree sequence")
	if err != nil {
		return err
	}
	if len(deg) == 0 {
		return &StructuralError{Kind: b.kind, Reason: "empty degree sequence"}
	}
	b.degrees = deg
	return nil
}

func (b *degreeSequenceBuilder) CheckSettings(g *Geometry) (bool, error) {
	b.prepare(g)
	changed := false
	if g.Size != len(b.degrees) {
		logrus.Warnf("degree-sequence: size %d overridden by sequence length %d", g.Size, len(b.degrees))
		g.Size = len(b.degrees)
		changed = true
	}
	g.validated = true
	return changed, nil
}

func (b *degreeSequenceBuilder) Init(g *Geometry, rng *rand.Rand) error {
	if err := g.initPrecheck(); err != nil {
		return err
	}
	return initDegreeSequence(g, b.degrees, rng)
}
