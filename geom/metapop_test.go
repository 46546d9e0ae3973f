package geom

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evodyn-sim/evodyn-sim/geom/internal/testutil"
)

func TestMetapopulationWellMixedDemes(t *testing.T) {
	g, err := Build(Config{Spec: "PM;c;d4,s5", Size: 20}, rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	require.Equal(t, 20, g.Size)
	assert.False(t, g.Directed)
	require.NoError(t, g.CheckConsistency())

	// Every node is linked to its four deme-mates.
	for n := 0; n < g.Size; n++ {
		deme := n / 5
		for m := deme * 5; m < (deme+1)*5; m++ {
			if m != n {
				assert.True(t, g.linked(n, m), "deme edge %d-%d missing", n, m)
			}
		}
	}

	// The complete arrangement on 4 demes has 6 edges, each realized as one
	// inter-deme population edge; connector cursors spread them over distinct
	// members, so no node carries more than one.
	interDeme := 0
	for n := 0; n < g.Size; n++ {
		per := 0
		for _, m := range g.Out[n] {
			if m/5 != n/5 {
				per++
			}
		}
		assert.LessOrEqual(t, per, 1, "node %d", n)
		interDeme += per
	}
	assert.Equal(t, 12, interDeme, "6 arrangement edges, 2 endpoints each")
	assert.Equal(t, 4*10+6, testutil.EdgeCount(g.Out, g.OutCount))
	assert.True(t, g.IsConnected())
}

func TestMetapopulationSqrtSplit(t *testing.T) {
	g, err := Build(Config{Spec: "PM;c", Size: 25}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 25, g.Size)

	// 5 demes of 5: within-deme degree 4 plus at most one inter-deme link.
	for n := 0; n < g.Size; n++ {
		assert.GreaterOrEqual(t, g.OutCount[n], 4)
		assert.LessOrEqual(t, g.OutCount[n], 5)
	}
	assert.True(t, g.IsConnected())
}

func TestMetapopulationLatticeDemes(t *testing.T) {
	g, err := Build(Config{Spec: "PN;l;d3,s9", Size: 27}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	require.Equal(t, 27, g.Size)
	testutil.AssertSymmetric(t, g.Out, g.OutCount)
	require.NoError(t, g.CheckConsistency())
	assert.True(t, g.IsConnected())
}

func TestMetapopulationDirectedArrangement(t *testing.T) {
	// An asymmetric linear arrangement directs the whole composite.
	g, err := Build(Config{Spec: "PM;l2,1;d5,s4", Size: 20}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	assert.True(t, g.Directed)
	require.NoError(t, g.CheckConsistency())

	// Within-deme blocks stay symmetric even in the directed composite.
	for n := 0; n < g.Size; n++ {
		for _, m := range g.Out[n] {
			if m/4 == n/4 {
				assert.True(t, g.linked(m, n), "within-deme edge %d-%d not symmetric", n, m)
			}
		}
	}
}

func TestMetapopulationCountCoercion(t *testing.T) {
	// A square within-deme geometry snaps the deme size to a square.
	g, err := Build(Config{Spec: "PM;c;d2,s10", Size: 0}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 20, g.Size)

	g, err = Build(Config{Spec: "PN;c;d2,s10", Size: 0}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 18, g.Size, "deme size 10 snaps to the 3x3 lattice")
}

func TestMetapopulationParseErrors(t *testing.T) {
	specs := []string{
		"PM",             // missing arrangement
		"PM;c;d4,s5;x",   // too many sections
		"PM;c;x4",        // malformed count
		"PM;c;d0",        // non-positive count
		"PHM:2;c",        // hierarchy cannot nest
		"PM;PM;c",        // metapopulation cannot nest
	}
	for _, spec := range specs {
		_, err := ParseSpec(spec)
		assert.Error(t, err, "spec %s", spec)
	}
}

func TestMetapopulationDeterminism(t *testing.T) {
	build := func(seed int64) *Geometry {
		g, err := Build(Config{Spec: "Pr3;c;d4,s6", Size: 24}, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		return g
	}
	assert.Equal(t, build(11).Fingerprint(), build(11).Fingerprint())
	assert.NotEqual(t, build(11).Fingerprint(), build(12).Fingerprint())
}
