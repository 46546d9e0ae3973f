package geom

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evodyn-sim/evodyn-sim/geom/internal/testutil"
)

func TestRewireUndirectedPreservesDegrees(t *testing.T) {
	g, err := Build(Config{Spec: "r4*", Size: 50}, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	require.False(t, g.Rewired)

	rng := NewPartitionedRNG(NewRunKey(42)).ForSubsystem(SubsystemRewire)
	require.NoError(t, g.RewireUndirected(0.5, rng))

	assert.True(t, g.Rewired)
	testutil.AssertRegular(t, g.OutCount, 4)
	testutil.AssertSymmetric(t, g.Out, g.OutCount)
	testutil.AssertSimple(t, g.Out, g.OutCount, false)
	require.NoError(t, g.CheckConsistency())
}

func TestRewireUndirectedChangesStructure(t *testing.T) {
	g, err := Build(Config{Spec: "N*", Size: 100}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	before := g.Clone()

	rng := rand.New(rand.NewSource(7))
	require.NoError(t, g.RewireUndirected(1.0, rng))

	// The full fraction rewires away the lattice structure while the degree
	// sequence stays fixed.
	assert.NotEqual(t, before.Out, g.Out)
	testutil.AssertRegular(t, g.OutCount, 4)
}

func TestRewireUndirectedRejections(t *testing.T) {
	directed, err := Build(Config{Spec: "l2,1", Size: 10}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(1))
	assert.ErrorIs(t, directed.RewireUndirected(0.5, rng), ErrDirectedMutation)

	g, err := Build(Config{Spec: "N", Size: 9}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Error(t, g.RewireUndirected(-0.1, rng))
	assert.Error(t, g.RewireUndirected(1.1, rng))
}

func TestRewireZeroFractionIsIdentity(t *testing.T) {
	g, err := Build(Config{Spec: "N", Size: 9}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	adjacency := g.Clone()

	require.NoError(t, g.RewireUndirected(0, rand.New(rand.NewSource(1))))
	assert.True(t, g.Rewired, "the geometry is marked even when no swap ran")
	assert.Equal(t, adjacency.Out, g.Out)
}

func TestAddAndRemoveUndirectedEdge(t *testing.T) {
	g, err := Build(Config{Spec: "l", Size: 6}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	require.NoError(t, g.AddUndirectedEdge(0, 3))
	assert.True(t, g.linked(0, 3))
	assert.True(t, g.linked(3, 0))
	assert.True(t, g.Rewired)
	require.NoError(t, g.CheckConsistency())

	require.NoError(t, g.RemoveUndirectedEdge(0, 3))
	assert.False(t, g.linked(0, 3))
	require.NoError(t, g.CheckConsistency())
}

func TestEdgeMutationRejections(t *testing.T) {
	g, err := Build(Config{Spec: "l", Size: 6}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	assert.Error(t, g.AddUndirectedEdge(0, 1), "edge already present")
	assert.Error(t, g.AddUndirectedEdge(0, 6), "node out of range")
	assert.Error(t, g.AddUndirectedEdge(2, 2), "self-loop without interspecies")
	assert.Error(t, g.RemoveUndirectedEdge(0, 3), "edge not present")

	directed, err := Build(Config{Spec: "l2,1", Size: 10}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.ErrorIs(t, directed.AddUndirectedEdge(0, 5), ErrDirectedMutation)
	assert.ErrorIs(t, directed.RemoveUndirectedEdge(0, 1), ErrDirectedMutation)
}
