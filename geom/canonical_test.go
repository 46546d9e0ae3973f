package geom

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evodyn-sim/evodyn-sim/geom/internal/testutil"
)

func TestCompleteAndWellMixed(t *testing.T) {
	for _, spec := range []string{"c", "M"} {
		t.Run(spec, func(t *testing.T) {
			g, err := Build(Config{Spec: spec, Size: 6}, rand.New(rand.NewSource(1)))
			require.NoError(t, err)
			testutil.AssertRegular(t, g.OutCount, 5)
			assert.True(t, g.Regular)
			assert.Equal(t, 5.0, g.Connectivity)
			assert.Equal(t, 15, testutil.EdgeCount(g.Out, g.OutCount))
			require.NoError(t, g.CheckConsistency())
		})
	}
}

func TestStar(t *testing.T) {
	g, err := Build(Config{Spec: "s", Size: 10}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	assert.Equal(t, 9, g.OutCount[0], "hub")
	for n := 1; n < g.Size; n++ {
		assert.Equal(t, 1, g.OutCount[n], "leaf %d", n)
		assert.Equal(t, []int{0}, g.Out[n])
	}
	assert.False(t, g.Regular)
	assert.InDelta(t, 1.8, g.AvgDegree, 1e-12)
	assert.True(t, g.IsConnected())
	require.NoError(t, g.CheckConsistency())
}

func TestWheel(t *testing.T) {
	g, err := Build(Config{Spec: "w", Size: 7}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	assert.Equal(t, 6, g.OutCount[0], "hub")
	for n := 1; n < g.Size; n++ {
		assert.Equal(t, 3, g.OutCount[n], "rim node %d", n)
		assert.True(t, g.linked(n, 0), "rim node %d must touch the hub", n)
	}
	assert.Equal(t, 12, testutil.EdgeCount(g.Out, g.OutCount))
	assert.True(t, g.IsConnected())
	require.NoError(t, g.CheckConsistency())
}

func TestWheelMinimumSize(t *testing.T) {
	g, err := Build(Config{Spec: "w", Size: 2}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 4, g.Size)
}

func TestNamedGraphs(t *testing.T) {
	tests := []struct {
		spec   string
		size   int
		degree int
	}{
		{"desargues", 20, 3},
		{"heawood", 14, 3},
		{"dodecahedron", 20, 3},
		{"franklin", 12, 3},
		{"tietze", 12, 3},
		{"icosahedron", 12, 5},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			// The requested size is irrelevant: named graphs enforce their
			// exact node count.
			g, err := Build(Config{Spec: tt.spec, Size: 100}, rand.New(rand.NewSource(1)))
			require.NoError(t, err)

			assert.Equal(t, tt.size, g.Size)
			testutil.AssertRegular(t, g.OutCount, tt.degree)
			testutil.AssertSymmetric(t, g.Out, g.OutCount)
			testutil.AssertSimple(t, g.Out, g.OutCount, false)
			assert.True(t, g.Regular)
			assert.True(t, g.IsConnected())
			require.NoError(t, g.CheckConsistency())
		})
	}
}

func TestNamedGraphsAreDeterministic(t *testing.T) {
	a, err := Build(Config{Spec: "desargues", Size: 20}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	b, err := Build(Config{Spec: "desargues", Size: 20}, rand.New(rand.NewSource(999)))
	require.NoError(t, err)
	// Exact constructions never consume randomness.
	assert.True(t, a.Equal(b))
}
