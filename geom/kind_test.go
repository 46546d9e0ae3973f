package geom

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpec(t *testing.T) {
	tests := []struct {
		spec        string
		wantKind    Kind
		wantDynamic bool
		wantErr     bool
	}{
		{spec: "M", wantKind: WellMixed},
		{spec: "c", wantKind: Complete},
		{spec: "s", wantKind: Star},
		{spec: "w", wantKind: Wheel},
		{spec: "l2,1", wantKind: Linear},
		{spec: "N", wantKind: SquareVonNeumann},
		{spec: "m", wantKind: SquareMoore},
		{spec: "D", wantKind: SquareDiagonal},
		{spec: "t", wantKind: Triangular},
		{spec: "h", wantKind: Hexagonal},
		{spec: "C26", wantKind: Cubic},
		{spec: "r4", wantKind: RandomRegular},
		{spec: "g3,3,3,3", wantKind: DegreeSequence},
		{spec: "A2", wantKind: StrongAmplifier},
		{spec: "Z", wantKind: StrongSuppressor},
		{spec: "HM:2,3", wantKind: Hierarchy},
		{spec: "PM;c;d4,s5", wantKind: Metapopulation},
		{spec: "desargues", wantKind: Desargues},
		{spec: "Heawood", wantKind: Heawood},
		{spec: "dodecahedron", wantKind: Dodecahedron},
		{spec: "franklin", wantKind: Franklin},
		{spec: "tietze", wantKind: Tietze},
		{spec: "icosahedron", wantKind: Icosahedron},
		{spec: "r4*", wantKind: RandomRegular, wantDynamic: true},
		{spec: "N*", wantKind: SquareVonNeumann, wantDynamic: true},
		{spec: "", wantErr: true},
		{spec: "x", wantErr: true},
		{spec: "r", wantErr: true},
		{spec: "rfour", wantErr: true},
		{spec: "l1,2,3", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			b, err := ParseSpec(tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, b.Kind())

			g := New(b.Kind())
			g.Size = 20
			_, err = b.CheckSettings(g)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDynamic, g.Dynamic)
		})
	}
}

func TestNewBuilderCoversEveryKind(t *testing.T) {
	kinds := []Kind{
		WellMixed, Complete, Star, Wheel, Linear,
		SquareVonNeumann, SquareMoore, SquareDiagonal,
		Triangular, Hexagonal, Cubic,
		RandomRegular, DegreeSequence,
		Desargues, Heawood, Dodecahedron, Franklin, Tietze, Icosahedron,
		StrongAmplifier, StrongSuppressor,
		Hierarchy, Metapopulation,
	}
	for _, k := range kinds {
		b := NewBuilder(k)
		require.NotNil(t, b, "kind %v", k)
		assert.Equal(t, k, b.Kind())
		assert.NotContains(t, k.String(), "Kind(")
	}
}

func TestInitPreconditions(t *testing.T) {
	b := NewBuilder(Star)
	require.NoError(t, b.Parse(""))
	rng := rand.New(rand.NewSource(1))

	g := New(Star)
	err := b.Init(g, rng)
	assert.ErrorIs(t, err, ErrSizeNotSet)

	g.Size = 5
	err = b.Init(g, rng)
	assert.ErrorIs(t, err, ErrNotValidated)

	_, err = b.CheckSettings(g)
	require.NoError(t, err)
	require.NoError(t, b.Init(g, rng))
}

func TestBuildIsDeterministic(t *testing.T) {
	specs := []string{"r3", "g2,2,2,1,1", "N", "s", "HM:2,2", "PM;c;d3,s4"}
	for _, spec := range specs {
		t.Run(spec, func(t *testing.T) {
			a, err := Build(Config{Spec: spec, Size: 24}, rand.New(rand.NewSource(42)))
			require.NoError(t, err)
			b, err := Build(Config{Spec: spec, Size: 24}, rand.New(rand.NewSource(42)))
			require.NoError(t, err)
			assert.True(t, a.Equal(b), "same seed must reproduce the identical graph")
			assert.Equal(t, a.Fingerprint(), b.Fingerprint())
		})
	}
}

func TestBuildStampsFlags(t *testing.T) {
	g, err := Build(Config{Spec: "N", Size: 9, Boundary: BoundaryFixed, Interspecies: true},
		rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, SquareVonNeumann, g.Kind)
	assert.Equal(t, BoundaryFixed, g.Boundary)
	assert.True(t, g.Interspecies)
	assert.False(t, g.Dynamic)
	require.NoError(t, g.CheckConsistency())
}
