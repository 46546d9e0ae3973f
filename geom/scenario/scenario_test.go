package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validScenario = `
seed: 42
geometries:
  - name: spatial
    spec: N
    size: 25
  - name: contacts
    spec: r4
    size: 50
  - name: demes
    spec: PM;c;d4,s5
    size: 20
    boundary: fixed
`

func TestParseValidScenario(t *testing.T) {
	s, err := Parse([]byte(validScenario))
	require.NoError(t, err)
	assert.Equal(t, int64(42), s.Seed)
	require.Len(t, s.Geometries, 3)
	assert.Equal(t, "spatial", s.Geometries[0].Name)
	assert.Equal(t, "fixed", s.Geometries[2].Boundary)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	doc := `
seed: 1
geometries:
  - name: a
    spec: N
    size: 9
    topology: ring
`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "topology")
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "no geometries",
			doc:  "seed: 1\ngeometries: []\n",
			want: "at least one geometry",
		},
		{
			name: "missing name",
			doc:  "seed: 1\ngeometries:\n  - spec: N\n    size: 9\n",
			want: "geometries[0].name",
		},
		{
			name: "duplicate name",
			doc:  "seed: 1\ngeometries:\n  - name: a\n    spec: N\n    size: 9\n  - name: a\n    spec: s\n    size: 5\n",
			want: "geometries[1].name",
		},
		{
			name: "non-positive size",
			doc:  "seed: 1\ngeometries:\n  - name: a\n    spec: N\n    size: 0\n",
			want: "geometries[0].size",
		},
		{
			name: "bad spec",
			doc:  "seed: 1\ngeometries:\n  - name: a\n    spec: q9\n    size: 9\n",
			want: "geometries[0].spec",
		},
		{
			name: "bad boundary",
			doc:  "seed: 1\ngeometries:\n  - name: a\n    spec: N\n    size: 9\n    boundary: moebius\n",
			want: "geometries[0].boundary",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestBuildScenario(t *testing.T) {
	s, err := Parse([]byte(validScenario))
	require.NoError(t, err)

	built, err := s.Build()
	require.NoError(t, err)
	require.Len(t, built, 3)
	assert.Equal(t, 25, built["spatial"].Size)
	assert.Equal(t, 50, built["contacts"].Size)
	assert.Equal(t, 20, built["demes"].Size)
	for name, g := range built {
		require.NoError(t, g.CheckConsistency(), "geometry %q", name)
	}
}

func TestBuildIsOrderIndependent(t *testing.T) {
	reordered := `
seed: 42
geometries:
  - name: contacts
    spec: r4
    size: 50
  - name: spatial
    spec: N
    size: 25
  - name: demes
    spec: PM;c;d4,s5
    size: 20
    boundary: fixed
`
	a, err := Parse([]byte(validScenario))
	require.NoError(t, err)
	b, err := Parse([]byte(reordered))
	require.NoError(t, err)

	builtA, err := a.Build()
	require.NoError(t, err)
	builtB, err := b.Build()
	require.NoError(t, err)

	// Streams key on the geometry name, so file order never matters.
	for name := range builtA {
		assert.Equal(t, builtA[name].Fingerprint(), builtB[name].Fingerprint(), "geometry %q", name)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validScenario), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, s.Geometries, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
