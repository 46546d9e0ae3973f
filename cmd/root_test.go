package cmd

import (
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evodyn-sim/evodyn-sim/geom"
)

func runCLI(t *testing.T, args ...string) {
	t.Helper()
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
}

func TestBuildCommand(t *testing.T) {
	runCLI(t, "build", "--spec", "N", "--size", "25", "--seed", "7")
	runCLI(t, "build", "--spec", "r4", "--size", "30", "--seed", "7", "--check-connected")
}

func TestValidateCommand(t *testing.T) {
	runCLI(t, "validate", "--spec", "PM;c;d4,s5")
}

func TestBuildFromScenarioFile(t *testing.T) {
	doc := `
seed: 9
geometries:
  - name: lattice
    spec: m
    size: 25
`
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	runCLI(t, "build", "--scenario", path)

	// Package-level flag state persists between invocations in one process.
	scenarioFile = ""
}

func TestReportFormatsDegrees(t *testing.T) {
	g, err := geom.Build(geom.Config{Spec: "N", Size: 16}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	report("lattice", g)
	w.Close()
	os.Stdout = old

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Contains(t, string(out), "degrees=[4 4.00 4]")
	assert.NotContains(t, string(out), "%!", "degree bounds must format cleanly")
}
