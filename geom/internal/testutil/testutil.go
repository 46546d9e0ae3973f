// Package testutil provides shared assertion helpers for the geometry test
// packages. Helpers operate on raw adjacency slices so the package stays
// free of geom imports.
package testutil

import (
	"testing"
)

// DegreeHistogram counts how many nodes have each out-degree.
func DegreeHistogram(counts []int) map[int]int {
	hist := make(map[int]int)
	for _, c := range counts {
		hist[c]++
	}
	return hist
}

// AssertRegular fails unless every node has exactly degree k.
func AssertRegular(t *testing.T, counts []int, k int) {
	t.Helper()
	for n, c := range counts {
		if c != k {
			t.Errorf("node %d: degree %d, want %d", n, c, k)
		}
	}
}

// AssertSymmetric fails unless every listed edge appears from both endpoints.
func AssertSymmetric(t *testing.T, out [][]int, counts []int) {
	t.Helper()
	for a := range out {
		for _, b := range out[a][:counts[a]] {
			if a == b {
				continue
			}
			if !contains(out[b][:counts[b]], a) {
				t.Errorf("edge %d->%d has no reverse entry", a, b)
			}
		}
	}
}

// AssertSimple fails on self-loops (unless allowed) or duplicate neighbors.
func AssertSimple(t *testing.T, out [][]int, counts []int, allowSelfLoops bool) {
	t.Helper()
	for a := range out {
		seen := make(map[int]bool, counts[a])
		for _, b := range out[a][:counts[a]] {
			if b == a && !allowSelfLoops {
				t.Errorf("node %d: unexpected self-loop", a)
			}
			if seen[b] {
				t.Errorf("node %d: duplicate neighbor %d", a, b)
			}
			seen[b] = true
		}
	}
}

// EdgeCount returns the number of undirected edges implied by the adjacency,
// counting self-loops once.
func EdgeCount(out [][]int, counts []int) int {
	total, loops := 0, 0
	for a := range out {
		total += counts[a]
		for _, b := range out[a][:counts[a]] {
			if b == a {
				loops++
			}
		}
	}
	return (total-loops)/2 + loops
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
