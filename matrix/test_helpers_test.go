// SPDX-License-Identifier: MIT
// Package matrix_test contains test helpers
//
// Purpose:
//   • Provide small, deterministic fixtures and utilities for kernel tests.
//   • Keep values in [0,9] so products stay far from int overflow.

package matrix_test

import (
	"math/rand"
	"testing"

	"github.com/katalvlaran/scattermul/matrix"
	"github.com/stretchr/testify/require"
)

// hide wraps any Matrix to hide its concrete type from type assertions,
// forcing the At-based fallback path of Mul.
type hide struct{ matrix.Matrix }

// MustDense allocates an r×c *Dense or fails the test.
func MustDense(t testing.TB, r, c int) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDense(r, c)
	require.NoError(t, err)

	return m
}

// NewFilledDense builds an r×c *Dense from row-major values.
func NewFilledDense(t testing.TB, r, c int, vals []int) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseFrom(r, c, vals)
	require.NoError(t, err)

	return m
}

// RandFilledDense builds an r×c *Dense with values in [0,10) from seed.
func RandFilledDense(t testing.TB, r, c int, seed int64) *matrix.Dense {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	vals := make([]int, r*c)
	for i := range vals {
		vals[i] = rng.Intn(10)
	}

	return NewFilledDense(t, r, c, vals)
}

// naiveMul is the reference product written directly from the definition.
func naiveMul(a, b [][]int) [][]int {
	out := make([][]int, len(a))
	for i := range a {
		out[i] = make([]int, len(b[0]))
		for j := range b[0] {
			for k := range b {
				out[i][j] += a[i][k] * b[k][j]
			}
		}
	}

	return out
}

// toRows converts m to a [][]int using the public API only.
func toRows(t testing.TB, m *matrix.Dense) [][]int {
	t.Helper()
	out := make([][]int, m.Rows())
	for i := range out {
		row, err := m.Row(i)
		require.NoError(t, err)
		out[i] = row
	}

	return out
}

// CompareExact asserts that m matches want element by element.
func CompareExact(t testing.TB, want [][]int, m *matrix.Dense) {
	t.Helper()
	require.Equal(t, len(want), m.Rows(), "row count")
	require.Equal(t, want, toRows(t, m))
}
