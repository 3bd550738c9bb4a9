// SPDX-License-Identifier: MIT
// Package matrix: the local multiply kernel.
//
// Purpose:
//   - Compute one rank's block of C = A × B from its block of A and the full B.
//
// Notes:
//   - Kernels use the central validators and wrap failures via matrixErrorf.
//   - No tiling or reordering: the accumulation order is the natural one
//     (k ascending), which is exact for integer inputs.

package matrix

import "fmt"

// ZeroSum is the initial value of every accumulated dot product.
const ZeroSum = 0

// Operation name constants for unified error wrapping.
const (
	opMul = "Mul"
)

// matrixErrorf wraps err with an operation tag, preserving the original error via %w.
// Use only when err != nil.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// Mul performs standard matrix multiplication C = A × B (no aliasing).
// Implementation:
//   - Stage 1: Validate A,B (not nil) and inner dimensions (A.Cols == B.Rows).
//   - Stage 2: If A and B are *Dense, walk the flat slices with row-major
//     strides; otherwise use At. Both paths use the fixed i→j→k order.
//
// Inputs:
//   - A: left matrix with shape (r × n), typically one rank's row block.
//   - B: right matrix with shape (n × c).
//
// Returns:
//   - *Dense C with shape (r × c), freshly allocated.
//
// Errors:
//   - ErrNilMatrix (nil input), ErrDimensionMismatch (inner mismatch).
//
// Determinism:
//   - Pure function of its inputs; repeated calls yield identical output.
//
// Complexity:
//   - Time O(r*n*c), Space O(r*c).
//
// Notes:
//   - No overflow guard: the caller bounds magnitudes so that n*max(A)*max(B)
//     fits in int.
func Mul(a, b Matrix) (*Dense, error) {
	// Validate inputs via canonical validator
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}

	aRows, aCols, bCols := a.Rows(), a.Cols(), b.Cols()
	res, err := NewDense(aRows, bCols)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	var (
		i, j, k int // loop iterators
		sum     int
	)
	// Fast-path for two Dense matrices
	if da, okA := a.(*Dense); okA {
		if db, okB := b.(*Dense); okB {
			// da.data layout: i*aCols + k
			// db.data layout: k*bCols + j
			var rowOffsetA, rowOffsetR int
			for i = 0; i < aRows; i++ {
				rowOffsetA = i * aCols
				rowOffsetR = i * bCols
				for j = 0; j < bCols; j++ {
					sum = ZeroSum
					for k = 0; k < aCols; k++ {
						sum += da.data[rowOffsetA+k] * db.data[k*bCols+j]
					}
					res.data[rowOffsetR+j] = sum
				}
			}

			return res, nil
		}
	}

	// Fallback: generic interface triple-loop (i-j-k)
	var av, bv int
	for i = 0; i < aRows; i++ {
		for j = 0; j < bCols; j++ {
			sum = ZeroSum
			for k = 0; k < aCols; k++ {
				if av, err = a.At(i, k); err != nil {
					return nil, matrixErrorf(opMul, fmt.Errorf("At(%d,%d): %w", i, k, err))
				}
				if bv, err = b.At(k, j); err != nil {
					return nil, matrixErrorf(opMul, fmt.Errorf("At(%d,%d): %w", k, j, err))
				}
				sum += av * bv
			}
			res.data[i*bCols+j] = sum
		}
	}

	return res, nil
}
