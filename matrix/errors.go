// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set.
// All functions in this package return these sentinels (optionally wrapped
// with an operation tag) and tests check them via errors.Is. Public indexers
// never panic on user-triggered conditions.

package matrix

import "errors"

// Every message is prefixed with "matrix: ..." so failures are easy to grep
// across the logs of all ranks.

var (
	// ErrBadShape is returned when a requested shape is invalid (r<=0 or c<=0)
	// or when a flat buffer does not hold exactly r*c elements.
	ErrBadShape = errors.New("matrix: invalid shape")

	// ErrOutOfRange indicates that a row or column index is outside valid bounds.
	// Public indexers (At/Set/RowBlock) MUST return this, not panic.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch indicates incompatible dimensions between operands,
	// e.g. Mul where a.Cols != b.Rows.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNilMatrix indicates that a nil Matrix (receiver or argument) was used.
	ErrNilMatrix = errors.New("matrix: nil matrix")
)
