// Package matrix provides the dense integer storage and the local multiply
// kernel used by every rank of a distributed multiply.
//
// The package provides:
//
//   - Dense, a row-major matrix of int values backed by one flat slice with
//     bounds-checked At/Set and explicit copy helpers (Values, RowBlock,
//     NewDenseFrom) so that storage is never aliased between owners.
//   - Mul, the triple-loop kernel C = A × B with ascending inner index.
//   - Central validators and a sentinel error set matched via errors.Is.
//
// Integer accumulation is exact; the kernel carries no overflow guard, so
// callers bound operand magnitudes and inner dimension to fit int.
package matrix
