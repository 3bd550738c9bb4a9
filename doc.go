// Package scattermul multiplies dense integer matrices across a fixed group
// of ranks that exchange data only through collectives: broadcast, scatter
// and gather. There is no point-to-point messaging and no dynamic work
// assignment.
//
// The work splits into equal row blocks:
//
//	          B (replicated)
//	A ──scatter──► rank 0: A₀ × B = C₀ ─┐
//	           ├─► rank 1: A₁ × B = C₁ ─┼─gather──► C on rank 0
//	           └─► rank n: Aₙ × B = Cₙ ─┘
//
// Packages, leaf first:
//
//	matrix/          row-major integer Dense and the local Mul kernel
//	partition/       equal row-block plans; uneven splits are rejected
//	comm/            the collective substrate over in-process channels or websockets
//	distmul/         the broadcast/scatter/multiply/gather sequence
//	driver/          per-rank program: args, config, generation, printing
//	cmd/scattermul/  the command line
//
// Quick start, four ranks in one process:
//
//	scattermul --np 4 8 3 5
package scattermul
