// Package distmul multiplies two dense integer matrices across the ranks of
// a comm.Communicator.
//
// Every rank runs Multiply. The coordinator passes the full operands A and B;
// workers pass nil. The call then walks a fixed collective sequence that is
// identical on every rank:
//
//	1. BroadcastScalar ×3   rows of A, inner dimension, columns of B
//	2. BroadcastMatrix      B, replicated verbatim
//	3. ScatterRows          rank r receives rows [r*k, (r+1)*k) of A
//	   (local)              C_r = A_r × B
//	4. GatherRows           C_r lands at rows [r*k, (r+1)*k) of C on the coordinator
//
// where k is partition.Plan.RowsPerWorker. Because the plan is derived from
// broadcast values it is identical everywhere, so an indivisible row count
// fails on every rank at the same point, before any matrix data moves.
package distmul
