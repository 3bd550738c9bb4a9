// Package partition decides how the rows of the left operand are split
// across a fixed group of ranks.
//
// Every rank owns exactly one contiguous block of RowsPerWorker rows; block r
// covers rows [r*RowsPerWorker, (r+1)*RowsPerWorker). A row count that is not
// a multiple of the worker count is rejected with ErrIndivisible before any
// collective is issued, so no row is ever silently dropped.
//
//	rows:  0 1 | 2 3 | 4 5
//	rank:    0 |   1 |   2
package partition
