// SPDX-License-Identifier: MIT

package partition

import "fmt"

// Plan is the validated row assignment for one run.
// Invariant: TotalRows == RowsPerWorker*Workers.
type Plan struct {
	TotalRows     int // rows of the left operand
	Workers       int // ranks taking part
	RowsPerWorker int // rows owned by each rank
}

// New validates (totalRows, workers) and returns the equal-block plan.
// Stage 1 (Validate): workers >= 1, totalRows >= 1.
// Stage 2 (Validate): totalRows % workers == 0, else ErrIndivisible.
// Stage 3 (Finalize): rowsPerWorker = totalRows / workers.
// Complexity: O(1).
func New(totalRows, workers int) (Plan, error) {
	if workers < 1 {
		return Plan{}, &Error{TotalRows: totalRows, Workers: workers, Err: ErrInvalidWorkers}
	}
	if totalRows < 1 {
		return Plan{}, &Error{TotalRows: totalRows, Workers: workers, Err: ErrInvalidRows}
	}
	if totalRows%workers != 0 {
		return Plan{}, &Error{TotalRows: totalRows, Workers: workers, Err: ErrIndivisible}
	}

	return Plan{TotalRows: totalRows, Workers: workers, RowsPerWorker: totalRows / workers}, nil
}

// Floor returns totalRows / workers with integer division and no checks
// beyond workers >= 1 (it returns 0 otherwise). It describes how many rows
// per rank an unchecked planner would hand out; the remainder
// totalRows - Floor*workers is exactly what such a planner drops.
func Floor(totalRows, workers int) int {
	if workers < 1 {
		return 0
	}

	return totalRows / workers
}

// Block returns the half-open row range [start, end) owned by rank.
func (p Plan) Block(rank int) (start, end int, err error) {
	if rank < 0 || rank >= p.Workers {
		return 0, 0, fmt.Errorf("Plan.Block(%d): %w", rank, ErrInvalidRank)
	}
	start = rank * p.RowsPerWorker

	return start, start + p.RowsPerWorker, nil
}

// BlockLen is the number of elements in one rank's block of a matrix with
// cols columns.
func (p Plan) BlockLen(cols int) int {
	return p.RowsPerWorker * cols
}

// String implements fmt.Stringer.
func (p Plan) String() string {
	return fmt.Sprintf("%d rows / %d workers = %d rows each", p.TotalRows, p.Workers, p.RowsPerWorker)
}
