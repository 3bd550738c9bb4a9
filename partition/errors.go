// SPDX-License-Identifier: MIT

package partition

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidWorkers is returned when the worker count is below one.
	ErrInvalidWorkers = errors.New("partition: worker count must be >= 1")

	// ErrInvalidRows is returned when the total row count is below one.
	ErrInvalidRows = errors.New("partition: row count must be >= 1")

	// ErrIndivisible is returned when the row count is not a multiple of the
	// worker count.
	ErrIndivisible = errors.New("partition: row count not divisible by worker count")

	// ErrInvalidRank is returned by Plan.Block for a rank outside [0, Workers).
	ErrInvalidRank = errors.New("partition: rank out of range")
)

// Error describes a rejected partition request. It always wraps one of the
// sentinels above, so callers match with errors.Is.
type Error struct {
	TotalRows int
	Workers   int
	Err       error
}

// Error implements error.
func (e *Error) Error() string {
	if errors.Is(e.Err, ErrIndivisible) {
		return fmt.Sprintf("%v: %d rows over %d workers leaves %d rows unassigned",
			e.Err, e.TotalRows, e.Workers, e.TotalRows%e.Workers)
	}

	return fmt.Sprintf("%v: rows=%d workers=%d", e.Err, e.TotalRows, e.Workers)
}

// Unwrap returns the underlying sentinel.
func (e *Error) Unwrap() error { return e.Err }
