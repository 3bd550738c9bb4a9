// SPDX-License-Identifier: MIT

package driver

import (
	"fmt"
	"math"
	"strconv"

	"github.com/katalvlaran/scattermul/distmul"
)

// ParseDims parses exactly three positive integers: rows of A, columns of A
// (the shared inner dimension) and columns of B.
func ParseDims(args []string) (distmul.Dims, error) {
	if len(args) != 3 {
		return distmul.Dims{}, fmt.Errorf("%w: want 3 arguments, got %d", ErrUsage, len(args))
	}

	var v [3]int
	for i, s := range args {
		n, err := strconv.Atoi(s)
		if err != nil {
			return distmul.Dims{}, fmt.Errorf("%w: argument %d: %q is not an integer", ErrUsage, i+1, s)
		}
		if n <= 0 {
			return distmul.Dims{}, fmt.Errorf("%w: argument %d: %d is not positive", ErrUsage, i+1, n)
		}
		v[i] = n
	}

	// A, B and C must each be allocatable as one flat buffer
	for _, pair := range [][2]int{{v[0], v[1]}, {v[1], v[2]}, {v[0], v[2]}} {
		if pair[0] > math.MaxInt/pair[1] {
			return distmul.Dims{}, fmt.Errorf("%w: %dx%d matrix has too many elements", ErrUsage, pair[0], pair[1])
		}
	}

	return distmul.Dims{RowsA: v[0], ColsA: v[1], ColsB: v[2]}, nil
}
