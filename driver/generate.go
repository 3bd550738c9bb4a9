// SPDX-License-Identifier: MIT

package driver

import (
	"fmt"

	"cogentcore.org/core/base/randx"
	"github.com/katalvlaran/scattermul/matrix"
)

// DefaultMaxValue is the exclusive upper bound of generated entries.
const DefaultMaxValue = 10

// Generate returns a rows×cols matrix of ints drawn uniformly from
// [0, maxValue). A nil rng uses the global source.
// Complexity: O(rows*cols).
func Generate(rows, cols int, rng randx.Rand, maxValue int) (*matrix.Dense, error) {
	if maxValue <= 0 {
		return nil, fmt.Errorf("Generate: max value %d: %w", maxValue, ErrInvalidConfig)
	}
	m, err := matrix.NewDense(rows, cols)
	if err != nil {
		return nil, fmt.Errorf("Generate: %w", err)
	}
	if rng == nil {
		rng = randx.NewGlobalRand()
	}

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			_ = m.Set(i, j, rng.Intn(maxValue)) // indices are in range by construction
		}
	}

	return m, nil
}
