// SPDX-License-Identifier: MIT
// Dense is the concrete row-major implementation of the Matrix interface,
// storing int elements in a flat slice.

package matrix

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// denseErrorf wraps an underlying error with Dense method context.
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is a row-major matrix of int values.
// r is rows, c is columns, and data holds r*c elements in row-major order.
type Dense struct {
	r, c int   // number of rows and columns
	data []int // flat backing storage, length == r*c
}

// NewDense creates an r×c Dense matrix initialized to zeros.
// Stage 1 (Validate): ensure rows and cols > 0 and rows*cols fits in int.
// Stage 2 (Prepare): allocate flat backing slice.
// Complexity: O(r*c) time and memory.
func NewDense(rows, cols int) (*Dense, error) {
	// Validate dimensions
	if rows <= 0 || cols <= 0 {
		return nil, ErrBadShape
	}
	if rows > math.MaxInt/cols {
		return nil, fmt.Errorf("NewDense(%d,%d): element count overflows int: %w", rows, cols, ErrBadShape)
	}

	return &Dense{r: rows, c: cols, data: make([]int, rows*cols)}, nil
}

// NewDenseFrom creates an r×c Dense holding a copy of the row-major values.
// The caller keeps ownership of values; later writes to it are not observed.
// Returns ErrBadShape if rows/cols are non-positive or len(values) != rows*cols.
// Complexity: O(r*c).
func NewDenseFrom(rows, cols int, values []int) (*Dense, error) {
	m, err := NewDense(rows, cols)
	if err != nil {
		return nil, err
	}
	if len(values) != rows*cols {
		return nil, fmt.Errorf("NewDenseFrom(%d,%d): len %d: %w", rows, cols, len(values), ErrBadShape)
	}
	copy(m.data, values) // detach from the caller's buffer

	return m, nil
}

// Rows returns the number of rows in the matrix.
func (m *Dense) Rows() int {
	return m.r
}

// Cols returns the number of columns in the matrix.
func (m *Dense) Cols() int {
	return m.c
}

// Len returns the number of stored elements (Rows*Cols).
func (m *Dense) Len() int {
	return len(m.data)
}

// indexOf computes the flat index for (row, col) or returns ErrOutOfRange.
// Complexity: O(1).
func (m *Dense) indexOf(method string, row, col int) (int, error) {
	if row < 0 || row >= m.r || col < 0 || col >= m.c {
		return 0, denseErrorf(method, row, col, ErrOutOfRange)
	}

	return row*m.c + col, nil
}

// At retrieves the element at (row, col).
// Complexity: O(1).
func (m *Dense) At(row, col int) (int, error) {
	idx, err := m.indexOf("At", row, col)
	if err != nil {
		return 0, err
	}

	return m.data[idx], nil
}

// Set assigns value v at (row, col).
// Complexity: O(1).
func (m *Dense) Set(row, col int, v int) error {
	idx, err := m.indexOf("Set", row, col)
	if err != nil {
		return err
	}
	m.data[idx] = v

	return nil
}

// Clone returns a deep copy of the Dense matrix.
// Complexity: O(r*c) time and memory for copy.
func (m *Dense) Clone() Matrix {
	return m.clone()
}

func (m *Dense) clone() *Dense {
	copyData := make([]int, len(m.data))
	copy(copyData, m.data)

	return &Dense{r: m.r, c: m.c, data: copyData}
}

// Values returns a copy of the row-major backing data.
// Complexity: O(r*c).
func (m *Dense) Values() []int {
	out := make([]int, len(m.data))
	copy(out, m.data)

	return out
}

// Row returns a copy of row i.
// Returns ErrOutOfRange if i is not a valid row.
func (m *Dense) Row(i int) ([]int, error) {
	if i < 0 || i >= m.r {
		return nil, denseErrorf("Row", i, 0, ErrOutOfRange)
	}
	out := make([]int, m.c)
	copy(out, m.data[i*m.c:(i+1)*m.c])

	return out, nil
}

// RowBlock returns a new Dense holding rows [start, start+n) with the full
// column extent. The block owns its own storage.
// Stage 1 (Validate): n > 0 and the range lies within [0, Rows()).
// Stage 2 (Execute): copy the contiguous row-major span.
// Complexity: O(n*c).
func (m *Dense) RowBlock(start, n int) (*Dense, error) {
	if n <= 0 {
		return nil, fmt.Errorf("Dense.RowBlock(%d,%d): %w", start, n, ErrBadShape)
	}
	if start < 0 || start+n > m.r {
		return nil, fmt.Errorf("Dense.RowBlock(%d,%d): %w", start, n, ErrOutOfRange)
	}
	block := &Dense{r: n, c: m.c, data: make([]int, n*m.c)}
	copy(block.data, m.data[start*m.c:(start+n)*m.c]) // contiguous in row-major

	return block, nil
}

// Equal reports whether o has the same shape and elements as m.
// A nil argument is never equal.
func (m *Dense) Equal(o *Dense) bool {
	if o == nil || ValidateSameShape(m, o) != nil {
		return false
	}
	for i := range m.data {
		if m.data[i] != o.data[i] {
			return false
		}
	}

	return true
}

// String implements fmt.Stringer for easy debugging.
// Each row is rendered as "[a, b, c]" on its own line.
// Complexity: O(r*c).
func (m *Dense) String() string {
	var sb strings.Builder
	for i := 0; i < m.r; i++ {
		sb.WriteByte('[')
		for j := 0; j < m.c; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.Itoa(m.data[i*m.c+j]))
		}
		sb.WriteString("]\n")
	}

	return sb.String()
}
