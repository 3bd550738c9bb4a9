package matrix_test

import (
	"fmt"

	"github.com/katalvlaran/scattermul/matrix"
)

// ExampleMul multiplies one row block of A by the full B, as a single rank does.
func ExampleMul() {
	a, _ := matrix.NewDenseFrom(2, 2, []int{1, 2, 3, 4})
	b, _ := matrix.NewDenseFrom(2, 2, []int{5, 6, 7, 8})

	block, _ := a.RowBlock(1, 1) // the rows owned by rank 1 of 2
	c, _ := matrix.Mul(block, b)
	fmt.Print(c)
	// Output:
	// [43, 50]
}
