// SPDX-License-Identifier: MIT

package distmul

import "errors"

var (
	// ErrMissingOperand is returned on the coordinator when A or B is nil.
	ErrMissingOperand = errors.New("distmul: coordinator requires both operands")

	// ErrBadDims is returned on every rank when the broadcast dimensions do
	// not describe a non-empty product.
	ErrBadDims = errors.New("distmul: dimensions must be > 0")
)
