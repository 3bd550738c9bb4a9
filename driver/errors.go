// SPDX-License-Identifier: MIT

package driver

import "errors"

// Usage is printed by the coordinator when the arguments are malformed.
const Usage = "Usage: scattermul [flags] <rows_A> <cols_A> <cols_B>"

var (
	// ErrUsage indicates a wrong argument count or a non-positive / malformed
	// dimension. Every rank returns it after a clean Finalize.
	ErrUsage = errors.New("driver: usage")

	// ErrInvalidConfig indicates a configuration value out of range.
	ErrInvalidConfig = errors.New("driver: invalid configuration")

	// ErrConfigFormat indicates a config file with an unsupported extension.
	ErrConfigFormat = errors.New("driver: unsupported config format")
)
