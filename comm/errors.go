// SPDX-License-Identifier: MIT

package comm

import "errors"

var (
	// ErrProtocolViolation indicates ranks disagreeing on the collective
	// being executed: different operation, order, root or element count.
	ErrProtocolViolation = errors.New("comm: protocol violation")

	// ErrAborted indicates that the group was torn down by another rank.
	ErrAborted = errors.New("comm: group aborted")

	// ErrClosed indicates use of a communicator after Finalize or Abort.
	ErrClosed = errors.New("comm: communicator closed")

	// ErrInvalidRoot indicates a root rank outside [0, Size).
	ErrInvalidRoot = errors.New("comm: invalid root rank")

	// ErrInvalidCount indicates a negative count or a send buffer too short
	// for the requested operation.
	ErrInvalidCount = errors.New("comm: invalid element count")

	// ErrInvalidTopology indicates a non-positive size or a rank outside [0, Size).
	ErrInvalidTopology = errors.New("comm: invalid topology")
)
