// SPDX-License-Identifier: MIT

package distmul

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/katalvlaran/scattermul/comm"
	"github.com/katalvlaran/scattermul/matrix"
	"github.com/katalvlaran/scattermul/partition"
)

// Operation tags for error wrapping.
const (
	opBroadcastScalar = "BroadcastScalar"
	opBroadcastMatrix = "BroadcastMatrix"
	opScatterRows     = "ScatterRows"
	opGatherRows      = "GatherRows"
	opMultiply        = "Multiply"
)

// Dims are the shared problem dimensions: A is RowsA×ColsA, B is ColsA×ColsB.
type Dims struct {
	RowsA int
	ColsA int
	ColsB int
}

// Validate reports ErrBadDims unless all three extents are positive.
func (d Dims) Validate() error {
	if d.RowsA <= 0 || d.ColsA <= 0 || d.ColsB <= 0 {
		return fmt.Errorf("%w: %dx%d times %dx%d", ErrBadDims, d.RowsA, d.ColsA, d.ColsA, d.ColsB)
	}

	return nil
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger for per-phase debug records.
func WithLogger(l *slog.Logger) Option {
	return func(co *Coordinator) {
		if l != nil {
			co.log = l
		}
	}
}

// Coordinator drives the collective row operations for one rank.
// The role is read once from the communicator; every branch on
// coordinator-versus-worker behavior goes through it.
type Coordinator struct {
	comm comm.Communicator
	role comm.Role
	log  *slog.Logger
}

// New returns the Coordinator for the rank owning c.
func New(c comm.Communicator, opts ...Option) *Coordinator {
	co := &Coordinator{comm: c, role: c.Role(), log: slog.Default()}
	for _, opt := range opts {
		opt(co)
	}
	co.log = co.log.With("rank", c.Topology().Rank, "role", co.role)

	return co
}

// Role returns this rank's role.
func (co *Coordinator) Role() comm.Role { return co.role }

// BroadcastScalar returns the coordinator's v on every rank.
// The value passed by workers is ignored.
func (co *Coordinator) BroadcastScalar(ctx context.Context, v int) (int, error) {
	out, err := co.comm.BcastInt(ctx, v, comm.Root)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", opBroadcastScalar, err)
	}

	return out, nil
}

// BroadcastMatrix replicates the coordinator's rows×cols matrix m to every
// rank. Workers pass nil and receive their own copy; the coordinator receives
// a copy as well, so no rank keeps a reference to the caller's matrix.
func (co *Coordinator) BroadcastMatrix(ctx context.Context, m *matrix.Dense, rows, cols int) (*matrix.Dense, error) {
	if err := matrix.ValidateShape(rows, cols); err != nil {
		co.comm.Abort(err)
		return nil, fmt.Errorf("%s: %w", opBroadcastMatrix, err)
	}

	var buf []int
	if co.role == comm.Coordinator {
		if err := co.requireShape(m, rows, cols); err != nil {
			co.comm.Abort(err)
			return nil, fmt.Errorf("%s: %w", opBroadcastMatrix, err)
		}
		buf = m.Values()
	} else {
		buf = make([]int, rows*cols)
	}

	if err := co.comm.Bcast(ctx, buf, comm.Root); err != nil {
		return nil, fmt.Errorf("%s: %w", opBroadcastMatrix, err)
	}

	return matrix.NewDenseFrom(rows, cols, buf)
}

// ScatterRows hands each rank its contiguous block of plan.RowsPerWorker rows
// of the coordinator's matrix a (cols columns). Workers pass nil for a. The
// coordinator receives its own block through the same collective.
func (co *Coordinator) ScatterRows(ctx context.Context, a *matrix.Dense, plan partition.Plan, cols int) (*matrix.Dense, error) {
	var send []int
	if co.role == comm.Coordinator {
		if err := co.requireShape(a, plan.TotalRows, cols); err != nil {
			co.comm.Abort(err)
			return nil, fmt.Errorf("%s: %w", opScatterRows, err)
		}
		send = a.Values()
	}

	block, err := co.comm.Scatter(ctx, send, plan.BlockLen(cols), comm.Root)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opScatterRows, err)
	}

	return matrix.NewDenseFrom(plan.RowsPerWorker, cols, block)
}

// GatherRows reassembles every rank's block, in rank order, into a freshly
// allocated plan.TotalRows×local.Cols() matrix on the coordinator. Workers
// receive nil.
func (co *Coordinator) GatherRows(ctx context.Context, local *matrix.Dense, plan partition.Plan) (*matrix.Dense, error) {
	if err := co.requireShape(local, plan.RowsPerWorker, localCols(local)); err != nil {
		co.comm.Abort(err)
		return nil, fmt.Errorf("%s: %w", opGatherRows, err)
	}

	full, err := co.comm.Gather(ctx, local.Values(), comm.Root)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opGatherRows, err)
	}
	if co.role != comm.Coordinator {
		return nil, nil
	}

	return matrix.NewDenseFrom(plan.TotalRows, local.Cols(), full)
}

// Multiply computes C = A × B across the group. The coordinator passes A and
// B and receives C; workers pass nil, nil and receive nil.
//
// Stage 1: broadcast dimensions and derive the partition plan on every rank.
// Stage 2: broadcast B, scatter the rows of A.
// Stage 3: local kernel on this rank's block.
// Stage 4: gather the result blocks on the coordinator.
//
// Errors:
//   - ErrMissingOperand / matrix.ErrDimensionMismatch on the coordinator
//     (the group is aborted, workers see comm.ErrAborted).
//   - ErrBadDims, partition.ErrIndivisible on every rank, uniformly.
//   - comm errors (ErrProtocolViolation, ErrAborted) from any phase.
func (co *Coordinator) Multiply(ctx context.Context, a, b *matrix.Dense) (*matrix.Dense, error) {
	var dims Dims
	if co.role == comm.Coordinator {
		if a == nil || b == nil {
			co.comm.Abort(ErrMissingOperand)
			return nil, fmt.Errorf("%s: %w", opMultiply, ErrMissingOperand)
		}
		if err := matrix.ValidateMulCompatible(a, b); err != nil {
			co.comm.Abort(err)
			return nil, fmt.Errorf("%s: %w", opMultiply, err)
		}
		dims = Dims{RowsA: a.Rows(), ColsA: a.Cols(), ColsB: b.Cols()}
	}

	// Stage 1: shared metadata
	var err error
	if dims.RowsA, err = co.BroadcastScalar(ctx, dims.RowsA); err != nil {
		return nil, err
	}
	if dims.ColsA, err = co.BroadcastScalar(ctx, dims.ColsA); err != nil {
		return nil, err
	}
	if dims.ColsB, err = co.BroadcastScalar(ctx, dims.ColsB); err != nil {
		return nil, err
	}
	if err = dims.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", opMultiply, err)
	}
	plan, err := partition.New(dims.RowsA, co.comm.Topology().Size)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opMultiply, err)
	}
	co.log.Debug("plan", "dims", dims, "plan", plan.String())

	// Stage 2: distribute operands
	bLocal, err := co.BroadcastMatrix(ctx, b, dims.ColsA, dims.ColsB)
	if err != nil {
		return nil, err
	}
	aLocal, err := co.ScatterRows(ctx, a, plan, dims.ColsA)
	if err != nil {
		return nil, err
	}

	// Stage 3: local kernel
	cLocal, err := matrix.Mul(aLocal, bLocal)
	if err != nil {
		co.comm.Abort(err)
		return nil, fmt.Errorf("%s: %w", opMultiply, err)
	}
	co.log.Debug("local block computed", "rows", cLocal.Rows(), "cols", cLocal.Cols())

	// Stage 4: recombine
	return co.GatherRows(ctx, cLocal, plan)
}

// requireShape checks that m is a non-nil rows×cols matrix.
func (co *Coordinator) requireShape(m *matrix.Dense, rows, cols int) error {
	if m == nil {
		return ErrMissingOperand
	}
	if m.Rows() != rows || m.Cols() != cols {
		return fmt.Errorf("have %dx%d, want %dx%d: %w", m.Rows(), m.Cols(), rows, cols, matrix.ErrDimensionMismatch)
	}

	return nil
}

func localCols(m *matrix.Dense) int {
	if m == nil {
		return 0
	}

	return m.Cols()
}

// Multiply is a convenience wrapper for New(c, opts...).Multiply(ctx, a, b).
func Multiply(ctx context.Context, c comm.Communicator, a, b *matrix.Dense, opts ...Option) (*matrix.Dense, error) {
	return New(c, opts...).Multiply(ctx, a, b)
}
