// Package comm_test exercises the collective contract on the in-process
// transport: routing, barrier behavior and protocol-violation detection.
package comm_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/katalvlaran/scattermul/comm"
	"github.com/stretchr/testify/require"
)

// TestTopologyRole verifies that the role is derived from the rank once.
func TestTopologyRole(t *testing.T) {
	top, err := comm.NewTopology(3, 0)
	require.NoError(t, err)
	require.Equal(t, comm.Coordinator, top.Role())

	top, err = comm.NewTopology(3, 2)
	require.NoError(t, err)
	require.Equal(t, comm.Worker, top.Role())
	require.Equal(t, "worker", top.Role().String())

	_, err = comm.NewTopology(3, 3)
	require.ErrorIs(t, err, comm.ErrInvalidTopology)
	_, err = comm.NewTopology(0, 0)
	require.ErrorIs(t, err, comm.ErrInvalidTopology)

	_, err = comm.NewLocalWorld(0)
	require.ErrorIs(t, err, comm.ErrInvalidTopology)
}

// TestLocalWorldRoles checks that exactly rank 0 is the coordinator.
func TestLocalWorldRoles(t *testing.T) {
	world, err := comm.NewLocalWorld(4)
	require.NoError(t, err)
	for r, c := range world {
		require.Equal(t, comm.Topology{Size: 4, Rank: r}, c.Topology())
		if r == comm.Root {
			require.Equal(t, comm.Coordinator, c.Role())
		} else {
			require.Equal(t, comm.Worker, c.Role())
		}
	}
}

// TestBcast replicates a scalar and a buffer from several roots.
func TestBcast(t *testing.T) {
	for _, size := range []int{1, 2, 4} {
		for root := 0; root < size; root++ {
			t.Run(fmt.Sprintf("size=%d/root=%d", size, root), func(t *testing.T) {
				got := make([][]int, size)
				scalars := make([]int, size)
				errs := runWorld(t, size, func(ctx context.Context, c comm.Communicator) error {
					rank := c.Topology().Rank
					v, err := c.BcastInt(ctx, 100+rank, root) // only root's value survives
					if err != nil {
						return err
					}
					scalars[rank] = v

					buf := make([]int, 5)
					if rank == root {
						copy(buf, seqInts(10, 5))
					}
					if err = c.Bcast(ctx, buf, root); err != nil {
						return err
					}
					got[rank] = buf

					return c.Finalize(ctx)
				})
				requireAllOK(t, errs)
				for r := 0; r < size; r++ {
					require.Equal(t, 100+root, scalars[r], "rank %d", r)
					require.Equal(t, seqInts(10, 5), got[r], "rank %d", r)
				}
			})
		}
	}
}

// TestScatterGatherRoundTrip scatters a buffer and gathers it back unchanged.
func TestScatterGatherRoundTrip(t *testing.T) {
	for _, size := range []int{1, 2, 3, 5} {
		t.Run(fmt.Sprintf("size=%d", size), func(t *testing.T) {
			const count = 4
			full := seqInts(0, count*size)
			blocks := make([][]int, size)
			var gathered []int

			errs := runWorld(t, size, func(ctx context.Context, c comm.Communicator) error {
				rank := c.Topology().Rank
				var send []int
				if c.Role() == comm.Coordinator {
					send = full
				}
				block, err := c.Scatter(ctx, send, count, comm.Root)
				if err != nil {
					return err
				}
				blocks[rank] = block

				out, err := c.Gather(ctx, block, comm.Root)
				if err != nil {
					return err
				}
				if c.Role() == comm.Coordinator {
					gathered = out
				} else if out != nil {
					return errors.New("non-root rank received gather output")
				}

				return c.Finalize(ctx)
			})
			requireAllOK(t, errs)

			for r := 0; r < size; r++ {
				require.Equal(t, full[r*count:(r+1)*count], blocks[r], "block of rank %d", r)
			}
			require.Equal(t, full, gathered)
		})
	}
}

// TestScatterIgnoresTail checks that elements past Size*count stay on the root.
func TestScatterIgnoresTail(t *testing.T) {
	blocks := make([][]int, 2)
	errs := runWorld(t, 2, func(ctx context.Context, c comm.Communicator) error {
		var send []int
		if c.Role() == comm.Coordinator {
			send = seqInts(0, 5) // 2 ranks × 2 elements + 1 extra
		}
		block, err := c.Scatter(ctx, send, 2, comm.Root)
		blocks[c.Topology().Rank] = block

		return err
	})
	requireAllOK(t, errs)
	require.Equal(t, [][]int{{0, 1}, {2, 3}}, blocks)
}

// TestGatherToNonZeroRoot routes the gathered buffer to rank 2 through the hub.
func TestGatherToNonZeroRoot(t *testing.T) {
	var gathered []int
	errs := runWorld(t, 3, func(ctx context.Context, c comm.Communicator) error {
		rank := c.Topology().Rank
		out, err := c.Gather(ctx, []int{rank, rank * 10}, 2)
		if rank == 2 {
			gathered = out
		}

		return err
	})
	requireAllOK(t, errs)
	require.Equal(t, []int{0, 0, 1, 10, 2, 20}, gathered)
}

// TestNoSharedBuffers checks that no rank observes another rank's writes.
func TestNoSharedBuffers(t *testing.T) {
	src := seqInts(0, 4)
	var rootBlock []int
	var bcastBuf []int
	errs := runWorld(t, 2, func(ctx context.Context, c comm.Communicator) error {
		var send []int
		if c.Role() == comm.Coordinator {
			send = src
		}
		block, err := c.Scatter(ctx, send, 2, comm.Root)
		if err != nil {
			return err
		}
		buf := []int{7}
		if err = c.Bcast(ctx, buf, comm.Root); err != nil {
			return err
		}
		if c.Role() == comm.Coordinator {
			rootBlock = block
			bcastBuf = buf
			return nil
		}
		block[0] = -1 // a worker scribbling on its copy
		buf[0] = -1

		return nil
	})
	requireAllOK(t, errs)

	rootBlock[0] = 99 // root scribbling on its own block must not reach src
	require.Equal(t, seqInts(0, 4), src)
	require.Equal(t, []int{7}, bcastBuf)
}

// TestBarrierHoldsEveryRank checks that no rank leaves a barrier before all entered.
func TestBarrierHoldsEveryRank(t *testing.T) {
	const size = 4
	var (
		mu      sync.Mutex
		entered int
		early   bool
	)
	errs := runWorld(t, size, func(ctx context.Context, c comm.Communicator) error {
		mu.Lock()
		entered++
		mu.Unlock()
		if err := c.Barrier(ctx); err != nil {
			return err
		}
		mu.Lock()
		if entered != size {
			early = true
		}
		mu.Unlock()

		return nil
	})
	requireAllOK(t, errs)
	require.False(t, early, "a rank left the barrier before every rank entered")
}

// TestProtocolViolationOrder has rank 1 skip a collective.
func TestProtocolViolationOrder(t *testing.T) {
	errs := runWorld(t, 3, func(ctx context.Context, c comm.Communicator) error {
		if c.Topology().Rank == 1 {
			_, err := c.Gather(ctx, []int{1}, comm.Root) // others are broadcasting
			return err
		}
		_, err := c.BcastInt(ctx, 1, comm.Root)

		return err
	})
	require.ErrorIs(t, errs[0], comm.ErrProtocolViolation)
	for r := 1; r < 3; r++ {
		require.Error(t, errs[r], "rank %d", r)
		require.True(t, comm.IsFatal(errs[r]), "rank %d: %v", r, errs[r])
	}
}

// TestProtocolViolationLength has ranks disagree on a broadcast length.
func TestProtocolViolationLength(t *testing.T) {
	errs := runWorld(t, 2, func(ctx context.Context, c comm.Communicator) error {
		n := 4
		if c.Role() == comm.Worker {
			n = 3
		}

		return c.Bcast(ctx, make([]int, n), comm.Root)
	})
	require.ErrorIs(t, errs[0], comm.ErrProtocolViolation)
	require.ErrorIs(t, errs[1], comm.ErrAborted)
}

// TestProtocolViolationGatherCount has one rank contribute a longer block.
func TestProtocolViolationGatherCount(t *testing.T) {
	errs := runWorld(t, 3, func(ctx context.Context, c comm.Communicator) error {
		send := []int{1, 2}
		if c.Topology().Rank == 2 {
			send = []int{1, 2, 3}
		}
		_, err := c.Gather(ctx, send, comm.Root)

		return err
	})
	require.ErrorIs(t, errs[0], comm.ErrProtocolViolation)
	require.ErrorIs(t, errs[1], comm.ErrAborted)
	require.ErrorIs(t, errs[2], comm.ErrAborted)
}

// TestWorkerAbort tears the group down from a worker.
func TestWorkerAbort(t *testing.T) {
	cause := errors.New("disk on fire")
	errs := runWorld(t, 3, func(ctx context.Context, c comm.Communicator) error {
		if c.Topology().Rank == 2 {
			c.Abort(cause)
			return nil
		}

		return c.Barrier(ctx)
	})
	require.ErrorIs(t, errs[0], comm.ErrAborted)
	require.ErrorIs(t, errs[1], comm.ErrAborted)
	require.NoError(t, errs[2])
}

// TestAbortInterruptsCollective aborts a rank from a second goroutine while
// that rank is blocked waiting for a peer that never arrives.
func TestAbortInterruptsCollective(t *testing.T) {
	world, err := comm.NewLocalWorld(2)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	stop := errors.New("operator stop")
	go func() {
		time.Sleep(50 * time.Millisecond) // let rank 0 block in the barrier
		world[0].Abort(stop)
	}()

	err = world[0].Barrier(ctx) // rank 1 never enters
	require.ErrorIs(t, err, comm.ErrAborted)
	require.ErrorIs(t, err, stop) // the cause travels with the abort
	require.NoError(t, ctx.Err()) // returned on abort, not on the deadline

	err = world[1].Barrier(ctx)
	require.ErrorIs(t, err, comm.ErrAborted) // the hub is gone
}

// TestFinalizeCloses checks the sticky ErrClosed after a collective shutdown.
func TestFinalizeCloses(t *testing.T) {
	errs := runWorld(t, 2, func(ctx context.Context, c comm.Communicator) error {
		if err := c.Finalize(ctx); err != nil {
			return err
		}
		if err := c.Barrier(ctx); !errors.Is(err, comm.ErrClosed) {
			return fmt.Errorf("barrier after finalize: %v", err)
		}

		return nil
	})
	requireAllOK(t, errs)
}

// TestInvalidArguments covers root and count guards.
func TestInvalidArguments(t *testing.T) {
	errs := runWorld(t, 2, func(ctx context.Context, c comm.Communicator) error {
		_, err := c.BcastInt(ctx, 1, 5)
		return err
	})
	require.ErrorIs(t, errs[0], comm.ErrInvalidRoot)
	require.ErrorIs(t, errs[1], comm.ErrInvalidRoot)

	errs = runWorld(t, 2, func(ctx context.Context, c comm.Communicator) error {
		_, err := c.Scatter(ctx, []int{1, 2, 3}, 2, comm.Root) // root needs 4 elements
		return err
	})
	require.ErrorIs(t, errs[0], comm.ErrInvalidCount)
	require.ErrorIs(t, errs[1], comm.ErrAborted)
}

// TestContextCancel bounds a rank waiting on a peer that never arrives.
func TestContextCancel(t *testing.T) {
	world, err := comm.NewLocalWorld(2)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = world[0].Barrier(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
