package comm_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/katalvlaran/scattermul/comm"
	"github.com/stretchr/testify/require"
)

// testTimeout turns a deadlocked group into a failing test.
const testTimeout = 5 * time.Second

// rankFunc is the program one rank runs.
type rankFunc func(ctx context.Context, c comm.Communicator) error

// runWorld builds a local world of size ranks, runs fn on every rank in its
// own goroutine and returns the per-rank errors indexed by rank.
func runWorld(t *testing.T, size int, fn rankFunc) []error {
	t.Helper()
	world, err := comm.NewLocalWorld(size)
	require.NoError(t, err)

	return runComms(t, world, fn)
}

func runComms(t *testing.T, world []*comm.Comm, fn rankFunc) []error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	errs := make([]error, len(world))
	var wg sync.WaitGroup
	wg.Add(len(world))
	for r, c := range world {
		go func(r int, c *comm.Comm) {
			defer wg.Done()
			errs[r] = fn(ctx, c)
		}(r, c)
	}
	wg.Wait()
	require.NoError(t, ctx.Err(), "group did not finish before the deadline")

	return errs
}

// requireAllOK fails the test if any rank returned an error.
func requireAllOK(t *testing.T, errs []error) {
	t.Helper()
	for r, err := range errs {
		require.NoError(t, err, "rank %d", r)
	}
}

// seqInts returns [base, base+1, ..., base+n-1].
func seqInts(base, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = base + i
	}

	return out
}
