package distmul_test

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/katalvlaran/scattermul/comm"
	"github.com/katalvlaran/scattermul/matrix"
	"github.com/stretchr/testify/require"
)

const testTimeout = 5 * time.Second

// runRanks runs fn on every rank of a fresh local world and returns the
// per-rank errors indexed by rank.
func runRanks(t *testing.T, size int, fn func(ctx context.Context, c comm.Communicator) error) []error {
	t.Helper()
	world, err := comm.NewLocalWorld(size)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	errs := make([]error, size)
	var wg sync.WaitGroup
	for r, c := range world {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[r] = fn(ctx, c)
		}()
	}
	wg.Wait()
	require.NoError(t, ctx.Err(), "group deadlocked")

	return errs
}

func requireAllOK(t *testing.T, errs []error) {
	t.Helper()
	for r, err := range errs {
		require.NoError(t, err, "rank %d", r)
	}
}

// dense builds a matrix from literal rows.
func dense(t testing.TB, rows [][]int) *matrix.Dense {
	t.Helper()
	flat := make([]int, 0, len(rows)*len(rows[0]))
	for _, r := range rows {
		flat = append(flat, r...)
	}
	m, err := matrix.NewDenseFrom(len(rows), len(rows[0]), flat)
	require.NoError(t, err)

	return m
}

// randDense fills an r×c matrix with values in [0,9].
func randDense(t testing.TB, r, c int, rng *rand.Rand) *matrix.Dense {
	t.Helper()
	vals := make([]int, r*c)
	for i := range vals {
		vals[i] = rng.Intn(10)
	}
	m, err := matrix.NewDenseFrom(r, c, vals)
	require.NoError(t, err)

	return m
}
