// SPDX-License-Identifier: MIT

package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"cogentcore.org/core/base/randx"
	"github.com/katalvlaran/scattermul/comm"
	"github.com/katalvlaran/scattermul/distmul"
	"github.com/katalvlaran/scattermul/matrix"
	"github.com/katalvlaran/scattermul/partition"
	"github.com/muesli/termenv"
	"golang.org/x/sync/errgroup"
)

// Option configures Run, RunLocal and Execute.
type Option func(*options)

type options struct {
	out      io.Writer
	logger   *slog.Logger
	rng      randx.Rand
	seed     int64
	maxValue int
	term     []termenv.OutputOption
}

// WithOutput sets where the coordinator prints matrices (default os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.out = w
		}
	}
}

// WithLogger sets the logger handed down to distmul and comm.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSeed seeds the generator; 0 means a time-based seed.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// WithRand supplies the generator directly, overriding WithSeed.
func WithRand(r randx.Rand) Option {
	return func(o *options) { o.rng = r }
}

// WithMaxValue sets the exclusive upper bound of generated entries.
func WithMaxValue(n int) Option {
	return func(o *options) { o.maxValue = n }
}

// WithColorProfile forces the terminal profile of the printed headers.
func WithColorProfile(p termenv.Profile) Option {
	return func(o *options) { o.term = append(o.term, termenv.WithProfile(p)) }
}

// Options converts the file/flag settings into Run options.
func (c Config) Options() []Option {
	return []Option{WithSeed(c.Seed), WithMaxValue(c.MaxValue)}
}

func gatherOptions(opts []Option) options {
	o := options{out: os.Stdout, logger: slog.Default(), maxValue: DefaultMaxValue}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		seed := o.seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		o.rng = randx.NewSysRand(seed)
	}

	return o
}

// Run is the program of one rank. Every rank calls it with the same args.
//
// Stage 1: parse the dimensions and check the row partition. Both depend only
// on args and the group size, so every rank reaches the same verdict; on
// failure the coordinator reports it and every rank finalizes cleanly.
// Stage 2: the coordinator generates and prints A and B.
// Stage 3: distributed multiply; the coordinator prints C.
// Stage 4: Finalize.
func Run(ctx context.Context, c comm.Communicator, args []string, opts ...Option) error {
	o := gatherOptions(opts)
	topo := c.Topology()
	log := o.logger.With("rank", topo.Rank, "role", c.Role())
	isCoord := c.Role() == comm.Coordinator

	// Stage 1: uniform early exits
	dims, err := ParseDims(args)
	if err == nil {
		_, err = partition.New(dims.RowsA, topo.Size)
	}
	if err != nil {
		if isCoord {
			if errors.Is(err, ErrUsage) {
				fmt.Fprintln(o.out, Usage)
			}
			log.Error("not starting", "err", err)
		}
		if ferr := c.Finalize(ctx); ferr != nil {
			return errors.Join(err, ferr)
		}

		return err
	}

	// Stage 2: operands exist on the coordinator only
	var a, b *matrix.Dense
	p := NewPrinter(o.out, o.term...)
	if isCoord {
		if a, b, err = generateOperands(dims, o); err == nil {
			err = errors.Join(p.Print("Matrix A", a), p.Print("Matrix B", b))
		}
		if err != nil {
			c.Abort(err)
			return err
		}
	}

	// Stage 3
	log.Debug("multiply", "rows_a", dims.RowsA, "cols_a", dims.ColsA, "cols_b", dims.ColsB, "size", topo.Size)
	result, err := distmul.Multiply(ctx, c, a, b, distmul.WithLogger(o.logger))
	if err != nil {
		c.Abort(err)
		return err
	}
	if isCoord {
		if err = p.Print("Result Matrix C", result); err != nil {
			c.Abort(err)
			return err
		}
	}

	// Stage 4
	return c.Finalize(ctx)
}

func generateOperands(d distmul.Dims, o options) (a, b *matrix.Dense, err error) {
	if a, err = Generate(d.RowsA, d.ColsA, o.rng, o.maxValue); err != nil {
		return nil, nil, err
	}
	if b, err = Generate(d.ColsA, d.ColsB, o.rng, o.maxValue); err != nil {
		return nil, nil, err
	}

	return a, b, nil
}

// RunLocal runs np ranks of Run concurrently in this process over a local
// world and returns the first rank error.
func RunLocal(ctx context.Context, np int, args []string, opts ...Option) error {
	o := gatherOptions(opts)
	world, err := comm.NewLocalWorld(np, comm.WithLogger(o.logger))
	if err != nil {
		return err
	}

	// no shared cancel: a failing rank aborts its peers through comm
	var g errgroup.Group
	for _, c := range world {
		g.Go(func() error {
			return Run(ctx, c, args, opts...)
		})
	}

	return g.Wait()
}

// Execute runs this process's share of the group described by cfg: the
// whole group in-process, the networked coordinator, or one networked worker.
func Execute(ctx context.Context, cfg Config, args []string, opts ...Option) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	opts = append(cfg.Options(), opts...)
	o := gatherOptions(opts)
	copts := []comm.Option{comm.WithLogger(o.logger)}

	var (
		c   *comm.Comm
		err error
	)
	switch {
	case cfg.Listen != "":
		ln, lerr := comm.Listen(cfg.Listen, cfg.Size, copts...)
		if lerr != nil {
			return lerr
		}
		o.logger.Info("waiting for ranks", "url", ln.URL(), "size", cfg.Size)
		c, err = ln.Accept(ctx)
	case cfg.Coordinator != "":
		c, err = comm.Dial(ctx, cfg.Coordinator, cfg.Rank, cfg.Size, copts...)
	default:
		return RunLocal(ctx, cfg.NP, args, opts...)
	}
	if err != nil {
		return err
	}

	return Run(ctx, c, args, opts...)
}
