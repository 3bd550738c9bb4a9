// SPDX-License-Identifier: MIT

package comm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Communicator is the collective surface every rank programs against.
// All methods except Topology, Role and Abort are collective: every rank of
// the group must call the same method, in the same order, with an agreeing
// root and element count.
type Communicator interface {
	// Topology returns the group size and this rank.
	Topology() Topology

	// Role returns the role derived from the topology at construction.
	Role() Role

	// Bcast replicates root's buf into buf on every rank. len(buf) must be
	// the same on every rank.
	Bcast(ctx context.Context, buf []int, root int) error

	// BcastInt broadcasts a single value from root and returns it.
	BcastInt(ctx context.Context, v int, root int) (int, error)

	// Scatter splits root's send into Size contiguous blocks of count
	// elements and returns block Rank. send is ignored on non-root ranks.
	Scatter(ctx context.Context, send []int, count int, root int) ([]int, error)

	// Gather concatenates every rank's send, in rank order, on root.
	// Non-root ranks receive nil.
	Gather(ctx context.Context, send []int, root int) ([]int, error)

	// Barrier returns once every rank has entered it.
	Barrier(ctx context.Context) error

	// Finalize is a collective shutdown: once every rank has entered it the
	// links are released. Further calls return ErrClosed.
	Finalize(ctx context.Context) error

	// Abort tears the group down without coordination. It may be called from
	// any goroutine, including while this rank is blocked in a collective.
	// Ranks blocked in a collective return ErrAborted; later calls on this
	// rank return an error matching both ErrAborted and cause.
	Abort(cause error)
}

// Option configures a communicator.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for per-collective debug records.
// A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func gatherOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// Comm is the Communicator implementation shared by all transports.
// On Root it holds one link per other rank (links[0] is unused); on every
// other rank it holds the single link to the hub.
type Comm struct {
	topo  Topology
	role  Role
	links []link // hub only, indexed by rank
	hub   link   // non-root only
	log   *slog.Logger

	mu  sync.Mutex // serializes collectives on this rank
	seq uint64     // sequence number of the next collective; guarded by mu

	state  sync.Mutex // guards err and closed; never held across a blocking call
	err    error      // sticky failure; once set every call returns it
	closed bool
}

var _ Communicator = (*Comm)(nil)

func newHub(topo Topology, links []link, o options) *Comm {
	return &Comm{
		topo:  topo,
		role:  topo.Role(),
		links: links,
		log:   o.logger.With("rank", topo.Rank, "role", topo.Role()),
	}
}

func newSpoke(topo Topology, hub link, o options) *Comm {
	return &Comm{
		topo: topo,
		role: topo.Role(),
		hub:  hub,
		log:  o.logger.With("rank", topo.Rank, "role", topo.Role()),
	}
}

// Topology implements Communicator.
func (c *Comm) Topology() Topology { return c.topo }

// Role implements Communicator.
func (c *Comm) Role() Role { return c.role }

// Bcast implements Communicator.
func (c *Comm) Bcast(ctx context.Context, buf []int, root int) error {
	var data []int
	if c.topo.Rank == root {
		data = buf
	}
	out, err := c.collective(ctx, opBcast, root, len(buf), data)
	if err != nil {
		return err
	}
	copy(buf, out)

	return nil
}

// BcastInt implements Communicator.
func (c *Comm) BcastInt(ctx context.Context, v int, root int) (int, error) {
	buf := []int{v}
	if err := c.Bcast(ctx, buf, root); err != nil {
		return 0, err
	}

	return buf[0], nil
}

// Scatter implements Communicator.
func (c *Comm) Scatter(ctx context.Context, send []int, count int, root int) ([]int, error) {
	if count < 0 {
		err := fmt.Errorf("Scatter(count=%d): %w", count, ErrInvalidCount)
		c.Abort(err)

		return nil, err
	}
	var data []int
	if c.topo.Rank == root && c.topo.validRoot(root) {
		if len(send) < count*c.topo.Size {
			err := fmt.Errorf("Scatter: root buffer has %d elements, need %d: %w",
				len(send), count*c.topo.Size, ErrInvalidCount)
			c.Abort(err)

			return nil, err
		}
		data = send[:count*c.topo.Size] // elements beyond Size*count are never sent
	}

	return c.collective(ctx, opScatter, root, count, data)
}

// Gather implements Communicator.
func (c *Comm) Gather(ctx context.Context, send []int, root int) ([]int, error) {
	out, err := c.collective(ctx, opGather, root, len(send), send)
	if err != nil {
		return nil, err
	}
	if c.topo.Rank != root {
		return nil, nil
	}

	return out, nil
}

// Barrier implements Communicator.
func (c *Comm) Barrier(ctx context.Context) error {
	_, err := c.collective(ctx, opBarrier, Root, 0, nil)

	return err
}

// Finalize implements Communicator.
func (c *Comm) Finalize(ctx context.Context) error {
	if _, err := c.collective(ctx, opFinalize, Root, 0, nil); err != nil {
		return err
	}

	c.state.Lock()
	defer c.state.Unlock()
	if !c.closed { // an Abort racing the last reply keeps its cause
		c.closed = true
		c.err = ErrClosed
		c.closeLinks(nil)
	}

	return nil
}

// Abort implements Communicator. It may be called from any goroutine: it does
// not wait for a collective in progress on this rank, it closes the links that
// collective is blocked on.
func (c *Comm) Abort(cause error) {
	if cause != nil && !errors.Is(cause, ErrAborted) {
		cause = fmt.Errorf("%w: %w", ErrAborted, cause)
	}
	c.fail(cause)
}

// fail records cause as the sticky error and releases every link.
func (c *Comm) fail(cause error) {
	c.state.Lock()
	defer c.state.Unlock()
	if c.closed {
		return
	}
	if cause == nil {
		cause = ErrAborted
	}
	c.closed = true
	c.err = cause
	c.closeLinks(cause)
	c.log.Debug("communicator aborted", "cause", cause)
}

// sticky returns the recorded failure, if any.
func (c *Comm) sticky() error {
	c.state.Lock()
	defer c.state.Unlock()

	return c.err
}

// closeLinks releases every link. The caller holds c.state.
func (c *Comm) closeLinks(cause error) {
	if c.hub != nil {
		_ = c.hub.close(cause)
	}
	for _, l := range c.links {
		if l != nil {
			_ = l.close(cause)
		}
	}
}

// collective runs one collective call on this rank.
// Stage 1 (Validate): communicator open, root in range.
// Stage 2 (Execute): hub routes, other ranks enter and wait for their reply.
// Stage 3 (Finalize): any failure aborts the group and becomes sticky.
func (c *Comm) collective(ctx context.Context, op opcode, root, count int, data []int) ([]int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.sticky(); err != nil {
		return nil, err
	}
	if !c.topo.validRoot(root) {
		err := fmt.Errorf("%s(root=%d, size=%d): %w", op, root, c.topo.Size, ErrInvalidRoot)
		c.fail(err) // peers are already waiting on this call

		return nil, err
	}

	call := &frame{Op: op, Seq: c.seq, Rank: c.topo.Rank, Root: root, Count: count, Data: data}
	c.seq++
	c.log.Debug("collective enter", "call", call.describe())

	var (
		out []int
		err error
	)
	if c.role == Coordinator {
		out, err = c.route(ctx, call)
	} else {
		out, err = c.enter(ctx, call)
	}
	if err != nil {
		c.fail(err)
		if cause := c.sticky(); cause != err && errors.Is(err, ErrClosed) {
			// an Abort from another goroutine closed the links under us
			return nil, fmt.Errorf("%s: %w", call.describe(), cause)
		}

		return nil, err
	}
	c.log.Debug("collective done", "call", call.describe())

	return out, nil
}

// enter is the non-hub side: announce the call, wait for the routed reply.
func (c *Comm) enter(ctx context.Context, call *frame) ([]int, error) {
	if err := c.hub.send(ctx, call); err != nil {
		return nil, fmt.Errorf("%s: send to coordinator: %w", call.describe(), err)
	}
	reply, err := c.hub.recv(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: wait for coordinator: %w", call.describe(), err)
	}
	if !reply.matches(call) {
		return nil, fmt.Errorf("%w: rank %d is in %s, coordinator answered %s",
			ErrProtocolViolation, c.topo.Rank, call.describe(), reply.describe())
	}

	return reply.Data, nil
}

// route is the hub side. It collects one enter frame per rank, in rank
// order, checks every frame against its own call and distributes replies.
func (c *Comm) route(ctx context.Context, call *frame) ([]int, error) {
	size := c.topo.Size
	contrib := make([][]int, size)
	contrib[Root] = call.Data

	for r := 1; r < size; r++ {
		f, err := c.links[r].recv(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: wait for rank %d: %w", call.describe(), r, err)
		}
		if f.Rank != r || !f.matches(call) {
			return nil, fmt.Errorf("%w: rank %d entered %s, coordinator is in %s",
				ErrProtocolViolation, r, f.describe(), call.describe())
		}
		contrib[r] = f.Data
	}

	replies, err := plan(call, contrib)
	if err != nil {
		return nil, err
	}

	for r := 1; r < size; r++ {
		reply := &frame{Op: call.Op, Seq: call.Seq, Rank: r, Root: call.Root, Count: call.Count, Data: replies[r]}
		if err = c.links[r].send(ctx, reply); err != nil {
			return nil, fmt.Errorf("%s: reply to rank %d: %w", call.describe(), r, err)
		}
	}

	if replies[Root] == nil {
		return nil, nil
	}
	out := make([]int, len(replies[Root])) // never hand back a view of the caller's send buffer
	copy(out, replies[Root])

	return out, nil
}

// plan computes the per-rank replies of one collective from the per-rank
// contributions. It runs on the hub only.
func plan(call *frame, contrib [][]int) ([][]int, error) {
	size := len(contrib)
	replies := make([][]int, size)
	root, count := call.Root, call.Count

	switch call.Op {
	case opBcast:
		src := contrib[root]
		if len(src) != count {
			return nil, fmt.Errorf("%w: bcast root %d sent %d elements, group expects %d",
				ErrProtocolViolation, root, len(src), count)
		}
		for r := range replies {
			replies[r] = src
		}

	case opScatter:
		src := contrib[root]
		if len(src) != count*size {
			return nil, fmt.Errorf("%w: scatter root %d sent %d elements, group expects %d",
				ErrProtocolViolation, root, len(src), count*size)
		}
		for r := range replies {
			replies[r] = src[r*count : (r+1)*count]
		}

	case opGather:
		full := make([]int, 0, count*size)
		for r, part := range contrib {
			if len(part) != count {
				return nil, fmt.Errorf("%w: gather rank %d sent %d elements, group expects %d",
					ErrProtocolViolation, r, len(part), count)
			}
			full = append(full, part...)
		}
		replies[root] = full

	case opBarrier, opFinalize:
		// no payload

	default:
		return nil, fmt.Errorf("%w: unknown operation %s", ErrProtocolViolation, call.Op)
	}

	return replies, nil
}

// abortedf wraps a transport-level reason as ErrAborted.
func abortedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAborted, fmt.Sprintf(format, args...))
}

// IsFatal reports whether err came from the collective layer, which always
// means the whole group is gone.
func IsFatal(err error) bool {
	return errors.Is(err, ErrProtocolViolation) || errors.Is(err, ErrAborted) || errors.Is(err, ErrClosed)
}
