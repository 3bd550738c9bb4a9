// SPDX-License-Identifier: MIT

package comm

import (
	"context"
	"fmt"
	"sync"
)

// NewLocalWorld creates size communicators, one per rank, connected through
// unbuffered channels. The returned slice is indexed by rank; each element is
// meant to be driven by its own goroutine, exactly as if it were a separate
// process. Frames are copied on every hop, so ranks never share a buffer.
func NewLocalWorld(size int, opts ...Option) ([]*Comm, error) {
	if size < 1 {
		return nil, fmt.Errorf("NewLocalWorld(%d): %w", size, ErrInvalidTopology)
	}
	o := gatherOptions(opts)

	world := make([]*Comm, size)
	hubLinks := make([]link, size)
	for r := 1; r < size; r++ {
		hubSide, rankSide := newChanPair()
		hubLinks[r] = hubSide
		world[r] = newSpoke(Topology{Size: size, Rank: r}, rankSide, o)
	}
	world[Root] = newHub(Topology{Size: size, Rank: Root}, hubLinks, o)

	return world, nil
}

// chanLink is one end of an in-process link.
type chanLink struct {
	in       <-chan *frame
	out      chan<- *frame
	done     chan struct{} // closed when this end closes
	peerDone chan struct{} // closed when the other end closes
	once     sync.Once
}

// newChanPair returns the two connected ends of a link.
func newChanPair() (a, b *chanLink) {
	ab := make(chan *frame) // a → b
	ba := make(chan *frame) // b → a
	aDone := make(chan struct{})
	bDone := make(chan struct{})

	a = &chanLink{in: ba, out: ab, done: aDone, peerDone: bDone}
	b = &chanLink{in: ab, out: ba, done: bDone, peerDone: aDone}

	return a, b
}

func (l *chanLink) send(ctx context.Context, f *frame) error {
	f = f.clone() // the receiver gets its own copy
	select {
	case l.out <- f:
		return nil
	case <-l.done:
		return ErrClosed
	case <-l.peerDone:
		return abortedf("peer closed the link")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *chanLink) recv(ctx context.Context) (*frame, error) {
	select {
	case f := <-l.in:
		return f, nil
	case <-l.done:
		return nil, ErrClosed
	case <-l.peerDone:
		return nil, abortedf("peer closed the link")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *chanLink) close(error) error {
	l.once.Do(func() { close(l.done) })

	return nil
}
