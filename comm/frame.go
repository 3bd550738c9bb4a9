// SPDX-License-Identifier: MIT

package comm

import (
	"context"
	"fmt"
)

// opcode names a collective (or a control message) on the wire.
type opcode uint8

const (
	opHello opcode = iota + 1
	opBcast
	opScatter
	opGather
	opBarrier
	opFinalize
)

// String implements fmt.Stringer.
func (o opcode) String() string {
	switch o {
	case opHello:
		return "hello"
	case opBcast:
		return "bcast"
	case opScatter:
		return "scatter"
	case opGather:
		return "gather"
	case opBarrier:
		return "barrier"
	case opFinalize:
		return "finalize"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// frame is the single message type exchanged between a rank and the hub.
// A rank sends an enter frame describing its call; the hub answers with the
// routed payload for that rank under the same Op and Seq.
type frame struct {
	Op    opcode `json:"op"`
	Seq   uint64 `json:"seq"`
	Rank  int    `json:"rank"`
	Root  int    `json:"root"`
	Count int    `json:"count"`
	Data  []int  `json:"data,omitempty"`
}

// clone returns a copy of f whose Data does not alias the original.
func (f *frame) clone() *frame {
	out := *f
	if f.Data != nil {
		out.Data = make([]int, len(f.Data))
		copy(out.Data, f.Data)
	}

	return &out
}

// matches reports whether f describes the same call as want.
func (f *frame) matches(want *frame) bool {
	return f.Op == want.Op && f.Seq == want.Seq && f.Root == want.Root && f.Count == want.Count
}

func (f *frame) describe() string {
	return fmt.Sprintf("%s#%d(root=%d, count=%d)", f.Op, f.Seq, f.Root, f.Count)
}

// link is one bidirectional connection between the hub and a rank.
// Implementations copy payloads so that the two ends never share memory.
type link interface {
	send(ctx context.Context, f *frame) error
	recv(ctx context.Context) (*frame, error)
	// close tears the link down; cause is reported to the peer when the
	// transport can carry it. Safe to call more than once.
	close(cause error) error
}
