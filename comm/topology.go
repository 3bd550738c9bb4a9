// SPDX-License-Identifier: MIT

package comm

import "fmt"

// Root is the rank of the coordinator. It is also the hub through which every
// collective frame is routed.
const Root = 0

// Role distinguishes the coordinator from the other ranks. It is assigned
// once from the Topology and carried by the Communicator.
type Role int

const (
	// Worker is every rank other than Root.
	Worker Role = iota
	// Coordinator is the rank that owns the full operands and the result.
	Coordinator
)

// String implements fmt.Stringer.
func (r Role) String() string {
	switch r {
	case Coordinator:
		return "coordinator"
	case Worker:
		return "worker"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Topology is the immutable shape of the group as seen by one rank.
type Topology struct {
	Size int // number of ranks, >= 1
	Rank int // this rank, in [0, Size)
}

// NewTopology validates size and rank.
func NewTopology(size, rank int) (Topology, error) {
	if size < 1 || rank < 0 || rank >= size {
		return Topology{}, fmt.Errorf("NewTopology(size=%d, rank=%d): %w", size, rank, ErrInvalidTopology)
	}

	return Topology{Size: size, Rank: rank}, nil
}

// Role returns Coordinator for Root and Worker otherwise.
func (t Topology) Role() Role {
	if t.Rank == Root {
		return Coordinator
	}

	return Worker
}

func (t Topology) validRoot(root int) bool {
	return root >= 0 && root < t.Size
}
