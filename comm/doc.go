// Package comm implements the collective operations a fixed group of ranks
// uses to cooperate: broadcast, scatter, gather, barrier and a collective
// shutdown.
//
// What & Why:
//
//	Ranks never share memory and never address each other directly. Rank 0
//	(Root) is the hub of a star: on every collective each other rank sends an
//	"enter" frame describing the call it is making, the hub waits until every
//	rank has entered, checks that all ranks are making the same call (same
//	operation, sequence number, root and element count) and only then routes
//	the payloads. Every collective is therefore a full barrier, and a rank
//	that calls collectives in a different order is reported as
//	ErrProtocolViolation instead of silently corrupting data.
//
// Transports:
//
//	NewLocalWorld connects ranks living in one process through unbuffered
//	channels; payloads are copied on every hop. Listen/Dial connect ranks
//	living in separate processes over websocket connections carrying JSON
//	frames. Both satisfy the same Communicator contract.
//
// Failure model:
//
//	Any error is fatal to the group. The hub aborts by closing every link;
//	ranks blocked in a collective then return ErrAborted. There are no
//	retries and no partial results. Blocking calls honour their context,
//	which is the only way to bound how long a rank waits on a stalled peer.
package comm
