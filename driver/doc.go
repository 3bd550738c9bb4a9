// Package driver is the per-rank program around distmul: it parses the three
// dimension arguments, generates and prints the operands on the coordinator,
// runs the distributed multiply and prints the result.
//
// Only the coordinator generates or prints; workers take part in the
// collectives and nothing else. Every rank, on every path including a usage
// error, ends with a Finalize so no peer is left waiting on a collective.
//
// Run drives one rank over any comm.Communicator. RunLocal launches a whole
// in-process group, and Execute picks in-process or networked mode from a
// Config.
package driver
