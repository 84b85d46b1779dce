// Package comm provides the collective-communication primitives used by the
// decomposition routines: elementwise sum-reduction-to-all and barrier.
//
// Two implementations exist. Self is the single-process identity, where every
// collective is a no-op. NewGroup builds an in-process SPMD group, one
// communicator per rank, intended for one goroutine per rank; its collectives
// are real blocking rendezvous over shared memory.
//
// All collectives are blocking and must be invoked by every rank of a
// communicator, in the same order at every call site. There is no timeout: a
// rank that never arrives stalls the whole group.
package comm

// Communicator is the capability handle threaded through every decomposition
// call. Summation is the only reduction operator; the rest of the system
// relies on the canonical-writer pattern, where at most one rank contributes
// a nonzero value per slot, so the sum is bit-exact regardless of
// combination order.
type Communicator interface {
	// Rank returns this process's index, 0 <= Rank() < Size().
	Rank() int

	// Size returns the number of ranks in the communicator.
	Size() int

	// AllReduceFloat64 replaces buf with the elementwise sum of every
	// rank's buf. All ranks receive the identical result. Buffers must
	// have the same length on every rank.
	AllReduceFloat64(buf []float64) error

	// AllReduceInt is AllReduceFloat64 for integer buffers.
	AllReduceInt(buf []int) error

	// Barrier blocks until every rank in the communicator has reached it.
	Barrier() error
}

// Self returns the single-process communicator. Its reductions return the
// buffer unchanged and its barrier returns immediately; no communication of
// any kind is performed.
func Self() Communicator {
	return selfComm{}
}

type selfComm struct{}

func (selfComm) Rank() int                          { return 0 }
func (selfComm) Size() int                          { return 1 }
func (selfComm) AllReduceFloat64(_ []float64) error { return nil }
func (selfComm) AllReduceInt(_ []int) error         { return nil }
func (selfComm) Barrier() error                     { return nil }
