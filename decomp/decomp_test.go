package decomp

import (
	"sync"
	"testing"

	"github.com/notargets/pencil/comm"
	"github.com/notargets/pencil/topology"
)

// forEachRank drives one goroutine per rank of an in-process group and fails
// the test on the first per-rank error.
func forEachRank(t *testing.T, n int, body func(c comm.Communicator) error) {
	t.Helper()
	comms := comm.NewGroup(n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i, c := range comms {
		wg.Add(1)
		go func(i int, c comm.Communicator) {
			defer wg.Done()
			errs[i] = body(c)
		}(i, c)
	}
	wg.Wait()
	for r, err := range errs {
		if err != nil {
			t.Fatalf("rank %d: %v", r, err)
		}
	}
}

// gridTopology builds rank c's topology for the given shape with balanced
// extents of the global sizes.
func gridTopology(c comm.Communicator, shape, global [3]int) (*topology.Topology, error) {
	return topology.NewBalanced(c, shape, global)
}

// ramp returns the vertex sequence 0, 1, ..., n.
func ramp(n int) []float64 {
	seq := make([]float64, n+1)
	for i := range seq {
		seq[i] = float64(i)
	}
	return seq
}
