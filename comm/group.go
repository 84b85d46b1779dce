package comm

import (
	"fmt"
	"sync"
)

// opKind tags the collective being executed so the group can detect ranks
// that disagree about which collective a call site is.
type opKind int

const (
	opNone opKind = iota
	opSumFloat64
	opSumInt
	opBarrier
)

func (k opKind) String() string {
	switch k {
	case opSumFloat64:
		return "AllReduceFloat64"
	case opSumInt:
		return "AllReduceInt"
	case opBarrier:
		return "Barrier"
	}
	return "none"
}

// group holds the shared state for one in-process communicator. Collectives
// rendezvous on a phased barrier: ranks accumulate into the shared buffer as
// they arrive, the last arrival advances the phase, and every rank copies the
// reduced result back out before the next collective may begin.
type group struct {
	mu   sync.Mutex
	cond *sync.Cond
	size int

	arrived int
	leaving int
	phase   uint64

	kind opKind
	n    int
	accF []float64
	accI []int

	// Set by any rank that detects a mismatched call; poisons the
	// collective for everyone so no rank consumes a partial sum.
	fail error
}

// member is one rank's handle onto a group.
type member struct {
	g    *group
	rank int
}

// NewGroup creates an in-process SPMD group of n ranks and returns one
// Communicator per rank, indexed by rank. Each returned communicator is
// intended to be driven by its own goroutine; the collectives block until
// all n ranks arrive.
func NewGroup(n int) []Communicator {
	if n < 1 {
		panic(fmt.Sprintf("comm: group size %d < 1", n))
	}
	g := &group{size: n}
	g.cond = sync.NewCond(&g.mu)
	members := make([]Communicator, n)
	for i := range members {
		members[i] = &member{g: g, rank: i}
	}
	return members
}

func (m *member) Rank() int { return m.rank }
func (m *member) Size() int { return m.g.size }

func (m *member) AllReduceFloat64(buf []float64) error {
	return m.g.collective(opSumFloat64, len(buf),
		func(g *group) {
			if g.accF == nil {
				g.accF = make([]float64, len(buf))
			}
			for i, v := range buf {
				g.accF[i] += v
			}
		},
		func(g *group) {
			copy(buf, g.accF)
		})
}

func (m *member) AllReduceInt(buf []int) error {
	return m.g.collective(opSumInt, len(buf),
		func(g *group) {
			if g.accI == nil {
				g.accI = make([]int, len(buf))
			}
			for i, v := range buf {
				g.accI[i] += v
			}
		},
		func(g *group) {
			copy(buf, g.accI)
		})
}

func (m *member) Barrier() error {
	return m.g.collective(opBarrier, 0, func(*group) {}, func(*group) {})
}

// collective runs one blocking rendezvous. accumulate folds the caller's
// buffer into the shared accumulator; extract copies the reduced result back
// out. Both run under the group lock. The first arrival of a phase fixes the
// op kind and buffer length; later arrivals that disagree poison the phase
// and every participant gets the same error, so a mismatched call site is
// reported instead of silently corrupting sums.
func (g *group) collective(kind opKind, n int, accumulate, extract func(*group)) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	// Wait for the previous collective to fully drain.
	for g.leaving > 0 {
		g.cond.Wait()
	}

	if g.arrived == 0 {
		g.kind = kind
		g.n = n
		g.accF = nil
		g.accI = nil
		g.fail = nil
	} else if kind != g.kind || n != g.n {
		g.fail = fmt.Errorf("comm: mismatched collective: %s(len %d) vs %s(len %d)",
			kind, n, g.kind, g.n)
	}
	if g.fail == nil {
		accumulate(g)
	}

	g.arrived++
	if g.arrived == g.size {
		g.arrived = 0
		g.leaving = g.size
		g.phase++
		g.cond.Broadcast()
	} else {
		ph := g.phase
		for g.phase == ph {
			g.cond.Wait()
		}
	}

	err := g.fail
	if err == nil {
		extract(g)
	}
	g.leaving--
	if g.leaving == 0 {
		g.cond.Broadcast()
	}
	return err
}
