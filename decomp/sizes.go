// Package decomp maps coordinate sequences and field arrays between their
// global representation and the local block owned by one rank of a 3-axis
// process grid. Arrays are decomposed pencil-style: the x and y axes are
// partitioned across ranks, the z axis is always kept whole.
//
// Every operation here follows the same canonical-writer pattern: each rank
// prepares a zero-filled global-shaped buffer, only the designated ranks
// write their contribution into it, and a single sum-reduction-to-all
// recovers the complete value on every rank. Because at most one rank
// contributes to each slot, the reduced result is bit-exact regardless of
// the reduction's internal combination order. The pattern keeps every call
// site symmetric across ranks, so no ordering of point-to-point messages
// can deadlock.
package decomp

import (
	"fmt"

	"github.com/notargets/pencil/topology"
)

// LocalSizes returns the per-rank local extents along axis, in rank order:
// a vector of length tp.RankCount(axis) whose entries sum to globalN. Each
// slot is filled by the canonical rank for that coordinate (coordinate 0 on
// the two other axes) from its own Topology extent, then one integer
// sum-reduction distributes the full vector to every rank.
//
// The reduced vector is checked against globalN: extents that do not tile
// the axis, or a topology whose canonical-writer invariant is broken, yield
// an error on every rank rather than a silently corrupted size vector.
func LocalSizes(globalN int, tp *topology.Topology, axis topology.Axis) ([]int, error) {
	nl := make([]int, tp.RankCount(axis))
	if tp.IsCanonical(axis) {
		nl[tp.AxisCoord(axis)] = tp.Extent(axis)
	}
	if err := tp.Comm.AllReduceInt(nl); err != nil {
		return nil, fmt.Errorf("local sizes on %s: %w", axis, err)
	}
	sum := 0
	for _, n := range nl {
		sum += n
	}
	if sum != globalN {
		return nil, fmt.Errorf("local sizes on %s: extents %v sum to %d, global size is %d",
			axis, nl, sum, globalN)
	}
	return nl, nil
}

// offset returns the number of points owned by ranks before slot r, i.e.
// the global index where slot r's block begins.
func offset(nl []int, r int) int {
	start := 0
	for _, n := range nl[:r] {
		start += n
	}
	return start
}
