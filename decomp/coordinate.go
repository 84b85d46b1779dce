package decomp

import (
	"fmt"

	"github.com/notargets/pencil/topology"
)

// Interval is a uniform-grid coordinate range. The grid spacing is implied
// by the global cell count: delta = (Hi-Lo)/N.
type Interval struct {
	Lo, Hi float64
}

// Width returns Hi - Lo.
func (iv Interval) Width() float64 { return iv.Hi - iv.Lo }

// PartitionCoordinate slices a global vertex sequence down to this rank's
// piece along axis. coord holds globalN+1 vertex values (globalN cells);
// the returned slice covers this rank's cells plus both bounding vertices,
// so adjacent ranks share exactly one boundary vertex and the slices stitch
// back together seamlessly. The result is freshly allocated; coord is not
// retained.
func PartitionCoordinate(coord []float64, globalN int, tp *topology.Topology, axis topology.Axis) ([]float64, error) {
	if len(coord) != globalN+1 {
		return nil, fmt.Errorf("partition coordinate on %s: sequence has %d vertices, want %d",
			axis, len(coord), globalN+1)
	}
	nl, err := LocalSizes(globalN, tp, axis)
	if err != nil {
		return nil, err
	}
	r := tp.AxisCoord(axis)
	start := offset(nl, r)
	end := start + nl[r]
	if tp.IsLast(axis) {
		end = globalN
	}
	local := make([]float64, end-start+1)
	copy(local, coord[start:end+1])
	return local, nil
}

// PartitionInterval slices a uniform coordinate range down to this rank's
// sub-interval along axis. The global range is walked left to right,
// advancing by delta times each rank's extent, so the sub-intervals tile
// [Lo, Hi] with no gap or overlap and each width is exactly delta*nl[r].
func PartitionInterval(iv Interval, globalN int, tp *topology.Topology, axis topology.Axis) (Interval, error) {
	nl, err := LocalSizes(globalN, tp, axis)
	if err != nil {
		return Interval{}, err
	}
	delta := iv.Width() / float64(globalN)
	lo := iv.Lo
	for _, n := range nl[:tp.AxisCoord(axis)] {
		lo += delta * float64(n)
	}
	return Interval{Lo: lo, Hi: lo + delta*float64(nl[tp.AxisCoord(axis)])}, nil
}

// AssembleCoordinate reconstructs the global vertex sequence from the local
// slices produced by PartitionCoordinate. Canonical ranks scatter their
// slice, minus its trailing shared vertex, into a zeroed globalN+1 buffer
// at their block offset; the canonical rank at the high end of axis also
// writes the final vertex. One sum-reduction then delivers the identical
// full sequence to every rank. For slices produced by PartitionCoordinate
// under the same topology the round trip is exact, element for element.
func AssembleCoordinate(local []float64, globalN int, tp *topology.Topology, axis topology.Axis) ([]float64, error) {
	nl, err := LocalSizes(globalN, tp, axis)
	if err != nil {
		return nil, err
	}
	r := tp.AxisCoord(axis)
	if want := nl[r] + 1; len(local) != want {
		return nil, fmt.Errorf("assemble coordinate on %s: local sequence has %d vertices, want %d",
			axis, len(local), want)
	}
	global := make([]float64, globalN+1)
	if tp.IsCanonical(axis) {
		copy(global[offset(nl, r):], local[:len(local)-1])
		if tp.IsLast(axis) {
			global[globalN] = local[len(local)-1]
		}
	}
	if err := tp.Comm.AllReduceFloat64(global); err != nil {
		return nil, fmt.Errorf("assemble coordinate on %s: %w", axis, err)
	}
	return global, nil
}

// AssembleInterval recovers the global coordinate range from this rank's
// sub-interval. Only the rank at the global low corner contributes Lo and
// only the canonical rank at the high end of axis contributes Hi; a single
// two-element reduction yields the identical (Lo, Hi) pair everywhere.
func AssembleInterval(local Interval, tp *topology.Topology, axis topology.Axis) (Interval, error) {
	buf := make([]float64, 2)
	if tp.IsLowCorner() {
		buf[0] = local.Lo
	}
	if tp.IsHighCorner(axis) {
		buf[1] = local.Hi
	}
	if err := tp.Comm.AllReduceFloat64(buf); err != nil {
		return Interval{}, fmt.Errorf("assemble interval on %s: %w", axis, err)
	}
	return Interval{Lo: buf[0], Hi: buf[1]}, nil
}
