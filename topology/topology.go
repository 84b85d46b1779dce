// Package topology describes the 3-axis Cartesian process grid a structured
// simulation runs on. A Topology is built once, before any grid work, and is
// immutable for the run; every decomposition call receives it explicitly
// together with its communicator handle.
package topology

import (
	"fmt"

	"github.com/notargets/pencil/comm"
)

// Axis identifies one axis of the process grid.
type Axis int

const (
	X Axis = iota
	Y
	Z
)

func (a Axis) String() string {
	switch a {
	case X:
		return "x"
	case Y:
		return "y"
	case Z:
		return "z"
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

// Topology is one rank's view of the process grid: the per-axis rank counts
// (shared by all ranks), this rank's coordinate within the grid, this rank's
// externally supplied local block extents, and the communicator used for
// collectives. The communicator is carried here explicitly and never
// retrieved from ambient state.
type Topology struct {
	// Shape holds the rank count along each axis. The product must equal
	// the communicator size.
	Shape [3]int

	// Coord is this rank's 0-based coordinate, 0 <= Coord[a] < Shape[a].
	// Ranks are laid out x-fastest: rank = cx + Shape[X]*(cy + Shape[Y]*cz).
	Coord [3]int

	// Extents holds this rank's local block size along each axis. Extents
	// are supplied by the caller at construction; this package never
	// computes a distribution itself.
	Extents [3]int

	// Comm is the collective-communication handle for the grid.
	Comm comm.Communicator
}

// New builds this rank's Topology over c. The coordinate is derived from
// c.Rank() by x-fastest linearization. extents are this rank's local block
// sizes; they are stored verbatim.
func New(c comm.Communicator, shape, extents [3]int) (*Topology, error) {
	total := 1
	for a, n := range shape {
		if n < 1 {
			return nil, fmt.Errorf("topology: shape[%s] = %d, must be >= 1", Axis(a), n)
		}
		total *= n
	}
	if total != c.Size() {
		return nil, fmt.Errorf("topology: shape %v spans %d ranks, communicator has %d",
			shape, total, c.Size())
	}
	for a, n := range extents {
		if n < 0 {
			return nil, fmt.Errorf("topology: extents[%s] = %d, must be >= 0", Axis(a), n)
		}
	}
	r := c.Rank()
	tp := &Topology{
		Shape:   shape,
		Extents: extents,
		Comm:    c,
	}
	tp.Coord[X] = r % shape[X]
	tp.Coord[Y] = (r / shape[X]) % shape[Y]
	tp.Coord[Z] = r / (shape[X] * shape[Y])
	return tp, nil
}

// SingleProcess returns the trivial 1x1x1 topology over the self
// communicator. All collectives on it are identity operations.
func SingleProcess(extents [3]int) *Topology {
	return &Topology{
		Shape:   [3]int{1, 1, 1},
		Extents: extents,
		Comm:    comm.Self(),
	}
}

// NumRanks returns the total rank count of the grid.
func (tp *Topology) NumRanks() int {
	return tp.Shape[X] * tp.Shape[Y] * tp.Shape[Z]
}

// IsSingle reports whether the grid consists of exactly one rank.
func (tp *Topology) IsSingle() bool {
	return tp.NumRanks() == 1
}

// RankCount returns the number of ranks along axis.
func (tp *Topology) RankCount(axis Axis) int { return tp.Shape[axis] }

// AxisCoord returns this rank's coordinate along axis.
func (tp *Topology) AxisCoord(axis Axis) int { return tp.Coord[axis] }

// Extent returns this rank's local block size along axis.
func (tp *Topology) Extent(axis Axis) int { return tp.Extents[axis] }

// IsLast reports whether this rank occupies the final slot along axis.
func (tp *Topology) IsLast(axis Axis) bool {
	return tp.Coord[axis] == tp.Shape[axis]-1
}

// IsCanonical reports whether this rank is the designated writer for slots
// along axis: coordinate 0 on both of the other axes. Exactly one rank per
// slot of axis satisfies this, which is what keeps the zero-fill-then-sum
// reductions exact.
func (tp *Topology) IsCanonical(axis Axis) bool {
	switch axis {
	case X:
		return tp.Coord[Y] == 0 && tp.Coord[Z] == 0
	case Y:
		return tp.Coord[X] == 0 && tp.Coord[Z] == 0
	default:
		return tp.Coord[X] == 0 && tp.Coord[Y] == 0
	}
}

// IsLowCorner reports whether this rank sits at the global low corner of the
// grid, coordinate 0 on every axis.
func (tp *Topology) IsLowCorner() bool {
	return tp.Coord[X] == 0 && tp.Coord[Y] == 0 && tp.Coord[Z] == 0
}

// IsHighCorner reports whether this rank is the canonical rank at the high
// end of axis: last along axis, coordinate 0 on the other two.
func (tp *Topology) IsHighCorner(axis Axis) bool {
	return tp.IsLast(axis) && tp.IsCanonical(axis)
}

// BalancedExtents splits globalN points over ranks as evenly as possible,
// spreading the remainder over the leading ranks. This is the conventional
// static supplier for Topology extents; it performs no communication.
func BalancedExtents(globalN, ranks int) []int {
	base := globalN / ranks
	rem := globalN % ranks
	ext := make([]int, ranks)
	for i := range ext {
		ext[i] = base
		if i < rem {
			ext[i]++
		}
	}
	return ext
}

// NewBalanced builds a Topology whose extents come from BalancedExtents of
// the per-axis global sizes.
func NewBalanced(c comm.Communicator, shape, global [3]int) (*Topology, error) {
	tp, err := New(c, shape, [3]int{})
	if err != nil {
		return nil, err
	}
	for a := X; a <= Z; a++ {
		tp.Extents[a] = BalancedExtents(global[a], shape[a])[tp.Coord[a]]
	}
	return tp, nil
}
