package decomp

import (
	"fmt"

	"github.com/notargets/pencil/topology"
	"gonum.org/v1/gonum/mat"
)

// Array routines decompose field data over the x and y process axes only;
// the z axis is never split. A topology with more than one rank along z is
// rejected up front rather than silently mis-sliced.

func checkNoZSplit(tp *topology.Topology, what string) error {
	if tp.RankCount(topology.Z) > 1 {
		return fmt.Errorf("%s: %d ranks along z, arrays are only partitioned along x and y",
			what, tp.RankCount(topology.Z))
	}
	return nil
}

// blockRange returns this rank's owned index range [start, end) along axis.
func blockRange(globalN int, tp *topology.Topology, axis topology.Axis) (start, end int, err error) {
	nl, err := LocalSizes(globalN, tp, axis)
	if err != nil {
		return 0, 0, err
	}
	r := tp.AxisCoord(axis)
	start = offset(nl, r)
	return start, start + nl[r], nil
}

// PartitionArray2D slices a global (nx, ny) matrix down to this rank's
// block, rows partitioned along the x process axis and columns along y. On
// a single-process topology the input is returned unchanged. The returned
// matrix is freshly allocated and does not alias global.
func PartitionArray2D(global *mat.Dense, nx, ny int, tp *topology.Topology) (*mat.Dense, error) {
	rows, cols := global.Dims()
	if rows != nx || cols != ny {
		return nil, fmt.Errorf("partition 2-D array: matrix is (%d,%d), global size is (%d,%d)",
			rows, cols, nx, ny)
	}
	if tp.IsSingle() {
		return global, nil
	}
	if err := checkNoZSplit(tp, "partition 2-D array"); err != nil {
		return nil, err
	}
	i0, i1, err := blockRange(nx, tp, topology.X)
	if err != nil {
		return nil, err
	}
	j0, j1, err := blockRange(ny, tp, topology.Y)
	if err != nil {
		return nil, err
	}
	return mat.DenseCopyOf(global.Slice(i0, i1, j0, j1)), nil
}

// AssembleArray2D reconstructs the global (nx, ny) matrix from the local
// blocks produced by PartitionArray2D. Each rank writes its block into a
// zeroed global-shaped matrix at its offset and one sum-reduction over the
// backing buffer recovers the full matrix on every rank.
func AssembleArray2D(local *mat.Dense, nx, ny int, tp *topology.Topology) (*mat.Dense, error) {
	if tp.IsSingle() {
		rows, cols := local.Dims()
		if rows != nx || cols != ny {
			return nil, fmt.Errorf("assemble 2-D array: matrix is (%d,%d), global size is (%d,%d)",
				rows, cols, nx, ny)
		}
		return local, nil
	}
	if err := checkNoZSplit(tp, "assemble 2-D array"); err != nil {
		return nil, err
	}
	i0, i1, err := blockRange(nx, tp, topology.X)
	if err != nil {
		return nil, err
	}
	j0, j1, err := blockRange(ny, tp, topology.Y)
	if err != nil {
		return nil, err
	}
	rows, cols := local.Dims()
	if rows != i1-i0 || cols != j1-j0 {
		return nil, fmt.Errorf("assemble 2-D array: local block is (%d,%d), owned block is (%d,%d)",
			rows, cols, i1-i0, j1-j0)
	}
	global := mat.NewDense(nx, ny, nil)
	global.Slice(i0, i1, j0, j1).(*mat.Dense).Copy(local)
	if err := tp.Comm.AllReduceFloat64(global.RawMatrix().Data); err != nil {
		return nil, fmt.Errorf("assemble 2-D array: %w", err)
	}
	return global, nil
}

// PartitionArray3D slices a global (nx, ny, nz) field down to this rank's
// block: x and y partitioned, the full z extent kept on every rank. On a
// single-process topology the field is returned unchanged, so a procedural
// FieldFunc passes through without being materialized. On a distributed
// topology the local block is materialized by evaluating the field point by
// point, which for a FieldFunc touches only the points this rank owns.
func PartitionArray3D(global Field, nx, ny, nz int, tp *topology.Topology) (Field, error) {
	if err := checkDims(global, nx, ny, nz, "partition 3-D array"); err != nil {
		return nil, err
	}
	if tp.IsSingle() {
		return global, nil
	}
	if err := checkNoZSplit(tp, "partition 3-D array"); err != nil {
		return nil, err
	}
	i0, i1, err := blockRange(nx, tp, topology.X)
	if err != nil {
		return nil, err
	}
	j0, j1, err := blockRange(ny, tp, topology.Y)
	if err != nil {
		return nil, err
	}
	local := NewBlock3D(i1-i0, j1-j0, nz)
	idx := 0
	for i := i0; i < i1; i++ {
		for j := j0; j < j1; j++ {
			for k := 0; k < nz; k++ {
				local.Data[idx] = global.At(i, j, k)
				idx++
			}
		}
	}
	return local, nil
}

// AssembleArray3D reconstructs the global (nx, ny, nz) field from the local
// blocks produced by PartitionArray3D, via one sum-reduction over the flat
// global buffer. Round-tripping a block through partition then assemble
// reproduces the original field exactly.
func AssembleArray3D(local *Block3D, nx, ny, nz int, tp *topology.Topology) (*Block3D, error) {
	if tp.IsSingle() {
		if err := checkDims(local, nx, ny, nz, "assemble 3-D array"); err != nil {
			return nil, err
		}
		return local, nil
	}
	if err := checkNoZSplit(tp, "assemble 3-D array"); err != nil {
		return nil, err
	}
	i0, i1, err := blockRange(nx, tp, topology.X)
	if err != nil {
		return nil, err
	}
	j0, j1, err := blockRange(ny, tp, topology.Y)
	if err != nil {
		return nil, err
	}
	if local.Nx != i1-i0 || local.Ny != j1-j0 || local.Nz != nz {
		return nil, fmt.Errorf("assemble 3-D array: local block is (%d,%d,%d), owned block is (%d,%d,%d)",
			local.Nx, local.Ny, local.Nz, i1-i0, j1-j0, nz)
	}
	global := NewBlock3D(nx, ny, nz)
	idx := 0
	for i := i0; i < i1; i++ {
		for j := j0; j < j1; j++ {
			for k := 0; k < nz; k++ {
				global.Set(i, j, k, local.Data[idx])
				idx++
			}
		}
	}
	if err := tp.Comm.AllReduceFloat64(global.Data); err != nil {
		return nil, fmt.Errorf("assemble 3-D array: %w", err)
	}
	return global, nil
}
