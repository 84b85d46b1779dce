package device

import (
	"fmt"

	"github.com/notargets/gocca"
	"github.com/notargets/pencil/decomp"
	"github.com/notargets/pencil/topology"
	"gonum.org/v1/gonum/mat"
)

// Relocating wrappers around the decomp array routines for fields resident
// in device memory: download the source, partition or assemble on the host,
// mirror the result back onto the device. The caller keeps ownership of the
// input mirror; the returned mirror is freshly allocated.

// Partition3D downloads a device-resident global block, slices out this
// rank's local block, and uploads the local block to the same device.
func Partition3D(dev *gocca.OCCADevice, global *Mirror, nx, ny, nz int, tp *topology.Topology) (*Mirror, *decomp.Block3D, error) {
	if global.Len() != nx*ny*nz {
		return nil, nil, fmt.Errorf("device partition 3-D: mirror holds %d values, global size is %d",
			global.Len(), nx*ny*nz)
	}
	global.Download()
	gb := &decomp.Block3D{Nx: nx, Ny: ny, Nz: nz, Data: global.Host()}
	local, err := decomp.PartitionArray3D(gb, nx, ny, nz, tp)
	if err != nil {
		return nil, nil, err
	}
	lb, ok := local.(*decomp.Block3D)
	if !ok {
		lb = decomp.Materialize(local)
	}
	m, err := NewMirror(dev, lb.Data)
	if err != nil {
		return nil, nil, err
	}
	return m, lb, nil
}

// Assemble3D downloads a device-resident local block, reconstructs the
// global block collectively, and uploads the result to the same device.
func Assemble3D(dev *gocca.OCCADevice, local *Mirror, lnx, lny, lnz, nx, ny, nz int, tp *topology.Topology) (*Mirror, *decomp.Block3D, error) {
	if local.Len() != lnx*lny*lnz {
		return nil, nil, fmt.Errorf("device assemble 3-D: mirror holds %d values, local block is %d",
			local.Len(), lnx*lny*lnz)
	}
	local.Download()
	lb := &decomp.Block3D{Nx: lnx, Ny: lny, Nz: lnz, Data: local.Host()}
	global, err := decomp.AssembleArray3D(lb, nx, ny, nz, tp)
	if err != nil {
		return nil, nil, err
	}
	m, err := NewMirror(dev, global.Data)
	if err != nil {
		return nil, nil, err
	}
	return m, global, nil
}

// Partition2D is Partition3D for matrices.
func Partition2D(dev *gocca.OCCADevice, global *Mirror, nx, ny int, tp *topology.Topology) (*Mirror, *mat.Dense, error) {
	if global.Len() != nx*ny {
		return nil, nil, fmt.Errorf("device partition 2-D: mirror holds %d values, global size is %d",
			global.Len(), nx*ny)
	}
	global.Download()
	gm := mat.NewDense(nx, ny, global.Host())
	local, err := decomp.PartitionArray2D(gm, nx, ny, tp)
	if err != nil {
		return nil, nil, err
	}
	m, err := NewMirror(dev, local.RawMatrix().Data)
	if err != nil {
		return nil, nil, err
	}
	return m, local, nil
}

// Assemble2D is Assemble3D for matrices.
func Assemble2D(dev *gocca.OCCADevice, local *Mirror, lnx, lny, nx, ny int, tp *topology.Topology) (*Mirror, *mat.Dense, error) {
	if local.Len() != lnx*lny {
		return nil, nil, fmt.Errorf("device assemble 2-D: mirror holds %d values, local block is %d",
			local.Len(), lnx*lny)
	}
	local.Download()
	lm := mat.NewDense(lnx, lny, local.Host())
	global, err := decomp.AssembleArray2D(lm, nx, ny, tp)
	if err != nil {
		return nil, nil, err
	}
	m, err := NewMirror(dev, global.RawMatrix().Data)
	if err != nil {
		return nil, nil, err
	}
	return m, global, nil
}
