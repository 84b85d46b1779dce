package decomp

import "fmt"

// Field is a read-only view of a 3-D scalar field on a structured grid.
// Implementations may be materialized buffers (Block3D) or procedural
// definitions evaluated lazily per point (FieldFunc).
type Field interface {
	// Dims returns the point counts along x, y, z.
	Dims() (nx, ny, nz int)

	// At returns the value at point (i, j, k), 0-based.
	At(i, j, k int) float64
}

// Block3D is a materialized 3-D field stored flat in row-major order with x
// slowest and z fastest: Data[(i*Ny+j)*Nz+k].
type Block3D struct {
	Nx, Ny, Nz int
	Data       []float64
}

// NewBlock3D allocates a zeroed block of the given shape.
func NewBlock3D(nx, ny, nz int) *Block3D {
	return &Block3D{Nx: nx, Ny: ny, Nz: nz, Data: make([]float64, nx*ny*nz)}
}

// Dims returns the block shape.
func (b *Block3D) Dims() (nx, ny, nz int) { return b.Nx, b.Ny, b.Nz }

// At returns the value at (i, j, k).
func (b *Block3D) At(i, j, k int) float64 {
	return b.Data[(i*b.Ny+j)*b.Nz+k]
}

// Set stores v at (i, j, k).
func (b *Block3D) Set(i, j, k int, v float64) {
	b.Data[(i*b.Ny+j)*b.Nz+k] = v
}

// Materialize evaluates f into a freshly allocated block.
func Materialize(f Field) *Block3D {
	nx, ny, nz := f.Dims()
	b := NewBlock3D(nx, ny, nz)
	idx := 0
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				b.Data[idx] = f.At(i, j, k)
				idx++
			}
		}
	}
	return b
}

// FieldFunc is a procedurally defined field: values come from F on demand
// and are never stored. Partitioning passes a FieldFunc through unchanged on
// a single-process topology, and evaluates only the local block on a
// distributed one.
type FieldFunc struct {
	Nx, Ny, Nz int
	F          func(i, j, k int) float64
}

// Dims returns the declared field shape.
func (f FieldFunc) Dims() (nx, ny, nz int) { return f.Nx, f.Ny, f.Nz }

// At evaluates the field at (i, j, k).
func (f FieldFunc) At(i, j, k int) float64 { return f.F(i, j, k) }

func checkDims(f Field, nx, ny, nz int, what string) error {
	fx, fy, fz := f.Dims()
	if fx != nx || fy != ny || fz != nz {
		return fmt.Errorf("%s: field shape (%d,%d,%d) does not match global size (%d,%d,%d)",
			what, fx, fy, fz, nx, ny, nz)
	}
	return nil
}
