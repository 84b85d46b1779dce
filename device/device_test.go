package device

import (
	"testing"

	"github.com/notargets/pencil/decomp"
	"github.com/notargets/pencil/topology"
	"github.com/stretchr/testify/assert"
)

func TestMirrorRoundTrip(t *testing.T) {
	dev := CreateTestDevice()
	defer dev.Free()

	host := []float64{1, 2, 3, 4, 5}
	m, err := NewMirror(dev, host)
	if err != nil {
		t.Fatalf("NewMirror: %v", err)
	}
	defer m.Free()

	// Scribble over the host copy, then restore it from the device.
	for i := range host {
		host[i] = -1
	}
	m.Download()
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, host)

	host[0] = 99
	m.Upload()
	host[0] = 0
	m.Download()
	assert.Equal(t, 99.0, host[0])
}

func TestMirrorEmptyBuffer(t *testing.T) {
	dev := CreateTestDevice()
	defer dev.Free()

	if _, err := NewMirror(dev, nil); err == nil {
		t.Fatal("empty buffer accepted")
	}
}

func TestPartitionAssemble3DSingleProcess(t *testing.T) {
	dev := CreateTestDevice()
	defer dev.Free()

	nx, ny, nz := 4, 3, 2
	tp := topology.SingleProcess([3]int{nx, ny, nz})

	global := decomp.NewBlock3D(nx, ny, nz)
	for i := range global.Data {
		global.Data[i] = float64(i) * 0.5
	}
	gm, err := NewMirror(dev, global.Data)
	if err != nil {
		t.Fatalf("NewMirror: %v", err)
	}
	defer gm.Free()

	lm, local, err := Partition3D(dev, gm, nx, ny, nz, tp)
	if err != nil {
		t.Fatalf("Partition3D: %v", err)
	}
	defer lm.Free()
	assert.InDeltaSlicef(t, global.Data, local.Data, 0, "single-process partition")

	am, back, err := Assemble3D(dev, lm, nx, ny, nz, nx, ny, nz, tp)
	if err != nil {
		t.Fatalf("Assemble3D: %v", err)
	}
	defer am.Free()
	assert.InDeltaSlicef(t, global.Data, back.Data, 0, "single-process assemble")
}

func TestPartitionAssemble2DSingleProcess(t *testing.T) {
	dev := CreateTestDevice()
	defer dev.Free()

	nx, ny := 5, 4
	tp := topology.SingleProcess([3]int{nx, ny, 1})

	host := make([]float64, nx*ny)
	for i := range host {
		host[i] = float64(i)
	}
	gm, err := NewMirror(dev, host)
	if err != nil {
		t.Fatalf("NewMirror: %v", err)
	}
	defer gm.Free()

	lm, local, err := Partition2D(dev, gm, nx, ny, tp)
	if err != nil {
		t.Fatalf("Partition2D: %v", err)
	}
	defer lm.Free()
	rows, cols := local.Dims()
	if rows != nx || cols != ny {
		t.Fatalf("local shape (%d,%d), want (%d,%d)", rows, cols, nx, ny)
	}

	am, back, err := Assemble2D(dev, lm, nx, ny, nx, ny, tp)
	if err != nil {
		t.Fatalf("Assemble2D: %v", err)
	}
	defer am.Free()
	assert.InDeltaSlicef(t, host, back.RawMatrix().Data, 0, "round trip")
}

func TestDeviceSizeMismatch(t *testing.T) {
	dev := CreateTestDevice()
	defer dev.Free()

	tp := topology.SingleProcess([3]int{2, 2, 2})
	m, err := NewMirror(dev, make([]float64, 7))
	if err != nil {
		t.Fatalf("NewMirror: %v", err)
	}
	defer m.Free()

	if _, _, err := Partition3D(dev, m, 2, 2, 2, tp); err == nil {
		t.Fatal("mirror length 7 accepted for a 2x2x2 global")
	}
}
