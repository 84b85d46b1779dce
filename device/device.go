// Package device relocates decomposition data between host memory and OCCA
// device memory. The decomp package itself works on host-addressable
// buffers; the wrappers here implement the "move to host, slice, move back"
// boundary that global array partitioning needs when field data lives on an
// accelerator. With the Serial backend, OCCA memory is host memory and the
// copies degenerate to plain memcpy, which is the identity-placement case.
package device

import (
	"fmt"
	"unsafe"

	"github.com/notargets/gocca"
)

// CreateTestDevice creates a Device for testing, preferring parallel backends
func CreateTestDevice() *gocca.OCCADevice {
	backends := []string{
		`{"mode": "OpenMP"}`,
		`{"mode": "CUDA", "device_id": 0}`,
		`{"mode": "Serial"}`,
	}

	for _, props := range backends {
		device, err := gocca.NewDevice(props)
		if err == nil {
			return device
		}
	}

	// Serial should always be available
	panic("Failed to create any Device")
}

// Mirror pairs a host float64 buffer with a device allocation of the same
// length. The host slice is the one handed in at construction; Upload and
// Download move values across the boundary without reallocating either side.
type Mirror struct {
	host []float64
	mem  *gocca.OCCAMemory
}

// NewMirror allocates device memory for host and uploads its current
// contents. The caller owns the host slice; Free releases only the device
// side.
func NewMirror(dev *gocca.OCCADevice, host []float64) (*Mirror, error) {
	if len(host) == 0 {
		return nil, fmt.Errorf("device: cannot mirror an empty buffer")
	}
	mem := dev.Malloc(int64(len(host)*8), unsafe.Pointer(&host[0]), nil)
	if mem == nil {
		return nil, fmt.Errorf("device: malloc of %d bytes failed", len(host)*8)
	}
	return &Mirror{host: host, mem: mem}, nil
}

// Host returns the host-side buffer.
func (m *Mirror) Host() []float64 { return m.host }

// Len returns the element count.
func (m *Mirror) Len() int { return len(m.host) }

// Upload copies the host buffer to the device.
func (m *Mirror) Upload() {
	m.mem.CopyFrom(unsafe.Pointer(&m.host[0]), int64(len(m.host)*8))
}

// Download copies the device buffer back to the host.
func (m *Mirror) Download() {
	m.mem.CopyTo(unsafe.Pointer(&m.host[0]), int64(len(m.host)*8))
}

// Free releases the device allocation. The Mirror must not be used after.
func (m *Mirror) Free() {
	if m.mem != nil {
		m.mem.Free()
		m.mem = nil
	}
}
