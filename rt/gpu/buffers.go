package gpu

import (
	"fmt"

	"github.com/gekko3d/fplus/rt/core"
)

type managedBuffer struct {
	buf      Buffer
	capacity int // elements
	stride   int // bytes per element
}

// BufferManager owns the persistent buffers bound to global properties.
// Capacities are powers of two and only grow, so steady-state frames reuse
// the same allocations.
type BufferManager struct {
	Device  Device
	Globals *Globals

	buffers map[PropertyID]*managedBuffer
}

func NewBufferManager(device Device, globals *Globals) *BufferManager {
	if globals == nil {
		globals = NewGlobals()
	}
	return &BufferManager{
		Device:  device,
		Globals: globals,
		buffers: make(map[PropertyID]*managedBuffer),
	}
}

// Upload writes count elements of stride bytes to the buffer bound to id,
// reallocating it when count exceeds its capacity. It reports whether a new
// buffer was created.
func (m *BufferManager) Upload(id PropertyID, data []byte, count, stride int) (bool, error) {
	if count < 0 || stride <= 0 {
		panic(fmt.Sprintf("gpu: invalid upload of %d x %d bytes to %s", count, stride, id))
	}
	if len(data) > count*stride {
		return false, fmt.Errorf("upload %s: %d bytes exceed %d elements of %d bytes", id, len(data), count, stride)
	}

	mb := m.buffers[id]
	grew := false
	if mb == nil || count > mb.capacity || stride != mb.stride {
		capacity := core.CeilPow2(max(count, 1))
		if mb != nil {
			if stride == mb.stride {
				capacity = max(capacity, mb.capacity)
			}
			mb.buf.Release()
		}
		buf, err := m.Device.CreateBuffer(id.String(), uint64(capacity*stride))
		if err != nil {
			delete(m.buffers, id)
			return false, err
		}
		mb = &managedBuffer{buf: buf, capacity: capacity, stride: stride}
		m.buffers[id] = mb
		m.Globals.SetBuffer(id, buf)
		grew = true
	}

	if len(data) > 0 {
		if err := m.Device.WriteBuffer(mb.buf, 0, data); err != nil {
			return grew, fmt.Errorf("upload %s: %w", id, err)
		}
	}
	return grew, nil
}

// Capacity returns the element capacity of the buffer bound to id.
func (m *BufferManager) Capacity(id PropertyID) int {
	if mb := m.buffers[id]; mb != nil {
		return mb.capacity
	}
	return 0
}

func (m *BufferManager) Buffer(id PropertyID) Buffer {
	if mb := m.buffers[id]; mb != nil {
		return mb.buf
	}
	return nil
}

func (m *BufferManager) Release() {
	for id, mb := range m.buffers {
		mb.buf.Release()
		delete(m.buffers, id)
	}
}
