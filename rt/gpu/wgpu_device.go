package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// WGPUDevice uploads into wgpu storage buffers.
type WGPUDevice struct {
	device *wgpu.Device
	queue  *wgpu.Queue
}

func NewWGPUDevice(device *wgpu.Device) *WGPUDevice {
	return &WGPUDevice{device: device, queue: device.GetQueue()}
}

// NewHeadlessWGPUDevice requests an adapter without a surface.
func NewHeadlessWGPUDevice() (*WGPUDevice, error) {
	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Forward+ Light Device",
	})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	return NewWGPUDevice(device), nil
}

type wgpuBuffer struct {
	label string
	size  uint64
	buf   *wgpu.Buffer
}

func (b *wgpuBuffer) Label() string { return b.label }
func (b *wgpuBuffer) Size() uint64  { return b.size }
func (b *wgpuBuffer) Release()      { b.buf.Release() }

func (d *WGPUDevice) CreateBuffer(label string, size uint64) (Buffer, error) {
	// wgpu requires 4-byte aligned sizes
	if size%4 != 0 {
		size += 4 - size%4
	}
	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             size,
		Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("create buffer %q: %w", label, err)
	}
	return &wgpuBuffer{label: label, size: size, buf: buf}, nil
}

func (d *WGPUDevice) WriteBuffer(b Buffer, offset uint64, data []byte) error {
	wb, ok := b.(*wgpuBuffer)
	if !ok {
		return fmt.Errorf("wgpu device: foreign buffer %T", b)
	}
	if len(data) == 0 {
		return nil
	}
	return d.queue.WriteBuffer(wb.buf, offset, data)
}

func (d *WGPUDevice) Release() {
	d.device.Release()
}
