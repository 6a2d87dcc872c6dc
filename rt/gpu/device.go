package gpu

import (
	"fmt"
	"sync"
)

// Device creates and fills persistent GPU buffers.
type Device interface {
	CreateBuffer(label string, size uint64) (Buffer, error)
	WriteBuffer(b Buffer, offset uint64, data []byte) error
}

type Buffer interface {
	Label() string
	Size() uint64
	Release()
}

// HostDevice keeps buffers in memory. It backs tests and headless runs
// without a GPU adapter.
type HostDevice struct {
	mu      sync.Mutex
	created int
	live    int
}

func NewHostDevice() *HostDevice { return &HostDevice{} }

type HostBuffer struct {
	label    string
	data     []byte
	released bool
	dev      *HostDevice
}

func (d *HostDevice) CreateBuffer(label string, size uint64) (Buffer, error) {
	d.mu.Lock()
	d.created++
	d.live++
	d.mu.Unlock()
	return &HostBuffer{label: label, data: make([]byte, size), dev: d}, nil
}

func (d *HostDevice) WriteBuffer(b Buffer, offset uint64, data []byte) error {
	hb, ok := b.(*HostBuffer)
	if !ok {
		return fmt.Errorf("host device: foreign buffer %T", b)
	}
	if hb.released {
		return fmt.Errorf("host device: write to released buffer %q", hb.label)
	}
	if offset+uint64(len(data)) > uint64(len(hb.data)) {
		return fmt.Errorf("host device: write of %d bytes at %d overflows %q (%d bytes)", len(data), offset, hb.label, len(hb.data))
	}
	copy(hb.data[offset:], data)
	return nil
}

// Created returns how many buffers were ever created.
func (d *HostDevice) Created() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.created
}

// Live returns how many created buffers are not yet released.
func (d *HostDevice) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live
}

func (b *HostBuffer) Label() string { return b.label }
func (b *HostBuffer) Size() uint64  { return uint64(len(b.data)) }

// Bytes exposes the buffer contents.
func (b *HostBuffer) Bytes() []byte { return b.data }

func (b *HostBuffer) Release() {
	if b.released {
		return
	}
	b.released = true
	b.dev.mu.Lock()
	b.dev.live--
	b.dev.mu.Unlock()
}
