package gpu

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Globals holds the global shader parameters published each frame.
type Globals struct {
	mu      sync.RWMutex
	values  map[PropertyID]any
	buffers map[PropertyID]Buffer
}

func NewGlobals() *Globals {
	return &Globals{
		values:  make(map[PropertyID]any),
		buffers: make(map[PropertyID]Buffer),
	}
}

func (g *Globals) set(id PropertyID, v any) {
	g.mu.Lock()
	g.values[id] = v
	g.mu.Unlock()
}

func (g *Globals) SetInt(id PropertyID, v int32)         { g.set(id, v) }
func (g *Globals) SetFloat(id PropertyID, v float32)     { g.set(id, v) }
func (g *Globals) SetVector(id PropertyID, v mgl32.Vec4) { g.set(id, v) }
func (g *Globals) SetMatrix(id PropertyID, v mgl32.Mat4) { g.set(id, v) }

func (g *Globals) SetBuffer(id PropertyID, b Buffer) {
	g.mu.Lock()
	g.buffers[id] = b
	g.mu.Unlock()
}

func (g *Globals) get(id PropertyID) (any, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.values[id]
	return v, ok
}

func (g *Globals) Int(id PropertyID) (int32, bool) {
	v, ok := g.get(id)
	i, ok2 := v.(int32)
	return i, ok && ok2
}

func (g *Globals) Float(id PropertyID) (float32, bool) {
	v, ok := g.get(id)
	f, ok2 := v.(float32)
	return f, ok && ok2
}

func (g *Globals) Vector(id PropertyID) (mgl32.Vec4, bool) {
	v, ok := g.get(id)
	vec, ok2 := v.(mgl32.Vec4)
	return vec, ok && ok2
}

func (g *Globals) Matrix(id PropertyID) (mgl32.Mat4, bool) {
	v, ok := g.get(id)
	m, ok2 := v.(mgl32.Mat4)
	return m, ok && ok2
}

func (g *Globals) Buffer(id PropertyID) (Buffer, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	b, ok := g.buffers[id]
	return b, ok
}
