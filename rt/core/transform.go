package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

var localForward = mgl32.Vec3{0, 0, 1}

// Transform is a rigid pose. Lights carry no scale: a light's extent lives
// in its range and cone angle, so inverting the pose is a transpose.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

func NewTransform() *Transform {
	return &Transform{Rotation: mgl32.QuatIdent()}
}

// NewLookTransform places the origin at position with local +Z along forward.
func NewLookTransform(position, forward mgl32.Vec3) *Transform {
	t := NewTransform()
	t.Position = position
	if forward.LenSqr() > 0 {
		t.Rotation = mgl32.QuatBetweenVectors(localForward, forward.Normalize())
	}
	return t
}

// Forward is local +Z in world space.
func (t *Transform) Forward() mgl32.Vec3 {
	return t.Rotation.Rotate(localForward)
}

func (t *Transform) ObjectToWorld() mgl32.Mat4 {
	// M = T * R
	m := t.Rotation.Mat4()
	m.SetCol(3, t.Position.Vec4(1))
	return m
}

func (t *Transform) WorldToObject() mgl32.Mat4 {
	// inv(M) = R^T * inv(T)
	inv := t.Rotation.Conjugate()
	m := inv.Mat4()
	m.SetCol(3, inv.Rotate(t.Position.Mul(-1)).Vec4(1))
	return m
}

// TransformPoint applies m to p with w=1.
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// TransformDirection applies m to d with w=0.
func TransformDirection(m mgl32.Mat4, d mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(d.Vec4(0)).Vec3()
}
