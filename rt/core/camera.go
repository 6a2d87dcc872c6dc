package core

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrInvalidCamera = errors.New("invalid camera")

// Camera is the per-frame camera snapshot. View space follows mgl32.LookAtV:
// the camera looks down -Z, so view depth is -z.
type Camera struct {
	Position      mgl32.Vec3
	Forward       mgl32.Vec3
	Up            mgl32.Vec3
	FieldOfView   float32 // vertical, degrees
	NearClipPlane float32
	FarClipPlane  float32
	PixelWidth    int
	PixelHeight   int
}

func NewCamera(width, height int) *Camera {
	return &Camera{
		Position:      mgl32.Vec3{0, 0, 0},
		Forward:       mgl32.Vec3{0, 0, 1},
		Up:            mgl32.Vec3{0, 1, 0},
		FieldOfView:   60,
		NearClipPlane: 0.1,
		FarClipPlane:  100,
		PixelWidth:    width,
		PixelHeight:   height,
	}
}

// LookAt points the camera at target keeping the current up hint.
func (c *Camera) LookAt(target mgl32.Vec3) {
	c.Forward = target.Sub(c.Position)
}

// Basis returns the orthonormal forward, right and up vectors in world space.
func (c *Camera) Basis() (forward, right, up mgl32.Vec3) {
	forward = c.Forward.Normalize()
	right = forward.Cross(c.Up).Normalize()
	up = right.Cross(forward)
	return forward, right, up
}

func (c *Camera) WorldToView() mgl32.Mat4 {
	forward, _, up := c.Basis()
	return mgl32.LookAtV(c.Position, c.Position.Add(forward), up)
}

func (c *Camera) Aspect() float32 {
	return float32(c.PixelWidth) / float32(c.PixelHeight)
}

// FovHalfHeight is tan(fov/2): the half height of the image plane at unit depth.
func (c *Camera) FovHalfHeight() float32 {
	return float32(math.Tan(float64(mgl32.DegToRad(c.FieldOfView * 0.5))))
}

func (c *Camera) FovHalfWidth() float32 {
	return c.FovHalfHeight() * c.Aspect()
}

// ViewDepth returns the distance of p along the camera forward axis.
func ViewDepth(worldToView mgl32.Mat4, p mgl32.Vec3) float32 {
	return -TransformPoint(worldToView, p).Z()
}

func (c *Camera) Validate() error {
	if c.PixelWidth <= 0 || c.PixelHeight <= 0 {
		return fmt.Errorf("%w: pixel size %dx%d", ErrInvalidCamera, c.PixelWidth, c.PixelHeight)
	}
	if !(c.NearClipPlane > 0) || !(c.FarClipPlane > c.NearClipPlane) {
		return fmt.Errorf("%w: clip planes near=%v far=%v", ErrInvalidCamera, c.NearClipPlane, c.FarClipPlane)
	}
	if !(c.FieldOfView > 0 && c.FieldOfView < 180) {
		return fmt.Errorf("%w: field of view %v", ErrInvalidCamera, c.FieldOfView)
	}
	if c.Forward.LenSqr() == 0 || c.Forward.Normalize().Cross(c.Up).LenSqr() < 1e-12 {
		return fmt.Errorf("%w: degenerate forward/up", ErrInvalidCamera)
	}
	return nil
}
