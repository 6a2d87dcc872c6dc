package tiling

import (
	"math"

	"github.com/gekko3d/fplus/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// Spot lights wider than this are culled as spheres.
const maxConeHalfAngle = 89 * math.Pi / 180

// Shape is a culling volume in light-local space. SampleDistance never
// overestimates the distance from p to the volume, and is <= 0 inside it.
type Shape interface {
	SampleDistance(p mgl32.Vec3) float32
}

type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

func (s Sphere) SampleDistance(p mgl32.Vec3) float32 {
	return p.Sub(s.Center).Len() - s.Radius
}

// Cone has its apex at the origin and opens along +Z up to a flat base at
// z = Height. It is clipped by a sphere of radius Height around the apex,
// which still contains the light's lit region.
type Cone struct {
	Height     float32
	BaseRadius float32
}

func (c Cone) SampleDistance(p mgl32.Vec3) float32 {
	qx, qy := c.BaseRadius, -c.Height
	wx, wy := sqrtf(p.X()*p.X()+p.Y()*p.Y()), -p.Z()

	s := mgl32.Clamp((wx*qx+wy*qy)/(qx*qx+qy*qy), 0, 1)
	ax, ay := wx-qx*s, wy-qy*s
	bx, by := wx-qx*mgl32.Clamp(wx/qx, 0, 1), wy-qy
	d := minf(ax*ax+ay*ay, bx*bx+by*by)

	// k = sign(qy) = -1
	side := maxf(-(wx*qy - wy*qx), -(wy - qy))
	dist := sqrtf(d)
	if side < 0 {
		dist = -dist
	}
	return maxf(dist, p.Len()-c.Height)
}

// spotCone returns the cone for a spot light, or false when the spot is too
// wide to be culled as a cone.
func spotCone(l *core.Light) (Cone, bool) {
	half := l.HalfAngle()
	if !(half > 0 && half <= maxConeHalfAngle) {
		return Cone{}, false
	}
	return Cone{Height: l.Range, BaseRadius: l.Range * tanf(half)}, true
}
