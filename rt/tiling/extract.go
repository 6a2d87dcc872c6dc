package tiling

import (
	"math"

	"github.com/gekko3d/fplus/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// TilingLightData is everything the tilers need to know about one light.
type TilingLightData struct {
	Type core.LightType
	// IsCone selects Cone over Sphere as the culling shape.
	IsCone bool
	Sphere Sphere
	Cone   Cone
	// WorldToLight maps world space into the shape's space.
	WorldToLight mgl32.Mat4
	// ViewOriginL is the camera position in light space.
	ViewOriginL mgl32.Vec3
	ScreenRect  core.Rect
}

func (d *TilingLightData) SampleDistance(p mgl32.Vec3) float32 {
	if d.IsCone {
		return d.Cone.SampleDistance(p)
	}
	return d.Sphere.SampleDistance(p)
}

// AffectsAllTiles is true for lights without a bounded volume.
func (d *TilingLightData) AffectsAllTiles() bool {
	return d.Type == core.LightTypeDirectional
}

// ExtractTilingLight builds the culling shape, light-space transform and
// screen rectangle of a light.
func ExtractTilingLight(l *core.Light, cam *core.Camera, worldToView mgl32.Mat4) TilingLightData {
	data := TilingLightData{
		Type:         l.Type,
		WorldToLight: mgl32.Ident4(),
		ScreenRect:   core.FullScreen(),
	}
	if l.Type == core.LightTypeDirectional {
		return data
	}

	center, radius := l.Position, l.Range
	if cone, ok := spotCone(l); ok && l.Type == core.LightTypeSpot {
		data.IsCone = true
		data.Cone = cone
		data.WorldToLight = l.WorldToLight()
		if half := l.HalfAngle(); half < math.Pi/4 {
			// smallest sphere around apex and base rim
			cos := float32(math.Cos(float64(half)))
			r := cone.Height / (2 * cos * cos)
			center, radius = l.Position.Add(l.Forward().Mul(r)), r
		}
	} else {
		data.Sphere = Sphere{Radius: l.Range}
		data.WorldToLight = mgl32.Translate3D(-l.Position.X(), -l.Position.Y(), -l.Position.Z())
	}
	data.ViewOriginL = core.TransformPoint(data.WorldToLight, cam.Position)
	data.ScreenRect = SphereScreenRect(core.TransformPoint(worldToView, center), radius, cam.FovHalfWidth(), cam.FovHalfHeight())
	return data
}

// SphereScreenRect projects a view-space sphere to a normalized screen
// rectangle that contains its projection. Spheres enclosing the camera cover
// the whole screen; spheres entirely behind it yield an empty rectangle.
func SphereScreenRect(centerV mgl32.Vec3, radius, fovHalfWidth, fovHalfHeight float32) core.Rect {
	depth := -centerV.Z()
	if depth+radius <= 0 {
		return core.Rect{}
	}
	loX, hiX := tangentSlopes(centerV.X(), depth, radius)
	loY, hiY := tangentSlopes(centerV.Y(), depth, radius)
	r := core.Rect{
		Min: mgl32.Vec2{loX/fovHalfWidth*0.5 + 0.5, loY/fovHalfHeight*0.5 + 0.5},
		Max: mgl32.Vec2{hiX/fovHalfWidth*0.5 + 0.5, hiY/fovHalfHeight*0.5 + 0.5},
	}
	return r.Clamp01()
}

// tangentSlopes returns the smallest and largest x/z over the part of the
// circle (x, z, r) in front of the camera, using the tangent lines through the origin.
func tangentSlopes(x, z, r float32) (lo, hi float32) {
	inf := float32(math.Inf(1))
	d2 := x*x + z*z
	if d2 <= r*r {
		return -inf, inf
	}
	t := sqrtf(d2 - r*r)
	lo, hi = -inf, inf
	if den := z*t - x*r; den > 0 {
		hi = (x*t + r*z) / den
	}
	if den := z*t + x*r; den > 0 {
		lo = (x*t - r*z) / den
	}
	return lo, hi
}
