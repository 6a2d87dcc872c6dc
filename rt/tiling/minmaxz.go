package tiling

import (
	"github.com/gekko3d/fplus/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// LightMinMaxZ is the view-depth interval a light can influence.
type LightMinMaxZ struct {
	MinZ float32
	MaxZ float32
}

// MeanZ is the sort key of the light.
func (m LightMinMaxZ) MeanZ() float32 {
	return (m.MinZ + m.MaxZ) * 0.5
}

// LightDepthBounds computes the conservative depth interval of a light.
//
// Point lights span center depth ± range. Spot lights span the depth extent
// of their cone (height = range) clipped to the range sphere; spots too wide
// for a cone are treated as points. Directional lights span [0, far].
// Both bounds are clamped to >= 0; NaN inputs yield NaN bounds.
func LightDepthBounds(l *core.Light, worldToView mgl32.Mat4, far float32) LightMinMaxZ {
	if l.Type == core.LightTypeDirectional {
		return LightMinMaxZ{MinZ: 0, MaxZ: far}
	}

	oz := core.ViewDepth(worldToView, l.Position)
	minZ, maxZ := oz-l.Range, oz+l.Range

	if cone, ok := spotCone(l); ok && l.Type == core.LightTypeSpot {
		dz := -core.TransformDirection(worldToView, l.Forward()).Z()
		// depth extent of the base disc: its normal has depth component dz
		e := sqrtf(maxf(0, 1-dz*dz))
		cz := oz + dz*cone.Height
		coneMin := minf(oz, cz-cone.BaseRadius*e)
		coneMax := maxf(oz, cz+cone.BaseRadius*e)
		minZ = maxf(minZ, coneMin)
		maxZ = minf(maxZ, coneMax)
	}

	return LightMinMaxZ{MinZ: clampNonNegative(minZ), MaxZ: clampNonNegative(maxZ)}
}
