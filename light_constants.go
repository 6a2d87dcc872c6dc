package fplus

import (
	"math"

	"github.com/gekko3d/fplus/rt/core"
	"github.com/gekko3d/fplus/rt/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	defaultLightPosition      = mgl32.Vec4{0, 0, 1, 0}
	defaultLightColor         = mgl32.Vec4{0, 0, 0, 0}
	defaultLightAttenuation   = mgl32.Vec4{0, 1, 0, 1}
	defaultLightSpotDirection = mgl32.Vec4{0, 0, 1, 0}
	defaultLightProbeChannel  = mgl32.Vec4{0, 0, 0, -1}
)

// LightConstants is the shader-facing description of one light.
type LightConstants struct {
	// Position is (pos, 1) for local lights and (-forward, 0) for directional ones.
	Position mgl32.Vec4
	// Color is the linear color scaled by intensity.
	Color mgl32.Vec4
	// Attenuation holds distance attenuation in xy and spot attenuation in zw.
	Attenuation   mgl32.Vec4
	SpotDirection mgl32.Vec4
	// OcclusionProbeChannel.x is the baked occlusion channel, .y is 1 when
	// the light has none.
	OcclusionProbeChannel mgl32.Vec4
}

const lightConstantsStride = 5 * 16

func DefaultLightConstants() LightConstants {
	return LightConstants{
		Position:              defaultLightPosition,
		Color:                 defaultLightColor,
		Attenuation:           defaultLightAttenuation,
		SpotDirection:         defaultLightSpotDirection,
		OcclusionProbeChannel: defaultLightProbeChannel,
	}
}

// NewLightConstants computes the constants of a visible light.
func NewLightConstants(l *core.Light) LightConstants {
	c := DefaultLightConstants()
	fwd := l.Forward()

	if l.Type == core.LightTypeDirectional {
		c.Position = mgl32.Vec4{-fwd.X(), -fwd.Y(), -fwd.Z(), 0}
	} else {
		c.Position = l.Position.Vec4(1)
	}
	c.Color = mgl32.Vec4{l.Color[0] * l.Intensity, l.Color[1] * l.Intensity, l.Color[2] * l.Intensity, 1}

	if l.Type != core.LightTypeDirectional {
		// fade to zero over the last 20% of the range
		rangeSqr := max(l.Range*l.Range, 0.0001)
		fadeStartSqr := 0.8 * 0.8 * rangeSqr
		fadeRangeSqr := fadeStartSqr - rangeSqr
		c.Attenuation[0] = 1 / rangeSqr
		c.Attenuation[1] = -rangeSqr / fadeRangeSqr
	}

	if l.Type == core.LightTypeSpot {
		c.SpotDirection = mgl32.Vec4{-fwd.X(), -fwd.Y(), -fwd.Z(), 0}
		invAngleRange, add := spotAngleAttenuation(l.SpotAngle, l.InnerSpotAngle)
		c.Attenuation[2] = invAngleRange
		c.Attenuation[3] = add
	}

	if ch := l.Baking.OcclusionMaskChannel; ch >= 0 {
		c.OcclusionProbeChannel = mgl32.Vec4{float32(ch), 0, 0, 0}
	} else {
		c.OcclusionProbeChannel = mgl32.Vec4{0, 1, 0, 0}
	}
	return c
}

// spotAngleAttenuation returns the scale and offset that map cos(angle) to
// a 0..1 falloff between the outer and inner cones.
func spotAngleAttenuation(spotAngle, innerSpotAngle float32) (float32, float32) {
	cosOuter := float32(math.Cos(float64(mgl32.DegToRad(spotAngle * 0.5))))
	var cosInner float32
	if innerSpotAngle > 0 {
		cosInner = float32(math.Cos(float64(mgl32.DegToRad(innerSpotAngle * 0.5))))
	} else {
		halfOuter := float64(mgl32.DegToRad(spotAngle * 0.5))
		inner := 2 * math.Atan(math.Tan(halfOuter)*(64.0-18.0)/64.0)
		cosInner = float32(math.Cos(inner * 0.5))
	}
	smoothAngleRange := max(0.001, cosInner-cosOuter)
	inv := 1 / smoothAngleRange
	return inv, -cosOuter * inv
}

func packLightConstants(lights []LightConstants) []byte {
	vecs := make([]mgl32.Vec4, 0, len(lights)*lightConstantsStride/16)
	for _, c := range lights {
		vecs = append(vecs, c.Position, c.Color, c.Attenuation, c.SpotDirection, c.OcclusionProbeChannel)
	}
	return gpu.PackVec4s(vecs)
}

// MixedLightingSetup is the baked/realtime mixing mode chosen for the frame.
type MixedLightingSetup int

const (
	MixedLightingNone MixedLightingSetup = iota
	MixedLightingShadowMask
	MixedLightingSubtractive
)

func (m MixedLightingSetup) String() string {
	switch m {
	case MixedLightingShadowMask:
		return "shadowmask"
	case MixedLightingSubtractive:
		return "subtractive"
	}
	return "none"
}

// detectMixedLighting picks the setup from the first mixed, shadowed light.
func detectMixedLighting(l *core.Light, supported bool, setup *MixedLightingSetup) {
	if !supported || *setup != MixedLightingNone {
		return
	}
	if l.Baking.LightmapBakeType != core.LightmapMixed || l.Shadows == core.ShadowsNone {
		return
	}
	switch l.Baking.MixedLightingMode {
	case core.MixedSubtractive:
		*setup = MixedLightingSubtractive
	case core.MixedShadowmask:
		*setup = MixedLightingShadowMask
	}
}
