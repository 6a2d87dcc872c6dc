package fplus

import (
	"math"
	"testing"

	"github.com/gekko3d/fplus/rt/core"
	"github.com/gekko3d/fplus/rt/gpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLightConstants_Point(t *testing.T) {
	l := core.NewPointLight(mgl32.Vec3{1, 2, 3}, 10)
	l.Color = [3]float32{1, 0.5, 0}
	l.Intensity = 2

	c := NewLightConstants(&l)
	assert.Equal(t, mgl32.Vec4{1, 2, 3, 1}, c.Position)
	assert.Equal(t, mgl32.Vec4{2, 1, 0, 1}, c.Color)
	assert.InDelta(t, 0.01, c.Attenuation[0], 1e-6)
	assert.InDelta(t, 100.0/36.0, c.Attenuation[1], 1e-4)
	assert.Equal(t, float32(0), c.Attenuation[2])
	assert.Equal(t, float32(1), c.Attenuation[3])
	assert.Equal(t, defaultLightSpotDirection, c.SpotDirection)
	assert.Equal(t, mgl32.Vec4{0, 1, 0, 0}, c.OcclusionProbeChannel)
}

func TestNewLightConstants_Directional(t *testing.T) {
	l := core.NewDirectionalLight(mgl32.Vec3{0, 0, 2})
	l.Baking.OcclusionMaskChannel = 2

	c := NewLightConstants(&l)
	assert.Equal(t, mgl32.Vec4{0, 0, -1, 0}, c.Position)
	assert.Equal(t, defaultLightAttenuation, c.Attenuation)
	assert.Equal(t, mgl32.Vec4{2, 0, 0, 0}, c.OcclusionProbeChannel)
}

func TestNewLightConstants_Spot(t *testing.T) {
	l := core.NewSpotLight(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{0, -1, 0}, 10, 60)
	l.InnerSpotAngle = 40

	c := NewLightConstants(&l)
	assert.Equal(t, mgl32.Vec4{0, 1, 0, 0}, c.SpotDirection)

	cosOuter := float32(math.Cos(30 * math.Pi / 180))
	cosInner := float32(math.Cos(20 * math.Pi / 180))
	assert.InDelta(t, 0, cosOuter*c.Attenuation[2]+c.Attenuation[3], 1e-4)
	assert.InDelta(t, 1, cosInner*c.Attenuation[2]+c.Attenuation[3], 1e-4)
}

func TestSpotAngleAttenuation_DerivedInner(t *testing.T) {
	inv, add := spotAngleAttenuation(60, 0)
	cosOuter := math.Cos(30 * math.Pi / 180)
	inner := 2 * math.Atan(math.Tan(30*math.Pi/180)*46/64)
	cosInner := math.Cos(inner / 2)
	assert.InDelta(t, 1/(cosInner-cosOuter), inv, 1e-2)
	assert.InDelta(t, -cosOuter/(cosInner-cosOuter), add, 1e-2)

	// identical angles clamp the range instead of dividing by zero
	inv, _ = spotAngleAttenuation(60, 60)
	assert.InDelta(t, 1000, inv, 1e-3)
}

func TestDefaultLightConstants(t *testing.T) {
	c := DefaultLightConstants()
	assert.Equal(t, mgl32.Vec4{0, 0, 1, 0}, c.Position)
	assert.Equal(t, mgl32.Vec4{}, c.Color)
	assert.Equal(t, mgl32.Vec4{0, 1, 0, 1}, c.Attenuation)
	assert.Equal(t, mgl32.Vec4{0, 0, 0, -1}, c.OcclusionProbeChannel)
}

func TestPackLightConstants(t *testing.T) {
	a := DefaultLightConstants()
	b := DefaultLightConstants()
	b.Color = mgl32.Vec4{1, 2, 3, 4}

	buf := packLightConstants([]LightConstants{a, b})
	require.Len(t, buf, 2*lightConstantsStride)
	words := gpu.UnpackUint32s(buf)
	assert.Equal(t, math.Float32bits(1), words[2])
	assert.Equal(t, math.Float32bits(1), words[20+4])
	assert.Equal(t, math.Float32bits(4), words[20+7])
}

func TestDetectMixedLighting(t *testing.T) {
	mixed := func(mode core.MixedLightingMode, shadows core.ShadowMode) *core.Light {
		l := core.NewPointLight(mgl32.Vec3{}, 1)
		l.Shadows = shadows
		l.Baking.LightmapBakeType = core.LightmapMixed
		l.Baking.MixedLightingMode = mode
		return &l
	}

	tests := []struct {
		name      string
		lights    []*core.Light
		supported bool
		want      MixedLightingSetup
	}{
		{"Subtractive", []*core.Light{mixed(core.MixedSubtractive, core.ShadowsSoft)}, true, MixedLightingSubtractive},
		{"ShadowMask", []*core.Light{mixed(core.MixedShadowmask, core.ShadowsHard)}, true, MixedLightingShadowMask},
		{"NoShadows", []*core.Light{mixed(core.MixedShadowmask, core.ShadowsNone)}, true, MixedLightingNone},
		{"Unsupported", []*core.Light{mixed(core.MixedShadowmask, core.ShadowsHard)}, false, MixedLightingNone},
		{"IndirectOnly", []*core.Light{mixed(core.MixedIndirectOnly, core.ShadowsHard)}, true, MixedLightingNone},
		{"FirstWins", []*core.Light{
			mixed(core.MixedSubtractive, core.ShadowsHard),
			mixed(core.MixedShadowmask, core.ShadowsHard),
		}, true, MixedLightingSubtractive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup := MixedLightingNone
			for _, l := range tt.lights {
				detectMixedLighting(l, tt.supported, &setup)
			}
			assert.Equal(t, tt.want, setup)
			assert.NotEmpty(t, setup.String())
		})
	}
}
