package core

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type LightType uint32

const (
	LightTypePoint       LightType = 0
	LightTypeDirectional LightType = 1
	LightTypeSpot        LightType = 2
)

func (t LightType) String() string {
	switch t {
	case LightTypePoint:
		return "point"
	case LightTypeDirectional:
		return "directional"
	case LightTypeSpot:
		return "spot"
	}
	return "unknown"
}

type ShadowMode uint32

const (
	ShadowsNone ShadowMode = iota
	ShadowsHard
	ShadowsSoft
)

type LightmapBakeType uint32

const (
	LightmapRealtime LightmapBakeType = iota
	LightmapBaked
	LightmapMixed
)

type MixedLightingMode uint32

const (
	MixedIndirectOnly MixedLightingMode = iota
	MixedSubtractive
	MixedShadowmask
)

// BakingOutput describes how a light was processed by the lightmapper.
type BakingOutput struct {
	LightmapBakeType  LightmapBakeType
	MixedLightingMode MixedLightingMode
	// OcclusionMaskChannel is -1 when the light has no baked occlusion channel.
	OcclusionMaskChannel int
}

// Light is a visible light as handed over by the culling stage.
type Light struct {
	ID        uuid.UUID
	Type      LightType
	Position  mgl32.Vec3
	Direction mgl32.Vec3 // forward, normalized on use
	Color     [3]float32 // RGB
	Intensity float32
	Range     float32 // point/spot
	SpotAngle float32 // full cone angle in degrees
	// InnerSpotAngle is the full inner angle in degrees; 0 derives it from SpotAngle.
	InnerSpotAngle float32
	Shadows        ShadowMode
	Baking         BakingOutput
}

func newLight(t LightType) Light {
	return Light{
		ID:        uuid.New(),
		Type:      t,
		Direction: mgl32.Vec3{0, 0, 1},
		Color:     [3]float32{1, 1, 1},
		Intensity: 1,
		Baking:    BakingOutput{OcclusionMaskChannel: -1},
	}
}

func NewPointLight(position mgl32.Vec3, lightRange float32) Light {
	l := newLight(LightTypePoint)
	l.Position = position
	l.Range = lightRange
	return l
}

// NewSpotLight creates a spot light. spotAngle is the full cone angle in degrees.
func NewSpotLight(position, direction mgl32.Vec3, lightRange, spotAngle float32) Light {
	l := newLight(LightTypeSpot)
	l.Position = position
	l.Direction = direction
	l.Range = lightRange
	l.SpotAngle = spotAngle
	return l
}

func NewDirectionalLight(direction mgl32.Vec3) Light {
	l := newLight(LightTypeDirectional)
	l.Direction = direction
	return l
}

// Forward returns the normalized light direction, +Z when unset.
func (l *Light) Forward() mgl32.Vec3 {
	if l.Direction.LenSqr() == 0 {
		return mgl32.Vec3{0, 0, 1}
	}
	return l.Direction.Normalize()
}

// Transform returns the light pose. The rotation maps local +Z onto Forward.
func (l *Light) Transform() *Transform {
	if l.Type == LightTypePoint {
		t := NewTransform()
		t.Position = l.Position
		return t
	}
	return NewLookTransform(l.Position, l.Forward())
}

// WorldToLight maps world space into light-local space (apex at origin, axis +Z).
func (l *Light) WorldToLight() mgl32.Mat4 {
	return l.Transform().WorldToObject()
}

// HalfAngle returns the spot half-angle in radians.
func (l *Light) HalfAngle() float32 {
	return mgl32.DegToRad(l.SpotAngle * 0.5)
}
