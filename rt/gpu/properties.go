package gpu

import "fmt"

// PropertyID identifies a global shader parameter or buffer binding.
type PropertyID int

const (
	ZBinBuffer PropertyID = iota
	ZBinMaskBuffer
	TileBuffer
	GroupBuffer
	FPLightBuffer
	AdditionalLightsBuffer
	AdditionalLightsIndices

	ZBinOffset
	ZBinFactor
	ZBinMode
	ZBinCount
	ZBinLightCount
	FPWorldToViewMatrix
	InvNormalizedTileSize
	TileXCount
	TileYCount
	GroupXCount
	GroupYCount
	LightCount
	WordsPerTile
	TileCount
	TileSize

	MainLightPosition
	MainLightColor
	MainLightOcclusionProbes
	AdditionalLightsCount
	MixedLightingSetup

	propertyCount
)

var propertyNames = [propertyCount]string{
	ZBinBuffer:              "_ZBinBuffer",
	ZBinMaskBuffer:          "_ZBinMaskBuffer",
	TileBuffer:              "_TileBuffer",
	GroupBuffer:             "_GroupBuffer",
	FPLightBuffer:           "_FPLightBuffer",
	AdditionalLightsBuffer:  "_AdditionalLightsBuffer",
	AdditionalLightsIndices: "_AdditionalLightsIndices",

	ZBinOffset:            "_ZBinOffset",
	ZBinFactor:            "_ZBinFactor",
	ZBinMode:              "_ZBinMode",
	ZBinCount:             "_ZBinCount",
	ZBinLightCount:        "_ZBinLightCount",
	FPWorldToViewMatrix:   "_FPWorldToViewMatrix",
	InvNormalizedTileSize: "_InvNormalizedTileSize",
	TileXCount:            "_TileXCount",
	TileYCount:            "_TileYCount",
	GroupXCount:           "_GroupXCount",
	GroupYCount:           "_GroupYCount",
	LightCount:            "_LightCount",
	WordsPerTile:          "_WordsPerTile",
	TileCount:             "_TileCount",
	TileSize:              "_TileSize",

	MainLightPosition:        "_MainLightPosition",
	MainLightColor:           "_MainLightColor",
	MainLightOcclusionProbes: "_MainLightOcclusionProbes",
	AdditionalLightsCount:    "_AdditionalLightsCount",
	MixedLightingSetup:       "_MixedLightingSetup",
}

// propertyIDs is built once and only read afterwards.
var propertyIDs = func() map[string]PropertyID {
	m := make(map[string]PropertyID, propertyCount)
	for id, name := range propertyNames {
		m[name] = PropertyID(id)
	}
	return m
}()

func (id PropertyID) String() string {
	if id < 0 || id >= propertyCount {
		return fmt.Sprintf("PropertyID(%d)", int(id))
	}
	return propertyNames[id]
}

// PropertyToID resolves a published parameter name. Unknown names panic.
func PropertyToID(name string) PropertyID {
	id, ok := propertyIDs[name]
	if !ok {
		panic(fmt.Sprintf("gpu: unknown property %q", name))
	}
	return id
}

// Properties returns every registered property in declaration order.
func Properties() []PropertyID {
	ids := make([]PropertyID, propertyCount)
	for i := range ids {
		ids[i] = PropertyID(i)
	}
	return ids
}
