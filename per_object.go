package fplus

// SetupPerObjectLightIndices maps visible light indices to additional light
// slots. The main light maps to -1 and lights after it shift down by one;
// lights beyond maxAdditional also map to -1. It returns the map and the
// number of additional lights placed. With no additional lights every entry
// is -1.
func SetupPerObjectLightIndices(visibleCount, mainLightIndex, additionalLightsCount, maxAdditional int) ([]int32, int) {
	indexMap := make([]int32, visibleCount)
	if additionalLightsCount == 0 {
		for i := range indexMap {
			indexMap[i] = -1
		}
		return indexMap, 0
	}

	globalDirectional, additional := 0, 0
	i := 0
	for ; i < visibleCount && additional < maxAdditional; i++ {
		if i == mainLightIndex {
			indexMap[i] = -1
			globalDirectional++
			continue
		}
		indexMap[i] = int32(i - globalDirectional)
		additional++
	}
	for ; i < visibleCount; i++ {
		indexMap[i] = -1
	}
	return indexMap, additional
}
