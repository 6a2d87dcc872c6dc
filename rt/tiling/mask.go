package tiling

import "github.com/gekko3d/fplus/rt/core"

// Light masks are arrays of 32-bit words. Bit i of word w stands for sorted
// light w*32+i; record r occupies words [r*wordsPerTile, (r+1)*wordsPerTile).

// WordsFor returns the words needed to hold one bit per light.
func WordsFor(lightCount int) int {
	return core.CeilDiv(lightCount, 32)
}

func SetBit(words []uint32, light int) {
	words[light>>5] |= 1 << uint(light&31)
}

func HasBit(words []uint32, light int) bool {
	return words[light>>5]&(1<<uint(light&31)) != 0
}

// DecodeMask returns the lights set in record r, ascending.
func DecodeMask(words []uint32, r, wordsPerTile int) []int {
	var lights []int
	rec := words[r*wordsPerTile : (r+1)*wordsPerTile]
	for w, word := range rec {
		for bit := 0; word != 0; bit++ {
			if word&1 != 0 {
				lights = append(lights, w*32+bit)
			}
			word >>= 1
		}
	}
	return lights
}
