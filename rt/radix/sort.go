// Package radix implements the stable radix sort used to order lights by depth.
package radix

import "math"

const (
	digitBits = 8
	buckets   = 1 << digitBits
	passes    = 32 / digitBits
)

// FloatKeys writes the IEEE-754 bit patterns of src into dst. For non-negative
// floats the unsigned order of the bits equals the numeric order.
func FloatKeys(dst []uint32, src []float32) {
	for i, v := range src {
		dst[i] = math.Float32bits(v)
	}
}

// Sort orders indices so that keys[indices[0]] <= keys[indices[1]] <= ...
// It is an LSD radix sort over 8-bit digits, so equal keys keep the relative
// order they had in indices. keys and indices are rearranged in place.
func Sort(keys []uint32, indices []int) {
	n := len(keys)
	if n < 2 {
		return
	}
	tmpKeys := make([]uint32, n)
	tmpIdx := make([]int, n)

	var counts [buckets]int
	for pass := 0; pass < passes; pass++ {
		shift := uint(pass * digitBits)
		clear(counts[:])
		for _, k := range keys {
			counts[(k>>shift)&(buckets-1)]++
		}
		// every key shares this digit
		if counts[(keys[0]>>shift)&(buckets-1)] == n {
			continue
		}

		offset := 0
		for d := 0; d < buckets; d++ {
			c := counts[d]
			counts[d] = offset
			offset += c
		}
		for i, k := range keys {
			d := (k >> shift) & (buckets - 1)
			dst := counts[d]
			counts[d]++
			tmpKeys[dst] = k
			tmpIdx[dst] = indices[i]
		}
		copy(keys, tmpKeys)
		copy(indices, tmpIdx)
	}
}

// SortedIndices returns the stable ascending permutation of keys. Keys must
// be non-negative (or NaN, which sorts last).
func SortedIndices(keys []float32) []int {
	bits := make([]uint32, len(keys))
	FloatKeys(bits, keys)
	indices := make([]int, len(keys))
	for i := range indices {
		indices[i] = i
	}
	Sort(bits, indices)
	return indices
}

// Reorder writes dst[i] = input[indices[i]]. dst and indices may be matching
// sub-slices, so batches of one permutation can be gathered in parallel.
func Reorder[T any](dst []T, input []T, indices []int) {
	for i, src := range indices[:len(dst)] {
		dst[i] = input[src]
	}
}
