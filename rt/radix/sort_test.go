package radix

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortedIndicesStableTies(t *testing.T) {
	keys := []float32{3, 1, 2, 1, 3, 0, 1}
	got := SortedIndices(keys)
	assert.Equal(t, []int{5, 1, 3, 6, 2, 0, 4}, got)
}

func TestSortedIndicesEdgeCases(t *testing.T) {
	tests := []struct {
		name string
		keys []float32
		want []int
	}{
		{"Empty", nil, []int{}},
		{"Single", []float32{7}, []int{0}},
		{"AllEqual", []float32{2, 2, 2}, []int{0, 1, 2}},
		{"Descending", []float32{1000, 10, 0.5, 0}, []int{3, 2, 1, 0}},
		{"Subnormal", []float32{1e-30, 1e-40, 0}, []int{2, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SortedIndices(tt.keys))
		})
	}
}

func TestSortedIndicesMatchesStableSort(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	keys := make([]float32, 5000)
	for i := range keys {
		// coarse values force many ties
		keys[i] = float32(rng.Intn(300)) * 0.25
	}

	got := SortedIndices(keys)

	want := make([]int, len(keys))
	for i := range want {
		want[i] = i
	}
	sort.SliceStable(want, func(a, b int) bool { return keys[want[a]] < keys[want[b]] })

	require.Equal(t, want, got)
	for i := 1; i < len(got); i++ {
		require.LessOrEqual(t, keys[got[i-1]], keys[got[i]])
	}
}

func TestSortKeepsKeysAligned(t *testing.T) {
	keys := []uint32{0x0300, 0x0001, 0x0200, 0x0001}
	idx := []int{0, 1, 2, 3}
	Sort(keys, idx)
	assert.Equal(t, []uint32{0x0001, 0x0001, 0x0200, 0x0300}, keys)
	assert.Equal(t, []int{1, 3, 2, 0}, idx)
}

func TestReorder(t *testing.T) {
	type rec struct {
		name  string
		depth float32
	}
	in := []rec{{"a", 5}, {"b", 1}, {"c", 3}}
	perm := SortedIndices([]float32{in[0].depth, in[1].depth, in[2].depth})
	out := make([]rec, len(in))
	Reorder(out, in, perm)

	assert.Equal(t, []rec{{"b", 1}, {"c", 3}, {"a", 5}}, out)
	// the same permutation applied to a parallel array keeps records aligned
	ids := make([]int, 3)
	Reorder(ids, []int{10, 11, 12}, perm)
	assert.Equal(t, []int{11, 12, 10}, ids)
}

func TestReorderInBatches(t *testing.T) {
	in := []string{"a", "b", "c", "d", "e"}
	perm := []int{4, 2, 0, 3, 1}
	out := make([]string, len(in))
	for start := 0; start < len(perm); start += 2 {
		end := min(start+2, len(perm))
		Reorder(out[start:end], in, perm[start:end])
	}
	assert.Equal(t, []string{"e", "c", "a", "d", "b"}, out)
}
