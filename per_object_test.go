package fplus

import (
	"reflect"
	"testing"
)

func TestSetupPerObjectLightIndices(t *testing.T) {
	tests := []struct {
		name                 string
		visible, main, count int
		max                  int
		want                 []int32
		wantCount            int
	}{
		{"MainFirst", 5, 0, 4, 256, []int32{-1, 0, 1, 2, 3}, 4},
		{"MainInMiddle", 5, 2, 4, 256, []int32{0, 1, -1, 2, 3}, 4},
		{"NoMain", 3, -1, 3, 256, []int32{0, 1, 2}, 3},
		{"Capped", 5, 1, 4, 2, []int32{0, -1, 1, -1, -1}, 2},
		{"NoAdditional", 3, 0, 0, 256, []int32{-1, -1, -1}, 0},
		{"ZeroCap", 2, -1, 2, 0, []int32{-1, -1}, 0},
		{"Empty", 0, -1, 0, 256, []int32{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n := SetupPerObjectLightIndices(tt.visible, tt.main, tt.count, tt.max)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("indices = %v, want %v", got, tt.want)
			}
			if n != tt.wantCount {
				t.Errorf("count = %d, want %d", n, tt.wantCount)
			}
		})
	}
}

func TestSetupPerObjectLightIndices_Injective(t *testing.T) {
	for main := -1; main < 20; main++ {
		got, n := SetupPerObjectLightIndices(20, main, 19, 12)
		seen := make(map[int32]bool)
		for i, idx := range got {
			if idx < 0 {
				continue
			}
			if idx >= int32(n) {
				t.Fatalf("main %d: light %d maps to %d, only %d slots", main, i, idx, n)
			}
			if seen[idx] {
				t.Fatalf("main %d: slot %d used twice", main, idx)
			}
			seen[idx] = true
		}
		if len(seen) != n {
			t.Errorf("main %d: %d slots used, count %d", main, len(seen), n)
		}
	}
}
