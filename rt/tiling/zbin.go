package tiling

import (
	"fmt"
	"math"

	"github.com/gekko3d/fplus/rt/core"
)

// BinningBatchSize is the number of Z-bins one binning batch processes.
const BinningBatchSize = 64

// MaxBinnedLights is the largest light count a 16-bit ZBin index can address;
// 0xFFFF marks an empty bin.
const MaxBinnedLights = 0xFFFF

type BinMode uint32

const (
	// BinModeSqrt spaces bins uniformly in sqrt(depth): finer bins near the camera.
	BinModeSqrt BinMode = iota
	BinModeUniform
)

func (m BinMode) String() string {
	switch m {
	case BinModeSqrt:
		return "sqrt"
	case BinModeUniform:
		return "uniform"
	}
	return fmt.Sprintf("BinMode(%d)", uint32(m))
}

func (m BinMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *BinMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "sqrt", "":
		*m = BinModeSqrt
	case "uniform":
		*m = BinModeUniform
	default:
		return fmt.Errorf("unknown bin mode %q", text)
	}
	return nil
}

// BinLayout maps view depth to Z-bin indices: bin = int(Warp(z)) - BinOffset,
// clamped to [0, BinCount).
type BinLayout struct {
	Mode      BinMode
	ZFactor   float32
	BinOffset int
	BinCount  int
}

// NewBinLayout sizes the bins for a camera. In sqrt mode the bin density
// tracks the screen height so bins stay roughly as thick as a tile is wide.
func NewBinLayout(cam *core.Camera, mode BinMode, uniformCount int) BinLayout {
	near, far := cam.NearClipPlane, cam.FarClipPlane
	b := BinLayout{Mode: mode}
	switch mode {
	case BinModeUniform:
		b.ZFactor = float32(max(uniformCount, 1)) / (far - near)
	default:
		b.ZFactor = sqrtf(float32(cam.PixelHeight) / (math.Sqrt2 * cam.FovHalfHeight()))
	}
	b.BinOffset = int(b.Warp(near))
	b.BinCount = max(int(b.Warp(far))-b.BinOffset, 1)
	return b
}

func (b BinLayout) Warp(z float32) float32 {
	if b.Mode == BinModeUniform {
		return z * b.ZFactor
	}
	return sqrtf(clampNonNegative(z)) * b.ZFactor
}

// BinIndex returns the bin a fragment at view depth z reads. NaN and depths
// before the first bin read bin 0; depths past the last bin read the last.
func (b BinLayout) BinIndex(z float32) int {
	w := b.Warp(z)
	if !(w >= float32(b.BinOffset)) {
		return 0
	}
	if w >= float32(b.BinOffset+b.BinCount) {
		return b.BinCount - 1
	}
	return int(w) - b.BinOffset
}

// ZBin is the inclusive range of sorted light indices that may touch a bin.
type ZBin struct {
	MinIndex uint16
	MaxIndex uint16
}

func EmptyZBin() ZBin {
	return ZBin{MinIndex: 0xFFFF, MaxIndex: 0}
}

func (z ZBin) Empty() bool { return z.MinIndex > z.MaxIndex }

// Pack stores the bin as one little-endian word: min in the low half.
func (z ZBin) Pack() uint32 {
	return uint32(z.MinIndex) | uint32(z.MaxIndex)<<16
}

func UnpackZBin(w uint32) ZBin {
	return ZBin{MinIndex: uint16(w), MaxIndex: uint16(w >> 16)}
}

// BinLights fills zbins[bin] and the bin's light mask from the sorted depth
// intervals. A light is in the bin when the bin lies between the bins its
// MinZ and MaxZ read, so writer and reader share BinIndex. Lights inside the
// range but outside the bin stay clear in the mask.
func BinLights(bin int, layout BinLayout, minMaxZ []LightMinMaxZ, wordsPerTile int, zbins []ZBin, masks []uint32) {
	mask := masks[bin*wordsPerTile : (bin+1)*wordsPerTile]
	clear(mask)

	zb := EmptyZBin()
	for i, mm := range minMaxZ {
		if mm.MinZ != mm.MinZ || mm.MaxZ != mm.MaxZ {
			continue
		}
		if layout.BinIndex(mm.MinZ) > bin || layout.BinIndex(mm.MaxZ) < bin {
			continue
		}
		if zb.Empty() {
			zb.MinIndex = uint16(i)
		}
		zb.MaxIndex = uint16(i)
		SetBit(mask, i)
	}
	zbins[bin] = zb
}
