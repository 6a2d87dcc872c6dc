package tiling

import (
	"math"

	"github.com/gekko3d/fplus/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultTileWidth     = 16
	DefaultMaxMarchSteps = 64
	// GroupWidth is the side of a coarse group, in tiles.
	GroupWidth = 4
	groupSize  = GroupWidth * GroupWidth
)

// TileLayout describes the screen grid for one frame. Tile (x, y) with y=0 at
// the bottom of the screen has index y*TileXCount + x; groups are GroupWidth
// tiles on a side and indexed the same way.
type TileLayout struct {
	ScreenWidth  int
	ScreenHeight int
	TileWidth    int
	TileXCount   int
	TileYCount   int
	GroupXCount  int
	GroupYCount  int
	LightCount   int
	WordsPerTile int

	MaxMarchSteps int

	// Camera basis in world space; Right and Up are scaled so that
	// Forward + Right*ndc.x + Up*ndc.y lies on the unit-depth image plane.
	Forward mgl32.Vec3
	Right   mgl32.Vec3
	Up      mgl32.Vec3
	// TileAperture is the half diagonal of one tile on the unit-depth plane.
	TileAperture float32
}

func NewTileLayout(cam *core.Camera, tileWidth, lightCount, maxMarchSteps int) TileLayout {
	if tileWidth <= 0 {
		tileWidth = DefaultTileWidth
	}
	if maxMarchSteps <= 0 {
		maxMarchSteps = DefaultMaxMarchSteps
	}
	fwd, right, up := cam.Basis()
	halfH, halfW := cam.FovHalfHeight(), cam.FovHalfWidth()

	t := TileLayout{
		ScreenWidth:   cam.PixelWidth,
		ScreenHeight:  cam.PixelHeight,
		TileWidth:     tileWidth,
		TileXCount:    core.CeilDiv(cam.PixelWidth, tileWidth),
		TileYCount:    core.CeilDiv(cam.PixelHeight, tileWidth),
		LightCount:    lightCount,
		WordsPerTile:  WordsFor(lightCount),
		MaxMarchSteps: maxMarchSteps,
		Forward:       fwd,
		Right:         right.Mul(halfW),
		Up:            up.Mul(halfH),
		TileAperture:  math.Sqrt2 * float32(tileWidth) * halfH / float32(cam.PixelHeight),
	}
	t.GroupXCount = core.CeilDiv(t.TileXCount, GroupWidth)
	t.GroupYCount = core.CeilDiv(t.TileYCount, GroupWidth)
	return t
}

func (t TileLayout) TileCount() int  { return t.TileXCount * t.TileYCount }
func (t TileLayout) GroupCount() int { return t.GroupXCount * t.GroupYCount }

func (t TileLayout) TileIndex(x, y int) int { return y*t.TileXCount + x }

// TileRect returns the normalized screen rectangle of tile (x, y), cut at the
// screen edge.
func (t TileLayout) TileRect(x, y int) core.Rect {
	return t.pixelRect(x*t.TileWidth, y*t.TileWidth, (x+1)*t.TileWidth, (y+1)*t.TileWidth)
}

func (t TileLayout) GroupRect(gx, gy int) core.Rect {
	span := GroupWidth * t.TileWidth
	return t.pixelRect(gx*span, gy*span, (gx+1)*span, (gy+1)*span)
}

func (t TileLayout) pixelRect(x0, y0, x1, y1 int) core.Rect {
	w, h := float32(t.ScreenWidth), float32(t.ScreenHeight)
	return core.Rect{
		Min: mgl32.Vec2{float32(x0) / w, float32(y0) / h},
		Max: mgl32.Vec2{float32(min(x1, t.ScreenWidth)) / w, float32(min(y1, t.ScreenHeight)) / h},
	}
}

// tileCone is a cone from the camera that contains every view ray through
// a screen region.
type tileCone struct {
	valid  bool
	offset int
	rect   core.Rect
	dir    mgl32.Vec3
	cos    float32
	ap     float32
}

// coneAt builds the cone through the pixel-space point (px, py) whose
// cross-section on the image plane has half extent halfExtent.
func (t TileLayout) coneAt(px, py, halfExtent float32) tileCone {
	ndcX := px/float32(t.ScreenWidth)*2 - 1
	ndcY := py/float32(t.ScreenHeight)*2 - 1
	p := t.Forward.Add(t.Right.Mul(ndcX)).Add(t.Up.Mul(ndcY))
	l := p.Len()
	return tileCone{
		valid: true,
		dir:   p.Mul(1 / l),
		cos:   1 / l,
		ap:    halfExtent / maxf(l-halfExtent, 1e-6),
	}
}

// ConeMarch reports whether light may intersect the cone around dirW.
//
// The cone is treated as the union of balls of radius aperture*t centred on
// the ray at distance t. Marching starts at the nearest t whose ball reaches
// the light's MinZ and stops past the farthest t whose ball reaches MaxZ.
// A sample with distance d rules out every t' below (d+t)/(1+aperture), so
// the march never skips an intersection. Running out of steps counts as a hit.
func ConeMarch(light *TilingLightData, mm LightMinMaxZ, dirW mgl32.Vec3, cosTheta, aperture float32, maxSteps int) bool {
	t := mm.MinZ / (cosTheta + aperture)
	tMax := float32(math.Inf(1))
	if den := cosTheta - aperture; den > 0 {
		tMax = mm.MaxZ / den
	}
	dirL := core.TransformDirection(light.WorldToLight, dirW)

	for step := 0; step < maxSteps; step++ {
		if t > tMax {
			return false
		}
		d := light.SampleDistance(light.ViewOriginL.Add(dirL.Mul(t)))
		if d <= aperture*t {
			return true
		}
		t = (d + t) / (1 + aperture)
	}
	return true
}

// FineTileGroup computes the light masks of the tiles in group g and writes
// them to tileMasks. Lights are rejected by screen rectangle against the
// group, then against each tile, before marching the tile's cone.
func FineTileGroup(g int, layout *TileLayout, lights []TilingLightData, minMaxZ []LightMinMaxZ, tileMasks []uint32) {
	gx, gy := g%layout.GroupXCount, g/layout.GroupXCount
	groupRect := layout.GroupRect(gx, gy)
	tw := float32(layout.TileWidth)

	var cones [groupSize]tileCone
	for c := range cones {
		tx, ty := gx*GroupWidth+c%GroupWidth, gy*GroupWidth+c/GroupWidth
		if tx >= layout.TileXCount || ty >= layout.TileYCount {
			continue
		}
		cone := layout.coneAt((float32(tx)+0.5)*tw, (float32(ty)+0.5)*tw, layout.TileAperture)
		cone.rect = layout.TileRect(tx, ty)
		cone.offset = layout.TileIndex(tx, ty) * layout.WordsPerTile
		cones[c] = cone
	}

	for w := 0; w < layout.WordsPerTile; w++ {
		var bits [groupSize]uint32
		end := min(32, layout.LightCount-w*32)
		for i := 0; i < end; i++ {
			li := w*32 + i
			light := &lights[li]
			if !light.ScreenRect.Overlaps(groupRect) {
				continue
			}
			bit := uint32(1) << uint(i)
			if light.AffectsAllTiles() {
				for c := range bits {
					bits[c] |= bit
				}
				continue
			}
			for c := range cones {
				cone := &cones[c]
				if !cone.valid || !light.ScreenRect.Overlaps(cone.rect) {
					continue
				}
				if ConeMarch(light, minMaxZ[li], cone.dir, cone.cos, cone.ap, layout.MaxMarchSteps) {
					bits[c] |= bit
				}
			}
		}
		for c := range cones {
			if cones[c].valid {
				tileMasks[cones[c].offset+w] = bits[c]
			}
		}
	}
}

// CoarseTileGroup computes the light mask of group g with a single wide cone
// and writes it to groupMasks.
func CoarseTileGroup(g int, layout *TileLayout, lights []TilingLightData, minMaxZ []LightMinMaxZ, groupMasks []uint32) {
	gx, gy := g%layout.GroupXCount, g/layout.GroupXCount
	groupRect := layout.GroupRect(gx, gy)
	span := float32(GroupWidth * layout.TileWidth)
	cone := layout.coneAt((float32(gx)+0.5)*span, (float32(gy)+0.5)*span, layout.TileAperture*GroupWidth)
	offset := g * layout.WordsPerTile

	for w := 0; w < layout.WordsPerTile; w++ {
		var bits uint32
		end := min(32, layout.LightCount-w*32)
		for i := 0; i < end; i++ {
			li := w*32 + i
			light := &lights[li]
			if !light.ScreenRect.Overlaps(groupRect) {
				continue
			}
			if light.AffectsAllTiles() || ConeMarch(light, minMaxZ[li], cone.dir, cone.cos, cone.ap, layout.MaxMarchSteps) {
				bits |= 1 << uint(i)
			}
		}
		groupMasks[offset+w] = bits
	}
}
