package fplus

import (
	"errors"
	"testing"

	"github.com/gekko3d/fplus/rt/core"
	"github.com/gekko3d/fplus/rt/gpu"
	"github.com/gekko3d/fplus/rt/jobs"
	"github.com/gekko3d/fplus/rt/tiling"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioCamera() *core.Camera {
	return core.NewCamera(1920, 1080)
}

func newTestForwardLights(t *testing.T) (*ForwardLights, *gpu.HostDevice) {
	t.Helper()
	dev := gpu.NewHostDevice()
	fl, err := NewForwardLights(DefaultConfig(), WithDevice(dev), WithScheduler(jobs.NewScheduler(4)))
	require.NoError(t, err)
	t.Cleanup(fl.Release)
	return fl, dev
}

func renderingData(cam *core.Camera, lights ...core.Light) *RenderingData {
	return &RenderingData{
		Camera: cam,
		Lights: LightData{
			VisibleLights:                     lights,
			MainLightIndex:                    -1,
			AdditionalLightsCount:             len(lights),
			MaxPerObjectAdditionalLightsCount: 8,
		},
	}
}

func TestSetup_SinglePointLight(t *testing.T) {
	fl, _ := newTestForwardLights(t)
	out, err := fl.Setup(renderingData(scenarioCamera(), core.NewPointLight(mgl32.Vec3{0, 0, 10}, 5)))
	require.NoError(t, err)

	require.Equal(t, 1, out.LightCount)
	assert.Equal(t, []int{0}, out.SortedIndices)
	assert.InDelta(t, 5, out.MinMaxZ[0].MinZ, 1e-4)
	assert.InDelta(t, 15, out.MinMaxZ[0].MaxZ, 1e-4)
	assert.Equal(t, 120, out.Tiles.TileXCount)
	assert.Equal(t, 68, out.Tiles.TileYCount)
	assert.Equal(t, 1, out.Tiles.WordsPerTile)

	for _, z := range []float32{5.5, 10, 14.5} {
		assert.Equal(t, []int{0}, out.DepthLights(z), "depth %v", z)
		zb := out.ZBins[out.Bins.BinIndex(z)]
		assert.Equal(t, tiling.ZBin{MinIndex: 0, MaxIndex: 0}, zb, "depth %v", z)
	}
	for _, z := range []float32{1, 2, 20, 80} {
		assert.Empty(t, out.DepthLights(z), "depth %v", z)
		assert.True(t, out.ZBins[out.Bins.BinIndex(z)].Empty(), "depth %v", z)
	}

	assert.Equal(t, []int{0}, out.TileLights(60, 33))
	assert.Equal(t, []int{0}, out.TileLights(59, 34))
	for _, c := range [][2]int{{0, 0}, {119, 0}, {0, 67}, {119, 67}, {5, 33}, {114, 33}} {
		assert.Empty(t, out.TileLights(c[0], c[1]), "tile %v", c)
	}
}

func TestSetup_SortsByDepth(t *testing.T) {
	fl, _ := newTestForwardLights(t)
	lights := []core.Light{
		core.NewPointLight(mgl32.Vec3{0, 0, 30}, 2),
		core.NewPointLight(mgl32.Vec3{1, 0, 10}, 2),
		core.NewPointLight(mgl32.Vec3{-1, 0, 20}, 2),
	}
	out, err := fl.Setup(renderingData(scenarioCamera(), lights...))
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 0}, out.SortedIndices)
	for i := 1; i < len(out.MinMaxZ); i++ {
		assert.LessOrEqual(t, out.MinMaxZ[i-1].MeanZ(), out.MinMaxZ[i].MeanZ())
	}
	for i, src := range out.SortedIndices {
		assert.Equal(t, lights[src].Position.Vec4(1), out.SortedLightConstants[i].Position)
	}
	// sorted index 0 is the nearest light
	assert.Equal(t, []int{0}, out.DepthLights(10))
	assert.Equal(t, []int{2}, out.DepthLights(30))
}

func TestSetup_NoLights(t *testing.T) {
	fl, dev := newTestForwardLights(t)
	out, err := fl.Setup(renderingData(scenarioCamera()))
	require.NoError(t, err)

	assert.Zero(t, fl.Scheduler().Scheduled())
	assert.Equal(t, 0, out.Tiles.WordsPerTile)
	assert.Empty(t, out.TileMasks)
	require.NotEmpty(t, out.ZBins)
	for i, zb := range out.ZBins {
		assert.True(t, zb.Empty(), "bin %d", i)
	}
	assert.Empty(t, out.DepthLights(10))
	assert.Empty(t, out.TileLights(0, 0))

	for _, id := range []gpu.PropertyID{gpu.ZBinBuffer, gpu.TileBuffer, gpu.GroupBuffer, gpu.FPLightBuffer, gpu.AdditionalLightsIndices} {
		b, ok := fl.Globals().Buffer(id)
		require.True(t, ok, id.String())
		assert.NotNil(t, b)
	}
	assert.Equal(t, 7, dev.Live())

	n, ok := fl.Globals().Int(gpu.LightCount)
	require.True(t, ok)
	assert.Equal(t, int32(0), n)
}

func TestSetup_UploadsBuffersAndGlobals(t *testing.T) {
	fl, dev := newTestForwardLights(t)
	cam := scenarioCamera()
	lights := []core.Light{
		core.NewDirectionalLight(mgl32.Vec3{0, -1, 0}),
		core.NewPointLight(mgl32.Vec3{0, 0, 10}, 5),
		core.NewSpotLight(mgl32.Vec3{3, 2, 20}, mgl32.Vec3{0, -1, 0}, 8, 60),
	}
	data := renderingData(cam, lights...)
	data.Lights.MainLightIndex = 0
	data.Lights.AdditionalLightsCount = 2

	out, err := fl.Setup(data)
	require.NoError(t, err)
	g := fl.Globals()

	b, ok := g.Buffer(gpu.TileBuffer)
	require.True(t, ok)
	words := gpu.UnpackUint32s(b.(*gpu.HostBuffer).Bytes())
	assert.Equal(t, out.TileMasks, words[:len(out.TileMasks)])
	assert.Equal(t, core.CeilPow2(len(out.TileMasks)), fl.Buffers().Capacity(gpu.TileBuffer))

	b, ok = g.Buffer(gpu.ZBinBuffer)
	require.True(t, ok)
	packed := gpu.UnpackUint32s(b.(*gpu.HostBuffer).Bytes())
	for i, zb := range out.ZBins {
		assert.Equal(t, zb, tiling.UnpackZBin(packed[i]))
	}

	ints := map[gpu.PropertyID]int32{
		gpu.TileXCount:     120,
		gpu.TileYCount:     68,
		gpu.GroupXCount:    30,
		gpu.GroupYCount:    17,
		gpu.LightCount:     3,
		gpu.WordsPerTile:   1,
		gpu.TileSize:       16,
		gpu.TileCount:      120 * 68,
		gpu.ZBinLightCount: 3,
		gpu.ZBinCount:      int32(out.Bins.BinCount),
		gpu.ZBinOffset:     int32(out.Bins.BinOffset),
		gpu.ZBinMode:       int32(tiling.BinModeSqrt),
	}
	for id, want := range ints {
		got, ok := g.Int(id)
		require.True(t, ok, id.String())
		assert.Equal(t, want, got, id.String())
	}
	f, ok := g.Float(gpu.ZBinFactor)
	require.True(t, ok)
	assert.Equal(t, out.Bins.ZFactor, f)

	m, ok := g.Matrix(gpu.FPWorldToViewMatrix)
	require.True(t, ok)
	assert.Equal(t, cam.WorldToView(), m)

	v, _ := g.Vector(gpu.InvNormalizedTileSize)
	assert.Equal(t, mgl32.Vec4{120, 67.5, 0, 0}, v)
	v, _ = g.Vector(gpu.MainLightPosition)
	assert.Equal(t, mgl32.Vec4{0, 1, 0, 0}, v)
	v, _ = g.Vector(gpu.AdditionalLightsCount)
	assert.Equal(t, mgl32.Vec4{8, 0, 0, 0}, v)

	assert.Equal(t, []int32{-1, 0, 1}, out.PerObjectLightIndices)
	assert.Equal(t, 2, out.AdditionalLightsCount)
	require.Len(t, out.AdditionalLights, 2)
	assert.Equal(t, lights[1].Position.Vec4(1), out.AdditionalLights[0].Position)

	// The directional light reaches every tile.
	dirSorted := -1
	for i, src := range out.SortedIndices {
		if src == 0 {
			dirSorted = i
		}
	}
	require.NotEqual(t, -1, dirSorted)
	assert.Contains(t, out.TileLights(0, 0), dirSorted)
	assert.Contains(t, out.TileLights(119, 67), dirSorted)

	// A second frame of the same size reuses every buffer.
	created := dev.Created()
	_, err = fl.Setup(data)
	require.NoError(t, err)
	assert.Equal(t, created, dev.Created())
	assert.Equal(t, 7, dev.Live())
}

func TestSetup_Errors(t *testing.T) {
	fl, _ := newTestForwardLights(t)

	_, err := fl.Setup(&RenderingData{})
	assert.True(t, errors.Is(err, core.ErrInvalidCamera))

	cam := scenarioCamera()
	cam.PixelWidth = 0
	_, err = fl.Setup(renderingData(cam))
	assert.True(t, errors.Is(err, core.ErrInvalidCamera))

	lights := make([]core.Light, tiling.MaxBinnedLights+1)
	_, err = fl.Setup(renderingData(scenarioCamera(), lights...))
	assert.True(t, errors.Is(err, ErrTooManyLights))
}

func TestNewForwardLights_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TileWidth = -4
	_, err := NewForwardLights(cfg)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestCheckSortedDepth(t *testing.T) {
	assert.NoError(t, checkSortedDepth([]tiling.LightMinMaxZ{{MinZ: 1, MaxZ: 2}, {MinZ: 1, MaxZ: 4}}))
	assert.Error(t, checkSortedDepth([]tiling.LightMinMaxZ{{MinZ: 5, MaxZ: 6}, {MinZ: 1, MaxZ: 2}}))
}
