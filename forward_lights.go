package fplus

import (
	"errors"
	"fmt"

	"github.com/gekko3d/fplus/rt/core"
	"github.com/gekko3d/fplus/rt/gpu"
	"github.com/gekko3d/fplus/rt/jobs"
	"github.com/gekko3d/fplus/rt/radix"
	"github.com/gekko3d/fplus/rt/tiling"
	"github.com/go-gl/mathgl/mgl32"
)

var ErrTooManyLights = errors.New("too many visible lights")

// LightData is the light list handed over by visibility culling.
type LightData struct {
	VisibleLights []core.Light
	// MainLightIndex is -1 when there is no main light.
	MainLightIndex                    int
	AdditionalLightsCount             int
	MaxPerObjectAdditionalLightsCount int
	SupportsMixedLighting             bool
}

type RenderingData struct {
	Camera *core.Camera
	Lights LightData
}

// FrameOutput holds everything Setup produced for one frame. All light
// indexed arrays are in depth-sorted order unless stated otherwise.
type FrameOutput struct {
	Frame       uint64
	LightCount  int
	WorldToView mgl32.Mat4

	// SortedIndices maps sorted position to visible light index.
	SortedIndices        []int
	MinMaxZ              []tiling.LightMinMaxZ
	Lights               []tiling.TilingLightData
	SortedLightConstants []LightConstants

	Bins     tiling.BinLayout
	ZBins    []tiling.ZBin
	BinMasks []uint32

	Tiles      tiling.TileLayout
	TileMasks  []uint32
	GroupMasks []uint32

	// PerObjectLightIndices is indexed by visible light index.
	PerObjectLightIndices []int32
	AdditionalLightsCount int
	MainLight             LightConstants
	AdditionalLights      []LightConstants
	MixedLighting         MixedLightingSetup
}

// TileLights returns the sorted indices of the lights in tile (x, y).
func (o *FrameOutput) TileLights(x, y int) []int {
	if o.Tiles.WordsPerTile == 0 {
		return nil
	}
	return tiling.DecodeMask(o.TileMasks, o.Tiles.TileIndex(x, y), o.Tiles.WordsPerTile)
}

// DepthLights returns the sorted indices of the lights the Z-bin for view
// depth z lists.
func (o *FrameOutput) DepthLights(z float32) []int {
	if o.Tiles.WordsPerTile == 0 {
		return nil
	}
	return tiling.DecodeMask(o.BinMasks, o.Bins.BinIndex(z), o.Tiles.WordsPerTile)
}

type Option func(*ForwardLights)

func WithLogger(l Logger) Option {
	return func(f *ForwardLights) {
		if l != nil {
			f.log = l
		}
	}
}

// WithDevice uploads through d instead of host memory.
func WithDevice(d gpu.Device) Option {
	return func(f *ForwardLights) { f.device = d }
}

func WithScheduler(s *jobs.Scheduler) Option {
	return func(f *ForwardLights) { f.sched = s }
}

// ForwardLights culls and tiles the visible lights every frame and publishes
// the results as GPU buffers and global parameters.
type ForwardLights struct {
	cfg      Config
	log      Logger
	device   gpu.Device
	sched    *jobs.Scheduler
	buffers  *gpu.BufferManager
	profiler *Profiler
	frame    uint64
}

func NewForwardLights(cfg Config, opts ...Option) (*ForwardLights, error) {
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f := &ForwardLights{
		cfg:      cfg,
		log:      NewNopLogger(),
		profiler: NewProfiler(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.device == nil {
		f.device = gpu.NewHostDevice()
	}
	if f.sched == nil {
		f.sched = jobs.NewScheduler(cfg.Workers)
	}
	f.buffers = gpu.NewBufferManager(f.device, gpu.NewGlobals())
	return f, nil
}

func (f *ForwardLights) Config() Config              { return f.cfg }
func (f *ForwardLights) Globals() *gpu.Globals       { return f.buffers.Globals }
func (f *ForwardLights) Buffers() *gpu.BufferManager { return f.buffers }
func (f *ForwardLights) Profiler() *Profiler         { return f.profiler }
func (f *ForwardLights) Scheduler() *jobs.Scheduler  { return f.sched }
func (f *ForwardLights) Release()                    { f.buffers.Release() }

// Setup runs the culling pipeline for one frame: depth bounds, sort,
// reorder, shape extraction, then Z-binning and both tiling levels in
// parallel. It waits for all jobs, uploads the results and computes the
// light constants.
func (f *ForwardLights) Setup(data *RenderingData) (*FrameOutput, error) {
	cam := data.Camera
	if cam == nil {
		return nil, fmt.Errorf("%w: no camera", core.ErrInvalidCamera)
	}
	if err := cam.Validate(); err != nil {
		return nil, err
	}
	lights := data.Lights.VisibleLights
	n := len(lights)
	if n > tiling.MaxBinnedLights {
		return nil, fmt.Errorf("%w: %d, at most %d", ErrTooManyLights, n, tiling.MaxBinnedLights)
	}

	f.frame++
	f.profiler.Reset()

	bins := tiling.NewBinLayout(cam, f.cfg.BinMode, f.cfg.UniformBinCount)
	tiles := tiling.NewTileLayout(cam, f.cfg.TileWidth, n, f.cfg.MaxMarchSteps)
	words := tiles.WordsPerTile
	out := &FrameOutput{
		Frame:                f.frame,
		LightCount:           n,
		WorldToView:          cam.WorldToView(),
		SortedIndices:        make([]int, n),
		MinMaxZ:              make([]tiling.LightMinMaxZ, n),
		Lights:               make([]tiling.TilingLightData, n),
		SortedLightConstants: make([]LightConstants, n),
		Bins:                 bins,
		ZBins:                make([]tiling.ZBin, bins.BinCount),
		BinMasks:             make([]uint32, bins.BinCount*words),
		Tiles:                tiles,
		TileMasks:            make([]uint32, tiles.TileCount()*words),
		GroupMasks:           make([]uint32, tiles.GroupCount()*words),
	}

	f.profiler.BeginScope("Culling")
	if n == 0 {
		for b := range out.ZBins {
			out.ZBins[b] = tiling.EmptyZBin()
		}
	} else {
		f.cull(out, lights, cam)
	}
	f.profiler.EndScope("Culling")

	if debugChecks || f.cfg.Debug {
		if err := checkSortedDepth(out.MinMaxZ); err != nil {
			if debugChecks {
				panic(err)
			}
			f.log.Errorf("frame %d: %v", f.frame, err)
		}
	}

	f.profiler.BeginScope("Constants")
	f.setupLightConstants(out, &data.Lights)
	f.profiler.EndScope("Constants")

	f.profiler.BeginScope("Upload")
	err := f.upload(out, &data.Lights)
	f.profiler.EndScope("Upload")
	if err != nil {
		return nil, err
	}

	f.profiler.SetCount("Lights", n)
	f.profiler.SetCount("Bins", bins.BinCount)
	f.profiler.SetCount("Tiles", tiles.TileCount())
	f.profiler.SetCount("Groups", tiles.GroupCount())
	f.profiler.SetCount("AdditionalLights", out.AdditionalLightsCount)
	f.log.Debugf("frame %d: %d lights, %d bins from %d, %dx%d tiles, %d words per tile",
		f.frame, n, bins.BinCount, bins.BinOffset, tiles.TileXCount, tiles.TileYCount, words)
	return out, nil
}

// cull schedules the job graph and waits for it.
func (f *ForwardLights) cull(out *FrameOutput, lights []core.Light, cam *core.Camera) {
	n := len(lights)
	batch := f.cfg.BatchSize
	worldToView := out.WorldToView
	unsorted := make([]tiling.LightMinMaxZ, n)
	meanZ := make([]float32, n)
	sortedLights := make([]core.Light, n)
	tiles := &out.Tiles

	minMaxHandle := f.sched.ScheduleParallel(n, batch, jobs.Handle{}, func(i int) {
		unsorted[i] = tiling.LightDepthBounds(&lights[i], worldToView, cam.FarClipPlane)
		meanZ[i] = unsorted[i].MeanZ()
	})

	sortHandle := f.sched.Schedule(minMaxHandle, func() {
		copy(out.SortedIndices, radix.SortedIndices(meanZ))
	})

	reorderLights := f.sched.ScheduleBatches(n, batch, sortHandle, func(start, end int) {
		radix.Reorder(sortedLights[start:end], lights, out.SortedIndices[start:end])
	})
	reorderMinMax := f.sched.ScheduleBatches(n, batch, sortHandle, func(start, end int) {
		radix.Reorder(out.MinMaxZ[start:end], unsorted, out.SortedIndices[start:end])
	})
	reorderHandle := jobs.CombineDependencies(reorderLights, reorderMinMax)

	extractHandle := f.sched.ScheduleParallel(n, batch, reorderHandle, func(i int) {
		out.Lights[i] = tiling.ExtractTilingLight(&sortedLights[i], cam, worldToView)
		out.SortedLightConstants[i] = NewLightConstants(&sortedLights[i])
	})

	binningHandle := f.sched.ScheduleParallel(out.Bins.BinCount, tiling.BinningBatchSize, reorderHandle, func(b int) {
		tiling.BinLights(b, out.Bins, out.MinMaxZ, tiles.WordsPerTile, out.ZBins, out.BinMasks)
	})
	coarseHandle := f.sched.ScheduleParallel(tiles.GroupCount(), 1, extractHandle, func(g int) {
		tiling.CoarseTileGroup(g, tiles, out.Lights, out.MinMaxZ, out.GroupMasks)
	})
	fineHandle := f.sched.ScheduleParallel(tiles.GroupCount(), 1, extractHandle, func(g int) {
		tiling.FineTileGroup(g, tiles, out.Lights, out.MinMaxZ, out.TileMasks)
	})

	jobs.CompleteAll(binningHandle, coarseHandle, fineHandle)
}

func checkSortedDepth(minMaxZ []tiling.LightMinMaxZ) error {
	for i := 1; i < len(minMaxZ); i++ {
		if minMaxZ[i].MeanZ() < minMaxZ[i-1].MeanZ() {
			return fmt.Errorf("lights out of depth order at %d: %v < %v", i, minMaxZ[i].MeanZ(), minMaxZ[i-1].MeanZ())
		}
	}
	return nil
}

func (f *ForwardLights) setupLightConstants(out *FrameOutput, ld *LightData) {
	lights := ld.VisibleLights
	setup := MixedLightingNone

	out.MainLight = DefaultLightConstants()
	if ld.MainLightIndex >= 0 && ld.MainLightIndex < len(lights) {
		main := &lights[ld.MainLightIndex]
		out.MainLight = NewLightConstants(main)
		detectMixedLighting(main, ld.SupportsMixedLighting, &setup)
	}

	out.PerObjectLightIndices, out.AdditionalLightsCount = SetupPerObjectLightIndices(
		len(lights), ld.MainLightIndex, ld.AdditionalLightsCount, f.cfg.MaxVisibleAdditionalLights)

	if out.AdditionalLightsCount > 0 {
		out.AdditionalLights = make([]LightConstants, 0, out.AdditionalLightsCount)
		for i := 0; i < len(lights) && len(out.AdditionalLights) < f.cfg.MaxVisibleAdditionalLights; i++ {
			if i == ld.MainLightIndex {
				continue
			}
			out.AdditionalLights = append(out.AdditionalLights, NewLightConstants(&lights[i]))
			detectMixedLighting(&lights[i], ld.SupportsMixedLighting, &setup)
		}
	}
	out.MixedLighting = setup
}

func (f *ForwardLights) upload(out *FrameOutput, ld *LightData) error {
	zbinWords := make([]uint32, len(out.ZBins))
	for i, zb := range out.ZBins {
		zbinWords[i] = zb.Pack()
	}

	uploads := []struct {
		id     gpu.PropertyID
		data   []byte
		count  int
		stride int
	}{
		{gpu.ZBinBuffer, gpu.PackUint32s(zbinWords), len(zbinWords), 4},
		{gpu.ZBinMaskBuffer, gpu.PackUint32s(out.BinMasks), len(out.BinMasks), 4},
		{gpu.TileBuffer, gpu.PackUint32s(out.TileMasks), len(out.TileMasks), 4},
		{gpu.GroupBuffer, gpu.PackUint32s(out.GroupMasks), len(out.GroupMasks), 4},
		{gpu.FPLightBuffer, packLightConstants(out.SortedLightConstants), len(out.SortedLightConstants), lightConstantsStride},
		{gpu.AdditionalLightsBuffer, packLightConstants(out.AdditionalLights), len(out.AdditionalLights), lightConstantsStride},
		{gpu.AdditionalLightsIndices, gpu.PackInt32s(out.PerObjectLightIndices), len(out.PerObjectLightIndices), 4},
	}
	for _, u := range uploads {
		grew, err := f.buffers.Upload(u.id, u.data, u.count, u.stride)
		if err != nil {
			return err
		}
		if grew {
			f.log.Debugf("buffer %s resized to %d elements", u.id, f.buffers.Capacity(u.id))
		}
	}

	g := f.buffers.Globals
	bins, tiles := out.Bins, out.Tiles
	g.SetInt(gpu.ZBinOffset, int32(bins.BinOffset))
	g.SetFloat(gpu.ZBinFactor, bins.ZFactor)
	g.SetInt(gpu.ZBinMode, int32(bins.Mode))
	g.SetInt(gpu.ZBinCount, int32(bins.BinCount))
	g.SetInt(gpu.ZBinLightCount, int32(out.LightCount))
	g.SetMatrix(gpu.FPWorldToViewMatrix, out.WorldToView)
	g.SetVector(gpu.InvNormalizedTileSize, mgl32.Vec4{
		float32(tiles.ScreenWidth) / float32(tiles.TileWidth),
		float32(tiles.ScreenHeight) / float32(tiles.TileWidth),
		0, 0,
	})
	g.SetInt(gpu.TileXCount, int32(tiles.TileXCount))
	g.SetInt(gpu.TileYCount, int32(tiles.TileYCount))
	g.SetInt(gpu.GroupXCount, int32(tiles.GroupXCount))
	g.SetInt(gpu.GroupYCount, int32(tiles.GroupYCount))
	g.SetInt(gpu.LightCount, int32(out.LightCount))
	g.SetInt(gpu.WordsPerTile, int32(tiles.WordsPerTile))
	g.SetInt(gpu.TileCount, int32(tiles.TileCount()))
	g.SetInt(gpu.TileSize, int32(tiles.TileWidth))

	g.SetVector(gpu.MainLightPosition, out.MainLight.Position)
	g.SetVector(gpu.MainLightColor, out.MainLight.Color)
	g.SetVector(gpu.MainLightOcclusionProbes, out.MainLight.OcclusionProbeChannel)
	if out.AdditionalLightsCount > 0 {
		g.SetVector(gpu.AdditionalLightsCount, mgl32.Vec4{float32(ld.MaxPerObjectAdditionalLightsCount), 0, 0, 0})
	} else {
		g.SetVector(gpu.AdditionalLightsCount, mgl32.Vec4{})
	}
	g.SetInt(gpu.MixedLightingSetup, int32(out.MixedLighting))
	return nil
}
