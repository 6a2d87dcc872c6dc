package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/gekko3d/fplus"
	"github.com/gekko3d/fplus/rt/gpu"
	"github.com/gekko3d/fplus/rt/jobs"
)

type options struct {
	scenePath  string
	configPath string
	frames     int
	useGPU     bool
	debug      bool
	random     int
	seed       int64
	workers    int
}

func (o options) check() error {
	switch {
	case o.scenePath == "" && o.random <= 0:
		return errors.New("one of -scene or -random is required")
	case o.scenePath != "" && o.random > 0:
		return errors.New("-scene and -random are exclusive")
	case o.frames < 1:
		return fmt.Errorf("-frames must be at least 1, got %d", o.frames)
	case o.workers < 0:
		return fmt.Errorf("-workers must not be negative, got %d", o.workers)
	}
	return nil
}

func main() {
	var o options
	flag.StringVar(&o.scenePath, "scene", "", "JSON scene file")
	flag.StringVar(&o.configPath, "config", "", "JSON config file, overrides the scene's config block")
	flag.IntVar(&o.frames, "frames", 1, "Number of frames to set up")
	flag.BoolVar(&o.useGPU, "gpu", false, "Upload to a headless WebGPU device")
	flag.BoolVar(&o.debug, "debug", os.Getenv("DEBUG") == "1", "Enable debug logging and invariant checks")
	flag.IntVar(&o.random, "random", 0, "Generate a random scene with this many lights")
	flag.Int64Var(&o.seed, "seed", 1, "Random scene seed")
	flag.IntVar(&o.workers, "workers", 0, "Worker count, 0 for one per CPU minus one")
	flag.Parse()

	log := fplus.NewDefaultLogger("fplus", o.debug)
	if err := o.check(); err != nil {
		log.Errorf("%v", err)
		flag.Usage()
		os.Exit(2)
	}
	if err := run(o, log); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(o options, log *fplus.DefaultLogger) error {
	var sc *scene
	if o.scenePath != "" {
		var err error
		if sc, err = loadScene(o.scenePath); err != nil {
			return err
		}
	} else {
		sc = randomScene(o.random, o.seed)
	}

	cfg, err := sc.config()
	if err != nil {
		return fmt.Errorf("scene config: %w", err)
	}
	if o.configPath != "" {
		if cfg, err = fplus.LoadConfig(o.configPath); err != nil {
			return err
		}
	}
	if o.workers > 0 {
		cfg.Workers = o.workers
	}
	cfg.Debug = cfg.Debug || o.debug

	opts := []fplus.Option{
		fplus.WithLogger(log.Named("lights")),
		fplus.WithScheduler(jobs.NewScheduler(cfg.Workers)),
	}
	var host *gpu.HostDevice
	if o.useGPU {
		dev, err := gpu.NewHeadlessWGPUDevice()
		if err != nil {
			return fmt.Errorf("webgpu: %w", err)
		}
		defer dev.Release()
		opts = append(opts, fplus.WithDevice(dev))
	} else {
		host = gpu.NewHostDevice()
		opts = append(opts, fplus.WithDevice(host))
	}

	fl, err := fplus.NewForwardLights(cfg, opts...)
	if err != nil {
		return err
	}
	defer fl.Release()

	data, err := sc.renderingData(cfg.MaxVisibleAdditionalLights)
	if err != nil {
		return err
	}

	var out *fplus.FrameOutput
	for i := 0; i < o.frames; i++ {
		if out, err = fl.Setup(data); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}

	log.Infof("%d lights, %d z-bins (offset %d, %s), %dx%d tiles, %d tiles lit, mixed lighting %s",
		out.LightCount, out.Bins.BinCount, out.Bins.BinOffset, out.Bins.Mode,
		out.Tiles.TileXCount, out.Tiles.TileYCount, litTiles(out), out.MixedLighting)
	if host != nil {
		log.Infof("%d buffers live, %d created", host.Live(), host.Created())
	}
	if log.DebugEnabled() {
		dumpGlobals(log, fl.Globals())
	}
	log.Infof("%d jobs scheduled over %d frames\n%s", fl.Scheduler().Scheduled(), fl.Profiler().Frames(), fl.Profiler().GetStatsString())
	return nil
}

func litTiles(out *fplus.FrameOutput) int {
	lit := 0
	for y := 0; y < out.Tiles.TileYCount; y++ {
		for x := 0; x < out.Tiles.TileXCount; x++ {
			if len(out.TileLights(x, y)) > 0 {
				lit++
			}
		}
	}
	return lit
}

// dumpGlobals logs every published parameter that has a value.
func dumpGlobals(log fplus.Logger, g *gpu.Globals) {
	for _, id := range gpu.Properties() {
		if v, ok := g.Int(id); ok {
			log.Debugf("%-26s %d", id, v)
		} else if v, ok := g.Float(id); ok {
			log.Debugf("%-26s %g", id, v)
		} else if v, ok := g.Vector(id); ok {
			log.Debugf("%-26s %v", id, v)
		} else if v, ok := g.Matrix(id); ok {
			log.Debugf("%-26s %v", id, v)
		} else if b, ok := g.Buffer(id); ok {
			log.Debugf("%-26s buffer %d bytes", id, b.Size())
		}
	}
}
