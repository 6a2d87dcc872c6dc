package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"github.com/gekko3d/fplus"
	"github.com/gekko3d/fplus/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type sceneCamera struct {
	Position mgl32.Vec3 `json:"position"`
	Target   mgl32.Vec3 `json:"target"`
	Fov      float32    `json:"fov"`
	Near     float32    `json:"near"`
	Far      float32    `json:"far"`
	Width    int        `json:"width"`
	Height   int        `json:"height"`
}

type sceneLight struct {
	ID        uuid.UUID  `json:"id"`
	Type      string     `json:"type"`
	Position  mgl32.Vec3 `json:"position"`
	Direction mgl32.Vec3 `json:"direction"`
	Color     [3]float32 `json:"color"`
	Intensity float32    `json:"intensity"`
	Range     float32    `json:"range"`
	SpotAngle float32    `json:"spotAngle"`
	Inner     float32    `json:"innerSpotAngle"`
}

// scene is the JSON description of one frame of input.
type scene struct {
	Camera         sceneCamera     `json:"camera"`
	Lights         []sceneLight    `json:"lights"`
	MainLightIndex *int            `json:"mainLightIndex,omitempty"`
	Config         json.RawMessage `json:"config,omitempty"`
}

func loadScene(path string) (*scene, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	var s scene
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse scene %s: %w", path, err)
	}
	return &s, nil
}

// randomScene scatters point and spot lights in front of a default camera.
func randomScene(count int, seed int64) *scene {
	rng := rand.New(rand.NewSource(seed))
	s := &scene{
		Camera: sceneCamera{Target: mgl32.Vec3{0, 0, 1}, Fov: 60, Near: 0.1, Far: 100, Width: 1920, Height: 1080},
	}
	for i := 0; i < count; i++ {
		l := sceneLight{
			ID:        uuid.New(),
			Type:      "point",
			Position:  mgl32.Vec3{rng.Float32()*60 - 30, rng.Float32()*20 - 10, rng.Float32() * 90},
			Color:     [3]float32{rng.Float32(), rng.Float32(), rng.Float32()},
			Intensity: 1 + rng.Float32()*4,
			Range:     1 + rng.Float32()*9,
		}
		if rng.Intn(3) == 0 {
			l.Type = "spot"
			l.Direction = mgl32.Vec3{rng.Float32()*2 - 1, rng.Float32()*2 - 1, rng.Float32()*2 - 1}
			l.SpotAngle = 20 + rng.Float32()*100
		}
		s.Lights = append(s.Lights, l)
	}
	return s
}

// config returns the scene's config block decoded over the defaults.
func (s *scene) config() (fplus.Config, error) {
	if len(s.Config) == 0 {
		return fplus.DefaultConfig(), nil
	}
	return fplus.ParseConfig(s.Config)
}

func (s *scene) camera() *core.Camera {
	c := s.Camera
	cam := core.NewCamera(c.Width, c.Height)
	cam.Position = c.Position
	if c.Fov > 0 {
		cam.FieldOfView = c.Fov
	}
	if c.Near > 0 {
		cam.NearClipPlane = c.Near
	}
	if c.Far > 0 {
		cam.FarClipPlane = c.Far
	}
	if c.Target != c.Position {
		cam.LookAt(c.Target)
	}
	return cam
}

func (s *scene) renderingData(maxPerObject int) (*fplus.RenderingData, error) {
	lights := make([]core.Light, 0, len(s.Lights))
	for i, sl := range s.Lights {
		var l core.Light
		switch sl.Type {
		case "point", "":
			l = core.NewPointLight(sl.Position, sl.Range)
		case "spot":
			l = core.NewSpotLight(sl.Position, sl.Direction, sl.Range, sl.SpotAngle)
			l.InnerSpotAngle = sl.Inner
		case "directional":
			l = core.NewDirectionalLight(sl.Direction)
		default:
			return nil, fmt.Errorf("light %d: unknown type %q", i, sl.Type)
		}
		if sl.ID != uuid.Nil {
			l.ID = sl.ID
		}
		if sl.Color != [3]float32{} {
			l.Color = sl.Color
		}
		if sl.Intensity > 0 {
			l.Intensity = sl.Intensity
		}
		lights = append(lights, l)
	}

	mainIndex := -1
	if s.MainLightIndex != nil {
		mainIndex = *s.MainLightIndex
	}
	additional := len(lights)
	if mainIndex >= 0 && mainIndex < len(lights) {
		additional--
	}
	return &fplus.RenderingData{
		Camera: s.camera(),
		Lights: fplus.LightData{
			VisibleLights:                     lights,
			MainLightIndex:                    mainIndex,
			AdditionalLightsCount:             additional,
			MaxPerObjectAdditionalLightsCount: maxPerObject,
			SupportsMixedLighting:             true,
		},
	}, nil
}
