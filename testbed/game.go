package testbed

import (
	"github.com/chewxy/math32"
	"github.com/spaghettifunk/hdprman/engine"
	"github.com/spaghettifunk/hdprman/engine/core"
	"github.com/spaghettifunk/hdprman/engine/hd"
	"github.com/spaghettifunk/hdprman/engine/math"
	"github.com/spaghettifunk/hdprman/engine/scene"
)

// CloudPath is the prim animated by the test game.
var CloudPath = hd.MustPath("/World/Cloud")

// DustPath is a static prim with authored velocities.
var DustPath = hd.MustPath("/World/Dust")

type TestGame struct {
	*engine.Game
}

type gameState struct {
	rings      int
	perRing    int
	spinPerSec float32
}

func NewTestGame(cfg *engine.ApplicationConfig) *TestGame {
	if cfg == nil {
		cfg = engine.DefaultApplicationConfig()
		cfg.Name = "hdPrman testbed"
		cfg.LogLevel = "debug"
		cfg.Frames = 48
	}
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: cfg,
			State: &gameState{
				rings:      8,
				perRing:    32,
				spinPerSec: 0.5,
			},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

// Initialize authors a ring shaped cloud and a small drifting dust prim.
func (g *TestGame) Initialize(stage *scene.Stage) error {
	core.LogInfo("initializing testbed...")
	st := g.state()

	if err := stage.DefinePrim(CloudPath, hd.PrimTypePoints); err != nil {
		return err
	}
	points := st.cloud(0)
	if err := stage.SetAttribute(CloudPath, hd.TokenPoints, points, hd.InterpolationVertex, hd.RolePoint); err != nil {
		return err
	}
	widths := make([]float32, len(points))
	colors := make([]math.Vec3, len(points))
	for i := range points {
		widths[i] = 0.05
		t := float32(i) / float32(len(points))
		colors[i] = math.NewVec3(t, 0.2, 1-t)
	}
	if err := stage.SetAttribute(CloudPath, hd.TokenWidths, widths, hd.InterpolationVertex, hd.RoleNone); err != nil {
		return err
	}
	if err := stage.SetAttribute(CloudPath, hd.TokenDisplayColor, colors, hd.InterpolationVertex, hd.RoleColor); err != nil {
		return err
	}

	if err := stage.DefinePrim(DustPath, hd.PrimTypePoints); err != nil {
		return err
	}
	dust := []math.Vec3{math.NewVec3(0, 2, 0), math.NewVec3(0.5, 2, 0), math.NewVec3(1, 2, 0)}
	vel := []math.Vec3{math.NewVec3(0, -1, 0), math.NewVec3(0, -1, 0), math.NewVec3(0, -1, 0)}
	if err := stage.SetAttribute(DustPath, hd.TokenPoints, dust, hd.InterpolationVertex, hd.RolePoint); err != nil {
		return err
	}
	if err := stage.SetAttribute(DustPath, hd.TokenVelocities, vel, hd.InterpolationVertex, hd.RoleVector); err != nil {
		return err
	}
	return stage.SetAttribute(DustPath, hd.TokenWidths, float32(0.02), hd.InterpolationConstant, hd.RoleNone)
}

// Update spins the cloud around the Y axis.
func (g *TestGame) Update(frame int, stage *scene.Stage) (map[hd.Path]hd.DirtyBits, error) {
	fps := g.ApplicationConfig.Render.FPS
	if fps <= 0 {
		fps = 24
	}
	seconds := float32(frame) / fps
	points := g.state().cloud(seconds)
	if err := stage.SetAttribute(CloudPath, hd.TokenPoints, points, hd.InterpolationVertex, hd.RolePoint); err != nil {
		return nil, err
	}
	return map[hd.Path]hd.DirtyBits{CloudPath: hd.DirtyPoints}, nil
}

func (g *TestGame) Shutdown() error {
	core.LogInfo("shutting down testbed...")
	return nil
}

func (st *gameState) cloud(seconds float32) []math.Vec3 {
	out := make([]math.Vec3, 0, st.rings*st.perRing)
	spin := st.spinPerSec * seconds
	for r := 0; r < st.rings; r++ {
		radius := 1 + 0.25*float32(r)
		y := float32(r) * 0.1
		for i := 0; i < st.perRing; i++ {
			a := 2*math32.Pi*float32(i)/float32(st.perRing) + spin
			out = append(out, math.NewVec3(radius*math32.Cos(a), y, radius*math32.Sin(a)))
		}
	}
	return out
}
