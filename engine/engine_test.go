package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/hdprman/engine/hd"
	"github.com/spaghettifunk/hdprman/engine/math"
	"github.com/spaghettifunk/hdprman/engine/prman"
	"github.com/spaghettifunk/hdprman/engine/riley"
	"github.com/spaghettifunk/hdprman/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	cloudA = hd.MustPath("/World/A")
	cloudB = hd.MustPath("/World/B")
	ground = hd.MustPath("/World/Ground")
)

func definePoints(t *testing.T, stage *scene.Stage, id hd.Path, n int) {
	t.Helper()
	require.NoError(t, stage.DefinePrim(id, hd.PrimTypePoints))
	require.NoError(t, stage.SetAttribute(id, hd.TokenPoints, make([]math.Vec3, n), hd.InterpolationVertex, hd.RolePoint))
}

func testConfig() *ApplicationConfig {
	cfg := DefaultApplicationConfig()
	cfg.LogLevel = "error"
	cfg.FrameInterval = ""
	cfg.Workers = 2
	return cfg
}

func TestEngineFrames(t *testing.T) {
	edits := 0
	game := &Game{
		ApplicationConfig: testConfig(),
		FnInitialize: func(stage *scene.Stage) error {
			definePoints(t, stage, cloudA, 3)
			definePoints(t, stage, cloudB, 4)
			return stage.DefinePrim(ground, "mesh")
		},
		FnUpdate: func(frame int, stage *scene.Stage) (map[hd.Path]hd.DirtyBits, error) {
			if frame == 0 {
				return nil, nil
			}
			edits++
			if err := stage.SetVisible(cloudB, false); err != nil {
				return nil, err
			}
			return map[hd.Path]hd.DirtyBits{cloudB: hd.DirtyVisibility, ground: hd.DirtyPoints}, nil
		},
	}

	e, err := New(game)
	require.NoError(t, err)
	assert.Equal(t, EngineStageBootComplete, e.CurrentStage())
	require.NoError(t, e.Initialize())
	assert.Equal(t, EngineStageInitialized, e.CurrentStage())
	assert.Equal(t, []hd.Path{cloudA, cloudB}, e.RenderIndex().RprimIDs())

	result, err := e.Frame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []hd.Path{cloudA, cloudB}, result.Synced)
	protos, insts := e.Riley().Stats()
	assert.Equal(t, 2, protos)
	assert.Equal(t, 2, insts)

	result, err = e.Frame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []hd.Path{cloudB}, result.Synced)
	assert.Equal(t, 1, edits)
	assert.Equal(t, 2, e.FrameCount())

	require.NoError(t, e.Shutdown())
	assert.Equal(t, EngineStageShuttingDown, e.CurrentStage())
	protos, insts = e.Riley().Stats()
	assert.Zero(t, protos)
	assert.Zero(t, insts)
	require.NoError(t, e.Shutdown())
}

func TestEngineRun(t *testing.T) {
	cfg := testConfig()
	cfg.Frames = 3
	updates := 0
	game := &Game{
		ApplicationConfig: cfg,
		FnInitialize: func(stage *scene.Stage) error {
			definePoints(t, stage, cloudA, 2)
			return nil
		},
		FnUpdate: func(frame int, stage *scene.Stage) (map[hd.Path]hd.DirtyBits, error) {
			updates++
			return map[hd.Path]hd.DirtyBits{cloudA: hd.DirtyPoints}, nil
		},
	}

	e, err := New(game)
	require.NoError(t, err)
	assert.Error(t, e.Run(context.Background()), "run before initialize")
	require.NoError(t, e.Initialize())
	assert.Error(t, e.Initialize())

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, 3, e.FrameCount())
	assert.Equal(t, 3, updates)
	passes, synced, _ := e.Metrics().Totals()
	assert.Equal(t, uint64(3), passes)
	assert.Equal(t, uint64(3), synced)
	require.NoError(t, e.Shutdown())
}

func TestEngineRunStopsOnUpdateError(t *testing.T) {
	boom := errors.New("boom")
	game := &Game{
		ApplicationConfig: testConfig(),
		FnInitialize:      func(stage *scene.Stage) error { return nil },
		FnUpdate: func(frame int, stage *scene.Stage) (map[hd.Path]hd.DirtyBits, error) {
			return nil, boom
		},
	}
	e, err := New(game)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	assert.ErrorIs(t, e.Run(context.Background()), boom)
	require.NoError(t, e.Shutdown())
}

func TestEngineRunCancelled(t *testing.T) {
	cfg := testConfig()
	cfg.FrameInterval = "1ms"
	game := &Game{
		ApplicationConfig: cfg,
		FnInitialize: func(stage *scene.Stage) error {
			definePoints(t, stage, cloudA, 1)
			return nil
		},
	}
	e, err := New(game)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, e.Run(ctx))
	require.NoError(t, e.Shutdown())
}

func TestEngineInitializeWatchFailure(t *testing.T) {
	cfg := testConfig()
	cfg.ScenePath = filepath.Join(t.TempDir(), "missing", "scene.toml")
	cfg.WatchScene = true
	game := &Game{
		ApplicationConfig: cfg,
		FnInitialize: func(stage *scene.Stage) error {
			definePoints(t, stage, cloudA, 1)
			return nil
		},
	}
	e, err := New(game)
	require.NoError(t, err)

	assert.Error(t, e.Initialize())
	require.NoError(t, e.Shutdown())
}

func TestEngineApplyStage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[prims]]
path = "/World/A"
type = "points"
  [[prims.attributes]]
  name = "points"
  interpolation = "vertex"
  vec3 = [[0.0, 0.0, 0.0]]

[[prims]]
path = "/World/B"
type = "points"

[[prims]]
path = "/World/Ground"
type = "mesh"
`), 0o644))

	cfg := testConfig()
	cfg.ScenePath = path
	e, err := New(&Game{ApplicationConfig: cfg})
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	_, err = e.Frame(context.Background())
	require.NoError(t, err)
	protoA := gprimProto(t, e, cloudA)

	// A moves, B goes away, C appears and Ground becomes points.
	next := scene.NewStage()
	definePoints(t, next, cloudA, 1)
	require.NoError(t, next.SetTransform(cloudA, math.NewMat4Translation(math.NewVec3(1, 0, 0))))
	cloudC := hd.MustPath("/World/C")
	definePoints(t, next, cloudC, 2)
	definePoints(t, next, ground, 5)

	require.NoError(t, e.applyStage(next))
	assert.Equal(t, []hd.Path{cloudA, cloudC, ground}, e.RenderIndex().RprimIDs())
	assert.True(t, e.RenderIndex().ChangeTracker().IsRprimDirty(cloudA))

	result, err := e.Frame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []hd.Path{cloudA, cloudC, ground}, result.Synced)
	assert.Equal(t, protoA, gprimProto(t, e, cloudA), "changed prims keep their renderer objects")

	protos, insts := e.Riley().Stats()
	assert.Equal(t, 3, protos)
	assert.Equal(t, 3, insts)
	require.NoError(t, e.Shutdown())
}

func gprimProto(t *testing.T, e *Engine, id hd.Path) riley.GeometryPrototypeID {
	t.Helper()
	rprim, ok := e.RenderIndex().GetRprim(id)
	require.True(t, ok)
	return rprim.(*prman.Gprim).PrototypeID()
}
