package prman

import (
	"sync"
	"testing"

	"github.com/spaghettifunk/hdprman/engine/hd"
	"github.com/spaghettifunk/hdprman/engine/math"
	"github.com/spaghettifunk/hdprman/engine/riley"
	"github.com/spaghettifunk/hdprman/engine/scene"
	"github.com/stretchr/testify/require"
)

var cloudPath = hd.MustPath("/World/Cloud")

// countingDelegate records every Get so tests can assert which attributes
// a conversion read.
type countingDelegate struct {
	*scene.Stage

	mu   sync.Mutex
	gets map[hd.Token]int
}

func newCountingDelegate(stage *scene.Stage) *countingDelegate {
	return &countingDelegate{Stage: stage, gets: make(map[hd.Token]int)}
}

func (c *countingDelegate) Get(id hd.Path, key hd.Token) hd.Value {
	c.mu.Lock()
	c.gets[key]++
	c.mu.Unlock()
	return c.Stage.Get(id, key)
}

func (c *countingDelegate) getCount(key hd.Token) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gets[key]
}

func linePoints(n int) []math.Vec3 {
	pts := make([]math.Vec3, n)
	for i := range pts {
		pts[i] = math.NewVec3(float32(i), 0, 0)
	}
	return pts
}

// pointsStage defines a points prim at cloudPath. A negative n leaves the
// points attribute unauthored.
func pointsStage(t *testing.T, n int) *scene.Stage {
	t.Helper()
	stage := scene.NewStage()
	require.NoError(t, stage.DefinePrim(cloudPath, hd.PrimTypePoints))
	if n >= 0 {
		require.NoError(t, stage.SetAttribute(cloudPath, hd.TokenPoints, linePoints(n), hd.InterpolationVertex, hd.RolePoint))
	}
	return stage
}

func newTestRenderParam(mutate func(*Config)) *RenderParam {
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	return NewRenderParam(cfg, riley.NewMemory(0))
}

func withVelocityBlur(c *Config) {
	c.SceneIndexPlugins = []string{PluginVelocityBlur}
}

type primvarsCall struct {
	uniform, vertex, varying, facevarying int
	time                                  *float32
}

// stubConverter stands in for the shared helpers. It reports count points
// from the velocity helper and records the primvar calls it receives.
type stubConverter struct {
	count          int
	positionsCalls int
	primvarsCalls  []primvarsCall
}

func (s *stubConverter) ConvertPointsPrimvarForPoints(rp *RenderParam, sd hd.SceneDelegate, id hd.Path, primvars *riley.PrimVarList) int {
	primvars.SetDetail(1, s.count, s.count, s.count)
	primvars.SetPointDetail(riley.RixStr.K_P, make([]math.Vec3, s.count), riley.DetailVertex)
	return s.count
}

func (s *stubConverter) ConvertPositions(rp *RenderParam, sd hd.SceneDelegate, id hd.Path, npoints int, primvars *riley.PrimVarList) float32 {
	s.positionsCalls++
	return rp.ConvertPositions(sd, id, npoints, primvars)
}

func (s *stubConverter) ConvertPrimvars(sd hd.SceneDelegate, id hd.Path, primvars *riley.PrimVarList, uniform, vertex, varying, facevarying int, time *float32) []hd.GeomSubset {
	s.primvarsCalls = append(s.primvarsCalls, primvarsCall{uniform, vertex, varying, facevarying, time})
	return nil
}
