package prman

import (
	"testing"

	"github.com/spaghettifunk/hdprman/engine/hd"
	"github.com/spaghettifunk/hdprman/engine/math"
	"github.com/spaghettifunk/hdprman/engine/riley"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigNormalized(t *testing.T) {
	t.Parallel()

	c := Config{MotionSamples: 99, FPS: -1, ShutterOpen: 1, ShutterClose: 0}.Normalized()
	assert.Equal(t, MaxTimeSamples, c.MotionSamples)
	assert.Equal(t, float32(24), c.FPS)
	assert.Equal(t, float32(0), c.ShutterOpen)
	assert.Equal(t, float32(1), c.ShutterClose)

	assert.Equal(t, 1, Config{}.Normalized().MotionSamples)
}

func TestMotionSampleTimes(t *testing.T) {
	t.Parallel()

	rp := newTestRenderParam(func(c *Config) { c.MotionSamples = 3 })
	assert.Equal(t, []float32{0, 0.25, 0.5}, rp.MotionSampleTimes())

	single := newTestRenderParam(func(c *Config) { c.MotionSamples = 1 })
	assert.Equal(t, []float32{0}, single.MotionSampleTimes())

	a := newTestRenderParam(nil)
	b := newTestRenderParam(nil)
	assert.NotEqual(t, a.SessionID(), b.SessionID())
}

func TestConvertPositionsSampled(t *testing.T) {
	t.Parallel()

	stage := pointsStage(t, -1)
	first := linePoints(2)
	second := []math.Vec3{math.NewVec3(0, 1, 0), math.NewVec3(1, 1, 0)}
	require.NoError(t, stage.SetTimeSamples(cloudPath, hd.TokenPoints, []float32{0, 0.5}, []interface{}{first, second}))

	rp := newTestRenderParam(nil)
	pl := riley.NewPrimVarList(1, 2, 2, 2)
	at := rp.ConvertPositions(stage, cloudPath, 2, pl)

	assert.Equal(t, float32(0), at)
	assert.Equal(t, []float32{0, 0.5}, pl.Times())
	samples, ok := pl.PointSamples(riley.RixStr.K_P)
	require.True(t, ok)
	assert.Equal(t, [][]math.Vec3{first, second}, samples)
	assert.NoError(t, pl.Validate())
}

func TestConvertPositionsDropsMismatchedSamples(t *testing.T) {
	t.Parallel()

	stage := pointsStage(t, -1)
	require.NoError(t, stage.SetTimeSamples(cloudPath, hd.TokenPoints, []float32{0.25, 0.5},
		[]interface{}{linePoints(3), linePoints(2)}))

	rp := newTestRenderParam(nil)
	pl := riley.NewPrimVarList(1, 2, 2, 2)
	at := rp.ConvertPositions(stage, cloudPath, 2, pl)

	assert.Equal(t, float32(0.5), at)
	p, ok := pl.Get(riley.RixStr.K_P)
	require.True(t, ok)
	assert.Equal(t, 1, p.Samples)
	assert.Equal(t, linePoints(2), p.Data)
}

func TestConvertPositionsKeepsShutterSamples(t *testing.T) {
	t.Parallel()

	early := []math.Vec3{math.NewVec3(0, -1, 0), math.NewVec3(1, -1, 0)}
	open := linePoints(2)
	shutterClose := []math.Vec3{math.NewVec3(0, 1, 0), math.NewVec3(1, 1, 0)}

	stage := pointsStage(t, -1)
	require.NoError(t, stage.SetTimeSamples(cloudPath, hd.TokenPoints, []float32{-1, 0, 0.5},
		[]interface{}{early, open, shutterClose}))

	rp := newTestRenderParam(nil)
	pl := riley.NewPrimVarList(1, 2, 2, 2)
	at := rp.ConvertPositions(stage, cloudPath, 2, pl)

	assert.Equal(t, float32(0), at)
	assert.Equal(t, []float32{0, 0.5}, pl.Times())
	samples, ok := pl.PointSamples(riley.RixStr.K_P)
	require.True(t, ok)
	assert.Equal(t, [][]math.Vec3{open, shutterClose}, samples)
}

func TestShutterSamples(t *testing.T) {
	t.Parallel()

	values := func(n int) []hd.Value {
		out := make([]hd.Value, n)
		for i := range out {
			out[i] = hd.NewValue(float32(i))
		}
		return out
	}

	tests := []struct {
		name  string
		times []float32
		max   int
		want  []float32
	}{
		{"inside only", []float32{-1, 0, 0.25, 0.5, 2}, 4, []float32{0, 0.25, 0.5}},
		{"unsorted", []float32{0.5, -1, 0}, 4, []float32{0, 0.5}},
		{"bracketing", []float32{-2, -1, 1, 3}, 4, []float32{-1, 1}},
		{"before only", []float32{-2, -1}, 4, []float32{-1}},
		{"thinned", []float32{0, 0.1, 0.2, 0.3, 0.5}, 2, []float32{0, 0.5}},
		{"single", []float32{0, 0.25, 0.5}, 1, []float32{0}},
		{"none", nil, 2, []float32{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			times, vals := shutterSamples(tt.times, values(len(tt.times)), 0, 0.5, tt.max)
			assert.Equal(t, tt.want, times)
			assert.Len(t, vals, len(tt.want))
		})
	}
}
