package prman

import (
	"testing"

	"github.com/spaghettifunk/hdprman/engine/hd"
	"github.com/spaghettifunk/hdprman/engine/math"
	"github.com/spaghettifunk/hdprman/engine/riley"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertPointsPrimvarForPointsVelocities(t *testing.T) {
	t.Parallel()

	stage := pointsStage(t, 2)
	vel := []math.Vec3{math.NewVec3(24, 0, 0), math.NewVec3(24, 0, 0)}
	require.NoError(t, stage.SetAttribute(cloudPath, hd.TokenVelocities, vel, hd.InterpolationVertex, hd.RoleVector))

	// Shutter [0, 0.5] frames at 24fps moves 24 units/s by 0.5 units.
	rp := newTestRenderParam(withVelocityBlur)
	pl := riley.NewEmptyPrimVarList()
	n := ConvertPointsPrimvarForPoints(rp, stage, cloudPath, pl)
	require.Equal(t, 2, n)

	assert.Equal(t, riley.Counts{Uniform: 1, Vertex: 2, Varying: 2, FaceVarying: 2}, pl.Counts())
	assert.Equal(t, []float32{0, 0.5}, pl.Times())
	samples, ok := pl.PointSamples(riley.RixStr.K_P)
	require.True(t, ok)
	require.Len(t, samples, 2)
	assert.Equal(t, linePoints(2), samples[0])
	assert.True(t, samples[1][0].Compare(math.NewVec3(0.5, 0, 0), 1e-5), "got %+v", samples[1][0])
	assert.True(t, samples[1][1].Compare(math.NewVec3(1.5, 0, 0), 1e-5), "got %+v", samples[1][1])
	assert.NoError(t, pl.Validate())
}

func TestConvertPointsPrimvarForPointsAccelerations(t *testing.T) {
	t.Parallel()

	stage := pointsStage(t, 1)
	require.NoError(t, stage.SetAttribute(cloudPath, hd.TokenVelocities, []math.Vec3{{}}, hd.InterpolationVertex, hd.RoleVector))
	require.NoError(t, stage.SetAttribute(cloudPath, hd.TokenAccelerations, []math.Vec3{math.NewVec3(0, 48, 0)}, hd.InterpolationVertex, hd.RoleVector))

	rp := newTestRenderParam(func(c *Config) {
		withVelocityBlur(c)
		c.ShutterClose = 24
	})
	pl := riley.NewEmptyPrimVarList()
	ConvertPointsPrimvarForPoints(rp, stage, cloudPath, pl)

	samples, ok := pl.PointSamples(riley.RixStr.K_P)
	require.True(t, ok)
	// One second at 48 units/s^2.
	assert.InDelta(t, 24.0, float64(samples[1][0].Y), 1e-4)
}

func TestConvertPointsPrimvarForPointsIgnoresBadVelocities(t *testing.T) {
	t.Parallel()

	stage := pointsStage(t, 3)
	require.NoError(t, stage.SetAttribute(cloudPath, hd.TokenVelocities, []math.Vec3{{X: 1}}, hd.InterpolationVertex, hd.RoleVector))

	pl := riley.NewEmptyPrimVarList()
	n := ConvertPointsPrimvarForPoints(newTestRenderParam(withVelocityBlur), stage, cloudPath, pl)
	assert.Equal(t, 3, n)
	assert.Empty(t, pl.Times())
	p, ok := pl.Get(riley.RixStr.K_P)
	require.True(t, ok)
	assert.Equal(t, 1, p.Samples)
	assert.Equal(t, linePoints(3), p.Data)
}

func TestConvertPrimvars(t *testing.T) {
	t.Parallel()

	stage := pointsStage(t, 2)
	set := func(name hd.Token, v interface{}, interp hd.Interpolation, role hd.Token) {
		require.NoError(t, stage.SetAttribute(cloudPath, name, v, interp, role))
	}
	set(hd.TokenWidths, []float32{0.1, 0.2}, hd.InterpolationVertex, hd.RoleNone)
	set(hd.TokenDisplayColor, []math.Vec3{{X: 1}}, hd.InterpolationConstant, hd.RoleColor)
	set(hd.TokenNormals, []math.Vec3{{Z: 1}}, hd.InterpolationVertex, hd.RoleNormal)
	set(hd.TokenVelocities, []math.Vec3{{}, {}}, hd.InterpolationVertex, hd.RoleVector)
	set("temperature", []float32{300}, hd.InterpolationUniform, hd.RoleNone)
	set("id", []int32{7, 8}, hd.InterpolationVarying, hd.RoleNone)
	set("instanceScale", []float32{1, 1, 1}, hd.InterpolationInstance, hd.RoleNone)
	set("label", "unsupported", hd.InterpolationConstant, hd.RoleNone)

	pl := riley.NewPrimVarList(1, 2, 2, 2)
	ConvertPrimvars(stage, cloudPath, pl, 1, 2, 2, 2, nil)

	assert.ElementsMatch(t, []riley.UString{"Cs", "temperature", "id", "width"}, pl.Names())
	require.NoError(t, pl.Validate())

	cs, _ := pl.Get(riley.RixStr.K_Cs)
	assert.Equal(t, riley.ParamColor, cs.Type)
	assert.Equal(t, riley.DetailConstant, cs.Detail)

	width, _ := pl.Get(riley.RixStr.K_width)
	assert.Equal(t, riley.DetailVertex, width.Detail)

	_, ok := pl.Get(riley.RixStr.K_N)
	assert.False(t, ok, "normals with the wrong count are dropped")
}

func TestConvertPrimvarsKeepsPositions(t *testing.T) {
	t.Parallel()

	for _, values := range [][]float32{{1, 2}, {1, 2, 3, 4}} {
		stage := pointsStage(t, 4)
		require.NoError(t, stage.SetAttribute(cloudPath, "P", values, hd.InterpolationVertex, hd.RoleNone))

		conv, err := NewPoints(cloudPath).ConvertGeometry(newTestRenderParam(nil), stage, cloudPath)
		require.NoError(t, err)

		p, ok := conv.Primvars.Get(riley.RixStr.K_P)
		require.True(t, ok)
		assert.Equal(t, linePoints(4), p.Data)
		assert.Equal(t, []riley.UString{riley.RixStr.K_P}, conv.Primvars.Names())
		assert.NoError(t, conv.Primvars.Validate())
	}
}

func TestConvertPrimvarsConstantWidth(t *testing.T) {
	t.Parallel()

	stage := pointsStage(t, 2)
	require.NoError(t, stage.SetAttribute(cloudPath, hd.TokenWidths, float32(0.3), hd.InterpolationConstant, hd.RoleNone))

	pl := riley.NewPrimVarList(1, 2, 2, 2)
	ConvertPrimvars(stage, cloudPath, pl, 1, 2, 2, 2, nil)

	w, ok := pl.Get(riley.RixStr.K_constantwidth)
	require.True(t, ok)
	assert.Equal(t, []float32{0.3}, w.Data)
}

func TestConvertPrimvarsSampledAtTime(t *testing.T) {
	t.Parallel()

	stage := pointsStage(t, 1)
	require.NoError(t, stage.SetTimeSamples(cloudPath, "heat", []float32{0, 1}, []interface{}{[]float32{1}, []float32{2}}))

	pl := riley.NewPrimVarList(1, 1, 1, 1)
	at := float32(0.8)
	ConvertPrimvars(stage, cloudPath, pl, 1, 1, 1, 1, &at)

	heat, ok := pl.Get("heat")
	require.True(t, ok)
	assert.Equal(t, []float32{2}, heat.Data)
}

func TestConvertPrimvarsGeomSubsets(t *testing.T) {
	t.Parallel()

	stage := pointsStage(t, 3)
	good := hd.GeomSubset{Type: "pointSet", ID: hd.MustPath("/World/Cloud/Good"), Indices: []int32{0, 2}}
	bad := hd.GeomSubset{Type: "pointSet", ID: hd.MustPath("/World/Cloud/Bad"), Indices: []int32{3}}
	require.NoError(t, stage.AddGeomSubset(cloudPath, good))
	require.NoError(t, stage.AddGeomSubset(cloudPath, bad))

	conv, err := NewPoints(cloudPath).ConvertGeometry(newTestRenderParam(nil), stage, cloudPath)
	require.NoError(t, err)
	assert.Equal(t, []hd.GeomSubset{good}, conv.GeomSubsets)
}
