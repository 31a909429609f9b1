package riley

import (
	"testing"

	"github.com/spaghettifunk/hdprman/engine/core"
	"github.com/spaghettifunk/hdprman/engine/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pointsDesc(n int) PrototypeDesc {
	pl := NewPrimVarList(1, n, n, n)
	pl.SetPointDetail(RixStr.K_P, make([]math.Vec3, n), DetailVertex)
	return PrototypeDesc{PrimType: RixStr.K_Ri_Points, Primvars: pl}
}

func TestMemoryLifecycle(t *testing.T) {
	t.Parallel()

	m := NewMemory(0)
	proto, err := m.CreateGeometryPrototype("/World/Cloud", pointsDesc(3))
	require.NoError(t, err)

	inst, err := m.CreateGeometryInstance("/World/Cloud", proto, InstanceAttributes{Transform: math.NewMat4Identity(), Visible: true})
	require.NoError(t, err)

	p, n := m.Stats()
	assert.Equal(t, 1, p)
	assert.Equal(t, 1, n)

	require.NoError(t, m.ModifyGeometryPrototype(proto, pointsDesc(5)))
	rec, ok := m.Prototype(proto)
	require.True(t, ok)
	assert.Equal(t, 2, rec.Revision)
	assert.Equal(t, 5, rec.Desc.Primvars.Counts().Vertex)

	require.NoError(t, m.ModifyGeometryInstance(inst, InstanceAttributes{Material: "/Looks/Red"}))
	irec, ok := m.Instance(inst)
	require.True(t, ok)
	assert.Equal(t, "/Looks/Red", irec.Attrs.Material)
	assert.Equal(t, proto, irec.Prototype)

	// Prototypes outlive their instances.
	assert.Error(t, m.DeleteGeometryPrototype(proto))
	require.NoError(t, m.DeleteGeometryInstance(inst))
	require.NoError(t, m.DeleteGeometryPrototype(proto))

	p, n = m.Stats()
	assert.Zero(t, p)
	assert.Zero(t, n)
	assert.ErrorIs(t, m.DeleteGeometryInstance(inst), core.ErrUnknownRileyID)
}

func TestMemoryRejectsInvalidPrototypes(t *testing.T) {
	t.Parallel()

	m := NewMemory(0)
	_, err := m.CreateGeometryPrototype("/nil", PrototypeDesc{PrimType: RixStr.K_Ri_Points})
	assert.ErrorIs(t, err, core.ErrInvalidPrimVarList)

	_, err = m.CreateGeometryPrototype("/untyped", PrototypeDesc{Primvars: NewEmptyPrimVarList()})
	assert.ErrorIs(t, err, core.ErrInvalidPrimVarList)

	bad := pointsDesc(3)
	bad.Primvars.SetFloatDetail(RixStr.K_width, []float32{1}, DetailVertex)
	_, err = m.CreateGeometryPrototype("/bad", bad)
	assert.ErrorIs(t, err, core.ErrInvalidPrimVarList)

	_, err = m.CreateGeometryInstance("/orphan", GeometryPrototypeID(42), InstanceAttributes{})
	assert.ErrorIs(t, err, core.ErrUnknownRileyID)

	// Empty geometry is accepted.
	_, err = m.CreateGeometryPrototype("/empty", pointsDesc(0))
	assert.NoError(t, err)
}

func TestMemoryObjectLimit(t *testing.T) {
	t.Parallel()

	m := NewMemory(1)
	_, err := m.CreateGeometryPrototype("/a", pointsDesc(1))
	require.NoError(t, err)
	_, err = m.CreateGeometryPrototype("/b", pointsDesc(1))
	assert.ErrorIs(t, err, core.ErrIdentifierExhausted)
}
