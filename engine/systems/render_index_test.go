package systems

import (
	"testing"

	"github.com/spaghettifunk/hdprman/engine/core"
	"github.com/spaghettifunk/hdprman/engine/hd"
	"github.com/spaghettifunk/hdprman/engine/prman"
	"github.com/spaghettifunk/hdprman/engine/riley"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(cfg prman.Config) (*RenderIndex, *riley.Memory) {
	mem := riley.NewMemory(0)
	return NewRenderIndex(hd.NewChangeTracker(), prman.NewRenderParam(cfg, mem)), mem
}

func TestRenderIndexInsertRemove(t *testing.T) {
	t.Parallel()

	ri, _ := newTestIndex(prman.DefaultConfig())
	id := hd.MustPath("/World/Cloud")

	assert.True(t, ri.IsRprimTypeSupported(hd.PrimTypePoints))
	assert.False(t, ri.IsRprimTypeSupported("mesh"))
	assert.ErrorIs(t, ri.InsertRprim("mesh", id), core.ErrUnknownPrimType)

	require.NoError(t, ri.InsertRprim(hd.PrimTypePoints, id))
	assert.ErrorIs(t, ri.InsertRprim(hd.PrimTypePoints, id), core.ErrPrimExists)
	assert.Equal(t, []hd.Path{id}, ri.RprimIDs())

	rprim, ok := ri.GetRprim(id)
	require.True(t, ok)
	assert.Equal(t, id, rprim.ID())
	assert.Equal(t, rprim.GetInitialDirtyBitsMask(), ri.ChangeTracker().GetRprimDirtyBits(id))

	require.NoError(t, ri.RemoveRprim(id))
	assert.Empty(t, ri.RprimIDs())
	assert.False(t, ri.ChangeTracker().IsRprimDirty(id))
	assert.ErrorIs(t, ri.RemoveRprim(id), core.ErrPrimNotFound)
}

func TestRenderIndexCustomFactory(t *testing.T) {
	t.Parallel()

	ri, _ := newTestIndex(prman.DefaultConfig())
	inst := hd.MustPath("/World/Instancer")
	ri.RegisterRprimType("instancedPoints", func(id hd.Path) prman.GeometryConverter {
		return prman.NewPoints(id, prman.WithInstancerID(inst))
	})
	require.NoError(t, ri.InsertRprim("instancedPoints", hd.MustPath("/World/Copies")))
}
