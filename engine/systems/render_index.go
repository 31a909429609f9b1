package systems

import (
	"fmt"
	"sort"
	"sync"

	"github.com/spaghettifunk/hdprman/engine/core"
	"github.com/spaghettifunk/hdprman/engine/hd"
	"github.com/spaghettifunk/hdprman/engine/prman"
)

// Rprim is what the render index needs from a renderable prim.
type Rprim interface {
	ID() hd.Path
	GetInitialDirtyBitsMask() hd.DirtyBits
	Sync(sd hd.SceneDelegate, rp *prman.RenderParam, dirty *hd.DirtyBits) error
	Finalize(rp *prman.RenderParam) error
}

// RprimFactory builds the adapter for a prim type.
type RprimFactory func(id hd.Path) prman.GeometryConverter

// RenderIndex holds every rprim of a render delegate and seeds the change
// tracker with their initial dirty bits.
type RenderIndex struct {
	mu          sync.RWMutex
	tracker     *hd.ChangeTracker
	renderParam *prman.RenderParam
	rprims      map[hd.Path]Rprim
	factories   map[hd.Token]RprimFactory
}

func NewRenderIndex(tracker *hd.ChangeTracker, rp *prman.RenderParam) *RenderIndex {
	ri := &RenderIndex{
		tracker:     tracker,
		renderParam: rp,
		rprims:      make(map[hd.Path]Rprim),
		factories:   make(map[hd.Token]RprimFactory),
	}
	ri.RegisterRprimType(hd.PrimTypePoints, func(id hd.Path) prman.GeometryConverter {
		return prman.NewPoints(id)
	})
	return ri
}

func (ri *RenderIndex) RegisterRprimType(primType hd.Token, factory RprimFactory) {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	ri.factories[primType] = factory
}

// IsRprimTypeSupported reports whether a factory is registered for primType.
func (ri *RenderIndex) IsRprimTypeSupported(primType hd.Token) bool {
	ri.mu.RLock()
	defer ri.mu.RUnlock()
	_, ok := ri.factories[primType]
	return ok
}

// InsertRprim creates the adapter for id and marks it dirty with its
// initial mask, so the first sync sees every category it reads.
func (ri *RenderIndex) InsertRprim(primType hd.Token, id hd.Path) error {
	ri.mu.Lock()
	defer ri.mu.Unlock()

	factory, ok := ri.factories[primType]
	if !ok {
		return fmt.Errorf("insert %s (%s): %w", id, primType, core.ErrUnknownPrimType)
	}
	if _, ok := ri.rprims[id]; ok {
		return fmt.Errorf("insert %s: %w", id, core.ErrPrimExists)
	}

	gprim := prman.NewGprim(id, factory(id))
	if err := ri.tracker.RprimInserted(id, gprim.GetInitialDirtyBitsMask()); err != nil {
		return err
	}
	ri.rprims[id] = gprim
	core.LogDebug("inserted %s rprim %s", primType, id)
	return nil
}

// RemoveRprim finalizes the renderer objects of id and forgets it.
func (ri *RenderIndex) RemoveRprim(id hd.Path) error {
	ri.mu.Lock()
	rprim, ok := ri.rprims[id]
	delete(ri.rprims, id)
	ri.mu.Unlock()

	if !ok {
		return fmt.Errorf("remove %s: %w", id, core.ErrPrimNotFound)
	}
	ri.tracker.RprimRemoved(id)
	if err := rprim.Finalize(ri.renderParam); err != nil {
		return fmt.Errorf("remove %s: %w", id, err)
	}
	return nil
}

func (ri *RenderIndex) GetRprim(id hd.Path) (Rprim, bool) {
	ri.mu.RLock()
	defer ri.mu.RUnlock()
	r, ok := ri.rprims[id]
	return r, ok
}

// RprimIDs returns every rprim path, sorted.
func (ri *RenderIndex) RprimIDs() []hd.Path {
	ri.mu.RLock()
	defer ri.mu.RUnlock()
	ids := make([]hd.Path, 0, len(ri.rprims))
	for id := range ri.rprims {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

func (ri *RenderIndex) ChangeTracker() *hd.ChangeTracker { return ri.tracker }

func (ri *RenderIndex) RenderParam() *prman.RenderParam { return ri.renderParam }
