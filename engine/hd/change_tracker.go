package hd

import (
	"fmt"
	"sort"
	"sync"

	"github.com/spaghettifunk/hdprman/engine/core"
)

// ChangeTracker owns the dirty bits of every rprim. Safe for concurrent use.
type ChangeTracker struct {
	mu     sync.RWMutex
	rprims map[Path]DirtyBits
}

func NewChangeTracker() *ChangeTracker {
	return &ChangeTracker{
		rprims: make(map[Path]DirtyBits),
	}
}

// RprimInserted starts tracking id with its initial mask.
func (ct *ChangeTracker) RprimInserted(id Path, initial DirtyBits) error {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	if _, ok := ct.rprims[id]; ok {
		return fmt.Errorf("track %s: %w", id, core.ErrPrimExists)
	}
	ct.rprims[id] = initial
	return nil
}

func (ct *ChangeTracker) RprimRemoved(id Path) {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	delete(ct.rprims, id)
}

// MarkRprimDirty ORs bits into the prim's mask.
func (ct *ChangeTracker) MarkRprimDirty(id Path, bits DirtyBits) error {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	cur, ok := ct.rprims[id]
	if !ok {
		return fmt.Errorf("mark %s dirty: %w", id, core.ErrPrimNotFound)
	}
	ct.rprims[id] = cur | bits
	return nil
}

// MarkRprimClean clears the consumed bits. Bits marked dirty after the
// sync read the mask stay set.
func (ct *ChangeTracker) MarkRprimClean(id Path, consumed DirtyBits) {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	if cur, ok := ct.rprims[id]; ok {
		ct.rprims[id] = cur &^ consumed
	}
}

func (ct *ChangeTracker) GetRprimDirtyBits(id Path) DirtyBits {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return ct.rprims[id]
}

func (ct *ChangeTracker) IsRprimDirty(id Path) bool {
	return ct.GetRprimDirtyBits(id) != Clean
}

// DirtyRprimIDs returns the dirty prims sorted by path.
func (ct *ChangeTracker) DirtyRprimIDs() []Path {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	ids := make([]Path, 0, len(ct.rprims))
	for id, bits := range ct.rprims {
		if bits != Clean {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}
