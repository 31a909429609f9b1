package core

import (
	"fmt"
	"sync"
)

// InvalidID marks an identifier that was never acquired.
const InvalidID uint32 = ^uint32(0)

// IdentifierPool hands out small integer ids and recycles released slots.
type IdentifierPool struct {
	mu     sync.Mutex
	owners []interface{}
	max    uint32
}

// NewIdentifierPool creates a pool. A max of 0 means unbounded.
func NewIdentifierPool(initial, max uint32) *IdentifierPool {
	return &IdentifierPool{
		owners: make([]interface{}, initial),
		max:    max,
	}
}

// Acquire returns the first free id, growing the pool if needed.
func (p *IdentifierPool) Acquire(owner interface{}) (uint32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	length := uint32(len(p.owners))
	for i := uint32(0); i < length; i++ {
		// Existing free spot. Take it.
		if p.owners[i] == nil {
			p.owners[i] = owner
			return i, nil
		}
	}

	if p.max != 0 && length >= p.max {
		return InvalidID, fmt.Errorf("acquire id (max=%d): %w", p.max, ErrIdentifierExhausted)
	}
	p.owners = append(p.owners, owner)
	return length, nil
}

// Release frees the id so it can be handed out again.
func (p *IdentifierPool) Release(id uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	length := uint32(len(p.owners))
	if id >= length {
		return fmt.Errorf("release id '%d' out of range (max=%d). Nothing was done", id, length)
	}
	if p.owners[id] == nil {
		return fmt.Errorf("release id '%d': id is not in use", id)
	}
	p.owners[id] = nil
	return nil
}

// Owner returns what was registered for the id, or nil.
func (p *IdentifierPool) Owner(id uint32) interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	if id >= uint32(len(p.owners)) {
		return nil
	}
	return p.owners[id]
}

// InUse counts the live ids.
func (p *IdentifierPool) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, o := range p.owners {
		if o != nil {
			n++
		}
	}
	return n
}
