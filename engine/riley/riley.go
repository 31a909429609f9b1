package riley

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/hdprman/engine/core"
	"github.com/spaghettifunk/hdprman/engine/math"
)

type GeometryPrototypeID uint32
type GeometryInstanceID uint32

// InvalidPrototypeID and InvalidInstanceID mark unset ids.
const (
	InvalidPrototypeID GeometryPrototypeID = GeometryPrototypeID(core.InvalidID)
	InvalidInstanceID  GeometryInstanceID  = GeometryInstanceID(core.InvalidID)
)

// UserID tags renderer objects with the scene path they came from.
type UserID string

// Subset is a geometry subset as submitted to the renderer.
type Subset struct {
	Name     string
	Material string
	Indices  []int32
}

// PrototypeDesc is everything needed to create or update a geometry prototype.
type PrototypeDesc struct {
	PrimType UString
	Primvars *PrimVarList
	Subsets  []Subset
}

// InstanceAttributes are the per-instance settings of a geometry instance.
type InstanceAttributes struct {
	Transform math.Mat4
	Material  string
	Visible   bool
	Instancer string
}

// Riley is the renderer's geometry submission API.
type Riley interface {
	CreateGeometryPrototype(user UserID, desc PrototypeDesc) (GeometryPrototypeID, error)
	ModifyGeometryPrototype(id GeometryPrototypeID, desc PrototypeDesc) error
	DeleteGeometryPrototype(id GeometryPrototypeID) error
	CreateGeometryInstance(user UserID, proto GeometryPrototypeID, attrs InstanceAttributes) (GeometryInstanceID, error)
	ModifyGeometryInstance(id GeometryInstanceID, attrs InstanceAttributes) error
	DeleteGeometryInstance(id GeometryInstanceID) error
}

// PrototypeRecord is what Memory keeps for a prototype.
type PrototypeRecord struct {
	User     UserID
	Desc     PrototypeDesc
	Revision int
}

// InstanceRecord is what Memory keeps for an instance.
type InstanceRecord struct {
	User      UserID
	Prototype GeometryPrototypeID
	Attrs     InstanceAttributes
	Revision  int
}

// Memory is an in-process Riley that keeps every submitted object.
type Memory struct {
	mu         sync.RWMutex
	protoIDs   *core.IdentifierPool
	instIDs    *core.IdentifierPool
	prototypes map[GeometryPrototypeID]*PrototypeRecord
	instances  map[GeometryInstanceID]*InstanceRecord
}

// NewMemory creates an empty renderer. maxObjects bounds each id pool, 0
// means unbounded.
func NewMemory(maxObjects uint32) *Memory {
	initial := uint32(64)
	if maxObjects != 0 {
		initial = min(initial, maxObjects)
	}
	return &Memory{
		protoIDs:   core.NewIdentifierPool(initial, maxObjects),
		instIDs:    core.NewIdentifierPool(initial, maxObjects),
		prototypes: make(map[GeometryPrototypeID]*PrototypeRecord),
		instances:  make(map[GeometryInstanceID]*InstanceRecord),
	}
}

func validateDesc(desc PrototypeDesc) error {
	if desc.PrimType.Empty() {
		return fmt.Errorf("%w: missing prim type", core.ErrInvalidPrimVarList)
	}
	if desc.Primvars == nil {
		return fmt.Errorf("%w: nil primvar list", core.ErrInvalidPrimVarList)
	}
	if err := desc.Primvars.Validate(); err != nil {
		return err
	}
	if desc.Primvars.Counts().Vertex == 0 {
		core.LogWarn("riley: %s prototype with zero vertices", desc.PrimType)
	}
	return nil
}

func (m *Memory) CreateGeometryPrototype(user UserID, desc PrototypeDesc) (GeometryPrototypeID, error) {
	if err := validateDesc(desc); err != nil {
		return InvalidPrototypeID, fmt.Errorf("create prototype %s: %w", user, err)
	}
	rec := &PrototypeRecord{User: user, Desc: desc, Revision: 1}
	id, err := m.protoIDs.Acquire(rec)
	if err != nil {
		return InvalidPrototypeID, fmt.Errorf("create prototype %s: %w", user, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.prototypes[GeometryPrototypeID(id)] = rec
	return GeometryPrototypeID(id), nil
}

func (m *Memory) ModifyGeometryPrototype(id GeometryPrototypeID, desc PrototypeDesc) error {
	if err := validateDesc(desc); err != nil {
		return fmt.Errorf("modify prototype %d: %w", id, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.prototypes[id]
	if !ok {
		return fmt.Errorf("modify prototype %d: %w", id, core.ErrUnknownRileyID)
	}
	rec.Desc = desc
	rec.Revision++
	return nil
}

func (m *Memory) DeleteGeometryPrototype(id GeometryPrototypeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.prototypes[id]; !ok {
		return fmt.Errorf("delete prototype %d: %w", id, core.ErrUnknownRileyID)
	}
	for iid, inst := range m.instances {
		if inst.Prototype == id {
			return fmt.Errorf("delete prototype %d: still referenced by instance %d", id, iid)
		}
	}
	delete(m.prototypes, id)
	return m.protoIDs.Release(uint32(id))
}

func (m *Memory) CreateGeometryInstance(user UserID, proto GeometryPrototypeID, attrs InstanceAttributes) (GeometryInstanceID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.prototypes[proto]; !ok {
		return InvalidInstanceID, fmt.Errorf("create instance %s of prototype %d: %w", user, proto, core.ErrUnknownRileyID)
	}
	rec := &InstanceRecord{User: user, Prototype: proto, Attrs: attrs, Revision: 1}
	id, err := m.instIDs.Acquire(rec)
	if err != nil {
		return InvalidInstanceID, fmt.Errorf("create instance %s: %w", user, err)
	}
	m.instances[GeometryInstanceID(id)] = rec
	return GeometryInstanceID(id), nil
}

func (m *Memory) ModifyGeometryInstance(id GeometryInstanceID, attrs InstanceAttributes) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.instances[id]
	if !ok {
		return fmt.Errorf("modify instance %d: %w", id, core.ErrUnknownRileyID)
	}
	rec.Attrs = attrs
	rec.Revision++
	return nil
}

func (m *Memory) DeleteGeometryInstance(id GeometryInstanceID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.instances[id]; !ok {
		return fmt.Errorf("delete instance %d: %w", id, core.ErrUnknownRileyID)
	}
	delete(m.instances, id)
	return m.instIDs.Release(uint32(id))
}

// Prototype returns a copy of the stored record.
func (m *Memory) Prototype(id GeometryPrototypeID) (PrototypeRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.prototypes[id]
	if !ok {
		return PrototypeRecord{}, false
	}
	return *rec, true
}

// Instance returns a copy of the stored record.
func (m *Memory) Instance(id GeometryInstanceID) (InstanceRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.instances[id]
	if !ok {
		return InstanceRecord{}, false
	}
	return *rec, true
}

// Stats returns the number of live prototypes and instances.
func (m *Memory) Stats() (prototypes, instances int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.prototypes), len(m.instances)
}
