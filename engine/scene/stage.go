package scene

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/spaghettifunk/hdprman/engine/core"
	"github.com/spaghettifunk/hdprman/engine/hd"
	"github.com/spaghettifunk/hdprman/engine/math"
)

// Attribute is one authored attribute of a prim. An attribute carries
// either a default value, time samples, or both.
type Attribute struct {
	Interpolation hd.Interpolation
	Role          hd.Token
	Value         hd.Value
	Times         []float32
	Samples       []hd.Value
}

// Prim is a scene primitive as authored on a Stage.
type Prim struct {
	Path       hd.Path
	Type       hd.Token
	Transform  math.Mat4
	Visible    bool
	Material   hd.Path
	Instancer  hd.Path
	Attributes map[hd.Token]*Attribute
	Subsets    []hd.GeomSubset
}

// Stage is an in-memory scene that serves as the scene delegate for the
// render index. Safe for concurrent use.
type Stage struct {
	mu    sync.RWMutex
	prims map[hd.Path]*Prim
}

func NewStage() *Stage {
	return &Stage{
		prims: make(map[hd.Path]*Prim),
	}
}

// DefinePrim creates a prim of the given type with identity transform.
func (s *Stage) DefinePrim(path hd.Path, primType hd.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.prims[path]; ok {
		return fmt.Errorf("define %s: %w", path, core.ErrPrimExists)
	}
	s.prims[path] = &Prim{
		Path:       path,
		Type:       primType,
		Transform:  math.NewMat4Identity(),
		Visible:    true,
		Attributes: make(map[hd.Token]*Attribute),
	}
	return nil
}

func (s *Stage) RemovePrim(path hd.Path) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.prims[path]; !ok {
		return fmt.Errorf("remove %s: %w", path, core.ErrPrimNotFound)
	}
	delete(s.prims, path)
	return nil
}

func (s *Stage) edit(path hd.Path, fn func(p *Prim)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.prims[path]
	if !ok {
		return fmt.Errorf("edit %s: %w", path, core.ErrPrimNotFound)
	}
	fn(p)
	return nil
}

// SetAttribute authors the default value of a primvar.
func (s *Stage) SetAttribute(path hd.Path, name hd.Token, value interface{}, interp hd.Interpolation, role hd.Token) error {
	return s.edit(path, func(p *Prim) {
		attr := p.attribute(name)
		attr.Value = hd.NewValue(value)
		attr.Interpolation = interp
		attr.Role = role
	})
}

// SetTimeSamples authors time samples of an existing or new attribute.
func (s *Stage) SetTimeSamples(path hd.Path, name hd.Token, times []float32, values []interface{}) error {
	if len(times) != len(values) {
		return fmt.Errorf("set samples %s.%s: %d times for %d values", path, name, len(times), len(values))
	}
	return s.edit(path, func(p *Prim) {
		attr := p.attribute(name)
		attr.Times = append([]float32(nil), times...)
		attr.Samples = make([]hd.Value, len(values))
		for i, v := range values {
			attr.Samples[i] = hd.NewValue(v)
		}
	})
}

func (s *Stage) SetTransform(path hd.Path, m math.Mat4) error {
	return s.edit(path, func(p *Prim) { p.Transform = m })
}

func (s *Stage) SetVisible(path hd.Path, visible bool) error {
	return s.edit(path, func(p *Prim) { p.Visible = visible })
}

func (s *Stage) SetMaterial(path hd.Path, material hd.Path) error {
	return s.edit(path, func(p *Prim) { p.Material = material })
}

func (s *Stage) SetInstancer(path hd.Path, instancer hd.Path) error {
	return s.edit(path, func(p *Prim) { p.Instancer = instancer })
}

func (s *Stage) AddGeomSubset(path hd.Path, subset hd.GeomSubset) error {
	return s.edit(path, func(p *Prim) { p.Subsets = append(p.Subsets, subset) })
}

func (p *Prim) attribute(name hd.Token) *Attribute {
	attr, ok := p.Attributes[name]
	if !ok {
		attr = &Attribute{Interpolation: hd.InterpolationConstant}
		p.Attributes[name] = attr
	}
	return attr
}

// Paths returns every prim path, sorted.
func (s *Stage) Paths() []hd.Path {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]hd.Path, 0, len(s.prims))
	for p := range s.prims {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i].String() < paths[j].String() })
	return paths
}

// PrimType returns the type of the prim at path.
func (s *Stage) PrimType(path hd.Path) (hd.Token, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prims[path]
	if !ok {
		return "", false
	}
	return p.Type, true
}

var primCompare = cmp.AllowUnexported(hd.Path{}, hd.Value{})

// PrimDiff is a human readable diff of the prim at path between two
// stages, empty when they agree.
func PrimDiff(prev, next *Stage, path hd.Path) string {
	var pp, np *Prim
	prev.read(path, func(p *Prim) { pp = p })
	next.read(path, func(p *Prim) { np = p })
	return cmp.Diff(pp, np, primCompare)
}

// Diff compares two stages by authored content.
func Diff(prev, next *Stage) (added, removed, changed []hd.Path) {
	prev.mu.RLock()
	defer prev.mu.RUnlock()
	next.mu.RLock()
	defer next.mu.RUnlock()

	for path, np := range next.prims {
		pp, ok := prev.prims[path]
		switch {
		case !ok:
			added = append(added, path)
		case !cmp.Equal(pp, np, primCompare):
			changed = append(changed, path)
		}
	}
	for path := range prev.prims {
		if _, ok := next.prims[path]; !ok {
			removed = append(removed, path)
		}
	}
	for _, l := range [][]hd.Path{added, removed, changed} {
		sort.Slice(l, func(i, j int) bool { return l[i].String() < l[j].String() })
	}
	return added, removed, changed
}

// Replace swaps the content of s for the content of other. Prims are
// shared, so other must not be edited afterwards.
func (s *Stage) Replace(other *Stage) {
	other.mu.RLock()
	prims := make(map[hd.Path]*Prim, len(other.prims))
	for k, v := range other.prims {
		prims[k] = v
	}
	other.mu.RUnlock()

	s.mu.Lock()
	s.prims = prims
	s.mu.Unlock()
}

// read runs fn on the prim under the read lock.
func (s *Stage) read(id hd.Path, fn func(p *Prim)) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prims[id]
	if ok {
		fn(p)
	}
	return ok
}

func (s *Stage) Get(id hd.Path, key hd.Token) hd.Value {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prims[id]
	if !ok {
		return hd.Value{}
	}
	attr, ok := p.Attributes[key]
	if !ok {
		return hd.Value{}
	}
	if !attr.Value.IsEmpty() || len(attr.Samples) == 0 {
		return attr.Value
	}
	// No default, fall back to the sample closest to the frame.
	best := 0
	for i, t := range attr.Times {
		if abs(t) < abs(attr.Times[best]) {
			best = i
		}
	}
	return attr.Samples[best]
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

func (s *Stage) SamplePrimvar(id hd.Path, key hd.Token, maxSamples int) ([]float32, []hd.Value) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prims[id]
	if !ok {
		return nil, nil
	}
	attr, ok := p.Attributes[key]
	if !ok {
		return nil, nil
	}
	if len(attr.Samples) == 0 {
		if attr.Value.IsEmpty() {
			return nil, nil
		}
		return []float32{0}, []hd.Value{attr.Value}
	}
	n := len(attr.Samples)
	if maxSamples > 0 && n > maxSamples {
		n = maxSamples
	}
	return append([]float32(nil), attr.Times[:n]...), append([]hd.Value(nil), attr.Samples[:n]...)
}

func (s *Stage) GetTransform(id hd.Path) math.Mat4 {
	m := math.NewMat4Identity()
	s.read(id, func(p *Prim) { m = p.Transform })
	return m
}

func (s *Stage) GetVisible(id hd.Path) bool {
	visible := false
	s.read(id, func(p *Prim) { visible = p.Visible })
	return visible
}

func (s *Stage) GetMaterialID(id hd.Path) hd.Path {
	material := hd.EmptyPath
	s.read(id, func(p *Prim) { material = p.Material })
	return material
}

func (s *Stage) GetInstancerID(id hd.Path) hd.Path {
	instancer := hd.EmptyPath
	s.read(id, func(p *Prim) { instancer = p.Instancer })
	return instancer
}

// GetPrimvarDescriptors lists attributes of the interpolation, sorted by name.
func (s *Stage) GetPrimvarDescriptors(id hd.Path, interpolation hd.Interpolation) []hd.PrimvarDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prims[id]
	if !ok {
		return nil
	}
	var descs []hd.PrimvarDescriptor
	for name, attr := range p.Attributes {
		if attr.Interpolation != interpolation {
			continue
		}
		descs = append(descs, hd.PrimvarDescriptor{
			Name:          name,
			Interpolation: attr.Interpolation,
			Role:          attr.Role,
		})
	}
	sort.Slice(descs, func(i, j int) bool { return descs[i].Name < descs[j].Name })
	return descs
}

func (s *Stage) GetGeomSubsets(id hd.Path) []hd.GeomSubset {
	var subsets []hd.GeomSubset
	s.read(id, func(p *Prim) { subsets = append(subsets, p.Subsets...) })
	return subsets
}
