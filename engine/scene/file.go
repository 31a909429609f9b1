package scene

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/hdprman/engine/hd"
	"github.com/spaghettifunk/hdprman/engine/math"
)

// File is the TOML layout of a scene description.
//
//	[[prims]]
//	path = "/World/Cloud"
//	type = "points"
//	translate = [0.0, 1.0, 0.0]
//
//	  [[prims.attributes]]
//	  name = "points"
//	  interpolation = "vertex"
//	  vec3 = [[0.0, 0.0, 0.0], [1.0, 0.0, 0.0]]
type File struct {
	Prims []PrimSpec `toml:"prims"`
}

type PrimSpec struct {
	Path       string          `toml:"path"`
	Type       string          `toml:"type"`
	Visible    *bool           `toml:"visible"`
	Material   string          `toml:"material"`
	Instancer  string          `toml:"instancer"`
	Translate  []float32       `toml:"translate"`
	Scale      []float32       `toml:"scale"`
	Attributes []AttributeSpec `toml:"attributes"`
	Subsets    []SubsetSpec    `toml:"subsets"`
}

// ValueSpec holds exactly one of its fields.
type ValueSpec struct {
	Vec3   [][]float32 `toml:"vec3"`
	Vec4   [][]float32 `toml:"vec4"`
	Floats []float32   `toml:"floats"`
	Ints   []int32     `toml:"ints"`
	Float  *float32    `toml:"float"`
}

type SampleSpec struct {
	Time float32 `toml:"time"`
	ValueSpec
}

type AttributeSpec struct {
	Name          string `toml:"name"`
	Interpolation string `toml:"interpolation"`
	Role          string `toml:"role"`
	ValueSpec
	Samples []SampleSpec `toml:"samples"`
}

type SubsetSpec struct {
	Name     string  `toml:"name"`
	Material string  `toml:"material"`
	Indices  []int32 `toml:"indices"`
}

// Load reads a TOML scene description from path.
func Load(path string) (*Stage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scene %s: %w", path, err)
	}
	stage, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load scene %s: %w", path, err)
	}
	return stage, nil
}

// Parse builds a stage from TOML bytes.
func Parse(data []byte) (*Stage, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Build()
}

// Build authors every prim of f onto a new stage.
func (f File) Build() (*Stage, error) {
	stage := NewStage()
	for _, ps := range f.Prims {
		if err := ps.author(stage); err != nil {
			return nil, err
		}
	}
	return stage, nil
}

func optionalPath(s string) (hd.Path, error) {
	if s == "" {
		return hd.EmptyPath, nil
	}
	return hd.NewPath(s)
}

func vec3(f []float32) (math.Vec3, error) {
	if len(f) != 3 {
		return math.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(f))
	}
	return math.NewVec3(f[0], f[1], f[2]), nil
}

func (ps PrimSpec) author(stage *Stage) error {
	path, err := hd.NewPath(ps.Path)
	if err != nil {
		return err
	}
	if err := stage.DefinePrim(path, hd.Token(ps.Type)); err != nil {
		return err
	}
	if ps.Visible != nil {
		if err := stage.SetVisible(path, *ps.Visible); err != nil {
			return err
		}
	}

	material, err := optionalPath(ps.Material)
	if err != nil {
		return fmt.Errorf("%s material: %w", path, err)
	}
	instancer, err := optionalPath(ps.Instancer)
	if err != nil {
		return fmt.Errorf("%s instancer: %w", path, err)
	}
	if err := stage.SetMaterial(path, material); err != nil {
		return err
	}
	if err := stage.SetInstancer(path, instancer); err != nil {
		return err
	}

	xform := math.NewMat4Identity()
	if ps.Scale != nil {
		s, err := vec3(ps.Scale)
		if err != nil {
			return fmt.Errorf("%s scale: %w", path, err)
		}
		xform = xform.Mul(math.NewMat4Scale(s))
	}
	if ps.Translate != nil {
		t, err := vec3(ps.Translate)
		if err != nil {
			return fmt.Errorf("%s translate: %w", path, err)
		}
		xform = xform.Mul(math.NewMat4Translation(t))
	}
	if err := stage.SetTransform(path, xform); err != nil {
		return err
	}

	for _, as := range ps.Attributes {
		if err := as.author(stage, path); err != nil {
			return fmt.Errorf("%s.%s: %w", path, as.Name, err)
		}
	}

	for _, ss := range ps.Subsets {
		id, err := hd.NewPath(ss.Name)
		if err != nil {
			return fmt.Errorf("%s subset: %w", path, err)
		}
		mat, err := optionalPath(ss.Material)
		if err != nil {
			return fmt.Errorf("%s subset material: %w", path, err)
		}
		subset := hd.GeomSubset{Type: "pointSet", ID: id, MaterialID: mat, Indices: ss.Indices}
		if err := stage.AddGeomSubset(path, subset); err != nil {
			return err
		}
	}
	return nil
}

func (as AttributeSpec) author(stage *Stage, path hd.Path) error {
	interp := hd.InterpolationConstant
	if as.Interpolation != "" {
		var ok bool
		if interp, ok = hd.ParseInterpolation(as.Interpolation); !ok {
			return fmt.Errorf("unknown interpolation %q", as.Interpolation)
		}
	}
	name := hd.Token(as.Name)

	value, err := as.ValueSpec.value()
	if err != nil {
		return err
	}
	if err := stage.SetAttribute(path, name, value, interp, hd.Token(as.Role)); err != nil {
		return err
	}

	if len(as.Samples) == 0 {
		return nil
	}
	times := make([]float32, len(as.Samples))
	values := make([]interface{}, len(as.Samples))
	for i, s := range as.Samples {
		v, err := s.ValueSpec.value()
		if err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		times[i] = s.Time
		values[i] = v
	}
	return stage.SetTimeSamples(path, name, times, values)
}

// value converts the spec into the Go type a delegate hands out. An empty
// spec yields nil.
func (vs ValueSpec) value() (interface{}, error) {
	switch {
	case vs.Vec3 != nil:
		out := make([]math.Vec3, len(vs.Vec3))
		for i, f := range vs.Vec3 {
			v, err := vec3(f)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = v
		}
		return out, nil
	case vs.Vec4 != nil:
		out := make([]math.Vec4, len(vs.Vec4))
		for i, f := range vs.Vec4 {
			if len(f) != 4 {
				return nil, fmt.Errorf("element %d: expected 4 components, got %d", i, len(f))
			}
			out[i] = math.Vec4{X: f[0], Y: f[1], Z: f[2], W: f[3]}
		}
		return out, nil
	case vs.Floats != nil:
		return vs.Floats, nil
	case vs.Ints != nil:
		return vs.Ints, nil
	case vs.Float != nil:
		return *vs.Float, nil
	default:
		return nil, nil
	}
}
