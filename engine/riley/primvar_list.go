package riley

import (
	"fmt"

	"github.com/spaghettifunk/hdprman/engine/core"
	"github.com/spaghettifunk/hdprman/engine/math"
)

// DetailType is the interpolation class of a primvar entry.
type DetailType int

const (
	DetailConstant DetailType = iota
	DetailUniform
	DetailVertex
	DetailVarying
	DetailFaceVarying
)

func (d DetailType) String() string {
	switch d {
	case DetailConstant:
		return "constant"
	case DetailUniform:
		return "uniform"
	case DetailVertex:
		return "vertex"
	case DetailVarying:
		return "varying"
	case DetailFaceVarying:
		return "facevarying"
	default:
		return "unknown"
	}
}

// ParamType is the element type of a primvar entry.
type ParamType int

const (
	ParamFloat ParamType = iota
	ParamInteger
	ParamPoint
	ParamNormal
	ParamVector
	ParamColor
	ParamFloat4
	ParamMatrix
)

// Counts are the element counts per detail. Constant is always 1.
type Counts struct {
	Uniform     int
	Vertex      int
	Varying     int
	FaceVarying int
}

// PrimVar is a single named entry of a PrimVarList. Data holds Samples
// consecutive runs of the detail's element count.
type PrimVar struct {
	Name    UString
	Type    ParamType
	Detail  DetailType
	Data    interface{}
	Samples int
}

func (pv PrimVar) dataLen() int {
	switch d := pv.Data.(type) {
	case []float32:
		return len(d)
	case []int32:
		return len(d)
	case []math.Vec3:
		return len(d)
	case []math.Vec4:
		return len(d)
	case []math.Mat4:
		return len(d)
	default:
		return -1
	}
}

// PrimVarList is the renderer-native container of named attribute arrays
// for one prim. It is built fresh for every conversion and handed over to
// the caller.
type PrimVarList struct {
	counts  Counts
	times   []float32
	entries []PrimVar
	index   map[UString]int
}

// NewPrimVarList sizes the list for the given detail counts.
func NewPrimVarList(uniform, vertex, varying, facevarying int) *PrimVarList {
	pl := &PrimVarList{
		index: make(map[UString]int),
	}
	pl.SetDetail(uniform, vertex, varying, facevarying)
	return pl
}

// NewEmptyPrimVarList creates a list with every detail count at zero.
// Callers are expected to SetDetail before adding non-constant data.
func NewEmptyPrimVarList() *PrimVarList {
	return NewPrimVarList(0, 0, 0, 0)
}

func (pl *PrimVarList) SetDetail(uniform, vertex, varying, facevarying int) {
	pl.counts = Counts{
		Uniform:     max(uniform, 0),
		Vertex:      max(vertex, 0),
		Varying:     max(varying, 0),
		FaceVarying: max(facevarying, 0),
	}
}

func (pl *PrimVarList) Counts() Counts { return pl.counts }

// NumElements returns how many elements an entry of the detail carries.
func (pl *PrimVarList) NumElements(detail DetailType) int {
	switch detail {
	case DetailConstant:
		return 1
	case DetailUniform:
		return pl.counts.Uniform
	case DetailVertex:
		return pl.counts.Vertex
	case DetailVarying:
		return pl.counts.Varying
	case DetailFaceVarying:
		return pl.counts.FaceVarying
	default:
		return 0
	}
}

// SetTimes sets the sample times used by time-sampled entries.
func (pl *PrimVarList) SetTimes(times []float32) {
	pl.times = append([]float32(nil), times...)
}

func (pl *PrimVarList) Times() []float32 { return pl.times }

func (pl *PrimVarList) set(pv PrimVar) {
	if pv.Samples == 0 {
		pv.Samples = 1
	}
	if i, ok := pl.index[pv.Name]; ok {
		pl.entries[i] = pv
		return
	}
	pl.index[pv.Name] = len(pl.entries)
	pl.entries = append(pl.entries, pv)
}

func (pl *PrimVarList) SetPointDetail(name UString, data []math.Vec3, detail DetailType) {
	pl.set(PrimVar{Name: name, Type: ParamPoint, Detail: detail, Data: data})
}

func (pl *PrimVarList) SetNormalDetail(name UString, data []math.Vec3, detail DetailType) {
	pl.set(PrimVar{Name: name, Type: ParamNormal, Detail: detail, Data: data})
}

func (pl *PrimVarList) SetVectorDetail(name UString, data []math.Vec3, detail DetailType) {
	pl.set(PrimVar{Name: name, Type: ParamVector, Detail: detail, Data: data})
}

func (pl *PrimVarList) SetColorDetail(name UString, data []math.Vec3, detail DetailType) {
	pl.set(PrimVar{Name: name, Type: ParamColor, Detail: detail, Data: data})
}

func (pl *PrimVarList) SetFloatDetail(name UString, data []float32, detail DetailType) {
	pl.set(PrimVar{Name: name, Type: ParamFloat, Detail: detail, Data: data})
}

func (pl *PrimVarList) SetFloat4Detail(name UString, data []math.Vec4, detail DetailType) {
	pl.set(PrimVar{Name: name, Type: ParamFloat4, Detail: detail, Data: data})
}

func (pl *PrimVarList) SetIntegerDetail(name UString, data []int32, detail DetailType) {
	pl.set(PrimVar{Name: name, Type: ParamInteger, Detail: detail, Data: data})
}

func (pl *PrimVarList) SetMatrixDetail(name UString, data []math.Mat4, detail DetailType) {
	pl.set(PrimVar{Name: name, Type: ParamMatrix, Detail: detail, Data: data})
}

// SetFloat sets a constant float.
func (pl *PrimVarList) SetFloat(name UString, v float32) {
	pl.SetFloatDetail(name, []float32{v}, DetailConstant)
}

// SetPointSamples stores one run of points per time set with SetTimes.
func (pl *PrimVarList) SetPointSamples(name UString, samples [][]math.Vec3, detail DetailType) error {
	if len(samples) != len(pl.times) {
		return fmt.Errorf("%w: %s has %d samples for %d times", core.ErrInvalidPrimVarList, name, len(samples), len(pl.times))
	}
	var flat []math.Vec3
	for _, s := range samples {
		flat = append(flat, s...)
	}
	pl.set(PrimVar{Name: name, Type: ParamPoint, Detail: detail, Data: flat, Samples: len(samples)})
	return nil
}

// Get looks up an entry by name.
func (pl *PrimVarList) Get(name UString) (PrimVar, bool) {
	i, ok := pl.index[name]
	if !ok {
		return PrimVar{}, false
	}
	return pl.entries[i], true
}

// PointSamples splits a point entry back into its time samples.
func (pl *PrimVarList) PointSamples(name UString) ([][]math.Vec3, bool) {
	pv, ok := pl.Get(name)
	if !ok {
		return nil, false
	}
	data, ok := pv.Data.([]math.Vec3)
	if !ok || pv.Samples <= 0 {
		return nil, false
	}
	n := len(data) / pv.Samples
	out := make([][]math.Vec3, pv.Samples)
	for i := range out {
		out[i] = data[i*n : (i+1)*n]
	}
	return out, true
}

func (pl *PrimVarList) Remove(name UString) {
	i, ok := pl.index[name]
	if !ok {
		return
	}
	pl.entries = append(pl.entries[:i], pl.entries[i+1:]...)
	delete(pl.index, name)
	for j := i; j < len(pl.entries); j++ {
		pl.index[pl.entries[j].Name] = j
	}
}

// Names lists entry names in insertion order.
func (pl *PrimVarList) Names() []UString {
	names := make([]UString, len(pl.entries))
	for i, e := range pl.entries {
		names[i] = e.Name
	}
	return names
}

func (pl *PrimVarList) Len() int { return len(pl.entries) }

// Validate checks that every entry carries exactly the number of elements
// its detail asks for, per time sample.
func (pl *PrimVarList) Validate() error {
	for _, e := range pl.entries {
		n := e.dataLen()
		if n < 0 {
			return fmt.Errorf("%w: %s has unsupported data %T", core.ErrInvalidPrimVarList, e.Name, e.Data)
		}
		if e.Samples > 1 && e.Samples != len(pl.times) {
			return fmt.Errorf("%w: %s has %d samples for %d times", core.ErrInvalidPrimVarList, e.Name, e.Samples, len(pl.times))
		}
		want := pl.NumElements(e.Detail) * e.Samples
		if n != want {
			return fmt.Errorf("%w: %s (%s) has %d elements, want %d", core.ErrInvalidPrimVarList, e.Name, e.Detail, n, want)
		}
	}
	return nil
}
