package hd

// Interpolation classifies how many elements a primvar carries relative
// to its prim.
type Interpolation int

const (
	InterpolationConstant Interpolation = iota
	InterpolationUniform
	InterpolationVarying
	InterpolationVertex
	InterpolationFaceVarying
	InterpolationInstance
)

// AllInterpolations lists the interpolations in the order adapters walk them.
var AllInterpolations = []Interpolation{
	InterpolationConstant,
	InterpolationUniform,
	InterpolationVarying,
	InterpolationVertex,
	InterpolationFaceVarying,
	InterpolationInstance,
}

func (i Interpolation) String() string {
	switch i {
	case InterpolationConstant:
		return "constant"
	case InterpolationUniform:
		return "uniform"
	case InterpolationVarying:
		return "varying"
	case InterpolationVertex:
		return "vertex"
	case InterpolationFaceVarying:
		return "faceVarying"
	case InterpolationInstance:
		return "instance"
	default:
		return "unknown"
	}
}

// ParseInterpolation is the inverse of String. Unknown names map to constant.
func ParseInterpolation(s string) (Interpolation, bool) {
	for _, i := range AllInterpolations {
		if i.String() == s {
			return i, true
		}
	}
	return InterpolationConstant, false
}

// PrimvarDescriptor describes one primvar authored on a prim.
type PrimvarDescriptor struct {
	Name          Token
	Interpolation Interpolation
	Role          Token
}

// GeomSubset is a named sub-range of a prim's elements.
type GeomSubset struct {
	Type       Token
	ID         Path
	MaterialID Path
	Indices    []int32
}
