package prman

import (
	"github.com/spaghettifunk/hdprman/engine/core"
	"github.com/spaghettifunk/hdprman/engine/hd"
	"github.com/spaghettifunk/hdprman/engine/math"
	"github.com/spaghettifunk/hdprman/engine/riley"
)

// PrimvarConverter is the set of shared conversion helpers adapters call
// into. SharedConverter is the production implementation.
type PrimvarConverter interface {
	// ConvertPointsPrimvarForPoints writes velocity-blurred positions and
	// sizes the list's details; it returns the point count.
	ConvertPointsPrimvarForPoints(rp *RenderParam, sd hd.SceneDelegate, id hd.Path, primvars *riley.PrimVarList) int
	// ConvertPositions writes time-sampled positions and returns the time
	// the other primvars should be read at.
	ConvertPositions(rp *RenderParam, sd hd.SceneDelegate, id hd.Path, npoints int, primvars *riley.PrimVarList) float32
	// ConvertPrimvars writes every remaining primvar and returns the prim's
	// geometry subsets.
	ConvertPrimvars(sd hd.SceneDelegate, id hd.Path, primvars *riley.PrimVarList, uniform, vertex, varying, facevarying int, time *float32) []hd.GeomSubset
}

type SharedConverter struct{}

func (SharedConverter) ConvertPointsPrimvarForPoints(rp *RenderParam, sd hd.SceneDelegate, id hd.Path, primvars *riley.PrimVarList) int {
	return ConvertPointsPrimvarForPoints(rp, sd, id, primvars)
}

func (SharedConverter) ConvertPositions(rp *RenderParam, sd hd.SceneDelegate, id hd.Path, npoints int, primvars *riley.PrimVarList) float32 {
	return rp.ConvertPositions(sd, id, npoints, primvars)
}

func (SharedConverter) ConvertPrimvars(sd hd.SceneDelegate, id hd.Path, primvars *riley.PrimVarList, uniform, vertex, varying, facevarying int, time *float32) []hd.GeomSubset {
	return ConvertPrimvars(sd, id, primvars, uniform, vertex, varying, facevarying, time)
}

// Primvars handled through positions and never emitted as user data.
var positionPrimvars = map[hd.Token]bool{
	hd.TokenPoints:        true,
	hd.TokenVelocities:    true,
	hd.TokenAccelerations: true,
}

// ConvertPointsPrimvarForPoints reads points, velocities and accelerations
// and writes P. With matching velocities and more than one motion sample,
// P is extrapolated to every sample time; otherwise it is a single sample.
func ConvertPointsPrimvarForPoints(rp *RenderParam, sd hd.SceneDelegate, id hd.Path, primvars *riley.PrimVarList) int {
	val := sd.Get(id, hd.TokenPoints)
	points, ok := val.Vec3Array()
	if !ok && !val.IsEmpty() {
		core.LogWarn("<%s> points did not have expected type vec3f[], got %T", id, val.Interface())
	}
	npoints := len(points)
	primvars.SetDetail(1, npoints, npoints, npoints)

	times := rp.MotionSampleTimes()
	velocities, _ := sd.Get(id, hd.TokenVelocities).Vec3Array()
	if npoints == 0 || len(times) < 2 || len(velocities) != npoints {
		if len(velocities) != 0 && len(velocities) != npoints {
			core.LogWarn("<%s> %d velocities for %d points, ignoring velocities", id, len(velocities), npoints)
		}
		if points == nil {
			points = []math.Vec3{}
		}
		primvars.SetPointDetail(riley.RixStr.K_P, points, riley.DetailVertex)
		return npoints
	}

	accelerations, _ := sd.Get(id, hd.TokenAccelerations).Vec3Array()
	if len(accelerations) != 0 && len(accelerations) != npoints {
		core.LogWarn("<%s> %d accelerations for %d points, ignoring accelerations", id, len(accelerations), npoints)
		accelerations = nil
	}

	fps := rp.Config().FPS
	samples := make([][]math.Vec3, len(times))
	for s, t := range times {
		seconds := t / fps
		sample := make([]math.Vec3, npoints)
		for i, p := range points {
			var a math.Vec3
			if accelerations != nil {
				a = accelerations[i]
			}
			sample[i] = math.Extrapolate(p, velocities[i], a, seconds)
		}
		samples[s] = sample
	}

	primvars.SetTimes(times)
	if err := primvars.SetPointSamples(riley.RixStr.K_P, samples, riley.DetailVertex); err != nil {
		core.LogError("<%s> %s", id, err.Error())
	}
	return npoints
}

func detailFor(interp hd.Interpolation) (riley.DetailType, bool) {
	switch interp {
	case hd.InterpolationConstant:
		return riley.DetailConstant, true
	case hd.InterpolationUniform:
		return riley.DetailUniform, true
	case hd.InterpolationVertex:
		return riley.DetailVertex, true
	case hd.InterpolationVarying:
		return riley.DetailVarying, true
	case hd.InterpolationFaceVarying:
		return riley.DetailFaceVarying, true
	default:
		return 0, false
	}
}

func renderName(name hd.Token, interp hd.Interpolation) riley.UString {
	switch name {
	case hd.TokenNormals:
		return riley.RixStr.K_N
	case hd.TokenWidths:
		if interp == hd.InterpolationConstant {
			return riley.RixStr.K_constantwidth
		}
		return riley.RixStr.K_width
	case hd.TokenDisplayColor:
		return riley.RixStr.K_Cs
	case hd.TokenDisplayOpacity:
		return riley.RixStr.K_Os
	default:
		return riley.UString(name)
	}
}

// sampleAt returns the sample of key closest to time, falling back to the
// untimed value when the delegate has no samples.
func sampleAt(sd hd.SceneDelegate, id hd.Path, key hd.Token, time *float32) hd.Value {
	if time == nil {
		return sd.Get(id, key)
	}
	times, values := sd.SamplePrimvar(id, key, MaxTimeSamples)
	if len(values) == 0 {
		return sd.Get(id, key)
	}
	best := 0
	for i := range times {
		if absf(times[i]-*time) < absf(times[best]-*time) {
			best = i
		}
	}
	return values[best]
}

func absf(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

// ConvertPrimvars writes every authored primvar except positions onto
// primvars. Entries already in the list are never replaced. Values whose
// element count disagrees with their interpolation are dropped with a
// warning. Instance-rate primvars belong to the
// instancer and are skipped.
func ConvertPrimvars(sd hd.SceneDelegate, id hd.Path, primvars *riley.PrimVarList, uniform, vertex, varying, facevarying int, time *float32) []hd.GeomSubset {
	expected := map[riley.DetailType]int{
		riley.DetailConstant:    1,
		riley.DetailUniform:     uniform,
		riley.DetailVertex:      vertex,
		riley.DetailVarying:     varying,
		riley.DetailFaceVarying: facevarying,
	}

	for _, interp := range hd.AllInterpolations {
		detail, ok := detailFor(interp)
		if !ok {
			continue
		}
		for _, desc := range sd.GetPrimvarDescriptors(id, interp) {
			if positionPrimvars[desc.Name] {
				continue
			}
			val := sampleAt(sd, id, desc.Name, time)
			if val.IsEmpty() {
				continue
			}
			name := renderName(desc.Name, interp)
			if _, taken := primvars.Get(name); taken {
				core.LogWarn("<%s> primvar %s would overwrite %s, skipping", id, desc.Name, name)
				continue
			}
			n := setPrimvar(primvars, name, desc, detail, val)
			if n < 0 {
				core.LogWarn("<%s> primvar %s has unsupported type %T", id, desc.Name, val.Interface())
				continue
			}
			if n != expected[detail] {
				core.LogWarn("<%s> primvar %s has %d elements, expected %d for %s interpolation",
					id, desc.Name, n, expected[detail], interp)
				primvars.Remove(name)
			}
		}
	}

	return convertGeomSubsets(sd, id, vertex)
}

// setPrimvar writes val and returns its element count, or -1 if the type
// is not supported.
func setPrimvar(primvars *riley.PrimVarList, name riley.UString, desc hd.PrimvarDescriptor, detail riley.DetailType, val hd.Value) int {
	switch d := val.Interface().(type) {
	case []math.Vec3:
		setVec3(primvars, name, desc.Role, d, detail)
		return len(d)
	case math.Vec3:
		if detail != riley.DetailConstant {
			return -1
		}
		setVec3(primvars, name, desc.Role, []math.Vec3{d}, detail)
		return 1
	case []float32:
		primvars.SetFloatDetail(name, d, detail)
		return len(d)
	case float32:
		primvars.SetFloatDetail(name, []float32{d}, detail)
		return 1
	case []int32:
		primvars.SetIntegerDetail(name, d, detail)
		return len(d)
	case []math.Vec4:
		primvars.SetFloat4Detail(name, d, detail)
		return len(d)
	default:
		return -1
	}
}

func setVec3(primvars *riley.PrimVarList, name riley.UString, role hd.Token, data []math.Vec3, detail riley.DetailType) {
	switch {
	case role == hd.RoleNormal || name == riley.RixStr.K_N:
		primvars.SetNormalDetail(name, data, detail)
	case role == hd.RoleColor || name == riley.RixStr.K_Cs || name == riley.RixStr.K_Os:
		primvars.SetColorDetail(name, data, detail)
	case role == hd.RolePoint:
		primvars.SetPointDetail(name, data, detail)
	default:
		primvars.SetVectorDetail(name, data, detail)
	}
}

func convertGeomSubsets(sd hd.SceneDelegate, id hd.Path, elementCount int) []hd.GeomSubset {
	src, ok := sd.(hd.GeomSubsetDelegate)
	if !ok {
		return nil
	}
	var subsets []hd.GeomSubset
	for _, subset := range src.GetGeomSubsets(id) {
		valid := true
		for _, idx := range subset.Indices {
			if idx < 0 || int(idx) >= elementCount {
				valid = false
				break
			}
		}
		if !valid {
			core.LogWarn("<%s> geom subset %s indexes outside %d elements, skipping", id, subset.ID, elementCount)
			continue
		}
		subsets = append(subsets, subset)
	}
	return subsets
}
