package prman

import (
	"sort"

	"github.com/google/uuid"
	"github.com/spaghettifunk/hdprman/engine/core"
	"github.com/spaghettifunk/hdprman/engine/hd"
	"github.com/spaghettifunk/hdprman/engine/math"
	"github.com/spaghettifunk/hdprman/engine/riley"
)

// RenderParam is the render session context shared by every prim of a
// render delegate. It is read-only once built, so prims may use it from
// concurrent syncs.
type RenderParam struct {
	config  Config
	riley   riley.Riley
	session uuid.UUID
}

func NewRenderParam(config Config, r riley.Riley) *RenderParam {
	rp := &RenderParam{
		config:  config.Normalized(),
		riley:   r,
		session: uuid.New(),
	}
	core.LogDebug("render session %s: plugins=%v samples=%d shutter=[%g,%g]",
		rp.session, rp.config.SceneIndexPlugins, rp.config.MotionSamples,
		rp.config.ShutterOpen, rp.config.ShutterClose)
	return rp
}

func (rp *RenderParam) Config() Config { return rp.config }

func (rp *RenderParam) Riley() riley.Riley { return rp.riley }

func (rp *RenderParam) SessionID() uuid.UUID { return rp.session }

func (rp *RenderParam) ShutterInterval() (float32, float32) {
	return rp.config.ShutterOpen, rp.config.ShutterClose
}

// MotionSampleTimes spreads the configured sample count evenly over the
// shutter interval. A single sample sits at shutter open.
func (rp *RenderParam) MotionSampleTimes() []float32 {
	n := rp.config.MotionSamples
	open, shutterClose := rp.ShutterInterval()
	if n <= 1 || open == shutterClose {
		return []float32{open}
	}
	times := make([]float32, n)
	step := (shutterClose - open) / float32(n-1)
	for i := range times {
		times[i] = open + step*float32(i)
	}
	return times
}

// shutterSamples keeps the samples inside [open, close], or the samples
// bracketing the interval when none fall inside, sorted by time and thinned
// evenly to at most maxSamples.
func shutterSamples(times []float32, values []hd.Value, open, shutterClose float32, maxSamples int) ([]float32, []hd.Value) {
	order := make([]int, len(times))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return times[order[a]] < times[order[b]] })

	var keep []int
	for _, i := range order {
		if times[i] >= open && times[i] <= shutterClose {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		before, after := -1, -1
		for _, i := range order {
			if times[i] < open {
				before = i
			} else if after < 0 && times[i] > shutterClose {
				after = i
			}
		}
		for _, i := range []int{before, after} {
			if i >= 0 {
				keep = append(keep, i)
			}
		}
	}

	if maxSamples > 0 && len(keep) > maxSamples {
		thinned := make([]int, maxSamples)
		if maxSamples == 1 {
			thinned[0] = keep[0]
		} else {
			for j := range thinned {
				thinned[j] = keep[j*(len(keep)-1)/(maxSamples-1)]
			}
		}
		keep = thinned
	}

	outTimes := make([]float32, len(keep))
	outValues := make([]hd.Value, len(keep))
	for j, i := range keep {
		outTimes[j] = times[i]
		outValues[j] = values[i]
	}
	return outTimes, outValues
}

// ConvertPositions samples the points of id over the shutter interval and
// writes them as P. Samples whose size disagrees with npoints are dropped.
// The returned time is the one the rest of the prim's primvars should be
// evaluated at.
func (rp *RenderParam) ConvertPositions(sd hd.SceneDelegate, id hd.Path, npoints int, primvars *riley.PrimVarList) float32 {
	times, values := sd.SamplePrimvar(id, hd.TokenPoints, 0)
	open, shutterClose := rp.ShutterInterval()
	times, values = shutterSamples(times, values, open, shutterClose, rp.config.MotionSamples)

	var keptTimes []float32
	var kept [][]math.Vec3
	for i, v := range values {
		pts, ok := v.Vec3Array()
		if !ok && !v.IsEmpty() {
			core.LogWarn("<%s> points did not have expected type vec3f[], got %T", id, v.Interface())
			continue
		}
		if len(pts) != npoints {
			core.LogWarn("<%s> points sample %d has %d points, expected %d", id, i, len(pts), npoints)
			continue
		}
		keptTimes = append(keptTimes, times[i])
		kept = append(kept, pts)
	}

	switch len(kept) {
	case 0:
		if npoints == 0 {
			primvars.SetPointDetail(riley.RixStr.K_P, []math.Vec3{}, riley.DetailVertex)
		} else {
			core.LogWarn("<%s> no usable points sample, P left unset", id)
		}
		return 0
	case 1:
		primvars.SetPointDetail(riley.RixStr.K_P, kept[0], riley.DetailVertex)
		return keptTimes[0]
	default:
		primvars.SetTimes(keptTimes)
		if err := primvars.SetPointSamples(riley.RixStr.K_P, kept, riley.DetailVertex); err != nil {
			core.LogError("<%s> %s", id, err.Error())
		}
		return keptTimes[0]
	}
}
