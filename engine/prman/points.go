package prman

import (
	"fmt"

	"github.com/spaghettifunk/hdprman/engine/core"
	"github.com/spaghettifunk/hdprman/engine/hd"
	"github.com/spaghettifunk/hdprman/engine/math"
	"github.com/spaghettifunk/hdprman/engine/riley"
)

// PointsStrategy selects how point positions are gathered.
type PointsStrategy int

const (
	// StrategyDirect reads points and samples them over the shutter.
	StrategyDirect PointsStrategy = iota
	// StrategyVelocityBlur derives motion from velocities.
	StrategyVelocityBlur
)

func (s PointsStrategy) String() string {
	if s == StrategyVelocityBlur {
		return "velocityBlur"
	}
	return "direct"
}

// SelectPointsStrategy picks the strategy for one conversion.
func SelectPointsStrategy(config Config) PointsStrategy {
	if config.VelocityBlur() {
		return StrategyVelocityBlur
	}
	return StrategyDirect
}

// Conversion is the result of converting a prim's geometry.
type Conversion struct {
	Primvars    *riley.PrimVarList
	PrimType    riley.UString
	GeomSubsets []hd.GeomSubset
	NumPoints   int
	Strategy    PointsStrategy
	// Extent bounds P over every time sample, in object space.
	Extent math.Extents3D
}

func pointsExtent(primvars *riley.PrimVarList) math.Extents3D {
	pv, ok := primvars.Get(riley.RixStr.K_P)
	if !ok {
		return math.Extents3D{}
	}
	pts, _ := pv.Data.([]math.Vec3)
	return math.ComputeExtents(pts)
}

// Points adapts a point cloud prim to the renderer.
type Points struct {
	id          hd.Path
	instancerID hd.Path
	converter   PrimvarConverter
}

type PointsOption func(*Points)

// WithInstancerID binds the prim to an instancer up front instead of
// discovering it through DirtyInstancer.
func WithInstancerID(id hd.Path) PointsOption {
	return func(p *Points) {
		p.instancerID = id
	}
}

// WithPrimvarConverter replaces the shared conversion helpers.
func WithPrimvarConverter(c PrimvarConverter) PointsOption {
	return func(p *Points) {
		p.converter = c
	}
}

func NewPoints(id hd.Path, opts ...PointsOption) *Points {
	p := &Points{
		id:        id,
		converter: SharedConverter{},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Points) ID() hd.Path { return p.id }

func (p *Points) InstancerID() hd.Path { return p.instancerID }

// GetInitialDirtyBitsMask lists everything ConvertGeometry and the gprim
// sync read, so all of it is available on the first sync.
func (p *Points) GetInitialDirtyBitsMask() hd.DirtyBits {
	return hd.Clean |
		hd.DirtyPoints |
		hd.DirtyTransform |
		hd.DirtyVisibility |
		hd.DirtyPrimvar |
		hd.DirtyNormals |
		hd.DirtyWidths |
		hd.DirtyMaterial |
		hd.DirtyInstancer
}

// ConvertGeometry builds a fresh primvar list for id.
func (p *Points) ConvertGeometry(rp *RenderParam, sd hd.SceneDelegate, id hd.Path) (Conversion, error) {
	strategy := SelectPointsStrategy(rp.Config())
	switch strategy {
	case StrategyVelocityBlur:
		return p.convertVelocityBlur(rp, sd, id)
	default:
		return p.convertDirect(rp, sd, id)
	}
}

func (p *Points) convertVelocityBlur(rp *RenderParam, sd hd.SceneDelegate, id hd.Path) (Conversion, error) {
	primvars := riley.NewEmptyPrimVarList()

	npoints := p.converter.ConvertPointsPrimvarForPoints(rp, sd, id, primvars)

	if rp.Config().StrictValidation {
		if size := sd.Get(id, hd.TokenPoints).ArraySize(); size != npoints {
			return Conversion{}, fmt.Errorf("<%s> velocity points %d, points attribute %d: %w",
				id, npoints, size, core.ErrPointCountMismatch)
		}
	}

	subsets := p.converter.ConvertPrimvars(sd, id, primvars, 1, npoints, npoints, npoints, nil)

	return Conversion{
		Primvars:    primvars,
		PrimType:    riley.RixStr.K_Ri_Points,
		GeomSubsets: subsets,
		NumPoints:   npoints,
		Strategy:    StrategyVelocityBlur,
		Extent:      pointsExtent(primvars),
	}, nil
}

func (p *Points) convertDirect(rp *RenderParam, sd hd.SceneDelegate, id hd.Path) (Conversion, error) {
	// Points have no topology to count elements from; the points
	// attribute is the only source.
	npoints := sd.Get(id, hd.TokenPoints).ArraySize()

	primvars := riley.NewPrimVarList(1, npoints, npoints, npoints)

	primvarTime := p.converter.ConvertPositions(rp, sd, id, npoints, primvars)

	subsets := p.converter.ConvertPrimvars(sd, id, primvars, 1, npoints, npoints, npoints, &primvarTime)

	return Conversion{
		Primvars:    primvars,
		PrimType:    riley.RixStr.K_Ri_Points,
		GeomSubsets: subsets,
		NumPoints:   npoints,
		Strategy:    StrategyDirect,
		Extent:      pointsExtent(primvars),
	}, nil
}
