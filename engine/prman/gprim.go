package prman

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/hdprman/engine/core"
	"github.com/spaghettifunk/hdprman/engine/hd"
	"github.com/spaghettifunk/hdprman/engine/math"
	"github.com/spaghettifunk/hdprman/engine/riley"
)

// GeometryConverter is the capability a prim adapter offers the host.
type GeometryConverter interface {
	GetInitialDirtyBitsMask() hd.DirtyBits
	ConvertGeometry(rp *RenderParam, sd hd.SceneDelegate, id hd.Path) (Conversion, error)
}

// instancerBound is implemented by converters constructed with an
// explicit instancer.
type instancerBound interface {
	InstancerID() hd.Path
}

const geometryDirtyBits = hd.DirtyPoints | hd.DirtyPrimvar | hd.DirtyNormals | hd.DirtyWidths

// Gprim owns the renderer objects of one prim and decides, from its dirty
// bits, what to rebuild. A Gprim is synced by one worker at a time.
type Gprim struct {
	id      hd.Path
	conv    GeometryConverter
	protoID riley.GeometryPrototypeID
	instID  riley.GeometryInstanceID
	attrs   riley.InstanceAttributes

	lastConversion Conversion
}

func NewGprim(id hd.Path, conv GeometryConverter) *Gprim {
	return &Gprim{
		id:      id,
		conv:    conv,
		protoID: riley.InvalidPrototypeID,
		instID:  riley.InvalidInstanceID,
		attrs: riley.InstanceAttributes{
			Transform: math.NewMat4Identity(),
			Visible:   true,
		},
	}
}

func (g *Gprim) ID() hd.Path { return g.id }

func (g *Gprim) GetInitialDirtyBitsMask() hd.DirtyBits {
	return g.conv.GetInitialDirtyBitsMask()
}

func (g *Gprim) PrototypeID() riley.GeometryPrototypeID { return g.protoID }

func (g *Gprim) InstanceID() riley.GeometryInstanceID { return g.instID }

// LastConversion is the result of the most recent geometry conversion.
func (g *Gprim) LastConversion() Conversion { return g.lastConversion }

// WorldExtent bounds the last converted points after the instance
// transform.
func (g *Gprim) WorldExtent() math.Extents3D {
	ext := g.lastConversion.Extent
	if g.lastConversion.NumPoints == 0 {
		return ext
	}
	corners := make([]math.Vec3, 0, 8)
	for _, x := range []float32{ext.Min.X, ext.Max.X} {
		for _, y := range []float32{ext.Min.Y, ext.Max.Y} {
			for _, z := range []float32{ext.Min.Z, ext.Max.Z} {
				corners = append(corners, math.NewVec3(x, y, z).Transform(g.attrs.Transform))
			}
		}
	}
	return math.ComputeExtents(corners)
}

// Sync pulls the dirty data of the prim from sd and pushes it to the
// renderer. On success every bit in dirty is cleared.
func (g *Gprim) Sync(sd hd.SceneDelegate, rp *RenderParam, dirty *hd.DirtyBits) error {
	r := rp.Riley()

	if dirty.Any(geometryDirtyBits) || g.protoID == riley.InvalidPrototypeID {
		conv, err := g.conv.ConvertGeometry(rp, sd, g.id)
		if err != nil {
			return fmt.Errorf("sync %s: %w", g.id, err)
		}
		if conv.NumPoints == 0 && rp.Config().StrictValidation {
			return fmt.Errorf("sync %s: %w", g.id, core.ErrEmptyPrimitive)
		}
		desc := riley.PrototypeDesc{
			PrimType: conv.PrimType,
			Primvars: conv.Primvars,
			Subsets:  convertSubsets(conv.GeomSubsets),
		}
		if g.protoID == riley.InvalidPrototypeID {
			id, err := r.CreateGeometryPrototype(riley.UserID(g.id.String()), desc)
			if err != nil {
				return fmt.Errorf("sync %s: %w", g.id, err)
			}
			g.protoID = id
		} else if err := r.ModifyGeometryPrototype(g.protoID, desc); err != nil {
			return fmt.Errorf("sync %s: %w", g.id, err)
		}
		g.lastConversion = conv
		core.LogDebug("<%s> converted %d points (%s)", g.id, conv.NumPoints, conv.Strategy)
	}

	attrsDirty := false
	if dirty.Any(hd.DirtyTransform) {
		g.attrs.Transform = sd.GetTransform(g.id)
		attrsDirty = true
	}
	if dirty.Any(hd.DirtyVisibility) {
		g.attrs.Visible = sd.GetVisible(g.id)
		attrsDirty = true
	}
	if dirty.Any(hd.DirtyMaterial) {
		g.attrs.Material = sd.GetMaterialID(g.id).String()
		attrsDirty = true
	}
	if dirty.Any(hd.DirtyInstancer) {
		g.attrs.Instancer = g.instancerID(sd).String()
		attrsDirty = true
	}

	if g.instID == riley.InvalidInstanceID {
		id, err := r.CreateGeometryInstance(riley.UserID(g.id.String()), g.protoID, g.attrs)
		if err != nil {
			return fmt.Errorf("sync %s: %w", g.id, err)
		}
		g.instID = id
	} else if attrsDirty {
		if err := r.ModifyGeometryInstance(g.instID, g.attrs); err != nil {
			return fmt.Errorf("sync %s: %w", g.id, err)
		}
	}

	*dirty = hd.Clean
	return nil
}

func (g *Gprim) instancerID(sd hd.SceneDelegate) hd.Path {
	if b, ok := g.conv.(instancerBound); ok && !b.InstancerID().IsEmpty() {
		return b.InstancerID()
	}
	return sd.GetInstancerID(g.id)
}

// Finalize releases the renderer objects of the prim.
func (g *Gprim) Finalize(rp *RenderParam) error {
	r := rp.Riley()
	var errs []error
	if g.instID != riley.InvalidInstanceID {
		errs = append(errs, r.DeleteGeometryInstance(g.instID))
		g.instID = riley.InvalidInstanceID
	}
	if g.protoID != riley.InvalidPrototypeID {
		errs = append(errs, r.DeleteGeometryPrototype(g.protoID))
		g.protoID = riley.InvalidPrototypeID
	}
	return errors.Join(errs...)
}

func convertSubsets(subsets []hd.GeomSubset) []riley.Subset {
	if len(subsets) == 0 {
		return nil
	}
	out := make([]riley.Subset, len(subsets))
	for i, s := range subsets {
		out[i] = riley.Subset{
			Name:     s.ID.String(),
			Material: s.MaterialID.String(),
			Indices:  s.Indices,
		}
	}
	return out
}
