package hd

import "strings"

// DirtyBits flags the data categories of a prim that changed since the
// last sync. The change tracker owns the lifecycle; prims only read it.
type DirtyBits uint32

const (
	Clean              DirtyBits = 0
	InitRepr           DirtyBits = 1 << 0
	Varying            DirtyBits = 1 << 1
	DirtyPrimID        DirtyBits = 1 << 2
	DirtyExtent        DirtyBits = 1 << 3
	DirtyDisplay       DirtyBits = 1 << 4
	DirtyPoints        DirtyBits = 1 << 5
	DirtyPrimvar       DirtyBits = 1 << 6
	DirtyMaterial      DirtyBits = 1 << 7
	DirtyTopology      DirtyBits = 1 << 8
	DirtyTransform     DirtyBits = 1 << 9
	DirtyVisibility    DirtyBits = 1 << 10
	DirtyNormals       DirtyBits = 1 << 11
	DirtyDoubleSided   DirtyBits = 1 << 12
	DirtyCullStyle     DirtyBits = 1 << 13
	DirtySubdivTags    DirtyBits = 1 << 14
	DirtyWidths        DirtyBits = 1 << 15
	DirtyInstancer     DirtyBits = 1 << 16
	DirtyInstanceIndex DirtyBits = 1 << 17
	DirtyRepr          DirtyBits = 1 << 18
	DirtyRenderTag     DirtyBits = 1 << 19

	AllDirty DirtyBits = (1 << 20) - 1
)

var dirtyNames = []struct {
	bit  DirtyBits
	name string
}{
	{InitRepr, "InitRepr"},
	{Varying, "Varying"},
	{DirtyPrimID, "DirtyPrimID"},
	{DirtyExtent, "DirtyExtent"},
	{DirtyDisplay, "DirtyDisplayStyle"},
	{DirtyPoints, "DirtyPoints"},
	{DirtyPrimvar, "DirtyPrimvar"},
	{DirtyMaterial, "DirtyMaterialId"},
	{DirtyTopology, "DirtyTopology"},
	{DirtyTransform, "DirtyTransform"},
	{DirtyVisibility, "DirtyVisibility"},
	{DirtyNormals, "DirtyNormals"},
	{DirtyDoubleSided, "DirtyDoubleSided"},
	{DirtyCullStyle, "DirtyCullStyle"},
	{DirtySubdivTags, "DirtySubdivTags"},
	{DirtyWidths, "DirtyWidths"},
	{DirtyInstancer, "DirtyInstancer"},
	{DirtyInstanceIndex, "DirtyInstanceIndex"},
	{DirtyRepr, "DirtyRepr"},
	{DirtyRenderTag, "DirtyRenderTag"},
}

// Has reports whether every bit of mask is set.
func (d DirtyBits) Has(mask DirtyBits) bool { return d&mask == mask }

// Any reports whether at least one bit of mask is set.
func (d DirtyBits) Any(mask DirtyBits) bool { return d&mask != 0 }

func (d *DirtyBits) Set(mask DirtyBits) { *d |= mask }

func (d *DirtyBits) Clear(mask DirtyBits) { *d &^= mask }

func (d DirtyBits) String() string {
	if d == Clean {
		return "Clean"
	}
	var names []string
	for _, n := range dirtyNames {
		if d&n.bit != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}
