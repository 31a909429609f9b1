package hd

import "github.com/spaghettifunk/hdprman/engine/math"

// SceneDelegate is the read-only view of the scene that prims pull their
// data from. Missing attributes come back as empty values, never errors.
type SceneDelegate interface {
	Get(id Path, key Token) Value
	// SamplePrimvar returns up to maxSamples time samples of key, every
	// sample when maxSamples <= 0. Times are relative to the current frame,
	// in frames.
	SamplePrimvar(id Path, key Token, maxSamples int) ([]float32, []Value)
	GetTransform(id Path) math.Mat4
	GetVisible(id Path) bool
	GetMaterialID(id Path) Path
	GetInstancerID(id Path) Path
	GetPrimvarDescriptors(id Path, interpolation Interpolation) []PrimvarDescriptor
}

// GeomSubsetDelegate is implemented by delegates that author geometry
// subsets on their prims.
type GeomSubsetDelegate interface {
	GetGeomSubsets(id Path) []GeomSubset
}
