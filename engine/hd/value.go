package hd

import (
	"reflect"

	"github.com/spaghettifunk/hdprman/engine/math"
)

// Value is an opaque attribute value handed out by a scene delegate.
// An absent attribute is the zero Value.
type Value struct {
	data interface{}
}

func NewValue(v interface{}) Value {
	return Value{data: v}
}

func (v Value) IsEmpty() bool { return v.data == nil }

// Interface returns the held value.
func (v Value) Interface() interface{} { return v.data }

// IsArray reports whether the value holds a slice.
func (v Value) IsArray() bool {
	if v.data == nil {
		return false
	}
	return reflect.TypeOf(v.data).Kind() == reflect.Slice
}

// ArraySize is the element count of an array value, 0 for absent or
// scalar values.
func (v Value) ArraySize() int {
	switch d := v.data.(type) {
	case nil:
		return 0
	case []math.Vec3:
		return len(d)
	case []math.Vec4:
		return len(d)
	case []float32:
		return len(d)
	case []int32:
		return len(d)
	case []string:
		return len(d)
	}
	rv := reflect.ValueOf(v.data)
	if rv.Kind() == reflect.Slice {
		return rv.Len()
	}
	return 0
}

func (v Value) Vec3Array() ([]math.Vec3, bool) {
	d, ok := v.data.([]math.Vec3)
	return d, ok
}

func (v Value) Vec4Array() ([]math.Vec4, bool) {
	d, ok := v.data.([]math.Vec4)
	return d, ok
}

func (v Value) FloatArray() ([]float32, bool) {
	d, ok := v.data.([]float32)
	return d, ok
}

func (v Value) IntArray() ([]int32, bool) {
	d, ok := v.data.([]int32)
	return d, ok
}

func (v Value) Float() (float32, bool) {
	d, ok := v.data.(float32)
	return d, ok
}

func (v Value) Vec3() (math.Vec3, bool) {
	d, ok := v.data.(math.Vec3)
	return d, ok
}

func (v Value) Matrix() (math.Mat4, bool) {
	d, ok := v.data.(math.Mat4)
	return d, ok
}

func (v Value) Bool() (bool, bool) {
	d, ok := v.data.(bool)
	return d, ok
}
