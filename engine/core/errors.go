package core

import (
	"errors"
)

var (
	ErrEmptyPrimitive      = errors.New("primitive has no elements")
	ErrPointCountMismatch  = errors.New("point count mismatch")
	ErrUnknownPrimType     = errors.New("unknown prim type")
	ErrPrimExists          = errors.New("prim already exists")
	ErrPrimNotFound        = errors.New("prim not found")
	ErrInvalidPath         = errors.New("invalid path")
	ErrInvalidPrimVarList  = errors.New("invalid primvar list")
	ErrUnknownRileyID      = errors.New("unknown riley id")
	ErrIdentifierExhausted = errors.New("identifier pool exhausted")
	ErrUnknown             = errors.New("unknown")
)
