package hd

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/hdprman/engine/core"
)

// Path identifies a scene primitive. It is absolute and '/'-separated,
// e.g. "/World/Points". The zero value is the empty path.
type Path struct {
	s string
}

// EmptyPath is used where no prim is bound (no instancer, no material).
var EmptyPath = Path{}

// AbsoluteRootPath is "/".
var AbsoluteRootPath = Path{s: "/"}

func NewPath(s string) (Path, error) {
	if s == "" {
		return EmptyPath, fmt.Errorf("%w: empty string", core.ErrInvalidPath)
	}
	if s == "/" {
		return AbsoluteRootPath, nil
	}
	if !strings.HasPrefix(s, "/") {
		return EmptyPath, fmt.Errorf("%w: %q is not absolute", core.ErrInvalidPath, s)
	}
	if strings.HasSuffix(s, "/") {
		return EmptyPath, fmt.Errorf("%w: %q has a trailing separator", core.ErrInvalidPath, s)
	}
	for _, elem := range strings.Split(s[1:], "/") {
		if elem == "" {
			return EmptyPath, fmt.Errorf("%w: %q has an empty element", core.ErrInvalidPath, s)
		}
	}
	return Path{s: s}, nil
}

// MustPath is NewPath for literals; it panics on malformed input.
func MustPath(s string) Path {
	p, err := NewPath(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Path) String() string { return p.s }

func (p Path) IsEmpty() bool { return p.s == "" }

// Name is the last element of the path.
func (p Path) Name() string {
	if p.s == "/" || p.s == "" {
		return ""
	}
	return p.s[strings.LastIndexByte(p.s, '/')+1:]
}

func (p Path) Parent() Path {
	if p.s == "/" || p.s == "" {
		return EmptyPath
	}
	i := strings.LastIndexByte(p.s, '/')
	if i == 0 {
		return AbsoluteRootPath
	}
	return Path{s: p.s[:i]}
}

func (p Path) AppendChild(name string) (Path, error) {
	if p.IsEmpty() {
		return EmptyPath, fmt.Errorf("%w: cannot append to empty path", core.ErrInvalidPath)
	}
	if p.s == "/" {
		return NewPath("/" + name)
	}
	return NewPath(p.s + "/" + name)
}

// HasPrefix reports whether prefix is p or one of its ancestors.
func (p Path) HasPrefix(prefix Path) bool {
	if prefix.IsEmpty() || p.IsEmpty() {
		return false
	}
	if prefix.s == "/" || prefix.s == p.s {
		return true
	}
	return strings.HasPrefix(p.s, prefix.s+"/")
}

// MarshalText lets paths be used as TOML/JSON keys and values.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.s), nil
}

func (p *Path) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*p = EmptyPath
		return nil
	}
	np, err := NewPath(string(b))
	if err != nil {
		return err
	}
	*p = np
	return nil
}
