package engine

import (
	"github.com/spaghettifunk/hdprman/engine/hd"
	"github.com/spaghettifunk/hdprman/engine/scene"
)

// Game drives a scene from code instead of a scene file.
type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnShutdown        Shutdown
}

// Initialize authors the starting scene.
type Initialize func(stage *scene.Stage) error

// Update edits the stage for a frame and reports what it touched.
type Update func(frame int, stage *scene.Stage) (map[hd.Path]hd.DirtyBits, error)

type Shutdown func() error
