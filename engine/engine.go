package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spaghettifunk/hdprman/engine/assets"
	"github.com/spaghettifunk/hdprman/engine/core"
	"github.com/spaghettifunk/hdprman/engine/hd"
	"github.com/spaghettifunk/hdprman/engine/riley"
	"github.com/spaghettifunk/hdprman/engine/scene"
	"github.com/spaghettifunk/hdprman/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine completed boot process and is ready to be initialized
	EngineStageBootComplete
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

type Engine struct {
	mu           sync.Mutex
	currentStage Stage
	gameInstance *Game
	config       *ApplicationConfig

	stage         *scene.Stage
	systemManager *systems.SystemManager
	index         *systems.RenderIndex
	watcher       *assets.SceneWatcher

	clock *core.Clock
	frame int
}

func New(g *Game) (*Engine, error) {
	if g == nil {
		g = &Game{}
	}
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = DefaultApplicationConfig()
	}
	cfg := g.ApplicationConfig
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, _ := cfg.logLevel()
	core.SetLogLevel(level)

	e := &Engine{
		currentStage: EngineStageBooting,
		gameInstance: g,
		config:       cfg,
		stage:        scene.NewStage(),
		clock:        core.NewClock(),
	}

	sm, err := systems.NewSystemManager(systems.SystemManagerConfig{
		Workers:         cfg.Workers,
		MaxRileyObjects: cfg.MaxRileyObjects,
		Render:          cfg.Render,
	}, e.stage)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	e.systemManager = sm
	e.index = sm.RenderIndex()

	e.currentStage = EngineStageBootComplete
	core.LogInfo("%s booted, session %s", cfg.Name, e.index.RenderParam().SessionID())
	return e, nil
}

// Initialize authors the starting scene and populates the render index.
func (e *Engine) Initialize() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.currentStage != EngineStageBootComplete {
		return fmt.Errorf("initialize: engine in stage %d", e.currentStage)
	}
	e.currentStage = EngineStageInitializing

	switch {
	case e.gameInstance.FnInitialize != nil:
		if err := e.gameInstance.FnInitialize(e.stage); err != nil {
			return fmt.Errorf("game initialize: %w", err)
		}
	case e.config.ScenePath != "":
		loaded, err := scene.Load(e.config.ScenePath)
		if err != nil {
			return err
		}
		e.stage.Replace(loaded)
	default:
		return errors.New("initialize: no scene file and no game initializer")
	}

	for _, path := range e.stage.Paths() {
		primType, _ := e.stage.PrimType(path)
		if err := e.insert(primType, path); err != nil {
			return err
		}
	}

	if e.config.WatchScene && e.config.ScenePath != "" {
		w, err := assets.NewSceneWatcher(e.config.ScenePath)
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return errors.Join(err, w.Close())
		}
		e.watcher = w
		core.LogInfo("watching %s for changes", e.config.ScenePath)
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("scene initialized with %d rprims", len(e.index.RprimIDs()))
	return nil
}

// insert adds an rprim when its type has an adapter. Unsupported types are
// skipped.
func (e *Engine) insert(primType hd.Token, path hd.Path) error {
	if !e.index.IsRprimTypeSupported(primType) {
		core.LogWarn("skipping %s: no adapter for prim type %q", path, primType)
		return nil
	}
	return e.index.InsertRprim(primType, path)
}

// Run renders frames until ctx is cancelled or the configured frame count
// is reached. Prim sync failures are logged and retried next frame.
func (e *Engine) Run(ctx context.Context) error {
	e.mu.Lock()
	if e.currentStage != EngineStageInitialized {
		e.mu.Unlock()
		return fmt.Errorf("run: engine in stage %d", e.currentStage)
	}
	e.currentStage = EngineStageRunning
	e.mu.Unlock()

	interval, _ := e.config.frameInterval()
	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	e.clock.Start()
	for e.config.Frames == 0 || e.frame < e.config.Frames {
		if _, err := e.Frame(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ue *updateError
			if errors.As(err, &ue) {
				core.LogError("game update failed, shutting down: %s", err.Error())
				return err
			}
			core.LogWarn("frame %d: %s", e.frame, err.Error())
		}

		if tick == nil {
			if ctx.Err() != nil {
				return nil
			}
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
		}
	}
	e.clock.Update()
	core.LogInfo("rendered %d frames in %s (avg sync %.3fms)", e.frame, e.clock.Elapsed(), e.Metrics().PassTime())
	return nil
}

type updateError struct{ err error }

func (u *updateError) Error() string { return "game update: " + u.err.Error() }

func (u *updateError) Unwrap() error { return u.err }

// Frame applies pending scene edits and runs one sync pass.
func (e *Engine) Frame(ctx context.Context) (systems.SyncResult, error) {
	if e.watcher != nil {
		for _, r := range e.watcher.Pending() {
			core.LogInfo("applying scene reload from %s", r.LoadedAt.Format(time.RFC3339))
			if err := e.applyStage(r.Stage); err != nil {
				return systems.SyncResult{}, err
			}
		}
	}

	if e.gameInstance.FnUpdate != nil {
		edits, err := e.gameInstance.FnUpdate(e.frame, e.stage)
		if err != nil {
			return systems.SyncResult{}, &updateError{err}
		}
		tracker := e.index.ChangeTracker()
		for path, bits := range edits {
			if _, ok := e.index.GetRprim(path); !ok {
				continue
			}
			if err := tracker.MarkRprimDirty(path, bits); err != nil {
				return systems.SyncResult{}, err
			}
		}
	}

	result, err := e.systemManager.SyncSystem().Sync(ctx)
	e.frame++
	return result, err
}

// applyStage swaps in a reloaded scene, inserting new prims, removing
// deleted ones and dirtying the changed ones.
func (e *Engine) applyStage(next *scene.Stage) error {
	added, removed, changed := scene.Diff(e.stage, next)

	oldTypes := make(map[hd.Path]hd.Token, len(changed))
	for _, path := range changed {
		oldTypes[path], _ = e.stage.PrimType(path)
		core.LogDebug("%s changed (-old +new):\n%s", path, scene.PrimDiff(e.stage, next, path))
	}
	e.stage.Replace(next)

	var errs []error
	for _, path := range removed {
		if _, ok := e.index.GetRprim(path); ok {
			errs = append(errs, e.index.RemoveRprim(path))
		}
	}
	for _, path := range added {
		primType, _ := next.PrimType(path)
		errs = append(errs, e.insert(primType, path))
	}
	for _, path := range changed {
		primType, _ := next.PrimType(path)
		rprim, ok := e.index.GetRprim(path)
		if primType != oldTypes[path] {
			if ok {
				errs = append(errs, e.index.RemoveRprim(path))
			}
			errs = append(errs, e.insert(primType, path))
			continue
		}
		if ok {
			errs = append(errs, e.index.ChangeTracker().MarkRprimDirty(path, rprim.GetInitialDirtyBitsMask()))
		}
	}
	core.LogDebug("scene reload: %d added, %d removed, %d changed", len(added), len(removed), len(changed))
	return errors.Join(errs...)
}

// Shutdown releases every renderer object and stops the workers.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.currentStage == EngineStageShuttingDown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown

	var errs []error
	if e.watcher != nil {
		errs = append(errs, e.watcher.Close())
	}
	errs = append(errs, e.systemManager.Shutdown())
	if e.gameInstance.FnShutdown != nil {
		errs = append(errs, e.gameInstance.FnShutdown())
	}

	passes, synced, failed := e.Metrics().Totals()
	core.LogInfo("shutdown after %d sync passes: %d prims synced, %d failures", passes, synced, failed)
	return errors.Join(errs...)
}

func (e *Engine) CurrentStage() Stage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentStage
}

func (e *Engine) Scene() *scene.Stage { return e.stage }

func (e *Engine) Riley() *riley.Memory { return e.systemManager.Riley() }

func (e *Engine) RenderIndex() *systems.RenderIndex { return e.index }

func (e *Engine) Metrics() *core.SyncMetrics { return e.systemManager.Metrics() }

// FrameCount is the number of frames rendered so far.
func (e *Engine) FrameCount() int { return e.frame }
