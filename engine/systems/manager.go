package systems

import (
	"errors"

	"github.com/spaghettifunk/hdprman/engine/core"
	"github.com/spaghettifunk/hdprman/engine/hd"
	"github.com/spaghettifunk/hdprman/engine/prman"
	"github.com/spaghettifunk/hdprman/engine/riley"
)

type SystemManagerConfig struct {
	Workers         int
	MaxRileyObjects uint32
	Render          prman.Config
}

// SystemManager wires the renderer, the render index and the sync workers
// of one render session.
type SystemManager struct {
	jobSystem   *JobSystem
	riley       *riley.Memory
	renderIndex *RenderIndex
	syncSystem  *SyncSystem
	metrics     *core.SyncMetrics
}

func NewSystemManager(config SystemManagerConfig, delegate hd.SceneDelegate) (*SystemManager, error) {
	js, err := NewJobSystem(config.Workers, config.Workers*16)
	if err != nil {
		return nil, err
	}

	r := riley.NewMemory(config.MaxRileyObjects)
	ri := NewRenderIndex(hd.NewChangeTracker(), prman.NewRenderParam(config.Render, r))
	metrics := core.NewSyncMetrics()

	return &SystemManager{
		jobSystem:   js,
		riley:       r,
		renderIndex: ri,
		syncSystem:  NewSyncSystem(ri, delegate, js, metrics),
		metrics:     metrics,
	}, nil
}

func (sm *SystemManager) JobSystem() *JobSystem { return sm.jobSystem }

func (sm *SystemManager) Riley() *riley.Memory { return sm.riley }

func (sm *SystemManager) RenderIndex() *RenderIndex { return sm.renderIndex }

func (sm *SystemManager) SyncSystem() *SyncSystem { return sm.syncSystem }

func (sm *SystemManager) Metrics() *core.SyncMetrics { return sm.metrics }

// Shutdown releases every rprim before stopping the workers.
func (sm *SystemManager) Shutdown() error {
	var errs []error
	for _, id := range sm.renderIndex.RprimIDs() {
		errs = append(errs, sm.renderIndex.RemoveRprim(id))
	}
	errs = append(errs, sm.jobSystem.Shutdown())
	return errors.Join(errs...)
}
