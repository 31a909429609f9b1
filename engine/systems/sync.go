package systems

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/spaghettifunk/hdprman/engine/core"
	"github.com/spaghettifunk/hdprman/engine/hd"
)

// SyncSystem pushes dirty rprims to the renderer. Each prim is synced by a
// single job; prims are independent so jobs run in parallel.
type SyncSystem struct {
	index    *RenderIndex
	delegate hd.SceneDelegate
	jobs     *JobSystem
	metrics  *core.SyncMetrics
	clock    *core.Clock
}

func NewSyncSystem(index *RenderIndex, delegate hd.SceneDelegate, jobs *JobSystem, metrics *core.SyncMetrics) *SyncSystem {
	return &SyncSystem{
		index:    index,
		delegate: delegate,
		jobs:     jobs,
		metrics:  metrics,
		clock:    core.NewClock(),
	}
}

// SyncResult summarizes one pass.
type SyncResult struct {
	Synced []hd.Path
	Failed []hd.Path
}

// Sync runs one pass over every dirty rprim. Failed prims keep their dirty
// bits and are retried on the next pass. The returned error joins every
// prim failure.
func (ss *SyncSystem) Sync(ctx context.Context) (SyncResult, error) {
	tracker := ss.index.ChangeTracker()
	rp := ss.index.RenderParam()

	ss.clock.Start()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result SyncResult
		errs   []error
	)

	for _, id := range tracker.DirtyRprimIDs() {
		if err := ctx.Err(); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			break
		}
		rprim, ok := ss.index.GetRprim(id)
		if !ok {
			continue
		}
		id := id
		bits := tracker.GetRprimDirtyBits(id)

		wg.Add(1)
		ss.jobs.Submit(Job{
			Name: "sync " + id.String(),
			Run: func() error {
				dirty := bits
				if err := rprim.Sync(ss.delegate, rp, &dirty); err != nil {
					return err
				}
				tracker.MarkRprimClean(id, bits&^dirty)
				return nil
			},
			OnComplete: func() {
				mu.Lock()
				result.Synced = append(result.Synced, id)
				mu.Unlock()
			},
			OnFailure: func(err error) {
				mu.Lock()
				result.Failed = append(result.Failed, id)
				errs = append(errs, err)
				mu.Unlock()
			},
			OnCompletionCallback: wg.Done,
		})
	}
	wg.Wait()
	sortPaths(result.Synced)
	sortPaths(result.Failed)

	ss.clock.Update()
	ss.clock.Stop()
	if ss.metrics != nil {
		ss.metrics.Update(ss.clock.Elapsed(), len(result.Synced), len(result.Failed))
	}
	if len(result.Synced)+len(result.Failed) > 0 {
		core.LogDebug("sync pass: %d synced, %d failed in %s", len(result.Synced), len(result.Failed), ss.clock.Elapsed())
	}

	return result, errors.Join(errs...)
}

func sortPaths(paths []hd.Path) {
	sort.Slice(paths, func(i, j int) bool { return paths[i].String() < paths[j].String() })
}
