package assets

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/hdprman/engine/containers"
	"github.com/spaghettifunk/hdprman/engine/core"
	"github.com/spaghettifunk/hdprman/engine/scene"
)

// MaxPendingReloads bounds how many reloaded stages wait for the frame loop.
const MaxPendingReloads = 4

// Reload is a freshly parsed scene file.
type Reload struct {
	Stage    *scene.Stage
	LoadedAt time.Time
}

// SceneWatcher reloads a scene file whenever it changes on disk and queues
// the parsed stage until the frame loop picks it up.
type SceneWatcher struct {
	path string

	mutex   sync.Mutex
	pending *containers.RingQueue[Reload]

	done      chan struct{}
	stopped   chan struct{}
	fsnotify  *fsnotify.Watcher
	isStarted bool
	isClosed  bool
	errors    chan error
}

func NewSceneWatcher(path string) (*SceneWatcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &SceneWatcher{
		path:     filepath.Clean(path),
		pending:  containers.NewRingQueue[Reload](MaxPendingReloads),
		fsnotify: fsWatch,
		errors:   make(chan error, 8),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}, nil
}

// Start watches the directory of the scene file. Editors often replace
// files by rename, so the directory is watched rather than the file.
func (sw *SceneWatcher) Start() error {
	sw.mutex.Lock()
	defer sw.mutex.Unlock()
	if sw.isClosed {
		return errors.New("scene watcher already closed")
	}
	if sw.isStarted {
		return errors.New("scene watcher already started")
	}
	if err := sw.fsnotify.Add(filepath.Dir(sw.path)); err != nil {
		return fmt.Errorf("watch %s: %w", sw.path, err)
	}
	sw.isStarted = true
	go sw.start()
	return nil
}

// Close stops watching and waits for the event loop to exit. It is safe
// to call whether or not Start succeeded.
func (sw *SceneWatcher) Close() error {
	sw.mutex.Lock()
	if sw.isClosed {
		sw.mutex.Unlock()
		return nil
	}
	sw.isClosed = true
	started := sw.isStarted
	sw.mutex.Unlock()

	if !started {
		close(sw.errors)
		return sw.fsnotify.Close()
	}
	close(sw.done)
	<-sw.stopped
	return nil
}

// Errors reports reload and watch failures. It is closed by Close.
func (sw *SceneWatcher) Errors() <-chan error {
	return sw.errors
}

// Pending drains the queued reloads, oldest first.
func (sw *SceneWatcher) Pending() []Reload {
	sw.mutex.Lock()
	defer sw.mutex.Unlock()

	out := make([]Reload, 0, sw.pending.Len())
	for !sw.pending.IsEmpty() {
		r, _ := sw.pending.Dequeue()
		out = append(out, r)
	}
	return out
}

func (sw *SceneWatcher) start() {
	defer close(sw.stopped)
	for {
		select {

		case e, ok := <-sw.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != sw.path {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				sw.handleFileEvent()
			}

		case e, ok := <-sw.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(e.Error())
			sw.report(e)

		case <-sw.done:
			sw.fsnotify.Close()
			close(sw.errors)
			return
		}
	}
}

func (sw *SceneWatcher) report(err error) {
	select {
	case sw.errors <- err:
	default:
		// Nobody is listening, the error was already logged.
	}
}

// Reload the file and queue the result.
func (sw *SceneWatcher) handleFileEvent() {
	stage, err := scene.Load(sw.path)
	if err != nil {
		core.LogWarn("scene reload failed: %s", err.Error())
		sw.report(err)
		return
	}

	sw.mutex.Lock()
	defer sw.mutex.Unlock()
	if sw.pending.Push(Reload{Stage: stage, LoadedAt: time.Now()}) {
		core.LogDebug("dropped a stale scene reload of %s", sw.path)
	}
}
