package persistence

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/voxforge/voxforge"
)

const autosaveSuffix = ".autosave"

// autosaveFilename returns the sibling auto-save path for path:
// <stem>.autosave<ext> (grounded on FileManager::getAutoSaveFilename).
func autosaveFilename(path string) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	return stem + autosaveSuffix + ext
}

type autoSaveEntry struct {
	path          string
	project       *voxforge.Project
	lastSavedAt   time.Time
	timeSinceSave time.Duration
}

// AutoSaver periodically saves every registered project whose dirty
// time exceeds its configured interval, using Fast save options, to
// a sibling autosave path (spec §5 "Auto-save").
//
// Grounded on FileManager's m_autoSaveEntries/autoSaveThreadFunc: one
// background goroutine wakes once per second and sweeps every
// registered entry under a single mutex, same shape as the teacher's
// lock_guard-protected sweep.
type AutoSaver struct {
	mu       sync.Mutex
	entries  map[string]*autoSaveEntry
	interval time.Duration
	manager  *Manager
	log      voxforge.Logger

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewAutoSaver constructs an AutoSaver that saves any registered,
// unsaved project after interval has elapsed since its last save.
func NewAutoSaver(manager *Manager, interval time.Duration, log voxforge.Logger) *AutoSaver {
	return &AutoSaver{
		entries:  make(map[string]*autoSaveEntry),
		interval: interval,
		manager:  manager,
		log:      logOrNop(log),
	}
}

// Register adds or updates the auto-save entry for path.
func (a *AutoSaver) Register(path string, project *voxforge.Project) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if e, ok := a.entries[path]; ok {
		e.project = project
		return
	}
	a.entries[path] = &autoSaveEntry{path: path, project: project, lastSavedAt: time.Now()}
}

// Unregister removes the auto-save entry for path, if any.
func (a *AutoSaver) Unregister(path string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.entries, path)
}

// Start launches the background sweep goroutine. Calling Start twice
// without an intervening Stop is a no-op.
func (a *AutoSaver) Start() {
	a.mu.Lock()
	if a.stopCh != nil {
		a.mu.Unlock()
		return
	}
	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	stopCh := a.stopCh
	doneCh := a.doneCh
	a.mu.Unlock()

	go a.run(stopCh, doneCh)
}

// Stop halts the background sweep and waits for it to exit.
func (a *AutoSaver) Stop() {
	a.mu.Lock()
	stopCh := a.stopCh
	doneCh := a.doneCh
	a.stopCh = nil
	a.doneCh = nil
	a.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-doneCh
}

func (a *AutoSaver) run(stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			a.sweep()
		}
	}
}

// sweep performs one pass over every registered entry, saving any
// whose elapsed time since last save meets the interval and that has
// unsaved changes. Failures are logged and otherwise silent (spec §5
// "Auto-save failures log and are otherwise silent").
func (a *AutoSaver) sweep() {
	a.mu.Lock()
	due := make([]*autoSaveEntry, 0, len(a.entries))
	for _, e := range a.entries {
		e.timeSinceSave = time.Since(e.lastSavedAt)
		if e.timeSinceSave >= a.interval && e.project.HasUnsavedChanges() {
			due = append(due, e)
		}
	}
	a.mu.Unlock()

	for _, e := range due {
		a.performAutoSave(e)
	}
}

func (a *AutoSaver) performAutoSave(e *autoSaveEntry) {
	dst := autosaveFilename(e.path)
	if err := a.manager.SaveProjectSnapshot(dst, e.project, FastSaveOptions()); err != nil {
		a.log.Errorf("auto-save failed for %s: %v", dst, err)
		return
	}
	a.mu.Lock()
	e.lastSavedAt = time.Now()
	a.mu.Unlock()
	a.log.Infof("auto-saved %s", dst)
}
