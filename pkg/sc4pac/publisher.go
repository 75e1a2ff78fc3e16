package sc4pac

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sc4pac/sc4pac-core/internal/flock"
	"github.com/sc4pac/sc4pac-core/pkg/logger"
)

// Publisher moves a StageResult's staged files into the live plugins root
// and atomically updates the PluginsLock, all under an exclusive lock on
// the lockfile path.
type Publisher struct {
	PluginsRoot string
	LockPath    string
	Store       *JsonStore
	Handlers    *Handlers
	Log         logger.Logger
}

// NewPublisher constructs a Publisher targeting pluginsRoot, guarding the
// lock file at lockPath.
func NewPublisher(pluginsRoot, lockPath string, handlers *Handlers, log logger.Logger) *Publisher {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Publisher{
		PluginsRoot: pluginsRoot,
		LockPath:    lockPath,
		Store:       NewJsonStore(),
		Handlers:    handlers,
		Log:         log,
	}
}

// Publish removes plan.ToRemove's old files, moves each
// staged module's produced paths into PluginsRoot, then CAS-write the new
// lock. It returns a *PublishWarning (non-fatal: the lock still reflects
// what succeeded) if any file operation failed.
func (p *Publisher) Publish(result *StageResult, priorLockRaw []byte, oldLock PluginsLock, plan *UpdatePlan) (PluginsLock, error) {
	lock, err := flock.Acquire(p.LockPath)
	if err != nil {
		return oldLock, fmt.Errorf("publisher: acquire lock: %w", err)
	}
	defer lock.Unlock()

	var failed []BareModule

	for _, dep := range plan.ToRemove {
		paths, ok := oldLock.FilesFor(dep)
		if !ok {
			continue
		}
		for _, rel := range paths {
			full := filepath.Join(p.PluginsRoot, rel)
			if err := os.RemoveAll(full); err != nil {
				p.Log.Warning("remove %s: %v", full, err)
				if dep.Module != nil {
					failed = append(failed, dep.Module.Module)
				}
			}
		}
	}

	var added []InstalledEntry
	for _, sm := range result.Modules {
		p.Handlers.firePublishProgress(sm.Dep)

		ok := true
		for _, rel := range sm.ProducedSubPaths {
			src := filepath.Join(result.TempPluginsRoot, rel)
			dst := filepath.Join(p.PluginsRoot, rel)
			if err := os.MkdirAll(filepath.Dir(dst), DefaultDirMode); err != nil {
				ok = false
				continue
			}
			if err := moveDir(src, dst); err != nil {
				ok = false
			}
		}
		if ok {
			p.Log.Info("published %s", sm.Dep)
			added = append(added, InstalledEntry{Dep: sm.Dep, Files: sm.ProducedSubPaths})
		} else if sm.Dep.Module != nil {
			failed = append(failed, sm.Dep.Module.Module)
		}
	}

	newLock := oldLock.WithInstalled(added, plan.ToRemove)

	if err := p.Store.Write(p.LockPath, newLock, priorLockRaw); err != nil {
		return oldLock, fmt.Errorf("publisher: write lock: %w", err)
	}

	if len(failed) > 0 {
		return newLock, &PublishWarning{Packages: failed}
	}
	return newLock, nil
}
