package watch

import (
	"context"
	"errors"
	"log"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"treesync/config"
	"treesync/internal/pipeline"
)

// Watcher monitors SYNC_TRIGGER_DIR for dropped marker files and kicks
// off a sync run for each one. A run already in progress is skipped.
type Watcher struct {
	cfg    config.Config
	syncer *pipeline.Orchestrator
}

func New(cfg config.Config, syncer *pipeline.Orchestrator) *Watcher {
	return &Watcher{cfg: cfg, syncer: syncer}
}

func (w *Watcher) Start(ctx context.Context) error {
	if w.cfg.TriggerDir == "" {
		log.Println("sync watcher disabled")
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-watcher.Events:
				if evt.Op&(fsnotify.Create|fsnotify.Rename) != 0 {
					if w.isTrigger(evt.Name) {
						w.trigger(ctx, evt.Name)
					}
				}
			case err := <-watcher.Errors:
				log.Printf("sync watcher error: %v", err)
			}
		}
	}()
	return watcher.Add(w.cfg.TriggerDir)
}

func (w *Watcher) trigger(ctx context.Context, path string) {
	log.Printf("sync triggered by %s", filepath.Base(path))
	if _, err := w.syncer.Run(ctx); err != nil {
		if errors.Is(err, pipeline.ErrRunInProgress) {
			log.Println("sync trigger skipped: run already in progress")
			return
		}
		log.Printf("triggered sync failed: %v", err)
	}
}

func (w *Watcher) isTrigger(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	return strings.ToLower(filepath.Ext(name)) != ".tmp"
}
