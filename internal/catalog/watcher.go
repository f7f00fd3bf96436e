package catalog

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/mealprep/internal/parser"
)

const reconcileDelay = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the catalog root and applies file
// changes until ctx is cancelled. cb (if non-nil) is called after each
// successful change.
//
// New directories are added to the watch list. Renames schedule a full
// Sync, since fsnotify only reports the old name.
func (c *Catalog) Watch(ctx context.Context, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := c.src.Root()
	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	c.logger.Info("catalog watcher: started", slog.String("root", root))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time
	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			c.logger.Info("catalog watcher: stopped")
			return nil

		case <-reconcileCh:
			if err := c.Sync(ctx, cb); err != nil {
				c.logger.Warn("catalog watcher: reconcile failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						c.logger.Warn("catalog watcher: add dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					// Files may have landed before the directory was watched.
					scheduleReconcile()
					continue
				}
			}
			rel, ok := c.relevant(root, ev.Name)
			if !ok {
				continue
			}
			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				c.importIfChanged(ctx, rel, cb)
			case ev.Op&fsnotify.Remove != 0:
				c.removeFile(ctx, rel, cb)
			case ev.Op&fsnotify.Rename != 0:
				c.removeFile(ctx, rel, cb)
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.logger.Error("catalog watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// relevant maps an absolute event path to a catalog path, rejecting hidden
// files and unsupported extensions.
func (c *Catalog) relevant(root, abs string) (string, bool) {
	name := filepath.Base(abs)
	if strings.HasPrefix(name, ".") || !parser.Supported(name) {
		return "", false
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// addDirsRecursive adds root and all its non-hidden subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
