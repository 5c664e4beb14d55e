package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ooker777/breadcrumbs/internal/parser"
	"github.com/ooker777/breadcrumbs/internal/storage"
)

// Change kinds reported to a ChangeFunc.
const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

// ChangeFunc is called after each watcher-driven index mutation.
type ChangeFunc func(kind, path string)

const reconcileDelay = 200 * time.Millisecond

// Watcher keeps the index in step with the vault on disk.
type Watcher struct {
	DB       *DB
	Store    storage.Provider
	Root     string
	Fields   parser.Fields
	Logger   *slog.Logger
	OnChange ChangeFunc
}

// Run watches Root recursively until ctx is cancelled. Directories created
// while running are added to the watch list. A rename only reports the old
// path, so it is followed by a debounced reconcile pass that picks up the
// new one.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := watchTree(fw, w.Root); err != nil {
		return err
	}
	w.Logger.Info("watcher: started", slog.String("root", w.Root))

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			w.reconcile()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) && isDir(ev.Name) {
				if err := watchTree(fw, ev.Name); err != nil {
					w.Logger.Warn("watcher: add dir failed", slog.String("path", ev.Name), slog.String("error", err.Error()))
				}
				w.indexTree(ev.Name)
				continue
			}
			rel, ok := w.rel(ev.Name)
			if !ok {
				continue
			}
			switch {
			case ev.Has(fsnotify.Create):
				w.index(rel, ChangeCreated)
			case ev.Has(fsnotify.Write):
				w.index(rel, ChangeUpdated)
			case ev.Has(fsnotify.Remove):
				w.remove(rel)
			case ev.Has(fsnotify.Rename):
				w.remove(rel)
				if timer == nil {
					timer = time.NewTimer(reconcileDelay)
					timerCh = timer.C
				} else {
					timer.Reset(reconcileDelay)
				}
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.Logger.Error("watcher: error", slog.String("error", err.Error()))
		}
	}
}

// rel maps an absolute event path to a vault-relative note path.
func (w *Watcher) rel(abs string) (string, bool) {
	if !strings.HasSuffix(abs, ".md") {
		return "", false
	}
	rel, err := filepath.Rel(w.Root, abs)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *Watcher) notify(kind, path string) {
	if w.OnChange != nil {
		w.OnChange(kind, path)
	}
}

func (w *Watcher) index(rel, kind string) {
	data, err := w.Store.Read(rel)
	if err != nil {
		w.Logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	if err := IndexFile(w.DB, w.Fields, rel, data); err != nil {
		w.Logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	w.Logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", kind))
	w.notify(kind, rel)
}

func (w *Watcher) remove(rel string) {
	if err := w.DB.DeleteNote(rel); err != nil {
		w.Logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	w.Logger.Debug("watcher: deleted", slog.String("path", rel))
	w.notify(ChangeDeleted, rel)
}

// reconcile drops index entries with no file on disk and indexes files
// whose checksum is missing or stale.
func (w *Watcher) reconcile() {
	checksums, err := w.DB.AllChecksums()
	if err != nil {
		w.Logger.Warn("reconcile: checksums failed", slog.String("error", err.Error()))
		return
	}
	metas, err := w.Store.List("")
	if err != nil {
		w.Logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Path] = m.Checksum
	}
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			w.remove(p)
		}
	}
	for p, cs := range disk {
		if old, ok := checksums[p]; !ok {
			w.index(p, ChangeCreated)
		} else if old != cs {
			w.index(p, ChangeUpdated)
		}
	}
}

// indexTree indexes the notes already present in a newly created directory.
func (w *Watcher) indexTree(dir string) {
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if rel, ok := w.rel(p); ok {
			w.index(rel, ChangeCreated)
		}
		return nil
	})
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

// watchTree adds root and every subdirectory to fw.
func watchTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(p)
		}
		return nil
	})
}
