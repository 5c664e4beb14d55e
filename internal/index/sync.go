package index

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ooker777/breadcrumbs/internal/parser"
	"github.com/ooker777/breadcrumbs/internal/storage"
)

// Sync walks the vault and brings the index up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, fields parser.Fields, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexFile(db, fields, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteNote(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	logger.Info("sync: done", slog.Int("files", len(metas)))
	return nil
}

// IndexFile parses data and upserts the note with its inline and hierarchy links.
func IndexFile(db *DB, fields parser.Fields, path string, data []byte) error {
	res, err := parser.Parse(data, fields)
	if err != nil {
		return fmt.Errorf("index: parse %s: %w", path, err)
	}

	links := make([]Link, 0, len(res.Links)+len(res.Hierarchy))
	for _, h := range res.Hierarchy {
		links = append(links, Link{Target: h.Target, Type: string(h.Dir)})
	}
	for _, l := range res.Links {
		if name := parser.NoteName(l); name != "" {
			links = append(links, Link{Target: name, Type: LinkInline})
		}
	}

	return db.UpsertNote(NoteRow{
		Path:      path,
		Name:      parser.NameFromPath(path),
		Title:     res.Title,
		Checksum:  storage.Checksum(data),
		Tags:      res.Tags,
		Alias:     res.Alias,
		Aliases:   res.Aliases,
		UpdatedAt: time.Now(),
	}, links)
}
