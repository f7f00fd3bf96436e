package catalog

import (
	"context"
	"log/slog"
)

// Sync walks the catalog and brings the store up to date:
//   - new or changed documents are parsed and imported
//   - documents removed from disk have their recipes deleted
//
// Documents that fail to parse or import are logged and skipped.
func (c *Catalog) Sync(ctx context.Context, cb EventCallback) error {
	metas, err := c.src.List("")
	if err != nil {
		return err
	}
	known, err := c.files.CatalogFiles(ctx)
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}
		if known[m.Path].Checksum == m.Checksum {
			continue
		}
		c.importFile(ctx, m.Path, cb)
	}

	for p := range known {
		if _, ok := disk[p]; ok {
			continue
		}
		c.removeFile(ctx, p, cb)
	}
	return nil
}

// importIfChanged imports path unless its content matches the last import.
// Editors often emit several write events for one save.
func (c *Catalog) importIfChanged(ctx context.Context, path string, cb EventCallback) {
	meta, err := c.src.Stat(path)
	if err != nil {
		c.logger.Warn("catalog: stat failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	known, err := c.files.CatalogFiles(ctx)
	if err != nil {
		c.logger.Warn("catalog: load index failed", slog.String("error", err.Error()))
		return
	}
	if prev, ok := known[path]; ok && prev.Checksum == meta.Checksum {
		return
	}
	c.importFile(ctx, path, cb)
}

func (c *Catalog) importFile(ctx context.Context, path string, cb EventCallback) {
	data, err := c.src.Read(path)
	if err != nil {
		c.logger.Warn("catalog: read failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	created, err := c.Import(ctx, path, data)
	if err != nil {
		c.logger.Warn("catalog: import failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	kind := "updated"
	if created {
		kind = "created"
	}
	c.logger.Debug("catalog: imported", slog.String("path", path), slog.String("op", kind))
	if cb != nil {
		cb(kind, path)
	}
}

func (c *Catalog) removeFile(ctx context.Context, path string, cb EventCallback) {
	removed, err := c.Remove(ctx, path)
	if err != nil {
		c.logger.Warn("catalog: delete failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	if !removed {
		return
	}
	c.logger.Debug("catalog: removed", slog.String("path", path))
	if cb != nil {
		cb("deleted", path)
	}
}
