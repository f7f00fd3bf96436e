package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/mealprep/internal/checksum"
)

// FS implements Provider on the local file system.
type FS struct {
	root  string
	match func(name string) bool
}

// NewFS opens the catalog at root, which must be an existing directory.
// Only files accepted by match are listed; nil accepts everything.
func NewFS(root string, match func(name string) bool) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	if match == nil {
		match = func(string) bool { return true }
	}
	return &FS{root: abs, match: match}, nil
}

// Root returns the absolute catalog directory.
func (f *FS) Root() string { return f.root }

// resolve maps a catalog path to an absolute one inside the root.
func (f *FS) resolve(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	abs := filepath.Join(f.root, cleaned)
	if abs != f.root && !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: path escapes catalog root: %s", rel)
	}
	return abs, nil
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// describe reads the file at abs to fill in its checksum.
func (f *FS) describe(abs string, info fs.FileInfo) (File, error) {
	data, err := os.ReadFile(abs)
	if err != nil {
		return File{}, err
	}
	rel, err := filepath.Rel(f.root, abs)
	if err != nil {
		return File{}, err
	}
	return File{
		Path:      filepath.ToSlash(rel),
		Checksum:  checksum.Sum(data),
		Size:      info.Size(),
		UpdatedAt: info.ModTime(),
	}, nil
}

// List walks dir and describes every matching document. Hidden files and
// directories are skipped.
func (f *FS) List(dir string) ([]File, error) {
	base, err := f.resolve(dir)
	if err != nil {
		return nil, err
	}
	var out []File
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p != base && hidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !f.match(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		file, err := f.describe(p, info)
		if err != nil {
			return err
		}
		out = append(out, file)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}

// Stat describes a single document.
func (f *FS) Stat(path string) (File, error) {
	abs, err := f.resolve(path)
	if err != nil {
		return File{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return File{}, fmt.Errorf("storage: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("storage: %s is a directory", path)
	}
	file, err := f.describe(abs, info)
	if err != nil {
		return File{}, fmt.Errorf("storage: stat %s: %w", path, err)
	}
	return file, nil
}

// Read returns the raw bytes of a document.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}
