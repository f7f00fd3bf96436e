// Package storage gives read access to the recipe catalog directory.
package storage

import "time"

// File describes one catalog document.
type File struct {
	Path      string
	Checksum  string
	Size      int64
	UpdatedAt time.Time
}

// Provider is a read-only view of a catalog directory. Documents are
// authored by hand; the service never writes back. Paths are slash
// separated and relative to Root.
type Provider interface {
	// List returns every matching document under dir ("" for the whole catalog).
	List(dir string) ([]File, error)
	// Stat describes the document at path.
	Stat(path string) (File, error)
	// Read returns the raw bytes of the document at path.
	Read(path string) ([]byte, error)
	// Root returns the absolute root directory.
	Root() string
}
