package storage

import (
	"context"
	"io"
	"time"
)

// FileInfo represents metadata about an entry of a tree
type FileInfo struct {
	Name         string
	Size         int64
	ModTime      time.Time
	IsDir        bool
	RelativePath string
}

// Tree gives read access to a snapshot directory. Paths are relative to
// the tree root and use forward slashes; "" is the root itself.
type Tree interface {
	// Root returns the absolute root directory
	Root() string

	// ReadDir lists the entries of a directory sorted by name
	ReadDir(ctx context.Context, path string) ([]FileInfo, error)

	// Stat returns entry metadata, following symbolic links
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// Read opens a file for reading
	Read(ctx context.Context, path string) (io.ReadCloser, error)
}
