package sync

import (
	"fmt"
	"os"
	"path/filepath"
)

// Workspace is the temporary directory owned by a single operation.
// Close removes it and everything below.
type Workspace struct {
	Root string
}

// NewWorkspace creates a fresh workspace below parent, or below the
// system temporary directory when parent is empty
func NewWorkspace(parent string) (*Workspace, error) {
	root, err := os.MkdirTemp(parent, "jcrsync-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return &Workspace{Root: root}, nil
}

// Path joins elem below the workspace root
func (w *Workspace) Path(elem ...string) string {
	return filepath.Join(append([]string{w.Root}, elem...)...)
}

// StagingDir is where the outgoing package is assembled
func (w *Workspace) StagingDir() string {
	return w.Path("package")
}

// DownloadPath is where the built package is saved
func (w *Workspace) DownloadPath() string {
	return w.Path("download.zip")
}

// ExtractDir is where a downloaded package is unpacked for get
func (w *Workspace) ExtractDir() string {
	return w.Path("extracted")
}

// SnapshotDir holds the REMOTE and LOCAL snapshots
func (w *Workspace) SnapshotDir() string {
	return w.Path("snapshots")
}

// Close removes the workspace
func (w *Workspace) Close() error {
	if err := os.RemoveAll(w.Root); err != nil {
		return fmt.Errorf("failed to remove workspace: %w", err)
	}
	return nil
}
