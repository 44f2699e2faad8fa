// Package diff compares the REMOTE and LOCAL snapshots of a filter path
// and classifies or renders their differences.
package diff

import (
	"path/filepath"
)

const (
	// RemoteDir is the snapshot entry pointing at the server content
	RemoteDir = "REMOTE"
	// LocalDir is the snapshot entry holding the filtered local copy
	LocalDir = "LOCAL"
)

// Snapshot is a pair of content trees living side by side under Base.
// Both sides mirror the jcr_root layout, so the compared subtree is
// {side}{FilterPath}.
type Snapshot struct {
	Base       string
	FilterPath string
}

// RemoteRoot is the absolute path of the REMOTE side
func (s Snapshot) RemoteRoot() string {
	return filepath.Join(s.Base, RemoteDir)
}

// LocalRoot is the absolute path of the LOCAL side
func (s Snapshot) LocalRoot() string {
	return filepath.Join(s.Base, LocalDir)
}

// Remote is the compared REMOTE subtree relative to Base
func (s Snapshot) Remote() string {
	return RemoteDir + s.FilterPath
}

// Local is the compared LOCAL subtree relative to Base
func (s Snapshot) Local() string {
	return LocalDir + s.FilterPath
}
