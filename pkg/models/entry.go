package models

import "fmt"

// StatusCode classifies how a path differs between server and checkout
type StatusCode string

const (
	// StatusModified indicates both sides have the file with different content
	StatusModified StatusCode = "M"
	// StatusAddedLocally indicates the path exists only in the checkout
	StatusAddedLocally StatusCode = "A"
	// StatusDeletedLocally indicates the path exists only on the server
	StatusDeletedLocally StatusCode = "D"
	// StatusConflictFileVsDir indicates a server file where the checkout has a directory
	StatusConflictFileVsDir StatusCode = "~ df"
	// StatusConflictDirVsFile indicates a server directory where the checkout has a file
	StatusConflictDirVsFile StatusCode = "~ fd"
)

// Description returns the legend text for the status code
func (s StatusCode) Description() string {
	switch s {
	case StatusModified:
		return "modified"
	case StatusAddedLocally:
		return "added locally / deleted remotely"
	case StatusDeletedLocally:
		return "deleted locally / added remotely"
	case StatusConflictFileVsDir:
		return "conflict: local directory vs. remote file"
	case StatusConflictDirVsFile:
		return "conflict: local file vs. remote directory"
	default:
		return "unknown"
	}
}

// IsConflict reports whether the status is a file/directory conflict
func (s StatusCode) IsConflict() bool {
	return s == StatusConflictFileVsDir || s == StatusConflictDirVsFile
}

// DiffEntry is one classified path of a status comparison
type DiffEntry struct {
	// Path is the checkout-relative filesystem path, starting with /
	Path   string     `json:"path"`
	Status StatusCode `json:"status"`
}

// String renders the entry in the status column layout
func (e DiffEntry) String() string {
	return fmt.Sprintf("%-8s%s", e.Status, e.Path)
}
