// Package compare decides whether two snapshot files hold the same content.
package compare

import (
	"context"

	"github.com/sdejongh/jcrsync/pkg/storage"
)

// Result represents the outcome of comparing two files
type Result string

const (
	// Same indicates files are identical
	Same Result = "same"
	// Different indicates files differ
	Different Result = "different"
)

// Comparison holds the result of comparing two files
type Comparison struct {
	Path   string
	Result Result
	Reason string
}

// Comparator compares the file at the same relative path in two trees
type Comparator interface {
	// Compare compares path in left and right
	Compare(ctx context.Context, left, right storage.Tree, path string) (*Comparison, error)

	// Name returns the name of the comparison method
	Name() string
}
