package vaultpath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sdejongh/jcrsync/pkg/models"
)

// RootDirName is the directory holding the content tree of a checkout
const RootDirName = "jcr_root"

// Root locates a local path inside a checkout
type Root struct {
	// RepoRoot is the absolute jcr_root directory
	RepoRoot string
	// FilterPath is the path below RepoRoot, /-joined and starting with /.
	// It keeps the filesystem names of the checkout.
	FilterPath string
	// LocalPath is the absolute, symlink-resolved operand
	LocalPath string
}

// IsRepositoryRoot reports whether the operand is jcr_root itself
func (r Root) IsRepositoryRoot() bool {
	return r.FilterPath == "/"
}

// RepositoryPath returns the filter path with namespace names decoded,
// as declared in package filters.
func (r Root) RepositoryPath() string {
	return DecodePath(r.FilterPath)
}

// ResolveFilterRoot finds the first ancestor of p named jcr_root and
// returns the path below it. p does not need to exist.
func ResolveFilterRoot(p string) (Root, error) {
	if p == "" {
		return Root{}, &models.UsageError{
			Reason:  models.ReasonMissingPath,
			Message: "path is required",
		}
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		return Root{}, &models.UsageError{
			Reason:  models.ReasonInvalidPath,
			Path:    p,
			Message: fmt.Sprintf("cannot resolve path: %v", err),
		}
	}
	resolved := evalExisting(abs)

	parts := splitPath(resolved)
	for i, part := range parts {
		if part != RootDirName {
			continue
		}
		repoRoot := filepath.VolumeName(resolved) + joinPath(parts[:i+1])
		filter := "/" + strings.Join(parts[i+1:], "/")
		return Root{RepoRoot: repoRoot, FilterPath: filter, LocalPath: resolved}, nil
	}

	return Root{}, models.NewOutsideCheckoutError(p)
}

// FindCheckoutRoot returns the jcr_root directory for dir: the first
// jcr_root in its ancestry, or a jcr_root directory directly below it.
func FindCheckoutRoot(dir string) (string, bool) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	resolved := evalExisting(abs)

	parts := splitPath(resolved)
	for i, part := range parts {
		if part == RootDirName {
			return filepath.VolumeName(resolved) + joinPath(parts[:i+1]), true
		}
	}

	candidate := filepath.Join(resolved, RootDirName)
	if info, err := os.Stat(candidate); err == nil && info.IsDir() {
		return candidate, true
	}
	return "", false
}

// FindOrCreateCheckoutRoot returns the checkout root for cwd, creating
// cwd/jcr_root when none exists. created reports whether it was created.
func FindOrCreateCheckoutRoot(cwd string) (root string, created bool, err error) {
	if root, ok := FindCheckoutRoot(cwd); ok {
		return root, false, nil
	}

	abs, err := filepath.Abs(cwd)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve %s: %w", cwd, err)
	}
	root = filepath.Join(evalExisting(abs), RootDirName)
	if err := os.Mkdir(root, 0755); err != nil {
		return "", false, fmt.Errorf("failed to create %s: %w", root, err)
	}
	return root, true, nil
}

// evalExisting resolves symlinks in the longest existing prefix of abs
func evalExisting(abs string) string {
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	parent := filepath.Dir(abs)
	if parent == abs {
		return abs
	}
	return filepath.Join(evalExisting(parent), filepath.Base(abs))
}

func splitPath(abs string) []string {
	vol := filepath.VolumeName(abs)
	rest := strings.Trim(filepath.ToSlash(abs[len(vol):]), "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

func joinPath(parts []string) string {
	return string(filepath.Separator) + filepath.Join(parts...)
}
