package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
)

// Local is a Tree on the local filesystem
type Local struct {
	rootPath string
}

// NewLocal opens rootPath as a tree. Symbolic links in rootPath are
// resolved so that a snapshot reached through a link can be walked.
func NewLocal(rootPath string) (*Local, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", absPath)
	}

	return &Local{rootPath: resolved}, nil
}

// Root returns the resolved root directory
func (l *Local) Root() string {
	return l.rootPath
}

func (l *Local) full(rel string) string {
	return filepath.Join(l.rootPath, filepath.FromSlash(rel))
}

// ReadDir lists a directory, following symbolic links for entry metadata
func (l *Local) ReadDir(ctx context.Context, rel string) ([]FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(l.full(rel))
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	infos := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		info, err := l.Stat(ctx, path.Join(rel, entry.Name()))
		if err != nil {
			return nil, err
		}
		infos = append(infos, *info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Read opens a file for reading
func (l *Local) Read(ctx context.Context, rel string) (io.ReadCloser, error) {
	file, err := os.Open(l.full(rel))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Stat returns file metadata
func (l *Local) Stat(ctx context.Context, rel string) (*FileInfo, error) {
	fullPath := l.full(rel)

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &FileInfo{
		Name:         info.Name(),
		Size:         info.Size(),
		ModTime:      info.ModTime(),
		IsDir:        info.IsDir(),
		RelativePath: filepath.ToSlash(rel),
	}, nil
}
