package pack

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CopyContentTree copies src, a file or a directory, to dest. Excluded
// directories are pruned without being walked. Destination directories are
// created only when a file is copied into them, so excluded or empty
// subtrees leave nothing behind. Symbolic links are followed; a link back
// into a directory being copied is skipped.
func CopyContentTree(src, dest string, excludes Excludes) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}

	if !info.IsDir() {
		if excludes.Match(filepath.Base(src), false) {
			return nil
		}
		return copyFile(src, dest, info)
	}

	return copyDir(src, dest, "", excludes, make(map[string]bool))
}

// copyDir copies the directory src to dest. prefix is the position of src
// in the tree being copied and active holds the resolved directories
// currently being walked.
func copyDir(src, dest, prefix string, excludes Excludes, active map[string]bool) error {
	resolved, err := filepath.EvalSymlinks(src)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", src, err)
	}
	if active[resolved] {
		return nil
	}
	active[resolved] = true
	defer delete(active, resolved)

	return filepath.WalkDir(resolved, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("failed to walk %s: %w", path, walkErr)
		}

		local, err := filepath.Rel(resolved, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		if local == "." {
			return nil
		}

		rel := filepath.Join(prefix, local)
		target := filepath.Join(dest, local)

		if d.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("failed to stat %s: %w", path, err)
			}
			if excludes.Match(rel, info.IsDir()) {
				return nil
			}
			if info.IsDir() {
				return copyDir(path, target, rel, excludes, active)
			}
			return copyFile(path, target, info)
		}

		if d.IsDir() {
			if excludes.Match(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if excludes.Match(rel, false) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}
		return copyFile(path, target, info)
	})
}

// copyFile copies a regular file, keeping its mode and modification time
func copyFile(src, dest string, info fs.FileInfo) (err error) {
	if parent := filepath.Dir(dest); parent != "." {
		if err := os.MkdirAll(parent, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", parent, err)
		}
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", dest, closeErr)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}

	if err = os.Chtimes(dest, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("failed to set times on %s: %w", dest, err)
	}
	return nil
}
