package pack

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/sdejongh/jcrsync/pkg/logging"
)

// DefaultExcludes are never transferred
var DefaultExcludes = []string{
	"__pycache__",
	".git",
	".vscode",
	".DS_Store",
	"Thumbs.db",
	".idea",
	".repo",
	".vlt",
}

// IgnoreFiles are read from the checkout root for additional patterns
var IgnoreFiles = []string{".gitignore", ".vltignore", ".repoignore"}

// Excludes is an ordered set of exclude patterns. A pattern matches a path
// that contains it as a substring or whose base name equals it. There are
// no wildcards.
type Excludes []string

// Match reports whether the entry at rel, a /-separated path relative to
// the copy source, is excluded. Directory paths are matched with a trailing
// slash so that patterns like "node_modules/" apply.
func (e Excludes) Match(rel string, isDir bool) bool {
	rel = filepath.ToSlash(rel)
	name := rel
	if idx := strings.LastIndex(rel, "/"); idx >= 0 {
		name = rel[idx+1:]
	}
	if isDir {
		rel += "/"
	}

	for _, pattern := range e {
		if pattern == name || strings.Contains(rel, pattern) {
			return true
		}
	}
	return false
}

// CollectExcludePatterns returns DefaultExcludes followed by the non-blank,
// non-comment lines of the ignore files found in repoRoot, deduplicated.
func (b *Builder) CollectExcludePatterns(repoRoot string) Excludes {
	seen := make(map[string]bool)
	var out Excludes
	add := func(p string) {
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		out = append(out, p)
	}

	for _, p := range DefaultExcludes {
		add(p)
	}

	for _, name := range IgnoreFiles {
		path := filepath.Join(repoRoot, name)
		lines, err := readPatterns(path)
		if err != nil {
			if !os.IsNotExist(err) {
				b.logger.Warn(context.Background(), "could not read ignore file", logging.Fields{
					"path":  path,
					"error": err.Error(),
				})
			}
			continue
		}
		for _, line := range lines {
			add(line)
		}
	}

	return out
}

func readPatterns(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, scanner.Err()
}
