// Package vcs reports version-control status for checkout paths.
package vcs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"

	"github.com/sdejongh/jcrsync/pkg/logging"
)

// DefaultTimeout bounds a single status query
const DefaultTimeout = 10 * time.Second

var (
	// ErrNotRepository is returned when the path is not inside a git worktree
	ErrNotRepository = errors.New("not a git repository")
	// ErrTimeout is returned when the status query exceeds its time budget
	ErrTimeout = errors.New("version control status timed out")
)

// StatusReporter lists the short status of everything below a path
type StatusReporter interface {
	Status(ctx context.Context, path string) ([]string, error)
}

// GitReporter reads worktree status with go-git
type GitReporter struct {
	timeout time.Duration
	logger  logging.Logger
}

// NewGitReporter creates a reporter with the default timeout
func NewGitReporter(logger logging.Logger) *GitReporter {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &GitReporter{timeout: DefaultTimeout, logger: logger}
}

// WithTimeout overrides the time budget
func (g *GitReporter) WithTimeout(timeout time.Duration) *GitReporter {
	g.timeout = timeout
	return g
}

type statusResult struct {
	lines []string
	err   error
}

// Status returns one "XY path" line per changed or untracked file below
// target, with paths relative to the worktree root, sorted.
func (g *GitReporter) Status(ctx context.Context, target string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	// go-git's status walk takes no context. After a timeout the goroutine
	// keeps running until the walk ends and its result is dropped.
	done := make(chan statusResult, 1)
	go func() {
		lines, err := g.status(target)
		done <- statusResult{lines: lines, err: err}
	}()

	select {
	case res := <-done:
		return res.lines, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, g.timeout)
		}
		return nil, ctx.Err()
	}
}

func (g *GitReporter) status(target string) ([]string, error) {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(absTarget); err == nil {
		absTarget = resolved
	}

	openDir := absTarget
	if info, err := os.Stat(absTarget); err == nil && !info.IsDir() {
		openDir = filepath.Dir(absTarget)
	}

	repo, err := git.PlainOpenWithOptions(openDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotRepository, target)
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to open worktree: %w", err)
	}

	root := worktree.Filesystem.Root()
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	prefix, err := filepath.Rel(root, absTarget)
	if err != nil {
		return nil, fmt.Errorf("failed to relate %s to worktree: %w", target, err)
	}
	prefix = filepath.ToSlash(prefix)

	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to read worktree status: %w", err)
	}

	var lines []string
	for file, fileStatus := range status {
		if fileStatus.Staging == git.Unmodified && fileStatus.Worktree == git.Unmodified {
			continue
		}
		if !under(file, prefix) {
			continue
		}
		lines = append(lines, fmt.Sprintf("%c%c %s", fileStatus.Staging, fileStatus.Worktree, file))
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i][3:] < lines[j][3:] })

	g.logger.Debug(context.Background(), "Read worktree status", logging.Fields{
		"worktree": root,
		"prefix":   prefix,
		"changes":  len(lines),
	})
	return lines, nil
}

func under(file, prefix string) bool {
	if prefix == "." || prefix == "" {
		return true
	}
	return file == prefix || strings.HasPrefix(file, prefix+"/")
}
