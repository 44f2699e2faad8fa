package diff

import (
	"context"
	"fmt"
	"strings"

	"github.com/sdejongh/jcrsync/pkg/logging"
	"github.com/sdejongh/jcrsync/pkg/models"
)

// Engine classifies and renders snapshot differences
type Engine struct {
	comparer Comparer
	logger   logging.Logger
}

// NewEngine creates an engine on top of a comparer
func NewEngine(comparer Comparer, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Engine{comparer: comparer, logger: logger}
}

// Status classifies every differing path of the snapshot. REMOTE is always
// the reference side.
func (e *Engine) Status(ctx context.Context, snap Snapshot) ([]models.DiffEntry, error) {
	lines, err := e.comparer.CompareTrees(ctx, snap.Base, snap.Remote(), snap.Local())
	if err != nil {
		return nil, fmt.Errorf("failed to compare snapshots: %w", err)
	}

	entries := Classify(lines)
	e.logger.Debug(ctx, "Classified snapshot differences", logging.Fields{
		"filter":  snap.FilterPath,
		"lines":   len(lines),
		"entries": len(entries),
	})
	return entries, nil
}

// Diff returns unified diff lines. DirectionLocal shows the checkout as the
// new side, DirectionServer shows the server as the new side.
func (e *Engine) Diff(ctx context.Context, snap Snapshot, direction models.Direction) ([]string, error) {
	a, b := snap.Remote(), snap.Local()
	if direction == models.DirectionServer {
		a, b = b, a
	}

	lines, err := e.comparer.UnifiedDiff(ctx, snap.Base, a, b)
	if err != nil {
		return nil, fmt.Errorf("failed to diff snapshots: %w", err)
	}
	return lines, nil
}

// Classify converts brief comparison lines into status entries. Lines that
// match no known form are ignored.
func Classify(lines []string) []models.DiffEntry {
	var entries []models.DiffEntry
	for _, line := range lines {
		if entry, ok := classifyLine(strings.TrimRight(line, "\r")); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

func classifyLine(line string) (models.DiffEntry, bool) {
	switch {
	case strings.HasPrefix(line, "Files ") && strings.HasSuffix(line, " differ"):
		rest := strings.TrimPrefix(line, "Files ")
		idx := strings.Index(rest, " and "+LocalDir)
		if idx < 0 {
			return models.DiffEntry{}, false
		}
		return entry(models.StatusModified, strings.TrimPrefix(rest[:idx], RemoteDir)), true

	case strings.HasPrefix(line, "Only in "+LocalDir):
		if p, ok := onlyInPath(line, LocalDir); ok {
			return entry(models.StatusAddedLocally, p), true
		}

	case strings.HasPrefix(line, "Only in "+RemoteDir):
		if p, ok := onlyInPath(line, RemoteDir); ok {
			return entry(models.StatusDeletedLocally, p), true
		}

	case strings.HasPrefix(line, "File "+RemoteDir):
		rest := strings.TrimPrefix(line, "File ")
		idx := strings.Index(rest, " is a ")
		if idx < 0 {
			return models.DiffEntry{}, false
		}
		p := strings.TrimPrefix(rest[:idx], RemoteDir)
		switch {
		case strings.Contains(line, "is a regular file while file"):
			return entry(models.StatusConflictFileVsDir, p), true
		case strings.Contains(line, "is a directory while file"):
			return entry(models.StatusConflictDirVsFile, p), true
		}
	}
	return models.DiffEntry{}, false
}

// onlyInPath extracts the path from "Only in {side}{dir}: {name}"
func onlyInPath(line, side string) (string, bool) {
	rest := strings.TrimPrefix(line, "Only in "+side)
	dir, name, ok := strings.Cut(rest, ": ")
	if !ok {
		return "", false
	}
	return strings.TrimSuffix(dir, "/") + "/" + name, true
}

func entry(status models.StatusCode, p string) models.DiffEntry {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return models.DiffEntry{Path: p, Status: status}
}
