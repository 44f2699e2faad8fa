package sync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sdejongh/jcrsync/pkg/diff"
	"github.com/sdejongh/jcrsync/pkg/logging"
	"github.com/sdejongh/jcrsync/pkg/models"
	"github.com/sdejongh/jcrsync/pkg/pack"
	"github.com/sdejongh/jcrsync/pkg/vaultpath"
)

// Status lists the paths that differ between the server and the checkout
// below localPath.
func (e *Engine) Status(ctx context.Context, localPath string) (*models.Report, error) {
	op, root, err := e.prepare(models.OpStatus, localPath)
	if err != nil {
		return nil, err
	}
	log := e.opLogger(op)
	report := e.start(op)

	ws, snap, err := e.snapshot(ctx, op, root, log)
	if ws != nil {
		defer e.closeWorkspace(ctx, ws, log)
	}
	if err != nil {
		return nil, err
	}

	entries, err := e.deps.Differ.Status(ctx, snap)
	if err != nil {
		if !diff.IsDegraded(err) {
			return nil, err
		}
		e.degraded(ctx, report, err, log)
	}
	report.Entries = entries
	log.Info(ctx, "Status complete", logging.Fields{"entries": len(entries)})
	return e.finish(report, models.StatusCompleted)
}

// Diff shows the unified diff between the server and the checkout below
// localPath. DirectionLocal presents the server as the old side.
func (e *Engine) Diff(ctx context.Context, localPath string, direction models.Direction) (*models.Report, error) {
	op, root, err := e.prepare(models.OpDiff, localPath)
	if err != nil {
		return nil, err
	}
	if direction == "" {
		direction = models.DirectionLocal
	}
	op.Direction = direction
	log := e.opLogger(op)
	report := e.start(op)

	ws, snap, err := e.snapshot(ctx, op, root, log)
	if ws != nil {
		defer e.closeWorkspace(ctx, ws, log)
	}
	if err != nil {
		return nil, err
	}

	lines, err := e.deps.Differ.Diff(ctx, snap, direction)
	if err != nil {
		if !diff.IsDegraded(err) {
			return nil, err
		}
		e.degraded(ctx, report, err, log)
	}
	report.DiffLines = lines
	return e.finish(report, models.StatusCompleted)
}

func (e *Engine) degraded(ctx context.Context, report *models.Report, err error, log logging.Logger) {
	log.Warn(ctx, "Comparison skipped", logging.Fields{"error": err.Error()})
	msg := "diff tool not available, no comparison shown"
	if errors.Is(err, diff.ErrTimeout) {
		msg = "diff timed out, no comparison shown"
	}
	e.warn(report, msg)
}

// snapshot fetches the server content and lays out the REMOTE and LOCAL
// sides of the filter path. The returned workspace is non-nil whenever it
// was created and must be closed by the caller.
func (e *Engine) snapshot(ctx context.Context, op *models.Operation, root vaultpath.Root, log logging.Logger) (*Workspace, diff.Snapshot, error) {
	ws, err := NewWorkspace(e.deps.TempDir)
	if err != nil {
		return nil, diff.Snapshot{}, err
	}

	archive, _, err := e.fetchRemote(ctx, ws, op, log)
	if err != nil {
		return ws, diff.Snapshot{}, err
	}
	extractDir := ws.ExtractDir()
	if err := pack.Extract(archive, extractDir); err != nil {
		return ws, diff.Snapshot{}, fmt.Errorf("failed to extract package: %w", err)
	}

	snap := diff.Snapshot{Base: ws.SnapshotDir(), FilterPath: root.FilterPath}
	if err := os.MkdirAll(snap.Base, 0755); err != nil {
		return ws, diff.Snapshot{}, fmt.Errorf("failed to create %s: %w", snap.Base, err)
	}

	remoteContent := filepath.Join(extractDir, pack.ContentDir)
	if err := linkOrCopy(remoteContent, snap.RemoteRoot()); err != nil {
		return ws, diff.Snapshot{}, err
	}

	localSide := sidePath(snap.LocalRoot(), root.FilterPath)
	if _, err := os.Stat(root.LocalPath); err == nil {
		excludes := e.deps.Builder.CollectExcludePatterns(root.RepoRoot)
		if err := pack.CopyContentTree(root.LocalPath, localSide, excludes); err != nil {
			return ws, diff.Snapshot{}, fmt.Errorf("failed to copy local content: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return ws, diff.Snapshot{}, fmt.Errorf("failed to stat %s: %w", root.LocalPath, err)
	}

	if err := fillMissingSide(sidePath(snap.RemoteRoot(), root.FilterPath), localSide); err != nil {
		return ws, diff.Snapshot{}, err
	}
	log.Debug(ctx, "Snapshot ready", logging.Fields{"base": snap.Base})
	return ws, snap, nil
}

func sidePath(side, filterPath string) string {
	return filepath.Join(side, filepath.FromSlash(strings.TrimPrefix(filterPath, "/")))
}

// linkOrCopy points link at target, copying the tree where symlinks are
// not available
func linkOrCopy(target, link string) error {
	if err := os.MkdirAll(target, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	if err := os.Symlink(target, link); err == nil {
		return nil
	}
	if err := pack.CopyContentTree(target, link, nil); err != nil {
		return fmt.Errorf("failed to copy %s: %w", target, err)
	}
	return os.MkdirAll(link, 0755)
}

// fillMissingSide creates an empty directory for a side that has no
// content, unless the other side is a regular file.
func fillMissingSide(remote, local string) error {
	remoteInfo, remoteErr := os.Stat(remote)
	localInfo, localErr := os.Stat(local)

	switch {
	case remoteErr != nil && localErr != nil:
		if err := os.MkdirAll(remote, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", remote, err)
		}
		return os.MkdirAll(local, 0755)
	case remoteErr != nil && localInfo.IsDir():
		return os.MkdirAll(remote, 0755)
	case localErr != nil && remoteInfo.IsDir():
		return os.MkdirAll(local, 0755)
	}
	return nil
}
