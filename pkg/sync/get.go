package sync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sdejongh/jcrsync/internal/platform"
	"github.com/sdejongh/jcrsync/pkg/logging"
	"github.com/sdejongh/jcrsync/pkg/models"
	"github.com/sdejongh/jcrsync/pkg/output"
	"github.com/sdejongh/jcrsync/pkg/pack"
	"github.com/sdejongh/jcrsync/pkg/vaultpath"
	"github.com/sdejongh/jcrsync/pkg/vcs"
)

// Checkout downloads repoPath into the checkout found from the working
// directory, creating a jcr_root there when none exists.
func (e *Engine) Checkout(ctx context.Context, repoPath string) (*models.Report, error) {
	if err := vaultpath.ValidateRepositoryPath(repoPath); err != nil {
		return nil, err
	}

	cwd, err := e.deps.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	checkoutRoot, created, err := vaultpath.FindOrCreateCheckoutRoot(cwd)
	if err != nil {
		return nil, err
	}
	intro := fmt.Sprintf("Checking out into existing %s", checkoutRoot)
	if created {
		intro = fmt.Sprintf("Checking out into new %s", checkoutRoot)
	}

	target := filepath.Join(checkoutRoot, filepath.FromSlash(vaultpath.ToFilesystemPath(repoPath)))
	if err := os.MkdirAll(target, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", target, err)
	}
	return e.get(ctx, models.OpCheckout, target, intro)
}

// Get replaces the local content at localPath with the server content of
// its filter path.
func (e *Engine) Get(ctx context.Context, localPath string) (*models.Report, error) {
	return e.get(ctx, models.OpGet, localPath, "")
}

func (e *Engine) get(ctx context.Context, kind models.OperationKind, localPath, intro string) (*models.Report, error) {
	op, root, err := e.prepare(kind, localPath)
	if err != nil {
		return nil, err
	}
	log := e.opLogger(op)
	report := e.start(op)
	if intro != "" {
		e.step(intro)
	}

	ws, err := NewWorkspace(e.deps.TempDir)
	if err != nil {
		return nil, err
	}
	defer e.closeWorkspace(ctx, ws, log)

	archive, size, err := e.fetchRemote(ctx, ws, op, log)
	if err != nil {
		return nil, err
	}
	report.Bytes = size

	extractDir := ws.ExtractDir()
	if err := pack.Extract(archive, extractDir); err != nil {
		return nil, fmt.Errorf("failed to extract package: %w", err)
	}
	entries, err := pack.ListContentEntries(archive, root.FilterPath)
	if err != nil {
		return nil, err
	}
	report.Files = entries
	e.notify(output.ProgressUpdate{Type: output.UpdatePreview, Lines: entries})

	ok, err := e.confirm("Download and overwrite locally?")
	if err != nil {
		return nil, err
	}
	if !ok {
		log.Info(ctx, "Download declined", nil)
		return e.finish(report, models.StatusAborted)
	}

	source := filepath.Join(extractDir, pack.ContentDir, filepath.FromSlash(strings.TrimPrefix(root.FilterPath, "/")))
	if _, err := os.Stat(source); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat %s: %w", source, err)
		}
		e.warn(report, fmt.Sprintf("No content found for %s", op.FilterPath))
		return e.finish(report, models.StatusNoContent)
	}

	cwd, err := e.deps.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	if err := platform.RemoveTarget(root.LocalPath, cwd); err != nil {
		return nil, fmt.Errorf("failed to replace %s: %w", root.LocalPath, err)
	}
	excludes := e.deps.Builder.CollectExcludePatterns(root.RepoRoot)
	if err := pack.CopyContentTree(source, root.LocalPath, excludes); err != nil {
		return nil, fmt.Errorf("failed to copy content into place: %w", err)
	}

	log.Info(ctx, "Downloaded content", logging.Fields{"entries": len(entries), "bytes": size})
	e.notify(output.ProgressUpdate{Type: output.UpdateSuccess, Message: "Download completed successfully"})
	e.reportVCSStatus(ctx, report, root.LocalPath, log)
	return e.finish(report, models.StatusCompleted)
}

// reportVCSStatus shows the version-control status of the updated target.
// Failures never fail the operation.
func (e *Engine) reportVCSStatus(ctx context.Context, report *models.Report, path string, log logging.Logger) {
	if e.cfg.Quiet || e.deps.VCS == nil {
		return
	}

	lines, err := e.deps.VCS.Status(ctx, path)
	switch {
	case errors.Is(err, vcs.ErrNotRepository):
		log.Debug(ctx, "Target is not under version control", logging.Fields{"path": path})
		return
	case errors.Is(err, vcs.ErrTimeout):
		e.warn(report, "version control status timed out")
		return
	case err != nil:
		log.Warn(ctx, "Failed to read version control status", logging.Fields{"path": path, "error": err.Error()})
		return
	}
	e.notify(output.ProgressUpdate{Type: output.UpdateVCSStatus, Lines: lines})
}
