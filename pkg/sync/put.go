package sync

import (
	"context"
	"fmt"
	"os"

	"github.com/sdejongh/jcrsync/pkg/logging"
	"github.com/sdejongh/jcrsync/pkg/models"
	"github.com/sdejongh/jcrsync/pkg/output"
	"github.com/sdejongh/jcrsync/pkg/pack"
)

// Put uploads the local file or directory at localPath and installs it on
// the server, replacing the server content below its filter path.
func (e *Engine) Put(ctx context.Context, localPath string) (*models.Report, error) {
	op, root, err := e.prepare(models.OpPut, localPath)
	if err != nil {
		return nil, err
	}
	log := e.opLogger(op)
	report := e.start(op)

	ws, err := NewWorkspace(e.deps.TempDir)
	if err != nil {
		return nil, err
	}
	defer e.closeWorkspace(ctx, ws, log)

	desc := pack.NewDescriptor(op.FilterPath, e.cfg.PackageGroup, e.deps.Now())
	staging := ws.StagingDir()
	if err := e.deps.Builder.CreatePackage(staging, desc); err != nil {
		return nil, fmt.Errorf("failed to create package: %w", err)
	}
	excludes := e.deps.Builder.CollectExcludePatterns(root.RepoRoot)
	if err := e.deps.Builder.StageContent(staging, root.LocalPath, root.FilterPath, excludes); err != nil {
		return nil, fmt.Errorf("failed to stage content: %w", err)
	}
	archive, err := pack.SerializeToArchive(staging)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize package: %w", err)
	}

	entries, err := pack.ListContentEntries(archive, root.FilterPath)
	if err != nil {
		return nil, err
	}
	report.Files = entries
	if info, err := os.Stat(archive); err == nil {
		report.Bytes = info.Size()
	}
	e.notify(output.ProgressUpdate{Type: output.UpdatePreview, Lines: entries})

	ok, err := e.confirm("Upload and overwrite on server?")
	if err != nil {
		return nil, err
	}
	if !ok {
		log.Info(ctx, "Upload declined", nil)
		return e.finish(report, models.StatusAborted)
	}

	packagePath := desc.PackagePath()
	e.step("Uploading package...")
	if _, err := e.deps.Transfer.Upload(ctx, archive); err != nil {
		return nil, err
	}

	e.step("Installing package...")
	if _, err := e.deps.Transfer.Install(ctx, packagePath); err != nil {
		_ = e.deletePackage(ctx, packagePath, log)
		return nil, err
	}

	e.step("Cleaning up...")
	if err := e.deletePackage(ctx, packagePath, log); err != nil {
		return nil, err
	}

	log.Info(ctx, "Uploaded content", logging.Fields{"entries": len(entries), "bytes": report.Bytes})
	e.notify(output.ProgressUpdate{Type: output.UpdateSuccess, Message: "Upload completed successfully"})
	return e.finish(report, models.StatusCompleted)
}

func (e *Engine) closeWorkspace(ctx context.Context, ws *Workspace, log logging.Logger) {
	if err := ws.Close(); err != nil {
		log.Warn(ctx, "Failed to remove workspace", logging.Fields{"path": ws.Root, "error": err.Error()})
	}
}
