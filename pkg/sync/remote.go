package sync

import (
	"context"
	"fmt"

	"github.com/sdejongh/jcrsync/pkg/logging"
	"github.com/sdejongh/jcrsync/pkg/models"
	"github.com/sdejongh/jcrsync/pkg/pack"
)

// fetchRemote round-trips an empty package covering the operation's filter
// through the server and downloads the built result into the workspace.
// Once the upload succeeded the server package is deleted before
// returning, whatever happens afterwards.
func (e *Engine) fetchRemote(ctx context.Context, ws *Workspace, op *models.Operation, log logging.Logger) (archive string, size int64, err error) {
	desc := pack.NewDescriptor(op.FilterPath, e.cfg.PackageGroup, e.deps.Now())
	staging := ws.StagingDir()
	if err := e.deps.Builder.CreatePackage(staging, desc); err != nil {
		return "", 0, fmt.Errorf("failed to create package: %w", err)
	}
	empty, err := pack.SerializeToArchive(staging)
	if err != nil {
		return "", 0, fmt.Errorf("failed to serialize package: %w", err)
	}

	packagePath := desc.PackagePath()
	log.Debug(ctx, "Fetching remote content", logging.Fields{"package": packagePath})

	e.step("Uploading empty package...")
	if _, err := e.deps.Transfer.Upload(ctx, empty); err != nil {
		return "", 0, err
	}
	defer func() {
		if derr := e.deletePackage(ctx, packagePath, log); derr != nil && err == nil {
			err = derr
		}
	}()

	e.step("Building package on server...")
	if _, err := e.deps.Transfer.Build(ctx, packagePath); err != nil {
		return "", 0, err
	}

	e.step("Downloading package...")
	archive = ws.DownloadPath()
	size, err = e.deps.Transfer.Download(ctx, packagePath, archive)
	if err != nil {
		return "", 0, err
	}
	log.Info(ctx, "Downloaded package", logging.Fields{"package": packagePath, "bytes": size})
	return archive, size, nil
}

// deletePackage removes an uploaded package. It runs detached from ctx
// cancellation so that an interrupted operation still cleans up.
func (e *Engine) deletePackage(ctx context.Context, packagePath string, log logging.Logger) error {
	if _, err := e.deps.Transfer.Delete(context.WithoutCancel(ctx), packagePath); err != nil {
		log.Error(ctx, "Failed to delete package from server", err, logging.Fields{"package": packagePath})
		return err
	}
	log.Debug(ctx, "Deleted package from server", logging.Fields{"package": packagePath})
	return nil
}
