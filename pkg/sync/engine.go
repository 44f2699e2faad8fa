// Package sync runs the checkout, put, get, status and diff operations by
// round-tripping content packages through the package manager.
package sync

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/sdejongh/jcrsync/pkg/config"
	"github.com/sdejongh/jcrsync/pkg/diff"
	"github.com/sdejongh/jcrsync/pkg/logging"
	"github.com/sdejongh/jcrsync/pkg/models"
	"github.com/sdejongh/jcrsync/pkg/output"
	"github.com/sdejongh/jcrsync/pkg/pack"
	"github.com/sdejongh/jcrsync/pkg/transfer"
	"github.com/sdejongh/jcrsync/pkg/vaultpath"
	"github.com/sdejongh/jcrsync/pkg/vcs"
)

// Transfer is the package manager API used by the engine
type Transfer interface {
	Upload(ctx context.Context, archivePath string) (*transfer.Response, error)
	Build(ctx context.Context, packagePath string) (*transfer.Response, error)
	Install(ctx context.Context, packagePath string) (*transfer.Response, error)
	Delete(ctx context.Context, packagePath string) (*transfer.Response, error)
	Download(ctx context.Context, packagePath, destFile string) (int64, error)
}

// Confirmer asks the user to approve overwriting content
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// Dependencies are the capabilities an Engine works with. Transfer and
// Differ are required; the rest have defaults.
type Dependencies struct {
	Transfer  Transfer
	Builder   *pack.Builder
	Differ    *diff.Engine
	VCS       vcs.StatusReporter
	Confirmer Confirmer
	Formatter output.Formatter
	Out       io.Writer
	Logger    logging.Logger

	// Now stamps package versions
	Now func() time.Time
	// Getwd returns the working directory
	Getwd func() (string, error)
	// TempDir is the parent of per-operation workspaces
	TempDir string
}

// Engine orchestrates transfer operations for one resolved configuration
type Engine struct {
	cfg  config.Config
	deps Dependencies
}

// NewEngine creates a new engine
func NewEngine(cfg config.Config, deps Dependencies) *Engine {
	if deps.Logger == nil {
		deps.Logger = logging.NewNullLogger()
	}
	if deps.Builder == nil {
		deps.Builder = pack.NewBuilder(deps.Logger)
	}
	if deps.Formatter == nil {
		deps.Formatter = output.NewHumanFormatter(output.Options{Quiet: cfg.Quiet})
	}
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.Confirmer == nil {
		deps.Confirmer = declineAll{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Getwd == nil {
		deps.Getwd = os.Getwd
	}
	return &Engine{cfg: cfg, deps: deps}
}

// declineAll refuses every confirmation. It is the default when no
// interactive terminal is available.
type declineAll struct{}

func (declineAll) Confirm(string) (bool, error) { return false, nil }

// prepare resolves localPath against its checkout and refuses the
// repository root. No network call happens before it succeeds.
func (e *Engine) prepare(kind models.OperationKind, localPath string) (*models.Operation, vaultpath.Root, error) {
	root, err := vaultpath.ResolveFilterRoot(localPath)
	if err != nil {
		return nil, vaultpath.Root{}, err
	}
	if root.IsRepositoryRoot() {
		return nil, vaultpath.Root{}, models.NewRootPathError()
	}

	op := models.NewOperation(kind, localPath)
	op.RepoRoot = root.RepoRoot
	op.FilterPath = root.RepositoryPath()
	if err := op.Validate(); err != nil {
		return nil, vaultpath.Root{}, err
	}
	return op, root, nil
}

func (e *Engine) opLogger(op *models.Operation) logging.Logger {
	return e.deps.Logger.WithFields(logging.Fields{
		"operation_id": op.ID,
		"op":           string(op.Kind),
		"filter":       op.FilterPath,
	})
}

func (e *Engine) start(op *models.Operation) *models.Report {
	if err := e.deps.Formatter.Start(e.deps.Out, op, e.cfg.ServerLabel()); err != nil {
		e.deps.Logger.Debug(context.Background(), "Formatter start failed", logging.Fields{"error": err.Error()})
	}
	return models.NewReport(op, e.cfg.ServerLabel())
}

func (e *Engine) notify(update output.ProgressUpdate) {
	if err := e.deps.Formatter.Progress(update); err != nil {
		e.deps.Logger.Debug(context.Background(), "Formatter progress failed", logging.Fields{"error": err.Error()})
	}
}

func (e *Engine) step(msg string) {
	e.notify(output.ProgressUpdate{Type: output.UpdateStep, Message: msg})
}

func (e *Engine) warn(report *models.Report, msg string) {
	report.Warnings = append(report.Warnings, msg)
	e.notify(output.ProgressUpdate{Type: output.UpdateWarning, Message: msg})
}

func (e *Engine) finish(report *models.Report, status models.ReportStatus) (*models.Report, error) {
	report.Finish(status)
	if err := e.deps.Formatter.Complete(report); err != nil {
		return report, err
	}
	return report, nil
}

// confirm asks unless force or quiet is set
func (e *Engine) confirm(prompt string) (bool, error) {
	if e.cfg.Force || e.cfg.Quiet {
		return true, nil
	}
	return e.deps.Confirmer.Confirm(prompt)
}
