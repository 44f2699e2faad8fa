package cli

import (
	"context"
	"fmt"
	"os"

	units "github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/sdejongh/jcrsync/pkg/config"
	"github.com/sdejongh/jcrsync/pkg/diff"
	"github.com/sdejongh/jcrsync/pkg/logging"
	"github.com/sdejongh/jcrsync/pkg/models"
	"github.com/sdejongh/jcrsync/pkg/output"
	"github.com/sdejongh/jcrsync/pkg/sync"
	"github.com/sdejongh/jcrsync/pkg/transfer"
	"github.com/sdejongh/jcrsync/pkg/vaultpath"
	"github.com/sdejongh/jcrsync/pkg/vcs"
)

// commandFlags are the per-command flags feeding the configuration merge
type commandFlags struct {
	Output    string
	NoColor   bool
	Bandwidth string
	DiffTool  string
}

// session is everything one command invocation works with
type session struct {
	cfg       config.Config
	logger    logging.Logger
	formatter output.Formatter
	engine    *sync.Engine
}

// resolveConfig merges every configuration source for an operation whose
// local operand is target. target may be empty.
func resolveConfig(target string, flags commandFlags) (*config.Resolution, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	userFile := globalFlags.ConfigFile
	if userFile == "" {
		if path, err := config.DefaultConfigPath(); err == nil {
			userFile = path
		}
	}

	bandwidth, err := parseBandwidth(flags.Bandwidth)
	if err != nil {
		return nil, err
	}

	start := cwd
	if target != "" {
		start = target
	}
	checkoutRoot, _ := vaultpath.FindCheckoutRoot(start)

	return config.Resolve(config.Sources{
		UserFile:        userFile,
		RequireUserFile: globalFlags.ConfigFile != "",
		WorkDir:         cwd,
		CheckoutRoot:    checkoutRoot,
		Flags: config.Overrides{
			Server:         globalFlags.Server,
			Credentials:    globalFlags.Credentials,
			Force:          globalFlags.Force,
			Quiet:          globalFlags.Quiet,
			OutputFormat:   flags.Output,
			NoColor:        flags.NoColor,
			DiffTool:       flags.DiffTool,
			BandwidthLimit: bandwidth,
			LogLevel:       globalFlags.LogLevel,
			LogFormat:      globalFlags.LogFormat,
			LogFile:        globalFlags.LogFile,
		},
	})
}

// newSession resolves the configuration and wires the engine
func newSession(cmd *cobra.Command, target string, flags commandFlags) (*session, error) {
	res, err := resolveConfig(target, flags)
	if err != nil {
		return nil, err
	}
	cfg := res.Config

	logger, err := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.Logging.Level),
		Console: cmd.ErrOrStderr(),
		File:    cfg.Logging.File,
		Format:  logging.Format(cfg.Logging.Format),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	ctx := context.Background()
	for _, warning := range res.Warnings {
		logger.Warn(ctx, warning, nil)
	}
	logger.Debug(ctx, "Configuration resolved", logging.Fields{
		"server": cfg.ServerLabel(),
		"files":  res.Files,
	})

	out := cmd.OutOrStdout()
	formatter, err := output.New(cfg.Output.Format, output.Options{
		Color: cfg.Output.Color && output.IsTerminal(out),
		Quiet: cfg.Quiet,
	})
	if err != nil {
		logger.Close()
		return nil, err
	}

	var progress transfer.ProgressReporter
	if cfg.Transfer.Progress && !cfg.Quiet && output.IsTerminal(cmd.ErrOrStderr()) {
		progress = output.NewDownloadProgress(cmd.ErrOrStderr())
	}

	var comparer diff.Comparer
	switch cfg.Diff.Tool {
	case "builtin":
		comparer = diff.NewBuiltinComparer(logger)
	default:
		comparer = diff.NewExecComparer(logger)
	}

	engine := sync.NewEngine(cfg, sync.Dependencies{
		Transfer:  transfer.NewClient(cfg, logger, progress),
		Differ:    diff.NewEngine(comparer, logger),
		VCS:       vcs.NewGitReporter(logger),
		Confirmer: NewPromptConfirmer(cmd.InOrStdin(), out),
		Formatter: formatter,
		Out:       out,
		Logger:    logger,
	})

	return &session{cfg: cfg, logger: logger, formatter: formatter, engine: engine}, nil
}

// finish reports a failed operation through the formatter when it renders
// machine-readable output, and releases the session
func (s *session) finish(err error) error {
	if err != nil && s.formatter.Name() == "json" {
		s.formatter.Error(err)
	}
	if cerr := s.logger.Close(); cerr != nil && err == nil {
		return cerr
	}
	return err
}

// parseBandwidth converts sizes like "512K" or "10M" to bytes per second
func parseBandwidth(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := units.RAMInBytes(s)
	if err != nil || n < 0 {
		return 0, &models.UsageError{
			Reason:  models.ReasonInvalidFlag,
			Path:    s,
			Message: "invalid bandwidth limit",
		}
	}
	return n, nil
}

func writeReport(report *models.Report, path, format string) error {
	if path == "" || report == nil {
		return nil
	}
	if err := output.WriteDifferencesReport(report, path, format); err != nil {
		return fmt.Errorf("failed to write differences report: %w", err)
	}
	return nil
}
