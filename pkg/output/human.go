package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/sdejongh/jcrsync/pkg/diff"
	"github.com/sdejongh/jcrsync/pkg/models"
)

// HumanFormatter formats output in human-readable format
type HumanFormatter struct {
	writer   io.Writer
	colorize bool
	quiet    bool

	success *color.Color
	warning *color.Color
	status  map[models.StatusCode]*color.Color
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter(opts Options) *HumanFormatter {
	f := &HumanFormatter{
		colorize: opts.Color,
		quiet:    opts.Quiet,
		success:  color.New(color.FgGreen),
		warning:  color.New(color.FgYellow),
		status: map[models.StatusCode]*color.Color{
			models.StatusModified:          color.New(color.FgYellow),
			models.StatusAddedLocally:      color.New(color.FgGreen),
			models.StatusDeletedLocally:    color.New(color.FgRed),
			models.StatusConflictFileVsDir: color.New(color.FgMagenta),
			models.StatusConflictDirVsFile: color.New(color.FgMagenta),
		},
	}

	all := []*color.Color{f.success, f.warning}
	for _, c := range f.status {
		all = append(all, c)
	}
	for _, c := range all {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return f
}

// Start prints the operation header
func (f *HumanFormatter) Start(writer io.Writer, op *models.Operation, server string) error {
	f.writer = writer
	if writer == nil || f.quiet {
		return nil
	}

	var header string
	switch op.Kind {
	case models.OpCheckout:
		header = fmt.Sprintf("Checking out %s from %s", op.FilterPath, server)
	case models.OpPut:
		header = fmt.Sprintf("Uploading %s to %s", op.FilterPath, server)
	case models.OpGet:
		header = fmt.Sprintf("Downloading %s from %s", op.FilterPath, server)
	case models.OpStatus:
		header = fmt.Sprintf("Checking status for %s against %s", op.FilterPath, server)
	case models.OpDiff:
		header = fmt.Sprintf("Showing differences (%s) for %s against %s", op.Direction.Label(), op.FilterPath, server)
	default:
		header = fmt.Sprintf("%s %s (%s)", op.Kind, op.FilterPath, server)
	}
	_, err := fmt.Fprintln(writer, header)
	return err
}

// Progress reports progress during the operation
func (f *HumanFormatter) Progress(update ProgressUpdate) error {
	if f.writer == nil {
		return nil
	}
	if f.quiet && update.Type != UpdateWarning {
		return nil
	}

	switch update.Type {
	case UpdateStep:
		fmt.Fprintln(f.writer, update.Message)

	case UpdatePreview:
		for _, line := range previewLines(update.Lines) {
			fmt.Fprintf(f.writer, "  %s\n", line)
		}

	case UpdateSuccess:
		f.success.Fprintf(f.writer, "✓ %s\n", update.Message)

	case UpdateWarning:
		f.warning.Fprintf(f.writer, "Warning: %s\n", update.Message)

	case UpdateVCSStatus:
		if len(update.Lines) == 0 {
			return nil
		}
		fmt.Fprintf(f.writer, "\nGit status:\n")
		for _, line := range update.Lines {
			fmt.Fprintln(f.writer, line)
		}
	}

	return nil
}

// Complete finalizes output and prints the result of the operation
func (f *HumanFormatter) Complete(report *models.Report) error {
	if f.writer == nil {
		f.writer = io.Discard
	}

	if report.Status == models.StatusAborted {
		_, err := fmt.Fprintln(f.writer, "Aborted.")
		return err
	}

	switch report.Kind {
	case models.OpStatus:
		for _, entry := range report.Entries {
			if c, ok := f.status[entry.Status]; ok {
				c.Fprintln(f.writer, entry.String())
			} else {
				fmt.Fprintln(f.writer, entry.String())
			}
		}

	case models.OpDiff:
		if err := diff.Render(f.writer, report.DiffLines, f.colorize); err != nil {
			return err
		}
	}

	return nil
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	if f.writer != nil {
		fmt.Fprintf(f.writer, "Error: %v\n", err)
	}
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

// FormatBytes formats bytes in human-readable format
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
