package output

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/sdejongh/jcrsync/pkg/models"
)

// UpdateType identifies the kind of progress notification
type UpdateType string

const (
	// UpdateStep announces the next step of an operation
	UpdateStep UpdateType = "step"
	// UpdatePreview lists archive entries about to be transferred
	UpdatePreview UpdateType = "preview"
	// UpdateSuccess announces a completed transfer
	UpdateSuccess UpdateType = "success"
	// UpdateWarning reports a non-fatal condition
	UpdateWarning UpdateType = "warning"
	// UpdateVCSStatus carries version-control status lines of the target
	UpdateVCSStatus UpdateType = "vcs_status"
)

// PreviewLimit is the number of archive entries shown before confirmation
const PreviewLimit = 10

// ProgressUpdate represents a progress notification during an operation
type ProgressUpdate struct {
	Type    UpdateType
	Message string
	Lines   []string
}

// Formatter defines the interface for output formatting
// Implementations include human-readable and JSON formatters
type Formatter interface {
	// Start announces an operation against a server
	Start(writer io.Writer, op *models.Operation, server string) error

	// Progress reports progress during the operation
	Progress(update ProgressUpdate) error

	// Complete finalizes output with the operation report
	Complete(report *models.Report) error

	// Error reports an error during the operation
	Error(err error) error

	// Name returns the formatter name
	Name() string
}

// Options tune formatter rendering
type Options struct {
	// Color enables ANSI colors in human output
	Color bool
	// Quiet drops headers and progress; warnings and results remain
	Quiet bool
}

// New returns the formatter registered under name
func New(name string, opts Options) (Formatter, error) {
	switch name {
	case "", "human":
		return NewHumanFormatter(opts), nil
	case "json":
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", name)
	}
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// previewLines truncates archive entries to PreviewLimit and appends the
// remaining count
func previewLines(entries []string) []string {
	if len(entries) <= PreviewLimit {
		return entries
	}
	lines := append([]string{}, entries[:PreviewLimit]...)
	return append(lines, fmt.Sprintf("... and %d more files", len(entries)-PreviewLimit))
}
