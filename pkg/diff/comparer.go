package diff

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrToolUnavailable is returned when the comparison tool cannot be found
	ErrToolUnavailable = errors.New("diff tool not available")
	// ErrTimeout is returned when a comparison exceeds its time budget
	ErrTimeout = errors.New("diff operation timed out")
)

// Comparer compares two directory trees. a and b are relative to dir and
// appear verbatim in the returned lines, which follow the output format
// of the diff utility.
type Comparer interface {
	// CompareTrees lists differing paths, one brief line per difference
	CompareTrees(ctx context.Context, dir, a, b string) ([]string, error)

	// UnifiedDiff returns a recursive unified diff, absent files treated
	// as empty and whitespace changes ignored
	UnifiedDiff(ctx context.Context, dir, a, b string) ([]string, error)
}

// IsDegraded reports whether err means no comparison could be made.
// Such errors are reported as warnings rather than failing an operation.
func IsDegraded(err error) bool {
	return errors.Is(err, ErrToolUnavailable) || errors.Is(err, ErrTimeout)
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
