package diff

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/sdejongh/jcrsync/pkg/logging"
)

// DefaultTimeout bounds a single run of the external diff tool
const DefaultTimeout = 30 * time.Second

// ExecComparer runs the diff utility found on PATH
type ExecComparer struct {
	program string
	timeout time.Duration
	logger  logging.Logger
}

// NewExecComparer creates a comparer running "diff"
func NewExecComparer(logger logging.Logger) *ExecComparer {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &ExecComparer{
		program: "diff",
		timeout: DefaultTimeout,
		logger:  logger,
	}
}

// WithProgram overrides the executable name
func (c *ExecComparer) WithProgram(program string) *ExecComparer {
	c.program = program
	return c
}

// WithTimeout overrides the time budget
func (c *ExecComparer) WithTimeout(timeout time.Duration) *ExecComparer {
	c.timeout = timeout
	return c
}

// CompareTrees runs diff -rq
func (c *ExecComparer) CompareTrees(ctx context.Context, dir, a, b string) ([]string, error) {
	return c.run(ctx, dir, "-rq", a, b)
}

// UnifiedDiff runs diff -rduNw
func (c *ExecComparer) UnifiedDiff(ctx context.Context, dir, a, b string) ([]string, error) {
	return c.run(ctx, dir, "-rduNw", a, b)
}

func (c *ExecComparer) run(ctx context.Context, dir string, args ...string) ([]string, error) {
	program, err := exec.LookPath(c.program)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrToolUnavailable, c.program)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.logger.Debug(ctx, "Running diff tool", logging.Fields{
		"program": program,
		"args":    strings.Join(args, " "),
		"dir":     dir,
	})

	err = cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		// Exit status 1 means differences were found
		if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
			return nil, fmt.Errorf("%s failed: %w: %s", c.program, err, strings.TrimSpace(stderr.String()))
		}
	}

	return splitLines(stdout.String()), nil
}
