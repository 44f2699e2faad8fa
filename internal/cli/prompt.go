package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNotInteractive is returned when a confirmation is needed but input is
// not a terminal
var ErrNotInteractive = errors.New("confirmation required but input is not a terminal (use --force)")

// PromptConfirmer asks yes/no questions on a terminal
type PromptConfirmer struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewPromptConfirmer creates a confirmer reading answers from in
func NewPromptConfirmer(in io.Reader, out io.Writer) *PromptConfirmer {
	return newPromptConfirmer(in, out, isTerminal(in))
}

func newPromptConfirmer(in io.Reader, out io.Writer, interactive bool) *PromptConfirmer {
	return &PromptConfirmer{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: interactive,
	}
}

// Confirm prints prompt and accepts y or yes, case-insensitively
func (c *PromptConfirmer) Confirm(prompt string) (bool, error) {
	if !c.interactive {
		return false, ErrNotInteractive
	}

	fmt.Fprintf(c.out, "%s [y/N] ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func isTerminal(r io.Reader) bool {
	file, ok := r.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
