package diff

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

type palette struct {
	header *color.Color
	remove *color.Color
	add    *color.Color
	hunk   *color.Color
}

// newPalette ignores color.NoColor: the caller has already decided to colorize
func newPalette() *palette {
	p := &palette{
		header: color.New(color.FgWhite, color.Bold),
		remove: color.New(color.FgRed),
		add:    color.New(color.FgGreen),
		hunk:   color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.header, p.remove, p.add, p.hunk} {
		c.EnableColor()
	}
	return p
}

func (p *palette) lineColor(line string) *color.Color {
	switch {
	case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
		return p.header
	case strings.HasPrefix(line, "-"):
		return p.remove
	case strings.HasPrefix(line, "+"):
		return p.add
	case strings.HasPrefix(line, "@@"):
		return p.hunk
	}
	return nil
}

// Render writes unified diff lines to w. With colorize, file headers,
// removed lines, added lines and hunk headers are colored; everything else
// is written unchanged.
func Render(w io.Writer, lines []string, colorize bool) error {
	var p *palette
	if colorize {
		p = newPalette()
	}

	for _, line := range lines {
		var err error
		if c := p.colorFor(line); c != nil {
			_, err = c.Fprintln(w, line)
		} else {
			_, err = fmt.Fprintln(w, line)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *palette) colorFor(line string) *color.Color {
	if p == nil {
		return nil
	}
	return p.lineColor(line)
}
