package diff

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/sdejongh/jcrsync/pkg/compare"
	"github.com/sdejongh/jcrsync/pkg/logging"
	"github.com/sdejongh/jcrsync/pkg/storage"
)

const timestampLayout = "2006-01-02 15:04:05.000000000 -0700"

// BuiltinComparer compares snapshots in-process. Its output uses the same
// line formats as the diff utility so both comparers classify identically.
type BuiltinComparer struct {
	comparator *compare.BinaryComparator
	context    int
	logger     logging.Logger
}

// NewBuiltinComparer creates an in-process comparer
func NewBuiltinComparer(logger logging.Logger) *BuiltinComparer {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &BuiltinComparer{
		comparator: compare.NewBinaryComparator(64 * 1024),
		context:    3,
		logger:     logger,
	}
}

type entryKind int

const (
	onlyLeft entryKind = iota
	onlyRight
	bothFiles
	fileVsDir
	dirVsFile
)

type visitFunc func(kind entryKind, rel string, isDir bool) error

// CompareTrees lists differing paths between dir/a and dir/b
func (c *BuiltinComparer) CompareTrees(ctx context.Context, dir, a, b string) ([]string, error) {
	left, right, err := openPair(dir, a, b)
	if err != nil {
		return nil, err
	}

	switch {
	case left.tree == nil:
		return []string{onlyIn(path.Dir(b), path.Base(b))}, nil
	case right.tree == nil:
		return []string{onlyIn(path.Dir(a), path.Base(a))}, nil
	case !left.isDir && !right.isDir:
		differ, err := c.differ(ctx, left.tree, right.tree, path.Base(a))
		if err != nil || !differ {
			return nil, err
		}
		return []string{filesDiffer(a, b)}, nil
	case !left.isDir:
		return []string{typeMismatch(fileVsDir, a, b)}, nil
	case !right.isDir:
		return []string{typeMismatch(dirVsFile, a, b)}, nil
	}

	var lines []string
	err = walk(ctx, left.tree, right.tree, "", func(kind entryKind, rel string, isDir bool) error {
		switch kind {
		case onlyLeft:
			lines = append(lines, onlyIn(path.Join(a, path.Dir(rel)), path.Base(rel)))
		case onlyRight:
			lines = append(lines, onlyIn(path.Join(b, path.Dir(rel)), path.Base(rel)))
		case fileVsDir, dirVsFile:
			lines = append(lines, typeMismatch(kind, path.Join(a, rel), path.Join(b, rel)))
		case bothFiles:
			differ, err := c.differ(ctx, left.tree, right.tree, rel)
			if err != nil {
				return err
			}
			if differ {
				lines = append(lines, filesDiffer(path.Join(a, rel), path.Join(b, rel)))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (c *BuiltinComparer) differ(ctx context.Context, left, right storage.Tree, rel string) (bool, error) {
	result, err := c.comparator.Compare(ctx, left, right, rel)
	if err != nil {
		return false, err
	}
	if result.Result != compare.Different {
		return false, nil
	}
	c.logger.Debug(ctx, "Files differ", logging.Fields{"path": rel, "reason": result.Reason})
	return true, nil
}

// UnifiedDiff produces a recursive unified diff of dir/a and dir/b.
// Files missing on one side are diffed against empty content and files
// whose only changes are whitespace are skipped.
func (c *BuiltinComparer) UnifiedDiff(ctx context.Context, dir, a, b string) ([]string, error) {
	left, right, err := openPair(dir, a, b)
	if err != nil {
		return nil, err
	}

	switch {
	case !left.isDir && !right.isDir:
		return c.fileDiff(ctx, left.tree, right.tree, path.Dir(a), path.Dir(b), path.Base(a), left.tree != nil, right.tree != nil)
	case left.tree != nil && right.tree != nil && left.isDir != right.isDir:
		kind := dirVsFile
		if !left.isDir {
			kind = fileVsDir
		}
		return []string{typeMismatch(kind, a, b)}, nil
	}

	var lines []string
	emit := func(rel string, inLeft, inRight bool) error {
		out, err := c.fileDiff(ctx, left.tree, right.tree, a, b, rel, inLeft, inRight)
		if err != nil {
			return err
		}
		lines = append(lines, out...)
		return nil
	}

	err = walk(ctx, left.tree, right.tree, "", func(kind entryKind, rel string, isDir bool) error {
		switch kind {
		case onlyLeft:
			return eachFile(ctx, left.tree, rel, isDir, func(file string) error { return emit(file, true, false) })
		case onlyRight:
			return eachFile(ctx, right.tree, rel, isDir, func(file string) error { return emit(file, false, true) })
		case fileVsDir, dirVsFile:
			lines = append(lines, typeMismatch(kind, path.Join(a, rel), path.Join(b, rel)))
		case bothFiles:
			return emit(rel, true, true)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// operand is one side of a comparison. A directory is opened as its own
// tree; a regular file is opened through its parent so that its base name
// addresses it. A missing side has a nil tree.
type operand struct {
	tree  storage.Tree
	isDir bool
}

// openPair opens both sides. a and b name the same entry below two roots,
// so a file operand has the same base name on either side.
func openPair(dir, a, b string) (operand, operand, error) {
	left, err := openSide(dir, a)
	if err != nil {
		return operand{}, operand{}, err
	}
	right, err := openSide(dir, b)
	if err != nil {
		return operand{}, operand{}, err
	}
	if left.tree == nil && right.tree == nil {
		return operand{}, operand{}, fmt.Errorf("neither %s nor %s exists", a, b)
	}
	return left, right, nil
}

func openSide(dir, side string) (operand, error) {
	full := filepath.Join(dir, filepath.FromSlash(side))
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return operand{}, nil
		}
		return operand{}, fmt.Errorf("failed to open %s: %w", side, err)
	}

	root := full
	if !info.IsDir() {
		root = filepath.Dir(full)
	}
	local, err := storage.NewLocal(root)
	if err != nil {
		return operand{}, fmt.Errorf("failed to open %s: %w", side, err)
	}
	return operand{tree: local, isDir: info.IsDir()}, nil
}

func (c *BuiltinComparer) fileDiff(ctx context.Context, left, right storage.Tree, a, b, rel string, inLeft, inRight bool) ([]string, error) {
	leftText, leftTime, err := readSide(ctx, left, rel, inLeft)
	if err != nil {
		return nil, err
	}
	rightText, rightTime, err := readSide(ctx, right, rel, inRight)
	if err != nil {
		return nil, err
	}

	leftLines := splitContent(leftText)
	rightLines := splitContent(rightText)
	if equalIgnoringSpace(leftLines, rightLines) {
		return nil, nil
	}

	fromFile := path.Join(a, rel)
	toFile := path.Join(b, rel)
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        leftLines,
		B:        rightLines,
		FromFile: fromFile,
		FromDate: leftTime.Format(timestampLayout),
		ToFile:   toFile,
		ToDate:   rightTime.Format(timestampLayout),
		Context:  c.context,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to diff %s: %w", rel, err)
	}
	if text == "" {
		return nil, nil
	}

	lines := []string{fmt.Sprintf("diff -rduNw %s %s", fromFile, toFile)}
	return append(lines, splitLines(text)...), nil
}

func readSide(ctx context.Context, tree storage.Tree, rel string, present bool) (string, time.Time, error) {
	if !present {
		return "", time.Unix(0, 0), nil
	}
	info, err := tree.Stat(ctx, rel)
	if err != nil {
		return "", time.Time{}, err
	}
	reader, err := tree.Read(ctx, rel)
	if err != nil {
		return "", time.Time{}, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to read %s: %w", rel, err)
	}
	return string(data), info.ModTime, nil
}

// walk visits the union of both trees in name order, descending into
// directories present on both sides.
func walk(ctx context.Context, left, right storage.Tree, rel string, fn visitFunc) error {
	leftEntries, err := readDir(ctx, left, rel)
	if err != nil {
		return err
	}
	rightEntries, err := readDir(ctx, right, rel)
	if err != nil {
		return err
	}

	i, j := 0, 0
	for i < len(leftEntries) || j < len(rightEntries) {
		switch {
		case j >= len(rightEntries) || (i < len(leftEntries) && leftEntries[i].Name < rightEntries[j].Name):
			if err := fn(onlyLeft, leftEntries[i].RelativePath, leftEntries[i].IsDir); err != nil {
				return err
			}
			i++
		case i >= len(leftEntries) || rightEntries[j].Name < leftEntries[i].Name:
			if err := fn(onlyRight, rightEntries[j].RelativePath, rightEntries[j].IsDir); err != nil {
				return err
			}
			j++
		default:
			l, r := leftEntries[i], rightEntries[j]
			var err error
			switch {
			case l.IsDir && r.IsDir:
				err = walk(ctx, left, right, l.RelativePath, fn)
			case !l.IsDir && !r.IsDir:
				err = fn(bothFiles, l.RelativePath, false)
			case !l.IsDir:
				err = fn(fileVsDir, l.RelativePath, false)
			default:
				err = fn(dirVsFile, l.RelativePath, true)
			}
			if err != nil {
				return err
			}
			i++
			j++
		}
	}
	return nil
}

// readDir lists rel in tree. A nil tree is an empty side.
func readDir(ctx context.Context, tree storage.Tree, rel string) ([]storage.FileInfo, error) {
	if tree == nil {
		return nil, nil
	}
	return tree.ReadDir(ctx, rel)
}

// eachFile calls fn for rel, or for every file below it when rel is a directory
func eachFile(ctx context.Context, tree storage.Tree, rel string, isDir bool, fn func(string) error) error {
	if !isDir {
		return fn(rel)
	}
	entries, err := tree.ReadDir(ctx, rel)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := eachFile(ctx, tree, entry.RelativePath, entry.IsDir, fn); err != nil {
			return err
		}
	}
	return nil
}

func filesDiffer(a, b string) string {
	return fmt.Sprintf("Files %s and %s differ", a, b)
}

func onlyIn(dir, name string) string {
	return fmt.Sprintf("Only in %s: %s", dir, name)
}

func typeMismatch(kind entryKind, a, b string) string {
	if kind == fileVsDir {
		return fmt.Sprintf("File %s is a regular file while file %s is a directory", a, b)
	}
	return fmt.Sprintf("File %s is a directory while file %s is a regular file", a, b)
}

// splitContent splits text into newline-terminated lines
func splitContent(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	} else {
		lines[len(lines)-1] += "\n"
	}
	return lines
}

func equalIgnoringSpace(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if stripSpace(a[i]) != stripSpace(b[i]) {
			return false
		}
	}
	return true
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
