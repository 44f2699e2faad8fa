package diff

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/jcrsync/pkg/models"
)

// newSnapshot lays out REMOTE and LOCAL files under a fresh base directory.
// Map keys are jcr_root-relative paths; a trailing slash creates a directory.
func newSnapshot(t *testing.T, filterPath string, remote, local map[string]string) Snapshot {
	t.Helper()
	base := t.TempDir()
	for side, files := range map[string]map[string]string{RemoteDir: remote, LocalDir: local} {
		require.NoError(t, os.MkdirAll(filepath.Join(base, side), 0755))
		for name, content := range files {
			p := filepath.Join(base, side, filepath.FromSlash(name))
			if strings.HasSuffix(name, "/") {
				require.NoError(t, os.MkdirAll(p, 0755))
				continue
			}
			require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
			require.NoError(t, os.WriteFile(p, []byte(content), 0644))
		}
	}
	return Snapshot{Base: base, FilterPath: filterPath}
}

func TestSnapshotPaths(t *testing.T) {
	snap := Snapshot{Base: "/tmp/ws/snapshots", FilterPath: "/apps/site"}
	assert.Equal(t, "REMOTE/apps/site", snap.Remote())
	assert.Equal(t, "LOCAL/apps/site", snap.Local())
	assert.Equal(t, filepath.Join("/tmp/ws/snapshots", "REMOTE"), snap.RemoteRoot())
	assert.Equal(t, filepath.Join("/tmp/ws/snapshots", "LOCAL"), snap.LocalRoot())
}

func TestClassify(t *testing.T) {
	lines := []string{
		"Files REMOTE/a/x.txt and LOCAL/a/x.txt differ",
		"Only in REMOTE/a: y.txt",
		"Only in LOCAL/a: z.txt",
		"File REMOTE/b is a regular file while file LOCAL/b is a directory",
		"File REMOTE/c is a directory while file LOCAL/c is a regular file",
		"Only in LOCAL: a",
		"diff: something odd",
		"",
	}

	want := []models.DiffEntry{
		{Path: "/a/x.txt", Status: models.StatusModified},
		{Path: "/a/y.txt", Status: models.StatusDeletedLocally},
		{Path: "/a/z.txt", Status: models.StatusAddedLocally},
		{Path: "/b", Status: models.StatusConflictFileVsDir},
		{Path: "/c", Status: models.StatusConflictDirVsFile},
		{Path: "/a", Status: models.StatusAddedLocally},
	}
	assert.Equal(t, want, Classify(lines))
	assert.Nil(t, Classify(nil))
}

func TestBuiltinStatus(t *testing.T) {
	engine := NewEngine(NewBuiltinComparer(nil), nil)
	ctx := context.Background()

	t.Run("ModifiedDeletedAdded", func(t *testing.T) {
		snap := newSnapshot(t, "/a",
			map[string]string{"a/x.txt": "1", "a/y.txt": "1"},
			map[string]string{"a/x.txt": "2", "a/z.txt": "1"},
		)

		entries, err := engine.Status(ctx, snap)
		require.NoError(t, err)
		assert.ElementsMatch(t, []models.DiffEntry{
			{Path: "/a/x.txt", Status: models.StatusModified},
			{Path: "/a/y.txt", Status: models.StatusDeletedLocally},
			{Path: "/a/z.txt", Status: models.StatusAddedLocally},
		}, entries)
	})

	t.Run("FileVsDirectory", func(t *testing.T) {
		snap := newSnapshot(t, "/content",
			map[string]string{"content/b": "file"},
			map[string]string{"content/b/inner.txt": "x"},
		)

		entries, err := engine.Status(ctx, snap)
		require.NoError(t, err)
		assert.Equal(t, []models.DiffEntry{{Path: "/content/b", Status: models.StatusConflictFileVsDir}}, entries)
	})

	t.Run("DirectoryVsFile", func(t *testing.T) {
		snap := newSnapshot(t, "/content",
			map[string]string{"content/b/inner.txt": "x"},
			map[string]string{"content/b": "file"},
		)

		entries, err := engine.Status(ctx, snap)
		require.NoError(t, err)
		assert.Equal(t, []models.DiffEntry{{Path: "/content/b", Status: models.StatusConflictDirVsFile}}, entries)
	})

	t.Run("FileOperand", func(t *testing.T) {
		snap := newSnapshot(t, "/a/x.txt",
			map[string]string{"a/x.txt": "1"},
			map[string]string{"a/x.txt": "2"},
		)

		entries, err := engine.Status(ctx, snap)
		require.NoError(t, err)
		assert.Equal(t, []models.DiffEntry{{Path: "/a/x.txt", Status: models.StatusModified}}, entries)
	})

	t.Run("IdenticalFileOperand", func(t *testing.T) {
		snap := newSnapshot(t, "/a/x.txt",
			map[string]string{"a/x.txt": "same"},
			map[string]string{"a/x.txt": "same"},
		)

		entries, err := engine.Status(ctx, snap)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("FileVsDirectoryAtFilterRoot", func(t *testing.T) {
		snap := newSnapshot(t, "/b",
			map[string]string{"b": "file"},
			map[string]string{"b/inner.txt": "x"},
		)

		entries, err := engine.Status(ctx, snap)
		require.NoError(t, err)
		assert.Equal(t, []models.DiffEntry{{Path: "/b", Status: models.StatusConflictFileVsDir}}, entries)
	})

	t.Run("DirectoryVsFileAtFilterRoot", func(t *testing.T) {
		snap := newSnapshot(t, "/b",
			map[string]string{"b/inner.txt": "x"},
			map[string]string{"b": "file"},
		)

		entries, err := engine.Status(ctx, snap)
		require.NoError(t, err)
		assert.Equal(t, []models.DiffEntry{{Path: "/b", Status: models.StatusConflictDirVsFile}}, entries)
	})

	t.Run("NestedOnlyInReportsDirectory", func(t *testing.T) {
		snap := newSnapshot(t, "/content",
			map[string]string{"content/keep.txt": "k"},
			map[string]string{"content/keep.txt": "k", "content/new/deep/file.txt": "n"},
		)

		entries, err := engine.Status(ctx, snap)
		require.NoError(t, err)
		assert.Equal(t, []models.DiffEntry{{Path: "/content/new", Status: models.StatusAddedLocally}}, entries)
	})

	t.Run("Identical", func(t *testing.T) {
		snap := newSnapshot(t, "/content",
			map[string]string{"content/a.txt": "same", "content/empty/": ""},
			map[string]string{"content/a.txt": "same", "content/empty/": ""},
		)

		entries, err := engine.Status(ctx, snap)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("RemoteSubtreeMissing", func(t *testing.T) {
		snap := newSnapshot(t, "/content/site",
			map[string]string{"content/other.txt": "o"},
			map[string]string{"content/site/page.txt": "p"},
		)

		entries, err := engine.Status(ctx, snap)
		require.NoError(t, err)
		assert.Equal(t, []models.DiffEntry{{Path: "/content/site", Status: models.StatusAddedLocally}}, entries)
	})
}

func TestBuiltinUnifiedDiff(t *testing.T) {
	engine := NewEngine(NewBuiltinComparer(nil), nil)
	ctx := context.Background()

	snap := newSnapshot(t, "/a",
		map[string]string{"a/x.txt": "one\ntwo\n", "a/y.txt": "gone\n", "a/ws.txt": "a b\n"},
		map[string]string{"a/x.txt": "one\n2\n", "a/z.txt": "new\n", "a/ws.txt": "a  b \n"},
	)

	t.Run("LocalDirection", func(t *testing.T) {
		lines, err := engine.Diff(ctx, snap, models.DirectionLocal)
		require.NoError(t, err)

		text := strings.Join(lines, "\n")
		assert.Contains(t, text, "diff -rduNw REMOTE/a/x.txt LOCAL/a/x.txt")
		assert.Contains(t, text, "--- REMOTE/a/x.txt\t")
		assert.Contains(t, text, "+++ LOCAL/a/x.txt\t")
		assert.Contains(t, lines, "-two")
		assert.Contains(t, lines, "+2")
		assert.Contains(t, lines, "-gone")
		assert.Contains(t, lines, "+new")
		assert.NotContains(t, text, "ws.txt", "whitespace-only changes are ignored")
	})

	t.Run("FileOperand", func(t *testing.T) {
		snap := newSnapshot(t, "/a/x.txt",
			map[string]string{"a/x.txt": "one\ntwo\n"},
			map[string]string{"a/x.txt": "one\n2\n"},
		)

		lines, err := engine.Diff(ctx, snap, models.DirectionLocal)
		require.NoError(t, err)
		require.NotEmpty(t, lines)
		assert.Equal(t, "diff -rduNw REMOTE/a/x.txt LOCAL/a/x.txt", lines[0])
		assert.Contains(t, lines, "-two")
		assert.Contains(t, lines, "+2")
	})

	t.Run("FileOperandMissingRemotely", func(t *testing.T) {
		snap := newSnapshot(t, "/a/new.txt",
			map[string]string{"a/other.txt": "o"},
			map[string]string{"a/new.txt": "fresh\n"},
		)

		lines, err := engine.Diff(ctx, snap, models.DirectionLocal)
		require.NoError(t, err)
		assert.Contains(t, lines, "+fresh")
	})

	t.Run("FileVsDirectoryAtFilterRoot", func(t *testing.T) {
		snap := newSnapshot(t, "/b",
			map[string]string{"b": "file"},
			map[string]string{"b/inner.txt": "x"},
		)

		lines, err := engine.Diff(ctx, snap, models.DirectionLocal)
		require.NoError(t, err)
		assert.Equal(t, []string{"File REMOTE/b is a regular file while file LOCAL/b is a directory"}, lines)
	})

	t.Run("ServerDirection", func(t *testing.T) {
		lines, err := engine.Diff(ctx, snap, models.DirectionServer)
		require.NoError(t, err)

		text := strings.Join(lines, "\n")
		assert.Contains(t, text, "--- LOCAL/a/x.txt\t")
		assert.Contains(t, lines, "-2")
		assert.Contains(t, lines, "+two")
	})
}

func TestExecComparer(t *testing.T) {
	ctx := context.Background()

	t.Run("ToolUnavailable", func(t *testing.T) {
		comparer := NewExecComparer(nil).WithProgram("jcrsync-no-such-diff-tool")
		_, err := comparer.CompareTrees(ctx, t.TempDir(), "REMOTE", "LOCAL")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrToolUnavailable))
		assert.True(t, IsDegraded(err))
	})

	if _, err := exec.LookPath("diff"); err != nil {
		t.Skip("diff not installed")
	}

	t.Run("MatchesBuiltin", func(t *testing.T) {
		snap := newSnapshot(t, "/a",
			map[string]string{"a/x.txt": "1", "a/y.txt": "1"},
			map[string]string{"a/x.txt": "2", "a/z.txt": "1"},
		)

		entries, err := NewEngine(NewExecComparer(nil), nil).Status(ctx, snap)
		require.NoError(t, err)
		assert.ElementsMatch(t, []models.DiffEntry{
			{Path: "/a/x.txt", Status: models.StatusModified},
			{Path: "/a/y.txt", Status: models.StatusDeletedLocally},
			{Path: "/a/z.txt", Status: models.StatusAddedLocally},
		}, entries)
	})

	t.Run("NoDifferences", func(t *testing.T) {
		snap := newSnapshot(t, "/a",
			map[string]string{"a/x.txt": "1"},
			map[string]string{"a/x.txt": "1"},
		)

		lines, err := NewExecComparer(nil).CompareTrees(ctx, snap.Base, snap.Remote(), snap.Local())
		require.NoError(t, err)
		assert.Empty(t, lines)
	})
}

type failingComparer struct{ err error }

func (f failingComparer) CompareTrees(ctx context.Context, dir, a, b string) ([]string, error) {
	return nil, f.err
}

func (f failingComparer) UnifiedDiff(ctx context.Context, dir, a, b string) ([]string, error) {
	return nil, f.err
}

func TestEngineDegradedErrors(t *testing.T) {
	engine := NewEngine(failingComparer{err: ErrTimeout}, nil)

	_, err := engine.Status(context.Background(), Snapshot{Base: t.TempDir(), FilterPath: "/a"})
	require.Error(t, err)
	assert.True(t, IsDegraded(err))

	_, err = engine.Diff(context.Background(), Snapshot{Base: t.TempDir(), FilterPath: "/a"}, models.DirectionLocal)
	assert.True(t, errors.Is(err, ErrTimeout))

	engine = NewEngine(failingComparer{err: errors.New("disk on fire")}, nil)
	_, err = engine.Status(context.Background(), Snapshot{Base: t.TempDir(), FilterPath: "/a"})
	require.Error(t, err)
	assert.False(t, IsDegraded(err))
}

func TestExecComparerTimeout(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not installed")
	}
	comparer := NewExecComparer(nil).WithProgram("sleep").WithTimeout(50 * time.Millisecond)

	_, err := comparer.run(context.Background(), t.TempDir(), "5")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
}

func TestRender(t *testing.T) {
	lines := []string{
		"diff -rduNw REMOTE/a/x.txt LOCAL/a/x.txt",
		"--- REMOTE/a/x.txt",
		"+++ LOCAL/a/x.txt",
		"@@ -1,2 +1,2 @@",
		" one",
		"-two",
		"+2",
	}

	t.Run("Plain", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, lines, false))
		assert.Equal(t, strings.Join(lines, "\n")+"\n", buf.String())
	})

	t.Run("Colorized", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, lines, true))
		out := buf.String()
		assert.Contains(t, out, "\x1b[31m-two")
		assert.Contains(t, out, "\x1b[32m+2")
		assert.Contains(t, out, "\x1b[36m@@ -1,2 +1,2 @@")
		assert.Contains(t, out, "\n one\n")
		assert.Contains(t, out, "diff -rduNw REMOTE/a/x.txt LOCAL/a/x.txt\n")
		assert.NotContains(t, out, "\x1b[31m---")
	})
}
