package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/jcrsync/pkg/models"
)

func statusReport() *models.Report {
	op := models.NewOperation(models.OpStatus, ".")
	op.FilterPath = "/apps/site"
	report := models.NewReport(op, "http://localhost:4502")
	report.Entries = []models.DiffEntry{
		{Path: "/apps/site/a.txt", Status: models.StatusModified},
		{Path: "/apps/site/b.txt", Status: models.StatusAddedLocally},
		{Path: "/apps/site/c", Status: models.StatusConflictFileVsDir},
	}
	return report.Finish(models.StatusCompleted)
}

func TestNew(t *testing.T) {
	f, err := New("human", Options{})
	require.NoError(t, err)
	assert.Equal(t, "human", f.Name())

	f, err = New("", Options{})
	require.NoError(t, err)
	assert.Equal(t, "human", f.Name())

	f, err = New("json", Options{})
	require.NoError(t, err)
	assert.Equal(t, "json", f.Name())

	_, err = New("xml", Options{})
	assert.Error(t, err)
}

func TestHumanFormatterHeaders(t *testing.T) {
	tests := []struct {
		kind      models.OperationKind
		direction models.Direction
		want      string
	}{
		{models.OpCheckout, "", "Checking out /apps/site from http://srv"},
		{models.OpPut, "", "Uploading /apps/site to http://srv"},
		{models.OpGet, "", "Downloading /apps/site from http://srv"},
		{models.OpStatus, "", "Checking status for /apps/site against http://srv"},
		{models.OpDiff, models.DirectionLocal, "Showing differences (local -> server) for /apps/site against http://srv"},
		{models.OpDiff, models.DirectionServer, "Showing differences (server -> local) for /apps/site against http://srv"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%s", tt.kind, tt.direction), func(t *testing.T) {
			var buf bytes.Buffer
			op := models.NewOperation(tt.kind, ".")
			op.FilterPath = "/apps/site"
			op.Direction = tt.direction

			require.NoError(t, NewHumanFormatter(Options{}).Start(&buf, op, "http://srv"))
			assert.Equal(t, tt.want+"\n", buf.String())
		})
	}
}

func TestHumanFormatterProgress(t *testing.T) {
	var buf bytes.Buffer
	f := NewHumanFormatter(Options{})
	op := models.NewOperation(models.OpGet, ".")
	require.NoError(t, f.Start(&buf, op, "http://srv"))
	buf.Reset()

	var entries []string
	for i := 0; i < 12; i++ {
		entries = append(entries, fmt.Sprintf("jcr_root/apps/site/f%02d.txt", i))
	}

	require.NoError(t, f.Progress(ProgressUpdate{Type: UpdateStep, Message: "Uploading empty package..."}))
	require.NoError(t, f.Progress(ProgressUpdate{Type: UpdatePreview, Lines: entries}))
	require.NoError(t, f.Progress(ProgressUpdate{Type: UpdateSuccess, Message: "Download completed successfully"}))
	require.NoError(t, f.Progress(ProgressUpdate{Type: UpdateWarning, Message: "No content found for /apps/site"}))
	require.NoError(t, f.Progress(ProgressUpdate{Type: UpdateVCSStatus, Lines: []string{" M jcr_root/apps/site/f00.txt"}}))
	require.NoError(t, f.Progress(ProgressUpdate{Type: UpdateVCSStatus}))

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, "Uploading empty package...", lines[0])
	assert.Equal(t, "  jcr_root/apps/site/f00.txt", lines[1])
	assert.Equal(t, "  jcr_root/apps/site/f09.txt", lines[10])
	assert.Equal(t, "  ... and 2 more files", lines[11])
	assert.Equal(t, "✓ Download completed successfully", lines[12])
	assert.Equal(t, "Warning: No content found for /apps/site", lines[13])
	assert.Contains(t, out, "\nGit status:\n M jcr_root/apps/site/f00.txt\n")
	assert.Equal(t, 1, strings.Count(out, "Git status:"))
}

func TestHumanFormatterQuiet(t *testing.T) {
	var buf bytes.Buffer
	f := NewHumanFormatter(Options{Quiet: true})
	op := models.NewOperation(models.OpStatus, ".")
	op.FilterPath = "/apps/site"

	require.NoError(t, f.Start(&buf, op, "http://srv"))
	require.NoError(t, f.Progress(ProgressUpdate{Type: UpdateStep, Message: "Uploading empty package..."}))
	require.NoError(t, f.Progress(ProgressUpdate{Type: UpdateWarning, Message: "diff tool not available"}))
	require.NoError(t, f.Complete(statusReport()))

	assert.Equal(t, "Warning: diff tool not available\nM       /apps/site/a.txt\nA       /apps/site/b.txt\n~ df    /apps/site/c\n", buf.String())
}

func TestHumanFormatterComplete(t *testing.T) {
	t.Run("Status", func(t *testing.T) {
		var buf bytes.Buffer
		f := NewHumanFormatter(Options{})
		f.writer = &buf
		require.NoError(t, f.Complete(statusReport()))
		assert.Equal(t, "M       /apps/site/a.txt\nA       /apps/site/b.txt\n~ df    /apps/site/c\n", buf.String())
	})

	t.Run("Aborted", func(t *testing.T) {
		var buf bytes.Buffer
		f := NewHumanFormatter(Options{})
		f.writer = &buf
		report := models.NewReport(models.NewOperation(models.OpPut, "."), "http://srv")
		require.NoError(t, f.Complete(report.Finish(models.StatusAborted)))
		assert.Equal(t, "Aborted.\n", buf.String())
	})

	t.Run("Diff", func(t *testing.T) {
		var buf bytes.Buffer
		f := NewHumanFormatter(Options{})
		f.writer = &buf
		report := models.NewReport(models.NewOperation(models.OpDiff, "."), "http://srv")
		report.DiffLines = []string{"--- REMOTE/a", "+++ LOCAL/a", "-x", "+y"}
		require.NoError(t, f.Complete(report.Finish(models.StatusCompleted)))
		assert.Equal(t, "--- REMOTE/a\n+++ LOCAL/a\n-x\n+y\n", buf.String())
	})

	t.Run("ColorizedStatus", func(t *testing.T) {
		var buf bytes.Buffer
		f := NewHumanFormatter(Options{Color: true})
		f.writer = &buf
		require.NoError(t, f.Complete(statusReport()))
		assert.Contains(t, buf.String(), "\x1b[")
	})
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter()
	report := statusReport()
	report.Bytes = 2048

	require.NoError(t, f.Start(&buf, models.NewOperation(models.OpStatus, "."), "http://srv"))
	require.NoError(t, f.Progress(ProgressUpdate{Type: UpdateStep, Message: "ignored"}))
	require.NoError(t, f.Progress(ProgressUpdate{Type: UpdateVCSStatus, Lines: []string{"?? x"}}))
	assert.Empty(t, buf.String(), "nothing is written before Complete")

	require.NoError(t, f.Complete(report))

	var data JSONReportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, "status", data.Operation)
	assert.Equal(t, "/apps/site", data.FilterPath)
	assert.Equal(t, "completed", data.Status)
	assert.Equal(t, "2.0 KiB", data.Size)
	assert.Len(t, data.Entries, 3)
	assert.Equal(t, 1, data.Counts["M"])
	assert.Equal(t, 1, data.Counts["~ df"])
	assert.Equal(t, []string{"?? x"}, data.VCSStatus)
}

func TestWriteDifferencesReport(t *testing.T) {
	dir := t.TempDir()

	t.Run("Human", func(t *testing.T) {
		path := filepath.Join(dir, "diff.txt")
		require.NoError(t, WriteDifferencesReport(statusReport(), path, "human"))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		text := string(data)
		assert.Contains(t, text, "Total Differences: 3")
		assert.Contains(t, text, "M  modified (1 files)")
		assert.Contains(t, text, "~ df  conflict: local directory vs. remote file (1 files)")
		assert.Contains(t, text, "  /apps/site/b.txt")
	})

	t.Run("JSON", func(t *testing.T) {
		path := filepath.Join(dir, "diff.json")
		require.NoError(t, WriteDifferencesReport(statusReport(), path, "json"))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var decoded struct {
			TotalCount int                `json:"total_count"`
			Entries    []models.DiffEntry `json:"entries"`
		}
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, 3, decoded.TotalCount)
		assert.Equal(t, models.StatusModified, decoded.Entries[0].Status)
	})

	t.Run("NoEntriesNoFile", func(t *testing.T) {
		path := filepath.Join(dir, "empty.txt")
		report := models.NewReport(models.NewOperation(models.OpStatus, "."), "http://srv")
		require.NoError(t, WriteDifferencesReport(report, path, "human"))
		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})
}

func TestDownloadProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewDownloadProgress(&buf)

	var sink bytes.Buffer
	payload := strings.Repeat("x", 4096)
	r := p.Track(strings.NewReader(payload), int64(len(payload)))
	_, err := sink.ReadFrom(r)
	require.NoError(t, err)
	p.Done()
	p.Done()

	assert.Equal(t, payload, sink.String())
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.0 KiB", FormatBytes(1024))
	assert.Equal(t, "1.5 MiB", FormatBytes(1536*1024))
}
