package transfer

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/jcrsync/pkg/config"
)

const endpoint = "/crx/packmgr/service/.json"

func newTestClient(t *testing.T, handler http.HandlerFunc, progress ProgressReporter) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Server = server.URL + "/"
	cfg.Credentials = "editor:pa:ss"
	cfg.Transfer.Timeout = 10 * time.Second
	return NewClient(*cfg, nil, progress)
}

func checkAuth(t *testing.T, r *http.Request) {
	user, password, ok := r.BasicAuth()
	assert.True(t, ok)
	assert.Equal(t, "editor", user)
	assert.Equal(t, "pa:ss", password)
}

func TestUpload(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "pkg.zip")
	require.NoError(t, os.WriteFile(archive, []byte("zip-bytes"), 0644))

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		checkAuth(t, r)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, endpoint, r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "upload", r.FormValue("cmd"))
		assert.Equal(t, "true", r.FormValue("force"))

		file, header, err := r.FormFile("package")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "package.zip", header.Filename)
		assert.Equal(t, "application/zip", header.Header.Get("Content-Type"))
		data, _ := io.ReadAll(file)
		assert.Equal(t, "zip-bytes", string(data))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"success":true,"msg":"Package uploaded","path":"/etc/packages/tmp/repo/x-1.zip"}`)
	}, nil)

	resp, err := client.Upload(context.Background(), archive)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "/etc/packages/tmp/repo/x-1.zip", resp.Path)
}

func TestCommands(t *testing.T) {
	for _, op := range []string{OpBuild, OpInstall, OpDelete} {
		t.Run(op, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				checkAuth(t, r)
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, endpoint+"/etc/packages/tmp/repo/repoapps-site-1.zip", r.URL.Path)
				assert.Equal(t, op, r.URL.Query().Get("cmd"))
				io.WriteString(w, `{"success":true,"msg":"done"}`)
			}, nil)

			var (
				resp *Response
				err  error
			)
			switch op {
			case OpBuild:
				resp, err = client.Build(context.Background(), "tmp/repo/repoapps-site-1.zip")
			case OpInstall:
				resp, err = client.Install(context.Background(), "tmp/repo/repoapps-site-1.zip")
			case OpDelete:
				resp, err = client.Delete(context.Background(), "tmp/repo/repoapps-site-1.zip")
			}
			require.NoError(t, err)
			assert.Equal(t, "done", resp.Msg)
		})
	}
}

func TestCommandFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   int
	}{
		{"SuccessFalse", http.StatusOK, `{"success":false,"msg":"no such package"}`, http.StatusOK},
		{"ServerError", http.StatusInternalServerError, "boom", http.StatusInternalServerError},
		{"Unauthorized", http.StatusUnauthorized, "denied", http.StatusUnauthorized},
		{"NotJSON", http.StatusOK, "<html>login</html>", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}, nil)

			_, err := client.Install(context.Background(), "tmp/repo/x-1.zip")
			require.Error(t, err)

			var transferErr *Error
			require.True(t, errors.As(err, &transferErr))
			assert.Equal(t, OpInstall, transferErr.Op)
			assert.Equal(t, tt.code, transferErr.StatusCode)
			assert.Equal(t, tt.body, transferErr.Body)
			assert.True(t, errors.Is(err, ErrPackageManager))
			assert.Equal(t, 1, calls, "requests must not be retried")
		})
	}
}

type recordingProgress struct {
	total int64
	done  bool
}

func (p *recordingProgress) Track(r io.Reader, total int64) io.Reader {
	p.total = total
	return r
}

func (p *recordingProgress) Done() { p.done = true }

func TestDownload(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		progress := &recordingProgress{}
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			checkAuth(t, r)
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/etc/packages/tmp/repo/x-1.zip", r.URL.Path)
			w.Header().Set("Content-Length", "7")
			io.WriteString(w, "PK-data")
		}, progress)

		dest := filepath.Join(t.TempDir(), "sub", "download.zip")
		n, err := client.Download(context.Background(), "tmp/repo/x-1.zip", dest)
		require.NoError(t, err)
		assert.Equal(t, int64(7), n)

		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, "PK-data", string(data))
		assert.Equal(t, int64(7), progress.total)
		assert.True(t, progress.done)
	})

	t.Run("NotFound", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "not found", http.StatusNotFound)
		}, nil)

		dest := filepath.Join(t.TempDir(), "download.zip")
		_, err := client.Download(context.Background(), "tmp/repo/x-1.zip", dest)

		var transferErr *Error
		require.True(t, errors.As(err, &transferErr))
		assert.Equal(t, OpDownload, transferErr.Op)
		assert.Equal(t, http.StatusNotFound, transferErr.StatusCode)
		assert.Contains(t, transferErr.Body, "not found")
		assert.NoFileExists(t, dest)
	})
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Op: OpBuild, StatusCode: 500, Body: "oops"}
	assert.Equal(t, "build failed (HTTP 500): oops", err.Error())

	wrapped := &Error{Op: OpUpload, Err: os.ErrNotExist}
	assert.True(t, errors.Is(wrapped, os.ErrNotExist))
}
