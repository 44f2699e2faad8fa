package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func createTree(t *testing.T) string {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "jcrsync-storage-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	files := map[string]string{
		"b.txt":          "bravo",
		"a/x.txt":        "x",
		"a/_jcr_content": "",
		"c/.content.xml": "<jcr:root/>",
	}
	for name, content := range files {
		p := filepath.Join(tempDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
	}
	return tempDir
}

func TestNewLocal(t *testing.T) {
	t.Run("ValidDirectory", func(t *testing.T) {
		local, err := NewLocal(createTree(t))
		if err != nil {
			t.Fatalf("NewLocal() error = %v", err)
		}
		if local == nil {
			t.Fatal("NewLocal() returned nil")
		}
	})

	t.Run("NonExistentPath", func(t *testing.T) {
		if _, err := NewLocal("/nonexistent/path/that/does/not/exist"); err == nil {
			t.Error("NewLocal() should fail for non-existent path")
		}
	})

	t.Run("FileNotDirectory", func(t *testing.T) {
		root := createTree(t)
		if _, err := NewLocal(filepath.Join(root, "b.txt")); err == nil {
			t.Error("NewLocal() should fail for file path (not directory)")
		}
	})

	t.Run("SymlinkedRoot", func(t *testing.T) {
		root := createTree(t)
		link := filepath.Join(t.TempDir(), "REMOTE")
		if err := os.Symlink(root, link); err != nil {
			t.Fatalf("failed to create symlink: %v", err)
		}

		local, err := NewLocal(link)
		if err != nil {
			t.Fatalf("NewLocal() error = %v", err)
		}
		want, _ := filepath.EvalSymlinks(root)
		if local.Root() != want {
			t.Errorf("Root() = %s, want %s", local.Root(), want)
		}
	})
}

func TestLocalReadDir(t *testing.T) {
	local, err := NewLocal(createTree(t))
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}
	ctx := context.Background()

	entries, err := local.ReadDir(ctx, "")
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	want := []string{"a", "b.txt", "c"}
	if len(names) != len(want) {
		t.Fatalf("ReadDir() names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("ReadDir()[%d] = %s, want %s", i, names[i], want[i])
		}
	}
	if !entries[0].IsDir || entries[1].IsDir {
		t.Error("directory flags are wrong")
	}

	sub, err := local.ReadDir(ctx, "a")
	if err != nil {
		t.Fatalf("ReadDir(a) error = %v", err)
	}
	if len(sub) != 2 || sub[0].RelativePath != "a/_jcr_content" {
		t.Errorf("ReadDir(a) = %+v", sub)
	}

	t.Run("Cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := local.ReadDir(cctx, ""); err == nil {
			t.Error("ReadDir() should fail on cancelled context")
		}
	})
}

func TestLocalRead(t *testing.T) {
	local, err := NewLocal(createTree(t))
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}

	rc, err := local.Read(context.Background(), "b.txt")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	defer rc.Close()

	data, _ := io.ReadAll(rc)
	if string(data) != "bravo" {
		t.Errorf("Read() = %q, want bravo", data)
	}

	if _, err := local.Read(context.Background(), "missing.txt"); err == nil {
		t.Error("Read() should fail for missing file")
	}
}

func TestLocalStat(t *testing.T) {
	local, err := NewLocal(createTree(t))
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}
	ctx := context.Background()

	tests := []struct {
		path  string
		isDir bool
	}{
		{"a", true},
		{"a/x.txt", false},
		{"c/.content.xml", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			info, err := local.Stat(ctx, tt.path)
			if err != nil {
				t.Fatalf("Stat() error = %v", err)
			}
			if info.IsDir != tt.isDir {
				t.Errorf("Stat().IsDir = %v, want %v", info.IsDir, tt.isDir)
			}
		})
	}

	if _, err := local.Stat(ctx, "nope"); err == nil {
		t.Error("Stat() should fail for missing path")
	}

	info, err := local.Stat(ctx, "b.txt")
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Size != 5 || info.IsDir || info.Name != "b.txt" {
		t.Errorf("Stat() = %+v", info)
	}
}

func TestTreeInterface(t *testing.T) {
	var _ Tree = (*Local)(nil)
}
