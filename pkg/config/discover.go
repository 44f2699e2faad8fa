package config

import (
	"archive/zip"
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	// RepoFileName is the per-project key=value settings file
	RepoFileName = ".repo"
	// VaultFileName is the vault metadata archive kept inside jcr_root
	VaultFileName = ".vlt"

	vaultURLEntry   = "repository.url"
	vaultServerMark = "/crx/server"
)

// FindRepoFile searches start and its ancestors for a .repo file.
// The filesystem root itself is not searched.
func FindRepoFile(start string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}

	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		candidate := filepath.Join(dir, RepoFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		dir = parent
	}
}

// RepoSettings holds the keys recognized in a .repo file
type RepoSettings struct {
	Server      string
	Credentials string
}

// ParseRepoFile reads a .repo file. Lines are key=value pairs and lines
// starting with # are comments. Values are taken verbatim after the first =
// apart from surrounding whitespace. Unknown keys are ignored.
func ParseRepoFile(path string) (RepoSettings, error) {
	f, err := os.Open(path)
	if err != nil {
		return RepoSettings{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return parseRepoSettings(f, path)
}

func parseRepoSettings(r io.Reader, path string) (RepoSettings, error) {
	var settings RepoSettings
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		switch strings.TrimSpace(key) {
		case "server":
			settings.Server = strings.TrimSpace(value)
		case "credentials":
			settings.Credentials = strings.TrimSpace(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return RepoSettings{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return settings, nil
}

// VaultServer reads the server base URL from the .vlt archive in jcrRoot.
// The stored repository URL is truncated at /crx/server. It returns false
// when there is no .vlt file or it carries no usable URL.
func VaultServer(jcrRoot string) (string, bool, error) {
	path := filepath.Join(jcrRoot, VaultFileName)
	zr, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != vaultURLEntry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", false, fmt.Errorf("failed to read %s from %s: %w", vaultURLEntry, path, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", false, fmt.Errorf("failed to read %s from %s: %w", vaultURLEntry, path, err)
		}

		url := strings.TrimSpace(string(data))
		idx := strings.Index(url, vaultServerMark)
		if idx < 0 {
			return "", false, nil
		}
		return url[:idx], true, nil
	}

	return "", false, nil
}
