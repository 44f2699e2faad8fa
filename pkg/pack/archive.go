package pack

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ArchiveName is the file name SerializeToArchive writes inside the staging tree
const ArchiveName = "pkg.zip"

// SerializeToArchive zips stagingDir into stagingDir/pkg.zip and returns its
// path. Every directory gets an explicit entry so empty ones survive.
func SerializeToArchive(stagingDir string) (archivePath string, err error) {
	archivePath = filepath.Join(stagingDir, ArchiveName)

	zipFile, err := os.Create(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", archivePath, err)
	}
	defer func() {
		if closeErr := zipFile.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(archivePath)
			archivePath = ""
		}
	}()

	zipWriter := zip.NewWriter(zipFile)
	defer func() {
		if closeErr := zipWriter.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	walkErr := filepath.WalkDir(stagingDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == archivePath {
			return nil
		}

		relPath, relErr := filepath.Rel(stagingDir, path)
		if relErr != nil {
			return fmt.Errorf("failed to get relative path: %w", relErr)
		}
		if relPath == "." {
			return nil
		}
		zipPath := filepath.ToSlash(relPath)

		if d.IsDir() {
			if _, createErr := zipWriter.Create(zipPath + "/"); createErr != nil {
				return fmt.Errorf("failed to create directory entry %s: %w", zipPath, createErr)
			}
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return fmt.Errorf("failed to get file info for %s: %w", path, infoErr)
		}
		return addFile(zipWriter, path, zipPath, info)
	})
	if walkErr != nil {
		return "", fmt.Errorf("failed to archive %s: %w", stagingDir, walkErr)
	}

	return archivePath, nil
}

func addFile(zw *zip.Writer, path, zipPath string, info fs.FileInfo) error {
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("failed to create file header for %s: %w", path, err)
	}
	header.Name = zipPath
	header.Method = zip.Deflate

	writer, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create zip entry %s: %w", zipPath, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(writer, f); err != nil {
		return fmt.Errorf("failed to write %s: %w", zipPath, err)
	}
	return nil
}

// Extract unpacks every entry of archivePath below dest, rejecting entries
// that would land outside dest.
func Extract(archivePath, dest string) (err error) {
	absDest, err := filepath.Abs(dest)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", dest, err)
	}
	if err := os.MkdirAll(absDest, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", absDest, err)
	}

	zipReader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", archivePath, err)
	}
	defer func() {
		if closeErr := zipReader.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for _, file := range zipReader.File {
		destPath := filepath.Join(absDest, filepath.FromSlash(file.Name))

		relPath, relErr := filepath.Rel(absDest, destPath)
		if relErr != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
			return fmt.Errorf("invalid path in archive: %s", file.Name)
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(destPath, 0755); err != nil {
				return fmt.Errorf("failed to create %s: %w", destPath, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(destPath), err)
		}
		if err := extractFile(file, destPath); err != nil {
			return fmt.Errorf("failed to extract %s: %w", file.Name, err)
		}
	}

	return nil
}

func extractFile(file *zip.File, destPath string) (err error) {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	mode := file.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	destFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := destFile.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	_, err = io.Copy(destFile, rc)
	return err
}

// ListContentEntries returns the names of the archive entries under
// jcr_root{filterPath}, in archive order.
func ListContentEntries(archivePath, filterPath string) ([]string, error) {
	zipReader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", archivePath, err)
	}
	defer zipReader.Close()

	prefix := ContentDir + filterPath
	var entries []string
	for _, file := range zipReader.File {
		if strings.HasPrefix(file.Name, prefix) {
			entries = append(entries, file.Name)
		}
	}
	return entries, nil
}
