package pack

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sdejongh/jcrsync/pkg/logging"
)

const (
	// ContentDir is the content root inside a package
	ContentDir = "jcr_root"
	// MetaDir holds the vault descriptors inside a package
	MetaDir = "META-INF/vault"

	placeholderName    = ".placeholder"
	placeholderContent = "# Placeholder file to ensure jcr_root directory is included in package\n"
)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// Builder creates package staging trees
type Builder struct {
	logger logging.Logger
}

// NewBuilder creates a package builder
func NewBuilder(logger logging.Logger) *Builder {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Builder{logger: logger}
}

// CreatePackage writes the vault descriptors and an empty content root
// into stagingDir.
func (b *Builder) CreatePackage(stagingDir string, d Descriptor) error {
	metaDir := filepath.Join(stagingDir, filepath.FromSlash(MetaDir))
	if err := os.MkdirAll(metaDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", metaDir, err)
	}

	contentDir := filepath.Join(stagingDir, ContentDir)
	if err := os.MkdirAll(contentDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", contentDir, err)
	}

	files := map[string]string{
		filepath.Join(contentDir, placeholderName): placeholderContent,
		filepath.Join(metaDir, "filter.xml"):       filterXML(d),
		filepath.Join(metaDir, "properties.xml"):   propertiesXML(d),
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	return nil
}

// StageContent copies localPath, a file or a directory, into the staging
// content root at filterPath. filterPath keeps checkout file names.
func (b *Builder) StageContent(stagingDir, localPath, filterPath string, excludes Excludes) error {
	dest := filepath.Join(stagingDir, ContentDir, filepath.FromSlash(strings.TrimPrefix(filterPath, "/")))
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(dest), err)
	}
	return CopyContentTree(localPath, dest, excludes)
}

func filterXML(d Descriptor) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<workspaceFilter version="1.0">
    <filter root="` + xmlEscaper.Replace(d.FilterPath) + `"/>
</workspaceFilter>`
}

func propertiesXML(d Descriptor) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<!DOCTYPE properties SYSTEM "http://java.sun.com/dtd/properties.dtd">
<properties>
<entry key="name">` + xmlEscaper.Replace(d.Name) + `</entry>
<entry key="version">` + xmlEscaper.Replace(d.Version) + `</entry>
<entry key="group">` + xmlEscaper.Replace(d.Group) + `</entry>
</properties>`
}
