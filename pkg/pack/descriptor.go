// Package pack assembles, serializes and unpacks vault content packages.
package pack

import (
	"path"
	"strconv"
	"strings"
	"time"
)

// Descriptor identifies a package and the single subtree it covers
type Descriptor struct {
	// FilterPath is the repository path declared as the package filter root
	FilterPath string
	Group      string
	Name       string
	Version    string
}

// NewDescriptor derives the package name from the filter path and the
// version from now, in unix seconds.
func NewDescriptor(filterPath, group string, now time.Time) Descriptor {
	return Descriptor{
		FilterPath: filterPath,
		Group:      group,
		Name:       PackageName(filterPath),
		Version:    strconv.FormatInt(now.Unix(), 10),
	}
}

// PackageName returns "repo" followed by the filter path with slashes
// turned into dashes and colons dropped, or "repo-root" for an empty result.
func PackageName(filterPath string) string {
	name := strings.ReplaceAll(filterPath, "/", "-")
	name = strings.ReplaceAll(name, ":", "")
	name = strings.Trim(name, "-")
	if name == "" {
		return "repo-root"
	}
	return "repo" + name
}

// PackagePath returns the server-side location {group}/{name}-{version}.zip
func (d Descriptor) PackagePath() string {
	return path.Join(d.Group, d.Name+"-"+d.Version+".zip")
}
