// Package vaultpath maps between repository node paths and the file names
// used in a vault checkout.
package vaultpath

import (
	"net/url"
	"path"
	"strings"

	"github.com/sdejongh/jcrsync/pkg/models"
)

// namespaces lists the filesystem tokens rewritten by DecodePath, in order
var namespaces = []struct {
	fs, repo string
}{
	{"_jcr_", "jcr:"},
	{"_rep_", "rep:"},
	{"_oak_", "oak:"},
	{"_sling_", "sling:"},
	{"_granite_", "granite:"},
	{"_cq_", "cq:"},
	{"_dam_", "dam:"},
	{"_exif_", "exif:"},
	{"_social_", "social:"},
}

// Mangle converts a node name to its filesystem form: the first colon
// becomes an underscore and the name gets an underscore prefix
// (jcr:content -> _jcr_content). Names without a colon are unchanged.
func Mangle(name string) string {
	prefix, rest, found := strings.Cut(name, ":")
	if !found {
		return name
	}
	return "_" + prefix + "_" + rest
}

// Unmangle is the heuristic inverse of Mangle. A name starting with an
// underscore and holding another underscore after it is split at that
// second underscore and rejoined with a colon. It round-trips names with
// exactly one colon; names that already contained underscores may be
// decoded into a namespace they never had.
func Unmangle(name string) string {
	if !strings.HasPrefix(name, "_") {
		return name
	}
	idx := strings.Index(name[1:], "_")
	if idx <= 0 {
		return name
	}
	return name[1:idx+1] + ":" + name[idx+2:]
}

// ToRepositoryPath converts a checkout-relative file path to the node path
// it describes. A trailing .content.xml or .xml is stripped, then the path
// is passed through DecodePath.
func ToRepositoryPath(p string) string {
	switch {
	case strings.HasSuffix(p, "/.content.xml"):
		p = strings.TrimSuffix(p, "/.content.xml")
	case strings.HasSuffix(p, ".content.xml"):
		p = strings.TrimSuffix(p, ".content.xml")
	case strings.HasSuffix(p, ".xml"):
		p = strings.TrimSuffix(p, ".xml")
	}
	return DecodePath(p)
}

// DecodePath rewrites the known namespace tokens anywhere in p to their
// colon form and percent-decodes the result. Input that does not decode
// is returned with only the namespace rewrite applied.
func DecodePath(p string) string {
	for _, ns := range namespaces {
		p = strings.ReplaceAll(p, ns.fs, ns.repo)
	}
	if decoded, err := url.PathUnescape(p); err == nil {
		return decoded
	}
	return p
}

// ToFilesystemPath converts a repository path to the relative path of its
// directory inside jcr_root, mangling every segment.
func ToFilesystemPath(repoPath string) string {
	segments := strings.Split(strings.Trim(repoPath, "/"), "/")
	for i, seg := range segments {
		segments[i] = Mangle(seg)
	}
	return strings.Join(segments, "/")
}

// ValidateRepositoryPath checks that p is an absolute repository path other
// than the root.
func ValidateRepositoryPath(p string) error {
	if !strings.HasPrefix(p, "/") {
		return &models.UsageError{
			Reason:  models.ReasonInvalidPath,
			Path:    p,
			Message: "repository path must start with /",
		}
	}
	if path.Clean(p) == "/" {
		return models.NewRootPathError()
	}
	return nil
}
