package workspace

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrNotFileURI is returned for document URIs with a scheme other than file.
var ErrNotFileURI = errors.New("not a file URI")

// URIToPath converts a file:// URI into a clean local path.
func URIToPath(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", errors.Wrapf(err, "parse uri %q", uri)
	}
	if u.Scheme != "file" {
		return "", errors.Wrapf(ErrNotFileURI, "%q", uri)
	}
	p := u.Path
	// file:///C:/x on Windows.
	if len(p) > 2 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return filepath.Clean(filepath.FromSlash(p)), nil
}

// PathToURI converts a local path into a file:// URI.
func PathToURI(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	slashed := filepath.ToSlash(p)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	return (&url.URL{Scheme: "file", Path: slashed}).String()
}

// CanonicalURI rewrites uri into the form used for loaded files, so that
// clients encoding characters differently still find their documents.
func CanonicalURI(uri string) string {
	p, err := URIToPath(uri)
	if err != nil {
		return uri
	}
	return PathToURI(p)
}
