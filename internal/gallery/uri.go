package gallery

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// URIFromPath returns the file:// URI for a local path.
func URIFromPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path %s: %w", path, err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

// PathFromURI returns the local path referenced by a file:// URI.
func PathFromURI(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parsing uri %q: %w", uri, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported uri scheme %q", u.Scheme)
	}
	if u.Path == "" {
		return "", fmt.Errorf("uri %q has no path", uri)
	}
	return filepath.FromSlash(u.Path), nil
}

// ResolveURI accepts either a file:// URI or a plain path and returns the URI.
func ResolveURI(arg string) (string, error) {
	if strings.HasPrefix(arg, "file://") {
		if _, err := PathFromURI(arg); err != nil {
			return "", err
		}
		return arg, nil
	}
	return URIFromPath(arg)
}
