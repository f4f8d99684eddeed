package download

import (
	"net/url"
	"path"
	"strings"
)

// DefaultFileName is used when a URL has no usable trailing path segment.
const DefaultFileName = "download.zip"

// FileNameFromURL returns the last path segment of rawURL.
func FileNameFromURL(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" || strings.HasSuffix(p, "/") {
		return DefaultFileName
	}
	name := path.Base(p)
	if name == "." || name == "/" || name == "" {
		return DefaultFileName
	}
	return name
}
