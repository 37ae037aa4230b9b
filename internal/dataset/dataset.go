// Package dataset resolves a local directory holding the files of a
// published dataset, downloading and caching it when needed.
package dataset

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Fetcher returns a readable local directory containing the files of the
// dataset identified by handle.
type Fetcher interface {
	Download(ctx context.Context, handle string) (string, error)
}

// DownloadError wraps any failure to make a dataset available locally.
type DownloadError struct {
	Handle string
	Err    error
}

func (e *DownloadError) Error() string {
	return "download " + e.Handle + ": " + e.Err.Error()
}

func (e *DownloadError) Unwrap() error { return e.Err }

// Handle identifies a dataset as owner/slug with an optional version.
type Handle struct {
	Owner   string
	Slug    string
	Version int // 0 means latest
}

func (h Handle) String() string {
	s := h.Owner + "/" + h.Slug
	if h.Version > 0 {
		s += "/versions/" + strconv.Itoa(h.Version)
	}
	return s
}

// ParseHandle accepts "owner/slug" and "owner/slug/versions/N".
func ParseHandle(s string) (Handle, error) {
	parts := strings.Split(strings.Trim(s, "/"), "/")
	switch {
	case len(parts) == 2:
	case len(parts) == 4 && parts[2] == "versions":
	default:
		return Handle{}, errors.Errorf("invalid dataset handle %q, want owner/slug[/versions/N]", s)
	}
	h := Handle{Owner: parts[0], Slug: parts[1]}
	if h.Owner == "" || h.Slug == "" {
		return Handle{}, errors.Errorf("invalid dataset handle %q, want owner/slug[/versions/N]", s)
	}
	if len(parts) == 4 {
		v, err := strconv.Atoi(parts[3])
		if err != nil || v <= 0 {
			return Handle{}, errors.Errorf("invalid dataset version %q", parts[3])
		}
		h.Version = v
	}
	return h, nil
}

// DirFetcher serves a dataset that is already unpacked on disk. The handle
// is ignored.
type DirFetcher struct {
	Fs  afero.Fs
	Dir string
}

func (f DirFetcher) Download(_ context.Context, handle string) (string, error) {
	fi, err := f.Fs.Stat(f.Dir)
	if err != nil {
		return "", &DownloadError{Handle: handle, Err: err}
	}
	if !fi.IsDir() {
		return "", &DownloadError{Handle: handle, Err: errors.Errorf("%s is not a directory", f.Dir)}
	}
	return f.Dir, nil
}
