package dataset

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const (
	DefaultBaseURL = "https://www.kaggle.com/api/v1"

	completeMarker = ".complete"
)

// KaggleOptions configures a KaggleFetcher. Zero values fall back to
// defaults.
type KaggleOptions struct {
	BaseURL  string
	CacheDir string
	Username string
	Key      string
	Client   *http.Client
	Logger   log.Logger
}

// KaggleFetcher downloads dataset archives from the Kaggle API and unpacks
// them under a per-version cache directory. A directory carrying the
// completion marker is reused without touching the network.
type KaggleFetcher struct {
	fs       afero.Fs
	client   *http.Client
	baseURL  string
	cacheDir string
	username string
	key      string
	logger   log.Logger
}

func NewKaggleFetcher(fs afero.Fs, opts KaggleOptions) *KaggleFetcher {
	k := &KaggleFetcher{
		fs:       fs,
		client:   opts.Client,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		cacheDir: opts.CacheDir,
		username: opts.Username,
		key:      opts.Key,
		logger:   opts.Logger,
	}
	if k.client == nil {
		k.client = &http.Client{Timeout: 30 * time.Minute}
	}
	if k.baseURL == "" {
		k.baseURL = DefaultBaseURL
	}
	if k.logger == nil {
		k.logger = log.NewNopLogger()
	}
	return k
}

// Dir is where the files of h live once downloaded.
func (k *KaggleFetcher) Dir(h Handle) string {
	version := "latest"
	if h.Version > 0 {
		version = strconv.Itoa(h.Version)
	}
	return filepath.Join(k.cacheDir, "datasets", h.Owner, h.Slug, "versions", version)
}

func (k *KaggleFetcher) Download(ctx context.Context, handle string) (string, error) {
	h, err := ParseHandle(handle)
	if err != nil {
		return "", &DownloadError{Handle: handle, Err: err}
	}

	dir := k.Dir(h)
	if ok, _ := afero.Exists(k.fs, filepath.Join(dir, completeMarker)); ok {
		level.Debug(k.logger).Log("msg", "dataset cache hit", "handle", handle, "dir", dir)
		return dir, nil
	}

	if err := k.fetch(ctx, h, dir); err != nil {
		return "", &DownloadError{Handle: handle, Err: err}
	}
	return dir, nil
}

func (k *KaggleFetcher) fetch(ctx context.Context, h Handle, dir string) error {
	start := time.Now()

	// 1. Request the archive
	u := k.baseURL + "/datasets/download/" + url.PathEscape(h.Owner) + "/" + url.PathEscape(h.Slug)
	if h.Version > 0 {
		u += "?datasetVersionNumber=" + strconv.Itoa(h.Version)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if k.username != "" {
		req.SetBasicAuth(k.username, k.key)
	}

	level.Info(k.logger).Log("msg", "downloading dataset", "handle", h, "url", u)
	resp, err := k.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "request archive")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected status %s", resp.Status)
	}

	// 2. Store it next to the target directory
	if err := k.fs.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return errors.Wrap(err, "create cache directory")
	}
	archive := dir + ".zip"
	out, err := k.fs.Create(archive)
	if err != nil {
		return errors.Wrap(err, "create archive")
	}
	n, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrap(err, "write archive")
	}
	defer k.fs.Remove(archive)

	// 3. Unpack, then mark complete
	if err := k.fs.RemoveAll(dir); err != nil {
		return errors.Wrap(err, "clear target directory")
	}
	files, err := k.extract(archive, dir)
	if err != nil {
		return errors.Wrap(err, "extract archive")
	}
	if err := afero.WriteFile(k.fs, filepath.Join(dir, completeMarker), []byte(time.Now().UTC().Format(time.RFC3339)), 0o644); err != nil {
		return errors.Wrap(err, "write completion marker")
	}

	level.Info(k.logger).Log(
		"msg", "dataset ready",
		"handle", h,
		"archive", humanize.Bytes(uint64(n)),
		"files", files,
		"took", time.Since(start),
	)
	return nil
}

func (k *KaggleFetcher) extract(archive, dir string) (int, error) {
	f, err := k.fs.Open(archive)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return 0, err
	}
	zr, err := zip.NewReader(f, fi.Size())
	if err != nil {
		return 0, err
	}

	files := 0
	for _, zf := range zr.File {
		target, err := safeJoin(dir, zf.Name)
		if err != nil {
			return files, err
		}
		if zf.FileInfo().IsDir() {
			if err := k.fs.MkdirAll(target, 0o755); err != nil {
				return files, err
			}
			continue
		}
		if err := k.extractFile(zf, target); err != nil {
			return files, errors.Wrapf(err, "extract %s", zf.Name)
		}
		files++
	}
	return files, nil
}

func (k *KaggleFetcher) extractFile(zf *zip.File, target string) error {
	if err := k.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := zf.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := k.fs.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// safeJoin rejects archive entries that would land outside dir.
func safeJoin(dir, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.Errorf("archive entry %q escapes the target directory", name)
	}
	return filepath.Join(dir, clean), nil
}
