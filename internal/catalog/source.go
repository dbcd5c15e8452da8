package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// ErrNotFound is returned by a Source when the named file does not exist.
var ErrNotFound = errors.New("file not found")

// Source fetches catalog and narrative files by name (e.g. "chapters.json",
// "intro.md"). Names are slash-separated and relative to the data root.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// FetchError describes a non-OK response from a remote source.
type FetchError struct {
	Name   string
	Status int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: unexpected status %d", e.Name, e.Status)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *FetchError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

func cleanName(name string) (string, error) {
	name = strings.TrimPrefix(name, "/")
	if !fs.ValidPath(name) || name == "." {
		return "", fmt.Errorf("invalid data file name %q", name)
	}
	return name, nil
}

// DirSource reads files from a local data directory.
type DirSource struct {
	fsys fs.FS
	root string
}

// NewDirSource returns a Source rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{fsys: os.DirFS(dir), root: dir}
}

// NewFSSource returns a Source backed by an arbitrary fs.FS (embedded data, tests).
func NewFSSource(fsys fs.FS) *DirSource {
	return &DirSource{fsys: fsys}
}

// Root returns the directory the source reads from, or "" for fs.FS sources.
func (s *DirSource) Root() string { return s.root }

// Fetch implements Source.
func (s *DirSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(s.fsys, clean)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", clean, ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", clean, err)
	}
	return data, nil
}

// Validator caches remote bodies keyed by name so repeated fetches can be
// revalidated with If-None-Match.
type Validator interface {
	Lookup(ctx context.Context, name string) (etag string, body []byte, ok bool, err error)
	Store(ctx context.Context, name, etag string, body []byte) error
}

// HTTPSource fetches files from a remote base URL, e.g.
// "https://example.com/walkthrough/data/".
type HTTPSource struct {
	base   *url.URL
	client *http.Client
	cache  Validator
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient overrides the default client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) { s.client = c }
}

// WithValidator enables conditional requests backed by cache.
func WithValidator(cache Validator) HTTPOption {
	return func(s *HTTPSource) { s.cache = cache }
}

// NewHTTPSource parses baseURL and returns a Source that GETs files below it.
func NewHTTPSource(baseURL string, timeout time.Duration, opts ...HTTPOption) (*HTTPSource, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing data url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("data url %q must be http or https", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	s := &HTTPSource{base: u, client: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// URL returns the absolute URL for name.
func (s *HTTPSource) URL(name string) string {
	return s.base.ResolveReference(&url.URL{Path: name}).String()
}

// Fetch implements Source. Any non-2xx status is an error.
func (s *HTTPSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL(clean), nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", clean, err)
	}

	var (
		cachedBody []byte
		revalidate bool
	)
	if s.cache != nil {
		etag, body, ok, err := s.cache.Lookup(ctx, clean)
		if err == nil && ok && etag != "" {
			req.Header.Set("If-None-Match", etag)
			cachedBody, revalidate = body, true
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", clean, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && revalidate {
		return cachedBody, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Name: clean, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", clean, err)
	}
	if s.cache != nil {
		if etag := resp.Header.Get("ETag"); etag != "" {
			_ = s.cache.Store(ctx, clean, etag, body)
		}
	}
	return body, nil
}
