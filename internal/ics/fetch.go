package ics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// DefaultTimeout bounds a single feed download.
const DefaultTimeout = 15 * time.Second

// MaxBody caps a downloaded feed.
const MaxBody = 16 << 20

// ErrTooLarge is returned for a feed body over the size cap.
var ErrTooLarge = errors.New("ICS body too large")

// FetchResult is the payload of one location plus where it came from.
type FetchResult struct {
	Location  string
	Body      []byte
	FromCache bool
}

type cacheMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Fetcher loads ICS payloads from local paths or http(s) URLs. Remote
// bodies are cached under CacheDir and revalidated with ETag and
// Last-Modified; the cached copy is served when the network fails.
type Fetcher struct {
	client   *http.Client
	fs       afero.Fs
	cacheDir string
	maxBody  int64
}

// NewFetcher returns a Fetcher reading local files and its cache through
// fs. An empty cacheDir disables caching.
func NewFetcher(fs afero.Fs, cacheDir string) *Fetcher {
	return &Fetcher{
		client:   &http.Client{Timeout: DefaultTimeout},
		fs:       fs,
		cacheDir: cacheDir,
		maxBody:  MaxBody,
	}
}

// WithClient replaces the HTTP client.
func (f *Fetcher) WithClient(c *http.Client) *Fetcher {
	f.client = c
	return f
}

// IsRemote reports whether location is an http(s) URL.
func IsRemote(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://") || strings.HasPrefix(l, "webcal://")
}

// Load returns the ICS payload at location.
func (f *Fetcher) Load(ctx context.Context, location string) (FetchResult, error) {
	if strings.TrimSpace(location) == "" {
		return FetchResult{}, errors.New("empty ICS location")
	}
	if !IsRemote(location) {
		body, err := afero.ReadFile(f.fs, location)
		if err != nil {
			return FetchResult{}, fmt.Errorf("read %s: %w", location, err)
		}
		return FetchResult{Location: location, Body: body}, nil
	}
	return f.fetchRemote(ctx, location)
}

func (f *Fetcher) fetchRemote(ctx context.Context, location string) (FetchResult, error) {
	u := location
	if strings.HasPrefix(strings.ToLower(u), "webcal://") {
		u = "https://" + u[len("webcal://"):]
	}

	dir := f.cachePath(u)
	var meta cacheMeta
	var cached []byte
	if dir != "" {
		meta, _ = f.loadMeta(dir)
		cached, _ = afero.ReadFile(f.fs, filepath.Join(dir, "body.ics"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return FetchResult{}, err
	}
	if len(cached) > 0 {
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", meta.LastModified)
		}
	}

	slog.Info("ics fetch start", "url", redactURL(u))
	resp, err := f.client.Do(req)
	if err != nil {
		if len(cached) > 0 {
			slog.Warn("ics fetch failed, using cache", "url", redactURL(u), "err", err)
			return FetchResult{Location: location, Body: cached, FromCache: true}, nil
		}
		return FetchResult{}, fmt.Errorf("fetch %s: %w", redactURL(u), err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
		if err != nil {
			return FetchResult{}, fmt.Errorf("read body: %w", err)
		}
		if int64(len(body)) > f.maxBody {
			slog.Warn("ics body over limit", "url", redactURL(u), "limit", f.maxBody)
			return FetchResult{}, fmt.Errorf("fetch %s: %w (limit %d bytes)", redactURL(u), ErrTooLarge, f.maxBody)
		}
		if dir != "" {
			m := cacheMeta{
				URL:          u,
				ETag:         resp.Header.Get("ETag"),
				LastModified: resp.Header.Get("Last-Modified"),
			}
			if err := f.saveCache(dir, m, body); err != nil {
				slog.Warn("ics cache save failed", "url", redactURL(u), "err", err)
			}
		}
		slog.Info("ics fetch done", "url", redactURL(u), "bytes", len(body))
		return FetchResult{Location: location, Body: body}, nil

	case http.StatusNotModified:
		if len(cached) == 0 {
			return FetchResult{}, errors.New("304 Not Modified without cached body")
		}
		slog.Debug("ics not modified", "url", redactURL(u))
		return FetchResult{Location: location, Body: cached, FromCache: true}, nil

	default:
		if len(cached) > 0 {
			slog.Warn("ics fetch non-OK, using cache", "url", redactURL(u), "status", resp.StatusCode)
			return FetchResult{Location: location, Body: cached, FromCache: true}, nil
		}
		return FetchResult{}, fmt.Errorf("fetch %s: %s", redactURL(u), resp.Status)
	}
}

func (f *Fetcher) cachePath(u string) string {
	if f.cacheDir == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(u))
	return filepath.Join(f.cacheDir, hex.EncodeToString(sum[:8]))
}

func (f *Fetcher) loadMeta(dir string) (cacheMeta, error) {
	var m cacheMeta
	data, err := afero.ReadFile(f.fs, filepath.Join(dir, "meta.json"))
	if err != nil {
		return m, err
	}
	err = json.Unmarshal(data, &m)
	return m, err
}

func (f *Fetcher) saveCache(dir string, m cacheMeta, body []byte) error {
	if err := f.fs.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	// Body first so meta never points at a missing body.
	if err := afero.WriteFile(f.fs, filepath.Join(dir, "body.ics"), body, 0o600); err != nil {
		return err
	}
	m.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&m, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(f.fs, filepath.Join(dir, "meta.json"), data, 0o600)
}

// redactURL keeps scheme and host only; feed URLs often embed tokens.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "ics://...(redacted)"
	}
	return u.Scheme + "://" + u.Host + "/...(redacted)"
}
