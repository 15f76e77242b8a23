package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultExtension = ".mp4"

	mobileUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	douyinReferer   = "https://www.douyin.com/"
)

// Result reports a completed download.
type Result struct {
	Path string `json:"filePath"`
	Name string `json:"fileName"`
	Size int64  `json:"size"`
}

// Downloader streams media URLs either into a managed storage directory or
// straight through to a caller. Bodies are piped, never buffered whole.
type Downloader struct {
	httpClient *http.Client
	dir        string
}

// NewDownloader creates a downloader writing into dir. The directory is
// created on first use.
func NewDownloader(dir string) *Downloader {
	return &Downloader{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		dir:        dir,
	}
}

// Dir returns the managed storage directory.
func (d *Downloader) Dir() string {
	return d.dir
}

// Save streams the media at mediaURL into the storage directory. The file is
// named from filename when given, otherwise video_<uuid> plus the extension
// inferred from the URL. A partial file is removed before the error surfaces.
func (d *Downloader) Save(ctx context.Context, mediaURL, filename string) (*Result, error) {
	return d.save(ctx, mediaURL, filename, nil)
}

// SaveWithProgress behaves like Save but wraps the response body through
// wrap, letting the CLI attach a progress bar to the stream.
func (d *Downloader) SaveWithProgress(ctx context.Context, mediaURL, filename string,
	wrap func(total int64, body io.ReadCloser) io.ReadCloser) (*Result, error) {
	return d.save(ctx, mediaURL, filename, wrap)
}

func (d *Downloader) save(ctx context.Context, mediaURL, filename string,
	wrap func(total int64, body io.ReadCloser) io.ReadCloser) (*Result, error) {
	if mediaURL == "" {
		return nil, fmt.Errorf("media URL is required")
	}

	resp, err := d.Fetch(ctx, mediaURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if filename == "" {
		filename = "video_" + uuid.New().String() + inferExtension(mediaURL)
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir %s: %w", d.dir, err)
	}

	filePath := filepath.Join(d.dir, filename)
	out, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", filePath, err)
	}

	body := resp.Body
	if wrap != nil {
		body = wrap(resp.ContentLength, body)
	}

	written, err := io.Copy(out, body)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("write %s: %w", filePath, err)
	}

	return &Result{Path: filePath, Name: filename, Size: written}, nil
}

// Fetch GETs mediaURL with platform headers and returns the raw response for
// the caller to relay. The caller owns the body.
func (d *Downloader) Fetch(ctx context.Context, mediaURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build media request: %w", err)
	}
	req.Header.Set("User-Agent", mobileUserAgent)
	req.Header.Set("Referer", douyinReferer)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch media: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return nil, fmt.Errorf("media fetch returned status %d", resp.StatusCode)
	}

	return resp, nil
}

// inferExtension pulls a file extension off the URL path, defaulting to .mp4
// for the extension-less CDN play addresses.
func inferExtension(mediaURL string) string {
	trimmed := mediaURL
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	if ext := path.Ext(trimmed); ext != "" && len(ext) <= 5 {
		return ext
	}
	return defaultExtension
}
