// Package imageref detects image references (remote URLs or local paths) in
// free-form user text and loads them into raw bytes for the model.
package imageref

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	urlPattern  = regexp.MustCompile(`https?://\S+`)
	filePattern = regexp.MustCompile(`(?i)(?:~/|\.{1,2}/|/)?(?:[\w\-.~]+/)*[\w\-]+\.(?:jpg|jpeg|png|gif|webp|bmp)\b`)
)

const fetchTimeout = 10 * time.Second

var httpClient = &http.Client{Timeout: fetchTimeout}

// Image is a loaded picture ready to attach to a model request.
type Image struct {
	Data []byte
	MIME string
}

// LoadError wraps a failure to fetch or open an image source. Callers degrade
// to text-only operation instead of aborting the turn.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load image %q: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Extract scans text for the first image reference and removes it. URLs take
// priority over file-path tokens even when a path appears earlier. When
// nothing matches, the original text is returned with an empty source.
func Extract(text string) (string, string) {
	loc := urlPattern.FindStringIndex(text)
	if loc == nil {
		loc = filePattern.FindStringIndex(text)
	}
	if loc == nil {
		return text, ""
	}

	source := text[loc[0]:loc[1]]
	clean := text[:loc[0]] + text[loc[1]:]
	clean = strings.Join(strings.Fields(clean), " ")
	return clean, source
}

// IsURL reports whether the source is a remote reference.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Load fetches a URL or reads a local file, normalizing to bytes plus MIME
// type. Failures come back as *LoadError.
func Load(ctx context.Context, source string) (*Image, error) {
	if IsURL(source) {
		return loadRemote(ctx, source)
	}
	return loadLocal(source)
}

func loadRemote(ctx context.Context, url string) (*Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &LoadError{Source: url, Err: err}
	}

	// Some image hosts refuse requests without browser-like headers.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/svg+xml,image/*,*/*;q=0.8")
	req.Header.Set("Referer", url)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &LoadError{Source: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &LoadError{Source: url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &LoadError{Source: url, Err: err}
	}

	mime := mimeFromContentType(resp.Header.Get("Content-Type"))
	if mime == "" {
		mime = MIMEFromPath(url)
	}
	return &Image{Data: data, MIME: mime}, nil
}

func loadLocal(path string) (*Image, error) {
	expanded := path
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, &LoadError{Source: path, Err: err}
		}
		expanded = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	return &Image{Data: data, MIME: MIMEFromPath(path)}, nil
}

func mimeFromContentType(contentType string) string {
	mime, _, _ := strings.Cut(strings.ToLower(contentType), ";")
	mime = strings.TrimSpace(mime)
	if strings.HasPrefix(mime, "image/") {
		return mime
	}
	return ""
}

// MIMEFromPath infers the MIME type from the file extension, defaulting to
// image/jpeg for unknown extensions.
func MIMEFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(strings.TrimRight(path, "/"))) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	default:
		return "image/jpeg"
	}
}
