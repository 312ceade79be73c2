package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrTooLarge is returned when the body exceeds Options.MaxSize
var ErrTooLarge = errors.New("file too large")

// Options configures the downloader
type Options struct {
	TempDir       string        // Directory for temporary files
	MaxSize       int64         // Maximum file size in bytes (0 = no limit)
	Timeout       time.Duration // Whole-request timeout
	UserAgent     string
	ValidateAudio bool // Reject responses whose Content-Type is not audio
}

// DefaultOptions returns default download options
func DefaultOptions() Options {
	return Options{
		TempDir:       os.TempDir(),
		MaxSize:       500 * 1024 * 1024,
		Timeout:       5 * time.Minute,
		UserAgent:     "readrepeat-worker/1.0",
		ValidateAudio: true,
	}
}

// Result describes a finished download
type Result struct {
	FilePath      string
	ContentType   string
	ContentLength int64
}

// Downloader fetches remote audio into temporary files
type Downloader struct {
	client  *http.Client
	options Options
}

// NewDownloader creates a new downloader with the given options
func NewDownloader(options Options) *Downloader {
	if options.TempDir == "" {
		options.TempDir = os.TempDir()
	}
	return &Downloader{
		client: &http.Client{
			Timeout: options.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				DisableCompression:  true,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		options: options,
	}
}

// IsRemote reports whether location is an http(s) URL rather than a local path
func IsRemote(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Fetch downloads rawURL to a temp file named <prefix>_*<ext>. The caller
// removes the file with Cleanup.
func (d *Downloader) Fetch(ctx context.Context, rawURL, prefix string) (*Result, error) {
	log.Debugf("Downloading %s", rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.options.UserAgent)
	req.Header.Set("Accept", "audio/*,*/*")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if d.options.ValidateAudio && !isAudioContentType(contentType) {
		return nil, fmt.Errorf("invalid content type: %s", contentType)
	}
	if d.options.MaxSize > 0 && resp.ContentLength > d.options.MaxSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, resp.ContentLength, d.options.MaxSize)
	}

	tempFile, err := os.CreateTemp(d.options.TempDir, prefix+"_*"+extensionOf(rawURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	written, err := d.copyLimited(tempFile, resp.Body)
	if closeErr := tempFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempPath)
		return nil, fmt.Errorf("failed to download: %w", err)
	}

	log.Debugf("Downloaded %d bytes to %s", written, tempPath)
	return &Result{
		FilePath:      tempPath,
		ContentType:   contentType,
		ContentLength: written,
	}, nil
}

func (d *Downloader) copyLimited(dst io.Writer, src io.Reader) (int64, error) {
	if d.options.MaxSize <= 0 {
		return io.Copy(dst, src)
	}
	// one extra byte tells an exact-size body apart from an oversized one
	n, err := io.Copy(dst, io.LimitReader(src, d.options.MaxSize+1))
	if err != nil {
		return n, err
	}
	if n > d.options.MaxSize {
		return n, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, d.options.MaxSize)
	}
	return n, nil
}

// Cleanup removes a downloaded temp file
func Cleanup(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warnf("Failed to remove temp file %s: %v", path, err)
	}
}

func extensionOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ".mp3"
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(u.Path)), ".")
	if isValidAudioExtension(ext) {
		return "." + ext
	}
	return ".mp3"
}

func isAudioContentType(contentType string) bool {
	contentType = strings.ToLower(contentType)
	return strings.HasPrefix(contentType, "audio/") ||
		strings.HasPrefix(contentType, "application/octet-stream")
}

func isValidAudioExtension(ext string) bool {
	switch ext {
	case "mp3", "m4a", "aac", "ogg", "wav", "flac", "opus", "webm":
		return true
	}
	return false
}
