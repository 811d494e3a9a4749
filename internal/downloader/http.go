package downloader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/jaki95/eventseq/internal/storage"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// HTTPDownloader downloads plain HTTP URLs into a storage backend.
type HTTPDownloader struct {
	store     storage.Storage
	client    *http.Client
	userAgent string
}

func NewHTTPDownloader(store storage.Storage, userAgent string) *HTTPDownloader {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &HTTPDownloader{
		store:     store,
		client:    &http.Client{Timeout: 30 * time.Minute},
		userAgent: userAgent,
	}
}

// SupportsURL checks if the URL is an HTTP/HTTPS URL
func (d *HTTPDownloader) SupportsURL(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

// FileName is the storage file name a URL is saved under.
func FileName(downloadURL string) (string, error) {
	u, err := url.Parse(downloadURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", downloadURL, err)
	}
	name, err := url.PathUnescape(path.Base(u.Path))
	if err != nil || name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("url %q has no file name", downloadURL)
	}
	return name, nil
}

func (d *HTTPDownloader) Exists(downloadURL, outputDir string) bool {
	name, err := FileName(downloadURL)
	return err == nil && d.store.FileExists(path.Join(outputDir, name))
}

// Download saves the file behind downloadURL to outputDir. An existing file
// is left alone and its path returned.
func (d *HTTPDownloader) Download(ctx context.Context, downloadURL, outputDir string) (string, error) {
	name, err := FileName(downloadURL)
	if err != nil {
		return "", err
	}
	outputPath := path.Join(outputDir, name)
	if d.store.FileExists(outputPath) {
		slog.Debug("file already downloaded", "path", outputPath)
		return outputPath, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("downloaded file is empty")
	}
	if err := validateContent(name, data); err != nil {
		return "", err
	}

	if err := d.store.MkdirAll(outputDir); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", outputDir, err)
	}
	w, err := d.store.GetWriter(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	slog.Info("Downloaded file", "path", outputPath, "size", len(data))
	return outputPath, nil
}

// validateContent checks the file signature of formats the corpus uses.
func validateContent(name string, data []byte) error {
	var magic string
	switch strings.ToLower(path.Ext(name)) {
	case ".mid", ".midi":
		magic = "MThd"
	case ".wav":
		magic = "RIFF"
	default:
		return nil
	}
	if bytes.HasPrefix(data, []byte(magic)) {
		return nil
	}

	checkLen := min(len(data), 100)
	head := strings.ToLower(string(data[:checkLen]))
	if strings.Contains(head, "<html") || strings.Contains(head, "<!doctype") {
		return fmt.Errorf("%w: %s is HTML, check the download URL", ErrInvalidContent, name)
	}
	return fmt.Errorf("%w: %s", ErrInvalidContent, name)
}
