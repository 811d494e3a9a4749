// Package downloader fetches raw corpus files into raw_data/.
package downloader

import (
	"context"
	"errors"
)

var (
	ErrNoLinks        = errors.New("no downloadable links found")
	ErrInvalidContent = errors.New("downloaded file does not match its extension")
)

// ProgressCallback receives a percentage (0-100) and a message.
type ProgressCallback func(int, string, []byte)

// Downloader stores one remote file and returns its storage path.
type Downloader interface {
	Download(ctx context.Context, url, outputDir string) (string, error)
	SupportsURL(url string) bool
	// Exists reports whether url was already downloaded to outputDir.
	Exists(url, outputDir string) bool
}

// Result summarises a crawl-and-download run.
type Result struct {
	Found      int      `json:"found"`
	Downloaded []string `json:"downloaded"`
	Existing   int      `json:"existing"`
	Failed     []string `json:"failed,omitempty"`
}
