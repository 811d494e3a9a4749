package storage

import (
	"io"
)

// Storage gives the corpus pipeline access to files addressed by slash
// separated paths relative to the storage root, e.g. "clean_data/song.csv".
type Storage interface {
	GetReader(path string) (io.ReadCloser, error)

	GetWriter(path string) (io.WriteCloser, error)

	FileExists(path string) bool

	// DirExists reports whether dir holds anything.
	DirExists(dir string) bool

	// ListFiles returns the files directly under dir whose name ends with
	// ext, sorted by path. A missing dir yields ErrNotFound.
	ListFiles(dir string, ext string) ([]string, error)

	// WalkFiles is ListFiles over dir and all its subdirectories.
	WalkFiles(dir string, ext string) ([]string, error)

	MkdirAll(dir string) error

	// TempDir is a local directory for files that need seeking before upload.
	TempDir() string

	Close() error
}
