package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// LocalFileStorage implements the Storage interface for the local filesystem
type LocalFileStorage struct {
	root    string
	tempDir string
}

// NewLocalFileStorage creates a new local file storage rooted at root
func NewLocalFileStorage(root, tempDir string) (*LocalFileStorage, error) {
	// Ensure directories exist
	for _, dir := range []string{root, tempDir} {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return &LocalFileStorage{
		root:    root,
		tempDir: tempDir,
	}, nil
}

func (s *LocalFileStorage) abs(p string) string {
	return filepath.Join(s.root, filepath.FromSlash(p))
}

// Root returns the directory all paths are relative to
func (s *LocalFileStorage) Root() string {
	return s.root
}

// GetReader returns a reader for the specified file
func (s *LocalFileStorage) GetReader(p string) (io.ReadCloser, error) {
	f, err := os.Open(s.abs(p))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	return f, err
}

// GetWriter returns a writer for the specified file, creating parent directories
func (s *LocalFileStorage) GetWriter(p string) (io.WriteCloser, error) {
	full := s.abs(p)
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return os.Create(full)
}

// FileExists checks if a file exists
func (s *LocalFileStorage) FileExists(p string) bool {
	info, err := os.Stat(s.abs(p))
	return err == nil && !info.IsDir()
}

// DirExists checks if a directory exists
func (s *LocalFileStorage) DirExists(dir string) bool {
	info, err := os.Stat(s.abs(dir))
	return err == nil && info.IsDir()
}

// ListFiles lists files in a directory with the given extension
func (s *LocalFileStorage) ListFiles(dir string, ext string) ([]string, error) {
	files, err := os.ReadDir(s.abs(dir))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var results []string
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		if !hasExt(file.Name(), ext) {
			continue
		}

		results = append(results, path.Join(dir, file.Name()))
	}
	sort.Strings(results)

	return results, nil
}

// WalkFiles lists files below dir, at any depth, with the given extension
func (s *LocalFileStorage) WalkFiles(dir string, ext string) ([]string, error) {
	base := s.abs(dir)
	if _, err := os.Stat(base); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
	}

	var results []string
	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !hasExt(d.Name(), ext) {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		results = append(results, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}
	sort.Strings(results)

	return results, nil
}

func hasExt(name, ext string) bool {
	return ext == "" || strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext))
}

// MkdirAll creates a directory and its parents
func (s *LocalFileStorage) MkdirAll(dir string) error {
	return os.MkdirAll(s.abs(dir), os.ModePerm)
}

func (s *LocalFileStorage) TempDir() string {
	return s.tempDir
}

func (s *LocalFileStorage) Close() error {
	return nil
}
